// Package services содержит бизнес-логику управления подписками: проверку прав
// участника, валидацию, работу с хранилищем и кешем и построение аналитики
// над видимым участнику набором подписок.
package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/magabrotheeeer/subscription-manager/internal/access"
	"github.com/magabrotheeeer/subscription-manager/internal/analytics"
	"github.com/magabrotheeeer/subscription-manager/internal/cache"
	"github.com/magabrotheeeer/subscription-manager/internal/lib/sl"
	"github.com/magabrotheeeer/subscription-manager/internal/models"
	"github.com/magabrotheeeer/subscription-manager/internal/storage/repository"
)

// SubscriptionRepository определяет методы для работы с подписками в хранилище.
type SubscriptionRepository interface {
	// All возвращает все подписки.
	All(ctx context.Context) ([]*models.Subscription, error)
	// ByOwner возвращает подписки пользователя.
	ByOwner(ctx context.Context, ownerID string) ([]*models.Subscription, error)
	// ByOwnerOrShared возвращает подписки пользователя и все общие.
	ByOwnerOrShared(ctx context.Context, ownerID string) ([]*models.Subscription, error)
	// ByID возвращает подписку по ID или repository.ErrSubscriptionNotFound.
	ByID(ctx context.Context, id int) (*models.Subscription, error)
	// Create сохраняет новую подписку.
	Create(ctx context.Context, sub models.Subscription) (*models.Subscription, error)
	// Update сохраняет изменённую подписку.
	Update(ctx context.Context, sub models.Subscription) (*models.Subscription, error)
	// Delete удаляет подписку по ID.
	Delete(ctx context.Context, id int) error
}

// Cache описывает методы для кэширования данных.
type Cache interface {
	Get(ctx context.Context, key string, result any) (bool, error)
	Set(ctx context.Context, key string, value any, expiration time.Duration) error
	Invalidate(ctx context.Context, key string) error
}

// SubscriptionService реализует операции над подписками от имени участника.
type SubscriptionService struct {
	repo     SubscriptionRepository
	cache    Cache
	log      *slog.Logger
	cacheTTL time.Duration
}

// NewSubscriptionService создает новый экземпляр SubscriptionService.
func NewSubscriptionService(repo SubscriptionRepository, cache Cache, log *slog.Logger, cacheTTL time.Duration) *SubscriptionService {
	return &SubscriptionService{
		repo:     repo,
		cache:    cache,
		log:      log,
		cacheTTL: cacheTTL,
	}
}

// ListVisible возвращает подписки, которые участник может читать.
func (s *SubscriptionService) ListVisible(ctx context.Context, actor models.Actor) ([]*models.Subscription, error) {
	const op = "services.ListVisible"
	var (
		subs []*models.Subscription
		err  error
	)
	if actor.IsAdmin() {
		subs, err = s.repo.All(ctx)
	} else {
		subs, err = s.repo.ByOwnerOrShared(ctx, actor.ID)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return access.VisibilitySet(actor, subs), nil
}

// Create создает подписку, владельцем которой становится участник.
// Признак общей подписки при создании всегда сбрасывается.
func (s *SubscriptionService) Create(ctx context.Context, actor models.Actor, req models.DummySubscription) (*models.Subscription, error) {
	const op = "services.Create"
	if !access.CanCreate(actor) {
		return nil, ErrPermissionDenied
	}

	sub, err := newSubscription(req)
	if err != nil {
		return nil, err
	}
	sub.OwnerID = actor.ID
	sub.IsShared = false

	created, err := s.repo.Create(ctx, sub)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	s.log.Info("created new subscription", slog.Int("id", created.ID), sl.Actor(actor.ID, actor.Role.String()))

	s.cacheSubscription(ctx, created)
	return created, nil
}

// Read возвращает подписку, если участник может её читать.
func (s *SubscriptionService) Read(ctx context.Context, actor models.Actor, id int) (*models.Subscription, error) {
	sub, err := s.fetch(ctx, id)
	if err != nil {
		return nil, err
	}
	if !access.CanRead(actor, sub) {
		return nil, ErrPermissionDenied
	}
	return sub, nil
}

// Update частично обновляет подписку. Пользователь может менять только свои подписки
// и никогда не меняет признак общей подписки.
func (s *SubscriptionService) Update(ctx context.Context, actor models.Actor, id int, req models.DummySubscriptionPatch) (*models.Subscription, error) {
	const op = "services.Update"
	sub, err := s.fetch(ctx, id)
	if err != nil {
		return nil, err
	}
	if !access.CanWrite(actor, sub) {
		return nil, ErrPermissionDenied
	}
	// общая подписка видна всем, но менять её может только владелец
	if !actor.IsAdmin() && !access.Owns(actor, sub) {
		return nil, ErrPermissionDenied
	}

	patch, err := newPatch(req)
	if err != nil {
		return nil, err
	}
	patch = access.SanitizeUpdate(actor, patch)

	updated, err := s.repo.Update(ctx, patch.Apply(*sub))
	if errors.Is(err, repository.ErrSubscriptionNotFound) {
		s.invalidate(ctx, id)
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	s.log.Info("updated subscription", slog.Int("id", id), sl.Actor(actor.ID, actor.Role.String()))

	// ключ только сбрасывается, следующее чтение возьмёт строку из БД
	s.invalidate(ctx, id)
	return updated, nil
}

// Delete удаляет подписку. Удалять может только владелец или администратор.
func (s *SubscriptionService) Delete(ctx context.Context, actor models.Actor, id int) error {
	const op = "services.Delete"
	sub, err := s.fetch(ctx, id)
	if err != nil {
		return err
	}
	if !access.CanDelete(actor, sub) {
		return ErrPermissionDenied
	}

	s.invalidate(ctx, id)
	err = s.repo.Delete(ctx, id)
	if errors.Is(err, repository.ErrSubscriptionNotFound) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	s.log.Info("deleted subscription", slog.Int("id", id), sl.Actor(actor.ID, actor.Role.String()))
	return nil
}

// UpcomingRenewals возвращает продления в ближайшие 7 дней. Учитываются только
// собственные подписки участника, общие и чужие записи сюда не попадают даже для администратора.
func (s *SubscriptionService) UpcomingRenewals(ctx context.Context, actor models.Actor, today models.Date) ([]models.Renewal, error) {
	const op = "services.UpcomingRenewals"
	subs, err := s.repo.ByOwner(ctx, actor.ID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return analytics.UpcomingRenewals(subs, today), nil
}

// Summary возвращает количество и суммарную стоимость собственных подписок участника.
func (s *SubscriptionService) Summary(ctx context.Context, actor models.Actor) (models.SpendSummary, error) {
	const op = "services.Summary"
	subs, err := s.repo.ByOwner(ctx, actor.ID)
	if err != nil {
		return models.SpendSummary{}, fmt.Errorf("%s: %w", op, err)
	}
	return analytics.Summary(subs), nil
}

// Suggestions строит рекомендации по всем видимым участнику подпискам.
func (s *SubscriptionService) Suggestions(ctx context.Context, actor models.Actor) (models.SuggestionReport, error) {
	const op = "services.Suggestions"
	subs, err := s.ListVisible(ctx, actor)
	if err != nil {
		return models.SuggestionReport{}, fmt.Errorf("%s: %w", op, err)
	}
	return analytics.Suggestions(subs), nil
}

// fetch читает подписку из кеша, а при промахе из хранилища.
func (s *SubscriptionService) fetch(ctx context.Context, id int) (*models.Subscription, error) {
	const op = "services.fetch"
	cacheKey := cache.SubscriptionKey(id)

	var cached *models.Subscription
	found, err := s.cache.Get(ctx, cacheKey, &cached)
	if err != nil {
		s.log.Warn("failed to read from cache", slog.String("key", cacheKey), sl.Err(err))
	}
	if found && cached != nil {
		return cached, nil
	}

	sub, err := s.repo.ByID(ctx, id)
	if errors.Is(err, repository.ErrSubscriptionNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	s.cacheSubscription(ctx, sub)
	return sub, nil
}

func (s *SubscriptionService) cacheSubscription(ctx context.Context, sub *models.Subscription) {
	cacheKey := cache.SubscriptionKey(sub.ID)
	if err := s.cache.Set(ctx, cacheKey, sub, s.cacheTTL); err != nil {
		s.log.Warn("failed to cache subscription", slog.String("key", cacheKey), sl.Err(err))
	}
}

func (s *SubscriptionService) invalidate(ctx context.Context, id int) {
	cacheKey := cache.SubscriptionKey(id)
	if err := s.cache.Invalidate(ctx, cacheKey); err != nil {
		s.log.Warn("failed to remove from cache", slog.String("key", cacheKey), sl.Err(err))
	}
}
