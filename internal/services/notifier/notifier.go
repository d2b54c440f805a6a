// Package services содержит планировщик напоминаний о продлении подписок.
package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/magabrotheeeer/subscription-manager/internal/lib/rabbitmq"
	"github.com/magabrotheeeer/subscription-manager/internal/lib/sl"
	"github.com/magabrotheeeer/subscription-manager/internal/models"
)

// SubscriptionRepository выборка подписок, продлевающихся в заданный интервал дат,
// и отметка об уже отправленных напоминаниях.
type SubscriptionRepository interface {
	ByRenewalWindow(ctx context.Context, start, end models.Date) ([]*models.Subscription, error)
	ClaimRenewalNotice(ctx context.Context, id int, renewal models.Date) (bool, error)
	ReleaseRenewalNotice(ctx context.Context, id int, renewal models.Date) error
}

// Publisher отправляет сообщение в брокер.
type Publisher interface {
	Publish(routingKey string, message any) error
}

// NotifierService ищет подписки, которые продлеваются завтра, и публикует напоминания.
type NotifierService struct {
	repo      SubscriptionRepository
	publisher Publisher
	log       *slog.Logger
	now       func() time.Time
}

// NewNotifierService создает новый экземпляр NotifierService.
func NewNotifierService(repo SubscriptionRepository, publisher Publisher, log *slog.Logger) *NotifierService {
	return &NotifierService{
		repo:      repo,
		publisher: publisher,
		log:       log,
		now:       time.Now,
	}
}

// Run выполняет проверку сразу и затем каждые interval, пока не отменён ctx.
func (s *NotifierService) Run(ctx context.Context, interval time.Duration) {
	s.notify(ctx)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.log.Info("renewal notifier stopped")
			return
		case <-ticker.C:
			s.notify(ctx)
		}
	}
}

func (s *NotifierService) notify(ctx context.Context) {
	sent, err := s.NotifyDueTomorrow(ctx)
	if err != nil {
		s.log.Error("failed to notify about renewals", sl.Err(err))
		return
	}
	s.log.Info("renewal notifications published", slog.Int("count", sent))
}

// NotifyDueTomorrow публикует по одному сообщению на каждую подписку с датой продления завтра.
// Напоминание о конкретной дате продления отправляется один раз: повторные запуски и рестарты
// пропускают уже заявленные подписки. Ошибка по одной подписке не останавливает остальные.
// Возвращает число отправленных.
func (s *NotifierService) NotifyDueTomorrow(ctx context.Context) (int, error) {
	const op = "services.NotifyDueTomorrow"
	tomorrow := models.NewDate(s.now()).AddDays(1)

	subs, err := s.repo.ByRenewalWindow(ctx, tomorrow, tomorrow)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	if len(subs) == 0 {
		s.log.Info("no renewals due tomorrow")
		return 0, nil
	}

	sent := 0
	for _, sub := range subs {
		if s.notifyOne(ctx, sub) {
			sent++
		}
	}
	return sent, nil
}

func (s *NotifierService) notifyOne(ctx context.Context, sub *models.Subscription) bool {
	log := s.log.With(slog.Int("id", sub.ID))

	claimed, err := s.repo.ClaimRenewalNotice(ctx, sub.ID, sub.RenewalDate)
	if err != nil {
		log.Error("failed to claim renewal notice", sl.Err(err))
		return false
	}
	if !claimed {
		log.Debug("renewal notice already sent")
		return false
	}

	if err := s.publisher.Publish(rabbitmq.RoutingKeyUpcoming, models.NewRenewalNotice(sub)); err != nil {
		log.Error("failed to publish message", sl.Err(err))
		if err := s.repo.ReleaseRenewalNotice(ctx, sub.ID, sub.RenewalDate); err != nil {
			log.Error("failed to release renewal notice", sl.Err(err))
		}
		return false
	}
	return true
}
