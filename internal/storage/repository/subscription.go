package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/magabrotheeeer/subscription-manager/internal/models"
)

const subscriptionColumns = `s.id, s.user_uid, u.username, u.email, s.service_name, s.cost,
	s.billing_cycle, s.renewal_date, s.notes, s.is_shared, s.created_at, s.updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSubscription(row rowScanner) (*models.Subscription, error) {
	var (
		sub         models.Subscription
		cycle       string
		renewalDate time.Time
		notes       sql.NullString
	)
	err := row.Scan(&sub.ID, &sub.OwnerID, &sub.OwnerName, &sub.OwnerEmail, &sub.ServiceName,
		&sub.Cost, &cycle, &renewalDate, &notes, &sub.IsShared, &sub.CreatedAt, &sub.UpdatedAt)
	if err != nil {
		return nil, err
	}
	sub.BillingCycle = models.BillingCycle(cycle)
	sub.RenewalDate = models.NewDate(renewalDate)
	if notes.Valid {
		sub.Notes = &notes.String
	}
	return &sub, nil
}

func (s *Storage) listSubscriptions(ctx context.Context, op, where string, args ...any) ([]*models.Subscription, error) {
	if err := checkContext(ctx, op); err != nil {
		return nil, err
	}

	query := `SELECT ` + subscriptionColumns + `
			  FROM subscriptions s
			  JOIN users u ON u.uid = s.user_uid
			  ` + where + `
			  ORDER BY s.id`
	rows, err := s.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	result := make([]*models.Subscription, 0)
	for rows.Next() {
		sub, err := scanSubscription(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, sub)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// All возвращает все подписки.
func (s *Storage) All(ctx context.Context) ([]*models.Subscription, error) {
	return s.listSubscriptions(ctx, "storage.All", "")
}

// ByOwner возвращает подписки, принадлежащие пользователю.
func (s *Storage) ByOwner(ctx context.Context, ownerID string) ([]*models.Subscription, error) {
	return s.listSubscriptions(ctx, "storage.ByOwner", "WHERE s.user_uid = $1", ownerID)
}

// ByOwnerOrShared возвращает подписки пользователя и все общие подписки.
func (s *Storage) ByOwnerOrShared(ctx context.Context, ownerID string) ([]*models.Subscription, error) {
	return s.listSubscriptions(ctx, "storage.ByOwnerOrShared", "WHERE s.user_uid = $1 OR s.is_shared", ownerID)
}

// ByRenewalWindow возвращает подписки с датой продления в интервале [start, end].
func (s *Storage) ByRenewalWindow(ctx context.Context, start, end models.Date) ([]*models.Subscription, error) {
	return s.listSubscriptions(ctx, "storage.ByRenewalWindow",
		"WHERE s.renewal_date BETWEEN $1 AND $2", start.Time, end.Time)
}

// ByID возвращает подписку по её ID.
func (s *Storage) ByID(ctx context.Context, id int) (*models.Subscription, error) {
	const op = "storage.ByID"
	if err := checkContext(ctx, op); err != nil {
		return nil, err
	}

	query := `SELECT ` + subscriptionColumns + `
			  FROM subscriptions s
			  JOIN users u ON u.uid = s.user_uid
			  WHERE s.id = $1`
	sub, err := scanSubscription(s.DB.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%s: %w", op, ErrSubscriptionNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return sub, nil
}

// Create вставляет новую подписку и возвращает сохранённую запись.
func (s *Storage) Create(ctx context.Context, sub models.Subscription) (*models.Subscription, error) {
	const op = "storage.Create"
	if err := checkContext(ctx, op); err != nil {
		return nil, err
	}

	query := `WITH s AS (
				INSERT INTO subscriptions (user_uid, service_name, cost, billing_cycle,
					renewal_date, notes, is_shared)
				VALUES ($1, $2, $3, $4, $5, $6, $7)
				RETURNING *
			  )
			  SELECT ` + subscriptionColumns + `
			  FROM s JOIN users u ON u.uid = s.user_uid`
	created, err := scanSubscription(s.DB.QueryRowContext(ctx, query,
		sub.OwnerID, sub.ServiceName, sub.Cost, string(sub.BillingCycle),
		sub.RenewalDate.Time, sub.Notes, sub.IsShared))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return created, nil
}

// Update сохраняет изменяемые поля подписки. Владелец и дата создания не меняются.
func (s *Storage) Update(ctx context.Context, sub models.Subscription) (*models.Subscription, error) {
	const op = "storage.Update"
	if err := checkContext(ctx, op); err != nil {
		return nil, err
	}

	query := `WITH s AS (
				UPDATE subscriptions
				SET service_name = $1, cost = $2, billing_cycle = $3, renewal_date = $4,
					notes = $5, is_shared = $6, updated_at = NOW()
				WHERE id = $7
				RETURNING *
			  )
			  SELECT ` + subscriptionColumns + `
			  FROM s JOIN users u ON u.uid = s.user_uid`
	updated, err := scanSubscription(s.DB.QueryRowContext(ctx, query,
		sub.ServiceName, sub.Cost, string(sub.BillingCycle), sub.RenewalDate.Time,
		sub.Notes, sub.IsShared, sub.ID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%s: %w", op, ErrSubscriptionNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return updated, nil
}

// Delete удаляет подписку по ID.
func (s *Storage) Delete(ctx context.Context, id int) error {
	const op = "storage.Delete"
	if err := checkContext(ctx, op); err != nil {
		return err
	}

	result, err := s.DB.ExecContext(ctx, `DELETE FROM subscriptions WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("%s: %w", op, ErrSubscriptionNotFound)
	}
	return nil
}

// ClaimRenewalNotice помечает, что напоминание о продлении на дату renewal отправляется.
// Возвращает false, если для этой даты напоминание уже было заявлено.
func (s *Storage) ClaimRenewalNotice(ctx context.Context, id int, renewal models.Date) (bool, error) {
	const op = "storage.ClaimRenewalNotice"
	if err := checkContext(ctx, op); err != nil {
		return false, err
	}

	result, err := s.DB.ExecContext(ctx,
		`UPDATE subscriptions SET notified_for = $2
		 WHERE id = $1 AND notified_for IS DISTINCT FROM $2`, id, renewal.Time)
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}
	return rowsAffected == 1, nil
}

// ReleaseRenewalNotice снимает отметку, поставленную ClaimRenewalNotice, если она не менялась.
func (s *Storage) ReleaseRenewalNotice(ctx context.Context, id int, renewal models.Date) error {
	const op = "storage.ReleaseRenewalNotice"
	if err := checkContext(ctx, op); err != nil {
		return err
	}

	_, err := s.DB.ExecContext(ctx,
		`UPDATE subscriptions SET notified_for = NULL
		 WHERE id = $1 AND notified_for = $2`, id, renewal.Time)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}
