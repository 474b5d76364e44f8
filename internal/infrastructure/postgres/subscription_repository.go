package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/flowfix/flowfix-api/internal/domain/entity"
	"github.com/flowfix/flowfix-api/internal/domain/repository"
	"github.com/jackc/pgx/v5"
)

var _ repository.SubscriptionRepository = (*SubscriptionRepo)(nil)

// SubscriptionRepo implementación de SubscriptionRepository sobre PostgreSQL.
type SubscriptionRepo struct {
	q Querier
}

// NewSubscriptionRepository construye el adaptador de suscripciones.
func NewSubscriptionRepository(q Querier) *SubscriptionRepo {
	return &SubscriptionRepo{q: q}
}

// ListPackages lista los paquetes activos.
func (r *SubscriptionRepo) ListPackages() ([]*entity.SubscriptionPackage, error) {
	query := `
		SELECT id, name, description, price_cents, hours_included, active, created_at
		FROM subscription_packages WHERE active ORDER BY price_cents`
	rows, err := r.q.Query(context.Background(), query)
	if err != nil {
		return nil, fmt.Errorf("list packages: %w", err)
	}
	defer rows.Close()
	var list []*entity.SubscriptionPackage
	for rows.Next() {
		var p entity.SubscriptionPackage
		if err := rows.Scan(&p.ID, &p.Name, &p.Description, &p.PriceCents, &p.HoursIncluded,
			&p.Active, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan package: %w", err)
		}
		list = append(list, &p)
	}
	return list, rows.Err()
}

// GetPackage obtiene un paquete por ID, o nil si no existe.
func (r *SubscriptionRepo) GetPackage(id string) (*entity.SubscriptionPackage, error) {
	query := `
		SELECT id, name, description, price_cents, hours_included, active, created_at
		FROM subscription_packages WHERE id = $1`
	var p entity.SubscriptionPackage
	err := r.q.QueryRow(context.Background(), query, id).Scan(
		&p.ID, &p.Name, &p.Description, &p.PriceCents, &p.HoursIncluded, &p.Active, &p.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get package: %w", err)
	}
	return &p, nil
}

// CreateSubscription persiste una suscripción nueva.
func (r *SubscriptionRepo) CreateSubscription(sub *entity.Subscription) error {
	query := `
		INSERT INTO subscriptions (id, user_id, package_id, hours_used, period_start, period_end,
			status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	_, err := r.q.Exec(context.Background(), query,
		sub.ID, sub.UserID, sub.PackageID, sub.HoursUsed, sub.PeriodStart, sub.PeriodEnd,
		sub.Status, sub.CreatedAt, sub.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert subscription: %w", err)
	}
	return nil
}

// GetActiveByUser devuelve la suscripción activa del usuario, o nil.
func (r *SubscriptionRepo) GetActiveByUser(userID string) (*entity.Subscription, error) {
	query := `
		SELECT id, user_id, package_id, hours_used, period_start, period_end, status, created_at, updated_at
		FROM subscriptions WHERE user_id = $1 AND status = $2 LIMIT 1`
	var s entity.Subscription
	err := r.q.QueryRow(context.Background(), query, userID, entity.SubscriptionActive).Scan(
		&s.ID, &s.UserID, &s.PackageID, &s.HoursUsed, &s.PeriodStart, &s.PeriodEnd,
		&s.Status, &s.CreatedAt, &s.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get subscription: %w", err)
	}
	return &s, nil
}

// UpdateUsage persiste hours_used y el período vigente (acumulación o reinicio).
func (r *SubscriptionRepo) UpdateUsage(sub *entity.Subscription) error {
	query := `
		UPDATE subscriptions SET hours_used = $2, period_start = $3, period_end = $4, updated_at = $5
		WHERE id = $1`
	_, err := r.q.Exec(context.Background(), query,
		sub.ID, sub.HoursUsed, sub.PeriodStart, sub.PeriodEnd, sub.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update subscription usage: %w", err)
	}
	return nil
}
