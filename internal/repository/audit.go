package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/flicky/go-bookstore-api/internal/model"
)

type AuditRepository interface {
	Record(ctx context.Context, event model.OrderEvent) error
	ListByOrder(ctx context.Context, orderID uuid.UUID) ([]model.OrderEvent, error)
}

type pgAuditRepo struct{ pool *pgxpool.Pool }

func NewAuditRepository(pool *pgxpool.Pool) AuditRepository {
	return &pgAuditRepo{pool: pool}
}

// Record is idempotent on the event id.
func (r *pgAuditRepo) Record(ctx context.Context, event model.OrderEvent) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO order_status_audit (event_id, order_id, status, actor, created_at)
		 VALUES ($1, $2, $3, $4, $5) ON CONFLICT (event_id) DO NOTHING`,
		event.EventID, event.OrderID, event.Status, event.Actor, event.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("record audit: %w", err)
	}
	return nil
}

func (r *pgAuditRepo) ListByOrder(ctx context.Context, orderID uuid.UUID) ([]model.OrderEvent, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT event_id, order_id, status, actor, created_at FROM order_status_audit
		 WHERE order_id = $1 ORDER BY created_at`, orderID,
	)
	if err != nil {
		return nil, fmt.Errorf("list audit: %w", err)
	}
	defer rows.Close()

	var events []model.OrderEvent
	for rows.Next() {
		var e model.OrderEvent
		if err := rows.Scan(&e.EventID, &e.OrderID, &e.Status, &e.Actor, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan audit: %w", err)
		}
		events = append(events, e)
	}
	return events, rows.Err()
}
