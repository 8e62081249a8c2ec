package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/flicky/go-bookstore-api/internal/model"
)

type OrderStatusRepository interface {
	Get(ctx context.Context, orderID uuid.UUID) (*model.OrderStatusRecord, error)
	// Transition moves a PENDING order to status. It returns nil, nil when the
	// order is missing or no longer pending.
	Transition(ctx context.Context, orderID uuid.UUID, status model.OrderStatus, actor string) (*model.OrderStatusRecord, error)
}

type pgOrderStatusRepo struct{ pool *pgxpool.Pool }

func NewOrderStatusRepository(pool *pgxpool.Pool) OrderStatusRepository {
	return &pgOrderStatusRepo{pool: pool}
}

func (r *pgOrderStatusRepo) Get(ctx context.Context, orderID uuid.UUID) (*model.OrderStatusRecord, error) {
	rec := &model.OrderStatusRecord{}
	err := r.pool.QueryRow(ctx,
		`SELECT order_id, status, changed_by, updated_at FROM order_statuses WHERE order_id = $1`, orderID,
	).Scan(&rec.OrderID, &rec.Status, &rec.ChangedBy, &rec.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get order status: %w", err)
	}
	return rec, nil
}

func (r *pgOrderStatusRepo) Transition(ctx context.Context, orderID uuid.UUID, status model.OrderStatus, actor string) (*model.OrderStatusRecord, error) {
	rec := &model.OrderStatusRecord{}
	err := r.pool.QueryRow(ctx,
		`UPDATE order_statuses SET status = $2, changed_by = $3, updated_at = NOW()
		 WHERE order_id = $1 AND status = $4
		 RETURNING order_id, status, changed_by, updated_at`,
		orderID, status, actor, model.OrderStatusPending,
	).Scan(&rec.OrderID, &rec.Status, &rec.ChangedBy, &rec.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("update order status: %w", err)
	}
	return rec, nil
}
