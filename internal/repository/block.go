package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/flicky/go-bookstore-api/internal/model"
)

// BlockRepository keeps block status keyed by client email, apart from the
// client row itself.
type BlockRepository interface {
	Get(ctx context.Context, email string) (*model.BlockStatus, error)
	Set(ctx context.Context, email string, blocked bool) error
	Delete(ctx context.Context, email string) error
}

type pgBlockRepo struct{ pool *pgxpool.Pool }

func NewBlockRepository(pool *pgxpool.Pool) BlockRepository {
	return &pgBlockRepo{pool: pool}
}

func (r *pgBlockRepo) Get(ctx context.Context, email string) (*model.BlockStatus, error) {
	s := &model.BlockStatus{}
	err := r.pool.QueryRow(ctx,
		`SELECT client_email, blocked, updated_at FROM client_block_statuses WHERE client_email = $1`, email,
	).Scan(&s.ClientEmail, &s.Blocked, &s.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get block status: %w", err)
	}
	return s, nil
}

func (r *pgBlockRepo) Set(ctx context.Context, email string, blocked bool) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO client_block_statuses (client_email, blocked, updated_at) VALUES ($1, $2, NOW())
		 ON CONFLICT (client_email) DO UPDATE SET blocked = EXCLUDED.blocked, updated_at = NOW()`,
		email, blocked,
	)
	if err != nil {
		return fmt.Errorf("set block status: %w", err)
	}
	return nil
}

// Delete drops the status record; a missing record is not an error.
func (r *pgBlockRepo) Delete(ctx context.Context, email string) error {
	if _, err := r.pool.Exec(ctx, `DELETE FROM client_block_statuses WHERE client_email = $1`, email); err != nil {
		return fmt.Errorf("delete block status: %w", err)
	}
	return nil
}
