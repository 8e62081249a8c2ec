package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/flicky/go-bookstore-api/internal/model"
)

type ClientRepository interface {
	Create(ctx context.Context, client *model.Client) error
	GetByEmail(ctx context.Context, email string) (*model.Client, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	List(ctx context.Context, search string, page model.PageRequest) ([]model.Client, int, error)
	Update(ctx context.Context, client *model.Client) error
	AddBalance(ctx context.Context, email string, amount decimal.Decimal) (decimal.Decimal, error)
	Delete(ctx context.Context, email string) error
}

type pgClientRepo struct{ pool *pgxpool.Pool }

func NewClientRepository(pool *pgxpool.Pool) ClientRepository {
	return &pgClientRepo{pool: pool}
}

var clientSorts = map[string]string{
	"id":    "id",
	"name":  "name",
	"email": "email",
}

func (r *pgClientRepo) Create(ctx context.Context, client *model.Client) error {
	query := `INSERT INTO clients (name, email, password_hash, balance, created_at, updated_at)
			  VALUES ($1, $2, $3, $4, NOW(), NOW())
			  RETURNING id, created_at, updated_at`
	err := r.pool.QueryRow(ctx, query,
		client.Name, client.Email, client.Password, client.Balance,
	).Scan(&client.ID, &client.CreatedAt, &client.UpdatedAt)
	if err != nil {
		return fmt.Errorf("create client: %w", classify(err))
	}
	return nil
}

func (r *pgClientRepo) GetByEmail(ctx context.Context, email string) (*model.Client, error) {
	query := `SELECT id, name, email, password_hash, balance, created_at, updated_at
			  FROM clients WHERE email = $1`
	c := &model.Client{}
	err := r.pool.QueryRow(ctx, query, email).Scan(
		&c.ID, &c.Name, &c.Email, &c.Password, &c.Balance, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get client by email: %w", err)
	}
	return c, nil
}

func (r *pgClientRepo) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	var exists bool
	if err := r.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM clients WHERE email = $1)`, email).Scan(&exists); err != nil {
		return false, fmt.Errorf("client exists: %w", err)
	}
	return exists, nil
}

func (r *pgClientRepo) List(ctx context.Context, search string, page model.PageRequest) ([]model.Client, int, error) {
	var total int
	countQ := `SELECT COUNT(*) FROM clients WHERE ($1 = '' OR name ILIKE '%' || $1 || '%' OR email ILIKE '%' || $1 || '%')`
	if err := r.pool.QueryRow(ctx, countQ, search).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count clients: %w", err)
	}

	query := fmt.Sprintf(`SELECT id, name, email, password_hash, balance, created_at, updated_at
		FROM clients
		WHERE ($1 = '' OR name ILIKE '%%' || $1 || '%%' OR email ILIKE '%%' || $1 || '%%')
		%s LIMIT $2 OFFSET $3`, orderBy(page, clientSorts, "id", model.SortAsc))

	rows, err := r.pool.Query(ctx, query, search, page.Size, page.Offset())
	if err != nil {
		return nil, 0, fmt.Errorf("list clients: %w", err)
	}
	defer rows.Close()

	var clients []model.Client
	for rows.Next() {
		var c model.Client
		if err := rows.Scan(&c.ID, &c.Name, &c.Email, &c.Password, &c.Balance, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, 0, fmt.Errorf("scan client: %w", err)
		}
		clients = append(clients, c)
	}
	return clients, total, rows.Err()
}

func (r *pgClientRepo) Update(ctx context.Context, client *model.Client) error {
	err := r.pool.QueryRow(ctx,
		`UPDATE clients SET name=$2, password_hash=$3, updated_at=NOW() WHERE email=$1 RETURNING updated_at`,
		client.Email, client.Name, client.Password,
	).Scan(&client.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return pgx.ErrNoRows
		}
		return fmt.Errorf("update client: %w", err)
	}
	return nil
}

func (r *pgClientRepo) AddBalance(ctx context.Context, email string, amount decimal.Decimal) (decimal.Decimal, error) {
	var balance decimal.Decimal
	err := r.pool.QueryRow(ctx,
		`UPDATE clients SET balance = balance + $2, updated_at = NOW() WHERE email = $1 RETURNING balance`,
		email, amount,
	).Scan(&balance)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return decimal.Zero, pgx.ErrNoRows
		}
		return decimal.Zero, fmt.Errorf("add balance: %w", err)
	}
	return balance, nil
}

func (r *pgClientRepo) Delete(ctx context.Context, email string) error {
	ct, err := r.pool.Exec(ctx, `DELETE FROM clients WHERE email = $1`, email)
	if err != nil {
		return fmt.Errorf("delete client: %w", classify(err))
	}
	if ct.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}
