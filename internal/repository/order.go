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

type OrderRepository interface {
	Create(ctx context.Context, order *model.Order) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.Order, error)
	ListByClientEmail(ctx context.Context, email string, page model.PageRequest) ([]model.Order, int, error)
	ListByEmployeeEmail(ctx context.Context, email string, page model.PageRequest) ([]model.Order, int, error)
	Search(ctx context.Context, keyword string, page model.PageRequest) ([]model.Order, int, error)
}

type pgOrderRepo struct{ pool *pgxpool.Pool }

func NewOrderRepository(pool *pgxpool.Pool) OrderRepository {
	return &pgOrderRepo{pool: pool}
}

var orderSorts = map[string]string{
	"order_date":  "o.order_date",
	"total_price": "o.total_price",
	"status":      "s.status",
}

// Create stores the order, its lines and the initial PENDING status in one
// transaction. The total is priced from the books table at insert time.
func (r *pgOrderRepo) Create(ctx context.Context, order *model.Order) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	order.ID = uuid.New()
	_, err = tx.Exec(ctx,
		`INSERT INTO orders (id, client_email, employee_email, order_date, total_price)
		 VALUES ($1, $2, $3, $4, 0)`,
		order.ID, order.ClientEmail, order.EmployeeEmail, order.OrderDate,
	)
	if err != nil {
		return fmt.Errorf("insert order: %w", classify(err))
	}

	for i := range order.Items {
		order.Items[i].OrderID = order.ID
		err = tx.QueryRow(ctx,
			`INSERT INTO book_items (order_id, book_name, quantity) VALUES ($1, $2, $3) RETURNING id`,
			order.ID, order.Items[i].BookName, order.Items[i].Quantity,
		).Scan(&order.Items[i].ID)
		if err != nil {
			return fmt.Errorf("insert book item %q: %w", order.Items[i].BookName, classify(err))
		}
	}

	err = tx.QueryRow(ctx,
		`UPDATE orders SET total_price = (
			SELECT COALESCE(SUM(b.price * i.quantity), 0)
			FROM book_items i JOIN books b ON b.name = i.book_name
			WHERE i.order_id = $1
		 ) WHERE id = $1 RETURNING total_price`, order.ID,
	).Scan(&order.TotalPrice)
	if err != nil {
		return fmt.Errorf("price order: %w", err)
	}

	_, err = tx.Exec(ctx,
		`INSERT INTO order_statuses (order_id, status, changed_by, updated_at) VALUES ($1, $2, '', NOW())`,
		order.ID, model.OrderStatusPending,
	)
	if err != nil {
		return fmt.Errorf("insert order status: %w", err)
	}
	order.Status = model.OrderStatusPending

	return tx.Commit(ctx)
}

func (r *pgOrderRepo) GetByID(ctx context.Context, id uuid.UUID) (*model.Order, error) {
	order := &model.Order{}
	err := r.pool.QueryRow(ctx,
		`SELECT o.id, o.client_email, o.employee_email, o.order_date, o.total_price, s.status
		 FROM orders o JOIN order_statuses s ON s.order_id = o.id
		 WHERE o.id = $1`, id,
	).Scan(&order.ID, &order.ClientEmail, &order.EmployeeEmail, &order.OrderDate, &order.TotalPrice, &order.Status)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get order: %w", err)
	}

	orders := []model.Order{*order}
	if err := r.attachItems(ctx, orders); err != nil {
		return nil, err
	}
	return &orders[0], nil
}

func (r *pgOrderRepo) ListByClientEmail(ctx context.Context, email string, page model.PageRequest) ([]model.Order, int, error) {
	return r.list(ctx, `o.client_email = $1`, email, page)
}

func (r *pgOrderRepo) ListByEmployeeEmail(ctx context.Context, email string, page model.PageRequest) ([]model.Order, int, error) {
	return r.list(ctx, `o.employee_email = $1`, email, page)
}

// Search matches the keyword against client email, employee email and the
// names of ordered books. An empty keyword lists every order.
func (r *pgOrderRepo) Search(ctx context.Context, keyword string, page model.PageRequest) ([]model.Order, int, error) {
	where := `($1 = '' OR o.client_email ILIKE '%' || $1 || '%' OR o.employee_email ILIKE '%' || $1 || '%'
		OR EXISTS (SELECT 1 FROM book_items i WHERE i.order_id = o.id AND i.book_name ILIKE '%' || $1 || '%'))`
	return r.list(ctx, where, keyword, page)
}

func (r *pgOrderRepo) list(ctx context.Context, where string, arg string, page model.PageRequest) ([]model.Order, int, error) {
	var total int
	countQ := `SELECT COUNT(*) FROM orders o WHERE ` + where
	if err := r.pool.QueryRow(ctx, countQ, arg).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count orders: %w", err)
	}

	query := fmt.Sprintf(`SELECT o.id, o.client_email, o.employee_email, o.order_date, o.total_price, s.status
		FROM orders o JOIN order_statuses s ON s.order_id = o.id
		WHERE %s %s LIMIT $2 OFFSET $3`, where, orderBy(page, orderSorts, "order_date", model.SortDesc))

	rows, err := r.pool.Query(ctx, query, arg, page.Size, page.Offset())
	if err != nil {
		return nil, 0, fmt.Errorf("list orders: %w", err)
	}
	defer rows.Close()

	var orders []model.Order
	for rows.Next() {
		var o model.Order
		if err := rows.Scan(&o.ID, &o.ClientEmail, &o.EmployeeEmail, &o.OrderDate, &o.TotalPrice, &o.Status); err != nil {
			return nil, 0, fmt.Errorf("scan order: %w", err)
		}
		orders = append(orders, o)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("list orders: %w", err)
	}

	if err := r.attachItems(ctx, orders); err != nil {
		return nil, 0, err
	}
	return orders, total, nil
}

func (r *pgOrderRepo) attachItems(ctx context.Context, orders []model.Order) error {
	if len(orders) == 0 {
		return nil
	}
	ids := make([]uuid.UUID, len(orders))
	index := make(map[uuid.UUID]int, len(orders))
	for i, o := range orders {
		ids[i] = o.ID
		index[o.ID] = i
	}

	rows, err := r.pool.Query(ctx,
		`SELECT id, order_id, book_name, quantity FROM book_items WHERE order_id = ANY($1) ORDER BY id`, ids,
	)
	if err != nil {
		return fmt.Errorf("get book items: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var item model.BookItem
		if err := rows.Scan(&item.ID, &item.OrderID, &item.BookName, &item.Quantity); err != nil {
			return fmt.Errorf("scan book item: %w", err)
		}
		i := index[item.OrderID]
		orders[i].Items = append(orders[i].Items, item)
	}
	return rows.Err()
}
