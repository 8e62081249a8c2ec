package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/flicky/go-bookstore-api/internal/model"
)

type EmployeeRepository interface {
	Create(ctx context.Context, employee *model.Employee) error
	GetByEmail(ctx context.Context, email string) (*model.Employee, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	List(ctx context.Context, page model.PageRequest) ([]model.Employee, int, error)
	Update(ctx context.Context, employee *model.Employee) error
	Delete(ctx context.Context, email string) error
}

type pgEmployeeRepo struct{ pool *pgxpool.Pool }

func NewEmployeeRepository(pool *pgxpool.Pool) EmployeeRepository {
	return &pgEmployeeRepo{pool: pool}
}

var employeeSorts = map[string]string{
	"id":    "id",
	"name":  "name",
	"email": "email",
}

const employeeColumns = `id, name, email, password_hash, phone, birth_date, created_at, updated_at`

func scanEmployee(row pgx.Row, e *model.Employee) error {
	return row.Scan(&e.ID, &e.Name, &e.Email, &e.Password, &e.Phone, &e.BirthDate, &e.CreatedAt, &e.UpdatedAt)
}

func (r *pgEmployeeRepo) Create(ctx context.Context, employee *model.Employee) error {
	query := `INSERT INTO employees (name, email, password_hash, phone, birth_date, created_at, updated_at)
			  VALUES ($1, $2, $3, $4, $5, NOW(), NOW())
			  RETURNING id, created_at, updated_at`
	err := r.pool.QueryRow(ctx, query,
		employee.Name, employee.Email, employee.Password, employee.Phone, employee.BirthDate,
	).Scan(&employee.ID, &employee.CreatedAt, &employee.UpdatedAt)
	if err != nil {
		return fmt.Errorf("create employee: %w", classify(err))
	}
	return nil
}

func (r *pgEmployeeRepo) GetByEmail(ctx context.Context, email string) (*model.Employee, error) {
	e := &model.Employee{}
	err := scanEmployee(r.pool.QueryRow(ctx, `SELECT `+employeeColumns+` FROM employees WHERE email = $1`, email), e)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get employee by email: %w", err)
	}
	return e, nil
}

func (r *pgEmployeeRepo) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	var exists bool
	if err := r.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM employees WHERE email = $1)`, email).Scan(&exists); err != nil {
		return false, fmt.Errorf("employee exists: %w", err)
	}
	return exists, nil
}

// List pages employees; with the default page the first row is the lowest id,
// which is what order assembly relies on when it picks a handler.
func (r *pgEmployeeRepo) List(ctx context.Context, page model.PageRequest) ([]model.Employee, int, error) {
	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM employees`).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count employees: %w", err)
	}

	query := fmt.Sprintf(`SELECT %s FROM employees %s LIMIT $1 OFFSET $2`,
		employeeColumns, orderBy(page, employeeSorts, "id", model.SortAsc))
	rows, err := r.pool.Query(ctx, query, page.Size, page.Offset())
	if err != nil {
		return nil, 0, fmt.Errorf("list employees: %w", err)
	}
	defer rows.Close()

	var employees []model.Employee
	for rows.Next() {
		var e model.Employee
		if err := scanEmployee(rows, &e); err != nil {
			return nil, 0, fmt.Errorf("scan employee: %w", err)
		}
		employees = append(employees, e)
	}
	return employees, total, rows.Err()
}

func (r *pgEmployeeRepo) Update(ctx context.Context, employee *model.Employee) error {
	err := r.pool.QueryRow(ctx,
		`UPDATE employees SET name=$2, password_hash=$3, phone=$4, updated_at=NOW() WHERE email=$1 RETURNING updated_at`,
		employee.Email, employee.Name, employee.Password, employee.Phone,
	).Scan(&employee.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return pgx.ErrNoRows
		}
		return fmt.Errorf("update employee: %w", err)
	}
	return nil
}

func (r *pgEmployeeRepo) Delete(ctx context.Context, email string) error {
	ct, err := r.pool.Exec(ctx, `DELETE FROM employees WHERE email = $1`, email)
	if err != nil {
		return fmt.Errorf("delete employee: %w", classify(err))
	}
	if ct.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}
