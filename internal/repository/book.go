package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/flicky/go-bookstore-api/internal/model"
)

type BookRepository interface {
	Create(ctx context.Context, book *model.Book) error
	GetByName(ctx context.Context, name string) (*model.Book, error)
	ExistsByName(ctx context.Context, name string) (bool, error)
	Search(ctx context.Context, query string, page model.PageRequest) ([]model.Book, int, error)
	Update(ctx context.Context, name string, book *model.Book) error
	Delete(ctx context.Context, name string) error
}

type pgBookRepo struct{ pool *pgxpool.Pool }

func NewBookRepository(pool *pgxpool.Pool) BookRepository {
	return &pgBookRepo{pool: pool}
}

const bookColumns = `name, genre, author, age_group, price, publication_date, pages, language,
	characteristics, description, created_at, updated_at`

var bookSorts = map[string]string{
	"name":             "name",
	"author":           "author",
	"price":            "price",
	"publication_date": "publication_date",
}

func scanBook(row pgx.Row, b *model.Book) error {
	return row.Scan(
		&b.Name, &b.Genre, &b.Author, &b.AgeGroup, &b.Price, &b.PublicationDate, &b.Pages,
		&b.Language, &b.Characteristics, &b.Description, &b.CreatedAt, &b.UpdatedAt,
	)
}

func (r *pgBookRepo) Create(ctx context.Context, book *model.Book) error {
	query := `INSERT INTO books (name, genre, author, age_group, price, publication_date, pages, language,
			  characteristics, description, created_at, updated_at)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, NOW(), NOW()) RETURNING created_at, updated_at`
	err := r.pool.QueryRow(ctx, query,
		book.Name, book.Genre, book.Author, book.AgeGroup, book.Price, book.PublicationDate,
		book.Pages, book.Language, book.Characteristics, book.Description,
	).Scan(&book.CreatedAt, &book.UpdatedAt)
	if err != nil {
		return fmt.Errorf("create book: %w", classify(err))
	}
	return nil
}

func (r *pgBookRepo) GetByName(ctx context.Context, name string) (*model.Book, error) {
	b := &model.Book{}
	err := scanBook(r.pool.QueryRow(ctx, `SELECT `+bookColumns+` FROM books WHERE name = $1`, name), b)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get book: %w", err)
	}
	return b, nil
}

func (r *pgBookRepo) ExistsByName(ctx context.Context, name string) (bool, error) {
	var exists bool
	if err := r.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM books WHERE name = $1)`, name).Scan(&exists); err != nil {
		return false, fmt.Errorf("book exists: %w", err)
	}
	return exists, nil
}

func (r *pgBookRepo) Search(ctx context.Context, search string, page model.PageRequest) ([]model.Book, int, error) {
	var total int
	countQ := `SELECT COUNT(*) FROM books WHERE ($1 = '' OR name ILIKE '%' || $1 || '%' OR author ILIKE '%' || $1 || '%')`
	if err := r.pool.QueryRow(ctx, countQ, search).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count books: %w", err)
	}

	query := fmt.Sprintf(`SELECT %s FROM books
		WHERE ($1 = '' OR name ILIKE '%%' || $1 || '%%' OR author ILIKE '%%' || $1 || '%%')
		%s LIMIT $2 OFFSET $3`, bookColumns, orderBy(page, bookSorts, "name", model.SortAsc))

	rows, err := r.pool.Query(ctx, query, search, page.Size, page.Offset())
	if err != nil {
		return nil, 0, fmt.Errorf("search books: %w", err)
	}
	defer rows.Close()

	var books []model.Book
	for rows.Next() {
		var b model.Book
		if err := scanBook(rows, &b); err != nil {
			return nil, 0, fmt.Errorf("scan book: %w", err)
		}
		books = append(books, b)
	}
	return books, total, rows.Err()
}

// Update replaces the row identified by name; the new name may differ.
func (r *pgBookRepo) Update(ctx context.Context, name string, book *model.Book) error {
	query := `UPDATE books SET name=$2, genre=$3, author=$4, age_group=$5, price=$6, publication_date=$7,
			  pages=$8, language=$9, characteristics=$10, description=$11, updated_at=NOW()
			  WHERE name=$1 RETURNING created_at, updated_at`
	err := r.pool.QueryRow(ctx, query,
		name, book.Name, book.Genre, book.Author, book.AgeGroup, book.Price, book.PublicationDate,
		book.Pages, book.Language, book.Characteristics, book.Description,
	).Scan(&book.CreatedAt, &book.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return pgx.ErrNoRows
		}
		return fmt.Errorf("update book: %w", classify(err))
	}
	return nil
}

func (r *pgBookRepo) Delete(ctx context.Context, name string) error {
	ct, err := r.pool.Exec(ctx, `DELETE FROM books WHERE name = $1`, name)
	if err != nil {
		return fmt.Errorf("delete book: %w", classify(err))
	}
	if ct.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}
