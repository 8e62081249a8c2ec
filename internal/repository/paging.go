package repository

import (
	"errors"
	"fmt"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/flicky/go-bookstore-api/internal/model"
)

var (
	ErrDuplicate        = errors.New("duplicate key")
	ErrMissingReference = errors.New("referenced row does not exist")
)

// classify turns the Postgres constraint errors the services care about into
// repository sentinels and leaves everything else untouched.
func classify(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgerrcode.UniqueViolation:
			return fmt.Errorf("%w: %s", ErrDuplicate, pgErr.ConstraintName)
		case pgerrcode.ForeignKeyViolation:
			return fmt.Errorf("%w: %s", ErrMissingReference, pgErr.Detail)
		}
	}
	return err
}

// orderBy builds an ORDER BY fragment from a whitelist; unknown keys fall back
// to the default column.
func orderBy(p model.PageRequest, allowed map[string]string, defaultSort string, defaultDir model.SortDirection) string {
	column, ok := allowed[p.Sort]
	if !ok {
		column = allowed[defaultSort]
	}
	dir := p.Direction
	if dir != model.SortAsc && dir != model.SortDesc {
		dir = defaultDir
	}
	return fmt.Sprintf("ORDER BY %s %s", column, dir)
}
