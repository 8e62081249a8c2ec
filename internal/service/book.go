package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"

	"github.com/flicky/go-bookstore-api/internal/model"
	"github.com/flicky/go-bookstore-api/internal/repository"
)

const bookCacheTTL = 60 * time.Second

// BookService is the catalog: the source of truth for book existence and
// price. Lookups by name go through a short-lived Redis cache when one is
// configured.
type BookService struct {
	bookRepo    repository.BookRepository
	redisClient *redis.Client
	now         func() time.Time
}

func NewBookService(bookRepo repository.BookRepository, redisClient *redis.Client) *BookService {
	return &BookService{bookRepo: bookRepo, redisClient: redisClient, now: time.Now}
}

func bookCacheKey(name string) string {
	return "book:" + name
}

// FindByName returns ErrBookNotFound when the catalog has no such book.
func (s *BookService) FindByName(ctx context.Context, name string) (*model.Book, error) {
	if s.redisClient != nil {
		if cached, err := s.redisClient.Get(ctx, bookCacheKey(name)).Bytes(); err == nil {
			var book model.Book
			if json.Unmarshal(cached, &book) == nil {
				return &book, nil
			}
		}
	}

	book, err := s.bookRepo.GetByName(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("get book: %w", err)
	}
	if book == nil {
		return nil, ErrBookNotFound
	}

	if s.redisClient != nil {
		if data, err := json.Marshal(book); err == nil {
			s.redisClient.Set(ctx, bookCacheKey(name), data, bookCacheTTL)
		}
	}
	return book, nil
}

func (s *BookService) ExistsByName(ctx context.Context, name string) (bool, error) {
	return s.bookRepo.ExistsByName(ctx, name)
}

// Search matches query against book names and authors.
func (s *BookService) Search(ctx context.Context, query string, page model.PageRequest) (*model.Page[model.Book], error) {
	page = normalizePage(page, "name", model.SortAsc)
	books, total, err := s.bookRepo.Search(ctx, query, page)
	if err != nil {
		return nil, fmt.Errorf("search books: %w", err)
	}
	return newPage(books, total, page), nil
}

func (s *BookService) Create(ctx context.Context, caller model.Caller, book model.Book) (*model.Book, error) {
	if err := Authorize(caller, ActionManageCatalog, ""); err != nil {
		return nil, err
	}
	if err := s.validate(book); err != nil {
		return nil, err
	}

	exists, err := s.bookRepo.ExistsByName(ctx, book.Name)
	if err != nil {
		return nil, fmt.Errorf("check book: %w", err)
	}
	if exists {
		return nil, ErrBookAlreadyExists
	}

	if err := s.bookRepo.Create(ctx, &book); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrBookAlreadyExists
		}
		return nil, fmt.Errorf("create book: %w", err)
	}
	return &book, nil
}

// Update replaces the book stored under name. Renaming onto an existing name
// fails with ErrBookAlreadyExists.
func (s *BookService) Update(ctx context.Context, caller model.Caller, name string, book model.Book) (*model.Book, error) {
	if err := Authorize(caller, ActionManageCatalog, ""); err != nil {
		return nil, err
	}
	if err := s.validate(book); err != nil {
		return nil, err
	}

	if err := s.bookRepo.Update(ctx, name, &book); err != nil {
		switch {
		case errors.Is(err, pgx.ErrNoRows):
			return nil, ErrBookNotFound
		case errors.Is(err, repository.ErrDuplicate):
			return nil, ErrBookAlreadyExists
		}
		return nil, fmt.Errorf("update book: %w", err)
	}

	s.invalidateCache(ctx, name, book.Name)
	return &book, nil
}

func (s *BookService) Delete(ctx context.Context, caller model.Caller, name string) error {
	if err := Authorize(caller, ActionManageCatalog, ""); err != nil {
		return err
	}
	if err := s.bookRepo.Delete(ctx, name); err != nil {
		switch {
		case errors.Is(err, pgx.ErrNoRows):
			return ErrBookNotFound
		case errors.Is(err, repository.ErrMissingReference):
			return ErrBookInUse
		}
		return fmt.Errorf("delete book: %w", err)
	}
	s.invalidateCache(ctx, name)
	return nil
}

func (s *BookService) validate(book model.Book) error {
	if !book.Price.IsPositive() || !isCents(book.Price) {
		return ErrBadPrice
	}
	if book.Pages <= 0 {
		return ErrBadPages
	}
	if book.PublicationDate.After(s.now()) {
		return ErrFutureDate
	}
	return nil
}

// isCents reports whether d fits the NUMERIC(12, 2) money columns without
// rounding.
func isCents(d decimal.Decimal) bool {
	return d.Equal(d.Round(2))
}

func (s *BookService) invalidateCache(ctx context.Context, names ...string) {
	if s.redisClient == nil {
		return
	}
	keys := make([]string, 0, len(names))
	for _, name := range names {
		keys = append(keys, bookCacheKey(name))
	}
	s.redisClient.Del(ctx, keys...)
}
