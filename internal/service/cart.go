package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/shopspring/decimal"

	"github.com/flicky/go-bookstore-api/internal/model"
	"github.com/flicky/go-bookstore-api/internal/session"
)

// BookFinder resolves a catalog entry by name, failing with ErrBookNotFound.
type BookFinder interface {
	FindByName(ctx context.Context, name string) (*model.Book, error)
}

type CartService struct {
	carts session.CartStore
	books BookFinder
	log   *slog.Logger
}

func NewCartService(carts session.CartStore, books BookFinder, log *slog.Logger) *CartService {
	return &CartService{carts: carts, books: books, log: log}
}

// AddToCart merges quantity into cart after checking that the book exists.
// The summed quantity of a book never exceeds model.MaxCartQuantity.
func (s *CartService) AddToCart(ctx context.Context, cart model.Cart, bookName string, quantity int) error {
	if cart == nil {
		return ErrNoCart
	}
	if quantity <= 0 || quantity > model.MaxCartQuantity-cart[bookName] {
		return ErrBadQuantity
	}
	if _, err := s.books.FindByName(ctx, bookName); err != nil {
		return err
	}
	cart.Put(bookName, quantity)
	return nil
}

// ListDisplayItems resolves every entry against the catalog, sorted by book
// name. Entries whose book is gone are skipped.
func (s *CartService) ListDisplayItems(ctx context.Context, cart model.Cart) ([]model.DisplayItem, error) {
	items := make([]model.DisplayItem, 0, len(cart))
	for _, name := range cart.Names() {
		quantity := cart[name]
		book, err := s.books.FindByName(ctx, name)
		if err != nil {
			if errors.Is(err, ErrBookNotFound) {
				s.log.Warn("cart entry references missing book", "book", name, "quantity", quantity)
				continue
			}
			return nil, fmt.Errorf("resolve cart entry %q: %w", name, err)
		}
		items = append(items, model.DisplayItem{
			Book:     *book,
			Quantity: quantity,
			Subtotal: book.Price.Mul(decimal.NewFromInt(int64(quantity))),
		})
	}
	return items, nil
}

func TotalCost(items []model.DisplayItem) decimal.Decimal {
	total := decimal.Zero
	for _, item := range items {
		total = total.Add(item.Subtotal)
	}
	return total
}

// Add puts quantity of a book into the caller's session cart.
func (s *CartService) Add(ctx context.Context, caller model.Caller, bookName string, quantity int) error {
	if err := Authorize(caller, ActionUseCart, ""); err != nil {
		return err
	}
	cart, err := session.GetOrCreate(ctx, s.carts, caller.SessionID)
	if err != nil {
		return fmt.Errorf("get cart: %w", err)
	}
	if err := s.AddToCart(ctx, cart, bookName, quantity); err != nil {
		return err
	}
	return s.carts.Save(ctx, caller.SessionID, cart)
}

// Remove drops a book from the caller's cart; missing carts and entries are
// left alone.
func (s *CartService) Remove(ctx context.Context, caller model.Caller, bookName string) error {
	if err := Authorize(caller, ActionUseCart, ""); err != nil {
		return err
	}
	cart, err := s.carts.Load(ctx, caller.SessionID)
	if err != nil {
		return fmt.Errorf("get cart: %w", err)
	}
	if cart == nil {
		return nil
	}
	cart.Remove(bookName)
	return s.carts.Save(ctx, caller.SessionID, cart)
}

func (s *CartService) View(ctx context.Context, caller model.Caller) ([]model.DisplayItem, decimal.Decimal, error) {
	if err := Authorize(caller, ActionUseCart, ""); err != nil {
		return nil, decimal.Zero, err
	}
	cart, err := s.carts.Load(ctx, caller.SessionID)
	if err != nil {
		return nil, decimal.Zero, fmt.Errorf("get cart: %w", err)
	}
	items, err := s.ListDisplayItems(ctx, cart)
	if err != nil {
		return nil, decimal.Zero, err
	}
	return items, TotalCost(items), nil
}

func (s *CartService) Clear(ctx context.Context, caller model.Caller) error {
	if err := Authorize(caller, ActionUseCart, ""); err != nil {
		return err
	}
	return s.carts.Delete(ctx, caller.SessionID)
}
