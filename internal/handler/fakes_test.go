package handler

import (
	"context"
	"sort"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/flicky/go-bookstore-api/internal/dto"
	"github.com/flicky/go-bookstore-api/internal/model"
	"github.com/flicky/go-bookstore-api/internal/service"
)

// The fakes embed the handler interfaces; methods a test does not exercise
// stay nil and panic if called.

type fakeAuthService struct {
	AuthService
	err error
}

func (f *fakeAuthService) Register(_ context.Context, req dto.RegisterRequest) (*dto.AuthResponse, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &dto.AuthResponse{Token: "token", Email: req.Email, Role: string(model.RoleClient)}, nil
}

func (f *fakeAuthService) Login(_ context.Context, req dto.LoginRequest) (*dto.AuthResponse, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &dto.AuthResponse{Token: "token", Email: req.Email, Role: string(model.RoleClient)}, nil
}

func (f *fakeAuthService) Logout(context.Context, model.Caller) error { return f.err }

type fakeBookService struct {
	BookService
	books map[string]model.Book
}

func newFakeBookService() *fakeBookService {
	return &fakeBookService{books: make(map[string]model.Book)}
}

func (f *fakeBookService) FindByName(_ context.Context, name string) (*model.Book, error) {
	b, ok := f.books[name]
	if !ok {
		return nil, service.ErrBookNotFound
	}
	return &b, nil
}

func (f *fakeBookService) Search(_ context.Context, _ string, page model.PageRequest) (*model.Page[model.Book], error) {
	items := make([]model.Book, 0, len(f.books))
	for _, b := range f.books {
		items = append(items, b)
	}
	sort.Slice(items, func(i, j int) bool { return items[i].Name < items[j].Name })
	return &model.Page[model.Book]{Items: items, Total: len(items), Page: page.Page, Size: page.Size}, nil
}

func (f *fakeBookService) Create(_ context.Context, caller model.Caller, book model.Book) (*model.Book, error) {
	if err := service.Authorize(caller, service.ActionManageCatalog, ""); err != nil {
		return nil, err
	}
	if _, ok := f.books[book.Name]; ok {
		return nil, service.ErrBookAlreadyExists
	}
	f.books[book.Name] = book
	return &book, nil
}

func (f *fakeBookService) Delete(_ context.Context, caller model.Caller, name string) error {
	if err := service.Authorize(caller, service.ActionManageCatalog, ""); err != nil {
		return err
	}
	if _, ok := f.books[name]; !ok {
		return service.ErrBookNotFound
	}
	delete(f.books, name)
	return nil
}

type listCall struct {
	caller  model.Caller
	target  string
	keyword string
	page    model.PageRequest
}

type fakeOrderService struct {
	OrderService
	order    *model.Order
	record   *model.OrderStatusRecord
	events   []model.OrderEvent
	err      error
	lastList listCall
}

func (f *fakeOrderService) Submit(context.Context, model.Caller) (*model.Order, error) {
	return f.order, f.err
}

func (f *fakeOrderService) List(_ context.Context, caller model.Caller, target, keyword string, page model.PageRequest) (*model.Page[model.Order], error) {
	f.lastList = listCall{caller: caller, target: target, keyword: keyword, page: page}
	if f.err != nil {
		return nil, f.err
	}
	return &model.Page[model.Order]{Items: []model.Order{*f.order}, Total: 1, Page: page.Page, Size: page.Size}, nil
}

func (f *fakeOrderService) Get(context.Context, model.Caller, uuid.UUID) (*model.Order, error) {
	return f.order, f.err
}

func (f *fakeOrderService) Confirm(context.Context, model.Caller, uuid.UUID) (*model.OrderStatusRecord, error) {
	return f.record, f.err
}

func (f *fakeOrderService) Cancel(context.Context, model.Caller, uuid.UUID) (*model.OrderStatusRecord, error) {
	return f.record, f.err
}

func (f *fakeOrderService) History(context.Context, model.Caller, uuid.UUID) ([]model.OrderEvent, error) {
	return f.events, f.err
}

type fakeProfileService struct {
	ProfileService
	identity service.Identity
	balance  decimal.Decimal
}

func (f *fakeProfileService) Get(context.Context, model.Caller) (service.Identity, error) {
	return f.identity, nil
}

func (f *fakeProfileService) TopUp(_ context.Context, caller model.Caller, amount decimal.Decimal) (decimal.Decimal, error) {
	if err := service.Authorize(caller, service.ActionTopUpBalance, ""); err != nil {
		return decimal.Zero, err
	}
	f.balance = f.balance.Add(amount)
	return f.balance, nil
}

type fakeUserService struct {
	UserService
	clients map[string]bool
}

func (f *fakeUserService) SetBlocked(_ context.Context, caller model.Caller, email string, blocked bool) error {
	if err := service.Authorize(caller, service.ActionManageUsers, ""); err != nil {
		return err
	}
	if _, ok := f.clients[email]; !ok {
		return service.ErrClientNotFound
	}
	f.clients[email] = blocked
	return nil
}
