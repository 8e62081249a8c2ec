package service

import (
	"context"
	"io"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/flicky/go-bookstore-api/internal/model"
	"github.com/flicky/go-bookstore-api/internal/repository"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func paginate[T any](all []T, page model.PageRequest) []T {
	start := page.Offset()
	if start >= len(all) {
		return nil
	}
	end := start + page.Size
	if page.Size <= 0 || end > len(all) {
		end = len(all)
	}
	return all[start:end]
}

// --- books ---

type mockBookRepo struct {
	books map[string]*model.Book
	calls int
}

func newMockBookRepo() *mockBookRepo {
	return &mockBookRepo{books: make(map[string]*model.Book)}
}

func (m *mockBookRepo) add(name, price string) *model.Book {
	b := &model.Book{
		Name: name, Author: "Author of " + name, Price: decimal.RequireFromString(price),
		Pages: 100, PublicationDate: time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC),
	}
	m.books[name] = b
	return b
}

func (m *mockBookRepo) Create(_ context.Context, b *model.Book) error {
	if _, ok := m.books[b.Name]; ok {
		return repository.ErrDuplicate
	}
	b.CreatedAt = time.Now()
	b.UpdatedAt = b.CreatedAt
	m.books[b.Name] = b
	return nil
}

func (m *mockBookRepo) GetByName(_ context.Context, name string) (*model.Book, error) {
	m.calls++
	b, ok := m.books[name]
	if !ok {
		return nil, nil
	}
	cp := *b
	return &cp, nil
}

func (m *mockBookRepo) ExistsByName(_ context.Context, name string) (bool, error) {
	_, ok := m.books[name]
	return ok, nil
}

func (m *mockBookRepo) Search(_ context.Context, query string, page model.PageRequest) ([]model.Book, int, error) {
	var all []model.Book
	for _, b := range m.books {
		if query == "" || strings.Contains(b.Name, query) || strings.Contains(b.Author, query) {
			all = append(all, *b)
		}
	}
	sort.Slice(all, func(i, j int) bool { return all[i].Name < all[j].Name })
	return paginate(all, page), len(all), nil
}

func (m *mockBookRepo) Update(_ context.Context, name string, b *model.Book) error {
	if _, ok := m.books[name]; !ok {
		return pgx.ErrNoRows
	}
	if _, taken := m.books[b.Name]; taken && b.Name != name {
		return repository.ErrDuplicate
	}
	delete(m.books, name)
	m.books[b.Name] = b
	return nil
}

func (m *mockBookRepo) Delete(_ context.Context, name string) error {
	if _, ok := m.books[name]; !ok {
		return pgx.ErrNoRows
	}
	delete(m.books, name)
	return nil
}

// --- clients ---

type mockClientRepo struct {
	clients map[string]*model.Client
	nextID  int64
}

func newMockClientRepo() *mockClientRepo {
	return &mockClientRepo{clients: make(map[string]*model.Client)}
}

func (m *mockClientRepo) Create(_ context.Context, c *model.Client) error {
	if _, ok := m.clients[c.Email]; ok {
		return repository.ErrDuplicate
	}
	m.nextID++
	c.ID = m.nextID
	m.clients[c.Email] = c
	return nil
}

func (m *mockClientRepo) GetByEmail(_ context.Context, email string) (*model.Client, error) {
	c, ok := m.clients[email]
	if !ok {
		return nil, nil
	}
	cp := *c
	return &cp, nil
}

func (m *mockClientRepo) ExistsByEmail(_ context.Context, email string) (bool, error) {
	_, ok := m.clients[email]
	return ok, nil
}

func (m *mockClientRepo) List(_ context.Context, search string, page model.PageRequest) ([]model.Client, int, error) {
	var all []model.Client
	for _, c := range m.clients {
		if search == "" || strings.Contains(c.Email, search) || strings.Contains(c.Name, search) {
			all = append(all, *c)
		}
	}
	sort.Slice(all, func(i, j int) bool { return all[i].ID < all[j].ID })
	return paginate(all, page), len(all), nil
}

func (m *mockClientRepo) Update(_ context.Context, c *model.Client) error {
	if _, ok := m.clients[c.Email]; !ok {
		return pgx.ErrNoRows
	}
	cp := *c
	m.clients[c.Email] = &cp
	return nil
}

func (m *mockClientRepo) AddBalance(_ context.Context, email string, amount decimal.Decimal) (decimal.Decimal, error) {
	c, ok := m.clients[email]
	if !ok {
		return decimal.Zero, pgx.ErrNoRows
	}
	c.Balance = c.Balance.Add(amount)
	return c.Balance, nil
}

func (m *mockClientRepo) Delete(_ context.Context, email string) error {
	if _, ok := m.clients[email]; !ok {
		return pgx.ErrNoRows
	}
	delete(m.clients, email)
	return nil
}

// --- employees ---

type mockEmployeeRepo struct {
	employees map[string]*model.Employee
	nextID    int64
	inUse     map[string]bool
}

func newMockEmployeeRepo() *mockEmployeeRepo {
	return &mockEmployeeRepo{employees: make(map[string]*model.Employee), inUse: make(map[string]bool)}
}

func (m *mockEmployeeRepo) add(email string) *model.Employee {
	e := &model.Employee{User: model.User{Name: email, Email: email}}
	_ = m.Create(context.Background(), e)
	return e
}

func (m *mockEmployeeRepo) Create(_ context.Context, e *model.Employee) error {
	if _, ok := m.employees[e.Email]; ok {
		return repository.ErrDuplicate
	}
	m.nextID++
	e.ID = m.nextID
	m.employees[e.Email] = e
	return nil
}

func (m *mockEmployeeRepo) GetByEmail(_ context.Context, email string) (*model.Employee, error) {
	e, ok := m.employees[email]
	if !ok {
		return nil, nil
	}
	cp := *e
	return &cp, nil
}

func (m *mockEmployeeRepo) ExistsByEmail(_ context.Context, email string) (bool, error) {
	_, ok := m.employees[email]
	return ok, nil
}

func (m *mockEmployeeRepo) List(_ context.Context, page model.PageRequest) ([]model.Employee, int, error) {
	var all []model.Employee
	for _, e := range m.employees {
		all = append(all, *e)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].ID < all[j].ID })
	return paginate(all, page), len(all), nil
}

func (m *mockEmployeeRepo) Update(_ context.Context, e *model.Employee) error {
	if _, ok := m.employees[e.Email]; !ok {
		return pgx.ErrNoRows
	}
	cp := *e
	m.employees[e.Email] = &cp
	return nil
}

func (m *mockEmployeeRepo) Delete(_ context.Context, email string) error {
	if _, ok := m.employees[email]; !ok {
		return pgx.ErrNoRows
	}
	if m.inUse[email] {
		return repository.ErrMissingReference
	}
	delete(m.employees, email)
	return nil
}

// --- block statuses ---

type mockBlockRepo struct {
	statuses map[string]bool
}

func newMockBlockRepo() *mockBlockRepo {
	return &mockBlockRepo{statuses: make(map[string]bool)}
}

func (m *mockBlockRepo) Get(_ context.Context, email string) (*model.BlockStatus, error) {
	blocked, ok := m.statuses[email]
	if !ok {
		return nil, nil
	}
	return &model.BlockStatus{ClientEmail: email, Blocked: blocked}, nil
}

func (m *mockBlockRepo) Set(_ context.Context, email string, blocked bool) error {
	m.statuses[email] = blocked
	return nil
}

func (m *mockBlockRepo) Delete(_ context.Context, email string) error {
	delete(m.statuses, email)
	return nil
}

// --- orders and statuses ---

type mockStatusRepo struct {
	records map[uuid.UUID]*model.OrderStatusRecord
}

func newMockStatusRepo() *mockStatusRepo {
	return &mockStatusRepo{records: make(map[uuid.UUID]*model.OrderStatusRecord)}
}

func (m *mockStatusRepo) Get(_ context.Context, id uuid.UUID) (*model.OrderStatusRecord, error) {
	rec, ok := m.records[id]
	if !ok {
		return nil, nil
	}
	cp := *rec
	return &cp, nil
}

func (m *mockStatusRepo) Transition(_ context.Context, id uuid.UUID, status model.OrderStatus, actor string) (*model.OrderStatusRecord, error) {
	rec, ok := m.records[id]
	if !ok || rec.Status != model.OrderStatusPending {
		return nil, nil
	}
	rec.Status = status
	rec.ChangedBy = actor
	rec.UpdatedAt = time.Now()
	cp := *rec
	return &cp, nil
}

type mockOrderRepo struct {
	orders    map[uuid.UUID]*model.Order
	books     *mockBookRepo
	statuses  *mockStatusRepo
	createErr error
}

func newMockOrderRepo(books *mockBookRepo, statuses *mockStatusRepo) *mockOrderRepo {
	return &mockOrderRepo{orders: make(map[uuid.UUID]*model.Order), books: books, statuses: statuses}
}

func (m *mockOrderRepo) Create(_ context.Context, o *model.Order) error {
	if m.createErr != nil {
		return m.createErr
	}
	total := decimal.Zero
	for _, item := range o.Items {
		b, ok := m.books.books[item.BookName]
		if !ok {
			return repository.ErrMissingReference
		}
		total = total.Add(b.Price.Mul(decimal.NewFromInt(int64(item.Quantity))))
	}
	o.ID = uuid.New()
	o.TotalPrice = total
	o.Status = model.OrderStatusPending
	cp := *o
	m.orders[o.ID] = &cp
	m.statuses.records[o.ID] = &model.OrderStatusRecord{OrderID: o.ID, Status: model.OrderStatusPending}
	return nil
}

func (m *mockOrderRepo) GetByID(_ context.Context, id uuid.UUID) (*model.Order, error) {
	o, ok := m.orders[id]
	if !ok {
		return nil, nil
	}
	cp := *o
	if rec, ok := m.statuses.records[id]; ok {
		cp.Status = rec.Status
	}
	return &cp, nil
}

func (m *mockOrderRepo) filter(page model.PageRequest, keep func(*model.Order) bool) ([]model.Order, int, error) {
	var all []model.Order
	for _, o := range m.orders {
		if keep(o) {
			all = append(all, *o)
		}
	}
	sort.Slice(all, func(i, j int) bool { return all[i].OrderDate.After(all[j].OrderDate) })
	return paginate(all, page), len(all), nil
}

func (m *mockOrderRepo) ListByClientEmail(_ context.Context, email string, page model.PageRequest) ([]model.Order, int, error) {
	return m.filter(page, func(o *model.Order) bool { return o.ClientEmail == email })
}

func (m *mockOrderRepo) ListByEmployeeEmail(_ context.Context, email string, page model.PageRequest) ([]model.Order, int, error) {
	return m.filter(page, func(o *model.Order) bool { return o.EmployeeEmail == email })
}

func (m *mockOrderRepo) Search(_ context.Context, keyword string, page model.PageRequest) ([]model.Order, int, error) {
	return m.filter(page, func(o *model.Order) bool {
		return keyword == "" || strings.Contains(o.ClientEmail, keyword) || strings.Contains(o.EmployeeEmail, keyword)
	})
}

type mockAuditRepo struct {
	events []model.OrderEvent
}

func (m *mockAuditRepo) Record(_ context.Context, e model.OrderEvent) error {
	m.events = append(m.events, e)
	return nil
}

func (m *mockAuditRepo) ListByOrder(_ context.Context, id uuid.UUID) ([]model.OrderEvent, error) {
	var out []model.OrderEvent
	for _, e := range m.events {
		if e.OrderID == id {
			out = append(out, e)
		}
	}
	return out, nil
}

type recordingPublisher struct {
	events []model.OrderEvent
	err    error
}

func (p *recordingPublisher) Publish(_ context.Context, e model.OrderEvent) error {
	if p.err != nil {
		return p.err
	}
	p.events = append(p.events, e)
	return nil
}
