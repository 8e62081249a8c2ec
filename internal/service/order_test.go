package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flicky/go-bookstore-api/internal/model"
	"github.com/flicky/go-bookstore-api/internal/session"
)

type orderFixture struct {
	svc       *OrderService
	books     *mockBookRepo
	clients   *mockClientRepo
	employees *mockEmployeeRepo
	orders    *mockOrderRepo
	statuses  *mockStatusRepo
	audit     *mockAuditRepo
	carts     *session.MemoryCartStore
	publisher *recordingPublisher
}

func newOrderFixture(t *testing.T) *orderFixture {
	t.Helper()
	f := &orderFixture{
		books:     newMockBookRepo(),
		clients:   newMockClientRepo(),
		employees: newMockEmployeeRepo(),
		statuses:  newMockStatusRepo(),
		audit:     &mockAuditRepo{},
		carts:     session.NewMemoryCartStore(),
		publisher: &recordingPublisher{},
	}
	f.orders = newMockOrderRepo(f.books, f.statuses)
	require.NoError(t, f.clients.Create(context.Background(), &model.Client{User: model.User{Email: clientCaller.Email}}))
	f.svc = NewOrderService(f.orders, f.statuses, f.audit, f.employees, f.carts,
		NewIdentityResolver(f.clients, f.employees), f.publisher, discardLogger())
	return f
}

func (f *orderFixture) fillCart(t *testing.T, sessionID string, cart model.Cart) {
	t.Helper()
	require.NoError(t, f.carts.Save(context.Background(), sessionID, cart))
}

func TestOrderService_Submit(t *testing.T) {
	f := newOrderFixture(t)
	f.books.add("Dune", "19.99")
	f.books.add("Emma", "5.00")
	f.employees.add("first@shop.com")
	f.employees.add("second@shop.com")
	f.fillCart(t, clientCaller.SessionID, model.Cart{"Emma": 1, "Dune": 2})

	order, err := f.svc.Submit(context.Background(), clientCaller)
	require.NoError(t, err)

	assert.Equal(t, clientCaller.Email, order.ClientEmail)
	assert.Equal(t, "first@shop.com", order.EmployeeEmail)
	assert.Equal(t, model.OrderStatusPending, order.Status)
	assert.Equal(t, "44.98", order.TotalPrice.String())
	require.Len(t, order.Items, 2)
	assert.Equal(t, model.BookItem{BookName: "Dune", Quantity: 2}, order.Items[0])
	assert.Equal(t, model.BookItem{BookName: "Emma", Quantity: 1}, order.Items[1])

	cart, err := f.carts.Load(context.Background(), clientCaller.SessionID)
	require.NoError(t, err)
	assert.Nil(t, cart)

	require.Len(t, f.publisher.events, 1)
	assert.Equal(t, order.ID, f.publisher.events[0].OrderID)
	assert.Equal(t, model.OrderStatusPending, f.publisher.events[0].Status)
}

func TestOrderService_Submit_EmptyCart(t *testing.T) {
	f := newOrderFixture(t)
	f.employees.add("first@shop.com")

	_, err := f.svc.Submit(context.Background(), clientCaller)
	assert.ErrorIs(t, err, ErrEmptyCart)

	f.fillCart(t, clientCaller.SessionID, model.Cart{})
	_, err = f.svc.Submit(context.Background(), clientCaller)
	assert.ErrorIs(t, err, ErrEmptyCart)

	assert.Empty(t, f.orders.orders)
	assert.Empty(t, f.publisher.events)
}

func TestOrderService_Submit_NoEmployeeThenRetry(t *testing.T) {
	f := newOrderFixture(t)
	f.books.add("Dune", "19.99")
	f.fillCart(t, clientCaller.SessionID, model.Cart{"Dune": 1})

	_, err := f.svc.Submit(context.Background(), clientCaller)
	assert.ErrorIs(t, err, ErrNoEmployeeAvailable)
	assert.Empty(t, f.orders.orders)

	cart, _ := f.carts.Load(context.Background(), clientCaller.SessionID)
	assert.Equal(t, model.Cart{"Dune": 1}, cart)

	f.employees.add("late@shop.com")
	order, err := f.svc.Submit(context.Background(), clientCaller)
	require.NoError(t, err)
	assert.Equal(t, "late@shop.com", order.EmployeeEmail)
}

func TestOrderService_Submit_PersistenceFailureKeepsCart(t *testing.T) {
	f := newOrderFixture(t)
	f.books.add("Dune", "19.99")
	f.employees.add("first@shop.com")
	f.fillCart(t, clientCaller.SessionID, model.Cart{"Dune": 3})
	f.orders.createErr = errors.New("connection reset")

	_, err := f.svc.Submit(context.Background(), clientCaller)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "connection reset")

	cart, _ := f.carts.Load(context.Background(), clientCaller.SessionID)
	assert.Equal(t, model.Cart{"Dune": 3}, cart)
	assert.Empty(t, f.publisher.events)
}

func TestOrderService_Submit_DeletedBookRejected(t *testing.T) {
	f := newOrderFixture(t)
	f.employees.add("first@shop.com")
	f.fillCart(t, clientCaller.SessionID, model.Cart{"Gone": 1})

	_, err := f.svc.Submit(context.Background(), clientCaller)
	assert.ErrorIs(t, err, ErrOrderRejected)
	assert.ErrorIs(t, err, ErrInvalidInput)

	cart, _ := f.carts.Load(context.Background(), clientCaller.SessionID)
	assert.Equal(t, model.Cart{"Gone": 1}, cart)
}

func TestOrderService_Submit_PublishFailureIsNotFatal(t *testing.T) {
	f := newOrderFixture(t)
	f.books.add("Dune", "19.99")
	f.employees.add("first@shop.com")
	f.fillCart(t, clientCaller.SessionID, model.Cart{"Dune": 1})
	f.publisher.err = errors.New("broker down")

	order, err := f.svc.Submit(context.Background(), clientCaller)
	require.NoError(t, err)
	assert.Contains(t, f.orders.orders, order.ID)
}

func TestOrderService_Submit_EmployeeForbidden(t *testing.T) {
	f := newOrderFixture(t)
	_, err := f.svc.Submit(context.Background(), employeeCaller)
	assert.ErrorIs(t, err, ErrForbidden)
}

func (f *orderFixture) seedOrder(client, employee string, at time.Time) uuid.UUID {
	id := uuid.New()
	f.orders.orders[id] = &model.Order{ID: id, ClientEmail: client, EmployeeEmail: employee, OrderDate: at, Status: model.OrderStatusPending}
	f.statuses.records[id] = &model.OrderStatusRecord{OrderID: id, Status: model.OrderStatusPending}
	return id
}

func TestOrderService_List_ClientSeesOwnOrders(t *testing.T) {
	f := newOrderFixture(t)
	now := time.Now()
	older := f.seedOrder(clientCaller.Email, "first@shop.com", now.Add(-time.Hour))
	newer := f.seedOrder(clientCaller.Email, "first@shop.com", now)
	f.seedOrder("other@example.com", "first@shop.com", now)

	page, err := f.svc.List(context.Background(), clientCaller, "", "", model.PageRequest{})
	require.NoError(t, err)
	assert.Equal(t, 2, page.Total)
	require.Len(t, page.Items, 2)
	assert.Equal(t, newer, page.Items[0].ID)
	assert.Equal(t, older, page.Items[1].ID)
	assert.Equal(t, 1, page.Page)
	assert.Equal(t, 20, page.Size)
}

func TestOrderService_List_ClientCannotSeeOthers(t *testing.T) {
	f := newOrderFixture(t)
	f.seedOrder("other@example.com", "first@shop.com", time.Now())

	_, err := f.svc.List(context.Background(), clientCaller, "other@example.com", "", model.PageRequest{})
	assert.ErrorIs(t, err, ErrForbidden)

	_, err = f.svc.List(context.Background(), clientCaller, "ghost@example.com", "", model.PageRequest{})
	assert.ErrorIs(t, err, ErrForbidden, "forbidden wins over not found")
}

func TestOrderService_List_EmployeeByTarget(t *testing.T) {
	f := newOrderFixture(t)
	f.employees.add(employeeCaller.Email)
	f.employees.add("second@shop.com")
	now := time.Now()
	f.seedOrder(clientCaller.Email, "second@shop.com", now)
	f.seedOrder("other@example.com", employeeCaller.Email, now)
	f.seedOrder("other@example.com", "second@shop.com", now)

	byClient, err := f.svc.List(context.Background(), employeeCaller, clientCaller.Email, "", model.PageRequest{})
	require.NoError(t, err)
	assert.Equal(t, 1, byClient.Total)

	byEmployee, err := f.svc.List(context.Background(), employeeCaller, "second@shop.com", "", model.PageRequest{})
	require.NoError(t, err)
	assert.Equal(t, 2, byEmployee.Total)

	all, err := f.svc.List(context.Background(), employeeCaller, "", "", model.PageRequest{})
	require.NoError(t, err)
	assert.Equal(t, 3, all.Total)

	keyword, err := f.svc.List(context.Background(), employeeCaller, "", "other@", model.PageRequest{})
	require.NoError(t, err)
	assert.Equal(t, 2, keyword.Total)

	_, err = f.svc.List(context.Background(), employeeCaller, "ghost@example.com", "", model.PageRequest{})
	assert.ErrorIs(t, err, ErrUserNotFound)

	_, err = f.svc.List(context.Background(), employeeCaller, "second@shop.com", "other@", model.PageRequest{})
	assert.ErrorIs(t, err, ErrMixedFilters)
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestOrderService_List_Paging(t *testing.T) {
	f := newOrderFixture(t)
	base := time.Now()
	for i := 0; i < 5; i++ {
		f.seedOrder(clientCaller.Email, "first@shop.com", base.Add(time.Duration(i)*time.Minute))
	}

	page, err := f.svc.List(context.Background(), clientCaller, "", "", model.PageRequest{Page: 2, Size: 2})
	require.NoError(t, err)
	assert.Equal(t, 5, page.Total)
	assert.Len(t, page.Items, 2)
	assert.Equal(t, 2, page.Page)
}

func TestOrderService_Get(t *testing.T) {
	f := newOrderFixture(t)
	own := f.seedOrder(clientCaller.Email, "first@shop.com", time.Now())
	foreign := f.seedOrder("other@example.com", "first@shop.com", time.Now())

	order, err := f.svc.Get(context.Background(), clientCaller, own)
	require.NoError(t, err)
	assert.Equal(t, own, order.ID)

	_, err = f.svc.Get(context.Background(), clientCaller, foreign)
	assert.ErrorIs(t, err, ErrForbidden)

	_, err = f.svc.Get(context.Background(), employeeCaller, foreign)
	assert.NoError(t, err)

	_, err = f.svc.Get(context.Background(), employeeCaller, uuid.New())
	assert.ErrorIs(t, err, ErrOrderNotFound)
}

func TestOrderService_ConfirmAndCancel(t *testing.T) {
	f := newOrderFixture(t)
	id := f.seedOrder(clientCaller.Email, employeeCaller.Email, time.Now())

	rec, err := f.svc.Confirm(context.Background(), employeeCaller, id)
	require.NoError(t, err)
	assert.Equal(t, model.OrderStatusConfirmed, rec.Status)
	assert.Equal(t, employeeCaller.Email, rec.ChangedBy)

	_, err = f.svc.Cancel(context.Background(), employeeCaller, id)
	assert.ErrorIs(t, err, ErrOrderNotPending)
	assert.Equal(t, model.OrderStatusConfirmed, f.statuses.records[id].Status)

	require.Len(t, f.publisher.events, 1)
	assert.Equal(t, model.OrderStatusConfirmed, f.publisher.events[0].Status)
	assert.Equal(t, employeeCaller.Email, f.publisher.events[0].Actor)
}

func TestOrderService_CancelTwice(t *testing.T) {
	f := newOrderFixture(t)
	id := f.seedOrder(clientCaller.Email, employeeCaller.Email, time.Now())

	_, err := f.svc.Cancel(context.Background(), employeeCaller, id)
	require.NoError(t, err)

	_, err = f.svc.Cancel(context.Background(), employeeCaller, id)
	assert.ErrorIs(t, err, ErrOrderNotPending)
	assert.Equal(t, model.OrderStatusCancelled, f.statuses.records[id].Status)
}

func TestOrderService_Transition_Errors(t *testing.T) {
	f := newOrderFixture(t)
	id := f.seedOrder(clientCaller.Email, employeeCaller.Email, time.Now())

	_, err := f.svc.Confirm(context.Background(), clientCaller, id)
	assert.ErrorIs(t, err, ErrForbidden)
	assert.Equal(t, model.OrderStatusPending, f.statuses.records[id].Status)

	_, err = f.svc.Confirm(context.Background(), employeeCaller, uuid.New())
	assert.ErrorIs(t, err, ErrOrderNotFound)
}

func TestOrderService_History(t *testing.T) {
	f := newOrderFixture(t)
	id := f.seedOrder(clientCaller.Email, employeeCaller.Email, time.Now())
	f.audit.events = []model.OrderEvent{
		{EventID: uuid.New(), OrderID: id, Status: model.OrderStatusPending, Actor: clientCaller.Email},
		{EventID: uuid.New(), OrderID: uuid.New(), Status: model.OrderStatusPending},
		{EventID: uuid.New(), OrderID: id, Status: model.OrderStatusConfirmed, Actor: employeeCaller.Email},
	}

	events, err := f.svc.History(context.Background(), employeeCaller, id)
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, model.OrderStatusPending, events[0].Status)
	assert.Equal(t, model.OrderStatusConfirmed, events[1].Status)

	_, err = f.svc.History(context.Background(), clientCaller, id)
	assert.ErrorIs(t, err, ErrForbidden)

	_, err = f.svc.History(context.Background(), employeeCaller, uuid.New())
	assert.ErrorIs(t, err, ErrOrderNotFound)
}
