package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/flicky/go-bookstore-api/internal/model"
	"github.com/flicky/go-bookstore-api/internal/repository"
	"github.com/flicky/go-bookstore-api/internal/session"
)

// EventPublisher announces order lifecycle changes. Delivery is best effort.
type EventPublisher interface {
	Publish(ctx context.Context, event model.OrderEvent) error
}

type OrderService struct {
	orderRepo    repository.OrderRepository
	statusRepo   repository.OrderStatusRepository
	auditRepo    repository.AuditRepository
	employeeRepo repository.EmployeeRepository
	carts        session.CartStore
	identities   *IdentityResolver
	publisher    EventPublisher
	log          *slog.Logger
	now          func() time.Time
}

func NewOrderService(
	orderRepo repository.OrderRepository,
	statusRepo repository.OrderStatusRepository,
	auditRepo repository.AuditRepository,
	employeeRepo repository.EmployeeRepository,
	carts session.CartStore,
	identities *IdentityResolver,
	publisher EventPublisher,
	log *slog.Logger,
) *OrderService {
	return &OrderService{
		orderRepo:    orderRepo,
		statusRepo:   statusRepo,
		auditRepo:    auditRepo,
		employeeRepo: employeeRepo,
		carts:        carts,
		identities:   identities,
		publisher:    publisher,
		log:          log,
		now:          time.Now,
	}
}

// Submit turns the caller's cart into a PENDING order. The cart is kept on
// every failure so the client can retry, and deleted only after the order is
// stored.
func (s *OrderService) Submit(ctx context.Context, caller model.Caller) (*model.Order, error) {
	if err := Authorize(caller, ActionPlaceOrder, ""); err != nil {
		return nil, err
	}

	cart, err := s.carts.Load(ctx, caller.SessionID)
	if err != nil {
		return nil, fmt.Errorf("get cart: %w", err)
	}
	if len(cart) == 0 {
		return nil, ErrEmptyCart
	}

	// Lines are taken from the cart as is; book existence is only enforced by
	// the book_items foreign key.
	items := make([]model.BookItem, 0, len(cart))
	for _, name := range cart.Names() {
		items = append(items, model.BookItem{BookName: name, Quantity: cart[name]})
	}

	handler, err := s.pickHandler(ctx)
	if err != nil {
		return nil, err
	}

	order := &model.Order{
		ClientEmail:   caller.Email,
		EmployeeEmail: handler.Email,
		OrderDate:     s.now().UTC(),
		Items:         items,
	}
	if err := s.orderRepo.Create(ctx, order); err != nil {
		if errors.Is(err, repository.ErrMissingReference) {
			return nil, fmt.Errorf("%w: %v", ErrOrderRejected, err)
		}
		return nil, fmt.Errorf("create order: %w", err)
	}

	log := s.log.With("order_id", order.ID, "client", order.ClientEmail)
	s.publish(ctx, log, order.ID, model.OrderStatusPending, caller.Email)

	if err := s.carts.Delete(ctx, caller.SessionID); err != nil {
		log.Error("clear cart after order", "error", err)
	}
	log.Info("order submitted", "handler", order.EmployeeEmail, "total", order.TotalPrice.String())
	return order, nil
}

// pickHandler takes the first employee of the default listing. Orders need a
// handling employee at creation time; this is not load balancing.
func (s *OrderService) pickHandler(ctx context.Context) (*model.Employee, error) {
	employees, _, err := s.employeeRepo.List(ctx, model.PageRequest{Page: 1, Size: 1})
	if err != nil {
		return nil, fmt.Errorf("list employees: %w", err)
	}
	if len(employees) == 0 {
		return nil, ErrNoEmployeeAvailable
	}
	return &employees[0], nil
}

// List returns the orders the caller may see. Clients only get their own;
// employees get everything, or the orders of the client or employee behind
// targetEmail.
func (s *OrderService) List(ctx context.Context, caller model.Caller, targetEmail, keyword string, page model.PageRequest) (*model.Page[model.Order], error) {
	if err := Authorize(caller, ActionListOrders, targetEmail); err != nil {
		return nil, err
	}
	if targetEmail != "" && keyword != "" {
		return nil, ErrMixedFilters
	}
	page = normalizePage(page, "order_date", model.SortDesc)

	var (
		orders []model.Order
		total  int
		err    error
	)
	switch {
	case caller.Role == model.RoleClient:
		orders, total, err = s.orderRepo.ListByClientEmail(ctx, caller.Email, page)
	case targetEmail == "":
		orders, total, err = s.orderRepo.Search(ctx, keyword, page)
	default:
		identity, rerr := s.identities.Resolve(ctx, targetEmail)
		if rerr != nil {
			return nil, rerr
		}
		switch identity.Kind {
		case IdentityClient:
			orders, total, err = s.orderRepo.ListByClientEmail(ctx, targetEmail, page)
		case IdentityEmployee:
			orders, total, err = s.orderRepo.ListByEmployeeEmail(ctx, targetEmail, page)
		default:
			return nil, ErrUserNotFound
		}
	}
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	return newPage(orders, total, page), nil
}

func (s *OrderService) Get(ctx context.Context, caller model.Caller, id uuid.UUID) (*model.Order, error) {
	if err := Authorize(caller, ActionViewOrder, ""); err != nil {
		return nil, err
	}
	order, err := s.orderRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get order: %w", err)
	}
	if order == nil {
		return nil, ErrOrderNotFound
	}
	if err := Authorize(caller, ActionViewOrder, order.ClientEmail); err != nil {
		return nil, err
	}
	return order, nil
}

func (s *OrderService) Confirm(ctx context.Context, caller model.Caller, id uuid.UUID) (*model.OrderStatusRecord, error) {
	return s.transition(ctx, caller, id, model.OrderStatusConfirmed)
}

func (s *OrderService) Cancel(ctx context.Context, caller model.Caller, id uuid.UUID) (*model.OrderStatusRecord, error) {
	return s.transition(ctx, caller, id, model.OrderStatusCancelled)
}

func (s *OrderService) transition(ctx context.Context, caller model.Caller, id uuid.UUID, to model.OrderStatus) (*model.OrderStatusRecord, error) {
	if err := Authorize(caller, ActionChangeOrderStatus, ""); err != nil {
		return nil, err
	}

	rec, err := s.statusRepo.Transition(ctx, id, to, caller.Email)
	if err != nil {
		return nil, fmt.Errorf("change order status: %w", err)
	}
	if rec == nil {
		current, err := s.statusRepo.Get(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("get order status: %w", err)
		}
		if current == nil {
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("%w: order is %s", ErrOrderNotPending, current.Status)
	}

	log := s.log.With("order_id", id, "employee", caller.Email)
	s.publish(ctx, log, id, to, caller.Email)
	log.Info("order status changed", "status", to)
	return rec, nil
}

// History lists the recorded status events of an order, oldest first.
func (s *OrderService) History(ctx context.Context, caller model.Caller, id uuid.UUID) ([]model.OrderEvent, error) {
	if err := Authorize(caller, ActionViewOrderHistory, ""); err != nil {
		return nil, err
	}
	status, err := s.statusRepo.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get order status: %w", err)
	}
	if status == nil {
		return nil, ErrOrderNotFound
	}
	events, err := s.auditRepo.ListByOrder(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("order history: %w", err)
	}
	return events, nil
}

func (s *OrderService) publish(ctx context.Context, log *slog.Logger, orderID uuid.UUID, status model.OrderStatus, actor string) {
	if s.publisher == nil {
		return
	}
	event := model.OrderEvent{
		EventID:   uuid.New(),
		OrderID:   orderID,
		Status:    status,
		Actor:     actor,
		CreatedAt: s.now().UTC(),
	}
	if err := s.publisher.Publish(ctx, event); err != nil {
		log.Error("publish order event", "error", err, "status", status)
	}
}
