package model

import (
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Role string

const (
	RoleClient   Role = "client"
	RoleEmployee Role = "employee"
)

// Caller is the authenticated identity behind a request.
type Caller struct {
	Email     string
	Role      Role
	SessionID string
}

type User struct {
	ID        int64
	Name      string
	Email     string
	Password  string
	CreatedAt time.Time
	UpdatedAt time.Time
}

type Client struct {
	User
	Balance decimal.Decimal
}

type Employee struct {
	User
	Phone     string
	BirthDate time.Time
}

// BlockStatus gates client login independently of the client row.
type BlockStatus struct {
	ClientEmail string
	Blocked     bool
	UpdatedAt   time.Time
}

type Book struct {
	Name            string
	Genre           string
	Author          string
	AgeGroup        string
	Price           decimal.Decimal
	PublicationDate time.Time
	Pages           int
	Language        string
	Characteristics string
	Description     string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// MaxCartQuantity caps the summed quantity of one book in a cart.
const MaxCartQuantity = 10000

// Cart maps a book name to the requested quantity. A nil Cart means no cart
// has been created for the session yet.
type Cart map[string]int

// Put adds quantity to whatever is already stored for name.
func (c Cart) Put(name string, quantity int) {
	c[name] += quantity
}

func (c Cart) Remove(name string) {
	delete(c, name)
}

// Names returns the cart keys in ascending order.
func (c Cart) Names() []string {
	names := make([]string, 0, len(c))
	for name := range c {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

type DisplayItem struct {
	Book     Book
	Quantity int
	Subtotal decimal.Decimal
}

type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "PENDING"
	OrderStatusConfirmed OrderStatus = "CONFIRMED"
	OrderStatusCancelled OrderStatus = "CANCELLED"
)

func (s OrderStatus) Terminal() bool {
	return s == OrderStatusConfirmed || s == OrderStatusCancelled
}

type Order struct {
	ID            uuid.UUID
	ClientEmail   string
	EmployeeEmail string
	OrderDate     time.Time
	TotalPrice    decimal.Decimal
	Items         []BookItem
	Status        OrderStatus
}

type BookItem struct {
	ID       int64
	OrderID  uuid.UUID
	BookName string
	Quantity int
}

// OrderStatusRecord is the one-to-one status row kept beside an order.
type OrderStatusRecord struct {
	OrderID   uuid.UUID
	Status    OrderStatus
	ChangedBy string
	UpdatedAt time.Time
}

type OrderEvent struct {
	EventID   uuid.UUID   `json:"event_id"`
	OrderID   uuid.UUID   `json:"order_id"`
	Status    OrderStatus `json:"status"`
	Actor     string      `json:"actor"`
	CreatedAt time.Time   `json:"created_at"`
}

type SortDirection string

const (
	SortAsc  SortDirection = "asc"
	SortDesc SortDirection = "desc"
)

type PageRequest struct {
	Page      int
	Size      int
	Sort      string
	Direction SortDirection
}

func (p PageRequest) Offset() int {
	if p.Page < 1 {
		return 0
	}
	return (p.Page - 1) * p.Size
}

type Page[T any] struct {
	Items []T
	Total int
	Page  int
	Size  int
}
