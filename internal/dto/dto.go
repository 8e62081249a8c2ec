package dto

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/flicky/go-bookstore-api/internal/model"
)

// --- Auth ---

type RegisterRequest struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type AuthResponse struct {
	Token string `json:"token"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

// --- Books ---

type BookRequest struct {
	Name            string          `json:"name" binding:"required,max=255"`
	Genre           string          `json:"genre" binding:"required"`
	Author          string          `json:"author" binding:"required"`
	AgeGroup        string          `json:"age_group" binding:"required"`
	Price           decimal.Decimal `json:"price" binding:"required,gt=0"`
	PublicationDate Date            `json:"publication_date" binding:"required,notfuture"`
	Pages           int             `json:"pages" binding:"required,min=1"`
	Language        string          `json:"language" binding:"required"`
	Characteristics string          `json:"characteristics"`
	Description     string          `json:"description"`
}

func (r BookRequest) ToModel() model.Book {
	return model.Book{
		Name:            r.Name,
		Genre:           r.Genre,
		Author:          r.Author,
		AgeGroup:        r.AgeGroup,
		Price:           r.Price,
		PublicationDate: r.PublicationDate.Time,
		Pages:           r.Pages,
		Language:        r.Language,
		Characteristics: r.Characteristics,
		Description:     r.Description,
	}
}

type BookResponse struct {
	Name            string          `json:"name"`
	Genre           string          `json:"genre"`
	Author          string          `json:"author"`
	AgeGroup        string          `json:"age_group"`
	Price           decimal.Decimal `json:"price"`
	PublicationDate Date            `json:"publication_date"`
	Pages           int             `json:"pages"`
	Language        string          `json:"language"`
	Characteristics string          `json:"characteristics"`
	Description     string          `json:"description"`
}

func NewBookResponse(b model.Book) BookResponse {
	return BookResponse{
		Name:            b.Name,
		Genre:           b.Genre,
		Author:          b.Author,
		AgeGroup:        b.AgeGroup,
		Price:           b.Price,
		PublicationDate: Date{b.PublicationDate},
		Pages:           b.Pages,
		Language:        b.Language,
		Characteristics: b.Characteristics,
		Description:     b.Description,
	}
}

// --- Paging ---

type PageQuery struct {
	Page      int    `form:"page,default=1" binding:"min=1"`
	Size      int    `form:"size,default=20" binding:"min=1,max=100"`
	Sort      string `form:"sort"`
	Direction string `form:"direction" binding:"omitempty,oneof=asc desc"`
	Search    string `form:"search"`
}

func (q PageQuery) ToModel() model.PageRequest {
	return model.PageRequest{
		Page:      q.Page,
		Size:      q.Size,
		Sort:      q.Sort,
		Direction: model.SortDirection(q.Direction),
	}
}

type PageResponse[T any] struct {
	Items []T `json:"items"`
	Total int `json:"total"`
	Page  int `json:"page"`
	Size  int `json:"size"`
}

func NewPageResponse[S, T any](p *model.Page[S], convert func(S) T) PageResponse[T] {
	items := make([]T, 0, len(p.Items))
	for _, s := range p.Items {
		items = append(items, convert(s))
	}
	return PageResponse[T]{Items: items, Total: p.Total, Page: p.Page, Size: p.Size}
}

// --- Cart ---

type AddCartItemRequest struct {
	BookName string `json:"book_name" binding:"required"`
	Quantity int    `json:"quantity" binding:"required,min=1,max=10000"`
}

type CartItemResponse struct {
	Book     BookResponse    `json:"book"`
	Quantity int             `json:"quantity"`
	Subtotal decimal.Decimal `json:"subtotal"`
}

type CartResponse struct {
	Items []CartItemResponse `json:"items"`
	Total decimal.Decimal    `json:"total"`
}

func NewCartResponse(items []model.DisplayItem, total decimal.Decimal) CartResponse {
	resp := CartResponse{Items: make([]CartItemResponse, 0, len(items)), Total: total}
	for _, item := range items {
		resp.Items = append(resp.Items, CartItemResponse{
			Book:     NewBookResponse(item.Book),
			Quantity: item.Quantity,
			Subtotal: item.Subtotal,
		})
	}
	return resp
}

// --- Orders ---

type OrderQuery struct {
	PageQuery
	Email string `form:"email" binding:"omitempty,email"`
}

type OrderResponse struct {
	ID            uuid.UUID           `json:"id"`
	ClientEmail   string              `json:"client_email"`
	EmployeeEmail string              `json:"employee_email"`
	OrderDate     time.Time           `json:"order_date"`
	TotalPrice    decimal.Decimal     `json:"total_price"`
	Status        model.OrderStatus   `json:"status"`
	Items         []OrderItemResponse `json:"items"`
}

type OrderItemResponse struct {
	BookName string `json:"book_name"`
	Quantity int    `json:"quantity"`
}

func NewOrderResponse(o model.Order) OrderResponse {
	items := make([]OrderItemResponse, 0, len(o.Items))
	for _, item := range o.Items {
		items = append(items, OrderItemResponse{BookName: item.BookName, Quantity: item.Quantity})
	}
	return OrderResponse{
		ID:            o.ID,
		ClientEmail:   o.ClientEmail,
		EmployeeEmail: o.EmployeeEmail,
		OrderDate:     o.OrderDate,
		TotalPrice:    o.TotalPrice,
		Status:        o.Status,
		Items:         items,
	}
}

type OrderStatusResponse struct {
	OrderID   uuid.UUID         `json:"order_id"`
	Status    model.OrderStatus `json:"status"`
	ChangedBy string            `json:"changed_by"`
	UpdatedAt time.Time         `json:"updated_at"`
}

func NewOrderStatusResponse(r model.OrderStatusRecord) OrderStatusResponse {
	return OrderStatusResponse{OrderID: r.OrderID, Status: r.Status, ChangedBy: r.ChangedBy, UpdatedAt: r.UpdatedAt}
}

type OrderEventResponse struct {
	Status    model.OrderStatus `json:"status"`
	Actor     string            `json:"actor"`
	CreatedAt time.Time         `json:"created_at"`
}

// --- Profiles & users ---

type UpdateProfileRequest struct {
	Name     *string `json:"name" binding:"omitempty,min=1"`
	Password *string `json:"password" binding:"omitempty,min=8"`
	Phone    *string `json:"phone" binding:"omitempty,e164"`
}

type TopUpRequest struct {
	Amount decimal.Decimal `json:"amount" binding:"required,gt=0"`
}

type CreateEmployeeRequest struct {
	Name      string `json:"name" binding:"required"`
	Email     string `json:"email" binding:"required,email"`
	Password  string `json:"password" binding:"required,min=8"`
	Phone     string `json:"phone" binding:"required,e164"`
	BirthDate Date   `json:"birth_date" binding:"required,notfuture"`
}

type ProfileResponse struct {
	Email     string           `json:"email"`
	Name      string           `json:"name"`
	Role      model.Role       `json:"role"`
	Balance   *decimal.Decimal `json:"balance,omitempty"`
	Phone     string           `json:"phone,omitempty"`
	BirthDate *Date            `json:"birth_date,omitempty"`
}

func NewClientProfile(c model.Client) ProfileResponse {
	balance := c.Balance
	return ProfileResponse{Email: c.Email, Name: c.Name, Role: model.RoleClient, Balance: &balance}
}

func NewEmployeeProfile(e model.Employee) ProfileResponse {
	return ProfileResponse{
		Email: e.Email, Name: e.Name, Role: model.RoleEmployee,
		Phone: e.Phone, BirthDate: &Date{e.BirthDate},
	}
}

type ClientResponse struct {
	ID      int64           `json:"id"`
	Name    string          `json:"name"`
	Email   string          `json:"email"`
	Balance decimal.Decimal `json:"balance"`
	Blocked bool            `json:"blocked"`
}

type EmployeeResponse struct {
	ID        int64  `json:"id"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
	BirthDate Date   `json:"birth_date"`
}

func NewEmployeeResponse(e model.Employee) EmployeeResponse {
	return EmployeeResponse{ID: e.ID, Name: e.Name, Email: e.Email, Phone: e.Phone, BirthDate: Date{e.BirthDate}}
}
