package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/flicky/go-bookstore-api/internal/dto"
	"github.com/flicky/go-bookstore-api/internal/middleware"
	"github.com/flicky/go-bookstore-api/internal/model"
)

type OrderService interface {
	Submit(ctx context.Context, caller model.Caller) (*model.Order, error)
	List(ctx context.Context, caller model.Caller, targetEmail, keyword string, page model.PageRequest) (*model.Page[model.Order], error)
	Get(ctx context.Context, caller model.Caller, id uuid.UUID) (*model.Order, error)
	Confirm(ctx context.Context, caller model.Caller, id uuid.UUID) (*model.OrderStatusRecord, error)
	Cancel(ctx context.Context, caller model.Caller, id uuid.UUID) (*model.OrderStatusRecord, error)
	History(ctx context.Context, caller model.Caller, id uuid.UUID) ([]model.OrderEvent, error)
}

type OrderHandler struct {
	orderService OrderService
}

func NewOrderHandler(orderService OrderService) *OrderHandler {
	return &OrderHandler{orderService: orderService}
}

func (h *OrderHandler) CreateOrder(c *gin.Context) {
	order, err := h.orderService.Submit(c.Request.Context(), middleware.GetCaller(c))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, dto.NewOrderResponse(*order))
}

// ListOrders serves ?email= for the orders of one client or employee and
// ?search= for a keyword over all orders (employees only).
func (h *OrderHandler) ListOrders(c *gin.Context) {
	var q dto.OrderQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		writeBindError(c, err)
		return
	}

	page, err := h.orderService.List(c.Request.Context(), middleware.GetCaller(c), q.Email, q.Search, q.ToModel())
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewPageResponse(page, dto.NewOrderResponse))
}

func (h *OrderHandler) GetOrder(c *gin.Context) {
	id, ok := orderID(c)
	if !ok {
		return
	}

	order, err := h.orderService.Get(c.Request.Context(), middleware.GetCaller(c), id)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewOrderResponse(*order))
}

func (h *OrderHandler) Confirm(c *gin.Context) {
	h.changeStatus(c, h.orderService.Confirm)
}

func (h *OrderHandler) Cancel(c *gin.Context) {
	h.changeStatus(c, h.orderService.Cancel)
}

func (h *OrderHandler) changeStatus(c *gin.Context, change func(context.Context, model.Caller, uuid.UUID) (*model.OrderStatusRecord, error)) {
	id, ok := orderID(c)
	if !ok {
		return
	}

	rec, err := change(c.Request.Context(), middleware.GetCaller(c), id)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewOrderStatusResponse(*rec))
}

func (h *OrderHandler) History(c *gin.Context) {
	id, ok := orderID(c)
	if !ok {
		return
	}

	events, err := h.orderService.History(c.Request.Context(), middleware.GetCaller(c), id)
	if err != nil {
		writeError(c, err)
		return
	}

	resp := make([]dto.OrderEventResponse, 0, len(events))
	for _, e := range events {
		resp = append(resp, dto.OrderEventResponse{Status: e.Status, Actor: e.Actor, CreatedAt: e.CreatedAt})
	}
	c.JSON(http.StatusOK, resp)
}

func orderID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid order ID"})
		return uuid.Nil, false
	}
	return id, true
}
