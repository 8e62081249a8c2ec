package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/flicky/go-bookstore-api/internal/dto"
	"github.com/flicky/go-bookstore-api/internal/middleware"
	"github.com/flicky/go-bookstore-api/internal/model"
)

type CartService interface {
	Add(ctx context.Context, caller model.Caller, bookName string, quantity int) error
	Remove(ctx context.Context, caller model.Caller, bookName string) error
	View(ctx context.Context, caller model.Caller) ([]model.DisplayItem, decimal.Decimal, error)
	Clear(ctx context.Context, caller model.Caller) error
}

type CartHandler struct {
	svc CartService
}

func NewCartHandler(svc CartService) *CartHandler {
	return &CartHandler{svc: svc}
}

func (h *CartHandler) GetCart(c *gin.Context) {
	h.writeCart(c, http.StatusOK)
}

func (h *CartHandler) AddItem(c *gin.Context) {
	var req dto.AddCartItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeBindError(c, err)
		return
	}
	if err := h.svc.Add(c.Request.Context(), middleware.GetCaller(c), req.BookName, req.Quantity); err != nil {
		writeError(c, err)
		return
	}
	h.writeCart(c, http.StatusCreated)
}

func (h *CartHandler) DeleteItem(c *gin.Context) {
	if err := h.svc.Remove(c.Request.Context(), middleware.GetCaller(c), c.Param("name")); err != nil {
		writeError(c, err)
		return
	}
	h.writeCart(c, http.StatusOK)
}

func (h *CartHandler) Clear(c *gin.Context) {
	if err := h.svc.Clear(c.Request.Context(), middleware.GetCaller(c)); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *CartHandler) writeCart(c *gin.Context, status int) {
	items, total, err := h.svc.View(c.Request.Context(), middleware.GetCaller(c))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(status, dto.NewCartResponse(items, total))
}
