package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/flicky/go-bookstore-api/internal/dto"
	"github.com/flicky/go-bookstore-api/internal/middleware"
	"github.com/flicky/go-bookstore-api/internal/model"
)

type BookService interface {
	FindByName(ctx context.Context, name string) (*model.Book, error)
	Search(ctx context.Context, query string, page model.PageRequest) (*model.Page[model.Book], error)
	Create(ctx context.Context, caller model.Caller, book model.Book) (*model.Book, error)
	Update(ctx context.Context, caller model.Caller, name string, book model.Book) (*model.Book, error)
	Delete(ctx context.Context, caller model.Caller, name string) error
}

type BookHandler struct {
	bookService BookService
}

func NewBookHandler(bookService BookService) *BookHandler {
	return &BookHandler{bookService: bookService}
}

func (h *BookHandler) List(c *gin.Context) {
	var q dto.PageQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		writeBindError(c, err)
		return
	}

	page, err := h.bookService.Search(c.Request.Context(), q.Search, q.ToModel())
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewPageResponse(page, dto.NewBookResponse))
}

func (h *BookHandler) Get(c *gin.Context) {
	book, err := h.bookService.FindByName(c.Request.Context(), c.Param("name"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewBookResponse(*book))
}

func (h *BookHandler) Create(c *gin.Context) {
	var req dto.BookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeBindError(c, err)
		return
	}

	book, err := h.bookService.Create(c.Request.Context(), middleware.GetCaller(c), req.ToModel())
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.NewBookResponse(*book))
}

func (h *BookHandler) Update(c *gin.Context) {
	var req dto.BookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeBindError(c, err)
		return
	}

	book, err := h.bookService.Update(c.Request.Context(), middleware.GetCaller(c), c.Param("name"), req.ToModel())
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewBookResponse(*book))
}

func (h *BookHandler) Delete(c *gin.Context) {
	if err := h.bookService.Delete(c.Request.Context(), middleware.GetCaller(c), c.Param("name")); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
