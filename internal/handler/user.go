package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/flicky/go-bookstore-api/internal/dto"
	"github.com/flicky/go-bookstore-api/internal/middleware"
	"github.com/flicky/go-bookstore-api/internal/model"
	"github.com/flicky/go-bookstore-api/internal/service"
)

type UserService interface {
	ListClients(ctx context.Context, caller model.Caller, search string, page model.PageRequest) (*model.Page[service.ClientView], error)
	GetClient(ctx context.Context, caller model.Caller, email string) (*service.ClientView, error)
	DeleteClient(ctx context.Context, caller model.Caller, email string) error
	SetBlocked(ctx context.Context, caller model.Caller, email string, blocked bool) error
	ListEmployees(ctx context.Context, caller model.Caller, page model.PageRequest) (*model.Page[model.Employee], error)
	CreateEmployee(ctx context.Context, caller model.Caller, req dto.CreateEmployeeRequest) (*model.Employee, error)
	DeleteEmployee(ctx context.Context, caller model.Caller, email string) error
}

// UserHandler serves the employee-only client and employee administration.
type UserHandler struct {
	userService UserService
}

func NewUserHandler(userService UserService) *UserHandler {
	return &UserHandler{userService: userService}
}

func (h *UserHandler) ListClients(c *gin.Context) {
	var q dto.PageQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		writeBindError(c, err)
		return
	}

	page, err := h.userService.ListClients(c.Request.Context(), middleware.GetCaller(c), q.Search, q.ToModel())
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewPageResponse(page, clientResponse))
}

func (h *UserHandler) GetClient(c *gin.Context) {
	view, err := h.userService.GetClient(c.Request.Context(), middleware.GetCaller(c), c.Param("email"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, clientResponse(*view))
}

func (h *UserHandler) DeleteClient(c *gin.Context) {
	if err := h.userService.DeleteClient(c.Request.Context(), middleware.GetCaller(c), c.Param("email")); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *UserHandler) BlockClient(c *gin.Context) {
	h.setBlocked(c, true)
}

func (h *UserHandler) UnblockClient(c *gin.Context) {
	h.setBlocked(c, false)
}

func (h *UserHandler) setBlocked(c *gin.Context, blocked bool) {
	email := c.Param("email")
	if err := h.userService.SetBlocked(c.Request.Context(), middleware.GetCaller(c), email, blocked); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"email": email, "blocked": blocked})
}

func (h *UserHandler) ListEmployees(c *gin.Context) {
	var q dto.PageQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		writeBindError(c, err)
		return
	}

	page, err := h.userService.ListEmployees(c.Request.Context(), middleware.GetCaller(c), q.ToModel())
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewPageResponse(page, dto.NewEmployeeResponse))
}

func (h *UserHandler) CreateEmployee(c *gin.Context) {
	var req dto.CreateEmployeeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeBindError(c, err)
		return
	}

	employee, err := h.userService.CreateEmployee(c.Request.Context(), middleware.GetCaller(c), req)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.NewEmployeeResponse(*employee))
}

func (h *UserHandler) DeleteEmployee(c *gin.Context) {
	if err := h.userService.DeleteEmployee(c.Request.Context(), middleware.GetCaller(c), c.Param("email")); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func clientResponse(v service.ClientView) dto.ClientResponse {
	return dto.ClientResponse{
		ID:      v.Client.ID,
		Name:    v.Client.Name,
		Email:   v.Client.Email,
		Balance: v.Client.Balance,
		Blocked: v.Blocked,
	}
}
