package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/flicky/go-bookstore-api/internal/dto"
	"github.com/flicky/go-bookstore-api/internal/middleware"
	"github.com/flicky/go-bookstore-api/internal/model"
	"github.com/flicky/go-bookstore-api/internal/service"
)

type ProfileService interface {
	Get(ctx context.Context, caller model.Caller) (service.Identity, error)
	Update(ctx context.Context, caller model.Caller, req dto.UpdateProfileRequest) (service.Identity, error)
	TopUp(ctx context.Context, caller model.Caller, amount decimal.Decimal) (decimal.Decimal, error)
}

type ProfileHandler struct {
	profileService ProfileService
}

func NewProfileHandler(profileService ProfileService) *ProfileHandler {
	return &ProfileHandler{profileService: profileService}
}

func (h *ProfileHandler) Get(c *gin.Context) {
	identity, err := h.profileService.Get(c.Request.Context(), middleware.GetCaller(c))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, profileResponse(identity))
}

func (h *ProfileHandler) Update(c *gin.Context) {
	var req dto.UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeBindError(c, err)
		return
	}

	identity, err := h.profileService.Update(c.Request.Context(), middleware.GetCaller(c), req)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, profileResponse(identity))
}

func (h *ProfileHandler) TopUp(c *gin.Context) {
	var req dto.TopUpRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeBindError(c, err)
		return
	}

	balance, err := h.profileService.TopUp(c.Request.Context(), middleware.GetCaller(c), req.Amount)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"balance": balance})
}

func profileResponse(identity service.Identity) dto.ProfileResponse {
	if identity.Kind == service.IdentityEmployee {
		return dto.NewEmployeeProfile(*identity.Employee)
	}
	return dto.NewClientProfile(*identity.Client)
}
