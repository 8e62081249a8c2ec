package handler

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/flicky/go-bookstore-api/internal/dto"
	"github.com/flicky/go-bookstore-api/internal/service"
)

// statusFor maps service errors onto HTTP status codes. Anything it does not
// recognise is a 500.
func statusFor(err error) int {
	switch {
	case errors.Is(err, service.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, service.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, service.ErrInvalidCredentials):
		return http.StatusUnauthorized
	case errors.Is(err, service.ErrAlreadyExists),
		errors.Is(err, service.ErrInvalidInput),
		errors.Is(err, service.ErrEmptyCart),
		errors.Is(err, service.ErrNoEmployeeAvailable):
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

func writeError(c *gin.Context, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		_ = c.Error(err)
		c.JSON(status, gin.H{"error": err.Error(), "type": fmt.Sprintf("%T", rootCause(err))})
		return
	}
	c.JSON(status, gin.H{"error": err.Error()})
}

func rootCause(err error) error {
	for {
		next := errors.Unwrap(err)
		if next == nil {
			return err
		}
		err = next
	}
}

// writeBindError reports request binding failures, per field when they come
// from the validator.
func writeBindError(c *gin.Context, err error) {
	if fields := dto.FieldErrors(err); fields != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "validation failed", "fields": fields})
		return
	}
	c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
}
