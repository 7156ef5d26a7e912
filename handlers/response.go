package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"dstore-svc/models"
	"dstore-svc/service"
	"dstore-svc/store"
)

// Coarse error categories surfaced to clients alongside the HTTP status.
const (
	categoryNotFound            = "Not Found"
	categoryConflict            = "Conflict"
	categoryValidation          = "Validation"
	categoryStockExceeded       = "Stock Exceeded"
	categoryPaymentNotCompleted = "Payment Not Completed"
	categoryUpstreamFailure     = "Upstream Failure"
	categoryForbidden           = "Forbidden"
)

func respondOK(c *gin.Context, data any, message string) {
	c.JSON(http.StatusOK, models.Response{
		Success: true,
		Data:    data,
		Message: message,
	})
}

func respondCreated(c *gin.Context, data any, message string) {
	c.JSON(http.StatusCreated, models.Response{
		Success: true,
		Data:    data,
		Message: message,
	})
}

func respondValidationError(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, models.Response{
		Success: false,
		Errors:  gin.H{"message": err.Error()},
		Message: categoryValidation,
	})
}

// respondError maps workflow sentinels onto status + category. Unknown
// errors become a generic upstream failure; the handler is expected to
// have logged the detail already.
func respondError(c *gin.Context, err error) {
	status, category := classify(err)

	message := err.Error()
	if status == http.StatusInternalServerError {
		message = "Internal server error"
	}

	c.JSON(status, models.Response{
		Success: false,
		Errors:  gin.H{"message": message},
		Message: category,
	})
}

func classify(err error) (int, string) {
	switch {
	case errors.Is(err, store.ErrUserNotFound),
		errors.Is(err, store.ErrProductNotFound),
		errors.Is(err, store.ErrCartNotFound),
		errors.Is(err, store.ErrItemNotFound),
		errors.Is(err, store.ErrOrderNotFound):
		return http.StatusNotFound, categoryNotFound
	case errors.Is(err, store.ErrDuplicateUser),
		errors.Is(err, store.ErrDuplicateProduct),
		errors.Is(err, store.ErrDuplicateCapture):
		return http.StatusConflict, categoryConflict
	case errors.Is(err, service.ErrInvalidID),
		errors.Is(err, service.ErrEmptyOrder):
		return http.StatusBadRequest, categoryValidation
	case errors.Is(err, service.ErrStockExceeded):
		return http.StatusBadRequest, categoryStockExceeded
	case errors.Is(err, service.ErrPaymentNotCompleted):
		return http.StatusBadRequest, categoryPaymentNotCompleted
	case errors.Is(err, service.ErrPermissionDenied):
		return http.StatusForbidden, categoryForbidden
	case errors.Is(err, service.ErrPaymentUnavailable):
		return http.StatusServiceUnavailable, categoryUpstreamFailure
	default:
		return http.StatusInternalServerError, categoryUpstreamFailure
	}
}
