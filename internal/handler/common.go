package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/luggage-storage-reservation/internal/repository"
	"github.com/iliyamo/luggage-storage-reservation/internal/service"
)

// storeID pulls the authenticated store identity set by the JWT middleware.
func storeID(c echo.Context) string {
	if v, ok := c.Get("store_id").(string); ok {
		return v
	}
	return ""
}

// writeServiceError maps service and repository errors to a JSON error
// response with a machine-readable code. Anything unrecognized is a 500.
func writeServiceError(c echo.Context, err error) error {
	var verr *service.ValidationError
	if errors.As(err, &verr) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": verr.Kind, "message": verr.Message})
	}
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": "NOT_FOUND", "message": "reservation not found"})
	case errors.Is(err, repository.ErrPaymentNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": "PAYMENT_NOT_FOUND", "message": "payment not found"})
	case errors.Is(err, repository.ErrNoAvailableStorage):
		return c.JSON(http.StatusConflict, echo.Map{"error": "NO_AVAILABLE_STORAGE", "message": "no storage unit is free for the requested window"})
	case errors.Is(err, repository.ErrInvalidTransition):
		return c.JSON(http.StatusConflict, echo.Map{"error": "INVALID_TRANSITION", "message": "the reservation cannot move to the requested status"})
	case errors.Is(err, repository.ErrGatewayCancel):
		return c.JSON(http.StatusBadGateway, echo.Map{"error": "PAYMENT_CANCEL_FAILED", "message": "payment gateway refused the cancellation"})
	default:
		c.Logger().Errorf("internal error: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "INTERNAL_ERROR", "message": "unexpected server error"})
	}
}
