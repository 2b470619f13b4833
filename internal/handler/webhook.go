package handler

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/luggage-storage-reservation/internal/model"
	"github.com/iliyamo/luggage-storage-reservation/internal/service"
)

// WebhookHandler receives payment gateway notifications. The gateway
// retries any non-200 response, so this endpoint acknowledges every
// delivery with 200 and reports the real outcome in the body; retries are
// reserved for failures we want redelivered (storage errors).
type WebhookHandler struct {
	reconciler *service.Reconciler
}

func NewWebhookHandler(r *service.Reconciler) *WebhookHandler {
	return &WebhookHandler{reconciler: r}
}

// HandleGatewayEvent processes one webhook delivery.
func (h *WebhookHandler) HandleGatewayEvent(c echo.Context) error {
	body, err := io.ReadAll(c.Request().Body)
	if err != nil {
		return c.JSON(http.StatusOK, echo.Map{"success": false, "message": "unreadable body"})
	}

	var ev model.GatewayEvent
	if err := json.Unmarshal(body, &ev); err != nil {
		c.Logger().Warnf("webhook: malformed payload: %v", err)
		return c.JSON(http.StatusOK, echo.Map{"success": false, "message": "malformed payload"})
	}

	result, err := h.reconciler.Process(c.Request().Context(), &ev, string(body))
	if err != nil {
		c.Logger().Errorf("webhook: order=%s type=%s: %v", ev.Data.OrderID, ev.EventType, err)
		return c.JSON(http.StatusOK, echo.Map{"success": false, "message": err.Error()})
	}
	return c.JSON(http.StatusOK, echo.Map{"success": result.Applied, "message": result.Reason})
}
