package model

import (
	"errors"
	"time"
)

// Gateway webhook event types this core reacts to. Other types are recorded
// in the ledger and acknowledged without effect.
const (
	EventPaymentStatusChanged = "PAYMENT_STATUS_CHANGED"
	EventPaymentCanceled      = "PAYMENT_CANCELED"
)

// GatewayEvent is the inbound webhook envelope as the payment gateway sends
// it. Only EventType and Data.OrderID are mandatory; everything else depends
// on the event type.
type GatewayEvent struct {
	EventType string           `json:"eventType"`
	CreatedAt string           `json:"createdAt,omitempty"`
	Data      GatewayEventData `json:"data"`
}

// GatewayEventData carries the payment payload inside the envelope.
type GatewayEventData struct {
	PaymentKey  string          `json:"paymentKey,omitempty"`
	OrderID     string          `json:"orderId"`
	Status      string          `json:"status,omitempty"`
	ApprovedAt  string          `json:"approvedAt,omitempty"`
	TotalAmount int64           `json:"totalAmount,omitempty"`
	Method      string          `json:"method,omitempty"`
	Cancels     []GatewayCancel `json:"cancels,omitempty"`
}

// GatewayCancel is one cancellation entry the gateway attaches to
// PAYMENT_CANCELED events.
type GatewayCancel struct {
	CancelAmount int64  `json:"cancelAmount"`
	CancelReason string `json:"cancelReason,omitempty"`
	CanceledAt   string `json:"canceledAt,omitempty"`
}

// ErrMalformedEvent is returned when the envelope misses a required field.
// Malformed events fail before any database work.
var ErrMalformedEvent = errors.New("webhook event missing required fields")

// Validate checks the required envelope fields.
func (e *GatewayEvent) Validate() error {
	if e.EventType == "" || e.Data.OrderID == "" {
		return ErrMalformedEvent
	}
	return nil
}

// WebhookRecord is one row of the append-only payment_webhooks ledger. The
// ledger doubles as the idempotency window: an event with the same order id,
// event type and gateway status recorded within the recent window is treated
// as already applied.
type WebhookRecord struct {
	ID         string    // payment_webhooks.id
	PaymentID  string    // payment_webhooks.payment_id
	OrderID    string    // payment_webhooks.pg_order_id
	PaymentKey *string   // payment_webhooks.pg_payment_key (nullable)
	EventType  string    // payment_webhooks.event_type
	Status     string    // payment_webhooks.status (raw gateway status)
	RawData    string    // payment_webhooks.webhook_data (JSON payload)
	CreatedAt  time.Time // payment_webhooks.created_at
}
