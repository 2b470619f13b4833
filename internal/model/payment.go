package model

import "time"

// Payment is one gateway payment attempt, keyed by the gateway order id.
// A payment normally links to a reservation; a nil ReservationID means the
// gateway sent us a payment we cannot attach, which downstream treats as an
// error condition rather than silently reconciling.
type Payment struct {
	ID            string        // payments.id
	ReservationID *string       // payments.reservation_id (nullable)
	OrderID       string        // payments.pg_order_id
	PaymentKey    *string       // payments.pg_payment_key (nullable)
	Method        *string       // payments.pg_method (nullable)
	AmountTotal   int64         // payments.amount_total
	Status        PaymentStatus // payments.status
	PaidAt        *time.Time    // payments.paid_at (nullable)
	CanceledAt    *time.Time    // payments.canceled_at (nullable)
	CreatedAt     time.Time     // payments.created_at
	UpdatedAt     time.Time     // payments.updated_at
}

// PaymentStatus is the internal payment state. Transitions are monotonic:
// once a terminal status (FAILED, CANCELED, REFUNDED) is reached no further
// transition is accepted.
type PaymentStatus string

const (
	PaymentPending  PaymentStatus = "PENDING"
	PaymentSuccess  PaymentStatus = "SUCCESS"
	PaymentFailed   PaymentStatus = "FAILED"
	PaymentCanceled PaymentStatus = "CANCELED"
	PaymentRefunded PaymentStatus = "REFUNDED"
)

// paymentTransitions is the allowed payment transition table. FAILED,
// CANCELED and REFUNDED are terminal.
var paymentTransitions = map[PaymentStatus][]PaymentStatus{
	PaymentPending: {PaymentSuccess, PaymentFailed, PaymentCanceled},
	PaymentSuccess: {PaymentCanceled, PaymentRefunded},
}

// CanTransitionTo reports whether the payment transition s -> to is allowed.
func (s PaymentStatus) CanTransitionTo(to PaymentStatus) bool {
	for _, allowed := range paymentTransitions[s] {
		if allowed == to {
			return true
		}
	}
	return false
}

// IsTerminal reports whether the payment status accepts no more transitions.
func (s PaymentStatus) IsTerminal() bool {
	switch s {
	case PaymentFailed, PaymentCanceled, PaymentRefunded:
		return true
	}
	return false
}

// MapGatewayStatus translates the gateway's status vocabulary onto the
// internal enum. Unknown gateway statuses map to PENDING, matching how the
// gateway treats in-flight states it may add over time.
func MapGatewayStatus(gatewayStatus string) PaymentStatus {
	switch gatewayStatus {
	case "READY", "IN_PROGRESS", "WAITING_FOR_DEPOSIT":
		return PaymentPending
	case "DONE":
		return PaymentSuccess
	case "CANCELED", "PARTIAL_CANCELED":
		return PaymentCanceled
	case "ABORTED", "EXPIRED":
		return PaymentFailed
	}
	return PaymentPending
}
