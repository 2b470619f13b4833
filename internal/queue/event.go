// Package queue defines message payloads exchanged over the message broker.
package queue

// Lifecycle event names carried in ReservationEvent.Event.
const (
	EventReservationConfirmed = "reservation.confirmed"
	EventReservationCompleted = "reservation.completed"
)

// ReservationEvent is published after a lifecycle transition commits. It
// carries enough for downstream consumers (notifications, analytics) to act
// without querying the primary database. Delivery is fire-and-forget; the
// transition has already committed when this is built.
type ReservationEvent struct {
	Event         string `json:"event"`
	ReservationID string `json:"reservation_id"`
	StoreID       string `json:"store_id"`
	CustomerID    string `json:"customer_id"`
	SizeClass     string `json:"size_class"`
	StorageNumber string `json:"storage_number,omitempty"`
	StartTime     string `json:"start_time"`
	EndTime       string `json:"end_time"`
	BagCount      int    `json:"bag_count"`
	TotalAmount   int64  `json:"total_amount"`
	OccurredAt    string `json:"occurred_at"`
}
