package model

// status.go defines the closed status vocabularies used across the core.
// Statuses arrive from API clients and legacy callers as free-form strings;
// normalization happens exactly once at the boundary (ParseReservationStatus)
// so transition logic never deals with synonyms.

// ReservationStatus is the lifecycle state of a reservation. It is an
// independent axis from the payment status kept on the same reservation.
type ReservationStatus string

const (
	StatusPending    ReservationStatus = "pending"     // created, awaiting store approval
	StatusConfirmed  ReservationStatus = "confirmed"   // approved, storage unit assigned
	StatusInProgress ReservationStatus = "in_progress" // bags checked in
	StatusCompleted  ReservationStatus = "completed"   // bags checked out, terminal
	StatusRejected   ReservationStatus = "rejected"    // declined by the store, terminal
	StatusCancelled  ReservationStatus = "cancelled"   // cancelled by store or customer, terminal
)

// reservationSynonyms maps legacy spellings still sent by older API
// surfaces onto the canonical vocabulary.
var reservationSynonyms = map[string]ReservationStatus{
	"pending_approval": StatusPending,
	"approved":         StatusConfirmed,
	"active":           StatusInProgress,
	"canceled":         StatusCancelled,
}

// ParseReservationStatus normalizes a raw status string into a
// ReservationStatus. The second return value reports whether the input was
// recognized. Legacy synonyms (pending_approval, approved, active) are
// accepted and mapped to their canonical value.
func ParseReservationStatus(raw string) (ReservationStatus, bool) {
	s := ReservationStatus(raw)
	switch s {
	case StatusPending, StatusConfirmed, StatusInProgress, StatusCompleted, StatusRejected, StatusCancelled:
		return s, true
	}
	if mapped, ok := reservationSynonyms[raw]; ok {
		return mapped, true
	}
	return "", false
}

// IsTerminal reports whether no further lifecycle transition is permitted.
func (s ReservationStatus) IsTerminal() bool {
	switch s {
	case StatusCompleted, StatusRejected, StatusCancelled:
		return true
	}
	return false
}

// HoldsStorage reports whether a reservation in this status must hold an
// assigned storage unit. Every other status must hold none.
func (s ReservationStatus) HoldsStorage() bool {
	return s == StatusConfirmed || s == StatusInProgress
}

// reservationTransitions is the allowed lifecycle transition table.
// Terminal states have no outgoing edges.
var reservationTransitions = map[ReservationStatus][]ReservationStatus{
	StatusPending:    {StatusConfirmed, StatusRejected, StatusCancelled},
	StatusConfirmed:  {StatusInProgress, StatusCompleted, StatusCancelled},
	StatusInProgress: {StatusCompleted},
}

// CanTransitionTo reports whether the lifecycle transition s -> to is
// allowed by the state machine.
func (s ReservationStatus) CanTransitionTo(to ReservationStatus) bool {
	for _, allowed := range reservationTransitions[s] {
		if allowed == to {
			return true
		}
	}
	return false
}

// ReservationPaymentStatus is the payment axis kept on the reservation row,
// distinct from the Payment entity's own status enum.
type ReservationPaymentStatus string

const (
	PayStatusPending  ReservationPaymentStatus = "pending"
	PayStatusPaid     ReservationPaymentStatus = "paid"
	PayStatusFailed   ReservationPaymentStatus = "failed"
	PayStatusRefunded ReservationPaymentStatus = "refunded"
)

// SizeClass is the physical storage category of a unit and of a
// reservation's request. The set is closed; unknown values are rejected at
// the API boundary.
type SizeClass string

const (
	SizeXS           SizeClass = "xs"
	SizeS            SizeClass = "s"
	SizeM            SizeClass = "m"
	SizeL            SizeClass = "l"
	SizeSpecial      SizeClass = "special"
	SizeRefrigerated SizeClass = "refrigerated"
)

// ParseSizeClass validates a raw size class string.
func ParseSizeClass(raw string) (SizeClass, bool) {
	s := SizeClass(raw)
	switch s {
	case SizeXS, SizeS, SizeM, SizeL, SizeSpecial, SizeRefrigerated:
		return s, true
	}
	return "", false
}
