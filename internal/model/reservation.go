package model

import "time"

// Reservation is a customer's booking of one storage unit at a store for a
// time window. Rows are never physically deleted; terminal outcomes are
// expressed through Status. The assigned unit fields are only set while
// Status is confirmed or in_progress.
//
// Fields:
//
//	ID              - opaque identifier ("res_" + uuid).
//	StoreID         - store the luggage is kept at.
//	CustomerID      - customer who booked.
//	Status          - lifecycle state (see ReservationStatus).
//	SizeClass       - requested storage size class.
//	StartTime       - requested window start.
//	EndTime         - requested window end (start + duration hours when not given).
//	PaymentStatus   - payment axis, independent from Status.
//	StorageID       - assigned unit id, nil until confirmed.
//	StorageNumber   - human-readable unit number ("M3"), nil until confirmed.
//	ActualStartTime - set at first check-in, never overwritten.
//	ActualEndTime   - set at check-out.
//	PhotoURLs       - accumulated check-in evidence, append-only.
type Reservation struct {
	ID              string                   // reservations.id
	StoreID         string                   // reservations.store_id
	CustomerID      string                   // reservations.customer_id
	CustomerName    string                   // reservations.customer_name
	CustomerPhone   string                   // reservations.customer_phone
	CustomerEmail   *string                  // reservations.customer_email (nullable)
	Status          ReservationStatus        // reservations.status
	SizeClass       SizeClass                // reservations.size_class
	StartTime       time.Time                // reservations.start_time
	EndTime         time.Time                // reservations.end_time
	RequestTime     time.Time                // reservations.request_time
	DurationHours   int                      // reservations.duration
	BagCount        int                      // reservations.bag_count
	TotalAmount     int64                    // reservations.total_amount
	PaymentStatus   ReservationPaymentStatus // reservations.payment_status
	PaymentMethod   string                   // reservations.payment_method
	StorageID       *string                  // reservations.storage_id (nullable)
	StorageNumber   *string                  // reservations.storage_number (nullable)
	ActualStartTime *time.Time               // reservations.actual_start_time (nullable)
	ActualEndTime   *time.Time               // reservations.actual_end_time (nullable)
	PhotoURLs       []string                 // reservations.luggage_image_urls (JSON)
	CreatedAt       time.Time                // reservations.created_at
	UpdatedAt       time.Time                // reservations.updated_at
}

// WindowsOverlap is the half-open interval overlap test used wherever a
// unit's bookings are compared: [aStart, aEnd) and [bStart, bEnd) overlap
// when aStart < bEnd and aEnd > bStart. Touching endpoints do not overlap,
// so a 10:00-12:00 booking and a 12:00-14:00 booking may share a unit.
func WindowsOverlap(aStart, aEnd, bStart, bEnd time.Time) bool {
	return aStart.Before(bEnd) && aEnd.After(bStart)
}

// MergePhotoURLs appends the URLs in incoming that are not already present
// in existing, preserving the order of both. Earlier entries are never
// replaced or reordered; re-sending the same URL is a no-op.
func MergePhotoURLs(existing, incoming []string) []string {
	if len(incoming) == 0 {
		return existing
	}
	seen := make(map[string]struct{}, len(existing))
	for _, u := range existing {
		seen[u] = struct{}{}
	}
	merged := existing
	for _, u := range incoming {
		if u == "" {
			continue
		}
		if _, ok := seen[u]; ok {
			continue
		}
		seen[u] = struct{}{}
		merged = append(merged, u)
	}
	return merged
}
