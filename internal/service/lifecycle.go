package service

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/iliyamo/luggage-storage-reservation/internal/gateway"
	"github.com/iliyamo/luggage-storage-reservation/internal/model"
	"github.com/iliyamo/luggage-storage-reservation/internal/queue"
	"github.com/iliyamo/luggage-storage-reservation/internal/repository"
	queuepublisher "github.com/iliyamo/luggage-storage-reservation/internal/service/queue_publisher"
)

// Lifecycle owns every reservation status transition. Each operation runs
// in one transaction that starts by locking the reservation row, so
// concurrent transitions on the same reservation serialize, and any unit
// acquire/release happens inside the same transaction as the status write.
// Best-effort side effects (coupon issue, event publish) run only after a
// successful commit.
type Lifecycle struct {
	db           *sql.DB
	reservations *repository.ReservationRepo
	payments     *repository.PaymentRepo
	allocator    *Allocator
	coupons      *CouponIssuer
	gateway      gateway.PaymentGateway
}

// NewLifecycle constructs the reservation state machine. All dependencies
// must be non-nil.
func NewLifecycle(db *sql.DB, reservations *repository.ReservationRepo, payments *repository.PaymentRepo, allocator *Allocator, coupons *CouponIssuer, gw gateway.PaymentGateway) *Lifecycle {
	if db == nil || reservations == nil || payments == nil || allocator == nil || coupons == nil || gw == nil {
		panic("nil dependency passed to NewLifecycle")
	}
	return &Lifecycle{
		db:           db,
		reservations: reservations,
		payments:     payments,
		allocator:    allocator,
		coupons:      coupons,
		gateway:      gw,
	}
}

// ValidationError reports a rejected input before any mutation. Kind is
// machine-readable; Message is for humans.
type ValidationError struct {
	Kind    string
	Message string
}

func (e *ValidationError) Error() string { return e.Kind + ": " + e.Message }

// CreateInput carries the fields of a reservation request. StartTime must
// parse as RFC3339; EndTime is derived from the duration when absent.
type CreateInput struct {
	StoreID         string
	CustomerID      string
	CustomerName    string
	CustomerPhone   string
	CustomerEmail   string
	SizeClass       string
	StartTime       string
	EndTime         string
	DurationHours   int
	BagCount        int
	TotalAmount     int64
	PaymentMethod   string
	PhotoURLs       []string
	RequestTime     string
}

// Create validates the request and inserts a pending reservation with no
// unit assigned. Validation failures return *ValidationError and leave no
// partial state.
func (l *Lifecycle) Create(ctx context.Context, in CreateInput) (*model.Reservation, error) {
	if in.StoreID == "" || in.CustomerName == "" || in.CustomerPhone == "" ||
		in.StartTime == "" || in.DurationHours <= 0 || in.BagCount <= 0 {
		return nil, &ValidationError{Kind: "VALIDATION_ERROR", Message: "storeId, customerName, phoneNumber, startTime, duration and bagCount are required"}
	}
	sizeClass, ok := model.ParseSizeClass(in.SizeClass)
	if !ok {
		return nil, &ValidationError{Kind: "VALIDATION_ERROR", Message: fmt.Sprintf("unknown size class %q", in.SizeClass)}
	}
	start, err := time.Parse(time.RFC3339, in.StartTime)
	if err != nil {
		return nil, &ValidationError{Kind: "VALIDATION_ERROR", Message: "startTime must be RFC3339"}
	}
	end := start.Add(time.Duration(in.DurationHours) * time.Hour)
	if in.EndTime != "" {
		parsed, err := time.Parse(time.RFC3339, in.EndTime)
		if err != nil {
			return nil, &ValidationError{Kind: "VALIDATION_ERROR", Message: "endTime must be RFC3339"}
		}
		end = parsed
	}
	if !end.After(start) {
		return nil, &ValidationError{Kind: "VALIDATION_ERROR", Message: "endTime must be after startTime"}
	}
	requestTime := time.Now().UTC()
	if in.RequestTime != "" {
		if parsed, err := time.Parse(time.RFC3339, in.RequestTime); err == nil {
			requestTime = parsed
		}
	}
	method := in.PaymentMethod
	if method == "" {
		method = "card"
	}
	customerID := in.CustomerID
	if customerID == "" {
		customerID = "cust_" + uuid.NewString()
	}

	res := &model.Reservation{
		ID:            "res_" + uuid.NewString(),
		StoreID:       in.StoreID,
		CustomerID:    customerID,
		CustomerName:  in.CustomerName,
		CustomerPhone: in.CustomerPhone,
		Status:        model.StatusPending,
		SizeClass:     sizeClass,
		StartTime:     start.UTC(),
		EndTime:       end.UTC(),
		RequestTime:   requestTime,
		DurationHours: in.DurationHours,
		BagCount:      in.BagCount,
		TotalAmount:   in.TotalAmount,
		PaymentStatus: model.PayStatusPending,
		PaymentMethod: method,
		PhotoURLs:     in.PhotoURLs,
	}
	if in.CustomerEmail != "" {
		email := in.CustomerEmail
		res.CustomerEmail = &email
	}
	if err := l.reservations.Create(ctx, res); err != nil {
		return nil, err
	}
	return l.reservations.GetByIDForStore(ctx, res.ID, res.StoreID)
}

// Approve confirms a pending reservation: the allocator assigns one unit
// for the requested window and size class, and the assignment plus the
// occupied flip commit atomically. Returns ErrNoAvailableStorage (the
// reservation stays pending) when the pool is exhausted.
func (l *Lifecycle) Approve(ctx context.Context, storeID, reservationID string) (*model.Reservation, error) {
	var confirmed *model.Reservation
	err := l.inTx(ctx, func(tx *sql.Tx) error {
		res, err := l.lockOwned(ctx, tx, reservationID, storeID)
		if err != nil {
			return err
		}
		if !res.Status.CanTransitionTo(model.StatusConfirmed) {
			return repository.ErrInvalidTransition
		}
		unit, err := l.allocator.AssignTx(ctx, tx, res.StoreID, res.SizeClass, res.StartTime, res.EndTime)
		if err != nil {
			return err
		}
		if err := l.reservations.AssignStorageTx(ctx, tx, res.ID, unit.ID, unit.Number); err != nil {
			return err
		}
		res.Status = model.StatusConfirmed
		res.StorageID = &unit.ID
		res.StorageNumber = &unit.Number
		confirmed = res
		return nil
	})
	if err != nil {
		return nil, err
	}
	l.publish(ctx, queue.EventReservationConfirmed, confirmed)
	return confirmed, nil
}

// CheckIn moves a confirmed reservation to in_progress. The actual start
// timestamp is stamped once and kept on replays; newly uploaded photo URLs
// are merged into the accumulated list. The checkin_completed coupon
// trigger fires best-effort after commit, only on the first transition.
func (l *Lifecycle) CheckIn(ctx context.Context, storeID, reservationID string, photoURLs []string) (*model.Reservation, error) {
	var updated *model.Reservation
	var firstCheckin bool
	err := l.inTx(ctx, func(tx *sql.Tx) error {
		res, err := l.lockOwned(ctx, tx, reservationID, storeID)
		if err != nil {
			return err
		}
		// A repeated check-in on an in_progress reservation is allowed so the
		// store can attach more photos; anything else must pass the table.
		if res.Status != model.StatusInProgress && !res.Status.CanTransitionTo(model.StatusInProgress) {
			return repository.ErrInvalidTransition
		}
		firstCheckin = res.Status == model.StatusConfirmed
		merged := model.MergePhotoURLs(res.PhotoURLs, photoURLs)
		actualStart := time.Now().UTC()
		if res.ActualStartTime != nil {
			actualStart = *res.ActualStartTime
		}
		if err := l.reservations.CheckinTx(ctx, tx, res.ID, actualStart, merged); err != nil {
			return err
		}
		res.Status = model.StatusInProgress
		res.PhotoURLs = merged
		if res.ActualStartTime == nil {
			res.ActualStartTime = &actualStart
		}
		updated = res
		return nil
	})
	if err != nil {
		return nil, err
	}
	if firstCheckin {
		l.coupons.IssueBestEffort(ctx, IssueParams{
			CustomerID:    updated.CustomerID,
			StoreID:       updated.StoreID,
			Trigger:       model.TriggerCheckinCompleted,
			ReservationID: updated.ID,
		})
	}
	return updated, nil
}

// CheckOut completes a reservation: actual end is stamped, the unit is
// released inside the same transaction, and the reservation_completed
// coupon trigger fires best-effort after commit. Allowed from confirmed or
// in_progress.
func (l *Lifecycle) CheckOut(ctx context.Context, storeID, reservationID string) (*model.Reservation, error) {
	var completed *model.Reservation
	err := l.inTx(ctx, func(tx *sql.Tx) error {
		res, err := l.lockOwned(ctx, tx, reservationID, storeID)
		if err != nil {
			return err
		}
		if !res.Status.CanTransitionTo(model.StatusCompleted) {
			return repository.ErrInvalidTransition
		}
		if res.StorageID != nil {
			if err := l.allocator.ReleaseTx(ctx, tx, *res.StorageID); err != nil {
				return err
			}
		}
		actualEnd := time.Now().UTC()
		if err := l.reservations.CompleteTx(ctx, tx, res.ID, actualEnd); err != nil {
			return err
		}
		res.Status = model.StatusCompleted
		res.ActualEndTime = &actualEnd
		res.StorageID = nil
		res.StorageNumber = nil
		completed = res
		return nil
	})
	if err != nil {
		return nil, err
	}
	l.coupons.IssueBestEffort(ctx, IssueParams{
		CustomerID:    completed.CustomerID,
		StoreID:       completed.StoreID,
		Trigger:       model.TriggerReservationCompleted,
		ReservationID: completed.ID,
	})
	l.publish(ctx, queue.EventReservationCompleted, completed)
	return completed, nil
}

// Reject declines a pending reservation. See terminate for the
// refund-before-terminal ordering.
func (l *Lifecycle) Reject(ctx context.Context, storeID, reservationID string) (*model.Reservation, error) {
	return l.terminate(ctx, storeID, reservationID, model.StatusRejected)
}

// Cancel cancels a pending or confirmed reservation on behalf of the store
// or the customer. See terminate for the refund-before-terminal ordering.
func (l *Lifecycle) Cancel(ctx context.Context, storeID, reservationID string) (*model.Reservation, error) {
	return l.terminate(ctx, storeID, reservationID, model.StatusCancelled)
}

// terminate moves a reservation into rejected or cancelled. When a SUCCESS
// payment exists the gateway cancellation must succeed first, inside the
// same transaction: a gateway failure rolls everything back so the
// reservation is never terminal while money is still captured. Any held
// unit is released in the same transaction.
func (l *Lifecycle) terminate(ctx context.Context, storeID, reservationID string, target model.ReservationStatus) (*model.Reservation, error) {
	var terminated *model.Reservation
	err := l.inTx(ctx, func(tx *sql.Tx) error {
		res, err := l.lockOwned(ctx, tx, reservationID, storeID)
		if err != nil {
			return err
		}
		if !res.Status.CanTransitionTo(target) {
			return repository.ErrInvalidTransition
		}

		payStatus := model.ReservationPaymentStatus("")
		payment, err := l.payments.GetSuccessfulByReservationTx(ctx, tx, res.ID)
		switch err {
		case nil:
			key := ""
			if payment.PaymentKey != nil {
				key = *payment.PaymentKey
			}
			reason := "reservation " + string(target)
			if gwErr := l.gateway.CancelPayment(ctx, key, reason); gwErr != nil {
				log.Printf("lifecycle: gateway cancel failed for reservation=%s order=%s: %v", res.ID, payment.OrderID, gwErr)
				return repository.ErrGatewayCancel
			}
			if err := l.payments.MarkCanceledTx(ctx, tx, payment.ID); err != nil {
				return err
			}
			payStatus = model.PayStatusRefunded
		case repository.ErrNotFound:
			// nothing captured, nothing to refund
		default:
			return err
		}

		if res.StorageID != nil {
			if err := l.allocator.ReleaseTx(ctx, tx, *res.StorageID); err != nil {
				return err
			}
		}
		if err := l.reservations.TerminalTx(ctx, tx, res.ID, target, payStatus); err != nil {
			return err
		}
		res.Status = target
		if payStatus != "" {
			res.PaymentStatus = payStatus
		}
		res.StorageID = nil
		res.StorageNumber = nil
		terminated = res
		return nil
	})
	if err != nil {
		return nil, err
	}
	return terminated, nil
}

// SetStatus is the administrative override. The raw value is normalized
// (legacy approved/active/pending_approval synonyms included) and then
// routed through the regular transition so side effects are never
// bypassed; in particular a confirmed target always goes through the
// allocator.
func (l *Lifecycle) SetStatus(ctx context.Context, storeID, reservationID, rawStatus string) (*model.Reservation, error) {
	target, ok := model.ParseReservationStatus(rawStatus)
	if !ok {
		return nil, &ValidationError{Kind: "VALIDATION_ERROR", Message: fmt.Sprintf("unknown status %q", rawStatus)}
	}
	switch target {
	case model.StatusConfirmed:
		return l.Approve(ctx, storeID, reservationID)
	case model.StatusInProgress:
		return l.CheckIn(ctx, storeID, reservationID, nil)
	case model.StatusCompleted:
		return l.CheckOut(ctx, storeID, reservationID)
	case model.StatusRejected:
		return l.Reject(ctx, storeID, reservationID)
	case model.StatusCancelled:
		return l.Cancel(ctx, storeID, reservationID)
	default:
		// pending is the creation state, not a transition target
		return nil, repository.ErrInvalidTransition
	}
}

// Get returns one reservation scoped to the store.
func (l *Lifecycle) Get(ctx context.Context, storeID, reservationID string) (*model.Reservation, error) {
	return l.reservations.GetByIDForStore(ctx, reservationID, storeID)
}

// List returns a filtered page of a store's reservations plus the total.
func (l *Lifecycle) List(ctx context.Context, storeID string, f repository.ListFilter) ([]model.Reservation, int, error) {
	return l.reservations.ListByStore(ctx, storeID, f)
}

// lockOwned locks the reservation row and enforces store scoping. A row
// owned by another store is reported as ErrNotFound.
func (l *Lifecycle) lockOwned(ctx context.Context, tx *sql.Tx, reservationID, storeID string) (*model.Reservation, error) {
	res, err := l.reservations.GetForUpdateTx(ctx, tx, reservationID)
	if err != nil {
		return nil, err
	}
	if storeID != "" && res.StoreID != storeID {
		return nil, repository.ErrNotFound
	}
	return res, nil
}

// inTx runs fn inside a transaction with rollback on error.
func (l *Lifecycle) inTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := l.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()
	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true
	return nil
}

// publish sends a lifecycle event fire-and-forget after commit.
func (l *Lifecycle) publish(ctx context.Context, event string, res *model.Reservation) {
	ev := queue.ReservationEvent{
		Event:         event,
		ReservationID: res.ID,
		StoreID:       res.StoreID,
		CustomerID:    res.CustomerID,
		SizeClass:     string(res.SizeClass),
		StartTime:     res.StartTime.UTC().Format(time.RFC3339),
		EndTime:       res.EndTime.UTC().Format(time.RFC3339),
		BagCount:      res.BagCount,
		TotalAmount:   res.TotalAmount,
		OccurredAt:    time.Now().UTC().Format(time.RFC3339),
	}
	if res.StorageNumber != nil {
		ev.StorageNumber = *res.StorageNumber
	}
	if err := queuepublisher.PublishReservationEvent(ctx, ev); err != nil {
		log.Printf("lifecycle: publish %s for reservation=%s failed: %v", event, res.ID, err)
	}
}
