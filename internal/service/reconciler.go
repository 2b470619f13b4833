package service

import (
	"context"
	"database/sql"
	"log"
	"time"

	"github.com/iliyamo/luggage-storage-reservation/internal/model"
	"github.com/iliyamo/luggage-storage-reservation/internal/repository"
)

// idempotencyWindow bounds how far back the ledger is consulted when
// deciding whether a delivery is a replay.
const idempotencyWindow = time.Hour

// Reconciler consumes asynchronous, possibly duplicated payment-gateway
// webhooks and drives the payment-linked reservation updates. Each delivery
// runs in one serializable transaction; deliveries for the same gateway
// order id additionally serialize on the payment row lock, so duplicates
// cannot interleave. Out-of-order and replayed events are acknowledged
// without effect but always land in the audit ledger.
type Reconciler struct {
	db           *sql.DB
	payments     *repository.PaymentRepo
	reservations *repository.ReservationRepo
	webhooks     *repository.WebhookRepo
	allocator    *Allocator
}

// NewReconciler constructs a Reconciler. All dependencies must be non-nil.
func NewReconciler(db *sql.DB, payments *repository.PaymentRepo, reservations *repository.ReservationRepo, webhooks *repository.WebhookRepo, allocator *Allocator) *Reconciler {
	if db == nil || payments == nil || reservations == nil || webhooks == nil || allocator == nil {
		panic("nil dependency passed to NewReconciler")
	}
	return &Reconciler{
		db:           db,
		payments:     payments,
		reservations: reservations,
		webhooks:     webhooks,
		allocator:    allocator,
	}
}

// Result is the precise outcome of one delivery. The transport adapter
// coerces every outcome to HTTP 200; this value is what actually happened.
type Result struct {
	Applied bool
	Reason  string
}

// Process reconciles one gateway event. rawPayload is the original JSON
// body, recorded verbatim in the ledger. Errors mean nothing was applied
// (malformed envelope, unknown order, storage failure); a nil error with
// Applied=false means the event was acknowledged as a replay or an invalid
// transition.
func (r *Reconciler) Process(ctx context.Context, ev *model.GatewayEvent, rawPayload string) (Result, error) {
	if err := ev.Validate(); err != nil {
		return Result{}, err
	}

	tx, err := r.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelSerializable})
	if err != nil {
		return Result{}, err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	payment, err := r.payments.GetByOrderIDForUpdateTx(ctx, tx, ev.Data.OrderID)
	if err != nil {
		return Result{}, err
	}

	replay, err := r.webhooks.ExistsRecentTx(ctx, tx, ev.Data.OrderID, ev.EventType, ev.Data.Status, idempotencyWindow)
	if err != nil {
		return Result{}, err
	}
	if replay {
		if err := tx.Commit(); err != nil {
			return Result{}, err
		}
		committed = true
		return Result{Applied: false, Reason: "already processed"}, nil
	}

	rec := &model.WebhookRecord{
		PaymentID: payment.ID,
		OrderID:   ev.Data.OrderID,
		EventType: ev.EventType,
		Status:    ev.Data.Status,
		RawData:   rawPayload,
	}
	if ev.Data.PaymentKey != "" {
		key := ev.Data.PaymentKey
		rec.PaymentKey = &key
	}
	if _, err := r.webhooks.InsertTx(ctx, tx, rec); err != nil {
		return Result{}, err
	}

	newStatus := model.MapGatewayStatus(ev.Data.Status)
	if !payment.Status.CanTransitionTo(newStatus) {
		// Gateways redeliver out of order; a stale transition is tolerated,
		// logged and acknowledged with the ledger row kept.
		log.Printf("reconciler: ignoring transition %s -> %s for order=%s", payment.Status, newStatus, ev.Data.OrderID)
		if err := tx.Commit(); err != nil {
			return Result{}, err
		}
		committed = true
		return Result{Applied: false, Reason: "invalid status transition"}, nil
	}

	switch ev.EventType {
	case model.EventPaymentStatusChanged:
		if err := r.applyStatusChange(ctx, tx, payment, ev, newStatus); err != nil {
			return Result{}, err
		}
	case model.EventPaymentCanceled:
		if err := r.applyCancellation(ctx, tx, payment); err != nil {
			return Result{}, err
		}
	default:
		// Unknown event types are recorded and acknowledged without effect.
	}

	if err := tx.Commit(); err != nil {
		return Result{}, err
	}
	committed = true
	return Result{Applied: true, Reason: "processed"}, nil
}

// applyStatusChange handles PAYMENT_STATUS_CHANGED. On SUCCESS the payment
// row captures the gateway key, method, amount and paid time; a linked
// reservation that is still pending stays pending with its payment axis
// settled, while an already-approved one keeps its lifecycle status and any
// assigned unit. On FAILED only the payment axes flip; a failed payment
// never auto-cancels the booking. Terminal reservations are never touched,
// so settled completed/paid rows stay stable for the settlement batch.
func (r *Reconciler) applyStatusChange(ctx context.Context, tx *sql.Tx, payment *model.Payment, ev *model.GatewayEvent, newStatus model.PaymentStatus) error {
	switch newStatus {
	case model.PaymentSuccess:
		method := ev.Data.Method
		if method == "" && payment.Method != nil {
			method = *payment.Method
		}
		amount := ev.Data.TotalAmount
		if amount == 0 {
			amount = payment.AmountTotal
		}
		paidAt := time.Now().UTC()
		if ev.Data.ApprovedAt != "" {
			if t, err := time.Parse(time.RFC3339, ev.Data.ApprovedAt); err == nil {
				paidAt = t.UTC()
			}
		}
		if err := r.payments.MarkPaidTx(ctx, tx, payment.ID, ev.Data.PaymentKey, method, amount, paidAt); err != nil {
			return err
		}
		if payment.ReservationID != nil {
			return r.settleReservation(ctx, tx, *payment.ReservationID, payment.OrderID)
		}
	case model.PaymentFailed:
		if err := r.payments.MarkFailedTx(ctx, tx, payment.ID); err != nil {
			return err
		}
		if payment.ReservationID != nil {
			res, err := r.reservations.GetForUpdateTx(ctx, tx, *payment.ReservationID)
			if err != nil {
				return err
			}
			if res.Status.IsTerminal() {
				log.Printf("reconciler: payment failed for order=%s but reservation=%s is %s, leaving it untouched", payment.OrderID, res.ID, res.Status)
				return nil
			}
			return r.reservations.SetPaymentStatusTx(ctx, tx, res.ID, model.PayStatusFailed)
		}
	}
	return nil
}

// settleReservation records a settled payment on the linked reservation.
// Only a reservation that is still pending is re-stamped pending+paid; a
// confirmed or in_progress one keeps its lifecycle status (and its unit)
// and just gets the payment axis, and a terminal one is left alone.
func (r *Reconciler) settleReservation(ctx context.Context, tx *sql.Tx, reservationID, orderID string) error {
	res, err := r.reservations.GetForUpdateTx(ctx, tx, reservationID)
	if err != nil {
		return err
	}
	switch {
	case res.Status == model.StatusPending:
		return r.reservations.MarkPaymentSettledTx(ctx, tx, res.ID)
	case !res.Status.IsTerminal():
		return r.reservations.SetPaymentStatusTx(ctx, tx, res.ID, model.PayStatusPaid)
	default:
		log.Printf("reconciler: payment settled for order=%s but reservation=%s is %s, leaving it untouched", orderID, res.ID, res.Status)
		return nil
	}
}

// applyCancellation handles PAYMENT_CANCELED: the payment goes CANCELED and
// a linked reservation still eligible for cancellation is cancelled with its
// payment axis refunded, releasing any held unit in the same transaction so
// the holding invariant survives gateway-initiated cancellations too. The
// reservation state machine still rules: a completed, rejected, already
// cancelled or in_progress reservation is left untouched so terminal rows
// stay stable; the late cancellation is logged and only the payment row
// records it.
func (r *Reconciler) applyCancellation(ctx context.Context, tx *sql.Tx, payment *model.Payment) error {
	if err := r.payments.MarkCanceledTx(ctx, tx, payment.ID); err != nil {
		return err
	}
	if payment.ReservationID == nil {
		return nil
	}
	res, err := r.reservations.GetForUpdateTx(ctx, tx, *payment.ReservationID)
	if err != nil {
		return err
	}
	if !res.Status.CanTransitionTo(model.StatusCancelled) {
		log.Printf("reconciler: payment canceled for order=%s but reservation=%s is %s, leaving it untouched", payment.OrderID, res.ID, res.Status)
		return nil
	}
	if res.StorageID != nil {
		if err := r.allocator.ReleaseTx(ctx, tx, *res.StorageID); err != nil {
			return err
		}
	}
	return r.reservations.TerminalTx(ctx, tx, res.ID, model.StatusCancelled, model.PayStatusRefunded)
}
