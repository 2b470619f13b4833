package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/iliyamo/luggage-storage-reservation/internal/model"
)

// PaymentRepo provides data access for the payments table. Webhook
// processing for a gateway order id serializes on the payment row lock
// taken by GetByOrderIDForUpdateTx, so duplicate or concurrent deliveries
// for the same order cannot interleave.
type PaymentRepo struct {
	db *sql.DB
}

// NewPaymentRepo returns a PaymentRepo bound to the given database.
func NewPaymentRepo(db *sql.DB) *PaymentRepo { return &PaymentRepo{db: db} }

const paymentColumns = `id, reservation_id, pg_order_id, pg_payment_key, pg_method,
       amount_total, status, paid_at, canceled_at, created_at, updated_at`

// GetByOrderIDForUpdateTx loads the payment for a gateway order id with a
// row lock. Returns ErrPaymentNotFound when no payment exists for the
// order, which the reconciler reports rather than acking silently.
func (r *PaymentRepo) GetByOrderIDForUpdateTx(ctx context.Context, tx *sql.Tx, orderID string) (*model.Payment, error) {
	q := `SELECT ` + paymentColumns + ` FROM payments WHERE pg_order_id = ? FOR UPDATE`
	p, err := scanPayment(tx.QueryRowContext(ctx, q, orderID).Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrPaymentNotFound
		}
		return nil, err
	}
	return p, nil
}

// GetSuccessfulByReservationTx returns the SUCCESS payment linked to a
// reservation, locked FOR UPDATE, or ErrNotFound when there is none. Used
// by reject/cancel to decide whether a compensating gateway cancellation is
// required before the reservation may go terminal.
func (r *PaymentRepo) GetSuccessfulByReservationTx(ctx context.Context, tx *sql.Tx, reservationID string) (*model.Payment, error) {
	q := `SELECT ` + paymentColumns + ` FROM payments
	      WHERE reservation_id = ? AND status = 'SUCCESS'
	      ORDER BY created_at DESC LIMIT 1
	      FOR UPDATE`
	p, err := scanPayment(tx.QueryRowContext(ctx, q, reservationID).Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return p, nil
}

// MarkPaidTx records a successful payment: status SUCCESS plus the gateway
// key, method, settled amount and paid timestamp from the webhook payload.
func (r *PaymentRepo) MarkPaidTx(ctx context.Context, tx *sql.Tx, id, paymentKey, method string, amount int64, paidAt time.Time) error {
	const q = `UPDATE payments
	           SET status = 'SUCCESS', pg_payment_key = ?, pg_method = ?, amount_total = ?,
	               paid_at = ?, updated_at = UTC_TIMESTAMP()
	           WHERE id = ?`
	_, err := tx.ExecContext(ctx, q, paymentKey, method, amount, paidAt.UTC(), id)
	return err
}

// MarkFailedTx records a failed payment attempt.
func (r *PaymentRepo) MarkFailedTx(ctx context.Context, tx *sql.Tx, id string) error {
	const q = `UPDATE payments SET status = 'FAILED', updated_at = UTC_TIMESTAMP() WHERE id = ?`
	_, err := tx.ExecContext(ctx, q, id)
	return err
}

// MarkCanceledTx records a canceled payment with its cancellation time.
func (r *PaymentRepo) MarkCanceledTx(ctx context.Context, tx *sql.Tx, id string) error {
	const q = `UPDATE payments
	           SET status = 'CANCELED', canceled_at = UTC_TIMESTAMP(), updated_at = UTC_TIMESTAMP()
	           WHERE id = ?`
	_, err := tx.ExecContext(ctx, q, id)
	return err
}

func scanPayment(scan func(dest ...interface{}) error) (*model.Payment, error) {
	var p model.Payment
	var status string
	var reservationID, paymentKey, method sql.NullString
	var paidAt, canceledAt sql.NullTime
	err := scan(
		&p.ID, &reservationID, &p.OrderID, &paymentKey, &method,
		&p.AmountTotal, &status, &paidAt, &canceledAt, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	p.Status = model.PaymentStatus(status)
	if reservationID.Valid {
		v := reservationID.String
		p.ReservationID = &v
	}
	if paymentKey.Valid {
		v := paymentKey.String
		p.PaymentKey = &v
	}
	if method.Valid {
		v := method.String
		p.Method = &v
	}
	if paidAt.Valid {
		t := paidAt.Time.UTC()
		p.PaidAt = &t
	}
	if canceledAt.Valid {
		t := canceledAt.Time.UTC()
		p.CanceledAt = &t
	}
	return &p, nil
}
