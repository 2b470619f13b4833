package service

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/luggage-storage-reservation/internal/model"
	"github.com/iliyamo/luggage-storage-reservation/internal/repository"
)

func newReconcilerForTest(t *testing.T) (*Reconciler, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	r := NewReconciler(db,
		repository.NewPaymentRepo(db),
		repository.NewReservationRepo(db),
		repository.NewWebhookRepo(db),
		NewAllocator(repository.NewStorageRepo(db)),
	)
	return r, mock
}

// paymentRows builds one payments row in column order. reservationID may be
// nil for an unlinked payment.
func paymentRows(status string, reservationID interface{}) *sqlmock.Rows {
	now := time.Now().UTC()
	return sqlmock.NewRows([]string{
		"id", "reservation_id", "pg_order_id", "pg_payment_key", "pg_method",
		"amount_total", "status", "paid_at", "canceled_at", "created_at", "updated_at",
	}).AddRow("pay_1", reservationID, "order_1", "key_1", "card", int64(8000), status, nil, nil, now, now)
}

// reservationRows builds one reservations row in column order. storageID and
// storageNumber may be nil when no unit is held.
func reservationRows(status, payStatus string, storageID, storageNumber interface{}) *sqlmock.Rows {
	now := time.Now().UTC()
	start := now.Add(time.Hour)
	end := start.Add(4 * time.Hour)
	return sqlmock.NewRows([]string{
		"id", "store_id", "customer_id", "customer_name", "customer_phone", "customer_email",
		"status", "size_class", "start_time", "end_time", "request_time", "duration", "bag_count",
		"total_amount", "payment_status", "payment_method", "storage_id", "storage_number",
		"actual_start_time", "actual_end_time", "luggage_image_urls", "created_at", "updated_at",
	}).AddRow("res_1", "store_1", "cust_1", "Kim Jiho", "010-1234-5678", nil,
		status, "m", start, end, now, 4, 2,
		int64(8000), payStatus, "card", storageID, storageNumber,
		nil, nil, nil, now, now)
}

func gatewayEvent(eventType, status string) *model.GatewayEvent {
	return &model.GatewayEvent{
		EventType: eventType,
		Data: model.GatewayEventData{
			PaymentKey:  "key_1",
			OrderID:     "order_1",
			Status:      status,
			TotalAmount: 8000,
			Method:      "card",
		},
	}
}

func TestProcessAcksReplayWithoutEffect(t *testing.T) {
	r, mock := newReconcilerForTest(t)

	mock.ExpectBegin()
	mock.ExpectQuery(`FROM payments WHERE pg_order_id`).WillReturnRows(paymentRows("PENDING", "res_1"))
	mock.ExpectQuery(`FROM payment_webhooks`).
		WillReturnRows(sqlmock.NewRows([]string{"cnt"}).AddRow(1))
	mock.ExpectCommit()

	result, err := r.Process(context.Background(), gatewayEvent(model.EventPaymentStatusChanged, "DONE"), "{}")
	require.NoError(t, err)
	assert.False(t, result.Applied)
	assert.Equal(t, "already processed", result.Reason)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProcessAcksStaleTransitionAndKeepsLedger(t *testing.T) {
	r, mock := newReconcilerForTest(t)

	// DONE maps to SUCCESS and the payment already is SUCCESS; the delivery
	// must land in the ledger but change nothing else.
	mock.ExpectBegin()
	mock.ExpectQuery(`FROM payments WHERE pg_order_id`).WillReturnRows(paymentRows("SUCCESS", "res_1"))
	mock.ExpectQuery(`FROM payment_webhooks`).
		WillReturnRows(sqlmock.NewRows([]string{"cnt"}).AddRow(0))
	mock.ExpectExec(`INSERT INTO payment_webhooks`).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	result, err := r.Process(context.Background(), gatewayEvent(model.EventPaymentStatusChanged, "DONE"), "{}")
	require.NoError(t, err)
	assert.False(t, result.Applied)
	assert.Equal(t, "invalid status transition", result.Reason)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProcessDoneSettlesPendingReservation(t *testing.T) {
	r, mock := newReconcilerForTest(t)

	mock.ExpectBegin()
	mock.ExpectQuery(`FROM payments WHERE pg_order_id`).WillReturnRows(paymentRows("PENDING", "res_1"))
	mock.ExpectQuery(`FROM payment_webhooks`).
		WillReturnRows(sqlmock.NewRows([]string{"cnt"}).AddRow(0))
	mock.ExpectExec(`INSERT INTO payment_webhooks`).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`SET status = 'SUCCESS'`).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(`FROM reservations WHERE id = \? FOR UPDATE`).
		WillReturnRows(reservationRows("pending", "pending", nil, nil))
	mock.ExpectExec(`SET status = 'pending', payment_status = 'paid'`).
		WithArgs("res_1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	result, err := r.Process(context.Background(), gatewayEvent(model.EventPaymentStatusChanged, "DONE"), "{}")
	require.NoError(t, err)
	assert.True(t, result.Applied)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProcessDoneKeepsApprovedReservationConfirmed(t *testing.T) {
	r, mock := newReconcilerForTest(t)

	// Payment settles after approval: the reservation keeps confirmed and
	// its unit, only the payment axis flips to paid. A demotion back to
	// pending would strand the assigned unit.
	mock.ExpectBegin()
	mock.ExpectQuery(`FROM payments WHERE pg_order_id`).WillReturnRows(paymentRows("PENDING", "res_1"))
	mock.ExpectQuery(`FROM payment_webhooks`).
		WillReturnRows(sqlmock.NewRows([]string{"cnt"}).AddRow(0))
	mock.ExpectExec(`INSERT INTO payment_webhooks`).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`SET status = 'SUCCESS'`).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(`FROM reservations WHERE id = \? FOR UPDATE`).
		WillReturnRows(reservationRows("confirmed", "pending", "stor_1", "M1"))
	mock.ExpectExec(`SET payment_status = \?`).
		WithArgs("paid", "res_1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	result, err := r.Process(context.Background(), gatewayEvent(model.EventPaymentStatusChanged, "DONE"), "{}")
	require.NoError(t, err)
	assert.True(t, result.Applied)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProcessCancelKeepsCompletedReservationSettled(t *testing.T) {
	r, mock := newReconcilerForTest(t)

	// A late gateway cancellation after checkout cancels the payment row
	// only; the completed+paid reservation must stay stable for settlement.
	// The ordered expectations end at the reservation read, so any
	// reservation or storage write would fail the test.
	mock.ExpectBegin()
	mock.ExpectQuery(`FROM payments WHERE pg_order_id`).WillReturnRows(paymentRows("SUCCESS", "res_1"))
	mock.ExpectQuery(`FROM payment_webhooks`).
		WillReturnRows(sqlmock.NewRows([]string{"cnt"}).AddRow(0))
	mock.ExpectExec(`INSERT INTO payment_webhooks`).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`SET status = 'CANCELED'`).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(`FROM reservations WHERE id = \? FOR UPDATE`).
		WillReturnRows(reservationRows("completed", "paid", nil, nil))
	mock.ExpectCommit()

	result, err := r.Process(context.Background(), gatewayEvent(model.EventPaymentCanceled, "CANCELED"), "{}")
	require.NoError(t, err)
	assert.True(t, result.Applied)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProcessCancelCancelsConfirmedReservationAndReleasesUnit(t *testing.T) {
	r, mock := newReconcilerForTest(t)

	mock.ExpectBegin()
	mock.ExpectQuery(`FROM payments WHERE pg_order_id`).WillReturnRows(paymentRows("SUCCESS", "res_1"))
	mock.ExpectQuery(`FROM payment_webhooks`).
		WillReturnRows(sqlmock.NewRows([]string{"cnt"}).AddRow(0))
	mock.ExpectExec(`INSERT INTO payment_webhooks`).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`SET status = 'CANCELED'`).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(`FROM reservations WHERE id = \? FOR UPDATE`).
		WillReturnRows(reservationRows("confirmed", "paid", "stor_1", "M1"))
	mock.ExpectExec(`SET status = 'available'`).
		WithArgs("stor_1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`SET status = \?, payment_status = \?`).
		WithArgs("cancelled", "refunded", "res_1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	result, err := r.Process(context.Background(), gatewayEvent(model.EventPaymentCanceled, "CANCELED"), "{}")
	require.NoError(t, err)
	assert.True(t, result.Applied)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProcessRejectsMalformedEnvelope(t *testing.T) {
	r, mock := newReconcilerForTest(t)

	_, err := r.Process(context.Background(), &model.GatewayEvent{}, "{}")
	assert.ErrorIs(t, err, model.ErrMalformedEvent)
	assert.NoError(t, mock.ExpectationsWereMet())
}
