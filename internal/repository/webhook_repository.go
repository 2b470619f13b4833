package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"

	"github.com/iliyamo/luggage-storage-reservation/internal/model"
)

// WebhookRepo provides data access for the payment_webhooks ledger. The
// table is append-only: rows are written for every delivery regardless of
// outcome and double as the idempotency window.
type WebhookRepo struct {
	db *sql.DB
}

// NewWebhookRepo returns a WebhookRepo bound to the given database.
func NewWebhookRepo(db *sql.DB) *WebhookRepo { return &WebhookRepo{db: db} }

// ExistsRecentTx reports whether an event with the same order id, event
// type and raw gateway status was already recorded within the given window.
// A match means the delivery is a replay and must be acked without effect.
func (r *WebhookRepo) ExistsRecentTx(ctx context.Context, tx *sql.Tx, orderID, eventType, status string, window time.Duration) (bool, error) {
	const q = `SELECT COUNT(*) FROM payment_webhooks
	           WHERE pg_order_id = ? AND event_type = ? AND status = ?
	             AND created_at >= DATE_SUB(UTC_TIMESTAMP(), INTERVAL ? SECOND)`
	var n int
	if err := tx.QueryRowContext(ctx, q, orderID, eventType, status, int64(window/time.Second)).Scan(&n); err != nil {
		return false, err
	}
	return n > 0, nil
}

// InsertTx appends one delivery to the ledger and returns the generated id.
// Called before the transition check so invalid and replayed deliveries
// still leave an audit trail.
func (r *WebhookRepo) InsertTx(ctx context.Context, tx *sql.Tx, rec *model.WebhookRecord) (string, error) {
	id := "webhook_" + uuid.NewString()
	const q = `INSERT INTO payment_webhooks (
	             id, payment_id, pg_order_id, pg_payment_key, event_type, status, webhook_data, created_at
	           ) VALUES (?, ?, ?, ?, ?, ?, ?, UTC_TIMESTAMP())`
	_, err := tx.ExecContext(ctx, q, id, rec.PaymentID, rec.OrderID, rec.PaymentKey, rec.EventType, rec.Status, rec.RawData)
	if err != nil {
		return "", err
	}
	return id, nil
}
