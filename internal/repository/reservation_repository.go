package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/iliyamo/luggage-storage-reservation/internal/model"
)

// ReservationRepo provides data access for the reservations table. All
// timestamps are stored in UTC. Methods with a Tx suffix run inside a
// caller-supplied transaction; the caller commits or rolls back. Lifecycle
// transitions must lock the row first via GetForUpdateTx so concurrent
// transitions on the same reservation serialize.
type ReservationRepo struct {
	db *sql.DB
}

// NewReservationRepo returns a ReservationRepo bound to the given database.
func NewReservationRepo(db *sql.DB) *ReservationRepo { return &ReservationRepo{db: db} }

const reservationColumns = `id, store_id, customer_id, customer_name, customer_phone, customer_email,
       status, size_class, start_time, end_time, request_time, duration, bag_count,
       total_amount, payment_status, payment_method, storage_id, storage_number,
       actual_start_time, actual_end_time, luggage_image_urls, created_at, updated_at`

// Create inserts a new reservation row. The record must already carry its
// generated id, validated fields and pending statuses.
func (r *ReservationRepo) Create(ctx context.Context, res *model.Reservation) error {
	const q = `INSERT INTO reservations (
	             id, store_id, customer_id, customer_name, customer_phone, customer_email,
	             status, size_class, start_time, end_time, request_time, duration, bag_count,
	             total_amount, payment_status, payment_method, luggage_image_urls,
	             created_at, updated_at
	           ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, UTC_TIMESTAMP(), UTC_TIMESTAMP())`
	_, err := r.db.ExecContext(ctx, q,
		res.ID, res.StoreID, res.CustomerID, res.CustomerName, res.CustomerPhone, res.CustomerEmail,
		string(res.Status), string(res.SizeClass),
		res.StartTime.UTC(), res.EndTime.UTC(), res.RequestTime.UTC(),
		res.DurationHours, res.BagCount,
		res.TotalAmount, string(res.PaymentStatus), res.PaymentMethod,
		photosToJSON(res.PhotoURLs),
	)
	return err
}

// GetByIDForStore returns a reservation scoped to the given store. A row
// that exists but belongs to another store is reported as ErrNotFound.
func (r *ReservationRepo) GetByIDForStore(ctx context.Context, id, storeID string) (*model.Reservation, error) {
	q := `SELECT ` + reservationColumns + ` FROM reservations WHERE id = ? AND store_id = ?`
	return r.scanOne(r.db.QueryRowContext(ctx, q, id, storeID))
}

// GetForUpdateTx loads a reservation with a row lock inside the given
// transaction. The lock serializes concurrent lifecycle transitions for the
// same reservation. Returns ErrNotFound when no row exists.
func (r *ReservationRepo) GetForUpdateTx(ctx context.Context, tx *sql.Tx, id string) (*model.Reservation, error) {
	q := `SELECT ` + reservationColumns + ` FROM reservations WHERE id = ? FOR UPDATE`
	return r.scanOne(tx.QueryRowContext(ctx, q, id))
}

// ListFilter narrows List results. Zero values mean "no filter". Date
// matches the calendar day of start_time.
type ListFilter struct {
	Status     model.ReservationStatus
	Date       string // YYYY-MM-DD
	CustomerID string
	Page       int
	Limit      int
}

// ListByStore returns a page of reservations for a store, newest first,
// along with the total row count for the filter.
func (r *ReservationRepo) ListByStore(ctx context.Context, storeID string, f ListFilter) ([]model.Reservation, int, error) {
	conds := []string{"store_id = ?"}
	args := []interface{}{storeID}
	if f.Status != "" {
		conds = append(conds, "status = ?")
		args = append(args, string(f.Status))
	}
	if f.Date != "" {
		conds = append(conds, "DATE(start_time) = ?")
		args = append(args, f.Date)
	}
	if f.CustomerID != "" {
		conds = append(conds, "customer_id = ?")
		args = append(args, f.CustomerID)
	}
	where := strings.Join(conds, " AND ")

	var total int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM reservations WHERE `+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	page := f.Page
	if page < 1 {
		page = 1
	}
	limit := f.Limit
	if limit < 1 {
		limit = 20
	}
	q := `SELECT ` + reservationColumns + ` FROM reservations WHERE ` + where +
		` ORDER BY created_at DESC LIMIT ? OFFSET ?`
	args = append(args, limit, (page-1)*limit)

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	items := make([]model.Reservation, 0)
	for rows.Next() {
		res, err := r.scanRow(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, *res)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

// AssignStorageTx records the allocator's decision: the reservation becomes
// confirmed and carries the assigned unit's id and human number. Must run in
// the same transaction that marks the unit occupied.
func (r *ReservationRepo) AssignStorageTx(ctx context.Context, tx *sql.Tx, id, storageID, storageNumber string) error {
	const q = `UPDATE reservations
	           SET status = 'confirmed', storage_id = ?, storage_number = ?, updated_at = UTC_TIMESTAMP()
	           WHERE id = ?`
	_, err := tx.ExecContext(ctx, q, storageID, storageNumber, id)
	return err
}

// CheckinTx moves the reservation to in_progress. The actual start
// timestamp is only written when still unset, so repeated check-ins keep
// the first one. The photo list replaces the stored JSON; callers pass the
// already-merged accumulation.
func (r *ReservationRepo) CheckinTx(ctx context.Context, tx *sql.Tx, id string, actualStart time.Time, photos []string) error {
	const q = `UPDATE reservations
	           SET status = 'in_progress',
	               actual_start_time = IFNULL(actual_start_time, ?),
	               luggage_image_urls = ?,
	               updated_at = UTC_TIMESTAMP()
	           WHERE id = ?`
	_, err := tx.ExecContext(ctx, q, actualStart.UTC(), photosToJSON(photos), id)
	return err
}

// CompleteTx moves the reservation to completed, stamps the actual end time
// and drops the unit reference. Must run in the same transaction that
// releases the unit.
func (r *ReservationRepo) CompleteTx(ctx context.Context, tx *sql.Tx, id string, actualEnd time.Time) error {
	const q = `UPDATE reservations
	           SET status = 'completed', actual_end_time = ?,
	               storage_id = NULL, storage_number = NULL,
	               updated_at = UTC_TIMESTAMP()
	           WHERE id = ?`
	_, err := tx.ExecContext(ctx, q, actualEnd.UTC(), id)
	return err
}

// TerminalTx moves the reservation into rejected or cancelled, optionally
// updating the payment axis, and drops any unit reference. Must run in the
// same transaction that releases the unit.
func (r *ReservationRepo) TerminalTx(ctx context.Context, tx *sql.Tx, id string, status model.ReservationStatus, payStatus model.ReservationPaymentStatus) error {
	if payStatus != "" {
		const q = `UPDATE reservations
		           SET status = ?, payment_status = ?,
		               storage_id = NULL, storage_number = NULL,
		               updated_at = UTC_TIMESTAMP()
		           WHERE id = ?`
		_, err := tx.ExecContext(ctx, q, string(status), string(payStatus), id)
		return err
	}
	const q = `UPDATE reservations
	           SET status = ?, storage_id = NULL, storage_number = NULL, updated_at = UTC_TIMESTAMP()
	           WHERE id = ?`
	_, err := tx.ExecContext(ctx, q, string(status), id)
	return err
}

// MarkPaymentSettledTx is the reconciler's SUCCESS effect for a reservation
// that is still pending: it stays pending awaiting store approval with its
// payment axis paid. Callers verify the current status under the row lock
// first; an approved reservation keeps its status and unit and only gets
// SetPaymentStatusTx.
func (r *ReservationRepo) MarkPaymentSettledTx(ctx context.Context, tx *sql.Tx, id string) error {
	const q = `UPDATE reservations
	           SET status = 'pending', payment_status = 'paid', updated_at = UTC_TIMESTAMP()
	           WHERE id = ?`
	_, err := tx.ExecContext(ctx, q, id)
	return err
}

// SetPaymentStatusTx updates only the payment axis. The lifecycle status is
// deliberately untouched: a failed payment does not cancel the booking.
func (r *ReservationRepo) SetPaymentStatusTx(ctx context.Context, tx *sql.Tx, id string, payStatus model.ReservationPaymentStatus) error {
	const q = `UPDATE reservations SET payment_status = ?, updated_at = UTC_TIMESTAMP() WHERE id = ?`
	_, err := tx.ExecContext(ctx, q, string(payStatus), id)
	return err
}

func (r *ReservationRepo) scanOne(row *sql.Row) (*model.Reservation, error) {
	res, err := scanReservation(row.Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return res, nil
}

func (r *ReservationRepo) scanRow(rows *sql.Rows) (*model.Reservation, error) {
	return scanReservation(rows.Scan)
}

// scanReservation maps one reservations row onto the model, decoding the
// nullable columns and the photo JSON.
func scanReservation(scan func(dest ...interface{}) error) (*model.Reservation, error) {
	var res model.Reservation
	var status, sizeClass, payStatus string
	var email, storageID, storageNumber, photosJSON sql.NullString
	var actualStart, actualEnd sql.NullTime
	err := scan(
		&res.ID, &res.StoreID, &res.CustomerID, &res.CustomerName, &res.CustomerPhone, &email,
		&status, &sizeClass, &res.StartTime, &res.EndTime, &res.RequestTime,
		&res.DurationHours, &res.BagCount,
		&res.TotalAmount, &payStatus, &res.PaymentMethod, &storageID, &storageNumber,
		&actualStart, &actualEnd, &photosJSON, &res.CreatedAt, &res.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	res.Status = model.ReservationStatus(status)
	res.SizeClass = model.SizeClass(sizeClass)
	res.PaymentStatus = model.ReservationPaymentStatus(payStatus)
	if email.Valid {
		v := email.String
		res.CustomerEmail = &v
	}
	if storageID.Valid {
		v := storageID.String
		res.StorageID = &v
	}
	if storageNumber.Valid {
		v := storageNumber.String
		res.StorageNumber = &v
	}
	if actualStart.Valid {
		t := actualStart.Time.UTC()
		res.ActualStartTime = &t
	}
	if actualEnd.Valid {
		t := actualEnd.Time.UTC()
		res.ActualEndTime = &t
	}
	res.PhotoURLs = photosFromJSON(photosJSON)
	return &res, nil
}

func photosToJSON(photos []string) interface{} {
	if len(photos) == 0 {
		return nil
	}
	b, err := json.Marshal(photos)
	if err != nil {
		return nil
	}
	return string(b)
}

func photosFromJSON(raw sql.NullString) []string {
	if !raw.Valid || raw.String == "" {
		return nil
	}
	var photos []string
	if err := json.Unmarshal([]byte(raw.String), &photos); err != nil {
		return nil
	}
	return photos
}
