package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/iliyamo/luggage-storage-reservation/internal/model"
)

// StorageRepo provides data access for the storages table. Unit status is
// the shared resource contended by concurrent approvals, so the assignment
// scan locks candidate rows with FOR UPDATE and must run in the same
// transaction that records the assignment on the reservation. Only the
// allocator and the terminal-transition release path may write unit status.
type StorageRepo struct {
	db *sql.DB
}

// NewStorageRepo returns a StorageRepo bound to the given database.
func NewStorageRepo(db *sql.DB) *StorageRepo { return &StorageRepo{db: db} }

// FindAssignableTx returns the free unit of the requested store and size
// class with the lowest unit number whose window does not collide with any
// confirmed/in_progress reservation, using the half-open overlap test
// (existing.start < end AND existing.end > start). The selected row is
// locked FOR UPDATE so two concurrent approvals cannot pick the same unit;
// the second transaction blocks and re-evaluates after the first commits.
// Returns ErrNoAvailableStorage when no unit qualifies.
func (r *StorageRepo) FindAssignableTx(ctx context.Context, tx *sql.Tx, storeID string, sizeClass model.SizeClass, start, end time.Time) (*model.StorageUnit, error) {
	const q = `SELECT s.id, s.store_id, s.number, s.type, s.status, s.created_at, s.updated_at
	           FROM storages s
	           WHERE s.store_id = ? AND s.type = ? AND s.status = 'available'
	             AND NOT EXISTS (
	               SELECT 1 FROM reservations r
	               WHERE r.storage_id = s.id
	                 AND r.status IN ('confirmed', 'in_progress')
	                 AND r.start_time < ? AND r.end_time > ?
	             )
	           ORDER BY s.number
	           LIMIT 1
	           FOR UPDATE`
	var unit model.StorageUnit
	var sizeStr, statusStr string
	err := tx.QueryRowContext(ctx, q, storeID, string(sizeClass), end.UTC(), start.UTC()).Scan(
		&unit.ID, &unit.StoreID, &unit.Number, &sizeStr, &statusStr, &unit.CreatedAt, &unit.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNoAvailableStorage
		}
		return nil, err
	}
	unit.SizeClass = model.SizeClass(sizeStr)
	unit.Status = model.StorageStatus(statusStr)
	return &unit, nil
}

// MarkOccupiedTx flips a unit to occupied. Callers hold the row lock from
// FindAssignableTx in the same transaction.
func (r *StorageRepo) MarkOccupiedTx(ctx context.Context, tx *sql.Tx, unitID string) error {
	const q = `UPDATE storages SET status = 'occupied', updated_at = UTC_TIMESTAMP() WHERE id = ?`
	_, err := tx.ExecContext(ctx, q, unitID)
	return err
}

// ReleaseTx flips a unit back to available. Releasing an already-available
// or unknown unit is a no-op, never an error, which keeps terminal
// transitions idempotent.
func (r *StorageRepo) ReleaseTx(ctx context.Context, tx *sql.Tx, unitID string) error {
	const q = `UPDATE storages SET status = 'available', updated_at = UTC_TIMESTAMP()
	           WHERE id = ? AND status = 'occupied'`
	_, err := tx.ExecContext(ctx, q, unitID)
	return err
}

// StorageSummary is one row of a store's directory listing with the unit's
// live status.
type StorageSummary struct {
	ID        string `json:"id"`
	Number    string `json:"number"`
	SizeClass string `json:"size_class"`
	Status    string `json:"status"`
}

// ListByStore returns all units of a store ordered by number, for the
// store-facing directory endpoint. A non-empty sizeClass narrows the list.
func (r *StorageRepo) ListByStore(ctx context.Context, storeID, sizeClass string) ([]StorageSummary, error) {
	q := `SELECT id, number, type, status FROM storages WHERE store_id = ?`
	args := []interface{}{storeID}
	if sizeClass != "" {
		q += ` AND type = ?`
		args = append(args, sizeClass)
	}
	q += ` ORDER BY number`
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]StorageSummary, 0)
	for rows.Next() {
		var s StorageSummary
		if err := rows.Scan(&s.ID, &s.Number, &s.SizeClass, &s.Status); err != nil {
			return nil, err
		}
		items = append(items, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

// OccupancyByClass returns occupied/total counts per size class for a
// store. Consumed by the directory endpoint alongside the unit list.
func (r *StorageRepo) OccupancyByClass(ctx context.Context, storeID string) (map[string][2]int, error) {
	const q = `SELECT type, SUM(status = 'occupied'), COUNT(*) FROM storages WHERE store_id = ? GROUP BY type`
	rows, err := r.db.QueryContext(ctx, q, storeID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[string][2]int)
	for rows.Next() {
		var class string
		var occupied, total int
		if err := rows.Scan(&class, &occupied, &total); err != nil {
			return nil, err
		}
		out[class] = [2]int{occupied, total}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
