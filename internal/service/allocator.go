package service

import (
	"context"
	"database/sql"
	"time"

	"github.com/iliyamo/luggage-storage-reservation/internal/model"
	"github.com/iliyamo/luggage-storage-reservation/internal/repository"
)

// Allocator owns the occupied/available flag of storage units. Nothing else
// in the codebase writes unit status: lifecycle transitions acquire through
// AssignTx and give back through ReleaseTx, always inside the transaction
// that carries the accompanying reservation write. That keeps the unit
// invariant (held iff confirmed/in_progress) enforceable in one place and
// means a crash between the two writes rolls both back together.
type Allocator struct {
	storages *repository.StorageRepo
}

// NewAllocator returns an Allocator over the given storage repository.
func NewAllocator(storages *repository.StorageRepo) *Allocator {
	return &Allocator{storages: storages}
}

// AssignTx picks one free unit for the store/size class whose existing
// bookings do not overlap [start, end), deterministically preferring the
// lowest unit number, and marks it occupied. The candidate scan locks the
// chosen row FOR UPDATE, closing the race window between "scan for a free
// unit" and "mark it occupied" under concurrent approvals. Returns
// repository.ErrNoAvailableStorage when the pool is exhausted.
func (a *Allocator) AssignTx(ctx context.Context, tx *sql.Tx, storeID string, sizeClass model.SizeClass, start, end time.Time) (*model.StorageUnit, error) {
	unit, err := a.storages.FindAssignableTx(ctx, tx, storeID, sizeClass, start, end)
	if err != nil {
		return nil, err
	}
	if err := a.storages.MarkOccupiedTx(ctx, tx, unit.ID); err != nil {
		return nil, err
	}
	unit.Status = model.StorageOccupied
	return unit, nil
}

// ReleaseTx returns a unit to the pool. Idempotent: releasing a unit that
// is already available is a no-op.
func (a *Allocator) ReleaseTx(ctx context.Context, tx *sql.Tx, unitID string) error {
	return a.storages.ReleaseTx(ctx, tx, unitID)
}
