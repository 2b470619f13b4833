package model

import "time"

// StorageUnit is a single physical, store-scoped storage slot of one size
// class. Units are created and sized by store configuration; this core only
// flips them between available and occupied. The unit table is the one
// shared mutable resource contended by concurrent reservations, so its
// status may be written only by the allocator's assign/release paths.
//
// Fields:
//
//	ID        - opaque identifier.
//	StoreID   - owning store.
//	Number    - human-readable label like "M3", unique per store.
//	SizeClass - physical category (xs|s|m|l|special|refrigerated).
//	Status    - available or occupied; two-valued, no offline state.
type StorageUnit struct {
	ID        string        // storages.id
	StoreID   string        // storages.store_id
	Number    string        // storages.number
	SizeClass SizeClass     // storages.type
	Status    StorageStatus // storages.status
	CreatedAt time.Time     // storages.created_at
	UpdatedAt time.Time     // storages.updated_at
}

// StorageStatus is the availability flag of a storage unit.
type StorageStatus string

const (
	StorageAvailable StorageStatus = "available"
	StorageOccupied  StorageStatus = "occupied"
)
