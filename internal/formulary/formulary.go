package formulary

import (
	"context"

	"medcart/internal/model"
)

// Catalog exposes read-only medicine lookups to the cart subsystem.
// The catalogue service owns the data; this side only consumes
// published snapshots.
type Catalog interface {
	// Get returns the medicine with the given ID, or
	// model.ErrMedicineNotFound when the snapshot does not contain it.
	Get(ctx context.Context, id string) (*model.Medicine, error)

	// Size returns the number of medicines in the loaded snapshot.
	Size() int
}

// Snapshot represents a loaded medicine snapshot for fast lookup.
type Snapshot interface {
	// Lookup returns the medicine for the given ID, if present.
	Lookup(id string) (*model.Medicine, bool)

	// Size returns the number of medicines in the snapshot.
	Size() int
}

// Loader defines the interface for loading formulary snapshot files.
type Loader interface {
	// Load reads a gzipped snapshot file and returns a Snapshot.
	Load(ctx context.Context, path string) (Snapshot, error)
}
