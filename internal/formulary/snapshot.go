package formulary

import (
	"context"

	"medcart/internal/model"
)

// mapSnapshot implements Snapshot using a map for O(1) lookups.
type mapSnapshot struct {
	medicines map[string]model.Medicine
}

// NewMapSnapshot creates a new map-based snapshot.
func NewMapSnapshot(capacity int) Snapshot {
	return &mapSnapshot{
		medicines: make(map[string]model.Medicine, capacity),
	}
}

// Lookup returns the medicine for the given ID, if present.
func (s *mapSnapshot) Lookup(id string) (*model.Medicine, bool) {
	med, ok := s.medicines[id]
	if !ok {
		return nil, false
	}
	return &med, true
}

// Size returns the number of medicines in the snapshot.
func (s *mapSnapshot) Size() int {
	return len(s.medicines)
}

// Add inserts a medicine into the snapshot, replacing any previous
// entry with the same ID.
func (s *mapSnapshot) Add(med model.Medicine) {
	s.medicines[med.ID] = med
}

// catalog adapts a Snapshot to the Catalog interface.
type catalog struct {
	snapshot Snapshot
}

// NewCatalog wraps a loaded snapshot as a Catalog.
func NewCatalog(snapshot Snapshot) Catalog {
	return &catalog{snapshot: snapshot}
}

// Get returns the medicine with the given ID.
func (c *catalog) Get(ctx context.Context, id string) (*model.Medicine, error) {
	med, ok := c.snapshot.Lookup(id)
	if !ok {
		return nil, model.ErrMedicineNotFound
	}
	return med, nil
}

// Size returns the number of medicines in the snapshot.
func (c *catalog) Size() int {
	return c.snapshot.Size()
}
