package formulary

import (
	"context"
	"testing"

	"medcart/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMapSnapshot_Add_And_Lookup(t *testing.T) {
	set := NewMapSnapshot(10).(*mapSnapshot)

	limit := 5
	set.Add(model.Medicine{ID: "M001", Name: "Paracetamol 500mg", Price: 4.50, LimitQuantity: &limit, StockStatus: model.StockInStock})

	med, ok := set.Lookup("M001")
	require.True(t, ok)
	assert.Equal(t, "Paracetamol 500mg", med.Name)
	assert.Equal(t, 5, med.Limit())

	_, ok = set.Lookup("NOTEXIST")
	assert.False(t, ok)

	// Replacing an entry does not grow the snapshot.
	set.Add(model.Medicine{ID: "M001", Name: "Paracetamol 500mg", Price: 4.50, StockStatus: model.StockLowStock})
	assert.Equal(t, 1, set.Size())

	med, ok = set.Lookup("M001")
	require.True(t, ok)
	assert.Equal(t, model.StockLowStock, med.StockStatus)
}

func TestCatalog_Get(t *testing.T) {
	set := NewMapSnapshot(10).(*mapSnapshot)
	set.Add(model.Medicine{ID: "M001", Name: "Ibuprofen 200mg", Price: 6.00, StockStatus: model.StockInStock})

	catalog := NewCatalog(set)
	assert.Equal(t, 1, catalog.Size())

	med, err := catalog.Get(context.Background(), "M001")
	require.NoError(t, err)
	assert.Equal(t, "M001", med.ID)

	_, err = catalog.Get(context.Background(), "M999")
	assert.ErrorIs(t, err, model.ErrMedicineNotFound)
}
