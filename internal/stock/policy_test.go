package stock

import (
	"testing"

	"medcart/internal/model"

	"github.com/stretchr/testify/assert"
)

func limit(n int) *int {
	return &n
}

func TestRemaining(t *testing.T) {
	tests := []struct {
		name     string
		medicine *model.Medicine
		inCart   int
		expected int
	}{
		{
			name:     "No limit configured",
			medicine: &model.Medicine{ID: "M001", StockStatus: model.StockInStock},
			inCart:   7,
			expected: Unlimited,
		},
		{
			name:     "Full allowance left",
			medicine: &model.Medicine{ID: "M001", LimitQuantity: limit(5), StockStatus: model.StockInStock},
			inCart:   0,
			expected: 5,
		},
		{
			name:     "Partial allowance left",
			medicine: &model.Medicine{ID: "M001", LimitQuantity: limit(5), StockStatus: model.StockInStock},
			inCart:   3,
			expected: 2,
		},
		{
			name:     "Allowance exhausted",
			medicine: &model.Medicine{ID: "M001", LimitQuantity: limit(5), StockStatus: model.StockInStock},
			inCart:   5,
			expected: 0,
		},
		{
			name:     "Cart already above a lowered limit floors at zero",
			medicine: &model.Medicine{ID: "M001", LimitQuantity: limit(2), StockStatus: model.StockInStock},
			inCart:   5,
			expected: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Remaining(tt.medicine, tt.inCart))
		})
	}
}

func TestCanAdd(t *testing.T) {
	tests := []struct {
		name      string
		medicine  *model.Medicine
		inCart    int
		requested int
		expected  Grant
	}{
		{
			name:      "Full grant within limit",
			medicine:  &model.Medicine{ID: "M001", LimitQuantity: limit(5), StockStatus: model.StockInStock},
			inCart:    0,
			requested: 3,
			expected:  Grant{Allowed: true, Quantity: 3},
		},
		{
			name:      "Partial grant clamps to remaining allowance",
			medicine:  &model.Medicine{ID: "M001", LimitQuantity: limit(5), StockStatus: model.StockInStock},
			inCart:    3,
			requested: 4,
			expected:  Grant{Allowed: true, Quantity: 2, Clamped: true},
		},
		{
			name:      "Zero grant when allowance exhausted",
			medicine:  &model.Medicine{ID: "M001", LimitQuantity: limit(5), StockStatus: model.StockInStock},
			inCart:    5,
			requested: 1,
			expected:  Grant{},
		},
		{
			name:      "Out of stock rejected outright",
			medicine:  &model.Medicine{ID: "M001", LimitQuantity: limit(5), StockStatus: model.StockOutOfStock},
			inCart:    0,
			requested: 1,
			expected:  Grant{},
		},
		{
			name:      "Unlimited medicine grants any quantity",
			medicine:  &model.Medicine{ID: "M001", StockStatus: model.StockInStock},
			inCart:    100,
			requested: 50,
			expected:  Grant{Allowed: true, Quantity: 50},
		},
		{
			name:      "Pre-order medicine is addable",
			medicine:  &model.Medicine{ID: "M001", LimitQuantity: limit(2), StockStatus: model.StockPreOrder},
			inCart:    0,
			requested: 2,
			expected:  Grant{Allowed: true, Quantity: 2},
		},
		{
			name:      "Non-positive request yields zero grant",
			medicine:  &model.Medicine{ID: "M001", StockStatus: model.StockInStock},
			inCart:    0,
			requested: 0,
			expected:  Grant{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, CanAdd(tt.medicine, tt.inCart, tt.requested))
		})
	}
}

// The clamp scenario from the storefront: limit 5, add 3 then add 4 more.
func TestCanAdd_SequentialClamp(t *testing.T) {
	med := &model.Medicine{ID: "M001", LimitQuantity: limit(5), StockStatus: model.StockInStock}

	first := CanAdd(med, 0, 3)
	assert.Equal(t, Grant{Allowed: true, Quantity: 3}, first)

	second := CanAdd(med, first.Quantity, 4)
	assert.Equal(t, Grant{Allowed: true, Quantity: 2, Clamped: true}, second)
	assert.Equal(t, 5, first.Quantity+second.Quantity)
}

func TestClampQuantity(t *testing.T) {
	med := &model.Medicine{ID: "M001", LimitQuantity: limit(5), StockStatus: model.StockInStock}

	assert.Equal(t, 1, ClampQuantity(med, 0))
	assert.Equal(t, 3, ClampQuantity(med, 3))
	assert.Equal(t, 5, ClampQuantity(med, 9))

	unlimited := &model.Medicine{ID: "M002", StockStatus: model.StockInStock}
	assert.Equal(t, 9, ClampQuantity(unlimited, 9))
}
