package model

import "time"

// StockStatus describes the availability of a medicine in the catalogue.
type StockStatus string

const (
	StockInStock    StockStatus = "IN_STOCK"
	StockLowStock   StockStatus = "LOW_STOCK"
	StockOutOfStock StockStatus = "OUT_OF_STOCK"
	StockPreOrder   StockStatus = "PRE_ORDER"
)

// Medicine represents a catalogue entry as seen by the cart subsystem.
// It is read-only here; the catalogue service owns mutations.
type Medicine struct {
	ID            string      `json:"id" db:"id"`
	Name          string      `json:"name" db:"name"`
	Price         float64     `json:"price" db:"price"`
	LimitQuantity *int        `json:"limitQuantity,omitempty" db:"limit_quantity"`
	StockStatus   StockStatus `json:"stockStatus" db:"stock_status"`
	UpdatedAt     time.Time   `json:"updatedAt,omitempty" db:"updated_at"`
}

// Limited reports whether a per-customer purchase limit is configured.
func (m *Medicine) Limited() bool {
	return m.LimitQuantity != nil
}

// Limit returns the configured purchase limit, or 0 when unlimited.
func (m *Medicine) Limit() int {
	if m.LimitQuantity == nil {
		return 0
	}
	return *m.LimitQuantity
}
