package model

import "time"

// CartLine represents one product reservation in a customer's cart.
type CartLine struct {
	ProductID string    `json:"productId" db:"product_id"`
	Quantity  int       `json:"quantity" db:"quantity"`
	UpdatedAt time.Time `json:"updatedAt" db:"updated_at"`
}

// CartID identifies a cart; one cart per customer session.
type CartID string

// Cart is the client-side view of a customer's cart.
type Cart struct {
	ID    CartID     `json:"id"`
	Lines []CartLine `json:"lines"`
}

// Line returns the line for the given product, or nil when absent.
func (c *Cart) Line(productID string) *CartLine {
	for i := range c.Lines {
		if c.Lines[i].ProductID == productID {
			return &c.Lines[i]
		}
	}
	return nil
}

// TotalUnits returns the total number of units across all lines.
func (c *Cart) TotalUnits() int {
	total := 0
	for _, l := range c.Lines {
		total += l.Quantity
	}
	return total
}
