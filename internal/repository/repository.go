package repository

import (
	"context"

	"medcart/internal/model"
)

// CartRepository defines the durable store for cart lines. The cart
// survives page loads and sessions; the store is keyed by cart ID.
type CartRepository interface {
	// Load retrieves every line of the given cart. A cart with no rows
	// is an empty cart, not an error.
	Load(ctx context.Context, cartID model.CartID) ([]model.CartLine, error)

	// Save replaces the persisted lines of the given cart atomically.
	Save(ctx context.Context, cartID model.CartID, lines []model.CartLine) error

	// Delete removes every line of the given cart.
	Delete(ctx context.Context, cartID model.CartID) error
}
