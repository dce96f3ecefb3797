// Package cart implements the authoritative cart store. Every mutation
// funnels through the stock limit policy, so no cart line can exceed a
// configured purchase limit or reference an out-of-stock medicine.
package cart

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"medcart/internal/formulary"
	"medcart/internal/model"
	"medcart/internal/repository"
	"medcart/internal/stock"

	"github.com/rs/zerolog"
)

// Store defines the cart mutation API. All operations are safe for
// concurrent use; each mutation is a single atomic update.
type Store interface {
	// Add grants as much of the requested quantity as the limit policy
	// allows, using the existing line as the baseline. A partial grant
	// (Clamped) is returned so the caller can surface the reduction.
	Add(ctx context.Context, cartID model.CartID, productID string, quantity int) (stock.Grant, error)

	// UpdateQuantity sets an absolute quantity, clamped into the legal
	// range. A quantity below 1 removes the line.
	UpdateQuantity(ctx context.Context, cartID model.CartID, productID string, quantity int) error

	// Remove deletes the line unconditionally.
	Remove(ctx context.Context, cartID model.CartID, productID string) error

	// Clear empties the cart; invoked after successful checkout.
	Clear(ctx context.Context, cartID model.CartID) error

	// Get returns the current cart.
	Get(ctx context.Context, cartID model.CartID) (*model.Cart, error)

	// Restore loads the cart from durable storage and revalidates every
	// line against the current formulary, clamping or dropping lines
	// that no longer satisfy the invariant.
	Restore(ctx context.Context, cartID model.CartID) (*model.Cart, error)
}

// store implements Store over an in-memory map with write-through
// persistence.
type store struct {
	mu      sync.Mutex
	carts   map[model.CartID][]model.CartLine
	repo    repository.CartRepository
	catalog formulary.Catalog
	logger  zerolog.Logger
	now     func() time.Time
}

// NewStore creates a cart store backed by the given repository and
// medicine catalog.
func NewStore(repo repository.CartRepository, catalog formulary.Catalog, logger zerolog.Logger) Store {
	return &store{
		carts:   make(map[model.CartID][]model.CartLine),
		repo:    repo,
		catalog: catalog,
		logger:  logger.With().Str("service", "cart").Logger(),
		now:     time.Now,
	}
}

// Add implements Store.
func (s *store) Add(ctx context.Context, cartID model.CartID, productID string, quantity int) (stock.Grant, error) {
	if quantity <= 0 {
		return stock.Grant{}, model.ErrInvalidQuantity
	}

	med, err := s.catalog.Get(ctx, productID)
	if err != nil {
		s.logger.Warn().Err(err).Str("product_id", productID).Msg("add to cart for unknown medicine")
		return stock.Grant{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	lines, err := s.linesLocked(ctx, cartID)
	if err != nil {
		return stock.Grant{}, err
	}

	existing := 0
	idx := -1
	for i, l := range lines {
		if l.ProductID == productID {
			existing = l.Quantity
			idx = i
			break
		}
	}

	grant := stock.CanAdd(med, existing, quantity)
	if !grant.Allowed {
		if med.StockStatus == model.StockOutOfStock {
			s.logger.Warn().
				Str("cart_id", string(cartID)).
				Str("product_id", productID).
				Msg("add to cart rejected: out of stock")
			return grant, model.ErrOutOfStock
		}
		s.logger.Warn().
			Str("cart_id", string(cartID)).
			Str("product_id", productID).
			Int("in_cart", existing).
			Msg("add to cart rejected: purchase limit reached")
		return grant, model.ErrLimitReached
	}

	// Mutate a copy; the stored lines stay intact if Save fails.
	next := copyLines(lines)
	if idx >= 0 {
		next[idx].Quantity += grant.Quantity
		next[idx].UpdatedAt = s.now()
	} else {
		next = append(next, model.CartLine{
			ProductID: productID,
			Quantity:  grant.Quantity,
			UpdatedAt: s.now(),
		})
	}

	if err := s.saveLocked(ctx, cartID, next); err != nil {
		return stock.Grant{}, err
	}

	s.logger.Info().
		Str("cart_id", string(cartID)).
		Str("product_id", productID).
		Int("requested", quantity).
		Int("granted", grant.Quantity).
		Bool("clamped", grant.Clamped).
		Msg("cart line added")

	return grant, nil
}

// UpdateQuantity implements Store.
func (s *store) UpdateQuantity(ctx context.Context, cartID model.CartID, productID string, quantity int) error {
	if quantity < 1 {
		return s.Remove(ctx, cartID, productID)
	}

	med, err := s.catalog.Get(ctx, productID)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	lines, err := s.linesLocked(ctx, cartID)
	if err != nil {
		return err
	}

	clamped := stock.ClampQuantity(med, quantity)
	next := copyLines(lines)
	updated := false
	for i := range next {
		if next[i].ProductID == productID {
			next[i].Quantity = clamped
			next[i].UpdatedAt = s.now()
			updated = true
			break
		}
	}
	if !updated {
		return model.NewDomainError(model.ErrCodeMedicineNotFound, fmt.Sprintf("no cart line for product %s", productID))
	}

	if err := s.saveLocked(ctx, cartID, next); err != nil {
		return err
	}

	s.logger.Info().
		Str("cart_id", string(cartID)).
		Str("product_id", productID).
		Int("quantity", clamped).
		Msg("cart line updated")

	return nil
}

// Remove implements Store.
func (s *store) Remove(ctx context.Context, cartID model.CartID, productID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	lines, err := s.linesLocked(ctx, cartID)
	if err != nil {
		return err
	}

	kept := make([]model.CartLine, 0, len(lines))
	for _, l := range lines {
		if l.ProductID != productID {
			kept = append(kept, l)
		}
	}

	if err := s.saveLocked(ctx, cartID, kept); err != nil {
		return err
	}

	s.logger.Info().
		Str("cart_id", string(cartID)).
		Str("product_id", productID).
		Msg("cart line removed")

	return nil
}

// Clear implements Store.
func (s *store) Clear(ctx context.Context, cartID model.CartID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.repo.Delete(ctx, cartID); err != nil {
		return err
	}
	delete(s.carts, cartID)

	s.logger.Info().Str("cart_id", string(cartID)).Msg("cart cleared")
	return nil
}

// Get implements Store.
func (s *store) Get(ctx context.Context, cartID model.CartID) (*model.Cart, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	lines, err := s.linesLocked(ctx, cartID)
	if err != nil {
		return nil, err
	}

	return &model.Cart{ID: cartID, Lines: copyLines(lines)}, nil
}

// Restore implements Store. Limits may have been lowered or stock
// depleted since the cart was persisted, so every line is re-checked.
func (s *store) Restore(ctx context.Context, cartID model.CartID) (*model.Cart, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	lines, err := s.loadLocked(ctx, cartID)
	if err != nil {
		return nil, err
	}

	s.logger.Info().
		Str("cart_id", string(cartID)).
		Int("line_count", len(lines)).
		Msg("cart restored")

	return &model.Cart{ID: cartID, Lines: copyLines(lines)}, nil
}

// linesLocked returns the in-memory lines for the cart, loading them
// from the repository on first access. Caller holds s.mu.
func (s *store) linesLocked(ctx context.Context, cartID model.CartID) ([]model.CartLine, error) {
	if lines, ok := s.carts[cartID]; ok {
		return lines, nil
	}
	return s.loadLocked(ctx, cartID)
}

// loadLocked reads the persisted lines and revalidates every one
// against the current formulary before they become visible. The
// quantity invariant holds the moment persisted state is served, not
// only on an explicit restore. Caller holds s.mu.
func (s *store) loadLocked(ctx context.Context, cartID model.CartID) ([]model.CartLine, error) {
	lines, err := s.repo.Load(ctx, cartID)
	if err != nil {
		return nil, err
	}

	revalidated := make([]model.CartLine, 0, len(lines))
	changed := false
	for _, line := range lines {
		med, err := s.catalog.Get(ctx, line.ProductID)
		if err != nil {
			if errors.Is(err, model.ErrMedicineNotFound) {
				s.logger.Warn().
					Str("cart_id", string(cartID)).
					Str("product_id", line.ProductID).
					Msg("dropping cart line: medicine no longer in formulary")
				changed = true
				continue
			}
			return nil, err
		}

		if med.StockStatus == model.StockOutOfStock {
			s.logger.Warn().
				Str("cart_id", string(cartID)).
				Str("product_id", line.ProductID).
				Msg("dropping cart line: medicine out of stock")
			changed = true
			continue
		}

		if clamped := stock.ClampQuantity(med, line.Quantity); clamped != line.Quantity {
			s.logger.Warn().
				Str("cart_id", string(cartID)).
				Str("product_id", line.ProductID).
				Int("persisted", line.Quantity).
				Int("clamped", clamped).
				Msg("clamping cart line to lowered purchase limit")
			line.Quantity = clamped
			line.UpdatedAt = s.now()
			changed = true
		}

		revalidated = append(revalidated, line)
	}

	if changed {
		if err := s.repo.Save(ctx, cartID, revalidated); err != nil {
			return nil, err
		}
	}
	s.carts[cartID] = revalidated

	return revalidated, nil
}

// saveLocked persists the lines and updates the in-memory copy. Caller
// holds s.mu.
func (s *store) saveLocked(ctx context.Context, cartID model.CartID, lines []model.CartLine) error {
	if err := s.repo.Save(ctx, cartID, lines); err != nil {
		return err
	}
	s.carts[cartID] = lines
	return nil
}

func copyLines(lines []model.CartLine) []model.CartLine {
	out := make([]model.CartLine, len(lines))
	copy(out, lines)
	return out
}
