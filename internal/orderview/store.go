// Package orderview keeps the local order caches consumed by the three
// role views (admin table, delivery queue, customer history). Instead of
// three independent query caches that can drift apart, one store holds
// every order and each scope is a filtered read over it; subscribers are
// notified on every update.
package orderview

import (
	"context"
	"sort"
	"sync"

	"medcart/internal/model"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Cache mirrors scope lists into a shared cache so other instances drop
// stale data after a transition.
type Cache interface {
	// PutOrder stores a single order.
	PutOrder(ctx context.Context, order *model.Order) error

	// InvalidateScopes drops the cached list for every scope.
	InvalidateScopes(ctx context.Context) error
}

// ListCache extends Cache with read-through access to scope lists.
type ListCache interface {
	Cache

	// GetScopeList returns the cached list for a scope, or nil on a miss.
	GetScopeList(ctx context.Context, scope model.Scope) ([]*model.Order, error)

	// SetScopeList caches the list for a scope.
	SetScopeList(ctx context.Context, scope model.Scope, orders []*model.Order) error
}

// Subscriber is notified with a copy of every order update.
type Subscriber func(order *model.Order)

// Store is the single source of truth for locally known orders.
type Store struct {
	mu          sync.RWMutex
	orders      map[uuid.UUID]*model.Order
	subscribers map[int]Subscriber
	nextSubID   int
	cache       Cache
	logger      zerolog.Logger
}

// NewStore creates an order view store. cache may be nil when no shared
// cache is configured.
func NewStore(cache Cache, logger zerolog.Logger) *Store {
	return &Store{
		orders:      make(map[uuid.UUID]*model.Order),
		subscribers: make(map[int]Subscriber),
		cache:       cache,
		logger:      logger.With().Str("service", "orderview").Logger(),
	}
}

// Put upserts an order, writes through to the shared cache, invalidates
// every scope list, and notifies subscribers. All three views observe
// the new status without a full reload.
func (s *Store) Put(ctx context.Context, order *model.Order) error {
	stored := order.Clone()

	s.mu.Lock()
	s.orders[stored.ID] = stored
	subs := make([]Subscriber, 0, len(s.subscribers))
	for _, fn := range s.subscribers {
		subs = append(subs, fn)
	}
	s.mu.Unlock()

	if s.cache != nil {
		if err := s.cache.PutOrder(ctx, stored); err != nil {
			s.logger.Warn().Err(err).Str("order_id", stored.ID.String()).Msg("failed to write order to shared cache")
		}
		if err := s.cache.InvalidateScopes(ctx); err != nil {
			s.logger.Warn().Err(err).Msg("failed to invalidate scope caches")
		}
	}

	for _, fn := range subs {
		fn(stored.Clone())
	}

	s.logger.Debug().
		Str("order_id", stored.ID.String()).
		Str("status", string(stored.Status)).
		Int("subscriber_count", len(subs)).
		Msg("order view updated")

	return nil
}

// Get returns a copy of the order, if known locally.
func (s *Store) Get(id uuid.UUID) (*model.Order, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	order, ok := s.orders[id]
	if !ok {
		return nil, false
	}
	return order.Clone(), true
}

// List returns copies of the orders visible in the given scope, newest
// first.
func (s *Store) List(scope model.Scope) []*model.Order {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*model.Order
	for _, order := range s.orders {
		if InScope(scope, order.Status) {
			out = append(out, order.Clone())
		}
	}

	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out
}

// Subscribe registers a subscriber and returns an unsubscribe func.
func (s *Store) Subscribe(fn Subscriber) func() {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.nextSubID
	s.nextSubID++
	s.subscribers[id] = fn

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.subscribers, id)
	}
}

// InScope reports whether an order with the given status appears in the
// scope's view. The admin table and the customer's own history show the
// whole lifecycle; the delivery queue only carries orders that are out
// for delivery or just delivered.
func InScope(scope model.Scope, status model.OrderStatus) bool {
	switch scope {
	case model.ScopeDelivery:
		return status == model.StatusShipped || status == model.StatusDelivered
	case model.ScopeAdmin, model.ScopeCustomer:
		return true
	default:
		return false
	}
}
