// Package gateway bridges the pure status machine and the remote order
// service. A transition is applied optimistically to the local view
// store, sent to the remote service, and rolled back if the remote call
// fails; the remote service stays the single source of truth.
package gateway

import (
	"context"
	"errors"
	"fmt"
	"time"

	"medcart/internal/cart"
	"medcart/internal/formulary"
	"medcart/internal/lifecycle"
	"medcart/internal/model"
	"medcart/internal/orderview"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// SyncGateway exposes order lifecycle operations to the HTTP layer.
type SyncGateway interface {
	// RequestTransition applies an action to an order. Illegal actions
	// fail with model.ErrIllegalTransition before anything is sent; a
	// remote failure rolls the local state back and fails with
	// model.ErrRemoteSync. At most one externally visible transition
	// happens per call.
	RequestTransition(ctx context.Context, orderID uuid.UUID, action model.OrderAction) (*model.Order, error)

	// Checkout converts the cart into a PENDING order, clearing the
	// cart only after the remote service accepts it.
	Checkout(ctx context.Context, cartID model.CartID, customerID string) (*model.Order, error)

	// GetOrder returns the order from the local store, falling back to
	// the remote service.
	GetOrder(ctx context.Context, orderID uuid.UUID) (*model.Order, error)

	// ListOrders returns the orders for a scope, read through the
	// shared cache.
	ListOrders(ctx context.Context, scope model.Scope) ([]*model.Order, error)
}

// syncGateway implements SyncGateway.
type syncGateway struct {
	client      OrderServiceClient
	views       *orderview.Store
	listCache   orderview.ListCache
	recorder    *lifecycle.Recorder
	carts       cart.Store
	catalog     formulary.Catalog
	shippingFee float64
	logger      zerolog.Logger
}

// NewSyncGateway creates the order sync gateway. listCache may be nil
// when no shared cache is configured.
func NewSyncGateway(
	client OrderServiceClient,
	views *orderview.Store,
	listCache orderview.ListCache,
	recorder *lifecycle.Recorder,
	carts cart.Store,
	catalog formulary.Catalog,
	shippingFee float64,
	logger zerolog.Logger,
) SyncGateway {
	return &syncGateway{
		client:      client,
		views:       views,
		listCache:   listCache,
		recorder:    recorder,
		carts:       carts,
		catalog:     catalog,
		shippingFee: shippingFee,
		logger:      logger.With().Str("service", "order-sync").Logger(),
	}
}

// RequestTransition implements SyncGateway.
func (g *syncGateway) RequestTransition(ctx context.Context, orderID uuid.UUID, action model.OrderAction) (*model.Order, error) {
	order, err := g.GetOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}

	next, err := lifecycle.Transition(order.Status, action)
	if err != nil {
		g.logger.Warn().
			Str("order_id", orderID.String()).
			Str("status", string(order.Status)).
			Str("action", string(action)).
			Msg("illegal transition rejected")
		return nil, err
	}

	// Snapshot before the optimistic update so a remote failure can
	// restore the exact pre-call state.
	snapshot := order.Clone()

	order.Status = next
	order.UpdatedAt = time.Now()
	title, description := lifecycle.EventCopy(next)
	if err := g.recorder.Record(order, next, title, description); err != nil {
		return nil, err
	}
	if err := g.views.Put(ctx, order); err != nil {
		return nil, err
	}

	remote, err := g.client.UpdateStatus(ctx, orderID, next)
	if err != nil {
		if rbErr := g.views.Put(ctx, snapshot); rbErr != nil {
			g.logger.Error().Err(rbErr).Str("order_id", orderID.String()).Msg("failed to roll back optimistic update")
		}
		g.logger.Error().
			Err(err).
			Str("order_id", orderID.String()).
			Str("action", string(action)).
			Msg("remote transition failed, local state rolled back")
		return nil, fmt.Errorf("%w: %v", model.ErrRemoteSync, err)
	}

	// Reconcile against the remote response; another actor may have
	// raced us and the remote service is the arbiter.
	final := order
	if remote.Status != next {
		g.logger.Warn().
			Str("order_id", orderID.String()).
			Str("expected", string(next)).
			Str("actual", string(remote.Status)).
			Msg("remote status differs from optimistic update, adopting remote")
		final = remote
	} else if len(remote.Timeline) >= len(order.Timeline) {
		// The remote kept its own audit trail; prefer it.
		final = remote
	}

	// The last timeline event must always match the order's status.
	if last := lifecycle.Latest(final); last == nil || last.Status != final.Status {
		title, description := lifecycle.EventCopy(final.Status)
		if err := g.recorder.Record(final, final.Status, title, description); err != nil {
			return nil, err
		}
	}

	if err := g.views.Put(ctx, final); err != nil {
		return nil, err
	}

	g.logger.Info().
		Str("order_id", orderID.String()).
		Str("action", string(action)).
		Str("from", string(snapshot.Status)).
		Str("to", string(final.Status)).
		Msg("order transition applied")

	return final, nil
}

// Checkout implements SyncGateway.
func (g *syncGateway) Checkout(ctx context.Context, cartID model.CartID, customerID string) (*model.Order, error) {
	current, err := g.carts.Get(ctx, cartID)
	if err != nil {
		return nil, err
	}
	if len(current.Lines) == 0 {
		return nil, model.ErrEmptyCart
	}

	items := make([]model.OrderItem, 0, len(current.Lines))
	for _, line := range current.Lines {
		med, err := g.catalog.Get(ctx, line.ProductID)
		if err != nil {
			return nil, err
		}
		items = append(items, model.OrderItem{
			ProductID: line.ProductID,
			Quantity:  line.Quantity,
			UnitPrice: med.Price,
		})
	}

	now := time.Now()
	order := &model.Order{
		ID:          uuid.New(),
		CustomerID:  customerID,
		Status:      model.StatusPending,
		Items:       items,
		ShippingFee: g.shippingFee,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	order.TotalAmount = order.ItemsTotal() + order.ShippingFee

	title, description := lifecycle.EventCopy(model.StatusPending)
	if err := g.recorder.Seed(order, title, description); err != nil {
		return nil, err
	}

	created, err := g.client.CreateOrder(ctx, order)
	if err != nil {
		g.logger.Error().Err(err).Str("cart_id", string(cartID)).Msg("remote order creation failed, cart kept")
		return nil, fmt.Errorf("%w: %v", model.ErrRemoteSync, err)
	}
	if len(created.Timeline) == 0 {
		created.Timeline = order.Timeline
	}

	if err := g.views.Put(ctx, created); err != nil {
		return nil, err
	}

	// Clear only after the remote accepted the order.
	if err := g.carts.Clear(ctx, cartID); err != nil {
		g.logger.Error().Err(err).Str("cart_id", string(cartID)).Msg("failed to clear cart after checkout")
		return nil, err
	}

	g.logger.Info().
		Str("order_id", created.ID.String()).
		Str("cart_id", string(cartID)).
		Int("item_count", len(created.Items)).
		Float64("total_amount", created.TotalAmount).
		Msg("checkout completed")

	return created, nil
}

// GetOrder implements SyncGateway.
func (g *syncGateway) GetOrder(ctx context.Context, orderID uuid.UUID) (*model.Order, error) {
	if order, ok := g.views.Get(orderID); ok {
		return order, nil
	}

	order, err := g.client.GetOrder(ctx, orderID)
	if err != nil {
		if errors.Is(err, model.ErrOrderNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", model.ErrRemoteSync, err)
	}
	if err := g.views.Put(ctx, order); err != nil {
		return nil, err
	}
	return order, nil
}

// ListOrders implements SyncGateway.
func (g *syncGateway) ListOrders(ctx context.Context, scope model.Scope) ([]*model.Order, error) {
	if g.listCache != nil {
		cached, err := g.listCache.GetScopeList(ctx, scope)
		if err != nil {
			g.logger.Warn().Err(err).Str("scope", string(scope)).Msg("scope cache read failed")
		} else if cached != nil {
			return cached, nil
		}
	}

	orders, err := g.client.ListOrders(ctx, scope)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", model.ErrRemoteSync, err)
	}

	for _, order := range orders {
		if err := g.views.Put(ctx, order); err != nil {
			return nil, err
		}
	}

	if g.listCache != nil {
		if err := g.listCache.SetScopeList(ctx, scope, orders); err != nil {
			g.logger.Warn().Err(err).Str("scope", string(scope)).Msg("scope cache write failed")
		}
	}

	return orders, nil
}
