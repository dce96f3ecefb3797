package gateway

import (
	"context"
	"errors"
	"testing"
	"time"

	"medcart/internal/lifecycle"
	"medcart/internal/model"
	"medcart/internal/orderview"
	"medcart/internal/stock"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockOrderServiceClient is a mock implementation of OrderServiceClient.
type MockOrderServiceClient struct {
	mock.Mock
}

func (m *MockOrderServiceClient) GetOrder(ctx context.Context, id uuid.UUID) (*model.Order, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Order), args.Error(1)
}

func (m *MockOrderServiceClient) ListOrders(ctx context.Context, scope model.Scope) ([]*model.Order, error) {
	args := m.Called(ctx, scope)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.Order), args.Error(1)
}

func (m *MockOrderServiceClient) UpdateStatus(ctx context.Context, id uuid.UUID, status model.OrderStatus) (*model.Order, error) {
	args := m.Called(ctx, id, status)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Order), args.Error(1)
}

func (m *MockOrderServiceClient) CreateOrder(ctx context.Context, order *model.Order) (*model.Order, error) {
	args := m.Called(ctx, order)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Order), args.Error(1)
}

// MockCartStore is a mock implementation of cart.Store.
type MockCartStore struct {
	mock.Mock
}

func (m *MockCartStore) Add(ctx context.Context, cartID model.CartID, productID string, quantity int) (stock.Grant, error) {
	args := m.Called(ctx, cartID, productID, quantity)
	return args.Get(0).(stock.Grant), args.Error(1)
}

func (m *MockCartStore) UpdateQuantity(ctx context.Context, cartID model.CartID, productID string, quantity int) error {
	args := m.Called(ctx, cartID, productID, quantity)
	return args.Error(0)
}

func (m *MockCartStore) Remove(ctx context.Context, cartID model.CartID, productID string) error {
	args := m.Called(ctx, cartID, productID)
	return args.Error(0)
}

func (m *MockCartStore) Clear(ctx context.Context, cartID model.CartID) error {
	args := m.Called(ctx, cartID)
	return args.Error(0)
}

func (m *MockCartStore) Get(ctx context.Context, cartID model.CartID) (*model.Cart, error) {
	args := m.Called(ctx, cartID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Cart), args.Error(1)
}

func (m *MockCartStore) Restore(ctx context.Context, cartID model.CartID) (*model.Cart, error) {
	args := m.Called(ctx, cartID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Cart), args.Error(1)
}

// MockCatalog is a mock implementation of formulary.Catalog.
type MockCatalog struct {
	mock.Mock
}

func (m *MockCatalog) Get(ctx context.Context, id string) (*model.Medicine, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Medicine), args.Error(1)
}

func (m *MockCatalog) Size() int {
	args := m.Called()
	return args.Int(0)
}

func seededOrder(t *testing.T, status model.OrderStatus) *model.Order {
	t.Helper()

	order := &model.Order{
		ID:         uuid.New(),
		CustomerID: "customer-42",
		Status:     model.StatusPending,
		Items:      []model.OrderItem{{ProductID: "M001", Quantity: 2, UnitPrice: 4.5}},
		CreatedAt:  time.Now(),
	}
	order.TotalAmount = order.ItemsTotal()

	recorder := lifecycle.NewRecorder()
	require.NoError(t, recorder.Seed(order, "Order placed", ""))

	// Walk forward to the requested status so the timeline stays legal.
	path := map[model.OrderStatus][]model.OrderAction{
		model.StatusPending:    nil,
		model.StatusProcessing: {model.ActionConfirm},
		model.StatusShipped:    {model.ActionConfirm, model.ActionShip},
		model.StatusDelivered:  {model.ActionConfirm, model.ActionShip, model.ActionConfirmDelivery},
	}
	for _, action := range path[status] {
		next, err := lifecycle.Transition(order.Status, action)
		require.NoError(t, err)
		order.Status = next
		title, desc := lifecycle.EventCopy(next)
		require.NoError(t, recorder.Record(order, next, title, desc))
	}
	return order
}

func newTestGateway(client OrderServiceClient, carts *MockCartStore, catalog *MockCatalog) (SyncGateway, *orderview.Store) {
	views := orderview.NewStore(nil, zerolog.Nop())
	gw := NewSyncGateway(client, views, nil, lifecycle.NewRecorder(), carts, catalog, 5.0, zerolog.Nop())
	return gw, views
}

func TestRequestTransition_Accepted(t *testing.T) {
	ctx := context.Background()
	order := seededOrder(t, model.StatusProcessing)

	client := new(MockOrderServiceClient)
	gw, views := newTestGateway(client, new(MockCartStore), new(MockCatalog))
	require.NoError(t, views.Put(ctx, order))

	remote := order.Clone()
	remote.Status = model.StatusShipped
	client.On("UpdateStatus", ctx, order.ID, model.StatusShipped).Return(remote, nil).Once()

	updated, err := gw.RequestTransition(ctx, order.ID, model.ActionShip)
	require.NoError(t, err)
	assert.Equal(t, model.StatusShipped, updated.Status)

	// One new timeline event, matching the new status.
	require.Len(t, updated.Timeline, len(order.Timeline)+1)
	assert.Equal(t, model.StatusShipped, lifecycle.Latest(updated).Status)

	stored, ok := views.Get(order.ID)
	require.True(t, ok)
	assert.Equal(t, model.StatusShipped, stored.Status)

	client.AssertExpectations(t)
}

func TestRequestTransition_IllegalRejectedBeforeRemoteCall(t *testing.T) {
	ctx := context.Background()
	order := seededOrder(t, model.StatusPending)

	client := new(MockOrderServiceClient)
	gw, views := newTestGateway(client, new(MockCartStore), new(MockCatalog))
	require.NoError(t, views.Put(ctx, order))

	_, err := gw.RequestTransition(ctx, order.ID, model.ActionShip)
	assert.ErrorIs(t, err, model.ErrIllegalTransition)

	stored, _ := views.Get(order.ID)
	assert.Equal(t, model.StatusPending, stored.Status)
	assert.Len(t, stored.Timeline, 1)

	client.AssertNotCalled(t, "UpdateStatus", mock.Anything, mock.Anything, mock.Anything)
}

// A duplicate "ship" after a successful one must fail rather than apply
// the transition twice.
func TestRequestTransition_Idempotence(t *testing.T) {
	ctx := context.Background()
	order := seededOrder(t, model.StatusProcessing)

	client := new(MockOrderServiceClient)
	gw, views := newTestGateway(client, new(MockCartStore), new(MockCatalog))
	require.NoError(t, views.Put(ctx, order))

	remote := order.Clone()
	remote.Status = model.StatusShipped
	client.On("UpdateStatus", ctx, order.ID, model.StatusShipped).Return(remote, nil).Once()

	_, err := gw.RequestTransition(ctx, order.ID, model.ActionShip)
	require.NoError(t, err)

	_, err = gw.RequestTransition(ctx, order.ID, model.ActionShip)
	assert.ErrorIs(t, err, model.ErrIllegalTransition)

	client.AssertNumberOfCalls(t, "UpdateStatus", 1)
}

func TestRequestTransition_RemoteFailureRollsBack(t *testing.T) {
	ctx := context.Background()
	order := seededOrder(t, model.StatusProcessing)

	client := new(MockOrderServiceClient)
	gw, views := newTestGateway(client, new(MockCartStore), new(MockCatalog))
	require.NoError(t, views.Put(ctx, order))

	client.On("UpdateStatus", ctx, order.ID, model.StatusShipped).
		Return(nil, errors.New("network down")).Once()

	_, err := gw.RequestTransition(ctx, order.ID, model.ActionShip)
	assert.ErrorIs(t, err, model.ErrRemoteSync)

	// Pre-call state restored, including the timeline.
	stored, ok := views.Get(order.ID)
	require.True(t, ok)
	assert.Equal(t, model.StatusProcessing, stored.Status)
	assert.Equal(t, len(order.Timeline), len(stored.Timeline))
}

func TestRequestTransition_LoadsFromRemoteOnLocalMiss(t *testing.T) {
	ctx := context.Background()
	order := seededOrder(t, model.StatusPending)

	client := new(MockOrderServiceClient)
	gw, _ := newTestGateway(client, new(MockCartStore), new(MockCatalog))

	remote := order.Clone()
	remote.Status = model.StatusProcessing
	client.On("GetOrder", ctx, order.ID).Return(order, nil).Once()
	client.On("UpdateStatus", ctx, order.ID, model.StatusProcessing).Return(remote, nil).Once()

	updated, err := gw.RequestTransition(ctx, order.ID, model.ActionConfirm)
	require.NoError(t, err)
	assert.Equal(t, model.StatusProcessing, updated.Status)

	client.AssertExpectations(t)
}

// A remote failure while fetching an unknown-locally order is a sync
// failure, not an internal error; a remote 404 stays not-found.
func TestGetOrder_RemoteFailures(t *testing.T) {
	ctx := context.Background()

	client := new(MockOrderServiceClient)
	gw, _ := newTestGateway(client, new(MockCartStore), new(MockCatalog))

	downID := uuid.New()
	client.On("GetOrder", ctx, downID).Return(nil, errors.New("connection refused")).Once()

	_, err := gw.GetOrder(ctx, downID)
	assert.ErrorIs(t, err, model.ErrRemoteSync)

	missingID := uuid.New()
	client.On("GetOrder", ctx, missingID).Return(nil, model.ErrOrderNotFound).Once()

	_, err = gw.GetOrder(ctx, missingID)
	assert.ErrorIs(t, err, model.ErrOrderNotFound)
}

func TestCheckout_Success(t *testing.T) {
	ctx := context.Background()
	cartID := model.CartID("customer-42")

	carts := new(MockCartStore)
	catalog := new(MockCatalog)
	client := new(MockOrderServiceClient)
	gw, views := newTestGateway(client, carts, catalog)

	carts.On("Get", ctx, cartID).Return(&model.Cart{
		ID: cartID,
		Lines: []model.CartLine{
			{ProductID: "M001", Quantity: 2},
			{ProductID: "M002", Quantity: 1},
		},
	}, nil).Once()
	carts.On("Clear", ctx, cartID).Return(nil).Once()

	catalog.On("Get", ctx, "M001").Return(&model.Medicine{ID: "M001", Price: 4.5, StockStatus: model.StockInStock}, nil)
	catalog.On("Get", ctx, "M002").Return(&model.Medicine{ID: "M002", Price: 10.0, StockStatus: model.StockInStock}, nil)

	client.On("CreateOrder", ctx, mock.AnythingOfType("*model.Order")).
		Run(func(args mock.Arguments) {
			order := args.Get(1).(*model.Order)
			// 2*4.5 + 1*10.0 + 5.0 shipping
			assert.Equal(t, 24.0, order.TotalAmount)
			assert.Equal(t, model.StatusPending, order.Status)
			require.Len(t, order.Timeline, 1)
			assert.Equal(t, model.StatusPending, order.Timeline[0].Status)
		}).
		Return(seededOrder(t, model.StatusPending), nil).Once()

	created, err := gw.Checkout(ctx, cartID, "customer-42")
	require.NoError(t, err)
	assert.Equal(t, model.StatusPending, created.Status)

	_, ok := views.Get(created.ID)
	assert.True(t, ok)

	carts.AssertExpectations(t)
}

func TestCheckout_EmptyCart(t *testing.T) {
	ctx := context.Background()
	cartID := model.CartID("customer-42")

	carts := new(MockCartStore)
	carts.On("Get", ctx, cartID).Return(&model.Cart{ID: cartID}, nil).Once()

	gw, _ := newTestGateway(new(MockOrderServiceClient), carts, new(MockCatalog))

	_, err := gw.Checkout(ctx, cartID, "customer-42")
	assert.ErrorIs(t, err, model.ErrEmptyCart)
}

func TestCheckout_RemoteFailureKeepsCart(t *testing.T) {
	ctx := context.Background()
	cartID := model.CartID("customer-42")

	carts := new(MockCartStore)
	catalog := new(MockCatalog)
	client := new(MockOrderServiceClient)
	gw, _ := newTestGateway(client, carts, catalog)

	carts.On("Get", ctx, cartID).Return(&model.Cart{
		ID:    cartID,
		Lines: []model.CartLine{{ProductID: "M001", Quantity: 1}},
	}, nil).Once()
	catalog.On("Get", ctx, "M001").Return(&model.Medicine{ID: "M001", Price: 4.5, StockStatus: model.StockInStock}, nil)
	client.On("CreateOrder", ctx, mock.AnythingOfType("*model.Order")).
		Return(nil, errors.New("service unavailable")).Once()

	_, err := gw.Checkout(ctx, cartID, "customer-42")
	assert.ErrorIs(t, err, model.ErrRemoteSync)

	carts.AssertNotCalled(t, "Clear", mock.Anything, mock.Anything)
}

func TestListOrders_PopulatesViewStore(t *testing.T) {
	ctx := context.Background()

	client := new(MockOrderServiceClient)
	gw, views := newTestGateway(client, new(MockCartStore), new(MockCatalog))

	a := seededOrder(t, model.StatusShipped)
	b := seededOrder(t, model.StatusDelivered)
	client.On("ListOrders", ctx, model.ScopeDelivery).Return([]*model.Order{a, b}, nil).Once()

	orders, err := gw.ListOrders(ctx, model.ScopeDelivery)
	require.NoError(t, err)
	assert.Len(t, orders, 2)

	_, ok := views.Get(a.ID)
	assert.True(t, ok)
	_, ok = views.Get(b.ID)
	assert.True(t, ok)
}
