package model

import (
	"time"

	"github.com/google/uuid"
)

// OrderStatus is the lifecycle status of an order. The set is closed;
// parsing of external strings lives in the lifecycle package.
type OrderStatus string

const (
	StatusPending    OrderStatus = "PENDING"
	StatusProcessing OrderStatus = "PROCESSING"
	StatusShipped    OrderStatus = "SHIPPED"
	StatusDelivered  OrderStatus = "DELIVERED"
	StatusCancelled  OrderStatus = "CANCELLED"
	StatusCompleted  OrderStatus = "COMPLETED"
)

// OrderAction is a lifecycle action requested by one of the three views
// (admin dashboard, delivery queue, customer history).
type OrderAction string

const (
	ActionConfirm         OrderAction = "confirm"
	ActionShip            OrderAction = "ship"
	ActionConfirmDelivery OrderAction = "confirmDelivery"
	ActionCancel          OrderAction = "cancel"
	ActionComplete        OrderAction = "complete"
)

// Scope is the role-specific view filter over the order collection.
type Scope string

const (
	ScopeAdmin    Scope = "admin"
	ScopeDelivery Scope = "delivery"
	ScopeCustomer Scope = "customer"
)

// Scopes lists every view scope that caches order lists.
var Scopes = []Scope{ScopeAdmin, ScopeDelivery, ScopeCustomer}

// OrderItem is a priced line item. Immutable once the order is placed.
type OrderItem struct {
	ProductID string  `json:"productId" db:"product_id"`
	Quantity  int     `json:"quantity" db:"quantity"`
	UnitPrice float64 `json:"unitPrice" db:"unit_price"`
}

// TimelineEvent is an immutable audit record of a past status transition.
type TimelineEvent struct {
	Timestamp   time.Time   `json:"timestamp"`
	Status      OrderStatus `json:"status"`
	Title       string      `json:"title"`
	Description string      `json:"description"`
}

// Order represents a placed order. Items and TotalAmount never change
// after creation; only Status moves, and Timeline grows with it.
type Order struct {
	ID          uuid.UUID       `json:"id"`
	CustomerID  string          `json:"customerId"`
	Status      OrderStatus     `json:"status"`
	Items       []OrderItem     `json:"items"`
	ShippingFee float64         `json:"shippingFee"`
	TotalAmount float64         `json:"totalAmount"`
	Timeline    []TimelineEvent `json:"timeline"`
	CreatedAt   time.Time       `json:"createdAt"`
	UpdatedAt   time.Time       `json:"updatedAt"`
}

// ItemsTotal returns the sum of quantity times unit price over all items.
func (o *Order) ItemsTotal() float64 {
	total := 0.0
	for _, it := range o.Items {
		total += float64(it.Quantity) * it.UnitPrice
	}
	return total
}

// Clone returns a deep copy. The gateway snapshots orders before an
// optimistic update so a failed remote call can restore the original.
func (o *Order) Clone() *Order {
	cp := *o
	cp.Items = make([]OrderItem, len(o.Items))
	copy(cp.Items, o.Items)
	cp.Timeline = make([]TimelineEvent, len(o.Timeline))
	copy(cp.Timeline, o.Timeline)
	return &cp
}
