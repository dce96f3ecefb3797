package lifecycle

import (
	"fmt"
	"time"

	"medcart/internal/model"
)

// Recorder appends timeline events for accepted transitions. Events are
// never removed or reordered; the last event always matches the order's
// current status.
type Recorder struct {
	now func() time.Time
}

// NewRecorder creates a Recorder using the wall clock.
func NewRecorder() *Recorder {
	return &Recorder{now: time.Now}
}

// NewRecorderWithClock creates a Recorder with an injected clock.
func NewRecorderWithClock(now func() time.Time) *Recorder {
	return &Recorder{now: now}
}

// Record appends an event for newStatus. The status must be the one the
// machine just accepted: recording any other status would break the
// timeline/status invariant, so it is rejected.
func (r *Recorder) Record(order *model.Order, newStatus model.OrderStatus, title, description string) error {
	if order.Status != newStatus {
		return fmt.Errorf("timeline event status %s does not match order status %s", newStatus, order.Status)
	}

	order.Timeline = append(order.Timeline, model.TimelineEvent{
		Timestamp:   r.now(),
		Status:      newStatus,
		Title:       title,
		Description: description,
	})
	return nil
}

// Seed writes the creation event for a fresh order. Every order has a
// non-empty timeline from the moment it exists.
func (r *Recorder) Seed(order *model.Order, title, description string) error {
	if len(order.Timeline) != 0 {
		return fmt.Errorf("order %s already has a timeline", order.ID)
	}
	return r.Record(order, order.Status, title, description)
}

// Latest returns the most recent event, or nil for an empty timeline.
func Latest(order *model.Order) *model.TimelineEvent {
	if len(order.Timeline) == 0 {
		return nil
	}
	return &order.Timeline[len(order.Timeline)-1]
}

// eventTitles holds the display copy attached to each recorded status.
var eventTitles = map[model.OrderStatus]struct{ title, description string }{
	model.StatusPending:    {"Order placed", "Order received and awaiting confirmation"},
	model.StatusProcessing: {"Order confirmed", "Pharmacy is preparing the order"},
	model.StatusShipped:    {"Order shipped", "Order handed to the delivery operator"},
	model.StatusDelivered:  {"Order delivered", "Delivery confirmed at the destination"},
	model.StatusCancelled:  {"Order cancelled", "Order was cancelled before shipment"},
	model.StatusCompleted:  {"Order completed", "Customer confirmed receipt"},
}

// EventCopy returns the default title and description for a status.
func EventCopy(status model.OrderStatus) (title, description string) {
	c := eventTitles[status]
	return c.title, c.description
}
