// Package lifecycle implements the order status machine and the
// append-only timeline derived from accepted transitions. The machine is
// a closed transition table: status never moves backward and never skips
// an intermediate status.
package lifecycle

import (
	"fmt"
	"strings"

	"medcart/internal/model"
)

// transitions maps (action, current status) to the next status. Any pair
// absent from the table is illegal.
var transitions = map[model.OrderAction]map[model.OrderStatus]model.OrderStatus{
	model.ActionConfirm: {
		model.StatusPending: model.StatusProcessing,
	},
	model.ActionShip: {
		model.StatusProcessing: model.StatusShipped,
	},
	model.ActionConfirmDelivery: {
		model.StatusShipped: model.StatusDelivered,
	},
	model.ActionCancel: {
		model.StatusPending:    model.StatusCancelled,
		model.StatusProcessing: model.StatusCancelled,
	},
	model.ActionComplete: {
		model.StatusDelivered: model.StatusCompleted,
	},
}

// Transition returns the status reached by applying action to current.
// Illegal pairs return model.ErrIllegalTransition and the caller must
// leave the order unchanged.
func Transition(current model.OrderStatus, action model.OrderAction) (model.OrderStatus, error) {
	from, ok := transitions[action]
	if !ok {
		return current, model.ErrIllegalTransition
	}
	next, ok := from[current]
	if !ok {
		return current, model.ErrIllegalTransition
	}
	return next, nil
}

// CanApply reports whether action is legal for the current status.
func CanApply(current model.OrderStatus, action model.OrderAction) bool {
	_, err := Transition(current, action)
	return err == nil
}

// ActionsFor lists the actions legal for the given status, in the
// canonical order used by the view menus.
func ActionsFor(current model.OrderStatus) []model.OrderAction {
	ordered := []model.OrderAction{
		model.ActionConfirm,
		model.ActionShip,
		model.ActionConfirmDelivery,
		model.ActionComplete,
		model.ActionCancel,
	}

	var actions []model.OrderAction
	for _, a := range ordered {
		if CanApply(current, a) {
			actions = append(actions, a)
		}
	}
	return actions
}

// Terminal reports whether no action can move the order further.
func Terminal(current model.OrderStatus) bool {
	return len(ActionsFor(current)) == 0
}

var statusNames = map[string]model.OrderStatus{
	"PENDING":    model.StatusPending,
	"PROCESSING": model.StatusProcessing,
	"SHIPPED":    model.StatusShipped,
	"DELIVERED":  model.StatusDelivered,
	"CANCELLED":  model.StatusCancelled,
	"COMPLETED":  model.StatusCompleted,
}

// ParseStatus converts an externally sourced status string into an
// OrderStatus. Matching is case-insensitive; unrecognised values are
// rejected rather than coerced to a default.
func ParseStatus(raw string) (model.OrderStatus, error) {
	status, ok := statusNames[strings.ToUpper(strings.TrimSpace(raw))]
	if !ok {
		return "", fmt.Errorf("%w: %q", model.ErrUnknownStatus, raw)
	}
	return status, nil
}

// ParseAction converts an externally sourced action string into an
// OrderAction, case-insensitively.
func ParseAction(raw string) (model.OrderAction, error) {
	actions := []model.OrderAction{
		model.ActionConfirm,
		model.ActionShip,
		model.ActionConfirmDelivery,
		model.ActionCancel,
		model.ActionComplete,
	}

	trimmed := strings.TrimSpace(raw)
	for _, a := range actions {
		if strings.EqualFold(trimmed, string(a)) {
			return a, nil
		}
	}
	return "", fmt.Errorf("unknown order action %q", raw)
}
