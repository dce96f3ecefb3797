// Package stock holds the purchase-limit policy for cart reservations.
// Every cart mutation path funnels through these functions so the
// quantity/stock invariants cannot be bypassed.
package stock

import "medcart/internal/model"

// Unlimited is returned by Remaining when no purchase limit is configured.
const Unlimited = -1

// Grant is the outcome of an add-to-cart request. Quantity may be less
// than requested: rather than rejecting outright, the policy clamps to
// the remaining allowance and marks the grant as Clamped so the caller
// can surface the reduction to the customer.
type Grant struct {
	Allowed  bool `json:"allowed"`
	Quantity int  `json:"quantity"`
	Clamped  bool `json:"clamped"`
}

// Remaining returns how many more units of the medicine may be added to
// a cart that already holds inCart units. Returns Unlimited when no
// limit is configured, and never goes below zero.
func Remaining(med *model.Medicine, inCart int) int {
	if !med.Limited() {
		return Unlimited
	}
	left := med.Limit() - inCart
	if left < 0 {
		return 0
	}
	return left
}

// CanAdd decides how many of the requested units may actually be added.
// Out-of-stock medicines are rejected outright. Requests within the
// remaining allowance are granted in full; requests above a non-zero
// allowance are granted partially (clamped); an exhausted allowance
// yields a zero grant.
func CanAdd(med *model.Medicine, inCart, requested int) Grant {
	if requested <= 0 {
		return Grant{}
	}
	if med.StockStatus == model.StockOutOfStock {
		return Grant{}
	}

	left := Remaining(med, inCart)
	if left == Unlimited || requested <= left {
		return Grant{Allowed: true, Quantity: requested}
	}
	if left > 0 {
		return Grant{Allowed: true, Quantity: left, Clamped: true}
	}
	return Grant{}
}

// ClampQuantity folds an absolute quantity into the legal range for the
// medicine: at least 1, at most the configured limit. Used by the
// update-quantity path and by restore-time revalidation.
func ClampQuantity(med *model.Medicine, quantity int) int {
	if quantity < 1 {
		quantity = 1
	}
	if med.Limited() && quantity > med.Limit() {
		quantity = med.Limit()
	}
	return quantity
}
