package services

import "errors"

// Sentinel errors returned by the engine. The HTTP layer maps these to
// response codes; nothing here is fatal to the process.
var (
	// Validation errors — client-correctable input.
	ErrQuantityInvalid    = errors.New("cart: quantity must be at least 1")
	ErrDishTypeRequired   = errors.New("cart: dish type selection required")
	ErrChefRequired       = errors.New("cart: chef required for custom request")
	ErrCustomNameRequired = errors.New("cart: custom request needs a name")
	ErrInvalidResolution  = errors.New("cart: resolution must be replace or reject")
	ErrEmptyCart          = errors.New("checkout: cart is empty")
	ErrSchedulingTooSoon  = errors.New("checkout: scheduled time must be at least two hours out")

	// Not-found errors — stale id references.
	ErrCartNotFound          = errors.New("cart: not found")
	ErrItemNotFound          = errors.New("cart: item not found")
	ErrDishNotFound          = errors.New("cart: dish not found")
	ErrDishUnavailable       = errors.New("cart: dish unavailable")
	ErrAddressNotFound       = errors.New("checkout: address not found")
	ErrPaymentMethodNotFound = errors.New("checkout: payment method not found")
	ErrOrderNotFound         = errors.New("order: not found")

	// State errors — the transition or pricing operation is blocked.
	ErrInvalidTransition   = errors.New("order: invalid status transition")
	ErrUnpricedCustomItems = errors.New("order: custom items must be priced first")
	ErrPriceLocked         = errors.New("order: custom prices can only change while pending")
	ErrNotCustomItem       = errors.New("order: line item is not a custom request")
	ErrNotAllowed          = errors.New("order: actor not allowed")

	// Integrity / concurrency.
	ErrCheckoutFailed   = errors.New("checkout: could not create order")
	ErrConcurrentUpdate = errors.New("concurrent update, please retry")
)
