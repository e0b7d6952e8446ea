// internal/domain/order/errors.go
package order

import "errors"

var (
	// ErrAddressRequired is returned when an order is placed without a delivery address
	ErrAddressRequired = errors.New("delivery address is required")
	// ErrEmptyCart is returned when an order is placed on an empty or expired cart
	ErrEmptyCart = errors.New("cart is empty, nothing to order")
	// ErrOrderNotFound is returned for an unknown or malformed order id
	ErrOrderNotFound = errors.New("order not found")
	// ErrInvalidStatus is returned for a status value outside the enumeration
	ErrInvalidStatus = errors.New("invalid order status")
	// ErrInvalidState is returned when the order's current status does not allow the requested transition
	ErrInvalidState = errors.New("order status does not allow this transition")
	// ErrPlacementFailed is returned when the ledger write fails; the cart is left intact for retry
	ErrPlacementFailed = errors.New("failed to place order")
	// ErrStorageUnavailable marks a transient backend outage distinct from a failed placement
	ErrStorageUnavailable = errors.New("order storage unavailable")
)
