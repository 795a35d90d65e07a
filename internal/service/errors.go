package service

import (
	"errors"
	"fmt"
)

// Errors returned by the order, cart, and table services.
var (
	ErrCustomerNameRequired = errors.New("customer name is required")
	ErrEmptyCart            = errors.New("cart is empty")
	ErrInvalidQuantity      = errors.New("quantity must be > 0")
	ErrItemNotFound         = errors.New("menu item not found")
	ErrItemUnavailable      = errors.New("menu item is not available")
	ErrInvalidOrderStatus   = errors.New("invalid order status")
	ErrInvalidPaymentStatus = errors.New("invalid payment status")
	ErrCartLineNotFound     = errors.New("cart line not found")
	ErrTableNotFound        = errors.New("table not found")
	ErrTableOccupied        = errors.New("table is occupied by a live order")
	ErrInvalidTableStatus   = errors.New("table status must be Available or Reserved")
)

// InsufficientInventoryError reports a cart line that asks for more of an item
// than the menu currently holds. No state is mutated when it is returned.
type InsufficientInventoryError struct {
	ItemID    string
	ItemName  string
	Requested int
	Available int
}

func (e *InsufficientInventoryError) Error() string {
	return fmt.Sprintf("insufficient inventory for %s: %d requested, %d available",
		e.ItemName, e.Requested, e.Available)
}
