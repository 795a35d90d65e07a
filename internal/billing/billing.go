// Package billing renders order bills as PDF documents and delivers them by
// email. Both collaborators are best-effort from the order workflow's point of
// view: a placed order is never rolled back because its bill could not be
// rendered or sent.
package billing

import (
	"github.com/cafemanage/api/internal/model"
)

// Renderer produces a bill document for an order.
type Renderer interface {
	RenderBill(order model.Order, settings model.Settings) ([]byte, error)
}

// Deliverer sends a rendered bill to a customer address.
type Deliverer interface {
	DeliverBill(address string, order model.Order, document []byte) error
}
