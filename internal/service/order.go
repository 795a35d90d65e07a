package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/cafemanage/api/internal/billing"
	"github.com/cafemanage/api/internal/enum"
	"github.com/cafemanage/api/internal/metrics"
	"github.com/cafemanage/api/internal/model"
	"github.com/cafemanage/api/internal/store"
)

// OrderService owns the order placement workflow and the order lifecycle.
type OrderService struct {
	store     *store.Store
	renderer  billing.Renderer
	deliverer billing.Deliverer
	tables    *TableService
}

// NewOrderService creates an OrderService. renderer and deliverer may be nil,
// in which case billing is skipped entirely.
func NewOrderService(st *store.Store, renderer billing.Renderer, deliverer billing.Deliverer, tables *TableService) *OrderService {
	return &OrderService{
		store:     st,
		renderer:  renderer,
		deliverer: deliverer,
		tables:    tables,
	}
}

// PlaceOrderRequest is the validated input for placing an order. Items are
// cart-line snapshots; name and price were frozen when each line was added.
type PlaceOrderRequest struct {
	CustomerName  string
	TableNumber   string
	CustomerEmail string
	PaymentStatus string
	Items         []model.CartLine
}

// PlaceOrderResult is the committed order plus the outcome of the best-effort
// billing steps. BillErr and DeliveryErr never indicate a failed placement.
type PlaceOrderResult struct {
	Order       model.Order
	Bill        []byte
	BillErr     error
	DeliveryErr error
}

// PlaceOrder validates the cart against current inventory, computes totals
// from the settings in effect now, and commits the inventory decrement and
// the new order record in one staged write. Every line is checked before
// anything is mutated: a failing cart leaves menu and order log untouched.
func (s *OrderService) PlaceOrder(ctx context.Context, req PlaceOrderRequest) (*PlaceOrderResult, error) {
	if req.CustomerName == "" {
		return nil, ErrCustomerNameRequired
	}
	if len(req.Items) == 0 {
		return nil, ErrEmptyCart
	}
	paymentStatus := req.PaymentStatus
	if paymentStatus == "" {
		paymentStatus = enum.PaymentStatusUnpaid
	}
	if !isValidPaymentStatus(paymentStatus) {
		return nil, ErrInvalidPaymentStatus
	}

	var placed model.Order
	var settings model.Settings
	err := s.store.Update(func(tx *store.Tx) error {
		menu, err := tx.Menu()
		if err != nil {
			return err
		}
		settings, err = tx.Settings()
		if err != nil {
			return err
		}

		// Table numbers come from structured selection against the live
		// table list; reject anything not on it.
		if req.TableNumber != "" {
			tables, err := tx.Tables()
			if err != nil {
				return err
			}
			if !tableExists(tables, req.TableNumber) {
				return ErrTableNotFound
			}
		}

		// Check every line before mutating anything.
		lines := make([]model.CartLine, len(req.Items))
		for i, line := range req.Items {
			if line.Quantity <= 0 {
				return fmt.Errorf("items[%d]: %w", i, ErrInvalidQuantity)
			}
			item, ok := menu.Item(line.ID)
			if !ok {
				return fmt.Errorf("items[%d]: %w", i, ErrItemNotFound)
			}
			if line.Quantity > item.Inventory {
				return &InsufficientInventoryError{
					ItemID:    item.ID,
					ItemName:  item.Name,
					Requested: line.Quantity,
					Available: item.Inventory,
				}
			}
			line.Subtotal = line.Price.Mul(decimal.NewFromInt(int64(line.Quantity))).Round(2)
			lines[i] = line
		}

		subtotal := decimal.Zero
		for _, line := range lines {
			subtotal = subtotal.Add(line.Subtotal)
		}
		tax := subtotal.Mul(settings.TaxRate)
		serviceCharge := subtotal.Mul(settings.ServiceCharge)
		total := subtotal.Add(tax).Add(serviceCharge).Round(2)

		// All checks passed: commit inventory decrement and order append.
		for sec, items := range menu {
			for i, item := range items {
				for _, line := range lines {
					if line.ID == item.ID {
						menu[sec][i].Inventory -= line.Quantity
					}
				}
			}
		}

		now := time.Now()
		placed, err = tx.CommitOrder(menu, model.Order{
			CustomerName:  req.CustomerName,
			TableNumber:   req.TableNumber,
			Items:         lines,
			Subtotal:      subtotal.Round(2),
			Discount:      decimal.Zero,
			Tax:           tax.Round(2),
			ServiceCharge: serviceCharge.Round(2),
			Total:         total,
			Date:          now.Format("2006-01-02"),
			Time:          now.Format("15:04:05"),
			Timestamp:     now.Format(time.RFC3339),
			Status:        enum.OrderStatusPending,
			PaymentStatus: paymentStatus,
		})
		return err
	})
	if err != nil {
		var inv *InsufficientInventoryError
		switch {
		case errors.As(err, &inv):
			metrics.OrdersRejectedTotal.WithLabelValues("insufficient_inventory").Inc()
		case errors.Is(err, ErrItemNotFound), errors.Is(err, ErrTableNotFound):
			metrics.OrdersRejectedTotal.WithLabelValues("not_found").Inc()
		default:
			metrics.OrdersRejectedTotal.WithLabelValues("validation").Inc()
		}
		return nil, err
	}
	metrics.OrdersPlacedTotal.Inc()

	// The order now claims its table; refresh derived statuses.
	if s.tables != nil {
		if _, err := s.tables.Reconcile(ctx); err != nil {
			zap.S().Errorf("reconcile tables after placing %s: %v", placed.ID, err)
		}
	}

	result := &PlaceOrderResult{Order: placed}
	s.billOrder(result, settings, req.CustomerEmail)
	return result, nil
}

// billOrder runs the best-effort render and deliver steps. Failures are
// recorded on the result and logged; the placed order stands regardless.
func (s *OrderService) billOrder(result *PlaceOrderResult, settings model.Settings, email string) {
	if s.renderer == nil {
		return
	}

	bill, err := s.renderer.RenderBill(result.Order, settings)
	if err != nil {
		result.BillErr = err
		metrics.BillFailuresTotal.WithLabelValues("render").Inc()
		zap.S().Errorf("render bill for %s: %v", result.Order.ID, err)
		return
	}
	result.Bill = bill
	metrics.BillsRenderedTotal.Inc()

	if email == "" || s.deliverer == nil {
		return
	}
	if err := s.deliverer.DeliverBill(email, result.Order, bill); err != nil {
		result.DeliveryErr = err
		metrics.BillFailuresTotal.WithLabelValues("deliver").Inc()
		zap.S().Errorf("deliver bill for %s: %v", result.Order.ID, err)
		return
	}
	metrics.BillsDeliveredTotal.Inc()
}

// RenderBill re-renders the bill for an already-placed order.
func (s *OrderService) RenderBill(ctx context.Context, id string) ([]byte, error) {
	if s.renderer == nil {
		return nil, errors.New("bill rendering is not configured")
	}
	order, err := s.store.Order(id)
	if err != nil {
		return nil, err
	}
	settings, err := s.store.Settings()
	if err != nil {
		return nil, err
	}
	return s.renderer.RenderBill(order, settings)
}

// UpdateStatus sets an order's status and re-runs the table reconciler, since
// occupancy depends on order status. Transitions are unrestricted: any known
// status may replace any other, including leaving terminal states.
func (s *OrderService) UpdateStatus(ctx context.Context, id, status string) (model.Order, error) {
	if !isValidOrderStatus(status) {
		return model.Order{}, ErrInvalidOrderStatus
	}

	var updated model.Order
	err := s.store.Update(func(tx *store.Tx) error {
		var err error
		updated, err = tx.SetOrderStatus(id, status)
		return err
	})
	if err != nil {
		return model.Order{}, err
	}
	metrics.OrderStatusUpdatesTotal.Inc()

	if s.tables != nil {
		if _, err := s.tables.Reconcile(ctx); err != nil {
			zap.S().Errorf("reconcile tables after status change of %s: %v", id, err)
		}
	}
	return updated, nil
}

// UpdatePaymentStatus sets an order's payment status. Payment is an
// independent axis; it never affects occupancy or monetary fields.
func (s *OrderService) UpdatePaymentStatus(ctx context.Context, id, paymentStatus string) (model.Order, error) {
	if !isValidPaymentStatus(paymentStatus) {
		return model.Order{}, ErrInvalidPaymentStatus
	}

	var updated model.Order
	err := s.store.Update(func(tx *store.Tx) error {
		var err error
		updated, err = tx.SetOrderPaymentStatus(id, paymentStatus)
		return err
	})
	if err != nil {
		return model.Order{}, err
	}
	return updated, nil
}

// --- Helpers ---

func isValidOrderStatus(s string) bool {
	switch s {
	case enum.OrderStatusPending, enum.OrderStatusPreparing, enum.OrderStatusReady,
		enum.OrderStatusCompleted, enum.OrderStatusCancelled:
		return true
	}
	return false
}

func isValidPaymentStatus(s string) bool {
	switch s {
	case enum.PaymentStatusUnpaid, enum.PaymentStatusPaid, enum.PaymentStatusPartial:
		return true
	}
	return false
}

func tableExists(tables []model.Table, number string) bool {
	for _, t := range tables {
		if t.Number == number {
			return true
		}
	}
	return false
}
