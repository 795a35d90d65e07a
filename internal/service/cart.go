package service

import (
	"context"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/cafemanage/api/internal/model"
	"github.com/cafemanage/api/internal/store"
)

// CartService keeps one in-memory cart per login session. Carts are
// ephemeral: they vanish on restart, and are cleared on logout and on
// successful order placement. Each line snapshots the item's name and price
// at add time, so menu edits never change a pending cart.
type CartService struct {
	store *store.Store

	mu    sync.Mutex
	carts map[string][]model.CartLine
}

// NewCartService creates a CartService.
func NewCartService(st *store.Store) *CartService {
	return &CartService{
		store: st,
		carts: make(map[string][]model.CartLine),
	}
}

// CartTotals is a preview of the cart priced with current settings. The
// authoritative totals are computed again, and frozen, at placement time.
type CartTotals struct {
	Lines         []model.CartLine
	Subtotal      decimal.Decimal
	Tax           decimal.Decimal
	ServiceCharge decimal.Decimal
	Total         decimal.Decimal
}

// Add appends a snapshot line for the given menu item. The inventory check
// here is advisory (it keeps obviously impossible lines out of the cart);
// the binding check happens at placement.
func (s *CartService) Add(ctx context.Context, sessionID, itemID string, quantity int) (model.CartLine, error) {
	if quantity <= 0 {
		return model.CartLine{}, ErrInvalidQuantity
	}

	menu, err := s.store.Menu()
	if err != nil {
		return model.CartLine{}, err
	}
	item, ok := menu.Item(itemID)
	if !ok {
		return model.CartLine{}, ErrItemNotFound
	}
	if !item.Available {
		return model.CartLine{}, ErrItemUnavailable
	}
	if quantity > item.Inventory {
		return model.CartLine{}, &InsufficientInventoryError{
			ItemID:    item.ID,
			ItemName:  item.Name,
			Requested: quantity,
			Available: item.Inventory,
		}
	}

	line := model.CartLine{
		ID:       item.ID,
		Name:     item.Name,
		Price:    item.Price,
		Quantity: quantity,
		Subtotal: item.Price.Mul(decimal.NewFromInt(int64(quantity))).Round(2),
	}

	s.mu.Lock()
	s.carts[sessionID] = append(s.carts[sessionID], line)
	s.mu.Unlock()
	return line, nil
}

// Lines returns a copy of the session's cart.
func (s *CartService) Lines(sessionID string) []model.CartLine {
	s.mu.Lock()
	defer s.mu.Unlock()
	lines := make([]model.CartLine, len(s.carts[sessionID]))
	copy(lines, s.carts[sessionID])
	return lines
}

// RemoveLine deletes the line at the given position.
func (s *CartService) RemoveLine(sessionID string, index int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cart := s.carts[sessionID]
	if index < 0 || index >= len(cart) {
		return ErrCartLineNotFound
	}
	s.carts[sessionID] = append(cart[:index], cart[index+1:]...)
	return nil
}

// Clear drops the session's cart.
func (s *CartService) Clear(sessionID string) {
	s.mu.Lock()
	delete(s.carts, sessionID)
	s.mu.Unlock()
}

// Totals prices the cart with the settings in effect right now.
func (s *CartService) Totals(ctx context.Context, sessionID string) (CartTotals, error) {
	settings, err := s.store.Settings()
	if err != nil {
		return CartTotals{}, err
	}

	lines := s.Lines(sessionID)
	subtotal := decimal.Zero
	for _, line := range lines {
		subtotal = subtotal.Add(line.Subtotal)
	}
	tax := subtotal.Mul(settings.TaxRate)
	serviceCharge := subtotal.Mul(settings.ServiceCharge)

	return CartTotals{
		Lines:         lines,
		Subtotal:      subtotal.Round(2),
		Tax:           tax.Round(2),
		ServiceCharge: serviceCharge.Round(2),
		Total:         subtotal.Add(tax).Add(serviceCharge).Round(2),
	}, nil
}
