package handler_test

import (
	"context"
	"net/http"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/cafemanage/api/internal/handler"
	"github.com/cafemanage/api/internal/middleware"
	"github.com/cafemanage/api/internal/model"
	"github.com/cafemanage/api/internal/service"
)

// --- Mock CartServicer ---

type mockCartService struct {
	addFn      func(ctx context.Context, sessionID, itemID string, quantity int) (model.CartLine, error)
	removeFn   func(sessionID string, index int) error
	cleared    []string
	totalsFn   func(ctx context.Context, sessionID string) (service.CartTotals, error)
	lastAdd    string
	lastRemove int
}

func (m *mockCartService) Add(ctx context.Context, sessionID, itemID string, quantity int) (model.CartLine, error) {
	m.lastAdd = itemID
	if m.addFn != nil {
		return m.addFn(ctx, sessionID, itemID, quantity)
	}
	return model.CartLine{}, service.ErrItemNotFound
}

func (m *mockCartService) RemoveLine(sessionID string, index int) error {
	m.lastRemove = index
	if m.removeFn != nil {
		return m.removeFn(sessionID, index)
	}
	return nil
}

func (m *mockCartService) Clear(sessionID string) {
	m.cleared = append(m.cleared, sessionID)
}

func (m *mockCartService) Totals(ctx context.Context, sessionID string) (service.CartTotals, error) {
	if m.totalsFn != nil {
		return m.totalsFn(ctx, sessionID)
	}
	return service.CartTotals{
		Subtotal:      money("0"),
		Tax:           money("0"),
		ServiceCharge: money("0"),
		Total:         money("0"),
	}, nil
}

func setupCartRouter(svc *mockCartService) *chi.Mux {
	h := handler.NewCartHandler(svc)
	r := chi.NewRouter()
	r.Use(middleware.Authenticate(testJWTSecret))
	h.RegisterRoutes(r)
	return r
}

// --- Tests ---

func TestCartGet_ReturnsTotals(t *testing.T) {
	svc := &mockCartService{
		totalsFn: func(ctx context.Context, sessionID string) (service.CartTotals, error) {
			return service.CartTotals{
				Lines:         testCartLines(),
				Subtotal:      money("5.00"),
				Tax:           money("0.50"),
				ServiceCharge: money("0.25"),
				Total:         money("5.75"),
			}, nil
		},
	}
	router := setupCartRouter(svc)

	rr := doAuthRequest(t, router, "GET", "/cart", nil, testClaims())

	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d, want %d", rr.Code, http.StatusOK)
	}
	resp := decodeResponse(t, rr)
	if resp["total"] != "5.75" {
		t.Errorf("total = %v, want 5.75", resp["total"])
	}
	lines, _ := resp["lines"].([]interface{})
	if len(lines) != 1 {
		t.Errorf("lines = %d, want 1", len(lines))
	}
}

func TestCartAddItem_HappyPath(t *testing.T) {
	svc := &mockCartService{
		addFn: func(ctx context.Context, sessionID, itemID string, quantity int) (model.CartLine, error) {
			return model.CartLine{ID: itemID, Name: "Espresso", Price: money("2.50"), Quantity: quantity, Subtotal: money("5.00")}, nil
		},
	}
	router := setupCartRouter(svc)

	rr := doAuthRequest(t, router, "POST", "/cart/items", map[string]interface{}{
		"item_id":  "BEV001",
		"quantity": 2,
	}, testClaims())

	if rr.Code != http.StatusCreated {
		t.Fatalf("status: got %d, want %d, body %s", rr.Code, http.StatusCreated, rr.Body.String())
	}
	resp := decodeResponse(t, rr)
	if resp["subtotal"] != "5.00" {
		t.Errorf("subtotal = %v, want 5.00", resp["subtotal"])
	}
	if svc.lastAdd != "BEV001" {
		t.Errorf("added item = %s, want BEV001", svc.lastAdd)
	}
}

func TestCartAddItem_ErrorsMapped(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCode int
	}{
		{"unknown item", service.ErrItemNotFound, http.StatusNotFound},
		{"unavailable item", service.ErrItemUnavailable, http.StatusBadRequest},
		{"bad quantity", service.ErrInvalidQuantity, http.StatusBadRequest},
		{"insufficient inventory", &service.InsufficientInventoryError{ItemID: "BEV001", ItemName: "Espresso", Requested: 60, Available: 50}, http.StatusConflict},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			svc := &mockCartService{
				addFn: func(ctx context.Context, sessionID, itemID string, quantity int) (model.CartLine, error) {
					return model.CartLine{}, tc.err
				},
			}
			router := setupCartRouter(svc)

			rr := doAuthRequest(t, router, "POST", "/cart/items", map[string]interface{}{
				"item_id":  "BEV001",
				"quantity": 1,
			}, testClaims())

			if rr.Code != tc.wantCode {
				t.Errorf("status: got %d, want %d", rr.Code, tc.wantCode)
			}
		})
	}
}

func TestCartAddItem_MissingItemID(t *testing.T) {
	router := setupCartRouter(&mockCartService{})

	rr := doAuthRequest(t, router, "POST", "/cart/items", map[string]interface{}{"quantity": 1}, testClaims())

	if rr.Code != http.StatusBadRequest {
		t.Errorf("status: got %d, want %d", rr.Code, http.StatusBadRequest)
	}
}

func TestCartRemoveItem(t *testing.T) {
	svc := &mockCartService{}
	router := setupCartRouter(svc)

	rr := doAuthRequest(t, router, "DELETE", "/cart/items/1", nil, testClaims())

	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d, want %d", rr.Code, http.StatusOK)
	}
	if svc.lastRemove != 1 {
		t.Errorf("removed index = %d, want 1", svc.lastRemove)
	}
}

func TestCartRemoveItem_NotFound(t *testing.T) {
	svc := &mockCartService{
		removeFn: func(sessionID string, index int) error {
			return service.ErrCartLineNotFound
		},
	}
	router := setupCartRouter(svc)

	rr := doAuthRequest(t, router, "DELETE", "/cart/items/9", nil, testClaims())

	if rr.Code != http.StatusNotFound {
		t.Errorf("status: got %d, want %d", rr.Code, http.StatusNotFound)
	}
}

func TestCartClear(t *testing.T) {
	svc := &mockCartService{}
	router := setupCartRouter(svc)
	claims := testClaims()

	rr := doAuthRequest(t, router, "DELETE", "/cart", nil, claims)

	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d, want %d", rr.Code, http.StatusOK)
	}
	if len(svc.cleared) != 1 || svc.cleared[0] != claims.SessionID.String() {
		t.Errorf("cleared = %v, want the session's cart", svc.cleared)
	}
}
