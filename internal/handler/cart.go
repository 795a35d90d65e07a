package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/cafemanage/api/internal/middleware"
	"github.com/cafemanage/api/internal/model"
	"github.com/cafemanage/api/internal/service"
)

// CartServicer defines the service methods needed by cart handlers.
// Satisfied by *service.CartService; narrow interface for testability.
type CartServicer interface {
	Add(ctx context.Context, sessionID, itemID string, quantity int) (model.CartLine, error)
	RemoveLine(sessionID string, index int) error
	Clear(sessionID string)
	Totals(ctx context.Context, sessionID string) (service.CartTotals, error)
}

// CartHandler handles the per-session cart endpoints.
type CartHandler struct {
	svc CartServicer
}

// NewCartHandler creates a new CartHandler.
func NewCartHandler(svc CartServicer) *CartHandler {
	return &CartHandler{svc: svc}
}

// RegisterRoutes registers cart endpoints on the given Chi router.
func (h *CartHandler) RegisterRoutes(r chi.Router) {
	r.Get("/cart", h.Get)
	r.Post("/cart/items", h.AddItem)
	r.Delete("/cart/items/{index}", h.RemoveItem)
	r.Delete("/cart", h.Clear)
}

// --- Request / Response types ---

type addCartItemRequest struct {
	ItemID   string `json:"item_id"`
	Quantity int    `json:"quantity"`
}

type cartLineResponse struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Price    string `json:"price"`
	Quantity int    `json:"quantity"`
	Subtotal string `json:"subtotal"`
}

type cartResponse struct {
	Lines         []cartLineResponse `json:"lines"`
	Subtotal      string             `json:"subtotal"`
	Tax           string             `json:"tax"`
	ServiceCharge string             `json:"service_charge"`
	Total         string             `json:"total"`
}

// --- Handlers ---

// Get handles GET /cart. Totals are a preview priced with current settings;
// the final totals are frozen at placement.
func (h *CartHandler) Get(w http.ResponseWriter, r *http.Request) {
	sessionID, ok := sessionFromContext(w, r)
	if !ok {
		return
	}

	totals, err := h.svc.Totals(r.Context(), sessionID)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}
	writeJSON(w, http.StatusOK, toCartResponse(totals))
}

// AddItem handles POST /cart/items.
func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	sessionID, ok := sessionFromContext(w, r)
	if !ok {
		return
	}

	var req addCartItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	if req.ItemID == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "item_id is required"})
		return
	}

	line, err := h.svc.Add(r.Context(), sessionID, req.ItemID, req.Quantity)
	if err != nil {
		writeCartError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, cartLineResponse{
		ID:       line.ID,
		Name:     line.Name,
		Price:    line.Price.StringFixed(2),
		Quantity: line.Quantity,
		Subtotal: line.Subtotal.StringFixed(2),
	})
}

// RemoveItem handles DELETE /cart/items/{index}.
func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	sessionID, ok := sessionFromContext(w, r)
	if !ok {
		return
	}

	index, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid line index"})
		return
	}

	if err := h.svc.RemoveLine(sessionID, index); err != nil {
		if errors.Is(err, service.ErrCartLineNotFound) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "cart line not found"})
			return
		}
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "cart line removed"})
}

// Clear handles DELETE /cart.
func (h *CartHandler) Clear(w http.ResponseWriter, r *http.Request) {
	sessionID, ok := sessionFromContext(w, r)
	if !ok {
		return
	}

	h.svc.Clear(sessionID)
	writeJSON(w, http.StatusOK, map[string]string{"message": "cart cleared"})
}

// --- Helpers ---

func sessionFromContext(w http.ResponseWriter, r *http.Request) (string, bool) {
	claims := middleware.ClaimsFromContext(r.Context())
	if claims == nil {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "not authenticated"})
		return "", false
	}
	return claims.SessionID.String(), true
}

func writeCartError(w http.ResponseWriter, err error) {
	var inv *service.InsufficientInventoryError
	switch {
	case errors.As(err, &inv):
		writeJSON(w, http.StatusConflict, map[string]string{"error": err.Error()})
	case errors.Is(err, service.ErrItemNotFound):
		writeJSON(w, http.StatusNotFound, map[string]string{"error": err.Error()})
	case errors.Is(err, service.ErrItemUnavailable), errors.Is(err, service.ErrInvalidQuantity):
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
	default:
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
	}
}

func toCartResponse(totals service.CartTotals) cartResponse {
	lines := make([]cartLineResponse, len(totals.Lines))
	for i, line := range totals.Lines {
		lines[i] = cartLineResponse{
			ID:       line.ID,
			Name:     line.Name,
			Price:    line.Price.StringFixed(2),
			Quantity: line.Quantity,
			Subtotal: line.Subtotal.StringFixed(2),
		}
	}
	return cartResponse{
		Lines:         lines,
		Subtotal:      totals.Subtotal.StringFixed(2),
		Tax:           totals.Tax.StringFixed(2),
		ServiceCharge: totals.ServiceCharge.StringFixed(2),
		Total:         totals.Total.StringFixed(2),
	}
}
