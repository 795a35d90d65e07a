package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"sort"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/cafemanage/api/internal/middleware"
	"github.com/cafemanage/api/internal/model"
	"github.com/cafemanage/api/internal/service"
	"github.com/cafemanage/api/internal/store"
)

// OrderServicer defines the service methods needed by order handlers.
// Satisfied by *service.OrderService; narrow interface for testability.
type OrderServicer interface {
	PlaceOrder(ctx context.Context, req service.PlaceOrderRequest) (*service.PlaceOrderResult, error)
	UpdateStatus(ctx context.Context, id, status string) (model.Order, error)
	UpdatePaymentStatus(ctx context.Context, id, paymentStatus string) (model.Order, error)
	RenderBill(ctx context.Context, id string) ([]byte, error)
}

// OrderStore defines the store methods needed by order read handlers.
// Satisfied by *store.Store; narrow interface for testability.
type OrderStore interface {
	Orders() ([]model.Order, error)
	Order(id string) (model.Order, error)
}

// OrderCart supplies and clears the session cart an order is placed from.
// Satisfied by *service.CartService.
type OrderCart interface {
	Lines(sessionID string) []model.CartLine
	Clear(sessionID string)
}

// Broadcaster pushes live events to connected clients.
// Satisfied by *ws.Hub; nil disables broadcasting.
type Broadcaster interface {
	BroadcastJSON(eventType string, payload interface{})
}

// OrderHandler handles order endpoints.
type OrderHandler struct {
	svc   OrderServicer
	store OrderStore
	cart  OrderCart
	hub   Broadcaster
}

// NewOrderHandler creates a new OrderHandler.
func NewOrderHandler(svc OrderServicer, store OrderStore, cart OrderCart, hub Broadcaster) *OrderHandler {
	return &OrderHandler{svc: svc, store: store, cart: cart, hub: hub}
}

// RegisterRoutes registers order endpoints on the given Chi router.
func (h *OrderHandler) RegisterRoutes(r chi.Router) {
	r.Post("/orders", h.Create)
	r.Get("/orders", h.List)
	r.Get("/orders/{id}", h.Get)
	r.Get("/orders/{id}/bill", h.Bill)
	r.Patch("/orders/{id}/status", h.UpdateStatus)
	r.Patch("/orders/{id}/payment", h.UpdatePayment)
}

// --- Request / Response types ---

type createOrderRequest struct {
	CustomerName  string `json:"customer_name"`
	TableNumber   string `json:"table_number"`
	CustomerEmail string `json:"customer_email"`
	PaymentStatus string `json:"payment_status"`
}

type orderResponse struct {
	ID            string             `json:"id"`
	CustomerName  string             `json:"customer_name"`
	TableNumber   string             `json:"table_number,omitempty"`
	Items         []cartLineResponse `json:"items"`
	Subtotal      string             `json:"subtotal"`
	Discount      string             `json:"discount"`
	Tax           string             `json:"tax"`
	ServiceCharge string             `json:"service_charge"`
	Total         string             `json:"total"`
	Date          string             `json:"date"`
	Time          string             `json:"time"`
	Timestamp     string             `json:"timestamp"`
	Status        string             `json:"status"`
	PaymentStatus string             `json:"payment_status"`
}

type createOrderResponse struct {
	orderResponse
	BillError     string `json:"bill_error,omitempty"`
	DeliveryError string `json:"delivery_error,omitempty"`
}

type updateStatusRequest struct {
	Status string `json:"status"`
}

type updatePaymentRequest struct {
	PaymentStatus string `json:"payment_status"`
}

// --- Handlers ---

// Create handles POST /orders. The order is built from the session cart; the
// body carries only the customer details. The cart is cleared once the order
// commits. Billing problems are reported in the response but never fail the
// placement.
func (h *OrderHandler) Create(w http.ResponseWriter, r *http.Request) {
	claims := middleware.ClaimsFromContext(r.Context())
	if claims == nil {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "not authenticated"})
		return
	}
	sessionID := claims.SessionID.String()

	var req createOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	if req.CustomerName == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "customer_name is required"})
		return
	}

	result, err := h.svc.PlaceOrder(r.Context(), service.PlaceOrderRequest{
		CustomerName:  req.CustomerName,
		TableNumber:   req.TableNumber,
		CustomerEmail: req.CustomerEmail,
		PaymentStatus: req.PaymentStatus,
		Items:         h.cart.Lines(sessionID),
	})
	if err != nil {
		writeOrderError(w, err)
		return
	}

	h.cart.Clear(sessionID)
	if h.hub != nil {
		h.hub.BroadcastJSON("order_created", toOrderResponse(result.Order))
	}

	resp := createOrderResponse{orderResponse: toOrderResponse(result.Order)}
	if result.BillErr != nil {
		resp.BillError = result.BillErr.Error()
	}
	if result.DeliveryErr != nil {
		resp.DeliveryError = result.DeliveryErr.Error()
	}
	writeJSON(w, http.StatusCreated, resp)
}

// List handles GET /orders. Optional filters: ?status=Pending and
// ?date=YYYY-MM-DD. Newest orders come first.
func (h *OrderHandler) List(w http.ResponseWriter, r *http.Request) {
	orders, err := h.store.Orders()
	if err != nil {
		log.Printf("ERROR: list orders: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	status := r.URL.Query().Get("status")
	date := r.URL.Query().Get("date")
	if date != "" {
		if _, err := time.Parse("2006-01-02", date); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid date format, use YYYY-MM-DD"})
			return
		}
	}

	filtered := make([]model.Order, 0, len(orders))
	for _, o := range orders {
		if status != "" && o.Status != status {
			continue
		}
		if date != "" && o.Date != date {
			continue
		}
		filtered = append(filtered, o)
	}

	sort.Slice(filtered, func(i, j int) bool {
		return filtered[i].Timestamp > filtered[j].Timestamp ||
			(filtered[i].Timestamp == filtered[j].Timestamp && filtered[i].ID > filtered[j].ID)
	})

	resp := make([]orderResponse, len(filtered))
	for i, o := range filtered {
		resp[i] = toOrderResponse(o)
	}
	writeJSON(w, http.StatusOK, resp)
}

// Get handles GET /orders/{id}.
func (h *OrderHandler) Get(w http.ResponseWriter, r *http.Request) {
	order, err := h.store.Order(chi.URLParam(r, "id"))
	if err != nil {
		writeOrderError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toOrderResponse(order))
}

// Bill handles GET /orders/{id}/bill and responds with the receipt PDF.
func (h *OrderHandler) Bill(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	bill, err := h.svc.RenderBill(r.Context(), id)
	if err != nil {
		if errors.Is(err, store.ErrOrderNotFound) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "order not found"})
			return
		}
		log.Printf("ERROR: render bill for %s: %v", id, err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", `attachment; filename="bill_`+id+`.pdf"`)
	w.WriteHeader(http.StatusOK)
	w.Write(bill)
}

// UpdateStatus handles PATCH /orders/{id}/status.
func (h *OrderHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	var req updateStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	order, err := h.svc.UpdateStatus(r.Context(), chi.URLParam(r, "id"), req.Status)
	if err != nil {
		writeOrderError(w, err)
		return
	}

	if h.hub != nil {
		h.hub.BroadcastJSON("order_status_changed", map[string]string{
			"order_id": order.ID,
			"status":   order.Status,
		})
	}
	writeJSON(w, http.StatusOK, toOrderResponse(order))
}

// UpdatePayment handles PATCH /orders/{id}/payment.
func (h *OrderHandler) UpdatePayment(w http.ResponseWriter, r *http.Request) {
	var req updatePaymentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	order, err := h.svc.UpdatePaymentStatus(r.Context(), chi.URLParam(r, "id"), req.PaymentStatus)
	if err != nil {
		writeOrderError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toOrderResponse(order))
}

// --- Helpers ---

func writeOrderError(w http.ResponseWriter, err error) {
	var inv *service.InsufficientInventoryError
	switch {
	case errors.As(err, &inv):
		writeJSON(w, http.StatusConflict, map[string]string{"error": err.Error()})
	case errors.Is(err, store.ErrOrderNotFound),
		errors.Is(err, service.ErrItemNotFound),
		errors.Is(err, service.ErrTableNotFound):
		writeJSON(w, http.StatusNotFound, map[string]string{"error": err.Error()})
	case errors.Is(err, service.ErrCustomerNameRequired),
		errors.Is(err, service.ErrEmptyCart),
		errors.Is(err, service.ErrInvalidQuantity),
		errors.Is(err, service.ErrItemUnavailable),
		errors.Is(err, service.ErrInvalidOrderStatus),
		errors.Is(err, service.ErrInvalidPaymentStatus):
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
	default:
		log.Printf("ERROR: order operation: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
	}
}

func toOrderResponse(o model.Order) orderResponse {
	items := make([]cartLineResponse, len(o.Items))
	for i, line := range o.Items {
		items[i] = cartLineResponse{
			ID:       line.ID,
			Name:     line.Name,
			Price:    line.Price.StringFixed(2),
			Quantity: line.Quantity,
			Subtotal: line.Subtotal.StringFixed(2),
		}
	}
	return orderResponse{
		ID:            o.ID,
		CustomerName:  o.CustomerName,
		TableNumber:   o.TableNumber,
		Items:         items,
		Subtotal:      o.Subtotal.StringFixed(2),
		Discount:      o.Discount.StringFixed(2),
		Tax:           o.Tax.StringFixed(2),
		ServiceCharge: o.ServiceCharge.StringFixed(2),
		Total:         o.Total.StringFixed(2),
		Date:          o.Date,
		Time:          o.Time,
		Timestamp:     o.Timestamp,
		Status:        o.Status,
		PaymentStatus: o.PaymentStatus,
	}
}
