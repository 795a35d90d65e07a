package handler

import (
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/cafemanage/api/internal/enum"
	"github.com/cafemanage/api/internal/model"
)

// DashboardStore defines the store methods needed by the dashboard handler.
// Satisfied by *store.Store; narrow interface for testability.
type DashboardStore interface {
	Menu() (model.Menu, error)
	Orders() ([]model.Order, error)
}

// DashboardHandler serves the staff home screen metrics.
type DashboardHandler struct {
	store DashboardStore
}

// NewDashboardHandler creates a new DashboardHandler.
func NewDashboardHandler(store DashboardStore) *DashboardHandler {
	return &DashboardHandler{store: store}
}

// RegisterRoutes registers the dashboard endpoint.
func (h *DashboardHandler) RegisterRoutes(r chi.Router) {
	r.Get("/dashboard", h.Get)
}

type dashboardResponse struct {
	MenuItems     int    `json:"menu_items"`
	TotalOrders   int    `json:"total_orders"`
	PendingOrders int    `json:"pending_orders"`
	TodaysOrders  int    `json:"todays_orders"`
	TodaysRevenue string `json:"todays_revenue"`
}

// Get handles GET /dashboard. Today's revenue excludes cancelled orders.
func (h *DashboardHandler) Get(w http.ResponseWriter, r *http.Request) {
	menu, err := h.store.Menu()
	if err != nil {
		log.Printf("ERROR: load menu: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}
	orders, err := h.store.Orders()
	if err != nil {
		log.Printf("ERROR: load orders: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	menuItems := 0
	for _, items := range menu {
		menuItems += len(items)
	}

	today := time.Now().Format("2006-01-02")
	resp := dashboardResponse{
		MenuItems:     menuItems,
		TotalOrders:   len(orders),
		TodaysRevenue: "0.00",
	}
	revenue := decimal.Zero
	for _, o := range orders {
		if o.Status == enum.OrderStatusPending {
			resp.PendingOrders++
		}
		if o.Date != today {
			continue
		}
		resp.TodaysOrders++
		if o.Status != enum.OrderStatusCancelled {
			revenue = revenue.Add(o.Total)
		}
	}
	resp.TodaysRevenue = revenue.StringFixed(2)

	writeJSON(w, http.StatusOK, resp)
}
