package handler

import (
	"fmt"
	"log"
	"net/http"
	"sort"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/cafemanage/api/internal/enum"
	"github.com/cafemanage/api/internal/model"
)

// ReportsStore defines the store methods needed by report handlers.
// Satisfied by *store.Store; narrow interface for testability.
type ReportsStore interface {
	Orders() ([]model.Order, error)
}

// ReportsHandler computes sales reports from the order log. The log is small
// for a single location, so reports aggregate in memory on each request.
type ReportsHandler struct {
	store ReportsStore
}

// NewReportsHandler creates a new ReportsHandler.
func NewReportsHandler(store ReportsStore) *ReportsHandler {
	return &ReportsHandler{store: store}
}

// RegisterRoutes registers report endpoints on the given Chi router.
func (h *ReportsHandler) RegisterRoutes(r chi.Router) {
	r.Get("/reports/daily-sales", h.DailySales)
	r.Get("/reports/item-sales", h.ItemSales)
}

// --- Response types ---

type dailySalesResponse struct {
	Date         string `json:"date"`
	OrderCount   int    `json:"order_count"`
	TotalRevenue string `json:"total_revenue"`
}

type itemSalesResponse struct {
	ItemID       string `json:"item_id"`
	ItemName     string `json:"item_name"`
	QuantitySold int    `json:"quantity_sold"`
	TotalRevenue string `json:"total_revenue"`
}

// --- Handlers ---

// DailySales returns per-day order counts and revenue for a date range.
// Cancelled orders never count toward sales.
func (h *ReportsHandler) DailySales(w http.ResponseWriter, r *http.Request) {
	start, end, err := parseDateRange(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	orders, err := h.store.Orders()
	if err != nil {
		log.Printf("ERROR: load orders: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	type bucket struct {
		count   int
		revenue decimal.Decimal
	}
	days := make(map[string]*bucket)
	for _, o := range orders {
		if o.Status == enum.OrderStatusCancelled {
			continue
		}
		if o.Date < start || o.Date > end {
			continue
		}
		b := days[o.Date]
		if b == nil {
			b = &bucket{revenue: decimal.Zero}
			days[o.Date] = b
		}
		b.count++
		b.revenue = b.revenue.Add(o.Total)
	}

	dates := make([]string, 0, len(days))
	for date := range days {
		dates = append(dates, date)
	}
	sort.Strings(dates)

	resp := make([]dailySalesResponse, len(dates))
	for i, date := range dates {
		resp[i] = dailySalesResponse{
			Date:         date,
			OrderCount:   days[date].count,
			TotalRevenue: days[date].revenue.StringFixed(2),
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

// ItemSales returns top selling items by quantity for a date range.
func (h *ReportsHandler) ItemSales(w http.ResponseWriter, r *http.Request) {
	start, end, err := parseDateRange(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	limit := 20
	if s := r.URL.Query().Get("limit"); s != "" {
		if v, err := strconv.Atoi(s); err == nil && v > 0 {
			limit = v
		}
	}
	if limit > 100 {
		limit = 100
	}

	orders, err := h.store.Orders()
	if err != nil {
		log.Printf("ERROR: load orders: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	type bucket struct {
		name     string
		quantity int
		revenue  decimal.Decimal
	}
	items := make(map[string]*bucket)
	for _, o := range orders {
		if o.Status == enum.OrderStatusCancelled {
			continue
		}
		if o.Date < start || o.Date > end {
			continue
		}
		for _, line := range o.Items {
			b := items[line.ID]
			if b == nil {
				b = &bucket{name: line.Name, revenue: decimal.Zero}
				items[line.ID] = b
			}
			b.quantity += line.Quantity
			b.revenue = b.revenue.Add(line.Subtotal)
		}
	}

	ids := make([]string, 0, len(items))
	for id := range items {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool {
		if items[ids[i]].quantity != items[ids[j]].quantity {
			return items[ids[i]].quantity > items[ids[j]].quantity
		}
		return ids[i] < ids[j]
	})
	if len(ids) > limit {
		ids = ids[:limit]
	}

	resp := make([]itemSalesResponse, len(ids))
	for i, id := range ids {
		resp[i] = itemSalesResponse{
			ItemID:       id,
			ItemName:     items[id].name,
			QuantitySold: items[id].quantity,
			TotalRevenue: items[id].revenue.StringFixed(2),
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

// --- Helpers ---

// parseDateRange reads optional start_date and end_date query params.
// Defaults to the last 30 days. Both bounds are inclusive; order dates are
// stored as YYYY-MM-DD strings so comparisons stay lexicographic.
func parseDateRange(r *http.Request) (string, string, error) {
	const layout = "2006-01-02"
	now := time.Now()

	start := now.AddDate(0, 0, -30).Format(layout)
	end := now.Format(layout)

	if s := r.URL.Query().Get("start_date"); s != "" {
		if _, err := time.Parse(layout, s); err != nil {
			return "", "", fmt.Errorf("invalid start_date format, use YYYY-MM-DD")
		}
		start = s
	}
	if s := r.URL.Query().Get("end_date"); s != "" {
		if _, err := time.Parse(layout, s); err != nil {
			return "", "", fmt.Errorf("invalid end_date format, use YYYY-MM-DD")
		}
		end = s
	}
	return start, end, nil
}
