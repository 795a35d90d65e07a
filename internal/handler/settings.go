package handler

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	qrcode "github.com/skip2/go-qrcode"

	"github.com/cafemanage/api/internal/model"
)

// SettingsStore defines the store methods needed by settings handlers.
// Satisfied by *store.Store; narrow interface for testability.
type SettingsStore interface {
	Settings() (model.Settings, error)
	SaveSettings(st model.Settings) error
}

// SettingsHandler handles cafe settings endpoints.
type SettingsHandler struct {
	store SettingsStore
}

// NewSettingsHandler creates a new SettingsHandler.
func NewSettingsHandler(store SettingsStore) *SettingsHandler {
	return &SettingsHandler{store: store}
}

// RegisterRoutes registers the read endpoints available to all staff.
func (h *SettingsHandler) RegisterRoutes(r chi.Router) {
	r.Get("/settings", h.Get)
	r.Get("/settings/menu-qr", h.MenuQR)
}

// RegisterAdminRoutes registers the management endpoint.
func (h *SettingsHandler) RegisterAdminRoutes(r chi.Router) {
	r.Put("/settings", h.Update)
}

// --- Request / Response types ---

type settingsResponse struct {
	CafeName      string `json:"cafe_name"`
	MenuURL       string `json:"menu_url"`
	TaxRate       string `json:"tax_rate"`
	ServiceCharge string `json:"service_charge"`
}

type updateSettingsRequest struct {
	CafeName      string `json:"cafe_name"`
	MenuURL       string `json:"menu_url"`
	TaxRate       string `json:"tax_rate"`
	ServiceCharge string `json:"service_charge"`
}

// --- Handlers ---

// Get handles GET /settings.
func (h *SettingsHandler) Get(w http.ResponseWriter, r *http.Request) {
	settings, err := h.store.Settings()
	if err != nil {
		log.Printf("ERROR: load settings: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}
	writeJSON(w, http.StatusOK, toSettingsResponse(settings))
}

// Update handles PUT /settings. Rates apply to future orders only; totals on
// placed orders are frozen.
func (h *SettingsHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req updateSettingsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	if req.CafeName == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "cafe_name is required"})
		return
	}
	taxRate, err := decimal.NewFromString(req.TaxRate)
	if err != nil || taxRate.IsNegative() {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "tax_rate must be a non-negative decimal"})
		return
	}
	serviceCharge, err := decimal.NewFromString(req.ServiceCharge)
	if err != nil || serviceCharge.IsNegative() {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "service_charge must be a non-negative decimal"})
		return
	}

	settings := model.Settings{
		CafeName:      req.CafeName,
		MenuURL:       req.MenuURL,
		TaxRate:       taxRate,
		ServiceCharge: serviceCharge,
	}
	if err := h.store.SaveSettings(settings); err != nil {
		log.Printf("ERROR: save settings: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}
	writeJSON(w, http.StatusOK, toSettingsResponse(settings))
}

// MenuQR handles GET /settings/menu-qr and responds with a PNG encoding the
// public menu URL, for printing on tables.
func (h *SettingsHandler) MenuQR(w http.ResponseWriter, r *http.Request) {
	settings, err := h.store.Settings()
	if err != nil {
		log.Printf("ERROR: load settings: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}
	if settings.MenuURL == "" {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "menu URL is not configured"})
		return
	}

	png, err := qrcode.Encode(settings.MenuURL, qrcode.Medium, 256)
	if err != nil {
		log.Printf("ERROR: encode menu QR: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.WriteHeader(http.StatusOK)
	w.Write(png)
}

// --- Helpers ---

func toSettingsResponse(s model.Settings) settingsResponse {
	return settingsResponse{
		CafeName:      s.CafeName,
		MenuURL:       s.MenuURL,
		TaxRate:       s.TaxRate.String(),
		ServiceCharge: s.ServiceCharge.String(),
	}
}
