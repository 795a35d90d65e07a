package handler

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"sort"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/cafemanage/api/internal/model"
	"github.com/cafemanage/api/internal/store"
)

// MenuStore defines the store methods needed by menu handlers.
// Satisfied by *store.Store; narrow interface for testability.
type MenuStore interface {
	Menu() (model.Menu, error)
	UpsertMenuItem(section string, item model.MenuItem) error
	DeleteMenuItem(id string) error
}

// MenuHandler handles menu endpoints.
type MenuHandler struct {
	store MenuStore
}

// NewMenuHandler creates a new MenuHandler.
func NewMenuHandler(store MenuStore) *MenuHandler {
	return &MenuHandler{store: store}
}

// RegisterRoutes registers the read endpoint available to all staff.
func (h *MenuHandler) RegisterRoutes(r chi.Router) {
	r.Get("/menu", h.Get)
}

// RegisterAdminRoutes registers the management endpoints.
func (h *MenuHandler) RegisterAdminRoutes(r chi.Router) {
	r.Put("/menu/items/{id}", h.UpsertItem)
	r.Delete("/menu/items/{id}", h.DeleteItem)
}

// --- Request / Response types ---

type menuItemResponse struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Price       string `json:"price"`
	Category    string `json:"category"`
	Available   bool   `json:"available"`
	Description string `json:"description,omitempty"`
	Inventory   int    `json:"inventory"`
}

type menuSectionResponse struct {
	Section string             `json:"section"`
	Items   []menuItemResponse `json:"items"`
}

type upsertMenuItemRequest struct {
	Name        string `json:"name"`
	Price       string `json:"price"`
	Section     string `json:"section"`
	Category    string `json:"category"`
	Available   *bool  `json:"available"`
	Description string `json:"description"`
	Inventory   *int   `json:"inventory"`
}

// --- Handlers ---

// Get handles GET /menu. By default only items marked available are listed;
// ?all=true shows everything, which the management screens use.
func (h *MenuHandler) Get(w http.ResponseWriter, r *http.Request) {
	menu, err := h.store.Menu()
	if err != nil {
		log.Printf("ERROR: load menu: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	includeAll := r.URL.Query().Get("all") == "true"

	sections := make([]string, 0, len(menu))
	for section := range menu {
		sections = append(sections, section)
	}
	sort.Strings(sections)

	resp := make([]menuSectionResponse, 0, len(sections))
	for _, section := range sections {
		items := make([]menuItemResponse, 0, len(menu[section]))
		for _, item := range menu[section] {
			if !item.Available && !includeAll {
				continue
			}
			items = append(items, toMenuItemResponse(item))
		}
		resp = append(resp, menuSectionResponse{Section: section, Items: items})
	}

	writeJSON(w, http.StatusOK, resp)
}

// UpsertItem handles PUT /menu/items/{id}. It creates the item if it does not
// exist and moves it between sections when the section changes.
func (h *MenuHandler) UpsertItem(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req upsertMenuItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	if req.Name == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "name is required"})
		return
	}
	if req.Section == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "section is required"})
		return
	}
	price, err := decimal.NewFromString(req.Price)
	if err != nil || price.IsNegative() {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "price must be a non-negative decimal"})
		return
	}

	available := true
	if req.Available != nil {
		available = *req.Available
	}
	inventory := 0
	if req.Inventory != nil {
		if *req.Inventory < 0 {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "inventory must be >= 0"})
			return
		}
		inventory = *req.Inventory
	}

	item := model.MenuItem{
		ID:          id,
		Name:        req.Name,
		Price:       price,
		Category:    req.Category,
		Available:   available,
		Description: req.Description,
		Inventory:   inventory,
	}
	if err := h.store.UpsertMenuItem(req.Section, item); err != nil {
		log.Printf("ERROR: upsert menu item %s: %v", id, err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	writeJSON(w, http.StatusOK, toMenuItemResponse(item))
}

// DeleteItem handles DELETE /menu/items/{id}.
func (h *MenuHandler) DeleteItem(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if err := h.store.DeleteMenuItem(id); err != nil {
		if errors.Is(err, store.ErrMenuItemNotFound) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "menu item not found"})
			return
		}
		log.Printf("ERROR: delete menu item %s: %v", id, err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "menu item deleted"})
}

// --- Helpers ---

func toMenuItemResponse(item model.MenuItem) menuItemResponse {
	return menuItemResponse{
		ID:          item.ID,
		Name:        item.Name,
		Price:       item.Price.StringFixed(2),
		Category:    item.Category,
		Available:   item.Available,
		Description: item.Description,
		Inventory:   item.Inventory,
	}
}
