package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/cafemanage/api/internal/model"
	"github.com/cafemanage/api/internal/service"
)

// TableServicer defines the service methods needed by table handlers.
// Satisfied by *service.TableService; narrow interface for testability.
type TableServicer interface {
	Reconcile(ctx context.Context) ([]model.Table, error)
	SetManualStatus(ctx context.Context, number, status string) ([]model.Table, error)
}

// TableHandler handles table endpoints.
type TableHandler struct {
	svc TableServicer
	hub Broadcaster
}

// NewTableHandler creates a new TableHandler.
func NewTableHandler(svc TableServicer, hub Broadcaster) *TableHandler {
	return &TableHandler{svc: svc, hub: hub}
}

// RegisterRoutes registers table endpoints on the given Chi router.
func (h *TableHandler) RegisterRoutes(r chi.Router) {
	r.Get("/tables", h.List)
	r.Put("/tables/{number}/status", h.SetStatus)
}

// --- Request / Response types ---

type tableResponse struct {
	Number string `json:"table_number"`
	Status string `json:"status"`
}

type setTableStatusRequest struct {
	Status string `json:"status"`
}

// --- Handlers ---

// List handles GET /tables. Statuses are reconciled against the order log on
// every read, so the response always reflects live orders.
func (h *TableHandler) List(w http.ResponseWriter, r *http.Request) {
	tables, err := h.svc.Reconcile(r.Context())
	if err != nil {
		log.Printf("ERROR: reconcile tables: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}
	writeJSON(w, http.StatusOK, toTableResponses(tables))
}

// SetStatus handles PUT /tables/{number}/status. Staff may mark a table
// Available or Reserved; Occupied is owned by the order log.
func (h *TableHandler) SetStatus(w http.ResponseWriter, r *http.Request) {
	var req setTableStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	tables, err := h.svc.SetManualStatus(r.Context(), chi.URLParam(r, "number"), req.Status)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrTableNotFound):
			writeJSON(w, http.StatusNotFound, map[string]string{"error": err.Error()})
		case errors.Is(err, service.ErrTableOccupied):
			writeJSON(w, http.StatusConflict, map[string]string{"error": err.Error()})
		case errors.Is(err, service.ErrInvalidTableStatus):
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		default:
			log.Printf("ERROR: set table status: %v", err)
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		}
		return
	}

	if h.hub != nil {
		h.hub.BroadcastJSON("tables_updated", toTableResponses(tables))
	}
	writeJSON(w, http.StatusOK, toTableResponses(tables))
}

// --- Helpers ---

func toTableResponses(tables []model.Table) []tableResponse {
	resp := make([]tableResponse, len(tables))
	for i, t := range tables {
		resp[i] = tableResponse{Number: t.Number, Status: t.Status}
	}
	return resp
}
