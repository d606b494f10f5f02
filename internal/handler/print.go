package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/novo-pos/api/internal/service"
	"github.com/novo-pos/api/internal/store"
)

// PrintOrderStore loads orders for manual reprints.
// Satisfied by *store.Store.
type PrintOrderStore interface {
	GetOrder(ctx context.Context, id uuid.UUID) (store.Order, error)
}

// PrintHandler handles manual receipt reprints. Unlike the automatic
// dispatch on payment, a manual reprint reports relay failures to the
// caller so the cashier knows the receipt never came out.
type PrintHandler struct {
	store      PrintOrderStore
	dispatcher service.Dispatcher
}

// NewPrintHandler creates a new PrintHandler.
func NewPrintHandler(store PrintOrderStore, dispatcher service.Dispatcher) *PrintHandler {
	return &PrintHandler{store: store, dispatcher: dispatcher}
}

// RegisterRoutes registers the reprint endpoint; expected behind admin auth.
func (h *PrintHandler) RegisterRoutes(r chi.Router) {
	r.Post("/print", h.Reprint)
}

type printRequest struct {
	OrderID string `json:"orderId"`
}

// Reprint handles POST /print.
func (h *PrintHandler) Reprint(w http.ResponseWriter, r *http.Request) {
	var req printRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	id, err := uuid.Parse(req.OrderID)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid order ID"})
		return
	}

	order, err := h.store.GetOrder(r.Context(), id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "order not found"})
			return
		}
		log.Printf("ERROR: get order for reprint: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	if err := h.dispatcher.Dispatch(r.Context(), service.SnapshotFromOrder(order)); err != nil {
		log.Printf("ERROR: reprint order %s: %v", id, err)
		writeJSON(w, http.StatusBadGateway, map[string]string{"error": "print relay unavailable"})
		return
	}

	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}
