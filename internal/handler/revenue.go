package handler

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/novo-pos/api/internal/store"
	"github.com/shopspring/decimal"
)

// RevenueServicer defines the aggregator methods needed by revenue handlers.
// Satisfied by *service.RevenueService.
type RevenueServicer interface {
	TotalPaid(ctx context.Context) (decimal.Decimal, error)
	TotalInRange(ctx context.Context, start, end time.Time) ([]store.Order, decimal.Decimal, error)
}

// RevenueHandler handles the revenue read projections.
type RevenueHandler struct {
	svc RevenueServicer
}

// NewRevenueHandler creates a new RevenueHandler.
func NewRevenueHandler(svc RevenueServicer) *RevenueHandler {
	return &RevenueHandler{svc: svc}
}

// RegisterRoutes registers revenue endpoints on the given Chi router.
// Expected to be mounted at /orders behind authentication.
func (h *RevenueHandler) RegisterRoutes(r chi.Router) {
	r.Get("/paid/total", h.PaidTotal)
	r.Get("/range", h.Range)
}

type rangeResponse struct {
	Orders []orderResponse `json:"orders"`
	Total  string          `json:"total"`
}

// PaidTotal handles GET /orders/paid/total.
func (h *RevenueHandler) PaidTotal(w http.ResponseWriter, r *http.Request) {
	total, err := h.svc.TotalPaid(r.Context())
	if err != nil {
		log.Printf("ERROR: total paid revenue: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"total": total.StringFixed(2)})
}

// Range handles GET /orders/range?start_date=&end_date=, returning the
// orders in the window and their combined total regardless of payment state.
func (h *RevenueHandler) Range(w http.ResponseWriter, r *http.Request) {
	start, end, err := parseDateRange(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	orders, total, err := h.svc.TotalInRange(r.Context(), start, end)
	if err != nil {
		log.Printf("ERROR: revenue in range: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	writeJSON(w, http.StatusOK, rangeResponse{
		Orders: toOrderResponses(orders),
		Total:  total.StringFixed(2),
	})
}

// parseDateRange reads start_date/end_date query params (YYYY-MM-DD) and
// widens the end to the last instant of that day.
func parseDateRange(r *http.Request) (time.Time, time.Time, error) {
	startStr := r.URL.Query().Get("start_date")
	endStr := r.URL.Query().Get("end_date")
	if startStr == "" || endStr == "" {
		return time.Time{}, time.Time{}, fmt.Errorf("start_date and end_date are required")
	}

	start, err := time.Parse("2006-01-02", startStr)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("invalid start_date format, use YYYY-MM-DD")
	}
	end, err := time.Parse("2006-01-02", endStr)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("invalid end_date format, use YYYY-MM-DD")
	}
	end = end.Add(24*time.Hour - time.Nanosecond)

	if end.Before(start) {
		return time.Time{}, time.Time{}, fmt.Errorf("end_date must not be before start_date")
	}
	return start, end, nil
}
