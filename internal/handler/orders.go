package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/novo-pos/api/internal/enum"
	"github.com/novo-pos/api/internal/middleware"
	"github.com/novo-pos/api/internal/service"
	"github.com/novo-pos/api/internal/store"
)

// OrderServicer defines the service methods needed by order handlers.
// Satisfied by *service.OrderService; narrow interface for testability.
type OrderServicer interface {
	Create(ctx context.Context, req service.CreateOrderRequest) (store.Order, error)
	Transition(ctx context.Context, id uuid.UUID, target string, tc service.TransitionContext) (store.Order, error)
	Edit(ctx context.Context, id uuid.UUID, req service.EditOrderRequest) (store.Order, error)
	Remove(ctx context.Context, id uuid.UUID) error
	PurgePaid(ctx context.Context) (int64, error)
}

// OrderStore defines the database methods needed by order read handlers.
// Satisfied by *store.Store; narrow interface for testability.
type OrderStore interface {
	GetOrder(ctx context.Context, id uuid.UUID) (store.Order, error)
	ListOrders(ctx context.Context, status pgtype.Text) ([]store.Order, error)
	ListPaidOrders(ctx context.Context) ([]store.Order, error)
	CountOrdersByStatus(ctx context.Context) (map[string]int64, error)
}

// OrderHandler handles order endpoints.
type OrderHandler struct {
	svc   OrderServicer
	store OrderStore
}

// NewOrderHandler creates a new OrderHandler.
func NewOrderHandler(svc OrderServicer, store OrderStore) *OrderHandler {
	return &OrderHandler{svc: svc, store: store}
}

// RegisterPublicRoutes registers order intake. The customer ordering
// screen places orders without logging in, so this stays outside auth.
func (h *OrderHandler) RegisterPublicRoutes(r chi.Router) {
	r.Post("/", h.Create)
}

// RegisterStaffRoutes registers order reads and transitions on the given
// Chi router. Expected to be mounted at /orders behind authentication.
func (h *OrderHandler) RegisterStaffRoutes(r chi.Router) {
	r.Get("/", h.List)
	r.Get("/pending", h.Pending)
	r.Get("/counts", h.Counts)
	r.Get("/paid", h.PaidList)
	r.With(middleware.RequireRole(enum.UserRoleAdmin)).Delete("/paid/all", h.PurgePaid)
	r.Route("/{id}", func(r chi.Router) {
		r.Get("/", h.Get)
		r.Patch("/", h.Edit)
		r.Delete("/", h.Delete)
		r.Patch("/status", h.UpdateStatus)
		r.Patch("/accept", h.Accept)
		r.Patch("/paid", h.MarkPaid)
	})
}

// --- Request / Response types ---

type createOrderRequest struct {
	Type        string             `json:"type"`
	TableNumber string             `json:"tableNumber"`
	Note        string             `json:"note"`
	Items       []service.LineItem `json:"items"`
}

type editOrderRequest struct {
	Type  *string            `json:"type"`
	Note  *string            `json:"note"`
	Items []service.LineItem `json:"items"`
}

type updateStatusRequest struct {
	Status       string `json:"status"`
	CancelReason string `json:"cancelReason"`
}

type markPaidRequest struct {
	Print bool `json:"print"`
}

type orderResponse struct {
	ID           uuid.UUID          `json:"id"`
	Type         string             `json:"type"`
	TableNumber  *string            `json:"tableNumber"`
	Note         *string            `json:"note"`
	Items        []service.LineItem `json:"items"`
	Status       string             `json:"status"`
	CancelReason *string            `json:"cancelReason"`
	Paid         bool               `json:"paid"`
	CreatedAt    time.Time          `json:"createdAt"`
}

type transitionResponse struct {
	Success bool          `json:"success"`
	Order   orderResponse `json:"order"`
}

func toOrderResponse(o store.Order) orderResponse {
	resp := orderResponse{
		ID:        o.ID,
		Type:      o.OrderType,
		Status:    o.Status,
		Paid:      o.Paid,
		CreatedAt: o.CreatedAt,
	}
	if o.TableNumber.Valid {
		resp.TableNumber = &o.TableNumber.String
	}
	if o.Note.Valid {
		resp.Note = &o.Note.String
	}
	if o.CancelReason.Valid {
		resp.CancelReason = &o.CancelReason.String
	}

	items, err := service.ParseItems(o.Items)
	if err != nil {
		// The row stays servable; the items document is just unreadable.
		log.Printf("WARN: order %s has unparsable items: %v", o.ID, err)
		items = []service.LineItem{}
	}
	resp.Items = items
	return resp
}

func toOrderResponses(orders []store.Order) []orderResponse {
	resp := make([]orderResponse, len(orders))
	for i, o := range orders {
		resp[i] = toOrderResponse(o)
	}
	return resp
}

// writeOrderError maps service errors to HTTP status codes.
func writeOrderError(w http.ResponseWriter, err error, op string) {
	switch {
	case errors.Is(err, service.ErrNotFound):
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "order not found"})
	case errors.Is(err, service.ErrEmptyItems),
		errors.Is(err, service.ErrInvalidOrderType),
		errors.Is(err, service.ErrInvalidQuantity),
		errors.Is(err, service.ErrInvalidStatus),
		errors.Is(err, service.ErrMissingCancelReason):
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
	case errors.Is(err, service.ErrIllegalTransition),
		errors.Is(err, service.ErrOrderLocked),
		errors.Is(err, service.ErrConflict):
		writeJSON(w, http.StatusConflict, map[string]string{"error": err.Error()})
	default:
		log.Printf("ERROR: %s: %v", op, err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
	}
}

// --- Handlers ---

// Create handles POST /orders.
func (h *OrderHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	order, err := h.svc.Create(r.Context(), service.CreateOrderRequest{
		Type:        req.Type,
		TableNumber: req.TableNumber,
		Note:        req.Note,
		Items:       req.Items,
	})
	if err != nil {
		writeOrderError(w, err, "create order")
		return
	}

	writeJSON(w, http.StatusCreated, toOrderResponse(order))
}

// List handles GET /orders with an optional ?status= filter.
func (h *OrderHandler) List(w http.ResponseWriter, r *http.Request) {
	var status pgtype.Text
	if s := r.URL.Query().Get("status"); s != "" {
		status = pgtype.Text{String: s, Valid: true}
	}

	orders, err := h.store.ListOrders(r.Context(), status)
	if err != nil {
		log.Printf("ERROR: list orders: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	writeJSON(w, http.StatusOK, toOrderResponses(orders))
}

// Pending handles GET /orders/pending.
func (h *OrderHandler) Pending(w http.ResponseWriter, r *http.Request) {
	status := pgtype.Text{String: enum.OrderStatusPending, Valid: true}
	orders, err := h.store.ListOrders(r.Context(), status)
	if err != nil {
		log.Printf("ERROR: list pending orders: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	writeJSON(w, http.StatusOK, toOrderResponses(orders))
}

// PaidList handles GET /orders/paid.
func (h *OrderHandler) PaidList(w http.ResponseWriter, r *http.Request) {
	orders, err := h.store.ListPaidOrders(r.Context())
	if err != nil {
		log.Printf("ERROR: list paid orders: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	writeJSON(w, http.StatusOK, toOrderResponses(orders))
}

// Counts handles GET /orders/counts, for dashboard badges.
func (h *OrderHandler) Counts(w http.ResponseWriter, r *http.Request) {
	counts, err := h.store.CountOrdersByStatus(r.Context())
	if err != nil {
		log.Printf("ERROR: count orders: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	writeJSON(w, http.StatusOK, map[string]int64{
		enum.OrderStatusPending:  counts[enum.OrderStatusPending],
		enum.OrderStatusLive:     counts[enum.OrderStatusLive],
		enum.OrderStatusDone:     counts[enum.OrderStatusDone],
		enum.OrderStatusCanceled: counts[enum.OrderStatusCanceled],
		enum.OrderStatusPaid:     counts[enum.OrderStatusPaid],
	})
}

// Get handles GET /orders/{id}.
func (h *OrderHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
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
		log.Printf("ERROR: get order: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	writeJSON(w, http.StatusOK, toOrderResponse(order))
}

// UpdateStatus handles PATCH /orders/{id}/status.
func (h *OrderHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid order ID"})
		return
	}

	var req updateStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	if req.Status == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "status is required"})
		return
	}

	updated, err := h.svc.Transition(r.Context(), id, req.Status, service.TransitionContext{
		CancelReason: req.CancelReason,
	})
	if err != nil {
		writeOrderError(w, err, "update order status")
		return
	}

	writeJSON(w, http.StatusOK, transitionResponse{Success: true, Order: toOrderResponse(updated)})
}

// Accept handles PATCH /orders/{id}/accept, the shorthand for moving a
// pending order to live.
func (h *OrderHandler) Accept(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid order ID"})
		return
	}

	updated, err := h.svc.Transition(r.Context(), id, enum.OrderStatusLive, service.TransitionContext{})
	if err != nil {
		writeOrderError(w, err, "accept order")
		return
	}

	writeJSON(w, http.StatusOK, transitionResponse{Success: true, Order: toOrderResponse(updated)})
}

// MarkPaid handles PATCH /orders/{id}/paid. Printing is opportunistic: the
// dispatcher runs after the transition commits and cannot fail the request.
func (h *OrderHandler) MarkPaid(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid order ID"})
		return
	}

	var req markPaidRequest
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
			return
		}
	}

	updated, err := h.svc.Transition(r.Context(), id, enum.OrderStatusPaid, service.TransitionContext{
		Print: req.Print,
	})
	if err != nil {
		writeOrderError(w, err, "mark order paid")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"id":      updated.ID,
		"paid":    updated.Paid,
	})
}

// Edit handles PATCH /orders/{id}, allowed only while the order is pending.
func (h *OrderHandler) Edit(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid order ID"})
		return
	}

	var req editOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	updated, err := h.svc.Edit(r.Context(), id, service.EditOrderRequest{
		Type:  req.Type,
		Note:  req.Note,
		Items: req.Items,
	})
	if err != nil {
		writeOrderError(w, err, "edit order")
		return
	}

	writeJSON(w, http.StatusOK, transitionResponse{Success: true, Order: toOrderResponse(updated)})
}

// Delete handles DELETE /orders/{id}. Deleting a missing order succeeds.
func (h *OrderHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid order ID"})
		return
	}

	if err := h.svc.Remove(r.Context(), id); err != nil {
		writeOrderError(w, err, "delete order")
		return
	}

	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

// PurgePaid handles DELETE /orders/paid/all.
func (h *OrderHandler) PurgePaid(w http.ResponseWriter, r *http.Request) {
	n, err := h.svc.PurgePaid(r.Context())
	if err != nil {
		writeOrderError(w, err, "purge paid orders")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"success": true, "removed": n})
}
