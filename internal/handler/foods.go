package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/novo-pos/api/internal/store"
	"github.com/shopspring/decimal"
)

// FoodStore defines the database methods needed by menu handlers.
// Satisfied by *store.Store; narrow interface for testability.
type FoodStore interface {
	CreateFood(ctx context.Context, arg store.CreateFoodParams) (store.Food, error)
	ListFoods(ctx context.Context) ([]store.Food, error)
	UpdateFood(ctx context.Context, arg store.UpdateFoodParams) (store.Food, error)
	DeleteFood(ctx context.Context, id int64) (int64, error)
}

// FoodHandler handles menu CRUD endpoints.
type FoodHandler struct {
	store FoodStore
}

// NewFoodHandler creates a new FoodHandler.
func NewFoodHandler(store FoodStore) *FoodHandler {
	return &FoodHandler{store: store}
}

// RegisterPublicRoutes registers the customer-facing menu read.
func (h *FoodHandler) RegisterPublicRoutes(r chi.Router) {
	r.Get("/", h.List)
}

// RegisterAdminRoutes registers menu mutations; expected behind auth.
func (h *FoodHandler) RegisterAdminRoutes(r chi.Router) {
	r.Post("/", h.Create)
	r.Put("/{id}", h.Update)
	r.Delete("/{id}", h.Delete)
}

// --- Request / Response types ---

type foodRequest struct {
	Name      string          `json:"name"`
	Price     decimal.Decimal `json:"price"`
	ImageURL  string          `json:"imageUrl"`
	SectionID *int64          `json:"sectionId"`
}

type foodResponse struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Price     string    `json:"price"`
	ImageURL  *string   `json:"imageUrl"`
	SectionID *int64    `json:"sectionId"`
	CreatedAt time.Time `json:"createdAt"`
}

func toFoodResponse(f store.Food) foodResponse {
	resp := foodResponse{
		ID:        f.ID,
		Name:      f.Name,
		Price:     numericToString(f.Price),
		CreatedAt: f.CreatedAt,
	}
	if f.ImageURL.Valid {
		resp.ImageURL = &f.ImageURL.String
	}
	if f.SectionID.Valid {
		resp.SectionID = &f.SectionID.Int64
	}
	return resp
}

// --- Handlers ---

// List handles GET /foods.
func (h *FoodHandler) List(w http.ResponseWriter, r *http.Request) {
	foods, err := h.store.ListFoods(r.Context())
	if err != nil {
		log.Printf("ERROR: list foods: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	resp := make([]foodResponse, len(foods))
	for i, f := range foods {
		resp[i] = toFoodResponse(f)
	}
	writeJSON(w, http.StatusOK, resp)
}

// Create handles POST /foods.
func (h *FoodHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req foodRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	if req.Name == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "name is required"})
		return
	}
	if req.Price.IsNegative() {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "price must not be negative"})
		return
	}

	food, err := h.store.CreateFood(r.Context(), store.CreateFoodParams{
		Name:      req.Name,
		Price:     decimalToNumeric(req.Price),
		ImageURL:  optionalText(req.ImageURL),
		SectionID: optionalInt8(req.SectionID),
	})
	if err != nil {
		log.Printf("ERROR: create food: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	writeJSON(w, http.StatusCreated, toFoodResponse(food))
}

// Update handles PUT /foods/{id}.
func (h *FoodHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid food ID"})
		return
	}

	var req foodRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	if req.Name == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "name is required"})
		return
	}

	food, err := h.store.UpdateFood(r.Context(), store.UpdateFoodParams{
		ID:        id,
		Name:      req.Name,
		Price:     decimalToNumeric(req.Price),
		ImageURL:  optionalText(req.ImageURL),
		SectionID: optionalInt8(req.SectionID),
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "food not found"})
			return
		}
		log.Printf("ERROR: update food: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	writeJSON(w, http.StatusOK, toFoodResponse(food))
}

// Delete handles DELETE /foods/{id}.
func (h *FoodHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid food ID"})
		return
	}

	if _, err := h.store.DeleteFood(r.Context(), id); err != nil {
		log.Printf("ERROR: delete food: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

// --- Helpers shared by the catalog/expense handlers ---

func numericToString(n pgtype.Numeric) string {
	if !n.Valid {
		return "0.00"
	}
	val, err := n.Value()
	if err != nil || val == nil {
		return "0.00"
	}
	s, ok := val.(string)
	if !ok {
		return "0.00"
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return "0.00"
	}
	return d.StringFixed(2)
}

func decimalToNumeric(d decimal.Decimal) pgtype.Numeric {
	var n pgtype.Numeric
	_ = n.Scan(d.StringFixed(2))
	return n
}

func optionalText(s string) pgtype.Text {
	if s == "" {
		return pgtype.Text{}
	}
	return pgtype.Text{String: s, Valid: true}
}

func optionalInt8(v *int64) pgtype.Int8 {
	if v == nil {
		return pgtype.Int8{}
	}
	return pgtype.Int8{Int64: *v, Valid: true}
}
