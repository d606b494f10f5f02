package handler

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/novo-pos/api/internal/store"
	"github.com/shopspring/decimal"
)

// ExpenseStore defines the database methods needed by expense handlers.
// Satisfied by *store.Store; narrow interface for testability.
type ExpenseStore interface {
	CreateExpense(ctx context.Context, arg store.CreateExpenseParams) (store.Expense, error)
	ListExpenses(ctx context.Context) ([]store.Expense, error)
	ListExpensesInRange(ctx context.Context, start, end time.Time) ([]store.Expense, error)
}

// ExpenseHandler handles expense tracking endpoints.
type ExpenseHandler struct {
	store ExpenseStore
}

// NewExpenseHandler creates a new ExpenseHandler.
func NewExpenseHandler(store ExpenseStore) *ExpenseHandler {
	return &ExpenseHandler{store: store}
}

// RegisterRoutes registers expense endpoints; expected behind auth.
func (h *ExpenseHandler) RegisterRoutes(r chi.Router) {
	r.Post("/", h.Create)
	r.Get("/", h.List)
	r.Get("/range", h.Range)
}

type expenseRequest struct {
	Amount decimal.Decimal `json:"amount"`
	Note   string          `json:"note"`
}

type expenseResponse struct {
	ID        int64     `json:"id"`
	Amount    string    `json:"amount"`
	Note      *string   `json:"note"`
	CreatedAt time.Time `json:"createdAt"`
}

type expenseRangeResponse struct {
	Expenses []expenseResponse `json:"expenses"`
	Total    string            `json:"total"`
}

func toExpenseResponse(e store.Expense) expenseResponse {
	resp := expenseResponse{
		ID:        e.ID,
		Amount:    numericToString(e.Amount),
		CreatedAt: e.CreatedAt,
	}
	if e.Note.Valid {
		resp.Note = &e.Note.String
	}
	return resp
}

func toExpenseResponses(expenses []store.Expense) []expenseResponse {
	resp := make([]expenseResponse, len(expenses))
	for i, e := range expenses {
		resp[i] = toExpenseResponse(e)
	}
	return resp
}

// Create handles POST /expenses.
func (h *ExpenseHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req expenseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	if !req.Amount.IsPositive() {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "amount must be positive"})
		return
	}

	expense, err := h.store.CreateExpense(r.Context(), store.CreateExpenseParams{
		Amount: decimalToNumeric(req.Amount),
		Note:   optionalText(req.Note),
	})
	if err != nil {
		log.Printf("ERROR: create expense: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	writeJSON(w, http.StatusCreated, toExpenseResponse(expense))
}

// List handles GET /expenses.
func (h *ExpenseHandler) List(w http.ResponseWriter, r *http.Request) {
	expenses, err := h.store.ListExpenses(r.Context())
	if err != nil {
		log.Printf("ERROR: list expenses: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	writeJSON(w, http.StatusOK, toExpenseResponses(expenses))
}

// Range handles GET /expenses/range?start_date=&end_date=.
func (h *ExpenseHandler) Range(w http.ResponseWriter, r *http.Request) {
	start, end, err := parseDateRange(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	expenses, err := h.store.ListExpensesInRange(r.Context(), start, end)
	if err != nil {
		log.Printf("ERROR: list expenses in range: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	total := decimal.Zero
	for _, e := range expenses {
		if e.Amount.Valid {
			if d, err := decimal.NewFromString(numericToString(e.Amount)); err == nil {
				total = total.Add(d)
			}
		}
	}

	writeJSON(w, http.StatusOK, expenseRangeResponse{
		Expenses: toExpenseResponses(expenses),
		Total:    total.StringFixed(2),
	})
}
