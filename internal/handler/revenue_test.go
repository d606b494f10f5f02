package handler_test

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/novo-pos/api/internal/enum"
	"github.com/novo-pos/api/internal/handler"
	"github.com/novo-pos/api/internal/store"
	"github.com/shopspring/decimal"
)

type mockRevenueServicer struct {
	totalPaidFn    func(ctx context.Context) (decimal.Decimal, error)
	totalInRangeFn func(ctx context.Context, start, end time.Time) ([]store.Order, decimal.Decimal, error)
}

func (m *mockRevenueServicer) TotalPaid(ctx context.Context) (decimal.Decimal, error) {
	return m.totalPaidFn(ctx)
}
func (m *mockRevenueServicer) TotalInRange(ctx context.Context, start, end time.Time) ([]store.Order, decimal.Decimal, error) {
	return m.totalInRangeFn(ctx, start, end)
}

func newRevenueRouter(svc handler.RevenueServicer) chi.Router {
	h := handler.NewRevenueHandler(svc)
	r := chi.NewRouter()
	r.Route("/orders", h.RegisterRoutes)
	return r
}

func TestPaidTotalHandler(t *testing.T) {
	svc := &mockRevenueServicer{
		totalPaidFn: func(ctx context.Context) (decimal.Decimal, error) {
			return decimal.RequireFromString("4550.5"), nil
		},
	}
	r := newRevenueRouter(svc)

	rr := doJSON(t, r, "GET", "/orders/paid/total", nil, "")
	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d, want %d", rr.Code, http.StatusOK)
	}

	resp := decodeResponse(t, rr)
	if resp["total"] != "4550.50" {
		t.Errorf("total: got %v, want 4550.50", resp["total"])
	}
}

func TestRangeHandler_ParsesWindow(t *testing.T) {
	var gotStart, gotEnd time.Time
	svc := &mockRevenueServicer{
		totalInRangeFn: func(ctx context.Context, start, end time.Time) ([]store.Order, decimal.Decimal, error) {
			gotStart, gotEnd = start, end
			return []store.Order{sampleOrder(t, enum.OrderStatusPaid)}, decimal.NewFromInt(1700), nil
		},
	}
	r := newRevenueRouter(svc)

	rr := doJSON(t, r, "GET", "/orders/range?start_date=2025-03-01&end_date=2025-03-31", nil, "")
	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d, want %d; body: %s", rr.Code, http.StatusOK, rr.Body.String())
	}

	if gotStart.Day() != 1 || gotStart.Month() != time.March {
		t.Errorf("start: got %s", gotStart)
	}
	// The end date covers the whole day.
	if gotEnd.Day() != 31 || gotEnd.Hour() != 23 {
		t.Errorf("end should reach the last instant of the day, got %s", gotEnd)
	}

	resp := decodeResponse(t, rr)
	if resp["total"] != "1700.00" {
		t.Errorf("total: got %v, want 1700.00", resp["total"])
	}
	orders, ok := resp["orders"].([]interface{})
	if !ok || len(orders) != 1 {
		t.Errorf("orders: got %v", resp["orders"])
	}
}

func TestRangeHandler_Validation(t *testing.T) {
	svc := &mockRevenueServicer{}
	r := newRevenueRouter(svc)

	cases := []struct {
		name string
		path string
	}{
		{"missing params", "/orders/range"},
		{"bad format", "/orders/range?start_date=03-01-2025&end_date=2025-03-31"},
		{"end before start", "/orders/range?start_date=2025-03-31&end_date=2025-03-01"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rr := doJSON(t, r, "GET", tc.path, nil, "")
			if rr.Code != http.StatusBadRequest {
				t.Errorf("status: got %d, want %d", rr.Code, http.StatusBadRequest)
			}
		})
	}
}
