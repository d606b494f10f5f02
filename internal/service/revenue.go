package service

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/novo-pos/api/internal/store"
	"github.com/shopspring/decimal"
)

// RevenueStore defines the DB methods the aggregator needs.
// Satisfied by *store.Store; narrow interface for testability.
type RevenueStore interface {
	ListPaidOrders(ctx context.Context) ([]store.Order, error)
	ListOrdersInRange(ctx context.Context, start, end time.Time) ([]store.Order, error)
	ListFoodPrices(ctx context.Context) ([]store.FoodPrice, error)
}

// RevenueService computes order totals from persisted line items, falling
// back to the live menu price only when an item carries no embedded price.
type RevenueService struct {
	store RevenueStore
}

// NewRevenueService creates a new RevenueService.
func NewRevenueService(st RevenueStore) *RevenueService {
	return &RevenueService{store: st}
}

// TotalPaid sums unitPrice x quantity across the items of every paid order.
func (s *RevenueService) TotalPaid(ctx context.Context) (decimal.Decimal, error) {
	orders, err := s.store.ListPaidOrders(ctx)
	if err != nil {
		return decimal.Zero, fmt.Errorf("list paid orders: %w", err)
	}
	prices, err := s.menuPrices(ctx)
	if err != nil {
		return decimal.Zero, err
	}

	total := decimal.Zero
	for _, o := range orders {
		total = total.Add(orderTotal(o, prices))
	}
	return total, nil
}

// TotalInRange returns the orders created within [start, end] and their
// combined total, regardless of payment status.
func (s *RevenueService) TotalInRange(ctx context.Context, start, end time.Time) ([]store.Order, decimal.Decimal, error) {
	orders, err := s.store.ListOrdersInRange(ctx, start, end)
	if err != nil {
		return nil, decimal.Zero, fmt.Errorf("list orders in range: %w", err)
	}
	prices, err := s.menuPrices(ctx)
	if err != nil {
		return nil, decimal.Zero, err
	}

	total := decimal.Zero
	for _, o := range orders {
		total = total.Add(orderTotal(o, prices))
	}
	return orders, total, nil
}

func (s *RevenueService) menuPrices(ctx context.Context) (map[int64]decimal.Decimal, error) {
	rows, err := s.store.ListFoodPrices(ctx)
	if err != nil {
		return nil, fmt.Errorf("list food prices: %w", err)
	}
	prices := make(map[int64]decimal.Decimal, len(rows))
	for _, r := range rows {
		prices[r.ID] = numericToDecimal(r.Price)
	}
	return prices, nil
}

// orderTotal sums one order's items. An order with an unparsable items
// document contributes zero and is logged; it never poisons the aggregate.
// Items missing an embedded price fall back to the current menu price.
func orderTotal(o store.Order, prices map[int64]decimal.Decimal) decimal.Decimal {
	items, err := ParseItems(o.Items)
	if err != nil {
		log.Printf("WARN: skipping order %s in revenue total, unparsable items: %v", o.ID, err)
		return decimal.Zero
	}

	total := decimal.Zero
	for _, it := range items {
		price := it.UnitPrice
		if price.IsZero() {
			price = prices[it.FoodID]
		}
		total = total.Add(price.Mul(decimal.NewFromInt32(it.Quantity)))
	}
	return total
}

func numericToDecimal(n pgtype.Numeric) decimal.Decimal {
	if !n.Valid {
		return decimal.Zero
	}
	val, err := n.Value()
	if err != nil || val == nil {
		return decimal.Zero
	}
	s, ok := val.(string)
	if !ok {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}
