package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/novo-pos/api/internal/enum"
	"github.com/novo-pos/api/internal/store"
	"github.com/shopspring/decimal"
)

const dispatchTimeout = 10 * time.Second

// Errors returned by the order service.
var (
	ErrEmptyItems          = errors.New("items are required")
	ErrInvalidOrderType    = errors.New("invalid order type")
	ErrInvalidQuantity     = errors.New("quantity must be > 0")
	ErrInvalidStatus       = errors.New("invalid status value")
	ErrIllegalTransition   = errors.New("illegal status transition")
	ErrMissingCancelReason = errors.New("cancel_reason is required to cancel an order")
	ErrOrderLocked         = errors.New("order is no longer editable")
	ErrConflict            = errors.New("order changed concurrently, please retry")
	ErrNotFound            = errors.New("order not found")
)

// LineItem is a menu item snapshot captured at order creation. The embedded
// unit price stays authoritative even if the menu price changes later.
type LineItem struct {
	FoodID    int64           `json:"foodId"`
	Name      string          `json:"name"`
	UnitPrice decimal.Decimal `json:"unitPrice"`
	Quantity  int32           `json:"quantity"`
}

// ParseItems decodes a serialized line-item list.
func ParseItems(raw []byte) ([]LineItem, error) {
	var items []LineItem
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, err
	}
	return items, nil
}

// ItemsTotal sums unitPrice x quantity over a line-item list.
func ItemsTotal(items []LineItem) decimal.Decimal {
	total := decimal.Zero
	for _, it := range items {
		total = total.Add(it.UnitPrice.Mul(decimal.NewFromInt32(it.Quantity)))
	}
	return total
}

// Snapshot is the full order view published on order:new and handed to the
// print dispatcher.
type Snapshot struct {
	ID           uuid.UUID       `json:"id"`
	Type         string          `json:"type"`
	TableNumber  string          `json:"tableNumber,omitempty"`
	Note         string          `json:"note,omitempty"`
	Items        []LineItem      `json:"items"`
	Status       string          `json:"status"`
	CancelReason string          `json:"cancelReason,omitempty"`
	Paid         bool            `json:"paid"`
	Total        decimal.Decimal `json:"total"`
	CreatedAt    time.Time       `json:"createdAt"`
}

// SnapshotFromOrder builds a Snapshot from the stored row. A malformed items
// document yields an empty item list rather than an error; the raw record
// stays readable either way.
func SnapshotFromOrder(o store.Order) Snapshot {
	snap := Snapshot{
		ID:        o.ID,
		Type:      o.OrderType,
		Status:    o.Status,
		Paid:      o.Paid,
		Total:     decimal.Zero,
		CreatedAt: o.CreatedAt,
	}
	if o.TableNumber.Valid {
		snap.TableNumber = o.TableNumber.String
	}
	if o.Note.Valid {
		snap.Note = o.Note.String
	}
	if o.CancelReason.Valid {
		snap.CancelReason = o.CancelReason.String
	}
	items, err := ParseItems(o.Items)
	if err != nil {
		log.Printf("WARN: order %s has unparsable items: %v", o.ID, err)
		items = []LineItem{}
	}
	snap.Items = items
	snap.Total = ItemsTotal(items)
	return snap
}

// OrderEvent is the minimal payload published for lifecycle transitions.
type OrderEvent struct {
	ID           uuid.UUID `json:"id"`
	Status       string    `json:"status"`
	CancelReason string    `json:"cancelReason,omitempty"`
}

// Broadcaster fans an event out to every connected staff display.
// Satisfied by *ws.Hub; a no-op stub substitutes in tests.
type Broadcaster interface {
	Publish(event string, payload any)
}

// Dispatcher hands a finalized order to the receipt print pipeline.
// Satisfied by the printer adapters; failures never affect order state.
type Dispatcher interface {
	Dispatch(ctx context.Context, snap Snapshot) error
}

// OrderStore defines the DB methods the state machine needs.
// Satisfied by *store.Store; narrow interface for testability.
type OrderStore interface {
	CreateOrder(ctx context.Context, arg store.CreateOrderParams) (store.Order, error)
	GetOrder(ctx context.Context, id uuid.UUID) (store.Order, error)
	UpdateOrderStatus(ctx context.Context, arg store.UpdateOrderStatusParams) (store.Order, error)
	UpdateOrderDetails(ctx context.Context, arg store.UpdateOrderDetailsParams) (store.Order, error)
	DeleteOrder(ctx context.Context, id uuid.UUID) (int64, error)
	DeletePaidOrders(ctx context.Context) (int64, error)
}

// OrderService owns the order lifecycle: it validates transitions, persists
// them, and only then emits realtime events and print dispatches.
type OrderService struct {
	store       OrderStore
	broadcaster Broadcaster
	printer     Dispatcher
}

// NewOrderService creates a new OrderService.
func NewOrderService(st OrderStore, b Broadcaster, p Dispatcher) *OrderService {
	return &OrderService{store: st, broadcaster: b, printer: p}
}

// allowedTransitions defines the status graph. Key is current status, value
// is the set of statuses it can move to. paid and canceled are terminal;
// re-confirming paid is handled as an idempotent special case in Transition.
var allowedTransitions = map[string][]string{
	enum.OrderStatusPending: {enum.OrderStatusLive, enum.OrderStatusCanceled, enum.OrderStatusPaid},
	enum.OrderStatusLive:    {enum.OrderStatusDone, enum.OrderStatusCanceled, enum.OrderStatusPaid},
	enum.OrderStatusDone:    {enum.OrderStatusPaid},
}

// transitionEvents names the realtime event for each transition target.
var transitionEvents = map[string]string{
	enum.OrderStatusLive:     enum.EventOrderAccepted,
	enum.OrderStatusDone:     enum.EventOrderDone,
	enum.OrderStatusCanceled: enum.EventOrderCanceled,
	enum.OrderStatusPaid:     enum.EventOrderPaid,
}

func isValidOrderStatus(s string) bool {
	switch s {
	case enum.OrderStatusPending, enum.OrderStatusLive, enum.OrderStatusDone,
		enum.OrderStatusCanceled, enum.OrderStatusPaid:
		return true
	}
	return false
}

func isValidOrderType(s string) bool {
	switch s {
	case enum.OrderTypePickup, enum.OrderTypeHall, enum.OrderTypeExternal:
		return true
	}
	return false
}

func validateTransition(current, next string) error {
	allowed, ok := allowedTransitions[current]
	if !ok {
		return fmt.Errorf("%w: %s is terminal", ErrIllegalTransition, current)
	}
	for _, s := range allowed {
		if s == next {
			return nil
		}
	}
	return fmt.Errorf("%w: %s -> %s", ErrIllegalTransition, current, next)
}

// CreateOrderRequest is the validated intake input.
type CreateOrderRequest struct {
	Type        string
	TableNumber string
	Note        string
	Items       []LineItem
}

// Create validates and persists a new pending order, then broadcasts
// order:new with the full snapshot.
func (s *OrderService) Create(ctx context.Context, req CreateOrderRequest) (store.Order, error) {
	if !isValidOrderType(req.Type) {
		return store.Order{}, ErrInvalidOrderType
	}
	if len(req.Items) == 0 {
		return store.Order{}, ErrEmptyItems
	}
	for i, it := range req.Items {
		if it.Quantity <= 0 {
			return store.Order{}, fmt.Errorf("items[%d]: %w", i, ErrInvalidQuantity)
		}
	}

	raw, err := json.Marshal(req.Items)
	if err != nil {
		return store.Order{}, fmt.Errorf("marshal items: %w", err)
	}

	order, err := s.store.CreateOrder(ctx, store.CreateOrderParams{
		ID:          uuid.New(),
		OrderType:   req.Type,
		Items:       raw,
		Note:        textOrNull(req.Note),
		TableNumber: textOrNull(req.TableNumber),
		Status:      enum.OrderStatusPending,
	})
	if err != nil {
		return store.Order{}, fmt.Errorf("create order: %w", err)
	}

	s.broadcaster.Publish(enum.EventOrderNew, SnapshotFromOrder(order))
	return order, nil
}

// TransitionContext carries the transition-specific extras.
type TransitionContext struct {
	CancelReason string
	Print        bool
}

// Transition moves an order to target atomically. The store write is a
// compare-and-set against the status read here, so of two racing transitions
// exactly one commits; the loser gets ErrConflict. Events are published only
// after the write returns, and the printer runs after that, outside the
// request path.
func (s *OrderService) Transition(ctx context.Context, id uuid.UUID, target string, tc TransitionContext) (store.Order, error) {
	if !isValidOrderStatus(target) {
		return store.Order{}, ErrInvalidStatus
	}

	current, err := s.store.GetOrder(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return store.Order{}, ErrNotFound
		}
		return store.Order{}, fmt.Errorf("get order: %w", err)
	}

	// Re-marking a paid order is a no-op success: duplicate requests are
	// tolerated without a second broadcast. A reprint may still be asked for.
	if current.Status == enum.OrderStatusPaid && target == enum.OrderStatusPaid {
		if tc.Print {
			s.dispatchPrint(current)
		}
		return current, nil
	}

	if err := validateTransition(current.Status, target); err != nil {
		return store.Order{}, err
	}

	var cancelReason pgtype.Text
	if target == enum.OrderStatusCanceled {
		if tc.CancelReason == "" {
			return store.Order{}, ErrMissingCancelReason
		}
		cancelReason = pgtype.Text{String: tc.CancelReason, Valid: true}
	}

	updated, err := s.store.UpdateOrderStatus(ctx, store.UpdateOrderStatusParams{
		ID:           id,
		Status:       target,
		Paid:         target == enum.OrderStatusPaid,
		CancelReason: cancelReason,
		PrevStatus:   current.Status,
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return store.Order{}, ErrConflict
		}
		return store.Order{}, fmt.Errorf("update order status: %w", err)
	}

	event := OrderEvent{ID: updated.ID, Status: updated.Status}
	if updated.CancelReason.Valid {
		event.CancelReason = updated.CancelReason.String
	}
	s.broadcaster.Publish(transitionEvents[target], event)

	if target == enum.OrderStatusPaid && tc.Print {
		s.dispatchPrint(updated)
	}
	return updated, nil
}

// dispatchPrint hands the order to the receipt pipeline without blocking the
// caller. The transition has already committed; a dead printer is logged and
// nothing else.
func (s *OrderService) dispatchPrint(o store.Order) {
	snap := SnapshotFromOrder(o)
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), dispatchTimeout)
		defer cancel()
		if err := s.printer.Dispatch(ctx, snap); err != nil {
			log.Printf("ERROR: print dispatch for order %s: %v", snap.ID, err)
		}
	}()
}

// EditOrderRequest carries the editable fields; nil means keep the current
// value.
type EditOrderRequest struct {
	Type  *string
	Note  *string
	Items []LineItem
}

// Edit rewrites note/items/type while the order is still pending. Past that
// point the line items are locked.
func (s *OrderService) Edit(ctx context.Context, id uuid.UUID, req EditOrderRequest) (store.Order, error) {
	current, err := s.store.GetOrder(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return store.Order{}, ErrNotFound
		}
		return store.Order{}, fmt.Errorf("get order: %w", err)
	}
	if current.Status != enum.OrderStatusPending {
		return store.Order{}, ErrOrderLocked
	}

	orderType := current.OrderType
	if req.Type != nil {
		if !isValidOrderType(*req.Type) {
			return store.Order{}, ErrInvalidOrderType
		}
		orderType = *req.Type
	}

	note := current.Note
	if req.Note != nil {
		note = textOrNull(*req.Note)
	}

	items := current.Items
	if req.Items != nil {
		if len(req.Items) == 0 {
			return store.Order{}, ErrEmptyItems
		}
		for i, it := range req.Items {
			if it.Quantity <= 0 {
				return store.Order{}, fmt.Errorf("items[%d]: %w", i, ErrInvalidQuantity)
			}
		}
		items, err = json.Marshal(req.Items)
		if err != nil {
			return store.Order{}, fmt.Errorf("marshal items: %w", err)
		}
	}

	updated, err := s.store.UpdateOrderDetails(ctx, store.UpdateOrderDetailsParams{
		ID:        id,
		OrderType: orderType,
		Items:     items,
		Note:      note,
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			// Left pending between our read and write.
			return store.Order{}, ErrConflict
		}
		return store.Order{}, fmt.Errorf("update order details: %w", err)
	}
	return updated, nil
}

// Remove deletes an order. Deleting a missing order is a no-op success.
func (s *OrderService) Remove(ctx context.Context, id uuid.UUID) error {
	if _, err := s.store.DeleteOrder(ctx, id); err != nil {
		return fmt.Errorf("delete order: %w", err)
	}
	return nil
}

// PurgePaid removes every paid order and reports the count.
func (s *OrderService) PurgePaid(ctx context.Context) (int64, error) {
	n, err := s.store.DeletePaidOrders(ctx)
	if err != nil {
		return 0, fmt.Errorf("purge paid orders: %w", err)
	}
	return n, nil
}

func textOrNull(s string) pgtype.Text {
	if s == "" {
		return pgtype.Text{}
	}
	return pgtype.Text{String: s, Valid: true}
}
