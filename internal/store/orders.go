package store

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
)

const orderColumns = `id, order_type, items, note, table_number, status, cancel_reason, paid, created_at`

func scanOrder(row pgx.Row) (Order, error) {
	var o Order
	err := row.Scan(
		&o.ID,
		&o.OrderType,
		&o.Items,
		&o.Note,
		&o.TableNumber,
		&o.Status,
		&o.CancelReason,
		&o.Paid,
		&o.CreatedAt,
	)
	return o, err
}

func collectOrders(rows pgx.Rows) ([]Order, error) {
	defer rows.Close()
	var orders []Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		orders = append(orders, o)
	}
	return orders, rows.Err()
}

// CreateOrderParams holds the fields assigned at intake.
type CreateOrderParams struct {
	ID          uuid.UUID
	OrderType   string
	Items       []byte
	Note        pgtype.Text
	TableNumber pgtype.Text
	Status      string
}

// CreateOrder inserts a new order and returns the stored row.
func (s *Store) CreateOrder(ctx context.Context, arg CreateOrderParams) (Order, error) {
	const q = `
		INSERT INTO orders (id, order_type, items, note, table_number, status)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING ` + orderColumns
	return scanOrder(s.db.QueryRow(ctx, q,
		arg.ID, arg.OrderType, arg.Items, arg.Note, arg.TableNumber, arg.Status))
}

// GetOrder returns a single order, or pgx.ErrNoRows.
func (s *Store) GetOrder(ctx context.Context, id uuid.UUID) (Order, error) {
	const q = `SELECT ` + orderColumns + ` FROM orders WHERE id = $1`
	return scanOrder(s.db.QueryRow(ctx, q, id))
}

// ListOrders returns orders newest-first, optionally filtered by status.
func (s *Store) ListOrders(ctx context.Context, status pgtype.Text) ([]Order, error) {
	const q = `
		SELECT ` + orderColumns + `
		FROM orders
		WHERE ($1::text IS NULL OR status = $1)
		ORDER BY created_at DESC`
	rows, err := s.db.Query(ctx, q, status)
	if err != nil {
		return nil, err
	}
	return collectOrders(rows)
}

// ListOrdersInRange returns orders created within [start, end], newest-first,
// regardless of status.
func (s *Store) ListOrdersInRange(ctx context.Context, start, end time.Time) ([]Order, error) {
	const q = `
		SELECT ` + orderColumns + `
		FROM orders
		WHERE created_at >= $1 AND created_at <= $2
		ORDER BY created_at DESC`
	rows, err := s.db.Query(ctx, q, start, end)
	if err != nil {
		return nil, err
	}
	return collectOrders(rows)
}

// ListPaidOrders returns all orders flagged paid, newest-first.
func (s *Store) ListPaidOrders(ctx context.Context) ([]Order, error) {
	const q = `SELECT ` + orderColumns + ` FROM orders WHERE paid = true ORDER BY created_at DESC`
	rows, err := s.db.Query(ctx, q)
	if err != nil {
		return nil, err
	}
	return collectOrders(rows)
}

// UpdateOrderStatusParams is a compare-and-set status write. PrevStatus must
// be the status the caller read and validated against; the update only
// applies while the row still carries it.
type UpdateOrderStatusParams struct {
	ID           uuid.UUID
	Status       string
	Paid         bool
	CancelReason pgtype.Text
	PrevStatus   string
}

// UpdateOrderStatus applies a validated transition atomically. Returns
// pgx.ErrNoRows when the row is gone or its status changed since the read,
// i.e. the caller lost a race to a concurrent transition.
func (s *Store) UpdateOrderStatus(ctx context.Context, arg UpdateOrderStatusParams) (Order, error) {
	const q = `
		UPDATE orders
		SET status = $1,
		    paid = $2,
		    cancel_reason = COALESCE($3, cancel_reason)
		WHERE id = $4 AND status = $5
		RETURNING ` + orderColumns
	return scanOrder(s.db.QueryRow(ctx, q,
		arg.Status, arg.Paid, arg.CancelReason, arg.ID, arg.PrevStatus))
}

// UpdateOrderDetailsParams carries the editable fields of a pending order.
type UpdateOrderDetailsParams struct {
	ID        uuid.UUID
	OrderType string
	Items     []byte
	Note      pgtype.Text
}

// UpdateOrderDetails rewrites items/note/type. The WHERE clause enforces the
// edit lock: only pending orders are writable, so a concurrent transition
// away from pending makes this return pgx.ErrNoRows.
func (s *Store) UpdateOrderDetails(ctx context.Context, arg UpdateOrderDetailsParams) (Order, error) {
	const q = `
		UPDATE orders
		SET order_type = $1, items = $2, note = $3
		WHERE id = $4 AND status = 'pending'
		RETURNING ` + orderColumns
	return scanOrder(s.db.QueryRow(ctx, q, arg.OrderType, arg.Items, arg.Note, arg.ID))
}

// DeleteOrder removes an order. Missing rows are not an error; the count
// tells the caller whether anything happened.
func (s *Store) DeleteOrder(ctx context.Context, id uuid.UUID) (int64, error) {
	tag, err := s.db.Exec(ctx, `DELETE FROM orders WHERE id = $1`, id)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

// DeletePaidOrders purges every paid order and reports how many were removed.
func (s *Store) DeletePaidOrders(ctx context.Context) (int64, error) {
	tag, err := s.db.Exec(ctx, `DELETE FROM orders WHERE paid = true`)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

// CountOrdersByStatus returns the number of orders per status.
func (s *Store) CountOrdersByStatus(ctx context.Context) (map[string]int64, error) {
	rows, err := s.db.Query(ctx, `SELECT status, COUNT(*) FROM orders GROUP BY status`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[string]int64)
	for rows.Next() {
		var status string
		var n int64
		if err := rows.Scan(&status, &n); err != nil {
			return nil, err
		}
		counts[status] = n
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("count orders: %w", err)
	}
	return counts, nil
}
