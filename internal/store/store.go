package store

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
)

// DBTX is the subset of pgx methods the store needs.
// Satisfied by *pgxpool.Pool, *pgx.Conn and pgx.Tx.
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Store runs SQL against a pool or transaction.
type Store struct {
	db DBTX
}

// New creates a Store backed by the given DBTX.
func New(db DBTX) *Store {
	return &Store{db: db}
}

// --- Models ---

// Order is the durable order record. Items is the serialized line-item
// list captured at creation; it is kept raw here so that a malformed
// document never makes the row unreadable.
type Order struct {
	ID           uuid.UUID
	OrderType    string
	Items        []byte
	Note         pgtype.Text
	TableNumber  pgtype.Text
	Status       string
	CancelReason pgtype.Text
	Paid         bool
	CreatedAt    time.Time
}

type Food struct {
	ID        int64
	Name      string
	Price     pgtype.Numeric
	ImageURL  pgtype.Text
	SectionID pgtype.Int8
	CreatedAt time.Time
}

type Section struct {
	ID   int64
	Name string
}

type Expense struct {
	ID        int64
	Amount    pgtype.Numeric
	Note      pgtype.Text
	CreatedAt time.Time
}

type User struct {
	ID           uuid.UUID
	Username     string
	PasswordHash string
	Role         string
}
