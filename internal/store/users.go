package store

import (
	"context"

	"github.com/google/uuid"
)

func (s *Store) GetUserByUsername(ctx context.Context, username string) (User, error) {
	const q = `SELECT id, username, password_hash, role FROM users WHERE username = $1`
	var u User
	err := s.db.QueryRow(ctx, q, username).Scan(&u.ID, &u.Username, &u.PasswordHash, &u.Role)
	return u, err
}

// CreateUserParams holds a new staff account.
type CreateUserParams struct {
	Username     string
	PasswordHash string
	Role         string
}

func (s *Store) CreateUser(ctx context.Context, arg CreateUserParams) (User, error) {
	const q = `
		INSERT INTO users (id, username, password_hash, role)
		VALUES ($1, $2, $3, $4)
		RETURNING id, username, password_hash, role`
	var u User
	err := s.db.QueryRow(ctx, q, uuid.New(), arg.Username, arg.PasswordHash, arg.Role).
		Scan(&u.ID, &u.Username, &u.PasswordHash, &u.Role)
	return u, err
}
