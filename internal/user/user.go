// Package user exposes the user admin surface: listing accounts and editing
// name and email. Account creation and passwords live in internal/auth; this
// package never touches the password column.
package user

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrUserNotFound is returned when an update matches no row.
var ErrUserNotFound = errors.New("user: not found")

// User is the outward account shape. It has no password field on purpose.
type User struct {
	ID    int32  `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// Storage is the datastore contract for user admin.
type Storage interface {
	List(ctx context.Context) ([]User, error)
	Update(ctx context.Context, id int32, name, email string) error
}

// PostgresStorage reads and updates rows in the user_info table.
type PostgresStorage struct {
	pool *pgxpool.Pool
}

func NewPostgresStorage(pool *pgxpool.Pool) *PostgresStorage {
	return &PostgresStorage{pool: pool}
}

func (s *PostgresStorage) List(ctx context.Context) ([]User, error) {
	rows, err := s.pool.Query(ctx, `SELECT id, name, email FROM user_info`)
	if err != nil {
		return nil, fmt.Errorf("user: failed to list users: %w", err)
	}

	users, err := pgx.CollectRows(rows, pgx.RowToStructByPos[User])
	if err != nil {
		return nil, fmt.Errorf("user: failed to scan users: %w", err)
	}
	return users, nil
}

func (s *PostgresStorage) Update(ctx context.Context, id int32, name, email string) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE user_info SET name = $1, email = $2 WHERE id = $3`,
		name, email, id,
	)
	if err != nil {
		return fmt.Errorf("user: failed to update user: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrUserNotFound
	}
	return nil
}
