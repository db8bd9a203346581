package auth

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/sorjordet/sorjordet/pkg/pg"
)

// Credential is the stored login record. PasswordHash never leaves this
// package.
type Credential struct {
	ID           int32
	Username     string
	PasswordHash string
	Email        string
}

// Store is the datastore contract the login flow depends on. The Postgres
// implementation below is the production one; tests inject fakes.
type Store interface {
	FindCredentialByUsername(ctx context.Context, username string) (*Credential, error)
	InsertCredential(ctx context.Context, username, passwordHash, email string) (int32, error)
	UpdateLastLogin(ctx context.Context, id int32) error
}

// PostgresStore persists credentials in the user_info table.
type PostgresStore struct {
	pool *pgxpool.Pool
}

func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

func (s *PostgresStore) FindCredentialByUsername(ctx context.Context, username string) (*Credential, error) {
	var c Credential
	err := s.pool.QueryRow(ctx,
		`SELECT id, name, password, email FROM user_info WHERE name = $1`,
		username,
	).Scan(&c.ID, &c.Username, &c.PasswordHash, &c.Email)
	if err != nil {
		if pg.IsNotFoundError(err) {
			return nil, ErrCredentialNotFound
		}
		return nil, fmt.Errorf("auth: failed to look up credential: %w", err)
	}
	return &c, nil
}

func (s *PostgresStore) InsertCredential(ctx context.Context, username, passwordHash, email string) (int32, error) {
	var id int32
	err := s.pool.QueryRow(ctx,
		`INSERT INTO user_info (name, password, email, created_on) VALUES ($1, $2, $3, $4) RETURNING id`,
		username, passwordHash, email, time.Now().UTC(),
	).Scan(&id)
	if err != nil {
		if pg.IsDuplicateKeyError(err) {
			return 0, ErrUsernameTaken
		}
		return 0, fmt.Errorf("auth: failed to insert credential: %w", err)
	}
	return id, nil
}

func (s *PostgresStore) UpdateLastLogin(ctx context.Context, id int32) error {
	if _, err := s.pool.Exec(ctx,
		`UPDATE user_info SET last_login = $1 WHERE id = $2`,
		time.Now().UTC(), id,
	); err != nil {
		return fmt.Errorf("auth: failed to update last login: %w", err)
	}
	return nil
}
