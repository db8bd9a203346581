// Package farm manages the top-level farm records. A farm owns fields and
// field groups; its coordinates are an opaque string the map client renders.
package farm

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Farm is a single farm record.
type Farm struct {
	ID              int32  `json:"id"`
	Name            string `json:"name"`
	FarmCoordinates string `json:"farm_coordinates"`
}

// Storage is the datastore contract for farms.
type Storage interface {
	List(ctx context.Context) ([]Farm, error)
	Create(ctx context.Context, f Farm) (int32, error)
}

// PostgresStorage persists farms in the farm table.
type PostgresStorage struct {
	pool *pgxpool.Pool
}

func NewPostgresStorage(pool *pgxpool.Pool) *PostgresStorage {
	return &PostgresStorage{pool: pool}
}

func (s *PostgresStorage) List(ctx context.Context) ([]Farm, error) {
	rows, err := s.pool.Query(ctx, `SELECT id, name, farm_coordinates FROM farm`)
	if err != nil {
		return nil, fmt.Errorf("farm: failed to list farms: %w", err)
	}

	farms, err := pgx.CollectRows(rows, pgx.RowToStructByPos[Farm])
	if err != nil {
		return nil, fmt.Errorf("farm: failed to scan farms: %w", err)
	}
	return farms, nil
}

func (s *PostgresStorage) Create(ctx context.Context, f Farm) (int32, error) {
	var id int32
	err := s.pool.QueryRow(ctx,
		`INSERT INTO farm (name, farm_coordinates) VALUES ($1, $2) RETURNING id`,
		f.Name, f.FarmCoordinates,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("farm: failed to insert farm: %w", err)
	}
	return id, nil
}
