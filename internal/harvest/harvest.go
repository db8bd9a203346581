// Package harvest manages harvest types (what gets harvested) and harvest
// events (how much, when, and from which field).
package harvest

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// HarvestType is a named category of harvest, e.g. a crop.
type HarvestType struct {
	ID   int32  `json:"id"`
	Name string `json:"name"`
}

// HarvestEvent is a recorded harvest. TypeName is denormalized from
// harvest_type on read; writes only use TypeID.
type HarvestEvent struct {
	ID       int32     `json:"id"`
	Value    int32     `json:"value"`
	Time     time.Time `json:"time"`
	FieldID  int32     `json:"field_id"`
	TypeName string    `json:"type_name"`
	TypeID   int32     `json:"type_id"`
}

// Storage is the datastore contract for harvest types and events.
type Storage interface {
	ListTypes(ctx context.Context) ([]HarvestType, error)
	CreateType(ctx context.Context, t HarvestType) (int32, error)
	ListEventsByField(ctx context.Context, fieldID int32) ([]HarvestEvent, error)
	CreateEvent(ctx context.Context, e HarvestEvent) (int32, error)
}

// PostgresStorage persists harvests in the harvest_type and harvest_event
// tables.
type PostgresStorage struct {
	pool *pgxpool.Pool
}

func NewPostgresStorage(pool *pgxpool.Pool) *PostgresStorage {
	return &PostgresStorage{pool: pool}
}

func (s *PostgresStorage) ListTypes(ctx context.Context) ([]HarvestType, error) {
	rows, err := s.pool.Query(ctx, `SELECT id, name FROM harvest_type`)
	if err != nil {
		return nil, fmt.Errorf("harvest: failed to list types: %w", err)
	}

	types, err := pgx.CollectRows(rows, pgx.RowToStructByPos[HarvestType])
	if err != nil {
		return nil, fmt.Errorf("harvest: failed to scan types: %w", err)
	}
	return types, nil
}

func (s *PostgresStorage) CreateType(ctx context.Context, t HarvestType) (int32, error) {
	var id int32
	err := s.pool.QueryRow(ctx,
		`INSERT INTO harvest_type (name) VALUES ($1) RETURNING id`,
		t.Name,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("harvest: failed to insert type: %w", err)
	}
	return id, nil
}

func (s *PostgresStorage) ListEventsByField(ctx context.Context, fieldID int32) ([]HarvestEvent, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT e.id, e.value, e.time, e.field_id, h.name AS type_name, h.id AS type_id
		   FROM harvest_event AS e JOIN harvest_type AS h ON e.harvest_type_id = h.id
		  WHERE e.field_id = $1
		  ORDER BY e.time DESC`,
		fieldID,
	)
	if err != nil {
		return nil, fmt.Errorf("harvest: failed to list events: %w", err)
	}

	events, err := pgx.CollectRows(rows, pgx.RowToStructByPos[HarvestEvent])
	if err != nil {
		return nil, fmt.Errorf("harvest: failed to scan events: %w", err)
	}
	return events, nil
}

func (s *PostgresStorage) CreateEvent(ctx context.Context, e HarvestEvent) (int32, error) {
	var id int32
	err := s.pool.QueryRow(ctx,
		`INSERT INTO harvest_event (value, time, field_id, harvest_type_id)
		 VALUES ($1, $2, $3, $4) RETURNING id`,
		e.Value, e.Time, e.FieldID, e.TypeID,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("harvest: failed to insert event: %w", err)
	}
	return id, nil
}
