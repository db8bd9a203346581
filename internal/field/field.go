// Package field manages farm fields, their grouping, and the free-form events
// recorded against a field (sowing, fertilizing, and so on).
package field

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/sorjordet/sorjordet/pkg/pg"
)

// ErrFieldNotFound is returned when a field lookup matches no row.
var ErrFieldNotFound = errors.New("field: not found")

// FarmField is a single plot with its map polygon.
type FarmField struct {
	ID               int32  `json:"id"`
	Name             string `json:"name"`
	MapPolygonString string `json:"map_polygon_string"`
	FarmID           int32  `json:"farm_id"`
	FarmFieldGroupID *int32 `json:"farm_field_group_id"`
}

// FarmFieldMeta is the listing shape: everything but the polygon, which can
// be large and is only needed when rendering a single field.
type FarmFieldMeta struct {
	ID               int32  `json:"id"`
	Name             string `json:"name"`
	FarmID           int32  `json:"farm_id"`
	FarmFieldGroupID *int32 `json:"farm_field_group_id"`
}

// FarmFieldGroup is a named group of fields sharing a draw color on the map.
// Fields holds the member field IDs.
type FarmFieldGroup struct {
	ID        int32   `json:"id"`
	Name      string  `json:"name"`
	FarmID    int32   `json:"farm_id"`
	Fields    []int32 `json:"fields"`
	DrawColor string  `json:"draw_color"`
}

// FieldEvent is a dated note attached to a field.
type FieldEvent struct {
	ID          int32     `json:"id"`
	Time        time.Time `json:"time"`
	FieldID     int32     `json:"field_id"`
	EventName   string    `json:"event_name"`
	Description string    `json:"description"`
}

// Storage is the datastore contract for fields, groups, and field events.
type Storage interface {
	ListFieldMeta(ctx context.Context) ([]FarmFieldMeta, error)
	FindFieldByID(ctx context.Context, id int32) (*FarmField, error)
	ListFieldsByGroup(ctx context.Context, groupID int32) ([]FarmField, error)
	CreateField(ctx context.Context, f FarmField) (int32, error)
	ListGroups(ctx context.Context) ([]FarmFieldGroup, error)
	CreateGroup(ctx context.Context, g FarmFieldGroup) (int32, error)
	ListEventsByField(ctx context.Context, fieldID int32) ([]FieldEvent, error)
	CreateEvent(ctx context.Context, e FieldEvent) (int32, error)
}

// PostgresStorage persists fields in the farm_field, farm_field_group, and
// field_event tables.
type PostgresStorage struct {
	pool *pgxpool.Pool
}

func NewPostgresStorage(pool *pgxpool.Pool) *PostgresStorage {
	return &PostgresStorage{pool: pool}
}

func (s *PostgresStorage) ListFieldMeta(ctx context.Context) ([]FarmFieldMeta, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, name, farm_id, farm_field_group_id FROM farm_field`)
	if err != nil {
		return nil, fmt.Errorf("field: failed to list fields: %w", err)
	}

	fields, err := pgx.CollectRows(rows, pgx.RowToStructByPos[FarmFieldMeta])
	if err != nil {
		return nil, fmt.Errorf("field: failed to scan fields: %w", err)
	}
	return fields, nil
}

func (s *PostgresStorage) FindFieldByID(ctx context.Context, id int32) (*FarmField, error) {
	var f FarmField
	err := s.pool.QueryRow(ctx,
		`SELECT id, name, map_polygon_string, farm_id, farm_field_group_id
		   FROM farm_field WHERE id = $1`,
		id,
	).Scan(&f.ID, &f.Name, &f.MapPolygonString, &f.FarmID, &f.FarmFieldGroupID)
	if err != nil {
		if pg.IsNotFoundError(err) {
			return nil, ErrFieldNotFound
		}
		return nil, fmt.Errorf("field: failed to look up field: %w", err)
	}
	return &f, nil
}

func (s *PostgresStorage) ListFieldsByGroup(ctx context.Context, groupID int32) ([]FarmField, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, name, map_polygon_string, farm_id, farm_field_group_id
		   FROM farm_field WHERE farm_field_group_id = $1`,
		groupID,
	)
	if err != nil {
		return nil, fmt.Errorf("field: failed to list fields by group: %w", err)
	}

	fields, err := pgx.CollectRows(rows, pgx.RowToStructByPos[FarmField])
	if err != nil {
		return nil, fmt.Errorf("field: failed to scan fields: %w", err)
	}
	return fields, nil
}

func (s *PostgresStorage) CreateField(ctx context.Context, f FarmField) (int32, error) {
	var id int32
	err := s.pool.QueryRow(ctx,
		`INSERT INTO farm_field (name, farm_id, farm_field_group_id, map_polygon_string)
		 VALUES ($1, $2, $3, $4) RETURNING id`,
		f.Name, f.FarmID, f.FarmFieldGroupID, f.MapPolygonString,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("field: failed to insert field: %w", err)
	}
	return id, nil
}

// ListGroups aggregates member field IDs per group in a single query. Groups
// without fields get an empty slice, not null.
func (s *PostgresStorage) ListGroups(ctx context.Context) ([]FarmFieldGroup, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT g.id, g.name, g.farm_id, g.draw_color,
		        COALESCE(ARRAY_AGG(f.id) FILTER (WHERE f.id IS NOT NULL), '{}') AS fields
		   FROM farm_field_group AS g
		        LEFT JOIN farm_field AS f ON g.id = f.farm_field_group_id
		  GROUP BY g.id`)
	if err != nil {
		return nil, fmt.Errorf("field: failed to list groups: %w", err)
	}
	defer rows.Close()

	var groups []FarmFieldGroup
	for rows.Next() {
		var g FarmFieldGroup
		if err := rows.Scan(&g.ID, &g.Name, &g.FarmID, &g.DrawColor, &g.Fields); err != nil {
			return nil, fmt.Errorf("field: failed to scan group: %w", err)
		}
		groups = append(groups, g)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("field: failed to list groups: %w", err)
	}
	return groups, nil
}

func (s *PostgresStorage) CreateGroup(ctx context.Context, g FarmFieldGroup) (int32, error) {
	var id int32
	err := s.pool.QueryRow(ctx,
		`INSERT INTO farm_field_group (name, farm_id, draw_color)
		 VALUES ($1, $2, $3) RETURNING id`,
		g.Name, g.FarmID, g.DrawColor,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("field: failed to insert group: %w", err)
	}
	return id, nil
}

func (s *PostgresStorage) ListEventsByField(ctx context.Context, fieldID int32) ([]FieldEvent, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, time, field_id, event_name, description
		   FROM field_event WHERE field_id = $1
		  ORDER BY time DESC`,
		fieldID,
	)
	if err != nil {
		return nil, fmt.Errorf("field: failed to list events: %w", err)
	}

	events, err := pgx.CollectRows(rows, pgx.RowToStructByPos[FieldEvent])
	if err != nil {
		return nil, fmt.Errorf("field: failed to scan events: %w", err)
	}
	return events, nil
}

func (s *PostgresStorage) CreateEvent(ctx context.Context, e FieldEvent) (int32, error) {
	var id int32
	err := s.pool.QueryRow(ctx,
		`INSERT INTO field_event (time, field_id, event_name, description)
		 VALUES ($1, $2, $3, $4) RETURNING id`,
		e.Time, e.FieldID, e.EventName, e.Description,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("field: failed to insert event: %w", err)
	}
	return id, nil
}
