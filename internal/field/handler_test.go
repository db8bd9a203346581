package field_test

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sorjordet/sorjordet/internal/field"
)

type fakeStorage struct {
	fields []field.FarmField
	groups []field.FarmFieldGroup
	events []field.FieldEvent
	nextID int32
}

func (f *fakeStorage) ListFieldMeta(_ context.Context) ([]field.FarmFieldMeta, error) {
	meta := make([]field.FarmFieldMeta, 0, len(f.fields))
	for _, ff := range f.fields {
		meta = append(meta, field.FarmFieldMeta{
			ID:               ff.ID,
			Name:             ff.Name,
			FarmID:           ff.FarmID,
			FarmFieldGroupID: ff.FarmFieldGroupID,
		})
	}
	return meta, nil
}

func (f *fakeStorage) FindFieldByID(_ context.Context, id int32) (*field.FarmField, error) {
	for _, ff := range f.fields {
		if ff.ID == id {
			match := ff
			return &match, nil
		}
	}
	return nil, field.ErrFieldNotFound
}

func (f *fakeStorage) ListFieldsByGroup(_ context.Context, groupID int32) ([]field.FarmField, error) {
	var out []field.FarmField
	for _, ff := range f.fields {
		if ff.FarmFieldGroupID != nil && *ff.FarmFieldGroupID == groupID {
			out = append(out, ff)
		}
	}
	return out, nil
}

func (f *fakeStorage) CreateField(_ context.Context, ff field.FarmField) (int32, error) {
	f.nextID++
	ff.ID = f.nextID
	f.fields = append(f.fields, ff)
	return ff.ID, nil
}

func (f *fakeStorage) ListGroups(_ context.Context) ([]field.FarmFieldGroup, error) {
	return f.groups, nil
}

func (f *fakeStorage) CreateGroup(_ context.Context, g field.FarmFieldGroup) (int32, error) {
	f.nextID++
	g.ID = f.nextID
	f.groups = append(f.groups, g)
	return g.ID, nil
}

func (f *fakeStorage) ListEventsByField(_ context.Context, fieldID int32) ([]field.FieldEvent, error) {
	var out []field.FieldEvent
	for _, e := range f.events {
		if e.FieldID == fieldID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (f *fakeStorage) CreateEvent(_ context.Context, e field.FieldEvent) (int32, error) {
	f.nextID++
	e.ID = f.nextID
	f.events = append(f.events, e)
	return e.ID, nil
}

func passthroughGuard(next http.Handler) http.Handler {
	return next
}

func newHandler(storage field.Storage) *field.Handler {
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	return field.NewHandler(storage, log)
}

func int32Ptr(v int32) *int32 { return &v }

func TestFieldRoutes(t *testing.T) {
	t.Parallel()

	storage := &fakeStorage{
		nextID: 2,
		fields: []field.FarmField{
			{ID: 1, Name: "East", MapPolygonString: "poly1", FarmID: 1, FarmFieldGroupID: int32Ptr(7)},
			{ID: 2, Name: "West", MapPolygonString: "poly2", FarmID: 1},
		},
	}
	router := newHandler(storage).FieldRoutes(passthroughGuard)

	t.Run("meta listing omits polygons", func(t *testing.T) {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

		require.Equal(t, http.StatusOK, rec.Code)
		assert.NotContains(t, rec.Body.String(), "poly1")

		var meta []field.FarmFieldMeta
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &meta))
		require.Len(t, meta, 2)
		assert.Equal(t, "East", meta[0].Name)
	})

	t.Run("lookup by id", func(t *testing.T) {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/1", nil))

		require.Equal(t, http.StatusOK, rec.Code)
		var got field.FarmField
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
		assert.Equal(t, storage.fields[0], got)
	})

	t.Run("lookup of a missing id is 404", func(t *testing.T) {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/99", nil))
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("lookup of a non-numeric id is 404", func(t *testing.T) {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/abc", nil))
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("fields by group", func(t *testing.T) {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/group/7", nil))

		require.Equal(t, http.StatusOK, rec.Code)
		var got []field.FarmField
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
		require.Len(t, got, 1)
		assert.Equal(t, int32(1), got[0].ID)
	})

	t.Run("create returns the new id", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(
			`{"id":0,"name":"South","map_polygon_string":"poly3","farm_id":1,"farm_field_group_id":null}`))
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		require.Equal(t, http.StatusCreated, rec.Code)
		assert.Equal(t, "3\n", rec.Body.String())
	})
}

func TestGroupRoutes(t *testing.T) {
	t.Parallel()

	storage := &fakeStorage{
		groups: []field.FarmFieldGroup{
			{ID: 1, Name: "Hillside", FarmID: 1, Fields: []int32{3, 4}, DrawColor: "#00ff00"},
		},
	}
	router := newHandler(storage).GroupRoutes(passthroughGuard)

	t.Run("listing includes member field ids", func(t *testing.T) {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

		require.Equal(t, http.StatusOK, rec.Code)
		var got []field.FarmFieldGroup
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
		require.Len(t, got, 1)
		assert.Equal(t, []int32{3, 4}, got[0].Fields)
	})

	t.Run("create rejects a missing name", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(
			`{"id":0,"name":"","farm_id":1,"fields":[],"draw_color":"#fff"}`))
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
		assert.Len(t, storage.groups, 1)
	})

	t.Run("create returns the new id", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(
			`{"id":0,"name":"Valley","farm_id":1,"fields":[],"draw_color":"#0000ff"}`))
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		require.Equal(t, http.StatusCreated, rec.Code)
		assert.Len(t, storage.groups, 2)
	})
}

func TestEventRoutes(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 5, 17, 12, 0, 0, 0, time.UTC)
	storage := &fakeStorage{
		events: []field.FieldEvent{
			{ID: 1, Time: now, FieldID: 3, EventName: "sowing", Description: "spring barley"},
			{ID: 2, Time: now, FieldID: 4, EventName: "fertilizing", Description: ""},
		},
	}
	router := newHandler(storage).EventRoutes(passthroughGuard)

	t.Run("listing filters by field_id", func(t *testing.T) {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/?field_id=3", nil))

		require.Equal(t, http.StatusOK, rec.Code)
		var got []field.FieldEvent
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
		require.Len(t, got, 1)
		assert.Equal(t, "sowing", got[0].EventName)
	})

	t.Run("missing field_id is a bad request", func(t *testing.T) {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("create returns the new id", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(
			`{"id":0,"time":"2026-05-18T09:00:00Z","field_id":3,"event_name":"harrowing","description":""}`))
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		require.Equal(t, http.StatusCreated, rec.Code)
		assert.Len(t, storage.events, 3)
	})
}
