package user_test

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sorjordet/sorjordet/internal/user"
)

type fakeStorage struct {
	users []user.User
}

func (f *fakeStorage) List(_ context.Context) ([]user.User, error) {
	return f.users, nil
}

func (f *fakeStorage) Update(_ context.Context, id int32, name, email string) error {
	for i := range f.users {
		if f.users[i].ID == id {
			f.users[i].Name = name
			f.users[i].Email = email
			return nil
		}
	}
	return user.ErrUserNotFound
}

func passthroughGuard(next http.Handler) http.Handler {
	return next
}

func newRouter(storage user.Storage) http.Handler {
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	return user.NewHandler(storage, log).Routes(passthroughGuard)
}

func TestUserHandler(t *testing.T) {
	t.Parallel()

	t.Run("list never exposes passwords", func(t *testing.T) {
		t.Parallel()
		storage := &fakeStorage{users: []user.User{
			{ID: 1, Name: "alice", Email: "alice@example.com"},
		}}
		rec := httptest.NewRecorder()
		newRouter(storage).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

		require.Equal(t, http.StatusOK, rec.Code)
		var got []map[string]any
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
		require.Len(t, got, 1)
		assert.NotContains(t, got[0], "password")
	})

	t.Run("patch updates name and email", func(t *testing.T) {
		t.Parallel()
		storage := &fakeStorage{users: []user.User{
			{ID: 1, Name: "alice", Email: "alice@example.com"},
		}}
		req := httptest.NewRequest(http.MethodPatch, "/1", strings.NewReader(
			`{"id":1,"name":"alice2","email":"alice2@example.com"}`))
		rec := httptest.NewRecorder()
		newRouter(storage).ServeHTTP(rec, req)

		require.Equal(t, http.StatusNoContent, rec.Code)
		assert.Equal(t, "alice2", storage.users[0].Name)
		assert.Equal(t, "alice2@example.com", storage.users[0].Email)
	})

	t.Run("patch of a missing user is 404", func(t *testing.T) {
		t.Parallel()
		storage := &fakeStorage{}
		req := httptest.NewRequest(http.MethodPatch, "/42", strings.NewReader(
			`{"id":42,"name":"ghost","email":"ghost@example.com"}`))
		rec := httptest.NewRecorder()
		newRouter(storage).ServeHTTP(rec, req)

		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("patch rejects an invalid email", func(t *testing.T) {
		t.Parallel()
		storage := &fakeStorage{users: []user.User{
			{ID: 1, Name: "alice", Email: "alice@example.com"},
		}}
		req := httptest.NewRequest(http.MethodPatch, "/1", strings.NewReader(
			`{"id":1,"name":"alice","email":"not-an-email"}`))
		rec := httptest.NewRecorder()
		newRouter(storage).ServeHTTP(rec, req)

		assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
		assert.Equal(t, "alice@example.com", storage.users[0].Email)
	})
}
