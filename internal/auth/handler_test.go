package auth_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sorjordet/sorjordet/internal/auth"
)

// newAuthRouter wires the full login stack (store, hasher, issuer, guard,
// service, handler) against an in-memory store, mirroring the production
// assembly in cmd/server.
func newAuthRouter(t *testing.T, cfg auth.Config) (chi.Router, *fakeStore, *auth.TokenIssuer) {
	t.Helper()

	secrets, err := auth.NewSecrets(cfg)
	require.NoError(t, err)
	issuer, err := auth.NewTokenIssuer(secrets, cfg)
	require.NoError(t, err)
	guard, err := auth.NewGuard(secrets, discardLogger())
	require.NoError(t, err)

	store := newFakeStore()
	svc := auth.NewService(store, auth.NewHasher(secrets, cfg), issuer, cfg, discardLogger())
	handler := auth.NewHandler(svc, discardLogger())

	r := chi.NewRouter()
	r.Mount("/api/auth", handler.Routes(guard.Middleware))
	return r, store, issuer
}

func doJSON(t *testing.T, router http.Handler, method, path, body, token string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestAuthEndpoints(t *testing.T) {
	t.Parallel()

	router, store, issuer := newAuthRouter(t, testConfig())

	adminToken, err := issuer.Issue("admin")
	require.NoError(t, err)

	t.Run("register requires authentication", func(t *testing.T) {
		rec := doJSON(t, router, http.MethodPost, "/api/auth/register",
			`{"username":"alice","password":"S3cure!Pass1","email":"alice@example.com"}`, "")
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.JSONEq(t, `{"error":"not authorized"}`, rec.Body.String())
		assert.Equal(t, 0, store.count())
	})

	t.Run("register creates a user and never echoes the password", func(t *testing.T) {
		rec := doJSON(t, router, http.MethodPost, "/api/auth/register",
			`{"username":"alice","password":"S3cure!Pass1","email":"alice@example.com"}`, adminToken)
		require.Equal(t, http.StatusCreated, rec.Code)

		var body map[string]any
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.Equal(t, "alice", body["name"])
		assert.Equal(t, "alice@example.com", body["email"])
		assert.NotContains(t, body, "password")
		assert.NotContains(t, rec.Body.String(), "S3cure!Pass1")
	})

	t.Run("register rejects weak passwords", func(t *testing.T) {
		rec := doJSON(t, router, http.MethodPost, "/api/auth/register",
			`{"username":"bob","password":"123","email":"bob@example.com"}`, adminToken)
		assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	})

	t.Run("register rejects duplicate usernames", func(t *testing.T) {
		rec := doJSON(t, router, http.MethodPost, "/api/auth/register",
			`{"username":"alice","password":"An0ther!Pass2","email":"alice2@example.com"}`, adminToken)
		assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
		assert.Contains(t, rec.Body.String(), "already taken")
	})

	t.Run("login succeeds with the registered credentials", func(t *testing.T) {
		rec := doJSON(t, router, http.MethodPost, "/api/auth/login",
			`{"username":"alice","password":"S3cure!Pass1"}`, "")
		require.Equal(t, http.StatusOK, rec.Code)

		var resp auth.LoginResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.True(t, resp.Success)
		assert.NotEmpty(t, resp.Token)

		// The freshly minted token must open guarded routes.
		rec = doJSON(t, router, http.MethodPost, "/api/auth/register",
			`{"username":"carol","password":"C4rol!Pass9","email":"carol@example.com"}`, resp.Token)
		assert.Equal(t, http.StatusCreated, rec.Code)
	})

	t.Run("login failure is uniform for bad password and unknown user", func(t *testing.T) {
		for _, body := range []string{
			`{"username":"alice","password":"wrong-password"}`,
			`{"username":"nobody","password":"whatever"}`,
		} {
			rec := doJSON(t, router, http.MethodPost, "/api/auth/login", body, "")
			require.Equal(t, http.StatusUnauthorized, rec.Code, "body=%s", body)

			var resp auth.LoginResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
			assert.False(t, resp.Success)
			assert.Equal(t, auth.LoginFailedMessage, resp.Message)
			assert.Empty(t, resp.Token)
		}
	})

	t.Run("malformed body", func(t *testing.T) {
		rec := doJSON(t, router, http.MethodPost, "/api/auth/login", `{"username":`, "")
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}
