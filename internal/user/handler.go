package user

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/sorjordet/sorjordet/internal/api"
	"github.com/sorjordet/sorjordet/internal/auth"
	"github.com/sorjordet/sorjordet/pkg/logger"
	"github.com/sorjordet/sorjordet/pkg/validator"
)

// Handler exposes the user admin endpoints. The whole surface is guarded.
type Handler struct {
	storage Storage
	log     *slog.Logger
}

func NewHandler(storage Storage, log *slog.Logger) *Handler {
	return &Handler{storage: storage, log: log}
}

func (h *Handler) Routes(guard func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()
	r.Use(guard)
	r.Get("/", h.list)
	r.Patch("/{userID}", h.update)
	return r
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	users, err := h.storage.List(r.Context())
	if err != nil {
		h.log.Error("failed to list users", logger.Error(err), logger.Component("user"))
		api.Error(w, err)
		return
	}
	api.JSON(w, http.StatusOK, users)
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "userID"), 10, 32)
	if err != nil {
		api.Error(w, api.ErrNotFound)
		return
	}

	var payload User
	if err := api.Decode(r, &payload); err != nil {
		api.BadRequest(w)
		return
	}

	if err := validator.Apply(
		validator.Required("name", payload.Name),
		validator.MaxLen("name", payload.Name, 64),
		validator.ValidEmail("email", payload.Email),
	); err != nil {
		api.Error(w, err)
		return
	}

	if err := h.storage.Update(r.Context(), int32(id), payload.Name, payload.Email); err != nil {
		if errors.Is(err, ErrUserNotFound) {
			api.Error(w, api.ErrNotFound)
			return
		}
		h.log.Error("failed to update user", logger.Error(err), logger.Component("user"))
		api.Error(w, err)
		return
	}

	if principal, ok := auth.PrincipalFromContext(r.Context()); ok {
		h.log.Info("user updated",
			slog.Int64("user_id", id),
			logger.Subject(principal.Subject),
		)
	}

	w.WriteHeader(http.StatusNoContent)
}
