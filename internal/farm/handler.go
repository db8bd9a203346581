package farm

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/sorjordet/sorjordet/internal/api"
	"github.com/sorjordet/sorjordet/internal/auth"
	"github.com/sorjordet/sorjordet/pkg/logger"
	"github.com/sorjordet/sorjordet/pkg/validator"
)

// Handler exposes the farm endpoints. Reads are public, writes are guarded.
type Handler struct {
	storage Storage
	log     *slog.Logger
}

func NewHandler(storage Storage, log *slog.Logger) *Handler {
	return &Handler{storage: storage, log: log}
}

func (h *Handler) Routes(guard func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.list)
	r.With(guard).Post("/", h.create)
	return r
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	farms, err := h.storage.List(r.Context())
	if err != nil {
		h.log.Error("failed to list farms", logger.Error(err), logger.Component("farm"))
		api.Error(w, err)
		return
	}
	api.JSON(w, http.StatusOK, farms)
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var payload Farm
	if err := api.Decode(r, &payload); err != nil {
		api.BadRequest(w)
		return
	}

	if err := validator.Apply(
		validator.Required("name", payload.Name),
		validator.MaxLen("name", payload.Name, 128),
	); err != nil {
		api.Error(w, err)
		return
	}

	id, err := h.storage.Create(r.Context(), payload)
	if err != nil {
		h.log.Error("failed to insert farm", logger.Error(err), logger.Component("farm"))
		api.Error(w, err)
		return
	}

	if principal, ok := auth.PrincipalFromContext(r.Context()); ok {
		h.log.Info("new farm inserted", slog.String("name", payload.Name), logger.Subject(principal.Subject))
	}

	api.JSON(w, http.StatusCreated, id)
}
