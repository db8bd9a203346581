package harvest

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/sorjordet/sorjordet/internal/api"
	"github.com/sorjordet/sorjordet/internal/auth"
	"github.com/sorjordet/sorjordet/pkg/logger"
	"github.com/sorjordet/sorjordet/pkg/validator"
)

// Handler exposes the harvest type and harvest event endpoints.
type Handler struct {
	storage Storage
	log     *slog.Logger
}

func NewHandler(storage Storage, log *slog.Logger) *Handler {
	return &Handler{storage: storage, log: log}
}

// TypeRoutes serves harvest_type.
func (h *Handler) TypeRoutes(guard func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.listTypes)
	r.With(guard).Post("/", h.createType)
	return r
}

// EventRoutes serves harvest_event.
func (h *Handler) EventRoutes(guard func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.listEvents)
	r.With(guard).Post("/", h.createEvent)
	return r
}

func (h *Handler) listTypes(w http.ResponseWriter, r *http.Request) {
	types, err := h.storage.ListTypes(r.Context())
	if err != nil {
		h.log.Error("failed to list harvest types", logger.Error(err), logger.Component("harvest"))
		api.Error(w, err)
		return
	}
	api.JSON(w, http.StatusOK, types)
}

func (h *Handler) createType(w http.ResponseWriter, r *http.Request) {
	var payload HarvestType
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

	id, err := h.storage.CreateType(r.Context(), payload)
	if err != nil {
		h.log.Error("failed to insert harvest type", logger.Error(err), logger.Component("harvest"))
		api.Error(w, err)
		return
	}

	h.audit(r, "new harvest_type inserted", payload.Name)
	api.JSON(w, http.StatusCreated, id)
}

func (h *Handler) listEvents(w http.ResponseWriter, r *http.Request) {
	fieldID, err := strconv.ParseInt(r.URL.Query().Get("field_id"), 10, 32)
	if err != nil {
		api.BadRequest(w)
		return
	}

	events, err := h.storage.ListEventsByField(r.Context(), int32(fieldID))
	if err != nil {
		h.log.Error("failed to list harvest events", logger.Error(err), logger.Component("harvest"))
		api.Error(w, err)
		return
	}
	api.JSON(w, http.StatusOK, events)
}

func (h *Handler) createEvent(w http.ResponseWriter, r *http.Request) {
	var payload HarvestEvent
	if err := api.Decode(r, &payload); err != nil {
		api.BadRequest(w)
		return
	}

	id, err := h.storage.CreateEvent(r.Context(), payload)
	if err != nil {
		h.log.Error("failed to insert harvest event", logger.Error(err), logger.Component("harvest"))
		api.Error(w, err)
		return
	}

	h.audit(r, "new harvest_event inserted", payload.TypeName)
	api.JSON(w, http.StatusCreated, id)
}

func (h *Handler) audit(r *http.Request, msg, name string) {
	if principal, ok := auth.PrincipalFromContext(r.Context()); ok {
		h.log.Info(msg, slog.String("name", name), logger.Subject(principal.Subject))
	}
}
