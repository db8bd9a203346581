package field

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

// Handler exposes the field, group, and field-event endpoints as separate
// routers so they can mount under their own path prefixes.
type Handler struct {
	storage Storage
	log     *slog.Logger
}

func NewHandler(storage Storage, log *slog.Logger) *Handler {
	return &Handler{storage: storage, log: log}
}

// FieldRoutes serves farm_field: meta listing, single-field lookup, fields by
// group, and guarded creation.
func (h *Handler) FieldRoutes(guard func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.listFieldMeta)
	r.Get("/{fieldID}", h.getField)
	r.Get("/group/{groupID}", h.listFieldsByGroup)
	r.With(guard).Post("/", h.createField)
	return r
}

// GroupRoutes serves farm_field_group.
func (h *Handler) GroupRoutes(guard func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.listGroups)
	r.With(guard).Post("/", h.createGroup)
	return r
}

// EventRoutes serves field_event.
func (h *Handler) EventRoutes(guard func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.listEvents)
	r.With(guard).Post("/", h.createEvent)
	return r
}

func (h *Handler) listFieldMeta(w http.ResponseWriter, r *http.Request) {
	fields, err := h.storage.ListFieldMeta(r.Context())
	if err != nil {
		h.log.Error("failed to list fields", logger.Error(err), logger.Component("field"))
		api.Error(w, err)
		return
	}
	api.JSON(w, http.StatusOK, fields)
}

func (h *Handler) getField(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "fieldID")
	if !ok {
		api.Error(w, api.ErrNotFound)
		return
	}

	field, err := h.storage.FindFieldByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, ErrFieldNotFound) {
			api.Error(w, api.ErrNotFound)
			return
		}
		h.log.Error("failed to look up field", logger.Error(err), logger.Component("field"))
		api.Error(w, err)
		return
	}
	api.JSON(w, http.StatusOK, field)
}

func (h *Handler) listFieldsByGroup(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "groupID")
	if !ok {
		api.Error(w, api.ErrNotFound)
		return
	}

	fields, err := h.storage.ListFieldsByGroup(r.Context(), id)
	if err != nil {
		h.log.Error("failed to list fields by group", logger.Error(err), logger.Component("field"))
		api.Error(w, err)
		return
	}
	api.JSON(w, http.StatusOK, fields)
}

func (h *Handler) createField(w http.ResponseWriter, r *http.Request) {
	var payload FarmField
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

	id, err := h.storage.CreateField(r.Context(), payload)
	if err != nil {
		h.log.Error("failed to insert field", logger.Error(err), logger.Component("field"))
		api.Error(w, err)
		return
	}

	h.audit(r, "new field inserted", payload.Name)
	api.JSON(w, http.StatusCreated, id)
}

func (h *Handler) listGroups(w http.ResponseWriter, r *http.Request) {
	groups, err := h.storage.ListGroups(r.Context())
	if err != nil {
		h.log.Error("failed to list groups", logger.Error(err), logger.Component("field"))
		api.Error(w, err)
		return
	}
	api.JSON(w, http.StatusOK, groups)
}

func (h *Handler) createGroup(w http.ResponseWriter, r *http.Request) {
	var payload FarmFieldGroup
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

	id, err := h.storage.CreateGroup(r.Context(), payload)
	if err != nil {
		h.log.Error("failed to insert group", logger.Error(err), logger.Component("field"))
		api.Error(w, err)
		return
	}

	h.audit(r, "new field_group inserted", payload.Name)
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
		h.log.Error("failed to list field events", logger.Error(err), logger.Component("field"))
		api.Error(w, err)
		return
	}
	api.JSON(w, http.StatusOK, events)
}

func (h *Handler) createEvent(w http.ResponseWriter, r *http.Request) {
	var payload FieldEvent
	if err := api.Decode(r, &payload); err != nil {
		api.BadRequest(w)
		return
	}

	if err := validator.Apply(
		validator.Required("event_name", payload.EventName),
		validator.MaxLen("event_name", payload.EventName, 128),
	); err != nil {
		api.Error(w, err)
		return
	}

	id, err := h.storage.CreateEvent(r.Context(), payload)
	if err != nil {
		h.log.Error("failed to insert field event", logger.Error(err), logger.Component("field"))
		api.Error(w, err)
		return
	}

	h.audit(r, "new field_event inserted", payload.EventName)
	api.JSON(w, http.StatusCreated, id)
}

func (h *Handler) audit(r *http.Request, msg, name string) {
	if principal, ok := auth.PrincipalFromContext(r.Context()); ok {
		h.log.Info(msg, slog.String("name", name), logger.Subject(principal.Subject))
	}
}

func pathID(r *http.Request, param string) (int32, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, param), 10, 32)
	if err != nil {
		return 0, false
	}
	return int32(id), true
}
