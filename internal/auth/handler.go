package auth

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/sorjordet/sorjordet/internal/api"
	"github.com/sorjordet/sorjordet/pkg/logger"
	"github.com/sorjordet/sorjordet/pkg/validator"
)

// LoginRequest is the login/registration request body.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Email    string `json:"email,omitempty"`
}

// LoginResponse is the login response body. Message and Token are mutually
// exclusive: failures carry the generic message and an empty token.
type LoginResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Token   string `json:"token"`
}

// Handler exposes the login and registration endpoints.
type Handler struct {
	svc *Service
	log *slog.Logger
}

func NewHandler(svc *Service, log *slog.Logger) *Handler {
	return &Handler{svc: svc, log: log}
}

// Routes mounts the auth endpoints. Registration is itself a protected
// operation: only an authenticated principal may create accounts.
func (h *Handler) Routes(guard func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()
	r.Post("/login", h.login)
	r.With(guard).Post("/register", h.register)
	return r
}

func (h *Handler) login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := api.Decode(r, &req); err != nil {
		api.BadRequest(w)
		return
	}

	token, err := h.svc.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		if errors.Is(err, ErrInvalidCredential) {
			api.JSON(w, http.StatusUnauthorized, LoginResponse{
				Success: false,
				Message: LoginFailedMessage,
			})
			return
		}
		h.log.Error("login failed with internal error", logger.Error(err), logger.Component("auth"))
		api.Error(w, err)
		return
	}

	api.JSON(w, http.StatusOK, LoginResponse{Success: true, Token: token})
}

func (h *Handler) register(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := api.Decode(r, &req); err != nil {
		api.BadRequest(w)
		return
	}

	user, err := h.svc.Register(r.Context(), req.Username, req.Password, req.Email)
	if err != nil {
		if errors.Is(err, ErrUsernameTaken) {
			api.Error(w, validator.ValidationErrors{
				{Field: "username", Message: "is already taken"},
			})
			return
		}
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			h.log.Error("registration failed", logger.Error(err), logger.Component("auth"))
		}
		api.Error(w, err)
		return
	}

	if principal, ok := PrincipalFromContext(r.Context()); ok {
		h.log.Info("created new user", slog.String("name", user.Name), logger.Subject(principal.Subject))
	}

	api.JSON(w, http.StatusCreated, user)
}
