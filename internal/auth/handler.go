package auth

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/closetrack/closetrack/internal/platform/httpx"
	"github.com/closetrack/closetrack/internal/shared"
)

// Handler wires HTTP endpoints for login and logout.
type Handler struct {
	logger   *slog.Logger
	service  *Service
	sessions *shared.SessionManager
	validate *validator.Validate
}

// NewHandler constructs an auth HTTP handler.
func NewHandler(logger *slog.Logger, service *Service, sessions *shared.SessionManager) *Handler {
	return &Handler{
		logger:   logger,
		service:  service,
		sessions: sessions,
		validate: validator.New(),
	}
}

// MountRoutes registers HTTP routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Post("/login", h.login)
	r.Post("/logout", h.logout)
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type loginResponse struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Role string `json:"role"`
}

func (h *Handler) login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, httpx.ErrValidation)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.RespondError(w, httpx.ErrValidation)
		return
	}

	user, err := h.service.Authenticate(r.Context(), req.Email, req.Password)
	if err != nil {
		httpx.Problem(w, http.StatusUnauthorized, "Unauthorized", "invalid credentials")
		return
	}

	sess := shared.SessionFromContext(r.Context())
	if sess == nil {
		h.logger.Error("session missing during login")
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
		return
	}
	// The session middleware persists the dirty session when the response is
	// first written.
	sess.SetUser(user.ID, user.Name, user.Role)

	httpx.JSON(w, http.StatusOK, loginResponse{ID: user.ID, Name: user.Name, Role: user.Role})
}

func (h *Handler) logout(w http.ResponseWriter, r *http.Request) {
	sess := shared.SessionFromContext(r.Context())
	if sess != nil {
		h.sessions.Destroy(sess)
	}
	w.WriteHeader(http.StatusNoContent)
}
