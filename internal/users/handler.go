package users

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/closetrack/closetrack/internal/platform/httpx"
	"github.com/closetrack/closetrack/internal/shared"
)

// Handler exposes read-only user listing for assignment pick lists.
type Handler struct {
	logger  *slog.Logger
	service *Service
}

// NewHandler constructs a users HTTP handler.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service}
}

// MountRoutes registers HTTP routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.list)
	r.Get("/{id}", h.get)
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	if shared.ActorFromContext(r.Context()) == nil {
		httpx.RespondError(w, httpx.ErrUnauthorized)
		return
	}
	list, err := h.service.ListUsers(r.Context())
	if err != nil {
		h.logger.Error("list users", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	payload := make([]Summary, 0, len(list))
	for _, u := range list {
		payload = append(payload, u.Summary())
	}
	httpx.JSON(w, http.StatusOK, payload)
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	if shared.ActorFromContext(r.Context()) == nil {
		httpx.RespondError(w, httpx.ErrUnauthorized)
		return
	}
	u, err := h.service.GetUser(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			httpx.Problem(w, http.StatusNotFound, "Not Found", "user not found")
			return
		}
		h.logger.Error("get user", slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
		return
	}
	httpx.JSON(w, http.StatusOK, u.Summary())
}
