package activity

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/closetrack/closetrack/internal/platform/httpx"
	"github.com/closetrack/closetrack/internal/shared"
)

type feedService interface {
	Feed(ctx context.Context, cycleID string) ([]Event, error)
}

// Handler serves the cycle activity timeline.
type Handler struct {
	logger  *slog.Logger
	service feedService
}

// NewHandler constructs an activity HTTP handler.
func NewHandler(logger *slog.Logger, service feedService) *Handler {
	return &Handler{logger: logger, service: service}
}

// MountRoutes registers HTTP routes under the close-cycles resource.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/close-cycles/{id}/activity", h.feed)
}

func (h *Handler) feed(w http.ResponseWriter, r *http.Request) {
	if shared.ActorFromContext(r.Context()) == nil {
		httpx.RespondError(w, httpx.ErrUnauthorized)
		return
	}

	events, err := h.service.Feed(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		if errors.Is(err, ErrCycleNotFound) {
			httpx.Problem(w, http.StatusNotFound, "Not Found", "close cycle not found")
			return
		}
		h.logger.Error("build activity feed", slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
		return
	}
	httpx.JSON(w, http.StatusOK, events)
}
