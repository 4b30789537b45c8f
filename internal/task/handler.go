package task

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/closetrack/closetrack/internal/platform/httpx"
	"github.com/closetrack/closetrack/internal/shared"
)

type taskService interface {
	Get(ctx context.Context, id string) (*Task, error)
	Update(ctx context.Context, taskID string, in UpdateInput, actor *shared.Actor) (*Task, error)
}

// Handler wires HTTP endpoints for task updates.
type Handler struct {
	logger   *slog.Logger
	service  taskService
	validate *validator.Validate
}

// NewHandler constructs a task HTTP handler.
func NewHandler(logger *slog.Logger, service taskService) *Handler {
	return &Handler{
		logger:   logger,
		service:  service,
		validate: validator.New(),
	}
}

// MountRoutes registers HTTP routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/{id}", h.get)
	r.Patch("/{id}", h.update)
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	if shared.ActorFromContext(r.Context()) == nil {
		httpx.RespondError(w, httpx.ErrUnauthorized)
		return
	}
	t, err := h.service.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.respondErr(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, NewTaskResponse(t))
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	actor := shared.ActorFromContext(r.Context())
	if actor == nil {
		httpx.RespondError(w, httpx.ErrUnauthorized)
		return
	}

	var req UpdateTaskRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "malformed request body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid status value")
		return
	}

	in := UpdateInput{
		Comment:        req.Comment,
		IsStatusChange: req.IsStatusChange,
	}
	if req.Status != nil {
		status := Status(*req.Status)
		in.Status = &status
	}

	t, err := h.service.Update(r.Context(), chi.URLParam(r, "id"), in, actor)
	if err != nil {
		h.respondErr(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, NewTaskResponse(t))
}

func (h *Handler) respondErr(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		httpx.Problem(w, http.StatusNotFound, "Not Found", "task not found")
	case errors.Is(err, ErrUnauthorized):
		httpx.RespondError(w, httpx.ErrUnauthorized)
	case errors.Is(err, ErrEmptyUpdate), errors.Is(err, ErrInvalidStatus), errors.Is(err, ErrStatusRequired):
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
	default:
		h.logger.Error("task update", slog.String("path", r.URL.Path), slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
	}
}
