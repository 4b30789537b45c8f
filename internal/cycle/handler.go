package cycle

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

type cycleService interface {
	List(ctx context.Context) ([]CloseCycle, error)
	Get(ctx context.Context, id string) (*CloseCycle, error)
	Create(ctx context.Context, in CreateInput, actor *shared.Actor) (*CloseCycle, error)
	UpdateStatus(ctx context.Context, cycleID string, status Status, actor *shared.Actor) (*CloseCycle, error)
}

// Handler wires HTTP endpoints for close cycle management.
type Handler struct {
	logger   *slog.Logger
	service  cycleService
	validate *validator.Validate
}

// NewHandler constructs a cycle HTTP handler.
func NewHandler(logger *slog.Logger, service cycleService) *Handler {
	return &Handler{
		logger:   logger,
		service:  service,
		validate: validator.New(),
	}
}

// MountRoutes registers HTTP routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.list)
	r.Post("/", h.create)
	r.Get("/{id}", h.get)
	r.Patch("/{id}", h.updateStatus)
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	if shared.ActorFromContext(r.Context()) == nil {
		httpx.RespondError(w, httpx.ErrUnauthorized)
		return
	}
	cycles, err := h.service.List(r.Context())
	if err != nil {
		h.respondErr(w, r, err)
		return
	}
	payload := make([]CloseCycleResponse, 0, len(cycles))
	for i := range cycles {
		payload = append(payload, NewCloseCycleResponse(&cycles[i]))
	}
	httpx.JSON(w, http.StatusOK, payload)
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	if shared.ActorFromContext(r.Context()) == nil {
		httpx.RespondError(w, httpx.ErrUnauthorized)
		return
	}
	c, err := h.service.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.respondErr(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, NewCloseCycleResponse(c))
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	actor := shared.ActorFromContext(r.Context())
	if actor == nil {
		httpx.RespondError(w, httpx.ErrUnauthorized)
		return
	}

	var req CreateCloseCycleRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "malformed request body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "missing required fields")
		return
	}
	in, err := req.ToInput()
	if err != nil {
		h.respondErr(w, r, err)
		return
	}

	c, err := h.service.Create(r.Context(), in, actor)
	if err != nil {
		h.respondErr(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, NewCloseCycleResponse(c))
}

func (h *Handler) updateStatus(w http.ResponseWriter, r *http.Request) {
	actor := shared.ActorFromContext(r.Context())
	if actor == nil {
		httpx.RespondError(w, httpx.ErrUnauthorized)
		return
	}

	var req UpdateStatusRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "malformed request body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid status")
		return
	}

	c, err := h.service.UpdateStatus(r.Context(), chi.URLParam(r, "id"), Status(req.Status), actor)
	if err != nil {
		h.respondErr(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, NewCloseCycleResponse(c))
}

func (h *Handler) respondErr(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		httpx.Problem(w, http.StatusNotFound, "Not Found", "close cycle not found")
	case errors.Is(err, ErrUnauthorized):
		httpx.RespondError(w, httpx.ErrUnauthorized)
	case errors.Is(err, ErrInvalid), errors.Is(err, ErrInvalidStatus), errors.Is(err, ErrUnknownCatalogTitle):
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
	default:
		h.logger.Error("close cycle request", slog.String("path", r.URL.Path), slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
	}
}
