package app

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/closetrack/closetrack/internal/activity"
	"github.com/closetrack/closetrack/internal/auth"
	"github.com/closetrack/closetrack/internal/cycle"
	"github.com/closetrack/closetrack/internal/shared"
	"github.com/closetrack/closetrack/internal/task"
	"github.com/closetrack/closetrack/internal/users"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger          *slog.Logger
	Config          *Config
	SessionManager  *shared.SessionManager
	AuthHandler     *auth.Handler
	UsersHandler    *users.Handler
	CycleHandler    *cycle.Handler
	TaskHandler     *task.Handler
	ActivityHandler *activity.Handler
}

// NewRouter constructs the chi.Router with CloseTrack defaults.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger:         params.Logger,
		Config:         params.Config,
		SessionManager: params.SessionManager,
	}) {
		r.Use(mw)
	}

	r.Use(chimw.Logger)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	r.Route("/auth", params.AuthHandler.MountRoutes)
	if params.UsersHandler != nil {
		r.Route("/users", params.UsersHandler.MountRoutes)
	}
	if params.CycleHandler != nil {
		r.Route("/close-cycles", params.CycleHandler.MountRoutes)
	}
	if params.TaskHandler != nil {
		r.Route("/tasks", params.TaskHandler.MountRoutes)
	}
	if params.ActivityHandler != nil {
		params.ActivityHandler.MountRoutes(r)
	}

	return r
}
