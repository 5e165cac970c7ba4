package server

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"

	"rrhh/internal/auth"
	"rrhh/internal/platform/config"
	"rrhh/internal/transport/http/api"
	attendancehandler "rrhh/internal/transport/http/handlers/attendance"
	leavehandler "rrhh/internal/transport/http/handlers/leave"
	payrollhandler "rrhh/internal/transport/http/handlers/payroll"
	vacationhandler "rrhh/internal/transport/http/handlers/vacation"
	"rrhh/internal/transport/http/middleware"
	"rrhh/internal/transport/http/shared"
)

// Dependencies is everything the router serves. Tests substitute fakes.
type Dependencies struct {
	Payroll        payrollhandler.PayrollService
	Documents      payrollhandler.Documents
	Declarations   payrollhandler.Declarations
	Attendance     attendancehandler.Service
	Leave          leavehandler.Service
	Vacation       vacationhandler.Service
	Jobs           shared.JobRunner
	Idempotency    middleware.IdempotencyStore
	Metrics        middleware.RouteRecorder
	MetricsHandler http.Handler
	Ready          func(context.Context) error
}

func NewRouter(cfg config.Config, logger *slog.Logger, deps Dependencies) http.Handler {
	isProd := cfg.Environment == "production"

	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.RequestLogger(logger))
	router.Use(middleware.SecureHeaders(isProd))
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORSOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID", middleware.IdempotencyHeader},
		ExposedHeaders:   []string{"X-Request-ID", "Content-Disposition", "Idempotent-Replayed"},
		AllowCredentials: true,
		MaxAge:           300,
	}))
	router.Use(middleware.BodyLimit(cfg.MaxBodyBytes))
	if deps.Metrics != nil {
		router.Use(middleware.Metrics(deps.Metrics))
	}

	router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	router.Get("/readyz", func(w http.ResponseWriter, r *http.Request) {
		if deps.Ready != nil {
			ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
			defer cancel()
			if err := deps.Ready(ctx); err != nil {
				http.Error(w, "db not ready", http.StatusServiceUnavailable)
				return
			}
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ready"))
	})
	if cfg.MetricsEnabled && deps.MetricsHandler != nil {
		router.Method(http.MethodGet, "/metrics", deps.MetricsHandler)
	}

	router.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Actor(cfg.JWTSecret, isProd))
		r.Use(middleware.RateLimit(cfg.RateLimitPerMinute, time.Minute))

		var guards []func(http.Handler) http.Handler
		if isProd {
			guards = append(guards, middleware.RequireRole(auth.RoleAdmin, auth.RoleHR))
		}
		guards = append(guards, middleware.Idempotency(deps.Idempotency))
		writes := r.With(guards...)

		payrollhandler.NewHandler(deps.Payroll, deps.Documents, deps.Declarations, deps.Jobs).RegisterRoutes(r, writes)
		attendancehandler.NewHandler(deps.Attendance, deps.Jobs).RegisterRoutes(r, writes)
		vacationhandler.NewHandler(deps.Vacation, deps.Jobs).RegisterRoutes(r, writes)
		leavehandler.NewHandler(deps.Leave).RegisterRoutes(writes)
	})

	router.NotFound(func(w http.ResponseWriter, r *http.Request) {
		api.Fail(w, http.StatusNotFound, "not_found", "route not found", middleware.GetRequestID(r.Context()))
	})
	router.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		api.Fail(w, http.StatusMethodNotAllowed, "method_not_allowed", "method not allowed", middleware.GetRequestID(r.Context()))
	})
	return router
}
