package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"rrhh/internal/domain/attendance"
	"rrhh/internal/domain/audit"
	"rrhh/internal/domain/ips"
	"rrhh/internal/domain/leave"
	"rrhh/internal/domain/payroll"
	"rrhh/internal/domain/reports"
	"rrhh/internal/domain/vacation"
	"rrhh/internal/platform/config"
	"rrhh/internal/platform/db"
	"rrhh/internal/platform/jobs"
	"rrhh/internal/platform/metrics"
	"rrhh/internal/transport/http/middleware"
)

type App struct {
	Config   config.Config
	DB       *pgxpool.Pool
	Router   http.Handler
	Services Services
	Logger   *slog.Logger
}

// Services are the domain services over one pool. The HTTP server and the
// job command share them.
type Services struct {
	Payroll      *payroll.Service
	Documents    *reports.Service
	Declarations *ips.Service
	Attendance   *attendance.Service
	Leave        *leave.Service
	Vacation     *vacation.Service
	Jobs         *jobs.Service
	Idempotency  *middleware.PgIdempotencyStore
	Metrics      *metrics.Collector
}

// Open connects to the database and applies migrations and reference data
// when configured.
func Open(ctx context.Context, cfg config.Config) (*pgxpool.Pool, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	pool, err := db.Connect(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("db connect: %w", err)
	}
	if cfg.RunMigrations {
		if err := db.Migrate(ctx, pool, cfg.MigrationsDir); err != nil {
			pool.Close()
			return nil, fmt.Errorf("migrations: %w", err)
		}
		if err := db.Seed(ctx, pool); err != nil {
			pool.Close()
			return nil, fmt.Errorf("seed: %w", err)
		}
	}
	return pool, nil
}

func New(ctx context.Context, cfg config.Config, logger *slog.Logger) (*App, error) {
	pool, err := Open(ctx, cfg)
	if err != nil {
		return nil, err
	}
	services := Wire(pool, cfg)
	return &App{
		Config:   cfg,
		DB:       pool,
		Router:   NewRouter(cfg, logger, services.Dependencies(pool.Ping)),
		Services: services,
		Logger:   logger,
	}, nil
}

func Wire(pool *pgxpool.Pool, cfg config.Config) Services {
	collector := metrics.New()
	auditor := audit.New(pool)

	payrollSvc := payroll.NewService(payroll.NewStore(pool), payroll.Config{
		ContributionRate:          cfg.ContributionRate,
		BonusContributionRate:     cfg.BonusContributionRate,
		SeveranceContributionRate: cfg.SeveranceContributionRate,
		FallbackMinimumWage:       cfg.FallbackMinimumWage,
		Workers:                   cfg.PayrollWorkers,
	}, collector, auditor)

	return Services{
		Payroll:   payrollSvc,
		Documents: reports.NewService(payrollSvc, reports.Company{Name: cfg.CompanyName, RUC: cfg.CompanyRUC}, auditor),
		Declarations: ips.NewService(payrollSvc, ips.Company{
			EmployerNumber: cfg.CompanyEmployerNumber,
			RUC:            cfg.CompanyRUC,
			Name:           cfg.CompanyName,
		}, ips.Rates{Employee: cfg.IPSEmployeeRate, Employer: cfg.EmployerContributionRate}, auditor),
		Attendance:  attendance.NewService(attendance.NewStore(pool), auditor),
		Leave:       leave.NewService(leave.NewStore(pool), auditor),
		Vacation:    vacation.NewService(vacation.NewStore(pool), auditor),
		Jobs:        jobs.New(pool, collector),
		Idempotency: middleware.NewIdempotencyStore(pool),
		Metrics:     collector,
	}
}

func (s Services) Dependencies(ready func(context.Context) error) Dependencies {
	return Dependencies{
		Payroll:        s.Payroll,
		Documents:      s.Documents,
		Declarations:   s.Declarations,
		Attendance:     s.Attendance,
		Leave:          s.Leave,
		Vacation:       s.Vacation,
		Jobs:           s.Jobs,
		Idempotency:    s.Idempotency,
		Metrics:        s.Metrics,
		MetricsHandler: s.Metrics.Handler(),
		Ready:          ready,
	}
}

// Run serves HTTP until ctx is cancelled, then drains in-flight requests
// for at most ShutdownTimeout.
func (a *App) Run(ctx context.Context) error {
	defer a.DB.Close()
	a.Services.Jobs.Start(ctx)

	srv := &http.Server{
		Addr:              a.Config.Addr,
		Handler:           a.Router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      5 * time.Minute,
		IdleTimeout:       2 * time.Minute,
	}

	errCh := make(chan error, 1)
	go func() {
		a.Logger.Info("rrhh server listening", "addr", srv.Addr, "env", a.Config.Environment)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), a.Config.ShutdownTimeout)
		defer cancel()
		a.Logger.Info("rrhh server shutting down")
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		return err
	}
}
