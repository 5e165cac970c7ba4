// Command jobs runs one batch job and exits. It is meant for cron or an
// operator; every run is recorded in job_runs like the HTTP-triggered ones.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"rrhh/internal/app/server"
	"rrhh/internal/domain/payroll"
	"rrhh/internal/platform/config"
	"rrhh/internal/platform/jobs"
	"rrhh/internal/transport/http/middleware"
)

func main() {
	job := flag.String("job", "", "close-day | payroll-run | aguinaldo | vacation-ledgers")
	period := flag.String("period", "", "payroll period, YYYY-MM (default: current month)")
	year := flag.Int("year", 0, "year for aguinaldo or vacation ledgers (default: current year)")
	date := flag.String("date", "", "day to close or aguinaldo cutoff, YYYY-MM-DD")
	employee := flag.String("employee", "", "restrict vacation ledgers to one employee")
	flag.Parse()

	cfg := config.Load()
	logger := middleware.NewLogger(os.Stderr, cfg.Environment)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, *job, *period, *year, *date, *employee); err != nil {
		logger.Error("job failed", "job", *job, "err", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg config.Config, job, rawPeriod string, year int, rawDate, employeeID string) error {
	var day time.Time
	if rawDate != "" {
		parsed, err := time.Parse(time.DateOnly, rawDate)
		if err != nil {
			return fmt.Errorf("invalid -date %q: %w", rawDate, err)
		}
		day = parsed
	}

	jobType, fn, err := pick(job, rawPeriod, year, day, employeeID)
	if err != nil {
		return err
	}

	pool, err := server.Open(ctx, cfg)
	if err != nil {
		return err
	}
	defer pool.Close()
	services := server.Wire(pool, cfg)

	result, err := services.Jobs.RunNow(ctx, jobType, func(ctx context.Context) (any, error) {
		return fn(ctx, services)
	})
	if err != nil {
		return err
	}
	out := json.NewEncoder(os.Stdout)
	out.SetIndent("", "  ")
	return out.Encode(result)
}

type jobFunc func(context.Context, server.Services) (any, error)

func pick(job, rawPeriod string, year int, day time.Time, employeeID string) (string, jobFunc, error) {
	switch job {
	case "close-day":
		return jobs.JobCloseDay, func(ctx context.Context, s server.Services) (any, error) {
			return s.Attendance.CloseDay(ctx, day)
		}, nil
	case "payroll-run":
		period := payroll.PeriodOf(time.Now())
		if rawPeriod != "" {
			parsed, err := payroll.ParsePeriod(rawPeriod)
			if err != nil {
				return "", nil, err
			}
			period = parsed
		}
		return jobs.JobOrdinaryPayroll, func(ctx context.Context, s server.Services) (any, error) {
			return s.Payroll.RunOrdinaryBatch(ctx, period)
		}, nil
	case "aguinaldo":
		if year == 0 {
			year = time.Now().Year()
		}
		return jobs.JobAguinaldo, func(ctx context.Context, s server.Services) (any, error) {
			return s.Payroll.RunAguinaldoBatch(ctx, year, day)
		}, nil
	case "vacation-ledgers":
		return jobs.JobVacationLedgers, func(ctx context.Context, s server.Services) (any, error) {
			return s.Vacation.GenerateLedgers(ctx, year, employeeID)
		}, nil
	}
	return "", nil, fmt.Errorf("unknown -job %q", job)
}
