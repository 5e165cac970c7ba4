package jobs

import (
	"context"
	"encoding/json"
	"log/slog"

	"rrhh/internal/platform/querier"
)

const (
	JobCloseDay        = "attendance_close_day"
	JobOrdinaryPayroll = "payroll_ordinary_run"
	JobAguinaldo       = "payroll_aguinaldo_run"
	JobVacationLedgers = "vacation_ledger_generation"

	StatusRunning   = "running"
	StatusCompleted = "completed"
	StatusFailed    = "failed"

	defaultQueueCapacity = 32
)

type Func func(context.Context) (any, error)

type Recorder interface {
	JobFinished(job, status string)
}

// Service runs jobs that an external scheduler (cron, CI, an operator)
// triggers, recording every run in job_runs. There is no in-process timer.
type Service struct {
	DB      querier.Querier
	metrics Recorder
	queue   chan job
}

type job struct {
	Type string
	Run  Func
}

func New(db querier.Querier, metrics Recorder) *Service {
	return &Service{
		DB:      db,
		metrics: metrics,
		queue:   make(chan job, defaultQueueCapacity),
	}
}

// Start consumes enqueued jobs until ctx is cancelled.
func (s *Service) Start(ctx context.Context) {
	go s.worker(ctx)
}

func (s *Service) Enqueue(jobType string, run Func) bool {
	select {
	case s.queue <- job{Type: jobType, Run: run}:
		return true
	default:
		slog.Warn("job queue full", "jobType", jobType)
		return false
	}
}

func (s *Service) RunNow(ctx context.Context, jobType string, run Func) (any, error) {
	return s.runJob(ctx, job{Type: jobType, Run: run})
}

func (s *Service) worker(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case j := <-s.queue:
			if _, err := s.runJob(ctx, j); err != nil {
				slog.Warn("job run failed", "jobType", j.Type, "err", err)
			}
		}
	}
}

func (s *Service) runJob(ctx context.Context, j job) (any, error) {
	runID := ""
	if err := s.DB.QueryRow(ctx, `
    INSERT INTO job_runs (job_type, status)
    VALUES ($1,$2)
    RETURNING id
  `, j.Type, StatusRunning).Scan(&runID); err != nil {
		slog.Warn("job run insert failed", "jobType", j.Type, "err", err)
	}

	details, err := j.Run(ctx)
	status := StatusCompleted
	if err != nil {
		status = StatusFailed
		details = map[string]any{"error": err.Error(), "partial": details}
	}
	detailsJSON, marshalErr := json.Marshal(details)
	if marshalErr != nil {
		slog.Warn("job details marshal failed", "err", marshalErr)
		detailsJSON = []byte("{}")
	}
	if runID != "" {
		if _, updErr := s.DB.Exec(ctx, `
      UPDATE job_runs
      SET status = $1, details_json = $2, completed_at = now()
      WHERE id = $3
    `, status, detailsJSON, runID); updErr != nil {
			slog.Warn("job run update failed", "jobType", j.Type, "err", updErr)
		}
	}
	if s.metrics != nil {
		s.metrics.JobFinished(j.Type, status)
	}
	slog.Info("job run finished", "jobType", j.Type, "status", status, "runId", runID)
	return details, err
}
