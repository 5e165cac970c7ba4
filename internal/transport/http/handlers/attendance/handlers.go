package attendancehandler

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"rrhh/internal/domain/attendance"
	"rrhh/internal/domain/payroll"
	"rrhh/internal/platform/jobs"
	"rrhh/internal/requestctx"
	"rrhh/internal/transport/http/api"
	"rrhh/internal/transport/http/shared"
)

type Service interface {
	CloseDay(ctx context.Context, date time.Time) (attendance.CloseDayResult, error)
	Metrics(ctx context.Context, p payroll.Period) (attendance.Report, error)
}

type Handler struct {
	Service Service
	Jobs    shared.JobRunner
}

func NewHandler(service Service, runner shared.JobRunner) *Handler {
	return &Handler{Service: service, Jobs: runner}
}

func (h *Handler) RegisterRoutes(r chi.Router, writes chi.Router) {
	r.Get("/attendance/metrics", h.handleMetrics)
	writes.Post("/attendance/close", h.handleCloseDay)
}

type closeDayBody struct {
	Date string `json:"date"`
}

// handleCloseDay closes the given date, or today when the body is empty.
func (h *Handler) handleCloseDay(w http.ResponseWriter, r *http.Request) {
	var body closeDayBody
	if err := shared.DecodeJSON(r, &body); err != nil {
		shared.FailError(w, r, err)
		return
	}
	var date time.Time
	if strings.TrimSpace(body.Date) != "" {
		v := shared.NewValidator()
		date, _ = v.Date("date", body.Date)
		if v.Reject(w, requestctx.GetRequestID(r.Context())) {
			return
		}
	}
	shared.RunJob(w, r, h.Jobs, jobs.JobCloseDay, func(ctx context.Context) (any, error) {
		return h.Service.CloseDay(ctx, date)
	})
}

func (h *Handler) handleMetrics(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	year, yearErr := strconv.Atoi(strings.TrimSpace(query.Get("year")))
	month, monthErr := strconv.Atoi(strings.TrimSpace(query.Get("month")))
	v := shared.NewValidator()
	if yearErr != nil {
		v.Add("year", "must be a number")
	}
	if monthErr != nil {
		v.Add("month", "must be a number")
	}
	if v.Reject(w, requestctx.GetRequestID(r.Context())) {
		return
	}
	period, err := payroll.NewPeriod(year, time.Month(month))
	if err != nil {
		shared.FailError(w, r, err)
		return
	}
	report, err := h.Service.Metrics(r.Context(), period)
	if err != nil {
		shared.FailError(w, r, err)
		return
	}
	api.Success(w, report, requestctx.GetRequestID(r.Context()))
}
