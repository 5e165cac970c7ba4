package vacationhandler

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"rrhh/internal/domain/payroll"
	"rrhh/internal/domain/vacation"
	"rrhh/internal/platform/jobs"
	"rrhh/internal/requestctx"
	"rrhh/internal/transport/http/api"
	"rrhh/internal/transport/http/shared"
)

type Service interface {
	GenerateLedgers(ctx context.Context, year int, employeeID string) (vacation.LedgerReport, error)
	Balance(ctx context.Context, employeeID string, asOf time.Time) (payroll.VacationBalance, error)
}

type Handler struct {
	Service Service
	Jobs    shared.JobRunner
}

func NewHandler(service Service, runner shared.JobRunner) *Handler {
	return &Handler{Service: service, Jobs: runner}
}

func (h *Handler) RegisterRoutes(r chi.Router, writes chi.Router) {
	r.Get("/employees/{employeeID}/vacation-balance", h.handleBalance)
	writes.Post("/vacations/ledgers/{year}/generate", h.handleGenerate)
}

func (h *Handler) handleBalance(w http.ResponseWriter, r *http.Request) {
	var asOf time.Time
	if raw := strings.TrimSpace(r.URL.Query().Get("asOf")); raw != "" {
		v := shared.NewValidator()
		asOf, _ = v.Date("asOf", raw)
		if v.Reject(w, requestctx.GetRequestID(r.Context())) {
			return
		}
	}
	balance, err := h.Service.Balance(r.Context(), chi.URLParam(r, "employeeID"), asOf)
	if err != nil {
		shared.FailError(w, r, err)
		return
	}
	api.Success(w, balance, requestctx.GetRequestID(r.Context()))
}

// handleGenerate writes the year's ledgers for every active employee, or
// for ?employeeId= alone.
func (h *Handler) handleGenerate(w http.ResponseWriter, r *http.Request) {
	year, err := shared.YearParam(r, "year")
	if err != nil {
		shared.FailError(w, r, err)
		return
	}
	employeeID := strings.TrimSpace(r.URL.Query().Get("employeeId"))
	shared.RunJob(w, r, h.Jobs, jobs.JobVacationLedgers, func(ctx context.Context) (any, error) {
		return h.Service.GenerateLedgers(ctx, year, employeeID)
	})
}
