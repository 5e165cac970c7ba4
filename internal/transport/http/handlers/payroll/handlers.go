package payrollhandler

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"rrhh/internal/domain/ips"
	"rrhh/internal/domain/payroll"
	"rrhh/internal/platform/jobs"
	"rrhh/internal/requestctx"
	"rrhh/internal/transport/http/api"
	"rrhh/internal/transport/http/shared"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type PayrollService interface {
	PreviewOrdinary(ctx context.Context, period payroll.Period) (payroll.Preview, error)
	GenerateOrdinary(ctx context.Context, employeeID string, period payroll.Period) (payroll.Settlement, error)
	RunOrdinaryBatch(ctx context.Context, period payroll.Period) (payroll.BatchReport, error)
	RunAguinaldoBatch(ctx context.Context, year int, cutoff time.Time) (payroll.BatchReport, error)
	ListPeriodSettlements(ctx context.Context, period payroll.Period, kind payroll.SettlementKind) ([]payroll.SettlementRow, error)
	Terminate(ctx context.Context, req payroll.TerminateRequest) (payroll.SeveranceResult, error)
}

type Documents interface {
	Receipt(ctx context.Context, settlementID string) ([]byte, error)
	Register(ctx context.Context, period payroll.Period) ([]byte, error)
	Severance(ctx context.Context, employeeID string) ([]byte, error)
}

type Declarations interface {
	Report(ctx context.Context, period payroll.Period) (ips.Report, error)
}

type Handler struct {
	Payroll      PayrollService
	Documents    Documents
	Declarations Declarations
	Jobs         shared.JobRunner
}

func NewHandler(svc PayrollService, documents Documents, declarations Declarations, runner shared.JobRunner) *Handler {
	return &Handler{Payroll: svc, Documents: documents, Declarations: declarations, Jobs: runner}
}

// RegisterRoutes mounts reads on r and settlement writes on writes. The
// router decides which roles may reach writes.
func (h *Handler) RegisterRoutes(r chi.Router, writes chi.Router) {
	r.Get("/payroll/periods/{period}/preview", h.handlePreview)
	r.Get("/payroll/periods/{period}/settlements", h.handleListSettlements)
	r.Get("/payroll/periods/{period}/register.pdf", h.handleRegister)
	r.Get("/payroll/periods/{period}/ips.xlsx", h.handleIPS)
	r.Get("/payroll/settlements/{settlementID}/receipt.pdf", h.handleReceipt)
	r.Get("/employees/{employeeID}/severance.pdf", h.handleSeverancePDF)

	writes.Post("/payroll/periods/{period}/run", h.handleRunOrdinary)
	writes.Post("/payroll/periods/{period}/employees/{employeeID}/run", h.handleGenerateOrdinary)
	writes.Post("/payroll/aguinaldo/{year}/run", h.handleRunAguinaldo)
	writes.Post("/employees/{employeeID}/terminate", h.handleTerminate)
}

func (h *Handler) handlePreview(w http.ResponseWriter, r *http.Request) {
	period, err := shared.PeriodParam(r, "period")
	if err != nil {
		shared.FailError(w, r, err)
		return
	}
	preview, err := h.Payroll.PreviewOrdinary(r.Context(), period)
	if err != nil {
		shared.FailError(w, r, err)
		return
	}
	api.Success(w, preview, requestctx.GetRequestID(r.Context()))
}

func (h *Handler) handleRunOrdinary(w http.ResponseWriter, r *http.Request) {
	period, err := shared.PeriodParam(r, "period")
	if err != nil {
		shared.FailError(w, r, err)
		return
	}
	shared.RunJob(w, r, h.Jobs, jobs.JobOrdinaryPayroll, func(ctx context.Context) (any, error) {
		return h.Payroll.RunOrdinaryBatch(ctx, period)
	})
}

func (h *Handler) handleGenerateOrdinary(w http.ResponseWriter, r *http.Request) {
	period, err := shared.PeriodParam(r, "period")
	if err != nil {
		shared.FailError(w, r, err)
		return
	}
	settlement, err := h.Payroll.GenerateOrdinary(r.Context(), chi.URLParam(r, "employeeID"), period)
	if err != nil {
		shared.FailError(w, r, err)
		return
	}
	api.Created(w, settlement, requestctx.GetRequestID(r.Context()))
}

func (h *Handler) handleRunAguinaldo(w http.ResponseWriter, r *http.Request) {
	year, err := shared.YearParam(r, "year")
	if err != nil {
		shared.FailError(w, r, err)
		return
	}
	var cutoff time.Time
	if raw := strings.TrimSpace(r.URL.Query().Get("cutoff")); raw != "" {
		v := shared.NewValidator()
		cutoff, _ = v.Date("cutoff", raw)
		if v.Reject(w, requestctx.GetRequestID(r.Context())) {
			return
		}
	}
	shared.RunJob(w, r, h.Jobs, jobs.JobAguinaldo, func(ctx context.Context) (any, error) {
		return h.Payroll.RunAguinaldoBatch(ctx, year, cutoff)
	})
}

type settlementPage struct {
	Items  []payroll.SettlementRow `json:"items"`
	Total  int                     `json:"total"`
	Limit  int                     `json:"limit"`
	Offset int                     `json:"offset"`
}

func (h *Handler) handleListSettlements(w http.ResponseWriter, r *http.Request) {
	period, err := shared.PeriodParam(r, "period")
	if err != nil {
		shared.FailError(w, r, err)
		return
	}
	kind := payroll.SettlementKind(strings.ToLower(strings.TrimSpace(r.URL.Query().Get("kind"))))
	rows, err := h.Payroll.ListPeriodSettlements(r.Context(), period, kind)
	if err != nil {
		shared.FailError(w, r, err)
		return
	}

	page := shared.ParsePagination(r, 50, 200)
	start := min(page.Offset, len(rows))
	end := min(start+page.Limit, len(rows))
	items := make([]payroll.SettlementRow, 0, end-start)
	items = append(items, rows[start:end]...)
	api.Success(w, settlementPage{Items: items, Total: len(rows), Limit: page.Limit, Offset: page.Offset}, requestctx.GetRequestID(r.Context()))
}

type terminateBody struct {
	Type  string `json:"type"`
	Cause string `json:"cause"`
	Date  string `json:"date"`
}

func (h *Handler) handleTerminate(w http.ResponseWriter, r *http.Request) {
	var body terminateBody
	if err := shared.DecodeJSON(r, &body); err != nil {
		shared.FailError(w, r, err)
		return
	}
	v := shared.NewValidator()
	v.Required("type", body.Type, "is required")
	v.Enum("type", body.Type, []string{string(payroll.TerminationJustified), string(payroll.TerminationUnjustified)}, "must be justified or unjustified")
	date, _ := v.Date("date", body.Date)
	if v.Reject(w, requestctx.GetRequestID(r.Context())) {
		return
	}

	result, err := h.Payroll.Terminate(r.Context(), payroll.TerminateRequest{
		EmployeeID: chi.URLParam(r, "employeeID"),
		Type:       payroll.TerminationType(strings.ToLower(strings.TrimSpace(body.Type))),
		Cause:      strings.TrimSpace(body.Cause),
		Date:       date,
	})
	if err != nil {
		shared.FailError(w, r, err)
		return
	}
	api.Created(w, result, requestctx.GetRequestID(r.Context()))
}

func (h *Handler) handleRegister(w http.ResponseWriter, r *http.Request) {
	period, err := shared.PeriodParam(r, "period")
	if err != nil {
		shared.FailError(w, r, err)
		return
	}
	data, err := h.Documents.Register(r.Context(), period)
	if err != nil {
		shared.FailError(w, r, err)
		return
	}
	api.Attachment(w, "application/pdf", fmt.Sprintf("register-%s.pdf", period), data)
}

func (h *Handler) handleReceipt(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "settlementID")
	data, err := h.Documents.Receipt(r.Context(), id)
	if err != nil {
		shared.FailError(w, r, err)
		return
	}
	api.Attachment(w, "application/pdf", fmt.Sprintf("receipt-%s.pdf", id), data)
}

func (h *Handler) handleSeverancePDF(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "employeeID")
	data, err := h.Documents.Severance(r.Context(), id)
	if err != nil {
		shared.FailError(w, r, err)
		return
	}
	api.Attachment(w, "application/pdf", fmt.Sprintf("severance-%s.pdf", id), data)
}

func (h *Handler) handleIPS(w http.ResponseWriter, r *http.Request) {
	period, err := shared.PeriodParam(r, "period")
	if err != nil {
		shared.FailError(w, r, err)
		return
	}
	report, err := h.Declarations.Report(r.Context(), period)
	if err != nil {
		shared.FailError(w, r, err)
		return
	}
	var buf bytes.Buffer
	if err := ips.WriteXLSX(&buf, report); err != nil {
		shared.FailError(w, r, fmt.Errorf("render ips declaration: %w", err))
		return
	}
	api.Attachment(w, xlsxContentType, fmt.Sprintf("REI_%s.xlsx", period), buf.Bytes())
}
