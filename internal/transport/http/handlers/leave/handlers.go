package leavehandler

import (
	"context"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"rrhh/internal/domain/leave"
	"rrhh/internal/requestctx"
	"rrhh/internal/transport/http/api"
	"rrhh/internal/transport/http/shared"
)

type Service interface {
	ApproveLeave(ctx context.Context, requestID string) (leave.ApprovalResult, error)
	RejectLeave(ctx context.Context, requestID string) error
	CreateSanction(ctx context.Context, sanction leave.Sanction) (leave.SanctionResult, error)
}

type Handler struct {
	Service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{Service: service}
}

func (h *Handler) RegisterRoutes(writes chi.Router) {
	writes.Post("/leave-requests/{requestID}/approve", h.handleApprove)
	writes.Post("/leave-requests/{requestID}/reject", h.handleReject)
	writes.Post("/sanctions", h.handleCreateSanction)
}

func (h *Handler) handleApprove(w http.ResponseWriter, r *http.Request) {
	res, err := h.Service.ApproveLeave(r.Context(), chi.URLParam(r, "requestID"))
	if err != nil {
		shared.FailError(w, r, err)
		return
	}
	api.Success(w, res, requestctx.GetRequestID(r.Context()))
}

func (h *Handler) handleReject(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "requestID")
	if err := h.Service.RejectLeave(r.Context(), id); err != nil {
		shared.FailError(w, r, err)
		return
	}
	api.Success(w, map[string]string{"id": id, "status": "rejected"}, requestctx.GetRequestID(r.Context()))
}

type sanctionBody struct {
	EmployeeID   string          `json:"employeeId"`
	Kind         string          `json:"kind"`
	Date         string          `json:"date"`
	DurationDays int             `json:"durationDays"`
	Amount       decimal.Decimal `json:"amount"`
	Reason       string          `json:"reason"`
}

func (h *Handler) handleCreateSanction(w http.ResponseWriter, r *http.Request) {
	var body sanctionBody
	if err := shared.DecodeJSON(r, &body); err != nil {
		shared.FailError(w, r, err)
		return
	}
	v := shared.NewValidator()
	v.Required("employeeId", body.EmployeeID, "is required")
	v.Required("kind", body.Kind, "is required")
	v.Enum("kind", body.Kind, []string{string(leave.SanctionWarning), string(leave.SanctionSuspension), string(leave.SanctionFine)}, "must be warning, suspension or fine")
	date, _ := v.Date("date", body.Date)
	if body.DurationDays < 0 {
		v.Add("durationDays", "must not be negative")
	}
	if v.Reject(w, requestctx.GetRequestID(r.Context())) {
		return
	}

	res, err := h.Service.CreateSanction(r.Context(), leave.Sanction{
		EmployeeID:   strings.TrimSpace(body.EmployeeID),
		Kind:         leave.SanctionKind(strings.ToLower(strings.TrimSpace(body.Kind))),
		Date:         date,
		DurationDays: body.DurationDays,
		Amount:       body.Amount,
		Reason:       body.Reason,
	})
	if err != nil {
		shared.FailError(w, r, err)
		return
	}
	api.Created(w, res, requestctx.GetRequestID(r.Context()))
}
