package shared

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"rrhh/internal/domain/ips"
	"rrhh/internal/domain/leave"
	"rrhh/internal/domain/payroll"
	"rrhh/internal/domain/reports"
	"rrhh/internal/requestctx"
	"rrhh/internal/transport/http/api"
)

// FailError maps a domain error onto the response envelope. Unknown errors
// are logged and answered with a generic 500.
func FailError(w http.ResponseWriter, r *http.Request, err error) {
	requestID := requestctx.GetRequestID(r.Context())

	var validation *payroll.ValidationError
	var duplicate *payroll.DuplicateSettlementError
	switch {
	case errors.As(err, &validation):
		FailValidation(w, requestID, []ValidationIssue{{Field: validation.Field, Reason: validation.Reason}})
	case errors.As(err, &duplicate):
		api.FailWithDetails(w, http.StatusConflict, "duplicate_settlement", err.Error(), map[string]string{"existingId": duplicate.ExistingID}, requestID)
	case errors.Is(err, payroll.ErrValidation):
		api.Fail(w, http.StatusBadRequest, "validation_error", err.Error(), requestID)
	case errors.Is(err, payroll.ErrEmployeeNotFound),
		errors.Is(err, payroll.ErrSettlementNotFound),
		errors.Is(err, leave.ErrLeaveNotFound):
		api.Fail(w, http.StatusNotFound, "not_found", err.Error(), requestID)
	case errors.Is(err, ips.ErrNothingToDeclare), errors.Is(err, reports.ErrEmptyRegister):
		api.Fail(w, http.StatusNotFound, "no_settlements", err.Error(), requestID)
	case errors.Is(err, leave.ErrInvalidState):
		api.Fail(w, http.StatusConflict, "invalid_state", err.Error(), requestID)
	case errors.Is(err, payroll.ErrNoDaysWorked):
		api.Fail(w, http.StatusUnprocessableEntity, "no_days_worked", err.Error(), requestID)
	case errors.Is(err, context.DeadlineExceeded):
		api.Fail(w, http.StatusGatewayTimeout, "timeout", "request timed out", requestID)
	default:
		slog.Error("request failed", "method", r.Method, "path", r.URL.Path, "requestId", requestID, "err", err)
		api.Fail(w, http.StatusInternalServerError, "internal_error", "internal server error", requestID)
	}
}
