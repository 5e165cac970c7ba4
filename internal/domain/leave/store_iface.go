package leave

import (
	"context"

	"rrhh/internal/domain/payroll"
)

type StoreAPI interface {
	GetEmployee(ctx context.Context, employeeID string) (payroll.Employee, error)
	GetLeaveRequest(ctx context.Context, requestID string) (payroll.LeaveRequest, error)
	// ApproveLeave locks the request, marks it approved and inserts discounts
	// unless active ones already exist for it. It returns the discounts on
	// record and whether they pre-existed.
	ApproveLeave(ctx context.Context, requestID, actor string, discounts []payroll.ManualDiscount) ([]payroll.ManualDiscount, bool, error)
	RejectLeave(ctx context.Context, requestID, actor string) error
	CreateSanction(ctx context.Context, sanction Sanction, discounts []payroll.ManualDiscount) (SanctionResult, error)
}
