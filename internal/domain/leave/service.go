package leave

import (
	"context"
	"log/slog"
	"strings"

	"rrhh/internal/domain/audit"
	"rrhh/internal/domain/payroll"
	"rrhh/internal/requestctx"
)

type Service struct {
	store StoreAPI
	audit payroll.Auditor
}

func NewService(store StoreAPI, auditor payroll.Auditor) *Service {
	return &Service{store: store, audit: auditor}
}

// ApproveLeave approves a pending or already approved request. Unpaid leave
// is discounted month by month, once: approving again reuses the discounts.
func (s *Service) ApproveLeave(ctx context.Context, requestID string) (ApprovalResult, error) {
	req, err := s.store.GetLeaveRequest(ctx, requestID)
	if err != nil {
		return ApprovalResult{}, err
	}
	if req.State == payroll.StateRejected {
		return ApprovalResult{}, ErrInvalidState
	}

	var planned []payroll.ManualDiscount
	if !req.Paid {
		emp, err := s.store.GetEmployee(ctx, req.EmployeeID)
		if err != nil {
			return ApprovalResult{}, err
		}
		salary, err := emp.Salary()
		if err != nil {
			return ApprovalResult{}, err
		}
		if planned, err = PlanLeaveDiscounts(req, salary); err != nil {
			return ApprovalResult{}, err
		}
	}

	discounts, reused, err := s.store.ApproveLeave(ctx, req.ID, requestctx.GetActor(ctx), planned)
	if err != nil {
		return ApprovalResult{}, err
	}
	if req.State != payroll.StateCompleted {
		req.State = payroll.StateApproved
	}
	res := ApprovalResult{Request: req, Discounts: discounts, Reused: reused}
	if res.Discounts == nil {
		res.Discounts = []payroll.ManualDiscount{}
	}

	s.record(ctx, "leave.approved", "leave_request", req.ID, map[string]any{
		"employeeId": req.EmployeeID,
		"paid":       req.Paid,
		"discounts":  len(discounts),
		"reused":     reused,
	})
	slog.Info("leave request approved", "requestId", req.ID, "employeeId", req.EmployeeID, "discounts", len(discounts), "reused", reused)
	return res, nil
}

func (s *Service) RejectLeave(ctx context.Context, requestID string) error {
	if err := s.store.RejectLeave(ctx, requestID, requestctx.GetActor(ctx)); err != nil {
		return err
	}
	s.record(ctx, "leave.rejected", "leave_request", requestID, nil)
	return nil
}

// CreateSanction records a disciplinary sanction. Suspensions with a duration
// generate discounts over the suspended days in the same transaction.
func (s *Service) CreateSanction(ctx context.Context, sanction Sanction) (SanctionResult, error) {
	sanction.Reason = strings.TrimSpace(sanction.Reason)
	sanction.Date = payroll.Date(sanction.Date)
	if err := validateSanction(sanction); err != nil {
		return SanctionResult{}, err
	}
	emp, err := s.store.GetEmployee(ctx, sanction.EmployeeID)
	if err != nil {
		return SanctionResult{}, err
	}
	sanction.EmployeeID = emp.ID
	sanction.CreatedBy = requestctx.GetActor(ctx)

	var planned []payroll.ManualDiscount
	if sanction.Kind == SanctionSuspension && sanction.DurationDays > 0 {
		salary, err := emp.Salary()
		if err != nil {
			return SanctionResult{}, err
		}
		if planned, err = PlanSuspensionDiscounts(sanction, salary); err != nil {
			return SanctionResult{}, err
		}
	}

	res, err := s.store.CreateSanction(ctx, sanction, planned)
	if err != nil {
		return SanctionResult{}, err
	}
	if res.Discounts == nil {
		res.Discounts = []payroll.ManualDiscount{}
	}
	s.record(ctx, "sanction.created", "sanction", res.Sanction.ID, map[string]any{
		"employeeId":   emp.ID,
		"kind":         sanction.Kind,
		"durationDays": sanction.DurationDays,
		"discounts":    len(res.Discounts),
	})
	return res, nil
}

func (s *Service) record(ctx context.Context, action, entityType, entityID string, detail any) {
	if s.audit == nil {
		return
	}
	if err := s.audit.Record(ctx, audit.Entry{
		Action:     action,
		Module:     audit.ModuleLeave,
		EntityType: entityType,
		EntityID:   entityID,
		Detail:     detail,
	}); err != nil {
		slog.Warn("audit record failed", "action", action, "entityId", entityID, "err", err)
	}
}
