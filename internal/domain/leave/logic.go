package leave

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"rrhh/internal/domain/payroll"
)

// PlanLeaveDiscounts turns an unpaid leave into one discount per calendar
// month it touches. Paid leave costs nothing.
func PlanLeaveDiscounts(req payroll.LeaveRequest, salary decimal.Decimal) ([]payroll.ManualDiscount, error) {
	if req.Paid {
		return nil, nil
	}
	segments, err := payroll.SplitByMonth(req.StartDate, req.EndDate, payroll.DailyRate(salary))
	if err != nil {
		return nil, err
	}
	out := make([]payroll.ManualDiscount, 0, len(segments))
	for _, seg := range segments {
		out = append(out, payroll.ManualDiscount{
			EmployeeID:  req.EmployeeID,
			Origin:      payroll.OriginLeave,
			SourceID:    req.ID,
			Description: fmt.Sprintf("Unpaid leave %s to %s", seg.Start.Format(time.DateOnly), seg.End.Format(time.DateOnly)),
			Amount:      seg.Amount,
			Period:      seg.Period,
			Days:        seg.Days,
			Active:      true,
		})
	}
	return out, nil
}

// SuspensionRange is [date, date+duration-1].
func SuspensionRange(date time.Time, durationDays int) (time.Time, time.Time) {
	start := payroll.Date(date)
	return start, start.AddDate(0, 0, durationDays-1)
}

// PlanSuspensionDiscounts discounts the suspended days, split by month. Other
// sanction kinds, and suspensions without a duration, produce none.
func PlanSuspensionDiscounts(s Sanction, salary decimal.Decimal) ([]payroll.ManualDiscount, error) {
	if s.Kind != SanctionSuspension || s.DurationDays <= 0 {
		return nil, nil
	}
	start, end := SuspensionRange(s.Date, s.DurationDays)
	segments, err := payroll.SplitByMonth(start, end, payroll.DailyRate(salary))
	if err != nil {
		return nil, err
	}
	out := make([]payroll.ManualDiscount, 0, len(segments))
	for _, seg := range segments {
		out = append(out, payroll.ManualDiscount{
			EmployeeID:  s.EmployeeID,
			Origin:      payroll.OriginSuspension,
			SourceID:    s.ID,
			Description: fmt.Sprintf("Suspension %s to %s", seg.Start.Format(time.DateOnly), seg.End.Format(time.DateOnly)),
			Amount:      seg.Amount,
			Period:      seg.Period,
			Days:        seg.Days,
			Active:      true,
		})
	}
	return out, nil
}

func validateSanction(s Sanction) error {
	if strings.TrimSpace(s.EmployeeID) == "" {
		return &payroll.ValidationError{Field: "employeeId", Reason: "is required"}
	}
	if !s.Kind.Valid() {
		return &payroll.ValidationError{Field: "kind", Reason: fmt.Sprintf("unknown sanction kind %q", s.Kind)}
	}
	if s.Date.IsZero() {
		return &payroll.ValidationError{Field: "date", Reason: "is required"}
	}
	if s.DurationDays < 0 {
		return &payroll.ValidationError{Field: "durationDays", Reason: "must not be negative"}
	}
	if s.Amount.IsNegative() {
		return &payroll.ValidationError{Field: "amount", Reason: "must not be negative"}
	}
	return nil
}
