package payroll

import (
	"fmt"
	"time"
)

type AttendanceSummary struct {
	DaysPresent  int       `json:"daysPresent"`
	BusinessDays int       `json:"businessDays"`
	Warnings     []Warning `json:"warnings,omitempty"`
}

// BusinessDays counts Monday to Friday dates in the period. Holidays are not
// considered.
func BusinessDays(p Period) int {
	count := 0
	for d := p.Start(); !d.After(p.End()); d = d.AddDate(0, 0, 1) {
		if IsBusinessDay(d) {
			count++
		}
	}
	return count
}

func IsBusinessDay(d time.Time) bool {
	wd := d.Weekday()
	return wd != time.Saturday && wd != time.Sunday
}

// SummarizeAttendance counts distinct present dates of the employee in the
// period. A count above the business-day total is reported, not corrected.
func SummarizeAttendance(employeeID string, p Period, days []AttendanceDay) AttendanceSummary {
	seen := make(map[time.Time]struct{}, len(days))
	for _, day := range days {
		if day.EmployeeID != employeeID || !day.Present || !p.Contains(day.Date) {
			continue
		}
		seen[Date(day.Date)] = struct{}{}
	}

	summary := AttendanceSummary{
		DaysPresent:  len(seen),
		BusinessDays: BusinessDays(p),
	}
	if summary.DaysPresent > summary.BusinessDays {
		summary.Warnings = append(summary.Warnings, Warning{
			Code:    WarningAttendanceExceedsBusinessDays,
			Message: fmt.Sprintf("employee %s has %d present days in %s but the month has %d business days", employeeID, summary.DaysPresent, p, summary.BusinessDays),
		})
	}
	return summary
}
