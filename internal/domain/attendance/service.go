package attendance

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"rrhh/internal/domain/audit"
	"rrhh/internal/domain/payroll"
)

type Service struct {
	store StoreAPI
	audit payroll.Auditor
	now   func() time.Time
}

func NewService(store StoreAPI, auditor payroll.Auditor) *Service {
	return &Service{store: store, audit: auditor, now: time.Now}
}

// CloseDay fills in the attendance of every active employee that has no
// mark on date. A zero date closes today. Running it twice is harmless.
func (s *Service) CloseDay(ctx context.Context, date time.Time) (CloseDayResult, error) {
	if date.IsZero() {
		date = s.now()
	}
	date = payroll.Date(date)
	if date.Weekday() == time.Sunday {
		return PlanCloseDay(CloseDayInput{Date: date}), nil
	}

	employees, err := s.store.ListActiveEmployees(ctx)
	if err != nil {
		return CloseDayResult{}, fmt.Errorf("list employees: %w", err)
	}
	existing, err := s.store.ListAttendanceBetween(ctx, date, date)
	if err != nil {
		return CloseDayResult{}, fmt.Errorf("load attendance: %w", err)
	}
	vacations, err := s.store.ListGrantedVacationsOn(ctx, date)
	if err != nil {
		return CloseDayResult{}, fmt.Errorf("load vacations: %w", err)
	}
	leaves, err := s.store.ListGrantedLeavesOn(ctx, date)
	if err != nil {
		return CloseDayResult{}, fmt.Errorf("load leaves: %w", err)
	}

	res := PlanCloseDay(CloseDayInput{
		Date:      date,
		Employees: employees,
		Existing:  existing,
		Vacations: vacations,
		Leaves:    leaves,
	})
	if len(res.Rows) == 0 {
		return res, nil
	}

	inserted, err := s.store.InsertAttendance(ctx, res.Rows)
	if err != nil {
		return CloseDayResult{}, fmt.Errorf("insert attendance: %w", err)
	}
	if inserted < res.Processed {
		slog.Warn("attendance rows registered concurrently", "date", date.Format(time.DateOnly), "planned", res.Processed, "inserted", inserted)
		res.AlreadyRegistered += res.Processed - inserted
		res.Processed = inserted
	}

	if s.audit != nil {
		err := s.audit.Record(ctx, audit.Entry{
			Action:     "attendance.day.closed",
			Module:     audit.ModuleAttendance,
			EntityType: "attendance_day",
			EntityID:   date.Format(time.DateOnly),
			Detail: map[string]any{
				"processed":         res.Processed,
				"vacations":         res.Vacations,
				"leaves":            res.Leaves,
				"absences":          res.Absences,
				"alreadyRegistered": res.AlreadyRegistered,
			},
		})
		if err != nil {
			slog.Warn("audit record failed", "action", "attendance.day.closed", "err", err)
		}
	}
	slog.Info("attendance day closed", "date", date.Format(time.DateOnly), "processed", res.Processed, "absences", res.Absences)
	return res, nil
}

func (s *Service) Metrics(ctx context.Context, p payroll.Period) (Report, error) {
	if err := p.Validate(); err != nil {
		return Report{}, err
	}
	employees, err := s.store.ListActiveEmployees(ctx)
	if err != nil {
		return Report{}, fmt.Errorf("list employees: %w", err)
	}
	days, err := s.store.ListAttendanceBetween(ctx, p.Start(), p.End())
	if err != nil {
		return Report{}, fmt.Errorf("load attendance: %w", err)
	}
	return BuildReport(p, employees, days), nil
}
