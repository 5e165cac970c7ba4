package vacation

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

// GenerateLedgers writes the year's ledger for one employee, or for every
// active employee when employeeID is empty. Year 0 means the current year.
// A failing employee is reported and the run goes on.
func (s *Service) GenerateLedgers(ctx context.Context, year int, employeeID string) (LedgerReport, error) {
	today := s.now()
	if year == 0 {
		year = today.Year()
	}
	if year < 1900 || year > 9999 {
		return LedgerReport{}, &payroll.ValidationError{Field: "year", Reason: "out of range"}
	}

	var employees []payroll.Employee
	if employeeID != "" {
		emp, err := s.store.GetEmployee(ctx, employeeID)
		if err != nil {
			return LedgerReport{}, err
		}
		employees = []payroll.Employee{emp}
	} else {
		list, err := s.store.ListActiveEmployees(ctx)
		if err != nil {
			return LedgerReport{}, fmt.Errorf("list employees: %w", err)
		}
		employees = list
	}

	report := LedgerReport{Year: year, Errors: []LedgerError{}}
	for _, emp := range employees {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		action, err := s.generateOne(ctx, emp, year, today)
		if err != nil {
			slog.Warn("vacation ledger generation failed", "employeeId", emp.ID, "year", year, "err", err)
			report.Errors = append(report.Errors, LedgerError{EmployeeID: emp.ID, EmployeeCode: emp.Code, Reason: err.Error()})
			continue
		}
		switch action {
		case ActionCreate:
			report.Created++
		case ActionUpdate:
			report.Updated++
		default:
			report.Existing++
		}
	}

	if s.audit != nil {
		if err := s.audit.Record(ctx, audit.Entry{
			Action:     "vacation.ledgers.generated",
			Module:     audit.ModuleVacation,
			EntityType: "vacation_ledger",
			EntityID:   fmt.Sprint(year),
			Detail:     report,
		}); err != nil {
			slog.Warn("audit record failed", "action", "vacation.ledgers.generated", "err", err)
		}
	}
	slog.Info("vacation ledgers generated", "year", year, "created", report.Created, "updated", report.Updated, "existing", report.Existing, "errors", len(report.Errors))
	return report, nil
}

func (s *Service) generateOne(ctx context.Context, emp payroll.Employee, year int, today time.Time) (LedgerAction, error) {
	in := LedgerInput{Employee: emp, Year: year, Today: today}
	existing, found, err := s.store.GetLedger(ctx, emp.ID, year)
	if err != nil {
		return "", err
	}
	if found {
		in.Existing = &existing
	} else {
		previous, found, err := s.store.GetLedger(ctx, emp.ID, year-1)
		if err != nil {
			return "", err
		}
		if found {
			in.Previous = &previous
		}
	}

	plan := PlanLedger(in)
	switch plan.Action {
	case ActionCreate:
		created, err := s.store.CreateLedger(ctx, plan.Ledger)
		if err != nil {
			return "", err
		}
		if !created {
			return ActionKeep, nil
		}
	case ActionUpdate:
		if err := s.store.UpdateLedger(ctx, plan.Ledger); err != nil {
			return "", err
		}
	}
	return plan.Action, nil
}

// Balance is the employee's running balance over the last three years.
func (s *Service) Balance(ctx context.Context, employeeID string, asOf time.Time) (payroll.VacationBalance, error) {
	emp, err := s.store.GetEmployee(ctx, employeeID)
	if err != nil {
		return payroll.VacationBalance{}, err
	}
	if asOf.IsZero() {
		asOf = s.now()
	}
	vacations, err := s.store.ListVacations(ctx, emp.ID)
	if err != nil {
		return payroll.VacationBalance{}, fmt.Errorf("load vacations: %w", err)
	}
	return payroll.VacationRunningBalance(emp.HireDate, vacations, payroll.Date(asOf)), nil
}
