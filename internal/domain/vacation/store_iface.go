package vacation

import (
	"context"

	"rrhh/internal/domain/payroll"
)

type StoreAPI interface {
	GetEmployee(ctx context.Context, employeeID string) (payroll.Employee, error)
	ListActiveEmployees(ctx context.Context) ([]payroll.Employee, error)
	GetLedger(ctx context.Context, employeeID string, year int) (payroll.VacationLedger, bool, error)
	// CreateLedger returns false when a ledger for the year was written
	// concurrently.
	CreateLedger(ctx context.Context, ledger payroll.VacationLedger) (bool, error)
	UpdateLedger(ctx context.Context, ledger payroll.VacationLedger) error
	ListVacations(ctx context.Context, employeeID string) ([]payroll.VacationRequest, error)
}
