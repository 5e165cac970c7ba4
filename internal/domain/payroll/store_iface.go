package payroll

import (
	"context"
)

type StoreAPI interface {
	GetEmployee(ctx context.Context, employeeID string) (Employee, error)
	ListActiveEmployees(ctx context.Context) ([]Employee, error)
	FindSettlement(ctx context.Context, employeeID string, period Period, kind SettlementKind) (Settlement, bool, error)
	HasAguinaldo(ctx context.Context, employeeID string, year int) (bool, error)
	ListAttendance(ctx context.Context, employeeID string, period Period) ([]AttendanceDay, error)
	ListIncomes(ctx context.Context, employeeID string, year int) ([]ManualIncome, error)
	ListOvertime(ctx context.Context, employeeID string, period Period) ([]Overtime, error)
	ListDiscounts(ctx context.Context, employeeID string, period Period) ([]ManualDiscount, error)
	ListAdvances(ctx context.Context, employeeID string, period Period) ([]SalaryAdvance, error)
	ListDependents(ctx context.Context, employeeID string) ([]Dependent, error)
	ListMinimumWages(ctx context.Context) ([]MinimumWage, error)
	ListSettlementsForYear(ctx context.Context, employeeID string, year int) ([]Settlement, error)
	GetVacationLedger(ctx context.Context, employeeID string, year int) (VacationLedger, bool, error)
	ListVacations(ctx context.Context, employeeID string) ([]VacationRequest, error)
	FindTermination(ctx context.Context, employeeID string) (TerminationRecord, bool, error)
	SaveOrdinary(ctx context.Context, settlement Settlement, applied AppliedRecords) (string, error)
	SaveSettlement(ctx context.Context, settlement Settlement) (string, error)
	SaveSeverance(ctx context.Context, termination TerminationRecord, settlement Settlement) (TerminationRecord, Settlement, error)
	ListPeriodSettlements(ctx context.Context, period Period, kind SettlementKind) ([]SettlementRow, error)
	GetSettlement(ctx context.Context, settlementID string) (SettlementRow, error)
}
