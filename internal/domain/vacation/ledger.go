package vacation

import (
	"time"

	"rrhh/internal/domain/payroll"
)

type LedgerAction string

const (
	ActionCreate LedgerAction = "create"
	ActionUpdate LedgerAction = "update"
	ActionKeep   LedgerAction = "keep"
)

// maxCarryYears bounds the unused days brought forward, in years of
// entitlement.
const maxCarryYears = 2

type LedgerInput struct {
	Employee payroll.Employee
	Year     int
	Today    time.Time
	Existing *payroll.VacationLedger
	Previous *payroll.VacationLedger
}

type LedgerPlan struct {
	Action LedgerAction           `json:"action"`
	Ledger payroll.VacationLedger `json:"ledger"`
}

// PlanLedger decides what to write for one employee and year. An existing
// ledger is only touched when the tenure-based entitlement changed; the
// carried days it was created with are preserved.
func PlanLedger(in LedgerInput) LedgerPlan {
	entitlement := payroll.EntitlementForYear(in.Employee.HireDate, in.Year, in.Today)

	if in.Existing != nil {
		ledger := *in.Existing
		if ledger.Entitled-ledger.Carried == entitlement {
			return LedgerPlan{Action: ActionKeep, Ledger: ledger}
		}
		ledger.Entitled = entitlement + ledger.Carried
		ledger.Pending = max(0, ledger.Entitled-ledger.Taken)
		return LedgerPlan{Action: ActionUpdate, Ledger: ledger}
	}

	carry := 0
	if in.Previous != nil && in.Previous.Pending > 0 {
		carry = min(in.Previous.Pending, maxCarryYears*entitlement)
	}
	return LedgerPlan{
		Action: ActionCreate,
		Ledger: payroll.VacationLedger{
			EmployeeID: in.Employee.ID,
			Year:       in.Year,
			Entitled:   entitlement + carry,
			Carried:    carry,
			Pending:    entitlement + carry,
			State:      payroll.StatePending,
		},
	}
}
