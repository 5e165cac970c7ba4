package payroll

import "github.com/shopspring/decimal"

var (
	DefaultContributionRate          = decimal.RequireFromString("0.09625")
	DefaultBonusContributionRate     = decimal.RequireFromString("0.09")
	DefaultSeveranceContributionRate = decimal.RequireFromString("0.09")
	DefaultFallbackMinimumWage       = decimal.NewFromInt(2798309)

	familyBonusRate = decimal.RequireFromString("0.05")
)

const (
	daysPerPayMonth      = 30
	maxIndemnityMonths   = 12
	vacationDaysPerMonth = 2
	defaultVacationDays  = 12
	vacationWindowYears  = 3
)

type EmployeeStatus string

const (
	EmployeeActive    EmployeeStatus = "active"
	EmployeeInactive  EmployeeStatus = "inactive"
	EmployeeSuspended EmployeeStatus = "suspended"
	EmployeeRetired   EmployeeStatus = "retired"
)

func (s EmployeeStatus) Valid() bool {
	switch s {
	case EmployeeActive, EmployeeInactive, EmployeeSuspended, EmployeeRetired:
		return true
	}
	return false
}

type ApprovalState string

const (
	StatePending   ApprovalState = "pending"
	StateApproved  ApprovalState = "approved"
	StateRejected  ApprovalState = "rejected"
	StateCompleted ApprovalState = "completed"
)

func (s ApprovalState) Valid() bool {
	switch s {
	case StatePending, StateApproved, StateRejected, StateCompleted:
		return true
	}
	return false
}

// Granted is true for requests that have been approved, including those
// already consumed.
func (s ApprovalState) Granted() bool {
	return s == StateApproved || s == StateCompleted
}

type Justification string

const (
	JustificationPending     Justification = "pending"
	JustificationJustified   Justification = "justified"
	JustificationUnjustified Justification = "unjustified"
)

func (j Justification) Valid() bool {
	switch j {
	case JustificationPending, JustificationJustified, JustificationUnjustified:
		return true
	}
	return false
}

type DiscountOrigin string

const (
	OriginManual     DiscountOrigin = "manual"
	OriginLeave      DiscountOrigin = "leave"
	OriginSuspension DiscountOrigin = "suspension"
	OriginAdvance    DiscountOrigin = "advance"
)

func (o DiscountOrigin) Valid() bool {
	switch o {
	case OriginManual, OriginLeave, OriginSuspension, OriginAdvance:
		return true
	}
	return false
}

type IncomeKind string

const (
	IncomeOvertime   IncomeKind = "overtime"
	IncomeCommission IncomeKind = "commission"
	IncomeBonus      IncomeKind = "bonus"
	IncomeAllowance  IncomeKind = "allowance"
	IncomeOther      IncomeKind = "other"
)

func (k IncomeKind) Valid() bool {
	switch k {
	case IncomeOvertime, IncomeCommission, IncomeBonus, IncomeAllowance, IncomeOther:
		return true
	}
	return false
}

// CountsForAguinaldo reports whether income of this kind is recurring
// remuneration that feeds the 13th-month base.
func (k IncomeKind) CountsForAguinaldo() bool {
	switch k {
	case IncomeOvertime, IncomeCommission, IncomeBonus:
		return true
	}
	return false
}

type SettlementKind string

const (
	KindOrdinary  SettlementKind = "ordinary"
	KindAguinaldo SettlementKind = "aguinaldo"
	KindSeverance SettlementKind = "severance"
)

func (k SettlementKind) Valid() bool {
	switch k {
	case KindOrdinary, KindAguinaldo, KindSeverance:
		return true
	}
	return false
}

type TerminationType string

const (
	TerminationJustified   TerminationType = "justified"
	TerminationUnjustified TerminationType = "unjustified"
)

func (t TerminationType) Valid() bool {
	return t == TerminationJustified || t == TerminationUnjustified
}

type LineKind string

const (
	LineEarning      LineKind = "earning"
	LineDeduction    LineKind = "deduction"
	LineContribution LineKind = "contribution"
)

type AguinaldoMethod string

const (
	AguinaldoFromIncome     AguinaldoMethod = "income_history"
	AguinaldoFromDaysWorked AguinaldoMethod = "days_worked"
)

const (
	WarningAttendanceExceedsBusinessDays = "attendance_exceeds_business_days"
	WarningMinimumWageOutOfRange         = "minimum_wage_out_of_range"
	WarningMinimumWageFallback           = "minimum_wage_fallback"
	WarningNegativeNet                   = "negative_net"
)
