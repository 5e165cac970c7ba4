package payroll

import (
	"time"

	"github.com/shopspring/decimal"
)

type Employee struct {
	ID              string              `json:"id"`
	Code            string              `json:"code"`
	FirstName       string              `json:"firstName"`
	LastName        string              `json:"lastName"`
	NationalID      string              `json:"nationalId"`
	IPSNumber       string              `json:"ipsNumber"`
	BaseSalary      decimal.NullDecimal `json:"baseSalary"`
	HireDate        *time.Time          `json:"hireDate,omitempty"`
	TerminationDate *time.Time          `json:"terminationDate,omitempty"`
	Status          EmployeeStatus      `json:"status"`
	PositionName    string              `json:"positionName,omitempty"`
	IPSCategory     string              `json:"ipsCategory,omitempty"`
}

func (e Employee) FullName() string {
	switch {
	case e.FirstName == "":
		return e.LastName
	case e.LastName == "":
		return e.FirstName
	}
	return e.FirstName + " " + e.LastName
}

// Salary returns the base salary or a ValidationError when it is missing or
// negative.
func (e Employee) Salary() (decimal.Decimal, error) {
	if !e.BaseSalary.Valid {
		return decimal.Zero, &ValidationError{Field: "baseSalary", Reason: "missing for employee " + e.ID}
	}
	if e.BaseSalary.Decimal.IsNegative() {
		return decimal.Zero, &ValidationError{Field: "baseSalary", Reason: "negative for employee " + e.ID}
	}
	return e.BaseSalary.Decimal, nil
}

// EmployedOn reports whether date falls between hire and termination.
func (e Employee) EmployedOn(date time.Time) bool {
	d := Date(date)
	if e.HireDate != nil && Date(*e.HireDate).After(d) {
		return false
	}
	if e.TerminationDate != nil && Date(*e.TerminationDate).Before(d) {
		return false
	}
	return true
}

type AttendanceDay struct {
	ID            string        `json:"id,omitempty"`
	EmployeeID    string        `json:"employeeId"`
	Date          time.Time     `json:"date"`
	Present       bool          `json:"present"`
	Note          string        `json:"note,omitempty"`
	Justification Justification `json:"justification,omitempty"`
}

type ManualIncome struct {
	ID          string          `json:"id"`
	EmployeeID  string          `json:"employeeId"`
	Kind        IncomeKind      `json:"kind"`
	Description string          `json:"description"`
	Amount      decimal.Decimal `json:"amount"`
	Period      Period          `json:"period"`
	Approved    bool            `json:"approved"`
	Applied     bool            `json:"applied"`
}

type Overtime struct {
	ID         string          `json:"id"`
	EmployeeID string          `json:"employeeId"`
	Date       time.Time       `json:"date"`
	Hours      decimal.Decimal `json:"hours"`
	Amount     decimal.Decimal `json:"amount"`
	Approved   bool            `json:"approved"`
	Applied    bool            `json:"applied"`
}

type ManualDiscount struct {
	ID          string          `json:"id"`
	EmployeeID  string          `json:"employeeId"`
	Origin      DiscountOrigin  `json:"origin"`
	SourceID    string          `json:"sourceId,omitempty"`
	Description string          `json:"description"`
	Amount      decimal.Decimal `json:"amount"`
	Period      Period          `json:"period"`
	Days        int             `json:"days,omitempty"`
	Active      bool            `json:"active"`
	Applied     bool            `json:"applied"`
}

type SalaryAdvance struct {
	ID         string          `json:"id"`
	EmployeeID string          `json:"employeeId"`
	Amount     decimal.Decimal `json:"amount"`
	State      ApprovalState   `json:"state"`
	ApprovedAt *time.Time      `json:"approvedAt,omitempty"`
	Applied    bool            `json:"applied"`
}

type Dependent struct {
	ID         string     `json:"id"`
	EmployeeID string     `json:"employeeId"`
	Name       string     `json:"name"`
	Active     bool       `json:"active"`
	StartDate  time.Time  `json:"startDate"`
	EndDate    *time.Time `json:"endDate,omitempty"`
}

type MinimumWage struct {
	ID        string          `json:"id"`
	Amount    decimal.Decimal `json:"amount"`
	ValidFrom time.Time       `json:"validFrom"`
	ValidTo   *time.Time      `json:"validTo,omitempty"`
}

type VacationRequest struct {
	ID         string        `json:"id"`
	EmployeeID string        `json:"employeeId"`
	StartDate  time.Time     `json:"startDate"`
	EndDate    time.Time     `json:"endDate"`
	State      ApprovalState `json:"state"`
}

func (v VacationRequest) Days() int {
	return DaysInclusive(v.StartDate, v.EndDate)
}

type VacationLedger struct {
	ID         string        `json:"id,omitempty"`
	EmployeeID string        `json:"employeeId"`
	Year       int           `json:"year"`
	Entitled   int           `json:"entitled"`
	Carried    int           `json:"carried"`
	Taken      int           `json:"taken"`
	Pending    int           `json:"pending"`
	State      ApprovalState `json:"state"`
}

type LeaveRequest struct {
	ID         string        `json:"id"`
	EmployeeID string        `json:"employeeId"`
	Kind       string        `json:"kind"`
	Reason     string        `json:"reason"`
	StartDate  time.Time     `json:"startDate"`
	EndDate    time.Time     `json:"endDate"`
	Paid       bool          `json:"paid"`
	State      ApprovalState `json:"state"`
}

type TerminationRecord struct {
	ID           string          `json:"id,omitempty"`
	EmployeeID   string          `json:"employeeId"`
	Type         TerminationType `json:"type"`
	Cause        string          `json:"cause,omitempty"`
	Date         time.Time       `json:"date"`
	SettlementID string          `json:"settlementId,omitempty"`
}

type DiscountBreakdown struct {
	Manual     decimal.Decimal `json:"manual"`
	Leave      decimal.Decimal `json:"leave"`
	Suspension decimal.Decimal `json:"suspension"`
	Advance    decimal.Decimal `json:"advance"`
}

func (b DiscountBreakdown) Total() decimal.Decimal {
	return sum(b.Manual, b.Leave, b.Suspension, b.Advance)
}

func (b *DiscountBreakdown) add(origin DiscountOrigin, amount decimal.Decimal) {
	switch origin {
	case OriginLeave:
		b.Leave = b.Leave.Add(amount)
	case OriginSuspension:
		b.Suspension = b.Suspension.Add(amount)
	case OriginAdvance:
		b.Advance = b.Advance.Add(amount)
	default:
		b.Manual = b.Manual.Add(amount)
	}
}

// Line is one printable row of a settlement.
type Line struct {
	Kind        LineKind            `json:"kind"`
	Description string              `json:"description"`
	Amount      decimal.Decimal     `json:"amount"`
	Percentage  decimal.NullDecimal `json:"percentage"`
}

type Settlement struct {
	ID               string            `json:"id,omitempty"`
	EmployeeID       string            `json:"employeeId"`
	Kind             SettlementKind    `json:"kind"`
	Period           Period            `json:"period"`
	TerminationID    string            `json:"terminationId,omitempty"`
	DaysWorked       int               `json:"daysWorked"`
	BusinessDays     int               `json:"businessDays"`
	BaseSalary       decimal.Decimal   `json:"baseSalary"`
	BasePay          decimal.Decimal   `json:"basePay"`
	ExtraIncome      decimal.Decimal   `json:"extraIncome"`
	FamilyBonus      decimal.Decimal   `json:"familyBonus"`
	AguinaldoGross   decimal.Decimal   `json:"aguinaldoGross"`
	Indemnity        decimal.Decimal   `json:"indemnity"`
	VacationDays     decimal.Decimal   `json:"vacationDays"`
	VacationPay      decimal.Decimal   `json:"vacationPay"`
	Discounts        DiscountBreakdown `json:"discounts"`
	DiscountsTotal   decimal.Decimal   `json:"discountsTotal"`
	ContributionRate decimal.Decimal   `json:"contributionRate"`
	Contribution     decimal.Decimal   `json:"contribution"`
	Gross            decimal.Decimal   `json:"gross"`
	Net              decimal.Decimal   `json:"net"`
	Warnings         []Warning         `json:"warnings,omitempty"`
	Lines            []Line            `json:"lines,omitempty"`
	CreatedAt        time.Time         `json:"createdAt,omitzero"`
}

// SettlementRow joins a settlement with the employee snapshot used to print it.
type SettlementRow struct {
	Settlement Settlement `json:"settlement"`
	Employee   Employee   `json:"employee"`
}

// AppliedRecords lists the inputs a settlement consumed. They are marked
// applied in the same transaction that persists the settlement.
type AppliedRecords struct {
	IncomeIDs   []string `json:"incomeIds,omitempty"`
	OvertimeIDs []string `json:"overtimeIds,omitempty"`
	DiscountIDs []string `json:"discountIds,omitempty"`
	AdvanceIDs  []string `json:"advanceIds,omitempty"`
}

func (a AppliedRecords) Empty() bool {
	return len(a.IncomeIDs) == 0 && len(a.OvertimeIDs) == 0 && len(a.DiscountIDs) == 0 && len(a.AdvanceIDs) == 0
}
