package payroll

import (
	"fmt"

	"github.com/shopspring/decimal"
)

type OrdinaryInput struct {
	Employee            Employee
	Period              Period
	Attendance          []AttendanceDay
	Incomes             []ManualIncome
	Overtime            []Overtime
	Discounts           []ManualDiscount
	Advances            []SalaryAdvance
	Dependents          []Dependent
	MinimumWages        []MinimumWage
	FallbackMinimumWage decimal.Decimal
	ContributionRate    decimal.Decimal
}

type OrdinaryResult struct {
	Settlement       Settlement      `json:"settlement"`
	Applied          AppliedRecords  `json:"applied"`
	ActiveDependents int             `json:"activeDependents"`
	MinimumWage      decimal.Decimal `json:"minimumWage"`
}

// ComputeOrdinary produces one employee's monthly settlement. The caller
// checks for an existing settlement first and marks Applied records only
// after persisting the result.
func ComputeOrdinary(in OrdinaryInput) (OrdinaryResult, error) {
	if err := in.Period.Validate(); err != nil {
		return OrdinaryResult{}, err
	}
	salary, err := in.Employee.Salary()
	if err != nil {
		return OrdinaryResult{}, err
	}
	rate := in.ContributionRate
	if rate.IsZero() {
		rate = DefaultContributionRate
	}
	fallbackWage := in.FallbackMinimumWage
	if fallbackWage.IsZero() {
		fallbackWage = DefaultFallbackMinimumWage
	}

	p := in.Period
	empID := in.Employee.ID
	var applied AppliedRecords
	var lines []Line

	attendance := SummarizeAttendance(empID, p, in.Attendance)
	warnings := append([]Warning(nil), attendance.Warnings...)
	basePay := PayForDays(salary, attendance.DaysPresent)
	lines = append(lines, Line{
		Kind:        LineEarning,
		Description: fmt.Sprintf("Base pay (%d days)", attendance.DaysPresent),
		Amount:      basePay,
	})

	extra := decimal.Zero
	for _, inc := range in.Incomes {
		if inc.EmployeeID != empID || !inc.Approved || inc.Applied || inc.Period != p {
			continue
		}
		extra = extra.Add(inc.Amount)
		applied.IncomeIDs = append(applied.IncomeIDs, inc.ID)
		lines = append(lines, Line{Kind: LineEarning, Description: incomeDescription(inc), Amount: inc.Amount})
	}
	for _, ot := range in.Overtime {
		if ot.EmployeeID != empID || !ot.Approved || ot.Applied || !p.Contains(ot.Date) {
			continue
		}
		extra = extra.Add(ot.Amount)
		applied.OvertimeIDs = append(applied.OvertimeIDs, ot.ID)
		lines = append(lines, Line{
			Kind:        LineEarning,
			Description: fmt.Sprintf("Overtime %s (%s h)", ot.Date.Format("2006-01-02"), ot.Hours.String()),
			Amount:      ot.Amount,
		})
	}

	minWage, wageWarnings := SelectMinimumWage(in.MinimumWages, p.Start(), fallbackWage)
	dependents := CountActiveDependents(empID, in.Dependents, p)
	familyBonus := FamilyBonus(minWage, dependents)
	if dependents > 0 {
		warnings = append(warnings, wageWarnings...)
		lines = append(lines, Line{
			Kind:        LineEarning,
			Description: fmt.Sprintf("Family bonus (%d dependents)", dependents),
			Amount:      familyBonus,
			Percentage:  decimal.NewNullDecimal(familyBonusRate.Mul(decimal.NewFromInt(100))),
		})
	}

	var discounts DiscountBreakdown
	for _, d := range in.Discounts {
		if d.EmployeeID != empID || !d.Active || d.Applied || d.Period != p {
			continue
		}
		discounts.add(d.Origin, d.Amount)
		applied.DiscountIDs = append(applied.DiscountIDs, d.ID)
		lines = append(lines, Line{Kind: LineDeduction, Description: discountDescription(d), Amount: d.Amount})
	}
	for _, adv := range in.Advances {
		if adv.EmployeeID != empID || adv.State != StateApproved || adv.Applied || adv.ApprovedAt == nil || !p.Contains(*adv.ApprovedAt) {
			continue
		}
		discounts.add(OriginAdvance, adv.Amount)
		applied.AdvanceIDs = append(applied.AdvanceIDs, adv.ID)
		lines = append(lines, Line{
			Kind:        LineDeduction,
			Description: "Salary advance " + adv.ApprovedAt.Format("2006-01-02"),
			Amount:      adv.Amount,
		})
	}
	discountsTotal := discounts.Total()

	gross := sum(basePay, extra, familyBonus)
	contribution := Round2(gross.Mul(rate))
	net := gross.Sub(discountsTotal).Sub(contribution)
	lines = append(lines, Line{
		Kind:        LineContribution,
		Description: "IPS employee contribution",
		Amount:      contribution,
		Percentage:  decimal.NewNullDecimal(rate.Mul(decimal.NewFromInt(100))),
	})
	if net.IsNegative() {
		warnings = append(warnings, Warning{
			Code:    WarningNegativeNet,
			Message: fmt.Sprintf("net pay for employee %s in %s is %s", empID, p, net.StringFixed(2)),
		})
	}

	return OrdinaryResult{
		Settlement: Settlement{
			EmployeeID:       empID,
			Kind:             KindOrdinary,
			Period:           p,
			DaysWorked:       attendance.DaysPresent,
			BusinessDays:     attendance.BusinessDays,
			BaseSalary:       salary,
			BasePay:          basePay,
			ExtraIncome:      extra,
			FamilyBonus:      familyBonus,
			Discounts:        discounts,
			DiscountsTotal:   discountsTotal,
			ContributionRate: rate,
			Contribution:     contribution,
			Gross:            gross,
			Net:              net,
			Warnings:         warnings,
			Lines:            lines,
		},
		Applied:          applied,
		ActiveDependents: dependents,
		MinimumWage:      minWage,
	}, nil
}

func incomeDescription(inc ManualIncome) string {
	if inc.Description != "" {
		return inc.Description
	}
	return fmt.Sprintf("Extra income (%s)", inc.Kind)
}

func discountDescription(d ManualDiscount) string {
	if d.Description != "" {
		return d.Description
	}
	switch d.Origin {
	case OriginLeave:
		return fmt.Sprintf("Unpaid leave (%d days)", d.Days)
	case OriginSuspension:
		return fmt.Sprintf("Suspension (%d days)", d.Days)
	}
	return "Discount"
}
