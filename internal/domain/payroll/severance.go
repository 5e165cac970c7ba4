package payroll

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

type SeveranceInput struct {
	Employee         Employee
	Type             TerminationType
	Cause            string
	Date             time.Time
	Settlements      []Settlement
	Incomes          []ManualIncome
	PriorLedger      *VacationLedger
	Vacations        []VacationRequest
	ContributionRate decimal.Decimal
}

type SeveranceResult struct {
	TenureYears         int               `json:"tenureYears"`
	Indemnity           decimal.Decimal   `json:"indemnity"`
	Aguinaldo           AguinaldoResult   `json:"aguinaldo"`
	PriorYearUnusedDays int               `json:"priorYearUnusedDays"`
	CurrentYearAccrual  decimal.Decimal   `json:"currentYearAccrual"`
	VacationDays        decimal.Decimal   `json:"vacationDays"`
	VacationPay         decimal.Decimal   `json:"vacationPay"`
	Subtotal            decimal.Decimal   `json:"subtotal"`
	Contribution        decimal.Decimal   `json:"contribution"`
	Net                 decimal.Decimal   `json:"net"`
	Termination         TerminationRecord `json:"termination"`
	Settlement          Settlement        `json:"settlement"`
}

// TenureWholeYears counts complete 365-day years between hire and date.
func TenureWholeYears(hire, date time.Time) int {
	days := int(Date(date).Sub(Date(hire)) / (24 * time.Hour))
	if days < 0 {
		return 0
	}
	return days / 365
}

// Indemnity is one month plus one per year of tenure, capped at twelve
// months, and nothing for a justified dismissal.
func Indemnity(kind TerminationType, tenureYears int, salary decimal.Decimal) decimal.Decimal {
	if kind == TerminationJustified {
		return decimal.Zero
	}
	months := min(1+max(0, tenureYears), maxIndemnityMonths)
	return Round2(salary.Mul(decimal.NewFromInt(int64(months))))
}

// PriorYearUnusedDays is the previous year's pending balance, capped at that
// year's entitlement. Without a ledger it is derived from approved requests,
// and an employee hired during that year only earns the share of the
// entitlement for the days from hire to December 31.
func PriorYearUnusedDays(hire time.Time, date time.Time, ledger *VacationLedger, vacations []VacationRequest) int {
	prior := date.Year() - 1
	if hire.Year() > prior {
		return 0
	}
	entitled := EntitlementForYear(&hire, prior, date)
	if ledger != nil {
		return min(max(0, ledger.Pending), entitled)
	}
	if hire.Year() == prior {
		served := DaysInclusive(hire, yearEnd(prior))
		entitled = entitled * served / DaysInclusive(yearStart(prior), yearEnd(prior))
	}
	return max(0, entitled-TakenInYear(vacations, prior))
}

// CurrentYearVacationAccrual accrues two days per 30 days elapsed in the
// termination year, independent of the tiered entitlement table. The result
// is not rounded.
func CurrentYearVacationAccrual(elapsedDays int) decimal.Decimal {
	return decimal.NewFromInt(int64(elapsedDays * vacationDaysPerMonth)).Div(decimal.NewFromInt(daysPerPayMonth))
}

// VacationPay pays days at the daily rate, rounding once at the end.
func VacationPay(salary, days decimal.Decimal) decimal.Decimal {
	return Round2(salary.Mul(days).Div(decimal.NewFromInt(daysPerPayMonth)))
}

// ComputeSeverance settles a termination: indemnity, proportional
// aguinaldo and unused vacation, less the employee contribution.
func ComputeSeverance(in SeveranceInput) (SeveranceResult, error) {
	emp := in.Employee
	salary, err := emp.Salary()
	if err != nil {
		return SeveranceResult{}, err
	}
	if !in.Type.Valid() {
		return SeveranceResult{}, &ValidationError{Field: "type", Reason: fmt.Sprintf("unknown termination type %q", in.Type)}
	}
	if in.Date.IsZero() {
		return SeveranceResult{}, &ValidationError{Field: "date", Reason: "termination date is required"}
	}
	if emp.HireDate == nil {
		return SeveranceResult{}, &ValidationError{Field: "hireDate", Reason: "missing for employee " + emp.ID}
	}
	hire := Date(*emp.HireDate)
	date := Date(in.Date)
	if date.Before(hire) {
		return SeveranceResult{}, &ValidationError{Field: "date", Reason: "termination date precedes hire date"}
	}
	rate := in.ContributionRate
	if rate.IsZero() {
		rate = DefaultSeveranceContributionRate
	}

	res := SeveranceResult{TenureYears: TenureWholeYears(hire, date)}
	res.Indemnity = Indemnity(in.Type, res.TenureYears, salary)

	leaving := emp
	leaving.TerminationDate = &date
	res.Aguinaldo, err = ComputeAguinaldo(AguinaldoInput{
		Employee:    leaving,
		Year:        date.Year(),
		Cutoff:      date,
		Settlements: in.Settlements,
		Incomes:     in.Incomes,
	})
	if err != nil {
		return SeveranceResult{}, err
	}

	res.PriorYearUnusedDays = PriorYearUnusedDays(hire, date, in.PriorLedger, in.Vacations)
	accrual := CurrentYearVacationAccrual(DaysWorkedInYear(leaving, date.Year(), date))
	vacationDays := decimal.NewFromInt(int64(res.PriorYearUnusedDays)).Add(accrual)
	res.VacationPay = VacationPay(salary, vacationDays)
	res.CurrentYearAccrual = Round2(accrual)
	res.VacationDays = Round2(vacationDays)

	res.Subtotal = sum(res.Indemnity, res.Aguinaldo.Gross, res.VacationPay)
	res.Contribution = Round2(res.Subtotal.Mul(rate))
	res.Net = res.Subtotal.Sub(res.Contribution)

	res.Termination = TerminationRecord{
		EmployeeID: emp.ID,
		Type:       in.Type,
		Cause:      strings.TrimSpace(in.Cause),
		Date:       date,
	}
	res.Settlement = Settlement{
		EmployeeID:       emp.ID,
		Kind:             KindSeverance,
		Period:           PeriodOf(date),
		DaysWorked:       res.Aguinaldo.DaysWorked,
		BaseSalary:       salary,
		AguinaldoGross:   res.Aguinaldo.Gross,
		Indemnity:        res.Indemnity,
		VacationDays:     res.VacationDays,
		VacationPay:      res.VacationPay,
		ContributionRate: rate,
		Contribution:     res.Contribution,
		Gross:            res.Subtotal,
		Net:              res.Net,
		Lines:            severanceLines(in.Type, res, rate),
	}
	return res, nil
}

func severanceLines(kind TerminationType, res SeveranceResult, rate decimal.Decimal) []Line {
	var lines []Line
	if kind == TerminationUnjustified {
		months := min(1+res.TenureYears, maxIndemnityMonths)
		lines = append(lines, Line{
			Kind:        LineEarning,
			Description: fmt.Sprintf("Indemnity (%d months, %d years of service)", months, res.TenureYears),
			Amount:      res.Indemnity,
		})
	}
	lines = append(lines,
		Line{
			Kind:        LineEarning,
			Description: fmt.Sprintf("Proportional aguinaldo (%s)", res.Aguinaldo.Method),
			Amount:      res.Aguinaldo.Gross,
		},
		Line{
			Kind:        LineEarning,
			Description: fmt.Sprintf("Unused vacation (%s days)", res.VacationDays.StringFixed(2)),
			Amount:      res.VacationPay,
		},
		Line{
			Kind:        LineContribution,
			Description: "IPS employee contribution",
			Amount:      res.Contribution,
			Percentage:  decimal.NewNullDecimal(rate.Mul(decimal.NewFromInt(100))),
		},
	)
	return lines
}
