package payroll

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

type AguinaldoInput struct {
	Employee         Employee
	Year             int
	Cutoff           time.Time
	Settlements      []Settlement
	Incomes          []ManualIncome
	ContributionRate decimal.Decimal
}

type AguinaldoResult struct {
	Method           AguinaldoMethod `json:"method"`
	YearIncome       decimal.Decimal `json:"yearIncome"`
	DaysWorked       int             `json:"daysWorked"`
	Gross            decimal.Decimal `json:"gross"`
	ContributionRate decimal.Decimal `json:"contributionRate"`
	Contribution     decimal.Decimal `json:"contribution"`
	Net              decimal.Decimal `json:"net"`
}

// YearIncome is the 13th-month base: ordinary base pay of the year plus
// granted recurring extra income. Bonus and severance settlements are
// excluded.
func YearIncome(employeeID string, year int, settlements []Settlement, incomes []ManualIncome) decimal.Decimal {
	total := decimal.Zero
	for _, s := range settlements {
		if s.EmployeeID == employeeID && s.Kind == KindOrdinary && s.Period.Year == year {
			total = total.Add(s.BasePay)
		}
	}
	for _, inc := range incomes {
		if inc.EmployeeID == employeeID && inc.Approved && inc.Period.Year == year && inc.Kind.CountsForAguinaldo() {
			total = total.Add(inc.Amount)
		}
	}
	return total
}

// DaysWorkedInYear counts from January 1 (or hire) to cutoff (or
// termination), both inclusive. It is zero when the range is empty.
func DaysWorkedInYear(e Employee, year int, cutoff time.Time) int {
	from := yearStart(year)
	if e.HireDate != nil {
		from = maxDate(from, Date(*e.HireDate))
	}
	to := minDate(Date(cutoff), yearEnd(year))
	if e.TerminationDate != nil {
		to = minDate(to, Date(*e.TerminationDate))
	}
	return max(0, DaysInclusive(from, to))
}

// ComputeAguinaldo divides the year's income by twelve. With no income on
// record it prorates the base salary over the days worked instead.
func ComputeAguinaldo(in AguinaldoInput) (AguinaldoResult, error) {
	if in.Year < 1900 {
		return AguinaldoResult{}, &ValidationError{Field: "year", Reason: "out of range"}
	}
	rate := in.ContributionRate
	if rate.IsZero() {
		rate = DefaultBonusContributionRate
	}
	cutoff := in.Cutoff
	if cutoff.IsZero() {
		cutoff = yearEnd(in.Year)
	}

	res := AguinaldoResult{
		ContributionRate: rate,
		YearIncome:       YearIncome(in.Employee.ID, in.Year, in.Settlements, in.Incomes),
		DaysWorked:       DaysWorkedInYear(in.Employee, in.Year, cutoff),
	}

	if res.YearIncome.IsPositive() {
		res.Method = AguinaldoFromIncome
		res.Gross = Round2(res.YearIncome.Div(decimal.NewFromInt(12)))
	} else {
		salary, err := in.Employee.Salary()
		if err != nil {
			return AguinaldoResult{}, err
		}
		res.Method = AguinaldoFromDaysWorked
		months := decimal.NewFromInt(int64(res.DaysWorked)).Div(decimal.NewFromInt(daysPerPayMonth))
		res.Gross = Round2(salary.Mul(months).Div(decimal.NewFromInt(12)))
	}

	res.Contribution = Round2(res.Gross.Mul(rate))
	res.Net = res.Gross.Sub(res.Contribution)
	return res, nil
}

// AguinaldoSettlement renders a bonus result as the December settlement of
// its year.
// AguinaldoPeriod files the bonus under the cutoff month, December when no
// cutoff is given.
func AguinaldoPeriod(year int, cutoff time.Time) Period {
	if cutoff.IsZero() || cutoff.Year() != year {
		return Period{Year: year, Month: time.December}
	}
	return PeriodOf(cutoff)
}

func AguinaldoSettlement(e Employee, period Period, res AguinaldoResult) Settlement {
	year := period.Year
	salary := decimal.Zero
	if e.BaseSalary.Valid {
		salary = e.BaseSalary.Decimal
	}
	description := fmt.Sprintf("Aguinaldo %d (income %s / 12)", year, res.YearIncome.StringFixed(2))
	if res.Method == AguinaldoFromDaysWorked {
		description = fmt.Sprintf("Aguinaldo %d (%d days worked)", year, res.DaysWorked)
	}
	return Settlement{
		EmployeeID:       e.ID,
		Kind:             KindAguinaldo,
		Period:           period,
		DaysWorked:       res.DaysWorked,
		BaseSalary:       salary,
		AguinaldoGross:   res.Gross,
		ContributionRate: res.ContributionRate,
		Contribution:     res.Contribution,
		Gross:            res.Gross,
		Net:              res.Net,
		Lines: []Line{
			{Kind: LineEarning, Description: description, Amount: res.Gross},
			{
				Kind:        LineContribution,
				Description: "IPS employee contribution",
				Amount:      res.Contribution,
				Percentage:  decimal.NewNullDecimal(res.ContributionRate.Mul(decimal.NewFromInt(100))),
			},
		},
	}
}
