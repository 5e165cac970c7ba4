package payroll

import "github.com/shopspring/decimal"

// DailyRate uses the flat 30-day month, never the calendar length.
func DailyRate(baseSalary decimal.Decimal) decimal.Decimal {
	return baseSalary.Div(decimal.NewFromInt(daysPerPayMonth))
}

func PayForDays(baseSalary decimal.Decimal, days int) decimal.Decimal {
	return Round2(DailyRate(baseSalary).Mul(decimal.NewFromInt(int64(days))))
}
