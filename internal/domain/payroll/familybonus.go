package payroll

import (
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

// SelectMinimumWage picks the record whose validity window contains date,
// latest start first. Without one it falls back to the latest record, and
// with an empty history to the configured constant. Both fallbacks warn.
func SelectMinimumWage(records []MinimumWage, date time.Time, fallback decimal.Decimal) (decimal.Decimal, []Warning) {
	sorted := make([]MinimumWage, len(records))
	copy(sorted, records)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].ValidFrom.After(sorted[j].ValidFrom)
	})

	d := Date(date)
	for _, r := range sorted {
		if Date(r.ValidFrom).After(d) {
			continue
		}
		if r.ValidTo != nil && Date(*r.ValidTo).Before(d) {
			continue
		}
		return r.Amount, nil
	}

	if len(sorted) > 0 {
		latest := sorted[0]
		return latest.Amount, []Warning{{
			Code:    WarningMinimumWageOutOfRange,
			Message: fmt.Sprintf("no minimum wage valid on %s; using the one from %s", d.Format(time.DateOnly), latest.ValidFrom.Format(time.DateOnly)),
		}}
	}
	return fallback, []Warning{{
		Code:    WarningMinimumWageFallback,
		Message: fmt.Sprintf("minimum wage history is empty; using fallback %s", fallback.StringFixed(0)),
	}}
}

// DependentActiveIn is true for an active dependent whose range overlaps p.
func DependentActiveIn(d Dependent, p Period) bool {
	if !d.Active {
		return false
	}
	if Date(d.StartDate).After(p.End()) {
		return false
	}
	return d.EndDate == nil || !Date(*d.EndDate).Before(p.Start())
}

func CountActiveDependents(employeeID string, dependents []Dependent, p Period) int {
	count := 0
	for _, d := range dependents {
		if d.EmployeeID == employeeID && DependentActiveIn(d, p) {
			count++
		}
	}
	return count
}

func PerDependentBonus(minimumWage decimal.Decimal) decimal.Decimal {
	return Round2(minimumWage.Mul(familyBonusRate))
}

func FamilyBonus(minimumWage decimal.Decimal, activeDependents int) decimal.Decimal {
	if activeDependents <= 0 {
		return decimal.Zero
	}
	return PerDependentBonus(minimumWage).Mul(decimal.NewFromInt(int64(activeDependents)))
}
