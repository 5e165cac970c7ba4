package payroll

import "time"

// VacationEntitlement maps tenure in years to annual vacation days.
func VacationEntitlement(tenureYears float64) int {
	switch {
	case tenureYears < 5:
		return 12
	case tenureYears < 10:
		return 18
	default:
		return 30
	}
}

// TenureYears measures from hire to at in years of 365.25 days.
func TenureYears(hire, at time.Time) float64 {
	days := Date(at).Sub(Date(hire)).Hours() / 24
	return days / 365.25
}

// EntitlementForYear evaluates tenure at December 31 of year, or today when
// that is earlier. Unknown hire dates get the minimum entitlement.
func EntitlementForYear(hire *time.Time, year int, today time.Time) int {
	if hire == nil {
		return defaultVacationDays
	}
	ref := minDate(yearEnd(year), Date(today))
	return VacationEntitlement(TenureYears(*hire, ref))
}

type VacationYear struct {
	Year     int `json:"year"`
	Entitled int `json:"entitled"`
	Taken    int `json:"taken"`
	Pending  int `json:"pending"`
}

type VacationBalance struct {
	TotalEntitled int            `json:"totalEntitled"`
	TotalTaken    int            `json:"totalTaken"`
	Pending       int            `json:"pending"`
	ExpiringSoon  int            `json:"expiringSoon"`
	ExpiryDate    *time.Time     `json:"expiryDate,omitempty"`
	Years         []VacationYear `json:"years"`
}

// TakenInYear sums the inclusive spans of granted vacations starting in year.
func TakenInYear(vacations []VacationRequest, year int) int {
	taken := 0
	for _, v := range vacations {
		if !v.State.Granted() || v.StartDate.Year() != year {
			continue
		}
		if days := v.Days(); days > 0 {
			taken += days
		}
	}
	return taken
}

// VacationRunningBalance covers the current year and the two before it,
// skipping years before the hire year. Unused days of the oldest year expire
// on December 31 of the current year.
func VacationRunningBalance(hire *time.Time, vacations []VacationRequest, asOf time.Time) VacationBalance {
	balance := VacationBalance{Years: []VacationYear{}}
	if hire == nil {
		return balance
	}

	current := asOf.Year()
	oldest := current - (vacationWindowYears - 1)
	for year := oldest; year <= current; year++ {
		if year < hire.Year() {
			continue
		}
		entitled := EntitlementForYear(hire, year, asOf)
		taken := TakenInYear(vacations, year)
		pending := max(0, entitled-taken)

		balance.Years = append(balance.Years, VacationYear{Year: year, Entitled: entitled, Taken: taken, Pending: pending})
		balance.TotalEntitled += entitled
		balance.TotalTaken += taken

		if year == oldest && pending > 0 {
			expiry := yearEnd(current)
			balance.ExpiringSoon = pending
			balance.ExpiryDate = &expiry
		}
	}
	balance.Pending = max(0, balance.TotalEntitled-balance.TotalTaken)
	return balance
}
