package attendance

import (
	"sort"

	"github.com/shopspring/decimal"

	"rrhh/internal/domain/payroll"
)

type EmployeeMetrics struct {
	EmployeeID  string          `json:"employeeId"`
	Code        string          `json:"code"`
	Name        string          `json:"name"`
	Present     int             `json:"present"`
	Absences    int             `json:"absences"`
	Justified   int             `json:"justified"`
	Unjustified int             `json:"unjustified"`
	Rate        decimal.Decimal `json:"rate"`
}

type Summary struct {
	Employees   int             `json:"employees"`
	Present     int             `json:"present"`
	Absences    int             `json:"absences"`
	Justified   int             `json:"justified"`
	Unjustified int             `json:"unjustified"`
	Rate        decimal.Decimal `json:"rate"`
}

type Report struct {
	Period       payroll.Period    `json:"period"`
	BusinessDays int               `json:"businessDays"`
	Employees    []EmployeeMetrics `json:"employees"`
	Summary      Summary           `json:"summary"`
}

// BuildReport computes per-employee attendance figures for the period,
// worst unjustified absence count first.
func BuildReport(p payroll.Period, employees []payroll.Employee, days []payroll.AttendanceDay) Report {
	business := payroll.BusinessDays(p)
	byEmployee := make(map[string]*EmployeeMetrics, len(employees))
	report := Report{Period: p, BusinessDays: business, Employees: make([]EmployeeMetrics, 0, len(employees))}
	for _, e := range employees {
		report.Employees = append(report.Employees, EmployeeMetrics{EmployeeID: e.ID, Code: e.Code, Name: e.FullName()})
	}
	for i := range report.Employees {
		byEmployee[report.Employees[i].EmployeeID] = &report.Employees[i]
	}

	for _, d := range days {
		m, ok := byEmployee[d.EmployeeID]
		if !ok || !p.Contains(d.Date) {
			continue
		}
		if d.Present {
			m.Present++
			continue
		}
		m.Absences++
		switch d.Justification {
		case payroll.JustificationJustified:
			m.Justified++
		case payroll.JustificationUnjustified:
			m.Unjustified++
		}
	}

	for i := range report.Employees {
		m := &report.Employees[i]
		m.Rate = rate(m.Present, business)
		report.Summary.Present += m.Present
		report.Summary.Absences += m.Absences
		report.Summary.Justified += m.Justified
		report.Summary.Unjustified += m.Unjustified
	}
	report.Summary.Employees = len(report.Employees)
	report.Summary.Rate = rate(report.Summary.Present, business*len(report.Employees))

	sort.SliceStable(report.Employees, func(i, j int) bool {
		a, b := report.Employees[i], report.Employees[j]
		if a.Unjustified != b.Unjustified {
			return a.Unjustified > b.Unjustified
		}
		return a.Name < b.Name
	})
	return report
}

func rate(present, possible int) decimal.Decimal {
	if possible <= 0 {
		return decimal.Zero
	}
	return payroll.Round2(decimal.NewFromInt(int64(present)).Mul(decimal.NewFromInt(100)).Div(decimal.NewFromInt(int64(possible))))
}
