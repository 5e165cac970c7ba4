package ips

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"rrhh/internal/domain/payroll"
)

// RowsPerSheet is the number of insured workers declared on one REI sheet.
const RowsPerSheet = 20

const defaultCategory = "01"

// SituationCode maps an employee status to the REI situation column.
func SituationCode(status payroll.EmployeeStatus) string {
	switch status {
	case payroll.EmployeeInactive:
		return "1"
	case payroll.EmployeeSuspended:
		return "2"
	case payroll.EmployeeRetired:
		return "3"
	default:
		return "0"
	}
}

// BuildRow declares one ordinary settlement. The taxable salary is the
// settlement's proportional base pay.
func BuildRow(company Company, rates Rates, row payroll.SettlementRow) Row {
	emp := row.Employee
	salary := payroll.Round2(row.Settlement.BasePay)
	employee := payroll.Round2(salary.Mul(rates.Employee))
	employer := payroll.Round2(salary.Mul(rates.Employer))

	category := strings.TrimSpace(emp.IPSCategory)
	if category == "" {
		category = defaultCategory
	}
	return Row{
		EmployerNumber:       company.EmployerNumber,
		RUC:                  company.RUC,
		CompanyName:          company.Name,
		NationalID:           emp.NationalID,
		InsuredNumber:        emp.IPSNumber,
		Surnames:             emp.LastName,
		Names:                emp.FirstName,
		DaysWorked:           row.Settlement.DaysWorked,
		TaxableSalary:        salary,
		Category:             category,
		Situation:            SituationCode(emp.Status),
		EmployeeContribution: employee,
		EmployerContribution: employer,
		TotalContribution:    employee.Add(employer),
	}
}

// BuildReport pages the period's ordinary settlements into sheets of
// RowsPerSheet rows. Settlements of other kinds are ignored. Employees
// without an insured number are declared anyway and reported as warnings.
func BuildReport(company Company, rates Rates, period payroll.Period, settlements []payroll.SettlementRow) (Report, error) {
	if strings.TrimSpace(company.EmployerNumber) == "" {
		return Report{}, &payroll.ValidationError{Field: "employerNumber", Reason: "company has no IPS employer number"}
	}
	if !rates.Employee.IsPositive() || !rates.Employer.IsPositive() {
		return Report{}, &payroll.ValidationError{Field: "rates", Reason: "contribution rates must be positive"}
	}

	report := Report{Period: period, Company: company, Sheets: []Sheet{}, Warnings: []string{}}
	var sheet *Sheet
	for _, s := range settlements {
		if s.Settlement.Kind != payroll.KindOrdinary {
			continue
		}
		if sheet == nil || len(sheet.Rows) == RowsPerSheet {
			report.Sheets = append(report.Sheets, Sheet{Number: len(report.Sheets) + 1})
			sheet = &report.Sheets[len(report.Sheets)-1]
		}
		row := BuildRow(company, rates, s)
		row.SheetNumber = sheet.Number
		sheet.add(row)
		report.Totals.add(row)

		if strings.TrimSpace(s.Employee.IPSNumber) == "" {
			report.Warnings = append(report.Warnings, fmt.Sprintf("%s has no IPS insured number", s.Employee.FullName()))
		}
	}
	if len(report.Sheets) == 0 {
		return Report{}, fmt.Errorf("%w: no ordinary settlements in %s", ErrNothingToDeclare, period)
	}
	return report, nil
}

func (s *Sheet) add(row Row) {
	s.Rows = append(s.Rows, row)
	s.Totals.add(row)
}

func (t *Totals) add(row Row) {
	t.Workers++
	t.TaxableSalary = t.TaxableSalary.Add(row.TaxableSalary)
	t.EmployeeContribution = t.EmployeeContribution.Add(row.EmployeeContribution)
	t.EmployerContribution = t.EmployerContribution.Add(row.EmployerContribution)
	t.TotalContribution = t.TotalContribution.Add(row.TotalContribution)
}

// DefaultRates are the employee and employer shares in force.
func DefaultRates() Rates {
	return Rates{
		Employee: decimal.RequireFromString("0.09"),
		Employer: decimal.RequireFromString("0.165"),
	}
}
