package ips

import (
	"errors"

	"github.com/shopspring/decimal"

	"rrhh/internal/domain/payroll"
)

var ErrNothingToDeclare = errors.New("nothing to declare")

// Company identifies the employer on every REI row.
type Company struct {
	EmployerNumber string `json:"employerNumber"`
	RUC            string `json:"ruc"`
	Name           string `json:"name"`
}

type Rates struct {
	Employee decimal.Decimal
	Employer decimal.Decimal
}

type Row struct {
	EmployerNumber       string          `json:"employerNumber"`
	RUC                  string          `json:"ruc"`
	CompanyName          string          `json:"companyName"`
	SheetNumber          int             `json:"sheetNumber"`
	NationalID           string          `json:"nationalId"`
	InsuredNumber        string          `json:"insuredNumber"`
	Surnames             string          `json:"surnames"`
	Names                string          `json:"names"`
	DaysWorked           int             `json:"daysWorked"`
	TaxableSalary        decimal.Decimal `json:"taxableSalary"`
	Category             string          `json:"category"`
	Situation            string          `json:"situation"`
	EmployeeContribution decimal.Decimal `json:"employeeContribution"`
	EmployerContribution decimal.Decimal `json:"employerContribution"`
	TotalContribution    decimal.Decimal `json:"totalContribution"`
}

type Totals struct {
	Workers              int             `json:"workers"`
	TaxableSalary        decimal.Decimal `json:"taxableSalary"`
	EmployeeContribution decimal.Decimal `json:"employeeContribution"`
	EmployerContribution decimal.Decimal `json:"employerContribution"`
	TotalContribution    decimal.Decimal `json:"totalContribution"`
}

type Sheet struct {
	Number int    `json:"number"`
	Rows   []Row  `json:"rows"`
	Totals Totals `json:"totals"`
}

type Report struct {
	Period   payroll.Period `json:"period"`
	Company  Company        `json:"company"`
	Sheets   []Sheet        `json:"sheets"`
	Totals   Totals         `json:"totals"`
	Warnings []string       `json:"warnings"`
}
