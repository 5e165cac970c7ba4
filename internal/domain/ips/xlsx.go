package ips

import (
	"fmt"
	"io"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

// Column headers of the REI import format.
var header = []string{
	"Numero Patronal",
	"RUC Empresa",
	"Razon Social",
	"Numero Hoja",
	"Cedula",
	"Numero Asegurado",
	"Apellidos",
	"Nombres",
	"Dias Trabajados",
	"Salario Imponible",
	"Categoria",
	"Codigo Situacion",
	"Total Trabajadores (Hoja)",
	"Total Salario Imponible (Hoja)",
	"Aporte Empleado",
	"Aporte Empleador",
	"Total Aporte",
}

func SheetName(number int) string {
	return fmt.Sprintf("REI_%d", number)
}

// WriteXLSX renders one worksheet per REI sheet. Every data row repeats the
// sheet totals as the format requires, and a closing row sums the
// contributions.
func WriteXLSX(w io.Writer, report Report) error {
	f := excelize.NewFile()
	defer f.Close()

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Color: "#FFFFFF"},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#003366"}, Pattern: 1},
	})
	if err != nil {
		return err
	}
	moneyStyle, err := f.NewStyle(&excelize.Style{NumFmt: 4})
	if err != nil {
		return err
	}
	totalStyle, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}, NumFmt: 4})
	if err != nil {
		return err
	}

	for i, sheet := range report.Sheets {
		name := SheetName(sheet.Number)
		index, err := f.NewSheet(name)
		if err != nil {
			return err
		}
		if i == 0 {
			f.SetActiveSheet(index)
		}

		if err := f.SetSheetRow(name, "A1", &header); err != nil {
			return err
		}
		for r, row := range sheet.Rows {
			values := []any{
				row.EmployerNumber,
				row.RUC,
				row.CompanyName,
				row.SheetNumber,
				row.NationalID,
				row.InsuredNumber,
				row.Surnames,
				row.Names,
				row.DaysWorked,
				amount(row.TaxableSalary),
				row.Category,
				row.Situation,
				sheet.Totals.Workers,
				amount(sheet.Totals.TaxableSalary),
				amount(row.EmployeeContribution),
				amount(row.EmployerContribution),
				amount(row.TotalContribution),
			}
			cell, _ := excelize.CoordinatesToCellName(1, r+2)
			if err := f.SetSheetRow(name, cell, &values); err != nil {
				return err
			}
		}

		last := len(sheet.Rows) + 2
		totals := []struct {
			col   string
			value any
		}{
			{"H", "TOTAL"},
			{"J", amount(sheet.Totals.TaxableSalary)},
			{"M", sheet.Totals.Workers},
			{"O", amount(sheet.Totals.EmployeeContribution)},
			{"P", amount(sheet.Totals.EmployerContribution)},
			{"Q", amount(sheet.Totals.TotalContribution)},
		}
		for _, t := range totals {
			if err := f.SetCellValue(name, fmt.Sprintf("%s%d", t.col, last), t.value); err != nil {
				return err
			}
		}

		_ = f.SetCellStyle(name, "A1", "Q1", headerStyle)
		_ = f.SetCellStyle(name, "J2", fmt.Sprintf("J%d", last), moneyStyle)
		_ = f.SetCellStyle(name, "N2", fmt.Sprintf("Q%d", last), moneyStyle)
		_ = f.SetCellStyle(name, fmt.Sprintf("H%d", last), fmt.Sprintf("Q%d", last), totalStyle)
		_ = f.SetColWidth(name, "A", "F", 16)
		_ = f.SetColWidth(name, "G", "H", 24)
		_ = f.SetColWidth(name, "I", "Q", 18)
	}
	if len(report.Sheets) > 0 {
		if err := f.DeleteSheet("Sheet1"); err != nil {
			return err
		}
	}
	return f.Write(w)
}

func amount(d decimal.Decimal) float64 {
	return d.Round(2).InexactFloat64()
}
