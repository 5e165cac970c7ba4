package reports

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/jung-kurt/gofpdf"
	"github.com/shopspring/decimal"

	"rrhh/internal/domain/payroll"
)

// Company is printed in the heading of every document.
type Company struct {
	Name string
	RUC  string
}

type document struct {
	pdf *gofpdf.Fpdf
	tr  func(string) string
}

func newDocument(orientation, title string, company Company) *document {
	pdf := gofpdf.New(orientation, "mm", "A4", "")
	pdf.SetMargins(15, 15, 15)
	pdf.SetAutoPageBreak(true, 15)
	pdf.SetTitle(title, true)
	pdf.AddPage()

	d := &document{pdf: pdf, tr: pdf.UnicodeTranslatorFromDescriptor("")}
	if company.Name != "" {
		pdf.SetFont("Helvetica", "B", 11)
		pdf.Cell(0, 6, d.tr(company.Name))
		pdf.Ln(5)
		if company.RUC != "" {
			pdf.SetFont("Helvetica", "", 9)
			pdf.Cell(0, 5, "RUC: "+company.RUC)
			pdf.Ln(5)
		}
		pdf.Ln(3)
	}
	pdf.SetFont("Helvetica", "B", 16)
	pdf.CellFormat(0, 10, d.tr(title), "", 1, "C", false, 0, "")
	pdf.Ln(4)
	return d
}

// info prints label/value pairs two per line.
func (d *document) info(pairs ...[2]string) {
	width, _ := d.pdf.GetPageSize()
	left, _, right, _ := d.pdf.GetMargins()
	col := (width - left - right) / 4
	for i, pair := range pairs {
		d.pdf.SetFont("Helvetica", "B", 9)
		d.pdf.CellFormat(col, 7, d.tr(pair[0]), "", 0, "L", false, 0, "")
		d.pdf.SetFont("Helvetica", "", 9)
		d.pdf.CellFormat(col, 7, d.tr(pair[1]), "", 0, "L", false, 0, "")
		if i%2 == 1 || i == len(pairs)-1 {
			d.pdf.Ln(7)
		}
	}
	d.pdf.Ln(4)
}

// table is a bordered grid; aligns holds gofpdf alignment per column.
type table struct {
	widths []float64
	aligns []string
}

func (d *document) tableHeader(t table, titles []string) {
	d.pdf.SetFont("Helvetica", "B", 9)
	d.pdf.SetFillColor(0, 51, 102)
	d.pdf.SetTextColor(255, 255, 255)
	for i, title := range titles {
		d.pdf.CellFormat(t.widths[i], 8, d.tr(title), "1", 0, t.aligns[i], true, 0, "")
	}
	d.pdf.Ln(-1)
	d.pdf.SetTextColor(0, 0, 0)
}

// row prints one table row, shaded and bold for totals.
func (d *document) row(t table, values []string, total bool) {
	style := ""
	if total {
		style = "B"
		d.pdf.SetFillColor(232, 232, 232)
	}
	d.pdf.SetFont("Helvetica", style, 9)
	for i, value := range values {
		d.pdf.CellFormat(t.widths[i], 7, d.tr(value), "1", 0, t.aligns[i], total, 0, "")
	}
	d.pdf.Ln(-1)
}

func (d *document) footer(issued time.Time) {
	d.pdf.Ln(6)
	d.pdf.SetFont("Helvetica", "I", 8)
	d.pdf.Cell(0, 5, "Generated "+issued.Format("02/01/2006 15:04"))
}

func (d *document) write(w io.Writer) error {
	return d.pdf.Output(w)
}

// Receipt renders the salary receipt of one settlement: its detail lines,
// the gross, the deductions and the net.
func Receipt(w io.Writer, company Company, row payroll.SettlementRow, issued time.Time) error {
	s, emp := row.Settlement, row.Employee
	d := newDocument("P", receiptTitle(s.Kind), company)
	d.info(
		[2]string{"Period:", s.Period.String()},
		[2]string{"Issued:", issued.Format("02/01/2006")},
		[2]string{"Employee:", emp.FullName()},
		[2]string{"Code:", emp.Code},
		[2]string{"National ID:", emp.NationalID},
		[2]string{"Position:", emp.PositionName},
		[2]string{"Days worked:", fmt.Sprint(s.DaysWorked)},
		[2]string{"Base salary:", FormatAmount(s.BaseSalary)},
	)

	d.tableHeader(conceptTable, []string{"Concept", "Amount"})
	for _, line := range receiptLines(s) {
		d.row(conceptTable, []string{line.label, line.amount}, line.total)
	}
	d.footer(issued)
	return d.write(w)
}

func receiptTitle(kind payroll.SettlementKind) string {
	switch kind {
	case payroll.KindAguinaldo:
		return "Aguinaldo receipt"
	case payroll.KindSeverance:
		return "Severance settlement"
	default:
		return "Salary receipt"
	}
}

var conceptTable = table{widths: []float64{130, 50}, aligns: []string{"L", "R"}}

type printedLine struct {
	label  string
	amount string
	total  bool
}

// receiptLines lists earnings first, then deductions and contributions,
// each group closed by its total.
func receiptLines(s payroll.Settlement) []printedLine {
	var earnings, deductions []printedLine
	for _, line := range s.Lines {
		label := line.Description
		if line.Percentage.Valid {
			label = fmt.Sprintf("%s (%s%%)", label, line.Percentage.Decimal.String())
		}
		printed := printedLine{label: label, amount: FormatAmount(line.Amount)}
		if line.Kind == payroll.LineEarning {
			earnings = append(earnings, printed)
		} else {
			deductions = append(deductions, printed)
		}
	}

	out := append(earnings, printedLine{label: "Gross", amount: FormatAmount(s.Gross), total: true})
	out = append(out, deductions...)
	out = append(out,
		printedLine{label: "Total deductions", amount: FormatAmount(s.DiscountsTotal.Add(s.Contribution)), total: true},
		printedLine{label: "NET PAY", amount: FormatAmount(s.Net), total: true},
	)
	return out
}

var (
	registerColumns = []string{"Code", "Employee", "Position", "Base pay", "Income", "Discounts", "Contribution", "Net"}
	registerTable   = table{
		widths: []float64{20, 55, 42, 30, 30, 30, 30, 30},
		aligns: []string{"L", "L", "L", "R", "R", "R", "R", "R"},
	}
)

type registerLine struct {
	code, name, position                          string
	basePay, income, discounts, contribution, net decimal.Decimal
}

// registerLines turns settlements into register rows plus the totals row.
// Income is everything earned over the proportional base pay.
func registerLines(rows []payroll.SettlementRow) ([]registerLine, registerLine) {
	lines := make([]registerLine, 0, len(rows))
	totals := registerLine{name: "TOTAL"}
	for _, r := range rows {
		s := r.Settlement
		line := registerLine{
			code:         r.Employee.Code,
			name:         r.Employee.FullName(),
			position:     r.Employee.PositionName,
			basePay:      s.BasePay,
			income:       s.Gross.Sub(s.BasePay),
			discounts:    s.DiscountsTotal,
			contribution: s.Contribution,
			net:          s.Net,
		}
		lines = append(lines, line)
		totals.basePay = totals.basePay.Add(line.basePay)
		totals.income = totals.income.Add(line.income)
		totals.discounts = totals.discounts.Add(line.discounts)
		totals.contribution = totals.contribution.Add(line.contribution)
		totals.net = totals.net.Add(line.net)
	}
	return lines, totals
}

func (l registerLine) values() []string {
	return []string{
		l.code, l.name, l.position,
		FormatAmount(l.basePay), FormatAmount(l.income), FormatAmount(l.discounts),
		FormatAmount(l.contribution), FormatAmount(l.net),
	}
}

// Register renders the monthly payroll register of a period in landscape.
func Register(w io.Writer, company Company, period payroll.Period, rows []payroll.SettlementRow, issued time.Time) error {
	d := newDocument("L", "Monthly payroll register", company)
	d.info([2]string{"Period:", period.String()}, [2]string{"Employees:", fmt.Sprint(len(rows))})

	d.tableHeader(registerTable, registerColumns)
	lines, totals := registerLines(rows)
	for _, line := range lines {
		d.row(registerTable, line.values(), false)
	}
	d.row(registerTable, totals.values(), true)
	d.footer(issued)
	return d.write(w)
}

// SeveranceStatement renders the termination facts and the severance
// settlement lines.
func SeveranceStatement(w io.Writer, company Company, termination payroll.TerminationRecord, row payroll.SettlementRow, issued time.Time) error {
	s, emp := row.Settlement, row.Employee
	hire := ""
	if emp.HireDate != nil {
		hire = emp.HireDate.Format("02/01/2006")
	}
	d := newDocument("P", "Severance settlement", company)
	d.info(
		[2]string{"Employee:", emp.FullName()},
		[2]string{"Code:", emp.Code},
		[2]string{"National ID:", emp.NationalID},
		[2]string{"Position:", emp.PositionName},
		[2]string{"Hire date:", hire},
		[2]string{"Termination:", termination.Date.Format("02/01/2006")},
		[2]string{"Type:", string(termination.Type)},
		[2]string{"Base salary:", FormatAmount(s.BaseSalary)},
	)
	if cause := strings.TrimSpace(termination.Cause); cause != "" {
		d.pdf.SetFont("Helvetica", "", 9)
		d.pdf.MultiCell(0, 5, d.tr("Cause: "+cause), "", "L", false)
		d.pdf.Ln(3)
	}

	d.tableHeader(conceptTable, []string{"Concept", "Amount"})
	for _, line := range receiptLines(s) {
		d.row(conceptTable, []string{line.label, line.amount}, line.total)
	}
	d.pdf.Ln(16)
	d.pdf.SetFont("Helvetica", "", 9)
	d.pdf.CellFormat(90, 5, "_________________________", "", 0, "C", false, 0, "")
	d.pdf.CellFormat(90, 5, "_________________________", "", 1, "C", false, 0, "")
	d.pdf.CellFormat(90, 5, "Employer", "", 0, "C", false, 0, "")
	d.pdf.CellFormat(90, 5, d.tr(emp.FullName()), "", 1, "C", false, 0, "")
	d.footer(issued)
	return d.write(w)
}

// FormatAmount prints guaraníes with dot thousands and comma decimals.
func FormatAmount(d decimal.Decimal) string {
	s := d.Round(2).StringFixed(2)
	negative := strings.HasPrefix(s, "-")
	s = strings.TrimPrefix(s, "-")
	whole, cents, _ := strings.Cut(s, ".")

	var b strings.Builder
	if negative {
		b.WriteByte('-')
	}
	for i, r := range whole {
		if i > 0 && (len(whole)-i)%3 == 0 {
			b.WriteByte('.')
		}
		b.WriteRune(r)
	}
	b.WriteByte(',')
	b.WriteString(cents)
	return b.String()
}
