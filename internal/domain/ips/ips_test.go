package ips

import (
	"bytes"
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"rrhh/internal/domain/payroll"
)

var company = Company{EmployerNumber: "12345", RUC: "80012345-6", Name: "Acme S.A."}

func settlementRow(i int, basePay string, status payroll.EmployeeStatus) payroll.SettlementRow {
	return payroll.SettlementRow{
		Settlement: payroll.Settlement{
			ID:         fmt.Sprintf("s%d", i),
			Kind:       payroll.KindOrdinary,
			DaysWorked: 20,
			BasePay:    decimal.RequireFromString(basePay),
		},
		Employee: payroll.Employee{
			ID:         fmt.Sprintf("e%d", i),
			FirstName:  "Ana",
			LastName:   fmt.Sprintf("Gomez %d", i),
			NationalID: fmt.Sprintf("100%d", i),
			IPSNumber:  fmt.Sprintf("IPS-%d", i),
			Status:     status,
		},
	}
}

func TestSituationCode(t *testing.T) {
	assert.Equal(t, "0", SituationCode(payroll.EmployeeActive))
	assert.Equal(t, "1", SituationCode(payroll.EmployeeInactive))
	assert.Equal(t, "2", SituationCode(payroll.EmployeeSuspended))
	assert.Equal(t, "3", SituationCode(payroll.EmployeeRetired))
	assert.Equal(t, "0", SituationCode("unknown"))
}

func TestBuildRow(t *testing.T) {
	in := settlementRow(1, "1200000", payroll.EmployeeSuspended)
	row := BuildRow(company, DefaultRates(), in)

	assert.Equal(t, "12345", row.EmployerNumber)
	assert.Equal(t, "Gomez 1", row.Surnames)
	assert.Equal(t, "Ana", row.Names)
	assert.Equal(t, 20, row.DaysWorked)
	assert.Equal(t, "01", row.Category)
	assert.Equal(t, "2", row.Situation)
	assert.Equal(t, "1200000.00", row.TaxableSalary.StringFixed(2))
	assert.Equal(t, "108000.00", row.EmployeeContribution.StringFixed(2))
	assert.Equal(t, "198000.00", row.EmployerContribution.StringFixed(2))
	assert.Equal(t, "306000.00", row.TotalContribution.StringFixed(2))

	in.Employee.IPSCategory = "07"
	in.Settlement.BasePay = decimal.RequireFromString("1533333.33")
	row = BuildRow(company, DefaultRates(), in)
	assert.Equal(t, "07", row.Category)
	assert.Equal(t, "138000.00", row.EmployeeContribution.StringFixed(2))
	assert.Equal(t, "253000.00", row.EmployerContribution.StringFixed(2))
}

func TestBuildReportPagesSheets(t *testing.T) {
	var rows []payroll.SettlementRow
	for i := range 45 {
		rows = append(rows, settlementRow(i, "1000000", payroll.EmployeeActive))
	}
	rows[3].Employee.IPSNumber = ""
	rows = append(rows, payroll.SettlementRow{Settlement: payroll.Settlement{Kind: payroll.KindAguinaldo, BasePay: decimal.NewFromInt(5)}})

	period := payroll.Period{Year: 2024, Month: time.March}
	report, err := BuildReport(company, DefaultRates(), period, rows)
	require.NoError(t, err)

	require.Len(t, report.Sheets, 3)
	assert.Len(t, report.Sheets[0].Rows, 20)
	assert.Len(t, report.Sheets[1].Rows, 20)
	assert.Len(t, report.Sheets[2].Rows, 5)
	assert.Equal(t, 3, report.Sheets[2].Rows[0].SheetNumber)
	assert.Equal(t, 20, report.Sheets[0].Totals.Workers)
	assert.Equal(t, "20000000", report.Sheets[0].Totals.TaxableSalary.String())
	assert.Equal(t, 45, report.Totals.Workers)
	assert.Equal(t, "4050000", report.Totals.EmployeeContribution.String())
	assert.Equal(t, "7425000", report.Totals.EmployerContribution.String())
	assert.Equal(t, []string{"Ana Gomez 3 has no IPS insured number"}, report.Warnings)
}

func TestBuildReportErrors(t *testing.T) {
	period := payroll.Period{Year: 2024, Month: time.March}
	rows := []payroll.SettlementRow{settlementRow(1, "1000000", payroll.EmployeeActive)}

	_, err := BuildReport(Company{Name: "Acme"}, DefaultRates(), period, rows)
	require.ErrorIs(t, err, payroll.ErrValidation)

	_, err = BuildReport(company, Rates{}, period, rows)
	require.ErrorIs(t, err, payroll.ErrValidation)

	_, err = BuildReport(company, DefaultRates(), period, nil)
	require.ErrorIs(t, err, ErrNothingToDeclare)
}

func TestWriteXLSX(t *testing.T) {
	var rows []payroll.SettlementRow
	for i := range 21 {
		rows = append(rows, settlementRow(i, "1000000", payroll.EmployeeActive))
	}
	report, err := BuildReport(company, DefaultRates(), payroll.Period{Year: 2024, Month: time.March}, rows)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, WriteXLSX(&buf, report))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{"REI_1", "REI_2"}, f.GetSheetList())

	raw := excelize.Options{RawCellValue: true}
	first, err := f.GetRows("REI_1", raw)
	require.NoError(t, err)
	require.Len(t, first, 22)
	assert.Equal(t, header, first[0])
	assert.Equal(t, "12345", first[1][0])
	assert.Equal(t, "1", first[1][3])
	assert.Equal(t, "Gomez 0", first[1][6])
	assert.Equal(t, "1000000", first[1][9])
	assert.Equal(t, "20", first[1][12])
	assert.Equal(t, "20000000", first[1][13])
	assert.Equal(t, "90000", first[1][14])

	total, err := f.GetCellValue("REI_1", "Q22", raw)
	require.NoError(t, err)
	assert.Equal(t, "5100000", total)

	second, err := f.GetRows("REI_2", raw)
	require.NoError(t, err)
	require.Len(t, second, 3)
	assert.Equal(t, "2", second[1][3])
	assert.Equal(t, "1", second[1][12])
}

type fakeLister struct {
	rows []payroll.SettlementRow
	kind payroll.SettlementKind
}

func (f *fakeLister) ListPeriodSettlements(_ context.Context, _ payroll.Period, kind payroll.SettlementKind) ([]payroll.SettlementRow, error) {
	f.kind = kind
	return f.rows, nil
}

func TestServiceReport(t *testing.T) {
	lister := &fakeLister{rows: []payroll.SettlementRow{settlementRow(1, "2000000", payroll.EmployeeActive)}}
	svc := NewService(lister, company, DefaultRates(), nil)

	report, err := svc.Report(context.Background(), payroll.Period{Year: 2024, Month: time.April})
	require.NoError(t, err)
	assert.Equal(t, payroll.KindOrdinary, lister.kind)
	assert.Equal(t, 1, report.Totals.Workers)
	assert.Equal(t, "510000", report.Totals.TotalContribution.String())

	_, err = svc.Report(context.Background(), payroll.Period{Year: 2024, Month: 13})
	require.ErrorIs(t, err, payroll.ErrValidation)
}
