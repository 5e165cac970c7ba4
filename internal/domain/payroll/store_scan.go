package payroll

import (
	"context"
	"encoding/json"
	"time"

	"github.com/jackc/pgx/v5"

	"rrhh/internal/platform/querier"
)

const employeeColumns = `
    e.id, e.code, e.first_name, e.last_name,
    COALESCE(e.national_id, ''), COALESCE(e.ips_number, ''),
    e.base_salary, e.hire_date, e.termination_date, e.status,
    COALESCE(p.name, ''), COALESCE(p.ips_category, '')`

const employeeFrom = `
    FROM employees e
    LEFT JOIN positions p ON p.id = e.position_id`

// EmployeeSelect lets other stores read the same employee snapshot.
const EmployeeSelect = "SELECT" + employeeColumns + employeeFrom

const settlementColumns = `
    s.id, s.employee_id, s.kind, s.period_year, s.period_month, COALESCE(s.termination_id::text, ''),
    s.days_worked, s.business_days, s.base_salary, s.base_pay, s.extra_income, s.family_bonus,
    s.aguinaldo_gross, s.indemnity, s.vacation_days, s.vacation_pay,
    s.discount_manual, s.discount_leave, s.discount_suspension, s.discount_advance, s.discounts_total,
    s.contribution_rate, s.contribution, s.gross, s.net, s.warnings_json, s.created_at`

type employeeScan struct {
	emp    Employee
	status string
}

func (e *employeeScan) dest() []any {
	return []any{&e.emp.ID, &e.emp.Code, &e.emp.FirstName, &e.emp.LastName, &e.emp.NationalID, &e.emp.IPSNumber,
		&e.emp.BaseSalary, &e.emp.HireDate, &e.emp.TerminationDate, &e.status, &e.emp.PositionName, &e.emp.IPSCategory}
}

func (e *employeeScan) value() Employee {
	e.emp.Status = EmployeeStatus(e.status)
	return e.emp
}

type settlementScan struct {
	s            Settlement
	kind         string
	year, month  int
	warningsJSON []byte
}

func (x *settlementScan) dest() []any {
	s := &x.s
	return []any{&s.ID, &s.EmployeeID, &x.kind, &x.year, &x.month, &s.TerminationID,
		&s.DaysWorked, &s.BusinessDays, &s.BaseSalary, &s.BasePay, &s.ExtraIncome, &s.FamilyBonus,
		&s.AguinaldoGross, &s.Indemnity, &s.VacationDays, &s.VacationPay,
		&s.Discounts.Manual, &s.Discounts.Leave, &s.Discounts.Suspension, &s.Discounts.Advance, &s.DiscountsTotal,
		&s.ContributionRate, &s.Contribution, &s.Gross, &s.Net, &x.warningsJSON, &s.CreatedAt}
}

func (x *settlementScan) value() Settlement {
	x.s.Kind = SettlementKind(x.kind)
	x.s.Period = Period{Year: x.year, Month: time.Month(x.month)}
	if len(x.warningsJSON) > 0 {
		if err := json.Unmarshal(x.warningsJSON, &x.s.Warnings); err != nil {
			x.s.Warnings = nil
		}
	}
	return x.s
}

// ScanEmployee reads a row selected with EmployeeSelect.
func ScanEmployee(row pgx.Row) (Employee, error) {
	var e employeeScan
	if err := row.Scan(e.dest()...); err != nil {
		return Employee{}, err
	}
	return e.value(), nil
}

func scanSettlement(row pgx.Row) (Settlement, error) {
	var x settlementScan
	if err := row.Scan(x.dest()...); err != nil {
		return Settlement{}, err
	}
	return x.value(), nil
}

func scanSettlementRow(row pgx.Row) (SettlementRow, error) {
	var x settlementScan
	var e employeeScan
	if err := row.Scan(append(x.dest(), e.dest()...)...); err != nil {
		return SettlementRow{}, err
	}
	return SettlementRow{Settlement: x.value(), Employee: e.value()}, nil
}

func insertSettlement(ctx context.Context, q querier.Querier, s Settlement) (string, error) {
	warnings := s.Warnings
	if warnings == nil {
		warnings = []Warning{}
	}
	warningsJSON, err := json.Marshal(warnings)
	if err != nil {
		return "", err
	}
	var id string
	err = q.QueryRow(ctx, `
    INSERT INTO settlements (
      employee_id, kind, period_year, period_month, termination_id,
      days_worked, business_days, base_salary, base_pay, extra_income, family_bonus,
      aguinaldo_gross, indemnity, vacation_days, vacation_pay,
      discount_manual, discount_leave, discount_suspension, discount_advance, discounts_total,
      contribution_rate, contribution, gross, net, warnings_json
    )
    VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19,$20,$21,$22,$23,$24,$25)
    RETURNING id
  `, s.EmployeeID, string(s.Kind), s.Period.Year, int(s.Period.Month), nullIfEmpty(s.TerminationID),
		s.DaysWorked, s.BusinessDays, s.BaseSalary, s.BasePay, s.ExtraIncome, s.FamilyBonus,
		s.AguinaldoGross, s.Indemnity, s.VacationDays, s.VacationPay,
		s.Discounts.Manual, s.Discounts.Leave, s.Discounts.Suspension, s.Discounts.Advance, s.DiscountsTotal,
		s.ContributionRate, s.Contribution, s.Gross, s.Net, warningsJSON).Scan(&id)
	if err != nil {
		return "", err
	}
	for i, line := range s.Lines {
		if _, err := q.Exec(ctx, `
      INSERT INTO settlement_lines (settlement_id, position, kind, description, amount, percentage)
      VALUES ($1,$2,$3,$4,$5,$6)
    `, id, i+1, string(line.Kind), line.Description, line.Amount, line.Percentage); err != nil {
			return "", err
		}
	}
	return id, nil
}

func loadLines(ctx context.Context, q querier.Querier, settlements []Settlement) error {
	if len(settlements) == 0 {
		return nil
	}
	index := make(map[string]int, len(settlements))
	ids := make([]string, 0, len(settlements))
	for i, s := range settlements {
		index[s.ID] = i
		ids = append(ids, s.ID)
	}

	rows, err := q.Query(ctx, `
    SELECT settlement_id::text, kind, description, amount, percentage
    FROM settlement_lines
    WHERE settlement_id::text = ANY($1)
    ORDER BY settlement_id, position
  `, ids)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var settlementID, kind string
		var line Line
		if err := rows.Scan(&settlementID, &kind, &line.Description, &line.Amount, &line.Percentage); err != nil {
			return err
		}
		line.Kind = LineKind(kind)
		if i, ok := index[settlementID]; ok {
			settlements[i].Lines = append(settlements[i].Lines, line)
		}
	}
	return rows.Err()
}

func nullIfEmpty(value string) any {
	if value == "" {
		return nil
	}
	return value
}
