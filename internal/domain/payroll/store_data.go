package payroll

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"rrhh/internal/platform/db"
)

func (s *Store) GetEmployee(ctx context.Context, employeeID string) (Employee, error) {
	emp, err := ScanEmployee(s.DB.QueryRow(ctx, EmployeeSelect+" WHERE e.id::text = $1", employeeID))
	if errors.Is(err, pgx.ErrNoRows) {
		return Employee{}, ErrEmployeeNotFound
	}
	return emp, err
}

func (s *Store) ListActiveEmployees(ctx context.Context) ([]Employee, error) {
	rows, err := s.DB.Query(ctx, EmployeeSelect+" WHERE e.status = $1 ORDER BY e.last_name, e.first_name", string(EmployeeActive))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Employee
	for rows.Next() {
		emp, err := ScanEmployee(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, emp)
	}
	return out, rows.Err()
}

func (s *Store) FindSettlement(ctx context.Context, employeeID string, period Period, kind SettlementKind) (Settlement, bool, error) {
	settlement, err := scanSettlement(s.DB.QueryRow(ctx, `
    SELECT`+settlementColumns+`
    FROM settlements s
    WHERE s.employee_id::text = $1 AND s.period_year = $2 AND s.period_month = $3 AND s.kind = $4
  `, employeeID, period.Year, int(period.Month), string(kind)))
	if errors.Is(err, pgx.ErrNoRows) {
		return Settlement{}, false, nil
	}
	if err != nil {
		return Settlement{}, false, err
	}
	return settlement, true, nil
}

func (s *Store) HasAguinaldo(ctx context.Context, employeeID string, year int) (bool, error) {
	var count int
	err := s.DB.QueryRow(ctx, `
    SELECT COUNT(1)
    FROM settlements
    WHERE employee_id::text = $1 AND period_year = $2 AND aguinaldo_gross > 0
  `, employeeID, year).Scan(&count)
	return count > 0, err
}

func (s *Store) ListAttendance(ctx context.Context, employeeID string, period Period) ([]AttendanceDay, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT id, employee_id, date, present, note, COALESCE(justification, '')
    FROM attendance_days
    WHERE employee_id::text = $1 AND date BETWEEN $2 AND $3
    ORDER BY date
  `, employeeID, period.Start(), period.End())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []AttendanceDay
	for rows.Next() {
		var day AttendanceDay
		var justification string
		if err := rows.Scan(&day.ID, &day.EmployeeID, &day.Date, &day.Present, &day.Note, &justification); err != nil {
			return nil, err
		}
		day.Justification = Justification(justification)
		out = append(out, day)
	}
	return out, rows.Err()
}

func (s *Store) ListIncomes(ctx context.Context, employeeID string, year int) ([]ManualIncome, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT id, employee_id, kind, description, amount, period_year, period_month, approved, applied
    FROM manual_incomes
    WHERE employee_id::text = $1 AND period_year = $2
    ORDER BY period_month, created_at
  `, employeeID, year)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []ManualIncome
	for rows.Next() {
		var inc ManualIncome
		var kind string
		var month int
		if err := rows.Scan(&inc.ID, &inc.EmployeeID, &kind, &inc.Description, &inc.Amount, &inc.Period.Year, &month, &inc.Approved, &inc.Applied); err != nil {
			return nil, err
		}
		inc.Kind = IncomeKind(kind)
		inc.Period.Month = time.Month(month)
		out = append(out, inc)
	}
	return out, rows.Err()
}

func (s *Store) ListOvertime(ctx context.Context, employeeID string, period Period) ([]Overtime, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT id, employee_id, date, hours, amount, approved, applied
    FROM overtime_entries
    WHERE employee_id::text = $1 AND date BETWEEN $2 AND $3
    ORDER BY date
  `, employeeID, period.Start(), period.End())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Overtime
	for rows.Next() {
		var ot Overtime
		if err := rows.Scan(&ot.ID, &ot.EmployeeID, &ot.Date, &ot.Hours, &ot.Amount, &ot.Approved, &ot.Applied); err != nil {
			return nil, err
		}
		out = append(out, ot)
	}
	return out, rows.Err()
}

func (s *Store) ListDiscounts(ctx context.Context, employeeID string, period Period) ([]ManualDiscount, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT id, employee_id, origin, COALESCE(source_id::text, ''), description, amount,
           period_year, period_month, days, active, applied
    FROM manual_discounts
    WHERE employee_id::text = $1 AND period_year = $2 AND period_month = $3
    ORDER BY created_at
  `, employeeID, period.Year, int(period.Month))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []ManualDiscount
	for rows.Next() {
		var d ManualDiscount
		var origin string
		var month int
		if err := rows.Scan(&d.ID, &d.EmployeeID, &origin, &d.SourceID, &d.Description, &d.Amount,
			&d.Period.Year, &month, &d.Days, &d.Active, &d.Applied); err != nil {
			return nil, err
		}
		d.Origin = DiscountOrigin(origin)
		d.Period.Month = time.Month(month)
		out = append(out, d)
	}
	return out, rows.Err()
}

func (s *Store) ListAdvances(ctx context.Context, employeeID string, period Period) ([]SalaryAdvance, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT id, employee_id, amount, state, approved_at, applied
    FROM salary_advances
    WHERE employee_id::text = $1 AND approved_at BETWEEN $2 AND $3
    ORDER BY approved_at
  `, employeeID, period.Start(), period.End())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []SalaryAdvance
	for rows.Next() {
		var adv SalaryAdvance
		var state string
		if err := rows.Scan(&adv.ID, &adv.EmployeeID, &adv.Amount, &state, &adv.ApprovedAt, &adv.Applied); err != nil {
			return nil, err
		}
		adv.State = ApprovalState(state)
		out = append(out, adv)
	}
	return out, rows.Err()
}

func (s *Store) ListDependents(ctx context.Context, employeeID string) ([]Dependent, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT id, employee_id, name, active, start_date, end_date
    FROM dependents
    WHERE employee_id::text = $1
  `, employeeID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Dependent
	for rows.Next() {
		var d Dependent
		if err := rows.Scan(&d.ID, &d.EmployeeID, &d.Name, &d.Active, &d.StartDate, &d.EndDate); err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

func (s *Store) ListMinimumWages(ctx context.Context) ([]MinimumWage, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT id, amount, valid_from, valid_to
    FROM minimum_wages
    ORDER BY valid_from DESC
  `)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []MinimumWage
	for rows.Next() {
		var w MinimumWage
		if err := rows.Scan(&w.ID, &w.Amount, &w.ValidFrom, &w.ValidTo); err != nil {
			return nil, err
		}
		out = append(out, w)
	}
	return out, rows.Err()
}

func (s *Store) ListSettlementsForYear(ctx context.Context, employeeID string, year int) ([]Settlement, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT`+settlementColumns+`
    FROM settlements s
    WHERE s.employee_id::text = $1 AND s.period_year = $2
    ORDER BY s.period_month, s.kind
  `, employeeID, year)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Settlement
	for rows.Next() {
		settlement, err := scanSettlement(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, settlement)
	}
	return out, rows.Err()
}

func (s *Store) GetVacationLedger(ctx context.Context, employeeID string, year int) (VacationLedger, bool, error) {
	var l VacationLedger
	var state string
	err := s.DB.QueryRow(ctx, `
    SELECT id, employee_id, year, entitled, carried, taken, pending, state
    FROM vacation_ledgers
    WHERE employee_id::text = $1 AND year = $2
  `, employeeID, year).Scan(&l.ID, &l.EmployeeID, &l.Year, &l.Entitled, &l.Carried, &l.Taken, &l.Pending, &state)
	if errors.Is(err, pgx.ErrNoRows) {
		return VacationLedger{}, false, nil
	}
	if err != nil {
		return VacationLedger{}, false, err
	}
	l.State = ApprovalState(state)
	return l, true, nil
}

func (s *Store) ListVacations(ctx context.Context, employeeID string) ([]VacationRequest, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT id, employee_id, start_date, end_date, state
    FROM vacation_requests
    WHERE employee_id::text = $1
    ORDER BY start_date
  `, employeeID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []VacationRequest
	for rows.Next() {
		var v VacationRequest
		var state string
		if err := rows.Scan(&v.ID, &v.EmployeeID, &v.StartDate, &v.EndDate, &state); err != nil {
			return nil, err
		}
		v.State = ApprovalState(state)
		out = append(out, v)
	}
	return out, rows.Err()
}

func (s *Store) FindTermination(ctx context.Context, employeeID string) (TerminationRecord, bool, error) {
	var t TerminationRecord
	var kind string
	err := s.DB.QueryRow(ctx, `
    SELECT id, employee_id, type, cause, date, COALESCE(settlement_id::text, '')
    FROM terminations
    WHERE employee_id::text = $1
  `, employeeID).Scan(&t.ID, &t.EmployeeID, &kind, &t.Cause, &t.Date, &t.SettlementID)
	if errors.Is(err, pgx.ErrNoRows) {
		return TerminationRecord{}, false, nil
	}
	if err != nil {
		return TerminationRecord{}, false, err
	}
	t.Type = TerminationType(kind)
	return t, true, nil
}

const settlementKey = "settlements_employee_period_kind_key"

func duplicateOf(settlement Settlement) error {
	return &DuplicateSettlementError{EmployeeID: settlement.EmployeeID, Period: settlement.Period, Kind: settlement.Kind}
}

// SaveOrdinary inserts the settlement and consumes its inputs atomically. An
// input already consumed by a concurrent run rolls the whole insert back.
func (s *Store) SaveOrdinary(ctx context.Context, settlement Settlement, applied AppliedRecords) (string, error) {
	var id string
	err := db.WithTx(ctx, s.DB, func(tx pgx.Tx) error {
		var err error
		id, err = insertSettlement(ctx, tx, settlement)
		if err != nil {
			return err
		}
		for _, mark := range []struct {
			table string
			ids   []string
		}{
			{"manual_incomes", applied.IncomeIDs},
			{"overtime_entries", applied.OvertimeIDs},
			{"manual_discounts", applied.DiscountIDs},
			{"salary_advances", applied.AdvanceIDs},
		} {
			if len(mark.ids) == 0 {
				continue
			}
			tag, err := tx.Exec(ctx, `
        UPDATE `+mark.table+`
        SET applied = true, settlement_id = $1
        WHERE id::text = ANY($2) AND applied = false
      `, id, mark.ids)
			if err != nil {
				return fmt.Errorf("mark %s applied: %w", mark.table, err)
			}
			if int(tag.RowsAffected()) != len(mark.ids) {
				return fmt.Errorf("mark %s applied: %d of %d rows were still unapplied", mark.table, tag.RowsAffected(), len(mark.ids))
			}
		}
		return nil
	})
	if db.IsUniqueViolation(err, settlementKey) {
		return "", duplicateOf(settlement)
	}
	return id, err
}

func (s *Store) SaveSettlement(ctx context.Context, settlement Settlement) (string, error) {
	var id string
	err := db.WithTx(ctx, s.DB, func(tx pgx.Tx) error {
		var err error
		id, err = insertSettlement(ctx, tx, settlement)
		return err
	})
	if db.IsUniqueViolation(err, settlementKey) {
		return "", duplicateOf(settlement)
	}
	return id, err
}

// SaveSeverance records the termination, its settlement and the employee's
// new status in one transaction.
func (s *Store) SaveSeverance(ctx context.Context, termination TerminationRecord, settlement Settlement) (TerminationRecord, Settlement, error) {
	err := db.WithTx(ctx, s.DB, func(tx pgx.Tx) error {
		if err := tx.QueryRow(ctx, `
      INSERT INTO terminations (employee_id, type, cause, date)
      VALUES ($1,$2,$3,$4)
      RETURNING id
    `, termination.EmployeeID, string(termination.Type), termination.Cause, termination.Date).Scan(&termination.ID); err != nil {
			return err
		}

		settlement.TerminationID = termination.ID
		id, err := insertSettlement(ctx, tx, settlement)
		if err != nil {
			return err
		}
		settlement.ID = id
		termination.SettlementID = id

		if _, err := tx.Exec(ctx, "UPDATE terminations SET settlement_id = $1 WHERE id = $2", id, termination.ID); err != nil {
			return err
		}
		tag, err := tx.Exec(ctx, `
      UPDATE employees
      SET status = $1, termination_date = $2, updated_at = now()
      WHERE id::text = $3 AND termination_date IS NULL
    `, string(EmployeeInactive), termination.Date, termination.EmployeeID)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return duplicateOf(settlement)
		}
		return nil
	})
	if db.IsUniqueViolation(err, "") {
		return TerminationRecord{}, Settlement{}, duplicateOf(settlement)
	}
	if err != nil {
		return TerminationRecord{}, Settlement{}, err
	}
	settlement.CreatedAt = time.Now()
	return termination, settlement, nil
}

func (s *Store) ListPeriodSettlements(ctx context.Context, period Period, kind SettlementKind) ([]SettlementRow, error) {
	query := `
    SELECT` + settlementColumns + `,` + employeeColumns + `
    FROM settlements s
    JOIN employees e ON e.id = s.employee_id
    LEFT JOIN positions p ON p.id = e.position_id
    WHERE s.period_year = $1 AND s.period_month = $2`
	args := []any{period.Year, int(period.Month)}
	if kind != "" {
		query += " AND s.kind = $3"
		args = append(args, string(kind))
	}
	query += " ORDER BY e.last_name, e.first_name, s.kind"

	rows, err := s.DB.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []SettlementRow
	for rows.Next() {
		row, err := scanSettlementRow(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, s.attachLines(ctx, out)
}

func (s *Store) GetSettlement(ctx context.Context, settlementID string) (SettlementRow, error) {
	row, err := scanSettlementRow(s.DB.QueryRow(ctx, `
    SELECT`+settlementColumns+`,`+employeeColumns+`
    FROM settlements s
    JOIN employees e ON e.id = s.employee_id
    LEFT JOIN positions p ON p.id = e.position_id
    WHERE s.id::text = $1
  `, settlementID))
	if errors.Is(err, pgx.ErrNoRows) {
		return SettlementRow{}, ErrSettlementNotFound
	}
	if err != nil {
		return SettlementRow{}, err
	}
	rows := []SettlementRow{row}
	if err := s.attachLines(ctx, rows); err != nil {
		return SettlementRow{}, err
	}
	return rows[0], nil
}

func (s *Store) attachLines(ctx context.Context, rows []SettlementRow) error {
	settlements := make([]Settlement, len(rows))
	for i := range rows {
		settlements[i] = rows[i].Settlement
	}
	if err := loadLines(ctx, s.DB, settlements); err != nil {
		return err
	}
	for i := range rows {
		rows[i].Settlement.Lines = settlements[i].Lines
	}
	return nil
}
