package attendance

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"

	"rrhh/internal/domain/payroll"
	"rrhh/internal/platform/db"
	"rrhh/internal/platform/querier"
)

type Store struct {
	DB querier.TxQuerier
}

func NewStore(db querier.TxQuerier) *Store {
	return &Store{DB: db}
}

func (s *Store) ListActiveEmployees(ctx context.Context) ([]payroll.Employee, error) {
	rows, err := s.DB.Query(ctx, payroll.EmployeeSelect+" WHERE e.status = $1 ORDER BY e.last_name, e.first_name", string(payroll.EmployeeActive))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []payroll.Employee
	for rows.Next() {
		emp, err := payroll.ScanEmployee(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, emp)
	}
	return out, rows.Err()
}

func (s *Store) ListAttendanceBetween(ctx context.Context, from, to time.Time) ([]payroll.AttendanceDay, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT id, employee_id, date, present, note, COALESCE(justification, '')
    FROM attendance_days
    WHERE date BETWEEN $1 AND $2
    ORDER BY date, employee_id
  `, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []payroll.AttendanceDay
	for rows.Next() {
		var day payroll.AttendanceDay
		var justification string
		if err := rows.Scan(&day.ID, &day.EmployeeID, &day.Date, &day.Present, &day.Note, &justification); err != nil {
			return nil, err
		}
		day.Justification = payroll.Justification(justification)
		out = append(out, day)
	}
	return out, rows.Err()
}

func (s *Store) ListGrantedVacationsOn(ctx context.Context, date time.Time) ([]payroll.VacationRequest, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT id, employee_id, start_date, end_date, state
    FROM vacation_requests
    WHERE state IN ('approved','completed') AND start_date <= $1 AND end_date >= $1
  `, date)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []payroll.VacationRequest
	for rows.Next() {
		var v payroll.VacationRequest
		var state string
		if err := rows.Scan(&v.ID, &v.EmployeeID, &v.StartDate, &v.EndDate, &state); err != nil {
			return nil, err
		}
		v.State = payroll.ApprovalState(state)
		out = append(out, v)
	}
	return out, rows.Err()
}

func (s *Store) ListGrantedLeavesOn(ctx context.Context, date time.Time) ([]payroll.LeaveRequest, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT id, employee_id, kind, reason, start_date, end_date, paid, state
    FROM leave_requests
    WHERE state IN ('approved','completed') AND start_date <= $1 AND end_date >= $1
  `, date)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []payroll.LeaveRequest
	for rows.Next() {
		var l payroll.LeaveRequest
		var state string
		if err := rows.Scan(&l.ID, &l.EmployeeID, &l.Kind, &l.Reason, &l.StartDate, &l.EndDate, &l.Paid, &state); err != nil {
			return nil, err
		}
		l.State = payroll.ApprovalState(state)
		out = append(out, l)
	}
	return out, rows.Err()
}

// InsertAttendance writes the rows in one transaction. Rows that collide with
// a mark recorded meanwhile are left alone; the count of inserted rows is
// returned.
func (s *Store) InsertAttendance(ctx context.Context, rows []payroll.AttendanceDay) (int, error) {
	inserted := 0
	err := db.WithTx(ctx, s.DB, func(tx pgx.Tx) error {
		for _, r := range rows {
			var justification *string
			if r.Justification != "" {
				value := string(r.Justification)
				justification = &value
			}
			tag, err := tx.Exec(ctx, `
        INSERT INTO attendance_days (employee_id, date, present, note, justification)
        VALUES ($1,$2,$3,$4,$5)
        ON CONFLICT (employee_id, date) DO NOTHING
      `, r.EmployeeID, r.Date, r.Present, r.Note, justification)
			if err != nil {
				return err
			}
			inserted += int(tag.RowsAffected())
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return inserted, nil
}
