package leave

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"

	"rrhh/internal/domain/payroll"
	"rrhh/internal/platform/db"
)

func (s *Store) GetEmployee(ctx context.Context, employeeID string) (payroll.Employee, error) {
	emp, err := payroll.ScanEmployee(s.DB.QueryRow(ctx, payroll.EmployeeSelect+" WHERE e.id::text = $1", employeeID))
	if errors.Is(err, pgx.ErrNoRows) {
		return payroll.Employee{}, payroll.ErrEmployeeNotFound
	}
	return emp, err
}

const leaveColumns = `id, employee_id, kind, reason, start_date, end_date, paid, state`

func scanLeave(row pgx.Row) (payroll.LeaveRequest, error) {
	var l payroll.LeaveRequest
	var state string
	if err := row.Scan(&l.ID, &l.EmployeeID, &l.Kind, &l.Reason, &l.StartDate, &l.EndDate, &l.Paid, &state); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return payroll.LeaveRequest{}, ErrLeaveNotFound
		}
		return payroll.LeaveRequest{}, err
	}
	l.State = payroll.ApprovalState(state)
	return l, nil
}

func (s *Store) GetLeaveRequest(ctx context.Context, requestID string) (payroll.LeaveRequest, error) {
	return scanLeave(s.DB.QueryRow(ctx, `SELECT `+leaveColumns+` FROM leave_requests WHERE id::text = $1`, requestID))
}

func (s *Store) ApproveLeave(ctx context.Context, requestID, actor string, discounts []payroll.ManualDiscount) ([]payroll.ManualDiscount, bool, error) {
	var out []payroll.ManualDiscount
	reused := false
	err := db.WithTx(ctx, s.DB, func(tx pgx.Tx) error {
		req, err := scanLeave(tx.QueryRow(ctx, `SELECT `+leaveColumns+` FROM leave_requests WHERE id::text = $1 FOR UPDATE`, requestID))
		if err != nil {
			return err
		}
		if req.State == payroll.StateRejected {
			return ErrInvalidState
		}
		if req.State != payroll.StateCompleted {
			if _, err := tx.Exec(ctx, `
        UPDATE leave_requests SET state = $1, decided_by = $2, decided_at = now() WHERE id = $3
      `, string(payroll.StateApproved), actor, req.ID); err != nil {
				return err
			}
		}

		existing, err := listSourceDiscounts(ctx, tx, payroll.OriginLeave, req.ID)
		if err != nil {
			return err
		}
		if len(existing) > 0 {
			out, reused = existing, true
			return nil
		}
		out, err = insertDiscounts(ctx, tx, discounts)
		return err
	})
	if err != nil {
		return nil, false, err
	}
	return out, reused, nil
}

func (s *Store) RejectLeave(ctx context.Context, requestID, actor string) error {
	tag, err := s.DB.Exec(ctx, `
    UPDATE leave_requests SET state = $1, decided_by = $2, decided_at = now()
    WHERE id::text = $3 AND state = $4
  `, string(payroll.StateRejected), actor, requestID, string(payroll.StatePending))
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		if _, err := s.GetLeaveRequest(ctx, requestID); err != nil {
			return err
		}
		return ErrInvalidState
	}
	return nil
}

func (s *Store) CreateSanction(ctx context.Context, sanction Sanction, discounts []payroll.ManualDiscount) (SanctionResult, error) {
	var res SanctionResult
	err := db.WithTx(ctx, s.DB, func(tx pgx.Tx) error {
		if err := tx.QueryRow(ctx, `
      INSERT INTO sanctions (employee_id, kind, date, duration_days, amount, reason, created_by)
      VALUES ($1,$2,$3,$4,$5,$6,$7)
      RETURNING id
    `, sanction.EmployeeID, string(sanction.Kind), sanction.Date, sanction.DurationDays, sanction.Amount, sanction.Reason, sanction.CreatedBy).Scan(&sanction.ID); err != nil {
			return err
		}
		for i := range discounts {
			discounts[i].SourceID = sanction.ID
		}
		inserted, err := insertDiscounts(ctx, tx, discounts)
		if err != nil {
			return err
		}
		res = SanctionResult{Sanction: sanction, Discounts: inserted}
		return nil
	})
	return res, err
}

func listSourceDiscounts(ctx context.Context, tx pgx.Tx, origin payroll.DiscountOrigin, sourceID string) ([]payroll.ManualDiscount, error) {
	rows, err := tx.Query(ctx, `
    SELECT id, employee_id, origin, COALESCE(source_id::text, ''), description, amount, period_year, period_month, days, active, applied
    FROM manual_discounts
    WHERE origin = $1 AND source_id::text = $2 AND active
    ORDER BY period_year, period_month
  `, string(origin), sourceID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []payroll.ManualDiscount
	for rows.Next() {
		var d payroll.ManualDiscount
		var o string
		var month int
		if err := rows.Scan(&d.ID, &d.EmployeeID, &o, &d.SourceID, &d.Description, &d.Amount, &d.Period.Year, &month, &d.Days, &d.Active, &d.Applied); err != nil {
			return nil, err
		}
		d.Origin = payroll.DiscountOrigin(o)
		d.Period.Month = time.Month(month)
		out = append(out, d)
	}
	return out, rows.Err()
}

func insertDiscounts(ctx context.Context, tx pgx.Tx, discounts []payroll.ManualDiscount) ([]payroll.ManualDiscount, error) {
	out := make([]payroll.ManualDiscount, 0, len(discounts))
	for _, d := range discounts {
		if err := tx.QueryRow(ctx, `
      INSERT INTO manual_discounts (employee_id, origin, source_id, description, amount, period_year, period_month, days, active)
      VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
      RETURNING id
    `, d.EmployeeID, string(d.Origin), nullIfEmpty(d.SourceID), d.Description, d.Amount, d.Period.Year, int(d.Period.Month), d.Days, d.Active).Scan(&d.ID); err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, nil
}

func nullIfEmpty(v string) *string {
	if v == "" {
		return nil
	}
	return &v
}
