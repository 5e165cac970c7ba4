package vacation

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"rrhh/internal/domain/payroll"
	"rrhh/internal/platform/querier"
)

// Store reads employees and vacation requests through the payroll store and
// owns the ledger writes.
type Store struct {
	*payroll.Store
}

func NewStore(db querier.TxQuerier) *Store {
	return &Store{Store: payroll.NewStore(db)}
}

func (s *Store) GetLedger(ctx context.Context, employeeID string, year int) (payroll.VacationLedger, bool, error) {
	return s.GetVacationLedger(ctx, employeeID, year)
}

func (s *Store) CreateLedger(ctx context.Context, l payroll.VacationLedger) (bool, error) {
	var id string
	err := s.DB.QueryRow(ctx, `
    INSERT INTO vacation_ledgers (employee_id, year, entitled, carried, taken, pending, state)
    VALUES ($1,$2,$3,$4,$5,$6,$7)
    ON CONFLICT (employee_id, year) DO NOTHING
    RETURNING id
  `, l.EmployeeID, l.Year, l.Entitled, l.Carried, l.Taken, l.Pending, string(l.State)).Scan(&id)
	if errors.Is(err, pgx.ErrNoRows) {
		return false, nil
	}
	return err == nil, err
}

func (s *Store) UpdateLedger(ctx context.Context, l payroll.VacationLedger) error {
	_, err := s.DB.Exec(ctx, `
    UPDATE vacation_ledgers
    SET entitled = $1, pending = $2, updated_at = now()
    WHERE employee_id::text = $3 AND year = $4
  `, l.Entitled, l.Pending, l.EmployeeID, l.Year)
	return err
}
