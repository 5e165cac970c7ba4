package vacation

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rrhh/internal/domain/payroll"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func hired(id string, hire time.Time) payroll.Employee {
	return payroll.Employee{ID: id, Code: "C-" + id, HireDate: &hire, Status: payroll.EmployeeActive}
}

func TestPlanLedgerCreateWithCarry(t *testing.T) {
	emp := hired("e1", day(2016, 6, 1))
	today := day(2024, 1, 15)

	plan := PlanLedger(LedgerInput{
		Employee: emp,
		Year:     2024,
		Today:    today,
		Previous: &payroll.VacationLedger{Year: 2023, Pending: 50},
	})
	assert.Equal(t, ActionCreate, plan.Action)
	// Tenure 7.6 years on Jan 15: 18 days, carry capped at 36.
	assert.Equal(t, 36, plan.Ledger.Carried)
	assert.Equal(t, 54, plan.Ledger.Entitled)
	assert.Equal(t, 54, plan.Ledger.Pending)
	assert.Zero(t, plan.Ledger.Taken)
	assert.Equal(t, payroll.StatePending, plan.Ledger.State)

	plan = PlanLedger(LedgerInput{Employee: emp, Year: 2024, Today: today, Previous: &payroll.VacationLedger{Pending: 5}})
	assert.Equal(t, 23, plan.Ledger.Entitled)

	plan = PlanLedger(LedgerInput{Employee: emp, Year: 2024, Today: today})
	assert.Equal(t, 18, plan.Ledger.Entitled)
	assert.Zero(t, plan.Ledger.Carried)
}

func TestPlanLedgerKeepAndUpdate(t *testing.T) {
	emp := hired("e1", day(2019, 6, 1))

	// On Jan 15 tenure is 4.6 years: 12 days.
	existing := payroll.VacationLedger{EmployeeID: "e1", Year: 2024, Entitled: 15, Carried: 3, Taken: 4, Pending: 11}
	plan := PlanLedger(LedgerInput{Employee: emp, Year: 2024, Today: day(2024, 1, 15), Existing: &existing})
	assert.Equal(t, ActionKeep, plan.Action)
	assert.Equal(t, existing, plan.Ledger)

	// By December the fifth anniversary has passed: 18 days.
	plan = PlanLedger(LedgerInput{Employee: emp, Year: 2024, Today: day(2024, 12, 1), Existing: &existing})
	assert.Equal(t, ActionUpdate, plan.Action)
	assert.Equal(t, 21, plan.Ledger.Entitled)
	assert.Equal(t, 3, plan.Ledger.Carried)
	assert.Equal(t, 17, plan.Ledger.Pending)

	overdrawn := payroll.VacationLedger{Year: 2024, Entitled: 18, Taken: 20}
	plan = PlanLedger(LedgerInput{Employee: emp, Year: 2024, Today: day(2024, 1, 15), Existing: &overdrawn})
	assert.Equal(t, ActionUpdate, plan.Action)
	assert.Zero(t, plan.Ledger.Pending)
}

func TestPlanLedgerUnknownHireDate(t *testing.T) {
	plan := PlanLedger(LedgerInput{Employee: payroll.Employee{ID: "e1"}, Year: 2024, Today: day(2024, 3, 1)})
	assert.Equal(t, 12, plan.Ledger.Entitled)
}

type key struct {
	employee string
	year     int
}

type fakeStore struct {
	employees []payroll.Employee
	ledgers   map[key]payroll.VacationLedger
	vacations []payroll.VacationRequest
	failFor   string
	raceFor   string
}

func (f *fakeStore) GetEmployee(_ context.Context, id string) (payroll.Employee, error) {
	for _, e := range f.employees {
		if e.ID == id {
			return e, nil
		}
	}
	return payroll.Employee{}, payroll.ErrEmployeeNotFound
}

func (f *fakeStore) ListActiveEmployees(context.Context) ([]payroll.Employee, error) {
	return f.employees, nil
}

func (f *fakeStore) GetLedger(_ context.Context, id string, year int) (payroll.VacationLedger, bool, error) {
	if id == f.failFor {
		return payroll.VacationLedger{}, false, errors.New("connection refused")
	}
	l, ok := f.ledgers[key{id, year}]
	return l, ok, nil
}

func (f *fakeStore) CreateLedger(_ context.Context, l payroll.VacationLedger) (bool, error) {
	if l.EmployeeID == f.raceFor {
		return false, nil
	}
	f.ledgers[key{l.EmployeeID, l.Year}] = l
	return true, nil
}

func (f *fakeStore) UpdateLedger(_ context.Context, l payroll.VacationLedger) error {
	f.ledgers[key{l.EmployeeID, l.Year}] = l
	return nil
}

func (f *fakeStore) ListVacations(_ context.Context, id string) ([]payroll.VacationRequest, error) {
	var out []payroll.VacationRequest
	for _, v := range f.vacations {
		if v.EmployeeID == id {
			out = append(out, v)
		}
	}
	return out, nil
}

func TestGenerateLedgers(t *testing.T) {
	st := &fakeStore{
		employees: []payroll.Employee{
			hired("new", day(2021, 1, 1)),
			hired("same", day(2021, 1, 1)),
			hired("grew", day(2019, 2, 1)),
			hired("broken", day(2021, 1, 1)),
			hired("racing", day(2021, 1, 1)),
		},
		ledgers: map[key]payroll.VacationLedger{
			{"new", 2023}:  {EmployeeID: "new", Year: 2023, Entitled: 12, Pending: 7},
			{"same", 2024}: {EmployeeID: "same", Year: 2024, Entitled: 12, Pending: 12},
			{"grew", 2024}: {EmployeeID: "grew", Year: 2024, Entitled: 12, Taken: 2, Pending: 10},
		},
		failFor: "broken",
		raceFor: "racing",
	}
	svc := NewService(st, nil)
	svc.now = func() time.Time { return day(2024, 6, 1) }

	report, err := svc.GenerateLedgers(context.Background(), 0, "")
	require.NoError(t, err)
	assert.Equal(t, 2024, report.Year)
	assert.Equal(t, 1, report.Created)
	assert.Equal(t, 1, report.Updated)
	assert.Equal(t, 2, report.Existing)
	require.Len(t, report.Errors, 1)
	assert.Equal(t, "broken", report.Errors[0].EmployeeID)

	created := st.ledgers[key{"new", 2024}]
	assert.Equal(t, 19, created.Entitled)
	assert.Equal(t, 7, created.Carried)

	grew := st.ledgers[key{"grew", 2024}]
	assert.Equal(t, 18, grew.Entitled)
	assert.Equal(t, 16, grew.Pending)
}

func TestGenerateLedgersSingleEmployee(t *testing.T) {
	st := &fakeStore{employees: []payroll.Employee{hired("e1", day(2021, 1, 1))}, ledgers: map[key]payroll.VacationLedger{}}
	svc := NewService(st, nil)

	report, err := svc.GenerateLedgers(context.Background(), 2024, "e1")
	require.NoError(t, err)
	assert.Equal(t, 1, report.Created)

	_, err = svc.GenerateLedgers(context.Background(), 2024, "ghost")
	require.ErrorIs(t, err, payroll.ErrEmployeeNotFound)

	_, err = svc.GenerateLedgers(context.Background(), 20240, "")
	require.ErrorIs(t, err, payroll.ErrValidation)
}

func TestBalance(t *testing.T) {
	st := &fakeStore{
		employees: []payroll.Employee{hired("e1", day(2018, 2, 1))},
		vacations: []payroll.VacationRequest{
			{EmployeeID: "e1", StartDate: day(2022, 12, 26), EndDate: day(2022, 12, 30), State: payroll.StateApproved},
			{EmployeeID: "e1", StartDate: day(2024, 2, 5), EndDate: day(2024, 2, 9), State: payroll.StateCompleted},
			{EmployeeID: "e2", StartDate: day(2024, 2, 5), EndDate: day(2024, 2, 9), State: payroll.StateCompleted},
		},
	}
	svc := NewService(st, nil)

	balance, err := svc.Balance(context.Background(), "e1", day(2024, 5, 10))
	require.NoError(t, err)
	require.Len(t, balance.Years, 3)
	assert.Equal(t, 48, balance.TotalEntitled)
	assert.Equal(t, 10, balance.TotalTaken)
	assert.Equal(t, 38, balance.Pending)
	assert.Equal(t, 7, balance.ExpiringSoon)

	_, err = svc.Balance(context.Background(), "ghost", time.Time{})
	require.ErrorIs(t, err, payroll.ErrEmployeeNotFound)
}
