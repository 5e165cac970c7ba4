package leave

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rrhh/internal/domain/payroll"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestPlanLeaveDiscountsCrossMonth(t *testing.T) {
	req := payroll.LeaveRequest{ID: "l1", EmployeeID: "e1", StartDate: day(2024, 1, 28), EndDate: day(2024, 2, 3)}
	discounts, err := PlanLeaveDiscounts(req, decimal.NewFromInt(3000000))
	require.NoError(t, err)
	require.Len(t, discounts, 2)

	assert.Equal(t, payroll.Period{Year: 2024, Month: time.January}, discounts[0].Period)
	assert.Equal(t, 4, discounts[0].Days)
	assert.True(t, discounts[0].Amount.Equal(decimal.NewFromInt(400000)))
	assert.Equal(t, payroll.Period{Year: 2024, Month: time.February}, discounts[1].Period)
	assert.Equal(t, 3, discounts[1].Days)
	assert.True(t, discounts[1].Amount.Equal(decimal.NewFromInt(300000)))

	for _, d := range discounts {
		assert.Equal(t, payroll.OriginLeave, d.Origin)
		assert.Equal(t, "l1", d.SourceID)
		assert.Equal(t, "e1", d.EmployeeID)
		assert.True(t, d.Active)
	}
}

func TestPlanLeaveDiscountsPaidLeave(t *testing.T) {
	req := payroll.LeaveRequest{ID: "l1", Paid: true, StartDate: day(2024, 1, 28), EndDate: day(2024, 2, 3)}
	discounts, err := PlanLeaveDiscounts(req, decimal.NewFromInt(3000000))
	require.NoError(t, err)
	assert.Empty(t, discounts)
}

func TestPlanLeaveDiscountsInvertedRange(t *testing.T) {
	req := payroll.LeaveRequest{StartDate: day(2024, 2, 3), EndDate: day(2024, 1, 28)}
	_, err := PlanLeaveDiscounts(req, decimal.NewFromInt(3000000))
	require.ErrorIs(t, err, payroll.ErrValidation)
}

func TestPlanSuspensionDiscounts(t *testing.T) {
	s := Sanction{ID: "s1", EmployeeID: "e1", Kind: SanctionSuspension, Date: day(2024, 3, 30), DurationDays: 5}
	discounts, err := PlanSuspensionDiscounts(s, decimal.NewFromInt(2400000))
	require.NoError(t, err)
	require.Len(t, discounts, 2)
	assert.Equal(t, 2, discounts[0].Days)
	assert.Equal(t, 3, discounts[1].Days)
	assert.True(t, discounts[0].Amount.Equal(decimal.NewFromInt(160000)))
	assert.True(t, discounts[1].Amount.Equal(decimal.NewFromInt(240000)))
	assert.Equal(t, payroll.OriginSuspension, discounts[1].Origin)

	start, end := SuspensionRange(s.Date, 1)
	assert.True(t, start.Equal(end))
}

func TestPlanSuspensionDiscountsOnlyForSuspensions(t *testing.T) {
	for _, s := range []Sanction{
		{Kind: SanctionWarning, Date: day(2024, 3, 1), DurationDays: 3},
		{Kind: SanctionFine, Date: day(2024, 3, 1), Amount: decimal.NewFromInt(50000)},
		{Kind: SanctionSuspension, Date: day(2024, 3, 1)},
	} {
		discounts, err := PlanSuspensionDiscounts(s, decimal.NewFromInt(2400000))
		require.NoError(t, err)
		assert.Empty(t, discounts, "kind %s", s.Kind)
	}
}

func TestValidateSanction(t *testing.T) {
	valid := Sanction{EmployeeID: "e1", Kind: SanctionSuspension, Date: day(2024, 3, 1), DurationDays: 2}
	require.NoError(t, validateSanction(valid))

	cases := map[string]func(*Sanction){
		"employee": func(s *Sanction) { s.EmployeeID = " " },
		"kind":     func(s *Sanction) { s.Kind = "reprimand" },
		"date":     func(s *Sanction) { s.Date = time.Time{} },
		"duration": func(s *Sanction) { s.DurationDays = -1 },
		"amount":   func(s *Sanction) { s.Amount = decimal.NewFromInt(-1) },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			s := valid
			mutate(&s)
			require.ErrorIs(t, validateSanction(s), payroll.ErrValidation)
		})
	}
}
