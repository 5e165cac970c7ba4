package db

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"rrhh/internal/platform/querier"
)

type minimumWageSeed struct {
	ValidFrom time.Time
	ValidTo   *time.Time
	Amount    decimal.Decimal
}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func datePtr(y int, m time.Month, d int) *time.Time {
	t := date(y, m, d)
	return &t
}

// Legal monthly minimum wage history (guaraníes).
var minimumWageHistory = []minimumWageSeed{
	{ValidFrom: date(2022, time.July, 1), ValidTo: datePtr(2023, time.June, 30), Amount: decimal.NewFromInt(2550307)},
	{ValidFrom: date(2023, time.July, 1), ValidTo: datePtr(2024, time.June, 30), Amount: decimal.NewFromInt(2680373)},
	{ValidFrom: date(2024, time.July, 1), ValidTo: datePtr(2025, time.June, 30), Amount: decimal.NewFromInt(2798309)},
	{ValidFrom: date(2025, time.July, 1), Amount: decimal.NewFromInt(2899048)},
}

// Seed loads reference data that payroll cannot run without. It is safe to
// call repeatedly.
func Seed(ctx context.Context, q querier.Querier) error {
	for _, wage := range minimumWageHistory {
		if _, err := q.Exec(ctx, `
    INSERT INTO minimum_wages (valid_from, valid_to, amount)
    VALUES ($1,$2,$3)
    ON CONFLICT (valid_from) DO NOTHING
  `, wage.ValidFrom, wage.ValidTo, wage.Amount); err != nil {
			return err
		}
	}
	return nil
}
