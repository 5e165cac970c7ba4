package payroll

import (
	"time"

	"github.com/shopspring/decimal"
)

type Segment struct {
	Period Period          `json:"period"`
	Start  time.Time       `json:"start"`
	End    time.Time       `json:"end"`
	Days   int             `json:"days"`
	Amount decimal.Decimal `json:"amount"`
}

// SplitByMonth partitions [start, end] into one segment per calendar month
// so each discount lands in the month it belongs to.
func SplitByMonth(start, end time.Time, dailyRate decimal.Decimal) ([]Segment, error) {
	start, end = Date(start), Date(end)
	if start.After(end) {
		return nil, &ValidationError{Field: "dateRange", Reason: "start date is after end date"}
	}

	var segments []Segment
	for cursor := start; !cursor.After(end); {
		p := PeriodOf(cursor)
		segEnd := minDate(end, p.End())
		days := DaysInclusive(cursor, segEnd)
		segments = append(segments, Segment{
			Period: p,
			Start:  cursor,
			End:    segEnd,
			Days:   days,
			Amount: Round2(dailyRate.Mul(decimal.NewFromInt(int64(days)))),
		})
		cursor = p.Next().Start()
	}
	return segments, nil
}
