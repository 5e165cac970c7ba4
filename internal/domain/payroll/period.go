package payroll

import (
	"fmt"
	"time"
)

// Period is a calendar month, rendered as YYYY-MM.
type Period struct {
	Year  int
	Month time.Month
}

func NewPeriod(year int, month time.Month) (Period, error) {
	p := Period{Year: year, Month: month}
	if err := p.Validate(); err != nil {
		return Period{}, err
	}
	return p, nil
}

func PeriodOf(t time.Time) Period {
	return Period{Year: t.Year(), Month: t.Month()}
}

func ParsePeriod(value string) (Period, error) {
	t, err := time.Parse("2006-01", value)
	if err != nil {
		return Period{}, &ValidationError{Field: "period", Reason: fmt.Sprintf("%q is not YYYY-MM", value)}
	}
	return PeriodOf(t), nil
}

func (p Period) Validate() error {
	if p.Year < 1900 || p.Year > 9999 {
		return &ValidationError{Field: "year", Reason: "out of range"}
	}
	if p.Month < time.January || p.Month > time.December {
		return &ValidationError{Field: "month", Reason: "must be 1-12"}
	}
	return nil
}

func (p Period) String() string {
	return fmt.Sprintf("%04d-%02d", p.Year, int(p.Month))
}

func (p Period) Start() time.Time {
	return time.Date(p.Year, p.Month, 1, 0, 0, 0, 0, time.UTC)
}

func (p Period) End() time.Time {
	return p.Start().AddDate(0, 1, -1)
}

func (p Period) Contains(t time.Time) bool {
	d := Date(t)
	return !d.Before(p.Start()) && !d.After(p.End())
}

func (p Period) Next() Period {
	return PeriodOf(p.Start().AddDate(0, 1, 0))
}

func (p Period) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

func (p *Period) UnmarshalText(text []byte) error {
	parsed, err := ParsePeriod(string(text))
	if err != nil {
		return err
	}
	*p = parsed
	return nil
}

// Date truncates t to midnight UTC of its calendar day.
func Date(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// DaysInclusive counts calendar days from start to end, both included.
// It is zero or negative when end precedes start.
func DaysInclusive(start, end time.Time) int {
	return int(Date(end).Sub(Date(start))/(24*time.Hour)) + 1
}

func yearStart(year int) time.Time {
	return time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
}

func yearEnd(year int) time.Time {
	return time.Date(year, time.December, 31, 0, 0, 0, 0, time.UTC)
}

func maxDate(a, b time.Time) time.Time {
	if a.After(b) {
		return a
	}
	return b
}

func minDate(a, b time.Time) time.Time {
	if a.Before(b) {
		return a
	}
	return b
}
