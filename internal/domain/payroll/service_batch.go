package payroll

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
)

type OutcomeStatus string

const (
	OutcomeGenerated OutcomeStatus = "generated"
	OutcomeSkipped   OutcomeStatus = "skipped"
	OutcomeFailed    OutcomeStatus = "failed"
)

type Outcome struct {
	EmployeeID   string          `json:"employeeId"`
	EmployeeName string          `json:"employeeName"`
	Status       OutcomeStatus   `json:"status"`
	SettlementID string          `json:"settlementId,omitempty"`
	Gross        decimal.Decimal `json:"gross"`
	Net          decimal.Decimal `json:"net"`
	Reason       string          `json:"reason,omitempty"`
	Warnings     []Warning       `json:"warnings,omitempty"`
}

// BatchReport summarizes a run over many employees. One employee's failure
// never aborts the others.
type BatchReport struct {
	Kind       SettlementKind  `json:"kind"`
	Period     string          `json:"period"`
	Generated  int             `json:"generated"`
	Skipped    int             `json:"skipped"`
	Failed     int             `json:"failed"`
	TotalGross decimal.Decimal `json:"totalGross"`
	TotalNet   decimal.Decimal `json:"totalNet"`
	Outcomes   []Outcome       `json:"outcomes"`
}

func (r *BatchReport) add(o Outcome) {
	switch o.Status {
	case OutcomeGenerated:
		r.Generated++
		r.TotalGross = r.TotalGross.Add(o.Gross)
		r.TotalNet = r.TotalNet.Add(o.Net)
	case OutcomeSkipped:
		r.Skipped++
	default:
		r.Failed++
	}
	r.Outcomes = append(r.Outcomes, o)
}

func (r *BatchReport) sortOutcomes() {
	sort.SliceStable(r.Outcomes, func(i, j int) bool {
		if r.Outcomes[i].EmployeeName != r.Outcomes[j].EmployeeName {
			return r.Outcomes[i].EmployeeName < r.Outcomes[j].EmployeeName
		}
		return r.Outcomes[i].EmployeeID < r.Outcomes[j].EmployeeID
	})
}

func classify(err error) (OutcomeStatus, string) {
	switch {
	case errors.Is(err, ErrDuplicateSettlement):
		return OutcomeSkipped, "duplicate"
	case errors.Is(err, ErrNoDaysWorked):
		return OutcomeSkipped, "no days worked"
	}
	return OutcomeFailed, err.Error()
}

// runBatch fans fn out over employees with bounded concurrency. Only context
// cancellation stops the run early.
func (s *Service) runBatch(ctx context.Context, report *BatchReport, employees []Employee, fn func(context.Context, Employee) (Settlement, error)) error {
	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.cfg.Workers)

	for _, emp := range employees {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			outcome := Outcome{EmployeeID: emp.ID, EmployeeName: emp.FullName()}
			settlement, err := fn(gctx, emp)
			if err != nil {
				outcome.Status, outcome.Reason = classify(err)
				if outcome.Status == OutcomeFailed {
					slog.Warn("batch settlement failed", "kind", report.Kind, "period", report.Period, "employeeId", emp.ID, "err", err)
				}
			} else {
				outcome.Status = OutcomeGenerated
				outcome.SettlementID = settlement.ID
				outcome.Gross = settlement.Gross
				outcome.Net = settlement.Net
				outcome.Warnings = settlement.Warnings
			}
			mu.Lock()
			report.add(outcome)
			mu.Unlock()
			return nil
		})
	}
	err := g.Wait()
	report.sortOutcomes()
	return err
}

// RunOrdinaryBatch settles every active employee for the period.
func (s *Service) RunOrdinaryBatch(ctx context.Context, period Period) (BatchReport, error) {
	if err := period.Validate(); err != nil {
		return BatchReport{}, err
	}
	employees, err := s.store.ListActiveEmployees(ctx)
	if err != nil {
		return BatchReport{}, fmt.Errorf("list employees: %w", err)
	}

	report := BatchReport{Kind: KindOrdinary, Period: period.String(), Outcomes: []Outcome{}}
	err = s.runBatch(ctx, &report, employees, func(ctx context.Context, emp Employee) (Settlement, error) {
		return s.GenerateOrdinary(ctx, emp.ID, period)
	})
	slog.Info("ordinary payroll run finished", "period", report.Period, "generated", report.Generated, "skipped", report.Skipped, "failed", report.Failed)
	return report, err
}

// RunAguinaldoBatch creates the 13th-month settlement of every active
// employee. Employees with a bonus already on record are skipped.
func (s *Service) RunAguinaldoBatch(ctx context.Context, year int, cutoff time.Time) (BatchReport, error) {
	if year < 1900 || year > 9999 {
		return BatchReport{}, &ValidationError{Field: "year", Reason: "out of range"}
	}
	if !cutoff.IsZero() && cutoff.Year() != year {
		return BatchReport{}, &ValidationError{Field: "cutoff", Reason: "must fall within the bonus year"}
	}
	employees, err := s.store.ListActiveEmployees(ctx)
	if err != nil {
		return BatchReport{}, fmt.Errorf("list employees: %w", err)
	}

	report := BatchReport{
		Kind:     KindAguinaldo,
		Period:   AguinaldoPeriod(year, cutoff).String(),
		Outcomes: []Outcome{},
	}
	err = s.runBatch(ctx, &report, employees, func(ctx context.Context, emp Employee) (Settlement, error) {
		return s.GenerateAguinaldo(ctx, emp.ID, year, cutoff)
	})
	slog.Info("aguinaldo run finished", "year", year, "generated", report.Generated, "skipped", report.Skipped, "failed", report.Failed)
	return report, err
}

type PreviewRow struct {
	Employee   Employee    `json:"employee"`
	Settlement *Settlement `json:"settlement,omitempty"`
	Existing   bool        `json:"existing"`
	Error      string      `json:"error,omitempty"`
}

type Preview struct {
	Period            string          `json:"period"`
	EmployeeCount     int             `json:"employeeCount"`
	TotalGross        decimal.Decimal `json:"totalGross"`
	TotalDiscounts    decimal.Decimal `json:"totalDiscounts"`
	TotalContribution decimal.Decimal `json:"totalContribution"`
	TotalNet          decimal.Decimal `json:"totalNet"`
	Rows              []PreviewRow    `json:"rows"`
}

// PreviewOrdinary computes the period for all active employees without
// persisting anything. Employees already settled show their stored result.
func (s *Service) PreviewOrdinary(ctx context.Context, period Period) (Preview, error) {
	if err := period.Validate(); err != nil {
		return Preview{}, err
	}
	employees, err := s.store.ListActiveEmployees(ctx)
	if err != nil {
		return Preview{}, fmt.Errorf("list employees: %w", err)
	}

	preview := Preview{Period: period.String(), Rows: make([]PreviewRow, 0, len(employees))}
	for _, emp := range employees {
		row := PreviewRow{Employee: emp}
		existing, found, err := s.store.FindSettlement(ctx, emp.ID, period, KindOrdinary)
		switch {
		case err != nil:
			return Preview{}, err
		case found:
			row.Existing = true
			row.Settlement = &existing
		default:
			result, err := s.computeOrdinary(ctx, emp, period)
			if err != nil {
				if !errors.Is(err, ErrValidation) {
					return Preview{}, err
				}
				row.Error = err.Error()
			} else {
				row.Settlement = &result.Settlement
			}
		}

		if row.Settlement != nil {
			preview.EmployeeCount++
			preview.TotalGross = preview.TotalGross.Add(row.Settlement.Gross)
			preview.TotalDiscounts = preview.TotalDiscounts.Add(row.Settlement.DiscountsTotal)
			preview.TotalContribution = preview.TotalContribution.Add(row.Settlement.Contribution)
			preview.TotalNet = preview.TotalNet.Add(row.Settlement.Net)
		}
		preview.Rows = append(preview.Rows, row)
	}
	return preview, nil
}
