package payroll

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/singleflight"

	"rrhh/internal/domain/audit"
)

type Recorder interface {
	SettlementGenerated(kind string)
	SettlementSkipped(kind string)
	SettlementFailed(kind string)
}

type Auditor interface {
	Record(ctx context.Context, entry audit.Entry) error
}

type Config struct {
	ContributionRate          decimal.Decimal
	BonusContributionRate     decimal.Decimal
	SeveranceContributionRate decimal.Decimal
	FallbackMinimumWage       decimal.Decimal
	Workers                   int
}

func (c Config) withDefaults() Config {
	if c.ContributionRate.IsZero() {
		c.ContributionRate = DefaultContributionRate
	}
	if c.BonusContributionRate.IsZero() {
		c.BonusContributionRate = DefaultBonusContributionRate
	}
	if c.SeveranceContributionRate.IsZero() {
		c.SeveranceContributionRate = DefaultSeveranceContributionRate
	}
	if c.FallbackMinimumWage.IsZero() {
		c.FallbackMinimumWage = DefaultFallbackMinimumWage
	}
	if c.Workers <= 0 {
		c.Workers = 4
	}
	return c
}

type Service struct {
	store   StoreAPI
	cfg     Config
	metrics Recorder
	audit   Auditor
	flight  singleflight.Group
	now     func() time.Time
}

func NewService(store StoreAPI, cfg Config, metrics Recorder, auditor Auditor) *Service {
	return &Service{
		store:   store,
		cfg:     cfg.withDefaults(),
		metrics: metrics,
		audit:   auditor,
		now:     time.Now,
	}
}

func flightKey(kind SettlementKind, employeeID, scope string) string {
	return string(kind) + "|" + employeeID + "|" + scope
}

// GenerateOrdinary computes and persists one ordinary settlement. Concurrent
// calls for the same employee and period share a single run.
func (s *Service) GenerateOrdinary(ctx context.Context, employeeID string, period Period) (Settlement, error) {
	v, err, _ := s.flight.Do(flightKey(KindOrdinary, employeeID, period.String()), func() (any, error) {
		return s.generateOrdinary(ctx, employeeID, period)
	})
	if err != nil {
		s.countFailure(KindOrdinary, err)
		return Settlement{}, err
	}
	return v.(Settlement), nil
}

func (s *Service) generateOrdinary(ctx context.Context, employeeID string, period Period) (Settlement, error) {
	if err := period.Validate(); err != nil {
		return Settlement{}, err
	}
	emp, err := s.store.GetEmployee(ctx, employeeID)
	if err != nil {
		return Settlement{}, err
	}
	if existing, found, err := s.store.FindSettlement(ctx, employeeID, period, KindOrdinary); err != nil {
		return Settlement{}, err
	} else if found {
		return Settlement{}, &DuplicateSettlementError{EmployeeID: employeeID, Period: period, Kind: KindOrdinary, ExistingID: existing.ID}
	}

	result, err := s.computeOrdinary(ctx, emp, period)
	if err != nil {
		return Settlement{}, err
	}

	settlement := result.Settlement
	id, err := s.store.SaveOrdinary(ctx, settlement, result.Applied)
	if err != nil {
		return Settlement{}, err
	}
	settlement.ID = id
	settlement.CreatedAt = s.now()

	s.logWarnings(settlement)
	s.metricGenerated(KindOrdinary)
	s.record(ctx, "settlement.ordinary.generated", settlement.ID, map[string]any{
		"employeeId": employeeID,
		"period":     period.String(),
		"net":        settlement.Net.StringFixed(2),
		"applied":    result.Applied,
	})
	slog.Info("ordinary settlement generated", "employeeId", employeeID, "period", period.String(), "settlementId", id, "net", settlement.Net.StringFixed(2))
	return settlement, nil
}

func (s *Service) computeOrdinary(ctx context.Context, emp Employee, period Period) (OrdinaryResult, error) {
	attendance, err := s.store.ListAttendance(ctx, emp.ID, period)
	if err != nil {
		return OrdinaryResult{}, fmt.Errorf("load attendance: %w", err)
	}
	incomes, err := s.store.ListIncomes(ctx, emp.ID, period.Year)
	if err != nil {
		return OrdinaryResult{}, fmt.Errorf("load incomes: %w", err)
	}
	overtime, err := s.store.ListOvertime(ctx, emp.ID, period)
	if err != nil {
		return OrdinaryResult{}, fmt.Errorf("load overtime: %w", err)
	}
	discounts, err := s.store.ListDiscounts(ctx, emp.ID, period)
	if err != nil {
		return OrdinaryResult{}, fmt.Errorf("load discounts: %w", err)
	}
	advances, err := s.store.ListAdvances(ctx, emp.ID, period)
	if err != nil {
		return OrdinaryResult{}, fmt.Errorf("load advances: %w", err)
	}
	dependents, err := s.store.ListDependents(ctx, emp.ID)
	if err != nil {
		return OrdinaryResult{}, fmt.Errorf("load dependents: %w", err)
	}
	wages, err := s.store.ListMinimumWages(ctx)
	if err != nil {
		return OrdinaryResult{}, fmt.Errorf("load minimum wages: %w", err)
	}

	return ComputeOrdinary(OrdinaryInput{
		Employee:            emp,
		Period:              period,
		Attendance:          attendance,
		Incomes:             incomes,
		Overtime:            overtime,
		Discounts:           discounts,
		Advances:            advances,
		Dependents:          dependents,
		MinimumWages:        wages,
		FallbackMinimumWage: s.cfg.FallbackMinimumWage,
		ContributionRate:    s.cfg.ContributionRate,
	})
}

// GenerateAguinaldo creates the employee's 13th-month settlement for year.
// A zero cutoff means December 31.
func (s *Service) GenerateAguinaldo(ctx context.Context, employeeID string, year int, cutoff time.Time) (Settlement, error) {
	v, err, _ := s.flight.Do(flightKey(KindAguinaldo, employeeID, fmt.Sprint(year)), func() (any, error) {
		return s.generateAguinaldo(ctx, employeeID, year, cutoff)
	})
	if err != nil {
		s.countFailure(KindAguinaldo, err)
		return Settlement{}, err
	}
	return v.(Settlement), nil
}

func (s *Service) generateAguinaldo(ctx context.Context, employeeID string, year int, cutoff time.Time) (Settlement, error) {
	emp, err := s.store.GetEmployee(ctx, employeeID)
	if err != nil {
		return Settlement{}, err
	}
	period := AguinaldoPeriod(year, cutoff)
	exists, err := s.store.HasAguinaldo(ctx, employeeID, year)
	if err != nil {
		return Settlement{}, err
	}
	if exists {
		return Settlement{}, &DuplicateSettlementError{EmployeeID: employeeID, Period: period, Kind: KindAguinaldo}
	}

	if cutoff.IsZero() {
		cutoff = yearEnd(year)
	}
	if DaysWorkedInYear(emp, year, cutoff) <= 0 {
		return Settlement{}, ErrNoDaysWorked
	}
	settlements, err := s.store.ListSettlementsForYear(ctx, employeeID, year)
	if err != nil {
		return Settlement{}, fmt.Errorf("load settlements: %w", err)
	}
	incomes, err := s.store.ListIncomes(ctx, employeeID, year)
	if err != nil {
		return Settlement{}, fmt.Errorf("load incomes: %w", err)
	}

	res, err := ComputeAguinaldo(AguinaldoInput{
		Employee:         emp,
		Year:             year,
		Cutoff:           cutoff,
		Settlements:      settlements,
		Incomes:          incomes,
		ContributionRate: s.cfg.BonusContributionRate,
	})
	if err != nil {
		return Settlement{}, err
	}

	settlement := AguinaldoSettlement(emp, period, res)
	id, err := s.store.SaveSettlement(ctx, settlement)
	if err != nil {
		return Settlement{}, err
	}
	settlement.ID = id
	settlement.CreatedAt = s.now()

	s.metricGenerated(KindAguinaldo)
	s.record(ctx, "settlement.aguinaldo.generated", id, map[string]any{
		"employeeId": employeeID,
		"year":       year,
		"method":     res.Method,
		"gross":      res.Gross.StringFixed(2),
	})
	slog.Info("aguinaldo settlement generated", "employeeId", employeeID, "year", year, "method", res.Method, "settlementId", id)
	return settlement, nil
}

type TerminateRequest struct {
	EmployeeID string          `json:"employeeId"`
	Type       TerminationType `json:"type"`
	Cause      string          `json:"cause"`
	Date       time.Time       `json:"date"`
}

// Terminate settles a termination and, in the same transaction, records it
// and marks the employee inactive. A second termination is rejected.
func (s *Service) Terminate(ctx context.Context, req TerminateRequest) (SeveranceResult, error) {
	v, err, _ := s.flight.Do(flightKey(KindSeverance, req.EmployeeID, ""), func() (any, error) {
		return s.terminate(ctx, req)
	})
	if err != nil {
		s.countFailure(KindSeverance, err)
		return SeveranceResult{}, err
	}
	return v.(SeveranceResult), nil
}

func (s *Service) terminate(ctx context.Context, req TerminateRequest) (SeveranceResult, error) {
	emp, err := s.store.GetEmployee(ctx, req.EmployeeID)
	if err != nil {
		return SeveranceResult{}, err
	}
	if existing, found, err := s.store.FindTermination(ctx, emp.ID); err != nil {
		return SeveranceResult{}, err
	} else if found {
		return SeveranceResult{}, &DuplicateSettlementError{EmployeeID: emp.ID, Period: PeriodOf(existing.Date), Kind: KindSeverance, ExistingID: existing.SettlementID}
	}
	if emp.TerminationDate != nil {
		return SeveranceResult{}, &DuplicateSettlementError{EmployeeID: emp.ID, Period: PeriodOf(*emp.TerminationDate), Kind: KindSeverance}
	}

	date := Date(req.Date)
	settlements, err := s.store.ListSettlementsForYear(ctx, emp.ID, date.Year())
	if err != nil {
		return SeveranceResult{}, fmt.Errorf("load settlements: %w", err)
	}
	incomes, err := s.store.ListIncomes(ctx, emp.ID, date.Year())
	if err != nil {
		return SeveranceResult{}, fmt.Errorf("load incomes: %w", err)
	}
	var priorLedger *VacationLedger
	if ledger, found, err := s.store.GetVacationLedger(ctx, emp.ID, date.Year()-1); err != nil {
		return SeveranceResult{}, fmt.Errorf("load vacation ledger: %w", err)
	} else if found {
		priorLedger = &ledger
	}
	vacations, err := s.store.ListVacations(ctx, emp.ID)
	if err != nil {
		return SeveranceResult{}, fmt.Errorf("load vacations: %w", err)
	}

	res, err := ComputeSeverance(SeveranceInput{
		Employee:         emp,
		Type:             req.Type,
		Cause:            req.Cause,
		Date:             date,
		Settlements:      settlements,
		Incomes:          incomes,
		PriorLedger:      priorLedger,
		Vacations:        vacations,
		ContributionRate: s.cfg.SeveranceContributionRate,
	})
	if err != nil {
		return SeveranceResult{}, err
	}

	res.Termination, res.Settlement, err = s.store.SaveSeverance(ctx, res.Termination, res.Settlement)
	if err != nil {
		return SeveranceResult{}, err
	}

	s.metricGenerated(KindSeverance)
	s.record(ctx, "employee.terminated", res.Settlement.ID, map[string]any{
		"employeeId":    emp.ID,
		"terminationId": res.Termination.ID,
		"type":          req.Type,
		"date":          date.Format(time.DateOnly),
		"net":           res.Net.StringFixed(2),
	})
	slog.Info("employee terminated", "employeeId", emp.ID, "type", req.Type, "settlementId", res.Settlement.ID)
	return res, nil
}

func (s *Service) ListPeriodSettlements(ctx context.Context, period Period, kind SettlementKind) ([]SettlementRow, error) {
	if err := period.Validate(); err != nil {
		return nil, err
	}
	if kind != "" && !kind.Valid() {
		return nil, &ValidationError{Field: "kind", Reason: fmt.Sprintf("unknown settlement kind %q", kind)}
	}
	return s.store.ListPeriodSettlements(ctx, period, kind)
}

func (s *Service) GetSettlement(ctx context.Context, settlementID string) (SettlementRow, error) {
	return s.store.GetSettlement(ctx, settlementID)
}

// SeveranceStatement returns the termination and its settlement.
func (s *Service) SeveranceStatement(ctx context.Context, employeeID string) (TerminationRecord, SettlementRow, error) {
	termination, found, err := s.store.FindTermination(ctx, employeeID)
	if err != nil {
		return TerminationRecord{}, SettlementRow{}, err
	}
	if !found || termination.SettlementID == "" {
		return TerminationRecord{}, SettlementRow{}, ErrSettlementNotFound
	}
	row, err := s.store.GetSettlement(ctx, termination.SettlementID)
	if err != nil {
		return TerminationRecord{}, SettlementRow{}, err
	}
	return termination, row, nil
}

func (s *Service) logWarnings(settlement Settlement) {
	for _, w := range settlement.Warnings {
		slog.Warn("settlement data warning",
			"employeeId", settlement.EmployeeID,
			"period", settlement.Period.String(),
			"kind", settlement.Kind,
			"code", w.Code,
			"message", w.Message,
		)
	}
}

func (s *Service) record(ctx context.Context, action, entityID string, detail any) {
	if s.audit == nil {
		return
	}
	err := s.audit.Record(ctx, audit.Entry{
		Action:     action,
		Module:     audit.ModulePayroll,
		EntityType: "settlement",
		EntityID:   entityID,
		Detail:     detail,
	})
	if err != nil {
		slog.Warn("audit record failed", "action", action, "entityId", entityID, "err", err)
	}
}

func (s *Service) metricGenerated(kind SettlementKind) {
	if s.metrics != nil {
		s.metrics.SettlementGenerated(string(kind))
	}
}

func (s *Service) countFailure(kind SettlementKind, err error) {
	if s.metrics == nil {
		return
	}
	if errors.Is(err, ErrDuplicateSettlement) || errors.Is(err, ErrNoDaysWorked) {
		s.metrics.SettlementSkipped(string(kind))
		return
	}
	s.metrics.SettlementFailed(string(kind))
}
