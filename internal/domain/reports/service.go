package reports

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"rrhh/internal/domain/audit"
	"rrhh/internal/domain/payroll"
)

var ErrEmptyRegister = errors.New("no settlements in period")

// Source reads the settlements the documents print.
type Source interface {
	GetSettlement(ctx context.Context, settlementID string) (payroll.SettlementRow, error)
	ListPeriodSettlements(ctx context.Context, period payroll.Period, kind payroll.SettlementKind) ([]payroll.SettlementRow, error)
	SeveranceStatement(ctx context.Context, employeeID string) (payroll.TerminationRecord, payroll.SettlementRow, error)
}

type Service struct {
	source  Source
	company Company
	audit   payroll.Auditor
	now     func() time.Time
}

func NewService(source Source, company Company, auditor payroll.Auditor) *Service {
	return &Service{source: source, company: company, audit: auditor, now: time.Now}
}

// Receipt renders the receipt of one settlement of any kind.
func (s *Service) Receipt(ctx context.Context, settlementID string) ([]byte, error) {
	row, err := s.source.GetSettlement(ctx, settlementID)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := Receipt(&buf, s.company, row, s.now()); err != nil {
		return nil, fmt.Errorf("render receipt: %w", err)
	}
	s.record(ctx, "report.receipt.downloaded", "settlement", settlementID)
	return buf.Bytes(), nil
}

// Register renders the ordinary settlements of a period.
func (s *Service) Register(ctx context.Context, period payroll.Period) ([]byte, error) {
	if err := period.Validate(); err != nil {
		return nil, err
	}
	rows, err := s.source.ListPeriodSettlements(ctx, period, payroll.KindOrdinary)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrEmptyRegister, period)
	}
	var buf bytes.Buffer
	if err := Register(&buf, s.company, period, rows, s.now()); err != nil {
		return nil, fmt.Errorf("render register: %w", err)
	}
	s.record(ctx, "report.register.downloaded", "period", period.String())
	return buf.Bytes(), nil
}

func (s *Service) Severance(ctx context.Context, employeeID string) ([]byte, error) {
	termination, row, err := s.source.SeveranceStatement(ctx, employeeID)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := SeveranceStatement(&buf, s.company, termination, row, s.now()); err != nil {
		return nil, fmt.Errorf("render severance statement: %w", err)
	}
	s.record(ctx, "report.severance.downloaded", "employee", employeeID)
	return buf.Bytes(), nil
}

func (s *Service) record(ctx context.Context, action, entityType, entityID string) {
	if s.audit == nil {
		return
	}
	if err := s.audit.Record(ctx, audit.Entry{Action: action, Module: audit.ModuleReports, EntityType: entityType, EntityID: entityID}); err != nil {
		slog.Warn("audit record failed", "action", action, "err", err)
	}
}
