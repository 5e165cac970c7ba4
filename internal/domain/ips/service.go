package ips

import (
	"context"
	"log/slog"

	"rrhh/internal/domain/audit"
	"rrhh/internal/domain/payroll"
)

type SettlementLister interface {
	ListPeriodSettlements(ctx context.Context, period payroll.Period, kind payroll.SettlementKind) ([]payroll.SettlementRow, error)
}

type Service struct {
	settlements SettlementLister
	company     Company
	rates       Rates
	audit       payroll.Auditor
}

func NewService(settlements SettlementLister, company Company, rates Rates, auditor payroll.Auditor) *Service {
	return &Service{settlements: settlements, company: company, rates: rates, audit: auditor}
}

// Report builds the REI declaration from the period's ordinary settlements.
func (s *Service) Report(ctx context.Context, period payroll.Period) (Report, error) {
	if err := period.Validate(); err != nil {
		return Report{}, err
	}
	rows, err := s.settlements.ListPeriodSettlements(ctx, period, payroll.KindOrdinary)
	if err != nil {
		return Report{}, err
	}
	report, err := BuildReport(s.company, s.rates, period, rows)
	if err != nil {
		return Report{}, err
	}
	for _, w := range report.Warnings {
		slog.Warn("ips declaration", "period", period.String(), "warning", w)
	}

	if s.audit != nil {
		if err := s.audit.Record(ctx, audit.Entry{
			Action:     "ips.rei.exported",
			Module:     audit.ModuleReports,
			EntityType: "period",
			EntityID:   period.String(),
			Detail:     report.Totals,
		}); err != nil {
			slog.Warn("audit record failed", "action", "ips.rei.exported", "err", err)
		}
	}
	return report, nil
}
