package leave

import (
	"time"

	"github.com/shopspring/decimal"

	"rrhh/internal/domain/payroll"
)

type SanctionKind string

const (
	SanctionWarning    SanctionKind = "warning"
	SanctionSuspension SanctionKind = "suspension"
	SanctionFine       SanctionKind = "fine"
)

func (k SanctionKind) Valid() bool {
	switch k {
	case SanctionWarning, SanctionSuspension, SanctionFine:
		return true
	}
	return false
}

type Sanction struct {
	ID           string          `json:"id,omitempty"`
	EmployeeID   string          `json:"employeeId"`
	Kind         SanctionKind    `json:"kind"`
	Date         time.Time       `json:"date"`
	DurationDays int             `json:"durationDays"`
	Amount       decimal.Decimal `json:"amount"`
	Reason       string          `json:"reason"`
	CreatedBy    string          `json:"createdBy,omitempty"`
}

type ApprovalResult struct {
	Request   payroll.LeaveRequest     `json:"request"`
	Discounts []payroll.ManualDiscount `json:"discounts"`
	// Reused is set when discounts for the request already existed.
	Reused bool `json:"reused"`
}

type SanctionResult struct {
	Sanction  Sanction                 `json:"sanction"`
	Discounts []payroll.ManualDiscount `json:"discounts"`
}
