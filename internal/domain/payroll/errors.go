package payroll

import (
	"errors"
	"fmt"
)

var (
	ErrValidation          = errors.New("validation failed")
	ErrDuplicateSettlement = errors.New("settlement already exists")
	ErrEmployeeNotFound    = errors.New("employee not found")
	ErrSettlementNotFound  = errors.New("settlement not found")
	ErrNoDaysWorked        = errors.New("no days worked in the year")
)

// ValidationError rejects malformed or missing input. No computation
// proceeds after one is returned.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

func (e *ValidationError) Unwrap() error {
	return ErrValidation
}

// DuplicateSettlementError is returned before any mutation when the
// (employee, period, kind) key already has a settlement.
type DuplicateSettlementError struct {
	EmployeeID string
	Period     Period
	Kind       SettlementKind
	ExistingID string
}

func (e *DuplicateSettlementError) Error() string {
	if e.ExistingID != "" {
		return fmt.Sprintf("%s settlement %s already exists for employee %s in %s", e.Kind, e.ExistingID, e.EmployeeID, e.Period)
	}
	return fmt.Sprintf("%s settlement already exists for employee %s in %s", e.Kind, e.EmployeeID, e.Period)
}

func (e *DuplicateSettlementError) Unwrap() error {
	return ErrDuplicateSettlement
}

// Warning is a non-fatal data-consistency finding returned next to a result.
type Warning struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
