package attendance

import (
	"context"
	"time"

	"rrhh/internal/domain/payroll"
)

type StoreAPI interface {
	ListActiveEmployees(ctx context.Context) ([]payroll.Employee, error)
	ListAttendanceBetween(ctx context.Context, from, to time.Time) ([]payroll.AttendanceDay, error)
	ListGrantedVacationsOn(ctx context.Context, date time.Time) ([]payroll.VacationRequest, error)
	ListGrantedLeavesOn(ctx context.Context, date time.Time) ([]payroll.LeaveRequest, error)
	InsertAttendance(ctx context.Context, rows []payroll.AttendanceDay) (int, error)
}
