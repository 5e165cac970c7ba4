package attendance

import (
	"fmt"
	"time"

	"rrhh/internal/domain/payroll"
)

const (
	noteVacation = "Vacaciones (auto-generado)"
	noteLeaveFmt = "Permiso: %s (auto-generado)"
	noteAbsence  = "Ausencia sin marcación (auto-generado)"
)

type CloseDayInput struct {
	Date      time.Time
	Employees []payroll.Employee
	Existing  []payroll.AttendanceDay
	Vacations []payroll.VacationRequest
	Leaves    []payroll.LeaveRequest
}

type CloseDayResult struct {
	Date              time.Time               `json:"date"`
	Skipped           bool                    `json:"skipped"`
	Message           string                  `json:"message"`
	Processed         int                     `json:"processed"`
	Vacations         int                     `json:"vacations"`
	Leaves            int                     `json:"leaves"`
	Absences          int                     `json:"absences"`
	AlreadyRegistered int                     `json:"alreadyRegistered"`
	Rows              []payroll.AttendanceDay `json:"-"`
}

// PlanCloseDay decides the attendance rows to create for every employee
// without a mark on date. Sundays are not working days and produce nothing.
func PlanCloseDay(in CloseDayInput) CloseDayResult {
	date := payroll.Date(in.Date)
	res := CloseDayResult{Date: date}
	if date.Weekday() == time.Sunday {
		res.Skipped = true
		res.Message = fmt.Sprintf("%s is a Sunday; nothing to close", date.Format(time.DateOnly))
		return res
	}

	registered := make(map[string]struct{}, len(in.Existing))
	for _, a := range in.Existing {
		if payroll.Date(a.Date).Equal(date) {
			registered[a.EmployeeID] = struct{}{}
		}
	}

	for _, emp := range in.Employees {
		if !emp.EmployedOn(date) {
			continue
		}
		if _, ok := registered[emp.ID]; ok {
			res.AlreadyRegistered++
			continue
		}

		row := payroll.AttendanceDay{EmployeeID: emp.ID, Date: date}
		if onVacation(emp.ID, date, in.Vacations) {
			row.Present = true
			row.Note = noteVacation
			res.Vacations++
		} else if leave, ok := onLeave(emp.ID, date, in.Leaves); ok {
			row.Present = true
			row.Note = fmt.Sprintf(noteLeaveFmt, leave.Reason)
			res.Leaves++
		} else {
			row.Note = noteAbsence
			row.Justification = payroll.JustificationPending
			res.Absences++
		}
		res.Rows = append(res.Rows, row)
	}
	res.Processed = len(res.Rows)
	res.Message = fmt.Sprintf("attendance for %s closed", date.Format(time.DateOnly))
	return res
}

func covers(start, end, date time.Time) bool {
	return !payroll.Date(start).After(date) && !payroll.Date(end).Before(date)
}

func onVacation(employeeID string, date time.Time, vacations []payroll.VacationRequest) bool {
	for _, v := range vacations {
		if v.EmployeeID == employeeID && v.State.Granted() && covers(v.StartDate, v.EndDate, date) {
			return true
		}
	}
	return false
}

func onLeave(employeeID string, date time.Time, leaves []payroll.LeaveRequest) (payroll.LeaveRequest, bool) {
	for _, l := range leaves {
		if l.EmployeeID == employeeID && l.State.Granted() && covers(l.StartDate, l.EndDate, date) {
			return l, true
		}
	}
	return payroll.LeaveRequest{}, false
}
