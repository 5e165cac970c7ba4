package vacation

type LedgerError struct {
	EmployeeID   string `json:"employeeId"`
	EmployeeCode string `json:"employeeCode"`
	Reason       string `json:"reason"`
}

// LedgerReport counts what a generation run did.
type LedgerReport struct {
	Year     int           `json:"year"`
	Created  int           `json:"created"`
	Updated  int           `json:"updated"`
	Existing int           `json:"existing"`
	Errors   []LedgerError `json:"errors"`
}
