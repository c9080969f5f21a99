package attendance

import (
	"time"
)

type Status string

const (
	StatusPresent Status = "PRESENT"
	StatusLate    Status = "LATE"
	StatusAbsent  Status = "ABSENT"
	StatusOnLeave Status = "ON_LEAVE"
)

// IsWorked reports whether the day counts toward proration.
func (s Status) IsWorked() bool {
	return s == StatusPresent || s == StatusLate
}

// Attendance is one employee-day. (EmployeeID, Date) is unique.
type Attendance struct {
	ID         string
	EmployeeID string
	Date       time.Time
	ClockIn    *time.Time
	ClockOut   *time.Time
	Status     Status
	Remarks    *string
	CreatedAt  time.Time
	UpdatedAt  time.Time

	// Joined
	EmployeeName *string
}

// Overview is the same-day roster snapshot shown on dashboards.
type Overview struct {
	Date    time.Time
	Total   int
	Present int
	Late    int
	OnLeave int
	Absent  int
}

// CountWorkedDays counts Present and Late records.
func CountWorkedDays(records []Attendance) int {
	n := 0
	for _, r := range records {
		if r.Status.IsWorked() {
			n++
		}
	}
	return n
}
