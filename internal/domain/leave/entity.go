package leave

import (
	"time"
)

type LeaveRequestStatus string

const (
	LeaveRequestStatusPending  LeaveRequestStatus = "PENDING"
	LeaveRequestStatusApproved LeaveRequestStatus = "APPROVED"
	LeaveRequestStatusRejected LeaveRequestStatus = "REJECTED"
)

func (s LeaveRequestStatus) IsValid() bool {
	switch s {
	case LeaveRequestStatusPending, LeaveRequestStatusApproved, LeaveRequestStatusRejected:
		return true
	}
	return false
}

// LeaveRequest entity. StartDate and EndDate are inclusive calendar days.
type LeaveRequest struct {
	ID         string
	EmployeeID string
	LeaveType  string
	StartDate  time.Time
	EndDate    time.Time
	Reason     *string

	Status    LeaveRequestStatus
	DecidedBy *string
	DecidedAt *time.Time

	RequestedAt time.Time
	UpdatedAt   time.Time

	// Relationships (for responses)
	EmployeeName *string
}

// Covers reports whether day falls within [StartDate, EndDate].
func (r LeaveRequest) Covers(day time.Time) bool {
	d := dateOnly(day)
	return !d.Before(dateOnly(r.StartDate)) && !d.After(dateOnly(r.EndDate))
}

func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
