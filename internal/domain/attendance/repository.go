package attendance

import (
	"context"
	"time"
)

type AttendanceRepository interface {
	// Create inserts a record and returns ErrAlreadyClockedIn when the
	// employee already has one for that date.
	Create(ctx context.Context, a Attendance) (Attendance, error)
	GetByEmployeeAndDate(ctx context.Context, employeeID string, date time.Time) (Attendance, error)
	// SetClockOut only touches records that have no clock-out yet.
	SetClockOut(ctx context.Context, id string, clockOut time.Time) (Attendance, error)
	ListByEmployeeAndRange(ctx context.Context, employeeID string, from, to time.Time) ([]Attendance, error)
	ListByDate(ctx context.Context, date time.Time) ([]Attendance, error)
	// BulkCreateAbsences inserts ABSENT rows, skipping employees that
	// already have a record for date, and returns the number inserted.
	BulkCreateAbsences(ctx context.Context, employeeIDs []string, date time.Time) (int, error)
}
