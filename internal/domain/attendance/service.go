package attendance

import (
	"context"
	"time"
)

// AttendanceService defines business logic for attendance operations
type AttendanceService interface {
	// ClockIn records today's clock-in for the employee and classifies it
	ClockIn(ctx context.Context, employeeID string, req ClockRequest) (AttendanceResponse, error)

	// ClockOut closes today's record for the employee
	ClockOut(ctx context.Context, employeeID string, req ClockRequest) (AttendanceResponse, error)

	// List returns one employee's records in a date range
	List(ctx context.Context, req ListAttendanceRequest) ([]AttendanceResponse, error)

	// GetOverview returns today's roster counts
	GetOverview(ctx context.Context) (OverviewResponse, error)

	// CloseDay inserts ABSENT records for everyone unaccounted for on date
	CloseDay(ctx context.Context, date time.Time) (int, error)

	// Today returns the current calendar day in the attendance timezone
	Today() time.Time
}
