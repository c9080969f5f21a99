package attendance

import "errors"

// Attendance domain errors
var (
	// Clock errors
	ErrAlreadyClockedIn  = errors.New("you have already clocked in today")
	ErrNotClockedIn      = errors.New("you have not clocked in yet")
	ErrAlreadyClockedOut = errors.New("you have already clocked out")
	ErrOnApprovedLeave   = errors.New("you are on approved leave today")

	// General errors
	ErrAttendanceNotFound = errors.New("attendance record not found")
	ErrInvalidDateRange   = errors.New("invalid date range")
)
