package attendance

import (
	"time"

	"github.com/cmlabs-hris/payroll-engine/internal/pkg/validator"
)

type ClockRequest struct {
	Remarks *string `json:"remarks,omitempty"`
}

func (r *ClockRequest) Validate() error {
	var errs validator.ValidationErrors

	if r.Remarks != nil && len(*r.Remarks) > 500 {
		errs = append(errs, validator.ValidationError{
			Field:   "remarks",
			Message: "remarks must be at most 500 characters",
		})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type ListAttendanceRequest struct {
	EmployeeID string `json:"-"`
	StartDate  string `json:"start_date"`
	EndDate    string `json:"end_date"`

	From time.Time `json:"-"`
	To   time.Time `json:"-"`
}

// Validate parses the date strings into From and To.
func (r *ListAttendanceRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.EmployeeID) {
		errs = append(errs, validator.ValidationError{Field: "employee_id", Message: "employee_id is required"})
	}

	from, okFrom := validator.IsValidDate(r.StartDate)
	if !okFrom {
		errs = append(errs, validator.ValidationError{Field: "start_date", Message: "start_date must be YYYY-MM-DD"})
	}
	to, okTo := validator.IsValidDate(r.EndDate)
	if !okTo {
		errs = append(errs, validator.ValidationError{Field: "end_date", Message: "end_date must be YYYY-MM-DD"})
	}
	if okFrom && okTo && to.Before(from) {
		errs = append(errs, validator.ValidationError{Field: "end_date", Message: "end_date must not be before start_date"})
	}

	if len(errs) > 0 {
		return errs
	}
	r.From, r.To = from, to
	return nil
}

type CloseDayRequest struct {
	Date *string `json:"date,omitempty"`
}

type AttendanceResponse struct {
	ID           string     `json:"id"`
	EmployeeID   string     `json:"employee_id"`
	EmployeeName *string    `json:"employee_name,omitempty"`
	Date         string     `json:"date"`
	ClockIn      *time.Time `json:"clock_in"`
	ClockOut     *time.Time `json:"clock_out"`
	Status       Status     `json:"status"`
	Remarks      *string    `json:"remarks,omitempty"`
}

type OverviewResponse struct {
	Date    string `json:"date"`
	Total   int    `json:"total"`
	Present int    `json:"present"`
	Late    int    `json:"late"`
	OnLeave int    `json:"on_leave"`
	Absent  int    `json:"absent"`
}

type CloseDayResponse struct {
	Date           string `json:"date"`
	AbsentInserted int    `json:"absent_inserted"`
}

func ToResponse(a Attendance) AttendanceResponse {
	return AttendanceResponse{
		ID:           a.ID,
		EmployeeID:   a.EmployeeID,
		EmployeeName: a.EmployeeName,
		Date:         a.Date.Format("2006-01-02"),
		ClockIn:      a.ClockIn,
		ClockOut:     a.ClockOut,
		Status:       a.Status,
		Remarks:      a.Remarks,
	}
}
