package leave

import (
	"time"

	"github.com/cmlabs-hris/payroll-engine/internal/pkg/validator"
)

type SubmitLeaveRequest struct {
	EmployeeID string  `json:"-"`
	LeaveType  string  `json:"leave_type"`
	StartDate  string  `json:"start_date"`
	EndDate    string  `json:"end_date"`
	Reason     *string `json:"reason,omitempty"`

	Start time.Time `json:"-"`
	End   time.Time `json:"-"`
}

func (r *SubmitLeaveRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.EmployeeID) {
		errs = append(errs, validator.ValidationError{Field: "employee_id", Message: "employee_id is required"})
	}
	if validator.IsEmpty(r.LeaveType) {
		errs = append(errs, validator.ValidationError{Field: "leave_type", Message: "leave_type is required"})
	}

	start, okStart := validator.IsValidDate(r.StartDate)
	if !okStart {
		errs = append(errs, validator.ValidationError{Field: "start_date", Message: "start_date must be YYYY-MM-DD"})
	}
	end, okEnd := validator.IsValidDate(r.EndDate)
	if !okEnd {
		errs = append(errs, validator.ValidationError{Field: "end_date", Message: "end_date must be YYYY-MM-DD"})
	}

	if len(errs) > 0 {
		return errs
	}
	if end.Before(start) {
		return ErrInvalidDateRange
	}

	r.Start, r.End = start, end
	return nil
}

type ListLeaveRequestsRequest struct {
	Status string `json:"status"`
}

func (r *ListLeaveRequestsRequest) Validate() error {
	if r.Status != "" && !LeaveRequestStatus(r.Status).IsValid() {
		return validator.ValidationErrors{{Field: "status", Message: "status must be PENDING, APPROVED or REJECTED"}}
	}
	return nil
}

type LeaveRequestResponse struct {
	ID           string             `json:"id"`
	EmployeeID   string             `json:"employee_id"`
	EmployeeName *string            `json:"employee_name,omitempty"`
	LeaveType    string             `json:"leave_type"`
	StartDate    string             `json:"start_date"`
	EndDate      string             `json:"end_date"`
	Reason       *string            `json:"reason,omitempty"`
	Status       LeaveRequestStatus `json:"status"`
	DecidedBy    *string            `json:"decided_by,omitempty"`
	DecidedAt    *time.Time         `json:"decided_at,omitempty"`
	RequestedAt  time.Time          `json:"requested_at"`
}

func ToResponse(r LeaveRequest) LeaveRequestResponse {
	return LeaveRequestResponse{
		ID:           r.ID,
		EmployeeID:   r.EmployeeID,
		EmployeeName: r.EmployeeName,
		LeaveType:    r.LeaveType,
		StartDate:    r.StartDate.Format("2006-01-02"),
		EndDate:      r.EndDate.Format("2006-01-02"),
		Reason:       r.Reason,
		Status:       r.Status,
		DecidedBy:    r.DecidedBy,
		DecidedAt:    r.DecidedAt,
		RequestedAt:  r.RequestedAt,
	}
}
