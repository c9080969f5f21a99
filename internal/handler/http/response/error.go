package response

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/cmlabs-hris/payroll-engine/internal/domain/attendance"
	"github.com/cmlabs-hris/payroll-engine/internal/domain/employee"
	"github.com/cmlabs-hris/payroll-engine/internal/domain/leave"
	"github.com/cmlabs-hris/payroll-engine/internal/domain/payroll"
	"github.com/cmlabs-hris/payroll-engine/internal/domain/user"
	"github.com/cmlabs-hris/payroll-engine/internal/pkg/validator"
)

// HandleError maps domain errors to HTTP responses
func HandleError(w http.ResponseWriter, err error) {
	// Check if it's a validation error
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		ValidationError(w, validationErrs.ToMap())
		return
	}

	switch {
	// Payroll domain errors
	case errors.Is(err, payroll.ErrInvalidPeriod),
		errors.Is(err, payroll.ErrDuplicateEmployee),
		errors.Is(err, payroll.ErrEmployeeNotActive):
		BadRequest(w, err.Error(), nil)
	case errors.Is(err, payroll.ErrEmployeeNotFound):
		NotFound(w, err.Error())
	case errors.Is(err, payroll.ErrPayrollRunNotFound):
		NotFound(w, "Payroll run not found")
	case errors.Is(err, payroll.ErrPaycheckNotFound):
		NotFound(w, "Paycheck not found")
	case errors.Is(err, payroll.ErrInvalidStateTransition),
		errors.Is(err, payroll.ErrPaidRunImmutable):
		Conflict(w, err.Error())
	case errors.Is(err, payroll.ErrSeparationOfDuties),
		errors.Is(err, payroll.ErrPaycheckForbidden):
		Forbidden(w, err.Error())

	// Attendance domain errors
	case errors.Is(err, attendance.ErrAttendanceNotFound):
		NotFound(w, "Attendance record not found")
	case errors.Is(err, attendance.ErrInvalidDateRange):
		BadRequest(w, err.Error(), nil)
	case errors.Is(err, attendance.ErrAlreadyClockedIn),
		errors.Is(err, attendance.ErrAlreadyClockedOut),
		errors.Is(err, attendance.ErrNotClockedIn),
		errors.Is(err, attendance.ErrOnApprovedLeave):
		Conflict(w, err.Error())

	// Leave domain errors
	case errors.Is(err, leave.ErrLeaveRequestNotFound):
		NotFound(w, "Leave request not found")
	case errors.Is(err, leave.ErrInvalidDateRange):
		BadRequest(w, err.Error(), nil)
	case errors.Is(err, leave.ErrLeaveRequestAlreadyProcessed):
		Conflict(w, "Leave request already processed")
	case errors.Is(err, leave.ErrSelfDecision):
		Forbidden(w, err.Error())

	// Employee domain errors
	case errors.Is(err, employee.ErrEmployeeNotFound):
		NotFound(w, "Employee not found")
	case errors.Is(err, employee.ErrEmployeeInactive):
		BadRequest(w, err.Error(), nil)

	// Caller errors
	case errors.Is(err, user.ErrInvalidRole):
		Unauthorized(w, err.Error())
	case errors.Is(err, user.ErrInsufficientPermissions),
		errors.Is(err, user.ErrEmployeeProfileRequired):
		Forbidden(w, err.Error())

	// Default
	default:
		slog.Error("unhandled error", "error", err)
		InternalServerError(w, "An unexpected error occurred")
	}
}
