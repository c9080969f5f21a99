package payroll

import "errors"

var (
	// Validation
	ErrInvalidPeriod     = errors.New("invalid payroll period")
	ErrEmployeeNotFound  = errors.New("employee not found")
	ErrEmployeeNotActive = errors.New("employee is not active")
	ErrDuplicateEmployee = errors.New("employee appears more than once in payroll details")

	// State transitions
	ErrInvalidStateTransition = errors.New("invalid payroll run state transition")
	ErrSeparationOfDuties     = errors.New("the creator of a payroll run cannot approve it")
	ErrPaidRunImmutable       = errors.New("paid payroll runs cannot be deleted")

	// Lookups
	ErrPayrollRunNotFound = errors.New("payroll run not found")
	ErrPaycheckNotFound   = errors.New("paycheck not found")
	ErrPaycheckForbidden  = errors.New("paycheck belongs to another employee")
)
