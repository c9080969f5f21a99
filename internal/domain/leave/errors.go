package leave

import "errors"

var (
	ErrLeaveRequestNotFound         = errors.New("leave request not found")
	ErrLeaveRequestAlreadyProcessed = errors.New("leave request already processed")
	ErrSelfDecision                 = errors.New("leave request cannot be decided by the requester")
	ErrInvalidDateRange             = errors.New("leave end date must not be before start date")
)
