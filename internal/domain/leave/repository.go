package leave

import (
	"context"
	"time"
)

// LeaveRequestRepository - interface for leave_requests table
type LeaveRequestRepository interface {
	Create(ctx context.Context, request LeaveRequest) (LeaveRequest, error)
	GetByID(ctx context.Context, id string) (LeaveRequest, error)
	ListByEmployeeID(ctx context.Context, employeeID string) ([]LeaveRequest, error)
	List(ctx context.Context, status *LeaveRequestStatus) ([]LeaveRequest, error)
	// ListApprovedOverlapping returns approved requests whose range
	// intersects [from, to].
	ListApprovedOverlapping(ctx context.Context, from, to time.Time) ([]LeaveRequest, error)
	// UpdateStatus moves a request out of from; it returns
	// ErrLeaveRequestAlreadyProcessed when the stored status is no longer from.
	UpdateStatus(ctx context.Context, id string, from, to LeaveRequestStatus, decidedBy string, decidedAt time.Time) (LeaveRequest, error)
}
