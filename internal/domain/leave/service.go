package leave

import (
	"context"

	"github.com/cmlabs-hris/payroll-engine/internal/domain/user"
)

type LeaveService interface {
	Submit(ctx context.Context, req SubmitLeaveRequest) (LeaveRequestResponse, error)
	Approve(ctx context.Context, id string, decider user.Actor) (LeaveRequestResponse, error)
	Reject(ctx context.Context, id string, decider user.Actor) (LeaveRequestResponse, error)
	ListMine(ctx context.Context, employeeID string) ([]LeaveRequestResponse, error)
	List(ctx context.Context, req ListLeaveRequestsRequest) ([]LeaveRequestResponse, error)
}
