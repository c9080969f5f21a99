package leave

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/cmlabs-hris/payroll-engine/internal/domain/employee"
	"github.com/cmlabs-hris/payroll-engine/internal/domain/leave"
	"github.com/cmlabs-hris/payroll-engine/internal/domain/user"
)

type LeaveServiceImpl struct {
	leave.LeaveRequestRepository
	employee.EmployeeRepository

	now func() time.Time
}

func NewLeaveService(leaveRepo leave.LeaveRequestRepository, employeeRepo employee.EmployeeRepository) leave.LeaveService {
	return &LeaveServiceImpl{
		LeaveRequestRepository: leaveRepo,
		EmployeeRepository:     employeeRepo,
		now:                    time.Now,
	}
}

// Submit implements leave.LeaveService.
func (s *LeaveServiceImpl) Submit(ctx context.Context, req leave.SubmitLeaveRequest) (leave.LeaveRequestResponse, error) {
	if err := req.Validate(); err != nil {
		return leave.LeaveRequestResponse{}, err
	}

	emp, err := s.EmployeeRepository.GetByID(ctx, req.EmployeeID)
	if err != nil {
		return leave.LeaveRequestResponse{}, err
	}
	if !emp.IsActive() {
		return leave.LeaveRequestResponse{}, employee.ErrEmployeeInactive
	}

	created, err := s.LeaveRequestRepository.Create(ctx, leave.LeaveRequest{
		EmployeeID: req.EmployeeID,
		LeaveType:  req.LeaveType,
		StartDate:  req.Start,
		EndDate:    req.End,
		Reason:     req.Reason,
		Status:     leave.LeaveRequestStatusPending,
	})
	if err != nil {
		return leave.LeaveRequestResponse{}, err
	}
	created.EmployeeName = &emp.FullName

	return leave.ToResponse(created), nil
}

// Approve implements leave.LeaveService.
func (s *LeaveServiceImpl) Approve(ctx context.Context, id string, decider user.Actor) (leave.LeaveRequestResponse, error) {
	return s.decide(ctx, id, decider, leave.LeaveRequestStatusApproved)
}

// Reject implements leave.LeaveService.
func (s *LeaveServiceImpl) Reject(ctx context.Context, id string, decider user.Actor) (leave.LeaveRequestResponse, error) {
	return s.decide(ctx, id, decider, leave.LeaveRequestStatusRejected)
}

func (s *LeaveServiceImpl) decide(ctx context.Context, id string, decider user.Actor, to leave.LeaveRequestStatus) (leave.LeaveRequestResponse, error) {
	request, err := s.LeaveRequestRepository.GetByID(ctx, id)
	if err != nil {
		return leave.LeaveRequestResponse{}, err
	}

	if decider.EmployeeID != "" && decider.EmployeeID == request.EmployeeID {
		return leave.LeaveRequestResponse{}, leave.ErrSelfDecision
	}
	if request.Status != leave.LeaveRequestStatusPending {
		return leave.LeaveRequestResponse{}, leave.ErrLeaveRequestAlreadyProcessed
	}

	updated, err := s.LeaveRequestRepository.UpdateStatus(ctx, id, leave.LeaveRequestStatusPending, to, decider.UserID, s.now())
	if err != nil {
		return leave.LeaveRequestResponse{}, fmt.Errorf("failed to decide leave request: %w", err)
	}

	slog.InfoContext(ctx, "leave request decided",
		"leave_request_id", id,
		"status", to,
		"decided_by", decider.UserID,
	)

	return leave.ToResponse(updated), nil
}

// ListMine implements leave.LeaveService.
func (s *LeaveServiceImpl) ListMine(ctx context.Context, employeeID string) ([]leave.LeaveRequestResponse, error) {
	requests, err := s.LeaveRequestRepository.ListByEmployeeID(ctx, employeeID)
	if err != nil {
		return nil, err
	}
	return toResponses(requests), nil
}

// List implements leave.LeaveService.
func (s *LeaveServiceImpl) List(ctx context.Context, req leave.ListLeaveRequestsRequest) ([]leave.LeaveRequestResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	var status *leave.LeaveRequestStatus
	if req.Status != "" {
		st := leave.LeaveRequestStatus(req.Status)
		status = &st
	}

	requests, err := s.LeaveRequestRepository.List(ctx, status)
	if err != nil {
		return nil, err
	}
	return toResponses(requests), nil
}

func toResponses(requests []leave.LeaveRequest) []leave.LeaveRequestResponse {
	responses := make([]leave.LeaveRequestResponse, 0, len(requests))
	for _, r := range requests {
		responses = append(responses, leave.ToResponse(r))
	}
	return responses
}
