package http

import (
	"context"
	"io"
	"time"

	"github.com/cmlabs-hris/payroll-engine/internal/domain/attendance"
	"github.com/cmlabs-hris/payroll-engine/internal/domain/leave"
	"github.com/cmlabs-hris/payroll-engine/internal/domain/payroll"
	"github.com/cmlabs-hris/payroll-engine/internal/domain/user"
)

// fakePayrollService records the actor ids it is called with and returns
// err when set.
type fakePayrollService struct {
	err error

	gotCreatorID  string
	gotApproverID string
	gotActor      user.Actor
	gotPreview    payroll.PreviewPayrollRequest
	gotListStatus string
}

func (f *fakePayrollService) Preview(ctx context.Context, creatorID string, req payroll.PreviewPayrollRequest) (payroll.PayrollRunResponse, error) {
	f.gotCreatorID = creatorID
	f.gotPreview = req
	if f.err != nil {
		return payroll.PayrollRunResponse{}, f.err
	}
	return payroll.PayrollRunResponse{ID: "run-1", Status: payroll.RunStatusDraft, CreatedBy: creatorID}, nil
}

func (f *fakePayrollService) Finalize(ctx context.Context, runID, approverID string) (payroll.PayrollRunResponse, error) {
	f.gotApproverID = approverID
	if f.err != nil {
		return payroll.PayrollRunResponse{}, f.err
	}
	return payroll.PayrollRunResponse{ID: runID, Status: payroll.RunStatusApproved}, nil
}

func (f *fakePayrollService) Pay(ctx context.Context, runID, actorID string) (payroll.PayrollRunResponse, error) {
	if f.err != nil {
		return payroll.PayrollRunResponse{}, f.err
	}
	return payroll.PayrollRunResponse{ID: runID, Status: payroll.RunStatusPaid}, nil
}

func (f *fakePayrollService) Delete(ctx context.Context, runID, actorID string) error {
	return f.err
}

func (f *fakePayrollService) GetRun(ctx context.Context, runID string) (payroll.PayrollRunResponse, error) {
	if f.err != nil {
		return payroll.PayrollRunResponse{}, f.err
	}
	return payroll.PayrollRunResponse{ID: runID}, nil
}

func (f *fakePayrollService) ListRuns(ctx context.Context, req payroll.ListRunsRequest) ([]payroll.PayrollRunResponse, error) {
	f.gotListStatus = req.Status
	if err := req.Validate(); err != nil {
		return nil, err
	}
	return []payroll.PayrollRunResponse{}, f.err
}

func (f *fakePayrollService) ListRunEvents(ctx context.Context, runID string) ([]payroll.RunEventResponse, error) {
	return []payroll.RunEventResponse{}, f.err
}

func (f *fakePayrollService) ListMyPaychecks(ctx context.Context, employeeID string) ([]payroll.PaycheckResponse, error) {
	return []payroll.PaycheckResponse{{EmployeeID: employeeID}}, f.err
}

func (f *fakePayrollService) WritePayslip(ctx context.Context, paycheckID string, actor user.Actor, w io.Writer) error {
	f.gotActor = actor
	if f.err != nil {
		return f.err
	}
	_, err := io.WriteString(w, "%PDF-1.3 "+paycheckID)
	return err
}

type fakeAttendanceService struct {
	err   error
	today time.Time

	gotEmployeeID string
	gotCloseDate  time.Time
}

func (f *fakeAttendanceService) ClockIn(ctx context.Context, employeeID string, req attendance.ClockRequest) (attendance.AttendanceResponse, error) {
	f.gotEmployeeID = employeeID
	if f.err != nil {
		return attendance.AttendanceResponse{}, f.err
	}
	return attendance.AttendanceResponse{EmployeeID: employeeID, Status: attendance.StatusPresent}, nil
}

func (f *fakeAttendanceService) ClockOut(ctx context.Context, employeeID string, req attendance.ClockRequest) (attendance.AttendanceResponse, error) {
	f.gotEmployeeID = employeeID
	if f.err != nil {
		return attendance.AttendanceResponse{}, f.err
	}
	return attendance.AttendanceResponse{EmployeeID: employeeID}, nil
}

func (f *fakeAttendanceService) List(ctx context.Context, req attendance.ListAttendanceRequest) ([]attendance.AttendanceResponse, error) {
	f.gotEmployeeID = req.EmployeeID
	if err := req.Validate(); err != nil {
		return nil, err
	}
	return []attendance.AttendanceResponse{}, f.err
}

func (f *fakeAttendanceService) GetOverview(ctx context.Context) (attendance.OverviewResponse, error) {
	return attendance.OverviewResponse{Date: "2025-03-10", Total: 3, Present: 1, Late: 1, Absent: 1}, f.err
}

func (f *fakeAttendanceService) CloseDay(ctx context.Context, date time.Time) (int, error) {
	f.gotCloseDate = date
	return 2, f.err
}

func (f *fakeAttendanceService) Today() time.Time {
	return f.today
}

type fakeLeaveService struct {
	err error

	gotSubmit  leave.SubmitLeaveRequest
	gotDecider user.Actor
}

func (f *fakeLeaveService) Submit(ctx context.Context, req leave.SubmitLeaveRequest) (leave.LeaveRequestResponse, error) {
	f.gotSubmit = req
	if f.err != nil {
		return leave.LeaveRequestResponse{}, f.err
	}
	return leave.LeaveRequestResponse{ID: "leave-1", EmployeeID: req.EmployeeID, Status: leave.LeaveRequestStatusPending}, nil
}

func (f *fakeLeaveService) Approve(ctx context.Context, id string, decider user.Actor) (leave.LeaveRequestResponse, error) {
	f.gotDecider = decider
	if f.err != nil {
		return leave.LeaveRequestResponse{}, f.err
	}
	return leave.LeaveRequestResponse{ID: id, Status: leave.LeaveRequestStatusApproved}, nil
}

func (f *fakeLeaveService) Reject(ctx context.Context, id string, decider user.Actor) (leave.LeaveRequestResponse, error) {
	f.gotDecider = decider
	if f.err != nil {
		return leave.LeaveRequestResponse{}, f.err
	}
	return leave.LeaveRequestResponse{ID: id, Status: leave.LeaveRequestStatusRejected}, nil
}

func (f *fakeLeaveService) ListMine(ctx context.Context, employeeID string) ([]leave.LeaveRequestResponse, error) {
	return []leave.LeaveRequestResponse{}, f.err
}

func (f *fakeLeaveService) List(ctx context.Context, req leave.ListLeaveRequestsRequest) ([]leave.LeaveRequestResponse, error) {
	return []leave.LeaveRequestResponse{}, f.err
}
