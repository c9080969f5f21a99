package payroll

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/cmlabs-hris/payroll-engine/internal/config"
	"github.com/cmlabs-hris/payroll-engine/internal/domain/attendance"
	"github.com/cmlabs-hris/payroll-engine/internal/domain/employee"
	"github.com/cmlabs-hris/payroll-engine/internal/domain/payroll"
	"github.com/cmlabs-hris/payroll-engine/internal/domain/user"
	"github.com/cmlabs-hris/payroll-engine/internal/pkg/database"
	"github.com/cmlabs-hris/payroll-engine/internal/pkg/email"
	"golang.org/x/sync/errgroup"
)

// attendanceLoadLimit bounds concurrent per-employee attendance reads.
const attendanceLoadLimit = 8

// PayslipRenderer writes a paycheck document.
type PayslipRenderer interface {
	Render(w io.Writer, p payroll.Paycheck) error
}

type PayrollServiceImpl struct {
	tx database.Transactor
	payroll.PayrollRunRepository
	payroll.PaycheckRepository
	payroll.RunEventRepository
	employee.EmployeeRepository
	attendance.AttendanceRepository

	calculator     Calculator
	emailService   email.EmailService
	payslips       PayslipRenderer
	approverEmails []string

	now func() time.Time
	wg  sync.WaitGroup
}

func NewPayrollService(
	tx database.Transactor,
	runRepo payroll.PayrollRunRepository,
	paycheckRepo payroll.PaycheckRepository,
	eventRepo payroll.RunEventRepository,
	employeeRepo employee.EmployeeRepository,
	attendanceRepo attendance.AttendanceRepository,
	emailService email.EmailService,
	payslips PayslipRenderer,
	cfg config.PayrollConfig,
) *PayrollServiceImpl {
	return &PayrollServiceImpl{
		tx:                   tx,
		PayrollRunRepository: runRepo,
		PaycheckRepository:   paycheckRepo,
		RunEventRepository:   eventRepo,
		EmployeeRepository:   employeeRepo,
		AttendanceRepository: attendanceRepo,
		calculator:           NewCalculator(cfg.StandardWorkingDays),
		emailService:         emailService,
		payslips:             payslips,
		approverEmails:       cfg.ApproverEmails,
		now:                  time.Now,
	}
}

var _ payroll.PayrollService = (*PayrollServiceImpl)(nil)

// Wait blocks until background notifications have finished.
func (s *PayrollServiceImpl) Wait() {
	s.wg.Wait()
}

// ========== LIFECYCLE ==========

// Preview implements payroll.PayrollService. All paychecks are computed
// before anything is written, and the run shell, its paychecks, its totals
// and the audit entry are stored in one transaction.
func (s *PayrollServiceImpl) Preview(ctx context.Context, creatorID string, req payroll.PreviewPayrollRequest) (payroll.PayrollRunResponse, error) {
	if err := req.Validate(); err != nil {
		return payroll.PayrollRunResponse{}, err
	}

	var (
		paychecks []payroll.Paycheck
		err       error
	)
	if req.HasDetails() {
		paychecks, err = s.paychecksFromDetails(ctx, req.Details)
	} else {
		paychecks, err = s.paychecksFromAttendance(ctx, req.Start, req.End)
	}
	if err != nil {
		return payroll.PayrollRunResponse{}, err
	}

	var result payroll.PayrollRun
	err = s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		run, err := s.PayrollRunRepository.Create(ctx, payroll.PayrollRun{
			PayPeriodStart: req.Start,
			PayPeriodEnd:   req.End,
			Status:         payroll.RunStatusDraft,
			CreatedBy:      creatorID,
		})
		if err != nil {
			return err
		}

		for i := range paychecks {
			paychecks[i].PayrollRunID = run.ID
			paychecks[i].PayPeriodStart = req.Start
			paychecks[i].PayPeriodEnd = req.End
			paychecks[i].Status = payroll.RunStatusDraft
		}
		if err := s.PaycheckRepository.BulkCreate(ctx, paychecks); err != nil {
			return err
		}

		run.Totals = payroll.SumTotals(paychecks)
		if err := s.PayrollRunRepository.UpdateTotals(ctx, run.ID, run.Totals); err != nil {
			return err
		}

		if err := s.recordEvent(ctx, run.ID, payroll.RunActionCreated, creatorID, nil, run.Status); err != nil {
			return err
		}

		run.Paychecks, err = s.PaycheckRepository.ListByRunID(ctx, run.ID)
		if err != nil {
			return err
		}
		result = run
		return nil
	})
	if err != nil {
		return payroll.PayrollRunResponse{}, err
	}

	slog.InfoContext(ctx, "payroll run previewed",
		"payroll_run_id", result.ID,
		"created_by", creatorID,
		"paychecks", len(result.Paychecks),
		"total_net_pay", result.Totals.NetPay.StringFixed(2),
	)

	s.notifyApprovers(ctx, result)

	return payroll.ToRunResponse(result), nil
}

func (s *PayrollServiceImpl) paychecksFromDetails(ctx context.Context, details []payroll.PaycheckDetail) ([]payroll.Paycheck, error) {
	paychecks := make([]payroll.Paycheck, 0, len(details))
	for _, d := range details {
		emp, err := s.EmployeeRepository.GetByID(ctx, d.EmployeeID)
		if err != nil {
			if errors.Is(err, employee.ErrEmployeeNotFound) {
				return nil, fmt.Errorf("%w: %s", payroll.ErrEmployeeNotFound, d.EmployeeID)
			}
			return nil, err
		}
		if !emp.IsActive() {
			return nil, fmt.Errorf("%w: %s", payroll.ErrEmployeeNotActive, d.EmployeeID)
		}
		paychecks = append(paychecks, s.calculator.FromDetail(emp, d))
	}
	return paychecks, nil
}

func (s *PayrollServiceImpl) paychecksFromAttendance(ctx context.Context, start, end time.Time) ([]payroll.Paycheck, error) {
	roster, err := s.EmployeeRepository.ListActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list active employees: %w", err)
	}

	paychecks := make([]payroll.Paycheck, len(roster))

	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(attendanceLoadLimit)
	for i, emp := range roster {
		g.Go(func() error {
			records, err := s.AttendanceRepository.ListByEmployeeAndRange(gCtx, emp.ID, start, end)
			if err != nil {
				return fmt.Errorf("failed to load attendance for %s: %w", emp.ID, err)
			}
			paychecks[i] = s.calculator.FromAttendance(emp, attendance.CountWorkedDays(records))
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return paychecks, nil
}

// Finalize implements payroll.PayrollService.
func (s *PayrollServiceImpl) Finalize(ctx context.Context, runID, approverID string) (payroll.PayrollRunResponse, error) {
	run, err := s.transition(ctx, runID, approverID, payroll.RunStatusDraft, payroll.RunStatusApproved, func(run payroll.PayrollRun) error {
		if run.CreatedBy == approverID {
			return payroll.ErrSeparationOfDuties
		}
		return nil
	})
	if err != nil {
		return payroll.PayrollRunResponse{}, err
	}
	return payroll.ToRunResponse(run), nil
}

// Pay implements payroll.PayrollService.
func (s *PayrollServiceImpl) Pay(ctx context.Context, runID, actorID string) (payroll.PayrollRunResponse, error) {
	run, err := s.transition(ctx, runID, actorID, payroll.RunStatusApproved, payroll.RunStatusPaid, nil)
	if err != nil {
		return payroll.PayrollRunResponse{}, err
	}

	s.notifyPaid(ctx, run.Paychecks)

	return payroll.ToRunResponse(run), nil
}

// transition moves the paychecks and then the run from one status to the
// next inside a transaction. The run update is a compare-and-swap, so of two
// concurrent callers only one succeeds.
func (s *PayrollServiceImpl) transition(
	ctx context.Context,
	runID, actorID string,
	from, to payroll.RunStatus,
	check func(run payroll.PayrollRun) error,
) (payroll.PayrollRun, error) {
	var result payroll.PayrollRun
	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		run, err := s.PayrollRunRepository.GetByID(ctx, runID)
		if err != nil {
			return err
		}
		if run.Status != from || !from.CanTransitionTo(to) {
			return fmt.Errorf("%w: run is %s", payroll.ErrInvalidStateTransition, run.Status)
		}
		if check != nil {
			if err := check(run); err != nil {
				return err
			}
		}

		if _, err := s.PaycheckRepository.UpdateStatusByRunID(ctx, runID, from, to); err != nil {
			return err
		}

		updated, err := s.PayrollRunRepository.TransitionStatus(ctx, runID, from, to, actorID, s.now())
		if err != nil {
			return err
		}

		action := payroll.RunActionApproved
		if to == payroll.RunStatusPaid {
			action = payroll.RunActionPaid
		}
		if err := s.recordEvent(ctx, runID, action, actorID, &from, to); err != nil {
			return err
		}

		updated.Paychecks, err = s.PaycheckRepository.ListByRunID(ctx, runID)
		if err != nil {
			return err
		}
		result = updated
		return nil
	})
	if err != nil {
		return payroll.PayrollRun{}, err
	}

	slog.InfoContext(ctx, "payroll run transitioned",
		"payroll_run_id", runID,
		"from", from,
		"to", to,
		"actor_id", actorID,
	)
	return result, nil
}

// Delete implements payroll.PayrollService. Paychecks go first, then the
// run. A nil error means the run was removed.
func (s *PayrollServiceImpl) Delete(ctx context.Context, runID, actorID string) error {
	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		run, err := s.PayrollRunRepository.GetByID(ctx, runID)
		if err != nil {
			return err
		}
		if !run.Status.IsDeletable() {
			return payroll.ErrPaidRunImmutable
		}

		if err := s.PaycheckRepository.DeleteByRunID(ctx, runID); err != nil {
			return err
		}
		if err := s.PayrollRunRepository.Delete(ctx, runID); err != nil {
			return err
		}

		return s.recordEvent(ctx, runID, payroll.RunActionDeleted, actorID, &run.Status, "")
	})
	if err != nil {
		return err
	}

	slog.InfoContext(ctx, "payroll run deleted", "payroll_run_id", runID, "actor_id", actorID)
	return nil
}

func (s *PayrollServiceImpl) recordEvent(ctx context.Context, runID string, action payroll.RunAction, actorID string, from *payroll.RunStatus, to payroll.RunStatus) error {
	event := payroll.RunEvent{
		RunID:      runID,
		Action:     action,
		ActorID:    actorID,
		FromStatus: from,
	}
	if to != "" {
		event.ToStatus = &to
	}
	return s.RunEventRepository.Create(ctx, event)
}

// ========== READ SIDE ==========

// GetRun implements payroll.PayrollService.
func (s *PayrollServiceImpl) GetRun(ctx context.Context, runID string) (payroll.PayrollRunResponse, error) {
	run, err := s.PayrollRunRepository.GetByID(ctx, runID)
	if err != nil {
		return payroll.PayrollRunResponse{}, err
	}

	run.Paychecks, err = s.PaycheckRepository.ListByRunID(ctx, runID)
	if err != nil {
		return payroll.PayrollRunResponse{}, err
	}

	return payroll.ToRunResponse(run), nil
}

// ListRuns implements payroll.PayrollService. Paychecks are not included.
func (s *PayrollServiceImpl) ListRuns(ctx context.Context, req payroll.ListRunsRequest) ([]payroll.PayrollRunResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	var status *payroll.RunStatus
	if req.Status != "" {
		st := payroll.RunStatus(req.Status)
		status = &st
	}

	runs, err := s.PayrollRunRepository.List(ctx, status)
	if err != nil {
		return nil, err
	}

	responses := make([]payroll.PayrollRunResponse, 0, len(runs))
	for _, run := range runs {
		responses = append(responses, payroll.ToRunResponse(run))
	}
	return responses, nil
}

// ListRunEvents implements payroll.PayrollService.
func (s *PayrollServiceImpl) ListRunEvents(ctx context.Context, runID string) ([]payroll.RunEventResponse, error) {
	events, err := s.RunEventRepository.ListByRunID(ctx, runID)
	if err != nil {
		return nil, err
	}

	responses := make([]payroll.RunEventResponse, 0, len(events))
	for _, e := range events {
		responses = append(responses, payroll.ToRunEventResponse(e))
	}
	return responses, nil
}

// ListMyPaychecks implements payroll.PayrollService. Only approved and paid
// paychecks are visible to the employee.
func (s *PayrollServiceImpl) ListMyPaychecks(ctx context.Context, employeeID string) ([]payroll.PaycheckResponse, error) {
	paychecks, err := s.PaycheckRepository.ListByEmployeeID(ctx, employeeID)
	if err != nil {
		return nil, err
	}

	responses := make([]payroll.PaycheckResponse, 0, len(paychecks))
	for _, p := range paychecks {
		if p.Status == payroll.RunStatusDraft {
			continue
		}
		responses = append(responses, payroll.ToPaycheckResponse(p))
	}
	return responses, nil
}

// WritePayslip implements payroll.PayrollService. Actors without
// payroll.view_all may only fetch their own non-draft paychecks.
func (s *PayrollServiceImpl) WritePayslip(ctx context.Context, paycheckID string, actor user.Actor, w io.Writer) error {
	p, err := s.PaycheckRepository.GetByID(ctx, paycheckID)
	if err != nil {
		return err
	}

	if !actor.Can(user.PermissionPayrollViewAll) {
		if actor.EmployeeID == "" || actor.EmployeeID != p.EmployeeID {
			return payroll.ErrPaycheckForbidden
		}
		if p.Status == payroll.RunStatusDraft {
			return payroll.ErrPaycheckNotFound
		}
	}

	return s.payslips.Render(w, p)
}

// ========== NOTIFICATIONS ==========

// notifyApprovers and notifyPaid run after commit and never fail the
// request; errors are only logged.
func (s *PayrollServiceImpl) notifyApprovers(ctx context.Context, run payroll.PayrollRun) {
	if s.emailService == nil || len(s.approverEmails) == 0 {
		return
	}

	data := email.RunAwaitingApprovalData{
		RunID:       run.ID,
		PeriodStart: run.PayPeriodStart.Format("2006-01-02"),
		PeriodEnd:   run.PayPeriodEnd.Format("2006-01-02"),
		PreparedBy:  run.CreatedBy,
		Employees:   len(run.Paychecks),
		TotalNetPay: run.Totals.NetPay.StringFixed(2),
	}
	to := s.approverEmails

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		if err := s.emailService.SendRunAwaitingApproval(to, data); err != nil {
			slog.WarnContext(ctx, "failed to notify payroll approvers", "payroll_run_id", run.ID, "error", err)
		}
	}()
}

func (s *PayrollServiceImpl) notifyPaid(ctx context.Context, paychecks []payroll.Paycheck) {
	if s.emailService == nil || len(paychecks) == 0 {
		return
	}

	ctx = context.WithoutCancel(ctx)

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		for _, p := range paychecks {
			emp, err := s.EmployeeRepository.GetByID(ctx, p.EmployeeID)
			if err != nil {
				slog.WarnContext(ctx, "failed to load employee for paid notification", "employee_id", p.EmployeeID, "error", err)
				continue
			}
			if emp.Email == nil || *emp.Email == "" {
				continue
			}

			err = s.emailService.SendPaycheckPaid(*emp.Email, email.PaycheckPaidData{
				EmployeeName: p.EmployeeName,
				PeriodStart:  p.PayPeriodStart.Format("2006-01-02"),
				PeriodEnd:    p.PayPeriodEnd.Format("2006-01-02"),
				NetPay:       p.NetPay.StringFixed(2),
			})
			if err != nil {
				slog.WarnContext(ctx, "failed to notify employee of payment", "paycheck_id", p.ID, "error", err)
			}
		}
	}()
}
