package attendance

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/cmlabs-hris/payroll-engine/internal/config"
	"github.com/cmlabs-hris/payroll-engine/internal/domain/attendance"
	"github.com/cmlabs-hris/payroll-engine/internal/domain/employee"
	"github.com/cmlabs-hris/payroll-engine/internal/domain/leave"
	"golang.org/x/sync/errgroup"
)

type AttendanceServiceImpl struct {
	attendance.AttendanceRepository
	employee.EmployeeRepository
	leave.LeaveRequestRepository

	classifier Classifier
	loc        *time.Location
	now        func() time.Time
}

func NewAttendanceService(
	attendanceRepo attendance.AttendanceRepository,
	employeeRepo employee.EmployeeRepository,
	leaveRepo leave.LeaveRequestRepository,
	cfg config.AttendanceConfig,
) attendance.AttendanceService {
	return &AttendanceServiceImpl{
		AttendanceRepository:   attendanceRepo,
		EmployeeRepository:     employeeRepo,
		LeaveRequestRepository: leaveRepo,
		classifier:             NewClassifier(cfg),
		loc:                    cfg.Location,
		now:                    time.Now,
	}
}

// dateOf returns the calendar day of t in loc, as a UTC midnight. DATE
// columns come back from the database in the same shape.
func dateOf(t time.Time, loc *time.Location) time.Time {
	local := t.In(loc)
	return time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, time.UTC)
}

// Today implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) Today() time.Time {
	return dateOf(s.now(), s.loc)
}

// ClockIn implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) ClockIn(ctx context.Context, employeeID string, req attendance.ClockRequest) (attendance.AttendanceResponse, error) {
	if err := req.Validate(); err != nil {
		return attendance.AttendanceResponse{}, err
	}

	now := s.now()
	today := dateOf(now, s.loc)

	emp, err := s.EmployeeRepository.GetByID(ctx, employeeID)
	if err != nil {
		return attendance.AttendanceResponse{}, err
	}
	if !emp.IsActive() {
		return attendance.AttendanceResponse{}, employee.ErrEmployeeInactive
	}

	leaves, err := s.LeaveRequestRepository.ListApprovedOverlapping(ctx, today, today)
	if err != nil {
		return attendance.AttendanceResponse{}, fmt.Errorf("failed to check approved leave: %w", err)
	}
	for _, l := range leaves {
		if l.EmployeeID == employeeID && l.Covers(today) {
			return attendance.AttendanceResponse{}, attendance.ErrOnApprovedLeave
		}
	}

	_, err = s.AttendanceRepository.GetByEmployeeAndDate(ctx, employeeID, today)
	if err == nil {
		return attendance.AttendanceResponse{}, attendance.ErrAlreadyClockedIn
	}
	if !errors.Is(err, attendance.ErrAttendanceNotFound) {
		return attendance.AttendanceResponse{}, fmt.Errorf("failed to check today's attendance: %w", err)
	}

	record := attendance.Attendance{
		EmployeeID: employeeID,
		Date:       today,
		ClockIn:    &now,
		Status:     s.classifier.Classify(&now),
		Remarks:    req.Remarks,
	}

	created, err := s.AttendanceRepository.Create(ctx, record)
	if err != nil {
		return attendance.AttendanceResponse{}, err
	}
	created.EmployeeName = &emp.FullName

	slog.InfoContext(ctx, "clock-in recorded",
		"employee_id", employeeID,
		"date", today.Format("2006-01-02"),
		"status", created.Status,
	)

	return attendance.ToResponse(created), nil
}

// ClockOut implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) ClockOut(ctx context.Context, employeeID string, req attendance.ClockRequest) (attendance.AttendanceResponse, error) {
	if err := req.Validate(); err != nil {
		return attendance.AttendanceResponse{}, err
	}

	now := s.now()
	today := dateOf(now, s.loc)

	record, err := s.AttendanceRepository.GetByEmployeeAndDate(ctx, employeeID, today)
	if err != nil {
		if errors.Is(err, attendance.ErrAttendanceNotFound) {
			return attendance.AttendanceResponse{}, attendance.ErrNotClockedIn
		}
		return attendance.AttendanceResponse{}, fmt.Errorf("failed to get today's attendance: %w", err)
	}
	if record.ClockIn == nil {
		return attendance.AttendanceResponse{}, attendance.ErrNotClockedIn
	}
	if record.ClockOut != nil {
		return attendance.AttendanceResponse{}, attendance.ErrAlreadyClockedOut
	}

	updated, err := s.AttendanceRepository.SetClockOut(ctx, record.ID, now)
	if err != nil {
		return attendance.AttendanceResponse{}, err
	}

	return attendance.ToResponse(updated), nil
}

// List implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) List(ctx context.Context, req attendance.ListAttendanceRequest) ([]attendance.AttendanceResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	records, err := s.AttendanceRepository.ListByEmployeeAndRange(ctx, req.EmployeeID, req.From, req.To)
	if err != nil {
		return nil, err
	}

	responses := make([]attendance.AttendanceResponse, 0, len(records))
	for _, r := range records {
		responses = append(responses, attendance.ToResponse(r))
	}
	return responses, nil
}

// GetOverview implements attendance.AttendanceService. The three reads run
// concurrently and are not taken from one snapshot.
func (s *AttendanceServiceImpl) GetOverview(ctx context.Context) (attendance.OverviewResponse, error) {
	today := s.Today()

	var (
		roster  []employee.Employee
		records []attendance.Attendance
		leaves  []leave.LeaveRequest
	)

	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		var err error
		roster, err = s.EmployeeRepository.ListActive(gCtx)
		return err
	})

	g.Go(func() error {
		var err error
		records, err = s.AttendanceRepository.ListByDate(gCtx, today)
		return err
	})

	g.Go(func() error {
		var err error
		leaves, err = s.LeaveRequestRepository.ListApprovedOverlapping(gCtx, today, today)
		return err
	})

	if err := g.Wait(); err != nil {
		return attendance.OverviewResponse{}, fmt.Errorf("failed to load attendance overview: %w", err)
	}

	o := aggregateOverview(today, roster, records, leaves)
	return attendance.OverviewResponse{
		Date:    o.Date.Format("2006-01-02"),
		Total:   o.Total,
		Present: o.Present,
		Late:    o.Late,
		OnLeave: o.OnLeave,
		Absent:  o.Absent,
	}, nil
}

// aggregateOverview counts each rostered employee once. An attendance
// record takes precedence over leave, and people who are not on the active
// roster are ignored.
func aggregateOverview(day time.Time, roster []employee.Employee, records []attendance.Attendance, leaves []leave.LeaveRequest) attendance.Overview {
	o := attendance.Overview{Date: day, Total: len(roster)}

	active := make(map[string]struct{}, len(roster))
	for _, e := range roster {
		active[e.ID] = struct{}{}
	}

	seen := make(map[string]struct{}, len(roster))
	for _, r := range records {
		if _, ok := active[r.EmployeeID]; !ok {
			continue
		}
		if _, dup := seen[r.EmployeeID]; dup {
			continue
		}
		switch r.Status {
		case attendance.StatusPresent:
			o.Present++
		case attendance.StatusLate:
			o.Late++
		case attendance.StatusOnLeave:
			o.OnLeave++
		default:
			continue
		}
		seen[r.EmployeeID] = struct{}{}
	}

	for _, l := range leaves {
		if _, ok := active[l.EmployeeID]; !ok || !l.Covers(day) {
			continue
		}
		if _, dup := seen[l.EmployeeID]; dup {
			continue
		}
		seen[l.EmployeeID] = struct{}{}
		o.OnLeave++
	}

	o.Absent = max(0, o.Total-len(seen))
	return o
}

// CloseDay implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) CloseDay(ctx context.Context, date time.Time) (int, error) {
	day := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, time.UTC)

	roster, err := s.EmployeeRepository.ListActive(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to list active employees: %w", err)
	}
	records, err := s.AttendanceRepository.ListByDate(ctx, day)
	if err != nil {
		return 0, fmt.Errorf("failed to list attendance: %w", err)
	}
	leaves, err := s.LeaveRequestRepository.ListApprovedOverlapping(ctx, day, day)
	if err != nil {
		return 0, fmt.Errorf("failed to list approved leave: %w", err)
	}

	absentees := selectAbsentees(day, roster, records, leaves)
	if len(absentees) == 0 {
		slog.InfoContext(ctx, "attendance day closed", "date", day.Format("2006-01-02"), "absent_inserted", 0)
		return 0, nil
	}

	inserted, err := s.AttendanceRepository.BulkCreateAbsences(ctx, absentees, day)
	if err != nil {
		return 0, fmt.Errorf("failed to insert absences: %w", err)
	}

	slog.InfoContext(ctx, "attendance day closed",
		"date", day.Format("2006-01-02"),
		"candidates", len(absentees),
		"absent_inserted", inserted,
	)
	return inserted, nil
}

// selectAbsentees returns active employees with no attendance record of any
// status for day and no approved leave covering it. Re-running after a
// close finds the ABSENT rows it wrote and selects nobody.
func selectAbsentees(day time.Time, roster []employee.Employee, records []attendance.Attendance, leaves []leave.LeaveRequest) []string {
	accounted := make(map[string]struct{}, len(records)+len(leaves))
	for _, r := range records {
		accounted[r.EmployeeID] = struct{}{}
	}
	for _, l := range leaves {
		if l.Covers(day) {
			accounted[l.EmployeeID] = struct{}{}
		}
	}

	var ids []string
	for _, e := range roster {
		if _, ok := accounted[e.ID]; ok {
			continue
		}
		ids = append(ids, e.ID)
	}
	return ids
}
