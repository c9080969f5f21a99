package attendance

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/cmlabs-hris/payroll-engine/internal/domain/attendance"
	"github.com/cmlabs-hris/payroll-engine/internal/domain/employee"
	"github.com/cmlabs-hris/payroll-engine/internal/domain/leave"
)

type fakeAttendanceRepo struct {
	mu      sync.Mutex
	seq     int
	records []attendance.Attendance
}

func (r *fakeAttendanceRepo) Create(_ context.Context, a attendance.Attendance) (attendance.Attendance, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.records {
		if existing.EmployeeID == a.EmployeeID && existing.Date.Equal(a.Date) {
			return attendance.Attendance{}, attendance.ErrAlreadyClockedIn
		}
	}
	r.seq++
	a.ID = fmt.Sprintf("att-%d", r.seq)
	r.records = append(r.records, a)
	return a, nil
}

func (r *fakeAttendanceRepo) GetByEmployeeAndDate(_ context.Context, employeeID string, date time.Time) (attendance.Attendance, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, a := range r.records {
		if a.EmployeeID == employeeID && a.Date.Equal(date) {
			return a, nil
		}
	}
	return attendance.Attendance{}, attendance.ErrAttendanceNotFound
}

func (r *fakeAttendanceRepo) SetClockOut(_ context.Context, id string, clockOut time.Time) (attendance.Attendance, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, a := range r.records {
		if a.ID != id {
			continue
		}
		if a.ClockOut != nil {
			return attendance.Attendance{}, attendance.ErrAlreadyClockedOut
		}
		r.records[i].ClockOut = &clockOut
		return r.records[i], nil
	}
	return attendance.Attendance{}, attendance.ErrAttendanceNotFound
}

func (r *fakeAttendanceRepo) ListByEmployeeAndRange(_ context.Context, employeeID string, from, to time.Time) ([]attendance.Attendance, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []attendance.Attendance
	for _, a := range r.records {
		if a.EmployeeID == employeeID && !a.Date.Before(from) && !a.Date.After(to) {
			out = append(out, a)
		}
	}
	return out, nil
}

func (r *fakeAttendanceRepo) ListByDate(_ context.Context, date time.Time) ([]attendance.Attendance, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []attendance.Attendance
	for _, a := range r.records {
		if a.Date.Equal(date) {
			out = append(out, a)
		}
	}
	return out, nil
}

// BulkCreateAbsences skips existing (employee, date) pairs like the unique
// constraint does.
func (r *fakeAttendanceRepo) BulkCreateAbsences(ctx context.Context, employeeIDs []string, date time.Time) (int, error) {
	n := 0
	for _, id := range employeeIDs {
		_, err := r.Create(ctx, attendance.Attendance{EmployeeID: id, Date: date, Status: attendance.StatusAbsent})
		if err == nil {
			n++
		}
	}
	return n, nil
}

type fakeEmployeeRepo struct {
	employees []employee.Employee
}

func (r *fakeEmployeeRepo) GetByID(_ context.Context, id string) (employee.Employee, error) {
	for _, e := range r.employees {
		if e.ID == id {
			return e, nil
		}
	}
	return employee.Employee{}, employee.ErrEmployeeNotFound
}

func (r *fakeEmployeeRepo) ListActive(_ context.Context) ([]employee.Employee, error) {
	var out []employee.Employee
	for _, e := range r.employees {
		if e.IsActive() {
			out = append(out, e)
		}
	}
	return out, nil
}

// fakeLeaveRepo serves approved-leave reads only.
type fakeLeaveRepo struct {
	leave.LeaveRequestRepository
	requests []leave.LeaveRequest
}

func (r *fakeLeaveRepo) ListApprovedOverlapping(_ context.Context, from, to time.Time) ([]leave.LeaveRequest, error) {
	var out []leave.LeaveRequest
	for _, l := range r.requests {
		if l.Status == leave.LeaveRequestStatusApproved && !l.StartDate.After(to) && !l.EndDate.Before(from) {
			out = append(out, l)
		}
	}
	return out, nil
}
