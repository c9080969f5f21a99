package payroll

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"maps"
	"slices"
	"sync"
	"time"

	"github.com/cmlabs-hris/payroll-engine/internal/domain/attendance"
	"github.com/cmlabs-hris/payroll-engine/internal/domain/employee"
	"github.com/cmlabs-hris/payroll-engine/internal/domain/payroll"
	"github.com/cmlabs-hris/payroll-engine/internal/pkg/email"
)

// memStore backs all fake repositories. WithinTransaction snapshots it and
// restores the snapshot when fn fails.
type memStore struct {
	mu        sync.Mutex
	seq       int
	runs      map[string]payroll.PayrollRun
	paychecks map[string]payroll.Paycheck
	events    []payroll.RunEvent
	employees map[string]employee.Employee
	records   map[string][]attendance.Attendance

	failUpdateTotals error
}

func newMemStore() *memStore {
	return &memStore{
		runs:      map[string]payroll.PayrollRun{},
		paychecks: map[string]payroll.Paycheck{},
		employees: map[string]employee.Employee{},
		records:   map[string][]attendance.Attendance{},
	}
}

func (m *memStore) nextID(prefix string) string {
	m.seq++
	return fmt.Sprintf("%s-%d", prefix, m.seq)
}

func (m *memStore) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	m.mu.Lock()
	runs := maps.Clone(m.runs)
	paychecks := maps.Clone(m.paychecks)
	events := slices.Clone(m.events)
	m.mu.Unlock()

	if err := fn(ctx); err != nil {
		m.mu.Lock()
		m.runs, m.paychecks, m.events = runs, paychecks, events
		m.mu.Unlock()
		return err
	}
	return nil
}

type fakeRunRepo struct{ *memStore }

func (r fakeRunRepo) Create(_ context.Context, run payroll.PayrollRun) (payroll.PayrollRun, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	run.ID = r.nextID("run")
	run.CreatedAt = time.Now()
	run.UpdatedAt = run.CreatedAt
	r.runs[run.ID] = run
	return run, nil
}

func (r fakeRunRepo) GetByID(_ context.Context, id string) (payroll.PayrollRun, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	run, ok := r.runs[id]
	if !ok {
		return payroll.PayrollRun{}, payroll.ErrPayrollRunNotFound
	}
	return run, nil
}

func (r fakeRunRepo) List(_ context.Context, status *payroll.RunStatus) ([]payroll.PayrollRun, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var runs []payroll.PayrollRun
	for _, run := range r.runs {
		if status == nil || run.Status == *status {
			runs = append(runs, run)
		}
	}
	slices.SortFunc(runs, func(a, b payroll.PayrollRun) int { return a.CreatedAt.Compare(b.CreatedAt) })
	return runs, nil
}

func (r fakeRunRepo) UpdateTotals(_ context.Context, id string, totals payroll.Totals) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failUpdateTotals != nil {
		return r.failUpdateTotals
	}
	run, ok := r.runs[id]
	if !ok {
		return payroll.ErrPayrollRunNotFound
	}
	run.Totals = totals
	r.runs[id] = run
	return nil
}

func (r fakeRunRepo) TransitionStatus(_ context.Context, id string, from, to payroll.RunStatus, actorID string, at time.Time) (payroll.PayrollRun, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	run, ok := r.runs[id]
	if !ok {
		return payroll.PayrollRun{}, payroll.ErrPayrollRunNotFound
	}
	if run.Status != from {
		return payroll.PayrollRun{}, fmt.Errorf("%w: run is %s", payroll.ErrInvalidStateTransition, run.Status)
	}
	run.Status = to
	switch to {
	case payroll.RunStatusApproved:
		run.ApprovedBy, run.ApprovedAt = &actorID, &at
	case payroll.RunStatusPaid:
		run.PaidBy, run.PaidAt = &actorID, &at
	}
	r.runs[id] = run
	return run, nil
}

func (r fakeRunRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	run, ok := r.runs[id]
	if !ok {
		return payroll.ErrPayrollRunNotFound
	}
	if run.Status == payroll.RunStatusPaid {
		return payroll.ErrPaidRunImmutable
	}
	delete(r.runs, id)
	return nil
}

type fakePaycheckRepo struct{ *memStore }

func (r fakePaycheckRepo) BulkCreate(_ context.Context, paychecks []payroll.Paycheck) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range paychecks {
		p.ID = r.nextID("pc")
		r.paychecks[p.ID] = p
	}
	return nil
}

func (r fakePaycheckRepo) GetByID(_ context.Context, id string) (payroll.Paycheck, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.paychecks[id]
	if !ok {
		return payroll.Paycheck{}, payroll.ErrPaycheckNotFound
	}
	return p, nil
}

func (r fakePaycheckRepo) filter(keep func(payroll.Paycheck) bool) []payroll.Paycheck {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []payroll.Paycheck
	for _, p := range r.paychecks {
		if keep(p) {
			out = append(out, p)
		}
	}
	slices.SortFunc(out, func(a, b payroll.Paycheck) int {
		if a.EmployeeID < b.EmployeeID {
			return -1
		}
		if a.EmployeeID > b.EmployeeID {
			return 1
		}
		return 0
	})
	return out
}

func (r fakePaycheckRepo) ListByRunID(_ context.Context, runID string) ([]payroll.Paycheck, error) {
	return r.filter(func(p payroll.Paycheck) bool { return p.PayrollRunID == runID }), nil
}

func (r fakePaycheckRepo) ListByEmployeeID(_ context.Context, employeeID string) ([]payroll.Paycheck, error) {
	return r.filter(func(p payroll.Paycheck) bool { return p.EmployeeID == employeeID }), nil
}

func (r fakePaycheckRepo) UpdateStatusByRunID(_ context.Context, runID string, from, to payroll.RunStatus) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for id, p := range r.paychecks {
		if p.PayrollRunID == runID && p.Status == from {
			p.Status = to
			r.paychecks[id] = p
			n++
		}
	}
	return n, nil
}

func (r fakePaycheckRepo) DeleteByRunID(_ context.Context, runID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, p := range r.paychecks {
		if p.PayrollRunID == runID {
			delete(r.paychecks, id)
		}
	}
	return nil
}

type fakeEventRepo struct{ *memStore }

func (r fakeEventRepo) Create(_ context.Context, event payroll.RunEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	event.ID = r.nextID("ev")
	event.CreatedAt = time.Now()
	r.events = append(r.events, event)
	return nil
}

func (r fakeEventRepo) ListByRunID(_ context.Context, runID string) ([]payroll.RunEvent, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []payroll.RunEvent
	for _, e := range r.events {
		if e.RunID == runID {
			out = append(out, e)
		}
	}
	return out, nil
}

type fakeEmployeeRepo struct{ *memStore }

func (r fakeEmployeeRepo) GetByID(_ context.Context, id string) (employee.Employee, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.employees[id]
	if !ok {
		return employee.Employee{}, employee.ErrEmployeeNotFound
	}
	return e, nil
}

func (r fakeEmployeeRepo) ListActive(_ context.Context) ([]employee.Employee, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []employee.Employee
	for _, e := range r.employees {
		if e.IsActive() {
			out = append(out, e)
		}
	}
	slices.SortFunc(out, func(a, b employee.Employee) int {
		if a.ID < b.ID {
			return -1
		}
		if a.ID > b.ID {
			return 1
		}
		return 0
	})
	return out, nil
}

// fakeAttendanceRepo only serves range reads; the embedded nil interface
// panics on anything else.
type fakeAttendanceRepo struct {
	attendance.AttendanceRepository
	*memStore
}

func (r fakeAttendanceRepo) ListByEmployeeAndRange(_ context.Context, employeeID string, from, to time.Time) ([]attendance.Attendance, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []attendance.Attendance
	for _, a := range r.records[employeeID] {
		if !a.Date.Before(from) && !a.Date.After(to) {
			out = append(out, a)
		}
	}
	return out, nil
}

type fakeEmailService struct {
	mu       sync.Mutex
	approval [][]string
	paid     []string
}

func (f *fakeEmailService) SendRunAwaitingApproval(to []string, _ email.RunAwaitingApprovalData) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.approval = append(f.approval, to)
	return nil
}

func (f *fakeEmailService) SendPaycheckPaid(to string, _ email.PaycheckPaidData) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.paid = append(f.paid, to)
	return nil
}

type fakeRenderer struct{}

func (fakeRenderer) Render(w io.Writer, p payroll.Paycheck) error {
	_, err := io.Copy(w, bytes.NewBufferString("payslip:"+p.ID))
	return err
}
