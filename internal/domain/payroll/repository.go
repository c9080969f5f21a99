package payroll

import (
	"context"
	"time"
)

// PayrollRunRepository defines data access for payroll_runs.
type PayrollRunRepository interface {
	Create(ctx context.Context, run PayrollRun) (PayrollRun, error)
	GetByID(ctx context.Context, id string) (PayrollRun, error)
	List(ctx context.Context, status *RunStatus) ([]PayrollRun, error)
	UpdateTotals(ctx context.Context, id string, totals Totals) error
	// TransitionStatus is a compare-and-swap on status: it only updates the
	// row while it is still in from, and returns ErrInvalidStateTransition
	// otherwise. actorID is stored as approver or payer depending on to.
	TransitionStatus(ctx context.Context, id string, from, to RunStatus, actorID string, at time.Time) (PayrollRun, error)
	// Delete removes a run that is not PAID.
	Delete(ctx context.Context, id string) error
}

// PaycheckRepository defines data access for paychecks.
type PaycheckRepository interface {
	BulkCreate(ctx context.Context, paychecks []Paycheck) error
	GetByID(ctx context.Context, id string) (Paycheck, error)
	ListByRunID(ctx context.Context, runID string) ([]Paycheck, error)
	ListByEmployeeID(ctx context.Context, employeeID string) ([]Paycheck, error)
	UpdateStatusByRunID(ctx context.Context, runID string, from, to RunStatus) (int, error)
	DeleteByRunID(ctx context.Context, runID string) error
}

// RunEventRepository stores the audit trail of run transitions.
type RunEventRepository interface {
	Create(ctx context.Context, event RunEvent) error
	ListByRunID(ctx context.Context, runID string) ([]RunEvent, error)
}
