package payroll

import (
	"time"

	"github.com/shopspring/decimal"
)

// RunStatus is shared by a run and all of its paychecks.
type RunStatus string

const (
	RunStatusDraft    RunStatus = "DRAFT"
	RunStatusApproved RunStatus = "APPROVED"
	RunStatusPaid     RunStatus = "PAID"
)

// CanTransitionTo reports whether next is the single allowed successor.
func (s RunStatus) CanTransitionTo(next RunStatus) bool {
	switch s {
	case RunStatusDraft:
		return next == RunStatusApproved
	case RunStatusApproved:
		return next == RunStatusPaid
	}
	return false
}

// IsDeletable is false only for PAID runs.
func (s RunStatus) IsDeletable() bool {
	return s == RunStatusDraft || s == RunStatusApproved
}

type Totals struct {
	GrossPay   decimal.Decimal
	Deductions decimal.Decimal
	NetPay     decimal.Decimal
}

// PayrollRun is the aggregate root. ApprovedBy never equals CreatedBy.
type PayrollRun struct {
	ID             string
	PayPeriodStart time.Time
	PayPeriodEnd   time.Time
	Status         RunStatus
	CreatedBy      string
	ApprovedBy     *string
	ApprovedAt     *time.Time
	PaidBy         *string
	PaidAt         *time.Time
	Totals         Totals
	CreatedAt      time.Time
	UpdatedAt      time.Time

	Paychecks []Paycheck
}

// Paycheck belongs to exactly one run. Money fields are rounded to cents
// and frozen once the run leaves DRAFT.
type Paycheck struct {
	ID             string
	PayrollRunID   string
	EmployeeID     string
	EmployeeName   string
	PayPeriodStart time.Time
	PayPeriodEnd   time.Time

	BaseSalary decimal.Decimal
	DailyRate  decimal.Decimal
	WorkedDays int

	GrossPay               decimal.Decimal
	CommissionAmount       decimal.Decimal
	TaxDeduction           decimal.Decimal
	ProvidentFundDeduction decimal.Decimal
	LatePenalty            decimal.Decimal
	AbsentPenalty          decimal.Decimal
	TotalDeductions        decimal.Decimal
	NetPay                 decimal.Decimal

	Status    RunStatus
	CreatedAt time.Time
}

// SumTotals adds already-rounded paycheck amounts.
func SumTotals(paychecks []Paycheck) Totals {
	t := Totals{GrossPay: decimal.Zero, Deductions: decimal.Zero, NetPay: decimal.Zero}
	for _, p := range paychecks {
		t.GrossPay = t.GrossPay.Add(p.GrossPay)
		t.Deductions = t.Deductions.Add(p.TotalDeductions)
		t.NetPay = t.NetPay.Add(p.NetPay)
	}
	return t
}

type RunAction string

const (
	RunActionCreated  RunAction = "created"
	RunActionApproved RunAction = "approved"
	RunActionPaid     RunAction = "paid"
	RunActionDeleted  RunAction = "deleted"
)

// RunEvent is an append-only audit entry for a run transition.
type RunEvent struct {
	ID         string
	RunID      string
	Action     RunAction
	ActorID    string
	FromStatus *RunStatus
	ToStatus   *RunStatus
	CreatedAt  time.Time
}
