package payroll

import (
	"fmt"
	"time"

	"github.com/cmlabs-hris/payroll-engine/internal/pkg/validator"
	"github.com/shopspring/decimal"
)

// ========== PREVIEW DTOs ==========

// PaycheckDetail is an admin-supplied paycheck line that bypasses
// attendance. Missing amounts count as zero.
type PaycheckDetail struct {
	EmployeeID             string           `json:"employee_id"`
	BaseSalary             *decimal.Decimal `json:"base_salary,omitempty"`
	CommissionAmount       *decimal.Decimal `json:"commission_amount,omitempty"`
	TaxDeduction           *decimal.Decimal `json:"tax_deduction,omitempty"`
	ProvidentFundDeduction *decimal.Decimal `json:"provident_fund_deduction,omitempty"`
	LatePenaltyDeduction   *decimal.Decimal `json:"late_penalty_deduction,omitempty"`
	AbsentPenaltyDeduction *decimal.Decimal `json:"absent_penalty_deduction,omitempty"`
}

type PreviewPayrollRequest struct {
	PayPeriodStart string           `json:"pay_period_start"`
	PayPeriodEnd   string           `json:"pay_period_end"`
	Details        []PaycheckDetail `json:"details,omitempty"`

	Start time.Time `json:"-"`
	End   time.Time `json:"-"`
}

// Validate parses the period into Start and End.
func (r *PreviewPayrollRequest) Validate() error {
	var errs validator.ValidationErrors

	start, okStart := validator.IsValidDate(r.PayPeriodStart)
	if !okStart {
		errs = append(errs, validator.ValidationError{Field: "pay_period_start", Message: "pay_period_start must be YYYY-MM-DD"})
	}
	end, okEnd := validator.IsValidDate(r.PayPeriodEnd)
	if !okEnd {
		errs = append(errs, validator.ValidationError{Field: "pay_period_end", Message: "pay_period_end must be YYYY-MM-DD"})
	}

	seen := make(map[string]bool, len(r.Details))
	for i, d := range r.Details {
		field := fmt.Sprintf("details[%d]", i)
		if validator.IsEmpty(d.EmployeeID) {
			errs = append(errs, validator.ValidationError{Field: field + ".employee_id", Message: "employee_id is required"})
			continue
		}
		if seen[d.EmployeeID] {
			errs = append(errs, validator.ValidationError{Field: field + ".employee_id", Message: ErrDuplicateEmployee.Error()})
		}
		seen[d.EmployeeID] = true

		amounts := []struct {
			name  string
			value *decimal.Decimal
		}{
			{"base_salary", d.BaseSalary},
			{"commission_amount", d.CommissionAmount},
			{"tax_deduction", d.TaxDeduction},
			{"provident_fund_deduction", d.ProvidentFundDeduction},
			{"late_penalty_deduction", d.LatePenaltyDeduction},
			{"absent_penalty_deduction", d.AbsentPenaltyDeduction},
		}
		for _, amount := range amounts {
			if amount.value != nil && amount.value.IsNegative() {
				errs = append(errs, validator.ValidationError{Field: field + "." + amount.name, Message: "must be non-negative"})
			}
		}
	}

	if len(errs) > 0 {
		return errs
	}
	if end.Before(start) {
		return fmt.Errorf("%w: pay_period_end is before pay_period_start", ErrInvalidPeriod)
	}

	r.Start, r.End = start, end
	return nil
}

// HasDetails reports whether the request uses detail-override mode.
func (r *PreviewPayrollRequest) HasDetails() bool {
	return len(r.Details) > 0
}

// ========== LIST DTOs ==========

type ListRunsRequest struct {
	Status string `json:"status"`
}

func (r *ListRunsRequest) Validate() error {
	switch RunStatus(r.Status) {
	case "", RunStatusDraft, RunStatusApproved, RunStatusPaid:
		return nil
	}
	return validator.ValidationErrors{{Field: "status", Message: "status must be DRAFT, APPROVED or PAID"}}
}

// ========== RESPONSE DTOs ==========

type PaycheckResponse struct {
	ID                     string          `json:"id"`
	PayrollRunID           string          `json:"payroll_run_id"`
	EmployeeID             string          `json:"employee_id"`
	EmployeeName           string          `json:"employee_name"`
	PayPeriodStart         string          `json:"pay_period_start"`
	PayPeriodEnd           string          `json:"pay_period_end"`
	BaseSalary             Amount          `json:"base_salary"`
	DailyRate              decimal.Decimal `json:"daily_rate"`
	WorkedDays             int             `json:"worked_days"`
	GrossPay               Amount          `json:"gross_pay"`
	CommissionAmount       Amount          `json:"commission_amount"`
	TaxDeduction           Amount          `json:"tax_deduction"`
	ProvidentFundDeduction Amount          `json:"provident_fund_deduction"`
	LatePenaltyDeduction   Amount          `json:"late_penalty_deduction"`
	AbsentPenaltyDeduction Amount          `json:"absent_penalty_deduction"`
	TotalDeductions        Amount          `json:"total_deductions"`
	NetPay                 Amount          `json:"net_pay"`
	Status                 RunStatus       `json:"status"`
}

type PayrollRunResponse struct {
	ID              string             `json:"id"`
	PayPeriodStart  string             `json:"pay_period_start"`
	PayPeriodEnd    string             `json:"pay_period_end"`
	Status          RunStatus          `json:"status"`
	CreatedBy       string             `json:"created_by"`
	ApprovedBy      *string            `json:"approved_by"`
	ApprovedAt      *time.Time         `json:"approved_at"`
	PaidBy          *string            `json:"paid_by,omitempty"`
	PaidAt          *time.Time         `json:"paid_at,omitempty"`
	TotalGrossPay   Amount             `json:"total_gross_pay"`
	TotalDeductions Amount             `json:"total_deductions"`
	TotalNetPay     Amount             `json:"total_net_pay"`
	CreatedAt       time.Time          `json:"created_at"`
	Paychecks       []PaycheckResponse `json:"paychecks,omitempty"`
}

type RunEventResponse struct {
	ID         string     `json:"id"`
	RunID      string     `json:"payroll_run_id"`
	Action     RunAction  `json:"action"`
	ActorID    string     `json:"actor_id"`
	FromStatus *RunStatus `json:"from_status,omitempty"`
	ToStatus   *RunStatus `json:"to_status,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
}

func ToPaycheckResponse(p Paycheck) PaycheckResponse {
	return PaycheckResponse{
		ID:                     p.ID,
		PayrollRunID:           p.PayrollRunID,
		EmployeeID:             p.EmployeeID,
		EmployeeName:           p.EmployeeName,
		PayPeriodStart:         p.PayPeriodStart.Format("2006-01-02"),
		PayPeriodEnd:           p.PayPeriodEnd.Format("2006-01-02"),
		BaseSalary:             NewAmount(p.BaseSalary),
		DailyRate:              p.DailyRate,
		WorkedDays:             p.WorkedDays,
		GrossPay:               NewAmount(p.GrossPay),
		CommissionAmount:       NewAmount(p.CommissionAmount),
		TaxDeduction:           NewAmount(p.TaxDeduction),
		ProvidentFundDeduction: NewAmount(p.ProvidentFundDeduction),
		LatePenaltyDeduction:   NewAmount(p.LatePenalty),
		AbsentPenaltyDeduction: NewAmount(p.AbsentPenalty),
		TotalDeductions:        NewAmount(p.TotalDeductions),
		NetPay:                 NewAmount(p.NetPay),
		Status:                 p.Status,
	}
}

func ToRunResponse(run PayrollRun) PayrollRunResponse {
	resp := PayrollRunResponse{
		ID:              run.ID,
		PayPeriodStart:  run.PayPeriodStart.Format("2006-01-02"),
		PayPeriodEnd:    run.PayPeriodEnd.Format("2006-01-02"),
		Status:          run.Status,
		CreatedBy:       run.CreatedBy,
		ApprovedBy:      run.ApprovedBy,
		ApprovedAt:      run.ApprovedAt,
		PaidBy:          run.PaidBy,
		PaidAt:          run.PaidAt,
		TotalGrossPay:   NewAmount(run.Totals.GrossPay),
		TotalDeductions: NewAmount(run.Totals.Deductions),
		TotalNetPay:     NewAmount(run.Totals.NetPay),
		CreatedAt:       run.CreatedAt,
	}
	for _, p := range run.Paychecks {
		resp.Paychecks = append(resp.Paychecks, ToPaycheckResponse(p))
	}
	return resp
}

func ToRunEventResponse(e RunEvent) RunEventResponse {
	return RunEventResponse{
		ID:         e.ID,
		RunID:      e.RunID,
		Action:     e.Action,
		ActorID:    e.ActorID,
		FromStatus: e.FromStatus,
		ToStatus:   e.ToStatus,
		CreatedAt:  e.CreatedAt,
	}
}
