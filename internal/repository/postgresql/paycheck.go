package postgresql

import (
	"context"
	"errors"
	"fmt"

	"github.com/cmlabs-hris/payroll-engine/internal/domain/payroll"
	"github.com/cmlabs-hris/payroll-engine/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

type paycheckRepositoryImpl struct {
	db *database.DB
}

func NewPaycheckRepository(db *database.DB) payroll.PaycheckRepository {
	return &paycheckRepositoryImpl{db: db}
}

const paycheckColumns = `
	id, payroll_run_id, employee_id, employee_name, pay_period_start, pay_period_end,
	base_salary, daily_rate, worked_days, gross_pay, commission_amount,
	tax_deduction, provident_fund_deduction, late_penalty_deduction, absent_penalty_deduction,
	total_deductions, net_pay, status, created_at`

func scanPaycheck(row pgx.Row) (payroll.Paycheck, error) {
	var p payroll.Paycheck
	err := row.Scan(
		&p.ID, &p.PayrollRunID, &p.EmployeeID, &p.EmployeeName, &p.PayPeriodStart, &p.PayPeriodEnd,
		&p.BaseSalary, &p.DailyRate, &p.WorkedDays, &p.GrossPay, &p.CommissionAmount,
		&p.TaxDeduction, &p.ProvidentFundDeduction, &p.LatePenalty, &p.AbsentPenalty,
		&p.TotalDeductions, &p.NetPay, &p.Status, &p.CreatedAt,
	)
	return p, err
}

func (r *paycheckRepositoryImpl) query(ctx context.Context, where string, args ...interface{}) ([]payroll.Paycheck, error) {
	q := GetQuerier(ctx, r.db)

	rows, err := q.Query(ctx, `SELECT `+paycheckColumns+` FROM paychecks `+where, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query paychecks: %w", err)
	}
	defer rows.Close()

	var paychecks []payroll.Paycheck
	for rows.Next() {
		p, err := scanPaycheck(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan paycheck: %w", err)
		}
		paychecks = append(paychecks, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate paychecks: %w", err)
	}
	return paychecks, nil
}

// BulkCreate implements payroll.PaycheckRepository. Rows are sent as one
// batch; callers run it inside the transaction that created the run.
func (r *paycheckRepositoryImpl) BulkCreate(ctx context.Context, paychecks []payroll.Paycheck) error {
	if len(paychecks) == 0 {
		return nil
	}
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO paychecks (
			id, payroll_run_id, employee_id, employee_name, pay_period_start, pay_period_end,
			base_salary, daily_rate, worked_days, gross_pay, commission_amount,
			tax_deduction, provident_fund_deduction, late_penalty_deduction, absent_penalty_deduction,
			total_deductions, net_pay, status
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)
	`

	batch := &pgx.Batch{}
	for _, p := range paychecks {
		id := p.ID
		if id == "" {
			id = newID()
		}
		batch.Queue(query,
			id, p.PayrollRunID, p.EmployeeID, p.EmployeeName, p.PayPeriodStart, p.PayPeriodEnd,
			p.BaseSalary, p.DailyRate, p.WorkedDays, p.GrossPay, p.CommissionAmount,
			p.TaxDeduction, p.ProvidentFundDeduction, p.LatePenalty, p.AbsentPenalty,
			p.TotalDeductions, p.NetPay, p.Status,
		)
	}

	results := q.SendBatch(ctx, batch)
	for range paychecks {
		if _, err := results.Exec(); err != nil {
			results.Close()
			if isUniqueViolation(err) {
				return payroll.ErrDuplicateEmployee
			}
			return fmt.Errorf("failed to create paychecks: %w", err)
		}
	}
	if err := results.Close(); err != nil {
		return fmt.Errorf("failed to create paychecks: %w", err)
	}
	return nil
}

// GetByID implements payroll.PaycheckRepository.
func (r *paycheckRepositoryImpl) GetByID(ctx context.Context, id string) (payroll.Paycheck, error) {
	q := GetQuerier(ctx, r.db)

	p, err := scanPaycheck(q.QueryRow(ctx, `SELECT `+paycheckColumns+` FROM paychecks WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return payroll.Paycheck{}, payroll.ErrPaycheckNotFound
		}
		return payroll.Paycheck{}, fmt.Errorf("failed to get paycheck: %w", err)
	}
	return p, nil
}

// ListByRunID implements payroll.PaycheckRepository.
func (r *paycheckRepositoryImpl) ListByRunID(ctx context.Context, runID string) ([]payroll.Paycheck, error) {
	return r.query(ctx, `WHERE payroll_run_id = $1 ORDER BY employee_name, employee_id`, runID)
}

// ListByEmployeeID implements payroll.PaycheckRepository.
func (r *paycheckRepositoryImpl) ListByEmployeeID(ctx context.Context, employeeID string) ([]payroll.Paycheck, error) {
	return r.query(ctx, `WHERE employee_id = $1 ORDER BY pay_period_start DESC`, employeeID)
}

// UpdateStatusByRunID implements payroll.PaycheckRepository.
func (r *paycheckRepositoryImpl) UpdateStatusByRunID(ctx context.Context, runID string, from, to payroll.RunStatus) (int, error) {
	q := GetQuerier(ctx, r.db)

	tag, err := q.Exec(ctx, `UPDATE paychecks SET status = $3 WHERE payroll_run_id = $1 AND status = $2`, runID, from, to)
	if err != nil {
		return 0, fmt.Errorf("failed to update paycheck status: %w", err)
	}
	return int(tag.RowsAffected()), nil
}

// DeleteByRunID implements payroll.PaycheckRepository.
func (r *paycheckRepositoryImpl) DeleteByRunID(ctx context.Context, runID string) error {
	q := GetQuerier(ctx, r.db)

	if _, err := q.Exec(ctx, `DELETE FROM paychecks WHERE payroll_run_id = $1 AND status <> 'PAID'`, runID); err != nil {
		return fmt.Errorf("failed to delete paychecks: %w", err)
	}
	return nil
}
