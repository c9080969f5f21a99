package postgresql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cmlabs-hris/payroll-engine/internal/domain/payroll"
	"github.com/cmlabs-hris/payroll-engine/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

type payrollRunRepositoryImpl struct {
	db *database.DB
}

func NewPayrollRunRepository(db *database.DB) payroll.PayrollRunRepository {
	return &payrollRunRepositoryImpl{db: db}
}

const payrollRunColumns = `
	id, pay_period_start, pay_period_end, status, created_by,
	approved_by, approved_at, paid_by, paid_at,
	total_gross_pay, total_deductions, total_net_pay, created_at, updated_at`

func scanPayrollRun(row pgx.Row) (payroll.PayrollRun, error) {
	var run payroll.PayrollRun
	err := row.Scan(
		&run.ID, &run.PayPeriodStart, &run.PayPeriodEnd, &run.Status, &run.CreatedBy,
		&run.ApprovedBy, &run.ApprovedAt, &run.PaidBy, &run.PaidAt,
		&run.Totals.GrossPay, &run.Totals.Deductions, &run.Totals.NetPay, &run.CreatedAt, &run.UpdatedAt,
	)
	return run, err
}

// Create implements payroll.PayrollRunRepository.
func (r *payrollRunRepositoryImpl) Create(ctx context.Context, run payroll.PayrollRun) (payroll.PayrollRun, error) {
	q := GetQuerier(ctx, r.db)

	if run.ID == "" {
		run.ID = newID()
	}
	if run.Status == "" {
		run.Status = payroll.RunStatusDraft
	}

	query := `
		INSERT INTO payroll_runs (
			id, pay_period_start, pay_period_end, status, created_by,
			total_gross_pay, total_deductions, total_net_pay
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING ` + payrollRunColumns

	created, err := scanPayrollRun(q.QueryRow(ctx, query,
		run.ID, run.PayPeriodStart, run.PayPeriodEnd, run.Status, run.CreatedBy,
		run.Totals.GrossPay, run.Totals.Deductions, run.Totals.NetPay,
	))
	if err != nil {
		return payroll.PayrollRun{}, fmt.Errorf("failed to create payroll run: %w", err)
	}

	return created, nil
}

// GetByID implements payroll.PayrollRunRepository.
func (r *payrollRunRepositoryImpl) GetByID(ctx context.Context, id string) (payroll.PayrollRun, error) {
	q := GetQuerier(ctx, r.db)

	run, err := scanPayrollRun(q.QueryRow(ctx, `SELECT `+payrollRunColumns+` FROM payroll_runs WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return payroll.PayrollRun{}, payroll.ErrPayrollRunNotFound
		}
		return payroll.PayrollRun{}, fmt.Errorf("failed to get payroll run: %w", err)
	}
	return run, nil
}

// List implements payroll.PayrollRunRepository.
func (r *payrollRunRepositoryImpl) List(ctx context.Context, status *payroll.RunStatus) ([]payroll.PayrollRun, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + payrollRunColumns + ` FROM payroll_runs`
	var args []interface{}
	if status != nil {
		query += ` WHERE status = $1`
		args = append(args, *status)
	}
	query += ` ORDER BY pay_period_start DESC, created_at DESC`

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list payroll runs: %w", err)
	}
	defer rows.Close()

	var runs []payroll.PayrollRun
	for rows.Next() {
		run, err := scanPayrollRun(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan payroll run: %w", err)
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate payroll runs: %w", err)
	}
	return runs, nil
}

// UpdateTotals implements payroll.PayrollRunRepository.
func (r *payrollRunRepositoryImpl) UpdateTotals(ctx context.Context, id string, totals payroll.Totals) error {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE payroll_runs
		SET total_gross_pay = $2, total_deductions = $3, total_net_pay = $4, updated_at = now()
		WHERE id = $1 AND status = 'DRAFT'
	`

	tag, err := q.Exec(ctx, query, id, totals.GrossPay, totals.Deductions, totals.NetPay)
	if err != nil {
		return fmt.Errorf("failed to update payroll run totals: %w", err)
	}
	if tag.RowsAffected() == 0 {
		current, err := r.GetByID(ctx, id)
		if err != nil {
			return err
		}
		return fmt.Errorf("%w: run is %s", payroll.ErrInvalidStateTransition, current.Status)
	}
	return nil
}

// TransitionStatus implements payroll.PayrollRunRepository.
func (r *payrollRunRepositoryImpl) TransitionStatus(ctx context.Context, id string, from, to payroll.RunStatus, actorID string, at time.Time) (payroll.PayrollRun, error) {
	q := GetQuerier(ctx, r.db)

	var query string
	switch to {
	case payroll.RunStatusApproved:
		query = `
			UPDATE payroll_runs
			SET status = $3, approved_by = $4, approved_at = $5, updated_at = now()
			WHERE id = $1 AND status = $2
			RETURNING ` + payrollRunColumns
	case payroll.RunStatusPaid:
		query = `
			UPDATE payroll_runs
			SET status = $3, paid_by = $4, paid_at = $5, updated_at = now()
			WHERE id = $1 AND status = $2
			RETURNING ` + payrollRunColumns
	default:
		return payroll.PayrollRun{}, fmt.Errorf("%w: cannot move a run to %s", payroll.ErrInvalidStateTransition, to)
	}

	run, err := scanPayrollRun(q.QueryRow(ctx, query, id, from, to, actorID, at))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			current, getErr := r.GetByID(ctx, id)
			if getErr != nil {
				return payroll.PayrollRun{}, getErr
			}
			return payroll.PayrollRun{}, fmt.Errorf("%w: run is %s", payroll.ErrInvalidStateTransition, current.Status)
		}
		return payroll.PayrollRun{}, fmt.Errorf("failed to transition payroll run: %w", err)
	}
	return run, nil
}

// Delete implements payroll.PayrollRunRepository.
func (r *payrollRunRepositoryImpl) Delete(ctx context.Context, id string) error {
	q := GetQuerier(ctx, r.db)

	tag, err := q.Exec(ctx, `DELETE FROM payroll_runs WHERE id = $1 AND status <> 'PAID'`, id)
	if err != nil {
		return fmt.Errorf("failed to delete payroll run: %w", err)
	}
	if tag.RowsAffected() == 0 {
		current, getErr := r.GetByID(ctx, id)
		if getErr != nil {
			return getErr
		}
		if current.Status == payroll.RunStatusPaid {
			return payroll.ErrPaidRunImmutable
		}
		return payroll.ErrPayrollRunNotFound
	}
	return nil
}
