package postgresql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cmlabs-hris/payroll-engine/internal/domain/leave"
	"github.com/cmlabs-hris/payroll-engine/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

type leaveRequestRepositoryImpl struct {
	db *database.DB
}

func NewLeaveRequestRepository(db *database.DB) leave.LeaveRequestRepository {
	return &leaveRequestRepositoryImpl{db: db}
}

const leaveRequestColumns = `
	lr.id, lr.employee_id, lr.leave_type, lr.start_date, lr.end_date, lr.reason, lr.status,
	lr.decided_by, lr.decided_at, lr.requested_at, lr.updated_at, e.full_name`

const leaveRequestFrom = ` FROM leave_requests lr LEFT JOIN employees e ON e.id = lr.employee_id`

func scanLeaveRequest(row pgx.Row) (leave.LeaveRequest, error) {
	var lr leave.LeaveRequest
	err := row.Scan(
		&lr.ID, &lr.EmployeeID, &lr.LeaveType, &lr.StartDate, &lr.EndDate, &lr.Reason, &lr.Status,
		&lr.DecidedBy, &lr.DecidedAt, &lr.RequestedAt, &lr.UpdatedAt, &lr.EmployeeName,
	)
	return lr, err
}

func (r *leaveRequestRepositoryImpl) query(ctx context.Context, where string, args ...interface{}) ([]leave.LeaveRequest, error) {
	q := GetQuerier(ctx, r.db)

	rows, err := q.Query(ctx, `SELECT `+leaveRequestColumns+leaveRequestFrom+` `+where, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query leave requests: %w", err)
	}
	defer rows.Close()

	var requests []leave.LeaveRequest
	for rows.Next() {
		lr, err := scanLeaveRequest(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan leave request: %w", err)
		}
		requests = append(requests, lr)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate leave requests: %w", err)
	}
	return requests, nil
}

// Create implements leave.LeaveRequestRepository.
func (r *leaveRequestRepositoryImpl) Create(ctx context.Context, request leave.LeaveRequest) (leave.LeaveRequest, error) {
	q := GetQuerier(ctx, r.db)

	if request.ID == "" {
		request.ID = newID()
	}
	if request.Status == "" {
		request.Status = leave.LeaveRequestStatusPending
	}

	query := `
		INSERT INTO leave_requests (id, employee_id, leave_type, start_date, end_date, reason, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING requested_at, updated_at
	`

	err := q.QueryRow(ctx, query,
		request.ID, request.EmployeeID, request.LeaveType, request.StartDate, request.EndDate,
		request.Reason, request.Status,
	).Scan(&request.RequestedAt, &request.UpdatedAt)
	if err != nil {
		return leave.LeaveRequest{}, fmt.Errorf("failed to create leave request: %w", err)
	}

	return request, nil
}

// GetByID implements leave.LeaveRequestRepository.
func (r *leaveRequestRepositoryImpl) GetByID(ctx context.Context, id string) (leave.LeaveRequest, error) {
	q := GetQuerier(ctx, r.db)

	lr, err := scanLeaveRequest(q.QueryRow(ctx, `SELECT `+leaveRequestColumns+leaveRequestFrom+` WHERE lr.id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return leave.LeaveRequest{}, leave.ErrLeaveRequestNotFound
		}
		return leave.LeaveRequest{}, fmt.Errorf("failed to get leave request: %w", err)
	}
	return lr, nil
}

// ListByEmployeeID implements leave.LeaveRequestRepository.
func (r *leaveRequestRepositoryImpl) ListByEmployeeID(ctx context.Context, employeeID string) ([]leave.LeaveRequest, error) {
	return r.query(ctx, `WHERE lr.employee_id = $1 ORDER BY lr.start_date DESC`, employeeID)
}

// List implements leave.LeaveRequestRepository.
func (r *leaveRequestRepositoryImpl) List(ctx context.Context, status *leave.LeaveRequestStatus) ([]leave.LeaveRequest, error) {
	if status == nil {
		return r.query(ctx, `ORDER BY lr.requested_at DESC`)
	}
	return r.query(ctx, `WHERE lr.status = $1 ORDER BY lr.requested_at DESC`, *status)
}

// ListApprovedOverlapping implements leave.LeaveRequestRepository.
func (r *leaveRequestRepositoryImpl) ListApprovedOverlapping(ctx context.Context, from, to time.Time) ([]leave.LeaveRequest, error) {
	return r.query(ctx, `
		WHERE lr.status = $1 AND lr.start_date <= $3 AND lr.end_date >= $2
		ORDER BY lr.start_date`,
		leave.LeaveRequestStatusApproved, from, to,
	)
}

// UpdateStatus implements leave.LeaveRequestRepository.
func (r *leaveRequestRepositoryImpl) UpdateStatus(ctx context.Context, id string, from, to leave.LeaveRequestStatus, decidedBy string, decidedAt time.Time) (leave.LeaveRequest, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE leave_requests
		SET status = $3, decided_by = $4, decided_at = $5, updated_at = now()
		WHERE id = $1 AND status = $2
	`

	tag, err := q.Exec(ctx, query, id, from, to, decidedBy, decidedAt)
	if err != nil {
		return leave.LeaveRequest{}, fmt.Errorf("failed to update leave request status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		if _, err := r.GetByID(ctx, id); err != nil {
			return leave.LeaveRequest{}, err
		}
		return leave.LeaveRequest{}, leave.ErrLeaveRequestAlreadyProcessed
	}

	return r.GetByID(ctx, id)
}
