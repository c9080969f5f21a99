package postgresql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cmlabs-hris/payroll-engine/internal/domain/attendance"
	"github.com/cmlabs-hris/payroll-engine/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

type attendanceRepositoryImpl struct {
	db *database.DB
}

func NewAttendanceRepository(db *database.DB) attendance.AttendanceRepository {
	return &attendanceRepositoryImpl{db: db}
}

const attendanceColumns = `
	a.id, a.employee_id, a.date, a.clock_in, a.clock_out, a.status, a.remarks,
	a.created_at, a.updated_at, e.full_name`

const attendanceFrom = ` FROM attendances a LEFT JOIN employees e ON e.id = a.employee_id`

func scanAttendance(row pgx.Row) (attendance.Attendance, error) {
	var a attendance.Attendance
	err := row.Scan(
		&a.ID, &a.EmployeeID, &a.Date, &a.ClockIn, &a.ClockOut, &a.Status, &a.Remarks,
		&a.CreatedAt, &a.UpdatedAt, &a.EmployeeName,
	)
	return a, err
}

func collectAttendances(rows pgx.Rows) ([]attendance.Attendance, error) {
	defer rows.Close()

	var records []attendance.Attendance
	for rows.Next() {
		a, err := scanAttendance(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan attendance: %w", err)
		}
		records = append(records, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate attendances: %w", err)
	}
	return records, nil
}

// Create implements attendance.AttendanceRepository.
func (r *attendanceRepositoryImpl) Create(ctx context.Context, a attendance.Attendance) (attendance.Attendance, error) {
	q := GetQuerier(ctx, r.db)

	if a.ID == "" {
		a.ID = newID()
	}

	query := `
		INSERT INTO attendances (id, employee_id, date, clock_in, clock_out, status, remarks)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at, updated_at
	`

	err := q.QueryRow(ctx, query, a.ID, a.EmployeeID, a.Date, a.ClockIn, a.ClockOut, a.Status, a.Remarks).
		Scan(&a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return attendance.Attendance{}, attendance.ErrAlreadyClockedIn
		}
		return attendance.Attendance{}, fmt.Errorf("failed to create attendance: %w", err)
	}

	return a, nil
}

// GetByEmployeeAndDate implements attendance.AttendanceRepository.
func (r *attendanceRepositoryImpl) GetByEmployeeAndDate(ctx context.Context, employeeID string, date time.Time) (attendance.Attendance, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + attendanceColumns + attendanceFrom + ` WHERE a.employee_id = $1 AND a.date = $2`

	a, err := scanAttendance(q.QueryRow(ctx, query, employeeID, date))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return attendance.Attendance{}, attendance.ErrAttendanceNotFound
		}
		return attendance.Attendance{}, fmt.Errorf("failed to get attendance: %w", err)
	}
	return a, nil
}

// SetClockOut implements attendance.AttendanceRepository.
func (r *attendanceRepositoryImpl) SetClockOut(ctx context.Context, id string, clockOut time.Time) (attendance.Attendance, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE attendances SET clock_out = $2, updated_at = now()
		WHERE id = $1 AND clock_out IS NULL
	`

	tag, err := q.Exec(ctx, query, id, clockOut)
	if err != nil {
		return attendance.Attendance{}, fmt.Errorf("failed to set clock out: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return attendance.Attendance{}, attendance.ErrAlreadyClockedOut
	}

	a, err := scanAttendance(q.QueryRow(ctx, `SELECT `+attendanceColumns+attendanceFrom+` WHERE a.id = $1`, id))
	if err != nil {
		return attendance.Attendance{}, fmt.Errorf("failed to reload attendance: %w", err)
	}
	return a, nil
}

// ListByEmployeeAndRange implements attendance.AttendanceRepository.
func (r *attendanceRepositoryImpl) ListByEmployeeAndRange(ctx context.Context, employeeID string, from, to time.Time) ([]attendance.Attendance, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + attendanceColumns + attendanceFrom + `
		WHERE a.employee_id = $1 AND a.date BETWEEN $2 AND $3
		ORDER BY a.date`

	rows, err := q.Query(ctx, query, employeeID, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to list attendance for employee %s: %w", employeeID, err)
	}
	return collectAttendances(rows)
}

// ListByDate implements attendance.AttendanceRepository.
func (r *attendanceRepositoryImpl) ListByDate(ctx context.Context, date time.Time) ([]attendance.Attendance, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + attendanceColumns + attendanceFrom + ` WHERE a.date = $1 ORDER BY a.employee_id`

	rows, err := q.Query(ctx, query, date)
	if err != nil {
		return nil, fmt.Errorf("failed to list attendance for %s: %w", date.Format("2006-01-02"), err)
	}
	return collectAttendances(rows)
}

// BulkCreateAbsences implements attendance.AttendanceRepository.
func (r *attendanceRepositoryImpl) BulkCreateAbsences(ctx context.Context, employeeIDs []string, date time.Time) (int, error) {
	if len(employeeIDs) == 0 {
		return 0, nil
	}

	q := GetQuerier(ctx, r.db)

	ids := make([]string, len(employeeIDs))
	for i := range employeeIDs {
		ids[i] = newID()
	}

	query := `
		INSERT INTO attendances (id, employee_id, date, status)
		SELECT u.id, u.employee_id, $3, $4
		FROM unnest($1::uuid[], $2::uuid[]) AS u(id, employee_id)
		ON CONFLICT ON CONSTRAINT uq_attendances_employee_date DO NOTHING
	`

	tag, err := q.Exec(ctx, query, ids, employeeIDs, date, attendance.StatusAbsent)
	if err != nil {
		return 0, fmt.Errorf("failed to bulk create absences: %w", err)
	}

	return int(tag.RowsAffected()), nil
}
