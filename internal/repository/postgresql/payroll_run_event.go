package postgresql

import (
	"context"
	"fmt"

	"github.com/cmlabs-hris/payroll-engine/internal/domain/payroll"
	"github.com/cmlabs-hris/payroll-engine/internal/pkg/database"
)

type runEventRepositoryImpl struct {
	db *database.DB
}

func NewRunEventRepository(db *database.DB) payroll.RunEventRepository {
	return &runEventRepositoryImpl{db: db}
}

// Create implements payroll.RunEventRepository.
func (r *runEventRepositoryImpl) Create(ctx context.Context, event payroll.RunEvent) error {
	q := GetQuerier(ctx, r.db)

	if event.ID == "" {
		event.ID = newID()
	}

	query := `
		INSERT INTO payroll_run_events (id, payroll_run_id, action, actor_id, from_status, to_status)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	if _, err := q.Exec(ctx, query, event.ID, event.RunID, event.Action, event.ActorID, event.FromStatus, event.ToStatus); err != nil {
		return fmt.Errorf("failed to create payroll run event: %w", err)
	}
	return nil
}

// ListByRunID implements payroll.RunEventRepository.
func (r *runEventRepositoryImpl) ListByRunID(ctx context.Context, runID string) ([]payroll.RunEvent, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT id, payroll_run_id, action, actor_id, from_status, to_status, created_at
		FROM payroll_run_events
		WHERE payroll_run_id = $1
		ORDER BY created_at, id
	`

	rows, err := q.Query(ctx, query, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to list payroll run events: %w", err)
	}
	defer rows.Close()

	var events []payroll.RunEvent
	for rows.Next() {
		var e payroll.RunEvent
		if err := rows.Scan(&e.ID, &e.RunID, &e.Action, &e.ActorID, &e.FromStatus, &e.ToStatus, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan payroll run event: %w", err)
		}
		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate payroll run events: %w", err)
	}
	return events, nil
}
