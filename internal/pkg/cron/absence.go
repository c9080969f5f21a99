package cron

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/cmlabs-hris/payroll-engine/internal/config"
)

// DayCloser writes ABSENT records for one calendar day.
type DayCloser interface {
	CloseDay(ctx context.Context, date time.Time) (int, error)
}

// AbsenceJobs closes each attendance day once the configured close time has
// passed. Before that time it closes the previous day, so yesterday is
// covered if the process was down at its close time. Once a day has been
// closed, every later day is closed in order, even if ticks were skipped
// or failed for several days. Days missed before the process started, other
// than yesterday, are not closed automatically.
type AbsenceJobs struct {
	closer  DayCloser
	closeAt config.ClockTime
	loc     *time.Location
	now     func() time.Time

	mu         sync.Mutex
	lastClosed time.Time
}

func NewAbsenceJobs(closer DayCloser, cfg config.AttendanceConfig) *AbsenceJobs {
	return &AbsenceJobs{
		closer:  closer,
		closeAt: cfg.CloseAt,
		loc:     cfg.Location,
		now:     time.Now,
	}
}

// RegisterJobs registers the day closer. It polls every minute and only
// does work once per day.
func (j *AbsenceJobs) RegisterJobs(scheduler *Scheduler) {
	scheduler.AddJob("close_attendance_day", time.Minute, j.CloseDueDay)
}

// dueDay returns the latest calendar day whose close time has passed.
func (j *AbsenceJobs) dueDay() time.Time {
	now := j.now().In(j.loc)
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	if now.Before(j.closeAt.On(now, j.loc)) {
		return today.AddDate(0, 0, -1)
	}
	return today
}

// CloseDueDay closes every day from the one after the last closed day up to
// the due day. The first run closes only the due day. CloseDay itself is
// idempotent, so a restart that repeats a day is safe.
func (j *AbsenceJobs) CloseDueDay(ctx context.Context) error {
	j.mu.Lock()
	defer j.mu.Unlock()

	due := j.dueDay()
	day := due
	if !j.lastClosed.IsZero() {
		if !due.After(j.lastClosed) {
			return nil
		}
		day = j.lastClosed.AddDate(0, 0, 1)
	}

	for ; !day.After(due); day = day.AddDate(0, 0, 1) {
		slog.InfoContext(ctx, "Cron: closing attendance day", "date", day.Format("2006-01-02"))

		inserted, err := j.closer.CloseDay(ctx, day)
		if err != nil {
			return fmt.Errorf("failed to close attendance day %s: %w", day.Format("2006-01-02"), err)
		}

		j.lastClosed = day
		slog.InfoContext(ctx, "Cron: attendance day closed", "date", day.Format("2006-01-02"), "absent_inserted", inserted)
	}
	return nil
}
