package attendance

import (
	"time"

	"github.com/cmlabs-hris/payroll-engine/internal/config"
	"github.com/cmlabs-hris/payroll-engine/internal/domain/attendance"
)

// Classifier turns a clock-in into a daily status using fixed cutoffs.
// It assumes cfg has passed config.AttendanceConfig.Validate.
type Classifier struct {
	lateCutoff   config.ClockTime
	absentCutoff config.ClockTime
	loc          *time.Location
}

func NewClassifier(cfg config.AttendanceConfig) Classifier {
	return Classifier{
		lateCutoff:   cfg.LateCutoff,
		absentCutoff: cfg.AbsentCutoff,
		loc:          cfg.Location,
	}
}

// Classify compares clockIn with the cutoffs of its own calendar day. Both
// cutoffs are inclusive.
func (c Classifier) Classify(clockIn *time.Time) attendance.Status {
	if clockIn == nil {
		return attendance.StatusAbsent
	}

	switch t := *clockIn; {
	case !t.After(c.lateCutoff.On(t, c.loc)):
		return attendance.StatusPresent
	case !t.After(c.absentCutoff.On(t, c.loc)):
		return attendance.StatusLate
	default:
		return attendance.StatusAbsent
	}
}
