package payroll

import (
	"context"
	"io"

	"github.com/cmlabs-hris/payroll-engine/internal/domain/user"
)

// PayrollService drives payroll runs through DRAFT -> APPROVED -> PAID.
// Actor ids are trusted; authorization happens before these calls.
type PayrollService interface {
	// Lifecycle
	Preview(ctx context.Context, creatorID string, req PreviewPayrollRequest) (PayrollRunResponse, error)
	Finalize(ctx context.Context, runID, approverID string) (PayrollRunResponse, error)
	Pay(ctx context.Context, runID, actorID string) (PayrollRunResponse, error)
	Delete(ctx context.Context, runID, actorID string) error

	// Read side
	GetRun(ctx context.Context, runID string) (PayrollRunResponse, error)
	ListRuns(ctx context.Context, req ListRunsRequest) ([]PayrollRunResponse, error)
	ListRunEvents(ctx context.Context, runID string) ([]RunEventResponse, error)
	ListMyPaychecks(ctx context.Context, employeeID string) ([]PaycheckResponse, error)
	WritePayslip(ctx context.Context, paycheckID string, actor user.Actor, w io.Writer) error
}
