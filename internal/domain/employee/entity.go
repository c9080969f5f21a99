package employee

import (
	"time"

	"github.com/shopspring/decimal"
)

// Employee is the directory's view of a person on the payroll. Percentages
// are fractions, so 0.10 means ten percent.
type Employee struct {
	ID                      string
	UserID                  *string
	FullName                string
	Email                   *string
	BaseSalary              decimal.Decimal
	TaxPercentage           *decimal.Decimal
	CommissionPercentage    *decimal.Decimal
	ProvidentFundPercentage *decimal.Decimal
	EmploymentStatus        EmploymentStatus
	CreatedAt               time.Time
	UpdatedAt               time.Time
}

type EmploymentStatus string

const (
	EmploymentStatusActive   EmploymentStatus = "active"
	EmploymentStatusInactive EmploymentStatus = "inactive"
)

func (e Employee) IsActive() bool {
	return e.EmploymentStatus == EmploymentStatusActive
}
