package payroll

import (
	"github.com/cmlabs-hris/payroll-engine/internal/domain/employee"
	"github.com/cmlabs-hris/payroll-engine/internal/domain/payroll"
	"github.com/shopspring/decimal"
)

const (
	moneyPlaces     = 2
	dailyRatePlaces = 4
)

// Calculator turns compensation inputs into a paycheck. It does not touch
// storage and never fails; the caller fills in run and period fields.
//
// Every derived amount is rounded half away from zero to cents on its own,
// so run totals add up exactly from the stored paycheck values.
type Calculator struct {
	standardWorkingDays decimal.Decimal
}

// NewCalculator panics on a non-positive standardWorkingDays; config
// validation rejects that value at startup.
func NewCalculator(standardWorkingDays int) Calculator {
	if standardWorkingDays <= 0 {
		panic("payroll: standard working days must be positive")
	}
	return Calculator{standardWorkingDays: decimal.NewFromInt(int64(standardWorkingDays))}
}

func round2(d decimal.Decimal) decimal.Decimal {
	return d.Round(moneyPlaces)
}

// fraction treats a missing or negative percentage as zero so an incomplete
// employee profile still produces a paycheck.
func fraction(p *decimal.Decimal) decimal.Decimal {
	if p == nil || p.IsNegative() {
		return decimal.Zero
	}
	return *p
}

func amount(a *decimal.Decimal) decimal.Decimal {
	if a == nil {
		return decimal.Zero
	}
	return *a
}

// FromAttendance prorates the base salary by worked days and applies the
// employee's commission, tax and provident fund percentages.
func (c Calculator) FromAttendance(emp employee.Employee, workedDays int) payroll.Paycheck {
	base := emp.BaseSalary
	dailyRate := base.DivRound(c.standardWorkingDays, dailyRatePlaces)
	commission := base.Mul(fraction(emp.CommissionPercentage))

	gross := round2(dailyRate.Mul(decimal.NewFromInt(int64(workedDays))).Add(commission))
	tax := round2(gross.Mul(fraction(emp.TaxPercentage)))
	pf := round2(gross.Mul(fraction(emp.ProvidentFundPercentage)))
	total := tax.Add(pf)

	return payroll.Paycheck{
		EmployeeID:             emp.ID,
		EmployeeName:           emp.FullName,
		BaseSalary:             round2(base),
		DailyRate:              dailyRate,
		WorkedDays:             workedDays,
		GrossPay:               gross,
		CommissionAmount:       round2(commission),
		TaxDeduction:           tax,
		ProvidentFundDeduction: pf,
		LatePenalty:            decimal.Zero,
		AbsentPenalty:          decimal.Zero,
		TotalDeductions:        total,
		NetPay:                 gross.Sub(total),
	}
}

// FromDetail uses the admin-supplied amounts as they are. Attendance and
// the employee's percentages are not consulted.
func (c Calculator) FromDetail(emp employee.Employee, d payroll.PaycheckDetail) payroll.Paycheck {
	base := round2(amount(d.BaseSalary))
	commission := round2(amount(d.CommissionAmount))
	tax := round2(amount(d.TaxDeduction))
	pf := round2(amount(d.ProvidentFundDeduction))
	late := round2(amount(d.LatePenaltyDeduction))
	absent := round2(amount(d.AbsentPenaltyDeduction))

	gross := round2(base.Add(commission))
	total := round2(tax.Add(pf).Add(late).Add(absent))

	return payroll.Paycheck{
		EmployeeID:             emp.ID,
		EmployeeName:           emp.FullName,
		BaseSalary:             base,
		DailyRate:              decimal.Zero,
		GrossPay:               gross,
		CommissionAmount:       commission,
		TaxDeduction:           tax,
		ProvidentFundDeduction: pf,
		LatePenalty:            late,
		AbsentPenalty:          absent,
		TotalDeductions:        total,
		NetPay:                 gross.Sub(total),
	}
}
