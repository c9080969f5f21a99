package payroll

import (
	"testing"

	"github.com/cmlabs-hris/payroll-engine/internal/domain/employee"
	"github.com/cmlabs-hris/payroll-engine/internal/domain/payroll"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func decPtr(s string) *decimal.Decimal {
	d := dec(s)
	return &d
}

func assertMoney(t *testing.T, want string, got decimal.Decimal, field string) {
	t.Helper()
	assert.True(t, dec(want).Equal(got), "%s: want %s, got %s", field, want, got.String())
}

func sampleEmployee() employee.Employee {
	return employee.Employee{
		ID:                      "emp-1",
		FullName:                "Ada Lovelace",
		BaseSalary:              dec("3000.00"),
		TaxPercentage:           decPtr("0.10"),
		CommissionPercentage:    decPtr("0"),
		ProvidentFundPercentage: decPtr("0.05"),
		EmploymentStatus:        employee.EmploymentStatusActive,
	}
}

func TestCalculator_FromAttendance_FullPeriod(t *testing.T) {
	p := NewCalculator(22).FromAttendance(sampleEmployee(), 22)

	assertMoney(t, "3000.00", p.GrossPay, "gross")
	assertMoney(t, "300.00", p.TaxDeduction, "tax")
	assertMoney(t, "150.00", p.ProvidentFundDeduction, "pf")
	assertMoney(t, "450.00", p.TotalDeductions, "total deductions")
	assertMoney(t, "2550.00", p.NetPay, "net")
	assert.Equal(t, 22, p.WorkedDays)
}

func TestCalculator_FromAttendance_HalfPeriod(t *testing.T) {
	p := NewCalculator(22).FromAttendance(sampleEmployee(), 11)

	assertMoney(t, "136.3636", p.DailyRate, "daily rate")
	assertMoney(t, "1500.00", p.GrossPay, "gross")
	assertMoney(t, "150.00", p.TaxDeduction, "tax")
	assertMoney(t, "75.00", p.ProvidentFundDeduction, "pf")
	assertMoney(t, "1275.00", p.NetPay, "net")
}

func TestCalculator_FromAttendance_FullPeriodIsRoundingNeutral(t *testing.T) {
	salaries := []string{"1000.00", "2999.99", "3333.33", "4567.89", "12345.67", "0.01", "0.00"}
	for _, standard := range []int{20, 21, 22, 23} {
		calc := NewCalculator(standard)
		for _, s := range salaries {
			emp := sampleEmployee()
			emp.BaseSalary = dec(s)
			emp.CommissionPercentage = nil

			p := calc.FromAttendance(emp, standard)
			assertMoney(t, s, p.GrossPay, "gross for "+s)
		}
	}
}

func TestCalculator_FromAttendance_Commission(t *testing.T) {
	emp := sampleEmployee()
	emp.CommissionPercentage = decPtr("0.02")

	p := NewCalculator(22).FromAttendance(emp, 22)

	assertMoney(t, "60.00", p.CommissionAmount, "commission")
	assertMoney(t, "3060.00", p.GrossPay, "gross")
	assertMoney(t, "306.00", p.TaxDeduction, "tax")
	assertMoney(t, "153.00", p.ProvidentFundDeduction, "pf")
}

func TestCalculator_FromAttendance_MissingOrNegativePercentagesAreZero(t *testing.T) {
	emp := sampleEmployee()
	emp.TaxPercentage = nil
	emp.ProvidentFundPercentage = decPtr("-0.05")
	emp.CommissionPercentage = decPtr("-1")

	p := NewCalculator(22).FromAttendance(emp, 22)

	assertMoney(t, "3000.00", p.GrossPay, "gross")
	assertMoney(t, "0", p.TotalDeductions, "total deductions")
	assertMoney(t, "3000.00", p.NetPay, "net")
}

func TestCalculator_FromAttendance_NoWorkedDays(t *testing.T) {
	p := NewCalculator(22).FromAttendance(sampleEmployee(), 0)

	assertMoney(t, "0", p.GrossPay, "gross")
	assertMoney(t, "0", p.NetPay, "net")
}

func TestCalculator_FromAttendance_RoundsHalfUp(t *testing.T) {
	emp := sampleEmployee()
	emp.BaseSalary = dec("100.10")
	emp.TaxPercentage = decPtr("0.05")
	emp.ProvidentFundPercentage = nil

	p := NewCalculator(1).FromAttendance(emp, 1)

	// 100.10 * 0.05 = 5.005
	assertMoney(t, "5.01", p.TaxDeduction, "tax")
}

func TestCalculator_NetEqualsGrossMinusDeductions(t *testing.T) {
	calc := NewCalculator(22)
	for worked := 0; worked <= 23; worked++ {
		emp := sampleEmployee()
		emp.BaseSalary = dec("4321.77")
		emp.CommissionPercentage = decPtr("0.013")
		emp.TaxPercentage = decPtr("0.115")
		emp.ProvidentFundPercentage = decPtr("0.0725")

		p := calc.FromAttendance(emp, worked)
		assert.True(t, p.NetPay.Equal(p.GrossPay.Sub(p.TotalDeductions)), "worked=%d", worked)
		assert.True(t, p.TotalDeductions.Equal(p.TaxDeduction.Add(p.ProvidentFundDeduction)), "worked=%d", worked)
		assert.True(t, p.GrossPay.Equal(p.GrossPay.Round(2)), "worked=%d", worked)
	}
}

func TestCalculator_FromDetail(t *testing.T) {
	d := payroll.PaycheckDetail{
		EmployeeID:             "emp-1",
		BaseSalary:             decPtr("2500.00"),
		CommissionAmount:       decPtr("120.505"),
		TaxDeduction:           decPtr("250"),
		ProvidentFundDeduction: decPtr("125"),
		LatePenaltyDeduction:   decPtr("10.25"),
	}

	p := NewCalculator(22).FromDetail(sampleEmployee(), d)

	assertMoney(t, "120.51", p.CommissionAmount, "commission")
	assertMoney(t, "2620.51", p.GrossPay, "gross")
	assertMoney(t, "0", p.AbsentPenalty, "absent penalty")
	assertMoney(t, "385.25", p.TotalDeductions, "total deductions")
	assertMoney(t, "2235.26", p.NetPay, "net")
	assert.Equal(t, "Ada Lovelace", p.EmployeeName)
	assert.Zero(t, p.WorkedDays)
}

func TestCalculator_FromDetail_MissingAmountsAreZero(t *testing.T) {
	p := NewCalculator(22).FromDetail(sampleEmployee(), payroll.PaycheckDetail{EmployeeID: "emp-1"})

	assertMoney(t, "0", p.GrossPay, "gross")
	assertMoney(t, "0", p.TotalDeductions, "total deductions")
	assertMoney(t, "0", p.NetPay, "net")
}

func TestNewCalculator_PanicsOnNonPositiveDays(t *testing.T) {
	assert.Panics(t, func() { NewCalculator(0) })
}
