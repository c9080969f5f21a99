// Package pdf renders paycheck documents.
package pdf

import (
	"fmt"
	"io"

	"github.com/cmlabs-hris/payroll-engine/internal/domain/payroll"
	"github.com/jung-kurt/gofpdf"
	"github.com/shopspring/decimal"
)

// PayslipRenderer writes one paycheck as an A4 PDF.
type PayslipRenderer struct {
	CompanyName string
}

func NewPayslipRenderer(companyName string) *PayslipRenderer {
	return &PayslipRenderer{CompanyName: companyName}
}

// Render implements the payslip writer used by the payroll service. Amounts
// are printed from their decimal string form, never through float64.
func (r *PayslipRenderer) Render(w io.Writer, p payroll.Paycheck) error {
	doc := gofpdf.New("P", "mm", "A4", "")
	doc.SetTitle(fmt.Sprintf("Payslip %s", p.ID), false)
	doc.AddPage()

	doc.SetFont("Helvetica", "B", 16)
	doc.Cell(0, 10, "Payslip")
	doc.Ln(10)
	if r.CompanyName != "" {
		doc.SetFont("Helvetica", "", 11)
		doc.Cell(0, 6, r.CompanyName)
		doc.Ln(8)
	}

	doc.SetFont("Helvetica", "", 11)
	doc.Cell(0, 7, fmt.Sprintf("Employee: %s", p.EmployeeName))
	doc.Ln(6)
	doc.Cell(0, 7, fmt.Sprintf("Period: %s to %s", p.PayPeriodStart.Format("2006-01-02"), p.PayPeriodEnd.Format("2006-01-02")))
	doc.Ln(6)
	doc.Cell(0, 7, fmt.Sprintf("Status: %s", p.Status))
	doc.Ln(10)

	section := func(title string) {
		doc.SetFont("Helvetica", "B", 12)
		doc.Cell(0, 8, title)
		doc.Ln(8)
		doc.SetFont("Helvetica", "", 11)
	}
	line := func(label string, amount decimal.Decimal) {
		doc.CellFormat(120, 7, label, "", 0, "L", false, 0, "")
		doc.CellFormat(50, 7, amount.StringFixed(2), "", 1, "R", false, 0, "")
	}

	section("Earnings")
	line("Base salary", p.BaseSalary)
	if p.WorkedDays > 0 {
		doc.CellFormat(120, 7, "Worked days", "", 0, "L", false, 0, "")
		doc.CellFormat(50, 7, fmt.Sprintf("%d", p.WorkedDays), "", 1, "R", false, 0, "")
	}
	line("Commission", p.CommissionAmount)
	line("Gross pay", p.GrossPay)
	doc.Ln(4)

	section("Deductions")
	line("Tax", p.TaxDeduction)
	line("Provident fund", p.ProvidentFundDeduction)
	line("Late penalty", p.LatePenalty)
	line("Absent penalty", p.AbsentPenalty)
	line("Total deductions", p.TotalDeductions)
	doc.Ln(4)

	doc.SetFont("Helvetica", "B", 12)
	line("Net pay", p.NetPay)

	if err := doc.Output(w); err != nil {
		return fmt.Errorf("failed to render payslip: %w", err)
	}
	return nil
}
