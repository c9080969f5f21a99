package payroll

import "github.com/shopspring/decimal"

// Amount is a cent-scaled money value. It is written to JSON as a string
// with exactly two decimal places.
type Amount struct {
	decimal.Decimal
}

func NewAmount(d decimal.Decimal) Amount {
	return Amount{Decimal: d}
}

func (a Amount) MarshalJSON() ([]byte, error) {
	return []byte(`"` + a.StringFixed(2) + `"`), nil
}
