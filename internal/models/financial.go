package models

// FinancialMetrics are the four board-level summary figures.
type FinancialMetrics struct {
	TotalRevenue        float64 `json:"totalRevenue"`
	ExpensePaid         float64 `json:"expensePaid"`
	OutstandingPayments float64 `json:"outstandingPayments"`
	BillsToPay          float64 `json:"billsToPay"`
}

// Fields is a partial edit keyed by column name.
type Fields map[string]interface{}

type FieldSet map[string]struct{}

func (s FieldSet) Has(name string) bool {
	_, ok := s[name]
	return ok
}

// Touches reports whether any edited column is in the set.
func (s FieldSet) Touches(fields Fields) bool {
	for name := range fields {
		if s.Has(name) {
			return true
		}
	}
	return false
}

// Unknown returns the first edited column outside the set, if any.
func (s FieldSet) Unknown(fields Fields) (string, bool) {
	for name := range fields {
		if !s.Has(name) {
			return name, true
		}
	}
	return "", false
}
