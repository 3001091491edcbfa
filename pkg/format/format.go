// Package format renders amounts and dates the way the board shows them.
package format

import (
	"math"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

var printer = message.NewPrinter(language.MustParse("en-IN"))

// INR formats an amount in rupees with Indian digit grouping and two
// decimals, the sign ahead of the symbol. A missing amount renders as "₹0".
func INR(amount *float64) string {
	if amount == nil || math.IsNaN(*amount) {
		return "₹0"
	}
	rounded := math.Round(*amount*100) / 100
	sign := ""
	if rounded == 0 {
		rounded = 0 // drop the sign of -0
	} else if rounded < 0 {
		sign = "-"
		rounded = -rounded
	}
	return sign + "₹" + printer.Sprint(number.Decimal(rounded,
		number.MinFractionDigits(2),
		number.MaxFractionDigits(2),
	))
}

// Amount is INR for a value that is always present.
func Amount(amount float64) string {
	return INR(&amount)
}

// ShortDate renders a day and abbreviated month, "—" when absent.
func ShortDate(t *time.Time) string {
	if t == nil || t.IsZero() {
		return "—"
	}
	return t.Format("02 Jan")
}
