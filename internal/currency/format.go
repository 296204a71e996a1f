// Package currency formats ledger amounts for reports and dashboards.
package currency

import (
	"math"
	"strconv"
	"strings"
)

// Symbol is the ledger currency symbol (Indian Rupee).
const Symbol = "₹"

// FormatINR renders an amount as ₹1,234,567.89.
func FormatINR(amount float64) string {
	sign := ""
	if amount < 0 {
		sign = "-"
		amount = -amount
	}
	s := strconv.FormatFloat(amount, 'f', 2, 64)
	dot := strings.IndexByte(s, '.')
	intPart, fracPart := s[:dot], s[dot:]

	var b strings.Builder
	b.WriteString(sign)
	b.WriteString(Symbol)
	lead := len(intPart) % 3
	if lead > 0 {
		b.WriteString(intPart[:lead])
		if len(intPart) > lead {
			b.WriteByte(',')
		}
	}
	for i := lead; i < len(intPart); i += 3 {
		b.WriteString(intPart[i : i+3])
		if i+3 < len(intPart) {
			b.WriteByte(',')
		}
	}
	b.WriteString(fracPart)
	return b.String()
}

// Percent returns part/whole as a percentage rounded to 2 decimals, with a
// zero whole yielding 0 rather than a division error.
func Percent(part, whole float64) float64 {
	if whole == 0 {
		return 0
	}
	return math.Round(part/whole*100*100) / 100
}
