package exporter

import (
	"strconv"
	"time"

	"github.com/shopspring/decimal"

	"salespulse/pkg/contracts/domain"
)

const dateLayout = "2006-01-02"

// formatMoney renders v with exactly 2 decimal places, rounding half away
// from zero on the shortest decimal form of v, so 1.005 becomes 1.01.
func formatMoney(v float64) string {
	return decimal.NewFromFloat(v).StringFixed(2)
}

// formatPercent renders a percentage with 2 decimal places.
func formatPercent(v float64) string {
	return decimal.NewFromFloat(v).StringFixed(2)
}

// formatMoneyCell renders a numeric cell as money. Missing cells are empty
// and non-numeric cells keep their raw text.
func formatMoneyCell(n domain.Number) string {
	v, ok := n.Float()
	if !ok {
		return n.String()
	}
	return formatMoney(v)
}

// formatDate renders a calendar date, empty when unset.
func formatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(dateLayout)
}

// formatInt formats an int value for CSV output
func formatInt(i int) string {
	return strconv.Itoa(i)
}
