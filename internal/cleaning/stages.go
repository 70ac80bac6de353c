package cleaning

import (
	"fmt"
	"math"
	"strings"

	"salespulse/pkg/contracts/domain"
)

// Stage is one repair step of the pipeline. Apply never modifies its input;
// it returns a new table together with the audit entries it produced.
type Stage struct {
	Name  string
	Apply func(domain.Table) (domain.Table, []string)
}

// filterRows keeps the rows for which keep returns true.
func filterRows(t domain.Table, keep func(domain.Record) bool) (domain.Table, int) {
	out := make(domain.Table, 0, len(t))
	for _, r := range t {
		if keep(r) {
			out = append(out, r)
		}
	}
	return out, len(t) - len(out)
}

// standardizeDates parses Order_Date and drops rows whose date cannot be
// placed on a timeline. A row that already carries a parsed date and no raw
// text keeps that date.
func standardizeDates(t domain.Table) (domain.Table, []string) {
	out := make(domain.Table, 0, len(t))
	invalid := 0
	for _, r := range t {
		date, ok := ParseDate(r.RawDate)
		if !ok && strings.TrimSpace(r.RawDate) == "" && r.HasDate() {
			date, ok = calendarDate(r.OrderDate), true
		}
		if !ok {
			invalid++
			continue
		}
		r.OrderDate = date
		r.RawDate = date.Format("2006-01-02")
		out = append(out, r)
	}

	var log []string
	if invalid > 0 {
		log = append(log, fmt.Sprintf("Found %d invalid dates, removed %d orders", invalid, invalid))
	}
	return out, log
}

// handleMissing runs the missing-value sub-steps in order: identity fields,
// quantity, price, revenue recovery, then default fills.
func handleMissing(t domain.Table) (domain.Table, []string) {
	var log []string

	out, n := filterRows(t, func(r domain.Record) bool {
		return !r.OrderID.Missing() && !r.Product.Missing() && !r.Category.Missing()
	})
	if n > 0 {
		log = append(log, fmt.Sprintf("Removed %d orders with missing critical fields (ID/Product/Category)", n))
	}

	out, n = filterRows(out, func(r domain.Record) bool { return !r.Quantity.Missing() })
	if n > 0 {
		log = append(log, fmt.Sprintf("Removed %d orders with missing quantity", n))
	}

	out, n = filterRows(out, func(r domain.Record) bool { return !r.Price.Missing() })
	if n > 0 {
		log = append(log, fmt.Sprintf("Removed %d orders with missing price", n))
	}

	recalculated := 0
	for i := range out {
		if !out[i].Revenue.Missing() {
			continue
		}
		q, okQ := out[i].Quantity.Float()
		p, okP := out[i].Price.Float()
		if okQ && okP {
			out[i].Revenue = domain.NewNumber(q * p)
			recalculated++
		}
	}
	if recalculated > 0 {
		log = append(log, fmt.Sprintf("Recalculated %d missing revenue values from Quantity x Price", recalculated))
	}

	regions, customers := 0, 0
	for i := range out {
		if out[i].Region.Missing() {
			out[i].Region = domain.NewText(domain.UnknownValue)
			regions++
		}
		if out[i].CustomerType.Missing() {
			out[i].CustomerType = domain.NewText(domain.UnknownValue)
			customers++
		}
	}
	if regions > 0 {
		log = append(log, fmt.Sprintf("Filled %d missing regions with '%s'", regions, domain.UnknownValue))
	}
	if customers > 0 {
		log = append(log, fmt.Sprintf("Filled %d missing customer types with '%s'", customers, domain.UnknownValue))
	}

	return out, log
}

// removeDuplicates keeps the first row seen for each Order_ID in the
// table's current order.
func removeDuplicates(t domain.Table) (domain.Table, []string) {
	seen := make(map[string]struct{}, len(t))
	out, n := filterRows(t, func(r domain.Record) bool {
		key := strings.TrimSpace(r.OrderID.Value)
		if _, dup := seen[key]; dup {
			return false
		}
		seen[key] = struct{}{}
		return true
	})

	var log []string
	if n > 0 {
		log = append(log, fmt.Sprintf("Removed %d duplicate orders", n))
	}
	return out, log
}

// reconcileRevenue returns a stage that overwrites Revenue with
// Quantity x Price when they disagree by more than tolerancePct percent.
// Rows with a non-numeric quantity, price or revenue are left for type
// normalization.
func reconcileRevenue(tolerancePct float64) func(domain.Table) (domain.Table, []string) {
	return func(t domain.Table) (domain.Table, []string) {
		out := t.Clone()
		corrected := 0
		for i := range out {
			q, okQ := out[i].Quantity.Float()
			p, okP := out[i].Price.Float()
			rev, okR := out[i].Revenue.Float()
			if !okQ || !okP || !okR {
				continue
			}
			expected := q * p
			if RevenueMismatch(rev, expected, tolerancePct) {
				out[i].Revenue = domain.NewNumber(expected)
				corrected++
			}
		}

		var log []string
		if corrected > 0 {
			log = append(log, fmt.Sprintf("Found %d orders with incorrect revenue calculations, recalculated from Quantity x Price", corrected))
		}
		return out, log
	}
}

// RevenueMismatch reports whether revenue deviates from expected by more
// than tolerancePct percent of expected. A zero expected value only matches
// a zero revenue.
func RevenueMismatch(revenue, expected, tolerancePct float64) bool {
	if expected == 0 {
		return revenue != 0
	}
	return math.Abs(revenue-expected)/math.Abs(expected)*100 > tolerancePct
}

// normalizeTypes coerces numeric columns to numbers and text columns to
// trimmed text. Values that do not coerce become missing and are not
// dropped here.
func normalizeTypes(t domain.Table) (domain.Table, []string) {
	out := t.Clone()
	var nonNumeric [3]int
	for i := range out {
		r := &out[i]
		for j, cell := range []*domain.Number{&r.Quantity, &r.Price, &r.Revenue} {
			switch {
			case cell.IsNumeric():
				*cell = domain.NewNumber(cell.Value)
			case cell.Valid:
				*cell = domain.Number{}
				nonNumeric[j]++
			}
		}
		for _, cell := range []*domain.Text{&r.OrderID, &r.Product, &r.Category, &r.Region, &r.CustomerType} {
			if cell.Valid {
				cell.Value = strings.TrimSpace(cell.Value)
			}
		}
	}

	var log []string
	for j, col := range []string{domain.ColumnQuantity, domain.ColumnPrice, domain.ColumnRevenue} {
		if nonNumeric[j] > 0 {
			log = append(log, fmt.Sprintf("Converted %d non-numeric %s values to missing", nonNumeric[j], col))
		}
	}
	return out, log
}

// flagOutliers returns a stage that logs values beyond sigma standard
// deviations from their column mean. The table passes through unchanged;
// the reports go to sink when it is set.
func flagOutliers(sigma float64, sink *[]OutlierReport) func(domain.Table) (domain.Table, []string) {
	return func(t domain.Table) (domain.Table, []string) {
		reports := FindOutliers(t, sigma)
		if sink != nil {
			*sink = reports
		}
		var log []string
		for _, rep := range reports {
			if len(rep.Rows) == 0 {
				continue
			}
			log = append(log, fmt.Sprintf("Found %d potential outliers in %s (beyond %g standard deviations)",
				len(rep.Rows), rep.Column, sigma))
		}
		return t, log
	}
}
