// Package features derives calendar, revenue and product attributes from a
// cleaned transaction table and aggregates it into the monthly revenue
// series consumed by forecasting.
//
// Every function is pure. Rows whose revenue is missing or non-numeric are
// left out of sums and means.
package features

import (
	"sort"
	"time"

	"salespulse/pkg/contracts/domain"
)

// Tier buckets an order by revenue relative to the average order value.
type Tier string

const (
	TierNone    Tier = ""
	TierLow     Tier = "Low"
	TierMedium  Tier = "Medium"
	TierHigh    Tier = "High"
	TierPremium Tier = "Premium"
)

// FeatureRow is a cleaned record with its derived attributes.
type FeatureRow struct {
	domain.Record

	Year                 int          `json:"year"`
	Quarter              int          `json:"quarter"`
	Month                int          `json:"month"`
	MonthName            string       `json:"month_name"`
	Day                  int          `json:"day"`
	DayName              string       `json:"day_name"`
	WeekOfYear           int          `json:"week_of_year"`
	YearMonth            domain.Month `json:"year_month"`
	DaysSinceFirstOrder  int          `json:"days_since_first_order"`
	AOV                  float64      `json:"aov"`
	OrderValueTier       Tier         `json:"order_value_tier,omitempty"`
	UnitRevenue          float64      `json:"unit_revenue"`
	ProductRevenueRank   int          `json:"product_revenue_rank"`
	CategoryRevenueShare float64      `json:"category_revenue_share"`
}

// Derive computes the feature set for every row of t, in order.
func Derive(t domain.Table) []FeatureRow {
	aov := averageRevenue(t)
	first := firstOrderDate(t)
	ranks := productRanks(t)
	shares := categoryShares(t)

	rows := make([]FeatureRow, len(t))
	for i, r := range t {
		f := FeatureRow{
			Record:               r,
			AOV:                  aov,
			ProductRevenueRank:   ranks[r.Product.Value],
			CategoryRevenueShare: shares[r.Category.Value],
		}
		if r.HasDate() {
			d := r.OrderDate
			_, week := d.ISOWeek()
			f.Year = d.Year()
			f.Quarter = (int(d.Month())-1)/3 + 1
			f.Month = int(d.Month())
			f.MonthName = d.Month().String()
			f.Day = d.Day()
			f.DayName = d.Weekday().String()
			f.WeekOfYear = week
			f.YearMonth = domain.MonthOf(d)
			f.DaysSinceFirstOrder = int(d.Sub(first).Hours() / 24)
		}
		if rev, ok := r.Revenue.Float(); ok {
			f.OrderValueTier = tierOf(rev, aov)
			if qty, ok := r.Quantity.Float(); ok && qty != 0 {
				f.UnitRevenue = rev / qty
			}
		}
		rows[i] = f
	}
	return rows
}

// tierOf places revenue into right-closed bins (0, a/2], (a/2, a], (a, 2a],
// (2a, inf). Non-positive revenue or average gets no tier.
func tierOf(revenue, aov float64) Tier {
	switch {
	case revenue <= 0 || aov <= 0:
		return TierNone
	case revenue <= aov*0.5:
		return TierLow
	case revenue <= aov:
		return TierMedium
	case revenue <= aov*2:
		return TierHigh
	default:
		return TierPremium
	}
}

func averageRevenue(t domain.Table) float64 {
	var sum float64
	n := 0
	for _, r := range t {
		if v, ok := r.Revenue.Float(); ok {
			sum += v
			n++
		}
	}
	if n == 0 {
		return 0
	}
	return sum / float64(n)
}

func firstOrderDate(t domain.Table) time.Time {
	var first time.Time
	for _, r := range t {
		if r.HasDate() && (first.IsZero() || r.OrderDate.Before(first)) {
			first = r.OrderDate
		}
	}
	return first
}

// productRanks ranks products by total revenue, 1 being the largest. Equal
// totals are ordered by product name.
func productRanks(t domain.Table) map[string]int {
	totals := revenueBy(t, func(r domain.Record) string { return r.Product.Value })
	names := make([]string, 0, len(totals))
	for name := range totals {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool {
		if totals[names[i]] != totals[names[j]] {
			return totals[names[i]] > totals[names[j]]
		}
		return names[i] < names[j]
	})
	ranks := make(map[string]int, len(names))
	for i, name := range names {
		ranks[name] = i + 1
	}
	return ranks
}

// categoryShares returns each category's percentage of total revenue.
func categoryShares(t domain.Table) map[string]float64 {
	totals := revenueBy(t, func(r domain.Record) string { return r.Category.Value })
	var all float64
	for _, v := range totals {
		all += v
	}
	shares := make(map[string]float64, len(totals))
	for name, v := range totals {
		if all != 0 {
			shares[name] = v / all * 100
		}
	}
	return shares
}

func revenueBy(t domain.Table, key func(domain.Record) string) map[string]float64 {
	totals := make(map[string]float64)
	for _, r := range t {
		k := key(r)
		if _, seen := totals[k]; !seen {
			totals[k] = 0
		}
		if v, ok := r.Revenue.Float(); ok {
			totals[k] += v
		}
	}
	return totals
}

// MonthlyRevenue sums revenue per calendar month of Order_Date. Only months
// with at least one dated row appear; gaps are not filled.
func MonthlyRevenue(t domain.Table) domain.Series {
	totals := make(map[domain.Month]float64)
	for _, r := range t {
		if !r.HasDate() {
			continue
		}
		m := domain.MonthOf(r.OrderDate)
		if _, seen := totals[m]; !seen {
			totals[m] = 0
		}
		if v, ok := r.Revenue.Float(); ok {
			totals[m] += v
		}
	}

	series := make(domain.Series, 0, len(totals))
	for m, v := range totals {
		series = append(series, domain.Point{Month: m, Value: v})
	}
	sort.Slice(series, func(i, j int) bool { return series[i].Month.Before(series[j].Month) })
	return series
}
