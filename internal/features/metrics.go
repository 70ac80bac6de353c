package features

import (
	"sort"
	"time"

	"salespulse/pkg/contracts/domain"
)

// DateRange spans the dated rows of a table.
type DateRange struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
	Days  int       `json:"days"`
}

// Metrics are the headline KPIs of a table.
type Metrics struct {
	TotalRevenue        float64   `json:"total_revenue"`
	TotalOrders         int       `json:"total_orders"`
	AverageOrderValue   float64   `json:"average_order_value"`
	TotalUnitsSold      float64   `json:"total_units_sold"`
	UniqueProducts      int       `json:"unique_products"`
	UniqueCategories    int       `json:"unique_categories"`
	UniqueCustomerTypes int       `json:"unique_customer_types"`
	DateRange           DateRange `json:"date_range"`
	// TotalGrowthPct compares the last month with the first.
	TotalGrowthPct float64 `json:"total_growth_pct"`
	// AvgMonthlyGrowthPct is the mean month-over-month change.
	AvgMonthlyGrowthPct float64 `json:"avg_monthly_growth_pct"`
}

// Aggregate computes the KPIs of t.
func Aggregate(t domain.Table) Metrics {
	m := Metrics{
		TotalOrders:       len(t),
		AverageOrderValue: averageRevenue(t),
	}

	products := map[string]struct{}{}
	categories := map[string]struct{}{}
	customers := map[string]struct{}{}
	for _, r := range t {
		if v, ok := r.Revenue.Float(); ok {
			m.TotalRevenue += v
		}
		if v, ok := r.Quantity.Float(); ok {
			m.TotalUnitsSold += v
		}
		if !r.Product.Missing() {
			products[r.Product.Value] = struct{}{}
		}
		if !r.Category.Missing() {
			categories[r.Category.Value] = struct{}{}
		}
		if !r.CustomerType.Missing() {
			customers[r.CustomerType.Value] = struct{}{}
		}
		if r.HasDate() {
			if m.DateRange.Start.IsZero() || r.OrderDate.Before(m.DateRange.Start) {
				m.DateRange.Start = r.OrderDate
			}
			if r.OrderDate.After(m.DateRange.End) {
				m.DateRange.End = r.OrderDate
			}
		}
	}
	m.UniqueProducts = len(products)
	m.UniqueCategories = len(categories)
	m.UniqueCustomerTypes = len(customers)
	if !m.DateRange.Start.IsZero() {
		m.DateRange.Days = int(m.DateRange.End.Sub(m.DateRange.Start).Hours() / 24)
	}

	m.TotalGrowthPct, m.AvgMonthlyGrowthPct = growth(MonthlyRevenue(t).Values())
	return m
}

// growth returns the first-to-last change and the mean month-over-month
// change in percent. Changes from a non-positive month are skipped.
func growth(monthly []float64) (total, avg float64) {
	if len(monthly) < 2 {
		return 0, 0
	}
	first, last := monthly[0], monthly[len(monthly)-1]
	if first > 0 {
		total = (last - first) / first * 100
	}

	var sum float64
	n := 0
	for i := 1; i < len(monthly); i++ {
		if monthly[i-1] <= 0 {
			continue
		}
		sum += (monthly[i] - monthly[i-1]) / monthly[i-1] * 100
		n++
	}
	if n > 0 {
		avg = sum / float64(n)
	}
	return total, avg
}

// Dimension names a grouping column for Breakdown.
type Dimension string

const (
	ByProduct      Dimension = domain.ColumnProduct
	ByCategory     Dimension = domain.ColumnCategory
	ByRegion       Dimension = domain.ColumnRegion
	ByCustomerType Dimension = domain.ColumnCustomerType
)

// Segment is one group of a breakdown.
type Segment struct {
	Name              string  `json:"name"`
	Revenue           float64 `json:"revenue"`
	Orders            int     `json:"orders"`
	Units             float64 `json:"units"`
	AverageOrderValue float64 `json:"average_order_value"`
	SharePct          float64 `json:"share_pct"`
}

// Breakdown groups t by dim, largest revenue first with ties by name.
func Breakdown(t domain.Table, dim Dimension) []Segment {
	key := func(r domain.Record) domain.Text {
		switch dim {
		case ByCategory:
			return r.Category
		case ByRegion:
			return r.Region
		case ByCustomerType:
			return r.CustomerType
		default:
			return r.Product
		}
	}

	index := map[string]int{}
	var (
		segments []Segment
		total    float64
		priced   []int
	)
	for _, r := range t {
		name := key(r).Value
		i, ok := index[name]
		if !ok {
			i = len(segments)
			index[name] = i
			segments = append(segments, Segment{Name: name})
			priced = append(priced, 0)
		}
		s := &segments[i]
		s.Orders++
		if v, ok := r.Quantity.Float(); ok {
			s.Units += v
		}
		if v, ok := r.Revenue.Float(); ok {
			s.Revenue += v
			total += v
			priced[i]++
		}
	}

	for i := range segments {
		if priced[i] > 0 {
			segments[i].AverageOrderValue = segments[i].Revenue / float64(priced[i])
		}
		if total != 0 {
			segments[i].SharePct = segments[i].Revenue / total * 100
		}
	}
	sort.SliceStable(segments, func(i, j int) bool {
		if segments[i].Revenue != segments[j].Revenue {
			return segments[i].Revenue > segments[j].Revenue
		}
		return segments[i].Name < segments[j].Name
	})
	return segments
}
