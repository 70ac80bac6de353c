package cleaning

import (
	"math"

	"gonum.org/v1/gonum/stat"

	"salespulse/pkg/contracts/domain"
)

// OutlierReport lists the rows of one numeric column lying more than the
// configured number of standard deviations from the column mean.
type OutlierReport struct {
	Column string  `json:"column"`
	Mean   float64 `json:"mean"`
	StdDev float64 `json:"std_dev"`
	Rows   []int   `json:"rows"`
}

// FindOutliers computes mean and population standard deviation of
// Quantity, Price and Revenue independently over the numeric cells of t and
// reports every row beyond sigma deviations. Missing and non-numeric cells
// are ignored.
func FindOutliers(t domain.Table, sigma float64) []OutlierReport {
	columns := []struct {
		name string
		get  func(domain.Record) domain.Number
	}{
		{domain.ColumnQuantity, func(r domain.Record) domain.Number { return r.Quantity }},
		{domain.ColumnPrice, func(r domain.Record) domain.Number { return r.Price }},
		{domain.ColumnRevenue, func(r domain.Record) domain.Number { return r.Revenue }},
	}

	reports := make([]OutlierReport, 0, len(columns))
	for _, col := range columns {
		var (
			values []float64
			rows   []int
		)
		for i, r := range t {
			if v, ok := col.get(r).Float(); ok {
				values = append(values, v)
				rows = append(rows, i)
			}
		}

		rep := OutlierReport{Column: col.name}
		if len(values) > 1 {
			var variance float64
			rep.Mean, variance = stat.PopMeanVariance(values, nil)
			rep.StdDev = math.Sqrt(math.Max(0, variance))
			if rep.StdDev > 0 {
				for k, v := range values {
					if math.Abs(v-rep.Mean) > sigma*rep.StdDev {
						rep.Rows = append(rep.Rows, rows[k])
					}
				}
			}
		}
		reports = append(reports, rep)
	}
	return reports
}
