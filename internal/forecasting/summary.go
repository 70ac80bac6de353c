package forecasting

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat"

	"salespulse/pkg/contracts/domain"
)

const (
	// summaryHistoryMonths is how many trailing historical months the
	// forecast is compared against.
	summaryHistoryMonths = 6
	// trendThresholdPct separates GROWTH and DECLINE from STABLE.
	trendThresholdPct = 5.0
)

// ErrEmptyForecast is returned when summarizing a result with no forecast.
var ErrEmptyForecast = errors.New("forecast result has no forecast points")

// Summarize condenses a forecast result into totals, a trend label and a
// recommendation narrative.
func Summarize(result domain.ForecastResult) (domain.ForecastSummary, error) {
	if len(result.Forecast) == 0 {
		return domain.ForecastSummary{}, ErrEmptyForecast
	}

	forecast := result.Forecast.Values()
	var total float64
	for _, v := range forecast {
		total += v
	}
	avgForecast := total / float64(len(forecast))

	var avgHist float64
	if hist := trailing(result.Historical.Values(), summaryHistoryMonths); len(hist) > 0 {
		avgHist = stat.Mean(hist, nil)
	}

	var change float64
	if avgHist > 0 {
		change = (avgForecast - avgHist) / avgHist * 100
	}

	trend := classify(change)
	return domain.ForecastSummary{
		TotalForecastRevenue: total,
		AvgMonthlyForecast:   avgForecast,
		AvgHistorical:        avgHist,
		ChangePct:            change,
		Trend:                trend,
		Interpretation:       interpret(trend, change),
	}, nil
}

func classify(changePct float64) domain.Trend {
	switch {
	case changePct > trendThresholdPct:
		return domain.TrendGrowth
	case changePct < -trendThresholdPct:
		return domain.TrendDecline
	default:
		return domain.TrendStable
	}
}

func interpret(trend domain.Trend, changePct float64) string {
	pct := math.Abs(changePct)
	switch trend {
	case domain.TrendGrowth:
		return fmt.Sprintf("Sales forecast shows %.1f%% growth. RECOMMENDATIONS: Increase inventory, expand capacity, "+
			"invest in marketing. Monitor fulfillment capabilities to handle increased demand.", pct)
	case domain.TrendDecline:
		return fmt.Sprintf("Sales forecast shows %.1f%% decline. RECOMMENDATIONS: Review pricing strategy, investigate "+
			"competition, enhance marketing efforts. Consider cost reduction measures.", pct)
	default:
		return fmt.Sprintf("Sales forecast shows stable pattern (%.1f%% change). RECOMMENDATIONS: Maintain current "+
			"operations, focus on efficiency, explore new growth opportunities.", pct)
	}
}
