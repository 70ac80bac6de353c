package domain

import (
	"fmt"
	"time"
)

// Month is a calendar month, the unit of the revenue series.
type Month struct {
	Year  int
	Month time.Month
}

// MonthOf returns the month containing t.
func MonthOf(t time.Time) Month {
	return Month{Year: t.Year(), Month: t.Month()}
}

// ParseMonth parses a YYYY-MM key.
func ParseMonth(s string) (Month, error) {
	t, err := time.Parse("2006-01", s)
	if err != nil {
		return Month{}, fmt.Errorf("invalid month %q: expected YYYY-MM", s)
	}
	return MonthOf(t), nil
}

// String returns the chronologically sortable YYYY-MM key.
func (m Month) String() string {
	return fmt.Sprintf("%04d-%02d", m.Year, int(m.Month))
}

// Time returns midnight UTC on the first day of the month.
func (m Month) Time() time.Time {
	return time.Date(m.Year, m.Month, 1, 0, 0, 0, 0, time.UTC)
}

// AddMonths returns the month n months after m.
func (m Month) AddMonths(n int) Month {
	return MonthOf(m.Time().AddDate(0, n, 0))
}

// Next returns the following month.
func (m Month) Next() Month { return m.AddMonths(1) }

// Before reports whether m is earlier than o.
func (m Month) Before(o Month) bool {
	if m.Year != o.Year {
		return m.Year < o.Year
	}
	return m.Month < o.Month
}

// IsZero reports whether m is unset.
func (m Month) IsZero() bool { return m.Year == 0 && m.Month == 0 }

// MarshalText implements encoding.TextMarshaler.
func (m Month) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (m *Month) UnmarshalText(b []byte) error {
	parsed, err := ParseMonth(string(b))
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}

// Point is one month of a series.
type Point struct {
	Month Month   `json:"month"`
	Value float64 `json:"value"`
}

// Series is a monthly revenue series in chronological order.
type Series []Point

// Values returns the series values in order.
func (s Series) Values() []float64 {
	out := make([]float64, len(s))
	for i, p := range s {
		out[i] = p.Value
	}
	return out
}

// Clone returns an independent copy.
func (s Series) Clone() Series {
	if s == nil {
		return nil
	}
	out := make(Series, len(s))
	copy(out, s)
	return out
}

// LastMonth returns the final month of the series.
func (s Series) LastMonth() (Month, bool) {
	if len(s) == 0 {
		return Month{}, false
	}
	return s[len(s)-1].Month, true
}

// Method selects a forecasting strategy.
type Method string

const (
	MethodMovingAverage        Method = "moving_average"
	MethodExponentialSmoothing Method = "exponential_smoothing"
	MethodARIMA                Method = "arima"
)

// Methods lists the supported forecasting methods.
func Methods() []Method {
	return []Method{MethodMovingAverage, MethodExponentialSmoothing, MethodARIMA}
}

// Valid reports whether m is an exact match for a supported method.
func (m Method) Valid() bool {
	switch m {
	case MethodMovingAverage, MethodExponentialSmoothing, MethodARIMA:
		return true
	}
	return false
}

// DisplayName returns the human-readable method label.
func (m Method) DisplayName() string {
	switch m {
	case MethodMovingAverage:
		return "Moving Average"
	case MethodExponentialSmoothing:
		return "Exponential Smoothing"
	case MethodARIMA:
		return "ARIMA"
	}
	return string(m)
}

// ForecastResult is the output of one forecast invocation. Forecast,
// LowerBound and UpperBound are aligned month for month and start the month
// after the last historical month.
type ForecastResult struct {
	Method      Method         `json:"method"`
	MethodName  string         `json:"method_name"`
	Horizon     int            `json:"horizon"`
	Historical  Series         `json:"historical"`
	Forecast    Series         `json:"forecast"`
	LowerBound  Series         `json:"lower_bound"`
	UpperBound  Series         `json:"upper_bound"`
	Explanation string         `json:"explanation"`
	Confidence  string         `json:"confidence"`
	Parameters  map[string]any `json:"parameters,omitempty"`
}

// Trend classifies the forecast against recent history.
type Trend string

const (
	TrendGrowth  Trend = "GROWTH"
	TrendDecline Trend = "DECLINE"
	TrendStable  Trend = "STABLE"
)

// ForecastSummary is derived from exactly one ForecastResult.
type ForecastSummary struct {
	TotalForecastRevenue float64 `json:"total_forecast_revenue"`
	AvgMonthlyForecast   float64 `json:"avg_monthly_forecast"`
	AvgHistorical        float64 `json:"avg_historical"`
	ChangePct            float64 `json:"change_from_historical_pct"`
	Trend                Trend   `json:"trend"`
	Interpretation       string  `json:"interpretation"`
}
