package forecasting

import (
	"gonum.org/v1/gonum/stat"
)

// DefaultWindow is the moving-average window in months.
const DefaultWindow = 3

// movingAverage predicts each month as the mean of the trailing window,
// feeding its own predictions back in for later months.
type movingAverage struct {
	window  int
	history []float64
}

func fitMovingAverage(values []float64, window int) *movingAverage {
	if window < 1 {
		window = DefaultWindow
	}
	return &movingAverage{window: window, history: values}
}

func (m *movingAverage) forecast(h int) []float64 {
	extended := make([]float64, len(m.history), len(m.history)+h)
	copy(extended, m.history)
	for i := 0; i < h; i++ {
		extended = append(extended, stat.Mean(trailing(extended, m.window), nil))
	}
	return extended[len(m.history):]
}

// residuals are the deviations of the last window months from their mean;
// their spread sets the band width.
func (m *movingAverage) residuals() []float64 {
	tail := trailing(m.history, m.window)
	mean := stat.Mean(tail, nil)
	out := make([]float64, len(tail))
	for i, v := range tail {
		out[i] = v - mean
	}
	return out
}

func (m *movingAverage) parameters() map[string]any {
	return map[string]any{"window": m.window}
}

// trailing returns the last n values of x, or all of x when it is shorter.
func trailing(x []float64, n int) []float64 {
	if len(x) <= n {
		return x
	}
	return x[len(x)-n:]
}
