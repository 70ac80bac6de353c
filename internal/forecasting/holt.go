package forecasting

import (
	"context"
	"math"
)

// MinExponentialSmoothingMonths is the shortest series Holt smoothing accepts.
const MinExponentialSmoothingMonths = 6

// holt is additive-trend exponential smoothing without seasonality.
//
//	level_t = alpha*y_t + (1-alpha)*(level_{t-1} + trend_{t-1})
//	trend_t = beta*(level_t - level_{t-1}) + (1-beta)*trend_{t-1}
//
// The one-step prediction for y_t is level_{t-1} + trend_{t-1}.
type holt struct {
	alpha, beta float64
	level       float64
	trend       float64
	resid       []float64
}

// holtPass runs the recursions over y from the initial state and returns the
// final state and the fitted-minus-actual residuals.
func holtPass(y []float64, alpha, beta, level, trend float64) (float64, float64, []float64) {
	resid := make([]float64, len(y))
	for t, v := range y {
		fitted := level + trend
		resid[t] = fitted - v
		prev := level
		level = alpha*v + (1-alpha)*(level+trend)
		trend = beta*(level-prev) + (1-beta)*trend
	}
	return level, trend, resid
}

// fitHolt estimates alpha, beta and the initial level and trend by minimizing
// the in-sample squared error. The search runs on y divided by its mean
// absolute value.
func fitHolt(ctx context.Context, values []float64, s fitSettings) (*holt, error) {
	scale := scaleOf(values)
	y := make([]float64, len(values))
	for i, v := range values {
		y[i] = v / scale
	}

	sse := func(x []float64) float64 {
		_, _, resid := holtPass(y, sigmoid(x[0]), sigmoid(x[1]), x[2], x[3])
		var sum float64
		for _, e := range resid {
			sum += e * e
		}
		if !allFinite(sum) {
			return math.Inf(1)
		}
		return sum
	}

	// Start from the line through the first two points so a linear series
	// is fitted exactly.
	b0 := y[1] - y[0]
	x0 := []float64{logit(0.5), logit(0.1), y[0] - b0, b0}

	x, _, err := minimize(ctx, sse, x0, s)
	if err != nil {
		return nil, err
	}

	alpha, beta := sigmoid(x[0]), sigmoid(x[1])
	level, trend, resid := holtPass(y, alpha, beta, x[2], x[3])
	for i := range resid {
		resid[i] *= scale
	}
	m := &holt{
		alpha: alpha,
		beta:  beta,
		level: level * scale,
		trend: trend * scale,
		resid: resid,
	}
	if !allFinite(m.alpha, m.beta, m.level, m.trend) {
		return nil, errNonFinite
	}
	return m, nil
}

func (m *holt) forecast(h int) []float64 {
	out := make([]float64, h)
	for i := range out {
		out[i] = m.level + float64(i+1)*m.trend
	}
	return out
}

func (m *holt) residuals() []float64 { return m.resid }

func (m *holt) parameters() map[string]any {
	return map[string]any{
		"trend":    "additive",
		"seasonal": nil,
		"alpha":    m.alpha,
		"beta":     m.beta,
	}
}
