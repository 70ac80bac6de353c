package forecasting

import (
	"context"
	"errors"
	"math"
	"time"

	"gonum.org/v1/gonum/optimize"
	"gonum.org/v1/gonum/stat"
)

// model is a fitted forecaster. Implementations hold everything needed to
// extend the series they were fitted on.
type model interface {
	// forecast returns the next h point predictions.
	forecast(h int) []float64
	// residuals returns the in-sample errors used for the band width.
	residuals() []float64
	parameters() map[string]any
}

// sigma is the population standard deviation of the model residuals.
func sigma(m model) float64 {
	return popStdDev(m.residuals())
}

func popStdDev(x []float64) float64 {
	if len(x) == 0 {
		return 0
	}
	// rounding can leave a tiny negative variance for near-constant input
	return math.Sqrt(math.Max(0, stat.PopVariance(x, nil)))
}

// scaleOf returns the mean absolute value of x, or 1 when that is zero, so
// the optimizer works on values of order one.
func scaleOf(x []float64) float64 {
	var sum float64
	for _, v := range x {
		sum += math.Abs(v)
	}
	if len(x) == 0 || sum == 0 {
		return 1
	}
	return sum / float64(len(x))
}

func allFinite(x ...float64) bool {
	for _, v := range x {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

var (
	errFitTimeout = errors.New("exceeded time budget")
	errNonFinite  = errors.New("non-finite model values")
)

// fitSettings bounds a Nelder-Mead run.
type fitSettings struct {
	maxIterations int
	timeout       time.Duration
}

// minimize runs Nelder-Mead from x0. Reaching the iteration or evaluation
// cap keeps the best point found; running out of time or a cancelled
// context is an error.
func minimize(ctx context.Context, f func([]float64) float64, x0 []float64, s fitSettings) ([]float64, float64, error) {
	problem := optimize.Problem{
		Func: f,
		Status: func() (optimize.Status, error) {
			if err := ctx.Err(); err != nil {
				return optimize.Failure, err
			}
			return optimize.NotTerminated, nil
		},
	}
	settings := &optimize.Settings{
		MajorIterations: s.maxIterations,
		FuncEvaluations: 4 * s.maxIterations,
		Runtime:         s.timeout,
		Converger: &optimize.FunctionConverge{
			Absolute:   1e-12,
			Relative:   1e-10,
			Iterations: 200,
		},
	}

	result, err := optimize.Minimize(problem, x0, settings, &optimize.NelderMead{})
	if err != nil {
		return nil, 0, err
	}
	switch result.Status {
	case optimize.RuntimeLimit:
		return nil, 0, errFitTimeout
	case optimize.Failure:
		return nil, 0, result.Status.Err()
	}
	if !allFinite(result.F) || !allFinite(result.X...) {
		return nil, 0, errNonFinite
	}
	return result.X, result.F, nil
}

func sigmoid(x float64) float64 {
	return 1 / (1 + math.Exp(-x))
}

func logit(p float64) float64 {
	return math.Log(p / (1 - p))
}
