package forecasting

import (
	"context"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"salespulse/pkg/contracts/domain"
)

// Comparison is one method's outcome in a side-by-side run. Exactly one of
// Result and Err is set.
type Comparison struct {
	Method  domain.Method           `json:"method"`
	Result  *domain.ForecastResult  `json:"result,omitempty"`
	Summary *domain.ForecastSummary `json:"summary,omitempty"`
	Error   string                  `json:"error,omitempty"`
	Err     error                   `json:"-"`
}

// Compare forecasts series with each method concurrently. A failing method
// does not affect the others; its error is reported in its Comparison.
// With no methods given every supported method is run. Results keep the
// order of methods.
func (e *Engine) Compare(ctx context.Context, series domain.Series, horizon int, methods ...domain.Method) []Comparison {
	if len(methods) == 0 {
		methods = domain.Methods()
	}

	out := make([]Comparison, len(methods))
	g, gctx := errgroup.WithContext(ctx)
	for i, method := range methods {
		own := series.Clone()
		g.Go(func() error {
			c := Comparison{Method: method}
			result, err := e.Forecast(gctx, own, method, horizon)
			if err != nil {
				c.Err = err
				c.Error = err.Error()
			} else {
				c.Result = &result
				if summary, serr := Summarize(result); serr == nil {
					c.Summary = &summary
				}
			}
			out[i] = c
			return nil
		})
	}
	_ = g.Wait()

	failed := 0
	for _, c := range out {
		if c.Err != nil {
			failed++
		}
	}
	e.logger.InfoContext(ctx, "method comparison complete",
		slog.Int("methods", len(methods)),
		slog.Int("failed", failed))
	return out
}
