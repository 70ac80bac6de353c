package forecasting

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"salespulse/pkg/contracts/domain"
)

// BandZ is the half-width of the confidence band in standard deviations.
const BandZ = 1.96

const (
	DefaultFitTimeout    = 10 * time.Second
	DefaultMaxIterations = 2000
)

// Config tunes the forecasting methods.
type Config struct {
	Window        int
	ARIMAOrder    Order
	FitTimeout    time.Duration
	MaxIterations int
}

// DefaultConfig returns a 3-month window, ARIMA(1, 1, 1) and a ten second
// fit budget.
func DefaultConfig() Config {
	return Config{
		Window:        DefaultWindow,
		ARIMAOrder:    DefaultOrder,
		FitTimeout:    DefaultFitTimeout,
		MaxIterations: DefaultMaxIterations,
	}
}

// Option adjusts a single Forecast call.
type Option func(*Config)

// WithWindow overrides the moving-average window for one call.
func WithWindow(n int) Option {
	return func(c *Config) {
		if n > 0 {
			c.Window = n
		}
	}
}

// WithARIMAOrder overrides the ARIMA order for one call.
func WithARIMAOrder(o Order) Option {
	return func(c *Config) { c.ARIMAOrder = o }
}

// Engine projects a monthly revenue series forward. It holds no state
// between calls and is safe for concurrent use.
type Engine struct {
	cfg    Config
	logger *slog.Logger
}

// NewEngine creates an engine. Zero config fields fall back to defaults; a
// zero ARIMAOrder means unset since ARIMA(0, 0, 0) is not a valid order.
func NewEngine(cfg Config, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	def := DefaultConfig()
	if cfg.Window < 1 {
		cfg.Window = def.Window
	}
	if cfg.ARIMAOrder == (Order{}) {
		cfg.ARIMAOrder = def.ARIMAOrder
	}
	if cfg.FitTimeout <= 0 {
		cfg.FitTimeout = def.FitTimeout
	}
	if cfg.MaxIterations <= 0 {
		cfg.MaxIterations = def.MaxIterations
	}
	return &Engine{
		cfg:    cfg,
		logger: logger.With(slog.String("component", "forecast_engine")),
	}
}

// Config returns the engine defaults.
func (e *Engine) Config() Config { return e.cfg }

// Forecast projects series horizon months ahead with the named method.
//
// The method is checked before anything else, then the horizon, then the
// series order, then whether the method has enough months. On error the
// result is the zero value.
func (e *Engine) Forecast(ctx context.Context, series domain.Series, method domain.Method, horizon int, opts ...Option) (domain.ForecastResult, error) {
	start := time.Now()

	if !method.Valid() {
		return domain.ForecastResult{}, InvalidMethodError(method)
	}
	if horizon < 1 {
		return domain.ForecastResult{}, InvalidHorizonError(method, horizon)
	}

	cfg := e.cfg
	for _, opt := range opts {
		opt(&cfg)
	}

	history := series.Clone()
	if err := checkSeries(history, method); err != nil {
		return domain.ForecastResult{}, err
	}
	if err := ctx.Err(); err != nil {
		return domain.ForecastResult{}, fitFailure(method, "forecast cancelled", err)
	}

	m, err := e.fit(ctx, history.Values(), method, cfg)
	if err != nil {
		e.logger.WarnContext(ctx, "forecast failed",
			slog.String("method", string(method)),
			slog.Int("months", len(history)),
			slog.String("error", err.Error()))
		return domain.ForecastResult{}, err
	}

	predictions := m.forecast(horizon)
	sd := sigma(m)
	if !allFinite(sd) || !allFinite(predictions...) {
		return domain.ForecastResult{}, fitFailure(method, failureMessage(method), errNonFinite)
	}

	result := domain.ForecastResult{
		Method:      method,
		MethodName:  method.DisplayName(),
		Horizon:     horizon,
		Historical:  history,
		Forecast:    make(domain.Series, horizon),
		LowerBound:  make(domain.Series, horizon),
		UpperBound:  make(domain.Series, horizon),
		Explanation: explanation(method, cfg),
		Confidence:  confidence(method),
		Parameters:  m.parameters(),
	}
	month, _ := history.LastMonth()
	for i, v := range predictions {
		month = month.Next()
		result.Forecast[i] = domain.Point{Month: month, Value: v}
		result.LowerBound[i] = domain.Point{Month: month, Value: v - BandZ*sd}
		result.UpperBound[i] = domain.Point{Month: month, Value: v + BandZ*sd}
	}

	e.logger.InfoContext(ctx, "forecast complete",
		slog.String("method", string(method)),
		slog.Int("months", len(history)),
		slog.Int("horizon", horizon),
		slog.Float64("sigma", sd),
		slog.Duration("duration", time.Since(start)))

	return result, nil
}

func (e *Engine) fit(ctx context.Context, values []float64, method domain.Method, cfg Config) (model, error) {
	settings := fitSettings{maxIterations: cfg.MaxIterations, timeout: cfg.FitTimeout}

	switch method {
	case domain.MethodMovingAverage:
		return fitMovingAverage(values, cfg.Window), nil

	case domain.MethodExponentialSmoothing:
		m, err := fitHolt(ctx, values, settings)
		if err != nil {
			return nil, fitFailure(method, failureMessage(method), err)
		}
		return m, nil

	case domain.MethodARIMA:
		if err := cfg.ARIMAOrder.Validate(); err != nil {
			return nil, fitFailure(method, failureMessage(method), err)
		}
		m, err := fitARIMA(ctx, values, cfg.ARIMAOrder, settings)
		if err != nil {
			return nil, fitFailure(method, failureMessage(method), err)
		}
		return m, nil
	}
	return nil, InvalidMethodError(method)
}

// checkSeries rejects out-of-order or non-finite series and series too short
// for the method.
func checkSeries(s domain.Series, method domain.Method) error {
	for i, p := range s {
		if !allFinite(p.Value) {
			return &Error{
				Kind:    KindInvalidSeries,
				Method:  method,
				Message: fmt.Sprintf("value for %s is not a finite number", p.Month),
			}
		}
		if i > 0 && !s[i-1].Month.Before(p.Month) {
			return &Error{
				Kind:    KindInvalidSeries,
				Method:  method,
				Message: fmt.Sprintf("months must be strictly increasing: %s follows %s", p.Month, s[i-1].Month),
			}
		}
	}

	switch method {
	case domain.MethodMovingAverage:
		if len(s) == 0 {
			return insufficientData(method, "Need at least 1 month of historical data for a moving average")
		}
	case domain.MethodExponentialSmoothing:
		if len(s) < MinExponentialSmoothingMonths {
			return insufficientData(method, "Need at least 6 months of historical data for reliable exponential smoothing")
		}
	case domain.MethodARIMA:
		if len(s) < MinARIMAMonths {
			return insufficientData(method, "ARIMA requires at least 12 months of historical data")
		}
	}
	return nil
}

func failureMessage(method domain.Method) string {
	switch method {
	case domain.MethodExponentialSmoothing:
		return "Exponential smoothing failed - data may be too irregular"
	case domain.MethodARIMA:
		return "ARIMA forecast failed - trying simpler model recommended"
	}
	return "forecast failed"
}

func explanation(method domain.Method, cfg Config) string {
	switch method {
	case domain.MethodMovingAverage:
		return fmt.Sprintf("Forecast based on average of last %d months. Assumes stable sales pattern without strong trends.", cfg.Window)
	case domain.MethodExponentialSmoothing:
		return "Forecast using weighted average with more importance on recent months. Captures trend direction (growth/decline). Confidence intervals show 95% prediction range."
	case domain.MethodARIMA:
		return fmt.Sprintf("Statistical forecast using ARIMA%s. Model analyzes historical patterns, trends, and cycles. 95%% confidence interval provided.", cfg.ARIMAOrder)
	}
	return ""
}

func confidence(method domain.Method) string {
	switch method {
	case domain.MethodMovingAverage:
		return "Medium - Best for stable markets"
	case domain.MethodExponentialSmoothing:
		return "High - Recommended for trending data"
	case domain.MethodARIMA:
		return "Very High - Best for long-term planning"
	}
	return ""
}
