// Package forecasting projects a monthly revenue series forward with a
// moving average, Holt exponential smoothing or ARIMA(p, d, q), and wraps
// each projection in a symmetric 95% band of forecast +/- 1.96 sigma.
//
// Model fitting sits behind a small internal capability (fit, forecast,
// residuals) so the numerical routine can change without touching callers.
// Estimation uses Nelder-Mead from gonum/optimize.
package forecasting
