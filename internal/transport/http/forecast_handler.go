package http

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"salespulse/internal/config"
	apierrors "salespulse/internal/errors"
	"salespulse/internal/forecasting"
	"salespulse/internal/infrastructure"
	"salespulse/internal/middleware"
	"salespulse/internal/validation"
	"salespulse/pkg/contracts/domain"
)

var requestValidator = validation.NewRequestValidator()

// SeriesPoint is one month of revenue in a request body.
type SeriesPoint struct {
	Month   string   `json:"month" validate:"required,month"`
	Revenue *float64 `json:"revenue" validate:"required"`
}

// ForecastRequest is the body of POST /api/forecast. Method and Horizon
// default to the server configuration when omitted.
type ForecastRequest struct {
	Series  []SeriesPoint `json:"series" validate:"required,min=1,dive"`
	Method  string        `json:"method,omitempty"`
	Horizon *int          `json:"horizon,omitempty" validate:"omitempty,min=1,max=60"`
	Window  int           `json:"window,omitempty" validate:"omitempty,min=1,max=120"`
}

// Bind implements the render.Binder interface for request validation
func (req *ForecastRequest) Bind(r *http.Request) error {
	return requestValidator.Struct(req)
}

// CompareRequest is the body of POST /api/forecast/compare. An empty
// Methods list compares every supported method.
type CompareRequest struct {
	Series  []SeriesPoint   `json:"series" validate:"required,min=1,dive"`
	Horizon *int            `json:"horizon,omitempty" validate:"omitempty,min=1,max=60"`
	Methods []domain.Method `json:"methods,omitempty"`
}

// Bind implements the render.Binder interface for request validation
func (req *CompareRequest) Bind(r *http.Request) error {
	return requestValidator.Struct(req)
}

// ForecastResponse carries a forecast and its narrative summary.
type ForecastResponse struct {
	Result  domain.ForecastResult  `json:"result"`
	Summary domain.ForecastSummary `json:"summary"`
}

// CompareResponse carries one outcome per compared method.
type CompareResponse struct {
	Horizon     int                      `json:"horizon"`
	Comparisons []forecasting.Comparison `json:"comparisons"`
}

// ForecastHandler forecasts a monthly revenue series supplied by the client.
type ForecastHandler struct {
	engine   *forecasting.Engine
	defaults config.ForecastConfig
	errors   *apierrors.ErrorHandler
	logger   *slog.Logger
}

// NewForecastHandler creates a forecast handler
func NewForecastHandler(engine *forecasting.Engine, defaults config.ForecastConfig, errorHandler *apierrors.ErrorHandler, logger *slog.Logger) *ForecastHandler {
	return &ForecastHandler{
		engine:   engine,
		defaults: defaults,
		errors:   errorHandler,
		logger:   infrastructure.WithComponent(logger, "forecast_handler"),
	}
}

// Routes returns a chi router for forecast endpoints
func (h *ForecastHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.ContentTypeValidator("application/json"))
	r.Post("/", h.Forecast)
	r.Post("/compare", h.Compare)
	return r
}

// Forecast handles POST /api/forecast
func (h *ForecastHandler) Forecast(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	req := &ForecastRequest{}
	if err := render.Bind(r, req); err != nil {
		h.errors.HandleError(w, r, bindError(err))
		return
	}

	method := domain.Method(h.defaults.DefaultMethod)
	if req.Method != "" {
		method = domain.Method(req.Method)
	}
	horizon := h.defaults.Horizon
	if req.Horizon != nil {
		horizon = *req.Horizon
	}
	var opts []forecasting.Option
	if req.Window > 0 {
		opts = append(opts, forecasting.WithWindow(req.Window))
	}

	series, err := toSeries(req.Series)
	if err != nil {
		h.errors.HandleError(w, r, err)
		return
	}

	result, err := h.engine.Forecast(ctx, series, method, horizon, opts...)
	if err != nil {
		h.errors.HandleError(w, r, err)
		return
	}
	summary, err := forecasting.Summarize(result)
	if err != nil {
		h.errors.HandleError(w, r, err)
		return
	}

	h.logger.InfoContext(ctx, "forecast served",
		slog.String("method", string(method)),
		slog.Int("months", len(series)),
		slog.Int("horizon", horizon),
		slog.String("trend", string(summary.Trend)),
	)
	respond(w, r, http.StatusOK, ForecastResponse{Result: result, Summary: summary})
}

// Compare handles POST /api/forecast/compare
func (h *ForecastHandler) Compare(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	req := &CompareRequest{}
	if err := render.Bind(r, req); err != nil {
		h.errors.HandleError(w, r, bindError(err))
		return
	}

	horizon := h.defaults.Horizon
	if req.Horizon != nil {
		horizon = *req.Horizon
	}
	series, err := toSeries(req.Series)
	if err != nil {
		h.errors.HandleError(w, r, err)
		return
	}

	comparisons := h.engine.Compare(ctx, series, horizon, req.Methods...)
	respond(w, r, http.StatusOK, CompareResponse{Horizon: horizon, Comparisons: comparisons})
}

// toSeries converts request points. Ordering is left to the engine, which
// rejects unsorted or duplicated months.
func toSeries(points []SeriesPoint) (domain.Series, error) {
	series := make(domain.Series, len(points))
	for i, p := range points {
		month, err := domain.ParseMonth(p.Month)
		if err != nil {
			return nil, apierrors.ErrValidation("series", err.Error())
		}
		series[i] = domain.Point{Month: month, Value: *p.Revenue}
	}
	return series, nil
}

// bindError passes validation and size errors through and reports anything
// else from render.Bind as a malformed body.
func bindError(err error) error {
	var fieldErrs validation.FieldErrors
	var tooLarge *http.MaxBytesError
	if errors.As(err, &fieldErrs) || errors.As(err, &tooLarge) {
		return err
	}
	return apierrors.InvalidRequestWithError(err)
}
