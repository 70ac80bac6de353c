package http

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"salespulse/internal/config"
	"salespulse/internal/dataprocessing"
	apierrors "salespulse/internal/errors"
	"salespulse/internal/exporter"
	"salespulse/internal/infrastructure"
	"salespulse/internal/middleware"
	"salespulse/internal/operations"
	"salespulse/internal/validation"
	"salespulse/pkg/contracts/domain"
)

const (
	maxHorizon = 60
	maxWindow  = 120
)

// AnalysisHandler runs the full analysis over an uploaded file.
type AnalysisHandler struct {
	loader   *dataprocessing.Loader
	runner   *operations.Runner
	exporter *exporter.RunExporter
	defaults config.ForecastConfig
	query    *middleware.QueryParamValidator
	errors   *apierrors.ErrorHandler
	logger   *slog.Logger
}

// NewAnalysisHandler creates an analysis handler. defaults fill in the
// method, horizon and window a request leaves out. A nil exporter turns the
// export query parameter into a no-op.
func NewAnalysisHandler(
	loader *dataprocessing.Loader,
	runner *operations.Runner,
	exp *exporter.RunExporter,
	defaults config.ForecastConfig,
	errorHandler *apierrors.ErrorHandler,
	logger *slog.Logger,
) *AnalysisHandler {
	logger = infrastructure.WithComponent(logger, "analysis_handler")
	return &AnalysisHandler{
		loader:   loader,
		runner:   runner,
		exporter: exp,
		defaults: defaults,
		query:    middleware.NewQueryParamValidator(logger, errorHandler),
		errors:   errorHandler,
		logger:   logger,
	}
}

// Routes returns a chi router for the analysis endpoint
func (h *AnalysisHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Post("/", h.Analyze)
	return r
}

// AnalyzeResponse is the payload of a successful analysis.
type AnalyzeResponse struct {
	Report *operations.Report     `json:"report"`
	Export *exporter.ExportResult `json:"export,omitempty"`
}

// Analyze handles POST /api/analyze
func (h *AnalysisHandler) Analyze(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	method, ok := h.query.ValidateEnum(w, r, "method", methodNames(), h.defaults.DefaultMethod)
	if !ok {
		return
	}
	horizon, ok := h.query.ValidateInt(w, r, "horizon", 1, maxHorizon, h.defaults.Horizon)
	if !ok {
		return
	}
	window, ok := h.query.ValidateInt(w, r, "window", 1, maxWindow, h.defaults.Window)
	if !ok {
		return
	}
	export := false
	if v := r.URL.Query().Get("export"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			h.errors.HandleError(w, r, apierrors.ErrValidation("export", "export must be true or false"))
			return
		}
		export = b
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		h.errors.HandleError(w, r, uploadError(err))
		return
	}
	defer file.Close()

	format, err := dataprocessing.FormatFromPath(header.Filename)
	if err != nil {
		h.errors.HandleError(w, r, err)
		return
	}

	ds, err := h.loader.Load(ctx, file, format)
	if err != nil {
		h.errors.HandleError(w, r, loadError(header.Filename, err))
		return
	}
	ds.Source = header.Filename

	report, err := h.runner.Run(ctx, operations.Request{
		Dataset: ds,
		Method:  domain.Method(method),
		Horizon: horizon,
		Window:  window,
	})
	if err != nil {
		h.errors.HandleError(w, r, err)
		return
	}

	resp := AnalyzeResponse{Report: report}
	if export && h.exporter != nil {
		result, err := h.exporter.ExportRun(report)
		if err != nil {
			h.errors.HandleError(w, r, apierrors.NewStorageError("failed to export run", err).
				WithContext("run_id", report.RunID))
			return
		}
		resp.Export = result
	}

	h.logger.InfoContext(ctx, "analysis served",
		slog.String("run_id", report.RunID),
		slog.String("file", header.Filename),
		slog.Int64("size", header.Size),
		slog.Bool("forecast", report.Forecast != nil),
		slog.Bool("exported", resp.Export != nil),
		slog.Bool("step_failures", report.HasFailures()),
	)
	respond(w, r, http.StatusOK, resp)
}

func methodNames() []string {
	methods := domain.Methods()
	out := make([]string, len(methods))
	for i, m := range methods {
		out[i] = string(m)
	}
	return out
}

// uploadError classifies a failure to read the multipart "file" field.
func uploadError(err error) error {
	var tooLarge *http.MaxBytesError
	switch {
	case errors.As(err, &tooLarge):
		return err
	case errors.Is(err, http.ErrMissingFile):
		return apierrors.MissingParameter("file")
	default:
		return apierrors.InvalidRequestWithError(err)
	}
}

// loadError keeps the loader errors the API maps itself and reports any
// other read failure as malformed input rather than a server fault.
func loadError(name string, err error) error {
	var schemaErr *validation.SchemaError
	switch {
	case errors.As(err, &schemaErr),
		errors.Is(err, dataprocessing.ErrEmptyFile),
		errors.Is(err, dataprocessing.ErrUnsupportedFormat),
		errors.Is(err, context.Canceled),
		errors.Is(err, context.DeadlineExceeded):
		return err
	}
	return apierrors.NewParsingError(fmt.Sprintf("could not read %s", name), err)
}
