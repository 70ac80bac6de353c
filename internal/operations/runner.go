package operations

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"salespulse/internal/cleaning"
	"salespulse/internal/config"
	"salespulse/internal/dataprocessing"
	"salespulse/internal/forecasting"
	"salespulse/internal/infrastructure"
	"salespulse/pkg/contracts/domain"
)

// Request describes one analysis run. Method and Horizon are used as given;
// callers apply their own defaults.
type Request struct {
	Dataset *dataprocessing.Dataset
	Method  domain.Method
	Horizon int
	// Window overrides the moving-average window when positive.
	Window int
}

// Runner executes the analysis steps in order: validate, clean, features,
// forecast, summary. It keeps no state between runs.
type Runner struct {
	steps  []Step
	tracer *RunTracer
	logger *slog.Logger
}

// NewRunner creates a runner. A nil tracer records nothing.
func NewRunner(cleaner *cleaning.Cleaner, engine *forecasting.Engine, tracer *RunTracer, logger *slog.Logger) *Runner {
	if tracer == nil {
		tracer = NewRunTracerWith(nil, nil)
	}
	return &Runner{
		steps: []Step{
			validateStep{},
			cleanStep{cleaner: cleaner},
			featuresStep{},
			forecastStep{engine: engine},
			summaryStep{},
		},
		tracer: tracer,
		logger: infrastructure.WithComponent(logger, "runner"),
	}
}

// NewRunnerFromConfig wires a runner with the cleaning and forecasting
// settings of cfg.
func NewRunnerFromConfig(cfg *config.Config, tracer *RunTracer, logger *slog.Logger) *Runner {
	cleaner := cleaning.NewCleaner(cleaning.Options{
		RevenueTolerancePct: cfg.Cleaning.RevenueTolerancePct,
		OutlierSigma:        cfg.Cleaning.OutlierSigma,
	}, logger)
	engine := forecasting.NewEngine(EngineConfig(cfg.Forecast), logger)
	return NewRunner(cleaner, engine, tracer, logger)
}

// EngineConfig maps the forecast section of the application config.
func EngineConfig(cfg config.ForecastConfig) forecasting.Config {
	return forecasting.Config{
		Window:        cfg.Window,
		ARIMAOrder:    forecasting.Order{P: cfg.ARIMA.P, D: cfg.ARIMA.D, Q: cfg.ARIMA.Q},
		FitTimeout:    cfg.FitTimeout,
		MaxIterations: cfg.MaxIterations,
	}
}

// Run executes every step and returns the report.
//
// A forecast that fails for lack of data or a failed fit is an expected
// outcome: the forecast step is marked failed, the summary step skipped and
// the report returned without error. Invalid input or cancellation stops the
// run; the report is still returned with the steps that ran and err is a
// *RunError.
func (r *Runner) Run(ctx context.Context, req Request) (*Report, error) {
	ctx = infrastructure.EnsureTraceID(ctx)
	report := &Report{
		RunID:     uuid.NewString(),
		Status:    RunStatusRunning,
		StartTime: time.Now(),
		Method:    req.Method,
		Horizon:   req.Horizon,
	}
	for _, step := range r.steps {
		report.Steps = append(report.Steps, NewStepState(step.ID(), step.Name()))
	}

	ctx, span := r.tracer.TraceRun(ctx, report.RunID, req)
	defer span.End()

	run := &runState{req: req, report: report}
	var runErr error
	for i, step := range r.steps {
		state := report.Steps[i]
		if runErr != nil {
			state.Skip("run stopped at an earlier step")
			continue
		}
		if err := ctx.Err(); err != nil {
			runErr = NewCancellationError(step.ID(), err)
			state.Skip("run cancelled")
			continue
		}
		runErr = r.execute(ctx, step, state, run)
	}

	switch {
	case runErr == nil:
		report.finish(RunStatusCompleted)
	case errors.Is(runErr, context.Canceled) || errors.Is(runErr, context.DeadlineExceeded):
		report.finish(RunStatusCancelled)
	default:
		report.finish(RunStatusFailed)
	}
	r.tracer.RecordRunCompletion(ctx, span, report, runErr)

	attrs := []any{
		slog.String("run_id", report.RunID),
		slog.String("status", string(report.Status)),
		slog.String("method", string(req.Method)),
		slog.Int("rows_retained", report.RowsRetained),
		slog.Duration("duration", report.Duration),
	}
	if runErr != nil {
		r.logger.WarnContext(ctx, "analysis run stopped", append(attrs, slog.String("error", runErr.Error()))...)
		return report, runErr
	}
	r.logger.InfoContext(ctx, "analysis run complete", attrs...)
	return report, nil
}

// execute runs one step and records its outcome. It returns an error only
// when the run must stop.
func (r *Runner) execute(ctx context.Context, step Step, state *StepState, run *runState) error {
	ctx, span := r.tracer.TraceStep(ctx, run.report.RunID, step.ID())
	defer span.End()

	state.Start()
	msg, err := step.Execute(ctx, run)

	var stop error
	switch {
	case err == nil:
		state.Complete(msg)
	case errors.Is(err, errStepSkipped):
		state.Skip(msg)
		err = nil
	case step.ID() == StepForecast && !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded):
		state.Fail(err)
		run.report.ForecastError = forecastFailure(err)
	default:
		state.Fail(err)
		var re *RunError
		switch {
		case errors.As(err, &re):
			stop = err
		case errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded):
			stop = NewCancellationError(step.ID(), err)
		default:
			stop = NewExecutionError(step.ID(), err)
		}
	}

	r.tracer.RecordStepCompletion(ctx, span, state, err)
	switch step.ID() {
	case StepClean:
		if err == nil {
			r.tracer.RecordCleaning(ctx, len(run.req.Dataset.Table), run.report.RowsRetained)
		}
	case StepForecast:
		r.tracer.RecordForecast(ctx, string(run.req.Method), err, state.Duration())
	}

	r.logger.DebugContext(ctx, "step finished",
		slog.String("run_id", run.report.RunID),
		slog.String("step", step.ID()),
		slog.String("status", string(state.Status)),
		slog.Duration("duration", state.Duration()))
	return stop
}
