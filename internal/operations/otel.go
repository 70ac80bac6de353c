package operations

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	tracenoop "go.opentelemetry.io/otel/trace/noop"

	"salespulse/internal/infrastructure"
)

const (
	TracerName = "salespulse.operations"
)

// RunTracer instruments analysis runs with spans and business metrics.
type RunTracer struct {
	tracer  trace.Tracer
	metrics *infrastructure.BusinessMetrics
}

// NewRunTracer creates a tracer from the application providers, sharing the
// application's business metrics. A nil providers value gives a tracer that
// records no spans.
func NewRunTracer(providers *infrastructure.OTelProviders, metrics *infrastructure.BusinessMetrics) *RunTracer {
	if providers == nil {
		return NewRunTracerWith(nil, metrics)
	}
	tracer := providers.Tracer
	if providers.TracerProvider != nil {
		tracer = providers.TracerProvider.Tracer(TracerName)
	}
	return NewRunTracerWith(tracer, metrics)
}

// NewRunTracerWith builds a tracer from explicit parts.
func NewRunTracerWith(tracer trace.Tracer, metrics *infrastructure.BusinessMetrics) *RunTracer {
	if tracer == nil {
		tracer = tracenoop.NewTracerProvider().Tracer(TracerName)
	}
	return &RunTracer{tracer: tracer, metrics: metrics}
}

// TraceRun creates a span for the entire run
func (rt *RunTracer) TraceRun(ctx context.Context, runID string, req Request) (context.Context, trace.Span) {
	ctx, span := rt.tracer.Start(ctx, "analysis.run",
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(
			attribute.String("run.id", runID),
			attribute.String("run.method", string(req.Method)),
			attribute.Int("run.horizon", req.Horizon),
		),
	)
	infrastructure.RecordActiveRunChange(ctx, rt.metrics, 1)
	return ctx, span
}

// TraceStep creates a span for one step
func (rt *RunTracer) TraceStep(ctx context.Context, runID, stepID string) (context.Context, trace.Span) {
	return rt.tracer.Start(ctx, fmt.Sprintf("analysis.step.%s", stepID),
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(
			attribute.String("run.id", runID),
			attribute.String("step.id", stepID),
		),
	)
}

// RecordStepCompletion closes out a step span and records its duration.
func (rt *RunTracer) RecordStepCompletion(ctx context.Context, span trace.Span, state *StepState, err error) {
	span.SetAttributes(
		attribute.String("step.status", string(state.Status)),
		attribute.Float64("step.duration_seconds", state.Duration().Seconds()),
	)
	infrastructure.AddSpanEvent(ctx, "step.completed", map[string]interface{}{
		"step_id": state.ID,
		"status":  string(state.Status),
		"message": state.Message,
	})

	switch state.Status {
	case StepStatusFailed:
		infrastructure.RecordError(ctx, err)
	default:
		span.SetStatus(codes.Ok, "")
	}
	infrastructure.RecordStepMetrics(ctx, rt.metrics, state.ID, string(state.Status), state.Duration())
}

// RecordForecast counts a forecast attempt by method and outcome.
func (rt *RunTracer) RecordForecast(ctx context.Context, method string, err error, duration time.Duration) {
	outcome := "success"
	if err != nil {
		outcome = string(forecastFailure(err).Kind)
	}
	infrastructure.RecordForecastMetrics(ctx, rt.metrics, method, outcome, duration)
}

// RecordCleaning counts rows in and out of the cleaning pipeline and tags
// the current span with both.
func (rt *RunTracer) RecordCleaning(ctx context.Context, ingested, retained int) {
	infrastructure.SetSpanAttributes(ctx, map[string]interface{}{
		"rows.ingested": ingested,
		"rows.retained": retained,
	})
	infrastructure.RecordCleaningMetrics(ctx, rt.metrics, ingested, retained)
}

// RecordRunCompletion closes out the run span.
func (rt *RunTracer) RecordRunCompletion(ctx context.Context, span trace.Span, report *Report, err error) {
	span.SetAttributes(
		attribute.String("run.status", string(report.Status)),
		attribute.Float64("run.duration_seconds", report.Duration.Seconds()),
		attribute.Int("run.rows_retained", report.RowsRetained),
	)
	if err != nil {
		infrastructure.RecordError(ctx, err)
	} else {
		span.SetStatus(codes.Ok, "")
	}
	infrastructure.RecordRunMetrics(ctx, rt.metrics, string(report.Status))
	infrastructure.RecordActiveRunChange(ctx, rt.metrics, -1)
}
