package operations

import (
	"context"
	"errors"
	"fmt"

	"salespulse/internal/cleaning"
	"salespulse/internal/dataprocessing"
	"salespulse/internal/features"
	"salespulse/internal/forecasting"
	"salespulse/internal/validation"
)

// Step IDs in execution order.
const (
	StepValidate = "validate"
	StepClean    = "clean"
	StepFeatures = "features"
	StepForecast = "forecast"
	StepSummary  = "summary"
)

// errStepSkipped is returned by a step that has nothing to do.
var errStepSkipped = errors.New("step skipped")

// Step represents a single Step in the run
type Step interface {
	// ID returns the unique identifier for this Step
	ID() string

	// Name returns the human-readable name for this Step
	Name() string

	// Execute runs the Step, reading earlier results from and writing its
	// own into run. The returned string becomes the step message.
	Execute(ctx context.Context, run *runState) (string, error)
}

// runState carries the request and the report between steps.
type runState struct {
	req    Request
	report *Report
}

type validateStep struct{}

func (validateStep) ID() string   { return StepValidate }
func (validateStep) Name() string { return "Validate Input" }

func (validateStep) Execute(ctx context.Context, run *runState) (string, error) {
	ds := run.req.Dataset
	if ds == nil {
		return "", NewValidationError(StepValidate, dataprocessing.ErrEmptyFile)
	}
	if _, err := validation.ValidateColumns(ds.Columns); err != nil {
		return "", NewValidationError(StepValidate, err)
	}
	if !run.req.Method.Valid() {
		return "", NewValidationError(StepValidate, forecasting.InvalidMethodError(run.req.Method))
	}
	if run.req.Horizon < 1 {
		return "", NewValidationError(StepValidate, forecasting.InvalidHorizonError(run.req.Method, run.req.Horizon))
	}

	run.report.Input = dataprocessing.Summarize(ds)
	return fmt.Sprintf("%d records with %d columns", len(ds.Table), len(ds.Columns)), nil
}

type cleanStep struct {
	cleaner *cleaning.Cleaner
}

func (cleanStep) ID() string   { return StepClean }
func (cleanStep) Name() string { return "Clean Data" }

func (s cleanStep) Execute(ctx context.Context, run *runState) (string, error) {
	raw := run.req.Dataset.Table
	res := s.cleaner.Run(ctx, raw)

	r := run.report
	r.Cleaned = res.Table
	r.CleaningLog = res.Log
	r.RowsRetained = len(res.Table)
	r.RowsRemoved = len(raw) - len(res.Table)
	r.Outliers = res.Outliers
	return res.Log[len(res.Log)-1], nil
}

type featuresStep struct{}

func (featuresStep) ID() string   { return StepFeatures }
func (featuresStep) Name() string { return "Derive Features" }

func (featuresStep) Execute(ctx context.Context, run *runState) (string, error) {
	r := run.report
	metrics := features.Aggregate(r.Cleaned)
	r.Metrics = &metrics
	r.Features = features.Derive(r.Cleaned)
	r.MonthlyRevenue = features.MonthlyRevenue(r.Cleaned)
	r.Breakdowns = map[string][]features.Segment{
		"product":       features.Breakdown(r.Cleaned, features.ByProduct),
		"category":      features.Breakdown(r.Cleaned, features.ByCategory),
		"region":        features.Breakdown(r.Cleaned, features.ByRegion),
		"customer_type": features.Breakdown(r.Cleaned, features.ByCustomerType),
	}
	return fmt.Sprintf("%d months of revenue", len(r.MonthlyRevenue)), nil
}

type forecastStep struct {
	engine *forecasting.Engine
}

func (forecastStep) ID() string   { return StepForecast }
func (forecastStep) Name() string { return "Forecast Revenue" }

func (s forecastStep) Execute(ctx context.Context, run *runState) (string, error) {
	var opts []forecasting.Option
	if run.req.Window > 0 {
		opts = append(opts, forecasting.WithWindow(run.req.Window))
	}

	result, err := s.engine.Forecast(ctx, run.report.MonthlyRevenue, run.req.Method, run.req.Horizon, opts...)
	if err != nil {
		return "", err
	}
	run.report.Forecast = &result
	return fmt.Sprintf("%s forecast for %d months", result.MethodName, result.Horizon), nil
}

type summaryStep struct{}

func (summaryStep) ID() string   { return StepSummary }
func (summaryStep) Name() string { return "Summarize Forecast" }

func (summaryStep) Execute(ctx context.Context, run *runState) (string, error) {
	if run.report.Forecast == nil {
		return "no forecast to summarize", errStepSkipped
	}
	summary, err := forecasting.Summarize(*run.report.Forecast)
	if err != nil {
		return "", err
	}
	run.report.Summary = &summary
	return string(summary.Trend), nil
}
