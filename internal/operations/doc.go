// Package operations runs a complete sales analysis over one loaded dataset.
//
// A run is a fixed sequence of steps:
//
//   - validate: the header carries every required column, the method and
//     horizon are acceptable
//   - clean: the cleaning pipeline and its audit log
//   - features: KPIs, per-dimension breakdowns and the monthly revenue series
//   - forecast: one forecasting method over the monthly series
//   - summary: the narrative summary of the forecast
//
// Each step has a StepState in the Report. A forecast that cannot be produced
// (too few months, a failed fit) fails only its own step; the summary is
// skipped and the rest of the report stands. Invalid input and cancellation
// stop the run with a *RunError.
//
// Runs are traced with one span per step and counted in the business
// metrics created by the infrastructure package.
//
// Example usage:
//
//	runner := operations.NewRunnerFromConfig(cfg, tracer, logger)
//	report, err := runner.Run(ctx, operations.Request{
//	    Dataset: ds,
//	    Method:  domain.MethodExponentialSmoothing,
//	    Horizon: 6,
//	})
package operations
