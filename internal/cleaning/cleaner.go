package cleaning

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"salespulse/pkg/contracts/domain"
)

const (
	// DefaultRevenueTolerancePct is the largest accepted deviation between
	// Revenue and Quantity x Price, in percent.
	DefaultRevenueTolerancePct = 1.0
	// DefaultOutlierSigma is the outlier threshold in standard deviations.
	DefaultOutlierSigma = 3.0
)

// Options tunes the repair thresholds.
type Options struct {
	RevenueTolerancePct float64
	OutlierSigma        float64
}

// DefaultOptions returns the standard thresholds.
func DefaultOptions() Options {
	return Options{
		RevenueTolerancePct: DefaultRevenueTolerancePct,
		OutlierSigma:        DefaultOutlierSigma,
	}
}

// Cleaner turns an untrusted transaction table into one that satisfies the
// cleaning invariants, recording every change in an audit log.
type Cleaner struct {
	opts   Options
	logger *slog.Logger
}

// NewCleaner creates a cleaner. Zero thresholds fall back to the defaults.
func NewCleaner(opts Options, logger *slog.Logger) *Cleaner {
	if logger == nil {
		logger = slog.Default()
	}
	if opts.RevenueTolerancePct <= 0 {
		opts.RevenueTolerancePct = DefaultRevenueTolerancePct
	}
	if opts.OutlierSigma <= 0 {
		opts.OutlierSigma = DefaultOutlierSigma
	}
	return &Cleaner{
		opts:   opts,
		logger: logger.With(slog.String("component", "cleaner")),
	}
}

// Stages returns the pipeline in execution order.
func (c *Cleaner) Stages() []Stage {
	return c.stages(nil)
}

// stages builds the pipeline. A non-nil outliers receives the reports the
// outlier stage computed.
func (c *Cleaner) stages(outliers *[]OutlierReport) []Stage {
	return []Stage{
		{Name: "date_standardization", Apply: standardizeDates},
		{Name: "missing_values", Apply: handleMissing},
		{Name: "duplicates", Apply: removeDuplicates},
		{Name: "revenue_reconciliation", Apply: reconcileRevenue(c.opts.RevenueTolerancePct)},
		{Name: "type_normalization", Apply: normalizeTypes},
		{Name: "outliers", Apply: flagOutliers(c.opts.OutlierSigma, outliers)},
	}
}

// Result is the outcome of one cleaning pass.
type Result struct {
	Table    domain.Table
	Log      []string
	Outliers []OutlierReport
}

// Clean applies every stage in order and returns the cleaned table with the
// audit log. Malformed rows are filtered or repaired; Clean never fails.
func (c *Cleaner) Clean(ctx context.Context, raw domain.Table) (domain.Table, []string) {
	res := c.Run(ctx, raw)
	return res.Table, res.Log
}

// Run is Clean that also returns the outlier reports of the final table.
func (c *Cleaner) Run(ctx context.Context, raw domain.Table) Result {
	start := time.Now()
	log := []string{fmt.Sprintf("Starting data cleaning with %d records", len(raw))}

	var outliers []OutlierReport
	table := raw.Clone()
	for _, stage := range c.stages(&outliers) {
		rowsIn := len(table)
		next, entries := stage.Apply(table)
		table = next
		log = append(log, entries...)

		c.logger.DebugContext(ctx, "cleaning stage complete",
			slog.String("stage", stage.Name),
			slog.Int("rows_in", rowsIn),
			slog.Int("rows_out", len(table)),
			slog.Int("log_entries", len(entries)))
	}

	removed := len(raw) - len(table)
	log = append(log, fmt.Sprintf("Cleaning complete: %d records retained, %d removed", len(table), removed))

	c.logger.InfoContext(ctx, "data cleaning complete",
		slog.Int("original_rows", len(raw)),
		slog.Int("retained_rows", len(table)),
		slog.Int("removed_rows", removed),
		slog.Duration("duration", time.Since(start)))

	return Result{Table: table, Log: log, Outliers: outliers}
}

// Clean runs the pipeline with default thresholds.
func Clean(raw domain.Table) (domain.Table, []string) {
	return NewCleaner(DefaultOptions(), nil).Clean(context.Background(), raw)
}
