package exporter

import (
	"fmt"
	"log/slog"
	"path/filepath"

	"salespulse/internal/infrastructure"
	"salespulse/internal/operations"
)

// File names written by ExportRun inside the run directory.
const (
	CleanedFile        = "cleaned_data.csv"
	FeaturesFile       = "features.csv"
	MonthlyRevenueFile = "monthly_revenue.csv"
	ForecastFile       = "forecast.csv"
	SummaryFile        = "forecast_summary.csv"
)

// RunExporter writes every table of an analysis report into a directory
// named after the run.
type RunExporter struct {
	sales    *SalesExporter
	forecast *ForecastExporter
	baseDir  string
	logger   *slog.Logger
}

// NewRunExporter creates a run exporter rooted at baseDir.
func NewRunExporter(baseDir string, logger *slog.Logger) *RunExporter {
	return &RunExporter{
		sales:    NewSalesExporter(baseDir, logger),
		forecast: NewForecastExporter(baseDir, logger),
		baseDir:  baseDir,
		logger:   infrastructure.WithComponent(logger, "exporter"),
	}
}

// ExportResult lists the files written for one run.
type ExportResult struct {
	Dir   string   `json:"dir"`
	Files []string `json:"files"`
}

// ExportRun writes the cleaned table, the features, the monthly series and,
// when the run produced one, the forecast and its summary.
func (e *RunExporter) ExportRun(report *operations.Report) (*ExportResult, error) {
	if report == nil || report.RunID == "" {
		return nil, fmt.Errorf("report has no run id")
	}

	result := &ExportResult{Dir: filepath.Join(e.baseDir, report.RunID)}
	write := func(name string, fn func(string) error) error {
		rel := filepath.Join(report.RunID, name)
		if err := fn(rel); err != nil {
			return fmt.Errorf("failed to export %s: %w", name, err)
		}
		result.Files = append(result.Files, filepath.Join(result.Dir, name))
		return nil
	}

	if err := write(CleanedFile, func(p string) error {
		return e.sales.WriteCleanedCSV(p, report.Cleaned)
	}); err != nil {
		return nil, err
	}
	if err := write(FeaturesFile, func(p string) error {
		return e.sales.WriteFeaturesCSV(p, report.Features)
	}); err != nil {
		return nil, err
	}
	if err := write(MonthlyRevenueFile, func(p string) error {
		return e.forecast.WriteMonthlyRevenueCSV(p, report.MonthlyRevenue)
	}); err != nil {
		return nil, err
	}
	if report.Forecast != nil {
		if err := write(ForecastFile, func(p string) error {
			return e.forecast.WriteForecastCSV(p, *report.Forecast)
		}); err != nil {
			return nil, err
		}
		if report.Summary != nil {
			if err := write(SummaryFile, func(p string) error {
				return e.forecast.WriteSummaryCSV(p, *report.Forecast, *report.Summary)
			}); err != nil {
				return nil, err
			}
		}
	}

	e.logger.Info("run exported",
		slog.String("run_id", report.RunID),
		slog.String("dir", result.Dir),
		slog.Int("files", len(result.Files)))
	return result, nil
}
