// Package exporter writes analysis results as CSV files.
//
// CSVWriter is the low-level writer: headers, appends, streaming and a UTF-8
// BOM so Excel opens the files with the right encoding. Relative paths are
// resolved against the writer's base directory.
//
// SalesExporter writes the cleaned transaction table and the feature table.
// ForecastExporter writes the monthly revenue series, the forecast with its
// bounds and the forecast summary. RunExporter writes all of them for one
// analysis report into <base>/<run id>/.
//
// Money columns are rendered with exactly two decimals using decimal
// rounding, dates as YYYY-MM-DD and months as YYYY-MM.
//
// Example usage:
//
//	exp := exporter.NewRunExporter(cfg.Export.OutputDir, logger)
//	files, err := exp.ExportRun(report)
package exporter
