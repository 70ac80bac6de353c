package exporter

import (
	"fmt"
	"log/slog"

	"salespulse/pkg/contracts/domain"
)

// ForecastExporter writes monthly series and forecast tables.
type ForecastExporter struct {
	csvWriter *CSVWriter
}

// NewForecastExporter creates a forecast exporter writing under baseDir.
func NewForecastExporter(baseDir string, logger *slog.Logger) *ForecastExporter {
	return &ForecastExporter{csvWriter: NewCSVWriter(baseDir, logger)}
}

// WriteForecastCSV writes one row per forecast month with its band.
func (f *ForecastExporter) WriteForecastCSV(filePath string, result domain.ForecastResult) error {
	if len(result.LowerBound) != len(result.Forecast) || len(result.UpperBound) != len(result.Forecast) {
		return fmt.Errorf("forecast bands are not aligned: %d forecast, %d lower, %d upper",
			len(result.Forecast), len(result.LowerBound), len(result.UpperBound))
	}

	records := make([][]string, 0, len(result.Forecast))
	for i, p := range result.Forecast {
		records = append(records, []string{
			p.Month.String(),
			formatMoney(p.Value),
			formatMoney(result.LowerBound[i].Value),
			formatMoney(result.UpperBound[i].Value),
		})
	}
	return f.csvWriter.WriteSimpleCSV(filePath, []string{"Month", "Forecast", "Lower_Bound", "Upper_Bound"}, records)
}

// WriteMonthlyRevenueCSV writes a monthly revenue series.
func (f *ForecastExporter) WriteMonthlyRevenueCSV(filePath string, series domain.Series) error {
	records := make([][]string, 0, len(series))
	for _, p := range series {
		records = append(records, []string{p.Month.String(), formatMoney(p.Value)})
	}
	return f.csvWriter.WriteSimpleCSV(filePath, []string{"Month", "Revenue"}, records)
}

// WriteSummaryCSV writes the forecast summary as label/value pairs.
func (f *ForecastExporter) WriteSummaryCSV(filePath string, result domain.ForecastResult, summary domain.ForecastSummary) error {
	records := [][]string{
		{"Method", result.MethodName},
		{"Horizon", formatInt(result.Horizon)},
		{"Confidence", result.Confidence},
		{"Total_Forecast_Revenue", formatMoney(summary.TotalForecastRevenue)},
		{"Avg_Monthly_Forecast", formatMoney(summary.AvgMonthlyForecast)},
		{"Avg_Historical", formatMoney(summary.AvgHistorical)},
		{"Change_Pct", formatPercent(summary.ChangePct)},
		{"Trend", string(summary.Trend)},
		{"Interpretation", summary.Interpretation},
	}
	return f.csvWriter.WriteSimpleCSV(filePath, []string{"Metric", "Value"}, records)
}
