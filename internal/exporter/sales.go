package exporter

import (
	"fmt"
	"log/slog"

	"salespulse/internal/features"
	"salespulse/pkg/contracts/domain"
)

// SalesExporter writes transaction tables: the cleaned table and the table
// with derived features.
type SalesExporter struct {
	csvWriter *CSVWriter
}

// NewSalesExporter creates a sales exporter writing under baseDir.
func NewSalesExporter(baseDir string, logger *slog.Logger) *SalesExporter {
	return &SalesExporter{csvWriter: NewCSVWriter(baseDir, logger)}
}

// WriteCleanedCSV streams a cleaned table in the ingest column order.
func (s *SalesExporter) WriteCleanedCSV(filePath string, table domain.Table) error {
	stream, err := s.csvWriter.CreateStreamWriter(filePath, cleanedHeaders())
	if err != nil {
		return err
	}
	for i, record := range table {
		if err := stream.WriteRecord(recordToCSVRow(record)); err != nil {
			stream.Close()
			return fmt.Errorf("failed to write record %d: %w", i, err)
		}
	}
	return stream.Close()
}

// WriteFeaturesCSV streams rows with their derived features appended to
// the cleaned columns.
func (s *SalesExporter) WriteFeaturesCSV(filePath string, rows []features.FeatureRow) error {
	stream, err := s.csvWriter.CreateStreamWriter(filePath, featureHeaders())
	if err != nil {
		return err
	}
	for i, row := range rows {
		if err := stream.WriteRecord(featureToCSVRow(row)); err != nil {
			stream.Close()
			return fmt.Errorf("failed to write feature row %d: %w", i, err)
		}
	}
	return stream.Close()
}

func cleanedHeaders() []string {
	return domain.RequiredColumns()
}

func featureHeaders() []string {
	return append(cleanedHeaders(),
		"Year", "Quarter", "Month", "Month_Name", "Day", "Day_Name", "Week_Of_Year",
		"Year_Month", "Days_Since_First_Order", "AOV", "Order_Value_Tier",
		"Unit_Revenue", "Product_Revenue_Rank", "Category_Revenue_Share",
	)
}

// recordToCSVRow converts a record to a CSV row. Quantity keeps its own
// precision; Price and Revenue are money.
func recordToCSVRow(r domain.Record) []string {
	date := formatDate(r.OrderDate)
	if date == "" {
		date = r.RawDate
	}
	return []string{
		r.OrderID.String(),
		date,
		r.Product.String(),
		r.Category.String(),
		r.Quantity.String(),
		formatMoneyCell(r.Price),
		formatMoneyCell(r.Revenue),
		r.Region.String(),
		r.CustomerType.String(),
	}
}

func featureToCSVRow(f features.FeatureRow) []string {
	row := recordToCSVRow(f.Record)
	if !f.HasDate() {
		row = append(row, "", "", "", "", "", "", "", "", "")
	} else {
		row = append(row,
			formatInt(f.Year),
			formatInt(f.Quarter),
			formatInt(f.Month),
			f.MonthName,
			formatInt(f.Day),
			f.DayName,
			formatInt(f.WeekOfYear),
			f.YearMonth.String(),
			formatInt(f.DaysSinceFirstOrder),
		)
	}
	return append(row,
		formatMoney(f.AOV),
		string(f.OrderValueTier),
		formatMoney(f.UnitRevenue),
		formatInt(f.ProductRevenueRank),
		formatPercent(f.CategoryRevenueShare),
	)
}
