package dataprocessing

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"salespulse/internal/validation"
	"salespulse/pkg/contracts/domain"
)

// Format is the container format of an ingested file.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
)

var (
	// ErrEmptyFile is returned for input with no header row.
	ErrEmptyFile = errors.New("the file is empty: provide a file with a header row and data")
	// ErrUnsupportedFormat is returned for files that are neither CSV nor Excel.
	ErrUnsupportedFormat = errors.New("unsupported file format")
)

// FormatFromPath picks the format from a file name extension.
func FormatFromPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return FormatCSV, nil
	case ".xlsx", ".xlsm":
		return FormatXLSX, nil
	}
	return "", fmt.Errorf("%w %q: use CSV or Excel (.xlsx) files", ErrUnsupportedFormat, filepath.Ext(path))
}

// Dataset is a loaded transaction table with the header it was read from.
type Dataset struct {
	Source  string       `json:"source"`
	Format  Format       `json:"format"`
	Sheet   string       `json:"sheet,omitempty"`
	Columns []string     `json:"columns"`
	Table   domain.Table `json:"-"`
}

// Loader reads transaction tables from CSV and Excel files.
type Loader struct {
	files  *validation.FileValidator
	logger *slog.Logger
}

// NewLoader creates a loader.
func NewLoader(logger *slog.Logger) *Loader {
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With(slog.String("component", "loader"))
	return &Loader{
		files:  validation.NewFileValidator(logger),
		logger: logger,
	}
}

// LoadFile checks path is a readable data file and loads it.
func (l *Loader) LoadFile(ctx context.Context, path string) (*Dataset, error) {
	if err := l.files.ValidateDataFile(path); err != nil {
		return nil, err
	}
	format, err := FormatFromPath(path)
	if err != nil {
		return nil, err
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	ds, err := l.Load(ctx, f, format)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", filepath.Base(path), err)
	}
	ds.Source = path
	return ds, nil
}

// Load reads a table in the given format. The header must carry every
// required column; missing ones fail with a *validation.SchemaError before
// any row is read. Extra columns are ignored and rows with only blank cells
// are skipped.
func (l *Loader) Load(ctx context.Context, r io.Reader, format Format) (*Dataset, error) {
	start := time.Now()

	var (
		ds  *Dataset
		err error
	)
	switch format {
	case FormatCSV:
		ds, err = readCSV(r)
	case FormatXLSX:
		ds, err = readXLSX(r)
	default:
		return nil, fmt.Errorf("%w %q", ErrUnsupportedFormat, format)
	}
	if err != nil {
		l.logger.WarnContext(ctx, "failed to load dataset",
			slog.String("format", string(format)),
			slog.String("error", err.Error()))
		return nil, err
	}

	l.logger.InfoContext(ctx, "dataset loaded",
		slog.String("format", string(format)),
		slog.String("sheet", ds.Sheet),
		slog.Int("rows", len(ds.Table)),
		slog.Int("columns", len(ds.Columns)),
		slog.Duration("duration", time.Since(start)))
	return ds, nil
}

func readCSV(r io.Reader) (*Dataset, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, ErrEmptyFile
	}
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	index, err := validation.ValidateColumns(header)
	if err != nil {
		return nil, err
	}

	ds := &Dataset{Format: FormatCSV, Columns: cleanHeader(header)}
	for line := 2; ; line++ {
		cells, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read line %d: %w", line, err)
		}
		if blank(cells) {
			continue
		}
		ds.Table = append(ds.Table, toRecord(cells, index))
	}
	return ds, nil
}

// readXLSX reads the first worksheet whose first non-blank row holds the
// required header. Cell values are read raw so dates arrive as Excel serial
// numbers and are resolved during date standardization.
func readXLSX(r io.Reader) (*Dataset, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	var firstErr error
	for _, sheet := range f.GetSheetList() {
		rows, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
		if err != nil {
			return nil, fmt.Errorf("read sheet %q: %w", sheet, err)
		}

		headerAt := -1
		for i, row := range rows {
			if !blank(row) {
				headerAt = i
				break
			}
		}
		if headerAt < 0 {
			continue
		}

		index, err := validation.ValidateColumns(rows[headerAt])
		if err != nil {
			if firstErr == nil {
				firstErr = err
			}
			continue
		}

		ds := &Dataset{Format: FormatXLSX, Sheet: sheet, Columns: cleanHeader(rows[headerAt])}
		for _, row := range rows[headerAt+1:] {
			if blank(row) {
				continue
			}
			ds.Table = append(ds.Table, toRecord(row, index))
		}
		return ds, nil
	}

	if firstErr != nil {
		return nil, firstErr
	}
	return nil, ErrEmptyFile
}

func toRecord(cells []string, index validation.ColumnIndex) domain.Record {
	cell := func(name string) string {
		i, ok := index[name]
		if !ok || i >= len(cells) {
			return ""
		}
		return cells[i]
	}
	return domain.Record{
		OrderID:      domain.ParseText(cell(domain.ColumnOrderID)),
		RawDate:      strings.TrimSpace(cell(domain.ColumnOrderDate)),
		Product:      domain.ParseText(cell(domain.ColumnProduct)),
		Category:     domain.ParseText(cell(domain.ColumnCategory)),
		Quantity:     domain.ParseNumber(cell(domain.ColumnQuantity)),
		Price:        domain.ParseNumber(cell(domain.ColumnPrice)),
		Revenue:      domain.ParseNumber(cell(domain.ColumnRevenue)),
		Region:       domain.ParseText(cell(domain.ColumnRegion)),
		CustomerType: domain.ParseText(cell(domain.ColumnCustomerType)),
	}
}

func cleanHeader(header []string) []string {
	out := make([]string, len(header))
	for i, h := range header {
		out[i] = strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))
	}
	return out
}

func blank(cells []string) bool {
	for _, c := range cells {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
