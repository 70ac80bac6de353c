// Command salespulse analyzes a sales transaction file and prints the
// analysis report as JSON.
//
//	salespulse [flags] sales.csv
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"salespulse/internal/config"
	"salespulse/internal/dataprocessing"
	apierrors "salespulse/internal/errors"
	"salespulse/internal/exporter"
	"salespulse/internal/forecasting"
	"salespulse/internal/infrastructure"
	"salespulse/internal/operations"
	"salespulse/internal/validation"
	"salespulse/pkg/contracts"
	"salespulse/pkg/contracts/domain"
)

var (
	// errUsage marks command line mistakes; they exit with status 2.
	errUsage = errors.New("usage error")
	// errVersion asks run to print the version and stop.
	errVersion = errors.New("version printed")
)

type options struct {
	configPath string
	method     string
	horizon    int
	window     int
	export     bool
	outDir     string
	compare    bool
	version    bool
	input      string
}

// output is what the command prints.
type output struct {
	Report      *operations.Report       `json:"report"`
	Export      *exporter.ExportResult   `json:"export,omitempty"`
	Comparisons []forecasting.Comparison `json:"comparisons,omitempty"`
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		if errors.Is(err, errUsage) {
			os.Exit(2)
		}
		os.Exit(1)
	}
}

func parseFlags(args []string, stderr io.Writer) (*options, error) {
	fset := flag.NewFlagSet("salespulse", flag.ContinueOnError)
	fset.SetOutput(stderr)

	opts := &options{}
	fset.StringVar(&opts.configPath, "config", "", "path to a YAML config file (defaults to SALESPULSE_CONFIG or ./config.yaml)")
	fset.StringVar(&opts.method, "method", "", "forecast method: moving_average, exponential_smoothing or arima (defaults to config)")
	fset.IntVar(&opts.horizon, "horizon", 0, "months to forecast (defaults to config)")
	fset.IntVar(&opts.window, "window", 0, "moving average window in months (defaults to config)")
	fset.BoolVar(&opts.export, "export", false, "write cleaned data, features and forecast CSVs")
	fset.StringVar(&opts.outDir, "out", "", "export directory (defaults to config)")
	fset.BoolVar(&opts.compare, "compare", false, "also forecast the monthly series with every method")
	fset.BoolVar(&opts.version, "version", false, "print the version and exit")
	fset.Usage = func() {
		fmt.Fprintln(stderr, "usage: salespulse [flags] <sales.csv|sales.xlsx>")
		fset.PrintDefaults()
	}

	if err := fset.Parse(args); err != nil {
		return nil, fmt.Errorf("%w: %v", errUsage, err)
	}
	if opts.version {
		return opts, errVersion
	}
	if fset.NArg() != 1 {
		fset.Usage()
		return nil, fmt.Errorf("%w: expected exactly one input file", errUsage)
	}
	opts.input = fset.Arg(0)
	if opts.horizon < 0 || opts.window < 0 {
		return nil, fmt.Errorf("%w: horizon and window must not be negative", errUsage)
	}
	return opts, nil
}

func loadConfig(opts *options) (*config.Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, apierrors.NewConfigError("failed to read .env", err)
	}

	var (
		cfg *config.Config
		err error
	)
	if opts.configPath != "" {
		cfg, err = config.LoadFile(opts.configPath)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return nil, apierrors.NewConfigError("failed to load configuration", err)
	}

	if opts.method == "" {
		opts.method = cfg.Forecast.DefaultMethod
	}
	if opts.horizon == 0 {
		opts.horizon = cfg.Forecast.Horizon
	}
	if opts.window == 0 {
		opts.window = cfg.Forecast.Window
	}
	if opts.outDir != "" {
		cfg.Export.OutputDir = opts.outDir
	}
	return cfg, nil
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	opts, err := parseFlags(args, stderr)
	if errors.Is(err, errVersion) {
		_, err = fmt.Fprintln(stdout, contracts.GetFullVersionString())
		return err
	}
	if err != nil {
		return err
	}
	cfg, err := loadConfig(opts)
	if err != nil {
		return err
	}

	// stdout carries the report, so logs always go to stderr
	logger := infrastructure.NewLogger(cfg.Logging, stderr)
	ctx = infrastructure.EnsureTraceID(ctx)

	if opts.export {
		if err := validation.NewFileValidator(logger).ValidateOutputDirectory(cfg.Export.OutputDir); err != nil {
			return apierrors.NewStorageError("export directory is not usable", err)
		}
	}

	ds, err := dataprocessing.NewLoader(logger).LoadFile(ctx, opts.input)
	if err != nil {
		return err
	}

	runner := operations.NewRunnerFromConfig(cfg, nil, logger)
	report, err := runner.Run(ctx, operations.Request{
		Dataset: ds,
		Method:  domain.Method(opts.method),
		Horizon: opts.horizon,
		Window:  opts.window,
	})
	if err != nil {
		return err
	}

	out := output{Report: report}
	if opts.compare {
		engine := forecasting.NewEngine(operations.EngineConfig(cfg.Forecast), logger)
		out.Comparisons = engine.Compare(ctx, report.MonthlyRevenue, opts.horizon)
	}
	if opts.export {
		result, err := exporter.NewRunExporter(cfg.Export.OutputDir, logger).ExportRun(report)
		if err != nil {
			return apierrors.NewStorageError("failed to export run", err).WithContext("run_id", report.RunID)
		}
		out.Export = result
	}

	logger.InfoContext(ctx, "analysis complete",
		slog.String("run_id", report.RunID),
		slog.String("input", opts.input),
		slog.Bool("forecast", report.Forecast != nil),
		slog.Bool("step_failures", report.HasFailures()))

	enc := json.NewEncoder(stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}
