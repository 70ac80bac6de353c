package config

import (
	"fmt"
	"os"
	"reflect"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"

	"salespulse/internal/validation"
)

// EnvPrefix namespaces every environment variable, e.g. SALESPULSE_SERVER_PORT.
const EnvPrefix = "SALESPULSE"

// Config represents the complete application configuration
type Config struct {
	Server    ServerConfig    `yaml:"server" envconfig:"SERVER"`
	Security  SecurityConfig  `yaml:"security" envconfig:"SECURITY"`
	Logging   LoggingConfig   `yaml:"logging" envconfig:"LOGGING"`
	Forecast  ForecastConfig  `yaml:"forecast" envconfig:"FORECAST"`
	Cleaning  CleaningConfig  `yaml:"cleaning" envconfig:"CLEANING"`
	Export    ExportConfig    `yaml:"export" envconfig:"EXPORT"`
	Telemetry TelemetryConfig `yaml:"telemetry" envconfig:"TELEMETRY"`
}

// ServerConfig contains HTTP server configuration
type ServerConfig struct {
	Port            int           `yaml:"port" envconfig:"PORT" default:"8080" validate:"min=1,max=65535"`
	ReadTimeout     time.Duration `yaml:"read_timeout" envconfig:"READ_TIMEOUT" default:"15s" validate:"gt=0"`
	WriteTimeout    time.Duration `yaml:"write_timeout" envconfig:"WRITE_TIMEOUT" default:"60s" validate:"gt=0"`
	IdleTimeout     time.Duration `yaml:"idle_timeout" envconfig:"IDLE_TIMEOUT" default:"60s"`
	MaxHeaderBytes  int           `yaml:"max_header_bytes" envconfig:"MAX_HEADER_BYTES" default:"1048576"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" envconfig:"SHUTDOWN_TIMEOUT" default:"30s"`
}

// SecurityConfig contains security-related configuration
type SecurityConfig struct {
	AllowedOrigins []string        `yaml:"allowed_origins" envconfig:"ALLOWED_ORIGINS" default:"http://localhost:8080"`
	EnableCORS     bool            `yaml:"enable_cors" envconfig:"ENABLE_CORS" default:"true"`
	MaxUploadBytes int64           `yaml:"max_upload_bytes" envconfig:"MAX_UPLOAD_BYTES" default:"33554432" validate:"gt=0"`
	RateLimit      RateLimitConfig `yaml:"rate_limit" envconfig:"RATE_LIMIT"`
}

// RateLimitConfig contains rate limiting configuration
type RateLimitConfig struct {
	Enabled bool    `yaml:"enabled" envconfig:"ENABLED" default:"true"`
	RPS     float64 `yaml:"rps" envconfig:"RPS" default:"20" validate:"gte=0"`
	Burst   int     `yaml:"burst" envconfig:"BURST" default:"10" validate:"gte=0"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level    string `yaml:"level" envconfig:"LEVEL" default:"info" validate:"oneof=debug info warn error"`
	Format   string `yaml:"format" envconfig:"FORMAT" default:"json" validate:"oneof=json text"`
	Output   string `yaml:"output" envconfig:"OUTPUT" default:"console" validate:"oneof=console file both"`
	FilePath string `yaml:"file_path" envconfig:"FILE_PATH" default:"logs/salespulse.log"`
}

// ForecastConfig holds the forecasting defaults used when a request leaves
// them out.
type ForecastConfig struct {
	DefaultMethod string        `yaml:"default_method" envconfig:"DEFAULT_METHOD" default:"exponential_smoothing" validate:"oneof=moving_average exponential_smoothing arima"`
	Horizon       int           `yaml:"horizon" envconfig:"HORIZON" default:"6" validate:"min=1,max=60"`
	Window        int           `yaml:"window" envconfig:"WINDOW" default:"3" validate:"min=1"`
	ARIMA         ARIMAConfig   `yaml:"arima" envconfig:"ARIMA"`
	FitTimeout    time.Duration `yaml:"fit_timeout" envconfig:"FIT_TIMEOUT" default:"10s" validate:"gt=0"`
	MaxIterations int           `yaml:"max_iterations" envconfig:"MAX_ITERATIONS" default:"2000" validate:"min=1"`
}

// ARIMAConfig is the default ARIMA(p, d, q) order.
type ARIMAConfig struct {
	P int `yaml:"p" envconfig:"P" default:"1" validate:"gte=0"`
	D int `yaml:"d" envconfig:"D" default:"1" validate:"gte=0,lte=2"`
	Q int `yaml:"q" envconfig:"Q" default:"1" validate:"gte=0"`
}

// CleaningConfig holds the repair thresholds of the cleaning pipeline.
type CleaningConfig struct {
	RevenueTolerancePct float64 `yaml:"revenue_tolerance_pct" envconfig:"REVENUE_TOLERANCE_PCT" default:"1.0" validate:"gt=0"`
	OutlierSigma        float64 `yaml:"outlier_sigma" envconfig:"OUTLIER_SIGMA" default:"3" validate:"gt=0"`
}

// ExportConfig controls where CSV exports are written.
type ExportConfig struct {
	OutputDir string `yaml:"output_dir" envconfig:"OUTPUT_DIR" default:"output" validate:"required"`
}

// TelemetryConfig controls tracing and metrics.
type TelemetryConfig struct {
	Environment    string  `yaml:"environment" envconfig:"ENVIRONMENT" default:"development"`
	EnableTracing  bool    `yaml:"enable_tracing" envconfig:"ENABLE_TRACING" default:"false"`
	TraceExporter  string  `yaml:"trace_exporter" envconfig:"TRACE_EXPORTER" default:"stdout" validate:"oneof=stdout none"`
	SampleRatio    float64 `yaml:"sample_ratio" envconfig:"SAMPLE_RATIO" default:"1.0" validate:"gte=0,lte=1"`
	EnableMetrics  bool    `yaml:"enable_metrics" envconfig:"ENABLE_METRICS" default:"true"`
	MetricExporter string  `yaml:"metric_exporter" envconfig:"METRIC_EXPORTER" default:"prometheus" validate:"oneof=prometheus none"`
}

// Load builds the configuration from defaults, an optional YAML file and
// environment variables, in increasing order of precedence.
func Load() (*Config, error) {
	return LoadFile(getConfigFilePath())
}

// LoadFile is Load with an explicit config file path. An empty path skips
// the file.
func LoadFile(path string) (*Config, error) {
	var envCfg Config
	if err := envconfig.Process(EnvPrefix, &envCfg); err != nil {
		return nil, fmt.Errorf("failed to load config from env: %w", err)
	}

	cfg := envCfg
	if path != "" {
		fileCfg, err := loadFromFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to load config from file: %w", err)
		}
		cfg = *fileCfg
		overlayEnv(EnvPrefix, reflect.ValueOf(&cfg).Elem(), reflect.ValueOf(envCfg))
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return &cfg, nil
}

// loadFromFile reads a YAML file over the defaults so keys it leaves out
// keep their default values.
func loadFromFile(filePath string) (*Config, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, err
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// overlayEnv copies into dst every field whose environment variable is set.
// Variable names follow envconfig's PREFIX_SECTION_FIELD scheme.
func overlayEnv(prefix string, dst, env reflect.Value) {
	t := dst.Type()
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		key := field.Tag.Get("envconfig")
		if key == "" {
			key = strings.ToUpper(field.Name)
		}
		key = prefix + "_" + key

		if field.Type.Kind() == reflect.Struct {
			overlayEnv(key, dst.Field(i), env.Field(i))
			continue
		}
		if _, ok := os.LookupEnv(key); ok {
			dst.Field(i).Set(env.Field(i))
		}
	}
}

// validate validates the configuration
func (c *Config) validate() error {
	if err := validation.NewRequestValidator().Struct(c); err != nil {
		return err
	}
	if c.Forecast.ARIMA == (ARIMAConfig{}) {
		return fmt.Errorf("forecast.arima: ARIMA(0, 0, 0) has no terms, set at least one of p, d, q")
	}
	if c.Security.EnableCORS && len(c.Security.AllowedOrigins) == 0 {
		return fmt.Errorf("at least one allowed origin must be specified when CORS is enabled")
	}
	if c.Logging.Output != "console" && c.Logging.FilePath == "" {
		return fmt.Errorf("logging.file_path is required for %s output", c.Logging.Output)
	}
	return nil
}

// getConfigFilePath returns the path to the config file
func getConfigFilePath() string {
	if path := os.Getenv(EnvPrefix + "_CONFIG"); path != "" {
		return path
	}

	locations := []string{
		"config.yaml",
		"configs/config.yaml",
		"../configs/config.yaml",
	}
	for _, location := range locations {
		if _, err := os.Stat(location); err == nil {
			return location
		}
	}

	return "" // No config file found, use env vars only
}

// Default returns default configuration
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            8080,
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    60 * time.Second,
			IdleTimeout:     60 * time.Second,
			MaxHeaderBytes:  1 << 20, // 1MB
			ShutdownTimeout: 30 * time.Second,
		},
		Security: SecurityConfig{
			AllowedOrigins: []string{"http://localhost:8080"},
			EnableCORS:     true,
			MaxUploadBytes: 32 << 20,
			RateLimit: RateLimitConfig{
				Enabled: true,
				RPS:     20,
				Burst:   10,
			},
		},
		Logging: LoggingConfig{
			Level:    "info",
			Format:   "json",
			Output:   "console",
			FilePath: "logs/salespulse.log",
		},
		Forecast: ForecastConfig{
			DefaultMethod: "exponential_smoothing",
			Horizon:       6,
			Window:        3,
			ARIMA:         ARIMAConfig{P: 1, D: 1, Q: 1},
			FitTimeout:    10 * time.Second,
			MaxIterations: 2000,
		},
		Cleaning: CleaningConfig{
			RevenueTolerancePct: 1.0,
			OutlierSigma:        3,
		},
		Export: ExportConfig{
			OutputDir: "output",
		},
		Telemetry: TelemetryConfig{
			Environment:    "development",
			TraceExporter:  "stdout",
			SampleRatio:    1.0,
			EnableMetrics:  true,
			MetricExporter: "prometheus",
		},
	}
}
