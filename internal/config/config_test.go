package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"salespulse/internal/validation"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadFile_Defaults(t *testing.T) {
	cfg, err := LoadFile("")
	require.NoError(t, err)

	assert.Equal(t, Default(), cfg)
}

func TestLoadFile_EnvOverrides(t *testing.T) {
	t.Setenv("SALESPULSE_SERVER_PORT", "9090")
	t.Setenv("SALESPULSE_FORECAST_DEFAULT_METHOD", "arima")
	t.Setenv("SALESPULSE_FORECAST_ARIMA_P", "2")
	t.Setenv("SALESPULSE_FORECAST_FIT_TIMEOUT", "3s")
	t.Setenv("SALESPULSE_SECURITY_ALLOWED_ORIGINS", "http://a.example,http://b.example")

	cfg, err := LoadFile("")
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "arima", cfg.Forecast.DefaultMethod)
	assert.Equal(t, ARIMAConfig{P: 2, D: 1, Q: 1}, cfg.Forecast.ARIMA)
	assert.Equal(t, 3*time.Second, cfg.Forecast.FitTimeout)
	assert.Equal(t, []string{"http://a.example", "http://b.example"}, cfg.Security.AllowedOrigins)
}

func TestLoadFile_YAML(t *testing.T) {
	path := writeConfig(t, `
server:
  port: 7000
forecast:
  horizon: 12
  window: 4
cleaning:
  outlier_sigma: 2.5
`)

	cfg, err := LoadFile(path)
	require.NoError(t, err)

	assert.Equal(t, 7000, cfg.Server.Port)
	assert.Equal(t, 12, cfg.Forecast.Horizon)
	assert.Equal(t, 4, cfg.Forecast.Window)
	assert.Equal(t, 2.5, cfg.Cleaning.OutlierSigma)

	// keys absent from the file keep their defaults
	assert.Equal(t, 15*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, 1.0, cfg.Cleaning.RevenueTolerancePct)
	assert.Equal(t, "exponential_smoothing", cfg.Forecast.DefaultMethod)
}

func TestLoadFile_EnvWinsOverFile(t *testing.T) {
	path := writeConfig(t, `
server:
  port: 7000
logging:
  level: debug
`)
	t.Setenv("SALESPULSE_SERVER_PORT", "7100")

	cfg, err := LoadFile(path)
	require.NoError(t, err)

	assert.Equal(t, 7100, cfg.Server.Port)
	assert.Equal(t, "debug", cfg.Logging.Level)
}

func TestLoadFile_Errors(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
		file string
	}{
		{
			name: "bad env value",
			env:  map[string]string{"SALESPULSE_SERVER_PORT": "eighty"},
		},
		{
			name: "port out of range",
			env:  map[string]string{"SALESPULSE_SERVER_PORT": "70000"},
		},
		{
			name: "unknown method",
			env:  map[string]string{"SALESPULSE_FORECAST_DEFAULT_METHOD": "prophet"},
		},
		{
			name: "horizon too long",
			file: "forecast:\n  horizon: 61\n",
		},
		{
			name: "differencing too deep",
			file: "forecast:\n  arima:\n    d: 3\n",
		},
		{
			name: "arima order with no terms",
			file: "forecast:\n  arima:\n    p: 0\n    d: 0\n    q: 0\n",
		},
		{
			name: "malformed yaml",
			file: "server: [port\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			path := ""
			if tt.file != "" {
				path = writeConfig(t, tt.file)
			}

			_, err := LoadFile(path)
			assert.Error(t, err)
		})
	}
}

func TestValidate_ReportsFields(t *testing.T) {
	cfg := Default()
	cfg.Forecast.Window = 0
	cfg.Logging.Level = "trace"

	err := cfg.validate()

	var fieldErrs validation.FieldErrors
	require.ErrorAs(t, err, &fieldErrs)
	fields := make([]string, len(fieldErrs))
	for i, fe := range fieldErrs {
		fields[i] = fe.Field
	}
	assert.ElementsMatch(t, []string{"Logging.Level", "Forecast.Window"}, fields)
}

func TestValidate_ARIMAOrder(t *testing.T) {
	cfg := Default()
	cfg.Forecast.ARIMA = ARIMAConfig{}
	assert.ErrorContains(t, cfg.validate(), "ARIMA(0, 0, 0)")

	cfg.Forecast.ARIMA = ARIMAConfig{P: 0, D: 1, Q: 0}
	assert.NoError(t, cfg.validate())
}

func TestValidate_FileOutputNeedsPath(t *testing.T) {
	cfg := Default()
	cfg.Logging.Output = "file"
	cfg.Logging.FilePath = ""

	assert.Error(t, cfg.validate())
}

func TestGetConfigFilePath_EnvOverride(t *testing.T) {
	t.Setenv("SALESPULSE_CONFIG", "/etc/salespulse/config.yaml")
	assert.Equal(t, "/etc/salespulse/config.yaml", getConfigFilePath())
}
