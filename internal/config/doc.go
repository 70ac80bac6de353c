// Package config loads the salespulse configuration.
//
// # Configuration Sources
//
// Values are resolved in the following order of precedence:
//
//  1. Environment variables (highest priority)
//  2. A YAML configuration file
//  3. Default values (lowest priority)
//
// # Environment Variables
//
// Variables follow the pattern SALESPULSE_<SECTION>_<FIELD>:
//
//	SALESPULSE_SERVER_PORT=8080
//	SALESPULSE_LOGGING_LEVEL=debug
//	SALESPULSE_FORECAST_DEFAULT_METHOD=arima
//	SALESPULSE_FORECAST_ARIMA_P=2
//	SALESPULSE_CLEANING_REVENUE_TOLERANCE_PCT=1.0
//
// SALESPULSE_CONFIG names the YAML file explicitly. Without it, config.yaml
// and configs/config.yaml are tried relative to the working directory.
//
// # Usage
//
//	cfg, err := config.Load()
//	if err != nil {
//	    log.Fatal(err)
//	}
//
// Tests can use config.Default() directly; it needs no environment.
package config
