// Package config provides configuration management for tradecharts.
// It loads settings from environment variables and an optional YAML file,
// validates them, and exposes typed sections to the rest of the application.
//
// # Configuration Sources
//
// Configuration is loaded from the following sources in order of precedence:
//
//  1. Environment variables (highest priority)
//  2. YAML configuration file
//  3. Default values (lowest priority)
//
// # Environment Variables
//
// All environment variables use the TRADECHARTS_ prefix followed by the
// section and field name:
//
//	TRADECHARTS_LOGGING_LEVEL=debug
//	TRADECHARTS_INPUT_ENCODING=latin1
//	TRADECHARTS_OUTPUT_DIR=out/charts
//	TRADECHARTS_OUTPUT_FORMAT=svg
//	TRADECHARTS_REPORT_TRADES=ASIA,EUROPE,AMERICAS
//	TRADECHARTS_TELEMETRY_TRACING=stdout
//
// # Configuration File
//
// The file is read from the path in TRADECHARTS_CONFIG, or tradecharts.yaml in
// the working directory when that variable is unset:
//
//	logging:
//	  level: info
//	input:
//	  encoding: latin1
//	output:
//	  dir: reports
//	  format: png
//	  export_csv: true
//
// # Usage
//
//	cfg, err := config.Load()
//	if err != nil {
//	    return fmt.Errorf("load config: %w", err)
//	}
//	logger := infrastructure.MustInitializeLogger(cfg.Logging)
package config
