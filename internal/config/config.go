package config

import (
	"fmt"
	"os"
	"slices"
	"strings"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"
)

// Config represents the complete application configuration
type Config struct {
	Logging   LoggingConfig   `yaml:"logging" envconfig:"LOGGING"`
	Input     InputConfig     `yaml:"input" envconfig:"INPUT"`
	Output    OutputConfig    `yaml:"output" envconfig:"OUTPUT"`
	Report    ReportConfig    `yaml:"report" envconfig:"REPORT"`
	Telemetry TelemetryConfig `yaml:"telemetry" envconfig:"TELEMETRY"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level    string `yaml:"level" envconfig:"LEVEL" default:"info"`
	Format   string `yaml:"format" envconfig:"FORMAT" default:"json"`
	Output   string `yaml:"output" envconfig:"OUTPUT" default:"console"`
	FilePath string `yaml:"file_path" envconfig:"FILE_PATH" default:"logs/tradecharts.log"`
}

// InputConfig describes where trade records come from
type InputConfig struct {
	Path     string `yaml:"path" envconfig:"FILE"`
	Sheet    string `yaml:"sheet" envconfig:"SHEET"`
	Encoding string `yaml:"encoding" envconfig:"ENCODING" default:"utf-8"`
}

// OutputConfig controls figure and data export
type OutputConfig struct {
	Dir        string `yaml:"dir" envconfig:"DIR" default:"reports"`
	Format     string `yaml:"format" envconfig:"FORMAT" default:"png"`
	DPI        int    `yaml:"dpi" envconfig:"DPI" default:"96"`
	ExportCSV  bool   `yaml:"export_csv" envconfig:"EXPORT_CSV" default:"false"`
	ExportXLSX bool   `yaml:"export_xlsx" envconfig:"EXPORT_XLSX" default:"false"`
}

// ReportConfig holds comparison defaults
type ReportConfig struct {
	CommodityCount int      `yaml:"commodity_count" envconfig:"COMMODITY_COUNT" default:"12"`
	ClientCount    int      `yaml:"client_count" envconfig:"CLIENT_COUNT" default:"21"`
	Trades         []string `yaml:"trades" envconfig:"TRADES"`
	TradeMetric    string   `yaml:"trade_metric" envconfig:"TRADE_METRIC" default:"WEIGHTED"`
	TradeMode      string   `yaml:"trade_mode" envconfig:"TRADE_MODE" default:"cumulative"`
}

// TelemetryConfig selects tracing and metrics sinks
type TelemetryConfig struct {
	Tracing     string `yaml:"tracing" envconfig:"TRACING" default:"none"`
	MetricsFile string `yaml:"metrics_file" envconfig:"METRICS_FILE"`
}

// Load loads configuration from environment variables and config file
func Load() (*Config, error) {
	var cfg Config

	// Load from environment variables first
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config from env: %w", err)
	}

	// Load from config file if exists
	if configFile := getConfigFilePath(); configFile != "" {
		fileConfig, err := loadFromFile(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config from file: %w", err)
		}
		cfg = mergeConfigs(*fileConfig, cfg)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}

// loadFromFile loads configuration from YAML file
func loadFromFile(filePath string) (*Config, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// mergeConfigs merges file config into env config. A value from the file wins
// unless the matching environment variable was set explicitly.
func mergeConfigs(fileConfig, envConfig Config) Config {
	mergeString(&envConfig.Logging.Level, fileConfig.Logging.Level, "LOGGING_LEVEL")
	mergeString(&envConfig.Logging.Format, fileConfig.Logging.Format, "LOGGING_FORMAT")
	mergeString(&envConfig.Logging.Output, fileConfig.Logging.Output, "LOGGING_OUTPUT")
	mergeString(&envConfig.Logging.FilePath, fileConfig.Logging.FilePath, "LOGGING_FILE_PATH")

	mergeString(&envConfig.Input.Path, fileConfig.Input.Path, "INPUT_FILE")
	mergeString(&envConfig.Input.Sheet, fileConfig.Input.Sheet, "INPUT_SHEET")
	mergeString(&envConfig.Input.Encoding, fileConfig.Input.Encoding, "INPUT_ENCODING")

	mergeString(&envConfig.Output.Dir, fileConfig.Output.Dir, "OUTPUT_DIR")
	mergeString(&envConfig.Output.Format, fileConfig.Output.Format, "OUTPUT_FORMAT")
	mergeInt(&envConfig.Output.DPI, fileConfig.Output.DPI, "OUTPUT_DPI")
	mergeBool(&envConfig.Output.ExportCSV, fileConfig.Output.ExportCSV, "OUTPUT_EXPORT_CSV")
	mergeBool(&envConfig.Output.ExportXLSX, fileConfig.Output.ExportXLSX, "OUTPUT_EXPORT_XLSX")

	mergeInt(&envConfig.Report.CommodityCount, fileConfig.Report.CommodityCount, "REPORT_COMMODITY_COUNT")
	mergeInt(&envConfig.Report.ClientCount, fileConfig.Report.ClientCount, "REPORT_CLIENT_COUNT")
	mergeString(&envConfig.Report.TradeMetric, fileConfig.Report.TradeMetric, "REPORT_TRADE_METRIC")
	mergeString(&envConfig.Report.TradeMode, fileConfig.Report.TradeMode, "REPORT_TRADE_MODE")
	if !envSet("REPORT_TRADES") && len(fileConfig.Report.Trades) > 0 {
		envConfig.Report.Trades = fileConfig.Report.Trades
	}

	mergeString(&envConfig.Telemetry.Tracing, fileConfig.Telemetry.Tracing, "TELEMETRY_TRACING")
	mergeString(&envConfig.Telemetry.MetricsFile, fileConfig.Telemetry.MetricsFile, "TELEMETRY_METRICS_FILE")

	return envConfig
}

func envSet(key string) bool {
	_, ok := os.LookupEnv(EnvPrefix + "_" + key)
	return ok
}

func mergeString(dst *string, fileValue, key string) {
	if fileValue != "" && !envSet(key) {
		*dst = fileValue
	}
}

func mergeInt(dst *int, fileValue int, key string) {
	if fileValue != 0 && !envSet(key) {
		*dst = fileValue
	}
}

func mergeBool(dst *bool, fileValue bool, key string) {
	if fileValue && !envSet(key) {
		*dst = fileValue
	}
}

// Validate validates the configuration and normalises enumerated values
func (c *Config) Validate() error {
	c.Input.Encoding = strings.ToLower(c.Input.Encoding)
	c.Output.Format = strings.ToLower(c.Output.Format)
	c.Report.TradeMetric = strings.ToUpper(c.Report.TradeMetric)
	c.Report.TradeMode = strings.ToLower(c.Report.TradeMode)
	c.Telemetry.Tracing = strings.ToLower(c.Telemetry.Tracing)

	if !slices.Contains(SupportedEncodings, c.Input.Encoding) {
		return fmt.Errorf("unsupported input encoding: %s", c.Input.Encoding)
	}

	if !slices.Contains(SupportedFormats, c.Output.Format) {
		return fmt.Errorf("unsupported output format: %s", c.Output.Format)
	}

	if c.Output.DPI <= 0 {
		return fmt.Errorf("output dpi must be positive")
	}

	if c.Output.Dir == "" {
		c.Output.Dir = DefaultOutputDir
	}

	if c.Report.CommodityCount <= 0 || c.Report.ClientCount <= 0 {
		return fmt.Errorf("report counts must be positive")
	}

	if !slices.Contains(SupportedMetrics, c.Report.TradeMetric) {
		return fmt.Errorf("unsupported trade metric: %s", c.Report.TradeMetric)
	}

	if !slices.Contains(SupportedTradeModes, c.Report.TradeMode) {
		return fmt.Errorf("unsupported trade mode: %s", c.Report.TradeMode)
	}

	if c.Report.TradeMetric == "CONTRIBUTION" && c.Report.TradeMode != "weekly" {
		return fmt.Errorf("trade metric CONTRIBUTION requires weekly mode")
	}

	if !slices.Contains(SupportedTracing, c.Telemetry.Tracing) {
		return fmt.Errorf("unsupported tracing exporter: %s", c.Telemetry.Tracing)
	}

	if c.Logging.Format != "json" {
		c.Logging.Format = "json"
	}

	switch c.Logging.Output {
	case "console", "file", "both":
	default:
		return fmt.Errorf("unsupported logging output: %s", c.Logging.Output)
	}

	if c.Logging.FilePath == "" {
		c.Logging.FilePath = DefaultLogFile
	}

	return nil
}

// getConfigFilePath returns the path to the config file, or "" when none exists
func getConfigFilePath() string {
	if path := os.Getenv(ConfigFileEnv); path != "" {
		return path
	}

	if _, err := os.Stat(DefaultConfigFile); err == nil {
		return DefaultConfigFile
	}

	return ""
}

// Default returns default configuration
func Default() *Config {
	return &Config{
		Logging: LoggingConfig{
			Level:    "info",
			Format:   "json",
			Output:   "console",
			FilePath: DefaultLogFile,
		},
		Input: InputConfig{
			Encoding: "utf-8",
		},
		Output: OutputConfig{
			Dir:    DefaultOutputDir,
			Format: "png",
			DPI:    96,
		},
		Report: ReportConfig{
			CommodityCount: DefaultCommodityCount,
			ClientCount:    DefaultClientCount,
			TradeMetric:    "WEIGHTED",
			TradeMode:      "cumulative",
		},
		Telemetry: TelemetryConfig{
			Tracing: "none",
		},
	}
}
