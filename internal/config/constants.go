package config

// Application constants
const (
	AppName    = "tradecharts"
	AppVersion = "1.2.0"

	// EnvPrefix namespaces every environment variable read by Load.
	EnvPrefix = "TRADECHARTS"

	// ConfigFileEnv names the variable holding an explicit config file path.
	ConfigFileEnv     = "TRADECHARTS_CONFIG"
	DefaultConfigFile = "tradecharts.yaml"

	DefaultOutputDir = "reports"
	DefaultLogFile   = "logs/tradecharts.log"

	// Ranking sizes of the built-in comparisons.
	DefaultCommodityCount = 12
	DefaultClientCount    = 21

	// MaxWeek is the highest ISO week number accepted as a cutoff.
	MaxWeek = 53
)

// Supported values for enumerated settings.
var (
	SupportedFormats    = []string{"png", "jpg", "svg", "pdf"}
	SupportedEncodings  = []string{"utf-8", "latin1"}
	SupportedMetrics    = []string{"TEU", "TONS", "WEIGHTED", "CONTRIBUTION"}
	SupportedTradeModes = []string{"cumulative", "weekly"}
	SupportedTracing    = []string{"none", "stdout"}
)
