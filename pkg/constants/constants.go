// Package constants provides shared constants for the finance-calculators application.
package constants

// Financial constants
const (
	// MonthsPerYear is the number of months in a year
	MonthsPerYear = 12

	// MaxYears bounds every simulation horizon. The iteration cap of a
	// simulator is MaxYears periods-per-year, i.e. 1200 monthly periods.
	MaxYears = 100
)

// Output format constants
const (
	// OutputFormatPretty is the human-readable output format
	OutputFormatPretty = "pretty"

	// OutputFormatCSV is the CSV output format
	OutputFormatCSV = "csv"

	// OutputFormatJSON is the JSON output format
	OutputFormatJSON = "json"

	// OutputFormatYAML is the YAML output format
	OutputFormatYAML = "yaml"
)

// Configuration file constants
const (
	// DefaultConfigFile is the default configuration file name
	DefaultConfigFile = "calculations.yaml"

	// DefaultServerConfigFile is the default server configuration file name
	DefaultServerConfigFile = "server-config.yaml"
)

// Server configuration defaults
const (
	// DefaultServerAddress is the default HTTP listen address for the API
	DefaultServerAddress = ":8080"

	// DefaultMaxBodySizeBytes is the default maximum request body size (256 KB)
	DefaultMaxBodySizeBytes int64 = 256 * 1024

	// DefaultCacheTTLSeconds is how long a memoized calculator result is kept
	DefaultCacheTTLSeconds = 300
)

// Validation constants
const (
	// PercentageMultiplier is used for percentage conversions
	PercentageMultiplier = 100.0

	// UnusualAnnualRatePercent is the rate above which a configuration warning is raised
	UnusualAnnualRatePercent = 36.0

	// LongLoanTermYears is the loan term above which a configuration warning is raised
	LongLoanTermYears = 40

	// MaxPlausibleAge is the age above which retirement plans raise a warning
	MaxPlausibleAge = 110
)
