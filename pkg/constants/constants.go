// Package constants provides shared constants for the innovation accounting application.
package constants

// Financial constants
const (
	// MonthsPerYear is the number of months in a year
	MonthsPerYear = 12

	// DecimalPrecision is the precision for currency rounding (2 decimal places)
	DecimalPrecision = 100

	// PercentageMultiplier is used for percentage conversions
	PercentageMultiplier = 100.0

	// CurrencyTolerance is the tolerance for currency comparisons (1 cent)
	CurrencyTolerance = 0.01
)

// Output format constants
const (
	// OutputFormatPretty is the human-readable output format
	OutputFormatPretty = "pretty"

	// OutputFormatCSV is the CSV output format
	OutputFormatCSV = "csv"

	// OutputFormatJSON emits the full project record as JSON
	OutputFormatJSON = "json"
)

// Configuration file constants
const (
	// DefaultConfigFile is the default configuration file name
	DefaultConfigFile = "metria.yaml"

	// DefaultStorePath is the default SQLite database holding saved projects
	DefaultStorePath = "metria.db"

	// DefaultCurrencySymbol prefixes monetary values in reports
	DefaultCurrencySymbol = "R$"
)

// Server configuration defaults
const (
	// DefaultServerAddress is the default HTTP listen address for the API
	DefaultServerAddress = ":8080"

	// DefaultMaxBodySizeBytes is the default maximum request body size (256 KB)
	DefaultMaxBodySizeBytes int64 = 256 * 1024
)

// Narrative defaults
const (
	// DefaultNarrativeModel is used when no model is configured
	DefaultNarrativeModel = "claude-sonnet-4-20250514"

	// DefaultNarrativeMaxTokens bounds the generated commentary
	DefaultNarrativeMaxTokens = 2048

	// DefaultNarrativeTimeoutSeconds bounds a single narrative request
	DefaultNarrativeTimeoutSeconds = 60
)
