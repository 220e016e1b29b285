// Package config defines the application configuration and loads it from a
// YAML file, with environment overrides.
package config

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/metria/innovation-accounting/pkg/constants"
	"github.com/metria/innovation-accounting/pkg/validation"
	"github.com/spf13/viper"
)

// EnvPrefix namespaces environment overrides, e.g. METRIA_STORE_PATH.
const EnvPrefix = "METRIA"

// APIKeyEnv names the variable holding the narrative API key.
const APIKeyEnv = "ANTHROPIC_API_KEY"

// Configuration holds all configuration for the application.
type Configuration struct {
	Logging   LoggingConfig   `yaml:"logging,omitempty"`
	Output    OutputConfig    `yaml:"output,omitempty"`
	Store     StoreConfig     `yaml:"store,omitempty"`
	Server    ServerConfig    `yaml:"server,omitempty"`
	Narrative NarrativeConfig `yaml:"narrative,omitempty"`
}

// LoggingConfig holds logging configuration options
type LoggingConfig struct {
	Level      string `yaml:"level,omitempty"`      // debug, info, warn, error
	Format     string `yaml:"format,omitempty"`     // json, console
	OutputFile string `yaml:"outputFile,omitempty"` // optional file output
}

// OutputConfig holds output format configuration options
type OutputConfig struct {
	Format   string `yaml:"format,omitempty"` // pretty, csv, json
	Currency string `yaml:"currency,omitempty"`
}

// StoreConfig locates the project database.
type StoreConfig struct {
	Path string `yaml:"path,omitempty"`
}

// ServerConfig holds HTTP API options.
type ServerConfig struct {
	Address     string `yaml:"address,omitempty"`
	MaxBodySize string `yaml:"maxBodySize,omitempty"` // e.g. 256K, 1M
}

// NarrativeConfig controls the optional AI commentary.
type NarrativeConfig struct {
	Enabled        bool   `yaml:"enabled,omitempty"`
	Model          string `yaml:"model,omitempty"`
	MaxTokens      int    `yaml:"maxTokens,omitempty"`
	TimeoutSeconds int    `yaml:"timeoutSeconds,omitempty"`
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetConfigType("yml")
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
	v.SetDefault("logging.outputFile", "")
	v.SetDefault("output.format", constants.OutputFormatPretty)
	v.SetDefault("output.currency", constants.DefaultCurrencySymbol)
	v.SetDefault("store.path", constants.DefaultStorePath)
	v.SetDefault("server.address", constants.DefaultServerAddress)
	v.SetDefault("server.maxBodySize", fmt.Sprintf("%d", constants.DefaultMaxBodySizeBytes))
	v.SetDefault("narrative.enabled", false)
	v.SetDefault("narrative.model", constants.DefaultNarrativeModel)
	v.SetDefault("narrative.maxTokens", constants.DefaultNarrativeMaxTokens)
	v.SetDefault("narrative.timeoutSeconds", constants.DefaultNarrativeTimeoutSeconds)
	return v
}

func decode(v *viper.Viper) (*Configuration, error) {
	var configuration Configuration
	if err := v.Unmarshal(&configuration); err != nil {
		return nil, fmt.Errorf("unable to decode into struct, %w", err)
	}
	return &configuration, nil
}

// LoadConfiguration takes a file path as input and loads the YAML-formatted
// configuration there.
func LoadConfiguration(configPath string) (*Configuration, error) {
	v := newViper()
	v.SetConfigFile(configPath)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("error reading config file, %w", err)
	}
	return decode(v)
}

// LoadConfigurationFromReader loads YAML configuration from r.
func LoadConfigurationFromReader(r io.Reader) (*Configuration, error) {
	v := newViper()
	if err := v.ReadConfig(r); err != nil {
		return nil, fmt.Errorf("error reading config data, %w", err)
	}
	return decode(v)
}

// Default returns the configuration used when no file exists, still honoring
// environment overrides.
func Default() *Configuration {
	conf, err := decode(newViper())
	if err != nil {
		// Defaults always decode.
		panic(err)
	}
	return conf
}

// Validate rejects settings the application cannot run with.
func (c *Configuration) Validate() error {
	if err := validation.ValidateLogLevel(c.Logging.Level); err != nil {
		return err
	}
	if err := validation.ValidateLogFormat(c.Logging.Format); err != nil {
		return err
	}
	if err := validation.ValidateOutputFormat(c.Output.Format); err != nil {
		return err
	}
	if strings.TrimSpace(c.Store.Path) == "" {
		return fmt.Errorf("store path must not be empty")
	}
	return nil
}

// ValidateConfiguration performs general validation of the configuration and returns warnings
func (c *Configuration) ValidateConfiguration() []string {
	var warnings []string
	if c.Narrative.Enabled && strings.TrimSpace(os.Getenv(APIKeyEnv)) == "" {
		warnings = append(warnings, fmt.Sprintf("narrative is enabled but %s is not set; commentary will be skipped", APIKeyEnv))
	}
	if c.Narrative.Enabled && c.Narrative.TimeoutSeconds <= 0 {
		warnings = append(warnings, "narrative timeout is not positive; the default will be used")
	}
	return warnings
}
