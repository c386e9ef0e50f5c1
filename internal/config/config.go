// Package config provides configuration management.
package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"solarwise/core/sizing"
	"solarwise/core/types"
	"solarwise/internal/errors"
	"solarwise/internal/logging"
)

// Config is the main application configuration
type Config struct {
	// Version is the configuration version
	Version string `json:"version" yaml:"version"`

	// Tariff contains tariff schedule configuration
	Tariff TariffConfig `json:"tariff" yaml:"tariff"`

	// Sizing contains the regional solar sizing parameters
	Sizing sizing.Config `json:"sizing" yaml:"sizing"`

	// Server contains HTTP server configuration
	Server ServerConfig `json:"server" yaml:"server"`

	// Output contains output configuration
	Output OutputConfig `json:"output" yaml:"output"`

	// Logging contains logging configuration
	Logging logging.Config `json:"logging" yaml:"logging"`
}

// TariffConfig selects and loads tariff schedules
type TariffConfig struct {
	// Category is the consumer category used when none is requested
	Category string `json:"category" yaml:"category"`

	// Currency is the currency amounts are expressed in
	Currency types.Currency `json:"currency" yaml:"currency"`

	// VersionConstraint optionally pins schedule versions (e.g. "~2025.1")
	VersionConstraint string `json:"version_constraint,omitempty" yaml:"version_constraint,omitempty"`

	// ScheduleFiles are HCL or YAML schedule files loaded at startup
	ScheduleFiles []string `json:"schedule_files,omitempty" yaml:"schedule_files,omitempty"`

	// DatabasePath is the SQLite tariff store, empty to disable
	DatabasePath string `json:"database_path,omitempty" yaml:"database_path,omitempty"`

	// SkipBuiltin disables the compiled-in CEB schedule
	SkipBuiltin bool `json:"skip_builtin,omitempty" yaml:"skip_builtin,omitempty"`
}

// ServerConfig contains HTTP server settings
type ServerConfig struct {
	// Addr is the listen address
	Addr string `json:"addr" yaml:"addr"`
}

// OutputConfig contains output-related settings
type OutputConfig struct {
	// DefaultFormat is the default output format (cli, json)
	DefaultFormat string `json:"default_format" yaml:"default_format"`

	// ShowBreakdown shows the per-block tariff breakdown
	ShowBreakdown bool `json:"show_breakdown" yaml:"show_breakdown"`
}

// Default returns a default configuration
func Default() *Config {
	return &Config{
		Version: "1.0",
		Tariff: TariffConfig{
			Category: "domestic",
			Currency: types.CurrencyLKR,
		},
		Sizing: sizing.DefaultConfig(),
		Server: ServerConfig{
			Addr: ":8080",
		},
		Output: OutputConfig{
			DefaultFormat: "cli",
			ShowBreakdown: true,
		},
		Logging: logging.DefaultConfig(),
	}
}

// DefaultPath returns $HOME/.solarwise.json
func DefaultPath() string {
	homeDir, _ := os.UserHomeDir()
	return filepath.Join(homeDir, ".solarwise.json")
}

func isYAML(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	return ext == ".yaml" || ext == ".yml"
}

// Load loads configuration from a JSON or YAML file and applies
// SOLARWISE_* environment overrides. A missing file yields the defaults.
func Load(path string) (*Config, error) {
	config := Default()

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, errors.Wrapf(errors.TypeConfig, err, "read config %s", path)
	}

	if len(data) > 0 {
		if isYAML(path) {
			err = yaml.Unmarshal(data, config)
		} else {
			err = json.Unmarshal(data, config)
		}
		if err != nil {
			return nil, errors.Wrapf(errors.TypeConfig, err, "parse config %s", path)
		}
	}

	if err := config.applyEnv(); err != nil {
		return nil, err
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

func (c *Config) applyEnv() error {
	if v := os.Getenv("SOLARWISE_TARIFF_CATEGORY"); v != "" {
		c.Tariff.Category = v
	}
	if v := os.Getenv("SOLARWISE_TARIFF_DB"); v != "" {
		c.Tariff.DatabasePath = v
	}
	if v := os.Getenv("SOLARWISE_SCHEDULE_FILES"); v != "" {
		c.Tariff.ScheduleFiles = strings.Split(v, string(os.PathListSeparator))
	}
	if v := os.Getenv("SOLARWISE_SERVER_ADDR"); v != "" {
		c.Server.Addr = v
	}
	if v := os.Getenv("SOLARWISE_LOG_LEVEL"); v != "" {
		c.Logging.Level = v
	}
	if v := os.Getenv("SOLARWISE_YIELD_PER_KW"); v != "" {
		d, err := decimal.NewFromString(v)
		if err != nil {
			return errors.Wrapf(errors.TypeConfig, err, "SOLARWISE_YIELD_PER_KW=%q", v)
		}
		c.Sizing.YieldPerKW = d
	}
	return nil
}

// Validate checks the configuration
func (c *Config) Validate() error {
	if c.Tariff.Category == "" {
		return errors.New(errors.TypeConfig, "tariff.category is required")
	}
	return c.Sizing.Validate()
}

// Save saves configuration to a file, as YAML when the path ends in .yaml or .yml
func (c *Config) Save(path string) error {
	// Ensure directory exists
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	var (
		data []byte
		err  error
	)
	if isYAML(path) {
		data, err = yaml.Marshal(c)
	} else {
		data, err = json.MarshalIndent(c, "", "  ")
	}
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}

// Global configuration instance
var globalConfig = Default()

// Get returns the global configuration
func Get() *Config {
	return globalConfig
}

// Set sets the global configuration
func Set(config *Config) {
	globalConfig = config
}
