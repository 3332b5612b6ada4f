package shared

import (
	_ "embed"
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"
)

//go:embed config.example.toml
var exampleConf []byte

// Environment variables that override values read from the config file.
const (
	EnvToken         = "SHEETSTATS_TOKEN"
	EnvSpreadsheetID = "SHEETSTATS_SPREADSHEET_ID"
	EnvCredentials   = "SHEETSTATS_CREDENTIALS"
)

// Store drivers accepted by [StoreConfig.Driver].
const (
	DriverSheets = "sheets"
	DriverSQLite = "sqlite"
)

// Config represents the application configuration loaded from a TOML file.
type Config struct {
	Server   ServerConfig   `toml:"server"`
	Sheets   SheetsConfig   `toml:"sheets"`
	Stats    StatsConfig    `toml:"stats"`
	Job      JobConfig      `toml:"job"`
	Store    StoreConfig    `toml:"store"`
	Database DatabaseConfig `toml:"database"`
}

// ServerConfig contains HTTP server settings.
type ServerConfig struct {
	Host string `toml:"host"`
	Port int    `toml:"port"`
}

// SheetsConfig points at the spreadsheet and lists the tabs a job may target.
type SheetsConfig struct {
	SpreadsheetID   string   `toml:"spreadsheet_id"`
	CredentialsPath string   `toml:"credentials_path"`
	BaseURL         string   `toml:"base_url"`
	Targets         []string `toml:"targets"`
}

// StatsConfig contains the remote statistics API settings.
type StatsConfig struct {
	BaseURL   string `toml:"base_url"`
	Endpoint  string `toml:"endpoint"`
	Token     string `toml:"token"`
	TimeoutMS int    `toml:"timeout_ms"`
}

// JobConfig tunes the sheet job.
type JobConfig struct {
	DelayMS  int    `toml:"delay_ms"`
	Schedule string `toml:"schedule"`
}

// StoreConfig selects the table store backend.
type StoreConfig struct {
	Driver string `toml:"driver"`
}

// DatabaseConfig contains database connection settings.
type DatabaseConfig struct {
	Path         string `toml:"path"`
	MaxOpenConns int    `toml:"max_open_conns"`
	MaxIdleConns int    `toml:"max_idle_conns"`
}

// Addr returns the listen address for the HTTP server.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// Timeout returns the per-request timeout of the statistics API.
func (s StatsConfig) Timeout() time.Duration {
	return time.Duration(s.TimeoutMS) * time.Millisecond
}

// Delay returns the pause between two lookups.
func (j JobConfig) Delay() time.Duration {
	return time.Duration(j.DelayMS) * time.Millisecond
}

// LoadConfig reads and parses a TOML configuration file from the specified path.
//
// Keys missing from the file keep the values of [DefaultConfig].
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := DefaultConfig()
	if err := toml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// DefaultConfig returns a Config with sensible defaults loaded from the embedded example config.
func DefaultConfig() *Config {
	var config Config
	if err := toml.Unmarshal(exampleConf, &config); err != nil {
		panic(fmt.Sprintf("failed to parse embedded default config: %v", err))
	}
	return &config
}

// CreateConfigFile creates a config.toml file at the specified path using the embedded example config.
func CreateConfigFile(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists at %s", path)
	}

	if err := os.WriteFile(path, exampleConf, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// ApplyEnv overrides secrets and identifiers with values from the environment, when set.
func (c *Config) ApplyEnv() {
	if v := os.Getenv(EnvToken); v != "" {
		c.Stats.Token = v
	}
	if v := os.Getenv(EnvSpreadsheetID); v != "" {
		c.Sheets.SpreadsheetID = v
	}
	if v := os.Getenv(EnvCredentials); v != "" {
		c.Sheets.CredentialsPath = v
	}
}

// Validate checks values that would otherwise fail deep inside a job.
func (c *Config) Validate() error {
	switch c.Store.Driver {
	case DriverSheets, DriverSQLite:
	default:
		return fmt.Errorf("%w: unknown store driver %q", ErrInvalidConfig, c.Store.Driver)
	}
	if len(c.Sheets.Targets) == 0 {
		return fmt.Errorf("%w: at least one target is required", ErrInvalidConfig)
	}
	if c.Job.DelayMS < 0 {
		return fmt.Errorf("%w: delay_ms must not be negative", ErrInvalidConfig)
	}
	if c.Stats.TimeoutMS <= 0 {
		return fmt.Errorf("%w: timeout_ms must be positive", ErrInvalidConfig)
	}
	return nil
}
