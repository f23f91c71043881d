package config

import "time"

// Config represents the complete configuration structure
type Config struct {
	API         APIConfig         `mapstructure:"api"`
	Credentials CredentialsConfig `mapstructure:"credentials"`
	Logging     LoggingConfig     `mapstructure:"logging"`
	Filter      FilterConfig      `mapstructure:"filter"`
}

// APIConfig holds Venmo API connection details
type APIConfig struct {
	Host    string        `mapstructure:"host"`
	Timeout time.Duration `mapstructure:"timeout"`
	// DefaultHeaders are static headers attached to every request, standing in
	// for the headers the official mobile client sends.
	DefaultHeaders map[string]string `mapstructure:"default_headers"`
}

// CredentialsConfig holds the persisted session identity. Both values are
// printed after a successful login so they can be saved here and reused.
type CredentialsConfig struct {
	AccessToken string `mapstructure:"access_token"`
	DeviceID    string `mapstructure:"device_id"`
}

// FilterConfig contains named transaction filter presets
type FilterConfig map[string]string

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	Color  bool   `mapstructure:"color"`
}
