// Package config provides the rig server's configuration structure and
// defaults.
package config

import (
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"
)

// getuid is the function used to retrieve the current user ID.
// It is a variable to allow tests to simulate root/non-root environments.
var getuid = os.Getuid

// Config is the rig server's configuration, loaded from a YAML file and
// overridable by flags and environment variables via viper.
type Config struct {
	// ServerID names this server in the Hello banner every interface
	// receives on connect, e.g. "Jig/20 1.0".
	ServerID string `yaml:"serverId,omitempty" mapstructure:"serverId"`

	// UnitDir is the directory scanned for .jig/.scenario/.test/
	// .interface unit files. Empty means the user-mode/system-mode
	// default from GetUnitDir().
	UnitDir string `yaml:"unitDir,omitempty" mapstructure:"unitDir"`

	// TCPAddr is the listen address for the line-oriented TCP
	// interface transport, e.g. ":9090". Empty disables it.
	TCPAddr string `yaml:"tcpAddr,omitempty" mapstructure:"tcpAddr"`

	// WebSocketAddr is the listen address for the WebSocket interface
	// transport, e.g. ":9091". Empty disables it.
	WebSocketAddr string `yaml:"webSocketAddr,omitempty" mapstructure:"webSocketAddr"`

	// DefaultScenarioTimeout bounds a scenario run when its unit file
	// does not declare one. Zero means unbounded, matching the
	// original protocol's convention.
	DefaultScenarioTimeout time.Duration `yaml:"defaultScenarioTimeout,omitempty" mapstructure:"defaultScenarioTimeout"`

	// Verbose enables debug-level logging.
	Verbose bool `yaml:"verbose,omitempty" mapstructure:"verbose"`
}

// IsUserMode returns true if running as a non-root user (uid != 0).
func IsUserMode() bool {
	return getuid() != 0
}

// GetServerID returns the configured server identity, defaulting to the
// original protocol's banner string when unset.
func (c *Config) GetServerID() string {
	if c.ServerID != "" {
		return c.ServerID
	}
	return "Jig/20 1.0"
}

// GetUnitDir returns the configured unit search directory, using the
// default based on user mode if not configured.
func (c *Config) GetUnitDir() string {
	if c.UnitDir != "" {
		return c.UnitDir
	}
	if IsUserMode() {
		home, _ := os.UserHomeDir()
		return filepath.Join(home, ".config/exclave/units")
	}
	return "/etc/exclave/units"
}

// GetDefaultScenarioTimeout returns the configured default timeout for
// scenarios that declare none, or zero (unbounded) if not configured.
func (c *Config) GetDefaultScenarioTimeout() time.Duration {
	return c.DefaultScenarioTimeout
}

// Load builds a Config from, in ascending priority: built-in defaults,
// the YAML file at path (if non-empty and present), and EXCLAVE_-
// prefixed environment variables. An absent path is not an error — a
// bare `exclave run` with no config file falls back to every
// Get*-method default.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix("EXCLAVE")
	v.AutomaticEnv()
	// Unmarshal only sees keys viper already knows about, so each field
	// is bound explicitly for its EXCLAVE_<KEY> variable to apply even
	// when no config file sets it.
	for _, key := range []string{"serverId", "unitDir", "tcpAddr", "webSocketAddr", "defaultScenarioTimeout", "verbose"} {
		_ = v.BindEnv(key)
	}

	if path != "" {
		if _, statErr := os.Stat(path); statErr == nil {
			v.SetConfigFile(path)
			if err := v.ReadInConfig(); err != nil {
				return nil, err
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}
