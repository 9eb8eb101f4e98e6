// Package config loads the relay's YAML configuration, mirroring the
// typed-struct-plus-defaults pattern used for game-server configuration
// across the retrieval pack (see internal/config.LoginServer in la2go).
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds every setting the relay needs at startup.
type Config struct {
	// Network
	Host        string `yaml:"host"`
	Port        int    `yaml:"port"`         // main framed-protocol UDP port
	ControlPort int    `yaml:"control_port"` // HELLO/PING/status UDP port

	// Server identity, echoed in lobby status broadcasts
	ServerName string `yaml:"server_name"`
	MaxPlayers int     `yaml:"max_players"` // per-game cap enforced by lobby handlers

	// Session lifecycle. Durations are strings in the YAML file (e.g. "120s"),
	// parsed below — the same convention la2go uses for its pool timeouts.
	SessionIdleTimeout string `yaml:"session_idle_timeout"`
	SessionSweepPeriod string `yaml:"session_sweep_period"`

	// Observability
	LogLevel       string `yaml:"log_level"` // debug, info, warn, error
	MetricsAddr    string `yaml:"metrics_addr"`
	MetricsEnabled bool   `yaml:"metrics_enabled"`
}

// Default returns the built-in configuration used when no file is given.
func Default() Config {
	return Config{
		Host:               "0.0.0.0",
		Port:               27999,
		ControlPort:        27888,
		ServerName:         "Kaillera-Go Relay",
		MaxPlayers:         4,
		SessionIdleTimeout: "120s",
		SessionSweepPeriod: "5s",
		LogLevel:           "info",
		MetricsAddr:        "127.0.0.1:9090",
		MetricsEnabled:     true,
	}
}

// Load reads a YAML config file at path, overlaying it on Default().
// A missing file is not an error: the defaults are returned as-is.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("read config %q: %w", path, err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %q: %w", path, err)
	}
	return cfg, nil
}

// IdleTimeout parses SessionIdleTimeout, falling back to the default on a
// malformed or empty value.
func (c Config) IdleTimeout() time.Duration {
	if d, err := time.ParseDuration(c.SessionIdleTimeout); err == nil {
		return d
	}
	return 120 * time.Second
}

// SweepPeriod parses SessionSweepPeriod, falling back to the default on a
// malformed or empty value.
func (c Config) SweepPeriod() time.Duration {
	if d, err := time.ParseDuration(c.SessionSweepPeriod); err == nil {
		return d
	}
	return 5 * time.Second
}
