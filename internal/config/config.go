// Package config provides configuration management for the chat broker.
package config

import (
	"crypto/tls"
	"errors"
	"fmt"
)

// ListenerMode defines the operational mode for a listener.
type ListenerMode string

const (
	// ModePlain accepts cleartext TCP connections.
	ModePlain ListenerMode = "plain"
	// ModeTLS wraps every accepted connection in TLS immediately.
	ModeTLS ListenerMode = "tls"
)

// UserSource selects where the user directory is loaded from.
type UserSource string

const (
	// SourceFile loads the directory from a JSON document on disk.
	SourceFile UserSource = "file"
	// SourceRedis loads the directory from a Redis instance at startup.
	SourceRedis UserSource = "redis"
)

// FileConfig is the top-level wrapper for the configuration file.
type FileConfig struct {
	Quipd Config `toml:"quipd"`
}

// Config holds the complete broker configuration.
type Config struct {
	Hostname  string           `toml:"hostname"`
	LogLevel  string           `toml:"log_level"`
	Listeners []ListenerConfig `toml:"listeners"`
	TLS       TLSConfig        `toml:"tls"`
	Users     UsersConfig      `toml:"users"`
	Limits    LimitsConfig     `toml:"limits"`
	Metrics   MetricsConfig    `toml:"metrics"`
}

// ListenerConfig defines settings for a single listener.
type ListenerConfig struct {
	Address string       `toml:"address"`
	Mode    ListenerMode `toml:"mode"`
}

// TLSConfig holds TLS certificate and version settings.
type TLSConfig struct {
	CertFile   string `toml:"cert_file"`
	KeyFile    string `toml:"key_file"`
	MinVersion string `toml:"min_version"`
}

// UsersConfig selects and parameterizes the user directory source.
type UsersConfig struct {
	Source        UserSource `toml:"source"`
	Path          string     `toml:"path"`
	RedisAddr     string     `toml:"redis_addr"`
	RedisPassword string     `toml:"redis_password"`
	RedisDB       int        `toml:"redis_db"`
}

// LimitsConfig defines resource limits for the broker.
type LimitsConfig struct {
	// MaxLineLength bounds one wire frame. The protocol guarantees clients
	// at least 4096 bytes.
	MaxLineLength int `toml:"max_line_length"`
}

// MetricsConfig holds configuration for Prometheus metrics.
type MetricsConfig struct {
	Enabled bool   `toml:"enabled"`
	Address string `toml:"address"`
	Path    string `toml:"path"`
}

// Default returns a Config with sensible default values.
func Default() Config {
	return Config{
		Hostname: "localhost",
		LogLevel: "info",
		Listeners: []ListenerConfig{
			{Address: "0.0.0.0:1145", Mode: ModePlain},
		},
		TLS: TLSConfig{
			MinVersion: "1.2",
		},
		Users: UsersConfig{
			Source: SourceFile,
			Path:   "./users.json",
		},
		Limits: LimitsConfig{
			MaxLineLength: 8192,
		},
		Metrics: MetricsConfig{
			Enabled: false,
			Address: ":9100",
			Path:    "/metrics",
		},
	}
}

// Validate checks that the configuration is valid and returns an error if not.
func (c *Config) Validate() error {
	if c.Hostname == "" {
		return errors.New("hostname is required")
	}

	if len(c.Listeners) == 0 {
		return errors.New("at least one listener is required")
	}

	needTLS := false
	for i, l := range c.Listeners {
		if l.Address == "" {
			return fmt.Errorf("listener %d: address is required", i)
		}
		switch l.Mode {
		case ModePlain:
		case ModeTLS:
			needTLS = true
		default:
			return fmt.Errorf("listener %d: invalid mode %q", i, l.Mode)
		}
	}

	if needTLS && (c.TLS.CertFile == "" || c.TLS.KeyFile == "") {
		return errors.New("tls listeners require cert_file and key_file")
	}

	if c.TLS.MinVersion != "" {
		if _, ok := minTLSVersions[c.TLS.MinVersion]; !ok {
			return fmt.Errorf("invalid TLS min_version %q (valid: 1.0, 1.1, 1.2, 1.3)", c.TLS.MinVersion)
		}
	}

	switch c.Users.Source {
	case SourceFile:
		if c.Users.Path == "" {
			return errors.New("users path is required for the file source")
		}
	case SourceRedis:
		if c.Users.RedisAddr == "" {
			return errors.New("users redis_addr is required for the redis source")
		}
	default:
		return fmt.Errorf("invalid users source %q (valid: file, redis)", c.Users.Source)
	}

	if c.Limits.MaxLineLength < 4096 {
		return errors.New("max_line_length must be at least 4096")
	}

	if c.Metrics.Enabled {
		if c.Metrics.Address == "" {
			return errors.New("metrics address is required when metrics are enabled")
		}
		if c.Metrics.Path == "" {
			return errors.New("metrics path is required when metrics are enabled")
		}
	}

	return nil
}

// MinTLSVersion returns the crypto/tls constant for the configured minimum TLS version.
// Returns tls.VersionTLS12 if not configured or invalid.
func (c *TLSConfig) MinTLSVersion() uint16 {
	if v, ok := minTLSVersions[c.MinVersion]; ok {
		return v
	}
	return tls.VersionTLS12
}

var minTLSVersions = map[string]uint16{
	"1.0": tls.VersionTLS10,
	"1.1": tls.VersionTLS11,
	"1.2": tls.VersionTLS12,
	"1.3": tls.VersionTLS13,
}
