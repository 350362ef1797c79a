// Package config provides configuration management shared by the
// smtpd and pop3d demo servers.
package config

import (
	"crypto/tls"
	"errors"
	"fmt"
	"time"
)

// ListenerMode defines the operational mode for a listener.
type ListenerMode string

const (
	// ModeSmtp is plaintext SMTP with optional STARTTLS.
	ModeSmtp ListenerMode = "smtp"
	// ModeSmtps is implicit TLS SMTP.
	ModeSmtps ListenerMode = "smtps"
	// ModePop3 is standard POP3 with optional STLS.
	ModePop3 ListenerMode = "pop3"
	// ModePop3s is implicit TLS POP3.
	ModePop3s ListenerMode = "pop3s"
)

// FileConfig is the top-level wrapper for the shared configuration
// file, letting smtpd and pop3d share one TOML document.
type FileConfig struct {
	Server ServerConfig `toml:"server"`
	Smtpd  Config       `toml:"smtpd"`
	Pop3d  Config       `toml:"pop3d"`
}

// ServerConfig holds settings shared by every mail service.
type ServerConfig struct {
	Hostname string    `toml:"hostname"`
	TLS      TLSConfig `toml:"tls"`
}

// Config holds one service's configuration: its listeners, protocol
// behavior, and the ambient timeout/limit/metrics sections every
// service carries regardless of which verbs it implements.
type Config struct {
	Hostname      string            `toml:"hostname"`
	LogLevel      string            `toml:"log_level"`
	Pedantic      bool              `toml:"pedantic"`
	EsmtpFeatures map[string]string `toml:"esmtp_features"`
	Listeners     []ListenerConfig  `toml:"listeners"`
	TLS           TLSConfig         `toml:"tls"`
	Timeouts      TimeoutsConfig    `toml:"timeouts"`
	Limits        LimitsConfig      `toml:"limits"`
	Metrics       MetricsConfig     `toml:"metrics"`
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

// TimeoutsConfig defines timeout durations.
type TimeoutsConfig struct {
	Connection string `toml:"connection"`
	Command    string `toml:"command"`
	Idle       string `toml:"idle"`
}

// LimitsConfig defines resource limits for the server.
type LimitsConfig struct {
	MaxConnections int `toml:"max_connections"`
}

// MetricsConfig holds configuration for Prometheus metrics.
type MetricsConfig struct {
	Enabled bool   `toml:"enabled"`
	Address string `toml:"address"`
	Path    string `toml:"path"`
}

// DefaultSmtp returns a Config with sensible SMTP default values.
func DefaultSmtp() Config {
	cfg := defaultCommon()
	cfg.Listeners = []ListenerConfig{{Address: ":25", Mode: ModeSmtp}}
	return cfg
}

// DefaultPop3 returns a Config with sensible POP3 default values.
func DefaultPop3() Config {
	cfg := defaultCommon()
	cfg.Listeners = []ListenerConfig{{Address: ":110", Mode: ModePop3}}
	return cfg
}

func defaultCommon() Config {
	return Config{
		Hostname: "localhost",
		LogLevel: "info",
		Pedantic: true,
		TLS: TLSConfig{
			MinVersion: "1.2",
		},
		Timeouts: TimeoutsConfig{
			Connection: "10m",
			Command:    "1m",
			Idle:       "30m",
		},
		Limits: LimitsConfig{
			MaxConnections: 100,
		},
		Metrics: MetricsConfig{
			Enabled: false,
			Address: ":9101",
			Path:    "/metrics",
		},
	}
}

// Validate checks that the configuration is valid and returns an error
// if not. validModes lists the listener modes this service accepts.
func (c *Config) Validate(validModes ...ListenerMode) error {
	if c.Hostname == "" {
		return errors.New("hostname is required")
	}

	if len(c.Listeners) == 0 {
		return errors.New("at least one listener is required")
	}

	for i, l := range c.Listeners {
		if l.Address == "" {
			return fmt.Errorf("listener %d: address is required", i)
		}
		if !isValidMode(l.Mode, validModes) {
			return fmt.Errorf("listener %d: invalid mode %q", i, l.Mode)
		}
	}

	if c.Limits.MaxConnections <= 0 {
		return errors.New("max_connections must be positive")
	}

	if c.Timeouts.Connection != "" {
		if _, err := time.ParseDuration(c.Timeouts.Connection); err != nil {
			return fmt.Errorf("invalid connection timeout: %w", err)
		}
	}

	if c.Timeouts.Command != "" {
		if _, err := time.ParseDuration(c.Timeouts.Command); err != nil {
			return fmt.Errorf("invalid command timeout: %w", err)
		}
	}

	if c.Timeouts.Idle != "" {
		if _, err := time.ParseDuration(c.Timeouts.Idle); err != nil {
			return fmt.Errorf("invalid idle timeout: %w", err)
		}
	}

	if c.TLS.MinVersion != "" {
		if _, ok := minTLSVersions[c.TLS.MinVersion]; !ok {
			return fmt.Errorf("invalid TLS min_version %q (valid: 1.0, 1.1, 1.2, 1.3)", c.TLS.MinVersion)
		}
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

// MinTLSVersion returns the crypto/tls constant for the configured
// minimum TLS version. Returns tls.VersionTLS12 if not configured or
// invalid.
func (c *TLSConfig) MinTLSVersion() uint16 {
	if v, ok := minTLSVersions[c.MinVersion]; ok {
		return v
	}
	return tls.VersionTLS12
}

// ConnectionTimeout returns the connection timeout as a time.Duration.
// Returns 10 minutes if not configured or invalid.
func (c *TimeoutsConfig) ConnectionTimeout() time.Duration {
	return parseOr(c.Connection, 10*time.Minute)
}

// CommandTimeout returns the command timeout as a time.Duration.
// Returns 1 minute if not configured or invalid.
func (c *TimeoutsConfig) CommandTimeout() time.Duration {
	return parseOr(c.Command, 1*time.Minute)
}

// IdleTimeout returns the idle timeout as a time.Duration. Returns 30
// minutes if not configured or invalid.
func (c *TimeoutsConfig) IdleTimeout() time.Duration {
	return parseOr(c.Idle, 30*time.Minute)
}

func parseOr(s string, fallback time.Duration) time.Duration {
	if s == "" {
		return fallback
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return fallback
	}
	return d
}

var minTLSVersions = map[string]uint16{
	"1.0": tls.VersionTLS10,
	"1.1": tls.VersionTLS11,
	"1.2": tls.VersionTLS12,
	"1.3": tls.VersionTLS13,
}

func isValidMode(m ListenerMode, valid []ListenerMode) bool {
	for _, v := range valid {
		if m == v {
			return true
		}
	}
	return false
}
