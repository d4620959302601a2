// binwatch - Smart Bin Inventory Live-State Sync Client
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/binwatch

// Package config loads binwatch configuration.
//
// Configuration Loading Order (Koanf v2):
//  1. Defaults: Built-in values for every setting
//  2. Config File: Optional YAML file (CONFIG_PATH or DefaultConfigPaths)
//  3. Environment Variables: Explicitly mapped variables override both
//
// Example:
//
//	cfg, err := config.Load()
//	if err != nil {
//	    log.Fatal("Failed to load config:", err)
//	}
//	api := client.New(cfg.Backend)
package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"
)

// Config holds all application configuration.
type Config struct {
	Backend    BackendConfig    `koanf:"backend"`
	Channel    ChannelConfig    `koanf:"channel"`
	Reconcile  ReconcileConfig  `koanf:"reconcile"`
	Server     ServerConfig     `koanf:"server"`
	Logging    LoggingConfig    `koanf:"logging"`
	Supervisor SupervisorConfig `koanf:"supervisor"`
}

// BackendConfig describes the inventory backend the client talks to.
type BackendConfig struct {
	// URL is the backend base URL without path, e.g. http://localhost:8000.
	// The push channel URL is derived from it (http -> ws, https -> wss).
	URL string `koanf:"url"`

	// APIPrefix is prepended to every REST path except /health.
	APIPrefix string `koanf:"api_prefix"`

	// WSPath is the push channel path on the backend host.
	WSPath string `koanf:"ws_path"`

	RequestTimeout time.Duration `koanf:"request_timeout"`
	RetryCount     int           `koanf:"retry_count"`

	// RequestsPerSecond and Burst bound outbound REST traffic. Push storms
	// trigger one summary refresh per bin update, so this is what keeps
	// the backend from being hammered.
	RequestsPerSecond float64 `koanf:"requests_per_second"`
	Burst             int     `koanf:"burst"`

	// Circuit breaker settings
	BreakerMaxRequests      uint32        `koanf:"breaker_max_requests"`
	BreakerInterval         time.Duration `koanf:"breaker_interval"`
	BreakerTimeout          time.Duration `koanf:"breaker_timeout"`
	BreakerFailureThreshold uint32        `koanf:"breaker_failure_threshold"`
}

// APIBaseURL returns the base URL for REST calls, e.g. http://host:8000/api.
func (b BackendConfig) APIBaseURL() string {
	return strings.TrimRight(b.URL, "/") + b.APIPrefix
}

// WebSocketURL returns the push channel URL derived from the backend URL.
func (b BackendConfig) WebSocketURL() (string, error) {
	u, err := url.Parse(b.URL)
	if err != nil {
		return "", fmt.Errorf("parse backend url: %w", err)
	}
	switch u.Scheme {
	case "https":
		u.Scheme = "wss"
	case "http":
		u.Scheme = "ws"
	default:
		return "", fmt.Errorf("unsupported backend scheme %q", u.Scheme)
	}
	u.Path = b.WSPath
	u.RawQuery = ""
	return u.String(), nil
}

// ChannelConfig holds push channel timing.
type ChannelConfig struct {
	// ReconnectInterval is the fixed delay before re-dialing after a close.
	// Default: 5s
	ReconnectInterval time.Duration `koanf:"reconnect_interval"`

	// KeepaliveInterval is how often {"type":"ping"} is sent while connected.
	// Default: 30s
	KeepaliveInterval time.Duration `koanf:"keepalive_interval"`

	HandshakeTimeout time.Duration `koanf:"handshake_timeout"`
	WriteTimeout     time.Duration `koanf:"write_timeout"`
}

// ReconcileConfig holds reconciliation controller settings.
type ReconcileConfig struct {
	InventoryPollInterval time.Duration `koanf:"inventory_poll_interval"`
	AlertPollInterval     time.Duration `koanf:"alert_poll_interval"`
	HighlightDuration     time.Duration `koanf:"highlight_duration"`

	// AcknowledgedBy is sent as acknowledged_by on acknowledge requests.
	AcknowledgedBy string `koanf:"acknowledged_by"`

	// AckTombstoneTTL is how long an acknowledged alert id keeps rejecting
	// late push re-deliveries.
	AckTombstoneTTL  time.Duration `koanf:"ack_tombstone_ttl"`
	AckTombstoneSize int           `koanf:"ack_tombstone_size"`
}

// ServerConfig holds the local view server settings.
type ServerConfig struct {
	Enabled           bool          `koanf:"enabled"`
	Host              string        `koanf:"host"`
	Port              int           `koanf:"port"`
	Timeout           time.Duration `koanf:"timeout"`
	CORSOrigins       []string      `koanf:"cors_origins"`
	RateLimitReqs     int           `koanf:"rate_limit_reqs"`
	RateLimitWindow   time.Duration `koanf:"rate_limit_window"`
	RateLimitDisabled bool          `koanf:"rate_limit_disabled"`
}

// Addr returns host:port for net/http.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	// Level is the minimum log level: trace, debug, info, warn, error.
	// Default: info
	Level string `koanf:"level"`

	// Format is json or console.
	// Default: json
	Format string `koanf:"format"`

	// Caller includes caller file and line number in logs.
	Caller bool `koanf:"caller"`
}

// SupervisorConfig mirrors suture's failure handling knobs.
type SupervisorConfig struct {
	FailureThreshold float64       `koanf:"failure_threshold"`
	FailureDecay     float64       `koanf:"failure_decay"`
	FailureBackoff   time.Duration `koanf:"failure_backoff"`
	ShutdownTimeout  time.Duration `koanf:"shutdown_timeout"`
}

// Load reads configuration from defaults, config file and environment.
func Load() (*Config, error) {
	return LoadWithKoanf()
}
