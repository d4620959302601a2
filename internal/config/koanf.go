// binwatch - Smart Bin Inventory Live-State Sync Client
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/binwatch

package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// DefaultConfigPaths lists the paths where config files are searched in order of priority.
// The first file found will be used.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/binwatch/config.yaml",
}

// ConfigPathEnvVar is the environment variable that can override the config file path.
const ConfigPathEnvVar = "CONFIG_PATH"

func defaultConfig() *Config {
	return &Config{
		Backend: BackendConfig{
			URL:                     "http://localhost:8000",
			APIPrefix:               "/api",
			WSPath:                  "/ws",
			RequestTimeout:          10 * time.Second,
			RetryCount:              2,
			RequestsPerSecond:       10,
			Burst:                   20,
			BreakerMaxRequests:      3,
			BreakerInterval:         time.Minute,
			BreakerTimeout:          30 * time.Second,
			BreakerFailureThreshold: 5,
		},
		Channel: ChannelConfig{
			ReconnectInterval: 5 * time.Second,
			KeepaliveInterval: 30 * time.Second,
			HandshakeTimeout:  10 * time.Second,
			WriteTimeout:      10 * time.Second,
		},
		Reconcile: ReconcileConfig{
			InventoryPollInterval: 30 * time.Second,
			AlertPollInterval:     60 * time.Second,
			HighlightDuration:     1500 * time.Millisecond,
			AcknowledgedBy:        "user",
			AckTombstoneTTL:       5 * time.Minute,
			AckTombstoneSize:      1024,
		},
		Server: ServerConfig{
			Enabled:           true,
			Host:              "127.0.0.1",
			Port:              8090,
			Timeout:           30 * time.Second,
			CORSOrigins:       []string{"*"},
			RateLimitReqs:     100,
			RateLimitWindow:   time.Minute,
			RateLimitDisabled: false,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Caller: false,
		},
		Supervisor: SupervisorConfig{
			FailureThreshold: 5.0,
			FailureDecay:     30.0,
			FailureBackoff:   15 * time.Second,
			ShutdownTimeout:  10 * time.Second,
		},
	}
}

// LoadWithKoanf loads configuration using Koanf v2 with layered sources:
//  1. Defaults
//  2. Config File (if one exists)
//  3. Environment Variables
func LoadWithKoanf() (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if configPath := findConfigFile(); configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	}

	// BINWATCH_BACKEND_URL -> backend.url, LOG_LEVEL -> logging.level
	if err := k.Load(env.Provider("", ".", envTransformFunc), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	if err := processSliceFields(k); err != nil {
		return nil, fmt.Errorf("failed to process slice fields: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// findConfigFile returns the first config file found, or "".
func findConfigFile() string {
	if envPath := os.Getenv(ConfigPathEnvVar); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}
	}

	for _, path := range DefaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}

	return ""
}

// sliceConfigPaths are parsed as comma-separated lists when set from env.
var sliceConfigPaths = []string{
	"server.cors_origins",
}

func processSliceFields(k *koanf.Koanf) error {
	for _, path := range sliceConfigPaths {
		strVal, ok := k.Get(path).(string)
		if !ok || strVal == "" {
			continue
		}
		parts := strings.Split(strVal, ",")
		trimmed := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				trimmed = append(trimmed, p)
			}
		}
		if len(trimmed) > 0 {
			if err := k.Set(path, trimmed); err != nil {
				return fmt.Errorf("failed to set %s: %w", path, err)
			}
		}
	}
	return nil
}

// envMappings maps lowercased environment variable names to koanf paths.
// Variables not listed here are ignored.
var envMappings = map[string]string{
	// Backend
	"binwatch_backend_url":               "backend.url",
	"binwatch_api_prefix":                "backend.api_prefix",
	"binwatch_ws_path":                   "backend.ws_path",
	"binwatch_request_timeout":           "backend.request_timeout",
	"binwatch_retry_count":               "backend.retry_count",
	"binwatch_requests_per_second":       "backend.requests_per_second",
	"binwatch_request_burst":             "backend.burst",
	"binwatch_breaker_max_requests":      "backend.breaker_max_requests",
	"binwatch_breaker_interval":          "backend.breaker_interval",
	"binwatch_breaker_timeout":           "backend.breaker_timeout",
	"binwatch_breaker_failure_threshold": "backend.breaker_failure_threshold",

	// Channel
	"binwatch_reconnect_interval": "channel.reconnect_interval",
	"binwatch_keepalive_interval": "channel.keepalive_interval",
	"binwatch_handshake_timeout":  "channel.handshake_timeout",
	"binwatch_write_timeout":      "channel.write_timeout",

	// Reconcile
	"binwatch_inventory_poll_interval": "reconcile.inventory_poll_interval",
	"binwatch_alert_poll_interval":     "reconcile.alert_poll_interval",
	"binwatch_highlight_duration":      "reconcile.highlight_duration",
	"binwatch_acknowledged_by":         "reconcile.acknowledged_by",
	"binwatch_ack_tombstone_ttl":       "reconcile.ack_tombstone_ttl",
	"binwatch_ack_tombstone_size":      "reconcile.ack_tombstone_size",

	// Server
	"binwatch_server_enabled": "server.enabled",
	"http_host":               "server.host",
	"http_port":               "server.port",
	"http_timeout":            "server.timeout",
	"cors_origins":            "server.cors_origins",
	"rate_limit_requests":     "server.rate_limit_reqs",
	"rate_limit_window":       "server.rate_limit_window",
	"disable_rate_limit":      "server.rate_limit_disabled",

	// Logging
	"log_level":  "logging.level",
	"log_format": "logging.format",
	"log_caller": "logging.caller",

	// Supervisor
	"supervisor_failure_threshold": "supervisor.failure_threshold",
	"supervisor_failure_decay":     "supervisor.failure_decay",
	"supervisor_failure_backoff":   "supervisor.failure_backoff",
	"supervisor_shutdown_timeout":  "supervisor.shutdown_timeout",
}

// envTransformFunc maps an environment variable name to its koanf path.
// Unmapped keys return "" so koanf skips them.
func envTransformFunc(key string) string {
	return envMappings[strings.ToLower(key)]
}
