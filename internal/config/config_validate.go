// binwatch - Smart Bin Inventory Live-State Sync Client
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/binwatch

package config

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// Validate checks that required configuration is present and valid
func (c *Config) Validate() error {
	if err := c.validateBackend(); err != nil {
		return err
	}

	if err := c.validateChannel(); err != nil {
		return err
	}

	if err := c.validateReconcile(); err != nil {
		return err
	}

	if err := c.validateServer(); err != nil {
		return err
	}

	return c.validateLogging()
}

func (c *Config) validateBackend() error {
	if c.Backend.URL == "" {
		return fmt.Errorf("BINWATCH_BACKEND_URL is required")
	}
	if err := validateHTTPURL(c.Backend.URL, "BINWATCH_BACKEND_URL"); err != nil {
		return fmt.Errorf("BINWATCH_BACKEND_URL is invalid: %w", err)
	}
	if c.Backend.APIPrefix != "" && !strings.HasPrefix(c.Backend.APIPrefix, "/") {
		return fmt.Errorf("BINWATCH_API_PREFIX must start with /, got: %s", c.Backend.APIPrefix)
	}
	if !strings.HasPrefix(c.Backend.WSPath, "/") {
		return fmt.Errorf("BINWATCH_WS_PATH must start with /, got: %s", c.Backend.WSPath)
	}
	if c.Backend.RequestTimeout <= 0 {
		return fmt.Errorf("BINWATCH_REQUEST_TIMEOUT must be positive")
	}
	if c.Backend.RetryCount < 0 {
		return fmt.Errorf("BINWATCH_RETRY_COUNT must not be negative")
	}
	if c.Backend.RequestsPerSecond <= 0 || c.Backend.Burst < 1 {
		return fmt.Errorf("BINWATCH_REQUESTS_PER_SECOND must be positive and BINWATCH_REQUEST_BURST at least 1")
	}
	return nil
}

func (c *Config) validateChannel() error {
	return requirePositive(map[string]time.Duration{
		"BINWATCH_RECONNECT_INTERVAL": c.Channel.ReconnectInterval,
		"BINWATCH_KEEPALIVE_INTERVAL": c.Channel.KeepaliveInterval,
		"BINWATCH_HANDSHAKE_TIMEOUT":  c.Channel.HandshakeTimeout,
		"BINWATCH_WRITE_TIMEOUT":      c.Channel.WriteTimeout,
	})
}

func (c *Config) validateReconcile() error {
	if err := requirePositive(map[string]time.Duration{
		"BINWATCH_INVENTORY_POLL_INTERVAL": c.Reconcile.InventoryPollInterval,
		"BINWATCH_ALERT_POLL_INTERVAL":     c.Reconcile.AlertPollInterval,
		"BINWATCH_HIGHLIGHT_DURATION":      c.Reconcile.HighlightDuration,
		"BINWATCH_ACK_TOMBSTONE_TTL":       c.Reconcile.AckTombstoneTTL,
	}); err != nil {
		return err
	}
	if c.Reconcile.AckTombstoneSize < 1 {
		return fmt.Errorf("BINWATCH_ACK_TOMBSTONE_SIZE must be at least 1")
	}
	if strings.TrimSpace(c.Reconcile.AcknowledgedBy) == "" {
		return fmt.Errorf("BINWATCH_ACKNOWLEDGED_BY must not be empty")
	}
	return nil
}

// requirePositive reports the first non-positive duration, by name order.
func requirePositive(durations map[string]time.Duration) error {
	var bad []string
	for name, d := range durations {
		if d <= 0 {
			bad = append(bad, name)
		}
	}
	if len(bad) == 0 {
		return nil
	}
	sort.Strings(bad)
	return fmt.Errorf("%s must be a positive duration", bad[0])
}

// Rate limit constants
const (
	minRateLimitRequests = 1
	maxRateLimitRequests = 100000
	minRateLimitWindow   = time.Second
	maxRateLimitWindow   = time.Hour
)

// validateServer validates server configuration
func (c *Config) validateServer() error {
	if !c.Server.Enabled {
		return nil
	}
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("HTTP_PORT must be between 1 and 65535")
	}
	if c.Server.Timeout <= 0 {
		return fmt.Errorf("HTTP_TIMEOUT must be positive")
	}
	return c.validateRateLimits()
}

func (c *Config) validateRateLimits() error {
	if c.Server.RateLimitDisabled {
		return nil
	}
	if c.Server.RateLimitReqs < minRateLimitRequests || c.Server.RateLimitReqs > maxRateLimitRequests {
		return fmt.Errorf("RATE_LIMIT_REQUESTS must be between %d and %d", minRateLimitRequests, maxRateLimitRequests)
	}
	if c.Server.RateLimitWindow < minRateLimitWindow || c.Server.RateLimitWindow > maxRateLimitWindow {
		return fmt.Errorf("RATE_LIMIT_WINDOW must be between %v and %v", minRateLimitWindow, maxRateLimitWindow)
	}
	return nil
}

// validLogLevels defines the allowed log levels
var validLogLevels = map[string]bool{
	"trace": true,
	"debug": true,
	"info":  true,
	"warn":  true,
	"error": true,
}

// validLogFormats defines the allowed log formats
var validLogFormats = map[string]bool{
	"json":    true,
	"console": true,
}

// validateLogging validates logging configuration
func (c *Config) validateLogging() error {
	if !validLogLevels[c.Logging.Level] {
		return fmt.Errorf("LOG_LEVEL must be one of: trace, debug, info, warn, error")
	}
	if c.Logging.Format != "" && !validLogFormats[c.Logging.Format] {
		return fmt.Errorf("LOG_FORMAT must be one of: json, console")
	}
	return nil
}
