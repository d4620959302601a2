// binwatch - Smart Bin Inventory Live-State Sync Client
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/binwatch

package logging

import (
	"github.com/rs/zerolog"
)

// FrameLogger logs the fate of inbound push frames with a fixed set of
// fields so that dropped frames can be found with a single query.
type FrameLogger struct {
	logger zerolog.Logger
}

// NewFrameLogger returns a FrameLogger using the global logger.
func NewFrameLogger() *FrameLogger {
	return &FrameLogger{logger: WithComponent("router")}
}

// NewFrameLoggerWithLogger returns a FrameLogger writing to logger.
//
//nolint:gocritic // zerolog.Logger is designed to be passed by value
func NewFrameLoggerWithLogger(logger zerolog.Logger) *FrameLogger {
	return &FrameLogger{logger: logger.With().Str("component", "router").Logger()}
}

// Dispatched logs a frame handed to a handler.
func (f *FrameLogger) Dispatched(frameType, key string) {
	f.logger.Debug().
		Str("frame_type", frameType).
		Str("key", key).
		Msg("Push frame dispatched")
}

// Dropped logs a frame discarded because it could not be decoded or validated.
func (f *FrameLogger) Dropped(frameType, reason string, err error) {
	f.logger.Warn().
		Err(err).
		Str("frame_type", frameType).
		Str("reason", reason).
		Msg("Push frame dropped")
}

// Unknown logs a frame with an unrecognized type.
func (f *FrameLogger) Unknown(frameType string) {
	f.logger.Info().
		Str("frame_type", frameType).
		Msg("Unknown push frame type")
}

// Session logs the backend's connection acknowledgement.
func (f *FrameLogger) Session(message string) {
	f.logger.Info().
		Str("server_message", message).
		Msg("Push session confirmed")
}

// BackendError logs an error frame sent by the backend.
func (f *FrameLogger) BackendError(message string) {
	f.logger.Warn().
		Str("server_message", message).
		Msg("Backend reported push error")
}
