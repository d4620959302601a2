// binwatch - Smart Bin Inventory Live-State Sync Client
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/binwatch

// Package router decodes push frames and dispatches them to handlers.
//
// Frames are a tagged union on the envelope's type field. Decode turns a raw
// frame into one of the Event types; the payload is only decoded once the tag
// is known and is never sniffed to guess the type. Router.Dispatch feeds
// decoded events to the handlers registered by the reconciliation controller
// and swallows every failure after logging it, so a bad frame can never take
// the push channel down.
package router

import (
	"errors"
	"fmt"
	"strconv"
	"sync"

	"github.com/goccy/go-json"

	"github.com/tomtom215/binwatch/internal/logging"
	"github.com/tomtom215/binwatch/internal/metrics"
	"github.com/tomtom215/binwatch/internal/models"
	"github.com/tomtom215/binwatch/internal/validation"
)

// Decode failures. Reasons double as the dropped-frame metric label.
var (
	ErrMalformedFrame = errors.New("malformed frame")
	ErrInvalidPayload = errors.New("invalid payload")
	ErrUnknownType    = errors.New("unknown frame type")
)

// Event is a decoded push frame.
type Event interface {
	// FrameType returns the envelope tag the event was decoded from.
	FrameType() string
	event()
}

// BinUpdateEvent carries the new state of one bin.
type BinUpdateEvent struct {
	Bin       models.Bin
	Timestamp string
}

// AlertEvent carries a newly raised alert.
type AlertEvent struct {
	Alert     models.Alert
	Timestamp string
}

// ConnectionEvent is the backend's greeting.
type ConnectionEvent struct {
	Message string
}

// HeartbeatEvent answers a ping.
type HeartbeatEvent struct {
	Status string
}

// ErrorEvent is an error reported by the backend over the push channel.
type ErrorEvent struct {
	Message string
}

func (BinUpdateEvent) FrameType() string  { return models.MessageTypeBinUpdate }
func (AlertEvent) FrameType() string      { return models.MessageTypeAlert }
func (ConnectionEvent) FrameType() string { return models.MessageTypeConnection }
func (HeartbeatEvent) FrameType() string  { return models.MessageTypeHeartbeat }
func (ErrorEvent) FrameType() string      { return models.MessageTypeError }

func (BinUpdateEvent) event()  {}
func (AlertEvent) event()      {}
func (ConnectionEvent) event() {}
func (HeartbeatEvent) event()  {}
func (ErrorEvent) event()      {}

// Decode parses one frame. Errors wrap ErrMalformedFrame, ErrInvalidPayload
// or ErrUnknownType.
func Decode(data []byte) (Event, error) {
	var env models.Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedFrame, err)
	}

	switch env.Type {
	case models.MessageTypeBinUpdate:
		var bin models.Bin
		if err := decodePayload(env.Payload, &bin); err != nil {
			return nil, err
		}
		if verr := validation.ValidateStruct(&bin); verr != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidPayload, verr)
		}
		return BinUpdateEvent{Bin: bin, Timestamp: env.Timestamp}, nil

	case models.MessageTypeAlert:
		var alert models.Alert
		if err := decodePayload(env.Payload, &alert); err != nil {
			return nil, err
		}
		if verr := validation.ValidateStruct(&alert); verr != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidPayload, verr)
		}
		return AlertEvent{Alert: alert, Timestamp: env.Timestamp}, nil

	case models.MessageTypeConnection:
		var p models.ConnectionPayload
		_ = decodePayload(env.Payload, &p)
		return ConnectionEvent{Message: p.Message}, nil

	case models.MessageTypeHeartbeat:
		var p models.HeartbeatPayload
		_ = decodePayload(env.Payload, &p)
		return HeartbeatEvent{Status: p.Status}, nil

	case models.MessageTypeError:
		var p models.ErrorPayload
		_ = decodePayload(env.Payload, &p)
		return ErrorEvent{Message: p.Message}, nil

	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownType, env.Type)
	}
}

func decodePayload(raw json.RawMessage, v interface{}) error {
	if len(raw) == 0 || string(raw) == "null" {
		return fmt.Errorf("%w: missing payload", ErrMalformedFrame)
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedFrame, err)
	}
	return nil
}

// Router dispatches decoded frames to registered handlers.
type Router struct {
	frames *logging.FrameLogger

	mu          sync.RWMutex
	onBinUpdate func(BinUpdateEvent)
	onAlert     func(AlertEvent)
}

// New creates a Router with no handlers.
func New() *Router {
	return &Router{frames: logging.NewFrameLogger()}
}

// NewWithFrameLogger creates a Router logging through frames.
func NewWithFrameLogger(frames *logging.FrameLogger) *Router {
	return &Router{frames: frames}
}

// OnBinUpdate registers the bin_update handler, replacing any previous one.
func (r *Router) OnBinUpdate(h func(BinUpdateEvent)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.onBinUpdate = h
}

// OnAlert registers the alert handler, replacing any previous one.
func (r *Router) OnAlert(h func(AlertEvent)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.onAlert = h
}

// Dispatch decodes data and runs the matching handler synchronously.
// Failures are logged and counted, never returned.
func (r *Router) Dispatch(data []byte) {
	ev, err := Decode(data)
	if err != nil {
		r.drop(data, err)
		return
	}

	r.mu.RLock()
	onBinUpdate, onAlert := r.onBinUpdate, r.onAlert
	r.mu.RUnlock()

	metrics.RecordPushFrame(ev.FrameType())

	switch e := ev.(type) {
	case BinUpdateEvent:
		r.frames.Dispatched(e.FrameType(), e.Bin.BinID)
		if onBinUpdate != nil {
			onBinUpdate(e)
		}
	case AlertEvent:
		r.frames.Dispatched(e.FrameType(), strconv.FormatInt(e.Alert.ID, 10))
		if onAlert != nil {
			onAlert(e)
		}
	case ConnectionEvent:
		r.frames.Session(e.Message)
	case HeartbeatEvent:
		// nothing to do
	case ErrorEvent:
		r.frames.BackendError(e.Message)
	}
}

func (r *Router) drop(data []byte, err error) {
	switch {
	case errors.Is(err, ErrUnknownType):
		metrics.RecordDroppedFrame("unknown_type")
		r.frames.Unknown(frameTypeOf(data))
	case errors.Is(err, ErrInvalidPayload):
		metrics.RecordDroppedFrame("invalid_payload")
		r.frames.Dropped(frameTypeOf(data), "invalid_payload", err)
	default:
		metrics.RecordDroppedFrame("malformed")
		r.frames.Dropped(frameTypeOf(data), "malformed", err)
	}
}

// frameTypeOf returns the frame's tag, or "" when the envelope is unreadable.
func frameTypeOf(data []byte) string {
	var env models.Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return ""
	}
	return env.Type
}
