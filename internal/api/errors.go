// binwatch - Smart Bin Inventory Live-State Sync Client
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/binwatch

package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/tomtom215/binwatch/internal/client"
	"github.com/tomtom215/binwatch/internal/logging"
	"github.com/tomtom215/binwatch/internal/reconcile"
	"github.com/tomtom215/binwatch/internal/store"
	"github.com/tomtom215/binwatch/internal/validation"
)

// respondActionError maps a failed pass-through operation to a response.
//
//	unknown or acknowledged alert -> 404
//	invalid update                -> 400 VALIDATION_ERROR
//	backend 4xx                   -> same status, BACKEND_REJECTED
//	breaker open, controller down -> 503
//	anything else                 -> 502
func respondActionError(w http.ResponseWriter, r *http.Request, op string, err error) {
	var (
		verr   *validation.RequestValidationError
		apiErr *client.APIError
	)

	switch {
	case errors.Is(err, store.ErrAlertNotActive):
		respondError(w, r, http.StatusNotFound, ErrCodeNotFound, "Alert is not active", nil)
	case errors.As(err, &verr):
		respondValidationError(w, r, verr)
	case errors.As(err, &apiErr) && apiErr.StatusCode >= 400 && apiErr.StatusCode < 500:
		respondError(w, r, apiErr.StatusCode, ErrCodeBackendRejected, apiErr.Message, nil)
	case errors.Is(err, client.ErrCircuitOpen), errors.Is(err, reconcile.ErrStopped):
		respondError(w, r, http.StatusServiceUnavailable, ErrCodeServiceUnavailable, "Inventory backend unavailable", nil)
	case errors.Is(err, context.Canceled):
		// Client went away; nobody reads the response.
		logging.Ctx(r.Context()).Debug().Str("operation", op).Msg("Request canceled")
	default:
		logging.Ctx(r.Context()).Error().Err(err).Str("operation", op).Msg("Backend operation failed")
		respondError(w, r, http.StatusBadGateway, ErrCodeExternalServiceErr, "Inventory backend request failed", nil)
	}
}
