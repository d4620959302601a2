// binwatch - Smart Bin Inventory Live-State Sync Client
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/binwatch

package models

// Alert types emitted by the backend.
const (
	AlertTypeCriticalStock = "critical_stock"
	AlertTypeEmpty         = "empty"
	AlertTypeLowStock      = "low_stock"
	AlertTypeOverfill      = "overfill"
)

// Alert is one alert log entry. IDs are assigned by the backend in creation
// order, so a larger ID is always a newer alert.
type Alert struct {
	ID              int64   `json:"id" validate:"required,gt=0"`
	BinID           string  `json:"bin_id" validate:"required"`
	AlertType       string  `json:"alert_type" validate:"required"`
	Message         string  `json:"message"`
	QuantityAtAlert int     `json:"quantity_at_alert"`
	ThresholdValue  int     `json:"threshold_value"`
	IsAcknowledged  bool    `json:"is_acknowledged"`
	AcknowledgedAt  *string `json:"acknowledged_at"`
	AcknowledgedBy  *string `json:"acknowledged_by"`
	CreatedAt       string  `json:"created_at"`
}

// AlertConfiguration is the per-bin threshold setting for one alert type.
type AlertConfiguration struct {
	ID             int64  `json:"id"`
	BinID          string `json:"bin_id"`
	AlertType      string `json:"alert_type"`
	ThresholdValue int    `json:"threshold_value"`
	IsEnabled      bool   `json:"is_enabled"`
	CreatedAt      string `json:"created_at"`
	UpdatedAt      string `json:"updated_at"`
}

// AlertConfigUpdate is a partial update of an AlertConfiguration.
type AlertConfigUpdate struct {
	ThresholdValue *int  `json:"threshold_value,omitempty" validate:"omitempty,min=0"`
	IsEnabled      *bool `json:"is_enabled,omitempty"`
}

// AcknowledgeRequest is the body of both acknowledge endpoints.
type AcknowledgeRequest struct {
	AcknowledgedBy string `json:"acknowledged_by"`
}

// AlertHistoryPage is one page of alert history.
type AlertHistoryPage struct {
	Alerts     []Alert    `json:"data"`
	Pagination Pagination `json:"pagination"`
}

// AlertHistoryQuery selects a page of alert history. Zero Page and Limit
// fall back to 1 and 50.
type AlertHistoryQuery struct {
	Page  int
	Limit int
	BinID string
}
