// binwatch - Smart Bin Inventory Live-State Sync Client
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/binwatch

package client

import (
	"context"
	"fmt"

	"github.com/go-resty/resty/v2"

	"github.com/tomtom215/binwatch/internal/models"
	"github.com/tomtom215/binwatch/internal/validation"
)

// ListBins returns every bin with its current fill level.
func (c *Client) ListBins(ctx context.Context) ([]models.Bin, error) {
	var bins []models.Bin
	_, err := c.call(ctx, "list_bins", &bins, func(r *resty.Request) (*resty.Response, error) {
		return r.Get("/bins")
	})
	if err != nil {
		return nil, err
	}
	return bins, nil
}

// GetSummary returns the aggregate inventory counters.
func (c *Client) GetSummary(ctx context.Context) (*models.InventorySummary, error) {
	var summary models.InventorySummary
	_, err := c.call(ctx, "get_summary", &summary, func(r *resty.Request) (*resty.Response, error) {
		return r.Get("/bins/summary")
	})
	if err != nil {
		return nil, err
	}
	return &summary, nil
}

// GetBin returns one bin.
func (c *Client) GetBin(ctx context.Context, binID string) (*models.Bin, error) {
	var bin models.Bin
	_, err := c.call(ctx, "get_bin", &bin, func(r *resty.Request) (*resty.Response, error) {
		return r.SetPathParam("id", binID).Get("/bins/{id}")
	})
	if err != nil {
		return nil, err
	}
	return &bin, nil
}

// UpdateBinConfig validates update and sends it. Only non-nil fields are
// serialized, so the backend leaves the others untouched.
func (c *Client) UpdateBinConfig(ctx context.Context, binID string, update *models.BinConfigUpdate) (*models.BinConfiguration, error) {
	if verr := validation.ValidateStruct(update); verr != nil {
		return nil, fmt.Errorf("invalid bin configuration update: %w", verr)
	}

	var cfg models.BinConfiguration
	_, err := c.call(ctx, "update_bin_config", &cfg, func(r *resty.Request) (*resty.Response, error) {
		return r.SetPathParam("id", binID).SetBody(update).Put("/bins/{id}/config")
	})
	if err != nil {
		return nil, err
	}
	return &cfg, nil
}

// GetBinHistory returns quantity samples for one bin. Empty range bounds are
// left to the backend's defaults.
func (c *Client) GetBinHistory(ctx context.Context, binID string, dr models.DateRange) ([]models.HistoricalDataPoint, error) {
	var points []models.HistoricalDataPoint
	_, err := c.call(ctx, "get_bin_history", &points, func(r *resty.Request) (*resty.Response, error) {
		return r.SetPathParam("id", binID).SetQueryParams(dateRangeParams(dr)).Get("/bins/{id}/history")
	})
	if err != nil {
		return nil, err
	}
	return points, nil
}

// GetBinConsumption returns the consumption rate of one bin.
func (c *Client) GetBinConsumption(ctx context.Context, binID string) (*models.ConsumptionRate, error) {
	var rate models.ConsumptionRate
	_, err := c.call(ctx, "get_bin_consumption", &rate, func(r *resty.Request) (*resty.Response, error) {
		return r.SetPathParam("id", binID).Get("/bins/{id}/consumption")
	})
	if err != nil {
		return nil, err
	}
	return &rate, nil
}

func dateRangeParams(dr models.DateRange) map[string]string {
	params := make(map[string]string, 2)
	if dr.StartDate != "" {
		params["start_date"] = dr.StartDate
	}
	if dr.EndDate != "" {
		params["end_date"] = dr.EndDate
	}
	return params
}
