// binwatch - Smart Bin Inventory Live-State Sync Client
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/binwatch

package client

import (
	"context"

	"github.com/go-resty/resty/v2"

	"github.com/tomtom215/binwatch/internal/models"
)

// GetTrends returns per-bin quantity series for the range.
func (c *Client) GetTrends(ctx context.Context, dr models.DateRange) ([]models.BinTrend, error) {
	var trends []models.BinTrend
	_, err := c.call(ctx, "get_trends", &trends, func(r *resty.Request) (*resty.Response, error) {
		return r.SetQueryParams(dateRangeParams(dr)).Get("/analytics/trends")
	})
	if err != nil {
		return nil, err
	}
	return trends, nil
}

// GetConsumptionRates returns consumption rates for every bin.
func (c *Client) GetConsumptionRates(ctx context.Context) ([]models.ConsumptionRate, error) {
	var rates []models.ConsumptionRate
	_, err := c.call(ctx, "get_consumption_rates", &rates, func(r *resty.Request) (*resty.Response, error) {
		return r.Get("/analytics/consumption")
	})
	if err != nil {
		return nil, err
	}
	return rates, nil
}

// GetComparison returns the fill comparison across bins.
func (c *Client) GetComparison(ctx context.Context) ([]models.BinComparison, error) {
	var rows []models.BinComparison
	_, err := c.call(ctx, "get_comparison", &rows, func(r *resty.Request) (*resty.Response, error) {
		return r.Get("/analytics/comparison")
	})
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// GetStatusDistribution returns bin counts per status.
func (c *Client) GetStatusDistribution(ctx context.Context) (*models.StatusDistribution, error) {
	var dist models.StatusDistribution
	_, err := c.call(ctx, "get_status_distribution", &dist, func(r *resty.Request) (*resty.Response, error) {
		return r.Get("/analytics/status-distribution")
	})
	if err != nil {
		return nil, err
	}
	return &dist, nil
}
