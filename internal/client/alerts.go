// binwatch - Smart Bin Inventory Live-State Sync Client
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/binwatch

package client

import (
	"context"
	"fmt"
	"strconv"

	"github.com/go-resty/resty/v2"

	"github.com/tomtom215/binwatch/internal/models"
	"github.com/tomtom215/binwatch/internal/validation"
)

// DefaultAcknowledgedBy is sent when the caller does not name an operator.
const DefaultAcknowledgedBy = "user"

// ListActiveAlerts returns unacknowledged alerts, newest first.
func (c *Client) ListActiveAlerts(ctx context.Context) ([]models.Alert, error) {
	var alerts []models.Alert
	_, err := c.call(ctx, "list_active_alerts", &alerts, func(r *resty.Request) (*resty.Response, error) {
		return r.Get("/alerts/active")
	})
	if err != nil {
		return nil, err
	}
	return alerts, nil
}

// ListAlertHistory returns one page of all alerts, acknowledged or not.
func (c *Client) ListAlertHistory(ctx context.Context, q models.AlertHistoryQuery) (*models.AlertHistoryPage, error) {
	page, limit := q.Page, q.Limit
	if page <= 0 {
		page = 1
	}
	if limit <= 0 {
		limit = 50
	}
	params := map[string]string{
		"page":  strconv.Itoa(page),
		"limit": strconv.Itoa(limit),
	}
	if q.BinID != "" {
		params["bin_id"] = q.BinID
	}

	var alerts []models.Alert
	env, err := c.call(ctx, "list_alert_history", &alerts, func(r *resty.Request) (*resty.Response, error) {
		return r.SetQueryParams(params).Get("/alerts/history")
	})
	if err != nil {
		return nil, err
	}

	result := &models.AlertHistoryPage{Alerts: alerts}
	if env.Pagination != nil {
		result.Pagination = *env.Pagination
	}
	return result, nil
}

// AcknowledgeAlert marks one alert acknowledged by acknowledgedBy.
func (c *Client) AcknowledgeAlert(ctx context.Context, id int64, acknowledgedBy string) (*models.ActionResult, error) {
	body := models.AcknowledgeRequest{AcknowledgedBy: acknowledgedByOrDefault(acknowledgedBy)}
	return c.action(ctx, "acknowledge_alert", func(r *resty.Request) (*resty.Response, error) {
		return r.SetPathParam("id", strconv.FormatInt(id, 10)).SetBody(body).Post("/alerts/{id}/acknowledge")
	})
}

// AcknowledgeAllAlerts acknowledges every active alert in one request.
func (c *Client) AcknowledgeAllAlerts(ctx context.Context, acknowledgedBy string) (*models.ActionResult, error) {
	body := models.AcknowledgeRequest{AcknowledgedBy: acknowledgedByOrDefault(acknowledgedBy)}
	return c.action(ctx, "acknowledge_all_alerts", func(r *resty.Request) (*resty.Response, error) {
		return r.SetBody(body).Post("/alerts/acknowledge-all")
	})
}

// ListAlertConfigurations returns alert thresholds, optionally for one bin.
func (c *Client) ListAlertConfigurations(ctx context.Context, binID string) ([]models.AlertConfiguration, error) {
	var configs []models.AlertConfiguration
	_, err := c.call(ctx, "list_alert_configurations", &configs, func(r *resty.Request) (*resty.Response, error) {
		if binID != "" {
			r.SetQueryParam("bin_id", binID)
		}
		return r.Get("/alerts/configurations")
	})
	if err != nil {
		return nil, err
	}
	return configs, nil
}

// UpdateAlertConfiguration validates update and applies it to the
// configuration of alertType on binID.
func (c *Client) UpdateAlertConfiguration(ctx context.Context, binID, alertType string, update *models.AlertConfigUpdate) (*models.ActionResult, error) {
	if verr := validation.ValidateStruct(update); verr != nil {
		return nil, fmt.Errorf("invalid alert configuration update: %w", verr)
	}

	return c.action(ctx, "update_alert_configuration", func(r *resty.Request) (*resty.Response, error) {
		return r.SetPathParams(map[string]string{"bin": binID, "type": alertType}).
			SetBody(update).
			Put("/alerts/configurations/{bin}/{type}")
	})
}

func acknowledgedByOrDefault(by string) string {
	if by == "" {
		return DefaultAcknowledgedBy
	}
	return by
}
