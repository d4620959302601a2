// binwatch - Smart Bin Inventory Live-State Sync Client
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/binwatch

package client

import (
	"net/url"
	"strconv"
	"strings"
)

// Export URLs are handed to whatever performs the download; the client never
// fetches them itself.

// ExportInventoryURL returns the CSV export URL for current inventory.
func (c *Client) ExportInventoryURL() string {
	return c.apiURL + "/export/inventory"
}

// ExportHistoryURL returns the history export URL. binIDs is optional.
func (c *Client) ExportHistoryURL(startDate, endDate string, binIDs []string) string {
	q := url.Values{}
	q.Set("start_date", startDate)
	q.Set("end_date", endDate)
	if len(binIDs) > 0 {
		q.Set("bin_ids", strings.Join(binIDs, ","))
	}
	return c.apiURL + "/export/history?" + q.Encode()
}

// ExportAlertsURL returns the alert export URL. Empty dates are omitted.
func (c *Client) ExportAlertsURL(startDate, endDate string, includeAcknowledged bool) string {
	q := url.Values{}
	if startDate != "" {
		q.Set("start_date", startDate)
	}
	if endDate != "" {
		q.Set("end_date", endDate)
	}
	q.Set("include_acknowledged", strconv.FormatBool(includeAcknowledged))
	return c.apiURL + "/export/alerts?" + q.Encode()
}

// ExportReportURL returns the summary report export URL.
func (c *Client) ExportReportURL() string {
	return c.apiURL + "/export/report"
}
