// binwatch - Smart Bin Inventory Live-State Sync Client
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/binwatch

package models

// HistoricalDataPoint is one sample of a bin's quantity over time.
type HistoricalDataPoint struct {
	Timestamp   string  `json:"timestamp"`
	Quantity    int     `json:"quantity"`
	WeightGrams float64 `json:"weight_grams"`
}

// BinTrend is the quantity history of one bin.
type BinTrend struct {
	BinID string                `json:"bin_id"`
	Data  []HistoricalDataPoint `json:"data"`
}

// Consumption trend values.
const (
	TrendIncreasing = "increasing"
	TrendDecreasing = "decreasing"
	TrendStable     = "stable"
)

// ConsumptionRate summarizes how fast a bin is being drawn down.
type ConsumptionRate struct {
	BinID         string  `json:"bin_id"`
	ArticleName   string  `json:"article_name"`
	DailyAverage  float64 `json:"daily_average"`
	WeeklyAverage float64 `json:"weekly_average"`
	Trend         string  `json:"trend"`
}

// BinComparison is one row of the cross-bin comparison chart.
type BinComparison struct {
	BinID           string  `json:"bin_id"`
	ArticleName     string  `json:"article_name"`
	CurrentQuantity int     `json:"current_quantity"`
	MaxCapacity     int     `json:"max_capacity"`
	FillPercentage  float64 `json:"fill_percentage"`
	Status          string  `json:"status"`
}

// StatusCount is one slice of the status distribution.
type StatusCount struct {
	Status string `json:"status"`
	Count  int    `json:"count"`
	Color  string `json:"color"`
}

// StatusDistribution is the bin count per status.
type StatusDistribution struct {
	Distribution []StatusCount `json:"distribution"`
	Total        int           `json:"total"`
}

// DateRange bounds history and trend queries. Values are passed to the
// backend verbatim.
type DateRange struct {
	StartDate string
	EndDate   string
}
