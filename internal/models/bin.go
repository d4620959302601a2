// binwatch - Smart Bin Inventory Live-State Sync Client
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/binwatch

package models

// BinStatus values as classified by the backend. The client treats them as
// opaque labels and never derives them itself.
const (
	BinStatusNormal   = "normal"
	BinStatusLow      = "low"
	BinStatusCritical = "critical"
	BinStatusEmpty    = "empty"
	BinStatusOverfill = "overfill"
)

// Bin is one smart bin as shown on the dashboard grid.
//
// FillPercentage is 100 * CurrentQuantity / MaxCapacity as computed by the
// backend and may exceed 100 for overfilled bins. LastUpdated is kept as
// the backend's ISO-8601 string, which carries no zone designator.
type Bin struct {
	BinID             string  `json:"bin_id" validate:"required"`
	Row               int     `json:"row" validate:"min=1"`
	Position          int     `json:"position" validate:"min=1"`
	ArticleType       string  `json:"article_type"`
	ArticleName       string  `json:"article_name"`
	CurrentQuantity   int     `json:"current_quantity" validate:"min=0"`
	MaxCapacity       int     `json:"max_capacity" validate:"min=0"`
	FillPercentage    float64 `json:"fill_percentage"`
	Status            string  `json:"status"`
	MinThreshold      int     `json:"min_threshold"`
	CriticalThreshold int     `json:"critical_threshold"`
	LastUpdated       string  `json:"last_updated"`
	WeightGrams       float64 `json:"weight_grams"`
}

// BinLess orders bins for display: by row, then position, then bin_id.
func BinLess(a, b Bin) bool {
	if a.Row != b.Row {
		return a.Row < b.Row
	}
	if a.Position != b.Position {
		return a.Position < b.Position
	}
	return a.BinID < b.BinID
}

// InventorySummary is the backend's aggregate over all bins. It is always
// replaced wholesale, never merged.
type InventorySummary struct {
	TotalBins     int `json:"total_bins"`
	NormalCount   int `json:"normal_count"`
	LowCount      int `json:"low_count"`
	CriticalCount int `json:"critical_count"`
	EmptyCount    int `json:"empty_count"`
	TotalItems    int `json:"total_items"`
	AlertsActive  int `json:"alerts_active"`
}

// BinConfiguration is the persisted configuration of one bin.
type BinConfiguration struct {
	ID                 int64   `json:"id"`
	BinID              string  `json:"bin_id"`
	Row                int     `json:"row"`
	Position           int     `json:"position"`
	ArticleType        string  `json:"article_type"`
	ArticleName        string  `json:"article_name"`
	ArticleWeightGrams float64 `json:"article_weight_grams"`
	MinThreshold       int     `json:"min_threshold"`
	CriticalThreshold  int     `json:"critical_threshold"`
	MaxCapacity        int     `json:"max_capacity"`
	CreatedAt          string  `json:"created_at"`
	UpdatedAt          string  `json:"updated_at"`
}

// BinConfigUpdate is a partial update; nil fields are left unchanged by the
// backend and omitted from the request body.
type BinConfigUpdate struct {
	ArticleType        *string  `json:"article_type,omitempty" validate:"omitempty,min=1,max=50"`
	ArticleName        *string  `json:"article_name,omitempty" validate:"omitempty,min=1,max=100"`
	ArticleWeightGrams *float64 `json:"article_weight_grams,omitempty" validate:"omitempty,gt=0"`
	MinThreshold       *int     `json:"min_threshold,omitempty" validate:"omitempty,min=0"`
	CriticalThreshold  *int     `json:"critical_threshold,omitempty" validate:"omitempty,min=0"`
	MaxCapacity        *int     `json:"max_capacity,omitempty" validate:"omitempty,gt=0"`
}

// IsEmpty reports whether the update changes nothing.
func (u *BinConfigUpdate) IsEmpty() bool {
	return u.ArticleType == nil && u.ArticleName == nil && u.ArticleWeightGrams == nil &&
		u.MinThreshold == nil && u.CriticalThreshold == nil && u.MaxCapacity == nil
}
