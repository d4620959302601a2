// binwatch - Smart Bin Inventory Live-State Sync Client
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/binwatch

package validation

import (
	"strings"
	"testing"

	"github.com/tomtom215/binwatch/internal/models"
)

func TestGetValidator_Singleton(t *testing.T) {
	v1 := GetValidator()
	v2 := GetValidator()

	if v1 != v2 {
		t.Error("GetValidator() should return the same singleton instance")
	}
	if v1 == nil {
		t.Error("GetValidator() should not return nil")
	}
}

func validBin() models.Bin {
	return models.Bin{
		BinID:           "BIN-A1",
		Row:             1,
		Position:        1,
		CurrentQuantity: 3,
		MaxCapacity:     50,
		Status:          models.BinStatusCritical,
	}
}

func TestValidateStruct_Bin(t *testing.T) {
	tests := []struct {
		name      string
		mutate    func(*models.Bin)
		wantField string
	}{
		{"valid", func(*models.Bin) {}, ""},
		{"zero quantity is valid", func(b *models.Bin) { b.CurrentQuantity = 0 }, ""},
		{"missing bin_id", func(b *models.Bin) { b.BinID = "" }, "bin_id"},
		{"row zero", func(b *models.Bin) { b.Row = 0 }, "row"},
		{"position negative", func(b *models.Bin) { b.Position = -1 }, "position"},
		{"negative quantity", func(b *models.Bin) { b.CurrentQuantity = -2 }, "current_quantity"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := validBin()
			tt.mutate(&b)
			verr := ValidateStruct(&b)

			if tt.wantField == "" {
				if verr != nil {
					t.Errorf("unexpected validation error: %v", verr)
				}
				return
			}
			if verr == nil {
				t.Fatalf("expected validation error on %s", tt.wantField)
			}
			if got := verr.Errors()[0].Field(); got != tt.wantField {
				t.Errorf("Field() = %q, want %q", got, tt.wantField)
			}
		})
	}
}

func TestValidateStruct_Alert(t *testing.T) {
	a := models.Alert{BinID: "BIN-A1", AlertType: models.AlertTypeEmpty}
	verr := ValidateStruct(&a)
	if verr == nil {
		t.Fatal("expected error for alert without id")
	}
	if verr.Errors()[0].Field() != "id" {
		t.Errorf("Field() = %q, want id", verr.Errors()[0].Field())
	}
	if !strings.Contains(verr.Error(), "id is required") {
		t.Errorf("Error() = %q", verr.Error())
	}

	a.ID = 42
	if verr := ValidateStruct(&a); verr != nil {
		t.Errorf("unexpected error: %v", verr)
	}
}

func TestValidateStruct_BinConfigUpdate(t *testing.T) {
	empty := ""
	longName := strings.Repeat("x", 101)
	zero := 0
	negative := -1
	weight := 0.0

	tests := []struct {
		name    string
		update  models.BinConfigUpdate
		wantErr string
	}{
		{"empty update", models.BinConfigUpdate{}, ""},
		{"zero threshold allowed", models.BinConfigUpdate{MinThreshold: &zero}, ""},
		{"empty article type", models.BinConfigUpdate{ArticleType: &empty}, "article_type must be at least 1 characters"},
		{"long article name", models.BinConfigUpdate{ArticleName: &longName}, "article_name must be at most 100 characters"},
		{"negative threshold", models.BinConfigUpdate{CriticalThreshold: &negative}, "critical_threshold must be at least 0"},
		{"zero capacity", models.BinConfigUpdate{MaxCapacity: &zero}, "max_capacity must be greater than 0"},
		{"zero weight", models.BinConfigUpdate{ArticleWeightGrams: &weight}, "article_weight_grams must be greater than 0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			verr := ValidateStruct(&tt.update)
			if tt.wantErr == "" {
				if verr != nil {
					t.Errorf("unexpected error: %v", verr)
				}
				return
			}
			if verr == nil {
				t.Fatalf("expected error %q", tt.wantErr)
			}
			if verr.Error() != tt.wantErr {
				t.Errorf("Error() = %q, want %q", verr.Error(), tt.wantErr)
			}
		})
	}
}

func TestToAPIError(t *testing.T) {
	b := models.Bin{}
	verr := ValidateStruct(&b)
	if verr == nil {
		t.Fatal("expected errors for zero bin")
	}

	apiErr := verr.ToAPIError()
	if apiErr.Code != "VALIDATION_ERROR" {
		t.Errorf("Code = %q", apiErr.Code)
	}
	if _, ok := apiErr.Details["fields"]; !ok {
		t.Errorf("expected multi-field details, got %v", apiErr.Details)
	}

	single := ValidateStruct(&models.AlertConfigUpdate{ThresholdValue: new(int)})
	if single != nil {
		t.Errorf("threshold 0 should be valid: %v", single)
	}
}
