// Dish Atlas - Culinary History on an Interactive Globe
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/dishatlas

package validation

import (
	"strings"
	"testing"
)

type nearbyQuery struct {
	Latitude  float64 `json:"lat" validate:"latitude"`
	Longitude float64 `json:"lon" validate:"longitude"`
	RadiusKm  float64 `json:"radius_km" validate:"gt=0,lte=5000"`
}

type dishQuery struct {
	Dish  string `json:"dish" validate:"required,dishname"`
	Count int    `json:"count" validate:"min=1,max=50"`
}

func TestGetValidator_Singleton(t *testing.T) {
	t.Parallel()
	if GetValidator() != GetValidator() {
		t.Error("GetValidator() should return the same instance")
	}
}

func TestValidateStruct(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		input      interface{}
		wantFields []string
	}{
		{"valid nearby", nearbyQuery{Latitude: 40.8, Longitude: 14.2, RadiusKm: 100}, nil},
		{"bad latitude", nearbyQuery{Latitude: 91, Longitude: 0, RadiusKm: 1}, []string{"lat"}},
		{"bad radius and longitude", nearbyQuery{Latitude: 0, Longitude: 181, RadiusKm: 0}, []string{"lon", "radius_km"}},
		{"valid dish", dishQuery{Dish: "Pad Thai", Count: 3}, nil},
		{"missing dish", dishQuery{Count: 3}, []string{"dish"}},
		{"bad dish and count", dishQuery{Dish: "<script>", Count: 99}, []string{"dish", "count"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			err := ValidateStruct(tt.input)
			if len(tt.wantFields) == 0 {
				if err != nil {
					t.Errorf("ValidateStruct() = %v, want nil", err)
				}
				return
			}
			if err == nil {
				t.Fatalf("ValidateStruct() = nil, want errors on %v", tt.wantFields)
			}
			if len(err.Fields) != len(tt.wantFields) {
				t.Fatalf("got %d field errors (%v), want %d", len(err.Fields), err, len(tt.wantFields))
			}
			for i, f := range tt.wantFields {
				if err.Fields[i].Field != f {
					t.Errorf("Fields[%d].Field = %q, want %q", i, err.Fields[i].Field, f)
				}
				if err.Fields[i].Message == "" {
					t.Errorf("Fields[%d].Message is empty", i)
				}
			}
		})
	}
}

func TestValidateStruct_Messages(t *testing.T) {
	t.Parallel()

	err := ValidateStruct(dishQuery{Dish: "", Count: 0})
	if err == nil {
		t.Fatal("expected validation error")
	}
	msg := err.Error()
	for _, want := range []string{"dish is required", "count must be at least 1"} {
		if !strings.Contains(msg, want) {
			t.Errorf("Error() = %q, want it to contain %q", msg, want)
		}
	}
	if _, ok := err.Details()["fields"]; !ok {
		t.Error("Details() missing fields key")
	}
}

func TestValidDishName(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want bool
	}{
		{"pizza", true},
		{"Crème brûlée", true},
		{"Bánh mì", true},
		{"寿司", true},
		{"mac & cheese", true},
		{"General Tso's chicken", true},
		{"7up cake", true},
		{"", false},
		{"   ", false},
		{"1234", false},
		{"pizza; DROP TABLE", false},
		{"<b>ramen</b>", false},
		{strings.Repeat("a", MaxDishNameLength+1), false},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			t.Parallel()
			if got := ValidDishName(tt.in); got != tt.want {
				t.Errorf("ValidDishName(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}
