package elevation

import (
	gomath "math"
	"testing"
)

func TestDecodeRGB(t *testing.T) {
	tests := []struct {
		name    string
		r, g, b uint8
		want    float64
	}{
		{"all zero", 0, 0, 0, -10000},
		{"sea level", 1, 0x86, 0xA0, 0},
		{"one decimeter", 0, 0, 1, -9999.9},
		{"all max", 255, 255, 255, 1667721.5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DecodeRGB(tt.r, tt.g, tt.b); gomath.Abs(got-tt.want) > 1e-9 {
				t.Errorf("DecodeRGB(%d, %d, %d) = %v, want %v", tt.r, tt.g, tt.b, got, tt.want)
			}
		})
	}
}

func TestPlausible(t *testing.T) {
	tests := []struct {
		name string
		e    float64
		want bool
	}{
		{"sea level", 0, true},
		{"everest", 8849, true},
		{"deep trench", -11000, true},
		{"lower bound excluded", -12000, false},
		{"upper bound excluded", 12000, false},
		{"decoder max", 1667721.5, false},
		{"nan", gomath.NaN(), false},
		{"positive inf", gomath.Inf(1), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Plausible(tt.e); got != tt.want {
				t.Errorf("Plausible(%v) = %v, want %v", tt.e, got, tt.want)
			}
		})
	}
}
