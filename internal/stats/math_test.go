package stats

import (
	"math"
	"testing"
)

func TestRound1(t *testing.T) {
	tests := []struct {
		in       float64
		expected float64
	}{
		{0, 0},
		{1.04, 1},
		{1.05, 1.1},
		{2.449, 2.4},
		{-3.26, -3.3},
	}
	for _, tt := range tests {
		if got := Round1(tt.in); got != tt.expected {
			t.Errorf("Round1(%v) = %v, want %v", tt.in, got, tt.expected)
		}
	}
}

func TestPercent(t *testing.T) {
	if got := Percent(1, 4); got != 25 {
		t.Errorf("Expected 25, got %v", got)
	}
	if got := Percent(5, 0); got != 0 {
		t.Errorf("Expected 0 for zero whole, got %v", got)
	}
}

func TestCoefficientOfVariation(t *testing.T) {
	tests := []struct {
		name     string
		values   []float64
		expected float64
	}{
		{"Empty", nil, 0},
		{"Uniform", []float64{3, 3, 3}, 0},
		{"ZeroMean", []float64{0, 0}, 0},
		{"Spread", []float64{1, 3}, 0.5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CoefficientOfVariation(tt.values); math.Abs(got-tt.expected) > 1e-9 {
				t.Errorf("CoefficientOfVariation() = %v, want %v", got, tt.expected)
			}
		})
	}
}
