// ABOUTME: Tests for intensity aggregation
// ABOUTME: Covers mean computation, clamping, and order invariance
package pipeline

import (
	"math"
	"testing"
)

func TestAggregateMean(t *testing.T) {
	tests := []struct {
		name    string
		samples []float64
		want    float64
	}{
		{"single sample passes through", []float64{0.3}, 0.3},
		{"mean of equal samples", []float64{0.2, 0.2, 0.2, 0.2}, 0.2},
		{"mean of mixed samples", []float64{0.0, 0.5, 1.0}, 0.5},
		{"clamps above one", []float64{5.0, 5.0}, 1.0},
		{"clamps single large sample", []float64{2.0}, 1.0},
		{"clamps below zero", []float64{-3.0, -1.0}, 0.0},
		{"empty yields zero", nil, 0.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Aggregate(tt.samples)
			if math.Abs(got-tt.want) > 1e-12 {
				t.Errorf("Aggregate(%v) = %v, want %v", tt.samples, got, tt.want)
			}
		})
	}
}

func TestAggregateOrderInvariant(t *testing.T) {
	a := Aggregate([]float64{0.1, 0.4, 0.7})
	b := Aggregate([]float64{0.7, 0.1, 0.4})
	if math.Abs(a-b) > 1e-12 {
		t.Errorf("expected order-invariant mean, got %v vs %v", a, b)
	}
}

func TestAggregateAlwaysInRange(t *testing.T) {
	inputs := [][]float64{
		{math.MaxFloat64},
		{-math.MaxFloat64},
		{0.0001, 100000},
		{1.0, 1.0, 1.0},
	}
	for _, in := range inputs {
		got := Aggregate(in)
		if got < 0 || got > 1 {
			t.Errorf("Aggregate(%v) = %v, outside [0, 1]", in, got)
		}
	}
}
