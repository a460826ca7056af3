package match

import (
	"errors"
	"math"
	"testing"
)

func TestSimilarity_HalfAtThreshold(t *testing.T) {
	tests := []struct {
		name      string
		threshold float64
		k         float64
	}{
		{"cosine-scale", 0.68, 12.0},
		{"euclidean-scale", 1.13, 12.0},
		{"gentle-curve", 0.40, 1.0},
		{"steep-curve", 0.40, 50.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sim, err := Similarity(tt.threshold, tt.threshold, tt.k)
			if err != nil {
				t.Fatalf("Similarity returned error: %v", err)
			}
			if math.Abs(sim-0.5) > 1e-12 {
				t.Errorf("similarity at the threshold = %f, want 0.5", sim)
			}
		})
	}
}

func TestSimilarity_MonotonicallyDecreasing(t *testing.T) {
	const threshold, k = 0.68, DefaultSteepness

	prev := math.Inf(1)
	for d := 0.0; d <= 2.0; d += 0.05 {
		sim, err := Similarity(d, threshold, k)
		if err != nil {
			t.Fatalf("Similarity(%f) returned error: %v", d, err)
		}
		if sim >= prev {
			t.Fatalf("similarity not strictly decreasing: f(%f) = %f >= %f", d, sim, prev)
		}
		prev = sim
	}
}

func TestSimilarity_Bounded(t *testing.T) {
	distances := []float64{0, 0.001, 0.5, 1, 10, 1000}

	for _, d := range distances {
		sim, err := Similarity(d, 0.68, DefaultSteepness)
		if err != nil {
			t.Fatalf("Similarity(%f) returned error: %v", d, err)
		}
		if sim <= 0 || sim >= 1 {
			t.Errorf("Similarity(%f) = %f, want value in (0, 1)", d, sim)
		}
	}
}

func TestSimilarity_Extremes(t *testing.T) {
	nearOne, err := Similarity(0, 0.68, DefaultSteepness)
	if err != nil {
		t.Fatalf("Similarity returned error: %v", err)
	}
	if nearOne < 0.99 {
		t.Errorf("zero distance should score near 1, got %f", nearOne)
	}

	nearZero, err := Similarity(5, 0.68, DefaultSteepness)
	if err != nil {
		t.Fatalf("Similarity returned error: %v", err)
	}
	if nearZero > 0.01 {
		t.Errorf("far distance should score near 0, got %f", nearZero)
	}
}

func TestSimilarity_NegativeDistance(t *testing.T) {
	_, err := Similarity(-0.1, 0.68, DefaultSteepness)
	if !errors.Is(err, ErrInvalidInput) {
		t.Errorf("expected ErrInvalidInput for negative distance, got %v", err)
	}
}

func TestSimilarity_BadSteepness(t *testing.T) {
	for _, k := range []float64{0, -1, -12} {
		_, err := Similarity(0.5, 0.68, k)
		if !errors.Is(err, ErrInvalidInput) {
			t.Errorf("expected ErrInvalidInput for steepness %f, got %v", k, err)
		}
	}
}
