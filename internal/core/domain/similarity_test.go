package domain

import (
	"math"
	"testing"
)

func TestCosineSimilarity(t *testing.T) {
	tests := []struct {
		name string
		a    []float64
		b    []float64
		want float64
	}{
		{
			name: "identical vectors",
			a:    []float64{1, 2, 3},
			b:    []float64{1, 2, 3},
			want: 1.0,
		},
		{
			name: "orthogonal vectors",
			a:    []float64{1, 0},
			b:    []float64{0, 1},
			want: 0.0,
		},
		{
			name: "opposite vectors",
			a:    []float64{1, 0},
			b:    []float64{-1, 0},
			want: -1.0,
		},
		{
			name: "scaled vectors keep similarity",
			a:    []float64{1, 2},
			b:    []float64{2, 4},
			want: 1.0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CosineSimilarity(tt.a, tt.b)
			if math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("CosineSimilarity() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestCosineSimilarity_NotComparable(t *testing.T) {
	t.Run("zero vector", func(t *testing.T) {
		got := CosineSimilarity([]float64{0, 0, 0}, []float64{1, 2, 3})
		if !math.IsNaN(got) {
			t.Errorf("expected NaN for zero vector, got %v", got)
		}
	})

	t.Run("length mismatch", func(t *testing.T) {
		got := CosineSimilarity([]float64{1, 2}, []float64{1, 2, 3})
		if !math.IsNaN(got) {
			t.Errorf("expected NaN for length mismatch, got %v", got)
		}
	})

	t.Run("empty vectors", func(t *testing.T) {
		got := CosineSimilarity(nil, nil)
		if !math.IsNaN(got) {
			t.Errorf("expected NaN for empty vectors, got %v", got)
		}
	})
}

func TestEuclideanDistance(t *testing.T) {
	got := EuclideanDistance([]float64{0, 0}, []float64{3, 4})
	if math.Abs(got-5.0) > 1e-9 {
		t.Errorf("EuclideanDistance() = %v, want 5.0", got)
	}

	if !math.IsNaN(EuclideanDistance([]float64{1}, []float64{1, 2})) {
		t.Error("expected NaN for length mismatch")
	}
}
