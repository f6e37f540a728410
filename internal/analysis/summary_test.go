package analysis

import (
	"math"
	"testing"
)

func TestSummarize(t *testing.T) {
	t.Run("empty input", func(t *testing.T) {
		if got := Summarize(nil); got != (Summary{}) {
			t.Errorf("Summarize(nil) = %+v; want zero", got)
		}
	})

	t.Run("basic stats", func(t *testing.T) {
		got := Summarize([]float64{25, 20, 20, 20, 20})
		if got.Count != 5 || got.Min != 20 || got.Max != 25 || got.Mean != 21 {
			t.Errorf("Summarize() = %+v; want count 5, min 20, max 25, mean 21", got)
		}
	})

	t.Run("input is not reordered", func(t *testing.T) {
		in := []float64{3, 1, 2}
		Summarize(in)
		if in[0] != 3 || in[1] != 1 || in[2] != 2 {
			t.Errorf("input mutated: %v", in)
		}
	})
}

func TestPercentileSorted(t *testing.T) {
	sorted := []float64{0, 10, 20, 30, 40, 50, 60, 70, 80, 90, 100}
	tests := []struct {
		q    float64
		want float64
	}{
		{0, 0},
		{1, 100},
		{0.5, 50},
		{0.05, 5},
		{0.95, 95},
	}
	for _, tt := range tests {
		if got := percentileSorted(sorted, tt.q); math.Abs(got-tt.want) > 1e-9 {
			t.Errorf("percentileSorted(q=%v) = %v; want %v", tt.q, got, tt.want)
		}
	}
	if got := percentileSorted([]float64{7}, 0.3); got != 7 {
		t.Errorf("percentileSorted(single) = %v; want 7", got)
	}
}
