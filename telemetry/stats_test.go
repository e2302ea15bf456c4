package telemetry

import (
	"log/slog"
	"math"
	"testing"
)

func TestSummarize(t *testing.T) {
	s := Summarize([]float64{-3, -1, -5, -2, -4})

	if s.Count != 5 {
		t.Errorf("Count = %d, want 5", s.Count)
	}
	if s.Best != -1 || s.BestIndex != 1 {
		t.Errorf("Best = %v at %d, want -1 at 1", s.Best, s.BestIndex)
	}
	if s.Worst != -5 {
		t.Errorf("Worst = %v, want -5", s.Worst)
	}
	if math.Abs(s.Mean+3) > 1e-12 {
		t.Errorf("Mean = %v, want -3", s.Mean)
	}
	// sample standard deviation of 1..5
	if math.Abs(s.Std-math.Sqrt(2.5)) > 1e-12 {
		t.Errorf("Std = %v, want %v", s.Std, math.Sqrt(2.5))
	}
	if s.Median != -3 {
		t.Errorf("Median = %v, want -3", s.Median)
	}
	if s.P10 != -5 || s.P90 != -1 {
		t.Errorf("P10, P90 = %v, %v, want -5, -1", s.P10, s.P90)
	}
}

func TestSummarizeEdgeCases(t *testing.T) {
	tests := []struct {
		name      string
		values    []float64
		wantCount int
		wantBest  float64
		wantIdx   int
	}{
		{"empty", nil, 0, 0, -1},
		{"all nan", []float64{math.NaN(), math.NaN()}, 0, 0, -1},
		{"single", []float64{-7}, 1, -7, 0},
		{"nan skipped", []float64{math.NaN(), -2, -8}, 2, -2, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := Summarize(tt.values)
			if s.Count != tt.wantCount || s.Best != tt.wantBest || s.BestIndex != tt.wantIdx {
				t.Errorf("got count %d best %v at %d, want count %d best %v at %d",
					s.Count, s.Best, s.BestIndex, tt.wantCount, tt.wantBest, tt.wantIdx)
			}
			if math.IsNaN(s.Std) {
				t.Error("Std is NaN")
			}
		})
	}
}

func TestSummaryLogValue(t *testing.T) {
	v := Summarize([]float64{1, 2, 3}).LogValue()
	if v.Kind() != slog.KindGroup {
		t.Fatalf("LogValue kind = %v, want group", v.Kind())
	}
	found := false
	for _, a := range v.Group() {
		if a.Key == "best" && a.Value.Float64() == 3 {
			found = true
		}
	}
	if !found {
		t.Error("LogValue is missing best=3")
	}
}
