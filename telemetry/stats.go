package telemetry

import (
	"log/slog"
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// TickStats holds population-wide measurements for one sampled tick.
type TickStats struct {
	Tick       int     `csv:"tick"`
	SimTimeSec float64 `csv:"sim_time"`

	// Per-tick posture scores
	ScoreBest  float64 `csv:"score_best"`
	ScoreMean  float64 `csv:"score_mean"`
	ScoreWorst float64 `csv:"score_worst"`

	// Running fitness totals
	FitnessBest float64 `csv:"fitness_best"`
	FitnessMean float64 `csv:"fitness_mean"`

	HipHeightMean float64 `csv:"hip_height_mean"`
	KineticEnergy float64 `csv:"kinetic_energy"`
	ActuationMean float64 `csv:"actuation_mean"` // mean |force| per bone
}

// LogValue implements slog.LogValuer for structured logging.
func (s TickStats) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int("tick", s.Tick),
		slog.Float64("sim_time", s.SimTimeSec),
		slog.Float64("score_best", s.ScoreBest),
		slog.Float64("score_mean", s.ScoreMean),
		slog.Float64("score_worst", s.ScoreWorst),
		slog.Float64("fitness_best", s.FitnessBest),
		slog.Float64("fitness_mean", s.FitnessMean),
		slog.Float64("hip_height_mean", s.HipHeightMean),
		slog.Float64("kinetic_energy", s.KineticEnergy),
		slog.Float64("actuation_mean", s.ActuationMean),
	)
}

// Summary describes the distribution of a set of fitness values.
type Summary struct {
	Count     int     `json:"count"`
	Best      float64 `json:"best"`
	BestIndex int     `json:"best_index"`
	Worst     float64 `json:"worst"`
	Mean      float64 `json:"mean"`
	Std       float64 `json:"std"`
	P10       float64 `json:"p10"`
	Median    float64 `json:"median"`
	P90       float64 `json:"p90"`
}

// Summarize computes the distribution of values. NaN entries are skipped;
// an empty input yields a zero Summary with BestIndex -1.
func Summarize(values []float64) Summary {
	clean := make([]float64, 0, len(values))
	for _, v := range values {
		if !math.IsNaN(v) {
			clean = append(clean, v)
		}
	}
	if len(clean) == 0 {
		return Summary{BestIndex: -1}
	}

	best := floats.Max(clean)
	bestIdx := -1
	for i, v := range values {
		if v == best {
			bestIdx = i
			break
		}
	}

	mean, std := stat.MeanStdDev(clean, nil)
	if len(clean) < 2 {
		std = 0
	}

	sort.Float64s(clean)

	return Summary{
		Count:     len(clean),
		Best:      best,
		BestIndex: bestIdx,
		Worst:     clean[0],
		Mean:      mean,
		Std:       std,
		P10:       stat.Quantile(0.10, stat.Empirical, clean, nil),
		Median:    stat.Quantile(0.50, stat.Empirical, clean, nil),
		P90:       stat.Quantile(0.90, stat.Empirical, clean, nil),
	}
}

// LogValue implements slog.LogValuer for structured logging.
func (s Summary) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int("count", s.Count),
		slog.Float64("best", s.Best),
		slog.Int("best_index", s.BestIndex),
		slog.Float64("worst", s.Worst),
		slog.Float64("mean", s.Mean),
		slog.Float64("std", s.Std),
		slog.Float64("p10", s.P10),
		slog.Float64("median", s.Median),
		slog.Float64("p90", s.P90),
	)
}

// FitnessRecord is one ragdoll's outcome, written to fitness.csv.
type FitnessRecord struct {
	Ragdoll    int     `csv:"ragdoll"`
	Fitness    float64 `csv:"fitness"`
	FinalScore float64 `csv:"final_score"`
	HipX       float64 `csv:"hip_x"`
	HipY       float64 `csv:"hip_y"`
}
