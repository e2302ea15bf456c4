package telemetry

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Collector accumulates per-ragdoll measurements for a sampled tick and
// produces TickStats.
type Collector struct {
	sampleEvery int
	dt          float64

	scores     []float64
	hipHeights []float64
	actuation  float64
	bones      int
}

// NewCollector creates a new stats collector.
// sampleEvery: ticks between samples; dt: seconds per tick.
func NewCollector(sampleEvery int, dt float64) *Collector {
	if sampleEvery < 1 {
		sampleEvery = 1
	}
	return &Collector{
		sampleEvery: sampleEvery,
		dt:          dt,
	}
}

// ShouldSample reports whether tick (1-based) is a sampled tick.
func (c *Collector) ShouldSample(tick int) bool {
	return tick%c.sampleEvery == 0
}

// RecordRagdoll records one ragdoll's score and hip height for this tick.
func (c *Collector) RecordRagdoll(score, hipY float64) {
	c.scores = append(c.scores, score)
	c.hipHeights = append(c.hipHeights, hipY)
}

// RecordActuation records the magnitude of one bone's applied force.
func (c *Collector) RecordActuation(force float64) {
	c.actuation += math.Abs(force)
	c.bones++
}

// Flush produces TickStats for tick and resets the per-tick buffers.
// fitness holds the running totals after this tick.
func (c *Collector) Flush(tick int, fitness []float64, kineticEnergy float64) TickStats {
	stats := TickStats{
		Tick:          tick,
		SimTimeSec:    float64(tick) * c.dt,
		KineticEnergy: kineticEnergy,
	}

	if len(c.scores) > 0 {
		stats.ScoreBest = floats.Max(c.scores)
		stats.ScoreWorst = floats.Min(c.scores)
		stats.ScoreMean = stat.Mean(c.scores, nil)
		stats.HipHeightMean = stat.Mean(c.hipHeights, nil)
	}
	if len(fitness) > 0 {
		stats.FitnessBest = floats.Max(fitness)
		stats.FitnessMean = stat.Mean(fitness, nil)
	}
	if c.bones > 0 {
		stats.ActuationMean = c.actuation / float64(c.bones)
	}

	c.scores = c.scores[:0]
	c.hipHeights = c.hipHeights[:0]
	c.actuation = 0
	c.bones = 0

	return stats
}
