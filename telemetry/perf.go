package telemetry

import (
	"log/slog"
	"time"
)

// Phase names for the evaluation tick.
const (
	PhaseSense     = "sense"
	PhaseControl   = "control"
	PhaseAct       = "act"
	PhaseScore     = "score"
	PhaseStep      = "step"
	PhaseTelemetry = "telemetry"
)

var phaseOrder = []string{PhaseSense, PhaseControl, PhaseAct, PhaseScore, PhaseStep, PhaseTelemetry}

// tickTiming is the wall time of one tick split by phase.
type tickTiming struct {
	total  time.Duration
	phases map[string]time.Duration
}

// PerfCollector times evaluation phases over the last windowSize ticks.
// Phases are sequential: starting one ends the previous.
type PerfCollector struct {
	window []tickTiming
	next   int
	filled int

	current    map[string]time.Duration
	tickStart  time.Time
	phaseStart time.Time
	phase      string
}

// NewPerfCollector creates a collector averaging over windowSize ticks.
func NewPerfCollector(windowSize int) *PerfCollector {
	if windowSize < 1 {
		windowSize = 60
	}
	return &PerfCollector{
		window:  make([]tickTiming, windowSize),
		current: make(map[string]time.Duration),
	}
}

// StartTick begins timing a new tick.
func (p *PerfCollector) StartTick() {
	p.tickStart = time.Now()
	p.current = make(map[string]time.Duration)
	p.phase = ""
}

// StartPhase closes the running phase, if any, and starts phase.
func (p *PerfCollector) StartPhase(phase string) {
	now := time.Now()
	p.closePhase(now)
	p.phaseStart = now
	p.phase = phase
}

// EndTick closes the running phase and stores the tick in the window.
func (p *PerfCollector) EndTick() {
	now := time.Now()
	p.closePhase(now)

	p.window[p.next] = tickTiming{total: now.Sub(p.tickStart), phases: p.current}
	p.next = (p.next + 1) % len(p.window)
	if p.filled < len(p.window) {
		p.filled++
	}
}

func (p *PerfCollector) closePhase(now time.Time) {
	if p.phase != "" {
		p.current[p.phase] += now.Sub(p.phaseStart)
	}
}

// PerfStats is the window average of tick and phase timings.
type PerfStats struct {
	AvgTickDuration time.Duration
	TicksPerSecond  float64

	PhaseAvg map[string]time.Duration
	PhasePct map[string]float64 // share of the average tick, 0-100
}

// Stats averages the ticks currently in the window.
func (p *PerfCollector) Stats() PerfStats {
	stats := PerfStats{
		PhaseAvg: make(map[string]time.Duration),
		PhasePct: make(map[string]float64),
	}
	if p.filled == 0 {
		return stats
	}

	var total time.Duration
	sums := make(map[string]time.Duration)
	for _, tt := range p.window[:p.filled] {
		total += tt.total
		for phase, d := range tt.phases {
			sums[phase] += d
		}
	}

	n := time.Duration(p.filled)
	stats.AvgTickDuration = total / n
	for phase, sum := range sums {
		avg := sum / n
		stats.PhaseAvg[phase] = avg
		if stats.AvgTickDuration > 0 {
			stats.PhasePct[phase] = float64(avg) / float64(stats.AvgTickDuration) * 100
		}
	}
	if stats.AvgTickDuration > 0 {
		stats.TicksPerSecond = float64(time.Second) / float64(stats.AvgTickDuration)
	}
	return stats
}

// LogStats writes the averages as one info record.
func (s PerfStats) LogStats(logger *slog.Logger) {
	logger.Info("perf", "stats", s)
}

// LogValue implements slog.LogValuer for structured logging.
func (s PerfStats) LogValue() slog.Value {
	attrs := []slog.Attr{
		slog.Int64("avg_tick_us", s.AvgTickDuration.Microseconds()),
		slog.Float64("ticks_per_sec", s.TicksPerSecond),
	}
	for _, phase := range phaseOrder {
		if pct, ok := s.PhasePct[phase]; ok {
			attrs = append(attrs, slog.Float64(phase+"_pct", pct))
		}
	}
	return slog.GroupValue(attrs...)
}

// PerfStatsCSV is one perf.csv row.
type PerfStatsCSV struct {
	Tick         int     `csv:"tick"`
	AvgTickUS    int64   `csv:"avg_tick_us"`
	TicksPerSec  float64 `csv:"ticks_per_sec"`
	SensePct     float64 `csv:"sense_pct"`
	ControlPct   float64 `csv:"control_pct"`
	ActPct       float64 `csv:"act_pct"`
	ScorePct     float64 `csv:"score_pct"`
	StepPct      float64 `csv:"step_pct"`
	TelemetryPct float64 `csv:"telemetry_pct"`
}

// ToCSV flattens the stats for the given tick.
func (s PerfStats) ToCSV(tick int) PerfStatsCSV {
	return PerfStatsCSV{
		Tick:         tick,
		AvgTickUS:    s.AvgTickDuration.Microseconds(),
		TicksPerSec:  s.TicksPerSecond,
		SensePct:     s.PhasePct[PhaseSense],
		ControlPct:   s.PhasePct[PhaseControl],
		ActPct:       s.PhasePct[PhaseAct],
		ScorePct:     s.PhasePct[PhaseScore],
		StepPct:      s.PhasePct[PhaseStep],
		TelemetryPct: s.PhasePct[PhaseTelemetry],
	}
}
