package game

import (
	"path/filepath"

	"github.com/pthm-cable/ragdoll/components"
	"github.com/pthm-cable/ragdoll/neural"
	"github.com/pthm-cable/ragdoll/systems"
	"github.com/pthm-cable/ragdoll/telemetry"
)

// flushTelemetry emits the stats of a sampled tick.
func (g *Generation) flushTelemetry() {
	stats := g.collector.Flush(g.tick, g.fitness, g.physics.KineticEnergy())

	if g.tickCallback != nil {
		g.tickCallback(stats)
	}
	g.logger.Debug("tick", "stats", stats)

	if g.output != nil {
		if err := g.output.WriteTick(stats); err != nil {
			g.logger.Error("failed to write tick stats", "error", err)
		}
		if err := g.output.WritePerf(g.perf.Stats(), g.tick); err != nil {
			g.logger.Error("failed to write perf", "error", err)
		}
	}
}

// finish summarizes the run and writes the per-ragdoll outcomes.
func (g *Generation) finish(cancelled bool) Result {
	fitness := g.Fitness()
	summary := telemetry.Summarize(fitness)

	g.hallOfFame = telemetry.NewHallOfFame(g.cfg.Telemetry.HallOfFame)
	records := make([]telemetry.FitnessRecord, len(g.ragdolls))
	for i, r := range g.ragdolls {
		hip := r.Hip()
		records[i] = telemetry.FitnessRecord{
			Ragdoll:    i,
			Fitness:    fitness[i],
			FinalScore: r.Score(),
			HipX:       hip.X,
			HipY:       hip.Y,
		}

		var w *neural.Weights
		if i < len(g.weights) {
			w = g.weights[i]
		}
		g.hallOfFame.Consider(i, fitness[i], w)
	}

	if g.output != nil {
		if err := g.output.WriteFitness(records); err != nil {
			g.logger.Error("failed to write fitness", "error", err)
		}
		if err := g.output.WriteSummary(summary); err != nil {
			g.logger.Error("failed to write summary", "error", err)
		}
		if err := g.output.WriteHallOfFame(g.hallOfFame); err != nil {
			g.logger.Error("failed to write hall of fame", "error", err)
		}
		if _, err := telemetry.SaveSnapshot(g.Snapshot(), filepath.Join(g.output.Dir(), "snapshots")); err != nil {
			g.logger.Error("failed to write snapshot", "error", err)
		}
	}

	result := Result{
		Fitness:   fitness,
		Ticks:     g.tick,
		Cancelled: cancelled,
		Summary:   summary,
	}
	if cancelled {
		g.logger.Warn("generation cancelled", "result", result)
	} else {
		g.logger.Info("generation finished", "result", result)
	}
	g.perf.Stats().LogStats(g.logger)

	return result
}

// Snapshot captures every ragdoll's joints at the current tick.
func (g *Generation) Snapshot() *telemetry.Snapshot {
	snap := &telemetry.Snapshot{
		Version:     telemetry.SnapshotVersion,
		Tick:        g.tick,
		ArenaWidth:  g.cfg.Arena.Width,
		ArenaHeight: g.cfg.Arena.Height,
		GroundY:     systems.GroundTop(g.cfg.Ground),
		Ragdolls:    make([]telemetry.RagdollState, len(g.ragdolls)),
	}

	for i, r := range g.ragdolls {
		joints := make([]telemetry.JointState, components.NumJoints)
		for j := range joints {
			joint := r.Joint(components.JointName(j))
			pos, vel := joint.Position(), joint.Velocity()
			joints[j] = telemetry.JointState{
				Name: joint.Name.String(),
				X:    pos.X,
				Y:    pos.Y,
				VelX: vel.X,
				VelY: vel.Y,
			}
		}
		snap.Ragdolls[i] = telemetry.RagdollState{
			Index:   i,
			Fitness: g.fitness[i],
			Score:   r.Score(),
			Joints:  joints,
		}
	}
	return snap
}
