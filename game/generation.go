// Package game runs generations: a shared physics arena, one ragdoll per
// controller, and the fixed-step sense/act/score loop.
package game

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jakecoffman/cp"
	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/ragdoll/components"
	"github.com/pthm-cable/ragdoll/config"
	"github.com/pthm-cable/ragdoll/neural"
	"github.com/pthm-cable/ragdoll/ragdoll"
	"github.com/pthm-cable/ragdoll/systems"
	"github.com/pthm-cable/ragdoll/telemetry"
)

// ErrNoControllers is returned when a generation is created without controllers.
var ErrNoControllers = errors.New("generation needs at least one controller")

// Options configures a generation.
type Options struct {
	// Config defaults to config.Cfg().
	Config *config.Config

	// Controllers drive one ragdoll each, in order.
	Controllers []neural.Controller

	// Weights optionally pairs each controller with its serialized weights
	// so the hall of fame can keep them. Entries may be nil.
	Weights []*neural.Weights

	// Logger defaults to slog.Default().
	Logger *slog.Logger

	// Output receives CSV/JSON telemetry. nil disables file output.
	Output *telemetry.OutputManager

	// TickCallback is called with every sampled tick's stats.
	TickCallback func(telemetry.TickStats)
}

// Result is the outcome of Run.
type Result struct {
	Fitness   []float64
	Ticks     int
	Cancelled bool
	Summary   telemetry.Summary
}

// LogValue implements slog.LogValuer for structured logging.
func (r Result) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int("ticks", r.Ticks),
		slog.Bool("cancelled", r.Cancelled),
		slog.Any("summary", r.Summary),
	)
}

// Generation evaluates a population of controllers in one shared world.
type Generation struct {
	cfg     *config.Config
	world   *ecs.World
	physics *systems.PhysicsSystem
	ground  ecs.Entity

	ragdolls    []*ragdoll.Ragdoll
	controllers []neural.Controller
	weights     []*neural.Weights
	fitness     []float64
	tick        int

	logger       *slog.Logger
	output       *telemetry.OutputManager
	collector    *telemetry.Collector
	perf         *telemetry.PerfCollector
	hallOfFame   *telemetry.HallOfFame
	tickCallback func(telemetry.TickStats)
}

// NewGeneration builds the arena, the ground and one ragdoll per controller.
func NewGeneration(opts Options) (*Generation, error) {
	if len(opts.Controllers) == 0 {
		return nil, ErrNoControllers
	}
	cfg := opts.Config
	if cfg == nil {
		cfg = config.Cfg()
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	world := ecs.NewWorld()
	physics := systems.NewPhysicsSystem(world, systems.Bounds{
		Width:  cfg.Arena.Width,
		Height: cfg.Arena.Height,
	}, cfg.Physics)

	ground, err := physics.AddGround(cfg.Ground)
	if err != nil {
		return nil, fmt.Errorf("creating ground: %w", err)
	}

	g := &Generation{
		cfg:          cfg,
		world:        world,
		physics:      physics,
		ground:       ground,
		controllers:  opts.Controllers,
		weights:      opts.Weights,
		fitness:      make([]float64, len(opts.Controllers)),
		logger:       logger,
		output:       opts.Output,
		collector:    telemetry.NewCollector(cfg.Telemetry.SampleEvery, cfg.Derived.DT),
		perf:         telemetry.NewPerfCollector(cfg.Telemetry.PerfWindow),
		hallOfFame:   telemetry.NewHallOfFame(cfg.Telemetry.HallOfFame),
		tickCallback: opts.TickCallback,
	}

	spawn := g.Spawn()
	params := ragdoll.ParamsFromConfig(cfg)
	g.ragdolls = make([]*ragdoll.Ragdoll, 0, len(opts.Controllers))
	for i := range opts.Controllers {
		r, err := ragdoll.New(physics, spawn.X, spawn.Y, params)
		if err != nil {
			g.Close()
			return nil, fmt.Errorf("creating ragdoll %d: %w", i, err)
		}
		g.ragdolls = append(g.ragdolls, r)
	}

	return g, nil
}

// Spawn returns the hip position every ragdoll starts at.
func (g *Generation) Spawn() cp.Vector {
	return g.physics.Center().Add(cp.Vector{Y: g.cfg.Ragdoll.SpawnOffsetY})
}

// Step runs one tick: every ragdoll senses, is driven by its controller,
// acts and is scored, then the world advances exactly once.
func (g *Generation) Step() {
	g.tick++
	sample := g.collector.ShouldSample(g.tick)

	g.perf.StartTick()
	for i, r := range g.ragdolls {
		g.perf.StartPhase(telemetry.PhaseSense)
		sensors := r.Sense()

		g.perf.StartPhase(telemetry.PhaseControl)
		out := g.controllers[i].Evaluate(sensors)

		g.perf.StartPhase(telemetry.PhaseAct)
		if !r.Act(out) && !r.MarkMismatchWarned() {
			g.logger.Warn("actuator vector length mismatch",
				"ragdoll", i,
				"tick", g.tick,
				"got", len(out),
				"want", components.NumActuators,
			)
		}

		g.perf.StartPhase(telemetry.PhaseScore)
		score := r.Score()
		g.fitness[i] += score

		if sample {
			g.collector.RecordRagdoll(score, r.Hip().Y)
			for b := 0; b < components.NumBones; b++ {
				g.collector.RecordActuation(r.Bone(components.BoneName(b)).LastForce().Length())
			}
		}
	}

	g.perf.StartPhase(telemetry.PhaseStep)
	g.physics.Update()

	if sample {
		g.perf.StartPhase(telemetry.PhaseTelemetry)
		g.flushTelemetry()
	}
	g.perf.EndTick()
}

// Run steps until the configured generation length or until ctx is done.
// Cancellation keeps the totals accumulated so far.
func (g *Generation) Run(ctx context.Context) Result {
	g.logger.Info("generation started",
		"ragdolls", len(g.ragdolls),
		"ticks", g.cfg.Generation.Ticks,
		"dt", g.physics.DT(),
	)

	cancelled := false
	for g.tick < g.cfg.Generation.Ticks {
		if ctx.Err() != nil {
			cancelled = true
			break
		}
		g.Step()
	}

	return g.finish(cancelled)
}

// Fitness returns a copy of the running fitness totals.
func (g *Generation) Fitness() []float64 {
	out := make([]float64, len(g.fitness))
	copy(out, g.fitness)
	return out
}

// Tick returns the number of completed ticks.
func (g *Generation) Tick() int { return g.tick }

// Ragdoll returns the i-th ragdoll.
func (g *Generation) Ragdoll(i int) *ragdoll.Ragdoll { return g.ragdolls[i] }

// Len returns the number of ragdolls.
func (g *Generation) Len() int { return len(g.ragdolls) }

// Physics returns the shared arena.
func (g *Generation) Physics() *systems.PhysicsSystem { return g.physics }

// HallOfFame returns the best ragdolls recorded by Run.
func (g *Generation) HallOfFame() *telemetry.HallOfFame { return g.hallOfFame }

// Close removes every ragdoll and the ground from the arena.
func (g *Generation) Close() {
	for _, r := range g.ragdolls {
		r.Destroy()
	}
	g.ragdolls = nil
	g.physics.RemoveEntity(g.ground)
}
