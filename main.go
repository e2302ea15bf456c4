package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"math/rand"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/pthm-cable/ragdoll/components"
	"github.com/pthm-cable/ragdoll/config"
	"github.com/pthm-cable/ragdoll/game"
	"github.com/pthm-cable/ragdoll/neural"
	"github.com/pthm-cable/ragdoll/telemetry"
)

func main() {
	// CLI flags
	configPath := flag.String("config", "", "Path to config.yaml (empty = use defaults)")
	outputDir := flag.String("output-dir", "", "Output directory for CSV logs and config snapshot")
	seed := flag.Int64("seed", 0, "RNG seed (0 = time-based)")
	ticks := flag.Int("ticks", 0, "Ticks per generation (0 = use config)")
	population := flag.Int("population", 0, "Number of ragdolls (0 = use config)")
	controllerPath := flag.String("controller", "", "JSON weight file to seed every controller from")
	hallPath := flag.String("hall-of-fame", "", "hall_of_fame.json of a previous run; ragdolls cycle through its networks")
	mutate := flag.Float64("mutate", 0, "Gaussian perturbation applied to loaded weights per ragdoll")
	zero := flag.Bool("zero", false, "Use controllers that never actuate")
	logTicks := flag.Bool("log-ticks", false, "Log sampled tick stats")

	flag.Parse()

	// Set up slog (JSON to stdout for structured logging)
	level := slog.LevelInfo
	if *logTicks {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	if err := config.Init(*configPath); err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	cfg := config.Cfg()

	if *ticks > 0 {
		cfg.Generation.Ticks = *ticks
	}
	if *population > 0 {
		cfg.Generation.Population = *population
	}
	if cfg.Generation.Population < 1 {
		cfg.Generation.Population = 1
	}

	rngSeed := *seed
	if rngSeed == 0 {
		rngSeed = time.Now().UnixNano()
	}
	rng := rand.New(rand.NewSource(rngSeed))

	nets, controllers, err := buildControllers(cfg, rng, *controllerPath, *hallPath, *mutate, *zero)
	if err != nil {
		slog.Error("failed to build controllers", "error", err)
		os.Exit(1)
	}

	output, err := telemetry.NewOutputManager(*outputDir)
	if err != nil {
		slog.Error("failed to create output directory", "error", err)
		os.Exit(1)
	}
	defer output.Close()
	if err := output.WriteConfig(cfg); err != nil {
		slog.Error("failed to write config", "error", err)
	}

	var weights []*neural.Weights
	for _, nn := range nets {
		w := nn.MarshalWeights()
		weights = append(weights, &w)
	}

	g, err := game.NewGeneration(game.Options{
		Config:      cfg,
		Controllers: controllers,
		Weights:     weights,
		Logger:      logger,
		Output:      output,
	})
	if err != nil {
		slog.Error("failed to create generation", "error", err)
		os.Exit(1)
	}
	defer g.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	slog.Info("starting evaluation",
		"seed", rngSeed,
		"population", len(controllers),
		"ticks", cfg.Generation.Ticks,
		"controller", *controllerPath,
		"hall_of_fame", *hallPath,
	)

	res := g.Run(ctx)

	if best, ok := g.HallOfFame().Best(); ok && output != nil && best.Ragdoll < len(nets) {
		path := filepath.Join(output.Dir(), "best.json")
		if err := neural.SaveFFNN(nets[best.Ragdoll], path); err != nil {
			slog.Error("failed to save best controller", "error", err)
		} else {
			slog.Info("saved best controller", "path", path, "fitness", best.Fitness)
		}
	}

	if res.Cancelled {
		slog.Info("stopped early", "tick", res.Ticks)
	}
}

// buildControllers creates one controller per ragdoll. Networks are returned
// alongside so their weights can be recorded.
func buildControllers(cfg *config.Config, rng *rand.Rand, path, hallPath string, sigma float64, zero bool) ([]*neural.FFNN, []neural.Controller, error) {
	n := cfg.Generation.Population
	controllers := make([]neural.Controller, n)

	if zero {
		for i := range controllers {
			controllers[i] = neural.Zero(components.NumActuators)
		}
		return nil, controllers, nil
	}

	bases, err := loadBaseNetworks(path, hallPath)
	if err != nil {
		return nil, nil, err
	}

	nets := make([]*neural.FFNN, n)
	for i := range nets {
		if len(bases) > 0 {
			// the first copy of every base stays unmutated
			nets[i] = bases[i%len(bases)].Clone()
			if sigma > 0 && i >= len(bases) {
				nets[i].Mutate(rng, sigma)
			}
		} else {
			nets[i] = neural.NewFFNN(rng, components.NumSensors, cfg.Neural.Hidden, components.NumActuators,
				cfg.Neural.WeightSigma, cfg.Neural.InputScale)
		}
		controllers[i] = nets[i]
	}
	return nets, controllers, nil
}

// loadBaseNetworks reads the networks new controllers are copied from: a
// single weight file, the networks of a hall of fame, or nothing.
func loadBaseNetworks(path, hallPath string) ([]*neural.FFNN, error) {
	var bases []*neural.FFNN
	switch {
	case path != "" && hallPath != "":
		return nil, fmt.Errorf("-controller and -hall-of-fame are mutually exclusive")
	case path != "":
		nn, err := neural.LoadFFNN(path)
		if err != nil {
			return nil, err
		}
		bases = []*neural.FFNN{nn}
	case hallPath != "":
		hof, err := telemetry.LoadHallOfFameFromFile(hallPath)
		if err != nil {
			return nil, err
		}
		bases, err = hof.Networks()
		if err != nil {
			return nil, err
		}
		if len(bases) == 0 {
			return nil, fmt.Errorf("%s holds no controller weights", hallPath)
		}
		path = hallPath
	}

	for _, nn := range bases {
		inputs, _, outputs := nn.Dims()
		if inputs != components.NumSensors || outputs != components.NumActuators {
			return nil, fmt.Errorf("%s has %d inputs and %d outputs, want %d and %d: %w",
				path, inputs, outputs, components.NumSensors, components.NumActuators, neural.ErrWeightShape)
		}
	}
	return bases, nil
}
