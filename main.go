package main

import (
	"flag"
	"log/slog"
	"os"
	"time"

	"github.com/pthm-cable/fauna/config"
	"github.com/pthm-cable/fauna/game"
)

func main() {
	// CLI flags
	configPath := flag.String("config", "", "Path to config.yaml (empty = use defaults)")
	logStats := flag.Bool("log-stats", false, "Output stats via slog")
	statsWindow := flag.Float64("stats-window", 0, "Stats window size in seconds (0 = use config)")
	outputDir := flag.String("output-dir", "", "Output directory for CSV logs and config snapshot")
	seed := flag.Int64("seed", 0, "RNG seed (0 = world.seed from config, -1 = time-based)")
	maxTicks := flag.Int64("max-ticks", 0, "Stop after N ticks (0 = unlimited)")
	writeConfig := flag.String("write-config", "", "Write the effective config to this path and exit")
	debug := flag.Bool("debug", false, "Log individual decisions")

	flag.Parse()

	// Set up slog (JSON to stdout for structured logging)
	level := slog.LevelInfo
	if *debug {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	// Initialize config before anything else
	if err := config.Init(*configPath); err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	cfg := config.Cfg()

	if *writeConfig != "" {
		if err := cfg.WriteYAML(*writeConfig); err != nil {
			slog.Error("failed to write config", "error", err)
			os.Exit(1)
		}
		slog.Info("config written", "path", *writeConfig)
		return
	}

	rngSeed := *seed
	if rngSeed < 0 {
		rngSeed = time.Now().UnixNano()
	}

	sim, err := game.NewSim(cfg, game.Options{
		Seed:           rngSeed,
		LogStats:       *logStats,
		StatsWindowSec: *statsWindow,
		OutputDir:      *outputDir,
		Logger:         logger,
	})
	if err != nil {
		slog.Error("failed to create simulation", "error", err)
		os.Exit(1)
	}
	defer func() {
		if err := sim.Close(); err != nil {
			slog.Error("failed to close output", "error", err)
		}
	}()

	slog.Info("starting headless simulation",
		"seed", sim.Seed(),
		"max_ticks", *maxTicks,
		"output_dir", *outputDir,
	)

	start := time.Now()
	for *maxTicks <= 0 || sim.Tick() < *maxTicks {
		sim.Step()
		if sim.Population() == 0 {
			slog.Info("population extinct", "tick", sim.Tick())
			break
		}
	}

	slog.Info("simulation finished",
		"tick", sim.Tick(),
		"population", sim.Population(),
		"elapsed", time.Since(start).Round(time.Millisecond).String(),
	)
}
