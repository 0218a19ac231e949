package main

import (
	"io"
	"log/slog"
	"math"
	"sync"

	"gonum.org/v1/gonum/stat"

	"github.com/pthm-cable/fauna/config"
	"github.com/pthm-cable/fauna/game"
	"github.com/pthm-cable/fauna/telemetry"
)

// FitnessEvaluator runs headless simulations and computes fitness.
type FitnessEvaluator struct {
	params      *ParamVector
	maxTicks    int64
	seeds       []int64
	configPath  string
	statsWindow float64
	logger      *slog.Logger

	mu          sync.Mutex
	lastQuality float64 // quality from most recent Evaluate call
}

// NewFitnessEvaluator creates a new evaluator. Every run loads a fresh copy
// of the config at configPath.
func NewFitnessEvaluator(params *ParamVector, maxTicks int64, seeds []int64, configPath string) *FitnessEvaluator {
	return &FitnessEvaluator{
		params:      params,
		maxTicks:    maxTicks,
		seeds:       seeds,
		configPath:  configPath,
		statsWindow: 30.0,
		logger:      slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
}

// LastQuality returns the quality score from the most recent evaluation.
func (fe *FitnessEvaluator) LastQuality() float64 {
	fe.mu.Lock()
	defer fe.mu.Unlock()
	return fe.lastQuality
}

// Minimum viable population: if any founding species stays below this for
// extinctionGraceSec, it counts as functionally extinct.
const (
	minViablePop       = 3
	extinctionGraceSec = 60.0
	warmupSec          = 10.0
)

// runResult holds the results from a single simulation run.
type runResult struct {
	survivalTicks int64                   // ticks before functional extinction (or maxTicks if survived)
	windowStats   []telemetry.WindowStats // collected via the stats callback each window
}

// seedResult holds the result from one seed evaluation.
type seedResult struct {
	fitness float64
	quality float64
}

// Evaluate computes fitness for a parameter vector (lower = better).
func (fe *FitnessEvaluator) Evaluate(x []float64) float64 {
	results := make([]seedResult, len(fe.seeds))
	var wg sync.WaitGroup

	for i, seed := range fe.seeds {
		wg.Add(1)
		go func(idx int, s int64) {
			defer wg.Done()
			result, err := fe.runSimulation(x, s)
			if err != nil {
				fe.logger.Error("run failed", "seed", s, "error", err)
				return
			}
			results[idx] = seedResult{
				fitness: fe.computeFitness(result),
				quality: fe.computeQuality(result.windowStats),
			}
		}(i, seed)
	}
	wg.Wait()

	var totalFitness, totalQuality float64
	for _, r := range results {
		totalFitness += r.fitness
		totalQuality += r.quality
	}
	n := float64(len(fe.seeds))

	fe.mu.Lock()
	fe.lastQuality = totalQuality / n
	fe.mu.Unlock()

	return totalFitness / n
}

// runSimulation executes a single headless simulation run.
// Runs until functional extinction or maxTicks, whichever comes first.
func (fe *FitnessEvaluator) runSimulation(x []float64, seed int64) (*runResult, error) {
	cfg, err := fe.loadConfig()
	if err != nil {
		return nil, err
	}
	fe.params.ApplyToConfig(cfg, x)

	result := &runResult{}
	sim, err := game.NewSim(cfg, game.Options{
		Seed:           seed,
		StatsWindowSec: fe.statsWindow,
		Logger:         fe.logger,
	})
	if err != nil {
		return nil, err
	}
	defer sim.Close()
	sim.SetStatsCallback(func(stats telemetry.WindowStats) {
		result.windowStats = append(result.windowStats, stats)
	})

	// Only species that start with a population can go extinct.
	var founders []uint16
	for i, sp := range cfg.Species {
		if sp.Count > 0 {
			founders = append(founders, uint16(i+1))
		}
	}
	below := make([]int64, len(founders))

	dt := cfg.Sim.DT
	graceTicks := int64(extinctionGraceSec / dt)
	warmupTicks := int64(warmupSec / dt)

	for sim.Tick() < fe.maxTicks {
		sim.Step()

		tick := sim.Tick()
		if tick < warmupTicks {
			continue
		}

		for i, species := range founders {
			n := sim.SpeciesCount(species)
			if n == 0 {
				result.survivalTicks = tick
				return result, nil
			}
			if n < minViablePop {
				below[i]++
			} else {
				below[i] = 0
			}
			if below[i] >= graceTicks {
				result.survivalTicks = tick
				return result, nil
			}
		}
	}

	result.survivalTicks = fe.maxTicks
	return result, nil
}

// loadConfig loads a private copy of the base config.
func (fe *FitnessEvaluator) loadConfig() (*config.Config, error) {
	return config.Load(fe.configPath)
}

// computeFitness calculates the scalar fitness (lower = better).
// Formula: -(survivalTicks × (1.0 + 0.2 × quality))
// Survival dominates; quality adds up to 20% bonus to differentiate
// configs with similar survival.
func (fe *FitnessEvaluator) computeFitness(r *runResult) float64 {
	survival := float64(r.survivalTicks)
	quality := fe.computeQuality(r.windowStats)
	return -(survival * (1.0 + 0.2*quality))
}

// Quality component weights.
const (
	qualityWeightStability  = 0.35
	qualityWeightSatiety    = 0.30
	qualityWeightHunting    = 0.20
	qualityWeightNavigation = 0.15

	qualityWarmupWindows = 2 // skip first N windows (warmup)
)

// computeQuality computes ecosystem quality ∈ [0, 1] from window stats.
func (fe *FitnessEvaluator) computeQuality(windows []telemetry.WindowStats) float64 {
	if len(windows) <= qualityWarmupWindows {
		return 0
	}
	valid := windows[qualityWarmupWindows:]

	var satietySum, huntSum, navSum float64
	var huntCount, navCount int
	pops := make([]float64, 0, len(valid))

	for _, w := range valid {
		pops = append(pops, float64(w.Population))

		// Median satiety around 0.6: fed but still foraging
		satietySum += math.Exp(-math.Pow((w.SatietyP50-0.6)/0.2, 2))

		if w.Attacks > 0 {
			huntSum += math.Exp(-math.Pow((w.KillRate-0.3)/0.2, 2))
			huntCount++
		}

		if moves := w.Arrivals + w.PathsFailed; moves > 0 {
			navSum += float64(w.Arrivals) / float64(moves)
			navCount++
		}
	}

	stabilityScore := 0.0
	if len(pops) >= 2 {
		c := cv(pops)
		stabilityScore = math.Exp(-c * c)
	}
	satietyScore := satietySum / float64(len(valid))
	huntScore := 0.0
	if huntCount > 0 {
		huntScore = huntSum / float64(huntCount)
	}
	navScore := 0.0
	if navCount > 0 {
		navScore = navSum / float64(navCount)
	}

	quality := qualityWeightStability*stabilityScore +
		qualityWeightSatiety*satietyScore +
		qualityWeightHunting*huntScore +
		qualityWeightNavigation*navScore

	return clamp01(quality)
}

// cv computes the coefficient of variation (std/mean) for a slice of values.
func cv(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	mean, std := stat.PopMeanStdDev(values, nil)
	if mean == 0 {
		return 0
	}
	return std / mean
}

// clamp01 clamps x to [0, 1].
func clamp01(x float64) float64 {
	return min(max(x, 0), 1)
}
