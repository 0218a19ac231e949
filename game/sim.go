// Package game hosts a headless simulation: it owns the ECS world, the
// terrain, and one behavior machine per creature, and drives them through a
// fixed tick pipeline.
package game

import (
	"fmt"
	"log/slog"
	"math/rand"

	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/fauna/agent"
	"github.com/pthm-cable/fauna/behavior"
	"github.com/pthm-cable/fauna/components"
	"github.com/pthm-cable/fauna/config"
	"github.com/pthm-cable/fauna/scheduler"
	"github.com/pthm-cable/fauna/systems"
	"github.com/pthm-cable/fauna/telemetry"
)

// Options configures a simulation run.
type Options struct {
	Seed           int64   // 0 uses world.seed from the config
	LogStats       bool    // Log window stats to the default logger
	StatsWindowSec float64 // 0 uses telemetry.stats_window
	OutputDir      string  // CSV output directory; empty disables output
	Logger         *slog.Logger
}

// creature ties an agent to its entity, its behavior machine and its
// scheduler slot.
type creature struct {
	agent   *agent.Agent
	entity  ecs.Entity
	machine *behavior.Machine
	handle  scheduler.Handle
	dying   bool
}

// Sim holds the complete simulation state.
type Sim struct {
	cfg    *config.Config
	logger *slog.Logger
	world  *ecs.World
	rng    *rand.Rand
	seed   int64

	// Entity mappers
	creatureMapper *ecs.Map4[
		components.Position,
		components.Velocity,
		components.Motion,
		components.Creature,
	]
	creatureFilter *ecs.Filter3[components.Position, components.Motion, components.Creature]
	foodMapper     *ecs.Map2[components.Position, components.Food]
	foodFilter     *ecs.Filter2[components.Position, components.Food]

	// Individual component mappers for lookups
	posMap      *ecs.Map1[components.Position]
	velMap      *ecs.Map1[components.Velocity]
	motionMap   *ecs.Map1[components.Motion]
	creatureMap *ecs.Map1[components.Creature]
	foodMap     *ecs.Map1[components.Food]

	// World and systems
	terrain    *systems.CostGrid
	spatial    *systems.SpatialIndex
	pathfinder *systems.Pathfinder
	movement   *systems.MovementSystem
	vitals     systems.VitalsParams

	// Decisions
	registry   *behavior.Registry
	selector   *behavior.Selector
	dispatcher *behavior.Dispatcher
	scheduler  *scheduler.Scheduler

	// Population
	genomes      []agent.Genome // Founder genomes, indexed by species id - 1
	deriveParams agent.DeriveParams
	creatures    map[uint32]*creature
	dying        []*creature
	nextID       uint32

	// Telemetry
	collector     *telemetry.Collector
	perf          *telemetry.PerfCollector
	lifetime      *telemetry.LifetimeTracker
	output        *telemetry.OutputManager
	logStats      bool
	statsCallback func(telemetry.WindowStats)
}

// NewSim creates a simulation from cfg and spawns the initial population
// and food.
func NewSim(cfg *config.Config, opts Options) (*Sim, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	seed := opts.Seed
	if seed == 0 {
		seed = cfg.World.Seed
	}
	window := opts.StatsWindowSec
	if window <= 0 {
		window = cfg.Telemetry.StatsWindow
	}

	output, err := telemetry.NewOutputManager(opts.OutputDir)
	if err != nil {
		return nil, err
	}
	if err := output.WriteConfig(cfg); err != nil {
		output.Close()
		return nil, fmt.Errorf("writing config: %w", err)
	}

	world := ecs.NewWorld()
	s := &Sim{
		cfg:    cfg,
		logger: logger,
		world:  world,
		rng:    rand.New(rand.NewSource(seed)),
		seed:   seed,

		creatureMapper: ecs.NewMap4[
			components.Position,
			components.Velocity,
			components.Motion,
			components.Creature,
		](world),
		creatureFilter: ecs.NewFilter3[components.Position, components.Motion, components.Creature](world),
		foodMapper:     ecs.NewMap2[components.Position, components.Food](world),
		foodFilter:     ecs.NewFilter2[components.Position, components.Food](world),

		posMap:      ecs.NewMap1[components.Position](world),
		velMap:      ecs.NewMap1[components.Velocity](world),
		motionMap:   ecs.NewMap1[components.Motion](world),
		creatureMap: ecs.NewMap1[components.Creature](world),
		foodMap:     ecs.NewMap1[components.Food](world),

		vitals: systems.VitalsParams{
			SleepHungerFactor: float32(cfg.Vitals.SleepHungerFactor),
			SleepRegenFactor:  float32(cfg.Vitals.SleepRegenFactor),
		},
		deriveParams: deriveParams(cfg),
		creatures:    make(map[uint32]*creature),

		collector: telemetry.NewCollector(window, cfg.Derived.DT32),
		perf:      telemetry.NewPerfCollector(cfg.Telemetry.PerfCollectorWindow),
		lifetime:  telemetry.NewLifetimeTracker(),
		output:    output,
		logStats:  opts.LogStats,
	}

	s.terrain = systems.GenerateTerrain(cfg.World.Width, cfg.World.Height, cfg.Derived.CellSize32, seed, terrainParams(cfg))
	s.spatial = systems.NewSpatialIndex(cfg.Derived.WorldW32, cfg.Derived.WorldH32, spatialCellSize(cfg))

	pp := systems.PathfinderParams{
		MaxExpansions:   cfg.Pathfinding.MaxExpansions,
		MinWeight:       cfg.Pathfinding.MinWeight,
		NoCornerCutting: cfg.Pathfinding.NoCornerCutting,
	}
	if pp.MinWeight <= 0 {
		pp.MinWeight = s.terrain.MinWeight()
	}
	s.pathfinder = systems.NewPathfinder(pp)
	s.movement = systems.NewMovementSystem(world, systems.MovementParams{
		ArrivalTolerance: float32(cfg.Movement.ArrivalTolerance),
		StuckEpsilon:     float32(cfg.Movement.StuckEpsilon),
	})

	s.registry = behavior.NewDefaultRegistry(buildTunings(cfg, logger), logger)
	s.selector = behavior.NewSelector(s.registry, logger)
	s.dispatcher = behavior.NewDispatcher()
	s.scheduler = scheduler.New()
	s.genomes = buildGenomes(cfg, logger)

	s.spawnInitialFood()
	s.spawnInitialPopulation()

	logger.Info("simulation created",
		"run_id", output.RunID(),
		"seed", seed,
		"grid", fmt.Sprintf("%dx%d", cfg.World.Width, cfg.World.Height),
		"population", len(s.creatures),
		"heuristic_min_weight", pp.MinWeight,
	)
	return s, nil
}

// Step advances the simulation by one tick.
func (s *Sim) Step() {
	s.perf.StartTick()

	s.perf.StartPhase(telemetry.PhaseSpatial)
	s.rebuildSpatial()

	s.perf.StartPhase(telemetry.PhaseDecisions)
	s.scheduler.Step()

	s.perf.StartPhase(telemetry.PhaseMovement)
	substeps := s.cfg.Sim.Substeps
	dt := s.cfg.Derived.DT32 / float32(substeps)
	for i := 0; i < substeps; i++ {
		s.movement.Update(dt, s.arrive)
	}

	s.perf.StartPhase(telemetry.PhaseFood)
	s.updateFood()

	s.perf.StartPhase(telemetry.PhaseCleanup)
	s.cleanupDead()

	s.perf.StartPhase(telemetry.PhaseTelemetry)
	s.flushTelemetry()

	s.perf.EndTick()
}

// Tick returns the number of completed ticks.
func (s *Sim) Tick() int64 {
	return s.scheduler.Tick()
}

// Seed returns the seed the run was created with.
func (s *Sim) Seed() int64 {
	return s.seed
}

// Population returns the number of live creatures.
func (s *Sim) Population() int {
	return len(s.creatures) - len(s.dying)
}

// SpeciesCount returns the number of live creatures of one species.
func (s *Sim) SpeciesCount(species uint16) int {
	n := 0
	for _, c := range s.creatures {
		if !c.dying && c.agent.Genome.Species == species {
			n++
		}
	}
	return n
}

// RunID returns the id stamped on output rows, or "" when output is off.
func (s *Sim) RunID() string {
	return s.output.RunID()
}

// SetStatsCallback registers fn to receive every flushed stats window.
func (s *Sim) SetStatsCallback(fn func(telemetry.WindowStats)) {
	s.statsCallback = fn
}

// Close shuts down every behavior machine and closes the output files.
func (s *Sim) Close() error {
	for _, c := range s.creatures {
		c.machine.Shutdown()
	}
	return s.output.Close()
}

// rebuildSpatial reindexes every live creature and non-empty food item.
func (s *Sim) rebuildSpatial() {
	s.spatial.Clear()

	query := s.creatureFilter.Query()
	for query.Next() {
		pos, _, cr := query.Get()
		c := s.creatures[cr.ID]
		if c == nil || c.agent.Dead() {
			continue
		}
		s.spatial.Insert(systems.Target{
			Entity:  query.Entity(),
			ID:      cr.ID,
			Species: cr.Species,
			Pos:     *pos,
		})
	}

	foodQuery := s.foodFilter.Query()
	for foodQuery.Next() {
		pos, food := foodQuery.Get()
		if food.Depleted() {
			continue
		}
		s.spatial.Insert(systems.Target{
			Entity: foodQuery.Entity(),
			IsFood: true,
			Food:   food.Kind,
			Pos:    *pos,
		})
	}
}

// think returns the per-tick callback of one creature: vitals first, then a
// decision when the agent is ready. A running action is only replaced once
// it has been going for sim.replan_ticks.
func (s *Sim) think(c *creature) scheduler.TickFunc {
	return func(tick int64) {
		res := systems.UpdateVitals(c.agent, s.vitals)
		if res.Died {
			s.kill(c)
			return
		}
		if !res.Ready || c.agent.Sleeping {
			return
		}
		if c.machine.Busy() && !s.stale(c.machine.Context(), tick) {
			return
		}
		if c.machine.EvaluateAndExecute() {
			s.record(telemetry.NewActionEvent(tick, c.agent, c.agent.Current))
		}
	}
}

// stale reports whether a running context is due for re-evaluation.
func (s *Sim) stale(ctx *behavior.Context, tick int64) bool {
	replan := int64(s.cfg.Sim.ReplanTicks)
	return ctx != nil && replan > 0 && tick-ctx.Started() >= replan
}

// arrive fires the movement callback of a finished route.
func (s *Sim) arrive(arr systems.Arrival) {
	if arr.Request == 0 || !s.world.Alive(arr.Entity) {
		return
	}
	id := s.creatureMap.Get(arr.Entity).ID
	if !s.dispatcher.Fire(arr.Request, arr.At) {
		return
	}
	if c := s.creatures[id]; c != nil {
		s.record(telemetry.NewArrivalEvent(s.Tick(), c.agent))
	}
}

func spatialCellSize(cfg *config.Config) float32 {
	size := float32(0)
	for _, sp := range cfg.Species {
		size = max(size, float32(sp.Perception))
	}
	if size <= 0 {
		size = cfg.Derived.CellSize32 * 4
	}
	return size
}
