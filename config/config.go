// Package config provides configuration loading and access for the simulation.
package config

import (
	_ "embed"
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// Config holds all simulation configuration parameters.
type Config struct {
	World       WorldConfig             `yaml:"world"`
	Sim         SimConfig               `yaml:"sim"`
	Agent       AgentConfig             `yaml:"agent"`
	Vitals      VitalsConfig            `yaml:"vitals"`
	Terrain     TerrainConfig           `yaml:"terrain"`
	Pathfinding PathfindingConfig       `yaml:"pathfinding"`
	Movement    MovementConfig          `yaml:"movement"`
	Actions     map[string]ActionConfig `yaml:"actions"`
	Species     []SpeciesConfig         `yaml:"species"`
	Food        FoodConfig              `yaml:"food"`
	Telemetry   TelemetryConfig         `yaml:"telemetry"`

	// Derived values computed after loading
	Derived DerivedConfig `yaml:"-"`
}

// WorldConfig holds the grid dimensions.
type WorldConfig struct {
	Width    int     `yaml:"width"`     // Columns of the terrain grid
	Height   int     `yaml:"height"`    // Rows of the terrain grid
	CellSize float64 `yaml:"cell_size"` // World units per cell
	Seed     int64   `yaml:"seed"`      // Terrain and spawn seed
}

// SimConfig holds tick loop parameters.
type SimConfig struct {
	DT             float64 `yaml:"dt"`              // Seconds per tick
	Substeps       int     `yaml:"substeps"`        // Movement substeps per tick
	TicksPerDay    int     `yaml:"ticks_per_day"`   // Length of the day/night cycle
	GlobalCooldown int     `yaml:"global_cooldown"` // Ticks after any completed action
	ReplanTicks    int     `yaml:"replan_ticks"`    // Re-evaluate a running action after this many ticks (0 = never)
	MaxPopulation  int     `yaml:"max_population"`  // Births are refused above this
}

// AgentConfig holds the coefficients shared by every species.
type AgentConfig struct {
	HungerPerSize    float64 `yaml:"hunger_per_size"`
	HungerPerSpeed   float64 `yaml:"hunger_per_speed"`
	MaxHungerPerSize float64 `yaml:"max_hunger_per_size"`
	RegenFraction    float64 `yaml:"regen_fraction"` // Fraction of base health regained per tick
	Variation        float64 `yaml:"variation"`      // Per-instance trait jitter, e.g. 0.1 = ±10%
	Reach            float64 `yaml:"reach"`          // Distance within which eating, attacking and mating work
	BiteSize         float64 `yaml:"bite_size"`      // Hunger points taken per meal
	BirthCost        float64 `yaml:"birth_cost"`     // Fraction of max hunger a parent pays per child
}

// VitalsConfig holds sleep modifiers.
type VitalsConfig struct {
	SleepHungerFactor float64 `yaml:"sleep_hunger_factor"`
	SleepRegenFactor  float64 `yaml:"sleep_regen_factor"`
}

// TerrainConfig holds terrain generation parameters.
type TerrainConfig struct {
	Scale       float64 `yaml:"scale"`        // Noise frequency per cell
	Octaves     int     `yaml:"octaves"`      // FBM octaves
	WaterLevel  float64 `yaml:"water_level"`  // Elevation below this is impassable
	MaxWeight   float64 `yaml:"max_weight"`   // Weight of the roughest ground
	TrailWidth  float64 `yaml:"trail_width"`  // 0 disables trails
	TrailWeight float64 `yaml:"trail_weight"` // Weight of trail cells
}

// PathfindingConfig holds A* parameters.
type PathfindingConfig struct {
	MaxExpansions   int     `yaml:"max_expansions"`    // 0 = unlimited
	MinWeight       float64 `yaml:"min_weight"`        // Heuristic scale; 0 = lowest terrain weight
	NoCornerCutting bool    `yaml:"no_corner_cutting"` // Forbid diagonals past blocked cells
}

// MovementConfig holds waypoint following parameters.
type MovementConfig struct {
	ArrivalTolerance float64 `yaml:"arrival_tolerance"`
	StuckEpsilon     float64 `yaml:"stuck_epsilon"`
}

// ActionConfig tunes one action kind. A nil Cooldown means the cooldown
// was not configured.
type ActionConfig struct {
	Cooldown  *int    `yaml:"cooldown,omitempty"`
	Weight    float64 `yaml:"weight"`
	Success   float64 `yaml:"success"`
	Threshold float64 `yaml:"threshold"`
}

// SpeciesConfig defines a founder template.
type SpeciesConfig struct {
	Name        string   `yaml:"name"`
	Count       int      `yaml:"count"` // Initial population
	Size        float64  `yaml:"size"`
	Speed       float64  `yaml:"speed"` // World units per second
	Health      float64  `yaml:"health"`
	Attack      float64  `yaml:"attack"`
	Perception  float64  `yaml:"perception"` // World units
	Lifespan    int      `yaml:"lifespan"`   // Ticks
	MaturityAge int      `yaml:"maturity_age"`
	SleepStart  int      `yaml:"sleep_start"` // Tick of day
	SleepEnd    int      `yaml:"sleep_end"`
	Invincible  bool     `yaml:"invincible,omitempty"`
	Prey        []string `yaml:"prey"`      // Species names
	Predators   []string `yaml:"predators"` // Species names
	Diet        []string `yaml:"diet"`      // Food kind names
	Actions     []string `yaml:"actions"`   // Action kind names, ties resolved in this order
}

// FoodConfig holds plant and carrion parameters.
type FoodConfig struct {
	Plants         int     `yaml:"plants"`           // Initial plant patches
	PlantAmount    float64 `yaml:"plant_amount"`     // Max amount per patch
	PlantRegrow    float64 `yaml:"plant_regrow"`     // Amount regained per tick
	CarrionPerSize float64 `yaml:"carrion_per_size"` // Carrion left per unit of body size
	CarrionDecay   float64 `yaml:"carrion_decay"`    // Amount lost per tick
}

// TelemetryConfig holds telemetry parameters.
type TelemetryConfig struct {
	StatsWindow         float64 `yaml:"stats_window"` // Seconds
	PerfCollectorWindow int     `yaml:"perf_collector_window"`
}

// DerivedConfig holds computed values derived from the loaded config.
type DerivedConfig struct {
	DT32         float32           // Sim.DT as float32
	CellSize32   float32           // World.CellSize as float32
	WorldW32     float32           // World width in world units
	WorldH32     float32           // World height in world units
	SpeciesIndex map[string]uint16 // name -> species id (index + 1)
}

// global holds the loaded configuration.
var global *Config

// Init loads configuration from the given path, or uses embedded defaults if path is empty.
// Must be called before Cfg().
func Init(path string) error {
	cfg, err := Load(path)
	if err != nil {
		return err
	}
	global = cfg
	return nil
}

// MustInit is like Init but panics on error.
func MustInit(path string) {
	if err := Init(path); err != nil {
		panic(fmt.Sprintf("config: failed to initialize: %v", err))
	}
}

// Cfg returns the global configuration. Panics if Init was not called.
func Cfg() *Config {
	if global == nil {
		panic("config: Cfg() called before Init()")
	}
	return global
}

// Load loads configuration from a YAML file, merging with embedded defaults.
// If path is empty, only embedded defaults are used. Entries of the actions
// map are replaced per kind; the species list is replaced as a whole.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	if err := yaml.Unmarshal(defaultsYAML, cfg); err != nil {
		return nil, fmt.Errorf("parsing embedded defaults: %w", err)
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		// Unmarshal into same struct - only overwrites fields present in file
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	cfg.computeDerived()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// computeDerived calculates values derived from loaded config.
func (c *Config) computeDerived() {
	if c.Sim.Substeps < 1 {
		c.Sim.Substeps = 1
	}
	if c.World.CellSize <= 0 {
		c.World.CellSize = 1
	}
	c.Derived.DT32 = float32(c.Sim.DT)
	c.Derived.CellSize32 = float32(c.World.CellSize)
	c.Derived.WorldW32 = float32(float64(c.World.Width) * c.World.CellSize)
	c.Derived.WorldH32 = float32(float64(c.World.Height) * c.World.CellSize)

	c.Derived.SpeciesIndex = make(map[string]uint16, len(c.Species))
	for i, sp := range c.Species {
		c.Derived.SpeciesIndex[sp.Name] = uint16(i + 1)
	}
}

// Validate checks structural problems that would make the run meaningless.
// Gaps that can be defaulted, such as an action missing from the actions
// map, are not errors.
func (c *Config) Validate() error {
	var errs []error
	if c.World.Width <= 0 || c.World.Height <= 0 {
		errs = append(errs, fmt.Errorf("world size %dx%d must be positive", c.World.Width, c.World.Height))
	}
	if c.Sim.DT <= 0 {
		errs = append(errs, fmt.Errorf("sim.dt %v must be positive", c.Sim.DT))
	}

	seen := make(map[string]bool, len(c.Species))
	for _, sp := range c.Species {
		if sp.Name == "" {
			errs = append(errs, errors.New("species without a name"))
			continue
		}
		if seen[sp.Name] {
			errs = append(errs, fmt.Errorf("species %q defined twice", sp.Name))
		}
		seen[sp.Name] = true
	}
	for _, sp := range c.Species {
		for _, ref := range append(append([]string{}, sp.Prey...), sp.Predators...) {
			if _, ok := c.Derived.SpeciesIndex[ref]; !ok {
				errs = append(errs, fmt.Errorf("species %q references unknown species %q", sp.Name, ref))
			}
		}
	}
	return errors.Join(errs...)
}

// SpeciesID returns the id of the named species.
func (c *Config) SpeciesID(name string) (uint16, bool) {
	id, ok := c.Derived.SpeciesIndex[name]
	return id, ok
}

// WriteYAML writes the configuration to a YAML file.
func (c *Config) WriteYAML(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}
