// Package agent holds the data model of a single simulated creature:
// immutable genetic parameters, constants derived from them once at birth,
// and the mutable runtime state that the vitals pass and actions change.
package agent

import (
	"math/rand"
	"slices"

	"github.com/pthm-cable/fauna/components"
)

// DeathCause records why an agent died.
type DeathCause uint8

const (
	CauseNone       DeathCause = iota
	CauseStarvation            // Hunger reached 0
	CauseInjury                // Health reached 0
	CauseOldAge                // Age reached lifespan
	CauseDespawn               // Removed by the host
)

var causeNames = [...]string{"none", "starvation", "injury", "old_age", "despawn"}

func (c DeathCause) String() string {
	if int(c) < len(causeNames) {
		return causeNames[c]
	}
	return "unknown"
}

// Genome holds the heritable parameters of a creature.
type Genome struct {
	Species         uint16
	Size            float32
	Speed           float32 // World units per second
	BaseHealth      float32
	AttackPower     float32
	PerceptionRange float32 // World units
	Lifespan        int32   // Ticks
	MaturityAge     int32   // Ticks before mating is possible
	SleepStart      int32   // Tick of day the sleep window opens
	SleepEnd        int32   // Tick of day the sleep window closes

	Prey      []uint16
	Predators []uint16
	Diet      []components.FoodKind
	Actions   []ActionKind // Eligible action kinds, in priority order for ties
}

// HuntsSpecies reports whether species is in the prey set.
func (g *Genome) HuntsSpecies(species uint16) bool {
	return slices.Contains(g.Prey, species)
}

// FearsSpecies reports whether species is in the predator set.
func (g *Genome) FearsSpecies(species uint16) bool {
	return slices.Contains(g.Predators, species)
}

// Eats reports whether the food kind is part of the diet.
func (g *Genome) Eats(kind components.FoodKind) bool {
	return slices.Contains(g.Diet, kind)
}

// Clone returns a deep copy so offspring never share slices with parents.
func (g Genome) Clone() Genome {
	g.Prey = slices.Clone(g.Prey)
	g.Predators = slices.Clone(g.Predators)
	g.Diet = slices.Clone(g.Diet)
	g.Actions = slices.Clone(g.Actions)
	return g
}

// Vary returns a copy with every continuous trait scaled by an independent
// factor in [1-variation, 1+variation].
func (g Genome) Vary(rng *rand.Rand, variation float64) Genome {
	out := g.Clone()
	if rng == nil || variation <= 0 {
		return out
	}
	jitter := func(v float32) float32 {
		f := 1 + (rng.Float64()*2-1)*variation
		return v * float32(f)
	}
	out.Size = jitter(g.Size)
	out.Speed = jitter(g.Speed)
	out.BaseHealth = jitter(g.BaseHealth)
	out.AttackPower = jitter(g.AttackPower)
	out.PerceptionRange = jitter(g.PerceptionRange)
	out.Lifespan = int32(jitter(float32(g.Lifespan)))
	if out.Lifespan < 1 {
		out.Lifespan = 1
	}
	return out
}

// DeriveParams holds the coefficients used to compute derived constants.
type DeriveParams struct {
	HungerPerSize    float32 // Hunger lost per tick per unit of size
	HungerPerSpeed   float32 // Hunger lost per tick per unit of speed
	MaxHungerPerSize float32
	RegenFraction    float32 // Fraction of base health regenerated per tick
	TicksPerDay      int32
}

// Derived holds constants computed once from the genome.
type Derived struct {
	HungerRate    float32
	MaxHunger     float32
	HealthRegen   float32
	SleepDuration int32
}

// Derive computes the derived constants of a genome.
func Derive(g Genome, p DeriveParams) Derived {
	d := Derived{
		HungerRate:  p.HungerPerSize*g.Size + p.HungerPerSpeed*g.Speed,
		MaxHunger:   p.MaxHungerPerSize * g.Size,
		HealthRegen: p.RegenFraction * g.BaseHealth,
	}
	if d.MaxHunger <= 0 {
		d.MaxHunger = 1
	}
	if p.TicksPerDay > 0 {
		if g.SleepEnd >= g.SleepStart {
			d.SleepDuration = g.SleepEnd - g.SleepStart
		} else {
			d.SleepDuration = p.TicksPerDay - g.SleepStart + g.SleepEnd
		}
	}
	return d
}

// Agent is one simulated creature.
type Agent struct {
	ID      uint32
	Genome  Genome
	Derived Derived

	Hunger float32 // Satiety left; 0 means starving
	Health float32
	Age    int32

	Cooldowns      [NumActionKinds]int32 // Ticks until each kind may run again
	GlobalCooldown int32                 // Ticks until any action may run again
	Current        ActionKind            // Last action started, for observers

	Alive      bool
	Invincible bool
	Sleeping   bool
	SleepTicks int32
	Cause      DeathCause
}

// New creates a live agent from a genome. The genome receives its random
// variation here, once; pass a nil rng to use it unchanged.
func New(id uint32, g Genome, p DeriveParams, rng *rand.Rand, variation float64) *Agent {
	g = g.Vary(rng, variation)
	d := Derive(g, p)
	return &Agent{
		ID:      id,
		Genome:  g,
		Derived: d,
		Hunger:  d.MaxHunger,
		Health:  g.BaseHealth,
		Alive:   true,
	}
}

// MaxHealth returns the health ceiling.
func (a *Agent) MaxHealth() float32 {
	return a.Genome.BaseHealth
}

// Satiety returns hunger as a fraction of max hunger in [0, 1].
func (a *Agent) Satiety() float32 {
	if a.Derived.MaxHunger <= 0 {
		return 0
	}
	return clamp(a.Hunger/a.Derived.MaxHunger, 0, 1)
}

// Mature reports whether the agent is old enough to mate.
func (a *Agent) Mature() bool {
	return a.Age >= a.Genome.MaturityAge
}

// Dead reports whether the agent has died.
func (a *Agent) Dead() bool {
	return !a.Alive
}

// Die marks the agent dead. Returns false if it was already dead.
func (a *Agent) Die(cause DeathCause) bool {
	if !a.Alive {
		return false
	}
	a.Alive = false
	a.Sleeping = false
	a.Cause = cause
	return true
}

// Ready reports whether the kind is off cooldown.
func (a *Agent) Ready(kind ActionKind) bool {
	if kind >= NumActionKinds {
		return false
	}
	return a.Cooldowns[kind] == 0
}

// InSleepWindow reports whether tickOfDay falls inside the sleep window.
// A window whose end precedes its start wraps past midnight.
func (a *Agent) InSleepWindow(tickOfDay int32) bool {
	s, e := a.Genome.SleepStart, a.Genome.SleepEnd
	if s == e {
		return false
	}
	if s < e {
		return tickOfDay >= s && tickOfDay < e
	}
	return tickOfDay >= s || tickOfDay < e
}

// Sleep puts the agent to sleep for the given number of ticks.
func (a *Agent) Sleep(ticks int32) {
	if !a.Alive || ticks <= 0 {
		return
	}
	a.Sleeping = true
	a.SleepTicks = ticks
}

// Wake ends sleep early.
func (a *Agent) Wake() {
	a.Sleeping = false
	a.SleepTicks = 0
}

// Feed adds up to amount hunger points and returns how much was taken.
func (a *Agent) Feed(amount float32) float32 {
	if !a.Alive || amount <= 0 {
		return 0
	}
	room := a.Derived.MaxHunger - a.Hunger
	if room <= 0 {
		return 0
	}
	if amount > room {
		amount = room
	}
	a.Hunger += amount
	return amount
}

// Damage removes health and kills the agent when it reaches 0.
// Returns true if this call killed it.
func (a *Agent) Damage(amount float32) bool {
	if !a.Alive || amount <= 0 {
		return false
	}
	a.Wake()
	a.Health = clamp(a.Health-amount, 0, a.MaxHealth())
	if a.Health <= 0 && !a.Invincible {
		return a.Die(CauseInjury)
	}
	return false
}

func clamp(v, lo, hi float32) float32 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
