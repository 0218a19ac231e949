package telemetry

import (
	"math"

	"github.com/pthm-cable/fauna/agent"
)

// Collector accumulates events within time windows and produces WindowStats.
type Collector struct {
	windowDurationSec   float64
	windowDurationTicks int64
	dt                  float32

	// Current window tracking
	windowStartTick int64

	// Event counters for current window
	births      int
	deaths      [len(causeColumns)]int
	attacks     int
	kills       int
	foodEaten   float64
	pathsFailed int
	arrivals    int
	actions     [agent.NumActionKinds]int
}

// causeColumns lists the death causes that get their own column.
var causeColumns = [...]agent.DeathCause{
	agent.CauseStarvation,
	agent.CauseInjury,
	agent.CauseOldAge,
	agent.CauseDespawn,
}

// NewCollector creates a new stats collector.
// windowDurationSec: how long each stats window lasts in simulation seconds
// dt: seconds per tick (used for tick-to-time conversion)
func NewCollector(windowDurationSec float64, dt float32) *Collector {
	ticksPerWindow := int64(math.Round(windowDurationSec / float64(dt)))
	if ticksPerWindow < 1 {
		ticksPerWindow = 1
	}

	return &Collector{
		windowDurationSec:   windowDurationSec,
		windowDurationTicks: ticksPerWindow,
		dt:                  dt,
	}
}

// Record counts one event.
func (c *Collector) Record(e Event) {
	switch e.Type {
	case EventActionStarted:
		if e.Action < agent.NumActionKinds {
			c.actions[e.Action]++
		}
	case EventAttack:
		c.attacks++
	case EventKill:
		c.kills++
	case EventBirth:
		c.births++
	case EventDeath:
		for i, cause := range causeColumns {
			if cause == e.Cause {
				c.deaths[i]++
			}
		}
	case EventForage:
		c.foodEaten += float64(e.Amount)
	case EventPathFailed:
		c.pathsFailed++
	case EventArrival:
		c.arrivals++
	}
}

// ShouldFlush returns true if enough ticks have passed to flush the window.
func (c *Collector) ShouldFlush(currentTick int64) bool {
	return currentTick-c.windowStartTick >= c.windowDurationTicks
}

// Sample is the state of the world at the end of a window.
type Sample struct {
	Population int
	Species    map[uint16]int
	Satiety    []float64
	Health     []float64
	Age        []float64

	Sleeping         int
	Busy             int
	PendingCallbacks int
	StuckMovers      int

	PlantFood    float64
	CarrionItems int
}

// Flush produces a WindowStats and resets counters for the next window.
func (c *Collector) Flush(currentTick int64, s Sample) WindowStats {
	satiety := Summarize(s.Satiety)
	health := Summarize(s.Health)
	age := Summarize(s.Age)

	var deaths int
	for _, n := range c.deaths {
		deaths += n
	}
	var killRate float64
	if c.attacks > 0 {
		killRate = float64(c.kills) / float64(c.attacks)
	}

	stats := WindowStats{
		WindowStartTick: c.windowStartTick,
		WindowEndTick:   currentTick,
		SimTimeSec:      float64(currentTick) * float64(c.dt),

		Population: s.Population,
		Species:    len(s.Species),

		Births:           c.births,
		Deaths:           deaths,
		DeathsStarvation: c.deaths[0],
		DeathsInjury:     c.deaths[1],
		DeathsOldAge:     c.deaths[2],
		DeathsDespawn:    c.deaths[3],

		Attacks:   c.attacks,
		Kills:     c.kills,
		KillRate:  killRate,
		FoodEaten: c.foodEaten,

		PathsFailed: c.pathsFailed,
		Arrivals:    c.arrivals,

		ActWander: c.actions[agent.ActionWander],
		ActForage: c.actions[agent.ActionForage],
		ActHunt:   c.actions[agent.ActionHunt],
		ActFlee:   c.actions[agent.ActionFlee],
		ActSleep:  c.actions[agent.ActionSleep],
		ActMate:   c.actions[agent.ActionMate],

		Sleeping:         s.Sleeping,
		Busy:             s.Busy,
		PendingCallbacks: s.PendingCallbacks,
		StuckMovers:      s.StuckMovers,

		PlantFood:    s.PlantFood,
		CarrionItems: s.CarrionItems,

		SatietyMean: satiety.Mean,
		SatietyP10:  satiety.P10,
		SatietyP50:  satiety.P50,
		SatietyP90:  satiety.P90,

		HealthMean: health.Mean,
		HealthStd:  health.Std,
		AgeMean:    age.Mean,
		AgeP90:     age.P90,
	}

	// Reset for next window
	c.windowStartTick = currentTick
	c.births = 0
	c.deaths = [len(causeColumns)]int{}
	c.attacks = 0
	c.kills = 0
	c.foodEaten = 0
	c.pathsFailed = 0
	c.arrivals = 0
	c.actions = [agent.NumActionKinds]int{}

	return stats
}

// WindowDurationTicks returns the number of ticks per window.
func (c *Collector) WindowDurationTicks() int64 {
	return c.windowDurationTicks
}
