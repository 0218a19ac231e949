// Package behavior decides what each creature does next.
//
// A Registry maps every action kind to its Definition. The Selector ranks
// the kinds an agent is eligible for by weight and rolls their success
// checks, falling back to the next best kind on failure. The Machine owns at
// most one live Context per agent and bridges the synchronous decision with
// asynchronous movement through request ids held by a Dispatcher.
package behavior

import (
	"math/rand"

	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/fauna/agent"
	"github.com/pthm-cable/fauna/components"
	"github.com/pthm-cable/fauna/systems"
)

// UnsetCooldown marks a definition whose cooldown was never configured.
const UnsetCooldown int32 = -1

// Definition is the behavior registered for one action kind.
// Nil functions default to: always eligible, weight 0, always succeeds,
// no effect.
type Definition struct {
	Kind     agent.ActionKind
	Cooldown int32 // Ticks before the kind may run again, or UnsetCooldown

	Condition func(a *Actor) bool
	Weight    func(a *Actor) float64
	Succeeds  func(a *Actor) bool
	Effect    func(a *Actor, ctx *Context)
}

// Perception answers read-only questions about what an agent can see.
// Every query is scoped to the agent's perception range and never returns
// the agent itself.
type Perception interface {
	HasTarget(a *agent.Agent, q systems.TargetQuery) bool
	CountTargets(a *agent.Agent, q systems.TargetQuery) int
	// Targets returns matches sorted by distance, nearest first.
	Targets(a *agent.Agent, q systems.TargetQuery) []systems.Target
}

// World is everything the host provides to actions.
type World interface {
	Perception

	Position(a *agent.Agent) (components.Position, bool)
	// RandomDestination picks a reachable point within radius of the agent.
	RandomDestination(a *agent.Agent, radius float32) (components.Position, bool)
	// Navigate plans a route to dest and starts the agent walking it. The
	// movement integrator fires req on arrival. Returns false when there
	// is no path.
	Navigate(a *agent.Agent, dest components.Position, req components.RequestID) bool
	// Halt drops the agent's current route.
	Halt(a *agent.Agent)

	Eat(a *agent.Agent, food ecs.Entity) float32
	Attack(a *agent.Agent, target ecs.Entity) (killed bool)
	Reproduce(a *agent.Agent, mate ecs.Entity) bool

	Rand() *rand.Rand
	Tick() int64
	TickOfDay() int32
}

// Actor is the view an action has of its agent.
type Actor struct {
	Agent *agent.Agent
	World World
}

// query fills in the self exclusion.
func (a *Actor) query(q systems.TargetQuery) systems.TargetQuery {
	q.Exclude = a.Agent.ID
	return q
}

// Sees reports whether anything matching q is in range.
func (a *Actor) Sees(q systems.TargetQuery) bool {
	return a.World.HasTarget(a.Agent, a.query(q))
}

// Count returns how many matches of q are in range.
func (a *Actor) Count(q systems.TargetQuery) int {
	return a.World.CountTargets(a.Agent, a.query(q))
}

// Visible returns the matches of q in range, nearest first.
func (a *Actor) Visible(q systems.TargetQuery) []systems.Target {
	return a.World.Targets(a.Agent, a.query(q))
}

// Roll returns true with probability p.
func (a *Actor) Roll(p float64) bool {
	if p >= 1 {
		return true
	}
	if p <= 0 {
		return false
	}
	return a.World.Rand().Float64() < p
}

// Queries used by the built-in actions.

func foodQuery(a *agent.Agent) systems.TargetQuery {
	return systems.TargetQuery{Food: a.Genome.Diet}
}

func preyQuery(a *agent.Agent) systems.TargetQuery {
	return systems.TargetQuery{Species: a.Genome.Prey}
}

func predatorQuery(a *agent.Agent) systems.TargetQuery {
	return systems.TargetQuery{Species: a.Genome.Predators}
}

func kinQuery(a *agent.Agent) systems.TargetQuery {
	return systems.TargetQuery{Species: []uint16{a.Genome.Species}}
}
