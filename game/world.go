package game

import (
	"math"
	"math/rand"

	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/fauna/agent"
	"github.com/pthm-cable/fauna/behavior"
	"github.com/pthm-cable/fauna/components"
	"github.com/pthm-cable/fauna/systems"
	"github.com/pthm-cable/fauna/telemetry"
)

var _ behavior.World = (*Sim)(nil)

// goalSearchRadius bounds how far Navigate looks for open ground around a
// blocked destination, in cells.
const goalSearchRadius = 4

// live returns the creature record of a, or nil once it has been removed.
func (s *Sim) live(a *agent.Agent) *creature {
	c := s.creatures[a.ID]
	if c == nil || !s.world.Alive(c.entity) {
		return nil
	}
	return c
}

// creatureAt returns the live creature behind an entity.
func (s *Sim) creatureAt(e ecs.Entity) *creature {
	if !s.world.Alive(e) || !s.creatureMap.HasAll(e) {
		return nil
	}
	c := s.creatures[s.creatureMap.Get(e).ID]
	if c == nil || c.agent.Dead() {
		return nil
	}
	return c
}

// within reports whether a is close enough to p to interact with it.
func (s *Sim) within(a *agent.Agent, p components.Position) bool {
	pos, ok := s.Position(a)
	if !ok {
		return false
	}
	reach := s.cfg.Agent.Reach
	return math.Hypot(float64(p.X-pos.X), float64(p.Y-pos.Y)) <= reach
}

// HasTarget implements behavior.Perception.
func (s *Sim) HasTarget(a *agent.Agent, q systems.TargetQuery) bool {
	pos, ok := s.Position(a)
	if !ok {
		return false
	}
	q.Exclude = a.ID
	return s.spatial.Has(pos, a.Genome.PerceptionRange, q)
}

// CountTargets implements behavior.Perception.
func (s *Sim) CountTargets(a *agent.Agent, q systems.TargetQuery) int {
	pos, ok := s.Position(a)
	if !ok {
		return 0
	}
	q.Exclude = a.ID
	return s.spatial.Count(pos, a.Genome.PerceptionRange, q)
}

// Targets implements behavior.Perception.
func (s *Sim) Targets(a *agent.Agent, q systems.TargetQuery) []systems.Target {
	pos, ok := s.Position(a)
	if !ok {
		return nil
	}
	q.Exclude = a.ID
	return s.spatial.Sorted(pos, a.Genome.PerceptionRange, q)
}

// Position returns where a currently stands.
func (s *Sim) Position(a *agent.Agent) (components.Position, bool) {
	c := s.live(a)
	if c == nil {
		return components.Position{}, false
	}
	return *s.posMap.Get(c.entity), true
}

// RandomDestination picks a passable point inside the world within radius
// of a.
func (s *Sim) RandomDestination(a *agent.Agent, radius float32) (components.Position, bool) {
	pos, ok := s.Position(a)
	if !ok || radius <= 0 {
		return components.Position{}, false
	}
	for i := 0; i < 8; i++ {
		p := s.jitter(pos, radius)
		if s.inWorld(p) && !s.terrain.IsBlockedWorld(p) {
			return p, true
		}
	}
	return components.Position{}, false
}

// Navigate plans a route from a's position to dest and hands it to the
// movement system. A blocked destination is moved to the nearest open
// cell. The route always has at least one waypoint, so req fires through
// the movement system even when a already stands in the goal cell.
func (s *Sim) Navigate(a *agent.Agent, dest components.Position, req components.RequestID) bool {
	c := s.live(a)
	if c == nil {
		return false
	}
	pos := *s.posMap.Get(c.entity)

	start, ok := s.terrain.NearestOpen(s.terrain.WorldToCell(pos), goalSearchRadius)
	if !ok {
		s.record(telemetry.NewPathFailedEvent(s.Tick(), a))
		return false
	}
	destCell := s.terrain.WorldToCell(dest)
	goal, ok := s.terrain.NearestOpen(destCell, goalSearchRadius)
	if !ok {
		s.record(telemetry.NewPathFailedEvent(s.Tick(), a))
		return false
	}

	path, ok := s.pathfinder.FindPath(systems.PathRequest{Start: start, Goal: goal, Cost: s.terrain.Cost})
	if !ok {
		s.record(telemetry.NewPathFailedEvent(s.Tick(), a))
		return false
	}

	waypoints := s.terrain.Waypoints(path)
	final := s.terrain.CellToWorld(goal)
	if goal == destCell {
		final = dest
	}
	if n := len(waypoints); n > 0 {
		waypoints[n-1] = final
	} else {
		waypoints = append(waypoints, final)
	}

	m := s.motionMap.Get(c.entity)
	m.Clear()
	m.Waypoints = waypoints
	m.Request = req
	m.Speed = a.Genome.Speed
	return true
}

// Halt drops a's route and stops it.
func (s *Sim) Halt(a *agent.Agent) {
	c := s.live(a)
	if c == nil {
		return
	}
	s.motionMap.Get(c.entity).Clear()
	vel := s.velMap.Get(c.entity)
	vel.X, vel.Y = 0, 0
}

// Eat takes one bite of a food item within reach. Returns the hunger points
// gained.
func (s *Sim) Eat(a *agent.Agent, food ecs.Entity) float32 {
	if !s.world.Alive(food) || !s.foodMap.HasAll(food) {
		return 0
	}
	if !a.Genome.Eats(s.foodMap.Get(food).Kind) || !s.within(a, *s.posMap.Get(food)) {
		return 0
	}

	f := s.foodMap.Get(food)
	bite := min(f.Amount, float32(s.cfg.Agent.BiteSize))
	taken := a.Feed(bite)
	if taken <= 0 {
		return 0
	}
	f.Amount -= taken
	s.record(telemetry.NewForageEvent(s.Tick(), a, taken))
	return taken
}

// Attack strikes a creature within reach with a's attack power.
func (s *Sim) Attack(a *agent.Agent, target ecs.Entity) (killed bool) {
	victim := s.creatureAt(target)
	if victim == nil || victim.agent.ID == a.ID || a.Genome.AttackPower <= 0 {
		return false
	}
	if !s.within(a, *s.posMap.Get(target)) {
		return false
	}

	tick := s.Tick()
	damage := a.Genome.AttackPower
	killed = victim.agent.Damage(damage)
	s.record(telemetry.NewAttackEvent(tick, a, victim.agent.ID, damage))
	if killed {
		s.record(telemetry.NewKillEvent(tick, a, victim.agent.ID))
		s.kill(victim)
	}
	return killed
}

// Reproduce spawns a child of a next to it when mate is a mature partner of
// the same species within reach. The parent pays sim birth cost in hunger.
func (s *Sim) Reproduce(a *agent.Agent, mate ecs.Entity) bool {
	partner := s.creatureAt(mate)
	if partner == nil || partner.agent.ID == a.ID {
		return false
	}
	if partner.agent.Genome.Species != a.Genome.Species || !partner.agent.Mature() || !a.Mature() {
		return false
	}
	if limit := s.cfg.Sim.MaxPopulation; limit > 0 && s.Population() >= limit {
		return false
	}
	pos, ok := s.Position(a)
	if !ok || !s.within(a, *s.posMap.Get(mate)) {
		return false
	}

	cost := float32(s.cfg.Agent.BirthCost) * a.Derived.MaxHunger
	if a.Hunger <= cost {
		return false
	}
	a.Hunger -= cost

	childPos := s.nearbyOpenPosition(pos, float32(s.cfg.Agent.Reach))
	child := s.spawn(a.Genome, childPos, a.ID)
	s.record(telemetry.NewBirthEvent(s.Tick(), child.agent, a.ID))
	return true
}

// Rand returns the simulation's random source.
func (s *Sim) Rand() *rand.Rand {
	return s.rng
}

// TickOfDay returns the position of the current tick in the day cycle.
func (s *Sim) TickOfDay() int32 {
	day := int64(s.cfg.Sim.TicksPerDay)
	if day <= 0 {
		return 0
	}
	return int32(s.Tick() % day)
}
