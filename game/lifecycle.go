package game

import (
	"math"

	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/fauna/agent"
	"github.com/pthm-cable/fauna/behavior"
	"github.com/pthm-cable/fauna/components"
	"github.com/pthm-cable/fauna/systems"
	"github.com/pthm-cable/fauna/telemetry"
)

// maxPlacementTries bounds the search for a passable spawn point.
const maxPlacementTries = 64

// spawnInitialPopulation creates every species' founders at random
// passable positions.
func (s *Sim) spawnInitialPopulation() {
	for i, sp := range s.cfg.Species {
		for n := 0; n < sp.Count; n++ {
			pos, ok := s.randomOpenPosition()
			if !ok {
				s.logger.Warn("no passable spawn point", "species", sp.Name)
				return
			}
			s.spawn(s.genomes[i], pos, 0)
		}
	}
}

// spawnInitialFood scatters plant patches over passable ground.
func (s *Sim) spawnInitialFood() {
	amount := float32(s.cfg.Food.PlantAmount)
	for i := 0; i < s.cfg.Food.Plants; i++ {
		pos, ok := s.randomOpenPosition()
		if !ok {
			return
		}
		s.spawnFood(pos, components.Food{
			Kind:   components.FoodPlant,
			Amount: amount,
			Max:    amount,
			Regrow: float32(s.cfg.Food.PlantRegrow),
		})
	}
}

// spawn creates a creature from g, applying per-instance variation, and
// schedules its per-tick callback. Founders pass parentID 0.
func (s *Sim) spawn(g agent.Genome, pos components.Position, parentID uint32) *creature {
	s.nextID++
	id := s.nextID

	a := agent.New(id, g, s.deriveParams, s.rng, s.cfg.Agent.Variation)
	if idx := int(g.Species) - 1; idx >= 0 && idx < len(s.cfg.Species) {
		a.Invincible = s.cfg.Species[idx].Invincible
	}

	vel := components.Velocity{}
	motion := components.Motion{}
	cr := components.Creature{ID: id, Species: g.Species}
	entity := s.creatureMapper.NewEntity(&pos, &vel, &motion, &cr)

	c := &creature{agent: a, entity: entity}
	c.machine = behavior.NewMachine(a, s, s.selector, s.dispatcher, behavior.MachineOptions{
		GlobalCooldown: int32(s.cfg.Sim.GlobalCooldown),
		Logger:         s.logger,
	})
	c.handle = s.scheduler.Register(s.think(c))
	s.creatures[id] = c

	s.lifetime.Register(id, g.Species, s.Tick(), parentID)
	return c
}

// spawnFood places one food item.
func (s *Sim) spawnFood(pos components.Position, food components.Food) ecs.Entity {
	return s.foodMapper.NewEntity(&pos, &food)
}

// kill stops a dead creature's behavior and queues it for removal. Safe to
// call more than once.
func (s *Sim) kill(c *creature) {
	if c.dying {
		return
	}
	c.dying = true
	c.machine.Shutdown()
	s.record(telemetry.NewDeathEvent(s.Tick(), c.agent))
	s.dying = append(s.dying, c)
}

// cleanupDead removes queued creatures, leaving carrion where they fell.
func (s *Sim) cleanupDead() {
	tick := s.Tick()
	for _, c := range s.dying {
		pos := *s.posMap.Get(c.entity)

		s.scheduler.Unregister(c.handle)
		if stats := s.lifetime.Remove(c.agent.ID); stats != nil {
			if err := s.output.WriteDeath(stats.ToRecord(c.agent, tick)); err != nil {
				s.logger.Error("failed to write death", "error", err)
			}
		}
		s.creatureMapper.Remove(c.entity)
		delete(s.creatures, c.agent.ID)

		s.dropCarrion(pos, c.agent.Genome.Size)
	}
	clear(s.dying)
	s.dying = s.dying[:0]
}

// dropCarrion leaves a carcass that rots away.
func (s *Sim) dropCarrion(pos components.Position, size float32) {
	amount := size * float32(s.cfg.Food.CarrionPerSize)
	if amount <= 0 {
		return
	}
	s.spawnFood(pos, components.Food{
		Kind:   components.FoodCarrion,
		Amount: amount,
		Max:    amount,
		Regrow: -float32(s.cfg.Food.CarrionDecay),
	})
}

// randomOpenPosition picks a uniformly random point on passable ground.
func (s *Sim) randomOpenPosition() (components.Position, bool) {
	for i := 0; i < maxPlacementTries; i++ {
		cell := systems.Cell{
			X: s.rng.Intn(s.terrain.Width()),
			Y: s.rng.Intn(s.terrain.Height()),
		}
		if s.terrain.IsBlocked(cell) {
			continue
		}
		return s.jitter(s.terrain.CellToWorld(cell), s.terrain.CellSize()/2), true
	}
	return components.Position{}, false
}

// nearbyOpenPosition returns a passable point within radius of origin, or
// origin itself when none is found.
func (s *Sim) nearbyOpenPosition(origin components.Position, radius float32) components.Position {
	for i := 0; i < 8; i++ {
		p := s.jitter(origin, radius)
		if s.inWorld(p) && !s.terrain.IsBlockedWorld(p) {
			return p
		}
	}
	return origin
}

// jitter returns a uniformly random point in the disc of radius r around p.
func (s *Sim) jitter(p components.Position, r float32) components.Position {
	angle := s.rng.Float64() * 2 * math.Pi
	dist := float64(r) * math.Sqrt(s.rng.Float64())
	return components.Position{
		X: p.X + float32(dist*math.Cos(angle)),
		Y: p.Y + float32(dist*math.Sin(angle)),
	}
}

func (s *Sim) inWorld(p components.Position) bool {
	return p.X >= 0 && p.Y >= 0 && p.X < s.cfg.Derived.WorldW32 && p.Y < s.cfg.Derived.WorldH32
}
