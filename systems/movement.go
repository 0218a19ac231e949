package systems

import (
	"math"

	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/fauna/components"
)

// MovementParams holds tunable parameters for waypoint following.
type MovementParams struct {
	ArrivalTolerance float32 // Distance at which a waypoint counts as reached
	StuckEpsilon     float32 // Minimum progress per substep before counting as stuck
}

// DefaultMovementParams returns sensible defaults for movement.
func DefaultMovementParams() MovementParams {
	return MovementParams{
		ArrivalTolerance: 0.5,
		StuckEpsilon:     0.01,
	}
}

// Arrival is a completed route.
type Arrival struct {
	Entity  ecs.Entity
	Request components.RequestID
	At      components.Position
}

// ArriveFunc receives each completed route.
type ArriveFunc func(Arrival)

// MovementSystem moves entities along their Motion waypoints. It runs at a
// higher rate than decisions, several substeps per tick.
type MovementSystem struct {
	filter   *ecs.Filter3[components.Position, components.Velocity, components.Motion]
	params   MovementParams
	arrivals []Arrival
}

// NewMovementSystem creates a movement system.
func NewMovementSystem(w *ecs.World, params MovementParams) *MovementSystem {
	return &MovementSystem{
		filter: ecs.NewFilter3[components.Position, components.Velocity, components.Motion](w),
		params: params,
	}
}

// Update advances every route by dt seconds and then hands completed routes
// to arrive. Arrivals are delivered after the query has closed, so arrive may
// create or remove entities.
func (s *MovementSystem) Update(dt float32, arrive ArriveFunc) int {
	s.arrivals = s.arrivals[:0]

	query := s.filter.Query()
	for query.Next() {
		pos, vel, motion := query.Get()
		if !motion.Active() {
			vel.X, vel.Y = 0, 0
			continue
		}
		if s.step(pos, vel, motion, dt) {
			s.arrivals = append(s.arrivals, Arrival{
				Entity:  query.Entity(),
				Request: motion.Request,
				At:      *pos,
			})
			motion.Clear()
		}
	}

	if arrive != nil {
		for _, a := range s.arrivals {
			arrive(a)
		}
	}
	return len(s.arrivals)
}

// step moves one entity. Returns true when the final waypoint is reached.
func (s *MovementSystem) step(pos *components.Position, vel *components.Velocity, m *components.Motion, dt float32) bool {
	budget := m.Speed * dt
	tol := s.params.ArrivalTolerance
	startX, startY := pos.X, pos.Y

	for m.Active() {
		wp := m.Waypoints[m.Index]
		dx := wp.X - pos.X
		dy := wp.Y - pos.Y
		dist := float32(math.Sqrt(float64(dx*dx + dy*dy)))

		if dist <= tol {
			m.Index++
			m.LastDist = 0
			continue
		}
		if budget <= 0 {
			s.trackProgress(m, dist)
			break
		}
		if budget >= dist {
			pos.X, pos.Y = wp.X, wp.Y
			budget -= dist
			m.Index++
			m.LastDist = 0
			continue
		}
		pos.X += dx / dist * budget
		pos.Y += dy / dist * budget
		s.trackProgress(m, dist-budget)
		budget = 0
		break
	}

	if dt > 0 {
		vel.X = (pos.X - startX) / dt
		vel.Y = (pos.Y - startY) / dt
	}
	return !m.Active()
}

// trackProgress counts consecutive substeps without meaningful progress.
// Nothing reacts to the counter yet; it is exposed for telemetry.
func (s *MovementSystem) trackProgress(m *components.Motion, dist float32) {
	if m.LastDist > 0 && m.LastDist-dist < s.params.StuckEpsilon {
		m.StuckTicks++
	} else {
		m.StuckTicks = 0
	}
	m.LastDist = dist
}
