package systems

import (
	"testing"

	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/fauna/components"
)

func newMover(w *ecs.World, pos components.Position, m components.Motion) ecs.Entity {
	mapper := ecs.NewMap3[components.Position, components.Velocity, components.Motion](w)
	vel := components.Velocity{}
	return mapper.NewEntity(&pos, &vel, &m)
}

func TestMovementArrivesAfterWaypoints(t *testing.T) {
	w := ecs.NewWorld()
	e := newMover(w, components.Position{}, components.Motion{
		Waypoints: []components.Position{{X: 3, Y: 0}, {X: 3, Y: 4}},
		Request:   7,
		Speed:     2,
	})
	sys := NewMovementSystem(w, DefaultMovementParams())

	var got []Arrival
	record := func(a Arrival) { got = append(got, a) }

	// Route length is 7 at 2 units per second.
	for i := 0; i < 3; i++ {
		sys.Update(1, record)
	}
	if len(got) != 0 {
		t.Fatalf("arrived after 6 units of travel: %+v", got)
	}
	sys.Update(1, record)
	if len(got) != 1 {
		t.Fatalf("arrivals = %d, want 1", len(got))
	}
	if got[0].Request != 7 || got[0].Entity != e {
		t.Errorf("arrival = %+v, want request 7 for the mover", got[0])
	}
	if got[0].At != (components.Position{X: 3, Y: 4}) {
		t.Errorf("arrived at %+v, want final waypoint", got[0].At)
	}

	motion := ecs.NewMap1[components.Motion](w).Get(e)
	if motion.Active() || motion.Request != 0 {
		t.Errorf("motion not cleared after arrival: %+v", motion)
	}

	// Idle entities never report again.
	if n := sys.Update(1, record); n != 0 {
		t.Errorf("idle update reported %d arrivals", n)
	}
}

func TestMovementCallbackMaySpawn(t *testing.T) {
	w := ecs.NewWorld()
	newMover(w, components.Position{}, components.Motion{
		Waypoints: []components.Position{{X: 1, Y: 0}},
		Request:   1,
		Speed:     10,
	})
	sys := NewMovementSystem(w, DefaultMovementParams())

	spawned := 0
	sys.Update(1, func(a Arrival) {
		newMover(w, a.At, components.Motion{})
		spawned++
	})
	if spawned != 1 {
		t.Fatalf("spawned = %d, want 1", spawned)
	}
}

func TestMovementStuckCounter(t *testing.T) {
	w := ecs.NewWorld()
	e := newMover(w, components.Position{}, components.Motion{
		Waypoints: []components.Position{{X: 100, Y: 0}},
		Request:   1,
		Speed:     1,
	})
	sys := NewMovementSystem(w, DefaultMovementParams())
	motions := ecs.NewMap1[components.Motion](w)

	sys.Update(1, nil)
	sys.Update(1, nil)
	if s := motions.Get(e).StuckTicks; s != 0 {
		t.Fatalf("moving entity counted as stuck: %d", s)
	}

	// Zero speed makes no progress.
	motions.Get(e).Speed = 0
	sys.Update(1, nil)
	sys.Update(1, nil)
	if s := motions.Get(e).StuckTicks; s != 2 {
		t.Errorf("stuck ticks = %d, want 2", s)
	}
}
