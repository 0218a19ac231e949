package behavior

import (
	"math"

	"github.com/pthm-cable/fauna/components"
	"github.com/pthm-cable/fauna/systems"
)

// Targeter picks what an action is aimed at.
type Targeter interface {
	Target(a *Actor) (systems.Target, bool)
}

// TargeterFunc adapts a function to Targeter.
type TargeterFunc func(a *Actor) (systems.Target, bool)

func (f TargeterFunc) Target(a *Actor) (systems.Target, bool) { return f(a) }

// Nearest targets the closest match of the query built for the actor.
func Nearest(query func(a *Actor) systems.TargetQuery) Targeter {
	return TargeterFunc(func(a *Actor) (systems.Target, bool) {
		visible := a.Visible(query(a))
		if len(visible) == 0 {
			return systems.Target{}, false
		}
		return visible[0], true
	})
}

// RandomSpot targets a random reachable point within the perception range.
func RandomSpot() Targeter {
	return TargeterFunc(func(a *Actor) (systems.Target, bool) {
		pos, ok := a.World.RandomDestination(a.Agent, a.Agent.Genome.PerceptionRange)
		if !ok {
			return systems.Target{}, false
		}
		return systems.Target{Pos: pos}, true
	})
}

// AwayFrom targets a point one perception range away from the centroid of
// the matches of query, on the far side of the actor.
func AwayFrom(query func(a *Actor) systems.TargetQuery) Targeter {
	return TargeterFunc(func(a *Actor) (systems.Target, bool) {
		threats := a.Visible(query(a))
		if len(threats) == 0 {
			return systems.Target{}, false
		}
		pos, ok := a.World.Position(a.Agent)
		if !ok {
			return systems.Target{}, false
		}

		var cx, cy float32
		for _, t := range threats {
			cx += t.Pos.X
			cy += t.Pos.Y
		}
		n := float32(len(threats))
		dx := pos.X - cx/n
		dy := pos.Y - cy/n
		dist := float32(math.Hypot(float64(dx), float64(dy)))
		if dist < 1e-3 {
			// Standing on the centroid: pick any direction.
			angle := a.World.Rand().Float64() * 2 * math.Pi
			dx, dy = float32(math.Cos(angle)), float32(math.Sin(angle))
			dist = 1
		}

		r := a.Agent.Genome.PerceptionRange
		dest := components.Position{X: pos.X + dx/dist*r, Y: pos.Y + dy/dist*r}
		return systems.Target{Pos: dest}, true
	})
}

// ArriveFunc runs when an approaching actor reaches its target.
type ArriveFunc func(a *Actor, ctx *Context, target systems.Target)

// Approach builds an effect that walks to the target picked by t and runs
// arrive there. The context is cancelled when there is no target or no
// route to it.
func Approach(t Targeter, arrive ArriveFunc) func(a *Actor, ctx *Context) {
	return func(a *Actor, ctx *Context) {
		target, ok := t.Target(a)
		if !ok {
			ctx.Cancel()
			return
		}
		moved := ctx.MoveTo(target.Pos, func(components.Position) {
			if arrive != nil {
				arrive(a, ctx, target)
			}
			ctx.Complete()
		})
		if !moved {
			ctx.Cancel()
		}
	}
}
