package behavior

import (
	"log/slog"

	"github.com/pthm-cable/fauna/agent"
	"github.com/pthm-cable/fauna/systems"
)

// Tuning holds the configurable numbers of one built-in action.
type Tuning struct {
	Cooldown  int32   // Ticks, or UnsetCooldown
	Weight    float64 // Base weight before scaling
	Success   float64 // Probability that the success check passes
	Threshold float64 // Satiety gate; meaning depends on the action
}

// DefaultTuning is used for kinds missing from the configuration.
func DefaultTuning() Tuning {
	return Tuning{Cooldown: UnsetCooldown, Weight: 1, Success: 1, Threshold: 1}
}

// NewDefaultRegistry registers every built-in action with the given
// tunings. Kinds without a tuning use DefaultTuning.
func NewDefaultRegistry(tunings map[agent.ActionKind]Tuning, logger *slog.Logger) *Registry {
	r := NewRegistry(logger)
	tune := func(k agent.ActionKind) Tuning {
		if t, ok := tunings[k]; ok {
			return t
		}
		return DefaultTuning()
	}

	r.Register(Wander(tune(agent.ActionWander)))
	r.Register(Forage(tune(agent.ActionForage)))
	r.Register(Hunt(tune(agent.ActionHunt)))
	r.Register(Flee(tune(agent.ActionFlee)))
	r.Register(Sleep(tune(agent.ActionSleep)))
	r.Register(Mate(tune(agent.ActionMate)))
	return r
}

func awake(a *Actor) bool { return !a.Agent.Sleeping }

// Wander walks to a random nearby spot.
func Wander(t Tuning) Definition {
	return Definition{
		Kind:      agent.ActionWander,
		Cooldown:  t.Cooldown,
		Condition: awake,
		Weight:    func(*Actor) float64 { return t.Weight },
		Succeeds:  func(a *Actor) bool { return a.Roll(t.Success) },
		Effect:    Approach(RandomSpot(), nil),
	}
}

// Forage walks to the nearest edible food and eats it. Hungrier agents
// forage more eagerly.
func Forage(t Tuning) Definition {
	query := func(a *Actor) systems.TargetQuery { return foodQuery(a.Agent) }
	return Definition{
		Kind:     agent.ActionForage,
		Cooldown: t.Cooldown,
		Condition: func(a *Actor) bool {
			return awake(a) &&
				len(a.Agent.Genome.Diet) > 0 &&
				float64(a.Agent.Satiety()) < t.Threshold &&
				a.Sees(query(a))
		},
		Weight: func(a *Actor) float64 {
			return t.Weight * (1 - float64(a.Agent.Satiety()))
		},
		Succeeds: func(a *Actor) bool { return a.Roll(t.Success) },
		Effect: Approach(Nearest(query), func(a *Actor, _ *Context, food systems.Target) {
			a.World.Eat(a.Agent, food.Entity)
		}),
	}
}

// Hunt chases the nearest prey and attacks it. Weight grows with hunger;
// large herds are harder to single out.
func Hunt(t Tuning) Definition {
	query := func(a *Actor) systems.TargetQuery { return preyQuery(a.Agent) }
	return Definition{
		Kind:     agent.ActionHunt,
		Cooldown: t.Cooldown,
		Condition: func(a *Actor) bool {
			return awake(a) &&
				len(a.Agent.Genome.Prey) > 0 &&
				a.Agent.Genome.AttackPower > 0 &&
				float64(a.Agent.Satiety()) < t.Threshold &&
				a.Sees(query(a))
		},
		Weight: func(a *Actor) float64 {
			return t.Weight * (1 - float64(a.Agent.Satiety()))
		},
		Succeeds: func(a *Actor) bool {
			return a.Roll(t.Success * herdFactor(a))
		},
		Effect: Approach(Nearest(query), func(a *Actor, _ *Context, prey systems.Target) {
			a.World.Attack(a.Agent, prey.Entity)
		}),
	}
}

// Flee runs away from every visible predator. The more predators, the
// stronger the urge.
func Flee(t Tuning) Definition {
	query := func(a *Actor) systems.TargetQuery { return predatorQuery(a.Agent) }
	return Definition{
		Kind:     agent.ActionFlee,
		Cooldown: t.Cooldown,
		Condition: func(a *Actor) bool {
			return awake(a) && len(a.Agent.Genome.Predators) > 0 && a.Sees(query(a))
		},
		Weight: func(a *Actor) float64 {
			return t.Weight * float64(a.Count(query(a)))
		},
		Succeeds: func(a *Actor) bool { return a.Roll(t.Success) },
		Effect:   Approach(AwayFrom(query), nil),
	}
}

// Sleep naps for the derived sleep duration while inside the sleep window
// and no predator is in sight.
func Sleep(t Tuning) Definition {
	return Definition{
		Kind:     agent.ActionSleep,
		Cooldown: t.Cooldown,
		Condition: func(a *Actor) bool {
			return awake(a) &&
				a.Agent.Derived.SleepDuration > 0 &&
				a.Agent.InSleepWindow(a.World.TickOfDay()) &&
				!a.Sees(predatorQuery(a.Agent))
		},
		Weight:   func(*Actor) float64 { return t.Weight },
		Succeeds: func(a *Actor) bool { return a.Roll(t.Success) },
		Effect: func(a *Actor, ctx *Context) {
			a.World.Halt(a.Agent)
			a.Agent.Sleep(a.Agent.Derived.SleepDuration)
			ctx.Complete()
		},
	}
}

// Mate approaches the nearest member of the same species and reproduces.
// Crowded agents are less inclined.
func Mate(t Tuning) Definition {
	query := func(a *Actor) systems.TargetQuery { return kinQuery(a.Agent) }
	return Definition{
		Kind:     agent.ActionMate,
		Cooldown: t.Cooldown,
		Condition: func(a *Actor) bool {
			return awake(a) &&
				a.Agent.Mature() &&
				float64(a.Agent.Satiety()) >= t.Threshold &&
				a.Sees(query(a))
		},
		Weight: func(a *Actor) float64 {
			crowd := float64(a.Count(query(a)))
			return t.Weight * float64(a.Agent.Satiety()) / (1 + crowd/4)
		},
		Succeeds: func(a *Actor) bool { return a.Roll(t.Success) },
		Effect: Approach(Nearest(query), func(a *Actor, _ *Context, mate systems.Target) {
			a.World.Reproduce(a.Agent, mate.Entity)
		}),
	}
}

// herdFactor scales hunting success from 1 for a lone prey down to 0.25
// for a herd of eight or more.
func herdFactor(a *Actor) float64 {
	return 1 - 0.75*clampUnit(float64(a.Count(preyQuery(a.Agent))-1)/7)
}

func clampUnit(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
