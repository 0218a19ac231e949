package systems

import "github.com/pthm-cable/fauna/agent"

// VitalsParams holds the sleep modifiers of the vitals pass.
type VitalsParams struct {
	SleepHungerFactor float32 // Hunger rate multiplier while asleep
	SleepRegenFactor  float32 // Health regen multiplier while asleep
}

// DefaultVitalsParams returns the standard modifiers: hunger halved and
// regeneration doubled while asleep.
func DefaultVitalsParams() VitalsParams {
	return VitalsParams{
		SleepHungerFactor: 0.5,
		SleepRegenFactor:  2,
	}
}

// VitalsResult reports what one vitals tick did to an agent.
type VitalsResult struct {
	Died  bool // The agent died during this tick
	Ready bool // The agent is alive and its global cooldown has elapsed
}

// UpdateVitals applies one tick of hunger decay, health regeneration and
// ageing, checks death, and counts cooldowns down. Dead agents are left
// untouched.
func UpdateVitals(a *agent.Agent, p VitalsParams) VitalsResult {
	if a == nil || !a.Alive {
		return VitalsResult{}
	}

	hungerRate := a.Derived.HungerRate
	regen := a.Derived.HealthRegen
	if a.Sleeping {
		hungerRate *= p.SleepHungerFactor
		regen *= p.SleepRegenFactor
	}

	a.Hunger = clampf(a.Hunger-hungerRate, 0, a.Derived.MaxHunger)

	maxHealth := a.MaxHealth()
	if a.Health < maxHealth {
		a.Health = clampf(a.Health+regen, 0, maxHealth)
	}

	if a.Age < a.Genome.Lifespan {
		a.Age++
	}

	var res VitalsResult
	if !a.Invincible {
		switch {
		case a.Health <= 0:
			res.Died = a.Die(agent.CauseInjury)
		case a.Hunger <= 0:
			res.Died = a.Die(agent.CauseStarvation)
		case a.Age >= a.Genome.Lifespan:
			res.Died = a.Die(agent.CauseOldAge)
		}
	}
	if !a.Alive {
		return res
	}

	if a.Sleeping {
		a.SleepTicks--
		if a.SleepTicks <= 0 {
			a.Wake()
		}
	}

	if a.GlobalCooldown > 0 {
		a.GlobalCooldown--
	}
	for i := range a.Cooldowns {
		if a.Cooldowns[i] > 0 {
			a.Cooldowns[i]--
		}
	}

	res.Ready = a.GlobalCooldown == 0
	return res
}

func clampf(v, lo, hi float32) float32 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
