package systems

import (
	"testing"

	"github.com/pthm-cable/fauna/agent"
)

// vitalsAgent builds an agent with hunger=100/100, hungerRate=10 and a long life.
func vitalsAgent() *agent.Agent {
	return &agent.Agent{
		ID:      1,
		Genome:  agent.Genome{BaseHealth: 100, Lifespan: 1000},
		Derived: agent.Derived{HungerRate: 10, MaxHunger: 100, HealthRegen: 2},
		Hunger:  100,
		Health:  100,
		Alive:   true,
	}
}

// ---------- Hunger ----------

func TestUpdateVitals_HungerDecay(t *testing.T) {
	a := vitalsAgent()
	UpdateVitals(a, DefaultVitalsParams())
	if a.Hunger != 90 {
		t.Errorf("hunger after 1 tick = %v, want 90", a.Hunger)
	}
}

func TestUpdateVitals_SleepHalvesHunger(t *testing.T) {
	a := vitalsAgent()
	a.Sleep(10)
	UpdateVitals(a, DefaultVitalsParams())
	if a.Hunger != 95 {
		t.Errorf("sleeping hunger after 1 tick = %v, want 95", a.Hunger)
	}
}

func TestUpdateVitals_StarvationKillsOnce(t *testing.T) {
	a := vitalsAgent()
	p := DefaultVitalsParams()

	deaths := 0
	for i := 0; i < 10; i++ {
		if UpdateVitals(a, p).Died {
			deaths++
		}
	}
	if a.Hunger != 0 {
		t.Fatalf("hunger after 10 ticks = %v, want 0", a.Hunger)
	}
	if a.Alive || a.Cause != agent.CauseStarvation {
		t.Fatalf("agent should be dead of starvation, alive=%v cause=%v", a.Alive, a.Cause)
	}

	// Further ticks are no-ops and never report a second death.
	for i := 0; i < 3; i++ {
		if UpdateVitals(a, p).Died {
			deaths++
		}
	}
	if deaths != 1 {
		t.Errorf("death reported %d times, want 1", deaths)
	}
}

func TestUpdateVitals_InvincibleSurvives(t *testing.T) {
	a := vitalsAgent()
	a.Invincible = true
	for i := 0; i < 20; i++ {
		if UpdateVitals(a, DefaultVitalsParams()).Died {
			t.Fatal("invincible agent died")
		}
	}
	if a.Hunger != 0 || !a.Alive {
		t.Errorf("hunger=%v alive=%v, want 0 and alive", a.Hunger, a.Alive)
	}
}

// ---------- Health and age ----------

func TestUpdateVitals_HealthRegen(t *testing.T) {
	a := vitalsAgent()
	a.Health = 50
	UpdateVitals(a, DefaultVitalsParams())
	if a.Health != 52 {
		t.Errorf("health = %v, want 52", a.Health)
	}

	a.Sleep(5)
	UpdateVitals(a, DefaultVitalsParams())
	if a.Health != 56 {
		t.Errorf("sleeping health = %v, want 56 (doubled regen)", a.Health)
	}

	a.Health = 99.5
	UpdateVitals(a, DefaultVitalsParams())
	if a.Health != 100 {
		t.Errorf("health = %v, want clamped to 100", a.Health)
	}
}

func TestUpdateVitals_OldAge(t *testing.T) {
	a := vitalsAgent()
	a.Genome.Lifespan = 3
	var res VitalsResult
	for i := 0; i < 3; i++ {
		res = UpdateVitals(a, DefaultVitalsParams())
	}
	if !res.Died || a.Cause != agent.CauseOldAge {
		t.Errorf("expected old-age death on tick 3, died=%v cause=%v", res.Died, a.Cause)
	}
	if a.Age != 3 {
		t.Errorf("age = %d, want capped at lifespan 3", a.Age)
	}
}

func TestUpdateVitals_DeadAgentUntouched(t *testing.T) {
	a := vitalsAgent()
	a.Die(agent.CauseDespawn)
	a.GlobalCooldown = 5
	res := UpdateVitals(a, DefaultVitalsParams())
	if res.Died || res.Ready {
		t.Errorf("dead agent result = %+v, want zero", res)
	}
	if a.Hunger != 100 || a.GlobalCooldown != 5 || a.Age != 0 {
		t.Error("dead agent state changed")
	}
}

// ---------- Sleep and cooldowns ----------

func TestUpdateVitals_WakesAfterSleep(t *testing.T) {
	a := vitalsAgent()
	a.Sleep(2)
	UpdateVitals(a, DefaultVitalsParams())
	if !a.Sleeping {
		t.Fatal("woke too early")
	}
	UpdateVitals(a, DefaultVitalsParams())
	if a.Sleeping {
		t.Error("still sleeping after sleep ticks elapsed")
	}
}

func TestUpdateVitals_CooldownsCountDown(t *testing.T) {
	a := vitalsAgent()
	a.GlobalCooldown = 2
	a.Cooldowns[agent.ActionForage] = 1
	a.Cooldowns[agent.ActionHunt] = 3

	res := UpdateVitals(a, DefaultVitalsParams())
	if res.Ready {
		t.Error("ready with global cooldown 1 remaining")
	}
	if a.Cooldowns[agent.ActionForage] != 0 || a.Cooldowns[agent.ActionHunt] != 2 {
		t.Errorf("cooldowns = %v", a.Cooldowns)
	}

	res = UpdateVitals(a, DefaultVitalsParams())
	if !res.Ready || a.GlobalCooldown != 0 {
		t.Errorf("expected ready once global cooldown reaches 0, got %+v (cooldown %d)", res, a.GlobalCooldown)
	}

	res = UpdateVitals(a, DefaultVitalsParams())
	if a.GlobalCooldown != 0 || a.Cooldowns[agent.ActionForage] != 0 {
		t.Error("cooldowns must floor at 0")
	}
	if !res.Ready {
		t.Error("agent with elapsed cooldown should stay ready")
	}
}
