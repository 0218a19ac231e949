package behavior

import (
	"bytes"
	"log/slog"
	"math"
	"math/rand"
	"strings"
	"testing"

	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/fauna/agent"
	"github.com/pthm-cable/fauna/components"
	"github.com/pthm-cable/fauna/systems"
)

// fakeWorld is a scripted World. Everything in targets is visible.
type fakeWorld struct {
	rng       *rand.Rand
	tick      int64
	tickOfDay int32
	pos       components.Position
	targets   []systems.Target
	noRoute   bool

	routes   []components.RequestID
	lastDest components.Position
	halts    int
	eaten    int
	attacks  int
	births   int
}

func newFakeWorld() *fakeWorld {
	return &fakeWorld{rng: rand.New(rand.NewSource(1))}
}

func (w *fakeWorld) match(q systems.TargetQuery) []systems.Target {
	var out []systems.Target
	for _, t := range w.targets {
		if q.Matches(t) {
			out = append(out, t)
		}
	}
	return out
}

func (w *fakeWorld) HasTarget(_ *agent.Agent, q systems.TargetQuery) bool {
	return len(w.match(q)) > 0
}

func (w *fakeWorld) CountTargets(_ *agent.Agent, q systems.TargetQuery) int {
	return len(w.match(q))
}

func (w *fakeWorld) Targets(_ *agent.Agent, q systems.TargetQuery) []systems.Target {
	return w.match(q)
}

func (w *fakeWorld) Position(*agent.Agent) (components.Position, bool) { return w.pos, true }

func (w *fakeWorld) RandomDestination(_ *agent.Agent, r float32) (components.Position, bool) {
	return components.Position{X: w.pos.X + r, Y: w.pos.Y}, true
}

func (w *fakeWorld) Navigate(_ *agent.Agent, dest components.Position, req components.RequestID) bool {
	if w.noRoute {
		return false
	}
	w.routes = append(w.routes, req)
	w.lastDest = dest
	return true
}

func (w *fakeWorld) Halt(*agent.Agent) { w.halts++ }
func (w *fakeWorld) Eat(*agent.Agent, ecs.Entity) float32 { w.eaten++; return 1 }
func (w *fakeWorld) Attack(*agent.Agent, ecs.Entity) bool { w.attacks++; return false }
func (w *fakeWorld) Reproduce(*agent.Agent, ecs.Entity) bool { w.births++; return true }
func (w *fakeWorld) Rand() *rand.Rand { return w.rng }
func (w *fakeWorld) Tick() int64 { return w.tick }
func (w *fakeWorld) TickOfDay() int32 { return w.tickOfDay }

func testAgent(kinds ...agent.ActionKind) *agent.Agent {
	return &agent.Agent{
		ID: 1,
		Genome: agent.Genome{
			Species:         1,
			BaseHealth:      100,
			PerceptionRange: 10,
			Lifespan:        1000,
			Actions:         kinds,
		},
		Derived: agent.Derived{MaxHunger: 100, HungerRate: 1},
		Hunger:  100,
		Health:  100,
		Alive:   true,
	}
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
}

type harness struct {
	world *fakeWorld
	reg   *Registry
	disp  *Dispatcher
	agent *agent.Agent
	m     *Machine
}

func newHarness(a *agent.Agent, defs ...Definition) *harness {
	h := &harness{
		world: newFakeWorld(),
		reg:   NewRegistry(quietLogger()),
		disp:  NewDispatcher(),
		agent: a,
	}
	for _, d := range defs {
		h.reg.Register(d)
	}
	sel := NewSelector(h.reg, quietLogger())
	h.m = NewMachine(a, h.world, sel, h.disp, MachineOptions{GlobalCooldown: 5, Logger: quietLogger()})
	return h
}

func constant(w float64) func(*Actor) float64 { return func(*Actor) float64 { return w } }
func always(*Actor) bool { return true }
func never(*Actor) bool { return false }

// ---------- Selection ----------

func TestEvaluate_NoEligibleActions(t *testing.T) {
	a := testAgent(agent.ActionWander, agent.ActionForage)
	a.Cooldowns[agent.ActionWander] = 3
	a.GlobalCooldown = 0
	h := newHarness(a,
		Definition{Kind: agent.ActionWander, Cooldown: 4, Condition: never, Weight: constant(1)},
		Definition{Kind: agent.ActionForage, Cooldown: 4, Condition: never, Weight: constant(1)},
	)
	before := *a

	if h.m.EvaluateAndExecute() {
		t.Fatal("an action executed with no eligible kinds")
	}
	if a.Cooldowns != before.Cooldowns || a.GlobalCooldown != before.GlobalCooldown || a.Current != before.Current {
		t.Errorf("agent state changed: %+v", a)
	}
	if h.m.State() != StateIdle || h.m.Context() != nil {
		t.Errorf("machine state = %v, want idle with no context", h.m.State())
	}
}

func TestEvaluate_WeightedFallback(t *testing.T) {
	var ranA, ranB int
	a := testAgent(agent.ActionHunt, agent.ActionForage)
	h := newHarness(a,
		Definition{
			Kind: agent.ActionHunt, Cooldown: 1,
			Weight: constant(0.9), Succeeds: never,
			Effect: func(*Actor, *Context) { ranA++ },
		},
		Definition{
			Kind: agent.ActionForage, Cooldown: 1,
			Weight: constant(0.5), Succeeds: always,
			Effect: func(*Actor, *Context) { ranB++ },
		},
	)

	for i := 0; i < 20; i++ {
		if !h.m.EvaluateAndExecute() {
			t.Fatal("expected the fallback action to execute")
		}
	}
	if ranA != 0 || ranB != 20 {
		t.Errorf("ran A=%d B=%d, want A=0 B=20", ranA, ranB)
	}
	if a.Current != agent.ActionForage {
		t.Errorf("current = %v, want forage", a.Current)
	}
}

func TestEvaluate_AllChecksFailLeavesCooldowns(t *testing.T) {
	a := testAgent(agent.ActionHunt)
	h := newHarness(a, Definition{Kind: agent.ActionHunt, Cooldown: 9, Weight: constant(1), Succeeds: never})
	if h.m.EvaluateAndExecute() {
		t.Fatal("no action should run")
	}
	if a.Cooldowns[agent.ActionHunt] != 0 || a.GlobalCooldown != 0 {
		t.Error("cooldowns changed by a no-action outcome")
	}
}

func TestRank_StableTiesAndClampedWeights(t *testing.T) {
	a := testAgent(agent.ActionMate, agent.ActionWander, agent.ActionFlee, agent.ActionSleep, agent.ActionWander)
	h := newHarness(a,
		Definition{Kind: agent.ActionWander, Weight: constant(1)},
		Definition{Kind: agent.ActionMate, Weight: constant(1)},
		Definition{Kind: agent.ActionFlee, Weight: constant(math.NaN())},
		Definition{Kind: agent.ActionSleep, Weight: constant(2)},
	)
	ranked := NewSelector(h.reg, quietLogger()).Rank(&Actor{Agent: a, World: h.world})

	want := []agent.ActionKind{agent.ActionSleep, agent.ActionMate, agent.ActionWander, agent.ActionFlee}
	if len(ranked) != len(want) {
		t.Fatalf("ranked %d kinds, want %d", len(ranked), len(want))
	}
	for i, c := range ranked {
		if c.Def.Kind != want[i] {
			t.Errorf("rank %d = %v, want %v", i, c.Def.Kind, want[i])
		}
	}
	if ranked[3].Weight != 0 {
		t.Errorf("NaN weight ranked as %v, want 0", ranked[3].Weight)
	}
}

func TestRank_UnregisteredKindIsIneligible(t *testing.T) {
	a := testAgent(agent.ActionHunt, agent.ActionWander)
	h := newHarness(a, Definition{Kind: agent.ActionWander, Weight: constant(0.1)})
	ranked := NewSelector(h.reg, quietLogger()).Rank(&Actor{Agent: a, World: h.world})
	if len(ranked) != 1 || ranked[0].Def.Kind != agent.ActionWander {
		t.Errorf("ranked = %+v, want only wander", ranked)
	}
}

// ---------- Contexts and callbacks ----------

// mover is an action that walks somewhere and completes on arrival.
func mover(kind agent.ActionKind, cooldown int32, arrived *int) Definition {
	return Definition{
		Kind: kind, Cooldown: cooldown, Weight: constant(1),
		Effect: func(a *Actor, ctx *Context) {
			ctx.MoveTo(components.Position{X: 5}, func(components.Position) {
				*arrived++
				ctx.Complete()
			})
		},
	}
}

func TestEvaluate_SingleActiveContext(t *testing.T) {
	var arrived int
	a := testAgent(agent.ActionWander)
	h := newHarness(a, mover(agent.ActionWander, 3, &arrived))

	h.m.EvaluateAndExecute()
	first := h.m.Context()
	stale := h.m.Pending()
	if first == nil || !first.Active() || stale == 0 {
		t.Fatal("expected an active context awaiting movement")
	}

	h.m.EvaluateAndExecute()
	if first.State() != ContextCancelled {
		t.Errorf("first context state = %v, want cancelled", first.State())
	}
	if h.m.Context() == first || !h.m.Context().Active() {
		t.Error("expected a fresh active context")
	}
	if h.disp.Has(stale) || h.disp.Len() != 1 {
		t.Errorf("pending callbacks = %d, stale still pending = %v", h.disp.Len(), h.disp.Has(stale))
	}

	// The old route arriving late must not reach the cancelled action.
	if h.disp.Fire(stale, components.Position{}) {
		t.Error("stale callback fired")
	}
	if arrived != 0 {
		t.Fatalf("arrival handled %d times before the live route finished", arrived)
	}
	if a.Cooldowns[agent.ActionWander] != 0 || a.GlobalCooldown != 0 {
		t.Error("cancellation applied cooldowns")
	}

	live := h.m.Pending()
	if !h.disp.Fire(live, components.Position{X: 5}) {
		t.Fatal("live callback did not fire")
	}
	if h.disp.Fire(live, components.Position{X: 5}) {
		t.Error("callback fired twice")
	}
	if arrived != 1 {
		t.Errorf("arrived = %d, want 1", arrived)
	}
}

func TestContext_CompletionAppliesCooldowns(t *testing.T) {
	var arrived int
	a := testAgent(agent.ActionForage)
	h := newHarness(a, mover(agent.ActionForage, 7, &arrived))

	h.m.EvaluateAndExecute()
	ctx := h.m.Context()
	h.disp.Fire(h.m.Pending(), components.Position{})

	if ctx.State() != ContextCompleted {
		t.Fatalf("state = %v, want completed", ctx.State())
	}
	if a.Cooldowns[agent.ActionForage] != 7 {
		t.Errorf("kind cooldown = %d, want 7", a.Cooldowns[agent.ActionForage])
	}
	if a.GlobalCooldown != 5 {
		t.Errorf("global cooldown = %d, want 5", a.GlobalCooldown)
	}
	if h.m.State() != StateIdle || h.m.Context() != nil || h.m.Pending() != 0 {
		t.Error("machine not reset after completion")
	}
	if ctx.Cancel() {
		t.Error("cancelled a completed context")
	}
}

func TestEvaluate_KindCooldownBlocksReselection(t *testing.T) {
	var arrived int
	a := testAgent(agent.ActionMate)
	h := newHarness(a, mover(agent.ActionMate, 20, &arrived))
	params := systems.VitalsParams{SleepHungerFactor: 0.5, SleepRegenFactor: 2}

	if !h.m.EvaluateAndExecute() {
		t.Fatal("mate did not start")
	}
	h.disp.Fire(h.m.Pending(), components.Position{X: 5})

	for i := 0; i < 5; i++ {
		a.Hunger = 100
		systems.UpdateVitals(a, params)
	}
	if a.GlobalCooldown != 0 || a.Cooldowns[agent.ActionMate] != 15 {
		t.Fatalf("cooldowns = %d / %d, want 0 / 15", a.GlobalCooldown, a.Cooldowns[agent.ActionMate])
	}
	if h.m.EvaluateAndExecute() {
		t.Fatalf("mate re-selected with %d ticks of cooldown left", a.Cooldowns[agent.ActionMate])
	}
	if len(h.m.selector.Rank(&h.m.actor)) != 0 {
		t.Error("kind on cooldown was ranked")
	}

	for a.Cooldowns[agent.ActionMate] > 0 {
		a.Hunger = 100
		systems.UpdateVitals(a, params)
	}
	if !h.m.EvaluateAndExecute() {
		t.Error("mate not selectable once its cooldown expired")
	}
	if arrived != 1 {
		t.Errorf("arrived = %d, want 1", arrived)
	}
}

func TestContext_CancelIsTerminal(t *testing.T) {
	a := testAgent(agent.ActionForage)
	var arrived int
	h := newHarness(a, mover(agent.ActionForage, 7, &arrived))

	h.m.EvaluateAndExecute()
	ctx := h.m.Context()
	if !ctx.Cancel() {
		t.Fatal("cancel of an active context failed")
	}
	if ctx.Complete() {
		t.Error("completed a cancelled context")
	}
	if a.Cooldowns[agent.ActionForage] != 0 || a.GlobalCooldown != 0 {
		t.Error("cooldowns applied after cancel")
	}
	if h.world.halts != 1 {
		t.Errorf("halts = %d, want the route stopped once", h.world.halts)
	}
}

func TestContext_MissingCooldownWarns(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))

	a := testAgent(agent.ActionSleep)
	reg := NewRegistry(logger)
	reg.Register(Definition{
		Kind: agent.ActionSleep, Cooldown: UnsetCooldown, Weight: constant(1),
		Effect: func(_ *Actor, ctx *Context) { ctx.Complete() },
	})
	m := NewMachine(a, newFakeWorld(), NewSelector(reg, logger), NewDispatcher(), MachineOptions{GlobalCooldown: 2, Logger: logger})

	if !m.EvaluateAndExecute() {
		t.Fatal("expected sleep to run")
	}
	if a.Cooldowns[agent.ActionSleep] != 0 {
		t.Errorf("kind cooldown = %d, want 0", a.Cooldowns[agent.ActionSleep])
	}
	if a.GlobalCooldown != 2 {
		t.Errorf("global cooldown = %d, want 2", a.GlobalCooldown)
	}
	if !strings.Contains(buf.String(), "no cooldown configured") {
		t.Errorf("expected a warning, log was %q", buf.String())
	}
}

func TestMachine_NoRouteKeepsNothingPending(t *testing.T) {
	a := testAgent(agent.ActionWander)
	var arrived int
	h := newHarness(a, mover(agent.ActionWander, 1, &arrived))
	h.world.noRoute = true

	h.m.EvaluateAndExecute()
	if h.m.Pending() != 0 || h.disp.Len() != 0 {
		t.Error("callback left pending without a route")
	}
}

func TestMachine_DeadAgentShortCircuits(t *testing.T) {
	var ran, arrived int
	a := testAgent(agent.ActionWander, agent.ActionHunt)
	h := newHarness(a,
		mover(agent.ActionWander, 1, &arrived),
		Definition{Kind: agent.ActionHunt, Weight: constant(0.5), Effect: func(*Actor, *Context) { ran++ }},
	)

	h.m.EvaluateAndExecute()
	pending := h.m.Pending()
	a.Die(agent.CauseInjury)

	if h.m.EvaluateAndExecute() {
		t.Error("dead agent evaluated")
	}
	if h.m.RegisterMovementCallback(func(components.Position) {}) != 0 {
		t.Error("dead agent registered a callback")
	}
	h.disp.Fire(pending, components.Position{})
	if arrived != 0 || ran != 0 {
		t.Error("dead agent acted")
	}

	h.m.Shutdown()
	if h.m.Context() != nil || h.disp.Len() != 0 {
		t.Error("shutdown left state behind")
	}
}

func TestMachine_RegisterReplacesCallback(t *testing.T) {
	a := testAgent()
	h := newHarness(a)
	var first, second int
	id1 := h.m.RegisterMovementCallback(func(components.Position) { first++ })
	id2 := h.m.RegisterMovementCallback(func(components.Position) { second++ })

	if id1 == id2 {
		t.Fatal("request ids reused")
	}
	h.disp.Fire(id1, components.Position{})
	h.disp.Fire(id2, components.Position{})
	if first != 0 || second != 1 {
		t.Errorf("first=%d second=%d, want 0 and 1", first, second)
	}
}

// ---------- Registry ----------

func TestRegistry_LastRegistrationWins(t *testing.T) {
	var buf bytes.Buffer
	r := NewRegistry(slog.New(slog.NewTextHandler(&buf, nil)))
	r.Register(Definition{Kind: agent.ActionFlee, Cooldown: 1})
	r.Register(Definition{Kind: agent.ActionFlee, Cooldown: 2})

	if cd, ok := r.Cooldown(agent.ActionFlee); !ok || cd != 2 {
		t.Errorf("cooldown = %d, %v, want 2", cd, ok)
	}
	if !strings.Contains(buf.String(), "registered twice") {
		t.Error("expected a duplicate registration warning")
	}
	if _, ok := r.Lookup(agent.ActionMate); ok {
		t.Error("lookup of an unregistered kind succeeded")
	}
	if _, ok := r.Lookup(agent.NumActionKinds + 3); ok {
		t.Error("lookup of an out of range kind succeeded")
	}
}
