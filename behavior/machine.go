package behavior

import (
	"log/slog"

	"github.com/pthm-cable/fauna/agent"
	"github.com/pthm-cable/fauna/components"
)

// MachineState is the decision state of one agent.
type MachineState uint8

const (
	StateIdle MachineState = iota
	StateEvaluating
	StateExecuting
)

func (s MachineState) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateEvaluating:
		return "evaluating"
	case StateExecuting:
		return "executing"
	}
	return "unknown"
}

// DefaultGlobalCooldown is the number of ticks after any completed action
// before the agent decides again.
const DefaultGlobalCooldown int32 = 5

// MachineOptions configures a Machine.
type MachineOptions struct {
	GlobalCooldown int32 // Applied on every completion; shared by all agents
	Logger         *slog.Logger
}

// Machine runs the decision loop of one agent. It holds at most one active
// Context and at most one pending movement callback.
type Machine struct {
	actor      Actor
	registry   *Registry
	selector   *Selector
	dispatcher *Dispatcher
	logger     *slog.Logger
	globalCD   int32

	state   MachineState
	ctx     *Context
	pending components.RequestID
}

// NewMachine creates the decision machine for a.
func NewMachine(a *agent.Agent, w World, sel *Selector, d *Dispatcher, opts MachineOptions) *Machine {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Machine{
		actor:      Actor{Agent: a, World: w},
		registry:   sel.registry,
		selector:   sel,
		dispatcher: d,
		logger:     logger,
		globalCD:   opts.GlobalCooldown,
	}
}

// Agent returns the agent this machine drives.
func (m *Machine) Agent() *agent.Agent { return m.actor.Agent }

// State returns the decision state.
func (m *Machine) State() MachineState { return m.state }

// Context returns the active context, or nil when idle.
func (m *Machine) Context() *Context { return m.ctx }

// Pending returns the outstanding movement request, or 0.
func (m *Machine) Pending() components.RequestID { return m.pending }

// Busy reports whether an action is in progress.
func (m *Machine) Busy() bool {
	return m.ctx != nil && m.ctx.Active()
}

// EvaluateAndExecute cancels any running action, selects a new one and
// starts it. Returns true if an action was started.
func (m *Machine) EvaluateAndExecute() bool {
	a := m.actor.Agent
	if a.Dead() {
		return false
	}
	if m.ctx != nil && m.ctx.Active() {
		m.ctx.Cancel()
	}

	m.state = StateEvaluating
	c, ok := m.selector.Select(&m.actor)
	if !ok {
		m.state = StateIdle
		return false
	}

	ctx := &Context{
		kind:    c.Def.Kind,
		state:   ContextActive,
		started: m.actor.World.Tick(),
		machine: m,
	}
	m.ctx = ctx
	m.state = StateExecuting
	a.Current = c.Def.Kind

	m.logger.Debug("action selected",
		"agent", a.ID,
		"kind", c.Def.Kind.String(),
		"weight", c.Weight,
	)

	if c.Def.Effect != nil {
		c.Def.Effect(&m.actor, ctx)
	}
	return true
}

// RegisterMovementCallback subscribes cb to the agent's next arrival,
// replacing any callback registered before. Returns 0 for a dead agent.
func (m *Machine) RegisterMovementCallback(cb MovementCallback) components.RequestID {
	if m.actor.Agent.Dead() {
		return 0
	}
	if m.pending != 0 {
		m.dispatcher.Remove(m.pending)
	}

	var id components.RequestID
	id = m.dispatcher.Register(func(at components.Position) {
		if m.pending == id {
			m.pending = 0
		}
		if m.actor.Agent.Dead() {
			return
		}
		if cb != nil {
			cb(at)
		}
	})
	m.pending = id
	return id
}

// Shutdown cancels the running action. Called when the agent dies or is
// removed.
func (m *Machine) Shutdown() {
	if m.ctx != nil && m.ctx.Active() {
		m.ctx.Cancel()
	}
	m.dropCallback()
	m.state = StateIdle
}

// completed applies cooldowns for a finished context and releases it.
func (m *Machine) completed(c *Context) {
	a := m.actor.Agent
	if !a.Dead() {
		a.Cooldowns[c.kind] = m.registry.cooldownOrZero(c.kind)
		a.GlobalCooldown = m.globalCD
	}
	m.dropCallback()
	m.release(c)
}

// release forgets c if it is the current context.
func (m *Machine) release(c *Context) {
	if m.ctx == c {
		m.ctx = nil
		m.state = StateIdle
	}
}

// dropCallback removes the pending callback and stops the route it was
// waiting on.
func (m *Machine) dropCallback() {
	if m.pending == 0 {
		return
	}
	m.dispatcher.Remove(m.pending)
	m.pending = 0
	m.actor.World.Halt(m.actor.Agent)
}
