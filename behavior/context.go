package behavior

import (
	"github.com/pthm-cable/fauna/agent"
	"github.com/pthm-cable/fauna/components"
)

// ContextState is the lifecycle state of one action attempt.
type ContextState uint8

const (
	ContextActive ContextState = iota
	ContextCompleted
	ContextCancelled
)

func (s ContextState) String() string {
	switch s {
	case ContextActive:
		return "active"
	case ContextCompleted:
		return "completed"
	case ContextCancelled:
		return "cancelled"
	}
	return "unknown"
}

// Context is the one-shot token for a single action attempt. It leaves the
// Active state exactly once, through Complete or Cancel.
type Context struct {
	kind    agent.ActionKind
	state   ContextState
	started int64
	machine *Machine
}

// Kind returns the action kind being executed.
func (c *Context) Kind() agent.ActionKind { return c.kind }

// State returns the lifecycle state.
func (c *Context) State() ContextState { return c.state }

// Active reports whether the attempt is still running.
func (c *Context) Active() bool { return c.state == ContextActive }

// Started returns the tick the attempt began.
func (c *Context) Started() int64 { return c.started }

// Complete finishes the attempt: the kind's cooldown and the global
// cooldown are applied and any pending movement callback is dropped.
// Returns false if the context was not active.
func (c *Context) Complete() bool {
	if c.state != ContextActive {
		return false
	}
	c.state = ContextCompleted
	c.machine.completed(c)
	return true
}

// Cancel abandons the attempt without touching cooldowns. Any pending
// movement callback is dropped before anything else changes.
// Returns false if the context was not active.
func (c *Context) Cancel() bool {
	if c.state != ContextActive {
		return false
	}
	c.machine.dropCallback()
	c.state = ContextCancelled
	c.machine.release(c)
	return true
}

// MoveTo starts walking to dest and runs onArrive when the route ends, as
// long as this context is still active then. Returns false when no route
// could be planned; the context stays active.
func (c *Context) MoveTo(dest components.Position, onArrive MovementCallback) bool {
	if c.state != ContextActive {
		return false
	}
	m := c.machine
	id := m.RegisterMovementCallback(func(at components.Position) {
		if c.state == ContextActive && onArrive != nil {
			onArrive(at)
		}
	})
	if id == 0 {
		return false
	}
	if !m.actor.World.Navigate(m.actor.Agent, dest, id) {
		m.dispatcher.Remove(id)
		m.pending = 0
		return false
	}
	return true
}
