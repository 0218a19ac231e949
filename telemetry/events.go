// Package telemetry provides windowed ecosystem statistics, per-agent
// lifetime tracking, phase timing and CSV output.
package telemetry

import "github.com/pthm-cable/fauna/agent"

// EventType identifies telemetry events.
type EventType uint8

const (
	EventActionStarted EventType = iota
	EventAttack
	EventKill
	EventBirth
	EventDeath
	EventForage
	EventPathFailed
	EventArrival
)

// Event represents a single telemetry event.
type Event struct {
	Type    EventType
	Tick    int64
	AgentID uint32
	Species uint16

	// Optional fields depending on event type
	Action   agent.ActionKind // for action events
	TargetID uint32           // victim for attack/kill, parent for birth
	Amount   float32          // food eaten or damage dealt
	Cause    agent.DeathCause // for death events
}

// NewActionEvent creates an action started event.
func NewActionEvent(tick int64, a *agent.Agent, kind agent.ActionKind) Event {
	return Event{
		Type:    EventActionStarted,
		Tick:    tick,
		AgentID: a.ID,
		Species: a.Genome.Species,
		Action:  kind,
	}
}

// NewAttackEvent creates an attack event.
func NewAttackEvent(tick int64, attacker *agent.Agent, victimID uint32, damage float32) Event {
	return Event{
		Type:     EventAttack,
		Tick:     tick,
		AgentID:  attacker.ID,
		Species:  attacker.Genome.Species,
		TargetID: victimID,
		Amount:   damage,
	}
}

// NewKillEvent creates a kill event (victim died from the attack).
func NewKillEvent(tick int64, attacker *agent.Agent, victimID uint32) Event {
	return Event{
		Type:     EventKill,
		Tick:     tick,
		AgentID:  attacker.ID,
		Species:  attacker.Genome.Species,
		TargetID: victimID,
	}
}

// NewBirthEvent creates a birth event.
func NewBirthEvent(tick int64, child *agent.Agent, parentID uint32) Event {
	return Event{
		Type:     EventBirth,
		Tick:     tick,
		AgentID:  child.ID,
		Species:  child.Genome.Species,
		TargetID: parentID, // parent ID stored in TargetID
	}
}

// NewDeathEvent creates a death event.
func NewDeathEvent(tick int64, a *agent.Agent) Event {
	return Event{
		Type:    EventDeath,
		Tick:    tick,
		AgentID: a.ID,
		Species: a.Genome.Species,
		Cause:   a.Cause,
	}
}

// NewForageEvent creates a foraging event.
func NewForageEvent(tick int64, a *agent.Agent, amount float32) Event {
	return Event{
		Type:    EventForage,
		Tick:    tick,
		AgentID: a.ID,
		Species: a.Genome.Species,
		Amount:  amount,
	}
}

// NewPathFailedEvent records a navigation request with no route.
func NewPathFailedEvent(tick int64, a *agent.Agent) Event {
	return Event{
		Type:    EventPathFailed,
		Tick:    tick,
		AgentID: a.ID,
		Species: a.Genome.Species,
		Action:  a.Current,
	}
}

// NewArrivalEvent records a completed route.
func NewArrivalEvent(tick int64, a *agent.Agent) Event {
	return Event{
		Type:    EventArrival,
		Tick:    tick,
		AgentID: a.ID,
		Species: a.Genome.Species,
		Action:  a.Current,
	}
}
