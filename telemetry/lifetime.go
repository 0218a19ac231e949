package telemetry

import (
	"log/slog"

	"github.com/pthm-cable/fauna/agent"
)

// LifetimeStats tracks per-agent statistics over its lifetime.
type LifetimeStats struct {
	BirthTick  int64
	Species    uint16
	ParentID   uint32
	Generation int

	// Hunting
	Attacks int
	Kills   int

	// Reproduction
	Children int

	// Feeding
	FoodEaten float32

	// Decisions
	Actions     [agent.NumActionKinds]int
	PathsFailed int
}

// LifetimeRecord is the flat CSV row written when an agent dies.
type LifetimeRecord struct {
	RunID      string  `csv:"run_id"`
	AgentID    uint32  `csv:"agent_id"`
	Species    uint16  `csv:"species"`
	ParentID   uint32  `csv:"parent_id"`
	Generation int     `csv:"generation"`
	BirthTick  int64   `csv:"birth_tick"`
	DeathTick  int64   `csv:"death_tick"`
	Cause      string  `csv:"cause"`
	Attacks    int     `csv:"attacks"`
	Kills      int     `csv:"kills"`
	Children   int     `csv:"children"`
	FoodEaten  float32 `csv:"food_eaten"`
	Actions    int     `csv:"actions"`
	PathsFail  int     `csv:"paths_failed"`
}

// LifetimeTracker manages per-agent lifetime statistics.
type LifetimeTracker struct {
	stats map[uint32]*LifetimeStats
}

// NewLifetimeTracker creates a new lifetime tracker.
func NewLifetimeTracker() *LifetimeTracker {
	return &LifetimeTracker{
		stats: make(map[uint32]*LifetimeStats),
	}
}

// Register creates lifetime stats for a new agent. Founders pass parentID 0.
func (lt *LifetimeTracker) Register(agentID uint32, species uint16, birthTick int64, parentID uint32) {
	gen := 0
	if p := lt.stats[parentID]; p != nil {
		gen = p.Generation + 1
	}
	lt.stats[agentID] = &LifetimeStats{
		BirthTick:  birthTick,
		Species:    species,
		ParentID:   parentID,
		Generation: gen,
	}
}

// Get returns the lifetime stats for an agent, or nil if not found.
func (lt *LifetimeTracker) Get(agentID uint32) *LifetimeStats {
	return lt.stats[agentID]
}

// Remove removes an agent's stats and returns them.
func (lt *LifetimeTracker) Remove(agentID uint32) *LifetimeStats {
	stats := lt.stats[agentID]
	delete(lt.stats, agentID)
	return stats
}

// Record applies an event to the stats of the agent it belongs to.
func (lt *LifetimeTracker) Record(e Event) {
	s := lt.stats[e.AgentID]
	if s == nil {
		return
	}
	switch e.Type {
	case EventActionStarted:
		if e.Action < agent.NumActionKinds {
			s.Actions[e.Action]++
		}
	case EventAttack:
		s.Attacks++
	case EventKill:
		s.Kills++
	case EventForage:
		s.FoodEaten += e.Amount
	case EventPathFailed:
		s.PathsFailed++
	case EventBirth:
		if p := lt.stats[e.TargetID]; p != nil {
			p.Children++
		}
	}
}

// Count returns the number of tracked agents.
func (lt *LifetimeTracker) Count() int {
	return len(lt.stats)
}

// ToRecord flattens the stats of a dead agent.
func (s *LifetimeStats) ToRecord(a *agent.Agent, deathTick int64) LifetimeRecord {
	var actions int
	for _, n := range s.Actions {
		actions += n
	}
	return LifetimeRecord{
		AgentID:    a.ID,
		Species:    s.Species,
		ParentID:   s.ParentID,
		Generation: s.Generation,
		BirthTick:  s.BirthTick,
		DeathTick:  deathTick,
		Cause:      a.Cause.String(),
		Attacks:    s.Attacks,
		Kills:      s.Kills,
		Children:   s.Children,
		FoodEaten:  s.FoodEaten,
		Actions:    actions,
		PathsFail:  s.PathsFailed,
	}
}

// LogValue implements slog.LogValuer for structured logging.
func (r LifetimeRecord) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Any("agent_id", r.AgentID),
		slog.Int("species", int(r.Species)),
		slog.Int("generation", r.Generation),
		slog.Int64("lived", r.DeathTick-r.BirthTick),
		slog.String("cause", r.Cause),
		slog.Int("kills", r.Kills),
		slog.Int("children", r.Children),
		slog.Float64("food_eaten", float64(r.FoodEaten)),
	)
}
