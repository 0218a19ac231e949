package behavior

import (
	"cmp"
	"log/slog"
	"math"
	"slices"

	"github.com/pthm-cable/fauna/agent"
)

// Candidate is an eligible action and its weight.
type Candidate struct {
	Def    *Definition
	Weight float64
}

// Selector picks one action per evaluation. It reuses a scratch buffer and
// is not safe for concurrent use.
type Selector struct {
	registry *Registry
	logger   *slog.Logger
	buf      []Candidate
}

// NewSelector creates a selector over registry.
func NewSelector(registry *Registry, logger *slog.Logger) *Selector {
	if logger == nil {
		logger = slog.Default()
	}
	return &Selector{registry: registry, logger: logger}
}

// RankInto appends the agent's eligible actions to dst, heaviest first.
// Equal weights keep the order of the agent's action list. Unknown kinds,
// duplicates and kinds still on cooldown are skipped.
func (s *Selector) RankInto(dst []Candidate, a *Actor) []Candidate {
	var seen [agent.NumActionKinds]bool
	start := len(dst)

	for _, kind := range a.Agent.Genome.Actions {
		def, ok := s.registry.Lookup(kind)
		if !ok {
			s.logger.Debug("skipping unregistered action", "agent", a.Agent.ID, "kind", kind.String())
			continue
		}
		if seen[kind] {
			continue
		}
		seen[kind] = true

		if !a.Agent.Ready(kind) {
			continue
		}
		if def.Condition != nil && !def.Condition(a) {
			continue
		}
		dst = append(dst, Candidate{Def: def, Weight: weightOf(def, a)})
	}

	slices.SortStableFunc(dst[start:], func(x, y Candidate) int {
		return cmp.Compare(y.Weight, x.Weight)
	})
	return dst
}

// Rank returns the agent's eligible actions, heaviest first.
func (s *Selector) Rank(a *Actor) []Candidate {
	return s.RankInto(nil, a)
}

// Select walks the ranking from the top and returns the first action whose
// success check passes. Failed checks fall through to the next candidate.
// Returns false when no candidate succeeds.
func (s *Selector) Select(a *Actor) (Candidate, bool) {
	s.buf = s.RankInto(s.buf[:0], a)
	for _, c := range s.buf {
		if c.Def.Succeeds == nil || c.Def.Succeeds(a) {
			return c, true
		}
	}
	return Candidate{}, false
}

// weightOf evaluates the weight function, mapping NaN and negatives to 0.
func weightOf(def *Definition, a *Actor) float64 {
	if def.Weight == nil {
		return 0
	}
	w := def.Weight(a)
	if math.IsNaN(w) || w < 0 {
		return 0
	}
	return w
}
