package behavior

import (
	"log/slog"

	"github.com/pthm-cable/fauna/agent"
)

// Registry is the fixed table of action definitions, indexed by kind.
type Registry struct {
	defs   [agent.NumActionKinds]*Definition
	warned [agent.NumActionKinds]bool
	logger *slog.Logger
}

// NewRegistry creates an empty registry. A nil logger uses slog.Default().
func NewRegistry(logger *slog.Logger) *Registry {
	if logger == nil {
		logger = slog.Default()
	}
	return &Registry{logger: logger}
}

// Register stores def under its kind. Registering a kind twice replaces the
// earlier definition and logs a warning.
func (r *Registry) Register(def Definition) {
	if def.Kind == agent.ActionNone || def.Kind >= agent.NumActionKinds {
		r.logger.Warn("ignoring action with invalid kind", "kind", int(def.Kind))
		return
	}
	if r.defs[def.Kind] != nil {
		r.logger.Warn("action registered twice, keeping the last", "kind", def.Kind.String())
	}
	d := def
	r.defs[def.Kind] = &d
	r.warned[def.Kind] = false
}

// Lookup returns the definition for kind.
func (r *Registry) Lookup(kind agent.ActionKind) (*Definition, bool) {
	if kind >= agent.NumActionKinds {
		return nil, false
	}
	d := r.defs[kind]
	return d, d != nil
}

// Cooldown returns the configured cooldown of kind. The second result is
// false when the kind is unknown or its cooldown was never set.
func (r *Registry) Cooldown(kind agent.ActionKind) (int32, bool) {
	d, ok := r.Lookup(kind)
	if !ok || d.Cooldown < 0 {
		return 0, false
	}
	return d.Cooldown, true
}

// cooldownOrZero is Cooldown with the missing case degraded to 0. The
// first miss per kind is logged.
func (r *Registry) cooldownOrZero(kind agent.ActionKind) int32 {
	cd, ok := r.Cooldown(kind)
	if ok {
		return cd
	}
	if kind < agent.NumActionKinds && !r.warned[kind] {
		r.warned[kind] = true
		r.logger.Warn("no cooldown configured, using 0", "kind", kind.String())
	}
	return 0
}

// Kinds returns the registered kinds in ordinal order.
func (r *Registry) Kinds() []agent.ActionKind {
	var out []agent.ActionKind
	for k, d := range r.defs {
		if d != nil {
			out = append(out, agent.ActionKind(k))
		}
	}
	return out
}
