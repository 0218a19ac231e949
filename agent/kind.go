package agent

// ActionKind identifies a behavior. The set is closed so per-kind state can
// live in fixed-size arrays indexed by the kind.
type ActionKind uint8

const (
	ActionNone ActionKind = iota
	ActionWander
	ActionForage
	ActionHunt
	ActionFlee
	ActionSleep
	ActionMate
	NumActionKinds
)

var actionNames = [NumActionKinds]string{
	"none", "wander", "forage", "hunt", "flee", "sleep", "mate",
}

// String returns the config name of the kind.
func (k ActionKind) String() string {
	if k < NumActionKinds {
		return actionNames[k]
	}
	return "unknown"
}

// ParseActionKind maps a config name back to its kind.
func ParseActionKind(name string) (ActionKind, bool) {
	for i, n := range actionNames {
		if n == name && ActionKind(i) != ActionNone {
			return ActionKind(i), true
		}
	}
	return ActionNone, false
}

// AllActionKinds returns every real kind in ordinal order.
func AllActionKinds() []ActionKind {
	kinds := make([]ActionKind, 0, NumActionKinds-1)
	for k := ActionNone + 1; k < NumActionKinds; k++ {
		kinds = append(kinds, k)
	}
	return kinds
}
