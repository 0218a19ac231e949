// Package components defines ECS components for the simulation.
package components

// Creature tags an entity that is driven by an agent.
// All mutable creature state lives in the agent; the ECS only carries what
// the movement and perception passes need.
type Creature struct {
	ID      uint32
	Species uint16
}

// RequestID identifies one registered movement-completion callback.
// Zero means no callback.
type RequestID uint64

// Motion is the waypoint route a creature is currently walking.
// Set by the host when an action starts moving, consumed by the movement system.
type Motion struct {
	Waypoints []Position // World-space centers of path cells, start excluded
	Index     int        // Next waypoint to reach
	Request   RequestID  // Callback to fire on arrival at the final waypoint
	Speed     float32    // World units per second

	StuckTicks int32   // Substeps without progress toward the current waypoint
	LastDist   float32 // Distance to current waypoint on the previous substep
}

// Active reports whether there is still a waypoint to walk to.
func (m *Motion) Active() bool {
	return m.Index < len(m.Waypoints)
}

// Clear drops the route.
func (m *Motion) Clear() {
	m.Waypoints = m.Waypoints[:0]
	m.Index = 0
	m.Request = 0
	m.StuckTicks = 0
	m.LastDist = 0
}
