package behavior

import "github.com/pthm-cable/fauna/components"

// MovementCallback runs when a creature reaches the end of its route.
type MovementCallback func(at components.Position)

// Dispatcher holds pending movement callbacks keyed by request id.
// Each callback fires at most once: its entry is removed before it runs.
type Dispatcher struct {
	next    components.RequestID
	pending map[components.RequestID]MovementCallback
}

// NewDispatcher creates an empty dispatcher.
func NewDispatcher() *Dispatcher {
	return &Dispatcher{pending: make(map[components.RequestID]MovementCallback)}
}

// Register stores cb and returns its request id. Ids are never reused.
func (d *Dispatcher) Register(cb MovementCallback) components.RequestID {
	d.next++
	d.pending[d.next] = cb
	return d.next
}

// Remove drops a pending callback. Returns false if it was not pending.
func (d *Dispatcher) Remove(id components.RequestID) bool {
	if _, ok := d.pending[id]; !ok {
		return false
	}
	delete(d.pending, id)
	return true
}

// Fire runs and removes the callback for id. Unknown, removed and already
// fired ids are ignored and return false.
func (d *Dispatcher) Fire(id components.RequestID, at components.Position) bool {
	cb, ok := d.pending[id]
	if !ok {
		return false
	}
	delete(d.pending, id)
	if cb != nil {
		cb(at)
	}
	return true
}

// Has reports whether id is still pending.
func (d *Dispatcher) Has(id components.RequestID) bool {
	_, ok := d.pending[id]
	return ok
}

// Len returns the number of pending callbacks.
func (d *Dispatcher) Len() int {
	return len(d.pending)
}
