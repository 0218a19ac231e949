// Package scheduler runs registered per-tick callbacks in a fixed order.
//
// Callbacks are registered when an agent is created and unregistered when it
// dies. Both are allowed while a step is running: a callback registered
// mid-step first runs on the next step, and one unregistered mid-step does
// not run again, even later in the same step.
package scheduler

// Handle identifies a registration. The zero Handle is never issued.
type Handle uint64

// TickFunc is called once per step with the tick number being run.
type TickFunc func(tick int64)

type entry struct {
	handle Handle
	fn     TickFunc
}

// Scheduler owns the tick callbacks. It is not safe for concurrent use.
type Scheduler struct {
	entries  []entry
	index    map[Handle]int
	next     Handle
	tick     int64
	stepping bool
	dirty    bool
}

// New creates an empty scheduler.
func New() *Scheduler {
	return &Scheduler{index: make(map[Handle]int)}
}

// Register adds fn and returns its handle. Callbacks run in registration
// order.
func (s *Scheduler) Register(fn TickFunc) Handle {
	s.next++
	s.index[s.next] = len(s.entries)
	s.entries = append(s.entries, entry{handle: s.next, fn: fn})
	return s.next
}

// Unregister removes a callback. Returns false for unknown handles.
func (s *Scheduler) Unregister(h Handle) bool {
	i, ok := s.index[h]
	if !ok {
		return false
	}
	delete(s.index, h)
	s.entries[i].fn = nil
	if s.stepping {
		s.dirty = true
		return true
	}
	s.compact()
	return true
}

// Step advances the tick counter and runs every live callback once.
// Returns the tick that was run.
func (s *Scheduler) Step() int64 {
	s.tick++
	s.stepping = true
	n := len(s.entries)
	for i := 0; i < n; i++ {
		if fn := s.entries[i].fn; fn != nil {
			fn(s.tick)
		}
	}
	s.stepping = false
	if s.dirty {
		s.compact()
	}
	return s.tick
}

// Tick returns the last tick run.
func (s *Scheduler) Tick() int64 {
	return s.tick
}

// Len returns the number of live registrations.
func (s *Scheduler) Len() int {
	return len(s.index)
}

// compact drops removed entries and rebuilds the index, keeping order.
func (s *Scheduler) compact() {
	live := s.entries[:0]
	for _, e := range s.entries {
		if e.fn != nil {
			s.index[e.handle] = len(live)
			live = append(live, e)
		}
	}
	clear(s.entries[len(live):])
	s.entries = live
	s.dirty = false
}
