package scheduler

import (
	"slices"
	"testing"
)

func TestStepRunsInRegistrationOrder(t *testing.T) {
	s := New()
	var got []int
	for i := 0; i < 3; i++ {
		s.Register(func(int64) { got = append(got, i) })
	}
	if tick := s.Step(); tick != 1 {
		t.Errorf("tick = %d, want 1", tick)
	}
	if !slices.Equal(got, []int{0, 1, 2}) {
		t.Errorf("order = %v, want [0 1 2]", got)
	}
}

func TestUnregister(t *testing.T) {
	s := New()
	var a, b int
	ha := s.Register(func(int64) { a++ })
	s.Register(func(int64) { b++ })

	if !s.Unregister(ha) {
		t.Fatal("unregister failed")
	}
	if s.Unregister(ha) {
		t.Error("second unregister should report false")
	}
	s.Step()
	if a != 0 || b != 1 || s.Len() != 1 {
		t.Errorf("a=%d b=%d len=%d, want 0 1 1", a, b, s.Len())
	}
}

func TestUnregisterDuringStep(t *testing.T) {
	s := New()
	var ran []string
	var hb Handle
	s.Register(func(int64) {
		ran = append(ran, "a")
		s.Unregister(hb)
	})
	hb = s.Register(func(int64) { ran = append(ran, "b") })
	s.Register(func(int64) { ran = append(ran, "c") })

	s.Step()
	s.Step()
	want := []string{"a", "c", "a", "c"}
	if !slices.Equal(ran, want) {
		t.Errorf("ran = %v, want %v", ran, want)
	}
	if s.Len() != 2 {
		t.Errorf("len = %d, want 2", s.Len())
	}
}

func TestRegisterDuringStepRunsNextTick(t *testing.T) {
	s := New()
	var ticks []int64
	s.Register(func(tick int64) {
		if tick == 1 {
			s.Register(func(tick int64) { ticks = append(ticks, tick) })
		}
	})

	s.Step()
	if len(ticks) != 0 {
		t.Fatalf("new callback ran in the step that registered it: %v", ticks)
	}
	s.Step()
	if !slices.Equal(ticks, []int64{2}) {
		t.Errorf("ticks = %v, want [2]", ticks)
	}
}

func TestSelfUnregister(t *testing.T) {
	s := New()
	n := 0
	var h Handle
	h = s.Register(func(int64) {
		n++
		s.Unregister(h)
	})
	s.Step()
	s.Step()
	if n != 1 || s.Len() != 0 {
		t.Errorf("n=%d len=%d, want 1 0", n, s.Len())
	}
}
