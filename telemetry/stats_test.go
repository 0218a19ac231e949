package telemetry

import (
	"math"
	"testing"

	"github.com/pthm-cable/fauna/agent"
)

func TestPercentile(t *testing.T) {
	tests := []struct {
		name   string
		sorted []float64
		p      float64
		want   float64
	}{
		{"empty slice", []float64{}, 0.5, 0},
		{"single element", []float64{5.0}, 0.5, 5.0},
		{"p0", []float64{1, 2, 3, 4, 5}, 0.0, 1.0},
		{"p100", []float64{1, 2, 3, 4, 5}, 1.0, 5.0},
		{"constant", []float64{2, 2, 2, 2}, 0.3, 2.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Percentile(tt.sorted, tt.p)
			if math.Abs(got-tt.want) > 0.001 {
				t.Errorf("Percentile(%v, %v) = %v, want %v", tt.sorted, tt.p, got, tt.want)
			}
		})
	}
}

func TestSummarize(t *testing.T) {
	values := []float64{9, 4, 2, 4, 5, 4, 7, 5}
	d := Summarize(values)

	if math.Abs(d.Mean-5) > 1e-9 {
		t.Errorf("mean = %v, want 5", d.Mean)
	}
	// Sample standard deviation: sqrt(32/7)
	if want := math.Sqrt(32.0 / 7.0); math.Abs(d.Std-want) > 1e-9 {
		t.Errorf("std = %v, want %v", d.Std, want)
	}
	if !(d.P10 <= d.P50 && d.P50 <= d.P90) {
		t.Errorf("percentiles out of order: %+v", d)
	}
	if d.P10 < 2 || d.P90 > 9 {
		t.Errorf("percentiles outside the sample range: %+v", d)
	}
	if values[0] != 9 {
		t.Error("Summarize must not reorder its input")
	}
}

func TestSummarizeEmpty(t *testing.T) {
	if d := Summarize(nil); d != (Distribution{}) {
		t.Errorf("empty sample = %+v, want zeros", d)
	}
}

func TestCollectorFlush(t *testing.T) {
	c := NewCollector(1, 0.1)
	if c.WindowDurationTicks() != 10 {
		t.Fatalf("window = %d ticks, want 10", c.WindowDurationTicks())
	}

	hunter := &agent.Agent{ID: 1, Genome: agent.Genome{Species: 2}}
	prey := &agent.Agent{ID: 2, Genome: agent.Genome{Species: 1}, Cause: agent.CauseInjury}

	c.Record(NewActionEvent(3, hunter, agent.ActionHunt))
	c.Record(NewAttackEvent(4, hunter, prey.ID, 30))
	c.Record(NewAttackEvent(5, hunter, prey.ID, 30))
	c.Record(NewKillEvent(5, hunter, prey.ID))
	c.Record(NewDeathEvent(5, prey))
	c.Record(NewForageEvent(6, hunter, 12.5))
	c.Record(NewPathFailedEvent(7, hunter))

	if c.ShouldFlush(9) || !c.ShouldFlush(10) {
		t.Error("flush should be due after exactly one window")
	}

	s := c.Flush(10, Sample{Population: 1, Satiety: []float64{0.5}})
	if s.ActHunt != 1 || s.Attacks != 2 || s.Kills != 1 || s.KillRate != 0.5 {
		t.Errorf("hunting stats = %+v", s)
	}
	if s.Deaths != 1 || s.DeathsInjury != 1 {
		t.Errorf("deaths = %d (injury %d), want 1", s.Deaths, s.DeathsInjury)
	}
	if s.FoodEaten != 12.5 || s.PathsFailed != 1 {
		t.Errorf("food = %v paths failed = %d", s.FoodEaten, s.PathsFailed)
	}
	if s.SatietyMean != 0.5 || math.Abs(s.SimTimeSec-1) > 1e-6 {
		t.Errorf("satiety mean = %v sim time = %v", s.SatietyMean, s.SimTimeSec)
	}

	next := c.Flush(20, Sample{})
	if next.Attacks != 0 || next.ActHunt != 0 || next.WindowStartTick != 10 {
		t.Error("counters not reset after flush")
	}
}
