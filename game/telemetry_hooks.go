package game

import (
	"github.com/pthm-cable/fauna/components"
	"github.com/pthm-cable/fauna/telemetry"
)

// record counts an event in the current window and in the lifetime stats of
// the agent it belongs to.
func (s *Sim) record(e telemetry.Event) {
	s.collector.Record(e)
	s.lifetime.Record(e)
}

// flushTelemetry checks if the stats window should be flushed.
func (s *Sim) flushTelemetry() {
	tick := s.Tick()
	if !s.collector.ShouldFlush(tick) {
		return
	}

	stats := s.collector.Flush(tick, s.sample())
	perfStats := s.perf.Stats()

	// Call stats callback if provided
	if s.statsCallback != nil {
		s.statsCallback(stats)
	}

	// Log stats if enabled (console output)
	if s.logStats {
		stats.LogStats()
		perfStats.LogStats()
	}

	// Write to CSV if output manager is enabled
	if s.output != nil {
		if err := s.output.WriteTelemetry(stats); err != nil {
			s.logger.Error("failed to write telemetry", "error", err)
		}
		if err := s.output.WritePerf(perfStats, stats.WindowEndTick); err != nil {
			s.logger.Error("failed to write perf", "error", err)
		}
	}
}

// sample collects the population and food state at the end of a window.
func (s *Sim) sample() telemetry.Sample {
	smp := telemetry.Sample{
		Species:          make(map[uint16]int),
		PendingCallbacks: s.dispatcher.Len(),
	}
	stuckAfter := int32(s.cfg.Sim.Substeps)

	query := s.creatureFilter.Query()
	for query.Next() {
		_, motion, cr := query.Get()
		c := s.creatures[cr.ID]
		if c == nil || c.agent.Dead() {
			continue
		}
		a := c.agent

		smp.Population++
		smp.Species[cr.Species]++
		smp.Satiety = append(smp.Satiety, float64(a.Satiety()))
		smp.Health = append(smp.Health, float64(a.Health))
		smp.Age = append(smp.Age, float64(a.Age))

		if a.Sleeping {
			smp.Sleeping++
		}
		if c.machine.Busy() {
			smp.Busy++
		}
		if motion.Active() && motion.StuckTicks >= stuckAfter {
			smp.StuckMovers++
		}
	}

	foodQuery := s.foodFilter.Query()
	for foodQuery.Next() {
		_, food := foodQuery.Get()
		switch food.Kind {
		case components.FoodPlant:
			smp.PlantFood += float64(food.Amount)
		case components.FoodCarrion:
			smp.CarrionItems++
		}
	}

	return smp
}
