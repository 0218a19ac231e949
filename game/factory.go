package game

import (
	"log/slog"

	"github.com/pthm-cable/fauna/agent"
	"github.com/pthm-cable/fauna/behavior"
	"github.com/pthm-cable/fauna/components"
	"github.com/pthm-cable/fauna/config"
	"github.com/pthm-cable/fauna/systems"
)

// deriveParams collects the coefficients shared by every species.
func deriveParams(cfg *config.Config) agent.DeriveParams {
	return agent.DeriveParams{
		HungerPerSize:    float32(cfg.Agent.HungerPerSize),
		HungerPerSpeed:   float32(cfg.Agent.HungerPerSpeed),
		MaxHungerPerSize: float32(cfg.Agent.MaxHungerPerSize),
		RegenFraction:    float32(cfg.Agent.RegenFraction),
		TicksPerDay:      int32(cfg.Sim.TicksPerDay),
	}
}

func terrainParams(cfg *config.Config) systems.TerrainParams {
	t := cfg.Terrain
	return systems.TerrainParams{
		Scale:       t.Scale,
		Octaves:     t.Octaves,
		WaterLevel:  t.WaterLevel,
		MaxWeight:   t.MaxWeight,
		TrailWidth:  t.TrailWidth,
		TrailWeight: t.TrailWeight,
	}
}

// buildTunings converts the actions section. Unknown names are logged and
// skipped; missing kinds fall back to behavior.DefaultTuning.
func buildTunings(cfg *config.Config, logger *slog.Logger) map[agent.ActionKind]behavior.Tuning {
	out := make(map[agent.ActionKind]behavior.Tuning, len(cfg.Actions))
	for name, ac := range cfg.Actions {
		kind, ok := agent.ParseActionKind(name)
		if !ok {
			logger.Warn("unknown action in config", "action", name)
			continue
		}
		t := behavior.Tuning{
			Cooldown:  behavior.UnsetCooldown,
			Weight:    ac.Weight,
			Success:   ac.Success,
			Threshold: ac.Threshold,
		}
		if ac.Cooldown != nil {
			t.Cooldown = int32(*ac.Cooldown)
		}
		out[kind] = t
	}
	return out
}

// buildGenomes converts species templates into founder genomes, indexed by
// species id - 1. A species without an actions list may use every kind.
func buildGenomes(cfg *config.Config, logger *slog.Logger) []agent.Genome {
	genomes := make([]agent.Genome, len(cfg.Species))
	for i, sp := range cfg.Species {
		g := agent.Genome{
			Species:         uint16(i + 1),
			Size:            float32(sp.Size),
			Speed:           float32(sp.Speed),
			BaseHealth:      float32(sp.Health),
			AttackPower:     float32(sp.Attack),
			PerceptionRange: float32(sp.Perception),
			Lifespan:        int32(sp.Lifespan),
			MaturityAge:     int32(sp.MaturityAge),
			SleepStart:      int32(sp.SleepStart),
			SleepEnd:        int32(sp.SleepEnd),
			Prey:            speciesIDs(cfg, sp.Prey),
			Predators:       speciesIDs(cfg, sp.Predators),
		}

		for _, name := range sp.Diet {
			kind, ok := components.ParseFoodKind(name)
			if !ok {
				logger.Warn("unknown food kind in config", "species", sp.Name, "food", name)
				continue
			}
			g.Diet = append(g.Diet, kind)
		}

		if len(sp.Actions) == 0 {
			g.Actions = agent.AllActionKinds()
		}
		for _, name := range sp.Actions {
			kind, ok := agent.ParseActionKind(name)
			if !ok {
				logger.Warn("unknown action in config", "species", sp.Name, "action", name)
				continue
			}
			g.Actions = append(g.Actions, kind)
		}

		genomes[i] = g
	}
	return genomes
}

// speciesIDs resolves species names. Validate has already rejected unknown
// names.
func speciesIDs(cfg *config.Config, names []string) []uint16 {
	var ids []uint16
	for _, name := range names {
		if id, ok := cfg.SpeciesID(name); ok {
			ids = append(ids, id)
		}
	}
	return ids
}
