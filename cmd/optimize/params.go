// Package main provides CMA-ES optimization for behavior tuning parameters.
package main

import (
	"math"

	"github.com/pthm-cable/fauna/config"
)

// ParamSpec defines a single optimizable parameter.
type ParamSpec struct {
	Name    string  // Human-readable name
	Path    string  // Config path for logging
	Min     float64 // Lower bound
	Max     float64 // Upper bound
	Default float64 // Default value
}

// ParamVector holds the set of all optimizable parameters.
type ParamVector struct {
	Specs []ParamSpec
}

// NewParamVector creates the standard set of optimizable parameters.
func NewParamVector() *ParamVector {
	return &ParamVector{
		Specs: []ParamSpec{
			// Action weights
			{Name: "forage_weight", Path: "actions.forage.weight", Min: 0.2, Max: 3.0, Default: 1.0},
			{Name: "hunt_weight", Path: "actions.hunt.weight", Min: 0.2, Max: 3.0, Default: 1.5},
			{Name: "flee_weight", Path: "actions.flee.weight", Min: 0.5, Max: 5.0, Default: 2.0},
			{Name: "mate_weight", Path: "actions.mate.weight", Min: 0.1, Max: 2.0, Default: 0.8},
			// Success checks and satiety gates
			{Name: "hunt_success", Path: "actions.hunt.success", Min: 0.2, Max: 1.0, Default: 0.8},
			{Name: "forage_threshold", Path: "actions.forage.threshold", Min: 0.4, Max: 1.0, Default: 0.85},
			{Name: "mate_threshold", Path: "actions.mate.threshold", Min: 0.3, Max: 0.95, Default: 0.7},
			// Cooldowns
			{Name: "mate_cooldown", Path: "actions.mate.cooldown", Min: 100, Max: 2000, Default: 600},
			{Name: "global_cooldown", Path: "sim.global_cooldown", Min: 1, Max: 20, Default: 5},
			{Name: "replan_ticks", Path: "sim.replan_ticks", Min: 5, Max: 100, Default: 30},
			// Food and births
			{Name: "plant_regrow", Path: "food.plant_regrow", Min: 0.01, Max: 0.3, Default: 0.05},
			{Name: "birth_cost", Path: "agent.birth_cost", Min: 0.1, Max: 0.7, Default: 0.4},
		},
	}
}

// Dim returns the number of parameters.
func (pv *ParamVector) Dim() int {
	return len(pv.Specs)
}

// DefaultVector returns the default parameter values as a slice.
func (pv *ParamVector) DefaultVector() []float64 {
	v := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		v[i] = spec.Default
	}
	return v
}

// Normalize converts raw parameter values to [0,1] range.
func (pv *ParamVector) Normalize(raw []float64) []float64 {
	normalized := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		normalized[i] = (raw[i] - spec.Min) / (spec.Max - spec.Min)
	}
	return normalized
}

// Denormalize converts [0,1] values back to raw parameter values.
func (pv *ParamVector) Denormalize(normalized []float64) []float64 {
	raw := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		raw[i] = spec.Min + normalized[i]*(spec.Max-spec.Min)
	}
	return raw
}

// Clamp ensures all values are within bounds.
func (pv *ParamVector) Clamp(v []float64) []float64 {
	clamped := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		clamped[i] = min(max(v[i], spec.Min), spec.Max)
	}
	return clamped
}

// ApplyToConfig applies parameter values to a Config struct.
// Order must match Specs order.
func (pv *ParamVector) ApplyToConfig(cfg *config.Config, values []float64) {
	clamped := pv.Clamp(values)
	i := 0
	next := func() float64 {
		v := clamped[i]
		i++
		return v
	}

	setAction(cfg, "forage", func(a *config.ActionConfig) { a.Weight = next() })
	setAction(cfg, "hunt", func(a *config.ActionConfig) { a.Weight = next() })
	setAction(cfg, "flee", func(a *config.ActionConfig) { a.Weight = next() })
	setAction(cfg, "mate", func(a *config.ActionConfig) { a.Weight = next() })

	setAction(cfg, "hunt", func(a *config.ActionConfig) { a.Success = next() })
	setAction(cfg, "forage", func(a *config.ActionConfig) { a.Threshold = next() })
	setAction(cfg, "mate", func(a *config.ActionConfig) { a.Threshold = next() })

	setAction(cfg, "mate", func(a *config.ActionConfig) {
		cd := int(math.Round(next()))
		a.Cooldown = &cd
	})
	cfg.Sim.GlobalCooldown = int(math.Round(next()))
	cfg.Sim.ReplanTicks = int(math.Round(next()))

	cfg.Food.PlantRegrow = next()
	cfg.Agent.BirthCost = next()
}

// ExtractFromConfig extracts current parameter values from a Config struct.
func (pv *ParamVector) ExtractFromConfig(cfg *config.Config) []float64 {
	cooldown := func(name string) float64 {
		if cd := cfg.Actions[name].Cooldown; cd != nil {
			return float64(*cd)
		}
		return 0
	}
	return []float64{
		cfg.Actions["forage"].Weight,
		cfg.Actions["hunt"].Weight,
		cfg.Actions["flee"].Weight,
		cfg.Actions["mate"].Weight,
		cfg.Actions["hunt"].Success,
		cfg.Actions["forage"].Threshold,
		cfg.Actions["mate"].Threshold,
		cooldown("mate"),
		float64(cfg.Sim.GlobalCooldown),
		float64(cfg.Sim.ReplanTicks),
		cfg.Food.PlantRegrow,
		cfg.Agent.BirthCost,
	}
}

// setAction edits one entry of the actions map, creating it if missing.
func setAction(cfg *config.Config, name string, edit func(*config.ActionConfig)) {
	if cfg.Actions == nil {
		cfg.Actions = make(map[string]config.ActionConfig)
	}
	a := cfg.Actions[name]
	edit(&a)
	cfg.Actions[name] = a
}
