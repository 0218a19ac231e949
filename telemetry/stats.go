package telemetry

import (
	"log/slog"
	"slices"

	"gonum.org/v1/gonum/stat"
)

// WindowStats holds aggregated statistics for a time window.
type WindowStats struct {
	RunID           string  `csv:"run_id"`
	WindowStartTick int64   `csv:"-"`
	WindowEndTick   int64   `csv:"window_end"`
	SimTimeSec      float64 `csv:"sim_time"`

	// Population at window end
	Population int `csv:"population"`
	Species    int `csv:"species"`

	// Events during window
	Births           int `csv:"births"`
	Deaths           int `csv:"deaths"`
	DeathsStarvation int `csv:"deaths_starvation"`
	DeathsInjury     int `csv:"deaths_injury"`
	DeathsOldAge     int `csv:"deaths_old_age"`
	DeathsDespawn    int `csv:"deaths_despawn"`

	// Predation and feeding
	Attacks   int     `csv:"attacks"`
	Kills     int     `csv:"kills"`
	KillRate  float64 `csv:"kill_rate"`
	FoodEaten float64 `csv:"food_eaten"`

	// Navigation
	PathsFailed int `csv:"paths_failed"`
	Arrivals    int `csv:"arrivals"`

	// Actions started during window
	ActWander int `csv:"act_wander"`
	ActForage int `csv:"act_forage"`
	ActHunt   int `csv:"act_hunt"`
	ActFlee   int `csv:"act_flee"`
	ActSleep  int `csv:"act_sleep"`
	ActMate   int `csv:"act_mate"`

	// Decision state (sampled at window end)
	Sleeping         int `csv:"sleeping"`
	Busy             int `csv:"busy"`
	PendingCallbacks int `csv:"pending_callbacks"`
	StuckMovers      int `csv:"stuck_movers"`

	// Food
	PlantFood    float64 `csv:"plant_food"`
	CarrionItems int     `csv:"carrion_items"`

	// Vitals distribution (sampled at window end)
	SatietyMean float64 `csv:"satiety_mean"`
	SatietyP10  float64 `csv:"satiety_p10"`
	SatietyP50  float64 `csv:"satiety_p50"`
	SatietyP90  float64 `csv:"satiety_p90"`
	HealthMean  float64 `csv:"health_mean"`
	HealthStd   float64 `csv:"health_std"`
	AgeMean     float64 `csv:"age_mean"`
	AgeP90      float64 `csv:"age_p90"`
}

// Distribution summarizes a sample.
type Distribution struct {
	Mean float64
	Std  float64
	P10  float64
	P50  float64
	P90  float64
}

// Summarize computes mean, sample standard deviation and percentiles.
// An empty sample yields all zeros.
func Summarize(values []float64) Distribution {
	if len(values) == 0 {
		return Distribution{}
	}

	sorted := slices.Clone(values)
	slices.Sort(sorted)

	var d Distribution
	if len(sorted) > 1 {
		d.Mean, d.Std = stat.MeanStdDev(sorted, nil)
	} else {
		d.Mean = sorted[0]
	}
	d.P10 = Percentile(sorted, 0.10)
	d.P50 = Percentile(sorted, 0.50)
	d.P90 = Percentile(sorted, 0.90)
	return d
}

// Percentile returns the p-th quantile of a sorted slice using linear
// interpolation of the empirical distribution. Returns 0 if slice is empty.
func Percentile(sorted []float64, p float64) float64 {
	if len(sorted) == 0 {
		return 0
	}
	if p <= 0 {
		return sorted[0]
	}
	if p >= 1 {
		return sorted[len(sorted)-1]
	}
	return stat.Quantile(p, stat.LinInterp, sorted, nil)
}

// LogValue implements slog.LogValuer for structured logging.
func (s WindowStats) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int64("window_start", s.WindowStartTick),
		slog.Int64("window_end", s.WindowEndTick),
		slog.Float64("sim_time", s.SimTimeSec),
		slog.Int("population", s.Population),
		slog.Int("species", s.Species),
		slog.Int("births", s.Births),
		slog.Int("deaths", s.Deaths),
		slog.Int("deaths_starvation", s.DeathsStarvation),
		slog.Int("deaths_injury", s.DeathsInjury),
		slog.Int("deaths_old_age", s.DeathsOldAge),
		slog.Int("attacks", s.Attacks),
		slog.Int("kills", s.Kills),
		slog.Float64("kill_rate", s.KillRate),
		slog.Float64("food_eaten", s.FoodEaten),
		slog.Int("paths_failed", s.PathsFailed),
		slog.Int("arrivals", s.Arrivals),
		slog.Int("sleeping", s.Sleeping),
		slog.Int("busy", s.Busy),
		slog.Int("pending_callbacks", s.PendingCallbacks),
		slog.Int("stuck_movers", s.StuckMovers),
		slog.Float64("plant_food", s.PlantFood),
		slog.Int("carrion_items", s.CarrionItems),
		slog.Float64("satiety_mean", s.SatietyMean),
		slog.Float64("satiety_p50", s.SatietyP50),
		slog.Float64("health_mean", s.HealthMean),
		slog.Float64("age_mean", s.AgeMean),
	)
}

// LogStats logs the window stats using slog.
func (s WindowStats) LogStats() {
	slog.Info("stats",
		"window_end", s.WindowEndTick,
		"sim_time", s.SimTimeSec,
		"population", s.Population,
		"births", s.Births,
		"deaths", s.Deaths,
		"kills", s.Kills,
		"food_eaten", s.FoodEaten,
		"paths_failed", s.PathsFailed,
		"wander", s.ActWander,
		"forage", s.ActForage,
		"hunt", s.ActHunt,
		"flee", s.ActFlee,
		"sleep", s.ActSleep,
		"mate", s.ActMate,
		"satiety_mean", s.SatietyMean,
		"health_mean", s.HealthMean,
	)
}
