package main

import (
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"strconv"
	"time"

	"gonum.org/v1/gonum/optimize"

	"github.com/pthm-cable/fauna/config"
)

// evalLog wraps the objective. It keeps the best clamped parameter set seen,
// writes one CSV row per evaluation and prints progress.
type evalLog struct {
	params   *ParamVector
	rows     *csv.Writer
	progress io.Writer
	maxEvals int
	quality  func() float64

	count      int
	best       float64
	bestParams []float64
	start      time.Time
}

// newEvalLog writes the CSV header (eval, fitness, one column per parameter)
// and returns a log ready to wrap an objective.
func newEvalLog(params *ParamVector, rows, progress io.Writer, maxEvals int, quality func() float64) (*evalLog, error) {
	l := &evalLog{
		params:   params,
		rows:     csv.NewWriter(rows),
		progress: progress,
		maxEvals: maxEvals,
		quality:  quality,
		best:     math.Inf(1),
		start:    time.Now(),
	}
	header := []string{"eval", "fitness"}
	for _, spec := range params.Specs {
		header = append(header, spec.Name)
	}
	if err := l.rows.Write(header); err != nil {
		return nil, err
	}
	l.rows.Flush()
	return l, l.rows.Error()
}

// objective turns f, which takes raw parameter values, into a function of
// the normalized vector CMA-ES searches over.
func (l *evalLog) objective(f func(raw []float64) float64) func(x []float64) float64 {
	return func(x []float64) float64 {
		raw := l.params.Clamp(l.params.Denormalize(x))
		fitness := f(raw)
		l.record(raw, fitness)
		return fitness
	}
}

func (l *evalLog) record(raw []float64, fitness float64) {
	l.count++
	if fitness < l.best {
		l.best = fitness
		l.bestParams = append(l.bestParams[:0], raw...)
	}

	row := []string{strconv.Itoa(l.count), fmt.Sprintf("%.6f", fitness)}
	for _, v := range raw {
		row = append(row, fmt.Sprintf("%.6f", v))
	}
	l.rows.Write(row)
	l.rows.Flush()

	if l.progress == nil {
		return
	}
	elapsed := time.Since(l.start)
	remaining := time.Duration(max(l.maxEvals-l.count, 0)) * (elapsed / time.Duration(l.count))
	quality := 0.0
	if l.quality != nil {
		quality = l.quality()
	}
	// fitness = -(survival × (1 + 0.2×quality))
	survival := -fitness / (1 + 0.2*quality)
	fmt.Fprintf(l.progress, "Eval %d/%d: survived=%.0f ticks quality=%.2f (best=%.0f) | elapsed: %s, ETA: %s\n",
		l.count, l.maxEvals, survival, quality, l.best,
		formatDuration(elapsed), formatDuration(remaining))
}

// Best returns the best parameters seen so far and their fitness.
// ok is false before the first evaluation.
func (l *evalLog) Best() (params []float64, fitness float64, ok bool) {
	if l.bestParams == nil {
		return nil, 0, false
	}
	return l.bestParams, l.best, true
}

// Count returns the number of evaluations recorded.
func (l *evalLog) Count() int {
	return l.count
}

// populationSize returns requested, or the CMA-ES default 4 + ⌊3 ln n⌋.
func populationSize(dim, requested int) int {
	if requested > 0 {
		return requested
	}
	return 4 + int(3*math.Log(float64(dim)))
}

// newMethod returns the CMA-ES method used by the tuner.
func newMethod(dim, population int) *optimize.CmaEsChol {
	return &optimize.CmaEsChol{
		InitStepSize: 0.3,
		Population:   populationSize(dim, population),
	}
}

// saveBestConfig loads a fresh base config, applies best and writes it to path.
func saveBestConfig(configPath string, params *ParamVector, best []float64, path string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("reloading config: %w", err)
	}
	params.ApplyToConfig(cfg, best)
	return cfg.WriteYAML(path)
}

// formatDuration formats a duration as 1h02m03s, or 2m03s below an hour.
func formatDuration(d time.Duration) string {
	d = d.Round(time.Second)
	h := d / time.Hour
	d -= h * time.Hour
	m := d / time.Minute
	d -= m * time.Minute
	s := d / time.Second

	if h > 0 {
		return fmt.Sprintf("%dh%02dm%02ds", h, m, s)
	}
	return fmt.Sprintf("%dm%02ds", m, s)
}
