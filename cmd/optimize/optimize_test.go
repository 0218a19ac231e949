package main

import (
	"bytes"
	"encoding/csv"
	"math"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/pthm-cable/fauna/config"
)

func TestEvalLogTracksBestAndWritesRows(t *testing.T) {
	pv := NewParamVector()
	var rows, progress bytes.Buffer
	evals, err := newEvalLog(pv, &rows, &progress, 3, func() float64 { return 0.5 })
	if err != nil {
		t.Fatal(err)
	}
	if _, _, ok := evals.Best(); ok {
		t.Error("best reported before any evaluation")
	}

	// Lower forage weight is better.
	f := evals.objective(func(raw []float64) float64 { return raw[0] - 10 })

	mid := make([]float64, pv.Dim())
	low := make([]float64, pv.Dim())
	out := make([]float64, pv.Dim())
	for i := range mid {
		mid[i] = 0.5
		out[i] = -2 // clamps to each spec's minimum
	}
	f(mid)
	f(low)
	f(out)

	best, fitness, ok := evals.Best()
	if !ok {
		t.Fatal("no best after three evaluations")
	}
	if evals.Count() != 3 {
		t.Errorf("count = %d, want 3", evals.Count())
	}
	if want := pv.Specs[0].Min - 10; math.Abs(fitness-want) > 1e-9 {
		t.Errorf("best fitness = %v, want %v", fitness, want)
	}
	for i, spec := range pv.Specs {
		if best[i] != spec.Min {
			t.Errorf("%s = %v, want clamped to %v", spec.Name, best[i], spec.Min)
		}
	}

	records, err := csv.NewReader(&rows).ReadAll()
	if err != nil {
		t.Fatal(err)
	}
	if len(records) != 4 {
		t.Fatalf("rows = %d, want header + 3", len(records))
	}
	if got := len(records[0]); got != 2+pv.Dim() {
		t.Errorf("header has %d columns, want %d", got, 2+pv.Dim())
	}
	if records[0][2] != pv.Specs[0].Name || records[3][0] != "3" {
		t.Errorf("unexpected rows: %v", records)
	}
	if n := strings.Count(progress.String(), "\n"); n != 3 {
		t.Errorf("progress lines = %d, want 3", n)
	}
}

func TestPopulationSize(t *testing.T) {
	tests := []struct {
		dim, requested, want int
	}{
		{12, 0, 11},
		{1, 0, 4},
		{12, 20, 20},
	}
	for _, tt := range tests {
		if got := populationSize(tt.dim, tt.requested); got != tt.want {
			t.Errorf("populationSize(%d, %d) = %d, want %d", tt.dim, tt.requested, got, tt.want)
		}
	}
}

func TestSaveBestConfig(t *testing.T) {
	pv := NewParamVector()
	best := pv.DefaultVector()
	best[1] = 2.5 // hunt_weight
	path := filepath.Join(t.TempDir(), "best.yaml")

	if err := saveBestConfig("", pv, best, path); err != nil {
		t.Fatal(err)
	}
	cfg, err := config.Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if w := cfg.Actions["hunt"].Weight; w != 2.5 {
		t.Errorf("saved hunt weight = %v, want 2.5", w)
	}
}

func TestFormatDuration(t *testing.T) {
	if got := formatDuration(83 * time.Second); got != "1m23s" {
		t.Errorf("got %q, want 1m23s", got)
	}
	if got := formatDuration(time.Hour + 2*time.Minute + 3*time.Second); got != "1h02m03s" {
		t.Errorf("got %q, want 1h02m03s", got)
	}
}
