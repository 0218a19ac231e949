package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.World.Width <= 0 || cfg.Sim.DT <= 0 {
		t.Fatalf("defaults not loaded: %+v", cfg.World)
	}
	if len(cfg.Species) == 0 {
		t.Fatal("expected default species")
	}
	if id, ok := cfg.SpeciesID(cfg.Species[0].Name); !ok || id != 1 {
		t.Errorf("first species id = %d, %v, want 1", id, ok)
	}
	if want := float32(float64(cfg.World.Width) * cfg.World.CellSize); cfg.Derived.WorldW32 != want {
		t.Errorf("WorldW32 = %v, want %v", cfg.Derived.WorldW32, want)
	}
	if a, ok := cfg.Actions["forage"]; !ok || a.Cooldown == nil {
		t.Error("forage should have a configured cooldown")
	}
}

func TestLoadMergesUserFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "cfg.yaml")
	user := `
sim:
  global_cooldown: 9
actions:
  hunt:
    weight: 3
`
	if err := os.WriteFile(path, []byte(user), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Sim.GlobalCooldown != 9 {
		t.Errorf("global cooldown = %d, want 9", cfg.Sim.GlobalCooldown)
	}
	if cfg.Sim.DT <= 0 {
		t.Error("fields absent from the user file should keep their defaults")
	}
	hunt := cfg.Actions["hunt"]
	if hunt.Weight != 3 || hunt.Cooldown != nil {
		t.Errorf("hunt = %+v, want weight 3 and no cooldown", hunt)
	}
	if _, ok := cfg.Actions["forage"]; !ok {
		t.Error("untouched action entries should survive the merge")
	}
}

func TestValidateUnknownSpecies(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "cfg.yaml")
	user := `
species:
  - name: rabbit
    predators: [fox]
`
	if err := os.WriteFile(path, []byte(user), 0644); err != nil {
		t.Fatal(err)
	}
	_, err := Load(path)
	if err == nil || !strings.Contains(err.Error(), `unknown species "fox"`) {
		t.Errorf("err = %v, want unknown species error", err)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("expected an error for a missing file")
	}
}

func TestWriteYAMLRoundTrip(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(t.TempDir(), "out.yaml")
	if err := cfg.WriteYAML(path); err != nil {
		t.Fatalf("WriteYAML: %v", err)
	}
	again, err := Load(path)
	if err != nil {
		t.Fatalf("reloading written config: %v", err)
	}
	if len(again.Species) != len(cfg.Species) || again.Food.Plants != cfg.Food.Plants {
		t.Error("written config does not reload to the same values")
	}
}

func TestCfgAfterInit(t *testing.T) {
	MustInit("")
	if Cfg().World.Width == 0 {
		t.Error("Cfg returned an empty config")
	}
}
