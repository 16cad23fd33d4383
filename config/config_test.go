package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("loading defaults: %v", err)
	}
	if cfg.Sketch.MinLayers != 2 || cfg.Sketch.MaxLayers != 3 {
		t.Errorf("expected layers [2, 3], got [%d, %d]", cfg.Sketch.MinLayers, cfg.Sketch.MaxLayers)
	}
	if cfg.Sketch.StrokesRel != StrokesMirrorRand {
		t.Errorf("expected strokes_rel %q, got %q", StrokesMirrorRand, cfg.Sketch.StrokesRel)
	}
	if !cfg.Palettes["Black&White"] {
		t.Error("expected Black&White palette enabled")
	}
	if cfg.Derived.ScreenW32 != float32(cfg.Screen.Width) {
		t.Errorf("derived width %f does not match %d", cfg.Derived.ScreenW32, cfg.Screen.Width)
	}
}

func TestLoadOverlay(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "fluid.yaml")
	data := []byte("sketch:\n  strokes_rel: mirrorX\n  max_layers: 5\ncompositions:\n  box: false\n")
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("loading overlay: %v", err)
	}
	if cfg.Sketch.StrokesRel != StrokesMirrorX {
		t.Errorf("expected overlay strokes_rel, got %q", cfg.Sketch.StrokesRel)
	}
	if cfg.Sketch.MaxLayers != 5 {
		t.Errorf("expected max_layers 5, got %d", cfg.Sketch.MaxLayers)
	}
	// Untouched fields keep defaults
	if cfg.Sketch.MinLayers != 2 {
		t.Errorf("expected default min_layers, got %d", cfg.Sketch.MinLayers)
	}
	if cfg.Compositions["box"] {
		t.Error("expected box disabled by overlay")
	}
	if !cfg.Compositions["default"] {
		t.Error("expected default composition kept from defaults")
	}
}

func TestLoadRejectsInvalid(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"layer range", "sketch:\n  min_layers: 3\n  max_layers: 1\n"},
		{"strokes rel", "sketch:\n  strokes_rel: sideways\n"},
		{"validator", "sketch:\n  validator: lenient\n"},
		{"composition", "sketch:\n  composition: waves\n"},
		{"speed", "sketch:\n  max_speed: 1.5\n"},
		{"no palettes", "palettes:\n  Black&White: false\n  Mono: false\n  Analogous: false\n  Complementary: false\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "bad.yaml")
			if err := os.WriteFile(path, []byte(tt.yaml), 0644); err != nil {
				t.Fatal(err)
			}
			if _, err := Load(path); err == nil {
				t.Errorf("expected error for %s", tt.name)
			}
		})
	}
}

func TestWriteYAMLRoundtrip(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatal(err)
	}
	cfg.Sketch.MaxCells = 17

	path := filepath.Join(t.TempDir(), "out.yaml")
	if err := cfg.WriteYAML(path); err != nil {
		t.Fatalf("writing yaml: %v", err)
	}
	back, err := Load(path)
	if err != nil {
		t.Fatalf("reloading: %v", err)
	}
	if back.Sketch.MaxCells != 17 {
		t.Errorf("expected max_cells 17 after reload, got %d", back.Sketch.MaxCells)
	}
}
