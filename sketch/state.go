// Package sketch orchestrates a run: it picks a composition and palette,
// generates and validates layer options, relates sibling layers' strokes and
// schedules regeneration.
package sketch

import (
	"log/slog"

	"github.com/pthm-cable/fluid/config"
	"github.com/pthm-cable/fluid/palette"
	"github.com/pthm-cable/fluid/random"
)

// Features is the flat record of generative traits a run exposes.
type Features struct {
	Composition string  `yaml:"composition"`
	Palette     string  `yaml:"palette"`
	Layers      int     `yaml:"layers"`
	Strokes     int     `yaml:"strokes"`
	StrokesRel  string  `yaml:"strokes_rel"`
	Color1      string  `yaml:"color1"`
	Color2      string  `yaml:"color2"`
	ColorW      float64 `yaml:"color_w"`
}

// SketchState is everything decided once per run plus the scheduling counters.
// It is built by NewState and shared by pointer with the orchestrator.
type SketchState struct {
	Seed int64

	Palette     string
	HSL         []palette.HSL
	Composition Composition
	NumLayers   int
	Strokes     int // strokes per layer
	Features    Features

	// Per-run draws, redrawn on restart when the config leaves them unset.
	SpeedMult  float64
	MaxChanges int

	NumChanges int
	NumCells   int
	Frame      int
	Paused     bool
	Idle       bool // schedule budget spent, nothing further will fire
}

// NewState draws the per-run decisions from rng in a fixed order so that a
// seed always reproduces the same run.
func NewState(cfg *config.Config, rng random.Source, seed int64) *SketchState {
	sk := cfg.Sketch
	s := &SketchState{Seed: seed}

	s.NumLayers = rng.Int(sk.MinLayers, sk.MaxLayers)
	s.Palette = ChoosePalette(rng, cfg.Palettes)
	gen := palette.NewGenerator(rng)
	s.HSL = gen.Generate(s.Palette, palette.Size(s.Palette, s.NumLayers))
	s.Composition = ChooseComposition(rng, cfg.Compositions)
	if c, ok := LookupComposition(sk.Composition); ok {
		s.Composition = c
	}
	s.Strokes = rng.Int(sk.MinStrokes, sk.MaxStrokes)

	s.Features = Features{
		Composition: s.Composition.Name,
		Palette:     s.Palette,
		Layers:      s.NumLayers,
		Strokes:     s.Strokes,
		StrokesRel:  sk.StrokesRel,
		Color1:      s.HSL[0].Color().Hex(),
		Color2:      s.HSL[1].Color().Hex(),
		ColorW:      rng.Exp(0.1, 2.0),
	}
	s.drawRunOptions(sk, rng)

	slog.Info("sketch features",
		"seed", seed,
		"composition", s.Features.Composition,
		"palette", s.Features.Palette,
		"layers", s.Features.Layers,
		"strokes", s.Features.Strokes,
		"color_w", s.Features.ColorW,
	)
	return s
}

// drawRunOptions fills the per-run values the config leaves open.
func (s *SketchState) drawRunOptions(sk config.SketchConfig, rng random.Source) {
	s.SpeedMult = sk.SpeedMult
	if s.SpeedMult <= 0 {
		s.SpeedMult = rng.Num(0.1, 10)
	}
	s.MaxChanges = sk.MaxChanges
	if s.MaxChanges <= 0 {
		s.MaxChanges = rng.Int(5, 9)
	}
}

// Background returns the first palette colour.
func (s *SketchState) Background() palette.HSL { return s.HSL[0] }
