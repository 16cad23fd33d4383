package sketch_test

import (
	"math"
	"testing"
	"time"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pthm-cable/fluid/config"
	"github.com/pthm-cable/fluid/fluid"
	"github.com/pthm-cable/fluid/fluid/fluidtest"
	"github.com/pthm-cable/fluid/palette"
	"github.com/pthm-cable/fluid/random"
	"github.com/pthm-cable/fluid/sketch"
)

type run struct {
	cfg    *config.Config
	orch   *sketch.Orchestrator
	host   *fluidtest.Host
	events []sketch.Event
}

// only enables exactly one entry of a toggle map.
func only(m map[string]bool, name string) {
	for k := range m {
		m[k] = false
	}
	m[name] = true
}

func newRun(t *testing.T, seed int64, mutate func(cfg *config.Config)) *run {
	t.Helper()
	cfg, err := config.Load("")
	if err != nil {
		t.Fatalf("loading defaults: %v", err)
	}
	if mutate != nil {
		mutate(cfg)
	}

	r := &run{cfg: cfg, host: fluidtest.NewHost()}
	rng := random.New(seed)
	state := sketch.NewState(cfg, rng, seed)
	hooks := sketch.Hooks{
		OnEvent: func(e sketch.Event) { r.events = append(r.events, e) },
	}
	r.orch = sketch.NewOrchestrator(cfg.Sketch, state, rng, r.host.Deps(), hooks)
	r.orch.Setup(200, 100, 1)
	return r
}

func nearVec(a, b r2.Vec) bool {
	return math.Abs(a.X-b.X) < 1e-12 && math.Abs(a.Y-b.Y) < 1e-12
}

func TestNewStateFeatures(t *testing.T) {
	r := newRun(t, 7, nil)
	s := r.orch.State()

	if s.NumLayers < r.cfg.Sketch.MinLayers || s.NumLayers > r.cfg.Sketch.MaxLayers {
		t.Errorf("layer count %d outside config range", s.NumLayers)
	}
	if s.Features.Layers != s.NumLayers || s.Features.Palette != s.Palette {
		t.Errorf("features disagree with state: %+v", s.Features)
	}
	if s.Features.ColorW < 0.1 || s.Features.ColorW > 2.0 {
		t.Errorf("color weight %g outside [0.1, 2]", s.Features.ColorW)
	}
	if len(s.Features.Color1) != 7 || s.Features.Color1[0] != '#' {
		t.Errorf("color1 not a hex colour: %q", s.Features.Color1)
	}
	if !r.cfg.Compositions[s.Composition.Name] {
		t.Errorf("picked disabled composition %q", s.Composition.Name)
	}
}

func TestGenerateOptionsTerminates(t *testing.T) {
	policies := []string{config.ValidatorBasic, config.ValidatorStrict}
	for _, family := range palette.Families {
		for _, policy := range policies {
			t.Run(family+"/"+policy, func(t *testing.T) {
				for seed := int64(1); seed <= 20; seed++ {
					r := newRun(t, seed, func(cfg *config.Config) {
						only(cfg.Palettes, family)
						only(cfg.Compositions, "regenerate")
						cfg.Sketch.Validator = policy
						cfg.Sketch.MinLayers, cfg.Sketch.MaxLayers = 3, 3
					})
					for i := 0; i < 4; i++ {
						opts, draws := r.orch.GenerateOptions(i)
						if draws < 1 || draws > sketch.MaxDraws {
							t.Fatalf("seed %d layer %d: %d draws", seed, i, draws)
						}
						if err := opts.Validate(); err != nil {
							t.Fatalf("seed %d layer %d: %v", seed, i, err)
						}
						if opts.BlendKey() == "4-4" {
							t.Fatalf("seed %d layer %d: forbidden pairing accepted", seed, i)
						}
					}
				}
			})
		}
	}
}

func TestGenerateOptionsRanges(t *testing.T) {
	r := newRun(t, 3, func(cfg *config.Config) {
		only(cfg.Compositions, "regenerate")
	})
	for n := 0; n < 200; n++ {
		i := n % 3
		opts, _ := r.orch.GenerateOptions(i)
		if i > 0 && opts.BlendModePass > fluid.BlendMultiply {
			t.Fatalf("layer %d drew custom pass blend", i)
		}
		if opts.BlendModeView < fluid.BlendAdditive {
			t.Fatalf("view blend %s below additive", opts.BlendModeView)
		}
		if opts.BlendModePass == fluid.BlendSubtractive && opts.BlendModeView > fluid.BlendSubtractive {
			t.Fatalf("subtractive pass paired with view %s", opts.BlendModeView)
		}
		if opts.DT < 0.1 || opts.DT > 1 || opts.K < 0.2 || opts.K > 0.7 ||
			opts.Nu < 0.4 || opts.Nu > 0.6 || opts.Kappa < 0.1 || opts.Kappa > 0.9 {
			t.Fatalf("coefficients out of range: %+v", opts.Fluid())
		}
	}
}

func TestGenerateOptionsFallsBackAfterMaxDraws(t *testing.T) {
	r := newRun(t, 1, func(cfg *config.Config) {
		only(cfg.Compositions, "regenerate")
	})
	r.orch.SetPolicy(sketch.PolicyFunc(func(fluid.Options, sketch.ValidationContext) bool { return false }))

	opts, draws := r.orch.GenerateOptions(1)
	if draws != sketch.MaxDraws {
		t.Errorf("expected %d draws, got %d", sketch.MaxDraws, draws)
	}
	if err := opts.Validate(); err != nil {
		t.Errorf("fallback candidate invalid: %v", err)
	}
}

func TestCandidateHookRunsBeforeValidation(t *testing.T) {
	cfg, err := config.Load("")
	if err != nil {
		t.Fatal(err)
	}
	only(cfg.Compositions, "regenerate")
	rng := random.New(5)
	state := sketch.NewState(cfg, rng, 5)
	host := fluidtest.NewHost()

	var seen int
	hooks := sketch.Hooks{
		OnInitLayerOptions: func(opts *fluid.Options, _ int) {
			seen++
			opts.BlendModePass, opts.BlendModeView = fluid.BlendMultiply, fluid.BlendMultiply
			if seen%3 == 0 {
				opts.BlendModeView = fluid.BlendAdditive
			}
		},
	}
	o := sketch.NewOrchestrator(cfg.Sketch, state, rng, host.Deps(), hooks)
	opts, draws := o.GenerateOptions(0)
	if draws != 3 || opts.BlendKey() != "4-2" {
		t.Errorf("hook edits not validated: %d draws, %s", draws, opts.BlendKey())
	}
}

func TestDeterministicRuns(t *testing.T) {
	a := newRun(t, 42, nil)
	b := newRun(t, 42, nil)

	if a.orch.State().Features != b.orch.State().Features {
		t.Fatalf("features differ: %+v vs %+v", a.orch.State().Features, b.orch.State().Features)
	}
	la, lb := a.orch.LayerOptions(), b.orch.LayerOptions()
	if len(la) != len(lb) {
		t.Fatalf("layer counts differ: %d vs %d", len(la), len(lb))
	}
	for i := range la {
		if la[i] != lb[i] {
			t.Errorf("layer %d options differ", i)
		}
		sa, sb := a.orch.Layers()[i].Strokes(), b.orch.Layers()[i].Strokes()
		for j := range sa {
			if *sa[j] != *sb[j] {
				t.Errorf("layer %d stroke %d differs", i, j)
			}
		}
	}

	c := newRun(t, 43, nil)
	if c.orch.LayerOptions()[0] == la[0] {
		t.Error("different seeds produced identical layer 0 options")
	}
}

func TestMirroredStrokeRelations(t *testing.T) {
	tests := []struct {
		rel  string
		want func(r2.Vec) r2.Vec
	}{
		{config.StrokesMirrorX, func(v r2.Vec) r2.Vec { return r2.Vec{X: 1 - v.X, Y: v.Y} }},
		{config.StrokesMirrorY, func(v r2.Vec) r2.Vec { return r2.Vec{X: v.X, Y: 1 - v.Y} }},
		{config.StrokesMirror, func(v r2.Vec) r2.Vec { return r2.Vec{X: 1 - v.X, Y: 1 - v.Y} }},
		{config.StrokesSame, func(v r2.Vec) r2.Vec { return v }},
	}
	for _, tt := range tests {
		t.Run(tt.rel, func(t *testing.T) {
			r := newRun(t, 11, func(cfg *config.Config) {
				only(cfg.Compositions, "regenerate")
				cfg.Sketch.MinLayers, cfg.Sketch.MaxLayers = 2, 2
				cfg.Sketch.MinStrokes, cfg.Sketch.MaxStrokes = 1, 1
				cfg.Sketch.StrokesRel = tt.rel
				cfg.Sketch.Pointer = false
			})
			layers := r.orch.Layers()
			if len(layers) != 2 {
				t.Fatalf("expected 2 layers, got %d", len(layers))
			}
			s0, s1 := layers[0].Strokes()[0], layers[1].Strokes()[0]
			if s0 == s1 {
				t.Fatal("related stroke must be a distinct object")
			}
			if !nearVec(s1.Start, tt.want(s0.Start)) || !nearVec(s1.Target, tt.want(s0.Target)) {
				t.Fatalf("start %+v target %+v, want mirror of %+v %+v", s1.Start, s1.Target, s0.Start, s0.Target)
			}

			for frame := 0; frame < 5; frame++ {
				r.orch.Update(16 * time.Millisecond)
				m0, m1 := layers[0].Pass().Mouse[0], layers[1].Pass().Mouse[0]
				// uMouse is Y-flipped, mirroring commutes with the flip.
				if !nearVec(m1, tt.want(m0)) {
					t.Fatalf("frame %d: uMouse %+v not related to %+v", frame, m1, m0)
				}
			}
		})
	}
}

func TestRandomStrokeRelationDrawsIndependently(t *testing.T) {
	r := newRun(t, 11, func(cfg *config.Config) {
		only(cfg.Compositions, "regenerate")
		cfg.Sketch.MinLayers, cfg.Sketch.MaxLayers = 2, 2
		cfg.Sketch.StrokesRel = config.StrokesRandom
		cfg.Sketch.Pointer = false
	})
	s0, s1 := r.orch.Layers()[0].Strokes()[0], r.orch.Layers()[1].Strokes()[0]
	if nearVec(s0.Start, s1.Start) {
		t.Error("random relation reused layer 0's stroke")
	}
}

func TestPointerStrokeFollowsInput(t *testing.T) {
	r := newRun(t, 2, func(cfg *config.Config) {
		only(cfg.Compositions, "regenerate")
	})
	p := r2.Vec{X: 0.25, Y: 0.75}
	r.orch.PointerDown(p)
	for i, l := range r.orch.Layers() {
		s := l.Pointer()
		if s == nil {
			t.Fatalf("layer %d has no pointer stroke", i)
		}
		if !s.IsDown || s.Pos != p {
			t.Errorf("layer %d pointer not pressed at %+v: %+v", i, p, *s)
		}
		if len(l.Strokes()) != l.Capacity() {
			t.Errorf("layer %d: %d strokes, capacity %d", i, len(l.Strokes()), l.Capacity())
		}
	}
	r.orch.PointerUp(p)
	if r.orch.Layers()[0].Pointer().IsDown {
		t.Error("pointer still held after release")
	}
}

func TestApplyLayerOptions(t *testing.T) {
	r := newRun(t, 11, nil)
	l := r.orch.Layers()[0]

	opts := l.Options()
	opts.BlendModeView = fluid.BlendMultiply
	opts.DT = 0.42
	r.orch.ApplyLayerOptions(l, opts)
	if got := r.orch.LayerOptions()[0]; got.BlendModeView != fluid.BlendMultiply || got.DT != 0.42 {
		t.Errorf("stored record not updated: %+v", got)
	}
	if l.View().Blend != fluid.BlendMultiply {
		t.Error("view blend not applied")
	}
	if l.Capacity() != l.Options().NumStrokes {
		t.Error("capacity must survive a hand edit")
	}

	bad := l.Options()
	bad.BlendModePass = fluid.BlendMode(9)
	r.orch.ApplyLayerOptions(l, bad)
	if l.Options().BlendModePass == bad.BlendModePass {
		t.Error("invalid record was applied")
	}
}

func TestStrictPolicy(t *testing.T) {
	pair := func(pass, view fluid.BlendMode, dt float64) fluid.Options {
		return fluid.Options{BlendModePass: pass, BlendModeView: view, DT: dt}
	}
	dark := sketch.ValidationContext{Palette: palette.BlackWhite, BackgroundL: 0.1}
	light := sketch.ValidationContext{Palette: palette.BlackWhite, BackgroundL: 0.9}
	mono := sketch.ValidationContext{Palette: palette.Mono}
	analogous := sketch.ValidationContext{Palette: palette.Analogous}
	upper := func(ctx sketch.ValidationContext, prev fluid.Options) sketch.ValidationContext {
		ctx.Index = 1
		ctx.Previous = &prev
		return ctx
	}

	tests := []struct {
		name string
		opts fluid.Options
		ctx  sketch.ValidationContext
		want bool
	}{
		{"multiply pair", pair(fluid.BlendMultiply, fluid.BlendMultiply, 0.9), analogous, false},
		{"bw normal-additive", pair(fluid.BlendNormal, fluid.BlendAdditive, 0.9), dark, false},
		{"bw dark none-multiply slow", pair(fluid.BlendNone, fluid.BlendMultiply, 0.4), dark, false},
		{"bw dark none-multiply", pair(fluid.BlendNone, fluid.BlendMultiply, 0.5), dark, true},
		{"bw dark none-subtractive slow", pair(fluid.BlendNone, fluid.BlendSubtractive, 0.7), dark, false},
		{"bw dark additive-custom", pair(fluid.BlendAdditive, fluid.BlendCustom, 0.8), dark, true},
		{"bw dark subtractive-additive", pair(fluid.BlendSubtractive, fluid.BlendAdditive, 1), dark, false},
		{"bw dark multiply-subtractive", pair(fluid.BlendMultiply, fluid.BlendSubtractive, 1), dark, false},
		{"bw light none-additive", pair(fluid.BlendNone, fluid.BlendAdditive, 1), light, false},
		{"bw light additive-subtractive slow", pair(fluid.BlendAdditive, fluid.BlendSubtractive, 0.7), light, false},
		{"bw light subtractive-subtractive", pair(fluid.BlendSubtractive, fluid.BlendSubtractive, 0.5), light, true},
		{"bw additive-multiply slow", pair(fluid.BlendAdditive, fluid.BlendMultiply, 0.6), light, false},
		{"bw multiply-custom slow", pair(fluid.BlendMultiply, fluid.BlendCustom, 0.4), light, false},
		{"additive-additive slow", pair(fluid.BlendAdditive, fluid.BlendAdditive, 0.5), mono, false},
		{"additive-additive", pair(fluid.BlendAdditive, fluid.BlendAdditive, 0.8), mono, true},
		{"subtractive-additive slow", pair(fluid.BlendSubtractive, fluid.BlendAdditive, 0.35), analogous, false},
		{"subtractive-subtractive slow", pair(fluid.BlendSubtractive, fluid.BlendSubtractive, 0.4), mono, false},
		{"none-multiply slow", pair(fluid.BlendNone, fluid.BlendMultiply, 0.2), mono, false},
		{"normal-custom slow", pair(fluid.BlendNormal, fluid.BlendCustom, 0.2), mono, false},
		{"mono subtractive-additive slow", pair(fluid.BlendSubtractive, fluid.BlendAdditive, 0.6), mono, false},
		{"mono upper additive-subtractive", pair(fluid.BlendAdditive, fluid.BlendSubtractive, 1), upper(mono, pair(0, 5, 1)), false},
		{"mono first additive-subtractive", pair(fluid.BlendAdditive, fluid.BlendSubtractive, 1), mono, true},
		{"analogous additive-custom", pair(fluid.BlendAdditive, fluid.BlendCustom, 1), analogous, false},
		{"analogous upper normal-multiply", pair(fluid.BlendNormal, fluid.BlendMultiply, 1), upper(analogous, pair(0, 5, 1)), false},
		{"analogous normal-multiply", pair(fluid.BlendNormal, fluid.BlendMultiply, 1), analogous, true},
		{"analogous none-custom slow", pair(fluid.BlendNone, fluid.BlendCustom, 0.45), analogous, false},
		{"analogous multiply-additive slow", pair(fluid.BlendMultiply, fluid.BlendAdditive, 0.55), analogous, false},
		{"analogous additive-multiply slow", pair(fluid.BlendAdditive, fluid.BlendMultiply, 0.7), analogous, false},
		{"complementary additive-multiply", pair(fluid.BlendAdditive, fluid.BlendMultiply, 0.6), sketch.ValidationContext{Palette: palette.Complementary}, true},
		{"repeated additive view", pair(fluid.BlendNone, fluid.BlendAdditive, 1), upper(mono, pair(0, fluid.BlendAdditive, 1)), false},
		{"repeated multiply view", pair(fluid.BlendNormal, fluid.BlendMultiply, 1), upper(mono, pair(0, fluid.BlendMultiply, 1)), false},
		{"repeated subtractive view", pair(fluid.BlendNone, fluid.BlendSubtractive, 1), upper(mono, pair(0, fluid.BlendSubtractive, 1)), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := (sketch.StrictPolicy{}).Validate(tt.opts, tt.ctx); got != tt.want {
				t.Errorf("%s dt=%g: got %v, want %v", tt.opts.BlendKey(), tt.opts.DT, got, tt.want)
			}
		})
	}

	t.Run("pinned view may repeat", func(t *testing.T) {
		ctx := upper(mono, pair(0, fluid.BlendAdditive, 1))
		ctx.FixedView = true
		if !(sketch.StrictPolicy{}).Validate(pair(fluid.BlendNone, fluid.BlendAdditive, 1), ctx) {
			t.Error("a pinned additive view was rejected for repeating")
		}
	})
}

func TestRemoveLayer(t *testing.T) {
	r := newRun(t, 5, func(cfg *config.Config) {
		only(cfg.Compositions, "regenerate")
		cfg.Sketch.MinLayers, cfg.Sketch.MaxLayers = 3, 3
		cfg.Sketch.SnapOverlay = false
	})
	layers := r.orch.Layers()
	if len(layers) != 3 {
		t.Fatalf("expected 3 layers, got %d", len(layers))
	}
	first, mid, last := layers[0], layers[1], layers[2]
	opts := r.orch.LayerOptions()
	keep := []fluid.Options{opts[0], opts[2]}
	targets, programs := r.host.LiveTargets(), r.host.LivePrograms()

	if !r.orch.RemoveLayer(mid) {
		t.Fatal("remove reported a missing layer")
	}
	if n := r.host.LiveTargets(); n != targets-2 {
		t.Errorf("live targets %d, want %d", n, targets-2)
	}
	if n := r.host.LivePrograms(); n != programs-2 {
		t.Errorf("live programs %d, want %d", n, programs-2)
	}

	layers = r.orch.Layers()
	if len(layers) != 2 || layers[0] != first || layers[1] != last {
		t.Fatalf("unexpected stack after removal: %v", layers)
	}
	opts = r.orch.LayerOptions()
	if len(opts) != len(layers) {
		t.Fatalf("%d option records for %d layers", len(opts), len(layers))
	}
	for i, l := range layers {
		if opts[i] != keep[i] || l.Options() != opts[i] {
			t.Errorf("layer %d options out of step", i)
		}
	}

	meshes := r.orch.Meshes()
	if len(meshes) != 2 {
		t.Errorf("expected 2 meshes, got %d", len(meshes))
	}
	for _, m := range meshes {
		if m == mid.Mesh() {
			t.Error("removed layer still in the draw list")
		}
	}

	if r.orch.RemoveLayer(mid) {
		t.Error("removing twice should report false")
	}
}

func TestResetLayerClampsSpeed(t *testing.T) {
	r := newRun(t, 2, func(cfg *config.Config) {
		only(cfg.Compositions, "reset")
		cfg.Sketch.SpeedMult = 500
	})
	l := r.orch.Layers()[0]
	r.orch.ResetLayer(l)
	for i, s := range l.Strokes() {
		if s == l.Pointer() {
			continue
		}
		if s.Speed <= 0 || s.Speed >= 1 {
			t.Errorf("stroke %d speed %g outside (0,1)", i, s.Speed)
		}
	}
}

func TestPinnedComposition(t *testing.T) {
	r := newRun(t, 3, func(cfg *config.Config) {
		only(cfg.Compositions, "default")
		cfg.Sketch.Composition = "cells"
	})
	s := r.orch.State()
	if s.Composition.Name != "cells" || s.Features.Composition != "cells" {
		t.Errorf("pinned composition ignored: %q / %q", s.Composition.Name, s.Features.Composition)
	}
	if r.orch.Accumulator() == nil {
		t.Error("pinned cells composition built no accumulator")
	}

	if _, ok := sketch.LookupComposition("waves"); ok {
		t.Error("lookup accepted an unknown name")
	}
	for _, c := range sketch.Compositions {
		got, ok := sketch.LookupComposition(c.Name)
		if !ok || got.Name != c.Name {
			t.Errorf("lookup %q: %+v %v", c.Name, got, ok)
		}
	}
}
