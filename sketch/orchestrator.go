package sketch

import (
	"log/slog"
	"slices"
	"time"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pthm-cable/fluid/config"
	"github.com/pthm-cable/fluid/fluid"
	"github.com/pthm-cable/fluid/palette"
	"github.com/pthm-cable/fluid/random"
)

// MaxLayerCount bounds how many layers clicks may add.
const MaxLayerCount = 16

// Hooks are optional extension points. Every hook runs on the update goroutine.
type Hooks struct {
	// OnLayerCreated runs after a layer is built and coloured, before its
	// strokes are added.
	OnLayerCreated func(l *fluid.Layer, i int)
	// OnInitLayerOptions may adjust each candidate before validation.
	OnInitLayerOptions func(opts *fluid.Options, i int)
	// OnApplyLayerOptions runs after a regenerated record is applied.
	OnApplyLayerOptions func(l *fluid.Layer, opts fluid.Options)
	// OnEvent observes scheduled and click-driven changes.
	OnEvent func(e Event)
}

// EventKind names a change in the run.
type EventKind string

const (
	EventChange     EventKind = "change"
	EventCell       EventKind = "cell"
	EventPause      EventKind = "pause"
	EventRestart    EventKind = "restart"
	EventIdle       EventKind = "idle"
	EventAddLayer   EventKind = "add_layer"
	EventReset      EventKind = "reset"
	EventRegenerate EventKind = "regenerate"
)

// Event is one entry of the change log.
type Event struct {
	Frame      int       `csv:"frame"`
	Kind       EventKind `csv:"kind"`
	Layers     int       `csv:"layers"`
	NumChanges int       `csv:"num_changes"`
	NumCells   int       `csv:"num_cells"`
}

// Orchestrator owns the ordered layers of a run and everything that mutates
// them: option generation, stroke relations, scheduling and click actions.
type Orchestrator struct {
	cfg      config.SketchConfig
	state    *SketchState
	rng      random.Source
	deps     fluid.Deps
	policy   Policy
	hooks    Hooks
	palettes *palette.Generator

	layers       []*fluid.Layer
	layerOptions []fluid.Options
	acc          *fluid.Accumulator
	drift        *NoiseDrift

	timer     Timer
	cellArmed bool

	width, height, dpr float64
}

// NewOrchestrator wires a run together. Noise compositions get their option
// shaping and drift installed ahead of the caller's hooks. Call Setup to build
// the scene.
func NewOrchestrator(cfg config.SketchConfig, state *SketchState, rng random.Source, deps fluid.Deps, hooks Hooks) *Orchestrator {
	o := &Orchestrator{
		cfg:      cfg,
		state:    state,
		rng:      rng,
		deps:     deps,
		policy:   PolicyFor(cfg.Validator),
		hooks:    hooks,
		palettes: palette.NewGenerator(rng),
		width:    1,
		height:   1,
		dpr:      1,
	}
	if state.Composition.Noise() {
		shape := noiseOptions(rng, cfg.MinDT, cfg.MaxDT)
		user := hooks.OnInitLayerOptions
		o.hooks.OnInitLayerOptions = func(opts *fluid.Options, i int) {
			shape(opts, i)
			if user != nil {
				user(opts, i)
			}
		}
		o.drift = NewNoiseDrift(state.Seed)
	}
	return o
}

// SetPolicy replaces the validation policy.
func (o *Orchestrator) SetPolicy(p Policy) { o.policy = p }

// Setup builds the scene for the run's composition and starts its schedule.
func (o *Orchestrator) Setup(width, height, dpr float64) {
	o.width, o.height, o.dpr = width, height, dpr
	comp := o.state.Composition

	n := o.state.NumLayers
	if comp.SingleLayer {
		n = 1
	}
	for i := 0; i < n; i++ {
		l := o.AddLayer(o.state.Strokes)
		if l != nil && comp.Shape == fluid.ShapeBox {
			l.Mesh().Shape = fluid.ShapeBox
		}
	}

	if comp.History || o.cfg.SnapOverlay {
		o.acc = o.newAccumulator(o.accumulatorBlend())
	}
	o.startSchedule()
	slog.Info("scene ready",
		"composition", comp.Name,
		"layers", len(o.layers),
		"history", o.acc != nil,
	)
}

// accumulatorBlend is custom for trail compositions and the configured snap
// blend for a plain overlay.
func (o *Orchestrator) accumulatorBlend() fluid.BlendMode {
	if o.state.Composition.History {
		return fluid.BlendCustom
	}
	return fluid.BlendMode(o.cfg.SnapBlending)
}

func (o *Orchestrator) startSchedule() {
	switch o.state.Composition.Schedule {
	case ScheduleChanges:
		o.ScheduleChange()
	case ScheduleCells:
		o.RequestCell()
	}
}

func (o *Orchestrator) newAccumulator(blend fluid.BlendMode) *fluid.Accumulator {
	w, h := o.pixelSize()
	return fluid.NewAccumulator(o.deps, w, h, blend)
}

func (o *Orchestrator) pixelSize() (int, int) {
	w := int(o.width * o.dpr)
	h := int(o.height * o.dpr)
	return max(w, 1), max(h, 1)
}

// AddLayer appends a layer with numStrokes related strokes, plus a pointer
// stroke when enabled. It returns nil once MaxLayerCount is reached.
func (o *Orchestrator) AddLayer(numStrokes int) *fluid.Layer {
	if len(o.layers) >= MaxLayerCount {
		return nil
	}
	i := len(o.layers)
	opts, _ := o.GenerateOptions(i)
	opts.NumStrokes = numStrokes
	if o.cfg.Pointer {
		opts.NumStrokes++
	}

	l := fluid.NewLayer(opts, o.deps)
	l.Resize(o.width, o.height, o.dpr)
	o.layerOptions = append(o.layerOptions, l.Options())
	o.layers = append(o.layers, l)
	o.setLayerColor(l, o.layerColor(i))
	if o.hooks.OnLayerCreated != nil {
		o.hooks.OnLayerCreated(l, i)
	}

	o.createStrokes(l, i, numStrokes)
	if o.cfg.Pointer {
		l.AttachPointer()
	}
	return l
}

// createStrokes fills layer i. Layer 0, and every layer under the random
// relation, gets freshly drawn strokes; the others clone layer 0's stroke in
// the same slot and apply the configured mirror.
func (o *Orchestrator) createStrokes(l *fluid.Layer, i, n int) {
	rel := o.cfg.StrokesRel
	for j := 0; j < n; j++ {
		var base *fluid.Stroke
		if i > 0 && rel != config.StrokesRandom {
			if ref := o.layers[0].Strokes(); j < len(ref) && ref[j] != o.layers[0].Pointer() {
				base = ref[j]
			}
		}
		if base == nil {
			l.AddStroke(o.randomStroke())
			continue
		}

		s := base.Clone()
		mode := rel
		if mode == config.StrokesMirrorRand {
			mode = random.Choice(o.rng, []string{config.StrokesMirror, config.StrokesMirrorX, config.StrokesMirrorY})
		}
		switch mode {
		case config.StrokesMirror:
			s.Mirror()
		case config.StrokesMirrorX:
			s.MirrorX()
		case config.StrokesMirrorY:
			s.MirrorY()
		}
		l.AddStroke(s)
	}
}

func (o *Orchestrator) randomStroke() *fluid.Stroke {
	speed := o.strokeSpeed()
	s := fluid.NewStroke(o.rng.Float64(), o.rng.Float64(), speed)
	s.IsDown = o.rng.Bool()
	s.Target = r2.Vec{X: o.rng.Float64(), Y: o.rng.Float64()}
	return s
}

func (o *Orchestrator) strokeSpeed() float64 {
	return o.rng.Num(o.cfg.MinSpeed, o.cfg.MaxSpeed) * o.state.SpeedMult
}

// layerColor picks the foreground colour for layer i, reusing the first
// foreground once the palette runs out.
func (o *Orchestrator) layerColor(i int) palette.HSL {
	if i+1 < len(o.state.HSL) {
		return o.state.HSL[i+1]
	}
	return o.state.HSL[1]
}

func (o *Orchestrator) setLayerColor(l *fluid.Layer, c palette.HSL) {
	rgb := c.Color()
	l.Color = fluid.Color4{R: rgb.R, G: rgb.G, B: rgb.B, W: o.state.Features.ColorW}
}

// RegenerateLayer draws a fresh validated record for l and applies it in place.
// Targets, strokes and history are kept.
func (o *Orchestrator) RegenerateLayer(l *fluid.Layer) {
	i := o.index(l)
	if i < 0 {
		return
	}
	opts, _ := o.GenerateOptions(i)
	l.SetOptions(opts)
	o.layerOptions[i] = l.Options()
	if o.hooks.OnApplyLayerOptions != nil {
		o.hooks.OnApplyLayerOptions(l, l.Options())
	}
}

// ResetLayer regenerates l, rebuilds its GPU state (losing its history),
// redraws stroke speeds, returns strokes to their start and recolours it.
func (o *Orchestrator) ResetLayer(l *fluid.Layer) {
	if o.index(l) < 0 {
		return
	}
	o.RegenerateLayer(l)
	for _, s := range l.Strokes() {
		if s == l.Pointer() {
			continue
		}
		s.SetSpeed(o.strokeSpeed())
		s.Reset()
	}
	l.InitRenderer()
	l.Clear()
	o.setLayerColor(l, o.palettes.Next(o.state.Palette, o.state.Background()))
}

// RemoveLayer disposes l and drops it from the stack.
func (o *Orchestrator) RemoveLayer(l *fluid.Layer) bool {
	i := o.index(l)
	if i < 0 {
		return false
	}
	l.Dispose()
	o.layers = slices.Delete(o.layers, i, i+1)
	o.layerOptions = slices.Delete(o.layerOptions, i, i+1)
	return true
}

// ApplyLayerOptions sets a hand-edited record on l and rebuilds its renderer.
// Structurally invalid records are logged and ignored.
func (o *Orchestrator) ApplyLayerOptions(l *fluid.Layer, opts fluid.Options) {
	i := o.index(l)
	if i < 0 {
		return
	}
	if err := opts.Validate(); err != nil {
		slog.Warn("rejected layer options", "layer", i, "error", err)
		return
	}
	l.SetOptions(opts)
	l.InitRenderer()
	o.layerOptions[i] = l.Options()
	if o.hooks.OnApplyLayerOptions != nil {
		o.hooks.OnApplyLayerOptions(l, l.Options())
	}
}

func (o *Orchestrator) index(l *fluid.Layer) int {
	return slices.Index(o.layers, l)
}

// Click runs the composition's click action.
func (o *Orchestrator) Click() {
	switch o.state.Composition.Click {
	case ClickAddNew:
		if o.AddLayer(o.state.Strokes) != nil {
			o.emit(EventAddLayer)
		}
	case ClickReset:
		for _, l := range o.layers {
			o.ResetLayer(l)
		}
		o.emit(EventReset)
	case ClickRegenerate:
		for _, l := range o.layers {
			o.RegenerateLayer(l)
		}
		o.emit(EventRegenerate)
	case ClickCells:
		o.RequestCell()
	}
}

// PointerDown, PointerMove and PointerUp route normalized pointer input to
// every layer's pointer stroke.
func (o *Orchestrator) PointerDown(p r2.Vec) { o.eachPointer(func(s *fluid.Stroke) { s.Press(p) }) }
func (o *Orchestrator) PointerMove(p r2.Vec) { o.eachPointer(func(s *fluid.Stroke) { s.MoveTo(p) }) }
func (o *Orchestrator) PointerUp(p r2.Vec) { o.eachPointer(func(s *fluid.Stroke) { s.Release(p) }) }

func (o *Orchestrator) eachPointer(f func(*fluid.Stroke)) {
	for _, l := range o.layers {
		if s := l.Pointer(); s != nil {
			f(s)
		}
	}
}

// Update advances timers by dt and, unless paused, steps every visible layer.
func (o *Orchestrator) Update(dt time.Duration) {
	o.timer.Advance(dt)
	if o.state.Paused {
		return
	}
	o.state.Frame++
	if o.drift != nil {
		o.drift.Apply(o.layers, o.state.Frame)
	}
	for i, l := range o.layers {
		if !l.Mesh().Visible {
			continue
		}
		if err := l.Update(); err != nil {
			slog.Warn("layer update failed", "layer", i, "error", err)
		}
	}
}

// Resize propagates a viewport change to every layer and the accumulator.
func (o *Orchestrator) Resize(width, height, dpr float64) {
	if dpr <= 0 {
		dpr = 1
	}
	o.width, o.height, o.dpr = width, height, dpr
	for _, l := range o.layers {
		l.Resize(width, height, dpr)
	}
	if o.acc != nil {
		o.acc.Resize(o.pixelSize())
	}
}

// Dispose releases every layer and the accumulator.
func (o *Orchestrator) Dispose() {
	o.timer.Cancel()
	for _, l := range o.layers {
		l.Dispose()
	}
	if o.acc != nil {
		o.acc.Dispose()
	}
}

// Meshes returns the draw list: layers bottom to top, then the accumulator.
func (o *Orchestrator) Meshes() []*fluid.Mesh {
	out := make([]*fluid.Mesh, 0, len(o.layers)+1)
	for _, l := range o.layers {
		out = append(out, l.Mesh())
	}
	if o.acc != nil {
		out = append(out, o.acc.Mesh())
	}
	return out
}

func (o *Orchestrator) emit(kind EventKind) {
	if o.hooks.OnEvent == nil {
		return
	}
	o.hooks.OnEvent(Event{
		Frame:      o.state.Frame,
		Kind:       kind,
		Layers:     len(o.layers),
		NumChanges: o.state.NumChanges,
		NumCells:   o.state.NumCells,
	})
}

func (o *Orchestrator) Layers() []*fluid.Layer { return o.layers }
func (o *Orchestrator) LayerOptions() []fluid.Options { return o.layerOptions }
func (o *Orchestrator) Accumulator() *fluid.Accumulator { return o.acc }
func (o *Orchestrator) State() *SketchState { return o.state }
func (o *Orchestrator) Timer() *Timer { return &o.timer }
