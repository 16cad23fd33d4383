// Package fluid implements the per-layer fluid simulation: strokes, the
// ping-ponged render target pair, and the pass/view materials fed each frame.
package fluid

import (
	"errors"
	"math"

	"gonum.org/v1/gonum/spatial/r2"
)

var (
	// ErrNotInitialized is returned when a layer is updated before InitRenderer.
	ErrNotInitialized = errors.New("fluid: layer not initialized")
	// ErrDisposed is returned when a disposed layer is used.
	ErrDisposed = errors.New("fluid: layer disposed")
)

// Emission constants for the strength uniform.
const (
	maxStrength     = 50.0
	strengthClampPx = 10.0
)

// State is the lifecycle stage of a layer.
type State int

const (
	StateUninitialized State = iota
	StateRendering
	StateReinitializing
	StateDisposed
)

func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateRendering:
		return "rendering"
	case StateReinitializing:
		return "reinitializing"
	case StateDisposed:
		return "disposed"
	}
	return "unknown"
}

// Layer is one independent simulation with its own target pair and materials.
type Layer struct {
	deps       Deps
	options    Options
	fluid      Params
	numStrokes int

	strokes []*Stroke
	pointer *Stroke

	width, height float64 // logical pixels
	dpr           float64

	src, dst RenderTarget
	pass     *PassMaterial
	view     *ViewMaterial
	mesh     *Mesh

	// Color weights the view output.
	Color Color4

	state State
}

// NewLayer builds a layer and initializes its renderer. Capacity is fixed to
// opts.NumStrokes for the layer's lifetime.
func NewLayer(opts Options, deps Deps) *Layer {
	l := &Layer{
		deps:       deps,
		numStrokes: opts.NumStrokes,
		width:      1,
		height:     1,
		dpr:        1,
		Color:      Color4{R: 100, G: 100, B: 100, W: 100},
		mesh:       &Mesh{Visible: true},
	}
	l.SetOptions(opts)
	l.InitRenderer()
	return l
}

// SetOptions replaces the option record and recomputes the fluid coefficients.
// Targets and programs are untouched; call InitRenderer for variant or
// transparency changes. Blend modes are draw state and apply immediately.
func (l *Layer) SetOptions(opts Options) {
	opts = opts.WithDefaults()
	opts.NumStrokes = l.numStrokes
	l.options = opts
	l.fluid = opts.Fluid()
	l.mesh.Visible = opts.Visible
	if l.view != nil {
		l.view.Blend = opts.BlendModeView
		l.view.Opacity = opts.Opacity
		l.view.Transparent = opts.Transparent
	}
	if l.pass != nil {
		l.pass.Blend = opts.BlendModePass
		l.applyPassOptions()
	}
}

func (l *Layer) applyPassOptions() {
	l.pass.Zoom = l.options.Zoom
	l.pass.NoiseZoom = l.options.NoiseZoom
	l.pass.NoiseMin = l.options.NoiseMin
	l.pass.NoiseMax = l.options.NoiseMax
	l.pass.NoiseOffset = l.options.NoiseOffset
	l.pass.NoiseSpeed = l.options.NoiseSpeed
}

// InitRenderer (re)allocates targets and programs and puts every slot at rest.
// Previous targets and programs are released first.
func (l *Layer) InitRenderer() {
	if l.state == StateDisposed {
		return
	}
	if l.state == StateRendering {
		l.state = StateReinitializing
	}
	l.release()

	w, h := l.pixelSize()
	l.src = l.deps.Host.NewTarget(w, h)
	l.dst = l.deps.Host.NewTarget(w, h)

	spec := l.options.Spec()
	l.pass = newPassMaterial(l.deps.Materials.NewPass(spec), spec)
	l.applyPassOptions()
	for i, s := range l.strokes {
		l.pass.Speed[i] = s.Speed
	}

	spec.Blend = l.options.BlendModeView
	l.view = &ViewMaterial{
		Program:     l.deps.Materials.NewView(spec),
		Blend:       spec.Blend,
		Transparent: l.options.Transparent,
		Opacity:     l.options.Opacity,
	}
	l.mesh.Material = l.view

	l.state = StateRendering
}

func (l *Layer) release() {
	if l.src != nil {
		l.src.Release()
		l.src = nil
	}
	if l.dst != nil {
		l.dst.Release()
		l.dst = nil
	}
	if l.pass != nil && l.pass.Program != nil {
		l.pass.Program.Release()
	}
	if l.view != nil && l.view.Program != nil {
		l.view.Program.Release()
	}
	l.pass = nil
	l.view = nil
}

func (l *Layer) pixelSize() (int, int) {
	w := int(math.Max(1, math.Round(l.width*l.dpr)))
	h := int(math.Max(1, math.Round(l.height*l.dpr)))
	return w, h
}

// AddStroke fills the next free slot. It reports false, leaving the layer
// unchanged, when every slot is taken.
func (l *Layer) AddStroke(s *Stroke) bool {
	if s == nil || len(l.strokes) >= l.numStrokes {
		return false
	}
	i := len(l.strokes)
	l.strokes = append(l.strokes, s)
	if l.pass != nil {
		p := simPos(s.Pos)
		l.pass.Mouse[i] = p
		l.pass.Last[i] = p
		l.pass.Speed[i] = s.Speed
	}
	return true
}

// AttachPointer adds a stroke bound to pointer input, or returns the existing
// one. It returns nil when no slot is free.
func (l *Layer) AttachPointer() *Stroke {
	if l.pointer != nil {
		return l.pointer
	}
	s := NewStroke(0.5, 0.5, DefaultStrokeSpeed)
	if !l.AddStroke(s) {
		return nil
	}
	l.pointer = s
	return s
}

// SetNoiseOffset moves the noise field sampled by the pass without touching
// the option record.
func (l *Layer) SetNoiseOffset(v r2.Vec) {
	if l.pass != nil {
		l.pass.NoiseOffset = v
	}
}

// Pointer returns the pointer-bound stroke, if any.
func (l *Layer) Pointer() *Stroke { return l.pointer }

// Resize reallocates targets at the new pixel size and recentres the pointer.
func (l *Layer) Resize(width, height, dpr float64) {
	if dpr <= 0 {
		dpr = 1
	}
	l.width, l.height, l.dpr = width, height, dpr
	w, h := l.pixelSize()
	if l.src != nil {
		l.src.SetSize(w, h)
	}
	if l.dst != nil {
		l.dst.SetSize(w, h)
	}
	if l.pointer != nil {
		l.pointer.Pos = restCenter
		l.pointer.Target = restCenter
		l.pointer.Last = l.pointer.Pos
	}
}

// Update advances every stroke, runs one simulation step into the destination
// target, swaps the pair and hands the view material to the mesh.
func (l *Layer) Update() error {
	switch {
	case l.state == StateDisposed:
		return ErrDisposed
	case l.pass == nil:
		return ErrNotInitialized
	}

	for i := range l.strokes {
		l.updateStroke(i)
	}

	l.pass.TMap = l.src
	l.pass.DT = l.fluid.DT
	l.pass.K = l.fluid.K
	l.pass.Nu = l.fluid.Nu
	l.pass.Kappa = l.fluid.Kappa
	l.deps.Host.RenderPass(l.pass, l.dst)

	l.src, l.dst = l.dst, l.src

	l.view.TMap = l.src
	l.view.Color = l.Color
	l.mesh.Material = l.view
	return nil
}

func (l *Layer) updateStroke(i int) {
	s := l.strokes[i]
	s.Update()
	s.Delta = r2.Sub(s.Pos, s.Last)
	s.Last = s.Pos

	deltaPx := r2.Vec{X: s.Delta.X * l.width, Y: s.Delta.Y * l.height}
	strength := math.Min(strengthClampPx, r2.Norm(deltaPx)) / strengthClampPx

	l.pass.Last[i] = l.pass.Mouse[i]
	l.pass.Mouse[i] = simPos(s.Pos)
	l.pass.Velocity[i] = r2.Vec{X: s.Delta.X, Y: -s.Delta.Y}
	held := maxStrength * strength
	if s.IsDown {
		held = maxStrength
	}
	l.pass.Strength[i] = r2.Vec{X: held, Y: maxStrength * strength}
	l.pass.Speed[i] = s.Speed
}

// simPos converts a screen-space position to simulation space (Y up).
func simPos(p r2.Vec) r2.Vec {
	return r2.Vec{X: p.X, Y: 1 - p.Y}
}

// Clear wipes the simulated history in both targets.
func (l *Layer) Clear() {
	if l.src != nil {
		l.deps.Host.Clear(l.src)
	}
	if l.dst != nil {
		l.deps.Host.Clear(l.dst)
	}
}

// ResetStrokes returns every stroke to its start.
func (l *Layer) ResetStrokes() {
	for _, s := range l.strokes {
		s.Reset()
	}
}

// Dispose releases every GPU resource. The layer cannot be used afterwards.
func (l *Layer) Dispose() {
	if l.state == StateDisposed {
		return
	}
	l.release()
	l.mesh.Visible = false
	l.mesh.Material = nil
	l.state = StateDisposed
}

// Options returns the current option record.
func (l *Layer) Options() Options { return l.options }

// Fluid returns the active simulation coefficients.
func (l *Layer) Fluid() Params { return l.fluid }

// Strokes returns the occupied slots in slot order.
func (l *Layer) Strokes() []*Stroke { return l.strokes }

// Capacity returns the fixed number of stroke slots.
func (l *Layer) Capacity() int { return l.numStrokes }

func (l *Layer) Pass() *PassMaterial { return l.pass }
func (l *Layer) View() *ViewMaterial { return l.view }
func (l *Layer) Mesh() *Mesh { return l.mesh }
func (l *Layer) Source() RenderTarget { return l.src }
func (l *Layer) Destination() RenderTarget { return l.dst }
func (l *Layer) State() State { return l.state }
func (l *Layer) Size() (w, h, dpr float64) { return l.width, l.height, l.dpr }
