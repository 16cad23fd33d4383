package ui

import (
	"fmt"
	"math"

	gui "github.com/gen2brain/raylib-go/raygui"
	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/fluid/fluid"
)

// LayerEditor is the part of the orchestrator the dev panel drives.
type LayerEditor interface {
	Layers() []*fluid.Layer
	ApplyLayerOptions(l *fluid.Layer, opts fluid.Options)
	RegenerateLayer(l *fluid.Layer)
	ResetLayer(l *fluid.Layer)
}

// Field is one slider-editable layer option.
type Field struct {
	Label    string
	Min, Max float32
	Integer  bool
	Get      func(fluid.Options) float64
	Set      func(*fluid.Options, float64)
}

// LayerFields lists the options the dev panel exposes, top to bottom.
var LayerFields = []Field{
	{
		Label: "pass blend", Min: 0, Max: 5, Integer: true,
		Get: func(o fluid.Options) float64 { return float64(o.BlendModePass) },
		Set: func(o *fluid.Options, v float64) { o.BlendModePass = fluid.BlendMode(v) },
	},
	{
		Label: "view blend", Min: 2, Max: 5, Integer: true,
		Get: func(o fluid.Options) float64 { return float64(o.BlendModeView) },
		Set: func(o *fluid.Options, v float64) { o.BlendModeView = fluid.BlendMode(v) },
	},
	{
		Label: "dt", Min: 0.01, Max: 1,
		Get: func(o fluid.Options) float64 { return o.DT },
		Set: func(o *fluid.Options, v float64) { o.DT = v },
	},
	{
		Label: "K", Min: 0.01, Max: 1,
		Get: func(o fluid.Options) float64 { return o.K },
		Set: func(o *fluid.Options, v float64) { o.K = v },
	},
	{
		Label: "nu", Min: 0.01, Max: 1,
		Get: func(o fluid.Options) float64 { return o.Nu },
		Set: func(o *fluid.Options, v float64) { o.Nu = v },
	},
	{
		Label: "kappa", Min: 0.01, Max: 1,
		Get: func(o fluid.Options) float64 { return o.Kappa },
		Set: func(o *fluid.Options, v float64) { o.Kappa = v },
	},
	{
		Label: "zoom", Min: 0.1, Max: 10,
		Get: func(o fluid.Options) float64 { return o.Zoom },
		Set: func(o *fluid.Options, v float64) { o.Zoom = v },
	},
	{
		Label: "opacity", Min: 0, Max: 1,
		Get: func(o fluid.Options) float64 { return o.Opacity },
		Set: func(o *fluid.Options, v float64) { o.Opacity = v },
	},
}

// Edit writes v into a copy of opts, clamped to the field's range and rounded
// for integer fields. It reports whether the stored value changed.
func (f Field) Edit(opts fluid.Options, v float32) (fluid.Options, bool) {
	x := math.Min(math.Max(float64(v), float64(f.Min)), float64(f.Max))
	if f.Integer {
		x = math.Round(x)
	}
	if x == f.Get(opts) {
		return opts, false
	}
	f.Set(&opts, x)
	return opts, true
}

// DevPanel edits the selected layer's options with raygui sliders. Slider
// edits are staged and applied when the mouse is released, since applying
// rebuilds the layer's renderer.
type DevPanel struct {
	renderer *Renderer
	x, y     int32
	width    int32
	visible  bool

	selected int
	pending  *fluid.Options
}

// NewDevPanel creates a hidden panel anchored at x, y.
func NewDevPanel(x, y, width int32) *DevPanel {
	return &DevPanel{renderer: NewRenderer(), x: x, y: y, width: width}
}

// SetVisible shows or hides the panel.
func (p *DevPanel) SetVisible(visible bool) { p.visible = visible }

// IsVisible returns whether the panel is shown.
func (p *DevPanel) IsVisible() bool { return p.visible }

// Toggle switches panel visibility.
func (p *DevPanel) Toggle() bool {
	p.visible = !p.visible
	return p.visible
}

// Selected returns the index of the edited layer.
func (p *DevPanel) Selected() int { return p.selected }

// Select moves the selection by delta, wrapping over n layers. Staged edits
// for the previous layer are dropped.
func (p *DevPanel) Select(delta, n int) {
	if n <= 0 {
		p.selected = 0
		return
	}
	p.selected = ((p.selected+delta)%n + n) % n
	p.pending = nil
}

// Working returns the options the panel currently shows for l.
func (p *DevPanel) Working(l *fluid.Layer) fluid.Options {
	if p.pending != nil {
		return *p.pending
	}
	return l.Options()
}

// Stage records an edit without applying it.
func (p *DevPanel) Stage(opts fluid.Options) { p.pending = &opts }

// Pending reports whether a staged edit is waiting.
func (p *DevPanel) Pending() bool { return p.pending != nil }

// Commit applies the staged edit to the selected layer.
func (p *DevPanel) Commit(ed LayerEditor) bool {
	l := p.layer(ed)
	if p.pending == nil || l == nil {
		p.pending = nil
		return false
	}
	ed.ApplyLayerOptions(l, *p.pending)
	p.pending = nil
	return true
}

func (p *DevPanel) layer(ed LayerEditor) *fluid.Layer {
	layers := ed.Layers()
	if len(layers) == 0 {
		return nil
	}
	if p.selected >= len(layers) {
		p.selected = len(layers) - 1
	}
	return layers[p.selected]
}

// Draw renders the panel and handles its input. It returns true while the
// pointer is over the panel so the caller can keep clicks off the canvas.
func (p *DevPanel) Draw(ed LayerEditor) bool {
	if !p.visible {
		return false
	}
	l := p.layer(ed)
	if l == nil {
		return false
	}

	r := p.renderer
	pad := r.Theme.Padding
	rowH := int32(24)
	height := pad*2 + rowH*int32(len(LayerFields)+3)
	r.DrawPanel(p.x, p.y, p.width, height)

	x := float32(p.x + pad)
	y := float32(p.y + pad)
	inner := float32(p.width - pad*2)

	n := len(ed.Layers())
	if gui.Button(rl.Rectangle{X: x, Y: y, Width: 24, Height: 20}, "<") {
		p.Select(-1, n)
	}
	rl.DrawText(fmt.Sprintf("Layer %d/%d", p.selected+1, n), int32(x)+32, int32(y)+4, r.Theme.HeaderFontSize, r.Theme.SectionHeader)
	if gui.Button(rl.Rectangle{X: x + inner - 24, Y: y, Width: 24, Height: 20}, ">") {
		p.Select(1, n)
	}
	y += float32(rowH)

	opts := p.Working(l)
	for _, f := range LayerFields {
		cur := f.Get(opts)
		v := gui.SliderBar(
			rl.Rectangle{X: x + float32(r.Theme.LabelWidth), Y: y, Width: inner - float32(r.Theme.LabelWidth) - 50, Height: 18},
			f.Label, formatField(f, cur),
			float32(cur), f.Min, f.Max,
		)
		if next, changed := f.Edit(opts, v); changed {
			opts = next
			p.Stage(opts)
		}
		y += float32(rowH)
	}
	if p.Pending() && rl.IsMouseButtonReleased(rl.MouseButtonLeft) {
		p.Commit(ed)
	}

	visLabel := "Hide"
	if !opts.Visible {
		visLabel = "Show"
	}
	bw := (inner - 10) / 3
	if gui.Button(rl.Rectangle{X: x, Y: y, Width: bw, Height: 20}, visLabel) {
		opts.Visible = !opts.Visible
		ed.ApplyLayerOptions(l, opts)
		p.pending = nil
	}
	if gui.Button(rl.Rectangle{X: x + bw + 5, Y: y, Width: bw, Height: 20}, "Regenerate") {
		ed.RegenerateLayer(l)
		p.pending = nil
	}
	if gui.Button(rl.Rectangle{X: x + 2*(bw+5), Y: y, Width: bw, Height: 20}, "Reset") {
		ed.ResetLayer(l)
		p.pending = nil
	}

	bounds := rl.Rectangle{X: float32(p.x), Y: float32(p.y), Width: float32(p.width), Height: float32(height)}
	return rl.CheckCollisionPointRec(rl.GetMousePosition(), bounds)
}

func formatField(f Field, v float64) string {
	if f.Integer {
		return fmt.Sprintf("%d %s", int(v), fluid.BlendMode(v))
	}
	return fmt.Sprintf("%.3f", v)
}
