package sketch

import (
	"log/slog"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pthm-cable/fluid/fluid"
	"github.com/pthm-cable/fluid/random"
)

// minDT is the lower dt bound per pass blend mode. Faster steps on the
// additive pass blow out, so its floor is highest.
var minDT = [...]float64{0.25, 0.25, 0.4, 0.1, 0.3, 0.1}

// GenerateOptions draws candidate option records for layer i until the policy
// accepts one, or MaxDraws is reached. It returns the record and the number of
// draws taken.
func (o *Orchestrator) GenerateOptions(i int) (fluid.Options, int) {
	ctx := o.validationContext(i)
	var opts fluid.Options
	for draws := 1; ; draws++ {
		opts = o.drawOptions(i)
		if o.hooks.OnInitLayerOptions != nil {
			o.hooks.OnInitLayerOptions(&opts, i)
		}
		if o.policy.Validate(opts, ctx) {
			return opts, draws
		}
		if draws >= MaxDraws {
			slog.Warn("option draws exhausted, accepting last candidate",
				"layer", i,
				"draws", draws,
				"blend", opts.BlendKey(),
			)
			return opts, draws
		}
	}
}

func (o *Orchestrator) drawOptions(i int) fluid.Options {
	comp := o.state.Composition
	rng := o.rng

	maxPass := 5
	if i > 0 {
		maxPass = 4
	}
	pass := fluid.BlendMode(rng.Int(0, maxPass))

	view := fluid.BlendAdditive
	if !comp.FixedView {
		maxView := 5
		if pass == fluid.BlendSubtractive {
			maxView = 3
		}
		view = fluid.BlendMode(rng.Int(2, maxView))
	}

	visible := true
	if i < len(o.layers) {
		visible = o.layers[i].Mesh().Visible
	}

	return fluid.Options{
		BlendModePass: pass,
		BlendModeView: view,
		DT:            rng.Num(minDT[pass], 1.0),
		K:             rng.Num(0.2, 0.7),
		Nu:            rng.Num(0.4, 0.6),
		Kappa:         rng.Num(0.1, 0.9),
		Zoom:          1,
		Opacity:       1,
		Transparent:   comp.Transparent,
		Visible:       visible,
		ColorW:        o.state.Features.ColorW,
		MaxIterations: o.cfg.MaxIterations,
		Variant:       comp.Variant,
	}
}

// noiseOptions reshapes a candidate for the noise compositions: a plain or
// unblended pass, an additive or custom view, a zoomed field and a drifting
// noise offset. It is installed as the first OnInitLayerOptions hook.
func noiseOptions(rng random.Source, minDt, maxDt float64) func(*fluid.Options, int) {
	return func(opts *fluid.Options, _ int) {
		opts.BlendModePass = random.Choice(rng, []fluid.BlendMode{fluid.BlendNone, fluid.BlendNormal})
		opts.BlendModeView = random.Choice(rng, []fluid.BlendMode{fluid.BlendAdditive, fluid.BlendCustom})
		opts.Zoom = rng.Exp(0.1, 10)
		opts.DT = rng.Num(minDt, maxDt)
		opts.K = rng.Num(0.1, 1.0)
		opts.Nu = rng.Num(0.1, 1.0)
		opts.Kappa = rng.Num(0.1, 1.0)
		opts.NoiseZoom = rng.Num(100, 2000)
		opts.NoiseMin = 0
		opts.NoiseMax = 1
		opts.NoiseOffset = r2.Vec{X: rng.Num(0, 1000), Y: rng.Num(0, 1000)}
		opts.NoiseSpeed = r2.Vec{X: 0.001}
	}
}

func (o *Orchestrator) validationContext(i int) ValidationContext {
	ctx := ValidationContext{
		Index:       i,
		Palette:     o.state.Palette,
		BackgroundL: o.state.Background().L,
		FixedView:   o.state.Composition.FixedView,
	}
	if i > 0 && i-1 < len(o.layerOptions) {
		prev := o.layerOptions[i-1]
		ctx.Previous = &prev
	}
	return ctx
}
