package fluid

import (
	"fmt"

	"gonum.org/v1/gonum/spatial/r2"
)

// Default simulation coefficients, applied when an option leaves them zero.
const (
	DefaultDT    = 0.15
	DefaultK     = 0.2
	DefaultNu    = 0.5
	DefaultKappa = 0.1
)

// Params are the numerical coefficients of the simulation step.
type Params struct {
	DT    float64 // time step
	K     float64 // pressure stiffness
	Nu    float64 // viscosity
	Kappa float64 // density diffusion
}

// Options configures one layer. A record is produced by option generation and
// replaced wholesale on regeneration.
type Options struct {
	BlendModePass BlendMode `yaml:"blend_mode_pass"`
	BlendModeView BlendMode `yaml:"blend_mode_view"`

	DT    float64 `yaml:"dt"`
	K     float64 `yaml:"k"`
	Nu    float64 `yaml:"nu"`
	Kappa float64 `yaml:"kappa"`

	Zoom        float64 `yaml:"zoom"`    // default 1
	Opacity     float64 `yaml:"opacity"` // default 1
	Transparent bool    `yaml:"transparent"`
	Visible     bool    `yaml:"visible"`
	ColorW      float64 `yaml:"color_w"`

	NoiseZoom   float64 `yaml:"noise_zoom"`
	NoiseMin    float64 `yaml:"noise_min"`
	NoiseMax    float64 `yaml:"noise_max"`
	NoiseOffset r2.Vec  `yaml:"noise_offset"`
	NoiseSpeed  r2.Vec  `yaml:"noise_speed"`

	NumStrokes    int           `yaml:"num_strokes"`
	MaxIterations int           `yaml:"max_iterations"`
	Variant       ShaderVariant `yaml:"variant"`
}

// Fluid extracts the simulation coefficients, defaulting zero values.
func (o Options) Fluid() Params {
	p := Params{DT: o.DT, K: o.K, Nu: o.Nu, Kappa: o.Kappa}
	if p.DT == 0 {
		p.DT = DefaultDT
	}
	if p.K == 0 {
		p.K = DefaultK
	}
	if p.Nu == 0 {
		p.Nu = DefaultNu
	}
	if p.Kappa == 0 {
		p.Kappa = DefaultKappa
	}
	return p
}

// Spec describes the pass program for these options. The view program uses
// the same spec with Blend set to BlendModeView.
func (o Options) Spec() MaterialSpec {
	return MaterialSpec{
		Blend:         o.BlendModePass,
		Transparent:   o.Transparent,
		Variant:       o.Variant,
		NumStrokes:    o.NumStrokes,
		MaxIterations: o.MaxIterations,
	}
}

// WithDefaults fills presentation fields that have no meaningful zero value.
func (o Options) WithDefaults() Options {
	if o.Zoom == 0 {
		o.Zoom = 1
	}
	if o.Opacity == 0 {
		o.Opacity = 1
	}
	if o.MaxIterations == 0 {
		o.MaxIterations = 10
	}
	return o
}

// Validate rejects records a layer cannot be built from.
func (o Options) Validate() error {
	if o.NumStrokes < 0 {
		return fmt.Errorf("negative stroke capacity %d", o.NumStrokes)
	}
	if !o.BlendModePass.Valid() {
		return fmt.Errorf("invalid pass blend mode %d", o.BlendModePass)
	}
	if !o.BlendModeView.Valid() {
		return fmt.Errorf("invalid view blend mode %d", o.BlendModeView)
	}
	if o.DT < 0 || o.K < 0 || o.Nu < 0 || o.Kappa < 0 {
		return fmt.Errorf("negative fluid coefficient in %+v", o.Fluid())
	}
	return nil
}

// BlendKey returns the "pass-view" pairing used by validation rules.
func (o Options) BlendKey() string {
	return fmt.Sprintf("%d-%d", o.BlendModePass, o.BlendModeView)
}
