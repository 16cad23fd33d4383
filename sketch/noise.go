package sketch

import (
	opensimplex "github.com/ojrac/opensimplex-go"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pthm-cable/fluid/fluid"
)

// Drift tuning for noise compositions.
const (
	driftRate      = 0.002 // noise-space units per frame
	driftAmplitude = 40.0  // noise-offset units
	driftLayerStep = 7.3   // decorrelates layers
)

// NoiseDrift wanders each layer's noise offset along a smooth path around the
// offset drawn for it, on top of the linear noise speed.
type NoiseDrift struct {
	noise opensimplex.Noise
}

// NewNoiseDrift seeds the drift field.
func NewNoiseDrift(seed int64) *NoiseDrift {
	return &NoiseDrift{noise: opensimplex.NewNormalized(seed)}
}

// Offset returns the drifted offset for layer i at frame.
func (d *NoiseDrift) Offset(base, speed r2.Vec, i, frame int) r2.Vec {
	t := float64(frame) * driftRate
	row := float64(i) * driftLayerStep
	wobble := r2.Vec{
		X: (d.noise.Eval2(t, row) - 0.5) * driftAmplitude,
		Y: (d.noise.Eval2(t, row+100) - 0.5) * driftAmplitude,
	}
	linear := r2.Scale(float64(frame), speed)
	return r2.Add(base, r2.Add(linear, wobble))
}

// Apply moves every layer's noise offset to its position at frame.
func (d *NoiseDrift) Apply(layers []*fluid.Layer, frame int) {
	for i, l := range layers {
		opts := l.Options()
		l.SetNoiseOffset(d.Offset(opts.NoiseOffset, opts.NoiseSpeed, i, frame))
	}
}
