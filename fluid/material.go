package fluid

import "gonum.org/v1/gonum/spatial/r2"

// BlendMode selects how a program's output combines with its destination.
// The numbering is stable: option generation draws these as integers.
type BlendMode int

const (
	BlendNone BlendMode = iota
	BlendNormal
	BlendAdditive
	BlendSubtractive
	BlendMultiply
	BlendCustom
)

var blendNames = [...]string{"none", "normal", "additive", "subtractive", "multiply", "custom"}

func (b BlendMode) String() string {
	if b < 0 || int(b) >= len(blendNames) {
		return "invalid"
	}
	return blendNames[b]
}

// Valid reports whether b is a known mode.
func (b BlendMode) Valid() bool {
	return b >= BlendNone && b <= BlendCustom
}

// ShaderVariant selects a family of pass/view programs.
type ShaderVariant string

const (
	VariantDefault ShaderVariant = ""
	VariantSea     ShaderVariant = "sea"
	VariantSand    ShaderVariant = "sand"
	VariantStone   ShaderVariant = "stone"
	VariantGlitch  ShaderVariant = "glitch"
	VariantUV      ShaderVariant = "uv"   // view program for meshes with their own UVs
	VariantCopy    ShaderVariant = "copy" // view program that shows a captured frame unchanged
)

// MaterialSpec is what the factory needs to build a program.
type MaterialSpec struct {
	Blend         BlendMode
	Transparent   bool
	Variant       ShaderVariant
	NumStrokes    int
	MaxIterations int
}

// Program is a compiled pass or view program owned by one material.
type Program interface {
	Release()
}

// Materials builds compiled programs.
type Materials interface {
	NewPass(spec MaterialSpec) Program
	NewView(spec MaterialSpec) Program
}

// Color4 is an RGB colour plus a weight applied by the view program.
type Color4 struct {
	R, G, B, W float64
}

// PassMaterial holds the uniforms of one simulation step. Slot arrays are
// sized to the layer's stroke capacity.
type PassMaterial struct {
	Program     Program
	Blend       BlendMode
	Transparent bool

	TMap RenderTarget

	DT, K, Nu, Kappa float64

	Mouse    []r2.Vec
	Last     []r2.Vec
	Velocity []r2.Vec
	Strength []r2.Vec
	Speed    []float64

	Zoom          float64
	NoiseZoom     float64
	NoiseMin      float64
	NoiseMax      float64
	NoiseOffset   r2.Vec
	NoiseSpeed    r2.Vec
	MaxIterations int
}

// restCenter is the neutral slot position.
var restCenter = r2.Vec{X: 0.5, Y: 0.5}

func newPassMaterial(p Program, spec MaterialSpec) *PassMaterial {
	m := &PassMaterial{
		Program:       p,
		Blend:         spec.Blend,
		Transparent:   spec.Transparent,
		Mouse:         make([]r2.Vec, spec.NumStrokes),
		Last:          make([]r2.Vec, spec.NumStrokes),
		Velocity:      make([]r2.Vec, spec.NumStrokes),
		Strength:      make([]r2.Vec, spec.NumStrokes),
		Speed:         make([]float64, spec.NumStrokes),
		MaxIterations: spec.MaxIterations,
	}
	m.rest()
	return m
}

// rest puts every slot in the neutral state.
func (m *PassMaterial) rest() {
	for i := range m.Mouse {
		m.Mouse[i] = restCenter
		m.Last[i] = restCenter
		m.Velocity[i] = r2.Vec{}
		m.Strength[i] = r2.Vec{}
	}
}

// ViewMaterial holds the uniforms of the colourising step.
type ViewMaterial struct {
	Program     Program
	Blend       BlendMode
	Transparent bool
	Opacity     float64

	TMap  RenderTarget
	Color Color4
}

// Shape is how the host presents a mesh.
type Shape int

const (
	ShapeQuad Shape = iota // fullscreen quad
	ShapeBox               // textured box in a 3-D view
)

// Mesh is the drawable the host presents each frame. The layer swaps its
// material; the host issues the draw.
type Mesh struct {
	Material *ViewMaterial
	Visible  bool
	Shape    Shape
}
