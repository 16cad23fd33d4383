package renderer

import (
	rl "github.com/gen2brain/raylib-go/raylib"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pthm-cable/fluid/fluid"
)

type passProgram struct {
	shader rl.Shader

	resolutionLoc int32
	dtLoc         int32
	kLoc          int32
	nuLoc         int32
	kappaLoc      int32
	zoomLoc       int32

	mouseLoc    int32
	lastLoc     int32
	velocityLoc int32
	strengthLoc int32
	speedLoc    int32

	noiseZoomLoc   int32
	noiseMinLoc    int32
	noiseMaxLoc    int32
	noiseOffsetLoc int32
}

func newPassProgram(shader rl.Shader) *passProgram {
	loc := func(name string) int32 { return rl.GetShaderLocation(shader, name) }
	return &passProgram{
		shader:         shader,
		resolutionLoc:  loc("uResolution"),
		dtLoc:          loc("dt"),
		kLoc:           loc("K"),
		nuLoc:          loc("nu"),
		kappaLoc:       loc("kappa"),
		zoomLoc:        loc("uZoom"),
		mouseLoc:       loc("uMouse"),
		lastLoc:        loc("uLast"),
		velocityLoc:    loc("uVelocity"),
		strengthLoc:    loc("uStrength"),
		speedLoc:       loc("uSpeed"),
		noiseZoomLoc:   loc("uNoiseZoom"),
		noiseMinLoc:    loc("uNoiseMin"),
		noiseMaxLoc:    loc("uNoiseMax"),
		noiseOffsetLoc: loc("uNoiseOffset"),
	}
}

// apply uploads the material's uniforms.
func (p *passProgram) apply(m *fluid.PassMaterial, w, h int) {
	s := p.shader
	setFloat(s, p.dtLoc, m.DT)
	setFloat(s, p.kLoc, m.K)
	setFloat(s, p.nuLoc, m.Nu)
	setFloat(s, p.kappaLoc, m.Kappa)
	setFloat(s, p.zoomLoc, m.Zoom)
	rl.SetShaderValue(s, p.resolutionLoc, []float32{float32(w), float32(h)}, rl.ShaderUniformVec2)

	if n := int32(len(m.Mouse)); n > 0 {
		rl.SetShaderValueV(s, p.mouseLoc, flatten(m.Mouse), rl.ShaderUniformVec2, n)
		rl.SetShaderValueV(s, p.lastLoc, flatten(m.Last), rl.ShaderUniformVec2, n)
		rl.SetShaderValueV(s, p.velocityLoc, flatten(m.Velocity), rl.ShaderUniformVec2, n)
		rl.SetShaderValueV(s, p.strengthLoc, flatten(m.Strength), rl.ShaderUniformVec2, n)
		rl.SetShaderValueV(s, p.speedLoc, toFloat32(m.Speed), rl.ShaderUniformFloat, n)
	}

	setFloat(s, p.noiseZoomLoc, max(m.NoiseZoom, 1))
	setFloat(s, p.noiseMinLoc, m.NoiseMin)
	setFloat(s, p.noiseMaxLoc, max(m.NoiseMax, m.NoiseMin+1e-3))
	rl.SetShaderValue(s, p.noiseOffsetLoc, []float32{float32(m.NoiseOffset.X), float32(m.NoiseOffset.Y)}, rl.ShaderUniformVec2)
}

func (p *passProgram) Release() {
	if p.shader.ID != 0 {
		rl.UnloadShader(p.shader)
		p.shader = rl.Shader{}
	}
}

type viewProgram struct {
	shader     rl.Shader
	colorLoc   int32
	opacityLoc int32
}

func newViewProgram(shader rl.Shader) *viewProgram {
	return &viewProgram{
		shader:     shader,
		colorLoc:   rl.GetShaderLocation(shader, "uColor"),
		opacityLoc: rl.GetShaderLocation(shader, "uOpacity"),
	}
}

func (p *viewProgram) apply(v *fluid.ViewMaterial) {
	c := v.Color
	rl.SetShaderValue(p.shader, p.colorLoc,
		[]float32{float32(c.R), float32(c.G), float32(c.B), float32(c.W)}, rl.ShaderUniformVec4)
	setFloat(p.shader, p.opacityLoc, v.Opacity)
}

func (p *viewProgram) Release() {
	if p.shader.ID != 0 {
		rl.UnloadShader(p.shader)
		p.shader = rl.Shader{}
	}
}

func setFloat(s rl.Shader, loc int32, v float64) {
	rl.SetShaderValue(s, loc, []float32{float32(v)}, rl.ShaderUniformFloat)
}

// flatten packs vectors as interleaved float32 pairs.
func flatten(vs []r2.Vec) []float32 {
	out := make([]float32, 0, 2*len(vs))
	for _, v := range vs {
		out = append(out, float32(v.X), float32(v.Y))
	}
	return out
}

func toFloat32(vs []float64) []float32 {
	out := make([]float32, len(vs))
	for i, v := range vs {
		out[i] = float32(v)
	}
	return out
}
