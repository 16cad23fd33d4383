// Package renderer draws the fluid core through raylib: render textures for
// targets, embedded GLSL programs for materials, and the final scene.
package renderer

import (
	"log/slog"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/fluid/fluid"
)

// Target is a raylib render texture.
type Target struct {
	rt   rl.RenderTexture2D
	w, h int
}

func newTarget(w, h int) *Target {
	t := &Target{}
	t.load(w, h)
	return t
}

func (t *Target) load(w, h int) {
	t.w, t.h = max(w, 1), max(h, 1)
	t.rt = rl.LoadRenderTexture(int32(t.w), int32(t.h))
	rl.SetTextureFilter(t.rt.Texture, rl.FilterBilinear)
	rl.SetTextureWrap(t.rt.Texture, rl.WrapClamp)
	clearTarget(t)
}

func (t *Target) Size() (int, int) { return t.w, t.h }

// SetSize reallocates the texture. Contents are lost.
func (t *Target) SetSize(w, h int) {
	if w == t.w && h == t.h {
		return
	}
	rl.UnloadRenderTexture(t.rt)
	t.load(w, h)
}

func (t *Target) Release() {
	if t.rt.ID == 0 {
		return
	}
	rl.UnloadRenderTexture(t.rt)
	t.rt = rl.RenderTexture2D{}
}

// Texture exposes the colour attachment.
func (t *Target) Texture() rl.Texture2D { return t.rt.Texture }

func clearTarget(t *Target) {
	rl.BeginTextureMode(t.rt)
	rl.ClearBackground(rl.Blank)
	rl.EndTextureMode()
}

// Host implements fluid.Host and fluid.Materials on raylib. It must be used
// from the goroutine that owns the window.
type Host struct {
	// Scene returns the meshes Composite draws after the previous capture.
	Scene func() []*fluid.Mesh

	programs int
}

// NewHost creates a host. A window must already be open.
func NewHost() *Host { return &Host{} }

// Deps returns the host wired as both renderer and material factory.
func (h *Host) Deps() fluid.Deps {
	return fluid.Deps{Host: h, Materials: h}
}

func (h *Host) NewTarget(w, hgt int) fluid.RenderTarget { return newTarget(w, hgt) }

func (h *Host) Clear(t fluid.RenderTarget) {
	if rt, ok := t.(*Target); ok {
		clearTarget(rt)
	}
}

// RenderPass runs one simulation step reading m.TMap and writing dst. The
// destination is cleared first, then the pass is blended onto it.
func (h *Host) RenderPass(m *fluid.PassMaterial, dst fluid.RenderTarget) {
	out, ok := dst.(*Target)
	if !ok {
		return
	}
	src, ok := m.TMap.(*Target)
	if !ok {
		return
	}
	p, ok := m.Program.(*passProgram)
	if !ok {
		return
	}
	p.apply(m, out.w, out.h)

	rl.BeginTextureMode(out.rt)
	rl.ClearBackground(rl.Blank)
	beginBlend(m.Blend)
	rl.BeginShaderMode(p.shader)
	drawFlipped(src.rt.Texture, out.w, out.h)
	rl.EndShaderMode()
	endBlend()
	rl.EndTextureMode()
}

// Composite draws prev unblended into dst, then the scene with blend.
func (h *Host) Composite(dst, prev fluid.RenderTarget, blend fluid.BlendMode) {
	out, ok := dst.(*Target)
	if !ok {
		return
	}
	in, ok := prev.(*Target)
	if !ok {
		return
	}

	rl.BeginTextureMode(out.rt)
	rl.ClearBackground(rl.Blank)
	drawFlipped(in.rt.Texture, out.w, out.h)
	if h.Scene != nil {
		for _, m := range h.Scene() {
			if capturable(m, dst, prev) {
				drawQuadWithBlend(m.Material, blend, out.w, out.h)
			}
		}
	}
	rl.EndTextureMode()
}

// capturable reports whether m belongs in a capture into dst over prev. A
// capture never samples its own pair.
func capturable(m *fluid.Mesh, dst, prev fluid.RenderTarget) bool {
	if m == nil || !m.Visible || m.Material == nil || m.Shape != fluid.ShapeQuad {
		return false
	}
	return m.Material.TMap != dst && m.Material.TMap != prev
}

func (h *Host) NewPass(spec fluid.MaterialSpec) fluid.Program {
	src, err := PassSource(spec)
	if err != nil {
		slog.Error("pass shader source", "error", err)
		return &passProgram{}
	}
	h.programs++
	return newPassProgram(rl.LoadShaderFromMemory("", src))
}

func (h *Host) NewView(spec fluid.MaterialSpec) fluid.Program {
	src, err := ViewSource(spec)
	if err != nil {
		slog.Error("view shader source", "error", err)
		return &viewProgram{}
	}
	h.programs++
	return newViewProgram(rl.LoadShaderFromMemory("", src))
}

// Programs returns how many programs were compiled.
func (h *Host) Programs() int { return h.programs }

// drawFlipped draws tex over a w x h area. Render textures are stored bottom-up.
func drawFlipped(tex rl.Texture2D, w, h int) {
	src := rl.Rectangle{X: 0, Y: 0, Width: float32(tex.Width), Height: -float32(tex.Height)}
	dst := rl.Rectangle{X: 0, Y: 0, Width: float32(w), Height: float32(h)}
	rl.DrawTexturePro(tex, src, dst, rl.Vector2{}, 0, rl.White)
}
