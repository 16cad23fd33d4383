package renderer

import (
	rl "github.com/gen2brain/raylib-go/raylib"
	"github.com/lucasb-eyer/go-colorful"

	"github.com/pthm-cable/fluid/camera"
	"github.com/pthm-cable/fluid/fluid"
)

// boxSize is the edge length of the box mesh in world units.
const boxSize = 2

// Scene draws the mesh stack to the current framebuffer.
type Scene struct {
	Background rl.Color
	Orbit      *camera.Orbit

	box       rl.Model
	boxLoaded bool
}

// NewScene creates a scene cleared to bg.
func NewScene(bg colorful.Color) *Scene {
	return &Scene{
		Background: ToColor(bg),
		Orbit:      camera.New(boxSize * 2.5),
	}
}

// ToColor converts a colour to an opaque raylib colour.
func ToColor(c colorful.Color) rl.Color {
	r, g, b := c.Clamped().RGB255()
	return rl.NewColor(r, g, b, 255)
}

// Draw clears to the background and draws every visible mesh bottom to top.
func (s *Scene) Draw(meshes []*fluid.Mesh, w, h int) {
	rl.ClearBackground(s.Background)
	for _, m := range meshes {
		if !m.Visible || m.Material == nil {
			continue
		}
		switch m.Shape {
		case fluid.ShapeBox:
			s.drawBox(m.Material)
		default:
			drawQuadWithBlend(m.Material, m.Material.Blend, w, h)
		}
	}
}

// drawQuadWithBlend draws a view material over a w x h quad.
func drawQuadWithBlend(v *fluid.ViewMaterial, blend fluid.BlendMode, w, h int) {
	p, ok := v.Program.(*viewProgram)
	if !ok || p.shader.ID == 0 {
		return
	}
	tex, ok := v.TMap.(*Target)
	if !ok {
		return
	}
	p.apply(v)
	beginBlend(blend)
	rl.BeginShaderMode(p.shader)
	drawFlipped(tex.rt.Texture, w, h)
	rl.EndShaderMode()
	endBlend()
}

func (s *Scene) drawBox(v *fluid.ViewMaterial) {
	p, ok := v.Program.(*viewProgram)
	if !ok || p.shader.ID == 0 {
		return
	}
	tex, ok := v.TMap.(*Target)
	if !ok {
		return
	}
	if !s.boxLoaded {
		s.box = rl.LoadModelFromMesh(rl.GenMeshCube(boxSize, boxSize, boxSize))
		s.boxLoaded = true
	}
	p.apply(v)

	mats := s.box.GetMaterials()
	mats[0].Shader = p.shader
	rl.SetMaterialTexture(&mats[0], rl.MapDiffuse, tex.rt.Texture)

	rl.BeginMode3D(s.camera3D())
	beginBlend(v.Blend)
	rl.DrawModel(s.box, rl.Vector3{}, 1, rl.White)
	endBlend()
	rl.EndMode3D()
}

func (s *Scene) camera3D() rl.Camera3D {
	eye, target, up := s.Orbit.Eye(), s.Orbit.Target, s.Orbit.Up()
	return rl.Camera3D{
		Position:   rl.NewVector3(float32(eye.X), float32(eye.Y), float32(eye.Z)),
		Target:     rl.NewVector3(float32(target.X), float32(target.Y), float32(target.Z)),
		Up:         rl.NewVector3(float32(up.X), float32(up.Y), float32(up.Z)),
		Fovy:       float32(s.Orbit.Fovy),
		Projection: rl.CameraPerspective,
	}
}

// Unload frees the box model. Shaders stay with their programs.
func (s *Scene) Unload() {
	if s.boxLoaded {
		rl.UnloadModel(s.box)
		s.boxLoaded = false
	}
}
