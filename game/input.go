package game

import (
	"log/slog"

	rl "github.com/gen2brain/raylib-go/raylib"
	"gonum.org/v1/gonum/spatial/r2"
)

// Orbit tuning for the box composition.
const (
	orbitSensitivity = 0.005
	wheelZoomStep    = 0.1
)

// handleInput processes keyboard and mouse input.
func (g *Game) handleInput() {
	g.handleResize()

	if rl.IsKeyPressed(rl.KeyF11) {
		rl.ToggleFullscreen()
	}
	if rl.IsKeyPressed(rl.KeySpace) {
		st := g.orch.State()
		st.Paused = !st.Paused
	}
	if rl.IsKeyPressed(rl.KeyR) {
		g.orch.Restart()
	}
	if rl.IsKeyPressed(rl.KeyS) {
		if _, err := g.SaveSnapshot(); err != nil {
			slog.Error("snapshot failed", "error", err)
		}
	}
	if rl.IsKeyPressed(rl.KeyH) {
		g.showHUD = !g.showHUD
	}
	if rl.IsKeyPressed(rl.KeyG) {
		g.dev.Toggle()
	}

	if g.isBox() {
		g.handleCameraInput()
	}
	g.handlePointer()
}

// handleResize checks for window resize and propagates new dimensions.
func (g *Game) handleResize() {
	if !rl.IsWindowResized() {
		return
	}
	w := float32(rl.GetScreenWidth())
	h := float32(rl.GetScreenHeight())
	if w == g.screenWidth && h == g.screenHeight {
		return
	}
	g.screenWidth = w
	g.screenHeight = h
	g.dpr = windowDPR(g.cfg.Screen.DPR)
	g.orch.Resize(float64(w), float64(h), g.dpr)
}

// handlePointer routes the left mouse button to the pointer strokes and the
// composition's click action. Input over the dev panel is ignored.
func (g *Game) handlePointer() {
	m := rl.GetMousePosition()
	p := pointerPos(float64(m.X), float64(m.Y), float64(g.screenWidth), float64(g.screenHeight))

	if rl.IsMouseButtonPressed(rl.MouseButtonLeft) && !g.overPanel {
		g.pointerDown = true
		g.orch.PointerDown(p)
	}
	if d := rl.GetMouseDelta(); d.X != 0 || d.Y != 0 {
		g.orch.PointerMove(p)
	}
	if rl.IsMouseButtonReleased(rl.MouseButtonLeft) && g.pointerDown {
		g.pointerDown = false
		g.orch.PointerUp(p)
		g.orch.Click()
	}
}

// handleCameraInput orbits the box with the right mouse button and zooms with
// the wheel.
func (g *Game) handleCameraInput() {
	orbit := g.scene.Orbit
	if rl.IsMouseButtonDown(rl.MouseButtonRight) {
		d := rl.GetMouseDelta()
		orbit.Drag(float64(d.X), float64(d.Y), orbitSensitivity)
	}
	if wheel := rl.GetMouseWheelMove(); wheel != 0 {
		orbit.ZoomBy(1 - float64(wheel)*wheelZoomStep)
	}
	if rl.IsKeyPressed(rl.KeyHome) {
		orbit.Reset(orbit.MaxDistance / 4)
	}
}

// pointerPos normalizes a window position to [0,1]², top-left origin.
func pointerPos(x, y, w, h float64) r2.Vec {
	if w <= 0 || h <= 0 {
		return r2.Vec{}
	}
	return r2.Vec{X: clamp01(x / w), Y: clamp01(y / h)}
}

func clamp01(v float64) float64 {
	switch {
	case v < 0:
		return 0
	case v > 1:
		return 1
	}
	return v
}
