// Package game runs a sketch in a raylib window: it owns the render host,
// routes input to the orchestrator and draws the overlays.
package game

import (
	"fmt"
	"log/slog"
	"time"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/fluid/config"
	"github.com/pthm-cable/fluid/fluid"
	"github.com/pthm-cable/fluid/random"
	"github.com/pthm-cable/fluid/renderer"
	"github.com/pthm-cable/fluid/sketch"
	"github.com/pthm-cable/fluid/telemetry"
	"github.com/pthm-cable/fluid/ui"
)

// Controls is the key legend shown under the HUD.
const Controls = "Space: pause | R: restart | S: snapshot | H: HUD | G: dev panel | F11: fullscreen"

// Options holds run-level settings that come from the command line.
type Options struct {
	Seed      int64
	OutputDir string
	Dev       bool // force the dev panel on
}

// Game holds the complete run state.
type Game struct {
	cfg  *config.Config
	opts Options

	host   *renderer.Host
	scene  *renderer.Scene
	orch   *sketch.Orchestrator
	output *telemetry.OutputManager
	perf   *telemetry.PerfCollector

	hud     *ui.HUD
	dev     *ui.DevPanel
	showHUD bool

	screenWidth, screenHeight float32
	dpr                       float64

	pointerDown   bool
	overPanel     bool
	lastPerfFrame int
}

// NewGame builds a run for opts.Seed. The window must already be open.
func NewGame(cfg *config.Config, opts Options) (*Game, error) {
	output, err := telemetry.NewOutputManager(opts.OutputDir)
	if err != nil {
		return nil, fmt.Errorf("opening output: %w", err)
	}

	g := &Game{
		cfg:          cfg,
		opts:         opts,
		host:         renderer.NewHost(),
		output:       output,
		perf:         telemetry.NewPerfCollector(cfg.Telemetry.PerfWindow),
		hud:          ui.NewHUD(10, 10, 240),
		showHUD:      cfg.Dev.ShowDebug,
		screenWidth:  float32(rl.GetScreenWidth()),
		screenHeight: float32(rl.GetScreenHeight()),
		dpr:          windowDPR(cfg.Screen.DPR),
	}
	g.dev = ui.NewDevPanel(int32(g.screenWidth)-330, 10, 320)
	g.dev.SetVisible(opts.Dev || cfg.Dev.GUI)

	rng := random.New(opts.Seed)
	state := sketch.NewState(cfg, rng, opts.Seed)
	g.orch = sketch.NewOrchestrator(cfg.Sketch, state, rng, g.host.Deps(), sketch.Hooks{
		OnApplyLayerOptions: g.onApplyLayerOptions,
		OnEvent:             g.onEvent,
	})
	g.host.Scene = g.orch.Meshes
	g.scene = renderer.NewScene(state.Background().Color())
	g.orch.Setup(float64(g.screenWidth), float64(g.screenHeight), g.dpr)

	if err := output.WriteFeatures(opts.Seed, state.Features); err != nil {
		slog.Warn("writing features", "error", err)
	}
	if err := output.WriteConfig(cfg); err != nil {
		slog.Warn("writing config", "error", err)
	}
	return g, nil
}

// windowDPR returns configured when set, else the window's scale.
func windowDPR(configured float64) float64 {
	if configured > 0 {
		return configured
	}
	if s := rl.GetWindowScaleDPI(); s.X > 0 {
		return float64(s.X)
	}
	return 1
}

// Update handles input and advances the sketch by one frame.
func (g *Game) Update() {
	g.perf.StartFrame()
	g.perf.StartPhase(telemetry.PhaseSchedule)
	g.handleInput()

	g.perf.StartPhase(telemetry.PhaseLayers)
	frameTime := rl.GetFrameTime()
	g.orch.Update(time.Duration(float64(frameTime) * float64(time.Second)))
	if g.isBox() {
		g.scene.Orbit.Update(float64(frameTime))
	}
}

// Draw renders the scene and overlays, then closes the frame's timing.
func (g *Game) Draw() {
	g.perf.StartPhase(telemetry.PhaseDraw)
	rl.BeginDrawing()
	g.drawScene()

	g.perf.StartPhase(telemetry.PhaseGUI)
	if g.showHUD {
		st := g.orch.State()
		g.hud.Draw(ui.NewHUDData(st, len(g.orch.Layers()), g.cfg.Sketch.MaxCells, rl.GetFPS()))
		g.hud.DrawControls(int32(g.screenHeight), Controls)
	}
	g.overPanel = g.dev.Draw(g.orch)
	rl.EndDrawing()

	g.perf.EndFrame()
	g.logPerf()
}

func (g *Game) drawScene() {
	g.scene.Draw(g.orch.Meshes(), int(g.screenWidth), int(g.screenHeight))
}

// SaveSnapshot exports the current scene without overlays.
func (g *Game) SaveSnapshot() (string, error) {
	frame := g.orch.State().Frame
	path, err := g.output.NextSnapshotPath(frame)
	if err != nil {
		return "", err
	}
	if path == "" {
		path = fmt.Sprintf("fluid_%d_%06d.png", g.opts.Seed, frame)
	}
	if err := renderer.SavePNG(path, int(g.screenWidth), int(g.screenHeight), g.drawScene); err != nil {
		return "", err
	}
	slog.Info("snapshot saved", "path", path, "frame", frame)
	return path, nil
}

func (g *Game) isBox() bool {
	return g.orch.State().Composition.Shape == fluid.ShapeBox
}

// Orchestrator exposes the running sketch.
func (g *Game) Orchestrator() *sketch.Orchestrator { return g.orch }

// Frame returns the number of simulated frames.
func (g *Game) Frame() int { return g.orch.State().Frame }

// Unload releases GPU resources and closes output files.
func (g *Game) Unload() {
	g.orch.Dispose()
	g.scene.Unload()
	if err := g.output.Close(); err != nil {
		slog.Warn("closing output", "error", err)
	}
}
