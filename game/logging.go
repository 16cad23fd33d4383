package game

import (
	"log/slog"

	"github.com/pthm-cable/fluid/fluid"
	"github.com/pthm-cable/fluid/sketch"
)

// onEvent logs a change and appends it to the change log.
func (g *Game) onEvent(e sketch.Event) {
	slog.Info("sketch event",
		"kind", e.Kind,
		"frame", e.Frame,
		"layers", e.Layers,
		"num_changes", e.NumChanges,
		"num_cells", e.NumCells,
	)
	if err := g.output.WriteEvent(e); err != nil {
		slog.Warn("writing event", "error", err)
	}
}

func (g *Game) onApplyLayerOptions(l *fluid.Layer, opts fluid.Options) {
	slog.Debug("layer options",
		"pass", opts.BlendModePass,
		"view", opts.BlendModeView,
		"dt", opts.DT,
		"k", opts.K,
		"nu", opts.Nu,
		"kappa", opts.Kappa,
		"visible", opts.Visible,
	)
}

// logPerf emits frame timing every PerfLogInterval frames.
func (g *Game) logPerf() {
	frame := g.orch.State().Frame
	if frame == g.lastPerfFrame || !dueEvery(frame, g.cfg.Telemetry.PerfLogInterval) {
		return
	}
	g.lastPerfFrame = frame
	stats := g.perf.Stats()
	slog.Info("perf", "frame", frame, "stats", stats)
	if err := g.output.WritePerf(stats, frame); err != nil {
		slog.Warn("writing perf", "error", err)
	}
}

// dueEvery reports whether frame falls on a positive interval boundary.
func dueEvery(frame, interval int) bool {
	return interval > 0 && frame > 0 && frame%interval == 0
}
