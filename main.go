package main

import (
	"flag"
	"log/slog"
	"os"
	"time"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/fluid/config"
	"github.com/pthm-cable/fluid/game"
	"github.com/pthm-cable/fluid/sketch"
)

func main() {
	configPath := flag.String("config", "", "Path to config.yaml (empty = use defaults)")
	seed := flag.Int64("seed", 0, "RNG seed (0 = time-based)")
	outputDir := flag.String("output-dir", "", "Output directory for features, change log and snapshots")
	dev := flag.Bool("dev", false, "Show the layer options panel")
	maxFrames := flag.Int("max-frames", 0, "Stop after N simulated frames (0 = unlimited)")
	verbose := flag.Bool("v", false, "Log layer option changes")
	composition := flag.String("composition", "", "Pin a composition by name (empty = drawn from the enabled set)")

	flag.Parse()

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	if err := config.Init(*configPath); err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	cfg := config.Cfg()
	if *composition != "" {
		if _, ok := sketch.LookupComposition(*composition); !ok {
			slog.Error("unknown composition", "name", *composition)
			os.Exit(1)
		}
		cfg.Sketch.Composition = *composition
	}

	rngSeed := *seed
	if rngSeed == 0 {
		rngSeed = time.Now().UnixNano()
	}
	outDir := *outputDir
	if outDir == "" {
		outDir = cfg.Output.Dir
	}

	rl.SetConfigFlags(rl.FlagWindowResizable | rl.FlagWindowHighdpi | rl.FlagMsaa4xHint)
	rl.InitWindow(int32(cfg.Screen.Width), int32(cfg.Screen.Height), "Fluid")
	defer rl.CloseWindow()
	rl.SetTargetFPS(int32(cfg.Screen.TargetFPS))

	g, err := game.NewGame(cfg, game.Options{Seed: rngSeed, OutputDir: outDir, Dev: *dev})
	if err != nil {
		slog.Error("failed to start sketch", "error", err)
		os.Exit(1)
	}
	defer g.Unload()

	slog.Info("starting sketch", "seed", rngSeed, "output_dir", outDir)
	for !rl.WindowShouldClose() {
		g.Update()
		g.Draw()

		if *maxFrames > 0 && g.Frame() >= *maxFrames {
			slog.Info("max frames reached", "frame", g.Frame())
			break
		}
	}
}
