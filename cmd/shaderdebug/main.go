// Shader debug tool - steps one fluid layer and renders it to a PNG file.
//
// Usage: go run ./cmd/shaderdebug -variant sea -frames 240 -out debug.png
//
// With -source the preprocessed pass and view GLSL are printed instead.
package main

import (
	"flag"
	"fmt"
	"os"

	rl "github.com/gen2brain/raylib-go/raylib"
	"github.com/lucasb-eyer/go-colorful"

	"github.com/pthm-cable/fluid/fluid"
	"github.com/pthm-cable/fluid/renderer"
)

func main() {
	variant := flag.String("variant", "", "Shader variant (sea, sand, stone, glitch, uv)")
	pass := flag.Int("pass", int(fluid.BlendNormal), "Pass blend mode index")
	view := flag.Int("view", int(fluid.BlendAdditive), "View blend mode index")
	dt := flag.Float64("dt", fluid.DefaultDT, "Simulation time step")
	frames := flag.Int("frames", 120, "Simulation steps before capture")
	color := flag.String("color", "#3fa7d6", "Layer colour")
	background := flag.String("background", "#101418", "Background colour")
	transparent := flag.Bool("transparent", false, "Compile the transparent view")
	source := flag.Bool("source", false, "Print preprocessed shader source and exit")
	outPath := flag.String("out", "debug.png", "Output PNG path")
	width := flag.Int("width", 512, "Render width")
	height := flag.Int("height", 512, "Render height")
	flag.Parse()

	opts := fluid.Options{
		BlendModePass: fluid.BlendMode(*pass),
		BlendModeView: fluid.BlendMode(*view),
		DT:            *dt,
		Transparent:   *transparent,
		Visible:       true,
		NumStrokes:    1,
		Variant:       fluid.ShaderVariant(*variant),
	}.WithDefaults()

	if *source {
		if err := printSources(opts); err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		return
	}

	fg, err := colorful.Hex(*color)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Bad colour %q: %v\n", *color, err)
		os.Exit(1)
	}
	bg, err := colorful.Hex(*background)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Bad background %q: %v\n", *background, err)
		os.Exit(1)
	}

	// Initialize raylib with hidden window
	rl.SetConfigFlags(rl.FlagWindowHidden)
	rl.InitWindow(int32(*width), int32(*height), "Shader Debug")
	defer rl.CloseWindow()

	host := renderer.NewHost()
	layer := fluid.NewLayer(opts, host.Deps())
	defer layer.Dispose()
	layer.Resize(float64(*width), float64(*height), 1)
	layer.Color = fluid.Color4{R: fg.R, G: fg.G, B: fg.B, W: 1}

	// A stroke sweeping corner to corner gives every variant something to advect.
	s := fluid.NewStroke(0.2, 0.2, 0.02)
	s.Target.X, s.Target.Y = 0.8, 0.7
	layer.AddStroke(s)

	for i := 0; i < *frames; i++ {
		if err := layer.Update(); err != nil {
			fmt.Fprintf(os.Stderr, "Step %d failed: %v\n", i, err)
			os.Exit(1)
		}
	}

	scene := renderer.NewScene(bg)
	defer scene.Unload()
	meshes := []*fluid.Mesh{layer.Mesh()}
	if err := renderer.SavePNG(*outPath, *width, *height, func() { scene.Draw(meshes, *width, *height) }); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	fmt.Printf("Layer rendered to: %s (%dx%d, %d frames)\n", *outPath, *width, *height, *frames)
}

func printSources(opts fluid.Options) error {
	spec := opts.Spec()
	passSrc, err := renderer.PassSource(spec)
	if err != nil {
		return err
	}
	viewSrc, err := renderer.ViewSource(spec)
	if err != nil {
		return err
	}
	fmt.Printf("// pass\n%s\n// view\n%s", passSrc, viewSrc)
	return nil
}
