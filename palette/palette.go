// Package palette generates the colour families a run draws its layer colours from.
package palette

import (
	"math"

	colorful "github.com/lucasb-eyer/go-colorful"

	"github.com/pthm-cable/fluid/random"
)

// Palette family names.
const (
	BlackWhite    = "Black&White"
	Mono          = "Mono"
	Analogous     = "Analogous"
	Complementary = "Complementary"
)

// Families lists every known family in selection order.
var Families = []string{BlackWhite, Mono, Analogous, Complementary}

// HSL is a colour in hue (degrees), saturation and lightness (0..1).
type HSL struct {
	H, S, L float64
}

// Color converts to an RGB colour.
func (c HSL) Color() colorful.Color {
	return colorful.Hsl(c.H, c.S, c.L).Clamped()
}

// Generator produces palettes from a seeded source.
type Generator struct {
	rng random.Source
}

// NewGenerator creates a generator drawing from rng.
func NewGenerator(rng random.Source) *Generator {
	return &Generator{rng: rng}
}

// Size returns how many colours a run with numLayers layers should ask for.
// Two-tone families only ever carry a background and a foreground.
func Size(family string, numLayers int) int {
	switch family {
	case BlackWhite, Complementary:
		return 2
	}
	return numLayers + 1
}

// Generate returns n colours for family. The first colour is the background.
func (g *Generator) Generate(family string, n int) []HSL {
	if n < 2 {
		n = 2
	}
	base := g.base(family)
	out := make([]HSL, 0, n)
	out = append(out, base)
	for i := 1; i < n; i++ {
		out = append(out, g.derive(family, base, i))
	}
	return out
}

// Next returns one fresh colour consistent with base, used when a layer is recoloured.
func (g *Generator) Next(family string, base HSL) HSL {
	return g.derive(family, base, g.rng.Int(1, 4))
}

func (g *Generator) base(family string) HSL {
	h := g.rng.Num(0, 360)
	switch family {
	case BlackWhite:
		l := 0.08
		if g.rng.Bool() {
			l = 0.92
		}
		return HSL{H: h, S: 0, L: l}
	case Mono:
		return HSL{H: h, S: g.rng.Num(0.3, 0.8), L: g.rng.Num(0.1, 0.9)}
	default:
		return HSL{H: h, S: g.rng.Num(0.4, 0.9), L: g.rng.Num(0.15, 0.85)}
	}
}

func (g *Generator) derive(family string, base HSL, i int) HSL {
	switch family {
	case BlackWhite:
		return HSL{H: base.H, S: 0, L: 1 - base.L}
	case Mono:
		return HSL{H: base.H, S: base.S, L: contrast(base.L, g.rng.Num(0.3, 0.6))}
	case Analogous:
		step := g.rng.Num(20, 40)
		return HSL{H: wrapHue(base.H + step*float64(i)), S: base.S, L: contrast(base.L, g.rng.Num(0.2, 0.5))}
	case Complementary:
		return HSL{H: wrapHue(base.H + 180), S: base.S, L: contrast(base.L, g.rng.Num(0.2, 0.5))}
	}
	return HSL{H: g.rng.Num(0, 360), S: base.S, L: 1 - base.L}
}

// contrast moves l away from itself by amount, towards whichever end has room.
func contrast(l, amount float64) float64 {
	if l < 0.5 {
		return math.Min(1, l+amount)
	}
	return math.Max(0, l-amount)
}

func wrapHue(h float64) float64 {
	h = math.Mod(h, 360)
	if h < 0 {
		h += 360
	}
	return h
}
