package renderer

import (
	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/fluid/fluid"
)

// GL enums used for the replace blend; rlgl does not export them.
const (
	glZero    = 0
	glOne     = 1
	glFuncAdd = 0x8006
)

// blendModes maps the simulation's blend modes onto raylib's. None has no
// raylib preset and is expressed as custom factors that replace the destination.
var blendModes = map[fluid.BlendMode]rl.BlendMode{
	fluid.BlendNone:        rl.BlendCustom,
	fluid.BlendNormal:      rl.BlendAlpha,
	fluid.BlendAdditive:    rl.BlendAdditive,
	fluid.BlendSubtractive: rl.BlendSubtractColors,
	fluid.BlendMultiply:    rl.BlendMultiplied,
	fluid.BlendCustom:      rl.BlendAlphaPremultiply,
}

// RaylibBlend returns the raylib blend mode for b, defaulting to alpha.
func RaylibBlend(b fluid.BlendMode) rl.BlendMode {
	if m, ok := blendModes[b]; ok {
		return m
	}
	return rl.BlendAlpha
}

func beginBlend(b fluid.BlendMode) {
	if b == fluid.BlendNone {
		rl.SetBlendFactors(glOne, glZero, glFuncAdd)
	}
	rl.BeginBlendMode(RaylibBlend(b))
}

func endBlend() { rl.EndBlendMode() }
