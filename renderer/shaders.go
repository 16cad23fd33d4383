package renderer

import (
	"embed"
	"fmt"
	"strings"

	"github.com/pthm-cable/fluid/fluid"
)

//go:embed shaders/*.fs
var shaderFS embed.FS

const (
	passShaderPath = "shaders/fluid_pass.fs"
	viewShaderPath = "shaders/fluid_view.fs"
)

// variantDefines maps a pass variant to its preprocessor symbol.
var variantDefines = map[fluid.ShaderVariant]string{
	fluid.VariantSea:    "SEA",
	fluid.VariantSand:   "SAND",
	fluid.VariantStone:  "STONE",
	fluid.VariantGlitch: "GLITCH",
}

// PassSource returns the fragment source for a pass program built from spec.
func PassSource(spec fluid.MaterialSpec) (string, error) {
	defines := []string{
		fmt.Sprintf("NUM_STROKES %d", max(spec.NumStrokes, 1)),
		fmt.Sprintf("MAX_ITERATIONS %d", max(spec.MaxIterations, 1)),
	}
	if d, ok := variantDefines[spec.Variant]; ok {
		defines = append(defines, d)
	}
	return withDefines(passShaderPath, defines)
}

// ViewSource returns the fragment source for a view program built from spec.
func ViewSource(spec fluid.MaterialSpec) (string, error) {
	var defines []string
	if spec.Transparent {
		defines = append(defines, "TRANSPARENT")
	}
	switch spec.Variant {
	case fluid.VariantUV:
		defines = append(defines, "UV")
	case fluid.VariantCopy:
		defines = append(defines, "COPY")
	}
	return withDefines(viewShaderPath, defines)
}

// withDefines inserts #define lines after the #version directive, which must
// stay first.
func withDefines(path string, defines []string) (string, error) {
	data, err := shaderFS.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("reading %s: %w", path, err)
	}
	src := string(data)
	version, body, ok := strings.Cut(src, "\n")
	if !ok || !strings.HasPrefix(version, "#version") {
		return "", fmt.Errorf("%s: missing #version directive", path)
	}

	var b strings.Builder
	b.WriteString(version)
	b.WriteByte('\n')
	for _, d := range defines {
		b.WriteString("#define ")
		b.WriteString(d)
		b.WriteByte('\n')
	}
	b.WriteString(body)
	return b.String(), nil
}
