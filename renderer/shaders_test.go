package renderer

import (
	"strings"
	"testing"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/fluid/fluid"
)

func TestPassSourceDefines(t *testing.T) {
	tests := []struct {
		name    string
		spec    fluid.MaterialSpec
		want    []string
		notWant []string
	}{
		{
			name:    "default",
			spec:    fluid.MaterialSpec{NumStrokes: 3, MaxIterations: 10},
			want:    []string{"#define NUM_STROKES 3\n", "#define MAX_ITERATIONS 10\n"},
			notWant: []string{"#define SEA", "#define GLITCH"},
		},
		{
			name: "empty layer keeps one slot",
			spec: fluid.MaterialSpec{},
			want: []string{"#define NUM_STROKES 1\n", "#define MAX_ITERATIONS 1\n"},
		},
		{
			name: "sea",
			spec: fluid.MaterialSpec{NumStrokes: 1, Variant: fluid.VariantSea},
			want: []string{"#define SEA\n"},
		},
		{
			name: "glitch",
			spec: fluid.MaterialSpec{NumStrokes: 1, Variant: fluid.VariantGlitch},
			want: []string{"#define GLITCH\n"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src, err := PassSource(tt.spec)
			if err != nil {
				t.Fatal(err)
			}
			if !strings.HasPrefix(src, "#version 330\n#define ") {
				t.Errorf("defines must follow the version line:\n%s", src[:60])
			}
			for _, w := range tt.want {
				if !strings.Contains(src, w) {
					t.Errorf("missing %q", w)
				}
			}
			for _, w := range tt.notWant {
				if strings.Contains(src, w) {
					t.Errorf("unexpected %q", w)
				}
			}
		})
	}
}

func TestViewSourceDefines(t *testing.T) {
	src, err := ViewSource(fluid.MaterialSpec{Transparent: true, Variant: fluid.VariantUV})
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(src, "#define TRANSPARENT\n") || !strings.Contains(src, "#define UV\n") {
		t.Errorf("missing view defines:\n%s", src)
	}

	src, err = ViewSource(fluid.MaterialSpec{})
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(src, "#define") {
		t.Error("opaque view should carry no defines")
	}

	src, err = ViewSource(fluid.MaterialSpec{Transparent: true, Variant: fluid.VariantCopy})
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(src, "#define COPY\n") || strings.Contains(src, "#define UV\n") {
		t.Errorf("copy view defines:\n%s", src)
	}
}

func TestCapturable(t *testing.T) {
	dst, prev, layer := &Target{}, &Target{}, &Target{}
	mesh := func(tmap fluid.RenderTarget, shape fluid.Shape, visible bool) *fluid.Mesh {
		return &fluid.Mesh{Visible: visible, Shape: shape, Material: &fluid.ViewMaterial{TMap: tmap}}
	}
	tests := []struct {
		name string
		mesh *fluid.Mesh
		want bool
	}{
		{"layer quad", mesh(layer, fluid.ShapeQuad, true), true},
		{"hidden", mesh(layer, fluid.ShapeQuad, false), false},
		{"box", mesh(layer, fluid.ShapeBox, true), false},
		{"no material", &fluid.Mesh{Visible: true}, false},
		{"own read target", mesh(prev, fluid.ShapeQuad, true), false},
		{"own write target", mesh(dst, fluid.ShapeQuad, true), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := capturable(tt.mesh, dst, prev); got != tt.want {
				t.Errorf("capturable = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestRaylibBlend(t *testing.T) {
	for b := fluid.BlendNone; b <= fluid.BlendCustom; b++ {
		if _, ok := blendModes[b]; !ok {
			t.Errorf("blend %s has no raylib mapping", b)
		}
	}
	if RaylibBlend(fluid.BlendMode(42)) != rl.BlendAlpha {
		t.Error("unknown blend should fall back to alpha")
	}
	if RaylibBlend(fluid.BlendNone) != rl.BlendCustom {
		t.Error("replace blend must go through custom factors")
	}
}
