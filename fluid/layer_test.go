package fluid_test

import (
	"errors"
	"testing"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pthm-cable/fluid/fluid"
	"github.com/pthm-cable/fluid/fluid/fluidtest"
)

func newTestLayer(t *testing.T, numStrokes int) (*fluid.Layer, *fluidtest.Host) {
	t.Helper()
	host := fluidtest.NewHost()
	opts := fluid.Options{
		BlendModePass: fluid.BlendNormal,
		BlendModeView: fluid.BlendAdditive,
		DT:            0.4,
		K:             0.3,
		Nu:            0.5,
		Kappa:         0.2,
		Visible:       true,
		NumStrokes:    numStrokes,
	}
	l := fluid.NewLayer(opts, host.Deps())
	l.Resize(200, 100, 1)
	return l, host
}

func TestSetOptionsDefaults(t *testing.T) {
	l, _ := newTestLayer(t, 1)
	l.SetOptions(fluid.Options{Visible: true})

	want := fluid.Params{DT: 0.15, K: 0.2, Nu: 0.5, Kappa: 0.1}
	if got := l.Fluid(); got != want {
		t.Errorf("expected defaults %+v, got %+v", want, got)
	}
	if l.Capacity() != 1 {
		t.Errorf("SetOptions must not change capacity, got %d", l.Capacity())
	}
}

func TestAddStrokeCapacity(t *testing.T) {
	l, _ := newTestLayer(t, 2)

	for i := 0; i < 2; i++ {
		if !l.AddStroke(fluid.NewStroke(0.5, 0.5, 0)) {
			t.Fatalf("stroke %d should fit", i)
		}
	}
	for i := 0; i < 5; i++ {
		if l.AddStroke(fluid.NewStroke(0.1, 0.1, 0)) {
			t.Fatal("AddStroke past capacity reported success")
		}
		if n := len(l.Strokes()); n != 2 {
			t.Fatalf("stroke count changed past capacity: %d", n)
		}
	}
	if l.AttachPointer() != nil {
		t.Error("pointer attached to a full layer")
	}
}

func TestAddStrokeSeedsSlot(t *testing.T) {
	l, _ := newTestLayer(t, 1)
	l.AddStroke(fluid.NewStroke(0.2, 0.3, 0))

	want := r2.Vec{X: 0.2, Y: 0.7}
	if got := l.Pass().Mouse[0]; !near(got, want) {
		t.Errorf("uMouse seeded to %+v, want %+v", got, want)
	}
	if got := l.Pass().Last[0]; !near(got, want) {
		t.Errorf("uLast seeded to %+v, want %+v", got, want)
	}
}

func TestUpdatePingPong(t *testing.T) {
	l, host := newTestLayer(t, 1)
	l.AddStroke(fluid.NewStroke(0.5, 0.5, 0))

	for frame := 0; frame < 4; frame++ {
		before := l.Source()
		dest := l.Destination()
		if err := l.Update(); err != nil {
			t.Fatal(err)
		}
		call := host.Passes[len(host.Passes)-1]
		if call.Source != before || call.Dest != dest {
			t.Fatalf("frame %d: pass read %v wrote %v, want %v -> %v", frame, call.Source, call.Dest, before, dest)
		}
		if l.Source() == before {
			t.Fatalf("frame %d: source did not swap", frame)
		}
		if l.Source() != dest || l.Destination() != before {
			t.Fatalf("frame %d: targets did not exchange exactly once", frame)
		}
		if l.View().TMap != l.Source() {
			t.Fatalf("frame %d: view must read the freshly rendered target", frame)
		}
		if l.Mesh().Material != l.View() {
			t.Fatalf("frame %d: mesh not bound to view material", frame)
		}
		if call.Params != l.Fluid() {
			t.Fatalf("frame %d: pass params %+v, want %+v", frame, call.Params, l.Fluid())
		}
	}
}

func TestUpdateStrokeUniforms(t *testing.T) {
	l, _ := newTestLayer(t, 1)
	s := fluid.NewStroke(0.2, 0.2, 0.5)
	s.Target = r2.Vec{X: 0.4, Y: 0.2}
	l.AddStroke(s)

	prevMouse := l.Pass().Mouse[0]
	if err := l.Update(); err != nil {
		t.Fatal(err)
	}

	// Pos moved half way: 0.2 -> 0.3 in x
	if !near(s.Pos, r2.Vec{X: 0.3, Y: 0.2}) {
		t.Fatalf("unexpected stroke position %+v", s.Pos)
	}
	if !near(s.Delta, r2.Vec{X: 0.1, Y: 0}) {
		t.Errorf("delta = %+v, want (0.1, 0)", s.Delta)
	}
	if s.Last != s.Pos {
		t.Error("last should equal pos after update")
	}

	pass := l.Pass()
	if !near(pass.Last[0], prevMouse) {
		t.Errorf("uLast should hold the previous uMouse %+v, got %+v", prevMouse, pass.Last[0])
	}
	if !near(pass.Mouse[0], r2.Vec{X: 0.3, Y: 0.8}) {
		t.Errorf("uMouse = %+v, want Y-flipped (0.3, 0.8)", pass.Mouse[0])
	}
	if !near(pass.Velocity[0], r2.Vec{X: 0.1, Y: 0}) {
		t.Errorf("uVelocity = %+v", pass.Velocity[0])
	}
	// 0.1 * 200px = 20px, clamped to 10 -> full strength
	if !near(pass.Strength[0], r2.Vec{X: 50, Y: 50}) {
		t.Errorf("uStrength = %+v, want (50, 50)", pass.Strength[0])
	}
	if pass.Speed[0] != 0.5 {
		t.Errorf("uSpeed = %g", pass.Speed[0])
	}
}

func TestUpdateStrengthScalesWithMovement(t *testing.T) {
	l, _ := newTestLayer(t, 1)
	s := fluid.NewStroke(0.5, 0.5, 0.5)
	s.Target = r2.Vec{X: 0.52, Y: 0.5}
	l.AddStroke(s)

	if err := l.Update(); err != nil {
		t.Fatal(err)
	}
	// 0.01 * 200px = 2px -> 0.2 strength
	want := r2.Vec{X: 10, Y: 10}
	if got := l.Pass().Strength[0]; !near(got, want) {
		t.Errorf("uStrength = %+v, want %+v", got, want)
	}
}

func TestHeldStrokeEmitsFullStrength(t *testing.T) {
	l, _ := newTestLayer(t, 1)
	s := fluid.NewStroke(0.5, 0.5, 0)
	s.IsDown = true
	l.AddStroke(s)

	if err := l.Update(); err != nil {
		t.Fatal(err)
	}
	// Not moving: the held branch ignores distance on x, y stays distance scaled.
	if got := l.Pass().Strength[0]; got != (r2.Vec{X: 50, Y: 0}) {
		t.Errorf("stationary held stroke strength = %+v", got)
	}

	s.Target = r2.Vec{X: 0.9, Y: 0.5}
	s.Speed = 0.5
	if err := l.Update(); err != nil {
		t.Fatal(err)
	}
	if got := l.Pass().Strength[0]; got != (r2.Vec{X: 50, Y: 50}) {
		t.Errorf("moving held stroke strength = %+v, want (50, 50)", got)
	}
}

func TestInitRendererReleasesAndRests(t *testing.T) {
	l, host := newTestLayer(t, 3)
	for i := 0; i < 3; i++ {
		s := fluid.NewStroke(0.1*float64(i+1), 0.2, 0.3)
		s.Target = r2.Vec{X: 0.9, Y: 0.9}
		l.AddStroke(s)
	}
	for i := 0; i < 5; i++ {
		if err := l.Update(); err != nil {
			t.Fatal(err)
		}
	}

	for i := 0; i < 50; i++ {
		l.InitRenderer()
	}
	if n := host.LiveTargets(); n != 2 {
		t.Errorf("expected exactly 2 live targets after repeated init, got %d", n)
	}
	if n := host.LivePrograms(); n != 2 {
		t.Errorf("expected exactly 2 live programs after repeated init, got %d", n)
	}

	pass := l.Pass()
	for i := 0; i < 3; i++ {
		if pass.Mouse[i] != (r2.Vec{X: 0.5, Y: 0.5}) || pass.Last[i] != (r2.Vec{X: 0.5, Y: 0.5}) {
			t.Errorf("slot %d not at rest: mouse %+v last %+v", i, pass.Mouse[i], pass.Last[i])
		}
		if pass.Velocity[i] != (r2.Vec{}) || pass.Strength[i] != (r2.Vec{}) {
			t.Errorf("slot %d velocity/strength not zero", i)
		}
	}
	if len(l.Strokes()) != 3 {
		t.Error("InitRenderer must keep strokes")
	}
	if l.State() != fluid.StateRendering {
		t.Errorf("expected rendering state, got %s", l.State())
	}
}

func TestInitRendererUsesBlendModes(t *testing.T) {
	l, host := newTestLayer(t, 1)
	opts := l.Options()
	opts.BlendModePass = fluid.BlendSubtractive
	opts.BlendModeView = fluid.BlendMultiply
	l.SetOptions(opts)
	l.InitRenderer()

	var pass, view *fluidtest.Program
	for _, p := range host.Programs {
		if p.Released {
			continue
		}
		if p.Kind == "pass" {
			pass = p
		} else {
			view = p
		}
	}
	if pass == nil || pass.Spec.Blend != fluid.BlendSubtractive {
		t.Errorf("pass program built with wrong blend: %+v", pass)
	}
	if view == nil || view.Spec.Blend != fluid.BlendMultiply {
		t.Errorf("view program built with wrong blend: %+v", view)
	}
}

func TestResizeAppliesDPR(t *testing.T) {
	l, _ := newTestLayer(t, 1)
	p := l.AttachPointer()
	p.MoveTo(r2.Vec{X: 0.1, Y: 0.9})

	l.Resize(640, 360, 2)
	for _, target := range []fluid.RenderTarget{l.Source(), l.Destination()} {
		w, h := target.Size()
		if w != 1280 || h != 720 {
			t.Errorf("target size %dx%d, want 1280x720", w, h)
		}
	}
	if p.Pos != (r2.Vec{X: 0.5, Y: 0.5}) || p.Last != p.Pos {
		t.Errorf("pointer not recentred: %+v", *p)
	}
}

func TestDisposedLayer(t *testing.T) {
	l, host := newTestLayer(t, 1)
	l.Dispose()

	if err := l.Update(); !errors.Is(err, fluid.ErrDisposed) {
		t.Errorf("expected ErrDisposed, got %v", err)
	}
	if host.LiveTargets() != 0 || host.LivePrograms() != 0 {
		t.Errorf("dispose leaked %d targets, %d programs", host.LiveTargets(), host.LivePrograms())
	}
	l.InitRenderer()
	if host.LiveTargets() != 0 {
		t.Error("InitRenderer revived a disposed layer")
	}
}

func TestClearAndResetStrokes(t *testing.T) {
	l, host := newTestLayer(t, 1)
	s := fluid.NewStroke(0.2, 0.2, 0.5)
	s.Target = r2.Vec{X: 0.8, Y: 0.8}
	l.AddStroke(s)
	_ = l.Update()

	l.Clear()
	for _, tg := range host.Targets {
		if !tg.Released && tg.Clears != 1 {
			t.Errorf("target %d cleared %d times", tg.ID, tg.Clears)
		}
	}
	l.ResetStrokes()
	if s.Pos != s.Start {
		t.Errorf("stroke not reset: %+v", *s)
	}
}
