// Package fluidtest provides an in-memory host and material factory for
// exercising layers without a GPU.
package fluidtest

import "github.com/pthm-cable/fluid/fluid"

// Target is a fake render target that records its lifecycle.
type Target struct {
	ID       int
	W, H     int
	Released bool
	Clears   int
	Renders  int
}

func (t *Target) Size() (int, int) { return t.W, t.H }

func (t *Target) SetSize(width, height int) { t.W, t.H = width, height }

func (t *Target) Release() { t.Released = true }

// Program is a fake compiled program.
type Program struct {
	Spec     fluid.MaterialSpec
	Kind     string
	Released bool
}

func (p *Program) Release() { p.Released = true }

// PassCall records one RenderPass invocation.
type PassCall struct {
	Source fluid.RenderTarget
	Dest   fluid.RenderTarget
	Params fluid.Params
}

// CompositeCall records one Composite invocation.
type CompositeCall struct {
	Dest, Prev fluid.RenderTarget
	Blend      fluid.BlendMode
}

// Host implements fluid.Host and fluid.Materials in memory.
type Host struct {
	Targets    []*Target
	Programs   []*Program
	Passes     []PassCall
	Composites []CompositeCall
}

// NewHost returns an empty host.
func NewHost() *Host { return &Host{} }

// Deps returns the host wired as both renderer and material factory.
func (h *Host) Deps() fluid.Deps {
	return fluid.Deps{Host: h, Materials: h}
}

func (h *Host) NewTarget(width, height int) fluid.RenderTarget {
	t := &Target{ID: len(h.Targets), W: width, H: height}
	h.Targets = append(h.Targets, t)
	return t
}

func (h *Host) RenderPass(m *fluid.PassMaterial, dst fluid.RenderTarget) {
	h.Passes = append(h.Passes, PassCall{
		Source: m.TMap,
		Dest:   dst,
		Params: fluid.Params{DT: m.DT, K: m.K, Nu: m.Nu, Kappa: m.Kappa},
	})
	if t, ok := dst.(*Target); ok {
		t.Renders++
	}
}

func (h *Host) Clear(t fluid.RenderTarget) {
	if ft, ok := t.(*Target); ok {
		ft.Clears++
	}
}

func (h *Host) Composite(dst, prev fluid.RenderTarget, blend fluid.BlendMode) {
	h.Composites = append(h.Composites, CompositeCall{Dest: dst, Prev: prev, Blend: blend})
}

func (h *Host) NewPass(spec fluid.MaterialSpec) fluid.Program {
	p := &Program{Spec: spec, Kind: "pass"}
	h.Programs = append(h.Programs, p)
	return p
}

func (h *Host) NewView(spec fluid.MaterialSpec) fluid.Program {
	p := &Program{Spec: spec, Kind: "view"}
	h.Programs = append(h.Programs, p)
	return p
}

// LiveTargets counts targets not yet released.
func (h *Host) LiveTargets() int {
	n := 0
	for _, t := range h.Targets {
		if !t.Released {
			n++
		}
	}
	return n
}

// LivePrograms counts programs not yet released.
func (h *Host) LivePrograms() int {
	n := 0
	for _, p := range h.Programs {
		if !p.Released {
			n++
		}
	}
	return n
}
