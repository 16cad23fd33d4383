package sketch

import (
	"github.com/pthm-cable/fluid/fluid"
	"github.com/pthm-cable/fluid/palette"
	"github.com/pthm-cable/fluid/random"
)

// ClickAction is what a click or tap does in a composition.
type ClickAction string

const (
	ClickNone       ClickAction = ""
	ClickAddNew     ClickAction = "addnew"
	ClickReset      ClickAction = "reset"
	ClickRegenerate ClickAction = "regenerate"
	ClickCells      ClickAction = "cells"
)

// Schedule is the periodic mutation a composition runs.
type Schedule int

const (
	ScheduleNone    Schedule = iota
	ScheduleChanges          // regenerate every interval, then pause and restart
	ScheduleCells            // capture a cell at jittered intervals up to max_cells
)

// Composition is a named scene topology.
type Composition struct {
	Name        string
	Shape       fluid.Shape
	SingleLayer bool // one layer regardless of the drawn layer count
	History     bool // accumulate composited frames
	Transparent bool
	FixedView   bool // view blend pinned to additive
	Variant     fluid.ShaderVariant
	Click       ClickAction
	Schedule    Schedule
}

// Noise reports whether the composition binds a noise shader variant.
func (c Composition) Noise() bool {
	switch c.Variant {
	case fluid.VariantSea, fluid.VariantSand, fluid.VariantStone, fluid.VariantGlitch:
		return true
	}
	return false
}

// Compositions is the ordered table of known compositions. Selection walks it
// in this order so that a seed picks the same entry regardless of map order.
var Compositions = []Composition{
	{Name: "default", Schedule: ScheduleChanges},
	{Name: "box", Shape: fluid.ShapeBox, SingleLayer: true, Variant: fluid.VariantUV},
	{Name: "cells", History: true, Transparent: true, FixedView: true, Click: ClickCells, Schedule: ScheduleCells},
	{Name: "regenerate", Click: ClickRegenerate},
	{Name: "reset", Click: ClickReset},
	{Name: "addnew", Click: ClickAddNew},
	{Name: "sea", Variant: fluid.VariantSea, Schedule: ScheduleChanges},
	{Name: "sand", Variant: fluid.VariantSand, Schedule: ScheduleChanges},
	{Name: "stone", Variant: fluid.VariantStone, Schedule: ScheduleChanges},
	{Name: "glitch", Variant: fluid.VariantGlitch, Schedule: ScheduleChanges},
}

// LookupComposition returns the composition called name.
func LookupComposition(name string) (Composition, bool) {
	for _, c := range Compositions {
		if c.Name == name {
			return c, true
		}
	}
	return Composition{}, false
}

// ChooseComposition picks one enabled composition. With nothing enabled it
// falls back to the first table entry.
func ChooseComposition(rng random.Source, enabled map[string]bool) Composition {
	var included []Composition
	for _, c := range Compositions {
		if enabled[c.Name] {
			included = append(included, c)
		}
	}
	if len(included) == 0 {
		return Compositions[0]
	}
	return random.Choice(rng, included)
}

// ChoosePalette picks one enabled palette family.
func ChoosePalette(rng random.Source, enabled map[string]bool) string {
	var included []string
	for _, name := range palette.Families {
		if enabled[name] {
			included = append(included, name)
		}
	}
	if len(included) == 0 {
		return palette.Families[0]
	}
	return random.Choice(rng, included)
}
