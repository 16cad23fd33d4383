package ui

import (
	"fmt"

	rl "github.com/gen2brain/raylib-go/raylib"
	"github.com/lucasb-eyer/go-colorful"

	"github.com/pthm-cable/fluid/renderer"
	"github.com/pthm-cable/fluid/sketch"
)

// HUDData holds all the data needed to render the stats HUD.
type HUDData struct {
	Seed        int64
	Composition string
	Palette     string
	Colors      []colorful.Color
	Layers      int
	Strokes     int
	Frame       int
	FPS         int32

	// Budget is the active schedule's counter, if any.
	BudgetLabel string
	BudgetUsed  int
	BudgetTotal int

	Status string
}

// NewHUDData snapshots st for drawing.
func NewHUDData(st *sketch.SketchState, layers, maxCells int, fps int32) HUDData {
	d := HUDData{
		Seed:        st.Seed,
		Composition: st.Composition.Name,
		Palette:     st.Palette,
		Layers:      layers,
		Strokes:     st.Strokes,
		Frame:       st.Frame,
		FPS:         fps,
		Status:      Status(st),
	}
	for _, c := range st.HSL {
		d.Colors = append(d.Colors, c.Color())
	}
	switch st.Composition.Schedule {
	case sketch.ScheduleChanges:
		d.BudgetLabel, d.BudgetUsed, d.BudgetTotal = "Changes", st.NumChanges, st.MaxChanges
	case sketch.ScheduleCells:
		d.BudgetLabel, d.BudgetUsed, d.BudgetTotal = "Cells", st.NumCells, maxCells
	}
	return d
}

// Status summarises the run's scheduling state in one word.
func Status(st *sketch.SketchState) string {
	switch {
	case st.Idle:
		return "IDLE"
	case st.Paused:
		return "PAUSED"
	}
	return "Running"
}

// HUD renders the stats panel.
type HUD struct {
	renderer *Renderer
	x, y     int32
	width    int32
}

// NewHUD creates a HUD anchored at x, y.
func NewHUD(x, y, width int32) *HUD {
	return &HUD{renderer: NewRenderer(), x: x, y: y, width: width}
}

// Draw renders the HUD.
func (h *HUD) Draw(data HUDData) {
	r := h.renderer
	pad := r.Theme.Padding
	lines := int32(7 + len(data.Colors))
	if data.BudgetLabel != "" {
		lines++
	}
	r.DrawPanel(h.x, h.y, h.width, lines*r.Theme.LineHeight+pad*2+4)

	x, y := h.x+pad, h.y+pad
	y = r.DrawSectionHeader(x, y, fmt.Sprintf("Seed %d", data.Seed))
	y = r.DrawLabelValue(x, y, "Composition", data.Composition)
	y = r.DrawLabelValue(x, y, "Palette", data.Palette)
	y = r.DrawLabelValue(x, y, "Layers", fmt.Sprintf("%d x %d strokes", data.Layers, data.Strokes))
	y = r.DrawLabelValue(x, y, "Frame", fmt.Sprintf("%d", data.Frame))
	y = r.DrawLabelValue(x, y, "FPS", fmt.Sprintf("%d", data.FPS))
	if data.BudgetLabel != "" {
		y = r.DrawBudgetBar(x, y, data.BudgetLabel, data.BudgetUsed, data.BudgetTotal, h.width-pad*2)
	}
	for i, c := range data.Colors {
		label := fmt.Sprintf("Color %d", i)
		if i == 0 {
			label = "Background"
		}
		y = r.DrawColorSwatch(x, y, label, renderer.ToColor(c))
	}
	rl.DrawText(data.Status, x, y, r.Theme.HeaderFontSize, r.Theme.SectionHeader)
}

// DrawControls renders the key legend at the bottom of the screen.
func (h *HUD) DrawControls(screenHeight int32, controls string) {
	rl.DrawText(controls, 10, screenHeight-25, 14, rl.Gray)
}
