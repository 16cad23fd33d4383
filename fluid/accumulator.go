package fluid

// Accumulator captures composited frames into a second ping-pong pair to build
// up trails. It reads only already-rendered layer output.
type Accumulator struct {
	host        Host
	program     Program
	read, write RenderTarget
	blend       BlendMode
	mesh        *Mesh
	captures    int
}

// NewAccumulator allocates the pair at width x height pixels. Its mesh shows
// the latest capture through a copy view program.
func NewAccumulator(deps Deps, width, height int, blend BlendMode) *Accumulator {
	a := &Accumulator{
		host:  deps.Host,
		read:  deps.Host.NewTarget(width, height),
		write: deps.Host.NewTarget(width, height),
		blend: blend,
	}
	a.program = deps.Materials.NewView(MaterialSpec{Blend: BlendNormal, Transparent: true, Variant: VariantCopy})
	a.mesh = &Mesh{
		Visible:  true,
		Material: &ViewMaterial{
			Program:     a.program,
			Blend:       BlendNormal,
			Transparent: true,
			Opacity:     1,
			TMap:        a.read,
		},
	}
	return a
}

// Render draws the current scene over the previous capture into the write target.
func (a *Accumulator) Render() {
	a.host.Composite(a.write, a.read, a.blend)
	a.captures++
}

// Swap exchanges the pair and points the mesh at the newest capture.
func (a *Accumulator) Swap() {
	a.read, a.write = a.write, a.read
	a.mesh.Material.TMap = a.read
}

// Clear resets both targets to transparent.
func (a *Accumulator) Clear() {
	a.host.Clear(a.read)
	a.host.Clear(a.write)
	a.captures = 0
}

// SetBlend changes the blend used for future captures.
func (a *Accumulator) SetBlend(b BlendMode) { a.blend = b }

// Resize reallocates both targets.
func (a *Accumulator) Resize(width, height int) {
	a.read.SetSize(width, height)
	a.write.SetSize(width, height)
}

// Dispose releases both targets and the view program.
func (a *Accumulator) Dispose() {
	a.read.Release()
	a.write.Release()
	if a.program != nil {
		a.program.Release()
	}
	a.mesh.Visible = false
}

func (a *Accumulator) Blend() BlendMode { return a.blend }
func (a *Accumulator) Mesh() *Mesh { return a.mesh }
func (a *Accumulator) Read() RenderTarget { return a.read }
func (a *Accumulator) Write() RenderTarget { return a.write }

// Captures returns how many frames were captured since the last Clear.
func (a *Accumulator) Captures() int { return a.captures }
