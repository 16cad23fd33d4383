package fluid

// RenderTarget is an offscreen surface owned by exactly one layer or accumulator.
type RenderTarget interface {
	Size() (width, height int)
	SetSize(width, height int)
	Release()
}

// Host is the renderer the core draws through.
type Host interface {
	// NewTarget allocates an offscreen surface in pixels.
	NewTarget(width, height int) RenderTarget
	// RenderPass draws a fullscreen quad with m into dst.
	RenderPass(m *PassMaterial, dst RenderTarget)
	// Clear resets t to transparent.
	Clear(t RenderTarget)
	// Composite draws prev and then every visible layer mesh into dst using blend.
	Composite(dst, prev RenderTarget, blend BlendMode)
}

// Deps are the collaborators a layer is built with.
type Deps struct {
	Host      Host
	Materials Materials
}
