package fluid

import "gonum.org/v1/gonum/spatial/r2"

// DefaultStrokeSpeed is the interpolation rate used when none is given.
const DefaultStrokeSpeed = 0.07

// Stroke is one emitter of fluid disturbance. Coordinates are normalized
// screen space: (0,0) top-left, (1,1) bottom-right.
type Stroke struct {
	Start  r2.Vec
	Target r2.Vec
	Pos    r2.Vec
	Last   r2.Vec
	Delta  r2.Vec

	// Speed is the fraction of the remaining distance to Target covered per frame.
	Speed float64

	IsDown bool // strong emission while held
	IsMove bool // received pointer input this session
}

// NewStroke creates a stroke resting at (x, y). A speed outside (0,1) falls
// back to DefaultStrokeSpeed.
func NewStroke(x, y, speed float64) *Stroke {
	p := r2.Vec{X: x, Y: y}
	s := &Stroke{Start: p, Target: p, Pos: p, Last: p}
	s.SetSpeed(speed)
	return s
}

// SetSpeed sets the interpolation rate. A speed outside (0,1) falls back to
// DefaultStrokeSpeed.
func (s *Stroke) SetSpeed(speed float64) {
	if speed <= 0 || speed >= 1 {
		speed = DefaultStrokeSpeed
	}
	s.Speed = speed
}

// Update moves Pos towards Target by Speed.
func (s *Stroke) Update() {
	s.Pos = lerp(s.Pos, s.Target, s.Speed)
}

// Reset puts the stroke back at its start.
func (s *Stroke) Reset() {
	s.Pos = s.Start
	s.Last = s.Pos
}

// MirrorX reflects the stroke about the vertical axis.
func (s *Stroke) MirrorX() *Stroke {
	s.apply(func(v r2.Vec) r2.Vec { return r2.Vec{X: 1 - v.X, Y: v.Y} })
	return s
}

// MirrorY reflects the stroke about the horizontal axis.
func (s *Stroke) MirrorY() *Stroke {
	s.apply(func(v r2.Vec) r2.Vec { return r2.Vec{X: v.X, Y: 1 - v.Y} })
	return s
}

// Mirror reflects the stroke about both axes.
func (s *Stroke) Mirror() *Stroke {
	s.apply(func(v r2.Vec) r2.Vec { return r2.Vec{X: 1 - v.X, Y: 1 - v.Y} })
	return s
}

func (s *Stroke) apply(f func(r2.Vec) r2.Vec) {
	s.Start = f(s.Start)
	s.Target = f(s.Target)
	s.Pos = f(s.Pos)
	s.Last = f(s.Last)
}

// Clone returns an independent copy.
func (s *Stroke) Clone() *Stroke {
	c := *s
	return &c
}

// CloneWithSpeed returns an independent copy moving at speed.
func (s *Stroke) CloneWithSpeed(speed float64) *Stroke {
	c := s.Clone()
	if speed > 0 && speed < 1 {
		c.Speed = speed
	}
	return c
}

// MoveTo tracks a pointer directly: the stroke jumps to p instead of easing.
func (s *Stroke) MoveTo(p r2.Vec) {
	s.IsMove = true
	s.Target = p
	s.Pos = p
}

// Press marks the stroke held at p.
func (s *Stroke) Press(p r2.Vec) {
	s.IsDown = true
	s.MoveTo(p)
}

// Release lets go of the stroke at p.
func (s *Stroke) Release(p r2.Vec) {
	s.IsDown = false
	s.MoveTo(p)
}

func lerp(a, b r2.Vec, t float64) r2.Vec {
	return r2.Add(a, r2.Scale(t, r2.Sub(b, a)))
}
