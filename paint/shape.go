package paint

import (
	"image/color"

	"github.com/gogpu/asyncdraw"
)

// Fill paints the node's bounds with a solid color, optionally with
// rounded corners.
type Fill struct {
	Color  color.Color
	Radius float64
}

// Paint implements asyncdraw.Painter.
func (f Fill) Paint(c asyncdraw.Canvas, size asyncdraw.Size, _ float64) {
	if f.Color == nil || size.Empty() {
		return
	}
	s, ok := surfaceOf(c, "fill")
	if !ok {
		return
	}
	s.SetColor(f.Color)
	rect(s, asyncdraw.R(0, 0, size.W, size.H), f.Radius)
	if err := s.Fill(); err != nil {
		asyncdraw.Logger().Warn("paint: fill failed", "err", err)
	}
}

// Border strokes the node's bounds. The stroke lies entirely inside the
// bounds.
type Border struct {
	Color  color.Color
	Width  float64
	Radius float64
}

// Paint implements asyncdraw.Painter.
func (b Border) Paint(c asyncdraw.Canvas, size asyncdraw.Size, _ float64) {
	if b.Color == nil || b.Width <= 0 || size.Empty() {
		return
	}
	s, ok := surfaceOf(c, "border")
	if !ok {
		return
	}
	half := b.Width / 2
	r := asyncdraw.R(0, 0, size.W, size.H).Inset(half, half, half, half)
	s.SetColor(b.Color)
	s.SetLineWidth(b.Width)
	rect(s, r, max(b.Radius-half, 0))
	if err := s.Stroke(); err != nil {
		asyncdraw.Logger().Warn("paint: border stroke failed", "err", err)
	}
}

// rect adds r to the path, with rounded corners when radius > 0.
func rect(s Surface, r asyncdraw.Rect, radius float64) {
	if radius > 0 {
		radius = min(radius, r.W/2, r.H/2)
		s.DrawRoundedRectangle(r.X, r.Y, r.W, r.H, radius)
		return
	}
	s.DrawRectangle(r.X, r.Y, r.W, r.H)
}
