package asyncdraw

import (
	"fmt"
	"math"
)

// Point is a position in logical units.
type Point struct {
	X, Y float64
}

// Size is a width and height in logical units.
type Size struct {
	W, H float64
}

// Empty reports whether the size has zero area.
func (s Size) Empty() bool {
	return s.W <= 0 || s.H <= 0
}

// Scale returns the size multiplied by f, e.g. to obtain device pixels.
func (s Size) Scale(f float64) Size {
	return Size{W: s.W * f, H: s.H * f}
}

// Rect is an axis-aligned rectangle: origin (X, Y) and size (W, H).
// A node's frame is a Rect in its parent's coordinate space.
type Rect struct {
	X, Y, W, H float64
}

// R is a convenience constructor for Rect.
func R(x, y, w, h float64) Rect {
	return Rect{X: x, Y: y, W: w, H: h}
}

// Origin returns the top-left corner.
func (r Rect) Origin() Point {
	return Point{X: r.X, Y: r.Y}
}

// Size returns the width and height.
func (r Rect) Size() Size {
	return Size{W: r.W, H: r.H}
}

// Local returns the rectangle moved to the origin, i.e. the bounds of a
// node in its own coordinate space.
func (r Rect) Local() Rect {
	return Rect{W: r.W, H: r.H}
}

// Inset shrinks the rectangle by the given edge amounts. Sizes never go
// below zero.
func (r Rect) Inset(top, right, bottom, left float64) Rect {
	out := Rect{
		X: r.X + left,
		Y: r.Y + top,
		W: r.W - left - right,
		H: r.H - top - bottom,
	}
	out.W = math.Max(out.W, 0)
	out.H = math.Max(out.H, 0)
	return out
}

// Valid reports whether every component is finite and the size is non-negative.
func (r Rect) Valid() bool {
	for _, v := range [...]float64{r.X, r.Y, r.W, r.H} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return r.W >= 0 && r.H >= 0
}

func (r Rect) String() string {
	return fmt.Sprintf("(%g,%g %gx%g)", r.X, r.Y, r.W, r.H)
}
