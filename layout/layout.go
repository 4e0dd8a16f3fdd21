// Package layout provides ready-made asyncdraw.Layout policies.
//
// Every policy is a plain value and safe for concurrent use. Policies
// return rectangles in the node's local coordinate space; an error makes
// the node's layout unresolved and leaves the tree unchanged.
package layout

import (
	"errors"
	"fmt"

	"github.com/gogpu/asyncdraw"
)

// Sentinel errors returned by the layout policies.
var (
	// ErrOverflow is returned when children cannot fit the proposed bounds
	// and the policy may not shrink them.
	ErrOverflow = errors.New("layout: children overflow bounds")

	// ErrInvalidParam is returned for negative spacing, gaps or insets and
	// for non-positive column counts.
	ErrInvalidParam = errors.New("layout: invalid parameter")
)

// Insets are distances from the four edges of a rectangle.
type Insets struct {
	Top, Right, Bottom, Left float64
}

// Uniform returns insets of v on every edge.
func Uniform(v float64) Insets {
	return Insets{Top: v, Right: v, Bottom: v, Left: v}
}

// Apply shrinks r by the insets.
func (in Insets) Apply(r asyncdraw.Rect) asyncdraw.Rect {
	return r.Inset(in.Top, in.Right, in.Bottom, in.Left)
}

func (in Insets) validate() error {
	if in.Top < 0 || in.Right < 0 || in.Bottom < 0 || in.Left < 0 {
		return fmt.Errorf("%w: negative padding %+v", ErrInvalidParam, in)
	}
	return nil
}

// Fill keeps the proposed bounds and gives every child the full local bounds.
type Fill struct{}

// Layout implements asyncdraw.Layout.
func (Fill) Layout(proposed asyncdraw.Rect, children []asyncdraw.Element) (asyncdraw.Rect, []asyncdraw.Rect, error) {
	return proposed, repeat(proposed.Local(), len(children)), nil
}

// Fixed ignores the proposed bounds: the node's frame is always the
// rectangle itself, and every child gets the full local bounds.
//
//	Element{Layout: layout.Fixed(asyncdraw.R(0, 0, 64, 64))}
type Fixed asyncdraw.Rect

// Layout implements asyncdraw.Layout.
func (f Fixed) Layout(_ asyncdraw.Rect, children []asyncdraw.Element) (asyncdraw.Rect, []asyncdraw.Rect, error) {
	frame := asyncdraw.Rect(f)
	if !frame.Valid() {
		return asyncdraw.Rect{}, nil, fmt.Errorf("%w: fixed frame %s", ErrInvalidParam, frame)
	}
	return frame, repeat(frame.Local(), len(children)), nil
}

// Absolute keeps the proposed bounds and places each child at the Frame
// its element declares.
type Absolute struct{}

// Layout implements asyncdraw.Layout.
func (Absolute) Layout(proposed asyncdraw.Rect, children []asyncdraw.Element) (asyncdraw.Rect, []asyncdraw.Rect, error) {
	placed := make([]asyncdraw.Rect, len(children))
	for i, c := range children {
		placed[i] = c.Frame
	}
	return proposed, placed, nil
}

// Overlay stacks every child over the same padded bounds, in paint order.
type Overlay struct {
	Padding Insets
}

// Layout implements asyncdraw.Layout.
func (o Overlay) Layout(proposed asyncdraw.Rect, children []asyncdraw.Element) (asyncdraw.Rect, []asyncdraw.Rect, error) {
	if err := o.Padding.validate(); err != nil {
		return asyncdraw.Rect{}, nil, err
	}
	return proposed, repeat(o.Padding.Apply(proposed.Local()), len(children)), nil
}

func repeat(r asyncdraw.Rect, n int) []asyncdraw.Rect {
	out := make([]asyncdraw.Rect, n)
	for i := range out {
		out[i] = r
	}
	return out
}
