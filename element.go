package asyncdraw

// Canvas is the target a render pass paints into.
//
// The renderer only manipulates the transform stack; painters may assert
// a richer interface (see package paint). *gg.Context satisfies Canvas.
//
// A Canvas is owned by exactly one in-flight render call.
type Canvas interface {
	// Push saves the current transform.
	Push()
	// Pop restores the most recently saved transform.
	Pop()
	// Translate appends a translation to the current transform.
	Translate(x, y float64)
	// Scale appends a scale to the current transform.
	Scale(sx, sy float64)
}

// Painter draws a node's own content.
//
// Paint is called once per node per render pass with the canvas already
// translated into the node's local coordinate space, the node's frame
// size in logical units, and the scale fixed for the pass. A Painter must
// restore any transform it pushes. Failures are the painter's own concern.
type Painter interface {
	Paint(c Canvas, size Size, scale float64)
}

// PainterFunc adapts an ordinary function to the Painter interface.
type PainterFunc func(c Canvas, size Size, scale float64)

// Paint calls f(c, size, scale).
func (f PainterFunc) Paint(c Canvas, size Size, scale float64) { f(c, size, scale) }

// Measurer is implemented by painters with an intrinsic content size,
// such as text. Layouts consult it for children without an explicit size.
type Measurer interface {
	Measure(avail Size) Size
}

// Layout is the layout collaborator for one node.
//
// Given the bounds proposed by the parent (in the parent's coordinate
// space) and the node's child elements, Layout returns the node's frame
// and one proposed rectangle per child, in the node's local coordinate
// space. An error leaves the node untouched and is reported as
// ErrLayoutUnresolved.
type Layout interface {
	Layout(proposed Rect, children []Element) (frame Rect, placed []Rect, err error)
}

// LayoutFunc adapts an ordinary function to the Layout interface.
type LayoutFunc func(proposed Rect, children []Element) (Rect, []Rect, error)

// Layout calls f(proposed, children).
func (f LayoutFunc) Layout(proposed Rect, children []Element) (Rect, []Rect, error) {
	return f(proposed, children)
}

// Element declares a node: what it paints, how it lays out its children,
// and which children it owns. Children are materialized into nodes by
// Tree.CompleteLayout; their order is the paint order.
type Element struct {
	// Name identifies the element in logs and errors.
	Name string

	// Painter draws the node's content. Nil paints nothing.
	Painter Painter

	// Layout resolves the node's frame and places its children.
	// Nil takes the proposed bounds and gives every child the full local bounds.
	Layout Layout

	// Size is the preferred size. A zero component is flexible.
	Size Size

	// Flex is the grow factor used by stack layouts.
	Flex float64

	// Frame is the fixed placement used by absolute layouts.
	Frame Rect

	// Children are the ordered child elements.
	Children []Element
}

// PreferredSize returns the element's preferred size within avail.
// Explicit components of Size win; the rest come from the painter's
// Measurer, if any, and are zero otherwise.
func (e Element) PreferredSize(avail Size) Size {
	out := e.Size
	if out.W > 0 && out.H > 0 {
		return out
	}
	if m, ok := e.Painter.(Measurer); ok {
		measured := m.Measure(avail)
		if out.W <= 0 {
			out.W = measured.W
		}
		if out.H <= 0 {
			out.H = measured.H
		}
	}
	return out
}

// fillLayout is the layout used when an element declares none.
type fillLayout struct{}

func (fillLayout) Layout(proposed Rect, children []Element) (Rect, []Rect, error) {
	placed := make([]Rect, len(children))
	for i := range placed {
		placed[i] = proposed.Local()
	}
	return proposed, placed, nil
}
