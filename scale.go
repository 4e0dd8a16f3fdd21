package asyncdraw

import (
	"fmt"
	"math"

	"github.com/gogpu/gg"
)

// IdentityScale renders one device pixel per logical unit.
const IdentityScale = 1.0

// ScaleSource reports the environment's current device scale (device
// pixels per logical unit). It is read once per render pass, never per node.
type ScaleSource func() float64

// FixedScale returns a ScaleSource that always reports s.
func FixedScale(s float64) ScaleSource {
	return func() float64 { return s }
}

// validScale reports whether s can be used for a render pass.
func validScale(s float64) bool {
	return s > 0 && !math.IsInf(s, 0) && !math.IsNaN(s)
}

// DeviceTransform returns the transform node sees when top is rendered at
// scale: the uniform scale applied once, composed with the frame offsets
// of top, node and every node in between. The device position of a
// node's local point p is DeviceTransform(...).TransformPoint(p).
//
// Every node on the path must have complete layout, and node must be top
// or a descendant of top.
func (t *Tree) DeviceTransform(top, node NodeID, scale float64) (gg.Matrix, error) {
	if !validScale(scale) {
		return gg.Identity(), &PreconditionError{Node: top, Reason: fmt.Sprintf("invalid scale %g", scale)}
	}

	t.mu.RLock()
	defer t.mu.RUnlock()

	var offsets []Point
	for id := node; ; {
		n, ok := t.lookup(id)
		if !ok {
			return gg.Identity(), &PreconditionError{Node: node, Reason: fmt.Sprintf("%s is not a descendant of %s", node, top)}
		}
		if !n.complete {
			return gg.Identity(), &PreconditionError{Node: id, Reason: "layout not complete"}
		}
		offsets = append(offsets, n.frame.Origin())
		if id == top {
			break
		}
		id = n.parent
	}

	m := gg.Scale(scale, scale)
	for i := len(offsets) - 1; i >= 0; i-- {
		m = m.Multiply(gg.Translate(offsets[i].X, offsets[i].Y))
	}
	return m, nil
}
