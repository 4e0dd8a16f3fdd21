package asyncdraw

import "fmt"

// RenderStats summarizes one render pass.
type RenderStats struct {
	// Painted is the number of nodes whose painter ran (nodes without a
	// painter count too).
	Painted int

	// Skipped is the number of subtrees skipped because their root was
	// destroyed or lost its layout while the pass was running.
	Skipped int

	// Cancelled reports that the cancellation predicate stopped the pass.
	Cancelled bool
}

// Render paints id and its subtree into c at IdentityScale.
// See RenderAtScale.
func (t *Tree) Render(id NodeID, c Canvas, isCancelled CancelFunc) error {
	_, err := t.RenderWithStats(id, c, IdentityScale, isCancelled)
	return err
}

// RenderAtScale paints id and its subtree into c on the calling goroutine.
//
// The node's layout must be complete (see CompleteLayout); otherwise, or
// if c is nil or scale is not a positive finite number, a
// *PreconditionError is returned and nothing is painted.
//
// Nodes are visited depth-first in child order. Before each node
// isCancelled is polled; once it reports true no further node is painted
// and RenderAtScale returns nil. Nodes painted before that stay painted.
// Each node is painted with c translated to its frame origin, with scale
// applied once at id. Every transform pushed onto c is popped before
// returning. A nil isCancelled never cancels.
func (t *Tree) RenderAtScale(id NodeID, c Canvas, scale float64, isCancelled CancelFunc) error {
	_, err := t.RenderWithStats(id, c, scale, isCancelled)
	return err
}

// RenderWithStats is RenderAtScale, also reporting what the pass did.
func (t *Tree) RenderWithStats(id NodeID, c Canvas, scale float64, isCancelled CancelFunc) (RenderStats, error) {
	if c == nil {
		return RenderStats{}, &PreconditionError{Node: id, Reason: "nil canvas"}
	}
	if !validScale(scale) {
		return RenderStats{}, &PreconditionError{Node: id, Reason: fmt.Sprintf("invalid scale %g", scale)}
	}
	root, ok := t.snapshot(id)
	if !ok {
		reason := "layout not complete"
		if !t.Contains(id) {
			reason = "node not found"
		}
		return RenderStats{}, &PreconditionError{Node: id, Reason: reason}
	}
	if isCancelled == nil {
		isCancelled = Never
	}

	p := &renderPass{
		tree:        t,
		canvas:      c,
		scale:       scale,
		isCancelled: isCancelled,
	}
	if !p.cancelled() {
		p.draw(root, true)
	}
	return p.stats, nil
}

// renderPass is the state of one top-level render call. scale is fixed
// when the pass starts and handed unchanged to every node.
type renderPass struct {
	tree        *Tree
	canvas      Canvas
	scale       float64
	isCancelled CancelFunc

	stopped bool
	stats   RenderStats
}

// cancelled polls the predicate. Once it has reported true the pass stays
// stopped without polling again.
func (p *renderPass) cancelled() bool {
	if p.stopped {
		return true
	}
	if p.isCancelled() {
		p.stopped = true
		p.stats.Cancelled = true
	}
	return p.stopped
}

// visit processes one child: poll, snapshot, draw.
func (p *renderPass) visit(id NodeID) {
	if p.cancelled() {
		return
	}
	snap, ok := p.tree.snapshot(id)
	if !ok {
		// The child vanished or was invalidated after the parent was
		// read: treat the subtree as cancelled and go on with siblings.
		p.stats.Skipped++
		Logger().Debug("asyncdraw: skipped subtree", "node", id.String())
		return
	}
	p.draw(snap, false)
}

// draw paints a node and recurses into its children inside a
// Push/Pop scope.
func (p *renderPass) draw(snap nodeSnapshot, root bool) {
	c := p.canvas
	c.Push()
	defer c.Pop()

	if root {
		c.Scale(p.scale, p.scale)
	}
	c.Translate(snap.frame.X, snap.frame.Y)

	if snap.painter != nil {
		snap.painter.Paint(c, snap.frame.Size(), p.scale)
	}
	p.stats.Painted++

	for _, child := range snap.children {
		if p.stopped {
			return
		}
		p.visit(child)
	}
}
