package asyncdraw

import (
	"errors"
	"fmt"
)

// maxRelayoutAttempts bounds how often a node's layout is recomputed when
// its element keeps changing while the layout collaborator runs.
const maxRelayoutAttempts = 3

// errElementChanged is the cause reported when maxRelayoutAttempts is exhausted.
var errElementChanged = errors.New("element replaced during layout")

// CompleteLayout resolves the layout of id and of every node beneath it,
// materializing children declared by the elements, so that the subtree
// can be rendered. It may be called from any goroutine.
//
// A node that is already complete, with no invalidated descendants, is
// skipped along with its subtree: calling CompleteLayout twice performs
// no mutation the second time. Concurrent calls for the same node are
// serialized; the later caller waits for and observes the earlier one's
// result.
//
// If a layout collaborator fails, CompleteLayout returns a *LayoutError
// (matching ErrLayoutUnresolved) and leaves that node exactly as it was.
// Nodes completed before the failure stay complete.
func (t *Tree) CompleteLayout(id NodeID) error {
	_, err, _ := t.flights.Do(id.flightKey(), func() (any, error) {
		return nil, t.completeNode(id)
	})
	return err
}

// completeNode runs the gate for a single node, then for its children.
func (t *Tree) completeNode(id NodeID) error {
	for attempt := 1; ; attempt++ {
		t.mu.RLock()
		n, ok := t.lookup(id)
		if !ok {
			t.mu.RUnlock()
			return fmt.Errorf("complete layout %s: %w", id, ErrNodeNotFound)
		}
		if n.complete {
			dirty := n.dirtyBelow
			children := n.children
			t.mu.RUnlock()
			if !dirty {
				return nil
			}
			t.setDirtyBelow(id, false)
			return t.completeChildren(id, children)
		}
		elem, version, proposed := n.elem, n.version, n.proposed
		t.mu.RUnlock()

		// The collaborator runs without the lock: it may block, and the
		// tree stays readable meanwhile.
		frame, placed, err := resolveLayout(elem, proposed)
		if err != nil {
			Logger().Warn("asyncdraw: layout unresolved",
				"node", id.String(), "name", elem.Name, "err", err)
			return &LayoutError{Node: id, Name: elem.Name, Err: err}
		}

		children, committed, err := t.commitLayout(id, version, elem, frame, placed)
		if err != nil {
			return err
		}
		if !committed {
			if attempt >= maxRelayoutAttempts {
				Logger().Warn("asyncdraw: layout unresolved",
					"node", id.String(), "name", elem.Name, "err", errElementChanged)
				return &LayoutError{Node: id, Name: elem.Name, Err: errElementChanged}
			}
			continue
		}

		Logger().Debug("asyncdraw: layout complete",
			"node", id.String(), "name", elem.Name,
			"frame", frame.String(), "children", len(children))
		return t.completeChildren(id, children)
	}
}

// commitLayout installs a computed layout if the node is unchanged since
// version was read. committed is false when the element was replaced in
// the meantime and the layout must be recomputed.
func (t *Tree) commitLayout(id NodeID, version uint64, elem Element, frame Rect, placed []Rect) (children []NodeID, committed bool, err error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	n, ok := t.lookup(id)
	if !ok {
		return nil, false, fmt.Errorf("complete layout %s: %w", id, ErrNodeNotFound)
	}
	if n.version != version {
		return nil, false, nil
	}

	old := n.children
	n.children = nil
	for _, c := range old {
		t.release(c)
	}

	children = make([]NodeID, len(elem.Children))
	for i, ce := range elem.Children {
		children[i] = t.alloc(ce, id, placed[i])
	}

	// alloc may have grown the arena.
	n, _ = t.lookup(id)
	n.frame = frame
	n.children = children
	n.complete = true
	n.dirtyBelow = false
	return children, true, nil
}

// completeChildren runs the gate on each child in order. Children
// destroyed concurrently are ignored. On failure the parent is marked so
// a later CompleteLayout on any ancestor retries the failed subtree.
func (t *Tree) completeChildren(parent NodeID, children []NodeID) error {
	for _, c := range children {
		err := t.CompleteLayout(c)
		if err == nil || errors.Is(err, ErrNodeNotFound) {
			continue
		}
		t.setDirtyBelow(parent, true)
		return err
	}
	return nil
}

func (t *Tree) setDirtyBelow(id NodeID, dirty bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if n, ok := t.lookup(id); ok {
		n.dirtyBelow = dirty
	}
}

// resolveLayout calls the element's layout collaborator and validates
// what it returns.
func resolveLayout(elem Element, proposed Rect) (Rect, []Rect, error) {
	var l Layout = fillLayout{}
	if elem.Layout != nil {
		l = elem.Layout
	}

	frame, placed, err := l.Layout(proposed, elem.Children)
	if err != nil {
		return Rect{}, nil, err
	}
	if !frame.Valid() {
		return Rect{}, nil, fmt.Errorf("invalid frame %s", frame)
	}
	if len(placed) != len(elem.Children) {
		return Rect{}, nil, fmt.Errorf("layout placed %d children, element has %d", len(placed), len(elem.Children))
	}
	for i, r := range placed {
		if !r.Valid() {
			return Rect{}, nil, fmt.Errorf("invalid bounds %s for child %d", r, i)
		}
	}
	return frame, placed, nil
}
