package asyncdraw

import (
	"fmt"
	"strconv"
	"sync"

	"golang.org/x/sync/singleflight"
)

// NodeID is a handle to a node in a Tree: an arena slot plus the slot's
// generation. Once a node is destroyed its slot may be reused, but the
// old handle never resolves again. The zero NodeID is invalid.
type NodeID struct {
	index uint32
	gen   uint32
}

// IsValid reports whether id was issued by a Tree. A valid id may still
// refer to a destroyed node.
func (id NodeID) IsValid() bool { return id.gen != 0 }

func (id NodeID) String() string {
	if !id.IsValid() {
		return "#invalid"
	}
	return fmt.Sprintf("#%d.%d", id.index, id.gen)
}

// flightKey identifies the node in the layout singleflight group.
func (id NodeID) flightKey() string {
	return strconv.FormatUint(uint64(id.index)<<32|uint64(id.gen), 36)
}

// node is one arena slot.
//
// children is copy-on-write: it is replaced, never modified in place, so
// a render pass may keep a slice it read under the lock.
type node struct {
	gen    uint32
	live   bool
	parent NodeID

	elem    Element
	version uint64 // bumped on every invalidation

	proposed Rect // bounds proposed by the parent's layout, or the root bounds
	frame    Rect // valid only while complete
	children []NodeID

	complete   bool // layout and children materialized
	dirtyBelow bool // some descendant needs layout
}

// Tree is an arena of display nodes.
//
// Each node exclusively owns its children. Layout mutates the tree through
// CompleteLayout; renders only read it. All methods are safe for
// concurrent use; a UI goroutine may invalidate or remove nodes while a
// render is in flight, in which case the render skips the affected
// subtrees.
type Tree struct {
	mu    sync.RWMutex
	nodes []node
	free  []uint32
	live  int

	flights singleflight.Group
}

// NewTree creates an empty tree.
func NewTree() *Tree {
	return &Tree{
		nodes: make([]node, 0, 64),
	}
}

// NewRoot creates a parentless node for elem. bounds is the rectangle
// proposed to the node's layout. The node starts with layout incomplete.
func (t *Tree) NewRoot(elem Element, bounds Rect) NodeID {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.alloc(elem, NodeID{}, bounds)
}

// alloc creates a slot. Callers hold the write lock. Pointers into
// t.nodes obtained before alloc are invalid afterwards.
func (t *Tree) alloc(elem Element, parent NodeID, proposed Rect) NodeID {
	var idx uint32
	if n := len(t.free); n > 0 {
		idx = t.free[n-1]
		t.free = t.free[:n-1]
	} else {
		idx = uint32(len(t.nodes)) //nolint:gosec // arena size is bounded by memory
		t.nodes = append(t.nodes, node{gen: 1})
	}
	slot := &t.nodes[idx]
	*slot = node{
		gen:      slot.gen,
		live:     true,
		parent:   parent,
		elem:     elem,
		proposed: proposed,
	}
	t.live++
	return NodeID{index: idx, gen: slot.gen}
}

// release destroys the node and its subtree. Callers hold the write lock.
func (t *Tree) release(id NodeID) {
	n, ok := t.lookup(id)
	if !ok {
		return
	}
	children := n.children
	n.live = false
	n.gen++
	if n.gen == 0 {
		n.gen = 1
	}
	n.elem = Element{}
	n.children = nil
	t.free = append(t.free, id.index)
	t.live--
	for _, c := range children {
		t.release(c)
	}
}

// lookup resolves id. Callers hold the lock.
func (t *Tree) lookup(id NodeID) (*node, bool) {
	if !id.IsValid() || int(id.index) >= len(t.nodes) {
		return nil, false
	}
	n := &t.nodes[id.index]
	if !n.live || n.gen != id.gen {
		return nil, false
	}
	return n, true
}

// Len returns the number of live nodes.
func (t *Tree) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.live
}

// Contains reports whether id refers to a live node.
func (t *Tree) Contains(id NodeID) bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	_, ok := t.lookup(id)
	return ok
}

// IsComplete reports whether the node's layout is complete.
func (t *Tree) IsComplete(id NodeID) bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	n, ok := t.lookup(id)
	return ok && n.complete
}

// Frame returns the node's computed frame in its parent's coordinate
// space. ok is false if the node is gone or its layout is incomplete.
func (t *Tree) Frame(id NodeID) (frame Rect, ok bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	n, found := t.lookup(id)
	if !found || !n.complete {
		return Rect{}, false
	}
	return n.frame, true
}

// Children returns a copy of the node's ordered child IDs.
func (t *Tree) Children(id NodeID) []NodeID {
	t.mu.RLock()
	defer t.mu.RUnlock()
	n, ok := t.lookup(id)
	if !ok || len(n.children) == 0 {
		return nil
	}
	out := make([]NodeID, len(n.children))
	copy(out, n.children)
	return out
}

// Parent returns the node's parent. ok is false for roots and unknown nodes.
func (t *Tree) Parent(id NodeID) (parent NodeID, ok bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	n, found := t.lookup(id)
	if !found || !n.parent.IsValid() {
		return NodeID{}, false
	}
	return n.parent, true
}

// Root returns the topmost ancestor of id, or id itself if it has no
// parent. ok is false if id does not resolve.
func (t *Tree) Root(id NodeID) (root NodeID, ok bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	n, found := t.lookup(id)
	if !found {
		return NodeID{}, false
	}
	for n.parent.IsValid() {
		id = n.parent
		if n, found = t.lookup(id); !found {
			return NodeID{}, false
		}
	}
	return id, true
}

// Element returns the element the node was created from.
func (t *Tree) Element(id NodeID) (Element, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	n, ok := t.lookup(id)
	if !ok {
		return Element{}, false
	}
	return n.elem, true
}

// Walk visits id and its descendants depth-first in paint order. The
// subtree is read in one snapshot; fn is called without the lock held
// and may call back into the tree. Returning false from fn skips that
// node's children.
func (t *Tree) Walk(id NodeID, fn func(id NodeID, depth int) bool) {
	type item struct {
		id       NodeID
		depth    int
		children []NodeID
	}
	var order []item

	t.mu.RLock()
	var collect func(id NodeID, depth int)
	collect = func(id NodeID, depth int) {
		n, ok := t.lookup(id)
		if !ok {
			return
		}
		order = append(order, item{id: id, depth: depth, children: n.children})
		for _, c := range n.children {
			collect(c, depth+1)
		}
	}
	collect(id, 0)
	t.mu.RUnlock()

	skipBelow := -1
	for _, it := range order {
		if skipBelow >= 0 {
			if it.depth > skipBelow {
				continue
			}
			skipBelow = -1
		}
		if !fn(it.id, it.depth) {
			skipBelow = it.depth
		}
	}
}

// Invalidate marks the node's layout incomplete. Its ancestors keep their
// layout but are marked so the next CompleteLayout on any of them
// reaches the node. The node's children are rebuilt by the next layout.
func (t *Tree) Invalidate(id NodeID) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	n, ok := t.lookup(id)
	if !ok {
		return fmt.Errorf("invalidate %s: %w", id, ErrNodeNotFound)
	}
	// A layout running for the node must not commit over the invalidation.
	n.version++
	n.complete = false
	t.markAncestors(n.parent)
	return nil
}

// SetElement replaces the node's element and invalidates it.
func (t *Tree) SetElement(id NodeID, elem Element) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	n, ok := t.lookup(id)
	if !ok {
		return fmt.Errorf("set element %s: %w", id, ErrNodeNotFound)
	}
	n.elem = elem
	n.version++
	n.complete = false
	t.markAncestors(n.parent)
	return nil
}

// SetBounds changes the bounds proposed to a root node and invalidates it.
// Non-root nodes receive their bounds from the parent's layout.
func (t *Tree) SetBounds(id NodeID, bounds Rect) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	n, ok := t.lookup(id)
	if !ok {
		return fmt.Errorf("set bounds %s: %w", id, ErrNodeNotFound)
	}
	if n.parent.IsValid() {
		return fmt.Errorf("set bounds %s: not a root node", id)
	}
	n.proposed = bounds
	n.version++
	n.complete = false
	return nil
}

// Remove destroys the node and its subtree and unlinks it from its parent.
// Renders in flight skip the removed subtree.
func (t *Tree) Remove(id NodeID) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	n, ok := t.lookup(id)
	if !ok {
		return fmt.Errorf("remove %s: %w", id, ErrNodeNotFound)
	}
	if p, ok := t.lookup(n.parent); ok {
		kept := make([]NodeID, 0, len(p.children))
		for _, c := range p.children {
			if c != id {
				kept = append(kept, c)
			}
		}
		p.children = kept
	}
	t.release(id)
	return nil
}

// markAncestors flags every ancestor starting at id as having a
// descendant that needs layout. Callers hold the write lock.
func (t *Tree) markAncestors(id NodeID) {
	for {
		n, ok := t.lookup(id)
		if !ok || n.dirtyBelow {
			return
		}
		n.dirtyBelow = true
		id = n.parent
	}
}

// nodeSnapshot is what a render pass needs from one node.
type nodeSnapshot struct {
	frame    Rect
	painter  Painter
	children []NodeID
}

// snapshot reads a complete node. ok is false if the node is gone or its
// layout is incomplete.
func (t *Tree) snapshot(id NodeID) (nodeSnapshot, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	n, found := t.lookup(id)
	if !found || !n.complete {
		return nodeSnapshot{}, false
	}
	return nodeSnapshot{
		frame:    n.frame,
		painter:  n.elem.Painter,
		children: n.children,
	}, true
}
