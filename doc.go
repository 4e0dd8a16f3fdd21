// Package asyncdraw renders trees of display nodes off the UI goroutine.
//
// # Overview
//
// A [Tree] holds display nodes created from declarative [Element] values.
// Rendering a subtree takes two phases:
//
//  1. [Tree.CompleteLayout] resolves every node's frame through its [Layout]
//     collaborator and materializes the children the elements declare.
//     It may run on any goroutine and is idempotent.
//  2. [Tree.RenderAtScale] walks the subtree depth-first and calls each
//     node's [Painter] with a [Canvas] translated into the node's local
//     coordinate space. It polls a cancellation predicate before every
//     node, so a superseded render stops after at most one more node.
//
// # Quick Start
//
//	tree := asyncdraw.NewTree()
//	root := tree.NewRoot(asyncdraw.Element{
//	    Layout:  layout.Stack{Axis: layout.Vertical, Spacing: 8},
//	    Painter: paint.Fill{Color: color.White},
//	    Children: []asyncdraw.Element{
//	        {Size: asyncdraw.Size{H: 40}, Painter: paint.Fill{Color: color.Black}},
//	        {Flex: 1, Painter: paint.Text{Content: "hello"}},
//	    },
//	}, asyncdraw.R(0, 0, 320, 240))
//
//	if err := tree.CompleteLayout(root); err != nil {
//	    return err
//	}
//
//	dc := gg.NewContext(640, 480)
//	err := tree.RenderAtScale(root, dc, 2, asyncdraw.FromContext(ctx))
//
// # Coordinates and Scale
//
// Frames are in logical units, relative to the parent's frame origin. A
// render pass fixes one scale factor (device pixels per logical unit) at
// the node it starts from and hands it unchanged to every node, so a
// node at depth n sees scale composed with the n ancestor offsets. Use
// [Tree.DeviceTransform] to compute that transform without rendering.
//
// # Concurrency
//
// A Tree is safe for concurrent use. Layout is the only writer; renders
// are readers. Concurrent CompleteLayout calls on the same node are
// serialized. If the tree changes while a render is in flight, the
// render skips the subtrees that vanished or lost their layout instead
// of failing. A Canvas belongs to one render call at a time.
//
// [Display] packages both phases as an asynchronous pipeline: each
// Redraw runs on a background worker and cancels any older pass.
//
// # Errors
//
// Layout failures match [ErrLayoutUnresolved]; rendering a node whose
// layout is incomplete matches [ErrPrecondition]. Cancellation is not an
// error: the render returns nil.
package asyncdraw
