package asyncdraw

import (
	"context"
	"errors"
	"fmt"
	"image"
	"io"
	"math"
	"sync"
	"sync/atomic"

	"github.com/gogpu/asyncdraw/internal/worker"
)

// ErrDisplayClosed is reported by Redraw after Close.
var ErrDisplayClosed = errors.New("asyncdraw: display closed")

// Surface is a Canvas whose pixels can be read back once a pass is done.
// *gg.Context satisfies Surface.
type Surface interface {
	Canvas
	Image() image.Image
}

// gpuFlusher is implemented by surfaces that queue GPU work, like *gg.Context.
type gpuFlusher interface {
	FlushGPU() error
}

// SurfaceFactory creates a surface of the given size in device pixels.
type SurfaceFactory func(width, height int) Surface

// Result is the outcome of one display pass.
type Result struct {
	// Generation identifies the Redraw call that produced the result.
	Generation uint64

	// Image holds the rendered pixels. It is nil if the pass failed or
	// was cancelled.
	Image image.Image

	// Scale is the device scale the pass used.
	Scale float64

	// Stats describes the render; Stats.Cancelled is set when a newer
	// Redraw, the caller's context or Close superseded the pass.
	Stats RenderStats

	// Err is a layout or precondition failure.
	Err error
}

var (
	sharedPoolOnce sync.Once
	sharedPool     *worker.Pool
)

// defaultPool returns the process-wide pool shared by displays.
func defaultPool() *worker.Pool {
	sharedPoolOnce.Do(func() {
		sharedPool = worker.NewPool(0)
	})
	return sharedPool
}

// Display drives asynchronous redraws of one subtree.
//
// Each Redraw completes the subtree's layout and renders it on a
// background worker into a fresh surface. Passes are ordered by a
// generation counter: starting a new pass cancels every older one, which
// stops at its next node.
//
// Thread safety: Display is safe for concurrent use.
type Display struct {
	tree *Tree
	root NodeID
	opts displayOptions

	pool     *worker.Pool
	ownsPool bool

	gen    atomic.Uint64
	closed atomic.Bool

	// mu orders Redraw's inflight.Add against Close's inflight.Wait.
	mu       sync.Mutex
	inflight sync.WaitGroup
}

// NewDisplay creates a display for root.
func NewDisplay(tree *Tree, root NodeID, opts ...DisplayOption) *Display {
	options := defaultDisplayOptions()
	for _, opt := range opts {
		opt(&options)
	}

	d := &Display{
		tree: tree,
		root: root,
		opts: options,
	}
	if options.workers > 0 {
		d.pool = worker.NewPool(options.workers)
		d.ownsPool = true
	} else {
		d.pool = defaultPool()
	}
	return d
}

// Redraw starts a new pass and cancels older ones. The returned channel
// receives exactly one Result. Cancelling ctx cancels this pass.
func (d *Display) Redraw(ctx context.Context) <-chan Result {
	gen := d.gen.Add(1)
	out := make(chan Result, 1)

	d.mu.Lock()
	if d.closed.Load() {
		d.mu.Unlock()
		out <- Result{Generation: gen, Err: ErrDisplayClosed}
		return out
	}
	d.inflight.Add(1)
	d.mu.Unlock()

	isCancelled := Any(FromContext(ctx), func() bool {
		return d.gen.Load() != gen || d.closed.Load()
	})

	ok := d.pool.Submit(func() {
		defer d.inflight.Done()
		out <- d.pass(gen, isCancelled)
	})
	if !ok {
		d.inflight.Done()
		out <- Result{Generation: gen, Err: ErrDisplayClosed}
	}
	return out
}

// Cancel cancels the pass in flight, if any.
func (d *Display) Cancel() {
	d.gen.Add(1)
}

// Generation returns the generation of the latest Redraw.
func (d *Display) Generation() uint64 {
	return d.gen.Load()
}

// pass runs on a worker: layout, then render.
func (d *Display) pass(gen uint64, isCancelled CancelFunc) Result {
	res := Result{Generation: gen}
	if isCancelled() {
		res.Stats.Cancelled = true
		return res
	}

	if err := d.tree.CompleteLayout(d.root); err != nil {
		res.Err = err
		return res
	}

	// The scale is read once here and fixed for the whole pass.
	scale := d.opts.scale()
	res.Scale = scale
	if !validScale(scale) {
		res.Err = &PreconditionError{Node: d.root, Reason: "invalid scale from scale source"}
		return res
	}

	frame, ok := d.tree.Frame(d.root)
	if !ok {
		// Invalidated between layout and render.
		res.Stats.Cancelled = true
		return res
	}
	width := int(math.Ceil(frame.W * scale))
	height := int(math.Ceil(frame.H * scale))
	surface := d.opts.newSurface(max(width, 1), max(height, 1))
	if c, ok := surface.(io.Closer); ok {
		defer func() { _ = c.Close() }()
	}

	// The root paints at its frame origin; shift it to the surface origin.
	surface.Push()
	surface.Translate(-frame.X*scale, -frame.Y*scale)
	stats, err := d.tree.RenderWithStats(d.root, surface, scale, isCancelled)
	surface.Pop()

	res.Stats = stats
	if errors.Is(err, ErrPrecondition) {
		// The scale and surface were checked above, so the root was
		// invalidated or removed after its frame was read.
		res.Stats.Cancelled = true
		return res
	}
	if err != nil {
		res.Err = err
		return res
	}
	if stats.Cancelled {
		return res
	}
	if f, ok := surface.(gpuFlusher); ok {
		if err := f.FlushGPU(); err != nil {
			res.Err = fmt.Errorf("asyncdraw: flush surface: %w", err)
			return res
		}
	}
	res.Image = surface.Image()

	Logger().Info("asyncdraw: display pass finished",
		"generation", gen, "painted", stats.Painted, "skipped", stats.Skipped,
		"width", width, "height", height, "scale", scale)
	return res
}

// Close cancels in-flight passes and waits for them to finish. A private
// worker pool is shut down. Close is safe to call multiple times.
func (d *Display) Close() error {
	d.mu.Lock()
	if !d.closed.CompareAndSwap(false, true) {
		d.mu.Unlock()
		return nil
	}
	d.mu.Unlock()

	d.inflight.Wait()
	if d.ownsPool {
		d.pool.Close()
	}
	return nil
}
