package asyncdraw

import (
	"github.com/gogpu/gg"
)

// DisplayOption configures a Display during creation.
//
// Example:
//
//	// Render at the identity scale on the shared worker pool
//	d := asyncdraw.NewDisplay(tree, root)
//
//	// Track the monitor's scale and use a private pool
//	d := asyncdraw.NewDisplay(tree, root,
//	    asyncdraw.WithScaleSource(monitor.Scale),
//	    asyncdraw.WithWorkers(2))
type DisplayOption func(*displayOptions)

// displayOptions holds optional configuration for Display creation.
type displayOptions struct {
	scale      ScaleSource
	newSurface SurfaceFactory
	workers    int // 0 means the shared pool
}

// defaultDisplayOptions returns the default display options.
func defaultDisplayOptions() displayOptions {
	return displayOptions{
		scale:      FixedScale(IdentityScale),
		newSurface: newGGSurface,
	}
}

// WithScale fixes the device scale used by every pass.
func WithScale(scale float64) DisplayOption {
	return func(o *displayOptions) {
		o.scale = FixedScale(scale)
	}
}

// WithScaleSource reads the device scale from src at the start of every
// pass. A nil src keeps the current setting.
func WithScaleSource(src ScaleSource) DisplayOption {
	return func(o *displayOptions) {
		if src != nil {
			o.scale = src
		}
	}
}

// WithSurfaceFactory sets how a pass creates the surface it draws into.
// The default creates a *gg.Context of the pass's pixel size.
func WithSurfaceFactory(f SurfaceFactory) DisplayOption {
	return func(o *displayOptions) {
		if f != nil {
			o.newSurface = f
		}
	}
}

// WithWorkers gives the display its own pool of n background workers,
// closed with the display. By default displays share one pool sized to
// GOMAXPROCS.
func WithWorkers(n int) DisplayOption {
	return func(o *displayOptions) {
		o.workers = n
	}
}

// newGGSurface is the default SurfaceFactory.
func newGGSurface(width, height int) Surface {
	return gg.NewContext(width, height)
}
