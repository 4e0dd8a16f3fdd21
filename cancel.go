package asyncdraw

import (
	"context"
	"time"
)

// CancelFunc answers "should this render stop now?". It is polled before
// every node and never cached beyond the render call it was passed to.
type CancelFunc func() bool

// Never is a CancelFunc that never cancels.
func Never() bool { return false }

// FromContext returns a CancelFunc that reports true once ctx is done.
func FromContext(ctx context.Context) CancelFunc {
	return func() bool { return ctx.Err() != nil }
}

// AfterDeadline returns a CancelFunc that reports true once now() is at or
// past deadline. A nil now uses time.Now.
func AfterDeadline(deadline time.Time, now func() time.Time) CancelFunc {
	if now == nil {
		now = time.Now
	}
	return func() bool { return !now().Before(deadline) }
}

// Any returns a CancelFunc that reports true as soon as one of preds does.
// Nil entries are ignored.
func Any(preds ...CancelFunc) CancelFunc {
	return func() bool {
		for _, p := range preds {
			if p != nil && p() {
				return true
			}
		}
		return false
	}
}
