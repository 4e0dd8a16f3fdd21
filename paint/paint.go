// Package paint provides asyncdraw.Painter implementations that draw
// with gg.
//
// Painters draw into the node's local coordinate space: the canvas is
// already translated to the node's origin and scaled to device pixels,
// so a painter fills (0, 0, size.W, size.H). They need a canvas that
// implements Surface, which *gg.Context does; on other canvases they
// paint nothing.
//
// A painter never fails a render. Drawing errors are logged through
// asyncdraw.Logger and the painter returns.
package paint

import (
	"image/color"

	"github.com/gogpu/asyncdraw"
	"github.com/gogpu/gg"
	"github.com/gogpu/gg/text"
)

// Surface is the drawing API painters use. *gg.Context satisfies it.
type Surface interface {
	asyncdraw.Canvas

	SetColor(c color.Color)
	SetLineWidth(w float64)
	DrawRectangle(x, y, w, h float64)
	DrawRoundedRectangle(x, y, w, h, r float64)
	Fill() error
	Stroke() error

	SetFont(face text.Face)
	DrawString(s string, x, y float64)

	DrawImageEx(img *gg.ImageBuf, opts gg.DrawImageOptions)
}

var _ Surface = (*gg.Context)(nil)

// surfaceOf returns c as a Surface, logging when it is not one.
func surfaceOf(c asyncdraw.Canvas, painter string) (Surface, bool) {
	s, ok := c.(Surface)
	if !ok {
		asyncdraw.Logger().Debug("paint: canvas cannot draw", "painter", painter)
	}
	return s, ok
}

// stacked paints several painters in order.
type stacked []asyncdraw.Painter

// Stack returns a painter that runs painters in order on the same node,
// e.g. a background Fill under a Text. Nil painters are skipped.
// The result measures as the largest of the painters that are
// asyncdraw.Measurers.
func Stack(painters ...asyncdraw.Painter) asyncdraw.Painter {
	out := make(stacked, 0, len(painters))
	for _, p := range painters {
		if p != nil {
			out = append(out, p)
		}
	}
	return out
}

func (s stacked) Paint(c asyncdraw.Canvas, size asyncdraw.Size, scale float64) {
	for _, p := range s {
		p.Paint(c, size, scale)
	}
}

func (s stacked) Measure(avail asyncdraw.Size) asyncdraw.Size {
	var out asyncdraw.Size
	for _, p := range s {
		if m, ok := p.(asyncdraw.Measurer); ok {
			sz := m.Measure(avail)
			out.W = max(out.W, sz.W)
			out.H = max(out.H, sz.H)
		}
	}
	return out
}
