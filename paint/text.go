package paint

import (
	"image/color"
	"strings"
	"sync"

	"github.com/gogpu/asyncdraw"
	"github.com/gogpu/gg/text"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/text/unicode/norm"
)

// DefaultTextSize is the font size used when Text.Size is zero.
const DefaultTextSize = 14

// TextAlign positions each line horizontally within the node.
type TextAlign int

const (
	AlignLeft TextAlign = iota
	AlignCenter
	AlignRight
)

var (
	defaultFontOnce sync.Once
	defaultFont     *text.FontSource
	errDefaultFont  error
)

// DefaultFont returns the Go Regular font, parsed once per process.
func DefaultFont() (*text.FontSource, error) {
	defaultFontOnce.Do(func() {
		defaultFont, errDefaultFont = text.NewFontSource(goregular.TTF)
	})
	return defaultFont, errDefaultFont
}

// Text paints a block of text starting at the node's top-left corner.
//
// Content is normalized to NFC before it is measured or drawn, so
// composed and decomposed spellings of the same string render alike.
// Lines break at newlines and, unless Wrap is text.WrapNone, wherever
// the node's width requires.
//
// Text implements asyncdraw.Measurer, so layouts size text nodes to
// their content.
type Text struct {
	Content string
	Size    float64
	Color   color.Color
	Font    *text.FontSource // nil uses DefaultFont
	Wrap    text.WrapMode
	Align   TextAlign
}

// face resolves the font face to use.
func (t Text) face() (text.Face, error) {
	src := t.Font
	if src == nil {
		var err error
		if src, err = DefaultFont(); err != nil {
			return nil, err
		}
	}
	size := t.Size
	if size <= 0 {
		size = DefaultTextSize
	}
	return src.Face(size), nil
}

// lines splits the normalized content at newlines and wraps each
// paragraph to width. width <= 0 only breaks at newlines.
func (t Text) lines(face text.Face, width float64) []string {
	content := norm.NFC.String(t.Content)
	content = strings.ReplaceAll(content, "\r\n", "\n")
	content = strings.ReplaceAll(content, "\r", "\n")
	paragraphs := strings.Split(content, "\n")
	if width <= 0 || t.Wrap == text.WrapNone {
		return paragraphs
	}
	out := make([]string, 0, len(paragraphs))
	for _, para := range paragraphs {
		for _, w := range text.WrapText(para, face, width, t.Wrap) {
			out = append(out, w.Text)
		}
	}
	return out
}

// Measure implements asyncdraw.Measurer.
func (t Text) Measure(avail asyncdraw.Size) asyncdraw.Size {
	if t.Content == "" {
		return asyncdraw.Size{}
	}
	face, err := t.face()
	if err != nil {
		asyncdraw.Logger().Warn("paint: text font unavailable", "err", err)
		return asyncdraw.Size{}
	}
	lines := t.lines(face, avail.W)
	var w float64
	for _, l := range lines {
		w = max(w, face.Advance(l))
	}
	return asyncdraw.Size{W: w, H: float64(len(lines)) * face.Metrics().LineHeight()}
}

// Paint implements asyncdraw.Painter.
func (t Text) Paint(c asyncdraw.Canvas, size asyncdraw.Size, _ float64) {
	if t.Content == "" {
		return
	}
	s, ok := surfaceOf(c, "text")
	if !ok {
		return
	}
	face, err := t.face()
	if err != nil {
		asyncdraw.Logger().Warn("paint: text font unavailable", "err", err)
		return
	}

	col := t.Color
	if col == nil {
		col = color.Black
	}
	s.SetColor(col)
	s.SetFont(face)

	m := face.Metrics()
	y := m.Ascent
	for _, line := range t.lines(face, size.W) {
		var x float64
		switch t.Align {
		case AlignCenter:
			x = (size.W - face.Advance(line)) / 2
		case AlignRight:
			x = size.W - face.Advance(line)
		}
		s.DrawString(line, x, y)
		y += m.LineHeight()
	}
}
