// Package scenefile loads declarative scene documents into asyncdraw
// element trees.
//
// Scenes may be written in YAML, TOML or JSON; Load picks the decoder
// from the file extension. Decoding is strict: unknown fields and
// unknown layout or paint kinds are errors.
package scenefile

import (
	"bufio"
	"errors"
	"fmt"
	"image"
	"image/color"
	_ "image/jpeg" // register decoder
	_ "image/png"  // register decoder
	"io"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/gogpu/asyncdraw"
	"github.com/gogpu/asyncdraw/layout"
	"github.com/gogpu/asyncdraw/paint"
	"github.com/gogpu/gg"
	"github.com/gogpu/gg/text"
	"golang.org/x/image/colornames"
	_ "golang.org/x/image/webp" // register decoder
)

// Sentinel errors for scene decoding.
var (
	ErrUnknownFormat = errors.New("scenefile: unknown format")
	ErrUnknownKind   = errors.New("scenefile: unknown kind")
	ErrInvalidValue  = errors.New("scenefile: invalid value")
)

// Scene is a decoded, ready-to-build scene.
type Scene struct {
	Document

	// Root is the element tree built from Document.Root.
	Root asyncdraw.Element

	// BackgroundColor is the parsed Background; nil means transparent.
	BackgroundColor color.Color
}

// Bounds returns the rectangle proposed to the root element.
func (s *Scene) Bounds() asyncdraw.Rect {
	return asyncdraw.R(0, 0, s.Width, s.Height)
}

// DeviceScale returns the document's scale, or 1 when unset.
func (s *Scene) DeviceScale() float64 {
	if s.Scale > 0 {
		return s.Scale
	}
	return asyncdraw.IdentityScale
}

// Load reads and builds the scene at path.
func Load(path string) (*Scene, error) {
	format, err := FormatOf(path)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(path) //nolint:gosec // path is user-provided intentionally
	if err != nil {
		return nil, fmt.Errorf("scenefile: %w", err)
	}
	defer func() { _ = f.Close() }()

	s, err := Decode(bufio.NewReader(f), format, filepath.Dir(path))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	asyncdraw.Logger().Info("scenefile: scene loaded",
		"path", path, "format", format, "width", s.Width, "height", s.Height)
	return s, nil
}

// Decode reads a scene in format from r. Relative image paths are
// resolved against dir.
func Decode(r io.Reader, format Format, dir string) (*Scene, error) {
	newDecoder, err := decoderFor(format)
	if err != nil {
		return nil, err
	}
	var doc Document
	if err := newDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("scenefile: decode %s: %w", format, err)
	}
	return Build(doc, dir)
}

// Build converts a document into a Scene.
func Build(doc Document, dir string) (*Scene, error) {
	if doc.Width <= 0 || doc.Height <= 0 {
		return nil, fmt.Errorf("%w: scene size %gx%g", ErrInvalidValue, doc.Width, doc.Height)
	}
	if doc.Scale < 0 {
		return nil, fmt.Errorf("%w: scale %g", ErrInvalidValue, doc.Scale)
	}
	s := &Scene{Document: doc}
	if doc.Background != "" {
		c, err := ParseColor(doc.Background)
		if err != nil {
			return nil, fmt.Errorf("background: %w", err)
		}
		s.BackgroundColor = c
	}

	b := builder{dir: dir}
	root, err := b.node(doc.Root, "root")
	if err != nil {
		return nil, err
	}
	s.Root = root
	return s, nil
}

// builder converts document nodes into elements.
type builder struct {
	dir string
}

// node builds n; path names it in errors, e.g. "root.children[2]".
func (b builder) node(n Node, path string) (asyncdraw.Element, error) {
	e := asyncdraw.Element{Name: n.Name, Flex: n.Flex}
	if e.Name == "" {
		e.Name = path
	}
	if n.Flex < 0 {
		return e, fmt.Errorf("%s: %w: flex %g", path, ErrInvalidValue, n.Flex)
	}
	if n.Size != nil {
		e.Size = asyncdraw.Size{W: n.Size.W, H: n.Size.H}
	}
	if n.Frame != nil {
		e.Frame = n.Frame.rect()
	}

	if n.Layout != nil {
		l, err := buildLayout(*n.Layout)
		if err != nil {
			return e, fmt.Errorf("%s.layout: %w", path, err)
		}
		e.Layout = l
	}

	painters := make([]asyncdraw.Painter, 0, len(n.Paint))
	for i, ps := range n.Paint {
		p, err := b.painter(ps)
		if err != nil {
			return e, fmt.Errorf("%s.paint[%d]: %w", path, i, err)
		}
		painters = append(painters, p)
	}
	switch len(painters) {
	case 0:
	case 1:
		e.Painter = painters[0]
	default:
		e.Painter = paint.Stack(painters...)
	}

	for i, cn := range n.Children {
		child, err := b.node(cn, fmt.Sprintf("%s.children[%d]", path, i))
		if err != nil {
			return e, err
		}
		e.Children = append(e.Children, child)
	}
	return e, nil
}

func (r RectSpec) rect() asyncdraw.Rect {
	return asyncdraw.R(r.X, r.Y, r.W, r.H)
}

func buildLayout(ls LayoutSpec) (asyncdraw.Layout, error) {
	padding, err := insets(ls.Padding)
	if err != nil {
		return nil, err
	}
	switch strings.ToLower(ls.Kind) {
	case "fill":
		return layout.Fill{}, nil
	case "absolute":
		return layout.Absolute{}, nil
	case "fixed":
		if ls.Frame == nil {
			return nil, fmt.Errorf("%w: fixed layout needs a frame", ErrInvalidValue)
		}
		return layout.Fixed(ls.Frame.rect()), nil
	case "overlay":
		return layout.Overlay{Padding: padding}, nil
	case "grid":
		return layout.Grid{Columns: ls.Columns, Gap: ls.Gap, Padding: padding}, nil
	case "stack":
		s := layout.Stack{Spacing: ls.Spacing, Padding: padding, Strict: ls.Strict}
		if s.Axis, err = lookup("axis", ls.Axis, axes); err != nil {
			return nil, err
		}
		if s.Align, err = lookup("align", ls.Align, aligns); err != nil {
			return nil, err
		}
		if s.Justify, err = lookup("justify", ls.Justify, justifies); err != nil {
			return nil, err
		}
		return s, nil
	default:
		return nil, fmt.Errorf("%w: layout %q", ErrUnknownKind, ls.Kind)
	}
}

var (
	axes = map[string]layout.Axis{
		"":           layout.Horizontal,
		"horizontal": layout.Horizontal,
		"vertical":   layout.Vertical,
	}
	aligns = map[string]layout.Align{
		"":        layout.AlignStart,
		"start":   layout.AlignStart,
		"center":  layout.AlignCenter,
		"end":     layout.AlignEnd,
		"stretch": layout.AlignStretch,
	}
	justifies = map[string]layout.Justify{
		"":              layout.JustifyStart,
		"start":         layout.JustifyStart,
		"center":        layout.JustifyCenter,
		"end":           layout.JustifyEnd,
		"space-between": layout.JustifySpaceBetween,
		"space-around":  layout.JustifySpaceAround,
		"space-evenly":  layout.JustifySpaceEvenly,
	}
	textAligns = map[string]paint.TextAlign{
		"":       paint.AlignLeft,
		"left":   paint.AlignLeft,
		"center": paint.AlignCenter,
		"right":  paint.AlignRight,
	}
	wraps = map[string]text.WrapMode{
		"":          text.WrapWordChar,
		"word-char": text.WrapWordChar,
		"word":      text.WrapWord,
		"char":      text.WrapChar,
		"none":      text.WrapNone,
	}
	imageModes = map[string]paint.ImageMode{
		"":        paint.ImageStretch,
		"stretch": paint.ImageStretch,
		"fit":     paint.ImageFit,
		"fill":    paint.ImageFill,
	}
)

func lookup[T any](field, value string, table map[string]T) (T, error) {
	v, ok := table[strings.ToLower(value)]
	if !ok {
		return v, fmt.Errorf("%w: %s %q", ErrInvalidValue, field, value)
	}
	return v, nil
}

// insets expands CSS-style shorthand: 1, 2 or 4 values.
func insets(v []float64) (layout.Insets, error) {
	switch len(v) {
	case 0:
		return layout.Insets{}, nil
	case 1:
		return layout.Uniform(v[0]), nil
	case 2:
		return layout.Insets{Top: v[0], Right: v[1], Bottom: v[0], Left: v[1]}, nil
	case 4:
		return layout.Insets{Top: v[0], Right: v[1], Bottom: v[2], Left: v[3]}, nil
	default:
		return layout.Insets{}, fmt.Errorf("%w: padding needs 1, 2 or 4 values, got %d", ErrInvalidValue, len(v))
	}
}

func (b builder) painter(ps PaintSpec) (asyncdraw.Painter, error) {
	var col color.Color
	if ps.Color != "" {
		c, err := ParseColor(ps.Color)
		if err != nil {
			return nil, err
		}
		col = c
	}

	switch strings.ToLower(ps.Kind) {
	case "fill":
		if col == nil {
			return nil, fmt.Errorf("%w: fill needs a color", ErrInvalidValue)
		}
		return paint.Fill{Color: col, Radius: ps.Radius}, nil
	case "border":
		if col == nil || ps.Width <= 0 {
			return nil, fmt.Errorf("%w: border needs a color and a positive width", ErrInvalidValue)
		}
		return paint.Border{Color: col, Width: ps.Width, Radius: ps.Radius}, nil
	case "text":
		align, err := lookup("align", ps.Align, textAligns)
		if err != nil {
			return nil, err
		}
		wrap, err := lookup("wrap", ps.Wrap, wraps)
		if err != nil {
			return nil, err
		}
		return paint.Text{Content: ps.Text, Size: ps.Size, Color: col, Align: align, Wrap: wrap}, nil
	case "image":
		mode, err := lookup("mode", ps.Mode, imageModes)
		if err != nil {
			return nil, err
		}
		img, err := b.loadImage(ps.Image)
		if err != nil {
			return nil, err
		}
		return paint.Image{Source: img, Mode: mode}, nil
	default:
		return nil, fmt.Errorf("%w: paint %q", ErrUnknownKind, ps.Kind)
	}
}

func (b builder) loadImage(name string) (image.Image, error) {
	if name == "" {
		return nil, fmt.Errorf("%w: image needs a path", ErrInvalidValue)
	}
	path := name
	if !filepath.IsAbs(path) {
		path = filepath.Join(b.dir, path)
	}
	f, err := os.Open(path) //nolint:gosec // path comes from the scene author
	if err != nil {
		return nil, fmt.Errorf("scenefile: %w", err)
	}
	defer func() { _ = f.Close() }()

	img, _, err := image.Decode(bufio.NewReader(f))
	if err != nil {
		return nil, fmt.Errorf("scenefile: decode image %s: %w", name, err)
	}
	return img, nil
}

// ParseColor parses "#rgb", "#rgba", "#rrggbb", "#rrggbbaa" or an SVG
// color name such as "steelblue". "transparent" is fully transparent.
func ParseColor(s string) (color.Color, error) {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "#") {
		hex := s[1:]
		switch len(hex) {
		case 3, 4, 6, 8:
		default:
			return nil, fmt.Errorf("%w: color %q", ErrInvalidValue, s)
		}
		for _, r := range hex {
			if !strings.ContainsRune("0123456789abcdefABCDEF", r) {
				return nil, fmt.Errorf("%w: color %q", ErrInvalidValue, s)
			}
		}
		c := gg.Hex(hex)
		return color.NRGBA{R: channel(c.R), G: channel(c.G), B: channel(c.B), A: channel(c.A)}, nil
	}
	name := strings.ToLower(s)
	if name == "transparent" {
		return color.Transparent, nil
	}
	if c, ok := colornames.Map[name]; ok {
		return c, nil
	}
	return nil, fmt.Errorf("%w: color %q", ErrInvalidValue, s)
}

func channel(v float64) uint8 {
	return uint8(math.Round(min(max(v, 0), 1) * 255))
}
