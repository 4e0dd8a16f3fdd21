package layout

import (
	"fmt"

	"github.com/gogpu/asyncdraw"
)

// Grid places children row by row into equally sized cells.
// Rows are as many as needed for all children.
type Grid struct {
	Columns int
	Gap     float64
	Padding Insets
}

// Layout implements asyncdraw.Layout.
func (g Grid) Layout(proposed asyncdraw.Rect, children []asyncdraw.Element) (asyncdraw.Rect, []asyncdraw.Rect, error) {
	if g.Columns <= 0 {
		return asyncdraw.Rect{}, nil, fmt.Errorf("%w: %d columns", ErrInvalidParam, g.Columns)
	}
	if g.Gap < 0 {
		return asyncdraw.Rect{}, nil, fmt.Errorf("%w: negative gap %g", ErrInvalidParam, g.Gap)
	}
	if err := g.Padding.validate(); err != nil {
		return asyncdraw.Rect{}, nil, err
	}
	n := len(children)
	if n == 0 {
		return proposed, nil, nil
	}

	content := g.Padding.Apply(proposed.Local())
	cols := g.Columns
	rows := (n + cols - 1) / cols
	cellW := (content.W - g.Gap*float64(cols-1)) / float64(cols)
	cellH := (content.H - g.Gap*float64(rows-1)) / float64(rows)
	if cellW < 0 || cellH < 0 {
		return asyncdraw.Rect{}, nil, fmt.Errorf("%w: %dx%d grid with gap %g in %s", ErrOverflow, cols, rows, g.Gap, content)
	}

	placed := make([]asyncdraw.Rect, n)
	for i := range placed {
		col, row := i%cols, i/cols
		placed[i] = asyncdraw.R(
			content.X+float64(col)*(cellW+g.Gap),
			content.Y+float64(row)*(cellH+g.Gap),
			cellW, cellH,
		)
	}
	return proposed, placed, nil
}
