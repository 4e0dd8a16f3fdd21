package layout

import (
	"fmt"

	"github.com/gogpu/asyncdraw"
)

// Axis is the direction a Stack lays its children out in.
type Axis int

const (
	// Horizontal places children left to right.
	Horizontal Axis = iota
	// Vertical places children top to bottom.
	Vertical
)

func (a Axis) String() string {
	switch a {
	case Horizontal:
		return "horizontal"
	case Vertical:
		return "vertical"
	default:
		return fmt.Sprintf("Axis(%d)", int(a))
	}
}

// Align positions children on the cross axis.
type Align int

const (
	AlignStart Align = iota
	AlignCenter
	AlignEnd
	// AlignStretch gives every child the full cross size.
	AlignStretch
)

// Justify distributes free space on the main axis once flexible children
// have taken their share.
type Justify int

const (
	JustifyStart Justify = iota
	JustifyCenter
	JustifyEnd
	JustifySpaceBetween
	JustifySpaceAround
	JustifySpaceEvenly
)

// Stack lays children out in a single line along Axis.
//
// Each child starts at its preferred main size (asyncdraw.Element.PreferredSize).
// Remaining space goes to children with Flex > 0 in proportion to Flex,
// and what is still left is distributed by Justify. When the preferred
// sizes overflow, children shrink in proportion to their preferred size,
// unless Strict is set, in which case the layout fails with ErrOverflow.
//
// On the cross axis a child with no preferred cross size takes the full
// cross size; others are positioned by Align.
type Stack struct {
	Axis    Axis
	Spacing float64
	Padding Insets
	Align   Align
	Justify Justify
	Strict  bool
}

// Layout implements asyncdraw.Layout.
func (s Stack) Layout(proposed asyncdraw.Rect, children []asyncdraw.Element) (asyncdraw.Rect, []asyncdraw.Rect, error) {
	if s.Spacing < 0 {
		return asyncdraw.Rect{}, nil, fmt.Errorf("%w: negative spacing %g", ErrInvalidParam, s.Spacing)
	}
	if err := s.Padding.validate(); err != nil {
		return asyncdraw.Rect{}, nil, err
	}
	n := len(children)
	if n == 0 {
		return proposed, nil, nil
	}

	content := s.Padding.Apply(proposed.Local())
	avail := content.Size()
	mainAvail, crossAvail := s.split(avail)

	mains := make([]float64, n)
	crosses := make([]float64, n)
	var totalBase, totalFlex float64
	for i, c := range children {
		mains[i], crosses[i] = s.split(c.PreferredSize(avail))
		totalBase += mains[i]
		if c.Flex > 0 {
			totalFlex += c.Flex
		}
	}

	free := mainAvail - s.Spacing*float64(n-1) - totalBase
	switch {
	case free > 0 && totalFlex > 0:
		for i, c := range children {
			if c.Flex > 0 {
				mains[i] += free * c.Flex / totalFlex
			}
		}
		free = 0
	case free < 0:
		if s.Strict {
			return asyncdraw.Rect{}, nil, fmt.Errorf("%w: %s stack needs %g more units", ErrOverflow, s.Axis, -free)
		}
		if totalBase > 0 {
			shrink := min(-free, totalBase)
			for i := range mains {
				mains[i] -= shrink * mains[i] / totalBase
			}
		}
		free = 0
	}

	offset, gap := s.distribute(free, n)
	placed := make([]asyncdraw.Rect, n)
	pos := offset
	for i := range children {
		cross, crossPos := s.alignCross(crosses[i], crossAvail)
		placed[i] = s.join(content, pos, crossPos, mains[i], cross)
		pos += mains[i] + s.Spacing + gap
	}
	return proposed, placed, nil
}

// distribute returns the leading offset and the extra gap between
// children for free main-axis space.
func (s Stack) distribute(free float64, n int) (offset, gap float64) {
	if free <= 0 {
		return 0, 0
	}
	switch s.Justify {
	case JustifyCenter:
		return free / 2, 0
	case JustifyEnd:
		return free, 0
	case JustifySpaceBetween:
		if n == 1 {
			return 0, 0
		}
		return 0, free / float64(n-1)
	case JustifySpaceAround:
		gap = free / float64(n)
		return gap / 2, gap
	case JustifySpaceEvenly:
		gap = free / float64(n+1)
		return gap, gap
	default:
		return 0, 0
	}
}

// alignCross returns a child's cross size and position.
func (s Stack) alignCross(pref, avail float64) (size, pos float64) {
	if pref <= 0 || s.Align == AlignStretch {
		return avail, 0
	}
	size = min(pref, avail)
	switch s.Align {
	case AlignCenter:
		return size, (avail - size) / 2
	case AlignEnd:
		return size, avail - size
	default:
		return size, 0
	}
}

// split returns the main and cross components of sz.
func (s Stack) split(sz asyncdraw.Size) (main, cross float64) {
	if s.Axis == Vertical {
		return sz.H, sz.W
	}
	return sz.W, sz.H
}

// join builds a rectangle inside content from main/cross coordinates.
func (s Stack) join(content asyncdraw.Rect, mainPos, crossPos, main, cross float64) asyncdraw.Rect {
	if s.Axis == Vertical {
		return asyncdraw.R(content.X+crossPos, content.Y+mainPos, cross, main)
	}
	return asyncdraw.R(content.X+mainPos, content.Y+crossPos, main, cross)
}
