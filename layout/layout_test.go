package layout

import (
	"errors"
	"testing"

	"github.com/gogpu/asyncdraw"
)

// sized returns n elements with the given preferred size.
func sized(n int, w, h float64) []asyncdraw.Element {
	out := make([]asyncdraw.Element, n)
	for i := range out {
		out[i] = asyncdraw.Element{Size: asyncdraw.Size{W: w, H: h}}
	}
	return out
}

type measured asyncdraw.Size

func (m measured) Paint(asyncdraw.Canvas, asyncdraw.Size, float64) {}
func (m measured) Measure(asyncdraw.Size) asyncdraw.Size         { return asyncdraw.Size(m) }

func checkPlaced(t *testing.T, got, want []asyncdraw.Rect) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("placed %d children, want %d: %v", len(got), len(want), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("child %d placed at %v, want %v", i, got[i], want[i])
		}
	}
}

func TestFill(t *testing.T) {
	proposed := asyncdraw.R(3, 4, 10, 20)
	frame, placed, err := Fill{}.Layout(proposed, sized(2, 0, 0))
	if err != nil {
		t.Fatal(err)
	}
	if frame != proposed {
		t.Errorf("frame = %v, want %v", frame, proposed)
	}
	checkPlaced(t, placed, []asyncdraw.Rect{asyncdraw.R(0, 0, 10, 20), asyncdraw.R(0, 0, 10, 20)})
}

func TestFixed(t *testing.T) {
	fixed := Fixed(asyncdraw.R(1, 1, 5, 5))
	frame, placed, err := fixed.Layout(asyncdraw.R(0, 0, 100, 100), sized(1, 0, 0))
	if err != nil {
		t.Fatal(err)
	}
	if frame != asyncdraw.R(1, 1, 5, 5) {
		t.Errorf("frame = %v, want the fixed rect", frame)
	}
	checkPlaced(t, placed, []asyncdraw.Rect{asyncdraw.R(0, 0, 5, 5)})

	if _, _, err := Fixed(asyncdraw.R(0, 0, -1, 1)).Layout(asyncdraw.Rect{}, nil); !errors.Is(err, ErrInvalidParam) {
		t.Errorf("negative fixed frame: error = %v, want ErrInvalidParam", err)
	}
}

func TestAbsolute(t *testing.T) {
	children := []asyncdraw.Element{
		{Frame: asyncdraw.R(1, 2, 3, 4)},
		{Frame: asyncdraw.R(-5, 0, 1, 1)},
	}
	_, placed, err := Absolute{}.Layout(asyncdraw.R(0, 0, 10, 10), children)
	if err != nil {
		t.Fatal(err)
	}
	checkPlaced(t, placed, []asyncdraw.Rect{asyncdraw.R(1, 2, 3, 4), asyncdraw.R(-5, 0, 1, 1)})
}

func TestOverlay(t *testing.T) {
	o := Overlay{Padding: Insets{Top: 1, Right: 2, Bottom: 3, Left: 4}}
	_, placed, err := o.Layout(asyncdraw.R(50, 50, 20, 10), sized(2, 0, 0))
	if err != nil {
		t.Fatal(err)
	}
	checkPlaced(t, placed, []asyncdraw.Rect{asyncdraw.R(4, 1, 14, 6), asyncdraw.R(4, 1, 14, 6)})

	if _, _, err := (Overlay{Padding: Uniform(-1)}).Layout(asyncdraw.Rect{}, nil); !errors.Is(err, ErrInvalidParam) {
		t.Errorf("negative padding: error = %v, want ErrInvalidParam", err)
	}
}

func TestStack(t *testing.T) {
	row := asyncdraw.R(0, 0, 100, 20)
	tests := []struct {
		name     string
		stack    Stack
		proposed asyncdraw.Rect
		children []asyncdraw.Element
		want     []asyncdraw.Rect
	}{
		{
			name:     "fixed sizes with spacing",
			stack:    Stack{Spacing: 5},
			proposed: row,
			children: sized(3, 10, 0),
			want:     []asyncdraw.Rect{asyncdraw.R(0, 0, 10, 20), asyncdraw.R(15, 0, 10, 20), asyncdraw.R(30, 0, 10, 20)},
		},
		{
			name:     "flex shares free space",
			stack:    Stack{},
			proposed: row,
			children: []asyncdraw.Element{
				{Size: asyncdraw.Size{W: 10}},
				{Flex: 1},
				{Flex: 3},
			},
			want: []asyncdraw.Rect{asyncdraw.R(0, 0, 10, 20), asyncdraw.R(10, 0, 22.5, 20), asyncdraw.R(32.5, 0, 67.5, 20)},
		},
		{
			name:     "justify center",
			stack:    Stack{Justify: JustifyCenter},
			proposed: row,
			children: sized(2, 10, 0),
			want:     []asyncdraw.Rect{asyncdraw.R(40, 0, 10, 20), asyncdraw.R(50, 0, 10, 20)},
		},
		{
			name:     "justify end",
			stack:    Stack{Justify: JustifyEnd},
			proposed: row,
			children: sized(1, 10, 0),
			want:     []asyncdraw.Rect{asyncdraw.R(90, 0, 10, 20)},
		},
		{
			name:     "space between",
			stack:    Stack{Justify: JustifySpaceBetween},
			proposed: row,
			children: sized(3, 10, 0),
			want:     []asyncdraw.Rect{asyncdraw.R(0, 0, 10, 20), asyncdraw.R(45, 0, 10, 20), asyncdraw.R(90, 0, 10, 20)},
		},
		{
			name:     "space around",
			stack:    Stack{Justify: JustifySpaceAround},
			proposed: row,
			children: sized(2, 10, 0),
			want:     []asyncdraw.Rect{asyncdraw.R(20, 0, 10, 20), asyncdraw.R(70, 0, 10, 20)},
		},
		{
			name:     "space evenly",
			stack:    Stack{Justify: JustifySpaceEvenly},
			proposed: row,
			children: sized(3, 10, 0),
			want:     []asyncdraw.Rect{asyncdraw.R(17.5, 0, 10, 20), asyncdraw.R(45, 0, 10, 20), asyncdraw.R(72.5, 0, 10, 20)},
		},
		{
			name:     "flex wins over justify",
			stack:    Stack{Justify: JustifyEnd},
			proposed: row,
			children: []asyncdraw.Element{{Size: asyncdraw.Size{W: 10}}, {Flex: 1}},
			want:     []asyncdraw.Rect{asyncdraw.R(0, 0, 10, 20), asyncdraw.R(10, 0, 90, 20)},
		},
		{
			name:     "align center",
			stack:    Stack{Align: AlignCenter},
			proposed: row,
			children: sized(1, 10, 6),
			want:     []asyncdraw.Rect{asyncdraw.R(0, 7, 10, 6)},
		},
		{
			name:     "align end",
			stack:    Stack{Align: AlignEnd},
			proposed: row,
			children: sized(1, 10, 6),
			want:     []asyncdraw.Rect{asyncdraw.R(0, 14, 10, 6)},
		},
		{
			name:     "align stretch",
			stack:    Stack{Align: AlignStretch},
			proposed: row,
			children: sized(1, 10, 6),
			want:     []asyncdraw.Rect{asyncdraw.R(0, 0, 10, 20)},
		},
		{
			name:     "cross size clamped",
			stack:    Stack{},
			proposed: row,
			children: sized(1, 10, 50),
			want:     []asyncdraw.Rect{asyncdraw.R(0, 0, 10, 20)},
		},
		{
			name:     "overflow shrinks proportionally",
			stack:    Stack{},
			proposed: row,
			children: []asyncdraw.Element{{Size: asyncdraw.Size{W: 90}}, {Size: asyncdraw.Size{W: 30}}},
			want:     []asyncdraw.Rect{asyncdraw.R(0, 0, 75, 20), asyncdraw.R(75, 0, 25, 20)},
		},
		{
			name:     "vertical with padding",
			stack:    Stack{Axis: Vertical, Spacing: 4, Padding: Uniform(2)},
			proposed: asyncdraw.R(5, 5, 20, 100),
			children: []asyncdraw.Element{{Size: asyncdraw.Size{H: 10}}, {Size: asyncdraw.Size{H: 20}}},
			want:     []asyncdraw.Rect{asyncdraw.R(2, 2, 16, 10), asyncdraw.R(2, 16, 16, 20)},
		},
		{
			name:     "measured content",
			stack:    Stack{},
			proposed: row,
			children: []asyncdraw.Element{{Painter: measured{W: 30, H: 8}}, {Painter: measured{W: 30, H: 8}, Size: asyncdraw.Size{W: 12}}},
			want:     []asyncdraw.Rect{asyncdraw.R(0, 0, 30, 8), asyncdraw.R(30, 0, 12, 8)},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			frame, placed, err := tt.stack.Layout(tt.proposed, tt.children)
			if err != nil {
				t.Fatalf("Layout() error = %v", err)
			}
			if frame != tt.proposed {
				t.Errorf("frame = %v, want %v", frame, tt.proposed)
			}
			checkPlaced(t, placed, tt.want)
		})
	}
}

func TestStack_Errors(t *testing.T) {
	tests := []struct {
		name  string
		stack Stack
		want  error
	}{
		{"strict overflow", Stack{Strict: true}, ErrOverflow},
		{"negative spacing", Stack{Spacing: -1}, ErrInvalidParam},
		{"negative padding", Stack{Padding: Insets{Left: -3}}, ErrInvalidParam},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := tt.stack.Layout(asyncdraw.R(0, 0, 100, 20), sized(2, 60, 0))
			if !errors.Is(err, tt.want) {
				t.Errorf("Layout() error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestStack_NoChildren(t *testing.T) {
	frame, placed, err := Stack{}.Layout(asyncdraw.R(1, 1, 2, 2), nil)
	if err != nil || frame != asyncdraw.R(1, 1, 2, 2) || len(placed) != 0 {
		t.Errorf("Layout(nil) = %v, %v, %v", frame, placed, err)
	}
}

func TestGrid(t *testing.T) {
	g := Grid{Columns: 2, Gap: 2}
	_, placed, err := g.Layout(asyncdraw.R(0, 0, 42, 20), sized(3, 0, 0))
	if err != nil {
		t.Fatal(err)
	}
	checkPlaced(t, placed, []asyncdraw.Rect{
		asyncdraw.R(0, 0, 20, 9),
		asyncdraw.R(22, 0, 20, 9),
		asyncdraw.R(0, 11, 20, 9),
	})
}

func TestGrid_Errors(t *testing.T) {
	tests := []struct {
		name string
		grid Grid
		want error
	}{
		{"no columns", Grid{}, ErrInvalidParam},
		{"negative gap", Grid{Columns: 1, Gap: -1}, ErrInvalidParam},
		{"gaps overflow", Grid{Columns: 4, Gap: 10}, ErrOverflow},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := tt.grid.Layout(asyncdraw.R(0, 0, 20, 20), sized(4, 0, 0))
			if !errors.Is(err, tt.want) {
				t.Errorf("Layout() error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestAxisString(t *testing.T) {
	if Horizontal.String() != "horizontal" || Vertical.String() != "vertical" || Axis(7).String() != "Axis(7)" {
		t.Error("unexpected Axis strings")
	}
}

// A failing policy surfaces through the tree as an unresolved layout.
func TestStack_InTree(t *testing.T) {
	tree := asyncdraw.NewTree()
	root := tree.NewRoot(asyncdraw.Element{
		Layout: Stack{Axis: Vertical, Strict: true},
		Children: []asyncdraw.Element{
			{Size: asyncdraw.Size{H: 30}},
			{Size: asyncdraw.Size{H: 30}},
		},
	}, asyncdraw.R(0, 0, 10, 50))

	err := tree.CompleteLayout(root)
	if !errors.Is(err, asyncdraw.ErrLayoutUnresolved) || !errors.Is(err, ErrOverflow) {
		t.Fatalf("CompleteLayout() error = %v, want unresolved overflow", err)
	}

	if err := tree.SetElement(root, asyncdraw.Element{
		Layout:   Stack{Axis: Vertical},
		Children: []asyncdraw.Element{{Size: asyncdraw.Size{H: 30}}, {Flex: 1}},
	}); err != nil {
		t.Fatal(err)
	}
	if err := tree.CompleteLayout(root); err != nil {
		t.Fatalf("CompleteLayout() error = %v", err)
	}
	kids := tree.Children(root)
	if f, _ := tree.Frame(kids[1]); f != asyncdraw.R(0, 30, 10, 20) {
		t.Errorf("flex child frame = %v, want (0,30 10x20)", f)
	}
}
