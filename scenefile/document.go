package scenefile

// Document is the decoded form of a scene file.
//
// A minimal YAML scene:
//
//	width: 320
//	height: 240
//	scale: 2
//	background: "#ffffff"
//	root:
//	  layout: {kind: stack, axis: vertical, spacing: 8, padding: [16]}
//	  children:
//	    - size: {h: 40}
//	      paint: [{kind: fill, color: "#336699", radius: 6}]
//	    - flex: 1
//	      paint: [{kind: text, text: "hello", size: 18}]
type Document struct {
	Width      float64 `json:"width" yaml:"width" toml:"width"`
	Height     float64 `json:"height" yaml:"height" toml:"height"`
	Scale      float64 `json:"scale,omitempty" yaml:"scale,omitempty" toml:"scale,omitempty"`
	Background string  `json:"background,omitempty" yaml:"background,omitempty" toml:"background,omitempty"`
	Root       Node    `json:"root" yaml:"root" toml:"root"`
}

// Node declares one element.
type Node struct {
	Name     string      `json:"name,omitempty" yaml:"name,omitempty" toml:"name,omitempty"`
	Layout   *LayoutSpec `json:"layout,omitempty" yaml:"layout,omitempty" toml:"layout,omitempty"`
	Size     *SizeSpec   `json:"size,omitempty" yaml:"size,omitempty" toml:"size,omitempty"`
	Flex     float64     `json:"flex,omitempty" yaml:"flex,omitempty" toml:"flex,omitempty"`
	Frame    *RectSpec   `json:"frame,omitempty" yaml:"frame,omitempty" toml:"frame,omitempty"`
	Paint    []PaintSpec `json:"paint,omitempty" yaml:"paint,omitempty" toml:"paint,omitempty"`
	Children []Node      `json:"children,omitempty" yaml:"children,omitempty" toml:"children,omitempty"`
}

// SizeSpec is a preferred size. Omitted components are flexible.
type SizeSpec struct {
	W float64 `json:"w,omitempty" yaml:"w,omitempty" toml:"w,omitempty"`
	H float64 `json:"h,omitempty" yaml:"h,omitempty" toml:"h,omitempty"`
}

// RectSpec is a rectangle in the parent's coordinate space.
type RectSpec struct {
	X float64 `json:"x" yaml:"x" toml:"x"`
	Y float64 `json:"y" yaml:"y" toml:"y"`
	W float64 `json:"w" yaml:"w" toml:"w"`
	H float64 `json:"h" yaml:"h" toml:"h"`
}

// LayoutSpec selects and configures a layout policy.
//
// Kind is one of fill, fixed, absolute, overlay, stack or grid. Padding
// takes one value (all edges), two (vertical, horizontal) or four (top,
// right, bottom, left).
type LayoutSpec struct {
	Kind    string    `json:"kind" yaml:"kind" toml:"kind"`
	Axis    string    `json:"axis,omitempty" yaml:"axis,omitempty" toml:"axis,omitempty"`
	Spacing float64   `json:"spacing,omitempty" yaml:"spacing,omitempty" toml:"spacing,omitempty"`
	Padding []float64 `json:"padding,omitempty" yaml:"padding,omitempty" toml:"padding,omitempty"`
	Align   string    `json:"align,omitempty" yaml:"align,omitempty" toml:"align,omitempty"`
	Justify string    `json:"justify,omitempty" yaml:"justify,omitempty" toml:"justify,omitempty"`
	Strict  bool      `json:"strict,omitempty" yaml:"strict,omitempty" toml:"strict,omitempty"`
	Columns int       `json:"columns,omitempty" yaml:"columns,omitempty" toml:"columns,omitempty"`
	Gap     float64   `json:"gap,omitempty" yaml:"gap,omitempty" toml:"gap,omitempty"`
	Frame   *RectSpec `json:"frame,omitempty" yaml:"frame,omitempty" toml:"frame,omitempty"`
}

// PaintSpec selects and configures a painter.
//
// Kind is one of fill, border, text or image. Image paths are relative
// to the scene file.
type PaintSpec struct {
	Kind   string  `json:"kind" yaml:"kind" toml:"kind"`
	Color  string  `json:"color,omitempty" yaml:"color,omitempty" toml:"color,omitempty"`
	Radius float64 `json:"radius,omitempty" yaml:"radius,omitempty" toml:"radius,omitempty"`
	Width  float64 `json:"width,omitempty" yaml:"width,omitempty" toml:"width,omitempty"`
	Text   string  `json:"text,omitempty" yaml:"text,omitempty" toml:"text,omitempty"`
	Size   float64 `json:"size,omitempty" yaml:"size,omitempty" toml:"size,omitempty"`
	Align  string  `json:"align,omitempty" yaml:"align,omitempty" toml:"align,omitempty"`
	Wrap   string  `json:"wrap,omitempty" yaml:"wrap,omitempty" toml:"wrap,omitempty"`
	Image  string  `json:"image,omitempty" yaml:"image,omitempty" toml:"image,omitempty"`
	Mode   string  `json:"mode,omitempty" yaml:"mode,omitempty" toml:"mode,omitempty"`
}
