// Package canvas is a small drawing-primitive description shared by the
// raster and vector backends.
//
// A [Scene] is an ordered list of operations in logical units. Builders
// describe what to draw once; sinks decide how (pixels, SVG markup). Text is
// stored unescaped: escaping belongs to the serializer that needs it.
package canvas

import (
	"fmt"
	"image"
	"image/color"
)

// Anchor aligns a text run horizontally around its x coordinate.
type Anchor int

const (
	AnchorStart Anchor = iota
	AnchorMiddle
	AnchorEnd
)

// Family selects a typeface family.
type Family int

const (
	Sans Family = iota
	Monospace
)

// Font describes a text run's typeface.
type Font struct {
	Family Family
	Size   float64
	Bold   bool
}

// Op is a drawing operation.
type Op interface {
	isOp()
}

// Rect fills and/or strokes a rectangle. A zero-alpha color disables that part.
type Rect struct {
	X, Y, W, H  float64
	Radius      float64
	Fill        color.NRGBA
	Stroke      color.NRGBA
	StrokeWidth float64
}

// Text draws a single line with its baseline at Y.
type Text struct {
	X, Y    float64
	Content string
	Font    Font
	Anchor  Anchor
	Color   color.NRGBA
}

// Image draws Src scaled into the destination box.
// Pixelated selects nearest-neighbour sampling (QR modules must stay crisp).
type Image struct {
	X, Y, W, H float64
	Src        image.Image
	Pixelated  bool
}

// Clip restricts Ops to a rectangle.
type Clip struct {
	X, Y, W, H float64
	Ops        []Op
}

func (Rect) isOp()  {}
func (Text) isOp()  {}
func (Image) isOp() {}
func (Clip) isOp()  {}

// Scene is a complete drawing.
type Scene struct {
	Width, Height float64
	Background    color.NRGBA
	Ops           []Op
}

// New returns an empty scene of the given logical size.
func New(width, height float64, background color.NRGBA) *Scene {
	return &Scene{Width: width, Height: height, Background: background}
}

// Add appends operations in paint order.
func (s *Scene) Add(ops ...Op) {
	s.Ops = append(s.Ops, ops...)
}

// Walk visits every operation depth-first, including those nested in clips.
func (s *Scene) Walk(fn func(Op)) {
	walk(s.Ops, fn)
}

func walk(ops []Op, fn func(Op)) {
	for _, op := range ops {
		fn(op)
		if c, ok := op.(Clip); ok {
			walk(c.Ops, fn)
		}
	}
}

// Hex parses "#rrggbb" into an opaque color. It panics on malformed input and
// is meant for package-level palette constants.
func Hex(s string) color.NRGBA {
	var r, g, b uint8
	if _, err := fmt.Sscanf(s, "#%02x%02x%02x", &r, &g, &b); err != nil {
		panic(fmt.Sprintf("canvas: bad color %q", s))
	}
	return color.NRGBA{R: r, G: g, B: b, A: 0xff}
}

// HexString formats c as "#rrggbb".
func HexString(c color.NRGBA) string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

// Visible reports whether c paints anything.
func Visible(c color.NRGBA) bool {
	return c.A > 0
}
