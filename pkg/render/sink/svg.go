package sink

import (
	"bytes"
	"encoding/base64"
	"encoding/xml"
	"fmt"
	"strconv"
	"strings"

	"github.com/disintegration/imaging"

	"github.com/matzehuels/eventpass/pkg/fonts"
	"github.com/matzehuels/eventpass/pkg/render/canvas"
)

// SVGOption configures SVG rendering.
type SVGOption func(*svgRenderer)

type svgRenderer struct {
	embedFonts bool
	buf        bytes.Buffer
	clips      int
}

// WithEmbeddedFonts inlines the bundled fonts as @font-face rules so the SVG
// renders with the same glyphs as the PNG on any viewer.
func WithEmbeddedFonts() SVGOption { return func(r *svgRenderer) { r.embedFonts = true } }

// RenderSVG serializes a scene as a standalone SVG document.
// All text content and attribute values pass through [EscapeXML].
func RenderSVG(s *canvas.Scene, opts ...SVGOption) ([]byte, error) {
	r := &svgRenderer{}
	for _, opt := range opts {
		opt(r)
	}

	w, h := num(s.Width), num(s.Height)
	fmt.Fprintf(&r.buf, `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %s %s" width="%s" height="%s">`+"\n", w, h, w, h)
	if r.embedFonts {
		r.renderFontFaces()
	}
	fmt.Fprintf(&r.buf, `  <rect x="0" y="0" width="%s" height="%s" fill="%s"/>`+"\n", w, h, canvas.HexString(s.Background))

	if err := r.renderOps(s.Ops, "  "); err != nil {
		return nil, err
	}
	r.buf.WriteString("</svg>\n")
	return r.buf.Bytes(), nil
}

func (r *svgRenderer) renderFontFaces() {
	r.buf.WriteString("  <defs><style>\n")
	for _, f := range fonts.EmbeddedFaces() {
		weight := "normal"
		if f.Bold {
			weight = "bold"
		}
		fmt.Fprintf(&r.buf, "    @font-face { font-family: '%s'; font-weight: %s; src: url(data:font/ttf;base64,%s) format('truetype'); }\n",
			EscapeXML(f.Family), weight, f.Base64)
	}
	r.buf.WriteString("  </style></defs>\n")
}

func (r *svgRenderer) renderOps(ops []canvas.Op, indent string) error {
	for _, op := range ops {
		switch op := op.(type) {
		case canvas.Rect:
			r.renderRect(op, indent)
		case canvas.Text:
			r.renderText(op, indent)
		case canvas.Image:
			if err := r.renderImage(op, indent); err != nil {
				return err
			}
		case canvas.Clip:
			r.clips++
			id := fmt.Sprintf("clip-%d", r.clips)
			fmt.Fprintf(&r.buf, `%s<clipPath id="%s"><rect x="%s" y="%s" width="%s" height="%s"/></clipPath>`+"\n",
				indent, id, num(op.X), num(op.Y), num(op.W), num(op.H))
			fmt.Fprintf(&r.buf, `%s<g clip-path="url(#%s)">`+"\n", indent, id)
			if err := r.renderOps(op.Ops, indent+"  "); err != nil {
				return err
			}
			fmt.Fprintf(&r.buf, "%s</g>\n", indent)
		default:
			return fmt.Errorf("svg: unsupported op %T", op)
		}
	}
	return nil
}

func (r *svgRenderer) renderRect(op canvas.Rect, indent string) {
	fill, stroke := "none", "none"
	if canvas.Visible(op.Fill) {
		fill = canvas.HexString(op.Fill)
	}
	fmt.Fprintf(&r.buf, `%s<rect x="%s" y="%s" width="%s" height="%s"`, indent, num(op.X), num(op.Y), num(op.W), num(op.H))
	if op.Radius > 0 {
		fmt.Fprintf(&r.buf, ` rx="%s"`, num(op.Radius))
	}
	if canvas.Visible(op.Stroke) && op.StrokeWidth > 0 {
		stroke = canvas.HexString(op.Stroke)
		fmt.Fprintf(&r.buf, ` stroke-width="%s"`, num(op.StrokeWidth))
	}
	fmt.Fprintf(&r.buf, ` fill="%s" stroke="%s"/>`+"\n", fill, stroke)
}

func (r *svgRenderer) renderText(op canvas.Text, indent string) {
	family := fonts.SansFamily
	if op.Font.Family == canvas.Monospace {
		family = fonts.MonoFamily
	}
	weight := "normal"
	if op.Font.Bold {
		weight = "bold"
	}
	fmt.Fprintf(&r.buf, `%s<text x="%s" y="%s" font-family="%s" font-size="%s" font-weight="%s" text-anchor="%s" fill="%s" xml:space="preserve">%s</text>`+"\n",
		indent, num(op.X), num(op.Y), EscapeXML(family), num(op.Font.Size), weight,
		anchorName(op.Anchor), canvas.HexString(op.Color), EscapeXML(op.Content))
}

func (r *svgRenderer) renderImage(op canvas.Image, indent string) error {
	if op.Src == nil {
		return nil
	}
	var png bytes.Buffer
	if err := imaging.Encode(&png, op.Src, imaging.PNG); err != nil {
		return fmt.Errorf("svg: encode image: %w", err)
	}
	style := ""
	if op.Pixelated {
		style = ` style="image-rendering:pixelated"`
	}
	fmt.Fprintf(&r.buf, `%s<image x="%s" y="%s" width="%s" height="%s" preserveAspectRatio="none"%s href="data:image/png;base64,%s"/>`+"\n",
		indent, num(op.X), num(op.Y), num(op.W), num(op.H), style, base64.StdEncoding.EncodeToString(png.Bytes()))
	return nil
}

func anchorName(a canvas.Anchor) string {
	switch a {
	case canvas.AnchorMiddle:
		return "middle"
	case canvas.AnchorEnd:
		return "end"
	default:
		return "start"
	}
}

// num formats a coordinate with the shortest exact representation.
func num(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// EscapeXML escapes text for use in SVG element content and attribute values.
func EscapeXML(s string) string {
	var b strings.Builder
	_ = xml.EscapeText(&b, []byte(s))
	return b.String()
}
