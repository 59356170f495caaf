package sink

import (
	"bytes"
	"fmt"
	"image"
	"math"

	"github.com/disintegration/imaging"
	"github.com/fogleman/gg"
	"golang.org/x/image/font"

	"github.com/matzehuels/eventpass/pkg/fonts"
	"github.com/matzehuels/eventpass/pkg/render/canvas"
)

// PNGOption configures raster rendering.
type PNGOption func(*pngRenderer)

type pngRenderer struct {
	scale float64
	dc    *gg.Context
	faces map[faceKey]font.Face
}

type faceKey struct {
	style fonts.Style
	size  float64
}

// WithScale sets the raster multiplier (default 1). Every coordinate, stroke
// width and font size is multiplied by it, so text stays sharp.
func WithScale(s int) PNGOption {
	return func(r *pngRenderer) { r.scale = float64(max(s, 1)) }
}

// Rasterize paints a scene into a new image.
func Rasterize(s *canvas.Scene, opts ...PNGOption) (image.Image, error) {
	r := &pngRenderer{scale: 1, faces: make(map[faceKey]font.Face)}
	for _, opt := range opts {
		opt(r)
	}
	defer r.closeFaces()

	w := int(math.Round(s.Width * r.scale))
	h := int(math.Round(s.Height * r.scale))
	if w <= 0 || h <= 0 {
		return nil, fmt.Errorf("png: empty canvas %dx%d", w, h)
	}

	r.dc = gg.NewContext(w, h)
	r.dc.SetColor(s.Background)
	r.dc.Clear()

	if err := r.paint(s.Ops); err != nil {
		return nil, err
	}
	return r.dc.Image(), nil
}

// RenderPNG rasterizes a scene and encodes it as PNG.
func RenderPNG(s *canvas.Scene, opts ...PNGOption) ([]byte, error) {
	img, err := Rasterize(s, opts...)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.PNG); err != nil {
		return nil, fmt.Errorf("png: encode: %w", err)
	}
	return buf.Bytes(), nil
}

func (r *pngRenderer) paint(ops []canvas.Op) error {
	dc := r.dc
	k := r.scale
	for _, op := range ops {
		switch op := op.(type) {
		case canvas.Rect:
			if op.Radius > 0 {
				dc.DrawRoundedRectangle(op.X*k, op.Y*k, op.W*k, op.H*k, op.Radius*k)
			} else {
				dc.DrawRectangle(op.X*k, op.Y*k, op.W*k, op.H*k)
			}
			if canvas.Visible(op.Fill) {
				dc.SetColor(op.Fill)
				dc.FillPreserve()
			}
			if canvas.Visible(op.Stroke) && op.StrokeWidth > 0 {
				dc.SetColor(op.Stroke)
				dc.SetLineWidth(op.StrokeWidth * k)
				dc.StrokePreserve()
			}
			dc.ClearPath()

		case canvas.Text:
			face, err := r.face(op.Font)
			if err != nil {
				return err
			}
			dc.SetFontFace(face)
			dc.SetColor(op.Color)
			dc.DrawStringAnchored(op.Content, op.X*k, op.Y*k, anchorX(op.Anchor), 0)

		case canvas.Image:
			if op.Src == nil {
				continue
			}
			w := int(math.Round(op.W * k))
			h := int(math.Round(op.H * k))
			if w <= 0 || h <= 0 {
				continue
			}
			src := op.Src
			if b := src.Bounds(); b.Dx() != w || b.Dy() != h {
				filter := imaging.Lanczos
				if op.Pixelated {
					filter = imaging.NearestNeighbor
				}
				src = imaging.Resize(src, w, h, filter)
			}
			dc.DrawImage(src, int(math.Round(op.X*k)), int(math.Round(op.Y*k)))

		case canvas.Clip:
			dc.Push()
			dc.DrawRectangle(op.X*k, op.Y*k, op.W*k, op.H*k)
			dc.Clip()
			err := r.paint(op.Ops)
			dc.Pop()
			if err != nil {
				return err
			}

		default:
			return fmt.Errorf("png: unsupported op %T", op)
		}
	}
	return nil
}

func (r *pngRenderer) face(f canvas.Font) (font.Face, error) {
	style := fonts.Regular
	switch {
	case f.Family == canvas.Monospace && f.Bold:
		style = fonts.MonoBold
	case f.Family == canvas.Monospace:
		style = fonts.Mono
	case f.Bold:
		style = fonts.Bold
	}
	key := faceKey{style: style, size: f.Size * r.scale}
	if face, ok := r.faces[key]; ok {
		return face, nil
	}
	face, err := fonts.Face(style, key.size)
	if err != nil {
		return nil, fmt.Errorf("png: %w", err)
	}
	r.faces[key] = face
	return face, nil
}

func (r *pngRenderer) closeFaces() {
	for _, f := range r.faces {
		_ = f.Close()
	}
}

func anchorX(a canvas.Anchor) float64 {
	switch a {
	case canvas.AnchorMiddle:
		return 0.5
	case canvas.AnchorEnd:
		return 1
	default:
		return 0
	}
}
