package card

import (
	"bytes"
	"image"
	"time"

	"github.com/disintegration/imaging"

	"github.com/matzehuels/eventpass/pkg/barcode"
	"github.com/matzehuels/eventpass/pkg/errors"
	"github.com/matzehuels/eventpass/pkg/pass"
	"github.com/matzehuels/eventpass/pkg/render/canvas"
	"github.com/matzehuels/eventpass/pkg/render/card/layout"
	"github.com/matzehuels/eventpass/pkg/render/sink"
)

// Artifact is a rendered card.
type Artifact struct {
	Code         string
	RegisteredAt time.Time

	Geometry layout.Geometry
	Scene    *canvas.Scene

	// Image is the raster at Geometry.PixelWidth x Geometry.PixelHeight.
	Image image.Image
	PNG   []byte
}

// Width returns the raster width in pixels.
func (a *Artifact) Width() int { return a.Image.Bounds().Dx() }

// Height returns the raster height in pixels.
func (a *Artifact) Height() int { return a.Image.Bounds().Dy() }

// SVG serializes the card as a vector document with the fonts embedded.
func (a *Artifact) SVG() ([]byte, error) {
	out, err := sink.RenderSVG(a.Scene, sink.WithEmbeddedFonts())
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeRenderFailed, err, "render svg")
	}
	return out, nil
}

// Filename returns the attachment name for the given extension.
func (a *Artifact) Filename(ext string) string {
	return pass.Filename(a.Code, ext)
}

// Render draws the card and rasterizes it at the template's fixed scale.
// It is pure: the same arguments always produce the same PNG bytes.
func Render(in pass.Input, g layout.Geometry, logo, qr image.Image, opts ...Option) (*Artifact, error) {
	scene := Build(in, g, logo, qr, opts...)

	img, err := sink.Rasterize(scene, sink.WithScale(g.Template.Scale))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeRenderFailed, err, "rasterize card")
	}
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.PNG); err != nil {
		return nil, errors.Wrap(errors.ErrCodeRenderFailed, err, "encode card png")
	}

	return &Artifact{
		Code:         in.Code,
		RegisteredAt: in.RegisteredAt,
		Geometry:     g,
		Scene:        scene,
		Image:        img,
		PNG:          buf.Bytes(),
	}, nil
}

// EncodeQR encodes in.Code at the pixel size the template's QR box needs.
func EncodeQR(code string, t layout.Template) (*image.Gray, error) {
	return barcode.Encode(code, int(t.QRSize)*max(t.Scale, 1), t.QRMargin)
}

// Compose validates in, lays it out on t, encodes the QR symbol and renders
// the card. logo may be nil.
func Compose(in pass.Input, t layout.Template, logo image.Image, opts ...Option) (*Artifact, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	g, err := layout.Compute(in, t)
	if err != nil {
		return nil, err
	}
	qr, err := EncodeQR(in.Code, t)
	if err != nil {
		return nil, err
	}
	return Render(in, g, logo, qr, opts...)
}
