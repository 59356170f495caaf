// Package document packages a rendered card as a single-page PDF of an exact
// physical size.
//
// The raster is flattened onto white before embedding: some viewers paint
// transparent regions of embedded images with a tinted overlay. The flattened
// image is stored as JPEG, scaled to fit the page with its aspect ratio kept
// and centred, and a border is stroked along the page bounds.
package document

import (
	"bytes"
	"image"
	"image/color"
	"math"
	"time"

	"github.com/disintegration/imaging"
	"github.com/signintech/gopdf"

	"github.com/matzehuels/eventpass/pkg/errors"
	"github.com/matzehuels/eventpass/pkg/render/card"
)

// Print card size.
const (
	PassWidthMM  = 58.0
	PassHeightMM = 40.0
)

// PointsPerMM converts millimetres to PDF points.
const PointsPerMM = 72 / 25.4

// DefaultJPEGQuality is the embed quality of the flattened raster.
const DefaultJPEGQuality = 92

// Document is a packaged pass.
type Document struct {
	PDF      []byte
	Filename string

	WidthPt, HeightPt float64

	// Placement is where the image sits on the page, in points from the top left.
	Placement Box
}

// Box is a rectangle in points.
type Box struct {
	X, Y, W, H float64
}

// Option configures packaging.
type Option func(*packager)

type packager struct {
	quality     int
	borderWidth float64
	title       string
}

// WithJPEGQuality overrides DefaultJPEGQuality.
func WithJPEGQuality(q int) Option {
	return func(p *packager) { p.quality = q }
}

// WithBorderWidth sets the page border stroke in points (default 1, 0 disables).
func WithBorderWidth(w float64) Option {
	return func(p *packager) { p.borderWidth = w }
}

// WithTitle sets the PDF title metadata.
func WithTitle(title string) Option {
	return func(p *packager) { p.title = title }
}

// Flatten composites img over opaque white and returns an image with no
// transparency left.
func Flatten(img image.Image) *image.NRGBA {
	src := imaging.Clone(img)
	b := src.Bounds()
	bg := imaging.New(b.Dx(), b.Dy(), color.White)
	return imaging.Overlay(bg, src, image.Pt(0, 0), 1.0)
}

// Fit scales a srcW x srcH image into a pageW x pageH page, keeping the
// aspect ratio, and centres it.
func Fit(srcW, srcH, pageW, pageH float64) Box {
	s := math.Min(pageW/srcW, pageH/srcH)
	w, h := srcW*s, srcH*s
	return Box{X: (pageW - w) / 2, Y: (pageH - h) / 2, W: w, H: h}
}

// Package builds a one-page PDF of widthMM x heightMM holding the artifact.
//
// Output is byte-stable for a given artifact: the creation date is pinned to
// the registration time rather than the wall clock.
func Package(a *card.Artifact, widthMM, heightMM float64, opts ...Option) (*Document, error) {
	if a == nil || a.Image == nil {
		return nil, errors.New(errors.ErrCodePackageFailed, "no rendered card to package")
	}
	if widthMM <= 0 || heightMM <= 0 {
		return nil, errors.New(errors.ErrCodeInvalidInput, "page size %gx%g mm must be positive", widthMM, heightMM)
	}

	p := &packager{quality: DefaultJPEGQuality, borderWidth: 1, title: "Event pass " + a.Code}
	for _, opt := range opts {
		opt(p)
	}

	var jpg bytes.Buffer
	if err := imaging.Encode(&jpg, Flatten(a.Image), imaging.JPEG, imaging.JPEGQuality(p.quality)); err != nil {
		return nil, errors.Wrap(errors.ErrCodePackageFailed, err, "encode jpeg")
	}

	pw, ph := widthMM*PointsPerMM, heightMM*PointsPerMM
	b := a.Image.Bounds()
	place := Fit(float64(b.Dx()), float64(b.Dy()), pw, ph)

	created := a.RegisteredAt
	if created.IsZero() {
		created = time.Unix(0, 0)
	}

	pdf := &gopdf.GoPdf{}
	pdf.Start(gopdf.Config{Unit: gopdf.UnitPT, PageSize: gopdf.Rect{W: pw, H: ph}})
	pdf.SetInfo(gopdf.PdfInfo{
		Title:        p.title,
		Creator:      "eventpass",
		Producer:     "eventpass",
		CreationDate: created.UTC(),
	})
	pdf.AddPage()

	holder, err := gopdf.ImageHolderByBytes(jpg.Bytes())
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodePackageFailed, err, "load image")
	}
	if err := pdf.ImageByHolder(holder, place.X, place.Y, &gopdf.Rect{W: place.W, H: place.H}); err != nil {
		return nil, errors.Wrap(errors.ErrCodePackageFailed, err, "place image")
	}

	if p.borderWidth > 0 {
		pdf.SetLineWidth(p.borderWidth)
		pdf.SetStrokeColor(0, 0, 0)
		pdf.RectFromUpperLeftWithStyle(0, 0, pw, ph, "D")
	}

	out, err := pdf.GetBytesPdfReturnErr()
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodePackageFailed, err, "write pdf")
	}
	return &Document{
		PDF:       out,
		Filename:  a.Filename("pdf"),
		WidthPt:   pw,
		HeightPt:  ph,
		Placement: place,
	}, nil
}

// PackagePass packages a at the print card size.
func PackagePass(a *card.Artifact, opts ...Option) (*Document, error) {
	return Package(a, PassWidthMM, PassHeightMM, opts...)
}
