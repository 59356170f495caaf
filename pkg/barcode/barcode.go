// Package barcode encodes registration codes as QR symbols.
//
// [Encode] returns a square grayscale raster of an exact pixel side with a
// configurable quiet zone, which is what the card renderer and the on-demand
// QR endpoint both need. The symbol itself comes from skip2/go-qrcode at
// medium error correction; this package only owns the module-to-pixel mapping
// so the output side never drifts from the requested size.
package barcode

import (
	"bytes"
	"image"
	"image/color"

	"github.com/disintegration/imaging"
	qrcode "github.com/skip2/go-qrcode"

	"github.com/matzehuels/eventpass/pkg/errors"
)

// Display defaults used by the on-demand QR endpoint.
const (
	DisplaySize   = 256
	DisplayMargin = 2
)

// Encode renders payload as a QR symbol on a pixelSize x pixelSize canvas,
// surrounded by margin quiet-zone modules on every side.
//
// Pixels are mapped to modules by nearest-module sampling, so modules may
// differ by one pixel in width when pixelSize is not a multiple of the module
// count. The result is deterministic for a given input.
func Encode(payload string, pixelSize, margin int) (*image.Gray, error) {
	if payload == "" {
		return nil, errors.New(errors.ErrCodeEncodeFailed, "qr payload is empty")
	}
	if margin < 0 {
		return nil, errors.New(errors.ErrCodeEncodeFailed, "qr margin must not be negative")
	}

	q, err := qrcode.New(payload, qrcode.Medium)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeEncodeFailed, err, "encode qr payload")
	}
	q.DisableBorder = true
	bitmap := q.Bitmap()

	modules := len(bitmap) + 2*margin
	if pixelSize < modules {
		return nil, errors.New(errors.ErrCodeEncodeFailed,
			"qr size %dpx too small for %d modules", pixelSize, modules)
	}

	img := image.NewGray(image.Rect(0, 0, pixelSize, pixelSize))
	for y := range pixelSize {
		my := y*modules/pixelSize - margin
		for x := range pixelSize {
			mx := x*modules/pixelSize - margin
			c := color.Gray{Y: 0xff}
			if my >= 0 && mx >= 0 && my < len(bitmap) && mx < len(bitmap) && bitmap[my][mx] {
				c = color.Gray{Y: 0}
			}
			img.SetGray(x, y, c)
		}
	}
	return img, nil
}

// EncodePNG is Encode followed by PNG serialization.
func EncodePNG(payload string, pixelSize, margin int) ([]byte, error) {
	img, err := Encode(payload, pixelSize, margin)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.PNG); err != nil {
		return nil, errors.Wrap(errors.ErrCodeEncodeFailed, err, "write qr png")
	}
	return buf.Bytes(), nil
}

// Modules returns the symbol side in modules for payload, excluding the quiet zone.
// Callers use it to pick a pixel size that is an exact multiple.
func Modules(payload string) (int, error) {
	q, err := qrcode.New(payload, qrcode.Medium)
	if err != nil {
		return 0, errors.Wrap(errors.ErrCodeEncodeFailed, err, "encode qr payload")
	}
	q.DisableBorder = true
	return len(q.Bitmap()), nil
}
