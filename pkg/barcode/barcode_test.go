package barcode

import (
	"bytes"
	"image"
	"testing"

	"github.com/disintegration/imaging"

	"github.com/matzehuels/eventpass/internal/qrtest"
	"github.com/matzehuels/eventpass/pkg/errors"
)

const testCode = "F4VJEUHOA707"

func TestEncodeRoundTrip(t *testing.T) {
	tests := []struct {
		name   string
		size   int
		margin int
	}{
		{"display", DisplaySize, DisplayMargin},
		{"card", 336, 2},
		{"odd size", 301, 4},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			img, err := Encode(testCode, tt.size, tt.margin)
			if err != nil {
				t.Fatalf("Encode() error: %v", err)
			}
			if b := img.Bounds(); b.Dx() != tt.size || b.Dy() != tt.size {
				t.Fatalf("bounds = %v, want %dx%d", b, tt.size, tt.size)
			}
			got, err := qrtest.Decode(img)
			if err != nil {
				t.Fatalf("decode: %v", err)
			}
			if got != testCode {
				t.Errorf("decoded %q, want %q", got, testCode)
			}
		})
	}
}

func TestEncodeQuietZoneIsWhite(t *testing.T) {
	img, err := Encode(testCode, 250, 4)
	if err != nil {
		t.Fatalf("Encode() error: %v", err)
	}
	n, _ := Modules(testCode)
	quiet := 4 * 250 / (n + 8)
	for _, p := range []image.Point{{0, 0}, {quiet - 1, quiet - 1}, {249, 249}, {0, 249}, {249, 0}} {
		if y := img.GrayAt(p.X, p.Y).Y; y != 0xff {
			t.Errorf("pixel %v = %d, want white", p, y)
		}
	}
}

func TestEncodeDeterministic(t *testing.T) {
	a, err := EncodePNG(testCode, 256, 2)
	if err != nil {
		t.Fatalf("EncodePNG() error: %v", err)
	}
	b, _ := EncodePNG(testCode, 256, 2)
	if !bytes.Equal(a, b) {
		t.Error("EncodePNG output differs between runs")
	}
	img, err := imaging.Decode(bytes.NewReader(a))
	if err != nil {
		t.Fatalf("decode png: %v", err)
	}
	if img.Bounds().Dx() != 256 {
		t.Errorf("png width = %d, want 256", img.Bounds().Dx())
	}
}

func TestEncodeErrors(t *testing.T) {
	tests := []struct {
		name    string
		payload string
		size    int
		margin  int
	}{
		{"empty payload", "", 256, 2},
		{"negative margin", testCode, 256, -1},
		{"too small", testCode, 10, 2},
		{"too long", string(bytes.Repeat([]byte("x"), 4000)), 4096, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Encode(tt.payload, tt.size, tt.margin)
			if !errors.Is(err, errors.ErrCodeEncodeFailed) {
				t.Errorf("Encode() error = %v, want ENCODE_FAILED", err)
			}
		})
	}
}

func TestModules(t *testing.T) {
	n, err := Modules(testCode)
	if err != nil {
		t.Fatalf("Modules() error: %v", err)
	}
	// QR versions are 17+4v modules wide.
	if n < 21 || (n-17)%4 != 0 {
		t.Errorf("Modules() = %d, not a valid QR side", n)
	}
}
