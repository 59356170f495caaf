// Package fonts provides the typefaces used on pass cards.
//
// The Go font family ships inside golang.org/x/image as TTF byte slices, so
// raster and vector output use identical glyphs without any system fonts.
// Parsed fonts are shared; faces are not safe for concurrent use and are
// created per render with [Face].
package fonts

import (
	"encoding/base64"
	"fmt"
	"sync"

	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/gomono"
	"golang.org/x/image/font/gofont/gomonobold"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
)

// Style selects one of the bundled typefaces.
type Style int

const (
	Regular Style = iota
	Bold
	Mono
	MonoBold
)

// CSS font-family names, with fallbacks for SVG viewers that ignore @font-face.
const (
	SansFamily = `'Go', 'Helvetica Neue', Arial, sans-serif`
	MonoFamily = `'Go Mono', Menlo, Consolas, monospace`
)

var sources = [...]struct {
	family string
	bold   bool
	ttf    []byte
}{
	Regular:  {"Go", false, goregular.TTF},
	Bold:     {"Go", true, gobold.TTF},
	Mono:     {"Go Mono", false, gomono.TTF},
	MonoBold: {"Go Mono", true, gomonobold.TTF},
}

var (
	parsed    [len(sources)]*opentype.Font
	parseErr  error
	parseOnce sync.Once
)

func load() {
	for i, s := range sources {
		f, err := opentype.Parse(s.ttf)
		if err != nil {
			parseErr = fmt.Errorf("parse %s font: %w", s.family, err)
			return
		}
		parsed[i] = f
	}
}

// Face returns a new face for style at size pixels per em.
func Face(style Style, size float64) (font.Face, error) {
	if style < Regular || style > MonoBold {
		return nil, fmt.Errorf("unknown font style %d", style)
	}
	parseOnce.Do(load)
	if parseErr != nil {
		return nil, parseErr
	}
	return opentype.NewFace(parsed[style], &opentype.FaceOptions{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingNone,
	})
}

// FontFace describes one @font-face rule for SVG embedding.
type FontFace struct {
	Family string
	Bold   bool
	Base64 string
}

var (
	faces     []FontFace
	facesOnce sync.Once
)

// EmbeddedFaces returns the bundled fonts as base64 TTF data.
// The result is computed once.
func EmbeddedFaces() []FontFace {
	facesOnce.Do(func() {
		for _, s := range sources {
			faces = append(faces, FontFace{
				Family: s.family,
				Bold:   s.bold,
				Base64: base64.StdEncoding.EncodeToString(s.ttf),
			})
		}
	})
	return faces
}
