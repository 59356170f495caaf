// Package pipeline turns a registration into pass artifacts.
//
// This package is the single place where the stages are wired together, so
// the CLI, the HTTP server and the check-in desk produce identical passes.
//
// # Stages
//
//  1. Resolve the logo (best effort), encode the QR symbol and compute the
//     layout, concurrently
//  2. Render the card (PNG, optionally SVG)
//  3. Package the PDF
//
// A packaging failure does not fail the run: [Result.PackageErr] is set and
// the PNG is returned in its place so delivery can still attach something.
//
// # Usage
//
//	runner := pipeline.NewRunner(cache, nil, logger)
//	res, err := runner.Render(ctx, input, pipeline.Options{Formats: []string{"pdf"}})
//	pdf := res.Artifacts["pdf"]
//
// For fire-and-forget delivery after a registration write, use
// [Runner.Dispatch]; it detaches from the request context.
package pipeline

import (
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/eventpass/pkg/errors"
	"github.com/matzehuels/eventpass/pkg/pass"
	"github.com/matzehuels/eventpass/pkg/render/card/layout"
)

// Defaults shared by the CLI, the server and background delivery.
const (
	DefaultTemplate        = "card"
	DefaultDispatchTimeout = time.Minute
)

// Format constants for output formats.
const (
	FormatPNG = "png"
	FormatPDF = "pdf"
	FormatSVG = "svg"
)

// ValidFormats is the set of supported output formats.
var ValidFormats = map[string]bool{
	FormatPNG: true,
	FormatPDF: true,
	FormatSVG: true,
}

// ContentTypes maps formats to MIME types.
var ContentTypes = map[string]string{
	FormatPNG: "image/png",
	FormatPDF: "application/pdf",
	FormatSVG: "image/svg+xml",
}

// Options configures one pipeline run.
type Options struct {
	Template string   `json:"template,omitempty"`
	Formats  []string `json:"formats,omitempty"`
	Timezone string   `json:"timezone,omitempty"`
	LogoURL  string   `json:"logo_url,omitempty"`
	Refresh  bool     `json:"refresh,omitempty"`

	Logger *log.Logger `json:"-"`
}

// ValidateAndSetDefaults fills in defaults and rejects unknown values.
func (o *Options) ValidateAndSetDefaults() error {
	if o.Template == "" {
		o.Template = DefaultTemplate
	}
	if _, err := layout.Preset(o.Template); err != nil {
		return err
	}
	if len(o.Formats) == 0 {
		o.Formats = []string{FormatPDF}
	}
	return ValidateFormats(o.Formats)
}

// Wants reports whether format was requested.
func (o Options) Wants(format string) bool {
	for _, f := range o.Formats {
		if f == format {
			return true
		}
	}
	return false
}

// ValidateFormat checks that a format is valid.
func ValidateFormat(format string) error {
	if !ValidFormats[format] {
		return errors.New(errors.ErrCodeInvalidFormat, "invalid format: %q (must be one of: png, pdf, svg)", format)
	}
	return nil
}

// ValidateFormats checks that all formats are valid.
func ValidateFormats(formats []string) error {
	for _, f := range formats {
		if err := ValidateFormat(f); err != nil {
			return err
		}
	}
	return nil
}

// Result contains the outputs of a pipeline run.
type Result struct {
	Code string

	// Artifacts holds rendered outputs keyed by format. When packaging fails
	// the PNG is present even if it was not requested.
	Artifacts map[string][]byte

	// PackageErr is the non-fatal packaging failure, if any.
	PackageErr error

	// Geometry is the computed layout. Layout runs before the cache lookup,
	// so it is set on cache hits too.
	Geometry layout.Geometry

	Stats     Stats
	CacheInfo CacheInfo
}

// Filename returns the attachment name of a format.
func (r *Result) Filename(format string) string {
	return pass.Filename(r.Code, format)
}

// Stats contains pipeline execution statistics.
type Stats struct {
	PrepareTime time.Duration
	RenderTime  time.Duration
	PackageTime time.Duration

	TitleLines     int
	TitleTruncated bool
	LogoResolved   bool
}

// CacheInfo tracks cache hits.
type CacheInfo struct {
	Hit bool // every requested artifact came from cache
}
