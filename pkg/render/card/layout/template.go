package layout

import (
	"github.com/matzehuels/eventpass/pkg/errors"
)

// DefaultCharWidthRatio approximates the average advance of the card fonts
// as a fraction of the font size.
const DefaultCharWidthRatio = 0.6

// Template holds the immutable measurements of a card design.
// All lengths are logical units; font sizes double as the ascent used to
// place a baseline below the element above it.
type Template struct {
	Name string

	Width  float64
	Height float64 // 0 grows the canvas to fit the content
	Scale  int     // pixels per logical unit in raster output

	Padding    float64
	LogoHeight float64
	LogoGap    float64

	FontWelcome float64
	NameGap     float64
	FontName    float64
	MobileGap   float64
	FontSmall   float64
	EmailGap    float64

	QRSize    float64
	QRPadding float64
	QRBorder  float64
	QRRadius  float64
	QRMargin  int // quiet-zone modules inside the QR image

	CodeGap  float64
	FontCode float64

	// CodeBlockGap separates the lower of the code text and the email line
	// from the top of the title block.
	CodeBlockGap float64

	FontTitle         float64
	TitleLineHeight   float64
	TitleCharsPerLine int // 0 derives the limit from the clip width
	TitleRightGap     float64
	MaxTitleLines     int // 0 means unbounded (natural height only)
	TitleRowGap       float64

	RowGap         float64
	RowValueOffset float64

	FooterGap  float64
	FontFooter float64

	CharWidthRatio float64
}

// Card is the canonical 58mm x 40mm print card. At Scale 3 it rasterizes to 1392x960.
var Card = Template{
	Name:   "card",
	Width:  464,
	Height: 320,
	Scale:  3,

	Padding:    14,
	LogoHeight: 36,
	LogoGap:    8,

	FontWelcome: 11,
	NameGap:     3,
	FontName:    14,
	MobileGap:   5,
	FontSmall:   10,
	EmailGap:    2,

	QRSize:    112,
	QRPadding: 3,
	QRBorder:  2,
	QRRadius:  3,
	QRMargin:  2,

	CodeGap:  4,
	FontCode: 10,

	CodeBlockGap: 12,

	FontTitle:       12,
	TitleLineHeight: 15,
	TitleRightGap:   8,
	MaxTitleLines:   4,
	TitleRowGap:     4,

	RowGap:         4,
	RowValueOffset: 70,

	FooterGap:  8,
	FontFooter: 8,

	CharWidthRatio: DefaultCharWidthRatio,
}

// Preview is the on-screen pass. It keeps the measurements of the earlier
// web design and grows vertically with the title.
var Preview = Template{
	Name:  "preview",
	Width: 672,
	Scale: 2,

	Padding:    20,
	LogoHeight: 56,
	LogoGap:    12,

	FontWelcome: 16,
	NameGap:     4,
	FontName:    20,
	MobileGap:   8,
	FontSmall:   14,
	EmailGap:    0,

	QRSize:    140,
	QRPadding: 4,
	QRBorder:  2,
	QRRadius:  4,
	QRMargin:  2,

	CodeGap:  8,
	FontCode: 12,

	CodeBlockGap: 38,

	FontTitle:         16,
	TitleLineHeight:   20,
	TitleCharsPerLine: 48,
	TitleRightGap:     16,
	MaxTitleLines:     6,
	TitleRowGap:       8,

	RowGap:         8,
	RowValueOffset: 110,

	FooterGap:  16,
	FontFooter: 12,

	CharWidthRatio: DefaultCharWidthRatio,
}

// Presets lists the named templates.
var Presets = map[string]Template{
	Card.Name:    Card,
	Preview.Name: Preview,
}

// Preset looks up a named template.
func Preset(name string) (Template, error) {
	t, ok := Presets[name]
	if !ok {
		return Template{}, errors.New(errors.ErrCodeInvalidConfig, "unknown template %q", name)
	}
	return t, nil
}

// QRBox returns the side of the bordered QR box.
func (t Template) QRBox() float64 {
	return t.QRSize + 2*t.QRPadding + 2*t.QRBorder
}

// QRBoxLeft returns the x coordinate of the QR box, flush with the right padding.
func (t Template) QRBoxLeft() float64 {
	return t.Width - t.Padding - t.QRBox()
}

// ColumnWidth returns the width available to the left column and the title.
func (t Template) ColumnWidth() float64 {
	return t.QRBoxLeft() - t.Padding - t.TitleRightGap
}

// CharsFor estimates how many characters of the given font size fit in width.
func (t Template) CharsFor(width, fontSize float64) int {
	ratio := t.CharWidthRatio
	if ratio <= 0 {
		ratio = DefaultCharWidthRatio
	}
	if fontSize <= 0 {
		return 0
	}
	return int(width / (fontSize * ratio))
}

// TitleChars returns the wrap limit for the event title.
func (t Template) TitleChars() int {
	if t.TitleCharsPerLine > 0 {
		return t.TitleCharsPerLine
	}
	return max(1, t.CharsFor(t.ColumnWidth(), t.FontTitle))
}

// Validate rejects templates whose fixed elements cannot be laid out.
func (t Template) Validate() error {
	switch {
	case t.Width <= 0:
		return errors.New(errors.ErrCodeInvalidConfig, "template %q: width must be positive", t.Name)
	case t.Height < 0:
		return errors.New(errors.ErrCodeInvalidConfig, "template %q: height must not be negative", t.Name)
	case t.Scale < 1:
		return errors.New(errors.ErrCodeInvalidConfig, "template %q: scale must be at least 1", t.Name)
	case t.QRSize <= 0 || t.TitleLineHeight <= 0 || t.FontTitle <= 0:
		return errors.New(errors.ErrCodeInvalidConfig, "template %q: qr size, title font and line height must be positive", t.Name)
	case t.MaxTitleLines < 0 || t.QRMargin < 0:
		return errors.New(errors.ErrCodeInvalidConfig, "template %q: negative line or margin count", t.Name)
	case t.ColumnWidth() <= 0:
		return errors.New(errors.ErrCodeLayoutOverflow, "template %q: qr box leaves no room for the left column", t.Name)
	}
	return nil
}
