package card

import (
	"image"
	"math"

	"github.com/matzehuels/eventpass/pkg/pass"
	"github.com/matzehuels/eventpass/pkg/render/canvas"
	"github.com/matzehuels/eventpass/pkg/render/card/layout"
)

// Palette.
var (
	ColorBackground = canvas.Hex("#ffffff")
	ColorText       = canvas.Hex("#18181b")
	ColorMuted      = canvas.Hex("#52525b")
	ColorBorder     = canvas.Hex("#e4e4e7")
	ColorAccent     = canvas.Hex("#ea580c")
)

// Row labels, top to bottom.
const (
	LabelStart = "Start Date"
	LabelEnd   = "End Date"
	LabelVenue = "Venue"
)

// Greeting is the line above the attendee name.
const Greeting = "Welcome,"

// Option configures scene building.
type Option func(*builder)

type builder struct {
	format pass.Formatter
	scene  *canvas.Scene
}

// WithFormatter sets the date formatter (default [pass.DefaultFormatter]).
func WithFormatter(f pass.Formatter) Option {
	return func(b *builder) { b.format = f }
}

// Build describes the card for in on the computed geometry.
//
// logo may be nil; the card is then drawn without it. qr is the encoded
// symbol for in.Code and is scaled into the QR box with nearest-neighbour
// sampling. Build performs no I/O and is deterministic.
func Build(in pass.Input, g layout.Geometry, logo, qr image.Image, opts ...Option) *canvas.Scene {
	b := &builder{
		format: pass.DefaultFormatter(),
		scene:  canvas.New(g.Width, g.Height, ColorBackground),
	}
	for _, opt := range opts {
		opt(b)
	}

	b.border(g)
	b.logo(g, logo)
	b.identity(in, g)
	b.qr(in, g, qr)
	b.title(g)
	b.rows(in, g)
	b.footer(in, g)
	return b.scene
}

func (b *builder) border(g layout.Geometry) {
	b.scene.Add(canvas.Rect{
		X: 0.5, Y: 0.5, W: g.Width - 1, H: g.Height - 1,
		Fill:        ColorBackground,
		Stroke:      ColorBorder,
		StrokeWidth: 1,
	})
}

func (b *builder) logo(g layout.Geometry, logo image.Image) {
	if logo == nil {
		return
	}
	src := logo.Bounds()
	if src.Dx() == 0 || src.Dy() == 0 || g.Logo.W <= 0 || g.Logo.H <= 0 {
		return
	}
	s := math.Min(g.Logo.W/float64(src.Dx()), g.Logo.H/float64(src.Dy()))
	w, h := float64(src.Dx())*s, float64(src.Dy())*s
	b.scene.Add(canvas.Image{
		X: g.Logo.X, Y: g.Logo.Y + (g.Logo.H-h)/2,
		W: w, H: h,
		Src: logo,
	})
}

func (b *builder) identity(in pass.Input, g layout.Geometry) {
	t := g.Template
	x := t.Padding
	b.scene.Add(
		text(x, g.Welcome, Greeting, sans(t.FontWelcome, false)),
		text(x, g.Name, layout.Truncate(in.FullName(), g.NameChars), sans(t.FontName, true)),
		text(x, g.Mobile, layout.Truncate(pass.Value(in.MobileNumber), g.SmallChars), sans(t.FontSmall, false)),
		text(x, g.Email, layout.Truncate(in.Email, g.SmallChars), sans(t.FontSmall, false)),
	)
}

func (b *builder) qr(in pass.Input, g layout.Geometry, qr image.Image) {
	t := g.Template
	half := t.QRBorder / 2
	b.scene.Add(canvas.Rect{
		X: g.QRBox.X + half, Y: g.QRBox.Y + half,
		W: g.QRBox.W - t.QRBorder, H: g.QRBox.H - t.QRBorder,
		Radius:      t.QRRadius,
		Fill:        ColorBackground,
		Stroke:      ColorAccent,
		StrokeWidth: t.QRBorder,
	})
	if qr != nil {
		b.scene.Add(canvas.Image{
			X: g.QRImage.X, Y: g.QRImage.Y, W: g.QRImage.W, H: g.QRImage.H,
			Src:       qr,
			Pixelated: true,
		})
	}
	code := text(g.CodeX, g.Code, in.Code, canvas.Font{Family: canvas.Monospace, Size: t.FontCode, Bold: true})
	code.Anchor = canvas.AnchorMiddle
	b.scene.Add(code)
}

func (b *builder) title(g layout.Geometry) {
	t := g.Template
	ops := make([]canvas.Op, 0, len(g.TitleLines))
	for i, line := range g.TitleLines {
		if line == "" {
			continue
		}
		ops = append(ops, text(t.Padding, g.TitleBaselines[i], line, sans(t.FontTitle, true)))
	}
	b.scene.Add(canvas.Clip{
		X: g.TitleClip.X, Y: g.TitleClip.Y, W: g.TitleClip.W, H: g.TitleClip.H,
		Ops: ops,
	})
}

func (b *builder) rows(in pass.Input, g layout.Geometry) {
	t := g.Template
	values := [3]string{
		b.format.EventDate(in.EventStart),
		b.format.EventDate(in.EventEnd),
		pass.Value(in.Venue),
	}
	labels := [3]string{LabelStart, LabelEnd, LabelVenue}
	for i, y := range g.Rows {
		b.scene.Add(
			text(t.Padding, y, labels[i], sans(t.FontSmall, true)),
			text(g.ValueX, y, layout.Truncate(values[i], g.ValueChars), sans(t.FontSmall, false)),
		)
	}
}

func (b *builder) footer(in pass.Input, g layout.Geometry) {
	t := g.Template
	line := text(t.Padding, g.Footer, FooterText(b.format, in), sans(t.FontFooter, false))
	line.Color = ColorMuted
	b.scene.Add(line)
}

// FooterText returns the registration line printed at the bottom of the card.
func FooterText(f pass.Formatter, in pass.Input) string {
	return "Registered Date – " + f.Registered(in.RegisteredAt)
}

func sans(size float64, bold bool) canvas.Font {
	return canvas.Font{Family: canvas.Sans, Size: size, Bold: bold}
}

func text(x, y float64, s string, f canvas.Font) canvas.Text {
	return canvas.Text{X: x, Y: y, Content: s, Font: f, Color: ColorText}
}
