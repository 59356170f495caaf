package layout

import (
	"math"

	"github.com/matzehuels/eventpass/pkg/errors"
	"github.com/matzehuels/eventpass/pkg/pass"
)

// Rect is an axis-aligned rectangle in logical units.
type Rect struct {
	X, Y, W, H float64
}

// Right returns the x coordinate of the right edge.
func (r Rect) Right() float64 { return r.X + r.W }

// Bottom returns the y coordinate of the bottom edge.
func (r Rect) Bottom() float64 { return r.Y + r.H }

// Geometry is the computed layout of one card.
// Baselines are y coordinates of text baselines.
type Geometry struct {
	Template Template

	Width, Height           float64
	PixelWidth, PixelHeight int

	Logo Rect // box the logo is fitted into, aspect preserved

	Welcome float64
	Name    float64
	Mobile  float64
	Email   float64

	QRBox   Rect
	QRImage Rect
	Code    float64
	CodeX   float64 // center of the code text

	TitleLines     []string
	TitleTruncated bool
	TitleBaselines []float64
	TitleClip      Rect

	Rows   [3]float64
	ValueX float64
	Footer float64

	// Extra is the leftover height split between the title gap and the footer gap.
	Extra float64

	NameChars  int
	SmallChars int
	ValueChars int
	TitleChars int
}

// MinHeight returns the natural canvas height for a title of n lines.
func (t Template) MinHeight(n int) float64 {
	return t.footerBaseline(n) + t.Padding
}

// TitleCapacity returns how many title lines fit in a fixed-height template.
// Natural-height templates report MaxTitleLines (0 for unbounded).
func (t Template) TitleCapacity() int {
	if t.Height == 0 {
		return t.MaxTitleLines
	}
	spare := t.Height - t.MinHeight(1)
	if spare < 0 {
		return 0
	}
	return 1 + int(math.Floor(spare/t.TitleLineHeight))
}

func (t Template) emailBaseline() float64 {
	welcome := t.Padding + t.LogoHeight + t.LogoGap + t.FontWelcome
	name := welcome + t.NameGap + t.FontName
	mobile := name + t.MobileGap + t.FontSmall
	return mobile + t.EmailGap + t.FontSmall
}

func (t Template) codeBaseline() float64 {
	return t.Padding + t.QRBox() + t.CodeGap + t.FontCode
}

func (t Template) titleTop() float64 {
	return max(t.codeBaseline(), t.emailBaseline()) + t.CodeBlockGap
}

func (t Template) firstRow(n int) float64 {
	lastTitle := t.titleTop() + t.FontTitle + float64(n-1)*t.TitleLineHeight
	return lastTitle + t.TitleLineHeight + t.TitleRowGap
}

func (t Template) rowStep() float64 {
	return t.RowGap + t.FontSmall
}

func (t Template) footerBaseline(n int) float64 {
	return t.firstRow(n) + 2*t.rowStep() + t.FooterGap + t.FontFooter
}

// Compute lays out in on t.
func Compute(in pass.Input, t Template) (Geometry, error) {
	if err := t.Validate(); err != nil {
		return Geometry{}, err
	}

	limit := t.MaxTitleLines
	if t.Height > 0 {
		capacity := t.TitleCapacity()
		if capacity < 1 {
			return Geometry{}, errors.New(errors.ErrCodeLayoutOverflow,
				"template %q: fixed height %.0f below minimum %.0f", t.Name, t.Height, t.MinHeight(1))
		}
		if limit == 0 || capacity < limit {
			limit = capacity
		}
	}

	chars := t.TitleChars()
	lines, truncated := clampLines(Wrap(in.EventName, chars), limit, chars)
	n := len(lines)

	g := Geometry{
		Template:       t,
		Width:          t.Width,
		TitleLines:     lines,
		TitleTruncated: truncated,
		TitleChars:     chars,
	}

	column := t.ColumnWidth()
	g.Logo = Rect{X: t.Padding, Y: t.Padding, W: column, H: t.LogoHeight}
	g.Welcome = t.Padding + t.LogoHeight + t.LogoGap + t.FontWelcome
	g.Name = g.Welcome + t.NameGap + t.FontName
	g.Mobile = g.Name + t.MobileGap + t.FontSmall
	g.Email = g.Mobile + t.EmailGap + t.FontSmall
	g.NameChars = t.CharsFor(column, t.FontName)
	g.SmallChars = t.CharsFor(column, t.FontSmall)

	box := t.QRBox()
	g.QRBox = Rect{X: t.QRBoxLeft(), Y: t.Padding, W: box, H: box}
	inset := t.QRBorder + t.QRPadding
	g.QRImage = Rect{X: g.QRBox.X + inset, Y: g.QRBox.Y + inset, W: t.QRSize, H: t.QRSize}
	g.Code = t.codeBaseline()
	g.CodeX = g.QRBox.X + box/2

	top := t.titleTop()
	g.TitleBaselines = make([]float64, n)
	for i := range n {
		g.TitleBaselines[i] = top + t.FontTitle + float64(i)*t.TitleLineHeight
	}
	descent := max(t.TitleLineHeight-t.FontTitle, 0.25*t.FontTitle)
	g.TitleClip = Rect{
		X: t.Padding,
		Y: top,
		W: column,
		H: t.FontTitle + float64(n-1)*t.TitleLineHeight + descent,
	}

	natural := t.MinHeight(n)
	g.Height = natural
	if t.Height > 0 {
		g.Height = t.Height
		g.Extra = t.Height - natural
	}
	half := g.Extra / 2

	first := t.firstRow(n) + half
	for i := range g.Rows {
		g.Rows[i] = first + float64(i)*t.rowStep()
	}
	g.ValueX = t.Padding + t.RowValueOffset
	g.ValueChars = t.CharsFor(t.Width-t.Padding-g.ValueX, t.FontSmall)
	g.Footer = t.footerBaseline(n) + g.Extra

	g.PixelWidth = int(math.Round(g.Width * float64(t.Scale)))
	g.PixelHeight = int(math.Round(g.Height * float64(t.Scale)))
	return g, nil
}
