package layout

import (
	"strings"
	"testing"
	"time"

	"github.com/matzehuels/eventpass/pkg/errors"
	"github.com/matzehuels/eventpass/pkg/pass"
)

func testInput(eventName string) pass.Input {
	return pass.Input{
		FirstName:    "Asha",
		Surname:      "Perera",
		Email:        "asha@example.com",
		EventName:    eventName,
		EventStart:   time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC),
		EventEnd:     time.Date(2025, 3, 1, 17, 0, 0, 0, time.UTC),
		Venue:        "Convention Hall A",
		Code:         "F4VJEUHOA707",
		RegisteredAt: time.Date(2025, 2, 1, 10, 0, 0, 0, time.UTC),
	}
}

// titleOf returns an event name that wraps to exactly n lines on t.
func titleOf(t Template, n int) string {
	word := strings.Repeat("x", t.TitleChars()-2)
	words := make([]string, n)
	for i := range words {
		words[i] = word
	}
	return strings.Join(words, " ")
}

func TestComputeCard(t *testing.T) {
	g, err := Compute(testInput("Annual Tech Summit"), Card)
	if err != nil {
		t.Fatalf("Compute() error: %v", err)
	}

	checks := []struct {
		name      string
		got, want float64
	}{
		{"welcome", g.Welcome, 69},
		{"name", g.Name, 86},
		{"mobile", g.Mobile, 101},
		{"email", g.Email, 113},
		{"qr box x", g.QRBox.X, 328},
		{"qr box side", g.QRBox.W, 122},
		{"qr image x", g.QRImage.X, 333},
		{"code", g.Code, 150},
		{"title", g.TitleBaselines[0], 174},
		{"extra", g.Extra, 69},
		{"row 1", g.Rows[0], 193 + 34.5},
		{"footer", g.Footer, 306},
	}
	for _, c := range checks {
		if c.got != c.want {
			t.Errorf("%s = %v, want %v", c.name, c.got, c.want)
		}
	}

	if g.PixelWidth != 1392 || g.PixelHeight != 960 {
		t.Errorf("pixels = %dx%d, want 1392x960", g.PixelWidth, g.PixelHeight)
	}
	if len(g.TitleLines) != 1 || g.TitleLines[0] != "Annual Tech Summit" {
		t.Errorf("title lines = %q", g.TitleLines)
	}
	if g.TitleChars != 42 {
		t.Errorf("title chars = %d, want 42", g.TitleChars)
	}
}

func TestComputeFooterBoundedForEveryLineCount(t *testing.T) {
	for _, tmpl := range []Template{Card, Preview} {
		for n := 1; n <= tmpl.MaxTitleLines+3; n++ {
			g, err := Compute(testInput(titleOf(tmpl, n)), tmpl)
			if err != nil {
				t.Fatalf("%s n=%d: Compute() error: %v", tmpl.Name, n, err)
			}
			if limit := g.Height - tmpl.Padding; g.Footer > limit {
				t.Errorf("%s n=%d: footer %v beyond %v", tmpl.Name, n, g.Footer, limit)
			}
			if tmpl.Height > 0 && g.Footer != tmpl.Height-tmpl.Padding {
				t.Errorf("%s n=%d: footer %v, want pinned to %v", tmpl.Name, n, g.Footer, tmpl.Height-tmpl.Padding)
			}
			if g.Extra < 0 {
				t.Errorf("%s n=%d: negative extra %v", tmpl.Name, n, g.Extra)
			}
			last := g.TitleBaselines[len(g.TitleBaselines)-1]
			if g.Rows[0] <= last {
				t.Errorf("%s n=%d: first row %v not below title %v", tmpl.Name, n, g.Rows[0], last)
			}
			if g.TitleClip.Bottom() > g.Rows[0]-tmpl.FontSmall {
				t.Errorf("%s n=%d: title clip overlaps first row", tmpl.Name, n)
			}
			if g.Rows[2] >= g.Footer {
				t.Errorf("%s n=%d: rows overlap footer", tmpl.Name, n)
			}
		}
	}
}

func TestComputeSplitsExtraSpace(t *testing.T) {
	one, _ := Compute(testInput(titleOf(Card, 1)), Card)
	two, _ := Compute(testInput(titleOf(Card, 2)), Card)

	if d := one.Extra - two.Extra; d != Card.TitleLineHeight {
		t.Errorf("extra shrinks by %v per line, want %v", d, Card.TitleLineHeight)
	}
	// Half the extra sits between the title and the rows, half above the footer.
	gapAfterTitle := one.Rows[0] - Card.firstRow(1)
	gapBeforeFooter := (one.Footer - one.Rows[2]) - (Card.footerBaseline(1) - Card.firstRow(1) - 2*Card.rowStep())
	if gapAfterTitle != one.Extra/2 || gapBeforeFooter != one.Extra/2 {
		t.Errorf("gaps = %v/%v, want %v each", gapAfterTitle, gapBeforeFooter, one.Extra/2)
	}
}

func TestComputeTruncatesLongTitles(t *testing.T) {
	g, err := Compute(testInput(titleOf(Card, 9)), Card)
	if err != nil {
		t.Fatalf("Compute() error: %v", err)
	}
	if len(g.TitleLines) != Card.MaxTitleLines {
		t.Fatalf("got %d lines, want %d", len(g.TitleLines), Card.MaxTitleLines)
	}
	if !g.TitleTruncated {
		t.Error("TitleTruncated = false")
	}
	if last := g.TitleLines[len(g.TitleLines)-1]; !strings.HasSuffix(last, Ellipsis) {
		t.Errorf("last line %q lacks ellipsis", last)
	}
}

func TestComputeCapacityBelowMaxLines(t *testing.T) {
	tmpl := Card
	tmpl.Height = tmpl.MinHeight(1) + tmpl.TitleLineHeight // room for exactly two lines
	if got := tmpl.TitleCapacity(); got != 2 {
		t.Fatalf("TitleCapacity() = %d, want 2", got)
	}
	g, err := Compute(testInput(titleOf(tmpl, 3)), tmpl)
	if err != nil {
		t.Fatalf("Compute() error: %v", err)
	}
	if len(g.TitleLines) != 2 || g.Extra != 0 {
		t.Errorf("lines = %d extra = %v, want 2 and 0", len(g.TitleLines), g.Extra)
	}
}

func TestComputePreviewGrows(t *testing.T) {
	one, _ := Compute(testInput("Summit"), Preview)
	three, _ := Compute(testInput(titleOf(Preview, 3)), Preview)

	if one.Height != 366 {
		t.Errorf("one-line preview height = %v, want 366", one.Height)
	}
	if three.Height-one.Height != 2*Preview.TitleLineHeight {
		t.Errorf("preview grew by %v, want %v", three.Height-one.Height, 2*Preview.TitleLineHeight)
	}
	if one.Extra != 0 {
		t.Errorf("natural height extra = %v", one.Extra)
	}
}

func TestComputeEmptyTitle(t *testing.T) {
	g, err := Compute(testInput(""), Card)
	if err != nil {
		t.Fatalf("Compute() error: %v", err)
	}
	if len(g.TitleLines) != 1 || g.TitleLines[0] != "" {
		t.Errorf("title lines = %q, want one empty line", g.TitleLines)
	}
}

func TestComputeRejectsBadTemplates(t *testing.T) {
	short := Card
	short.Height = 100

	narrow := Card
	narrow.Width = 150

	noScale := Card
	noScale.Scale = 0

	tests := []struct {
		name string
		tmpl Template
		code errors.Code
	}{
		{"height below minimum", short, errors.ErrCodeLayoutOverflow},
		{"qr box fills width", narrow, errors.ErrCodeLayoutOverflow},
		{"zero scale", noScale, errors.ErrCodeInvalidConfig},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Compute(testInput("Summit"), tt.tmpl)
			if !errors.Is(err, tt.code) {
				t.Errorf("Compute() error = %v, want %s", err, tt.code)
			}
		})
	}
}

func TestPreset(t *testing.T) {
	if got, err := Preset("card"); err != nil || got.Height != 320 {
		t.Errorf("Preset(card) = %v, %v", got.Name, err)
	}
	if _, err := Preset("poster"); !errors.Is(err, errors.ErrCodeInvalidConfig) {
		t.Errorf("Preset(poster) error = %v", err)
	}
}
