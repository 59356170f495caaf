package sink

import (
	"bytes"
	"image"
	"image/color"
	"strings"
	"testing"

	"github.com/disintegration/imaging"

	"github.com/matzehuels/eventpass/pkg/render/canvas"
)

var (
	white = canvas.Hex("#ffffff")
	black = canvas.Hex("#000000")
	red   = canvas.Hex("#ff0000")
)

func testScene() *canvas.Scene {
	s := canvas.New(100, 50, white)
	s.Add(
		canvas.Rect{X: 10, Y: 10, W: 20, H: 20, Fill: red},
		canvas.Text{X: 50, Y: 30, Content: "Tech <&> \"Co\"", Font: canvas.Font{Size: 10}, Anchor: canvas.AnchorMiddle, Color: black},
		canvas.Clip{X: 60, Y: 0, W: 10, H: 50, Ops: []canvas.Op{
			canvas.Rect{X: 0, Y: 40, W: 100, H: 10, Fill: black},
		}},
	)
	return s
}

func TestEscapeXML(t *testing.T) {
	tests := []struct{ in, want string }{
		{"plain", "plain"},
		{"a & b", "a &amp; b"},
		{"<script>", "&lt;script&gt;"},
		{`"quoted"`, "&#34;quoted&#34;"},
		{"it's", "it&#39;s"},
	}
	for _, tt := range tests {
		if got := EscapeXML(tt.in); got != tt.want {
			t.Errorf("EscapeXML(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestRenderSVGEscapesText(t *testing.T) {
	out, err := RenderSVG(testScene())
	if err != nil {
		t.Fatalf("RenderSVG() error: %v", err)
	}
	svg := string(out)
	if strings.Contains(svg, "<&>") {
		t.Error("raw text leaked into markup")
	}
	if !strings.Contains(svg, "Tech &lt;&amp;&gt; &#34;Co&#34;") {
		t.Error("escaped text missing")
	}
	if !strings.Contains(svg, `text-anchor="middle"`) {
		t.Error("anchor not serialized")
	}
	if !strings.Contains(svg, `<clipPath id="clip-1">`) || !strings.Contains(svg, `clip-path="url(#clip-1)"`) {
		t.Error("clip region not serialized")
	}
	if !strings.HasPrefix(svg, "<svg ") || !strings.HasSuffix(svg, "</svg>\n") {
		t.Error("document not wrapped in svg element")
	}
}

func TestRenderSVGImage(t *testing.T) {
	s := canvas.New(10, 10, white)
	s.Add(canvas.Image{X: 1, Y: 1, W: 8, H: 8, Src: image.NewGray(image.Rect(0, 0, 4, 4)), Pixelated: true})
	out, err := RenderSVG(s)
	if err != nil {
		t.Fatalf("RenderSVG() error: %v", err)
	}
	if !bytes.Contains(out, []byte(`href="data:image/png;base64,`)) {
		t.Error("image not inlined as data uri")
	}
	if !bytes.Contains(out, []byte("image-rendering:pixelated")) {
		t.Error("pixelated hint missing")
	}
}

func TestRenderSVGEmbeddedFonts(t *testing.T) {
	plain, _ := RenderSVG(testScene())
	embedded, err := RenderSVG(testScene(), WithEmbeddedFonts())
	if err != nil {
		t.Fatalf("RenderSVG() error: %v", err)
	}
	if bytes.Contains(plain, []byte("@font-face")) {
		t.Error("fonts embedded without option")
	}
	if got := bytes.Count(embedded, []byte("@font-face")); got != 4 {
		t.Errorf("embedded %d font faces, want 4", got)
	}
}

func TestRasterizeScale(t *testing.T) {
	img, err := Rasterize(testScene(), WithScale(3))
	if err != nil {
		t.Fatalf("Rasterize() error: %v", err)
	}
	if b := img.Bounds(); b.Dx() != 300 || b.Dy() != 150 {
		t.Fatalf("bounds = %v, want 300x150", b)
	}

	tests := []struct {
		name string
		x, y int
		want color.NRGBA
	}{
		{"background", 2, 2, white},
		{"rect fill", 60, 60, red},
		{"clipped fill", 195, 135, black},
		{"outside clip", 250, 135, white},
	}
	for _, tt := range tests {
		got := color.NRGBAModel.Convert(img.At(tt.x, tt.y)).(color.NRGBA)
		if got != tt.want {
			t.Errorf("%s: pixel (%d,%d) = %v, want %v", tt.name, tt.x, tt.y, got, tt.want)
		}
	}
}

func TestRasterizeDrawsText(t *testing.T) {
	s := canvas.New(60, 20, white)
	s.Add(canvas.Text{X: 30, Y: 15, Content: "WWW", Font: canvas.Font{Size: 14, Bold: true}, Anchor: canvas.AnchorMiddle, Color: black})
	img, err := Rasterize(s, WithScale(2))
	if err != nil {
		t.Fatalf("Rasterize() error: %v", err)
	}
	dark := 0
	b := img.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			if r, _, _, _ := img.At(x, y).RGBA(); r < 0x8000 {
				dark++
			}
		}
	}
	if dark == 0 {
		t.Error("no text pixels painted")
	}
}

func TestRasterizeImagePixelated(t *testing.T) {
	src := image.NewGray(image.Rect(0, 0, 2, 1))
	src.Pix[0] = 0x00
	src.Pix[1] = 0xff

	s := canvas.New(10, 5, red)
	s.Add(canvas.Image{X: 0, Y: 0, W: 10, H: 5, Src: src, Pixelated: true})
	img, err := Rasterize(s, WithScale(2))
	if err != nil {
		t.Fatalf("Rasterize() error: %v", err)
	}
	left := color.GrayModel.Convert(img.At(9, 5)).(color.Gray).Y
	right := color.GrayModel.Convert(img.At(10, 5)).(color.Gray).Y
	if left != 0 || right != 0xff {
		t.Errorf("module edge = %d|%d, want crisp 0|255", left, right)
	}
}

func TestRenderPNGDeterministic(t *testing.T) {
	a, err := RenderPNG(testScene(), WithScale(2))
	if err != nil {
		t.Fatalf("RenderPNG() error: %v", err)
	}
	b, _ := RenderPNG(testScene(), WithScale(2))
	if !bytes.Equal(a, b) {
		t.Error("RenderPNG output differs between runs")
	}
	img, err := imaging.Decode(bytes.NewReader(a))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if img.Bounds().Dx() != 200 {
		t.Errorf("width = %d, want 200", img.Bounds().Dx())
	}
}

func TestRasterizeEmptyCanvas(t *testing.T) {
	if _, err := Rasterize(canvas.New(0, 10, white)); err == nil {
		t.Error("Rasterize() should reject an empty canvas")
	}
}
