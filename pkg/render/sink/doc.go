// Package sink serializes [canvas.Scene] values.
//
// # Backends
//
//   - [RenderSVG]: vector output. Every string written into markup goes
//     through [EscapeXML]; callers never pre-escape.
//   - [Rasterize] / [RenderPNG]: raster output drawn with fogleman/gg using
//     the bundled Go fonts. [WithScale] multiplies all geometry and font
//     sizes by an integer factor so small print cards rasterize at print
//     resolution instead of being upsampled.
//
// Both backends are deterministic: the same scene produces the same bytes.
//
// # Options
//
// Options follow the functional pattern:
//
//	png, err := sink.RenderPNG(scene, sink.WithScale(3))
//	svg, err := sink.RenderSVG(scene, sink.WithEmbeddedFonts())
//
// [canvas.Scene]: github.com/matzehuels/eventpass/pkg/render/canvas
package sink
