// Package render groups the drawing packages of the pass pipeline.
//
// # Layers
//
//   - [canvas]: A format-neutral scene of rectangles, text runs and images
//     in card pixels
//   - [card/layout]: Pure geometry. Templates, title wrapping and the
//     position of every element on the card
//   - [card]: Builds the scene for one pass and rasterizes it
//   - [sink]: Serializes scenes to PNG and SVG
//
// Layout never draws and sinks never decide positions, so the PNG, SVG and
// PDF of one pass always agree.
//
//	geo, err := layout.Compute(in, layout.Card)
//	art, err := card.Compose(in, layout.Card, logoImage)
//	svg, err := sink.RenderSVG(art.Scene)
//
// [canvas]: github.com/matzehuels/eventpass/pkg/render/canvas
// [card/layout]: github.com/matzehuels/eventpass/pkg/render/card/layout
// [card]: github.com/matzehuels/eventpass/pkg/render/card
// [sink]: github.com/matzehuels/eventpass/pkg/render/sink
package render
