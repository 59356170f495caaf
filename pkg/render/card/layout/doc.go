// Package layout computes pass card geometry.
//
// # Overview
//
// The card has a fixed two-column header (logo and attendee identity on the
// left, the QR box and code text on the right), a full-width event title
// that wraps to a variable number of lines, three label/value rows (start,
// end, venue) and a footer with the registration timestamp. [Compute] turns
// a [Template] and a [pass.Input] into a [Geometry] holding every baseline
// and rectangle a renderer needs. Coordinates are logical units with the
// origin at the top-left; renderers multiply by [Template.Scale].
//
// # Vertical Flow
//
// Content is stacked top to bottom. The title block grows by
// [Template.TitleLineHeight] per wrapped line, which pushes the rows and the
// footer down. When the template has a fixed height, the space left over
// after stacking is split in two: half is inserted after the title block and
// half before the footer, so the footer always lands on Height - Padding.
// Natural-height templates grow the canvas instead.
//
// # Bounded Title
//
// A fixed-height template can only hold so many title lines. [Compute]
// caps the line count at the smaller of [Template.MaxTitleLines] and the
// capacity left by the fixed elements, dropping the surplus and ending the
// last kept line with an ellipsis. A template whose fixed elements leave no
// room for a single line is rejected with LAYOUT_OVERFLOW.
//
// # Presets
//
//   - [Card]: the 58mm x 40mm print card packaged into the PDF
//   - [Preview]: the wider on-screen pass with natural height
//
// [pass.Input]: github.com/matzehuels/eventpass/pkg/pass
package layout
