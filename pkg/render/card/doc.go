// Package card draws event passes.
//
// # Overview
//
// A pass is described once as a [canvas.Scene] by [Build] and then handed to
// a sink: [Render] rasterizes it at the template's integer scale and keeps the
// scene so the same card can also be written as SVG.
//
// Paint order is fixed:
//
//  1. Bordered background covering the whole card
//  2. Logo, fitted into its box with the aspect ratio kept (optional)
//  3. Identity column: greeting, name, mobile, email
//  4. QR box with the symbol and the registration code centred below it
//  5. Event title, clipped to its rectangle
//  6. Start Date, End Date and Venue rows
//  7. Registration footer in UTC
//
// # Purity
//
// Nothing here touches the network. The logo arrives already decoded (see
// package logo), so rendering the same input twice yields identical bytes.
//
// [canvas.Scene]: github.com/matzehuels/eventpass/pkg/render/canvas
package card
