// Package pkg provides the libraries behind eventpass: registration codes,
// pass rendering and check-in.
//
// # Overview
//
// A registration becomes a printable pass in five steps, each in its own
// package:
//
//  1. [code] - Draw a unique 12-character registration code
//  2. [barcode] - Encode the code as a QR symbol
//  3. [render/card/layout] - Place title, rows, QR and footer on the card
//  4. [render/card] - Draw the card onto a raster image and a vector scene
//  5. [document] - Package the raster as a 58×40mm single-page PDF
//
// [pipeline] chains the steps, caches their output and hands finished passes
// to a delivery channel. [registration] stores attendees and drives the
// pipeline; [server] exposes both over HTTP.
//
// # Architecture
//
//	registration.Request
//	         ↓
//	    [registration] (validate, allocate code, store)
//	         ↓
//	    [pass] Input snapshot
//	         ↓
//	    [pipeline] encode → layout → render → package
//	         ↓
//	    PDF / PNG / SVG artifacts
//
// # Quick Start
//
//	import (
//	    "context"
//	    "github.com/matzehuels/eventpass/pkg/pass"
//	    "github.com/matzehuels/eventpass/pkg/pipeline"
//	)
//
//	runner := pipeline.NewRunner(nil, nil, nil)
//	defer runner.Close()
//
//	res, err := runner.Render(context.Background(), in, pipeline.Options{
//	    Formats: []string{pipeline.FormatPDF, pipeline.FormatPNG},
//	})
//	if err != nil {
//	    return err
//	}
//	pdf := res.Artifacts[pipeline.FormatPDF]
//	os.WriteFile(res.Filename(pipeline.FormatPDF), pdf, 0o644)
//
// # Supporting Packages
//
//   - [errors]: Error codes shared by the CLI and HTTP API
//   - [cache]: Artifact cache backends (file, Redis)
//   - [config]: TOML configuration with EVENTPASS_* overrides
//   - [logo]: Event logo fetching
//   - [observability]: Pipeline and request hooks
//   - [httputil]: HTTP fetching with retries
//   - [fonts]: Embedded Go font family
//   - [buildinfo]: Version information
//
// [code]: github.com/matzehuels/eventpass/pkg/code
// [barcode]: github.com/matzehuels/eventpass/pkg/barcode
// [render/card/layout]: github.com/matzehuels/eventpass/pkg/render/card/layout
// [render/card]: github.com/matzehuels/eventpass/pkg/render/card
// [document]: github.com/matzehuels/eventpass/pkg/document
// [pipeline]: github.com/matzehuels/eventpass/pkg/pipeline
// [registration]: github.com/matzehuels/eventpass/pkg/registration
// [server]: github.com/matzehuels/eventpass/pkg/server
// [pass]: github.com/matzehuels/eventpass/pkg/pass
// [errors]: github.com/matzehuels/eventpass/pkg/errors
// [cache]: github.com/matzehuels/eventpass/pkg/cache
// [config]: github.com/matzehuels/eventpass/pkg/config
// [logo]: github.com/matzehuels/eventpass/pkg/logo
// [observability]: github.com/matzehuels/eventpass/pkg/observability
// [httputil]: github.com/matzehuels/eventpass/pkg/httputil
// [fonts]: github.com/matzehuels/eventpass/pkg/fonts
// [buildinfo]: github.com/matzehuels/eventpass/pkg/buildinfo
package pkg
