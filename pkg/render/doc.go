// Package render groups the certificate rendering packages.
//
// # Overview
//
// Rendering is split in two:
//
//   - [background]: loading, validating and fitting the background image,
//     and drawing the built-in sample background
//   - [sink]: replaying the draw ops computed by the layout engine onto a
//     PNG raster, an SVG document or a JSON op list
//
// Neither package decides where text goes. Positions, strokes, shadows and
// the border rectangle are all resolved beforehand by layout.Compute, so
// every sink draws the same certificate.
//
//	ops, err := layout.Compute(d, overrides, canvas, faces)
//	png, err := sink.RenderPNG(ops, canvas, sink.WithBackground(bg))
//
// [background]: github.com/certforge/certforge/pkg/render/background
// [sink]: github.com/certforge/certforge/pkg/render/sink
package render
