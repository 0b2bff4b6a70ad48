// Package sink provides output format renderers for certificate layouts.
//
// # Overview
//
// A "sink" replays the ordered [layout.Op] list computed by
// [layout.Compute] onto a concrete surface. This package provides:
//
//   - PNG: raster image drawn with fogleman/gg over the background image
//   - SVG: vector document with drop-shadow filters and dashed borders
//   - JSON: the resolved op list for external tools and debugging
//
// Basic usage:
//
//	ops, err := layout.Compute(d, overrides, canvas, faces)
//	png, err := sink.RenderPNG(ops, canvas, sink.WithBackground(bg))
//	svg := sink.RenderSVG(ops, canvas, sink.WithSVGBackground(dataURL))
//	js, err := sink.RenderJSON(ops, canvas, sink.WithJSONDesign(d.ID, d.Name))
//
// # Text strokes
//
// gg has no stroke-text primitive, so the contrast outline is emulated by
// drawing the text in the stroke color at evenly spaced offsets on a circle
// of the stroke width, then drawing the fill on top. SVG output uses
// paint-order="stroke" for the same effect.
//
// # Concurrency
//
// Sinks hold no package state. Font faces are not safe for concurrent use,
// so every RenderPNG call creates its own face cache unless one is passed
// with [WithFaces].
//
// [layout.Op]: github.com/certforge/certforge/pkg/layout.Op
// [layout.Compute]: github.com/certforge/certforge/pkg/layout.Compute
package sink
