// Package pkg provides the core libraries of certforge.
//
// # Overview
//
// certforge asks a generative model for certificate designs that suit an
// uploaded background, repairs the model's loosely structured answer into
// valid JSON, and lays every design out inside the background's safe zone
// before rendering it. The pkg directory is organized into four areas:
//
//  1. Core logic: [recovery], [design], [layout], [fonts], [render]
//  2. The model boundary: [generator]
//  3. Orchestration: [pipeline]
//  4. Infrastructure: [cache], [config], [errors], [observability], [buildinfo]
//
// # Architecture
//
// The data flow of one request:
//
//	background image + category
//	         ↓
//	    [generator] (model answer, free-form text)
//	         ↓
//	    [recovery] (JSON object text)
//	         ↓
//	    [design] (decoded, validated, sanitized batch; fallback on failure)
//	         ↓
//	    [layout] (ordered draw ops inside the safe zone)
//	         ↓
//	    [render/sink] (PNG, SVG or JSON)
//
// # Quick Start
//
// Recover a batch from a saved answer and render its first design:
//
//	text, err := recovery.Recover(answer)
//	batch, err := design.ParseBatch(text)
//
//	faces := fonts.NewFaces()
//	ops, err := layout.Compute(&batch.Designs[0], design.Overrides{
//	    RecipientName: "Ada Lovelace",
//	}, layout.ReferenceCanvas, faces)
//
//	png, err := sink.RenderPNG(ops, layout.ReferenceCanvas, sink.WithFaces(faces))
//
// For the full pipeline with caching, fallback and concurrent rendering use
// [pipeline.Runner].
//
// # Error Handling
//
// Every package reports failures as [errors.Error] values carrying a
// machine-readable code. None of the core conditions is fatal: a batch that
// cannot be recovered is replaced by [design.Fallback], and a design that
// cannot be laid out is skipped.
//
// [recovery]: github.com/certforge/certforge/pkg/recovery
// [design]: github.com/certforge/certforge/pkg/design
// [design.Fallback]: github.com/certforge/certforge/pkg/design.Fallback
// [layout]: github.com/certforge/certforge/pkg/layout
// [fonts]: github.com/certforge/certforge/pkg/fonts
// [render]: github.com/certforge/certforge/pkg/render
// [render/sink]: github.com/certforge/certforge/pkg/render/sink
// [generator]: github.com/certforge/certforge/pkg/generator
// [pipeline]: github.com/certforge/certforge/pkg/pipeline
// [pipeline.Runner]: github.com/certforge/certforge/pkg/pipeline.Runner
// [cache]: github.com/certforge/certforge/pkg/cache
// [config]: github.com/certforge/certforge/pkg/config
// [errors]: github.com/certforge/certforge/pkg/errors
// [errors.Error]: github.com/certforge/certforge/pkg/errors.Error
// [observability]: github.com/certforge/certforge/pkg/observability
// [buildinfo]: github.com/certforge/certforge/pkg/buildinfo
package pkg
