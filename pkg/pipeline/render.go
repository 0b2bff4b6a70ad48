package pipeline

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/certforge/certforge/pkg/cache"
	"github.com/certforge/certforge/pkg/design"
	"github.com/certforge/certforge/pkg/fonts"
	"github.com/certforge/certforge/pkg/layout"
	"github.com/certforge/certforge/pkg/observability"
	"github.com/certforge/certforge/pkg/render/background"
	"github.com/certforge/certforge/pkg/render/sink"
)

// DesignOutput is the rendering of one design of a batch.
type DesignOutput struct {
	// Index is the design's position in the batch.
	Index  int
	Design *design.Design

	Ops       []layout.Op
	Artifacts map[string][]byte

	// Err is set when the design was skipped.
	Err error

	LayoutHit bool
	RenderHit bool
}

// FileName returns the download name of the output in format.
func (o *DesignOutput) FileName(format string) string {
	return FileName(o.Index, format)
}

// BatchOutput collects the outputs of RenderBatch in batch order.
type BatchOutput struct {
	Outputs  []DesignOutput
	Duration time.Duration
}

// Succeeded returns the outputs that rendered.
func (b *BatchOutput) Succeeded() []DesignOutput {
	var out []DesignOutput
	for _, o := range b.Outputs {
		if o.Err == nil {
			out = append(out, o)
		}
	}
	return out
}

// Failed returns the outputs that were skipped.
func (b *BatchOutput) Failed() []DesignOutput {
	var out []DesignOutput
	for _, o := range b.Outputs {
		if o.Err != nil {
			out = append(out, o)
		}
	}
	return out
}

// RenderBatch renders every design of batch concurrently.
//
// A design that fails layout or rendering is recorded with its error and
// skipped; the others are unaffected. The returned error is non-nil only
// for invalid options or a cancelled context.
func (r *Runner) RenderBatch(ctx context.Context, batch *design.Batch, opts RenderOptions) (*BatchOutput, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}
	if batch == nil {
		batch = &design.Batch{}
	}
	if err := r.prepareBackground(&opts); err != nil {
		return nil, err
	}

	start := time.Now()
	out := &BatchOutput{Outputs: make([]DesignOutput, len(batch.Designs))}

	g, gctx := errgroup.WithContext(ctx)
	if opts.Workers > 0 {
		g.SetLimit(opts.Workers)
	}
	for i := range batch.Designs {
		d := &batch.Designs[i]
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			o := r.renderOne(gctx, i, d, opts)
			if o.Err != nil {
				r.Logger.Warn("skipping design", "id", d.ID, "name", d.Name, "error", o.Err)
			}
			out.Outputs[i] = o
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	out.Duration = time.Since(start)
	r.Logger.Info("rendered designs",
		"designs", len(batch.Designs),
		"failed", len(out.Failed()),
		"formats", opts.Formats,
		"duration", out.Duration)
	return out, nil
}

// RenderDesign renders a single design.
func (r *Runner) RenderDesign(ctx context.Context, d *design.Design, opts RenderOptions) (*DesignOutput, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}
	if err := r.prepareBackground(&opts); err != nil {
		return nil, err
	}
	o := r.renderOne(ctx, 0, d, opts)
	if o.Err != nil {
		return nil, o.Err
	}
	return &o, nil
}

// prepareBackground embeds the raster background for SVG output once per
// call instead of once per design.
func (r *Runner) prepareBackground(opts *RenderOptions) error {
	if opts.Background == nil || opts.BackgroundURL != "" || !opts.wants(FormatSVG) {
		return nil
	}
	data, err := background.EncodeJPEG(opts.Background)
	if err != nil {
		return err
	}
	opts.BackgroundURL = background.DataURL("image/jpeg", data)
	return nil
}

func (r *Runner) renderOne(ctx context.Context, index int, d *design.Design, opts RenderOptions) DesignOutput {
	o := DesignOutput{Index: index, Design: d, Artifacts: make(map[string][]byte, len(opts.Formats))}

	faces := fonts.NewFaces()
	defer faces.Close()

	lr, err := r.ComputeLayout(ctx, d, opts, faces)
	if err != nil {
		o.Err = fmt.Errorf("layout: %w", err)
		return o
	}
	o.Ops, o.LayoutHit = lr.Ops, lr.CacheHit

	cacheable := opts.Background == nil || opts.BackgroundHash != ""
	o.RenderHit = cacheable
	for _, format := range opts.Formats {
		kopts := cache.ArtifactKeyOpts{Format: format, BackgroundHash: opts.BackgroundHash}
		if format == FormatJSON {
			kopts.DesignID, kopts.DesignName = d.ID, d.Name
		}
		key := r.Keyer.ArtifactKey(lr.Hash, kopts)
		if cacheable {
			if data, ok := r.cacheGet(ctx, "artifact", key); ok {
				o.Artifacts[format] = data
				continue
			}
		}
		o.RenderHit = false

		data, err := r.renderFormat(ctx, d, lr.Ops, format, opts, faces)
		if err != nil {
			o.Err = fmt.Errorf("render %s: %w", format, err)
			return o
		}
		o.Artifacts[format] = data
		if cacheable {
			r.cacheSet(ctx, "artifact", key, data, r.ArtifactTTL)
		}
	}
	return o
}

func (r *Runner) renderFormat(ctx context.Context, d *design.Design, ops []layout.Op, format string, opts RenderOptions, faces *fonts.Faces) ([]byte, error) {
	hooks := observability.Pipeline()
	hooks.OnRenderStart(ctx, d.ID, format)
	start := time.Now()

	var data []byte
	var err error
	switch format {
	case FormatPNG:
		pngOpts := []sink.PNGOption{sink.WithFaces(faces)}
		if opts.Background != nil {
			pngOpts = append(pngOpts, sink.WithBackground(opts.Background))
		}
		data, err = sink.RenderPNG(ops, opts.Canvas, pngOpts...)
	case FormatSVG:
		var svgOpts []sink.SVGOption
		if opts.BackgroundURL != "" {
			svgOpts = append(svgOpts, sink.WithSVGBackground(opts.BackgroundURL))
		}
		data = sink.RenderSVG(ops, opts.Canvas, svgOpts...)
	case FormatJSON:
		data, err = sink.RenderJSON(ops, opts.Canvas, sink.WithJSONDesign(d.ID, d.Name))
	default:
		err = ValidateFormat(format)
	}

	hooks.OnRenderComplete(ctx, d.ID, format, len(data), time.Since(start), err)
	return data, err
}
