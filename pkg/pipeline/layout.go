package pipeline

import (
	"context"
	"encoding/json"
	"time"

	"github.com/certforge/certforge/pkg/cache"
	"github.com/certforge/certforge/pkg/design"
	"github.com/certforge/certforge/pkg/layout"
	"github.com/certforge/certforge/pkg/observability"
)

// LayoutResult is the outcome of ComputeLayout.
type LayoutResult struct {
	Ops      []layout.Op
	Hash     string
	CacheHit bool
}

// ComputeLayout resolves d into draw ops, consulting the layout cache.
// Text is measured with m; a nil m disables cache writes because the ops
// would depend on an unknown measurer.
func (r *Runner) ComputeLayout(ctx context.Context, d *design.Design, opts RenderOptions, m layout.Measurer) (*LayoutResult, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}
	if d == nil {
		return nil, layout.Check(nil)
	}

	designHash, err := cache.HashJSON(d)
	if err != nil {
		return nil, err
	}
	key := r.Keyer.LayoutKey(designHash, cache.LayoutKeyOpts{
		Width:         opts.Canvas.Width,
		Height:        opts.Canvas.Height,
		RecipientName: opts.Overrides.RecipientName,
		Date:          opts.Overrides.Date,
		Signature:     opts.Overrides.Signature,
	})

	if m != nil {
		if data, ok := r.cacheGet(ctx, "layout", key); ok {
			var ops []layout.Op
			if err := json.Unmarshal(data, &ops); err == nil {
				return &LayoutResult{Ops: ops, Hash: cache.Hash(data), CacheHit: true}, nil
			}
		}
	}

	hooks := observability.Pipeline()
	hooks.OnLayoutStart(ctx, d.ID)
	start := time.Now()
	ops, err := layout.Compute(d, opts.Overrides, opts.Canvas, m)
	hooks.OnLayoutComplete(ctx, d.ID, len(ops), time.Since(start), err)
	if err != nil {
		return nil, err
	}

	data, err := json.Marshal(ops)
	if err != nil {
		return nil, err
	}
	if m != nil {
		r.cacheSet(ctx, "layout", key, data, r.LayoutTTL)
	}
	return &LayoutResult{Ops: ops, Hash: cache.Hash(data)}, nil
}
