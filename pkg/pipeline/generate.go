package pipeline

import (
	"context"
	"encoding/json"
	"time"

	"github.com/certforge/certforge/pkg/cache"
	"github.com/certforge/certforge/pkg/design"
	cferrors "github.com/certforge/certforge/pkg/errors"
	"github.com/certforge/certforge/pkg/generator"
	"github.com/certforge/certforge/pkg/observability"
	"github.com/certforge/certforge/pkg/recovery"
)

// GenerateResult is the outcome of Generate.
type GenerateResult struct {
	Batch *design.Batch

	// Fallback is true when Batch is the built-in batch. Reason holds the
	// error that caused it.
	Fallback bool
	Reason   error

	// Stage is the recovery stage that produced the accepted text.
	Stage    recovery.Stage
	CacheHit bool
	Duration time.Duration
}

// Generate returns a validated batch for the request.
//
// Missing category or image is the caller's fault and returns INVALID_INPUT.
// Every other failure (no API key, model error, unrecoverable text, invalid
// batch structure) is logged and answered with the fallback batch; Generate
// then returns a nil error.
func (r *Runner) Generate(ctx context.Context, opts GenerateOptions) (*GenerateResult, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	start := time.Now()
	hooks := observability.Pipeline()
	hooks.OnGenerateStart(ctx, opts.Category)

	res := &GenerateResult{}
	key := r.Keyer.BatchKey(opts.Category, cache.Hash(opts.Image), cache.BatchKeyOpts{Model: opts.Model})

	if !opts.Refresh {
		if data, ok := r.cacheGet(ctx, "batch", key); ok {
			var b design.Batch
			if err := json.Unmarshal(data, &b); err == nil && b.Validate() == nil {
				res.Batch, res.CacheHit = &b, true
			}
		}
	}

	if res.Batch == nil {
		batch, stage, err := r.generate(ctx, opts)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			if cferrors.Recoverable(err) {
				r.Logger.Warn("using fallback designs", "category", opts.Category, "error", err)
			} else {
				r.Logger.Error("generation failed unexpectedly; using fallback designs", "category", opts.Category, "error", err)
			}
			res.Batch, res.Fallback, res.Reason = design.Fallback(), true, err
		} else {
			res.Batch, res.Stage = batch, stage
			if data, err := json.Marshal(batch); err == nil {
				r.cacheSet(ctx, "batch", key, data, r.BatchTTL)
			}
		}
	}

	res.Duration = time.Since(start)
	hooks.OnGenerateComplete(ctx, opts.Category, len(res.Batch.Designs), res.Fallback, res.Duration, res.Reason)
	r.Logger.Info("generated designs",
		"category", opts.Category,
		"designs", len(res.Batch.Designs),
		"fallback", res.Fallback,
		"cached", res.CacheHit,
		"duration", res.Duration)
	return res, nil
}

func (r *Runner) generate(ctx context.Context, opts GenerateOptions) (*design.Batch, recovery.Stage, error) {
	raw, err := r.Generator.Generate(ctx, generator.Request{
		Category: opts.Category,
		Image:    opts.Image,
		MIME:     opts.MIME,
	})
	if err != nil {
		return nil, "", err
	}
	r.Logger.Debug("model answered", "generator", r.Generator.Name(), "bytes", len(raw))

	batch, stage, err := r.Recover(ctx, raw)
	if err != nil {
		return nil, stage, err
	}
	return batch, stage, nil
}

// Recover turns raw model text into a validated, sanitized batch. The
// recovery trace is logged at debug level.
func (r *Runner) Recover(ctx context.Context, raw string) (*design.Batch, recovery.Stage, error) {
	text, trace, err := recovery.RecoverWithTrace(raw)
	for _, o := range trace {
		r.Logger.Debug("recovery stage", "stage", o.Stage, "in", o.InBytes, "out", o.OutBytes, "accepted", o.Accepted)
	}
	observability.Pipeline().OnRecover(ctx, string(trace.Final()), len(raw), err)
	if err != nil {
		return nil, "", err
	}

	batch, err := design.ParseBatch(text)
	if err != nil {
		return nil, trace.Final(), err
	}
	return batch, trace.Final(), nil
}
