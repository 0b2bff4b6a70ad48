package pipeline

import (
	"context"
	"time"

	"github.com/charmbracelet/log"

	"github.com/certforge/certforge/pkg/cache"
	"github.com/certforge/certforge/pkg/generator"
	"github.com/certforge/certforge/pkg/observability"
)

// Runner executes the pipeline with caching.
//
// A Runner holds no per-request state; one Runner may serve concurrent
// requests.
type Runner struct {
	Generator generator.Generator
	Cache     cache.Cache
	Keyer     cache.Keyer
	Logger    *log.Logger

	BatchTTL    time.Duration
	LayoutTTL   time.Duration
	ArtifactTTL time.Duration
}

// NewRunner creates a runner.
// A nil generator always fails with NO_API_KEY, so Generate serves the
// fallback batch. A nil cache disables caching and a nil keyer means the
// DefaultKeyer.
func NewRunner(gen generator.Generator, c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if gen == nil {
		gen = generator.Unavailable{}
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Generator:   gen,
		Cache:       c,
		Keyer:       keyer,
		Logger:      logger,
		BatchTTL:    cache.TTLBatch,
		LayoutTTL:   cache.TTLLayout,
		ArtifactTTL: cache.TTLArtifact,
	}
}

// Close releases the cache.
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

// cacheGet reads key and reports the outcome to the cache hooks. Cache
// errors are logged and treated as misses.
func (r *Runner) cacheGet(ctx context.Context, keyType, key string) ([]byte, bool) {
	data, hit, err := r.Cache.Get(ctx, key)
	if err != nil {
		r.Logger.Warn("cache read failed", "type", keyType, "error", err)
		hit = false
	}
	if hit {
		observability.Cache().OnCacheHit(ctx, keyType)
		return data, true
	}
	observability.Cache().OnCacheMiss(ctx, keyType)
	return nil, false
}

func (r *Runner) cacheSet(ctx context.Context, keyType, key string, data []byte, ttl time.Duration) {
	if err := r.Cache.Set(ctx, key, data, ttl); err != nil {
		r.Logger.Warn("cache write failed", "type", keyType, "error", err)
		return
	}
	observability.Cache().OnCacheSet(ctx, keyType, len(data))
}
