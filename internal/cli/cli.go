package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/certforge/certforge/pkg/cache"
	"github.com/certforge/certforge/pkg/config"
	"github.com/certforge/certforge/pkg/design"
	"github.com/certforge/certforge/pkg/generator"
	"github.com/certforge/certforge/pkg/pipeline"
)

// =============================================================================
// Constants
// =============================================================================

// appName is the application name used for display.
const appName = "certforge"

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	configPath string
	cfg        *config.Config
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{Logger: newLogger(w, level)}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// config loads the configuration once per process.
func (c *CLI) config() (*config.Config, error) {
	if c.cfg != nil {
		return c.cfg, nil
	}
	cfg, err := config.Load(c.configPath)
	if err != nil {
		return nil, err
	}
	c.cfg = cfg
	return cfg, nil
}

// =============================================================================
// Runner Factory
// =============================================================================

// newRunner creates a pipeline runner from the configuration.
func (c *CLI) newRunner(ctx context.Context, noCache bool) (*pipeline.Runner, error) {
	cfg, err := c.config()
	if err != nil {
		return nil, err
	}
	ch, err := newCache(ctx, cfg, noCache)
	if err != nil {
		return nil, err
	}
	logger := loggerFromContext(ctx)
	gen, err := newGenerator(cfg, logger)
	if err != nil {
		ch.Close()
		return nil, err
	}

	keyer := cache.NewScopedKeyer(cache.NewDefaultKeyer(), cfg.Cache.Prefix)
	r := pipeline.NewRunner(gen, ch, keyer, logger)
	r.BatchTTL = cfg.Cache.BatchTTL.Duration
	r.ArtifactTTL = cfg.Cache.ArtifactTTL.Duration
	return r, nil
}

// newCache opens the configured backend. A file cache that cannot be
// created degrades to no caching. Key prefixes come from the runner's
// keyer, so the Redis backend adds none of its own.
func newCache(ctx context.Context, cfg *config.Config, noCache bool) (cache.Cache, error) {
	if noCache {
		return cache.NewNullCache(), nil
	}
	switch cfg.Cache.Backend {
	case config.CacheNone:
		return cache.NewNullCache(), nil
	case config.CacheRedis:
		rc, err := cache.NewRedisCache(ctx, cfg.Cache.RedisURL, cache.WithRedisPrefix(""))
		if err != nil {
			return nil, err
		}
		return rc, nil
	}
	fc, err := cache.NewFileCache(cfg.Cache.Dir)
	if err != nil {
		return cache.NewNullCache(), nil
	}
	return fc, nil
}

// newGenerator returns the Gemini client, or a generator that always fails
// with NO_API_KEY so the pipeline serves the fallback batch.
func newGenerator(cfg *config.Config, logger *log.Logger) (generator.Generator, error) {
	if !cfg.HasAPIKey() {
		return generator.Unavailable{}, nil
	}
	g, err := generator.NewGemini(cfg.Generator.APIKey,
		generator.WithModel(cfg.Generator.Model),
		generator.WithBaseURL(cfg.Generator.BaseURL),
		generator.WithTimeout(cfg.Generator.Timeout.Duration),
		generator.WithLogger(logger),
	)
	if err != nil {
		return nil, err
	}
	return g, nil
}

// =============================================================================
// Input Helpers
// =============================================================================

// readInput reads the named file, or stdin when name is empty or "-".
func readInput(stdin io.Reader, name string) ([]byte, error) {
	if name == "" || name == "-" {
		return io.ReadAll(stdin)
	}
	data, err := os.ReadFile(name)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", name, err)
	}
	return data, nil
}

// loadBatch reads a batch from a file or stdin. Clean batch JSON and raw
// model answers are both accepted.
func loadBatch(ctx context.Context, r *pipeline.Runner, stdin io.Reader, name string) (*design.Batch, error) {
	data, err := readInput(stdin, name)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(string(data)) == "" {
		return nil, fmt.Errorf("no batch input")
	}
	batch, _, err := r.Recover(ctx, string(data))
	if err != nil {
		return nil, err
	}
	return batch, nil
}

// selectDesigns narrows batch to the design with the given id. Zero keeps
// the whole batch.
func selectDesigns(batch *design.Batch, id int) (*design.Batch, error) {
	if id == 0 {
		return batch, nil
	}
	d, ok := batch.Find(id)
	if !ok {
		return nil, fmt.Errorf("no design with id %d", id)
	}
	return &design.Batch{Designs: []design.Design{*d}}, nil
}
