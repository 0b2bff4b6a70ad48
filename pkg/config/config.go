// Package config loads certforge settings.
//
// Settings are layered, later sources winning:
//
//  1. built-in defaults ([Default])
//  2. a TOML file, by default $XDG_CONFIG_HOME/certforge/config.toml
//  3. a .env file in the working directory, read without touching the process environment
//  4. environment variables
//
// Example config.toml:
//
//	[generator]
//	model = "gemini-2.0-flash"
//	timeout = "60s"
//
//	[cache]
//	backend = "redis"
//	redis_url = "redis://localhost:6379/0"
//
// The API key is normally supplied through GEMINI_API_KEY rather than the file.
package config

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"

	cferrors "github.com/certforge/certforge/pkg/errors"
)

const appName = "certforge"

// Cache backends.
const (
	CacheFile  = "file"
	CacheRedis = "redis"
	CacheNone  = "none"
)

// Environment variables read by Load.
const (
	EnvAPIKey        = "GEMINI_API_KEY"
	EnvAPIKeyAlt     = "GOOGLE_AI_API_KEY"
	EnvModel         = "CERTFORGE_MODEL"
	EnvBaseURL       = "CERTFORGE_GEMINI_URL"
	EnvAddr          = "CERTFORGE_ADDR"
	EnvCacheBackend  = "CERTFORGE_CACHE"
	EnvCacheDir      = "CERTFORGE_CACHE_DIR"
	EnvRedisURL      = "CERTFORGE_REDIS_URL"
	EnvMaxUpload     = "CERTFORGE_MAX_UPLOAD"
	EnvCanvasWidth   = "CERTFORGE_WIDTH"
	EnvCanvasHeight  = "CERTFORGE_HEIGHT"
	EnvRenderWorkers = "CERTFORGE_WORKERS"
)

// Config is the complete certforge configuration.
type Config struct {
	Generator GeneratorConfig `toml:"generator"`
	Canvas    CanvasConfig    `toml:"canvas"`
	Server    ServerConfig    `toml:"server"`
	Cache     CacheConfig     `toml:"cache"`
	Render    RenderConfig    `toml:"render"`
}

// GeneratorConfig configures the model client.
type GeneratorConfig struct {
	APIKey  string   `toml:"api_key"`
	Model   string   `toml:"model"`
	BaseURL string   `toml:"base_url"`
	Timeout Duration `toml:"timeout"`
}

// CanvasConfig is the output size in pixels.
type CanvasConfig struct {
	Width  int `toml:"width"`
	Height int `toml:"height"`

	// MaxSide bounds per-request canvas overrides on either side.
	MaxSide int `toml:"max_side"`
}

// ServerConfig configures the HTTP server.
type ServerConfig struct {
	Addr           string   `toml:"addr"`
	MaxUploadBytes int64    `toml:"max_upload_bytes"`
	ReadTimeout    Duration `toml:"read_timeout"`
	WriteTimeout   Duration `toml:"write_timeout"`
}

// CacheConfig selects and tunes the cache backend.
type CacheConfig struct {
	Backend     string   `toml:"backend"`
	Dir         string   `toml:"dir"`
	RedisURL    string   `toml:"redis_url"`
	Prefix      string   `toml:"prefix"`
	BatchTTL    Duration `toml:"batch_ttl"`
	ArtifactTTL Duration `toml:"artifact_ttl"`
}

// RenderConfig bounds batch rendering.
type RenderConfig struct {
	// Workers caps concurrently rendered designs. Zero means one per design.
	Workers int `toml:"workers"`
}

// Duration is a time.Duration written as a Go duration string ("90s").
type Duration struct {
	time.Duration
}

// UnmarshalText parses a duration string.
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

// MarshalText formats the duration.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Generator: GeneratorConfig{
			Model:   "gemini-2.0-flash",
			BaseURL: "https://generativelanguage.googleapis.com",
			Timeout: Duration{60 * time.Second},
		},
		Canvas: CanvasConfig{Width: 800, Height: 600, MaxSide: 4096},
		Server: ServerConfig{
			Addr:           ":8080",
			MaxUploadBytes: 5 << 20,
			ReadTimeout:    Duration{30 * time.Second},
			WriteTimeout:   Duration{120 * time.Second},
		},
		Cache: CacheConfig{
			Backend:     CacheFile,
			Prefix:      "certforge:",
			BatchTTL:    Duration{24 * time.Hour},
			ArtifactTTL: Duration{7 * 24 * time.Hour},
		},
	}
}

// Load reads the configuration. An empty path means DefaultPath, which may
// be absent; an explicit path must exist.
func Load(path string) (*Config, error) {
	return load(path, ".env", os.LookupEnv)
}

func load(path, envFile string, lookup func(string) (string, bool)) (*Config, error) {
	cfg := Default()

	explicit := path != ""
	if !explicit {
		if p, err := DefaultPath(); err == nil {
			path = p
		}
	}
	if path != "" {
		if err := cfg.readFile(path); err != nil {
			if !os.IsNotExist(err) {
				return nil, err
			}
			if explicit {
				return nil, cferrors.Wrap(cferrors.ErrCodeFileNotFound, err, "config %s", path)
			}
		}
	}

	if envFile != "" {
		if _, err := os.Stat(envFile); err == nil {
			dotenv, err := godotenv.Read(envFile)
			if err != nil {
				return nil, cferrors.Wrap(cferrors.ErrCodeInvalidInput, err, "load %s", envFile)
			}
			lookup = withFallback(lookup, dotenv)
		}
	}

	if err := cfg.applyEnv(lookup); err != nil {
		return nil, err
	}
	if cfg.Cache.Dir == "" {
		if dir, err := CacheDir(); err == nil {
			cfg.Cache.Dir = dir
		}
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// withFallback consults env first and the .env values second, so the
// process environment always wins.
func withFallback(env func(string) (string, bool), dotenv map[string]string) func(string) (string, bool) {
	return func(key string) (string, bool) {
		if v, ok := env(key); ok {
			return v, true
		}
		v, ok := dotenv[key]
		return v, ok
	}
}

func (c *Config) readFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return err
		}
		return cferrors.Wrap(cferrors.ErrCodeInvalidInput, err, "read config %s", path)
	}
	if _, err := toml.Decode(string(data), c); err != nil {
		return cferrors.Wrap(cferrors.ErrCodeInvalidInput, err, "parse config %s", path)
	}
	return nil
}

func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	str := func(key string, dst *string) {
		if v, ok := lookup(key); ok && strings.TrimSpace(v) != "" {
			*dst = strings.TrimSpace(v)
		}
	}
	num := func(key string, dst *int) error {
		v, ok := lookup(key)
		if !ok || v == "" {
			return nil
		}
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return cferrors.Wrap(cferrors.ErrCodeInvalidInput, err, "%s", key)
		}
		*dst = n
		return nil
	}

	str(EnvAPIKeyAlt, &c.Generator.APIKey)
	str(EnvAPIKey, &c.Generator.APIKey)
	str(EnvModel, &c.Generator.Model)
	str(EnvBaseURL, &c.Generator.BaseURL)
	str(EnvAddr, &c.Server.Addr)
	str(EnvCacheDir, &c.Cache.Dir)
	if v, ok := lookup(EnvRedisURL); ok && v != "" {
		c.Cache.RedisURL = v
		c.Cache.Backend = CacheRedis
	}
	str(EnvCacheBackend, &c.Cache.Backend)

	if err := num(EnvCanvasWidth, &c.Canvas.Width); err != nil {
		return err
	}
	if err := num(EnvCanvasHeight, &c.Canvas.Height); err != nil {
		return err
	}
	if err := num(EnvRenderWorkers, &c.Render.Workers); err != nil {
		return err
	}
	var upload int
	if err := num(EnvMaxUpload, &upload); err != nil {
		return err
	}
	if upload > 0 {
		c.Server.MaxUploadBytes = int64(upload)
	}
	return nil
}

// Validate checks cross-field constraints.
func (c *Config) Validate() error {
	if c.Canvas.Width <= 0 || c.Canvas.Height <= 0 {
		return cferrors.New(cferrors.ErrCodeInvalidCanvasGeometry, "canvas %dx%d: width and height must be positive", c.Canvas.Width, c.Canvas.Height)
	}
	if c.Canvas.MaxSide <= 0 {
		return cferrors.New(cferrors.ErrCodeInvalidCanvasGeometry, "canvas max_side must be positive")
	}
	if c.Canvas.Width > c.Canvas.MaxSide || c.Canvas.Height > c.Canvas.MaxSide {
		return cferrors.New(cferrors.ErrCodeInvalidCanvasGeometry, "canvas %dx%d exceeds max_side %d", c.Canvas.Width, c.Canvas.Height, c.Canvas.MaxSide)
	}
	switch c.Cache.Backend {
	case CacheFile, CacheNone:
	case CacheRedis:
		if c.Cache.RedisURL == "" {
			return cferrors.New(cferrors.ErrCodeInvalidInput, "cache backend redis needs redis_url")
		}
	default:
		return cferrors.New(cferrors.ErrCodeInvalidInput, "unknown cache backend %q (want file, redis or none)", c.Cache.Backend)
	}
	if c.Server.MaxUploadBytes <= 0 {
		return cferrors.New(cferrors.ErrCodeInvalidInput, "max_upload_bytes must be positive")
	}
	if c.Render.Workers < 0 {
		return cferrors.New(cferrors.ErrCodeInvalidInput, "render workers must not be negative")
	}
	if c.Generator.BaseURL != "" {
		if err := cferrors.ValidateURL(c.Generator.BaseURL); err != nil {
			return err
		}
	}
	return nil
}

// HasAPIKey reports whether a generator credential is configured.
func (c *Config) HasAPIKey() bool {
	return strings.TrimSpace(c.Generator.APIKey) != ""
}

// =============================================================================
// Paths
// =============================================================================

// DefaultPath returns $XDG_CONFIG_HOME/certforge/config.toml, falling back
// to ~/.config.
func DefaultPath() (string, error) {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return filepath.Join(dir, appName, "config.toml"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", appName, "config.toml"), nil
}

// CacheDir returns $XDG_CACHE_HOME/certforge, falling back to ~/.cache.
func CacheDir() (string, error) {
	if dir := os.Getenv("XDG_CACHE_HOME"); dir != "" {
		return filepath.Join(dir, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", appName), nil
}
