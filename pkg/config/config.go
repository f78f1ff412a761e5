// Package config loads storeweaver settings.
//
// Settings come from three layers, later ones winning:
//
//  1. built-in defaults ([Default])
//  2. a TOML file with [engine], [cache] and [server] tables
//  3. environment variables prefixed STOREWEAVER_, optionally read from a
//     .env file first
//
// A minimal file:
//
//	[engine]
//	catalog  = "output/modules_catalog.json"
//	viewport = "narrow"
//
//	[cache]
//	backend = "redis"
//	redis_url = "redis://localhost:6379/0"
//
// The same settings from the environment:
//
//	STOREWEAVER_ENGINE_VIEWPORT=narrow
//	STOREWEAVER_CACHE_BACKEND=redis
//	STOREWEAVER_CACHE_REDIS_URL=redis://localhost:6379/0
package config

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"

	"github.com/matzehuels/storeweaver/pkg/core/compose"
	"github.com/matzehuels/storeweaver/pkg/core/score"
	errs "github.com/matzehuels/storeweaver/pkg/errors"
)

// EnvPrefix prefixes every environment variable.
const EnvPrefix = "STOREWEAVER_"

// DefaultFile is looked up in the working directory when no file is given.
const DefaultFile = "storeweaver.toml"

// Strategy names.
const (
	StrategyZones  = "zones"
	StrategySimple = "simple"
)

// Cache backends.
const (
	BackendNone   = "none"
	BackendFile   = "file"
	BackendMemory = "memory"
	BackendRedis  = "redis"
)

// Config is the full settings tree.
type Config struct {
	Engine Engine `toml:"engine" envPrefix:"ENGINE_"`
	Cache  Cache  `toml:"cache" envPrefix:"CACHE_"`
	Server Server `toml:"server" envPrefix:"SERVER_"`
}

// Engine configures layout generation.
type Engine struct {
	Catalog       string  `toml:"catalog" env:"CATALOG"`
	Viewport      string  `toml:"viewport" env:"VIEWPORT"`
	Strategy      string  `toml:"strategy" env:"STRATEGY"`
	MinContent    int     `toml:"min_content" env:"MIN_CONTENT"`
	MaxContent    int     `toml:"max_content" env:"MAX_CONTENT"`
	MaxIterations int     `toml:"max_iterations" env:"MAX_ITERATIONS"`
	EnhancedFit   bool    `toml:"enhanced_fit" env:"ENHANCED_FIT"`
	Metrics       string  `toml:"metrics" env:"METRICS"`
	Engagement    float64 `toml:"engagement_weight" env:"ENGAGEMENT_WEIGHT"`

	// Categories replaces the default content distribution. File only.
	Categories []compose.Category `toml:"categories" env:"-"`
}

// Cache configures the layout cache.
type Cache struct {
	Backend  string        `toml:"backend" env:"BACKEND"`
	Dir      string        `toml:"dir" env:"DIR"`
	Entries  int           `toml:"entries" env:"ENTRIES"`
	RedisURL string        `toml:"redis_url" env:"REDIS_URL"`
	Prefix   string        `toml:"prefix" env:"PREFIX"`
	TTL      time.Duration `toml:"ttl" env:"TTL"`
}

// Server configures the HTTP API.
type Server struct {
	Addr         string        `toml:"addr" env:"ADDR"`
	ReadTimeout  time.Duration `toml:"read_timeout" env:"READ_TIMEOUT"`
	WriteTimeout time.Duration `toml:"write_timeout" env:"WRITE_TIMEOUT"`
	MaxBodyBytes int64         `toml:"max_body_bytes" env:"MAX_BODY_BYTES"`
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		Engine: Engine{
			Catalog:       "output/modules_catalog.json",
			Viewport:      string(score.ViewportWide),
			Strategy:      StrategyZones,
			MinContent:    compose.DefaultMinContent,
			MaxContent:    compose.DefaultMaxContent,
			MaxIterations: compose.DefaultMaxIterations,
			Engagement:    1.0,
		},
		Cache: Cache{
			Backend: BackendFile,
			Dir:     defaultCacheDir(),
			Entries: 1024,
			Prefix:  "storeweaver:",
			TTL:     7 * 24 * time.Hour,
		},
		Server: Server{
			Addr:         ":8080",
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 30 * time.Second,
			MaxBodyBytes: 8 << 20,
		},
	}
}

func defaultCacheDir() string {
	if dir, err := os.UserCacheDir(); err == nil {
		return dir + string(os.PathSeparator) + "storeweaver"
	}
	return ".storeweaver-cache"
}

// Load applies the file at path, or [DefaultFile] when path is empty and
// that file exists, then the environment. envFiles are loaded into the
// process environment first; missing ones are skipped. Variables already
// set are never overwritten by a .env file.
func Load(path string, envFiles ...string) (Config, error) {
	cfg := Default()

	explicit := path != ""
	if !explicit {
		path = DefaultFile
	}
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		switch {
		case errors.Is(err, fs.ErrNotExist) && !explicit:
		case errors.Is(err, fs.ErrNotExist):
			return Config{}, errs.Wrap(errs.ErrCodeNotFound, err, "config file %s", path)
		default:
			return Config{}, errs.Wrap(errs.ErrCodeInvalidConfig, err, "parse %s", path)
		}
	}

	for _, f := range envFiles {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Config{}, errs.Wrap(errs.ErrCodeInvalidConfig, err, "load %s", f)
		}
	}
	if err := env.ParseWithOptions(&cfg, env.Options{Prefix: EnvPrefix}); err != nil {
		return Config{}, errs.Wrap(errs.ErrCodeInvalidConfig, err, "parse environment")
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate reports the first invalid setting.
func (c Config) Validate() error {
	if _, err := score.ParseViewport(c.Engine.Viewport); err != nil {
		return err
	}
	switch c.Engine.Strategy {
	case StrategyZones, StrategySimple:
	default:
		return errs.New(errs.ErrCodeInvalidConfig, "unknown strategy %q (want %s or %s)", c.Engine.Strategy, StrategyZones, StrategySimple)
	}
	if c.Engine.MinContent < 0 || c.Engine.MaxContent < c.Engine.MinContent {
		return errs.New(errs.ErrCodeInvalidConfig, "content bounds [%d, %d] are invalid", c.Engine.MinContent, c.Engine.MaxContent)
	}
	if c.Engine.Engagement < 0 {
		return errs.New(errs.ErrCodeInvalidConfig, "engagement weight must not be negative")
	}

	switch c.Cache.Backend {
	case BackendNone, BackendMemory:
	case BackendFile:
		if c.Cache.Dir == "" {
			return errs.New(errs.ErrCodeInvalidConfig, "file cache needs a directory")
		}
	case BackendRedis:
		if c.Cache.RedisURL == "" {
			return errs.New(errs.ErrCodeInvalidConfig, "redis cache needs redis_url")
		}
	default:
		return errs.New(errs.ErrCodeInvalidConfig, "unknown cache backend %q", c.Cache.Backend)
	}

	if c.Server.Addr == "" {
		return errs.New(errs.ErrCodeInvalidConfig, "server address is required")
	}
	return nil
}

// ViewportValue returns the parsed viewport. Call after [Config.Validate].
func (e Engine) ViewportValue() score.Viewport {
	v, _ := score.ParseViewport(e.Viewport)
	return v
}

// ComposeStrategy builds the composer strategy for these settings.
func (e Engine) ComposeStrategy() compose.Strategy {
	s := compose.DefaultStrategy()
	if e.Strategy == StrategySimple {
		s = compose.SimpleStrategy()
	}
	s.EnhancedFit = e.EnhancedFit
	if e.MinContent > 0 {
		s.MinContent = e.MinContent
	}
	if e.MaxContent > 0 {
		s.MaxContent = e.MaxContent
	}
	if e.MaxIterations > 0 {
		s.MaxIterations = e.MaxIterations
	}
	if len(e.Categories) > 0 {
		s.Categories = e.Categories
	}
	return s
}

// Encode writes the settings as TOML.
func (c Config) Encode(w io.Writer) error {
	if err := toml.NewEncoder(w).Encode(c); err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	return nil
}
