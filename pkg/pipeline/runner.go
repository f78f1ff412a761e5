package pipeline

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"math/rand/v2"
	"os"
	"slices"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/storeweaver/pkg/cache"
	"github.com/matzehuels/storeweaver/pkg/core/brick"
	"github.com/matzehuels/storeweaver/pkg/core/catalog"
	"github.com/matzehuels/storeweaver/pkg/core/compose"
	"github.com/matzehuels/storeweaver/pkg/core/engagement"
	"github.com/matzehuels/storeweaver/pkg/engine"
	errs "github.com/matzehuels/storeweaver/pkg/errors"
	"github.com/matzehuels/storeweaver/pkg/layout"
	"github.com/matzehuels/storeweaver/pkg/observability"
)

// Cache key kinds reported to observability.CacheHooks.
const (
	keyKindLayout = "layout"
	keyKindBricks = "bricks"
)

// Runner executes the pipeline with caching.
//
// A Runner holds no per-run state, so one Runner can serve concurrent
// requests with different options.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger

	// TTL overrides the per-kind cache lifetimes when positive.
	TTL time.Duration
}

// NewRunner creates a runner. A nil keyer uses cache.DefaultKeyer, a nil
// cache disables caching and a nil logger uses log.Default().
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{Cache: c, Keyer: keyer, Logger: logger}
}

// Execute runs load → generate → group.
//
// When the catalog lacks a mandatory module the partial result is returned
// together with the EMPTY_CATALOG error.
func (r *Runner) Execute(ctx context.Context, opts Options) (*Result, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}
	res := &Result{}

	// Stage 1: Load
	if opts.Catalog == nil {
		start := time.Now()
		cat, hash, err := r.LoadCatalog(ctx, opts.CatalogPath)
		if err != nil {
			return nil, fmt.Errorf("load: %w", err)
		}
		opts.Catalog, opts.CatalogHash = cat, hash
		res.Stats.LoadTime = time.Since(start)
	} else if opts.CatalogHash == "" {
		h, err := HashCatalog(opts.Catalog)
		if err != nil {
			return nil, fmt.Errorf("hash catalog: %w", err)
		}
		opts.CatalogHash = h
	}
	res.CatalogHash = opts.CatalogHash
	res.Stats.Modules = opts.Catalog.Len()

	// Stage 2: Generate
	start := time.Now()
	seq, hit, genErr := r.GenerateWithCacheInfo(ctx, opts)
	if genErr != nil && !errs.Is(genErr, errs.ErrCodeEmptyCatalog) {
		return nil, fmt.Errorf("generate: %w", genErr)
	}
	res.Sequence = seq
	res.CacheInfo.LayoutHit = hit
	res.Stats.GenerateTime = time.Since(start)
	res.Stats.Entries = seq.Len()
	res.Stats.Content = seq.ContentCount()

	opts.Logger.Info("generated layout",
		"viewport", seq.Viewport,
		"seed", seq.Seed,
		"entries", seq.Len(),
		"content", seq.ContentCount(),
		"target", seq.ContentTarget,
		"cached", hit,
		"duration", res.Stats.GenerateTime)
	if seq.Incomplete {
		opts.Logger.Warn("layout is incomplete", "iterations", seq.Iterations)
	}

	// Stage 3: Group
	if opts.Group && genErr == nil {
		start := time.Now()
		groups, hit, err := r.GroupWithCacheInfo(ctx, seq, opts)
		if err != nil {
			return nil, fmt.Errorf("group: %w", err)
		}
		res.Groups = groups
		res.CacheInfo.BricksHit = hit
		res.Stats.GroupTime = time.Since(start)
		res.Stats.Groups = len(groups)
	}

	res.Layout = layout.Export(seq, res.Groups)
	data, err := layout.Marshal(res.Layout)
	if err != nil {
		return nil, fmt.Errorf("serialize layout: %w", err)
	}
	res.Data = data
	return res, genErr
}

// LoadCatalog reads the catalog at path and returns it with the hash of the
// file content.
func (r *Runner) LoadCatalog(ctx context.Context, path string) (*catalog.Catalog, string, error) {
	hooks := observability.Pipeline()
	hooks.OnLoadStart(ctx, path)
	start := time.Now()

	cat, hash, err := loadCatalog(path)
	count := 0
	if cat != nil {
		count = cat.Len()
	}
	hooks.OnLoadComplete(ctx, path, count, time.Since(start), err)
	if err != nil {
		return nil, "", err
	}

	r.Logger.Debug("loaded catalog", "path", path, "modules", count, "types", len(cat.Types()))
	return cat, hash, nil
}

func loadCatalog(path string) (*catalog.Catalog, string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, "", errs.Wrap(errs.ErrCodeNotFound, err, "catalog %s", path)
		}
		return nil, "", fmt.Errorf("read catalog: %w", err)
	}
	cat, err := catalog.Read(bytes.NewReader(data))
	if err != nil {
		return nil, "", err
	}
	return cat, cache.Hash(data), nil
}

// LoadEngagement reads a metrics CSV and returns per-module engagement
// scores for cat.
func (r *Runner) LoadEngagement(cat *catalog.Catalog, path string) (engagement.Scores, error) {
	metrics, err := engagement.ReadMetricsFile(path)
	if err != nil {
		return nil, err
	}
	scores := engagement.ScoresOf(engagement.Analyze(cat, metrics))
	r.Logger.Debug("loaded engagement metrics", "path", path, "stores", len(metrics), "scored", len(scores))
	return scores, nil
}

// HashCatalog returns the content hash of an in-memory catalog.
func HashCatalog(cat *catalog.Catalog) (string, error) {
	var buf bytes.Buffer
	if err := catalog.Write(cat, &buf); err != nil {
		return "", err
	}
	return cache.Hash(buf.Bytes()), nil
}

// GenerateWithCacheInfo composes a layout for opts.Catalog, reading and
// writing the cache, and reports whether it was a hit. A nil seed is drawn
// here so the key is known before generation.
func (r *Runner) GenerateWithCacheInfo(ctx context.Context, opts Options) (*compose.Sequence, bool, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, false, err
	}
	if opts.Catalog == nil {
		return nil, false, errs.New(errs.ErrCodeInvalidInput, "catalog is not loaded")
	}
	if opts.CatalogHash == "" {
		h, err := HashCatalog(opts.Catalog)
		if err != nil {
			return nil, false, err
		}
		opts.CatalogHash = h
	}

	seed := rand.Uint64()
	if opts.Seed != nil {
		seed = *opts.Seed
	}
	key := r.Keyer.LayoutKey(opts.CatalogHash, opts.LayoutKeyOpts(seed))
	cacheHooks := observability.Cache()

	if !opts.Refresh {
		if seq, ok := r.cachedSequence(ctx, key, opts); ok {
			cacheHooks.OnCacheHit(ctx, keyKindLayout)
			return seq, true, nil
		}
		cacheHooks.OnCacheMiss(ctx, keyKindLayout)
	}

	hooks := observability.Pipeline()
	hooks.OnGenerateStart(ctx, opts.Viewport, seed)
	start := time.Now()
	seq, err := engine.Generate(opts.Catalog, opts.ViewportValue(), &seed, opts.engineOptions()...)
	length := 0
	if seq != nil {
		length = seq.Len()
	}
	hooks.OnGenerateComplete(ctx, opts.Viewport, length, time.Since(start), err)
	if err != nil {
		return seq, false, err
	}

	if data, err := layout.Marshal(layout.Export(seq, nil)); err == nil {
		if err := r.Cache.Set(ctx, key, data, r.ttl(cache.TTLLayout)); err != nil {
			opts.Logger.Warn("cache write failed", "kind", keyKindLayout, "err", err)
		} else {
			cacheHooks.OnCacheSet(ctx, keyKindLayout, len(data))
		}
	}
	return seq, false, nil
}

func (r *Runner) cachedSequence(ctx context.Context, key string, opts Options) (*compose.Sequence, bool) {
	data, hit, err := r.Cache.Get(ctx, key)
	if err != nil {
		opts.Logger.Warn("cache read failed", "kind", keyKindLayout, "err", err)
		return nil, false
	}
	if !hit {
		return nil, false
	}
	l, err := layout.Read(bytes.NewReader(data))
	if err != nil {
		return nil, false
	}
	seq, _, err := layout.Parse(l, opts.Catalog)
	if err != nil {
		// Stale entry; recompute.
		return nil, false
	}
	return seq, true
}

// GroupWithCacheInfo packs seq into bricks and reports whether the grouping
// came from cache.
func (r *Runner) GroupWithCacheInfo(ctx context.Context, seq *compose.Sequence, opts Options) ([]brick.Group, bool, error) {
	r.applyLogger(&opts)
	if opts.Catalog != nil && opts.CatalogHash == "" {
		h, err := HashCatalog(opts.Catalog)
		if err != nil {
			return nil, false, err
		}
		opts.CatalogHash = h
	}
	key := r.Keyer.BricksKey(opts.CatalogHash, seq.ModuleIDs())
	cacheHooks := observability.Cache()

	if !opts.Refresh {
		if groups, ok := r.cachedGroups(ctx, key, seq, opts); ok {
			cacheHooks.OnCacheHit(ctx, keyKindBricks)
			return groups, true, nil
		}
		cacheHooks.OnCacheMiss(ctx, keyKindBricks)
	}

	start := time.Now()
	var eopts []engine.Option
	if opts.Hooks != nil {
		eopts = append(eopts, engine.WithHooks(opts.Hooks))
	}
	groups := engine.GroupForNarrowViewport(seq, eopts...)
	observability.Pipeline().OnGroupComplete(ctx, len(groups), time.Since(start))

	if data, err := layout.Marshal(layout.Export(seq, groups)); err == nil {
		if err := r.Cache.Set(ctx, key, data, r.ttl(cache.TTLBricks)); err == nil {
			cacheHooks.OnCacheSet(ctx, keyKindBricks, len(data))
		}
	}
	opts.Logger.Debug("grouped layout", "groups", len(groups), "bricks", countBricks(groups))
	return groups, false, nil
}

// cachedGroups returns the cached grouping for seq. Entries that do not
// partition seq exactly are treated as misses.
func (r *Runner) cachedGroups(ctx context.Context, key string, seq *compose.Sequence, opts Options) ([]brick.Group, bool) {
	data, hit, err := r.Cache.Get(ctx, key)
	if err != nil {
		opts.Logger.Warn("cache read failed", "kind", keyKindBricks, "err", err)
		return nil, false
	}
	if !hit || opts.Catalog == nil {
		return nil, false
	}
	l, err := layout.Read(bytes.NewReader(data))
	if err != nil {
		return nil, false
	}
	_, groups, err := layout.Parse(l, opts.Catalog)
	if err != nil || groups == nil {
		return nil, false
	}
	flat := brick.Flatten(groups)
	want := seq.ModuleIDs()
	if !slices.EqualFunc(flat, want, func(m *catalog.Module, id string) bool { return m.ID == id }) {
		return nil, false
	}
	return groups, true
}

func countBricks(groups []brick.Group) int {
	n := 0
	for _, g := range groups {
		if g.Kind == brick.KindBrick {
			n++
		}
	}
	return n
}

func (r *Runner) ttl(def time.Duration) time.Duration {
	if r.TTL > 0 {
		return r.TTL
	}
	return def
}

// Close releases the cache.
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
}

func hashJSON(v any) string {
	data, _ := json.Marshal(v)
	return cache.Hash(data)[:16]
}
