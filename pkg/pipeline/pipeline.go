// Package pipeline runs the load → generate → group flow shared by the CLI
// and the HTTP server.
//
// The engine itself is pure and knows nothing about files, caches or
// logging. This package adds those concerns around it:
//
//  1. Load: read and hash a catalog file
//  2. Generate: compose a layout, served from cache when possible
//  3. Group: pack a narrow layout into bricks, also cached
//
// # Usage
//
//	runner := pipeline.NewRunner(c, nil, logger)
//	res, err := runner.Execute(ctx, pipeline.Options{
//	    CatalogPath: "output/modules_catalog.json",
//	    Viewport:    "narrow",
//	})
//	if err != nil {
//	    return err
//	}
//	os.Stdout.Write(res.Data)
package pipeline

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/storeweaver/pkg/cache"
	"github.com/matzehuels/storeweaver/pkg/config"
	"github.com/matzehuels/storeweaver/pkg/core/brick"
	"github.com/matzehuels/storeweaver/pkg/core/catalog"
	"github.com/matzehuels/storeweaver/pkg/core/compose"
	"github.com/matzehuels/storeweaver/pkg/core/score"
	"github.com/matzehuels/storeweaver/pkg/engine"
	errs "github.com/matzehuels/storeweaver/pkg/errors"
	"github.com/matzehuels/storeweaver/pkg/layout"
	"github.com/matzehuels/storeweaver/pkg/observability"
)

// =============================================================================
// Default Values - Single Source of Truth for CLI and API
// =============================================================================

const (
	// DefaultViewport is used when Options.Viewport is empty.
	DefaultViewport = score.ViewportWide

	// DefaultStrategy is the zone-aware composer.
	DefaultStrategy = config.StrategyZones
)

// =============================================================================
// Options - Pipeline Configuration
// =============================================================================

// Options configures one pipeline run. It is also the JSON body of the
// layout API.
type Options struct {
	CatalogPath string  `json:"catalog,omitempty"`
	Viewport    string  `json:"viewport,omitempty"`
	Seed        *uint64 `json:"seed,omitempty"`
	Strategy    string  `json:"strategy,omitempty"`

	MinContent    int  `json:"min_content,omitempty"`
	MaxContent    int  `json:"max_content,omitempty"`
	MaxIterations int  `json:"max_iterations,omitempty"`
	EnhancedFit   bool `json:"enhanced_fit,omitempty"`

	// Group packs the layout into bricks. Always on for narrow viewports.
	Group bool `json:"group,omitempty"`

	// Refresh bypasses cache reads.
	Refresh bool `json:"refresh,omitempty"`

	// Runtime options (not serialized)
	Catalog          *catalog.Catalog          `json:"-"`
	CatalogHash      string                    `json:"-"`
	Engagement       map[string]float64        `json:"-"`
	EngagementWeight float64                   `json:"-"`
	Categories       []compose.Category        `json:"-"`
	Logger           *log.Logger               `json:"-"`
	Hooks            observability.EngineHooks `json:"-"`

	viewport  score.Viewport
	validated bool
}

// Result is the output of [Runner.Execute].
type Result struct {
	Sequence    *compose.Sequence
	Groups      []brick.Group
	Layout      layout.Layout
	CatalogHash string

	// Data is Layout as indented JSON.
	Data []byte

	Stats     Stats
	CacheInfo CacheInfo
}

// Stats holds timing and size information.
type Stats struct {
	Modules      int
	Entries      int
	Content      int
	Groups       int
	LoadTime     time.Duration
	GenerateTime time.Duration
	GroupTime    time.Duration
}

// CacheInfo records which stages were served from cache.
type CacheInfo struct {
	LayoutHit bool
	BricksHit bool
}

// =============================================================================
// Validation Functions
// =============================================================================

// ValidateStrategy checks a strategy name.
func ValidateStrategy(s string) error {
	switch s {
	case config.StrategyZones, config.StrategySimple:
		return nil
	}
	return errs.New(errs.ErrCodeInvalidInput, "invalid strategy: %q (must be one of: %s, %s)", s, config.StrategyZones, config.StrategySimple)
}

// =============================================================================
// Options Methods
// =============================================================================

// FromConfig returns options carrying the engine settings of cfg.
func FromConfig(cfg config.Engine) Options {
	return Options{
		CatalogPath:      cfg.Catalog,
		Viewport:         cfg.Viewport,
		Strategy:         cfg.Strategy,
		MinContent:       cfg.MinContent,
		MaxContent:       cfg.MaxContent,
		MaxIterations:    cfg.MaxIterations,
		EnhancedFit:      cfg.EnhancedFit,
		EngagementWeight: cfg.Engagement,
		Categories:       cfg.Categories,
	}
}

// ValidateAndSetDefaults checks the options and applies defaults.
// Calling it more than once has no further effect.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if o.Catalog == nil && o.CatalogPath == "" {
		return errs.New(errs.ErrCodeInvalidInput, "catalog is required")
	}
	if o.CatalogPath != "" {
		if err := errs.ValidatePath(o.CatalogPath); err != nil {
			return err
		}
	}

	if o.Viewport == "" {
		o.Viewport = string(DefaultViewport)
	}
	vp, err := score.ParseViewport(o.Viewport)
	if err != nil {
		return err
	}
	o.viewport = vp
	o.Viewport = string(vp)

	o.Strategy = strings.ToLower(strings.TrimSpace(o.Strategy))
	if o.Strategy == "" {
		o.Strategy = DefaultStrategy
	}
	if err := ValidateStrategy(o.Strategy); err != nil {
		return err
	}
	if o.MinContent < 0 || o.MaxContent < 0 || (o.MaxContent > 0 && o.MaxContent < o.MinContent) {
		return errs.New(errs.ErrCodeInvalidInput, "invalid content bounds [%d, %d]", o.MinContent, o.MaxContent)
	}
	if len(o.Engagement) > 0 && o.EngagementWeight == 0 {
		o.EngagementWeight = engine.DefaultEngagementWeight
	}
	if vp == score.ViewportNarrow {
		o.Group = true
	}

	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	o.validated = true
	return nil
}

// ViewportValue returns the parsed viewport. Valid after
// ValidateAndSetDefaults.
func (o *Options) ViewportValue() score.Viewport { return o.viewport }

// ComposeStrategy returns the composer strategy for the options.
func (o *Options) ComposeStrategy() compose.Strategy {
	return config.Engine{
		Strategy:      o.Strategy,
		MinContent:    o.MinContent,
		MaxContent:    o.MaxContent,
		MaxIterations: o.MaxIterations,
		EnhancedFit:   o.EnhancedFit,
		Categories:    o.Categories,
	}.ComposeStrategy()
}

// engineOptions converts the options for engine.Generate.
func (o *Options) engineOptions() []engine.Option {
	opts := []engine.Option{engine.WithStrategy(o.ComposeStrategy())}
	if o.Hooks != nil {
		opts = append(opts, engine.WithHooks(o.Hooks))
	}
	if len(o.Engagement) > 0 {
		opts = append(opts, engine.WithEngagement(o.Engagement), engine.WithEngagementWeight(o.EngagementWeight))
	}
	return opts
}

// LayoutKeyOpts returns cache key options for seed.
func (o *Options) LayoutKeyOpts(seed uint64) cache.LayoutKeyOpts {
	s := o.ComposeStrategy()
	k := cache.LayoutKeyOpts{
		Viewport:   o.Viewport,
		Seed:       seed,
		Strategy:   fmt.Sprintf("%s/fit=%t/iter=%d", o.Strategy, s.EnhancedFit, s.MaxIterations),
		MinContent: s.MinContent,
		MaxContent: s.MaxContent,
	}
	if len(o.Categories) > 0 {
		k.Strategy += "/" + hashJSON(o.Categories)
	}
	if len(o.Engagement) > 0 {
		k.Engagement = fmt.Sprintf("%s@%g", hashJSON(o.Engagement), o.EngagementWeight)
	}
	return k
}
