// Package engine exposes the two layout operations: [Generate] builds a
// layout from a catalog and [GroupForNarrowViewport] packs a finished
// layout into brick groups.
//
// Both operations are pure. The catalog is read, never modified, and all
// randomness is derived from the seed, so
//
//	Generate(cat, vp, &seed)
//
// returns the same layout every time for the same catalog. Pass a nil seed
// to draw a fresh one; it is recorded on the returned sequence so the
// layout can be replayed.
//
// The only error that aborts generation is a catalog without a mandatory
// header or hero module (EMPTY_CATALOG). The partial sequence is returned
// with the error, flagged Incomplete.
package engine

import (
	"math/rand/v2"

	"github.com/matzehuels/storeweaver/pkg/core/brick"
	"github.com/matzehuels/storeweaver/pkg/core/catalog"
	"github.com/matzehuels/storeweaver/pkg/core/compose"
	"github.com/matzehuels/storeweaver/pkg/core/score"
	errs "github.com/matzehuels/storeweaver/pkg/errors"
	"github.com/matzehuels/storeweaver/pkg/observability"
)

// DefaultEngagementWeight scales engagement scores when they are used as a
// rank boost.
const DefaultEngagementWeight = 1.0

type config struct {
	strategy         compose.Strategy
	hooks            observability.EngineHooks
	engagement       map[string]float64
	engagementWeight float64
}

// Option configures [Generate] and [GroupForNarrowViewport].
type Option func(*config)

// WithStrategy replaces the default zone-aware strategy.
func WithStrategy(s compose.Strategy) Option {
	return func(c *config) { c.strategy = s }
}

// WithHooks reports engine decisions to h.
func WithHooks(h observability.EngineHooks) Option {
	return func(c *config) { c.hooks = h }
}

// WithEngagement boosts candidates by engagement score, scaled by
// DefaultEngagementWeight.
func WithEngagement(scores map[string]float64) Option {
	return func(c *config) {
		c.engagement = scores
		c.engagementWeight = DefaultEngagementWeight
	}
}

// WithEngagementWeight overrides DefaultEngagementWeight. Apply it after
// WithEngagement.
func WithEngagementWeight(w float64) Option {
	return func(c *config) { c.engagementWeight = w }
}

func newConfig(opts []Option) config {
	c := config{strategy: compose.DefaultStrategy()}
	for _, opt := range opts {
		opt(&c)
	}
	return c
}

// NewRNG returns the generator used for a seed.
func NewRNG(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed^0xdeadbeef))
}

// Generate composes a layout for viewport from cat.
func Generate(cat *catalog.Catalog, viewport score.Viewport, seed *uint64, opts ...Option) (*compose.Sequence, error) {
	if cat == nil {
		return nil, errs.New(errs.ErrCodeInvalidInput, "catalog is required")
	}
	c := newConfig(opts)

	s := rand.Uint64()
	if seed != nil {
		s = *seed
	}
	return compose.New(cat, NewRNG(s), compose.Options{
		Strategy:         c.strategy,
		Viewport:         viewport,
		Seed:             s,
		Engagement:       c.engagement,
		EngagementWeight: c.engagementWeight,
		Hooks:            c.hooks,
	}).Compose()
}

// GroupForNarrowViewport partitions seq into singles and bricks in order.
func GroupForNarrowViewport(seq *compose.Sequence, opts ...Option) []brick.Group {
	if seq == nil {
		return nil
	}
	c := newConfig(opts)
	return brick.Pack(seq.Modules(), brick.Options{Hooks: c.hooks})
}
