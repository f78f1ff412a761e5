// Package selector picks one catalog module for a requested type and tier.
//
// Selection filters the modules of the requested type by a tier quality
// floor and, when a destination slot is given, by a minimum fit. Survivors
// are ranked by quality+fit and one module is drawn uniformly from the
// top-K. If filtering leaves nothing, the unfiltered type set is used
// instead, so [Selector.Select] only returns nil when the catalog has no
// module of the type at all.
//
// All randomness comes from the *rand.Rand passed to [New]; two selectors
// built with equally seeded generators make the same choices.
package selector

import (
	"cmp"
	"math/rand/v2"
	"slices"

	"github.com/matzehuels/storeweaver/pkg/core/catalog"
	"github.com/matzehuels/storeweaver/pkg/core/score"
	"github.com/matzehuels/storeweaver/pkg/observability"
)

// Defaults for a new [Selector].
const (
	DefaultTopK        = 3
	DefaultHeadingTopK = 8
	DefaultMinFit      = 2.0
)

// Selector draws modules from a catalog. It is not safe for concurrent use
// because it shares the caller's random generator.
type Selector struct {
	cat         *catalog.Catalog
	rng         *rand.Rand
	topK        int
	headingTopK int
	minFit      float64
	enhanced    bool
	boost       map[string]float64
	boostWeight float64
	hooks       observability.EngineHooks
}

// Option configures a [Selector].
type Option func(*Selector)

// WithTopK sets the pool size for regular requests.
func WithTopK(k int) Option {
	return func(s *Selector) {
		if k > 0 {
			s.topK = k
		}
	}
}

// WithHeadingTopK sets the pool size for heading requests.
func WithHeadingTopK(k int) Option {
	return func(s *Selector) {
		if k > 0 {
			s.headingTopK = k
		}
	}
}

// WithMinFit sets the fit floor applied when a slot is given.
func WithMinFit(f float64) Option {
	return func(s *Selector) { s.minFit = f }
}

// WithEnhancedFit enables the fit bonus for clean downscales.
func WithEnhancedFit(on bool) Option {
	return func(s *Selector) { s.enhanced = on }
}

// WithEngagement adds weight*scores[id] to each candidate's rank. Modules
// without a score get no boost. The map is read, never modified.
func WithEngagement(scores map[string]float64, weight float64) Option {
	return func(s *Selector) {
		s.boost = scores
		s.boostWeight = weight
	}
}

// WithHooks reports every selection to h.
func WithHooks(h observability.EngineHooks) Option {
	return func(s *Selector) { s.hooks = observability.EngineOrNoop(h) }
}

// New returns a selector over cat drawing from rng.
func New(cat *catalog.Catalog, rng *rand.Rand, opts ...Option) *Selector {
	s := &Selector{
		cat:         cat,
		rng:         rng,
		topK:        DefaultTopK,
		headingTopK: DefaultHeadingTopK,
		minFit:      DefaultMinFit,
		hooks:       observability.NoopEngineHooks{},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Select returns one module of type t suitable for tier, or nil if the
// catalog has no module of that type. slot may be nil, in which case fit is
// not scored.
func (s *Selector) Select(t catalog.Type, tier score.Tier, slot *score.Slot) *catalog.Module {
	ranked, fallback := s.rank(t, tier, slot)
	ev := observability.Selection{
		Type:       string(t),
		Tier:       string(tier),
		Candidates: s.cat.Count(t),
		Survivors:  len(ranked),
		Fallback:   fallback,
	}
	if fallback {
		ev.Survivors = 0
	}
	if len(ranked) == 0 {
		s.hooks.OnSelect(ev)
		return nil
	}

	k := s.topK
	if t.IsHeading() {
		k = s.headingTopK
	}
	pool := ranked[:min(k, len(ranked))]
	chosen := pool[s.rng.IntN(len(pool))].Module

	ev.Pool = len(pool)
	ev.Chosen = chosen.ID
	s.hooks.OnSelect(ev)
	return chosen
}

// Rank returns the candidates Select would draw from, best first, without
// consuming randomness. The second result reports whether the unfiltered
// fallback set was used.
func (s *Selector) Rank(t catalog.Type, tier score.Tier, slot *score.Slot) ([]score.Scored, bool) {
	return s.rank(t, tier, slot)
}

func (s *Selector) rank(t catalog.Type, tier score.Tier, slot *score.Slot) ([]score.Scored, bool) {
	mods := s.cat.ByType(t)
	if len(mods) == 0 {
		return nil, false
	}

	all := make([]score.Scored, len(mods))
	for i, m := range mods {
		all[i] = score.Score(m, slot, s.enhanced)
	}

	survivors := make([]score.Scored, 0, len(all))
	for _, sc := range all {
		if sc.Quality < tier.MinQuality() {
			continue
		}
		if slot != nil && sc.Fit < s.minFit {
			continue
		}
		survivors = append(survivors, sc)
	}

	fallback := len(survivors) == 0
	if fallback {
		survivors = all
	}

	slices.SortStableFunc(survivors, func(a, b score.Scored) int {
		return cmp.Compare(s.rankOf(b), s.rankOf(a))
	})
	return survivors, fallback
}

func (s *Selector) rankOf(sc score.Scored) float64 {
	r := sc.Total()
	if s.boost != nil {
		r += s.boostWeight * s.boost[sc.Module.ID]
	}
	return r
}
