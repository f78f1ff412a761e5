package compose

import (
	"math/rand/v2"

	"github.com/matzehuels/storeweaver/pkg/core/brick"
	"github.com/matzehuels/storeweaver/pkg/core/catalog"
	"github.com/matzehuels/storeweaver/pkg/core/score"
	"github.com/matzehuels/storeweaver/pkg/core/selector"
	"github.com/matzehuels/storeweaver/pkg/core/zones"
	errs "github.com/matzehuels/storeweaver/pkg/errors"
	"github.com/matzehuels/storeweaver/pkg/observability"
)

// Anti-repetition limits for regular steps.
const (
	usedExcludeLimit = 6
	usedResetLimit   = 8
	zoneAttempts     = 3
)

// Composer builds one [Sequence]. A Composer is single-use and not safe for
// concurrent use.
type Composer struct {
	cat  *catalog.Catalog
	rng  *rand.Rand
	opts Options
	sel  *selector.Selector
}

// New returns a composer over cat drawing every random choice from rng.
func New(cat *catalog.Catalog, rng *rand.Rand, opts Options) *Composer {
	return &Composer{cat: cat, rng: rng, opts: opts}
}

// Compose runs the state machine and returns the finished sequence.
//
// The only errors are invalid options and a missing mandatory header or
// hero module. In the latter case the partial sequence is returned along
// with an EMPTY_CATALOG error.
func (c *Composer) Compose() (*Sequence, error) {
	if err := c.opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}
	c.sel = selector.New(c.cat, c.rng,
		selector.WithEnhancedFit(c.opts.Strategy.EnhancedFit),
		selector.WithEngagement(c.opts.Engagement, c.opts.EngagementWeight),
		selector.WithHooks(c.opts.Hooks),
	)

	seq := &Sequence{Seed: c.opts.Seed, Viewport: c.opts.Viewport}
	defer func() { seq.ID = SequenceID(seq.Seed, seq.Viewport, seq.ModuleIDs()) }()

	if err := c.header(seq); err != nil {
		seq.Incomplete = true
		return seq, err
	}
	if err := c.hero(seq); err != nil {
		seq.Incomplete = true
		return seq, err
	}
	c.content(seq)
	return seq, nil
}

// =============================================================================
// HEADER and HERO
// =============================================================================

func (c *Composer) header(seq *Sequence) error {
	for _, t := range c.opts.HeaderTypes {
		m := c.sel.Select(t, score.TierHero, c.slot(score.TierHero, score.PlacementHeader))
		if m == nil {
			return errs.New(errs.ErrCodeEmptyCatalog, "no %s module in catalog", t)
		}
		c.emit(seq, Entry{Module: m, Role: RoleHeader, Tier: score.TierHero, Zone: -1})
		c.opts.Hooks.OnStep(observability.Step{Phase: "header", Type: string(t), ModuleID: m.ID})
	}
	seq.HeaderCount = len(seq.Entries)
	return nil
}

func (c *Composer) hero(seq *Sequence) error {
	present := c.cat.Present(c.opts.HeroTypes)
	if len(present) == 0 {
		return errs.New(errs.ErrCodeEmptyCatalog, "no hero-eligible module in catalog (want one of %v)", c.opts.HeroTypes)
	}
	t := present[c.rng.IntN(len(present))]
	m := c.sel.Select(t, score.TierHero, c.slot(score.TierHero, score.PlacementContent))
	c.emit(seq, Entry{Module: m, Role: RoleHero, Tier: score.TierHero, Zone: -1})
	c.opts.Hooks.OnStep(observability.Step{Phase: "hero", Type: string(t), ModuleID: m.ID})
	return nil
}

// =============================================================================
// CONTENT_LOOP
// =============================================================================

// loop is the mutable state of the content loop.
type loop struct {
	start    int // sequence position where content begins
	position int
	added    int
	target   int
	used     map[catalog.Type]bool
	filled   map[int]bool
}

func (c *Composer) content(seq *Sequence) {
	s := c.opts.Strategy
	st := &loop{
		start:  len(seq.Entries),
		target: c.rng.IntN(s.MaxContent-s.MinContent+1) + s.MinContent,
		used:   make(map[catalog.Type]bool),
		filled: make(map[int]bool),
	}
	st.position = st.start
	seq.ContentTarget = st.target
	if s.PlanZones {
		seq.Zones = zones.Plan(c.cat, c.opts.ZoneTiers)
	}
	categories := c.availableCategories()

	for st.added < st.target {
		if seq.Iterations >= s.MaxIterations {
			seq.Incomplete = true
			return
		}
		seq.Iterations++

		offset := st.position - st.start
		if zi, ok := zoneIndex(seq.Zones, offset); ok && !st.filled[zi] {
			st.filled[zi] = true
			c.fillZone(seq, st, zi)
			continue
		}
		if len(categories) == 0 {
			seq.Incomplete = true
			return
		}
		c.regularStep(seq, st, categories)
	}
}

func zoneIndex(zs []zones.Zone, offset int) (int, bool) {
	for i, z := range zs {
		if z.Contains(offset) {
			return i, true
		}
	}
	return 0, false
}

// fillZone fills the remainder of zone zi starting at the current position.
func (c *Composer) fillZone(seq *Sequence, st *loop, zi int) {
	z := seq.Zones[zi]
	offset := st.position - st.start
	size := min(z.End()-offset, st.target-st.added)

	slot := c.slot(score.TierSecondary, score.PlacementContent)
	var chosen []*catalog.Module
	seen := make(map[string]bool)
	draw := func(types []catalog.Type, accept func(*catalog.Module) bool) {
		for _, t := range types {
			if len(chosen) >= size {
				return
			}
			for range zoneAttempts {
				if len(chosen) >= size {
					return
				}
				m := c.sel.Select(t, score.TierSecondary, slot)
				if m == nil {
					break
				}
				if seen[m.ID] || !accept(m) {
					continue
				}
				seen[m.ID] = true
				chosen = append(chosen, m)
				st.used[t] = true
			}
		}
	}

	tier1 := c.cat.Present(c.opts.ZoneTiers.Tier1)
	c.rng.Shuffle(len(tier1), func(i, j int) { tier1[i], tier1[j] = tier1[j], tier1[i] })
	draw(tier1, func(*catalog.Module) bool { return true })
	draw(c.cat.Present(c.opts.ZoneTiers.Tier2), brick.IsCandidate)

	if len(chosen) > 0 {
		if h := c.sel.Select(c.opts.HeadingType, score.TierSecondary, slot); h != nil {
			c.emit(seq, Entry{Module: h, Role: RoleHeading, Tier: score.TierSecondary, Zone: zi})
		}
	}
	for _, m := range chosen {
		c.emit(seq, Entry{Module: m, Role: RoleZone, Tier: score.TierSecondary, Zone: zi})
	}

	c.opts.Hooks.OnZone(z.Position, size, len(chosen))
	st.position += size
	st.added += len(chosen)
	if len(st.used) >= usedResetLimit {
		clear(st.used)
	}
}

// regularStep emits one content module, preceded by a heading unless it is
// the last one.
func (c *Composer) regularStep(seq *Sequence, st *loop, categories []Category) {
	cat := drawCategory(c.rng, categories)
	types := c.eligibleTypes(cat, st.used)
	t := types[c.rng.IntN(len(types))]

	ev := observability.Step{Phase: "content", Iteration: seq.Iterations, Position: st.position - st.start, Type: string(t)}
	m := c.sel.Select(t, cat.Tier, c.slot(cat.Tier, score.PlacementContent))
	if m == nil {
		ev.Skipped = true
		c.opts.Hooks.OnStep(ev)
		return
	}

	if st.added+1 < st.target {
		if h := c.sel.Select(c.opts.HeadingType, score.TierSecondary, c.slot(score.TierSecondary, score.PlacementContent)); h != nil {
			c.emit(seq, Entry{Module: h, Role: RoleHeading, Tier: score.TierSecondary, Zone: -1})
		}
	}
	c.emit(seq, Entry{Module: m, Role: RoleContent, Tier: cat.Tier, Zone: -1})
	ev.ModuleID = m.ID
	c.opts.Hooks.OnStep(ev)

	st.used[t] = true
	st.added++
	st.position++
	if len(st.used) >= usedResetLimit {
		clear(st.used)
	}
}

// availableCategories returns the categories with at least one type present
// in the catalog and a positive weight.
func (c *Composer) availableCategories() []Category {
	var out []Category
	for _, cat := range c.opts.Strategy.Categories {
		if cat.Weight > 0 && len(c.cat.Present(cat.Types)) > 0 {
			out = append(out, cat)
		}
	}
	return out
}

// eligibleTypes returns the category's present types, minus recently used
// ones while fewer than usedExcludeLimit types are in use. Never empty for
// an available category.
func (c *Composer) eligibleTypes(cat Category, used map[catalog.Type]bool) []catalog.Type {
	present := c.cat.Present(cat.Types)
	if len(used) >= usedExcludeLimit {
		return present
	}
	var fresh []catalog.Type
	for _, t := range present {
		if !used[t] {
			fresh = append(fresh, t)
		}
	}
	if len(fresh) == 0 {
		return present
	}
	return fresh
}

func drawCategory(rng *rand.Rand, cats []Category) Category {
	total := 0.0
	for _, c := range cats {
		total += c.Weight
	}
	r := rng.Float64() * total
	for _, c := range cats {
		r -= c.Weight
		if r < 0 {
			return c
		}
	}
	return cats[len(cats)-1]
}

// =============================================================================
// Helpers
// =============================================================================

func (c *Composer) slot(t score.Tier, p score.Placement) *score.Slot {
	if !c.opts.Strategy.UseDestinationFit {
		return nil
	}
	s := score.SlotFor(c.opts.Viewport, t, p)
	return &s
}

func (c *Composer) emit(seq *Sequence, e Entry) {
	seq.Entries = append(seq.Entries, e)
}
