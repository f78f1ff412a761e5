package compose

import (
	"math/rand/v2"
	"slices"
	"testing"

	"github.com/matzehuels/storeweaver/pkg/core/brick"
	"github.com/matzehuels/storeweaver/pkg/core/catalog"
	"github.com/matzehuels/storeweaver/pkg/core/catalog/catalogtest"
	"github.com/matzehuels/storeweaver/pkg/core/score"
	"github.com/matzehuels/storeweaver/pkg/core/zones"
	errs "github.com/matzehuels/storeweaver/pkg/errors"
	"github.com/matzehuels/storeweaver/pkg/observability"
)

func newRNG(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed^0xdeadbeef))
}

func compose(t *testing.T, cat *catalog.Catalog, seed uint64, opts Options) *Sequence {
	t.Helper()
	opts.Seed = seed
	seq, err := New(cat, newRNG(seed), opts).Compose()
	if err != nil {
		t.Fatalf("Compose(seed=%d) error: %v", seed, err)
	}
	return seq
}

func TestComposeEndToEnd(t *testing.T) {
	cat := catalogtest.Store()

	for seed := range uint64(40) {
		for _, strategy := range []Strategy{DefaultStrategy(), SimpleStrategy()} {
			seq := compose(t, cat, seed, Options{Strategy: strategy})

			if seq.Incomplete {
				t.Fatalf("seed %d: sequence incomplete after %d iterations", seed, seq.Iterations)
			}
			if got := seq.Entries[0].Module.ID; got != "mast_01" {
				t.Errorf("seed %d: entry 0 = %s, want mast_01", seed, got)
			}
			if got := seq.Entries[1].Module.ID; got != "navigation_01" {
				t.Errorf("seed %d: entry 1 = %s, want navigation_01", seed, got)
			}
			hero := seq.Entries[2]
			if hero.Role != RoleHero || hero.Tier != score.TierHero || !slices.Contains(catalog.HeroTypes, hero.Module.Type) {
				t.Errorf("seed %d: entry 2 = %+v, want a hero-tier hero module", seed, hero)
			}
			if seq.HeaderCount != 2 {
				t.Errorf("seed %d: HeaderCount = %d, want 2", seed, seq.HeaderCount)
			}

			if seq.ContentTarget < DefaultMinContent || seq.ContentTarget > DefaultMaxContent {
				t.Errorf("seed %d: ContentTarget = %d outside [10, 25]", seed, seq.ContentTarget)
			}
			if got := seq.ContentCount(); got != seq.ContentTarget {
				t.Errorf("seed %d: ContentCount = %d, want %d", seed, got, seq.ContentTarget)
			}
			if seq.Len() < seq.HeaderCount+1+seq.ContentTarget {
				t.Errorf("seed %d: Len = %d, want ≥ %d", seed, seq.Len(), seq.HeaderCount+1+seq.ContentTarget)
			}
		}
	}
}

func TestComposeDeterministic(t *testing.T) {
	cat := catalogtest.Store()
	a := compose(t, cat, 1234, Options{Strategy: DefaultStrategy()})
	b := compose(t, cat, 1234, Options{Strategy: DefaultStrategy()})

	if a.ID != b.ID {
		t.Errorf("IDs differ: %s vs %s", a.ID, b.ID)
	}
	if !slices.Equal(a.ModuleIDs(), b.ModuleIDs()) {
		t.Fatalf("module ids differ:\n%v\n%v", a.ModuleIDs(), b.ModuleIDs())
	}
	for i := range a.Entries {
		if a.Entries[i].Role != b.Entries[i].Role || a.Entries[i].Tier != b.Entries[i].Tier {
			t.Errorf("entry %d differs: %+v vs %+v", i, a.Entries[i], b.Entries[i])
		}
	}
}

func TestComposeSeedsVary(t *testing.T) {
	cat := catalogtest.Store()
	ids := make(map[string]bool)
	for seed := range uint64(5) {
		ids[compose(t, cat, seed, Options{Strategy: DefaultStrategy()}).ID] = true
	}
	if len(ids) < 2 {
		t.Errorf("5 seeds produced %d distinct layouts", len(ids))
	}
}

func TestComposeZones(t *testing.T) {
	cat := catalogtest.Store()

	for seed := range uint64(20) {
		seq := compose(t, cat, seed, Options{Strategy: DefaultStrategy()})
		if want := zones.PlanCounts(16, 19); !slices.Equal(seq.Zones, want) {
			t.Fatalf("Zones = %v, want %v", seq.Zones, want)
		}

		members := make(map[int][]Entry)
		for i, e := range seq.Entries {
			if e.Role != RoleZone {
				continue
			}
			members[e.Zone] = append(members[e.Zone], e)

			prev := seq.Entries[i-1]
			if prev.Role != RoleZone && !(prev.Role == RoleHeading && prev.Zone == e.Zone) {
				t.Errorf("seed %d: zone entry %d preceded by %s", seed, i, prev.Role)
			}
		}

		for zi, es := range members {
			if len(es) > seq.Zones[zi].SectionCount {
				t.Errorf("seed %d: zone %d has %d members, size %d", seed, zi, len(es), seq.Zones[zi].SectionCount)
			}
			seen := make(map[string]bool)
			for _, e := range es {
				if seen[e.Module.ID] {
					t.Errorf("seed %d: %s repeated in zone %d", seed, e.Module.ID, zi)
				}
				seen[e.Module.ID] = true
				if slices.Contains(catalog.Tier2ZoneTypes, e.Module.Type) && !brick.IsCandidate(e.Module) {
					t.Errorf("seed %d: tier-2 zone member %s is not a brick candidate", seed, e.Module.ID)
				}
			}
		}
	}
}

func TestComposeZoneDrawsSeveralModulesPerType(t *testing.T) {
	mods := []catalog.Module{
		catalogtest.Module("mast_01", catalog.TypeMast, 1920, 320),
		catalogtest.Module("navigation_01", catalog.TypeNavigation, 1920, 280),
		catalogtest.Module("hero_01", catalog.TypeHero, 1920, 800),
	}
	mods = append(mods, catalogtest.Series(catalog.TypeSectionHeading, 2, 1464, 120)...)
	mods = append(mods, catalogtest.Series(catalog.TypeTestimonial, 4, 700, 400)...)
	mods = append(mods, catalogtest.Series(catalog.TypeProductSelector, 3, 1464, 640)...)
	cat := catalog.MustNew(mods)

	most := 0
	for seed := range uint64(10) {
		seq := compose(t, cat, seed, Options{Strategy: DefaultStrategy()})
		if want := []zones.Zone{{Position: 4, SectionCount: 4}}; !slices.Equal(seq.Zones, want) {
			t.Fatalf("Zones = %v, want %v", seq.Zones, want)
		}

		members := 0
		seen := make(map[string]bool)
		for _, e := range seq.Entries {
			if e.Role != RoleZone {
				continue
			}
			members++
			if seen[e.Module.ID] {
				t.Errorf("seed %d: %s repeated in the zone", seed, e.Module.ID)
			}
			seen[e.Module.ID] = true
		}
		if members > 4 {
			t.Errorf("seed %d: zone has %d members, size 4", seed, members)
		}
		most = max(most, members)
	}
	if most < 2 {
		t.Errorf("single-type zone never held more than %d module", most)
	}
}

func TestComposeHeadingPlacement(t *testing.T) {
	cat := catalogtest.Store()

	for seed := range uint64(20) {
		seq := compose(t, cat, seed, Options{Strategy: DefaultStrategy()})
		last := seq.Entries[len(seq.Entries)-1]
		if last.Role == RoleHeading {
			t.Errorf("seed %d: sequence ends with a heading", seed)
		}
		for i := 1; i < len(seq.Entries); i++ {
			if seq.Entries[i].Role == RoleHeading && seq.Entries[i-1].Role == RoleHeading {
				t.Errorf("seed %d: consecutive headings at %d", seed, i)
			}
		}
	}
}

func TestComposeSimpleStrategyHasNoZones(t *testing.T) {
	seq := compose(t, catalogtest.Store(), 99, Options{Strategy: SimpleStrategy()})
	if len(seq.Zones) != 0 {
		t.Errorf("Zones = %v, want none", seq.Zones)
	}
	for _, e := range seq.Entries {
		if e.Role == RoleZone {
			t.Fatalf("zone entry %s in simple layout", e.Module.ID)
		}
	}
}

func TestComposeFixedContentTarget(t *testing.T) {
	s := DefaultStrategy()
	s.MinContent, s.MaxContent = 12, 12
	seq := compose(t, catalogtest.Store(), 5, Options{Strategy: s})
	if seq.ContentTarget != 12 || seq.ContentCount() != 12 {
		t.Errorf("ContentTarget = %d, ContentCount = %d, want 12", seq.ContentTarget, seq.ContentCount())
	}
}

func TestComposeMissingHeader(t *testing.T) {
	var mods []catalog.Module
	for _, m := range catalogtest.StoreModules() {
		if m.Type != catalog.TypeNavigation {
			mods = append(mods, m)
		}
	}

	seq, err := New(catalog.MustNew(mods), newRNG(1), Options{Strategy: DefaultStrategy()}).Compose()
	if !errs.Is(err, errs.ErrCodeEmptyCatalog) {
		t.Fatalf("Compose() error = %v, want EMPTY_CATALOG", err)
	}
	if !errs.IsFatal(err) {
		t.Error("EMPTY_CATALOG should be fatal")
	}
	if seq == nil || !seq.Incomplete {
		t.Fatal("partial sequence should be returned flagged incomplete")
	}
	if got := seq.ModuleIDs(); !slices.Equal(got, []string{"mast_01"}) {
		t.Errorf("partial sequence = %v, want [mast_01]", got)
	}
	if seq.ID == "" {
		t.Error("partial sequence should carry an id")
	}
}

func TestComposeMissingHero(t *testing.T) {
	var mods []catalog.Module
	for _, m := range catalogtest.StoreModules() {
		if !slices.Contains(catalog.HeroTypes, m.Type) {
			mods = append(mods, m)
		}
	}

	seq, err := New(catalog.MustNew(mods), newRNG(1), Options{}).Compose()
	if !errs.Is(err, errs.ErrCodeEmptyCatalog) {
		t.Fatalf("Compose() error = %v, want EMPTY_CATALOG", err)
	}
	if seq.Len() != 2 || !seq.Incomplete {
		t.Errorf("partial sequence = %v (incomplete=%v), want the two headers", seq.ModuleIDs(), seq.Incomplete)
	}
}

func TestComposeIterationCap(t *testing.T) {
	s := DefaultStrategy()
	s.MaxIterations = 3
	seq := compose(t, catalogtest.Store(), 8, Options{Strategy: s})

	if !seq.Incomplete {
		t.Error("sequence should be incomplete when the iteration cap is hit")
	}
	if seq.Iterations != 3 {
		t.Errorf("Iterations = %d, want 3", seq.Iterations)
	}
	if seq.ContentCount() >= seq.ContentTarget {
		t.Errorf("ContentCount = %d reached target %d in 3 iterations", seq.ContentCount(), seq.ContentTarget)
	}
}

func TestComposeNoContentTypes(t *testing.T) {
	cat := catalog.MustNew([]catalog.Module{
		catalogtest.Module("mast", catalog.TypeMast, 1920, 320),
		catalogtest.Module("nav", catalog.TypeNavigation, 1920, 280),
		catalogtest.Module("hero", catalog.TypeHero, 1920, 800),
		catalogtest.Module("heading", catalog.TypeSectionHeading, 1464, 120),
	})
	seq := compose(t, cat, 1, Options{Strategy: DefaultStrategy()})
	if !seq.Incomplete || seq.ContentCount() != 0 || seq.Len() != 3 {
		t.Errorf("sequence = %v (incomplete=%v)", seq.ModuleIDs(), seq.Incomplete)
	}
}

func TestComposeSparseCatalogTerminates(t *testing.T) {
	mods := []catalog.Module{
		catalogtest.Module("mast", catalog.TypeMast, 1920, 320),
		catalogtest.Module("nav", catalog.TypeNavigation, 1920, 280),
		catalogtest.Module("hero", catalog.TypeHero, 1920, 800),
		catalogtest.Module("t1", catalog.TypeTestimonial, 700, 400),
		catalogtest.Module("t2", catalog.TypeTestimonial, 700, 400),
	}
	seq := compose(t, catalog.MustNew(mods), 3, Options{Strategy: DefaultStrategy()})
	if seq.ContentCount() != seq.ContentTarget {
		t.Errorf("ContentCount = %d, want %d (repeats are allowed)", seq.ContentCount(), seq.ContentTarget)
	}
	if seq.Iterations > DefaultMaxIterations {
		t.Errorf("Iterations = %d beyond cap", seq.Iterations)
	}
}

func TestComposeDoesNotMutateCatalog(t *testing.T) {
	cat := catalogtest.Store()
	before := make([]catalog.Module, 0, cat.Len())
	for _, m := range cat.Modules() {
		before = append(before, *m)
	}

	compose(t, cat, 77, Options{Strategy: DefaultStrategy()})

	for i, m := range cat.Modules() {
		if *m != before[i] {
			t.Fatalf("module %s changed during composition", m.ID)
		}
	}
}

func TestOptionsValidation(t *testing.T) {
	tests := []struct {
		name string
		opts Options
		code errs.Code
	}{
		{"inverted range", Options{Strategy: Strategy{MinContent: 20, MaxContent: 10}}, errs.ErrCodeInvalidInput},
		{"negative iterations", Options{Strategy: Strategy{MaxIterations: -1}}, errs.ErrCodeInvalidInput},
		{"zero weights", Options{Strategy: Strategy{Categories: []Category{{Name: "x", Types: []catalog.Type{catalog.TypeGallery}}}}}, errs.ErrCodeInvalidInput},
		{"unknown category type", Options{Strategy: Strategy{Categories: []Category{{Name: "x", Types: []catalog.Type{"popup"}, Weight: 1}}}}, errs.ErrCodeInvalidInput},
		{"bad viewport", Options{Viewport: "tablet"}, errs.ErrCodeInvalidViewport},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.opts.ValidateAndSetDefaults()
			if !errs.Is(err, tt.code) {
				t.Errorf("ValidateAndSetDefaults() error = %v, want %s", err, tt.code)
			}
		})
	}
}

func TestOptionsDefaults(t *testing.T) {
	var o Options
	if err := o.ValidateAndSetDefaults(); err != nil {
		t.Fatal(err)
	}
	if o.Viewport != score.ViewportWide || o.HeadingType != catalog.TypeSectionHeading {
		t.Errorf("defaults = %+v", o)
	}
	if o.Strategy.MinContent != 10 || o.Strategy.MaxContent != 25 || o.Strategy.MaxIterations != 100 {
		t.Errorf("strategy defaults = %+v", o.Strategy)
	}

	// Idempotent.
	again := o
	if err := again.ValidateAndSetDefaults(); err != nil {
		t.Fatal(err)
	}
	if again.Strategy.MinContent != o.Strategy.MinContent || again.Viewport != o.Viewport {
		t.Error("second ValidateAndSetDefaults changed options")
	}
}

func TestEligibleTypes(t *testing.T) {
	c := New(catalogtest.Store(), newRNG(1), Options{})
	visual := DefaultCategories[2]

	got := c.eligibleTypes(visual, map[catalog.Type]bool{catalog.TypeGallery: true})
	if want := []catalog.Type{catalog.TypeStaticImage, catalog.TypeVideo}; !slices.Equal(got, want) {
		t.Errorf("eligibleTypes() = %v, want %v", got, want)
	}

	all := map[catalog.Type]bool{catalog.TypeGallery: true, catalog.TypeStaticImage: true, catalog.TypeVideo: true}
	if got := c.eligibleTypes(visual, all); len(got) != 3 {
		t.Errorf("eligibleTypes() with all used = %v, want every present type", got)
	}

	six := map[catalog.Type]bool{
		catalog.TypeGallery: true, catalog.TypeProducts: true, catalog.TypeTestimonial: true,
		catalog.TypeBestsellers: true, catalog.TypeBeforeAfter: true, catalog.TypeTextBlock: true,
	}
	if got := c.eligibleTypes(visual, six); !slices.Contains(got, catalog.TypeGallery) {
		t.Errorf("eligibleTypes() with 6 used = %v, should stop excluding", got)
	}
}

func TestDrawCategoryFollowsWeights(t *testing.T) {
	rng := newRNG(21)
	counts := make(map[string]int)
	const n = 20000
	for range n {
		counts[drawCategory(rng, DefaultCategories).Name]++
	}
	for _, c := range DefaultCategories {
		got := float64(counts[c.Name]) / n
		if got < c.Weight-0.02 || got > c.Weight+0.02 {
			t.Errorf("category %s drawn %.3f of the time, want ≈%.2f", c.Name, got, c.Weight)
		}
	}
}

type stepRecorder struct {
	observability.NoopEngineHooks
	steps []observability.Step
	zones int
}

func (r *stepRecorder) OnStep(s observability.Step) { r.steps = append(r.steps, s) }
func (r *stepRecorder) OnZone(_, _, _ int)          { r.zones++ }

func TestComposeHooks(t *testing.T) {
	rec := &stepRecorder{}
	seq := compose(t, catalogtest.Store(), 4, Options{Strategy: DefaultStrategy(), Hooks: rec})

	if len(rec.steps) < 3 || rec.steps[0].Phase != "header" || rec.steps[2].Phase != "hero" {
		t.Fatalf("steps = %+v", rec.steps)
	}
	if rec.zones != len(seq.Zones) {
		t.Errorf("OnZone called %d times, want %d", rec.zones, len(seq.Zones))
	}
}
