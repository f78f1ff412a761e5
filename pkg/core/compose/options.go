package compose

import (
	"github.com/matzehuels/storeweaver/pkg/core/catalog"
	"github.com/matzehuels/storeweaver/pkg/core/score"
	"github.com/matzehuels/storeweaver/pkg/core/zones"
	errs "github.com/matzehuels/storeweaver/pkg/errors"
	"github.com/matzehuels/storeweaver/pkg/observability"
)

// Defaults applied by [Options.ValidateAndSetDefaults].
const (
	DefaultMinContent    = 10
	DefaultMaxContent    = 25
	DefaultMaxIterations = 100
)

// Category is a weighted pool of content types drawn at one tier.
type Category struct {
	Name   string         `json:"name" toml:"name"`
	Types  []catalog.Type `json:"types" toml:"types"`
	Weight float64        `json:"weight" toml:"weight"`
	Tier   score.Tier     `json:"tier" toml:"tier"`
}

// DefaultCategories is the canonical content distribution.
var DefaultCategories = []Category{
	{
		Name:   "interactive",
		Types:  []catalog.Type{catalog.TypeProductSelector, catalog.TypeShopTheLook, catalog.TypeCategoryCarousel},
		Weight: 0.30,
		Tier:   score.TierProminent,
	},
	{
		Name:   "product",
		Types:  []catalog.Type{catalog.TypeProducts, catalog.TypeBestsellers},
		Weight: 0.25,
		Tier:   score.TierProminent,
	},
	{
		Name:   "visual",
		Types:  []catalog.Type{catalog.TypeGallery, catalog.TypeStaticImage, catalog.TypeVideo, catalog.TypeReels, catalog.TypeLinkoutImage},
		Weight: 0.20,
		Tier:   score.TierSecondary,
	},
	{
		Name:   "social",
		Types:  []catalog.Type{catalog.TypeTestimonial, catalog.TypeTextBlock},
		Weight: 0.15,
		Tier:   score.TierSecondary,
	},
	{
		Name:   "comparison",
		Types:  []catalog.Type{catalog.TypeBeforeAfter},
		Weight: 0.10,
		Tier:   score.TierSecondary,
	},
}

// Strategy selects the composer variant. The zero value is the simple
// single-column composer without destination fit; use [DefaultStrategy] for
// the zone-aware one.
type Strategy struct {
	// PlanZones enables multi-column zones.
	PlanZones bool

	// UseDestinationFit scores candidates against a viewport slot.
	UseDestinationFit bool

	// EnhancedFit enables the fit bonus for clean downscales.
	EnhancedFit bool

	// MinContent and MaxContent bound the content target. Default: 10, 25.
	MinContent int
	MaxContent int

	// MaxIterations caps content-loop steps. Default: 100.
	MaxIterations int

	// Categories is the weighted content distribution. Default: DefaultCategories.
	Categories []Category
}

// DefaultStrategy returns the zone-aware strategy with destination fit.
func DefaultStrategy() Strategy {
	return Strategy{
		PlanZones:         true,
		UseDestinationFit: true,
		MinContent:        DefaultMinContent,
		MaxContent:        DefaultMaxContent,
		MaxIterations:     DefaultMaxIterations,
	}
}

// SimpleStrategy returns the single-column strategy.
func SimpleStrategy() Strategy {
	s := DefaultStrategy()
	s.PlanZones = false
	s.UseDestinationFit = false
	return s
}

// Options configures a [Composer].
type Options struct {
	Strategy Strategy

	// Viewport the layout is generated for. Default: wide.
	Viewport score.Viewport

	// Seed is recorded on the sequence and folded into its ID. It does not
	// seed anything; the caller seeds the generator passed to New.
	Seed uint64

	// HeaderTypes are emitted in order at the top. Default: catalog.HeaderTypes.
	HeaderTypes []catalog.Type

	// HeroTypes are eligible for the hero slot. Default: catalog.HeroTypes.
	HeroTypes []catalog.Type

	// HeadingType introduces sections. Default: section_heading.
	HeadingType catalog.Type

	// ZoneTiers are the zone inventories. Default: zones.DefaultTiers.
	ZoneTiers zones.Tiers

	// Engagement optionally boosts candidates by module id.
	Engagement       map[string]float64
	EngagementWeight float64

	// Hooks receives selection and step events.
	Hooks observability.EngineHooks
}

// ValidateAndSetDefaults validates options and fills in defaults.
// Safe to call more than once.
func (o *Options) ValidateAndSetDefaults() error {
	s := &o.Strategy
	if s.MinContent == 0 {
		s.MinContent = DefaultMinContent
	}
	if s.MaxContent == 0 {
		s.MaxContent = DefaultMaxContent
	}
	if s.MinContent < 1 || s.MaxContent < s.MinContent {
		return errs.New(errs.ErrCodeInvalidInput, "invalid content range [%d, %d]", s.MinContent, s.MaxContent)
	}
	if s.MaxIterations == 0 {
		s.MaxIterations = DefaultMaxIterations
	}
	if s.MaxIterations < 0 {
		return errs.New(errs.ErrCodeInvalidInput, "max iterations must be positive, got %d", s.MaxIterations)
	}
	if s.Categories == nil {
		s.Categories = DefaultCategories
	}
	total := 0.0
	for _, c := range s.Categories {
		if c.Weight < 0 {
			return errs.New(errs.ErrCodeInvalidInput, "category %q has negative weight", c.Name)
		}
		for _, t := range c.Types {
			if !t.Valid() {
				return errs.New(errs.ErrCodeInvalidInput, "category %q has unknown type %q", c.Name, t)
			}
		}
		total += c.Weight
	}
	if total <= 0 {
		return errs.New(errs.ErrCodeInvalidInput, "category weights sum to zero")
	}

	if o.Viewport == "" {
		o.Viewport = score.ViewportWide
	}
	if !o.Viewport.Valid() {
		return errs.New(errs.ErrCodeInvalidViewport, "unknown viewport %q", o.Viewport)
	}
	if o.HeaderTypes == nil {
		o.HeaderTypes = catalog.HeaderTypes
	}
	if o.HeroTypes == nil {
		o.HeroTypes = catalog.HeroTypes
	}
	if o.HeadingType == "" {
		o.HeadingType = catalog.TypeSectionHeading
	}
	if o.ZoneTiers.Tier1 == nil && o.ZoneTiers.Tier2 == nil {
		o.ZoneTiers = zones.DefaultTiers
	}
	o.Hooks = observability.EngineOrNoop(o.Hooks)
	return nil
}
