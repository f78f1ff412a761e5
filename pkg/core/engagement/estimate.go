package engagement

import (
	"cmp"
	"slices"

	"github.com/matzehuels/storeweaver/pkg/core/catalog"
)

// Page model constants.
const (
	foldY          = 800
	referenceWidth = 1920
	pageHeight     = 5000
	baseEngagement = 0.5
)

// PositionFactors rate a module's placement on its source page.
type PositionFactors struct {
	AboveFold  float64 `json:"above_fold_factor"`
	Width      float64 `json:"width_factor"`
	Height     float64 `json:"height_factor"`
	Visibility float64 `json:"visibility_factor"`
	Composite  float64 `json:"composite_position_score"`
}

// TypeFactors are per-type performance multipliers.
type TypeFactors struct {
	Engagement float64 `json:"engagement"`
	Conversion float64 `json:"conversion"`
	DwellTime  float64 `json:"dwell_time"`
}

var typeFactors = map[catalog.Type]TypeFactors{
	catalog.TypeHero:             {1.2, 1.1, 1.3},
	catalog.TypeProductSelector:  {1.4, 1.5, 1.1},
	catalog.TypeBestsellers:      {1.3, 1.4, 1.0},
	catalog.TypeShopTheLook:      {1.2, 1.3, 1.2},
	catalog.TypeCategoryCarousel: {1.1, 1.2, 0.9},
	catalog.TypeTestimonial:      {1.0, 1.1, 1.1},
	catalog.TypeBeforeAfter:      {1.3, 1.2, 1.4},
	catalog.TypeVideo:            {1.4, 1.0, 1.5},
	catalog.TypeStaticImage:      {0.8, 0.7, 0.8},
	catalog.TypeTextBlock:        {0.7, 0.6, 1.0},
	catalog.TypeSectionHeading:   {0.6, 0.5, 0.5},
}

// FactorsFor returns the multipliers for t. Types without data are neutral.
func FactorsFor(t catalog.Type) TypeFactors {
	if f, ok := typeFactors[t]; ok {
		return f
	}
	return TypeFactors{1, 1, 1}
}

type heightFactor struct {
	height int
	factor float64
}

var (
	aboveFoldHeights = []heightFactor{{200, 1.0}, {400, 1.2}, {600, 1.1}, {800, 0.9}}
	belowFoldHeights = []heightFactor{{150, 0.8}, {300, 1.0}, {450, 1.1}, {600, 0.9}}
)

// optimalHeightFactor returns the factor of the table entry closest to h.
// Ties go to the smaller height.
func optimalHeightFactor(h, y int) float64 {
	table := belowFoldHeights
	if y < foldY {
		table = aboveFoldHeights
	}
	best := table[0]
	for _, e := range table[1:] {
		if abs(e.height-h) < abs(best.height-h) {
			best = e
		}
	}
	return best.factor
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}

// Position computes the position factors of r on a page with store metrics s.
func Position(r catalog.Rect, s StoreMetrics) PositionFactors {
	scroll := s.AvgScrollDepth
	if scroll <= 0 {
		scroll = DefaultScrollDepth
	}
	f := PositionFactors{
		AboveFold:  max(0.5, 1.2-float64(r.Y)/foldY),
		Width:      min(1.2, float64(r.Width)/referenceWidth),
		Height:     optimalHeightFactor(r.Height, r.Y),
		Visibility: min(1.0, float64(r.Y+r.Height)/(scroll/100*pageHeight)),
	}
	f.Composite = f.AboveFold * f.Width * f.Height * f.Visibility
	return f
}

// Estimate is the per-module result of the pass.
type Estimate struct {
	ModuleID               string          `json:"module_id"`
	Type                   catalog.Type    `json:"type"`
	ViewTime               float64         `json:"estimated_view_time"`
	Engagement             float64         `json:"estimated_engagement_score"`
	ConversionContribution float64         `json:"estimated_conversion_contribution"`
	Position               PositionFactors `json:"position_factors"`
	Factors                TypeFactors     `json:"type_factors"`
}

// EstimateModule estimates the performance of m on a page with metrics s.
func EstimateModule(m *catalog.Module, s StoreMetrics) Estimate {
	pos := Position(m.Rect, s)
	tf := FactorsFor(m.Type)

	dwell := s.AvgDwellTime
	if dwell <= 0 {
		dwell = DefaultDwellTimeSeconds
	}
	conv := s.ConversionRate
	if conv <= 0 {
		conv = DefaultConversionRate
	}
	areaShare := float64(m.Area()) / (referenceWidth * pageHeight)

	return Estimate{
		ModuleID:               m.ID,
		Type:                   m.Type,
		ViewTime:               max(0.5, dwell*areaShare*pos.Composite),
		Engagement:             min(1.0, max(0.1, baseEngagement*pos.Composite*tf.Engagement)),
		ConversionContribution: max(0.001, conv/100*pos.Composite*tf.Conversion*0.1),
		Position:               pos,
		Factors:                tf,
	}
}

// Scores maps module ids to engagement in [0.1, 1.0].
type Scores map[string]float64

// Analyze estimates every module of cat whose source page has metrics.
// Modules without metrics are left out. Estimates are in catalog order.
func Analyze(cat *catalog.Catalog, metrics Metrics) []Estimate {
	var out []Estimate
	for _, m := range cat.Modules() {
		s, ok := metrics[m.Source]
		if !ok {
			continue
		}
		out = append(out, EstimateModule(m, s))
	}
	return out
}

// ScoresOf collects the engagement of each estimate.
func ScoresOf(estimates []Estimate) Scores {
	out := make(Scores, len(estimates))
	for _, e := range estimates {
		out[e.ModuleID] = e.Engagement
	}
	return out
}

// TypeSummary aggregates estimates per type.
type TypeSummary struct {
	Type              catalog.Type `json:"type"`
	Count             int          `json:"count"`
	AvgEngagement     float64      `json:"avg_engagement"`
	AvgViewTime       float64      `json:"avg_view_time"`
	AvgConversion     float64      `json:"avg_conversion_contribution"`
	PerformanceScore  float64      `json:"performance_score"`
	AboveFoldFraction float64      `json:"preferred_above_fold"`
}

// Summarize ranks types by performance score, defined as
// 0.4*avgEngagement + 60*avgConversion. Ties break by type name.
func Summarize(cat *catalog.Catalog, estimates []Estimate) []TypeSummary {
	acc := make(map[catalog.Type]*TypeSummary)
	var order []catalog.Type
	for _, e := range estimates {
		s, ok := acc[e.Type]
		if !ok {
			s = &TypeSummary{Type: e.Type}
			acc[e.Type] = s
			order = append(order, e.Type)
		}
		s.Count++
		s.AvgEngagement += e.Engagement
		s.AvgViewTime += e.ViewTime
		s.AvgConversion += e.ConversionContribution
		if m, ok := cat.Get(e.ModuleID); ok && m.Rect.Y < foldY {
			s.AboveFoldFraction++
		}
	}

	out := make([]TypeSummary, 0, len(order))
	for _, t := range order {
		s := *acc[t]
		n := float64(s.Count)
		s.AvgEngagement /= n
		s.AvgViewTime /= n
		s.AvgConversion /= n
		s.AboveFoldFraction /= n
		s.PerformanceScore = s.AvgEngagement*0.4 + s.AvgConversion*100*0.6
		out = append(out, s)
	}
	slices.SortFunc(out, func(a, b TypeSummary) int {
		if c := cmp.Compare(b.PerformanceScore, a.PerformanceScore); c != 0 {
			return c
		}
		return cmp.Compare(a.Type, b.Type)
	})
	return out
}
