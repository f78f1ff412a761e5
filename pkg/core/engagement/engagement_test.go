package engagement

import (
	"math"
	"strings"
	"testing"

	"github.com/matzehuels/storeweaver/pkg/core/catalog"
	errs "github.com/matzehuels/storeweaver/pkg/errors"
)

const sampleCSV = `store_id,brand_name,screenshot_filename,collection_start_date,avg_dwell_time_seconds,bounce_rate_percentage,sales_per_visit_inr,conversion_rate_percentage,avg_scroll_depth_percentage
store_001,Acme,acme.png,2025-01-01,150.5,32.1,48.20,6.0,80.0
store_002,Globex,globex.png,2025-01-01,98.0,51.0,20.00,3.5,
store_003,Acme,acme.png,2025-02-01,10,10,10,10,10
`

func approx(a, b float64) bool { return math.Abs(a-b) < 1e-9 }

func TestReadMetricsCSV(t *testing.T) {
	m, err := ReadMetricsCSV(strings.NewReader(sampleCSV))
	if err != nil {
		t.Fatalf("ReadMetricsCSV() error: %v", err)
	}
	if len(m) != 2 {
		t.Fatalf("len = %d, want 2", len(m))
	}

	acme := m["acme.png"]
	if acme.StoreID != "store_001" || acme.AvgDwellTime != 150.5 || acme.ConversionRate != 6 || acme.AvgScrollDepth != 80 {
		t.Errorf("acme = %+v (first row should win)", acme)
	}
	if got := m["globex.png"].AvgScrollDepth; got != DefaultScrollDepth {
		t.Errorf("missing scroll depth = %v, want default %v", got, DefaultScrollDepth)
	}
}

func TestReadMetricsCSVErrors(t *testing.T) {
	tests := []struct {
		name string
		in   string
	}{
		{"empty", ""},
		{"no screenshot column", "store_id,brand_name\ns1,Acme\n"},
		{"bad number", "screenshot_filename,conversion_rate_percentage\na.png,high\n"},
		{"ragged row", "screenshot_filename,store_id\na.png\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ReadMetricsCSV(strings.NewReader(tt.in))
			if !errs.Is(err, errs.ErrCodeInvalidInput) {
				t.Errorf("ReadMetricsCSV() error = %v, want INVALID_INPUT", err)
			}
		})
	}
}

func TestPosition(t *testing.T) {
	s := StoreMetrics{AvgScrollDepth: 70}

	top := Position(catalog.Rect{Y: 0, Width: 1920, Height: 400}, s)
	if !approx(top.AboveFold, 1.2) || !approx(top.Width, 1) || !approx(top.Height, 1.2) {
		t.Errorf("top factors = %+v", top)
	}
	if !approx(top.Visibility, 400.0/3500) {
		t.Errorf("top visibility = %v", top.Visibility)
	}

	deep := Position(catalog.Rect{Y: 3000, Width: 1920, Height: 450}, s)
	want := 0.5 * 1.0 * 1.1 * (3450.0 / 3500)
	if !approx(deep.Composite, want) {
		t.Errorf("deep composite = %v, want %v", deep.Composite, want)
	}

	wide := Position(catalog.Rect{Y: 9000, Width: 3000, Height: 100}, StoreMetrics{})
	if !approx(wide.Width, 1.2) || !approx(wide.Visibility, 1) {
		t.Errorf("clamped factors = %+v", wide)
	}
}

func TestOptimalHeightFactor(t *testing.T) {
	tests := []struct {
		h, y int
		want float64
	}{
		{400, 0, 1.2},
		{300, 0, 1.0}, // tie between 200 and 400 goes to the smaller
		{1000, 100, 0.9},
		{450, 900, 1.1},
		{50, 900, 0.8},
	}
	for _, tt := range tests {
		if got := optimalHeightFactor(tt.h, tt.y); got != tt.want {
			t.Errorf("optimalHeightFactor(%d, %d) = %v, want %v", tt.h, tt.y, got, tt.want)
		}
	}
}

func TestEstimateModule(t *testing.T) {
	m := &catalog.Module{
		ID:     "ps_1",
		Type:   catalog.TypeProductSelector,
		Rect:   catalog.Rect{Y: 3000, Width: 1920, Height: 450},
		Source: "acme.png",
	}
	s := StoreMetrics{AvgDwellTime: 120, ConversionRate: 5, AvgScrollDepth: 70}

	e := EstimateModule(m, s)
	composite := 0.5 * 1.0 * 1.1 * (3450.0 / 3500)
	if !approx(e.Engagement, 0.5*composite*1.4) {
		t.Errorf("Engagement = %v, want %v", e.Engagement, 0.5*composite*1.4)
	}
	if !approx(e.ConversionContribution, 0.05*composite*1.5*0.1) {
		t.Errorf("ConversionContribution = %v", e.ConversionContribution)
	}
	if want := 120 * (1920.0 * 450 / (1920 * 5000)) * composite; !approx(e.ViewTime, want) {
		t.Errorf("ViewTime = %v, want %v", e.ViewTime, want)
	}

	// Clamped to the floor.
	m.Type = catalog.TypeSectionHeading
	m.Rect = catalog.Rect{Y: 0, Width: 400, Height: 100}
	e = EstimateModule(m, s)
	if e.Engagement != 0.1 {
		t.Errorf("Engagement = %v, want floor 0.1", e.Engagement)
	}
	if e.ViewTime != 0.5 {
		t.Errorf("ViewTime = %v, want floor 0.5", e.ViewTime)
	}
}

func TestFactorsForUnknownType(t *testing.T) {
	if f := FactorsFor(catalog.TypeGallery); f != (TypeFactors{1, 1, 1}) {
		t.Errorf("FactorsFor(gallery) = %+v, want neutral", f)
	}
}

func TestAnalyzeAndSummarize(t *testing.T) {
	cat := catalog.MustNew([]catalog.Module{
		{ID: "ps", Type: catalog.TypeProductSelector, Rect: catalog.Rect{Y: 3000, Width: 1920, Height: 450}, Source: "acme.png"},
		{ID: "tb", Type: catalog.TypeTextBlock, Rect: catalog.Rect{Y: 3000, Width: 1920, Height: 450}, Source: "acme.png"},
		{ID: "orphan", Type: catalog.TypeHero, Rect: catalog.Rect{Width: 1920, Height: 800}, Source: "unknown.png"},
	})
	metrics := Metrics{"acme.png": {ScreenshotFilename: "acme.png", AvgDwellTime: 120, ConversionRate: 5, AvgScrollDepth: 70}}

	estimates := Analyze(cat, metrics)
	if len(estimates) != 2 {
		t.Fatalf("Analyze() = %d estimates, want 2", len(estimates))
	}

	scores := ScoresOf(estimates)
	if _, ok := scores["orphan"]; ok {
		t.Error("module without metrics should have no score")
	}
	if scores["ps"] <= scores["tb"] {
		t.Errorf("product_selector %v should outscore text_block %v", scores["ps"], scores["tb"])
	}

	summary := Summarize(cat, estimates)
	if len(summary) != 2 || summary[0].Type != catalog.TypeProductSelector {
		t.Fatalf("Summarize() = %+v", summary)
	}
	if summary[0].Count != 1 || summary[0].AboveFoldFraction != 0 {
		t.Errorf("summary[0] = %+v", summary[0])
	}
}
