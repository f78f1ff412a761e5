package score

import (
	"testing"

	"github.com/matzehuels/storeweaver/pkg/core/catalog"
	"github.com/matzehuels/storeweaver/pkg/core/catalog/catalogtest"
	errs "github.com/matzehuels/storeweaver/pkg/errors"
)

func TestQuality(t *testing.T) {
	tests := []struct {
		name          string
		width, height int
		want          float64
	}{
		{"square megapixel", 1000, 1000, 5},
		{"wide banner", 1200, 600, 5.5},
		{"good", 500, 500, 4},
		{"fair banner", 500, 250, 3.5},
		{"fair", 400, 300, 3},
		{"poor", 300, 200, 2.5},
		{"tiny", 100, 100, 1},
		{"bonus lower edge", 150, 100, 1.5},
		{"bonus upper edge", 250, 100, 1.5},
		{"just outside bonus", 260, 100, 1},
		{"zero height", 1000, 0, 1},
		{"area exactly 500k", 1000, 500, 4.5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Quality(tt.width, tt.height)
			if got != tt.want {
				t.Errorf("Quality(%d, %d) = %v, want %v", tt.width, tt.height, got, tt.want)
			}
			if got < 1 || got > MaxQuality {
				t.Errorf("Quality out of range: %v", got)
			}
		})
	}
}

func TestFit(t *testing.T) {
	tests := []struct {
		name     string
		src, dst Size
		enhanced bool
		want     float64
	}{
		{"identical", Size{800, 400}, Size{800, 400}, false, 5},
		{"identical enhanced clamps", Size{800, 400}, Size{800, 400}, true, 5},
		{"scale 9 same aspect", Size{100, 100}, Size{300, 300}, false, 2},
		{"scale 3", Size{100, 100}, Size{300, 100}, false, 1},
		{"scale 1.6 aspect diff 0.6", Size{100, 100}, Size{160, 100}, false, 3},
		{"aspect diff 2 downscale", Size{400, 100}, Size{200, 100}, false, 3},
		{"worst case", Size{10, 100}, Size{1000, 100}, false, 0},
		{"downscale no bonus without enhanced", Size{1000, 500}, Size{800, 400}, false, 5},
		{"degenerate source", Size{0, 100}, Size{100, 100}, false, 0},
		{"degenerate destination", Size{100, 100}, Size{100, 0}, false, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Fit(tt.src, tt.dst, tt.enhanced)
			if got != tt.want {
				t.Errorf("Fit(%v, %v, %v) = %v, want %v", tt.src, tt.dst, tt.enhanced, got, tt.want)
			}
		})
	}
}

func TestFitFromRatios(t *testing.T) {
	tests := []struct {
		scaling, aspectDiff float64
		enhanced            bool
		want                float64
	}{
		{5, 0, false, 2},
		{4, 0, false, 3},
		{2, 0, false, 4},
		{1.5, 0, false, 5},
		{1, 0.5, false, 5},
		{1, 0.51, false, 4},
		{1, 1.01, false, 3},
		{5, 1.01, false, 0},
		{0.5, 0.2, true, 5},
		{0.5, 0.6, true, 4},
	}

	for _, tt := range tests {
		got := fitFromRatios(tt.scaling, tt.aspectDiff, tt.enhanced)
		if got != tt.want {
			t.Errorf("fitFromRatios(%v, %v, %v) = %v, want %v", tt.scaling, tt.aspectDiff, tt.enhanced, got, tt.want)
		}
	}
}

func TestFitEnhanced(t *testing.T) {
	// Downscale with one aspect penalty: the bonus does not apply.
	if got := Fit(Size{1600, 900}, Size{800, 300}, true); got != 4 {
		t.Errorf("Fit() = %v, want 4", got)
	}
	// Upscaling never earns the bonus.
	if got := Fit(Size{500, 250}, Size{640, 320}, true); got != 4 {
		t.Errorf("Fit() = %v, want 4", got)
	}
	// The bonus on a clean downscale is clamped at the maximum.
	if got := Fit(Size{1000, 500}, Size{900, 450}, true); got != MaxFit {
		t.Errorf("Fit() = %v, want %v", got, MaxFit)
	}
}

func TestParseViewport(t *testing.T) {
	for _, name := range []string{"narrow", "Medium", " WIDE "} {
		if _, err := ParseViewport(name); err != nil {
			t.Errorf("ParseViewport(%q) error: %v", name, err)
		}
	}
	_, err := ParseViewport("tablet")
	if !errs.Is(err, errs.ErrCodeInvalidViewport) {
		t.Errorf("ParseViewport(tablet) error = %v, want INVALID_VIEWPORT", err)
	}
}

func TestSlotFor(t *testing.T) {
	tests := []struct {
		v      Viewport
		tier   Tier
		p      Placement
		wantW  int
		wantH  int
		wantTi Tier
	}{
		{ViewportWide, TierHero, PlacementContent, 1920, 800, TierHero},
		{ViewportWide, TierHero, PlacementHeader, 1920, 240, TierHero},
		{ViewportMedium, TierProminent, PlacementContent, 1024, 512, TierProminent},
		{ViewportNarrow, TierSecondary, PlacementContent, 414, 207, TierSecondary},
		{ViewportNarrow, TierFiller, PlacementFooter, 414, 138, TierFiller},
	}

	for _, tt := range tests {
		s := SlotFor(tt.v, tt.tier, tt.p)
		if s.Width != tt.wantW || s.Height != tt.wantH {
			t.Errorf("SlotFor(%s, %s, %s) = %dx%d, want %dx%d", tt.v, tt.tier, tt.p, s.Width, s.Height, tt.wantW, tt.wantH)
		}
		if s.Tier != tt.wantTi || s.Viewport != tt.v || s.Placement != tt.p {
			t.Errorf("SlotFor() = %+v", s)
		}
	}
}

func TestTierMinQuality(t *testing.T) {
	want := map[Tier]float64{TierHero: 5, TierProminent: 4, TierSecondary: 3, TierFiller: 2}
	for tier, q := range want {
		if got := tier.MinQuality(); got != q {
			t.Errorf("%s.MinQuality() = %v, want %v", tier, got, q)
		}
	}
}

func TestScore(t *testing.T) {
	m := catalogtest.Module("hero_x", catalog.TypeHero, 1920, 800)

	s := Score(&m, nil, false)
	if s.Quality != 5.5 || s.Fit != 0 {
		t.Errorf("Score(nil slot) = %+v", s)
	}

	slot := SlotFor(ViewportWide, TierHero, PlacementContent)
	s = Score(&m, &slot, false)
	if s.Fit != 5 || s.Total() != 10.5 {
		t.Errorf("Score(hero slot) = %+v, total %v", s, s.Total())
	}
	if s.Module != &m {
		t.Error("Score should reference the original module")
	}
}
