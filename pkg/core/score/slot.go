package score

import (
	"math"
	"strings"

	"github.com/matzehuels/storeweaver/pkg/core/catalog"
	errs "github.com/matzehuels/storeweaver/pkg/errors"
)

// Viewport is the device class a layout is generated for.
type Viewport string

const (
	ViewportNarrow Viewport = "narrow"
	ViewportMedium Viewport = "medium"
	ViewportWide   Viewport = "wide"
)

// Viewports lists the supported viewport classes, narrowest first.
var Viewports = []Viewport{ViewportNarrow, ViewportMedium, ViewportWide}

var viewportWidths = map[Viewport]int{
	ViewportNarrow: 414,
	ViewportMedium: 1024,
	ViewportWide:   1920,
}

// Width returns the reference pixel width of the viewport, or 0 if unknown.
func (v Viewport) Width() int { return viewportWidths[v] }

// Valid reports whether v is a known viewport class.
func (v Viewport) Valid() bool {
	_, ok := viewportWidths[v]
	return ok
}

// ParseViewport converts a name like "wide" into a Viewport.
// Matching is case-insensitive; unknown names return ErrCodeInvalidViewport.
func ParseViewport(s string) (Viewport, error) {
	v := Viewport(strings.ToLower(strings.TrimSpace(s)))
	if !v.Valid() {
		return "", errs.New(errs.ErrCodeInvalidViewport, "unknown viewport %q (want narrow, medium or wide)", s)
	}
	return v, nil
}

// Tier is a selection-strictness level.
type Tier string

const (
	TierHero      Tier = "hero"
	TierProminent Tier = "prominent"
	TierSecondary Tier = "secondary"
	TierFiller    Tier = "filler"
)

// MinQuality returns the quality floor a candidate must reach at this tier.
func (t Tier) MinQuality() float64 {
	switch t {
	case TierHero:
		return 5
	case TierProminent:
		return 4
	case TierSecondary:
		return 3
	default:
		return 2
	}
}

// Placement is the page region a slot belongs to.
type Placement string

const (
	PlacementHeader  Placement = "header"
	PlacementContent Placement = "content"
	PlacementFooter  Placement = "footer"
)

// Slot is the destination a module is selected for.
type Slot struct {
	Width     int       `json:"width"`
	Height    int       `json:"height"`
	Viewport  Viewport  `json:"viewport"`
	Tier      Tier      `json:"tier"`
	Placement Placement `json:"placement"`
}

// Size returns the slot rectangle.
func (s Slot) Size() Size { return Size{Width: s.Width, Height: s.Height} }

// Target aspect ratios by tier. Header slots use headerAspect regardless of
// tier.
const headerAspect = 8.0

var tierAspects = map[Tier]float64{
	TierHero:      2.4,
	TierProminent: 2.0,
	TierSecondary: 2.0,
	TierFiller:    3.0,
}

// SlotFor derives the slot for a tier and placement on the given viewport.
// The width is the viewport width; the height follows from the target
// aspect ratio.
func SlotFor(v Viewport, t Tier, p Placement) Slot {
	aspect := tierAspects[t]
	if p == PlacementHeader {
		aspect = headerAspect
	}
	if aspect == 0 {
		aspect = tierAspects[TierFiller]
	}
	w := v.Width()
	return Slot{
		Width:     w,
		Height:    int(math.Round(float64(w) / aspect)),
		Viewport:  v,
		Tier:      t,
		Placement: p,
	}
}

// Scored is a module with its transient scores for one selection call.
type Scored struct {
	Module  *catalog.Module
	Quality float64
	Fit     float64
}

// Total returns Quality+Fit.
func (s Scored) Total() float64 { return s.Quality + s.Fit }

// Score computes the scores of m. Fit is only computed when slot is non-nil.
func Score(m *catalog.Module, slot *Slot, enhanced bool) Scored {
	s := Scored{Module: m, Quality: Quality(m.Width(), m.Height())}
	if slot != nil {
		s.Fit = Fit(Size{Width: m.Width(), Height: m.Height()}, slot.Size(), enhanced)
	}
	return s
}
