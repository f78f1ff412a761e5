package score

import "math"

// MaxFit is the largest value [Fit] can return.
const MaxFit = 5.0

// Size is a width/height pair in pixels.
type Size struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// Area returns Width*Height.
func (s Size) Area() int { return s.Width * s.Height }

// Aspect returns Width/Height, or 0 when Height is 0.
func (s Size) Aspect() float64 {
	if s.Height == 0 {
		return 0
	}
	return float64(s.Width) / float64(s.Height)
}

// Fit rates how well a source rectangle suits a destination rectangle.
//
// Starting from 5, it subtracts the largest matching scaling penalty
// (dst/src area >4: 3, >2: 2, >1.5: 1) and the largest matching aspect
// penalty (|aspect difference| >1.0: 2, >0.5: 1). With enhanced set, a
// source that needs no upscaling and has nearly the same aspect
// (difference ≤0.2) gains 1. The result is clamped to [0, 5].
//
// Degenerate geometry (zero area on either side) scores 0.
func Fit(src, dst Size, enhanced bool) float64 {
	if src.Area() <= 0 || dst.Area() <= 0 {
		return 0
	}

	scaling := float64(dst.Area()) / float64(src.Area())
	aspectDiff := math.Abs(src.Aspect() - dst.Aspect())
	return fitFromRatios(scaling, aspectDiff, enhanced)
}

func fitFromRatios(scaling, aspectDiff float64, enhanced bool) float64 {
	fit := MaxFit
	switch {
	case scaling > 4:
		fit -= 3
	case scaling > 2:
		fit -= 2
	case scaling > 1.5:
		fit -= 1
	}
	switch {
	case aspectDiff > 1.0:
		fit -= 2
	case aspectDiff > 0.5:
		fit -= 1
	}
	if enhanced && scaling <= 1 && aspectDiff <= 0.2 {
		fit++
	}
	return max(0, min(fit, MaxFit))
}
