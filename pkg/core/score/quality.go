package score

// Area thresholds for [Quality], in square pixels.
const (
	areaExcellent = 500_000
	areaGood      = 200_000
	areaFair      = 100_000
	areaPoor      = 50_000
)

// Aspect range that earns the banner bonus in [Quality].
const (
	bannerAspectMin = 1.5
	bannerAspectMax = 2.5
	bannerBonus     = 0.5
)

// MaxQuality is the largest value [Quality] can return.
const MaxQuality = 5 + bannerBonus

// Quality rates a module's display quality from its pixel dimensions.
//
// The base score is picked by the first matching area threshold (>500k: 5,
// >200k: 4, >100k: 3, >50k: 2, else 1). Modules with a banner-like aspect
// ratio in [1.5, 2.5] get a 0.5 bonus. A zero height never earns the bonus.
func Quality(width, height int) float64 {
	area := width * height

	var q float64
	switch {
	case area > areaExcellent:
		q = 5
	case area > areaGood:
		q = 4
	case area > areaFair:
		q = 3
	case area > areaPoor:
		q = 2
	default:
		q = 1
	}

	if height > 0 {
		aspect := float64(width) / float64(height)
		if aspect >= bannerAspectMin && aspect <= bannerAspectMax {
			q += bannerBonus
		}
	}
	return q
}
