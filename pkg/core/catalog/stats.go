package catalog

import (
	"cmp"
	"math"
	"slices"
)

// TypeStats summarises the inventory of one type.
type TypeStats struct {
	Type          Type      `json:"type"`
	Count         int       `json:"count"`
	AvgArea       float64   `json:"avg_area"`
	MinArea       int       `json:"min_area"`
	MaxArea       int       `json:"max_area"`
	CommonAspects []float64 `json:"common_aspects,omitempty"`
}

// Stats returns per-type statistics in [AllTypes] order. Aspect ratios are
// rounded to two decimals and the three most frequent are reported.
func Stats(c *Catalog) []TypeStats {
	var out []TypeStats
	for _, t := range c.Types() {
		mods := c.byType[t]
		s := TypeStats{Type: t, Count: len(mods), MinArea: math.MaxInt}
		total := 0
		aspects := make(map[float64]int)
		for _, m := range mods {
			a := m.Area()
			total += a
			s.MinArea = min(s.MinArea, a)
			s.MaxArea = max(s.MaxArea, a)
			aspects[math.Round(m.Aspect()*100)/100]++
		}
		s.AvgArea = float64(total) / float64(len(mods))
		s.CommonAspects = mostCommon(aspects, 3)
		out = append(out, s)
	}
	return out
}

func mostCommon(counts map[float64]int, n int) []float64 {
	keys := make([]float64, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	slices.SortFunc(keys, func(a, b float64) int {
		if c := cmp.Compare(counts[b], counts[a]); c != 0 {
			return c
		}
		return cmp.Compare(a, b)
	})
	if len(keys) > n {
		keys = keys[:n]
	}
	return keys
}
