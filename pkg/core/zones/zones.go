// Package zones plans the multi-column regions of a layout.
//
// A [Zone] reserves a contiguous run of content positions for modules that
// render well side by side. Positions are offsets from the start of the
// content region, which begins right after the header and hero modules.
//
// [Plan] sizes the zones from catalog inventory:
//
//	total ≥ 6   two zones of 3 at positions 3 and 7
//	total ≥ 4   one zone of 4 at position 4
//	total ≥ 3   one zone of 3 at position 4
//	total ≥ 2   one zone of 2 at position 4
//	otherwise   no zones
//
// where total counts the modules of both zone tiers. The table never
// produces overlapping zones; [Validate] checks plans built any other way.
package zones

import (
	"cmp"
	"slices"

	"github.com/matzehuels/storeweaver/pkg/core/catalog"
	errs "github.com/matzehuels/storeweaver/pkg/errors"
)

// Zone is a reserved range of content positions.
type Zone struct {
	Position     int `json:"position"`
	SectionCount int `json:"section_count"`
}

// End returns the first position after the zone.
func (z Zone) End() int { return z.Position + z.SectionCount }

// Contains reports whether pos lies inside the zone.
func (z Zone) Contains(pos int) bool { return pos >= z.Position && pos < z.End() }

// Tiers names the module types counted as zone inventory.
type Tiers struct {
	Tier1 []catalog.Type
	Tier2 []catalog.Type
}

// DefaultTiers uses the catalog's zone type sets.
var DefaultTiers = Tiers{Tier1: catalog.Tier1ZoneTypes, Tier2: catalog.Tier2ZoneTypes}

// Plan returns the zones for cat.
func Plan(cat *catalog.Catalog, tiers Tiers) []Zone {
	return PlanCounts(cat.Count(tiers.Tier1...), cat.Count(tiers.Tier2...))
}

// PlanCounts returns the zones for the given tier inventories.
func PlanCounts(tier1, tier2 int) []Zone {
	switch total := tier1 + tier2; {
	case total >= 6:
		return []Zone{{Position: 3, SectionCount: 3}, {Position: 7, SectionCount: 3}}
	case total >= 4:
		return []Zone{{Position: 4, SectionCount: 4}}
	case total >= 3:
		return []Zone{{Position: 4, SectionCount: 3}}
	case total >= 2:
		return []Zone{{Position: 4, SectionCount: 2}}
	default:
		return nil
	}
}

// At returns the zone containing pos.
func At(zs []Zone, pos int) (Zone, bool) {
	for _, z := range zs {
		if z.Contains(pos) {
			return z, true
		}
	}
	return Zone{}, false
}

// Validate reports zones with negative positions, empty sizes or
// overlapping ranges.
func Validate(zs []Zone) error {
	sorted := slices.Clone(zs)
	slices.SortFunc(sorted, func(a, b Zone) int { return cmp.Compare(a.Position, b.Position) })

	for i, z := range sorted {
		if z.Position < 0 || z.SectionCount <= 0 {
			return errs.New(errs.ErrCodeInvalidInput, "invalid zone %+v", z)
		}
		if i > 0 && sorted[i-1].End() > z.Position {
			return errs.New(errs.ErrCodeInvalidInput, "zones %+v and %+v overlap", sorted[i-1], z)
		}
	}
	return nil
}
