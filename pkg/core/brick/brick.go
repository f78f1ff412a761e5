package brick

import (
	"slices"

	"github.com/matzehuels/storeweaver/pkg/core/catalog"
	"github.com/matzehuels/storeweaver/pkg/observability"
)

// Kind distinguishes singles from bricks.
type Kind string

const (
	KindSingle Kind = "single"
	KindBrick  Kind = "brick"
)

// Shape is the cell arrangement of a brick.
type Shape string

const (
	ShapeSingle       Shape = "single"
	ShapeColumns      Shape = "columns"
	ShapeFeatureStack Shape = "feature-stack"
	ShapeGrid         Shape = "grid"
)

// Candidate geometry limits.
const (
	MinAspect = 0.4
	MaxAspect = 3.0
	MinWidth  = 200
	MinHeight = 100

	// Heights outside this band look wrong at brick cell size.
	MinCellHeight = 150
	MaxCellHeight = 600
)

// MaxMembers is the largest brick.
const MaxMembers = 4

// Group is one rendering cluster.
type Group struct {
	Kind    Kind              `json:"kind"`
	Shape   Shape             `json:"shape"`
	Members []*catalog.Module `json:"members"`
}

// Cell is a fractional rectangle inside a group's bounding box.
type Cell struct {
	X, Y, Width, Height float64
}

// Cells returns one cell per member, in member order.
func (g Group) Cells() []Cell {
	switch g.Shape {
	case ShapeColumns:
		return []Cell{{0, 0, 0.5, 1}, {0.5, 0, 0.5, 1}}
	case ShapeFeatureStack:
		return []Cell{{0, 0, 0.5, 1}, {0.5, 0, 0.5, 0.5}, {0.5, 0.5, 0.5, 0.5}}
	case ShapeGrid:
		return []Cell{{0, 0, 0.5, 0.5}, {0.5, 0, 0.5, 0.5}, {0, 0.5, 0.5, 0.5}, {0.5, 0.5, 0.5, 0.5}}
	default:
		return []Cell{{0, 0, 1, 1}}
	}
}

// Options configures [Pack].
type Options struct {
	// Types is the brick-friendly type set. Default: catalog.BrickTypes().
	Types []catalog.Type

	// Hooks receives one OnGroup event per emitted group.
	Hooks observability.EngineHooks
}

// IsCandidate reports whether m may join a brick: its type is brick-friendly
// and its geometry fits a brick cell.
func IsCandidate(m *catalog.Module) bool {
	return isCandidate(m, catalog.BrickTypes())
}

func isCandidate(m *catalog.Module, types []catalog.Type) bool {
	if isolated(m.Type) || !slices.Contains(types, m.Type) {
		return false
	}
	aspect := m.Aspect()
	w, h := m.Width(), m.Height()
	return aspect >= MinAspect && aspect <= MaxAspect &&
		w >= MinWidth && h >= MinHeight &&
		h >= MinCellHeight && h <= MaxCellHeight
}

func isolated(t catalog.Type) bool {
	return t.IsHeading() || slices.Contains(catalog.HeaderTypes, t) || slices.Contains(catalog.HeroTypes, t)
}

// Pack partitions mods into singles and bricks, preserving order.
func Pack(mods []*catalog.Module, opts Options) []Group {
	types := opts.Types
	if types == nil {
		types = catalog.BrickTypes()
	}
	hooks := observability.EngineOrNoop(opts.Hooks)

	var groups []Group
	for i := 0; i < len(mods); {
		n := 1
		if isCandidate(mods[i], types) {
			for n < MaxMembers && i+n < len(mods) && isCandidate(mods[i+n], types) {
				n++
			}
		}
		g := newGroup(mods[i : i+n])
		hooks.OnGroup(string(g.Kind), len(g.Members))
		groups = append(groups, g)
		i += n
	}
	return groups
}

func newGroup(members []*catalog.Module) Group {
	kind, shape := ShapeOf(len(members))
	return Group{Kind: kind, Shape: shape, Members: slices.Clone(members)}
}

// ShapeOf returns the kind and shape of a group with n members. Sizes
// outside [1, MaxMembers] report a single.
func ShapeOf(n int) (Kind, Shape) {
	switch n {
	case 2:
		return KindBrick, ShapeColumns
	case 3:
		return KindBrick, ShapeFeatureStack
	case 4:
		return KindBrick, ShapeGrid
	default:
		return KindSingle, ShapeSingle
	}
}

// Flatten concatenates the members of gs in order.
func Flatten(gs []Group) []*catalog.Module {
	var out []*catalog.Module
	for _, g := range gs {
		out = append(out, g.Members...)
	}
	return out
}
