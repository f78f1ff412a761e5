package layout

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"slices"

	"github.com/matzehuels/storeweaver/pkg/core/brick"
	"github.com/matzehuels/storeweaver/pkg/core/catalog"
	"github.com/matzehuels/storeweaver/pkg/core/compose"
	"github.com/matzehuels/storeweaver/pkg/core/score"
	"github.com/matzehuels/storeweaver/pkg/core/zones"
	errs "github.com/matzehuels/storeweaver/pkg/errors"
)

// =============================================================================
// Layout - Serialization Format
// =============================================================================

// Layout is the serialized form of a generated layout.
type Layout struct {
	ID            string         `json:"id"`
	Seed          uint64         `json:"seed"`
	Viewport      score.Viewport `json:"viewport"`
	HeaderCount   int            `json:"header_count"`
	ContentTarget int            `json:"content_target"`
	Iterations    int            `json:"iterations"`
	Incomplete    bool           `json:"incomplete,omitempty"`
	Zones         []zones.Zone   `json:"zones,omitempty"`
	Entries       []Entry        `json:"entries"`
	Bricks        []Brick        `json:"bricks,omitempty"`
}

// Entry is one position of a layout.
type Entry struct {
	ModuleID  string       `json:"module_id"`
	Type      catalog.Type `json:"type"`
	Role      compose.Role `json:"role"`
	Tier      score.Tier   `json:"tier"`
	Zone      *int         `json:"zone,omitempty"`
	Width     int          `json:"width"`
	Height    int          `json:"height"`
	Thumbnail string       `json:"thumbnail,omitempty"`
}

// Brick is one narrow-viewport rendering group.
type Brick struct {
	Kind      brick.Kind  `json:"kind"`
	Shape     brick.Shape `json:"shape"`
	ModuleIDs []string    `json:"module_ids"`
}

// ContentCount returns the number of entries counted toward the content
// target.
func (l *Layout) ContentCount() int {
	n := 0
	for _, e := range l.Entries {
		if e.Role.Counted() {
			n++
		}
	}
	return n
}

// =============================================================================
// Conversion
// =============================================================================

// Export converts a sequence and its groups to the serialization format.
// groups may be nil.
func Export(seq *compose.Sequence, groups []brick.Group) Layout {
	l := Layout{
		ID:            seq.ID,
		Seed:          seq.Seed,
		Viewport:      seq.Viewport,
		HeaderCount:   seq.HeaderCount,
		ContentTarget: seq.ContentTarget,
		Iterations:    seq.Iterations,
		Incomplete:    seq.Incomplete,
		Zones:         slices.Clone(seq.Zones),
		Entries:       make([]Entry, len(seq.Entries)),
	}
	for i, e := range seq.Entries {
		l.Entries[i] = Entry{
			ModuleID:  e.Module.ID,
			Type:      e.Module.Type,
			Role:      e.Role,
			Tier:      e.Tier,
			Width:     e.Module.Width(),
			Height:    e.Module.Height(),
			Thumbnail: e.Module.Renditions.Thumbnail.Path,
		}
		if e.Zone >= 0 {
			z := e.Zone
			l.Entries[i].Zone = &z
		}
	}
	for _, g := range groups {
		b := Brick{Kind: g.Kind, Shape: g.Shape, ModuleIDs: make([]string, len(g.Members))}
		for j, m := range g.Members {
			b.ModuleIDs[j] = m.ID
		}
		l.Bricks = append(l.Bricks, b)
	}
	return l
}

// Parse resolves a serialized layout against cat.
//
// Every module id must exist in cat with the recorded type and every zone
// index must name one of the layout's zones. When the layout carries
// bricks, they must partition the entries in order and each brick's kind
// and shape must match its size. The id is recomputed from the seed,
// viewport and entries; a client-supplied id is ignored.
func Parse(l Layout, cat *catalog.Catalog) (*compose.Sequence, []brick.Group, error) {
	if l.Viewport != "" && !l.Viewport.Valid() {
		return nil, nil, errs.New(errs.ErrCodeInvalidViewport, "unknown viewport %q", l.Viewport)
	}
	seq := &compose.Sequence{
		Seed:          l.Seed,
		Viewport:      l.Viewport,
		HeaderCount:   l.HeaderCount,
		ContentTarget: l.ContentTarget,
		Iterations:    l.Iterations,
		Incomplete:    l.Incomplete,
		Zones:         slices.Clone(l.Zones),
		Entries:       make([]compose.Entry, len(l.Entries)),
	}
	for i, e := range l.Entries {
		m, err := resolve(cat, e.ModuleID)
		if err != nil {
			return nil, nil, err
		}
		if e.Type != "" && e.Type != m.Type {
			return nil, nil, errs.New(errs.ErrCodeInvalidInput, "entry %d: module %q is %s, layout says %s", i, m.ID, m.Type, e.Type)
		}
		zone := -1
		if e.Zone != nil {
			zone = *e.Zone
			if zone < 0 || zone >= len(l.Zones) {
				return nil, nil, errs.New(errs.ErrCodeInvalidInput, "entry %d: zone %d out of range [0, %d)", i, zone, len(l.Zones))
			}
		}
		seq.Entries[i] = compose.Entry{Module: m, Role: e.Role, Tier: e.Tier, Zone: zone}
	}
	if err := zones.Validate(seq.Zones); err != nil {
		return nil, nil, err
	}
	seq.ID = compose.SequenceID(seq.Seed, seq.Viewport, seq.ModuleIDs())

	if len(l.Bricks) == 0 {
		return seq, nil, nil
	}
	groups := make([]brick.Group, len(l.Bricks))
	pos := 0
	for i, b := range l.Bricks {
		if kind, shape := brick.ShapeOf(len(b.ModuleIDs)); len(b.ModuleIDs) == 0 || b.Kind != kind || b.Shape != shape {
			return nil, nil, errs.New(errs.ErrCodeInvalidInput, "brick %d: %d members do not make a %s %s", i, len(b.ModuleIDs), b.Kind, b.Shape)
		}
		g := brick.Group{Kind: b.Kind, Shape: b.Shape, Members: make([]*catalog.Module, len(b.ModuleIDs))}
		for j, id := range b.ModuleIDs {
			if pos >= len(seq.Entries) || seq.Entries[pos].Module.ID != id {
				return nil, nil, errs.New(errs.ErrCodeInvalidInput, "brick %d does not follow the entry order at position %d", i, pos)
			}
			g.Members[j] = seq.Entries[pos].Module
			pos++
		}
		groups[i] = g
	}
	if pos != len(seq.Entries) {
		return nil, nil, errs.New(errs.ErrCodeInvalidInput, "bricks cover %d of %d entries", pos, len(seq.Entries))
	}
	return seq, groups, nil
}

func resolve(cat *catalog.Catalog, id string) (*catalog.Module, error) {
	m, ok := cat.Get(id)
	if !ok {
		return nil, errs.New(errs.ErrCodeNotFound, "module %q not in catalog", id)
	}
	return m, nil
}

// =============================================================================
// Layout Serialization API
// =============================================================================

// Marshal converts a layout to indented JSON bytes.
func Marshal(l Layout) ([]byte, error) {
	var buf bytes.Buffer
	if err := Write(l, &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Write writes l as JSON to w.
func Write(l Layout, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(l); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}

// WriteFile writes l to a JSON file.
func WriteFile(l Layout, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()
	return Write(l, f)
}

// Read decodes a layout from r.
func Read(r io.Reader) (Layout, error) {
	var l Layout
	if err := json.NewDecoder(r).Decode(&l); err != nil {
		return Layout{}, errs.Wrap(errs.ErrCodeInvalidInput, err, "decode layout")
	}
	return l, nil
}

// ReadFile reads a layout JSON file.
func ReadFile(path string) (Layout, error) {
	f, err := os.Open(path)
	if err != nil {
		return Layout{}, errs.Wrap(errs.ErrCodeNotFound, err, "open layout %s", path)
	}
	defer f.Close()
	return Read(f)
}
