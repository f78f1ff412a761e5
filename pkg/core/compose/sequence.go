package compose

import (
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/matzehuels/storeweaver/pkg/core/catalog"
	"github.com/matzehuels/storeweaver/pkg/core/score"
	"github.com/matzehuels/storeweaver/pkg/core/zones"
)

// Role is why an entry is in the sequence.
type Role string

const (
	RoleHeader  Role = "header"
	RoleHero    Role = "hero"
	RoleHeading Role = "heading"
	RoleContent Role = "content"
	RoleZone    Role = "zone"
)

// Counted reports whether entries with this role count toward the content
// target.
func (r Role) Counted() bool { return r == RoleContent || r == RoleZone }

// Entry is one position in a layout.
type Entry struct {
	Module *catalog.Module
	Role   Role
	Tier   score.Tier

	// Zone is the index into Sequence.Zones for RoleZone entries and for the
	// heading that introduces a zone, else -1.
	Zone int
}

// Sequence is a generated layout.
type Sequence struct {
	ID            string
	Seed          uint64
	Viewport      score.Viewport
	Entries       []Entry
	HeaderCount   int
	ContentTarget int
	Zones         []zones.Zone
	Iterations    int

	// Incomplete is set when the content target was not reached or a
	// mandatory module was missing.
	Incomplete bool
}

// Len returns the number of entries.
func (s *Sequence) Len() int { return len(s.Entries) }

// Modules returns the modules in order.
func (s *Sequence) Modules() []*catalog.Module {
	out := make([]*catalog.Module, len(s.Entries))
	for i, e := range s.Entries {
		out[i] = e.Module
	}
	return out
}

// ModuleIDs returns the module ids in order.
func (s *Sequence) ModuleIDs() []string {
	out := make([]string, len(s.Entries))
	for i, e := range s.Entries {
		out[i] = e.Module.ID
	}
	return out
}

// ContentCount returns the number of entries counted toward the content
// target.
func (s *Sequence) ContentCount() int {
	n := 0
	for _, e := range s.Entries {
		if e.Role.Counted() {
			n++
		}
	}
	return n
}

// HeadingCount returns the number of heading entries.
func (s *Sequence) HeadingCount() int {
	n := 0
	for _, e := range s.Entries {
		if e.Role == RoleHeading {
			n++
		}
	}
	return n
}

var sequenceNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("https://github.com/matzehuels/storeweaver/sequence"))

// SequenceID derives the deterministic id of a layout from its seed,
// viewport and module ids.
func SequenceID(seed uint64, v score.Viewport, ids []string) string {
	name := fmt.Sprintf("%d|%s|%s", seed, v, strings.Join(ids, ","))
	return uuid.NewSHA1(sequenceNamespace, []byte(name)).String()
}
