package catalog

import (
	"slices"

	errs "github.com/matzehuels/storeweaver/pkg/errors"
)

// Catalog is the read-only, ordered module inventory.
//
// Modules keep the order they were supplied in; that order is the tie-break
// for every ranking in the engine, which keeps seeded generation
// reproducible.
type Catalog struct {
	modules []*Module
	byID    map[string]*Module
	byType  map[Type][]*Module
}

// New validates modules and builds the id and type indexes.
// It fails on empty or duplicate ids, unknown types and non-positive geometry.
func New(modules []Module) (*Catalog, error) {
	c := &Catalog{
		modules: make([]*Module, 0, len(modules)),
		byID:    make(map[string]*Module, len(modules)),
		byType:  make(map[Type][]*Module),
	}
	for i := range modules {
		m := modules[i]
		if err := errs.ValidateModuleID(m.ID); err != nil {
			return nil, err
		}
		if !m.Type.Valid() {
			return nil, errs.New(errs.ErrCodeInvalidCatalog, "module %q has unknown type %q", m.ID, m.Type)
		}
		if err := errs.ValidateDimensions(m.ID, m.Rect.Width, m.Rect.Height); err != nil {
			return nil, err
		}
		if _, dup := c.byID[m.ID]; dup {
			return nil, errs.New(errs.ErrCodeInvalidCatalog, "duplicate module id %q", m.ID)
		}
		p := &m
		c.modules = append(c.modules, p)
		c.byID[m.ID] = p
		c.byType[m.Type] = append(c.byType[m.Type], p)
	}
	return c, nil
}

// MustNew is like New but panics on error. Intended for tests and fixtures.
func MustNew(modules []Module) *Catalog {
	c, err := New(modules)
	if err != nil {
		panic(err)
	}
	return c
}

// Len returns the number of modules.
func (c *Catalog) Len() int { return len(c.modules) }

// Modules returns all modules in catalog order.
func (c *Catalog) Modules() []*Module { return slices.Clone(c.modules) }

// Get returns the module with the given id.
func (c *Catalog) Get(id string) (*Module, bool) {
	m, ok := c.byID[id]
	return m, ok
}

// ByType returns the modules of type t in catalog order.
func (c *Catalog) ByType(t Type) []*Module { return slices.Clone(c.byType[t]) }

// Has reports whether at least one module of type t exists.
func (c *Catalog) Has(t Type) bool { return len(c.byType[t]) > 0 }

// Count returns the number of modules across the given types.
func (c *Catalog) Count(types ...Type) int {
	n := 0
	for _, t := range types {
		n += len(c.byType[t])
	}
	return n
}

// Types returns the types present in the catalog, in [AllTypes] order.
func (c *Catalog) Types() []Type {
	var out []Type
	for _, t := range AllTypes {
		if c.Has(t) {
			out = append(out, t)
		}
	}
	return out
}

// Present filters types down to those with inventory, preserving order.
func (c *Catalog) Present(types []Type) []Type {
	var out []Type
	for _, t := range types {
		if c.Has(t) {
			out = append(out, t)
		}
	}
	return out
}
