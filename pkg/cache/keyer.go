package cache

// Keyer builds cache keys. Two requests that may produce different output
// must never share a key.
type Keyer interface {
	// LayoutKey keys a generated layout by catalog content hash and the
	// generation inputs.
	LayoutKey(catalogHash string, opts LayoutKeyOpts) string

	// BricksKey keys the narrow-viewport grouping of a layout by catalog
	// content hash and the layout's module ids in order.
	BricksKey(catalogHash string, moduleIDs []string) string
}

// LayoutKeyOpts are the generation inputs that affect a layout.
type LayoutKeyOpts struct {
	Viewport   string `json:"viewport"`
	Seed       uint64 `json:"seed"`
	Strategy   string `json:"strategy"`
	MinContent int    `json:"min_content,omitempty"`
	MaxContent int    `json:"max_content,omitempty"`

	// Engagement is the hash of the engagement scores, empty when none.
	Engagement string `json:"engagement,omitempty"`
}

// DefaultKeyer hashes every input into the key.
type DefaultKeyer struct{}

// NewDefaultKeyer returns the standard keyer.
func NewDefaultKeyer() Keyer { return DefaultKeyer{} }

// LayoutKey returns "layout:<sha256>".
func (DefaultKeyer) LayoutKey(catalogHash string, opts LayoutKeyOpts) string {
	return hashKey("layout", catalogHash, opts)
}

// BricksKey returns "bricks:<sha256>".
func (DefaultKeyer) BricksKey(catalogHash string, moduleIDs []string) string {
	return hashKey("bricks", catalogHash, moduleIDs)
}

// ScopedKeyer prefixes every key of an inner keyer, isolating tenants or
// deployments that share one backend.
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer wraps inner, or the default keyer when inner is nil.
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	return &ScopedKeyer{inner: inner, prefix: prefix}
}

func (k *ScopedKeyer) LayoutKey(catalogHash string, opts LayoutKeyOpts) string {
	return k.prefix + k.inner.LayoutKey(catalogHash, opts)
}

func (k *ScopedKeyer) BricksKey(catalogHash string, moduleIDs []string) string {
	return k.prefix + k.inner.BricksKey(catalogHash, moduleIDs)
}
