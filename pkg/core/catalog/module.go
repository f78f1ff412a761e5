package catalog

// Rect is a module's position and size on its source screenshot, in pixels.
type Rect struct {
	X      int `json:"x"`
	Y      int `json:"y"`
	Width  int `json:"width"`
	Height int `json:"height"`
}

// Area returns Width*Height.
func (r Rect) Area() int { return r.Width * r.Height }

// Aspect returns Width/Height, or 0 for a zero-height rectangle.
func (r Rect) Aspect() float64 {
	if r.Height == 0 {
		return 0
	}
	return float64(r.Width) / float64(r.Height)
}

// Rendition is one stored image of a module.
type Rendition struct {
	Path   string `json:"path"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
}

// Renditions holds the three image sizes produced for every module.
type Renditions struct {
	Full      Rendition `json:"full"`
	Medium    Rendition `json:"medium"`
	Thumbnail Rendition `json:"thumbnail"`
}

// Module is an immutable catalog record. The engine never modifies a Module;
// transient scores live in separate values.
type Module struct {
	ID         string     `json:"id"`
	Type       Type       `json:"type"`
	Rect       Rect       `json:"rect"`
	Renditions Renditions `json:"renditions"`
	Source     string     `json:"source,omitempty"`
}

// Width returns the source width.
func (m *Module) Width() int { return m.Rect.Width }

// Height returns the source height.
func (m *Module) Height() int { return m.Rect.Height }

// Area returns the source area.
func (m *Module) Area() int { return m.Rect.Area() }

// Aspect returns the source aspect ratio.
func (m *Module) Aspect() float64 { return m.Rect.Aspect() }
