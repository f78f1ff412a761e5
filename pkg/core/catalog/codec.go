package catalog

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	errs "github.com/matzehuels/storeweaver/pkg/errors"
)

// Rendition bounds used by the section processor.
const (
	MediumMaxWidth     = 400
	MediumMaxHeight    = 300
	ThumbnailMaxWidth  = 200
	ThumbnailMaxHeight = 150
)

// =============================================================================
// Wire format
// =============================================================================

type fileFormat struct {
	Metadata   fileMetadata        `json:"metadata"`
	Modules    []fileModule        `json:"modules"`
	TypesIndex map[string][]string `json:"types_index,omitempty"`
}

type fileMetadata struct {
	Generated    string   `json:"generated,omitempty"`
	TotalModules int      `json:"total_modules"`
	SourceStores int      `json:"source_stores,omitempty"`
	SectionTypes []string `json:"section_types,omitempty"`
}

type fileModule struct {
	ID           string        `json:"id,omitempty"`
	UniqueID     string        `json:"unique_id,omitempty"`
	Type         string        `json:"type"`
	Coordinates  Rect          `json:"coordinates"`
	SourceFile   string        `json:"source_file,omitempty"`
	SourceImage  string        `json:"source_image,omitempty"`
	CroppedFiles *croppedFiles `json:"cropped_files,omitempty"`
}

type croppedFiles struct {
	Full       string         `json:"full"`
	Medium     string         `json:"medium"`
	Thumbnail  string         `json:"thumbnail"`
	Dimensions fileDimensions `json:"dimensions"`
}

type fileDimensions struct {
	Original  size `json:"original"`
	Medium    size `json:"medium"`
	Thumbnail size `json:"thumbnail"`
}

type size struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// =============================================================================
// Catalog Serialization API
// =============================================================================

// ReadFile reads a modules_catalog.json file.
func ReadFile(path string) (*Catalog, error) {
	if err := errs.ValidatePath(path); err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, errs.Wrap(errs.ErrCodeNotFound, err, "open catalog %s", path)
	}
	defer f.Close()
	return Read(f)
}

// Read decodes a catalog from r and validates it with [New].
func Read(r io.Reader) (*Catalog, error) {
	var data fileFormat
	if err := json.NewDecoder(r).Decode(&data); err != nil {
		return nil, errs.Wrap(errs.ErrCodeInvalidCatalog, err, "decode catalog")
	}
	modules := make([]Module, 0, len(data.Modules))
	for i, fm := range data.Modules {
		m, err := fm.toModule()
		if err != nil {
			return nil, fmt.Errorf("module %d: %w", i, err)
		}
		modules = append(modules, m)
	}
	return New(modules)
}

// WriteFile writes c to path in the processor format.
func WriteFile(c *Catalog, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()
	return Write(c, f)
}

// Write encodes c in the processor format. Output is deterministic: modules
// keep catalog order and no timestamp is written.
func Write(c *Catalog, w io.Writer) error {
	out := fileFormat{
		Metadata: fileMetadata{
			TotalModules: c.Len(),
		},
		TypesIndex: make(map[string][]string),
	}
	for _, t := range c.Types() {
		out.Metadata.SectionTypes = append(out.Metadata.SectionTypes, string(t))
	}
	for _, m := range c.modules {
		out.Modules = append(out.Modules, fromModule(m))
		out.TypesIndex[string(m.Type)] = append(out.TypesIndex[string(m.Type)], m.ID)
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}

// =============================================================================
// Internal Implementation
// =============================================================================

func (fm fileModule) toModule() (Module, error) {
	id := fm.UniqueID
	if id == "" {
		id = fm.ID
	}
	t, ok := ParseType(fm.Type)
	if !ok {
		return Module{}, errs.New(errs.ErrCodeInvalidCatalog, "module %q has unknown type %q", id, fm.Type)
	}
	source := fm.SourceFile
	if source == "" {
		source = fm.SourceImage
	}

	m := Module{ID: id, Type: t, Rect: fm.Coordinates, Source: source}
	w, h := fm.Coordinates.Width, fm.Coordinates.Height
	m.Renditions.Full = Rendition{Width: w, Height: h}
	if cf := fm.CroppedFiles; cf != nil {
		m.Renditions.Full.Path = cf.Full
		m.Renditions.Medium.Path = cf.Medium
		m.Renditions.Thumbnail.Path = cf.Thumbnail
		if d := cf.Dimensions.Original; d.Width > 0 && d.Height > 0 {
			m.Renditions.Full.Width, m.Renditions.Full.Height = d.Width, d.Height
		}
		m.Renditions.Medium.Width, m.Renditions.Medium.Height = cf.Dimensions.Medium.Width, cf.Dimensions.Medium.Height
		m.Renditions.Thumbnail.Width, m.Renditions.Thumbnail.Height = cf.Dimensions.Thumbnail.Width, cf.Dimensions.Thumbnail.Height
	}
	fillRenditionSizes(&m.Renditions)
	return m, nil
}

func fromModule(m *Module) fileModule {
	r := m.Renditions
	return fileModule{
		UniqueID:    m.ID,
		Type:        string(m.Type),
		Coordinates: m.Rect,
		SourceFile:  m.Source,
		CroppedFiles: &croppedFiles{
			Full:      r.Full.Path,
			Medium:    r.Medium.Path,
			Thumbnail: r.Thumbnail.Path,
			Dimensions: fileDimensions{
				Original:  size{r.Full.Width, r.Full.Height},
				Medium:    size{r.Medium.Width, r.Medium.Height},
				Thumbnail: size{r.Thumbnail.Width, r.Thumbnail.Height},
			},
		},
	}
}

// fillRenditionSizes derives missing medium and thumbnail dimensions from the
// full rendition.
func fillRenditionSizes(r *Renditions) {
	fw, fh := r.Full.Width, r.Full.Height
	if fw <= 0 || fh <= 0 {
		return
	}
	if r.Medium.Width <= 0 || r.Medium.Height <= 0 {
		r.Medium.Width, r.Medium.Height = FitWithin(fw, fh, MediumMaxWidth, MediumMaxHeight)
	}
	if r.Thumbnail.Width <= 0 || r.Thumbnail.Height <= 0 {
		r.Thumbnail.Width, r.Thumbnail.Height = FitWithin(fw, fh, ThumbnailMaxWidth, ThumbnailMaxHeight)
	}
}

// FitWithin scales width×height to fit inside maxWidth×maxHeight while keeping
// the aspect ratio. Images are never upscaled; results are truncated to whole
// pixels.
func FitWithin(width, height, maxWidth, maxHeight int) (int, int) {
	if width <= 0 || height <= 0 {
		return 0, 0
	}
	if width <= maxWidth && height <= maxHeight {
		return width, height
	}
	if width*maxHeight >= height*maxWidth {
		return maxWidth, height * maxWidth / width
	}
	return width * maxHeight / height, maxHeight
}
