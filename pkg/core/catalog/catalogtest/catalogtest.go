// Package catalogtest provides catalog fixtures for tests across the engine.
package catalogtest

import (
	"fmt"

	"github.com/matzehuels/storeweaver/pkg/core/catalog"
)

// Module builds a module with the given geometry and derived renditions.
func Module(id string, t catalog.Type, width, height int) catalog.Module {
	mw, mh := catalog.FitWithin(width, height, catalog.MediumMaxWidth, catalog.MediumMaxHeight)
	tw, th := catalog.FitWithin(width, height, catalog.ThumbnailMaxWidth, catalog.ThumbnailMaxHeight)
	return catalog.Module{
		ID:   id,
		Type: t,
		Rect: catalog.Rect{Width: width, Height: height},
		Renditions: catalog.Renditions{
			Full:      catalog.Rendition{Path: "images/full/" + id + ".png", Width: width, Height: height},
			Medium:    catalog.Rendition{Path: "images/medium/" + id + "_medium.png", Width: mw, Height: mh},
			Thumbnail: catalog.Rendition{Path: "images/thumbnails/" + id + "_thumb.png", Width: tw, Height: th},
		},
		Source: "store_" + id + ".png",
	}
}

// Series builds n modules of one type named "<type>_<i>".
func Series(t catalog.Type, n, width, height int) []catalog.Module {
	out := make([]catalog.Module, n)
	for i := range n {
		out[i] = Module(fmt.Sprintf("%s_%02d", t, i+1), t, width, height)
	}
	return out
}

// StoreModules returns a realistic brand-store inventory: one mast, one
// navigation bar, five heroes, four section headings and 48 content modules
// across ten content types.
func StoreModules() []catalog.Module {
	var mods []catalog.Module
	mods = append(mods, Module("mast_01", catalog.TypeMast, 1920, 320))
	mods = append(mods, Module("navigation_01", catalog.TypeNavigation, 1920, 280))
	mods = append(mods, Series(catalog.TypeHero, 5, 1920, 800)...)
	mods = append(mods, Series(catalog.TypeSectionHeading, 4, 1464, 120)...)
	mods = append(mods, Series(catalog.TypeProductSelector, 5, 1464, 640)...)
	mods = append(mods, Series(catalog.TypeShopTheLook, 4, 1464, 720)...)
	mods = append(mods, Series(catalog.TypeProducts, 6, 1464, 520)...)
	mods = append(mods, Series(catalog.TypeBestsellers, 4, 1200, 480)...)
	mods = append(mods, Series(catalog.TypeTestimonial, 6, 700, 400)...)
	mods = append(mods, Series(catalog.TypeStaticImage, 6, 720, 360)...)
	mods = append(mods, Series(catalog.TypeGallery, 5, 1464, 700)...)
	mods = append(mods, Series(catalog.TypeBeforeAfter, 4, 960, 480)...)
	mods = append(mods, Series(catalog.TypeTextBlock, 4, 900, 300)...)
	mods = append(mods, Series(catalog.TypeVideo, 4, 1280, 720)...)
	return mods
}

// Store returns [StoreModules] as a catalog.
func Store() *catalog.Catalog {
	return catalog.MustNew(StoreModules())
}

// ContentCount returns how many modules in mods are neither header, hero nor
// heading types.
func ContentCount(mods []catalog.Module) int {
	n := 0
	for _, m := range mods {
		switch m.Type {
		case catalog.TypeMast, catalog.TypeNavigation, catalog.TypeHero, catalog.TypeSectionHeading:
		default:
			n++
		}
	}
	return n
}
