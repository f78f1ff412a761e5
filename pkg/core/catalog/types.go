package catalog

import "slices"

// Type is the semantic tag of a module.
type Type string

// Module types. The set is closed; [New] rejects anything else.
const (
	TypeMast             Type = "mast"
	TypeNavigation       Type = "navigation"
	TypeHero             Type = "hero"
	TypeVideo            Type = "video"
	TypeSectionHeading   Type = "section_heading"
	TypeProductSelector  Type = "product_selector"
	TypeBestsellers      Type = "bestsellers"
	TypeShopTheLook      Type = "shop_the_look"
	TypeCategoryCarousel Type = "category_carousel"
	TypeBeforeAfter      Type = "before_after"
	TypeTestimonial      Type = "testimonial"
	TypeReels            Type = "reels"
	TypeGallery          Type = "gallery"
	TypeStaticImage      Type = "static_image"
	TypeTextBlock        Type = "text_block"
	TypeProducts         Type = "products"
	TypeLinkoutImage     Type = "linkout_image"
	TypeFooter           Type = "footer"
)

// AllTypes lists every known type in declaration order.
var AllTypes = []Type{
	TypeMast, TypeNavigation, TypeHero, TypeVideo, TypeSectionHeading,
	TypeProductSelector, TypeBestsellers, TypeShopTheLook, TypeCategoryCarousel,
	TypeBeforeAfter, TypeTestimonial, TypeReels, TypeGallery, TypeStaticImage,
	TypeTextBlock, TypeProducts, TypeLinkoutImage, TypeFooter,
}

// Role sets used by the composer and the brick grouper.
var (
	// HeaderTypes are emitted, in order, at the top of every layout.
	HeaderTypes = []Type{TypeMast, TypeNavigation}

	// HeroTypes are eligible for the single hero slot.
	HeroTypes = []Type{TypeHero, TypeVideo}

	// Tier1ZoneTypes render well side by side in a multi-column zone.
	Tier1ZoneTypes = []Type{TypeTestimonial, TypeStaticImage, TypeLinkoutImage, TypeBeforeAfter}

	// Tier2ZoneTypes may join a zone when their geometry allows it.
	Tier2ZoneTypes = []Type{TypeProducts, TypeBestsellers, TypeTextBlock, TypeGallery}
)

// Valid reports whether t is one of the known types.
func (t Type) Valid() bool {
	return slices.Contains(AllTypes, t)
}

// IsHeading reports whether t introduces a section.
func (t Type) IsHeading() bool { return t == TypeSectionHeading }

// BrickTypes returns the brick-friendly set: the union of both zone tiers.
func BrickTypes() []Type {
	return slices.Concat(Tier1ZoneTypes, Tier2ZoneTypes)
}

// ParseType converts a raw tag into a Type. Unknown tags return false.
func ParseType(s string) (Type, bool) {
	t := Type(s)
	return t, t.Valid()
}
