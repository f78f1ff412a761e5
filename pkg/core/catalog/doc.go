// Package catalog provides the read-only module inventory consumed by the
// layout engine.
//
// # Overview
//
// A [Module] is one rectangular content block cropped from a store
// screenshot and tagged with a semantic [Type] (hero, testimonial,
// text_block, ...). Each module carries its source geometry and three image
// renditions (full, medium, thumbnail).
//
// A [Catalog] is the complete collection of modules. It is built once with
// [New], which validates every record, and is never mutated afterwards: the
// selector, composer and brick grouper only read from it. Lookups by id and
// by type are O(1).
//
// # Roles
//
// Types are grouped into roles the engine cares about:
//
//	HeaderTypes       mast, navigation
//	HeroTypes         hero, video
//	TypeSectionHeading
//	Tier1ZoneTypes    excellent multi-column content
//	Tier2ZoneTypes    conditionally suitable multi-column content
//
// # Serialization
//
// [Read] and [Write] use the section processor's modules_catalog.json shape:
//
//	{
//	  "metadata": {"total_modules": 2, ...},
//	  "modules": [{"unique_id": "hero_0001", "type": "hero",
//	               "coordinates": {"x": 0, "y": 120, "width": 1920, "height": 800},
//	               "cropped_files": {...}}],
//	  "types_index": {"hero": ["hero_0001"]}
//	}
package catalog
