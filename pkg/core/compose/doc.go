// Package compose assembles catalog modules into an ordered page layout.
//
// # State Machine
//
// A [Composer] runs HEADER → HERO → CONTENT_LOOP → DONE:
//
//   - HEADER emits one module per configured header type (mast, then
//     navigation) at hero tier. A missing header type is fatal.
//   - HERO emits exactly one module of a hero-eligible type present in the
//     catalog. No hero-eligible module is fatal.
//   - CONTENT_LOOP draws a content target in [MinContent, MaxContent] once,
//     then alternates between zone fills and regular steps until that many
//     content modules have been emitted.
//
// Fatal errors carry the EMPTY_CATALOG code; the partial sequence is still
// returned, flagged Incomplete.
//
// # Zones
//
// When the [Strategy] plans zones, a content position that falls inside a
// zone starts a zone fill: one heading, then up to the zone's size in
// side-by-side modules with no headings between them. Tier-1 zone types are
// tried first in random order, one module per type with up to three
// attempts to avoid duplicates. Remaining slots take tier-2 types whose
// modules also qualify as brick candidates. A zone larger than the
// remaining content budget is clamped.
//
// # Regular Steps
//
// Outside zones, a category is drawn by weight (see [DefaultCategories]),
// then a type within it, avoiding types used recently. A heading precedes
// the module unless it is the last one. The used-type set stops excluding
// at six entries and is cleared at eight.
//
// # Determinism
//
// Every random choice is drawn from the *rand.Rand given to [New]. The same
// catalog, options and seed produce the same [Sequence], including its ID.
package compose
