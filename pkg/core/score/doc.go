// Package score rates catalog modules for a layout slot.
//
// Two pure scorers feed the candidate selector:
//
//   - [Quality] rates a module's intrinsic display quality from its
//     resolution, in the range [1, 5.5].
//   - [Fit] rates how well a module's native geometry suits a destination
//     rectangle, in the range [0, 5].
//
// Both scorers apply only the single largest matching penalty per rule
// group. The penalties are deliberately not cumulative: a module that is
// upscaled 5x loses 3 points, not 3+2+1.
//
// # Slots
//
// A [Slot] describes where a module will be shown: the viewport class, the
// usage [Tier] and the page [Placement]. [SlotFor] derives the slot
// rectangle from the viewport width and a per-tier aspect ratio.
//
// # Scored Modules
//
// [Scored] pairs a module with its transient scores. Scores are computed
// per selection call and never written back to the module.
package score
