// Package brick groups a finished layout into rendering clusters for narrow
// viewports.
//
// On a phone, several small side-by-side modules read better packed into a
// "brick": two to four consecutive modules laid out in one subdivided
// block. [Pack] scans a layout left to right and greedily extends runs of
// brick candidates up to four members:
//
//	2 members  columns        two equal columns
//	3 members  feature-stack  one tall left cell, two stacked right cells
//	4 members  grid           2×2
//
// A run of one stays a single. Header, hero and heading modules are always
// singles. Grouping is a pure partition of its input: [Flatten] of the
// result reproduces the input exactly, in order.
//
// Grouping is for rendering only; nothing feeds back into generation.
package brick
