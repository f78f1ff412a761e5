// Package engagement estimates how well catalog modules perform, from
// store-level analytics.
//
// This is an optional pass that runs beside the engine, not inside it. It
// reads store metrics (dwell time, conversion, scroll depth) keyed by the
// screenshot a module was cropped from and estimates per-module
// engagement from the module's position on that page and its type.
// The result is a parallel [Scores] map keyed by module id; modules are
// never modified. The candidate selector can use the map as a rank boost.
//
// # Estimates
//
// Position factors for a module at y with the given width and height:
//
//	aboveFold  = max(0.5, 1.2 - y/800)
//	width      = min(1.2, width/1920)
//	height     = closest entry in the optimal-height table for the fold
//	visibility = min(1, (y+height) / (scrollDepth * 5000))
//	composite  = aboveFold * width * height * visibility
//
// Engagement is clamp(0.5 * composite * typeEngagement, 0.1, 1.0).
// Conversion contribution is max(0.001, conv% / 100 * composite *
// typeConversion * 0.1).
package engagement
