// Package pkg provides the core libraries for Storeweaver brand-store layout
// assembly.
//
// # Overview
//
// Storeweaver turns a catalog of cropped brand-store modules (heroes,
// product grids, galleries, testimonials and so on) into ordered page
// layouts. A layout opens with the store header and a hero, then fills a
// randomized content target while honouring a category distribution,
// reserving zones for interactive modules on wide viewports and grouping
// small modules into bricks on narrow ones.
//
// The typical data flow:
//
//	modules_catalog.json
//	         ↓
//	    [core/catalog] (index modules by id and type)
//	         ↓
//	    [core/zones] + [core/selector] + [core/compose] (assemble a sequence)
//	         ↓
//	    [core/brick] (narrow-viewport grouping)
//	         ↓
//	    [layout] JSON
//
// # Quick Start
//
//	import (
//	    "github.com/matzehuels/storeweaver/pkg/core/catalog"
//	    "github.com/matzehuels/storeweaver/pkg/core/score"
//	    "github.com/matzehuels/storeweaver/pkg/engine"
//	    "github.com/matzehuels/storeweaver/pkg/layout"
//	)
//
//	cat, _ := catalog.ReadFile("output/modules_catalog.json")
//	seed := uint64(42)
//	seq, _ := engine.Generate(cat, score.ViewportWide, &seed)
//	data, _ := layout.Marshal(layout.Export(seq, nil))
//
// # Main Packages
//
// ## Core Domain Logic
//
// [core/catalog] - Module inventory, type roles and the processor's catalog
// format.
//
// [core/score] - Viewports, tiers, slots and the quality and fit scorers.
//
// [core/selector] - Tier-filtered, fit-ranked random candidate selection with
// a recently-used set and fallbacks.
//
// [core/zones] - Interactive zone planning from tier inventory.
//
// [core/compose] - The layout composer and its strategy.
//
// [core/brick] - Brick-wall grouping for narrow viewports.
//
// [core/engagement] - Optional engagement estimates from store metrics.
//
// ## Facade and Serialization
//
// [engine] - Generate and GroupForNarrowViewport with seedable randomness.
//
// [layout] - The JSON layout format, export and parse.
//
// ## Infrastructure
//
// [pipeline] - Load, generate and group with caching, shared by the CLI and
// the HTTP API.
//
// [cache] - Null, file, in-memory LRU and Redis cache backends.
//
// [config] - TOML, .env and environment settings.
//
// [observability] - Engine, pipeline, cache and HTTP hooks.
//
// [errors] - Error codes and user messages.
//
// # Testing
//
//	go test ./...                # All tests
//	go test ./pkg/core/...       # Domain packages
//	go test -run Example ./...   # Examples only
//
// [core/catalog]: https://pkg.go.dev/github.com/matzehuels/storeweaver/pkg/core/catalog
// [core/score]: https://pkg.go.dev/github.com/matzehuels/storeweaver/pkg/core/score
// [core/selector]: https://pkg.go.dev/github.com/matzehuels/storeweaver/pkg/core/selector
// [core/zones]: https://pkg.go.dev/github.com/matzehuels/storeweaver/pkg/core/zones
// [core/compose]: https://pkg.go.dev/github.com/matzehuels/storeweaver/pkg/core/compose
// [core/brick]: https://pkg.go.dev/github.com/matzehuels/storeweaver/pkg/core/brick
// [core/engagement]: https://pkg.go.dev/github.com/matzehuels/storeweaver/pkg/core/engagement
// [engine]: https://pkg.go.dev/github.com/matzehuels/storeweaver/pkg/engine
// [layout]: https://pkg.go.dev/github.com/matzehuels/storeweaver/pkg/layout
// [pipeline]: https://pkg.go.dev/github.com/matzehuels/storeweaver/pkg/pipeline
// [cache]: https://pkg.go.dev/github.com/matzehuels/storeweaver/pkg/cache
// [config]: https://pkg.go.dev/github.com/matzehuels/storeweaver/pkg/config
// [observability]: https://pkg.go.dev/github.com/matzehuels/storeweaver/pkg/observability
// [errors]: https://pkg.go.dev/github.com/matzehuels/storeweaver/pkg/errors
package pkg
