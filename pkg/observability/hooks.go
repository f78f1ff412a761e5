// Package observability provides hooks for metrics, tracing, and logging.
//
// This package enables optional instrumentation without adding hard dependencies
// on specific observability backends. Two styles of hooks are offered:
//
//   - [EngineHooks] are injected per call into the selector, composer and
//     brick grouper. The engine has no globals, so these are never read from
//     the registry.
//   - [PipelineHooks], [CacheHooks] and [HTTPHooks] are registered once at
//     startup and read by the pipeline runner, cache backends and HTTP server.
//
// Hooks observe; they must never influence control flow. Every interface
// has a no-op implementation that is used when nothing is registered.
//
// # Usage
//
// Register hooks at application startup:
//
//	func main() {
//	    observability.SetPipelineHooks(&myPipelineHooks{})
//	    observability.SetCacheHooks(&myCacheHooks{})
//	    // ... run application
//	}
//
// Libraries call hooks to emit events:
//
//	observability.Pipeline().OnGenerateStart(ctx, "wide", seed)
//	// ... compose ...
//	observability.Pipeline().OnGenerateComplete(ctx, "wide", len(seq.Entries), duration, err)
package observability

import (
	"context"
	"sync"
	"time"
)

// =============================================================================
// Engine Hooks
// =============================================================================

// Selection describes one candidate-selector decision.
type Selection struct {
	Type       string // requested module type
	Tier       string // requested tier
	Candidates int    // modules of the requested type
	Survivors  int    // candidates left after the quality and fit filters
	Pool       int    // size of the top-K pool the choice was drawn from
	Fallback   bool   // filters emptied the set and the unfiltered set was used
	Chosen     string // chosen module id, empty when the type is absent
}

// Step describes one composer step.
type Step struct {
	Phase     string // header, hero, zone or content
	Iteration int
	Position  int // content position the step started at
	Type      string
	ModuleID  string
	Skipped   bool // no module could be drawn for Type
}

// EngineHooks receives decision events from the layout engine.
type EngineHooks interface {
	OnSelect(s Selection)
	OnStep(s Step)
	OnZone(position, planned, emitted int)
	OnGroup(kind string, size int)
}

// =============================================================================
// Pipeline Hooks
// =============================================================================

// PipelineHooks receives events from the generation pipeline.
type PipelineHooks interface {
	// Catalog events
	OnLoadStart(ctx context.Context, path string)
	OnLoadComplete(ctx context.Context, path string, moduleCount int, duration time.Duration, err error)

	// Generate events
	OnGenerateStart(ctx context.Context, viewport string, seed uint64)
	OnGenerateComplete(ctx context.Context, viewport string, length int, duration time.Duration, err error)

	// Group events
	OnGroupComplete(ctx context.Context, groupCount int, duration time.Duration)
}

// =============================================================================
// Cache Hooks
// =============================================================================

// CacheHooks receives events from cache operations.
type CacheHooks interface {
	// OnCacheHit records a cache hit.
	OnCacheHit(ctx context.Context, keyType string)

	// OnCacheMiss records a cache miss.
	OnCacheMiss(ctx context.Context, keyType string)

	// OnCacheSet records a cache write.
	OnCacheSet(ctx context.Context, keyType string, size int)
}

// =============================================================================
// HTTP Hooks
// =============================================================================

// HTTPHooks receives events from the HTTP API server.
type HTTPHooks interface {
	// OnRequest records an incoming request.
	OnRequest(ctx context.Context, method, path string)

	// OnResponse records the response written for a request.
	OnResponse(ctx context.Context, method, path string, statusCode int, duration time.Duration)
}

// =============================================================================
// No-op Implementations
// =============================================================================

// NoopEngineHooks is a no-op implementation of EngineHooks.
type NoopEngineHooks struct{}

func (NoopEngineHooks) OnSelect(Selection)   {}
func (NoopEngineHooks) OnStep(Step)          {}
func (NoopEngineHooks) OnZone(int, int, int) {}
func (NoopEngineHooks) OnGroup(string, int)  {}

// NoopPipelineHooks is a no-op implementation of PipelineHooks.
type NoopPipelineHooks struct{}

func (NoopPipelineHooks) OnLoadStart(context.Context, string) {}
func (NoopPipelineHooks) OnLoadComplete(context.Context, string, int, time.Duration, error) {
}
func (NoopPipelineHooks) OnGenerateStart(context.Context, string, uint64) {}
func (NoopPipelineHooks) OnGenerateComplete(context.Context, string, int, time.Duration, error) {
}
func (NoopPipelineHooks) OnGroupComplete(context.Context, int, time.Duration) {}

// NoopCacheHooks is a no-op implementation of CacheHooks.
type NoopCacheHooks struct{}

func (NoopCacheHooks) OnCacheHit(context.Context, string)      {}
func (NoopCacheHooks) OnCacheMiss(context.Context, string)     {}
func (NoopCacheHooks) OnCacheSet(context.Context, string, int) {}

// NoopHTTPHooks is a no-op implementation of HTTPHooks.
type NoopHTTPHooks struct{}

func (NoopHTTPHooks) OnRequest(context.Context, string, string)                     {}
func (NoopHTTPHooks) OnResponse(context.Context, string, string, int, time.Duration) {}

// =============================================================================
// Global Hook Registry
// =============================================================================

var (
	pipelineHooks PipelineHooks = NoopPipelineHooks{}
	cacheHooks    CacheHooks    = NoopCacheHooks{}
	httpHooks     HTTPHooks     = NoopHTTPHooks{}
	hooksMu       sync.RWMutex
)

// SetPipelineHooks registers custom pipeline hooks.
// This should be called once at application startup before any pipeline operations.
func SetPipelineHooks(h PipelineHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		pipelineHooks = h
	}
}

// SetCacheHooks registers custom cache hooks.
// This should be called once at application startup before any cache operations.
func SetCacheHooks(h CacheHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		cacheHooks = h
	}
}

// SetHTTPHooks registers custom HTTP hooks.
// This should be called once at application startup before the server starts.
func SetHTTPHooks(h HTTPHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		httpHooks = h
	}
}

// Pipeline returns the registered pipeline hooks.
func Pipeline() PipelineHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return pipelineHooks
}

// Cache returns the registered cache hooks.
func Cache() CacheHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return cacheHooks
}

// HTTP returns the registered HTTP hooks.
func HTTP() HTTPHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return httpHooks
}

// Reset restores all hooks to their no-op defaults.
// This is primarily useful for testing.
func Reset() {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	pipelineHooks = NoopPipelineHooks{}
	cacheHooks = NoopCacheHooks{}
	httpHooks = NoopHTTPHooks{}
}

// EngineOrNoop returns h, or NoopEngineHooks when h is nil.
func EngineOrNoop(h EngineHooks) EngineHooks {
	if h == nil {
		return NoopEngineHooks{}
	}
	return h
}
