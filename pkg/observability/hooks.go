// Package observability provides hooks for metrics and tracing.
//
// Instrumentation is optional and backend-agnostic: library packages emit
// events through hook interfaces, and the application registers an
// implementation at startup. The defaults are no-ops, so tests and library
// users pay nothing.
//
// # Usage
//
// Register hooks at application startup:
//
//	func main() {
//	    observability.SetPipelineHooks(metrics.NewPipelineHooks(reg))
//	    observability.SetCacheHooks(metrics.NewCacheHooks(reg))
//	    // ... run application
//	}
//
// Libraries call hooks to emit events:
//
//	observability.Pipeline().OnLayoutStart(ctx, "kk", net.NodeCount())
//	// ... compute layout ...
//	observability.Pipeline().OnLayoutComplete(ctx, "kk", time.Since(start), err)
package observability

import (
	"context"
	"sync"
	"time"
)

// =============================================================================
// Pipeline Hooks
// =============================================================================

// PipelineHooks receives events from the layout pipeline.
type PipelineHooks interface {
	// Build events
	OnBuildComplete(ctx context.Context, nodeCount, edgeCount int, duration time.Duration, err error)

	// Layout events, one pair per layout name
	OnLayoutStart(ctx context.Context, layout string, nodeCount int)
	OnLayoutComplete(ctx context.Context, layout string, duration time.Duration, err error)

	// Unify and sequence events
	OnUnifyComplete(ctx context.Context, nodeRows, edgeRows int, duration time.Duration, err error)
	OnSequenceComplete(ctx context.Context, frameCount int, duration time.Duration, err error)

	// Render events
	OnRenderStart(ctx context.Context, formats []string)
	OnRenderComplete(ctx context.Context, formats []string, duration time.Duration, err error)
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

// HTTPHooks receives events from the preview server.
type HTTPHooks interface {
	// OnRequest records an incoming request. route is the matched pattern.
	OnRequest(ctx context.Context, method, route string)

	// OnResponse records a completed response.
	OnResponse(ctx context.Context, method, route string, statusCode int, duration time.Duration)
}

// =============================================================================
// No-op Implementations
// =============================================================================

// NoopPipelineHooks is a no-op implementation of PipelineHooks.
type NoopPipelineHooks struct{}

func (NoopPipelineHooks) OnBuildComplete(context.Context, int, int, time.Duration, error)  {}
func (NoopPipelineHooks) OnLayoutStart(context.Context, string, int)                       {}
func (NoopPipelineHooks) OnLayoutComplete(context.Context, string, time.Duration, error)   {}
func (NoopPipelineHooks) OnUnifyComplete(context.Context, int, int, time.Duration, error)  {}
func (NoopPipelineHooks) OnSequenceComplete(context.Context, int, time.Duration, error)    {}
func (NoopPipelineHooks) OnRenderStart(context.Context, []string)                          {}
func (NoopPipelineHooks) OnRenderComplete(context.Context, []string, time.Duration, error) {}

// NoopCacheHooks is a no-op implementation of CacheHooks.
type NoopCacheHooks struct{}

func (NoopCacheHooks) OnCacheHit(context.Context, string)      {}
func (NoopCacheHooks) OnCacheMiss(context.Context, string)     {}
func (NoopCacheHooks) OnCacheSet(context.Context, string, int) {}

// NoopHTTPHooks is a no-op implementation of HTTPHooks.
type NoopHTTPHooks struct{}

func (NoopHTTPHooks) OnRequest(context.Context, string, string)                      {}
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
func SetCacheHooks(h CacheHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		cacheHooks = h
	}
}

// SetHTTPHooks registers custom HTTP hooks.
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
