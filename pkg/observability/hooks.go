// Package observability provides hooks for metrics, tracing, and logging.
//
// This package enables optional instrumentation without adding hard dependencies
// on specific observability backends. Consumers can register hooks at startup
// to receive events about source selection, fallback execution, and cache
// operations.
//
// # Architecture
//
// The package uses a simple hooks pattern:
//   - Define hook interfaces for different event categories
//   - Provide no-op default implementations
//   - Allow registration of custom implementations at startup
//
// This approach:
//   - Avoids import cycles (hooks are registered by main, not by libraries)
//   - Keeps the core library dependency-free from observability frameworks
//   - Allows different backends (OpenTelemetry, Prometheus, DataDog, etc.)
//
// # Usage
//
// Register hooks at application startup:
//
//	func main() {
//	    observability.SetSourceHooks(&mySourceHooks{})
//	    observability.SetCacheHooks(&myCacheHooks{})
//	    // ... run application
//	}
//
// Libraries call hooks to emit events:
//
//	observability.Source().OnAttemptStart(ctx, source, "search")
//	// ... call the adapter ...
//	observability.Source().OnAttemptComplete(ctx, source, "search", duration, err)
package observability

import (
	"context"
	"sync"
	"time"
)

// =============================================================================
// Source Hooks
// =============================================================================

// SourceHooks receives events from source selection and fallback execution.
type SourceHooks interface {
	// OnAttemptStart records the start of one adapter invocation inside a
	// fallback chain.
	OnAttemptStart(ctx context.Context, source, operation string)

	// OnAttemptComplete records the outcome of one adapter invocation.
	OnAttemptComplete(ctx context.Context, source, operation string, duration time.Duration, err error)

	// OnFallback records advancing from a failed source to the next candidate.
	OnFallback(ctx context.Context, from, to, operation string)

	// OnSourceSkipped records a configured source skipped because no adapter
	// is registered for it.
	OnSourceSkipped(ctx context.Context, source, operation string)
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
// No-op Implementations
// =============================================================================

// NoopSourceHooks is a no-op implementation of SourceHooks.
type NoopSourceHooks struct{}

func (NoopSourceHooks) OnAttemptStart(context.Context, string, string) {}
func (NoopSourceHooks) OnAttemptComplete(context.Context, string, string, time.Duration, error) {
}
func (NoopSourceHooks) OnFallback(context.Context, string, string, string)  {}
func (NoopSourceHooks) OnSourceSkipped(context.Context, string, string)     {}

// NoopCacheHooks is a no-op implementation of CacheHooks.
type NoopCacheHooks struct{}

func (NoopCacheHooks) OnCacheHit(context.Context, string)      {}
func (NoopCacheHooks) OnCacheMiss(context.Context, string)     {}
func (NoopCacheHooks) OnCacheSet(context.Context, string, int) {}

// =============================================================================
// Global Hook Registry
// =============================================================================

var (
	sourceHooks SourceHooks = NoopSourceHooks{}
	cacheHooks  CacheHooks  = NoopCacheHooks{}
	hooksMu     sync.RWMutex
)

// SetSourceHooks registers custom source hooks.
// This should be called once at application startup before any source operations.
func SetSourceHooks(h SourceHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		sourceHooks = h
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

// Source returns the registered source hooks.
func Source() SourceHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return sourceHooks
}

// Cache returns the registered cache hooks.
func Cache() CacheHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return cacheHooks
}

// Reset restores all hooks to their no-op defaults.
// This is primarily useful for testing.
func Reset() {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	sourceHooks = NoopSourceHooks{}
	cacheHooks = NoopCacheHooks{}
}
