// Package observability decouples instrumentation from the code that emits
// events.
//
// The pipeline, the caches and the HTTP API report what they do through the
// hook interfaces below. Nothing is recorded until the binary registers an
// implementation, usually [Metrics]:
//
//	m := observability.NewMetrics()
//	observability.SetPipelineHooks(m)
//	observability.SetCacheHooks(m)
//	defer observability.Reset()
//
// Emitters always go through the accessors, which never return nil:
//
//	observability.Pipeline().OnFileComplete(ctx, path, time.Since(start), err)
package observability

import (
	"context"
	"sync"
	"time"
)

// PipelineHooks receives events from the flow pipeline.
type PipelineHooks interface {
	// File events, one pair per processed flow file.
	OnFileStart(ctx context.Context, path string)
	OnFileComplete(ctx context.Context, path string, duration time.Duration, err error)

	// OnParseComplete fires once per parsed flow version.
	OnParseComplete(ctx context.Context, path string, nodes, transitions int, duration time.Duration, err error)

	// OnDiffComplete reports how many nodes were tagged by the diff engine.
	OnDiffComplete(ctx context.Context, path string, added, deleted, modified int)

	// OnRenderComplete fires once per generated diagram or artifact.
	OnRenderComplete(ctx context.Context, tool, format string, duration time.Duration, err error)
}

// CacheHooks receives lookups and writes. keyType is "diagram" for rendered
// output and "source" for git file contents.
type CacheHooks interface {
	OnCacheHit(ctx context.Context, keyType string)
	OnCacheMiss(ctx context.Context, keyType string)

	// size is the number of bytes written.
	OnCacheSet(ctx context.Context, keyType string, size int)
}

// HTTPHooks receives events from the HTTP API.
type HTTPHooks interface {
	// OnRequest records a served request. route is the chi route pattern.
	OnRequest(ctx context.Context, method, route string, statusCode int, duration time.Duration)
}

// NoopPipelineHooks is a no-op implementation of PipelineHooks.
type NoopPipelineHooks struct{}

func (NoopPipelineHooks) OnFileStart(context.Context, string)                                     {}
func (NoopPipelineHooks) OnFileComplete(context.Context, string, time.Duration, error)            {}
func (NoopPipelineHooks) OnParseComplete(context.Context, string, int, int, time.Duration, error) {}
func (NoopPipelineHooks) OnDiffComplete(context.Context, string, int, int, int)                   {}
func (NoopPipelineHooks) OnRenderComplete(context.Context, string, string, time.Duration, error)  {}

// NoopCacheHooks is a no-op implementation of CacheHooks.
type NoopCacheHooks struct{}

func (NoopCacheHooks) OnCacheHit(context.Context, string)      {}
func (NoopCacheHooks) OnCacheMiss(context.Context, string)     {}
func (NoopCacheHooks) OnCacheSet(context.Context, string, int) {}

// NoopHTTPHooks is a no-op implementation of HTTPHooks.
type NoopHTTPHooks struct{}

func (NoopHTTPHooks) OnRequest(context.Context, string, string, int, time.Duration) {}

var (
	pipelineHooks PipelineHooks = NoopPipelineHooks{}
	cacheHooks    CacheHooks    = NoopCacheHooks{}
	httpHooks     HTTPHooks     = NoopHTTPHooks{}
	hooksMu       sync.RWMutex
)

// SetPipelineHooks replaces the pipeline hooks. A nil h is ignored.
func SetPipelineHooks(h PipelineHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		pipelineHooks = h
	}
}

// SetCacheHooks replaces the cache hooks.
func SetCacheHooks(h CacheHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		cacheHooks = h
	}
}

// SetHTTPHooks replaces the HTTP hooks.
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

// Reset reinstalls the no-op hooks. Commands defer it so a run's metrics
// never leak into the next one.
func Reset() {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	pipelineHooks = NoopPipelineHooks{}
	cacheHooks = NoopCacheHooks{}
	httpHooks = NoopHTTPHooks{}
}
