package metrics

import (
	"context"
	"strconv"
	"time"

	"github.com/matzehuels/graphmorph/pkg/observability"
)

func status(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}

// =============================================================================
// Pipeline
// =============================================================================

type pipelineHooks struct{ r *Registry }

// NewPipelineHooks returns pipeline hooks that record into r.
func NewPipelineHooks(r *Registry) observability.PipelineHooks { return pipelineHooks{r} }

func (h pipelineHooks) stage(name string, d time.Duration, err error) {
	h.r.StageDuration.WithLabelValues(name).Observe(d.Seconds())
	if err != nil {
		h.r.StageErrors.WithLabelValues(name).Inc()
	}
}

func (h pipelineHooks) OnBuildComplete(_ context.Context, nodes, _ int, d time.Duration, err error) {
	h.stage("build", d, err)
	if err == nil {
		h.r.NetworkNodes.Observe(float64(nodes))
	}
}

func (h pipelineHooks) OnLayoutStart(context.Context, string, int) {}

func (h pipelineHooks) OnLayoutComplete(_ context.Context, layout string, d time.Duration, err error) {
	h.r.LayoutsTotal.WithLabelValues(layout, status(err)).Inc()
	h.r.LayoutDuration.WithLabelValues(layout).Observe(d.Seconds())
}

func (h pipelineHooks) OnUnifyComplete(_ context.Context, _, _ int, d time.Duration, err error) {
	h.stage("unify", d, err)
}

func (h pipelineHooks) OnSequenceComplete(_ context.Context, frames int, d time.Duration, err error) {
	h.stage("sequence", d, err)
	h.r.FramesTotal.Add(float64(frames))
}

func (h pipelineHooks) OnRenderStart(context.Context, []string) {}

func (h pipelineHooks) OnRenderComplete(_ context.Context, formats []string, d time.Duration, err error) {
	h.stage("render", d, err)
	for _, f := range formats {
		h.r.RendersTotal.WithLabelValues(f, status(err)).Inc()
	}
}

// =============================================================================
// Cache
// =============================================================================

type cacheHooks struct{ r *Registry }

// NewCacheHooks returns cache hooks that record into r.
func NewCacheHooks(r *Registry) observability.CacheHooks { return cacheHooks{r} }

func (h cacheHooks) OnCacheHit(_ context.Context, keyType string) {
	h.r.CacheHits.WithLabelValues(keyType).Inc()
}

func (h cacheHooks) OnCacheMiss(_ context.Context, keyType string) {
	h.r.CacheMisses.WithLabelValues(keyType).Inc()
}

func (h cacheHooks) OnCacheSet(_ context.Context, keyType string, size int) {
	h.r.CacheBytes.WithLabelValues(keyType).Add(float64(size))
}

// =============================================================================
// HTTP
// =============================================================================

type httpHooks struct{ r *Registry }

// NewHTTPHooks returns HTTP hooks that record into r.
func NewHTTPHooks(r *Registry) observability.HTTPHooks { return httpHooks{r} }

func (h httpHooks) OnRequest(context.Context, string, string) {
	h.r.HTTPInFlight.Inc()
}

func (h httpHooks) OnResponse(_ context.Context, method, route string, code int, d time.Duration) {
	h.r.HTTPInFlight.Dec()
	h.r.HTTPRequestsTotal.WithLabelValues(method, route, strconv.Itoa(code)).Inc()
	h.r.HTTPRequestDuration.WithLabelValues(method, route).Observe(d.Seconds())
}
