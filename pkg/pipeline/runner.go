package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"slices"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/graphmorph/pkg/cache"
	"github.com/matzehuels/graphmorph/pkg/frames"
	graphio "github.com/matzehuels/graphmorph/pkg/io"
	"github.com/matzehuels/graphmorph/pkg/layout"
	"github.com/matzehuels/graphmorph/pkg/observability"
	"github.com/matzehuels/graphmorph/pkg/table"
)

// Runner encapsulates pipeline execution with caching.
// Both CLI and server use this to avoid duplicating caching logic.
//
// The Runner is stateless except for the cache and logger - it doesn't
// store pipeline results. Multiple goroutines can safely use the same
// Runner with different options.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger

	// Registry overrides the layout algorithms. Nil means
	// layout.DefaultRegistry seeded with Options.Seed.
	Registry *layout.Registry

	// Notify, if set, receives layout progress events.
	Notify func(layout.Event)
}

// NewRunner creates a runner with the given cache and keyer.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Cache:  c,
		Keyer:  keyer,
		Logger: logger,
	}
}

// Execute runs the complete build → layout → unify → render pipeline.
// Any stage failure aborts the run and no partial result is returned.
func (r *Runner) Execute(ctx context.Context, in *graphio.Input, opts Options) (*Result, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}

	result := &Result{RunID: NewRunID()}
	logger := r.Logger.With("run", result.RunID[:8])

	// Stage 1: Build
	buildStart := time.Now()
	net, err := r.Build(ctx, in, opts)
	if err != nil {
		return nil, fmt.Errorf("build: %w", err)
	}
	result.Network = net
	result.Stats.BuildTime = time.Since(buildStart)
	result.Stats.NodeCount = net.NodeCount()
	result.Stats.EdgeCount = net.EdgeCount()

	logger.Info("built network",
		"nodes", net.NodeCount(),
		"edges", net.EdgeCount(),
		"modules", len(net.Modules()),
		"duration", result.Stats.BuildTime)

	// Stage 2: Layout
	layoutStart := time.Now()
	tables, hits, err := r.ComputeLayouts(ctx, net, opts)
	if err != nil {
		return nil, fmt.Errorf("layout: %w", err)
	}
	result.Stats.LayoutTime = time.Since(layoutStart)
	result.Stats.LayoutCount = len(tables)
	result.CacheInfo.LayoutHits = hits

	logger.Info("computed layouts",
		"layouts", len(tables),
		"cached", hits,
		"duration", result.Stats.LayoutTime)

	// Stage 3: Unify
	unifyStart := time.Now()
	u, err := Unify(ctx, net, tables)
	if err != nil {
		return nil, fmt.Errorf("unify: %w", err)
	}
	result.Tables = u
	result.Stats.UnifyTime = time.Since(unifyStart)

	logger.Info("unified tables",
		"node_rows", len(u.Nodes),
		"edge_rows", len(u.Edges),
		"duration", result.Stats.UnifyTime)

	// Stage 4: Render
	renderStart := time.Now()
	artifacts, anim, renderHit, err := r.RenderWithCacheInfo(ctx, u, opts)
	if err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	result.Artifacts = artifacts
	result.Animation = anim
	result.Stats.RenderTime = time.Since(renderStart)
	result.CacheInfo.RenderHit = renderHit
	if anim != nil {
		result.Stats.FrameCount = len(anim.Frames)
	}

	logger.Info("rendered outputs",
		"formats", opts.Formats,
		"cached", renderHit,
		"duration", result.Stats.RenderTime)

	return result, nil
}

// RenderWithCacheInfo renders artifacts with caching and returns cache hit
// info. The animation is only returned when it was actually computed.
func (r *Runner) RenderWithCacheInfo(ctx context.Context, u *table.Unified, opts Options) (map[string][]byte, *frames.Animation, bool, error) {
	hooks := observability.Pipeline()
	hooks.OnRenderStart(ctx, opts.Formats)
	start := time.Now()

	hash := u.Hash()
	if !opts.Refresh {
		if artifacts, ok := r.cachedArtifacts(ctx, hash, opts); ok {
			hooks.OnRenderComplete(ctx, opts.Formats, time.Since(start), nil)
			return artifacts, nil, true, nil
		}
	}

	artifacts, anim, err := Render(ctx, u, opts)
	hooks.OnRenderComplete(ctx, opts.Formats, time.Since(start), err)
	if err != nil {
		return nil, nil, false, err
	}

	for name, data := range artifacts {
		key := r.Keyer.ArtifactKey(hash, opts.ArtifactKeyOpts(name))
		if err := r.Cache.Set(ctx, key, data, cache.TTLArtifact); err != nil {
			r.Logger.Debug("artifact not cached", "artifact", name, "error", err)
			continue
		}
		observability.Cache().OnCacheSet(ctx, "artifact", len(data))
	}
	return artifacts, anim, false, nil
}

// Render is a convenience wrapper that calls RenderWithCacheInfo and discards
// the cache hit info.
func (r *Runner) Render(ctx context.Context, u *table.Unified, opts Options) (map[string][]byte, error) {
	artifacts, _, _, err := r.RenderWithCacheInfo(ctx, u, opts)
	return artifacts, err
}

// cachedArtifacts returns every requested artifact from the cache, or false
// if any is missing.
func (r *Runner) cachedArtifacts(ctx context.Context, hash string, opts Options) (map[string][]byte, bool) {
	artifacts := make(map[string][]byte)
	for _, format := range opts.Formats {
		for _, name := range ArtifactNames(format) {
			key := r.Keyer.ArtifactKey(hash, opts.ArtifactKeyOpts(name))
			data, hit, err := r.Cache.Get(ctx, key)
			if err != nil || !hit {
				observability.Cache().OnCacheMiss(ctx, "artifact")
				return nil, false
			}
			artifacts[name] = data
		}
	}
	observability.Cache().OnCacheHit(ctx, "artifact")
	return artifacts, true
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

// applyLogger sets the runner's logger on options if not already set.
func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
}

// Summary is the JSON view of a result without artifact bodies.
type Summary struct {
	RunID     string    `json:"run_id"`
	Layouts   []string  `json:"layouts"`
	Modules   []string  `json:"modules"`
	Artifacts []string  `json:"artifacts"`
	Stats     Stats     `json:"stats"`
	CacheInfo CacheInfo `json:"cache"`
}

// Summary returns the JSON view of r.
func (r *Result) Summary() Summary {
	s := Summary{
		RunID:     r.RunID,
		Stats:     r.Stats,
		CacheInfo: r.CacheInfo,
		Artifacts: make([]string, 0, len(r.Artifacts)),
	}
	if r.Tables != nil {
		for _, l := range r.Tables.Layouts {
			s.Layouts = append(s.Layouts, string(l))
		}
		s.Modules = r.Tables.Modules()
	}
	for name := range r.Artifacts {
		s.Artifacts = append(s.Artifacts, name)
	}
	slices.Sort(s.Artifacts)
	return s
}

// MarshalJSON encodes the summary and the unified tables.
func (r *Result) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Summary
		Tables *table.Unified `json:"tables,omitempty"`
	}{r.Summary(), r.Tables})
}
