package pipeline

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/matzehuels/graphmorph/pkg/cache"
	"github.com/matzehuels/graphmorph/pkg/layout"
	"github.com/matzehuels/graphmorph/pkg/network"
	"github.com/matzehuels/graphmorph/pkg/observability"
	"github.com/matzehuels/graphmorph/pkg/table"
)

// =============================================================================
// Layout Generation
// =============================================================================

// ComputeLayouts computes one table per requested layout, in request order.
// It returns the number of tables that were loaded from the cache.
func (r *Runner) ComputeLayouts(ctx context.Context, net *network.Network, opts Options) ([]layout.Table, int, error) {
	names, err := opts.LayoutNames()
	if err != nil {
		return nil, 0, err
	}

	var c cache.Cache = r.Cache
	if opts.Refresh {
		c = cache.NewNullCache()
	}

	reg := r.Registry
	if reg == nil {
		reg = layout.DefaultRegistry(opts.Seed)
	}

	var hits atomic.Int32
	lr := layout.NewRunner(reg, c, r.Keyer, opts.Seed, opts.Logger)
	lr.Parallel = opts.Parallel
	lr.Notify = func(e layout.Event) {
		if e.State == layout.Done && e.Cached {
			hits.Add(1)
		}
		if r.Notify != nil {
			r.Notify(e)
		}
	}

	tables, err := lr.Run(ctx, net, names)
	if err != nil {
		return nil, 0, err
	}
	return tables, int(hits.Load()), nil
}

// =============================================================================
// Unification
// =============================================================================

// Unify merges layout tables and reports the stage to the pipeline hooks.
func Unify(ctx context.Context, net *network.Network, tables []layout.Table) (*table.Unified, error) {
	start := time.Now()
	u, err := table.Unify(net, tables)

	nodes, edges := 0, 0
	if u != nil {
		nodes, edges = len(u.Nodes), len(u.Edges)
	}
	observability.Pipeline().OnUnifyComplete(ctx, nodes, edges, time.Since(start), err)
	return u, err
}
