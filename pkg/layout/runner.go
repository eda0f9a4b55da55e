package layout

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/graphmorph/pkg/cache"
	gmerrors "github.com/matzehuels/graphmorph/pkg/errors"
	"github.com/matzehuels/graphmorph/pkg/network"
	"github.com/matzehuels/graphmorph/pkg/observability"
)

// EventState is the state reported by an [Event].
type EventState int

const (
	Started EventState = iota
	Done
	Failed
)

// Event reports progress of a single layout. It is delivered to
// [Runner.Notify], possibly from several goroutines when Parallel is set.
type Event struct {
	Layout   Name
	State    EventState
	Cached   bool
	Duration time.Duration
	Err      error
}

// Runner computes layouts for an ordered list of names.
//
// Runners are stateless apart from their cache and can be shared between
// goroutines.
type Runner struct {
	Registry *Registry
	Cache    cache.Cache
	Keyer    cache.Keyer

	// Seed is folded into cache keys. It must match the seed the registry
	// was built with.
	Seed uint64

	// Parallel computes layouts concurrently. The first failure cancels the
	// remaining layouts.
	Parallel bool

	// Notify, if set, receives progress events.
	Notify func(Event)

	Logger *log.Logger
}

// NewRunner creates a runner. Nil arguments fall back to
// [DefaultRegistry](seed), a null cache, the default keyer and a discarding
// logger.
func NewRunner(reg *Registry, c cache.Cache, keyer cache.Keyer, seed uint64, logger *log.Logger) *Runner {
	if reg == nil {
		reg = DefaultRegistry(seed)
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Runner{Registry: reg, Cache: c, Keyer: keyer, Seed: seed, Logger: logger}
}

// Run computes one table per name and returns them in the order requested.
// Every table is complete for net; any failure aborts the whole run and no
// tables are returned.
func (r *Runner) Run(ctx context.Context, net *network.Network, names []Name) ([]Table, error) {
	if net == nil {
		return nil, gmerrors.Invalid("network", "", "is nil")
	}
	if len(names) == 0 {
		return nil, gmerrors.Invalid("layouts", "", "at least one layout is required")
	}

	reg := r.registry()
	algs := make([]Algorithm, len(names))
	seen := make(map[Name]bool, len(names))
	for i, name := range names {
		if seen[name] {
			return nil, gmerrors.Invalid("layouts", string(name), "listed more than once")
		}
		seen[name] = true
		alg, err := reg.Lookup(name)
		if err != nil {
			return nil, err
		}
		algs[i] = alg
	}

	netHash := net.Hash()
	tables := make([]Table, len(names))

	if !r.Parallel {
		for i, alg := range algs {
			t, err := r.runOne(ctx, net, netHash, alg)
			if err != nil {
				return nil, err
			}
			tables[i] = t
		}
		return tables, nil
	}

	g, gctx := errgroup.WithContext(ctx)
	for i, alg := range algs {
		g.Go(func() error {
			t, err := r.runOne(gctx, net, netHash, alg)
			if err != nil {
				return err
			}
			tables[i] = t
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return tables, nil
}

func (r *Runner) runOne(ctx context.Context, net *network.Network, netHash string, alg Algorithm) (Table, error) {
	name := alg.Name()
	if err := ctx.Err(); err != nil {
		return Table{}, err
	}

	hooks := observability.Pipeline()
	hooks.OnLayoutStart(ctx, string(name), net.NodeCount())
	r.notify(Event{Layout: name, State: Started})

	start := time.Now()
	logger := r.logger().With("layout", name)
	cacheKey := r.keyer().LayoutKey(netHash, cache.LayoutKeyOpts{Layout: string(name), Seed: r.Seed})

	t, cached := r.load(ctx, net, cacheKey, name)
	var err error
	if !cached {
		t, err = alg.Compute(ctx, net)
		if err == nil {
			t.Layout = name
			err = t.Check(net)
		}
		if err == nil {
			r.store(ctx, cacheKey, t)
		}
	}

	dur := time.Since(start)
	hooks.OnLayoutComplete(ctx, string(name), dur, err)
	if err != nil {
		r.notify(Event{Layout: name, State: Failed, Duration: dur, Err: err})
		return Table{}, fmt.Errorf("layout %s: %w", name, err)
	}

	logger.Debug("computed layout", "nodes", t.Len(), "cached", cached, "duration", dur)
	r.notify(Event{Layout: name, State: Done, Cached: cached, Duration: dur})
	return t, nil
}

// load returns a cached table. Read, decode and completeness failures are
// reported as a miss.
func (r *Runner) load(ctx context.Context, net *network.Network, key string, name Name) (Table, bool) {
	if r.Cache == nil {
		return Table{}, false
	}
	data, hit, err := r.Cache.Get(ctx, key)
	if err != nil {
		r.logger().Warn("layout cache read failed", "layout", name, "err", err)
	}
	if !hit {
		observability.Cache().OnCacheMiss(ctx, "layout")
		return Table{}, false
	}

	var t Table
	if err := json.Unmarshal(data, &t); err != nil || t.Layout != name || t.Check(net) != nil {
		observability.Cache().OnCacheMiss(ctx, "layout")
		return Table{}, false
	}
	observability.Cache().OnCacheHit(ctx, "layout")
	return t, true
}

func (r *Runner) store(ctx context.Context, key string, t Table) {
	if r.Cache == nil {
		return
	}
	data, err := json.Marshal(t)
	if err != nil {
		return
	}
	if err := r.Cache.Set(ctx, key, data, cache.TTLLayout); err != nil {
		r.logger().Warn("layout cache write failed", "layout", t.Layout, "err", err)
		return
	}
	observability.Cache().OnCacheSet(ctx, "layout", len(data))
}

func (r *Runner) notify(e Event) {
	if r.Notify != nil {
		r.Notify(e)
	}
}

func (r *Runner) registry() *Registry {
	if r.Registry == nil {
		return DefaultRegistry(r.Seed)
	}
	return r.Registry
}

func (r *Runner) keyer() cache.Keyer {
	if r.Keyer == nil {
		return cache.NewDefaultKeyer()
	}
	return r.Keyer
}

func (r *Runner) logger() *log.Logger {
	if r.Logger == nil {
		return log.New(io.Discard)
	}
	return r.Logger
}
