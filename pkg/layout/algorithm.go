package layout

import (
	"context"
	"maps"
	"slices"
	"strconv"

	"github.com/goccy/go-graphviz"

	gmerrors "github.com/matzehuels/graphmorph/pkg/errors"
	"github.com/matzehuels/graphmorph/pkg/network"
)

// Algorithm computes one layout of a network.
type Algorithm interface {
	Name() Name
	Compute(ctx context.Context, net *network.Network) (Table, error)
}

// Func adapts a function to the [Algorithm] interface.
type Func struct {
	LayoutName Name
	Fn         func(ctx context.Context, net *network.Network) (Table, error)
}

// Name returns the layout name.
func (f Func) Name() Name { return f.LayoutName }

// Compute calls Fn.
func (f Func) Compute(ctx context.Context, net *network.Network) (Table, error) {
	return f.Fn(ctx, net)
}

// Registry maps layout names to algorithms.
type Registry struct {
	algs map[Name]Algorithm
}

// NewRegistry creates a registry holding the given algorithms.
// A later algorithm with the same name replaces an earlier one.
func NewRegistry(algs ...Algorithm) *Registry {
	r := &Registry{algs: make(map[Name]Algorithm, len(algs))}
	for _, a := range algs {
		r.Register(a)
	}
	return r
}

// Register adds or replaces an algorithm.
func (r *Registry) Register(a Algorithm) {
	r.algs[a.Name()] = a
}

// Lookup returns the algorithm registered for name, or an
// *errors.UnsupportedLayoutError.
func (r *Registry) Lookup(name Name) (Algorithm, error) {
	if a, ok := r.algs[name]; ok {
		return a, nil
	}
	supported := make([]string, 0, len(r.algs))
	for _, n := range r.Names() {
		supported = append(supported, string(n))
	}
	return nil, &gmerrors.UnsupportedLayoutError{Name: string(name), Supported: supported}
}

// Names returns the registered names in display order.
func (r *Registry) Names() []Name {
	names := slices.Collect(maps.Keys(r.algs))
	slices.Sort(names)
	SortByDisplay(names)
	return names
}

// DefaultRegistry returns a registry with every supported layout. seed is
// passed to the stochastic Graphviz engines as their start value.
func DefaultRegistry(seed uint64) *Registry {
	start := strconv.FormatUint(seed, 10)
	return NewRegistry(
		&Engine{LayoutName: Circle, Program: graphviz.CIRCO, Attrs: map[string]string{"mindist": "0.6"}},
		&Engine{LayoutName: Star, Program: graphviz.TWOPI, Attrs: map[string]string{"ranksep": "1.2"}, RootAtHub: true},
		&Engine{LayoutName: KK, Program: graphviz.NEATO, Attrs: map[string]string{"mode": "KK", "start": start}},
		&Engine{LayoutName: Stress, Program: graphviz.NEATO, Attrs: map[string]string{"mode": "major", "start": start}},
		&Engine{LayoutName: FR, Program: graphviz.FDP, Attrs: map[string]string{"start": start}},
		&Engine{LayoutName: GEM, Program: graphviz.SFDP, Attrs: map[string]string{"start": start}},
		&Engine{LayoutName: Sugiyama, Program: graphviz.DOT, Attrs: map[string]string{"rankdir": "TB"}},
		Isomap{},
		TidyTree{},
	)
}
