package pipeline

import (
	"context"
	"time"

	gmerrors "github.com/matzehuels/graphmorph/pkg/errors"
	graphio "github.com/matzehuels/graphmorph/pkg/io"
	"github.com/matzehuels/graphmorph/pkg/network"
	"github.com/matzehuels/graphmorph/pkg/observability"
)

// Build turns raw records into a network. A nil node table means the node
// universe is derived from the edges.
func Build(in *graphio.Input, opts Options) (*network.Network, error) {
	if in == nil {
		return nil, gmerrors.Invalid("input", "", "is nil")
	}
	return network.Build(in.Edges, in.Nodes, opts.BuildOptions())
}

// Build runs the build stage and reports it to the pipeline hooks.
func (r *Runner) Build(ctx context.Context, in *graphio.Input, opts Options) (*network.Network, error) {
	start := time.Now()
	net, err := Build(in, opts)
	dur := time.Since(start)

	nodes, edges := 0, 0
	if net != nil {
		nodes, edges = net.NodeCount(), net.EdgeCount()
	}
	observability.Pipeline().OnBuildComplete(ctx, nodes, edges, dur, err)
	if err != nil {
		return nil, err
	}

	if unassigned := countUnassigned(net); unassigned > 0 {
		r.Logger.Warn("nodes outside every module range", "count", unassigned, "module", network.Unassigned)
	}
	return net, nil
}

func countUnassigned(net *network.Network) int {
	n := 0
	for _, node := range net.Nodes() {
		if node.Module == network.Unassigned {
			n++
		}
	}
	return n
}
