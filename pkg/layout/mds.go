package layout

import (
	"context"
	"math"

	"gonum.org/v1/gonum/graph"
	gonumlayout "gonum.org/v1/gonum/graph/layout"
	"gonum.org/v1/gonum/graph/topo"
	"gonum.org/v1/gonum/graph/traverse"

	"github.com/matzehuels/graphmorph/pkg/network"
)

// Spacing of the MDS layout, in points per unit of graph distance.
const (
	mdsUnit      = 72.0
	mdsComponent = 1.5 // gap between components, in units
)

// Isomap is classical multidimensional scaling of the shortest-path
// distances between every pair of nodes (Torgerson scaling, via gonum's
// IsomapR2). Each connected component is embedded on its own and components
// are placed left to right. A component whose distances are collinear, such
// as a path, is laid out along its longest shortest path.
//
// Isomap is deterministic. It computes all pairs of distances, so it is
// quadratic in memory.
type Isomap struct{}

// Name returns [MDS].
func (Isomap) Name() Name { return MDS }

// Compute returns the MDS coordinates.
func (Isomap) Compute(ctx context.Context, net *network.Network) (Table, error) {
	t := NewTable(MDS)
	g := net.Graph()

	offset := 0.0
	for _, comp := range topo.ConnectedComponents(g) {
		if err := ctx.Err(); err != nil {
			return Table{}, err
		}
		sub := g.Induced(comp)
		pos := embed(sub, comp)

		minX, maxX := math.Inf(1), math.Inf(-1)
		var cy float64
		for _, p := range pos {
			minX, maxX = math.Min(minX, p.X), math.Max(maxX, p.X)
			cy += p.Y
		}
		cy /= float64(len(pos))
		for id, p := range pos {
			t.Coords[sub.Name(id)] = Point{
				X: (offset + p.X - minX) * mdsUnit,
				Y: (p.Y - cy) * mdsUnit,
			}
		}
		offset += maxX - minX + mdsComponent
	}
	return t, nil
}

// embed returns unit-scale positions for one connected component.
func embed(g *network.Graph, nodes []graph.Node) map[int64]Point {
	pos := make(map[int64]Point, len(nodes))
	if len(nodes) >= 3 {
		o := gonumlayout.NewOptimizerR2(g, gonumlayout.IsomapR2{}.Update)
		for o.Update() {
		}
		for _, n := range nodes {
			v := o.Coord2(n.ID())
			pos[n.ID()] = Point{X: v.X, Y: v.Y}
		}
		if !degenerate(pos) {
			return pos
		}
	}
	return linear(g, nodes)
}

// degenerate reports whether the embedding failed: a NaN coordinate, or all
// nodes on one vertical line, which is what IsomapR2 leaves behind when the
// distances span fewer than two dimensions.
func degenerate(pos map[int64]Point) bool {
	first := true
	var x0 float64
	spread := false
	for _, p := range pos {
		if math.IsNaN(p.X) || math.IsNaN(p.Y) {
			return true
		}
		if first {
			x0, first = p.X, false
		} else if math.Abs(p.X-x0) > 1e-9 {
			spread = true
		}
	}
	return !spread
}

// linear places nodes at their BFS depth from one end of a longest shortest
// path, found by a double sweep. For a path graph this is the exact MDS
// embedding.
func linear(g *network.Graph, nodes []graph.Node) map[int64]Point {
	depths := func(from graph.Node) (map[int64]int, graph.Node) {
		d := make(map[int64]int, len(nodes))
		far, best := from, -1
		var bf traverse.BreadthFirst
		bf.Walk(g, from, func(n graph.Node, depth int) bool {
			d[n.ID()] = depth
			if depth > best {
				far, best = n, depth
			}
			return false
		})
		return d, far
	}

	_, end := depths(nodes[0])
	d, _ := depths(end)

	pos := make(map[int64]Point, len(nodes))
	for _, n := range nodes {
		pos[n.ID()] = Point{X: float64(d[n.ID()])}
	}
	return pos
}
