package layout

import (
	"context"
	"slices"

	"gonum.org/v1/gonum/graph"
	"gonum.org/v1/gonum/graph/simple"
	"gonum.org/v1/gonum/graph/traverse"

	"github.com/matzehuels/graphmorph/pkg/network"
)

// Spacing of the native tree layout, in points.
const (
	treeSiblingGap = 36.0
	treeLevelGap   = 72.0
)

// TidyTree lays the network out as a top-down tree. Each connected component
// is reduced to a BFS spanning tree rooted at its highest-degree node; leaves
// take consecutive slots and every parent is centred over its children.
// Components are placed side by side, largest root degree first. Non-tree
// edges are kept by the unifier but do not influence positions.
type TidyTree struct{}

// Name returns [Tree].
func (TidyTree) Name() Name { return Tree }

// Compute returns the tree coordinates. It is deterministic.
func (TidyTree) Compute(ctx context.Context, net *network.Network) (Table, error) {
	t := NewTable(Tree)
	g := net.Graph()

	roots := net.NodeIDs()
	slices.SortStableFunc(roots, func(a, b string) int { return net.Degree(b) - net.Degree(a) })

	// parent is the source of the edge traversed just before a node is
	// visited, which BreadthFirst reports in that order.
	var (
		parent   int64
		root     int64
		children = make(map[int64][]int64)
	)
	bf := traverse.BreadthFirst{
		Traverse: func(e graph.Edge) bool {
			parent = e.From().ID()
			return true
		},
		Visit: func(n graph.Node) {
			if n.ID() != root {
				children[parent] = append(children[parent], n.ID())
			}
		},
	}

	slot := 0.0
	for _, name := range roots {
		id, _ := g.ID(name)
		if bf.Visited(simple.Node(id)) {
			continue
		}
		if err := ctx.Err(); err != nil {
			return Table{}, err
		}
		root = id
		bf.Walk(g, simple.Node(id), nil)
		placeTree(g, id, 0, children, &slot, t.Coords)
		slot++ // gap between components
	}
	return t, nil
}

// placeTree assigns coordinates in post-order. Leaves take the next free slot;
// a parent sits midway between its first and last child.
func placeTree(g *network.Graph, id int64, depth int, children map[int64][]int64, slot *float64, coords map[string]Point) float64 {
	y := -float64(depth) * treeLevelGap
	kids := children[id]
	if len(kids) == 0 {
		x := *slot * treeSiblingGap
		*slot++
		coords[g.Name(id)] = Point{X: x, Y: y}
		return x
	}

	first := placeTree(g, kids[0], depth+1, children, slot, coords)
	last := first
	for _, k := range kids[1:] {
		last = placeTree(g, k, depth+1, children, slot, coords)
	}
	x := (first + last) / 2
	coords[g.Name(id)] = Point{X: x, Y: y}
	return x
}
