package network

import (
	"slices"

	"gonum.org/v1/gonum/graph"
	"gonum.org/v1/gonum/graph/iterator"
	"gonum.org/v1/gonum/graph/simple"
)

// Graph is a read-only gonum view of a Network. The gonum ID of a node is its
// insertion index, and every iterator walks nodes and neighbours in insertion
// order, so traversals over the view are deterministic. Self-loops are
// omitted because gonum simple graphs do not carry them.
//
// Graph implements [graph.Undirected].
type Graph struct {
	ids   []string
	index map[string]int64
	adj   [][]int64
	keep  []bool // nil keeps every node
}

var _ graph.Undirected = (*Graph)(nil)

// Graph returns the gonum view of n.
func (n *Network) Graph() *Graph {
	g := &Graph{
		ids:   slices.Clone(n.order),
		index: make(map[string]int64, len(n.order)),
		adj:   make([][]int64, len(n.order)),
	}
	for i, id := range n.order {
		g.index[id] = int64(i)
	}
	for i, id := range n.order {
		for _, nb := range n.adjacency[id] {
			if nb != id {
				g.adj[i] = append(g.adj[i], g.index[nb])
			}
		}
	}
	return g
}

// Induced returns the view restricted to nodes. IDs are unchanged.
func (g *Graph) Induced(nodes []graph.Node) *Graph {
	sub := *g
	sub.keep = make([]bool, len(g.ids))
	for _, n := range nodes {
		if g.has(n.ID()) {
			sub.keep[n.ID()] = true
		}
	}
	return &sub
}

// ID returns the gonum ID of the node named name.
func (g *Graph) ID(name string) (int64, bool) {
	id, ok := g.index[name]
	return id, ok && g.has(id)
}

// Name returns the network node ID for a gonum ID, or "" if it is unknown.
func (g *Graph) Name(id int64) string {
	if !g.has(id) {
		return ""
	}
	return g.ids[id]
}

// Len returns the number of nodes in the view.
func (g *Graph) Len() int {
	if g.keep == nil {
		return len(g.ids)
	}
	n := 0
	for _, k := range g.keep {
		if k {
			n++
		}
	}
	return n
}

func (g *Graph) has(id int64) bool {
	if id < 0 || id >= int64(len(g.ids)) {
		return false
	}
	return g.keep == nil || g.keep[id]
}

// Node returns the node with the given ID, or nil.
func (g *Graph) Node(id int64) graph.Node {
	if !g.has(id) {
		return nil
	}
	return simple.Node(id)
}

// Nodes returns all nodes of the view in insertion order.
func (g *Graph) Nodes() graph.Nodes {
	nodes := make([]graph.Node, 0, len(g.ids))
	for i := range g.ids {
		if g.has(int64(i)) {
			nodes = append(nodes, simple.Node(i))
		}
	}
	return iterator.NewOrderedNodes(nodes)
}

// From returns the neighbours of id in edge insertion order.
func (g *Graph) From(id int64) graph.Nodes {
	if !g.has(id) {
		return graph.Empty
	}
	var nodes []graph.Node
	for _, nb := range g.adj[id] {
		if g.has(nb) {
			nodes = append(nodes, simple.Node(nb))
		}
	}
	return iterator.NewOrderedNodes(nodes)
}

// HasEdgeBetween reports whether x and y are adjacent.
func (g *Graph) HasEdgeBetween(xid, yid int64) bool {
	return g.has(xid) && g.has(yid) && slices.Contains(g.adj[xid], yid)
}

// Edge returns the edge from u to v, or nil. From() of the result is u.
func (g *Graph) Edge(uid, vid int64) graph.Edge {
	if !g.HasEdgeBetween(uid, vid) {
		return nil
	}
	return simple.Edge{F: simple.Node(uid), T: simple.Node(vid)}
}

// EdgeBetween is [Graph.Edge]; edges are undirected.
func (g *Graph) EdgeBetween(xid, yid int64) graph.Edge { return g.Edge(xid, yid) }
