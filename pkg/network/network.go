package network

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"slices"
)

var (
	// ErrInvalidNodeID is returned when a node ID is empty.
	ErrInvalidNodeID = errors.New("node ID must not be empty")

	// ErrDuplicateNodeID is returned when a node with the same ID already exists.
	ErrDuplicateNodeID = errors.New("duplicate node ID")

	// ErrUnknownSourceNode is returned when an edge's From node does not exist.
	ErrUnknownSourceNode = errors.New("unknown source node")

	// ErrUnknownTargetNode is returned when an edge's To node does not exist.
	ErrUnknownTargetNode = errors.New("unknown target node")

	// ErrDuplicateEdge is returned when a pair of nodes is connected twice,
	// in either direction. Edges are undirected, so (a, b) and (b, a) are the
	// same edge.
	ErrDuplicateEdge = errors.New("duplicate edge")
)

// Unassigned is the module label for nodes outside every partition range.
const Unassigned = "unassigned"

// Metadata stores arbitrary key-value pairs attached to nodes.
type Metadata map[string]any

// Node is a vertex of the network.
type Node struct {
	ID     string   // Unique identifier (also the display label)
	Module string   // Group label, assigned once at build time
	Meta   Metadata // Extra columns from the node table (never nil)
}

// Edge is an undirected connection between two nodes. From and To keep the
// order of the input row, which only matters for [Edge.ID].
type Edge struct {
	From string
	To   string
}

// ID returns the layout-invariant edge identifier "{From}-{To}".
func (e Edge) ID() string { return e.From + "-" + e.To }

// Network is an immutable undirected graph with module-labelled nodes.
// The zero value is not usable - use [Build] or [New].
type Network struct {
	nodes     map[string]*Node
	order     []string // node IDs in insertion order
	edges     []Edge
	edgeIDs   map[string]struct{}
	pairs     map[[2]string]struct{} // endpoints in sorted order
	adjacency map[string][]string
}

// New creates an empty network. It is used by [Build]; callers outside this
// package should prefer Build, which also assigns modules.
func New() *Network {
	return &Network{
		nodes:     make(map[string]*Node),
		edgeIDs:   make(map[string]struct{}),
		pairs:     make(map[[2]string]struct{}),
		adjacency: make(map[string][]string),
	}
}

func (n *Network) addNode(node Node) error {
	if node.ID == "" {
		return ErrInvalidNodeID
	}
	if _, exists := n.nodes[node.ID]; exists {
		return ErrDuplicateNodeID
	}
	if node.Meta == nil {
		node.Meta = Metadata{}
	}
	n.nodes[node.ID] = &node
	n.order = append(n.order, node.ID)
	return nil
}

func (n *Network) addEdge(e Edge) error {
	if _, ok := n.nodes[e.From]; !ok {
		return ErrUnknownSourceNode
	}
	if _, ok := n.nodes[e.To]; !ok {
		return ErrUnknownTargetNode
	}
	pair := [2]string{e.From, e.To}
	if pair[1] < pair[0] {
		pair[0], pair[1] = pair[1], pair[0]
	}
	if _, dup := n.pairs[pair]; dup {
		return ErrDuplicateEdge
	}
	if _, dup := n.edgeIDs[e.ID()]; dup {
		return ErrDuplicateEdge
	}
	n.pairs[pair] = struct{}{}
	n.edgeIDs[e.ID()] = struct{}{}
	n.edges = append(n.edges, e)
	n.adjacency[e.From] = append(n.adjacency[e.From], e.To)
	if e.From != e.To {
		n.adjacency[e.To] = append(n.adjacency[e.To], e.From)
	}
	return nil
}

// Directed reports whether edges are directed. Always false.
func (n *Network) Directed() bool { return false }

// Nodes returns copies of all nodes in insertion order.
func (n *Network) Nodes() []Node {
	out := make([]Node, len(n.order))
	for i, id := range n.order {
		out[i] = *n.nodes[id]
	}
	return out
}

// NodeIDs returns node identifiers in insertion order.
func (n *Network) NodeIDs() []string { return slices.Clone(n.order) }

// Node returns the node with the given ID and true, or the zero Node and false.
func (n *Network) Node(id string) (Node, bool) {
	node, ok := n.nodes[id]
	if !ok {
		return Node{}, false
	}
	return *node, true
}

// Module returns the module label of the node, or "" if it does not exist.
func (n *Network) Module(id string) string {
	if node, ok := n.nodes[id]; ok {
		return node.Module
	}
	return ""
}

// Edges returns a copy of all edges in insertion order.
func (n *Network) Edges() []Edge { return slices.Clone(n.edges) }

// NodeCount returns the number of nodes.
func (n *Network) NodeCount() int { return len(n.nodes) }

// EdgeCount returns the number of edges.
func (n *Network) EdgeCount() int { return len(n.edges) }

// Neighbors returns the IDs adjacent to id, in edge insertion order.
// The returned slice should be treated as read-only.
func (n *Network) Neighbors(id string) []string { return n.adjacency[id] }

// Degree returns the number of incident edges (a self-loop counts once).
func (n *Network) Degree(id string) int { return len(n.adjacency[id]) }

// Modules returns the distinct module labels in order of first appearance.
func (n *Network) Modules() []string {
	seen := make(map[string]bool)
	var out []string
	for _, id := range n.order {
		m := n.nodes[id].Module
		if !seen[m] {
			seen[m] = true
			out = append(out, m)
		}
	}
	return out
}

// Hub returns the node with the highest degree. Ties go to the node inserted
// first. Returns "" for an empty network.
func (n *Network) Hub() string {
	hub, best := "", -1
	for _, id := range n.order {
		if d := n.Degree(id); d > best {
			hub, best = id, d
		}
	}
	return hub
}

// Hash returns a stable SHA-256 over nodes, modules and edges. It is used as
// the cache key for layout tables.
func (n *Network) Hash() string {
	h := sha256.New()
	for _, id := range n.order {
		fmt.Fprintf(h, "n\x00%s\x00%s\n", id, n.nodes[id].Module)
	}
	for _, e := range n.edges {
		fmt.Fprintf(h, "e\x00%s\x00%s\n", e.From, e.To)
	}
	return hex.EncodeToString(h.Sum(nil))
}
