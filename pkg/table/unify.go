package table

import (
	"encoding/json"
	"slices"

	"github.com/matzehuels/graphmorph/pkg/cache"
	gmerrors "github.com/matzehuels/graphmorph/pkg/errors"
	"github.com/matzehuels/graphmorph/pkg/layout"
	"github.com/matzehuels/graphmorph/pkg/network"
)

// NodeRow is one node under one layout.
type NodeRow struct {
	X      float64     `json:"x"`
	Y      float64     `json:"y"`
	Name   string      `json:"name"`
	Layout layout.Name `json:"layout"`
	Module string      `json:"module"`
}

// EdgeRow is one edge under one layout. (X, Y) is the From endpoint and
// (XEnd, YEnd) the To endpoint, both taken from the same layout.
type EdgeRow struct {
	EdgeID string      `json:"edge_id"`
	X      float64     `json:"x"`
	Y      float64     `json:"y"`
	XEnd   float64     `json:"xend"`
	YEnd   float64     `json:"yend"`
	Layout layout.Name `json:"layout"`
}

// Unified is the long-form result of [Unify]. Rows are grouped by layout in
// the order of Layouts, and within a layout follow network insertion order.
type Unified struct {
	Nodes   []NodeRow     `json:"nodes"`
	Edges   []EdgeRow     `json:"edges"`
	Layouts []layout.Name `json:"layouts"`
}

// key is the composite join key.
type key struct {
	node   string
	layout layout.Name
}

// Unify merges per-layout tables for net. Layout levels follow
// [layout.DisplayOrder], whatever order the tables were computed in.
func Unify(net *network.Network, tables []layout.Table) (*Unified, error) {
	if net == nil {
		return nil, gmerrors.Invalid("network", "", "is nil")
	}
	if len(tables) == 0 {
		return nil, gmerrors.Invalid("layouts", "", "no layout tables to unify")
	}

	levels := make([]layout.Name, 0, len(tables))
	byName := make(map[layout.Name]layout.Table, len(tables))
	for _, t := range tables {
		if _, dup := byName[t.Layout]; dup {
			return nil, gmerrors.Invalid("layouts", string(t.Layout), "table supplied more than once")
		}
		byName[t.Layout] = t
		levels = append(levels, t.Layout)
	}
	layout.SortByDisplay(levels)

	nodes := net.Nodes()
	edges := net.Edges()
	index := make(map[key]layout.Point, len(nodes)*len(levels))

	u := &Unified{
		Nodes:   make([]NodeRow, 0, len(nodes)*len(levels)),
		Edges:   make([]EdgeRow, 0, len(edges)*len(levels)),
		Layouts: levels,
	}

	for _, l := range levels {
		t := byName[l]
		for _, n := range nodes {
			p, ok := t.Coords[n.ID]
			if !ok {
				return nil, &gmerrors.MissingCoordinateError{Layout: string(l), Endpoint: "node", Node: n.ID}
			}
			index[key{n.ID, l}] = p
			u.Nodes = append(u.Nodes, NodeRow{X: p.X, Y: p.Y, Name: n.ID, Layout: l, Module: n.Module})
		}
	}

	for _, l := range levels {
		for _, e := range edges {
			from, ok := index[key{e.From, l}]
			if !ok {
				return nil, &gmerrors.MissingCoordinateError{EdgeID: e.ID(), Layout: string(l), Endpoint: "from", Node: e.From}
			}
			to, ok := index[key{e.To, l}]
			if !ok {
				return nil, &gmerrors.MissingCoordinateError{EdgeID: e.ID(), Layout: string(l), Endpoint: "to", Node: e.To}
			}
			u.Edges = append(u.Edges, EdgeRow{
				EdgeID: e.ID(),
				X:      from.X,
				Y:      from.Y,
				XEnd:   to.X,
				YEnd:   to.Y,
				Layout: l,
			})
		}
	}
	return u, nil
}

// NodesFor returns the node rows of one layout.
func (u *Unified) NodesFor(l layout.Name) []NodeRow {
	var out []NodeRow
	for _, r := range u.Nodes {
		if r.Layout == l {
			out = append(out, r)
		}
	}
	return out
}

// EdgesFor returns the edge rows of one layout.
func (u *Unified) EdgesFor(l layout.Name) []EdgeRow {
	var out []EdgeRow
	for _, r := range u.Edges {
		if r.Layout == l {
			out = append(out, r)
		}
	}
	return out
}

// Has reports whether the table holds rows for layout l.
func (u *Unified) Has(l layout.Name) bool { return slices.Contains(u.Layouts, l) }

// Extent returns the bounding box of the node rows of one layout.
func (u *Unified) Extent(l layout.Name) Extent {
	e := EmptyExtent()
	for _, r := range u.Nodes {
		if r.Layout == l {
			e = e.Add(r.X, r.Y)
		}
	}
	return e
}

// Modules returns the distinct module labels in order of first appearance.
func (u *Unified) Modules() []string {
	seen := make(map[string]bool)
	var out []string
	for _, r := range u.Nodes {
		if !seen[r.Module] {
			seen[r.Module] = true
			out = append(out, r.Module)
		}
	}
	return out
}

// NodeIDs returns the node names in the row order of the first layout.
func (u *Unified) NodeIDs() []string {
	if len(u.Layouts) == 0 {
		return nil
	}
	rows := u.NodesFor(u.Layouts[0])
	out := make([]string, len(rows))
	for i, r := range rows {
		out[i] = r.Name
	}
	return out
}

// Hash returns a content hash of both tables, used to key rendered artifacts.
func (u *Unified) Hash() string {
	data, _ := json.Marshal(u)
	return cache.Hash(data)
}
