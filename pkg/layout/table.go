package layout

import (
	"math"

	gmerrors "github.com/matzehuels/graphmorph/pkg/errors"
	"github.com/matzehuels/graphmorph/pkg/network"
)

// Point is a 2-D position.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Lerp returns the point at fraction t of the way from p to q.
func (p Point) Lerp(q Point, t float64) Point {
	return Point{X: p.X + (q.X-p.X)*t, Y: p.Y + (q.Y-p.Y)*t}
}

// Table holds the coordinates of one layout, keyed by node ID.
type Table struct {
	Layout Name             `json:"layout"`
	Coords map[string]Point `json:"coords"`
}

// NewTable creates an empty table for the given layout.
func NewTable(name Name) Table {
	return Table{Layout: name, Coords: make(map[string]Point)}
}

// Len returns the number of coordinates.
func (t Table) Len() int { return len(t.Coords) }

// At returns the coordinate of a node and whether it exists.
func (t Table) At(id string) (Point, bool) {
	p, ok := t.Coords[id]
	return p, ok
}

// Check verifies that the table has exactly one finite coordinate for every
// node of net. Coordinates for nodes outside the network are dropped.
func (t *Table) Check(net *network.Network) error {
	for _, id := range net.NodeIDs() {
		p, ok := t.Coords[id]
		if !ok || math.IsNaN(p.X) || math.IsNaN(p.Y) || math.IsInf(p.X, 0) || math.IsInf(p.Y, 0) {
			return &gmerrors.MissingCoordinateError{Layout: string(t.Layout), Endpoint: "node", Node: id}
		}
	}
	if len(t.Coords) != net.NodeCount() {
		for id := range t.Coords {
			if _, ok := net.Node(id); !ok {
				delete(t.Coords, id)
			}
		}
	}
	return nil
}
