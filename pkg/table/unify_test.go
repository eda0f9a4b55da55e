package table

import (
	"errors"
	"slices"
	"testing"

	gmerrors "github.com/matzehuels/graphmorph/pkg/errors"
	"github.com/matzehuels/graphmorph/pkg/layout"
	"github.com/matzehuels/graphmorph/pkg/network"
)

func buildNetwork(t *testing.T, part network.Partition, pairs ...[2]string) *network.Network {
	t.Helper()
	recs := make([]network.EdgeRecord, len(pairs))
	for i, p := range pairs {
		recs[i] = network.EdgeRecord{From: p[0], To: p[1]}
	}
	net, err := network.Build(recs, nil, network.BuildOptions{Partition: part})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	return net
}

// scaledTable gives node i of net the position (i*scale, offset).
func scaledTable(net *network.Network, name layout.Name, scale, offset float64) layout.Table {
	t := layout.NewTable(name)
	for i, id := range net.NodeIDs() {
		t.Coords[id] = layout.Point{X: float64(i) * scale, Y: offset}
	}
	return t
}

func TestUnifyScenario(t *testing.T) {
	net := buildNetwork(t, nil, [2]string{"1", "2"}, [2]string{"2", "3"})
	tables := []layout.Table{
		scaledTable(net, layout.Circle, 1, 0),
		scaledTable(net, layout.Star, 10, 5),
	}

	u, err := Unify(net, tables)
	if err != nil {
		t.Fatalf("Unify: %v", err)
	}
	if len(u.Nodes) != 6 {
		t.Errorf("node rows = %d, want 6", len(u.Nodes))
	}
	if len(u.Edges) != 4 {
		t.Errorf("edge rows = %d, want 4", len(u.Edges))
	}

	counts := map[string]int{}
	for _, r := range u.Edges {
		counts[r.EdgeID]++
	}
	if len(counts) != 2 || counts["1-2"] != 2 || counts["2-3"] != 2 {
		t.Errorf("edge id counts = %v, want 1-2 and 2-3 twice each", counts)
	}
}

func TestUnifyCompositeKeyJoin(t *testing.T) {
	net := buildNetwork(t, nil, [2]string{"1", "2"}, [2]string{"2", "3"}, [2]string{"3", "1"})
	circle := scaledTable(net, layout.Circle, 1, 0)
	kk := scaledTable(net, layout.KK, 100, 50)

	u, err := Unify(net, []layout.Table{kk, circle})
	if err != nil {
		t.Fatalf("Unify: %v", err)
	}

	src := map[layout.Name]layout.Table{layout.Circle: circle, layout.KK: kk}
	edges := net.Edges()
	for i, r := range u.Edges {
		e := edges[i%len(edges)]
		from := src[r.Layout].Coords[e.From]
		to := src[r.Layout].Coords[e.To]
		if r.X != from.X || r.Y != from.Y || r.XEnd != to.X || r.YEnd != to.Y {
			t.Errorf("row %d (%s, %s) = %+v, want from %v to %v", i, r.EdgeID, r.Layout, r, from, to)
		}
	}
}

func TestUnifyDisplayOrder(t *testing.T) {
	net := buildNetwork(t, nil, [2]string{"a", "b"})
	u, err := Unify(net, []layout.Table{
		scaledTable(net, layout.Sugiyama, 1, 0),
		scaledTable(net, layout.Circle, 1, 0),
		scaledTable(net, layout.KK, 1, 0),
	})
	if err != nil {
		t.Fatalf("Unify: %v", err)
	}
	want := []layout.Name{layout.Circle, layout.KK, layout.Sugiyama}
	if !slices.Equal(u.Layouts, want) {
		t.Errorf("Layouts = %v, want %v", u.Layouts, want)
	}
	if u.Nodes[0].Layout != layout.Circle || u.Nodes[len(u.Nodes)-1].Layout != layout.Sugiyama {
		t.Error("rows should be grouped in display order")
	}
}

func TestUnifyModuleJoin(t *testing.T) {
	part := network.Partition{{Name: "low", From: 1, To: 2}, {Name: "high", From: 3, To: 9}}
	net := buildNetwork(t, part, [2]string{"1", "3"}, [2]string{"2", "42"})
	u, err := Unify(net, []layout.Table{
		scaledTable(net, layout.Circle, 1, 0),
		scaledTable(net, layout.Tree, 2, 0),
	})
	if err != nil {
		t.Fatalf("Unify: %v", err)
	}

	labels := map[string]string{}
	for _, r := range u.Nodes {
		if prev, ok := labels[r.Name]; ok && prev != r.Module {
			t.Errorf("node %s has modules %q and %q", r.Name, prev, r.Module)
		}
		labels[r.Name] = r.Module
	}
	if labels["42"] != network.Unassigned || labels["3"] != "high" {
		t.Errorf("labels = %v", labels)
	}
	if got := u.Modules(); !slices.Equal(got, []string{"low", "high", network.Unassigned}) {
		t.Errorf("Modules() = %v", got)
	}
}

func TestUnifyMissingCoordinate(t *testing.T) {
	net := buildNetwork(t, nil, [2]string{"1", "2"}, [2]string{"2", "3"})
	bad := scaledTable(net, layout.Star, 1, 0)
	delete(bad.Coords, "3")

	u, err := Unify(net, []layout.Table{scaledTable(net, layout.Circle, 1, 0), bad})
	if u != nil {
		t.Error("failed Unify must return no tables")
	}
	var merr *gmerrors.MissingCoordinateError
	if !errors.As(err, &merr) {
		t.Fatalf("err = %v, want MissingCoordinateError", err)
	}
	if merr.Layout != "star" || merr.Node != "3" {
		t.Errorf("error = %+v", merr)
	}
}

func TestUnifyRejects(t *testing.T) {
	net := buildNetwork(t, nil, [2]string{"1", "2"})
	c := scaledTable(net, layout.Circle, 1, 0)

	if _, err := Unify(net, nil); !gmerrors.Is(err, gmerrors.ErrCodeValidation) {
		t.Errorf("no tables err = %v", err)
	}
	if _, err := Unify(net, []layout.Table{c, c}); !gmerrors.Is(err, gmerrors.ErrCodeValidation) {
		t.Errorf("duplicate tables err = %v", err)
	}
	if _, err := Unify(nil, []layout.Table{c}); err == nil {
		t.Error("nil network should fail")
	}
}

func TestUnifiedHelpers(t *testing.T) {
	net := buildNetwork(t, nil, [2]string{"1", "2"}, [2]string{"2", "3"})
	u, err := Unify(net, []layout.Table{
		scaledTable(net, layout.Circle, 1, 0),
		scaledTable(net, layout.Star, 10, 5),
	})
	if err != nil {
		t.Fatalf("Unify: %v", err)
	}

	if n := len(u.NodesFor(layout.Star)); n != 3 {
		t.Errorf("NodesFor(star) = %d rows", n)
	}
	if n := len(u.EdgesFor(layout.Circle)); n != 2 {
		t.Errorf("EdgesFor(circle) = %d rows", n)
	}
	if !u.Has(layout.Star) || u.Has(layout.KK) {
		t.Error("Has() mismatch")
	}
	if got := u.NodeIDs(); !slices.Equal(got, []string{"1", "2", "3"}) {
		t.Errorf("NodeIDs() = %v", got)
	}

	want := Extent{MinX: 0, MinY: 5, MaxX: 20, MaxY: 5}
	if got := u.Extent(layout.Star); got != want {
		t.Errorf("Extent(star) = %+v, want %+v", got, want)
	}
	if u.Extent(layout.Star).Equal(u.Extent(layout.Circle), 1e-9) {
		t.Error("layouts with different ranges should have different extents")
	}
	if !u.Extent(layout.KK).IsEmpty() {
		t.Error("extent of an absent layout should be empty")
	}
}

func TestExtent(t *testing.T) {
	e := EmptyExtent().Add(0, 0).Add(10, 4)
	if e.Width() != 10 || e.Height() != 4 {
		t.Errorf("size = %v x %v", e.Width(), e.Height())
	}

	p := e.Pad(0.1)
	if p.MinX != -1 || p.MaxY != 5 {
		t.Errorf("Pad(0.1) = %+v", p)
	}

	point := EmptyExtent().Add(3, 3).Pad(0.05)
	if point.Width() != 2 {
		t.Errorf("degenerate extent should pad by one unit, got %+v", point)
	}
}
