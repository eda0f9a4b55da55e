package frames

import (
	"math"
	"slices"
	"testing"
	"time"

	gmerrors "github.com/matzehuels/graphmorph/pkg/errors"
	"github.com/matzehuels/graphmorph/pkg/layout"
	"github.com/matzehuels/graphmorph/pkg/network"
	"github.com/matzehuels/graphmorph/pkg/table"
)

// fixture builds a 3-node path with a small circle layout and a large star
// layout, so the two extents differ.
func fixture(t *testing.T, names ...layout.Name) *table.Unified {
	t.Helper()
	net, err := network.Build([]network.EdgeRecord{{From: "1", To: "2"}, {From: "2", To: "3"}}, nil, network.BuildOptions{})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if len(names) == 0 {
		names = []layout.Name{layout.Circle, layout.Star}
	}
	tables := make([]layout.Table, len(names))
	for k, name := range names {
		tbl := layout.NewTable(name)
		scale := math.Pow(10, float64(k))
		for i, id := range net.NodeIDs() {
			tbl.Coords[id] = layout.Point{X: float64(i) * scale, Y: float64(i%2) * scale}
		}
		tables[k] = tbl
	}
	u, err := table.Unify(net, tables)
	if err != nil {
		t.Fatalf("Unify: %v", err)
	}
	return u
}

func TestCompare(t *testing.T) {
	u := fixture(t)
	panels := Compare(u)
	if len(panels) != 2 {
		t.Fatalf("got %d panels, want 2", len(panels))
	}
	if panels[0].Layout != layout.Circle || panels[1].Layout != layout.Star {
		t.Errorf("panels not in display order: %s, %s", panels[0].Layout, panels[1].Layout)
	}
	for _, p := range panels {
		if len(p.Nodes) != 3 || len(p.Edges) != 2 {
			t.Errorf("%s panel has %d nodes, %d edges", p.Layout, len(p.Nodes), len(p.Edges))
		}
	}
	if panels[0].Extent.Equal(panels[1].Extent, 1e-9) {
		t.Errorf("panels share an extent: %+v", panels[0].Extent)
	}
	if Compare(nil) != nil {
		t.Error("Compare(nil) should be nil")
	}
}

func TestSequenceFrameCounts(t *testing.T) {
	u := fixture(t)
	tests := []struct {
		name string
		opts Options
		want int
	}{
		{"defaults with wrap", DefaultOptions(), 2*10 + 2*20},
		{"no wrap", Options{Hold: time.Second, Transition: 2 * time.Second, FPS: 10}, 2*10 + 20},
		{"hard cut", Options{Hold: 500 * time.Millisecond, Transition: 0, FPS: 4}, 2 * 2},
		{"zero hold", Options{Transition: time.Second, FPS: 4}, 2*1 + 4},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			anim, err := Sequence(u, tt.opts)
			if err != nil {
				t.Fatalf("Sequence: %v", err)
			}
			if len(anim.Frames) != tt.want {
				t.Errorf("got %d frames, want %d", len(anim.Frames), tt.want)
			}
			opts := tt.opts
			opts.SetDefaults()
			if got := opts.FrameCount(2); got != tt.want {
				t.Errorf("FrameCount(2) = %d, want %d", got, tt.want)
			}
			for i, f := range anim.Frames {
				if f.Index != i {
					t.Fatalf("frame %d has index %d", i, f.Index)
				}
			}
		})
	}
}

func TestSequenceHoldFramesMatchLayouts(t *testing.T) {
	u := fixture(t)
	anim, err := Sequence(u, DefaultOptions())
	if err != nil {
		t.Fatalf("Sequence: %v", err)
	}

	for _, f := range anim.Frames {
		if !f.Hold() {
			continue
		}
		rows := u.NodesFor(f.From)
		for i, n := range f.Nodes {
			if n.ID != rows[i].Name || n.X != rows[i].X || n.Y != rows[i].Y {
				t.Fatalf("frame %d node %s = (%v,%v), want layout %s position (%v,%v)",
					f.Index, n.ID, n.X, n.Y, f.From, rows[i].X, rows[i].Y)
			}
		}
		edges := u.EdgesFor(f.From)
		for i, e := range f.Edges {
			if e.EdgeID != edges[i].EdgeID || e.XEnd != edges[i].XEnd || e.YEnd != edges[i].YEnd {
				t.Fatalf("frame %d edge %s does not match layout %s", f.Index, e.EdgeID, f.From)
			}
		}
		if want := u.Extent(f.From).Pad(DefaultPadding); !f.Viewport.Equal(want, 1e-9) {
			t.Errorf("frame %d viewport = %+v, want active extent %+v", f.Index, f.Viewport, want)
		}
		if f.Title != f.From {
			t.Errorf("hold frame %d titled %s, want %s", f.Index, f.Title, f.From)
		}
	}
}

func TestSequenceTransitions(t *testing.T) {
	u := fixture(t)
	opts := DefaultOptions()
	opts.Easing = EaseLinear
	anim, err := Sequence(u, opts)
	if err != nil {
		t.Fatalf("Sequence: %v", err)
	}

	var prev float64
	var inTransition bool
	for _, f := range anim.Frames {
		if f.Hold() {
			inTransition = false
			continue
		}
		if f.Progress <= 0 || f.Progress >= 1 {
			t.Errorf("transition frame %d progress %v outside (0,1)", f.Index, f.Progress)
		}
		if inTransition && f.Progress <= prev {
			t.Errorf("progress not increasing at frame %d", f.Index)
		}
		wantTitle := f.From
		if f.Progress >= 0.5 {
			wantTitle = f.To
		}
		if f.Title != wantTitle {
			t.Errorf("frame %d (progress %.2f) titled %s, want %s", f.Index, f.Progress, f.Title, wantTitle)
		}
		// The edge follows its endpoints because both interpolate linearly.
		from, to := f.Nodes[0], f.Nodes[1]
		if e := f.Edges[0]; math.Abs(e.X-from.X) > 1e-9 || math.Abs(e.XEnd-to.X) > 1e-9 {
			t.Errorf("frame %d edge %s detached from its nodes", f.Index, e.EdgeID)
		}
		prev, inTransition = f.Progress, true
	}

	last := anim.Frames[len(anim.Frames)-1]
	if last.From != layout.Star || last.To != layout.Circle {
		t.Errorf("wrap transition = %s -> %s, want star -> circle", last.From, last.To)
	}
}

func TestSequenceOrder(t *testing.T) {
	u := fixture(t, layout.Circle, layout.Sugiyama, layout.KK)

	anim, err := Sequence(u, DefaultOptions())
	if err != nil {
		t.Fatalf("Sequence: %v", err)
	}
	if want := []layout.Name{layout.Circle, layout.KK, layout.Sugiyama}; !slices.Equal(anim.Order, want) {
		t.Errorf("default order = %v, want %v", anim.Order, want)
	}

	opts := DefaultOptions()
	opts.Order = []layout.Name{layout.Sugiyama, layout.Circle}
	anim, err = Sequence(u, opts)
	if err != nil {
		t.Fatalf("Sequence: %v", err)
	}
	if anim.Frames[0].Title != layout.Sugiyama {
		t.Errorf("first frame = %s, want sugiyama", anim.Frames[0].Title)
	}

	for _, bad := range [][]layout.Name{{layout.Tree}, {layout.KK, layout.KK}} {
		opts.Order = bad
		if _, err := Sequence(u, opts); !gmerrors.Is(err, gmerrors.ErrCodeValidation) {
			t.Errorf("order %v err = %v, want validation error", bad, err)
		}
	}
}

func TestSequenceSingleLayout(t *testing.T) {
	u := fixture(t, layout.Tree)
	anim, err := Sequence(u, DefaultOptions())
	if err != nil {
		t.Fatalf("Sequence: %v", err)
	}
	if len(anim.Frames) != 10 {
		t.Errorf("got %d frames, want 10 hold frames", len(anim.Frames))
	}
	for _, f := range anim.Frames {
		if !f.Hold() {
			t.Fatal("single layout must only produce hold frames")
		}
	}
	if anim.Duration() != time.Second {
		t.Errorf("Duration() = %v, want 1s", anim.Duration())
	}
}

func TestSequenceRejects(t *testing.T) {
	u := fixture(t)
	if _, err := Sequence(nil, DefaultOptions()); err == nil {
		t.Error("nil table should fail")
	}
	for name, opts := range map[string]Options{
		"negative hold": {Hold: -time.Second},
		"fps too high":  {FPS: 500},
		"bad easing":    {Easing: "bounce"},
	} {
		if _, err := Sequence(u, opts); !gmerrors.Is(err, gmerrors.ErrCodeValidation) {
			t.Errorf("%s: err = %v", name, err)
		}
	}
}

func TestEasing(t *testing.T) {
	for _, e := range []Easing{EaseLinear, EaseCubicInOut} {
		if e.Apply(0) != 0 || e.Apply(1) != 1 {
			t.Errorf("%s does not map endpoints to themselves", e)
		}
		if math.Abs(e.Apply(0.5)-0.5) > 1e-12 {
			t.Errorf("%s(0.5) = %v", e, e.Apply(0.5))
		}
	}
	if EaseCubicInOut.Apply(0.25) >= 0.25 {
		t.Error("cubic-in-out should start slower than linear")
	}
	if e, err := ParseEasing(""); err != nil || e != EaseCubicInOut {
		t.Errorf("ParseEasing(\"\") = %v, %v", e, err)
	}
}
