package pipeline

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"image/gif"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/matzehuels/graphmorph/pkg/cache"
	gmerrors "github.com/matzehuels/graphmorph/pkg/errors"
	"github.com/matzehuels/graphmorph/pkg/frames"
	graphio "github.com/matzehuels/graphmorph/pkg/io"
	"github.com/matzehuels/graphmorph/pkg/layout"
	"github.com/matzehuels/graphmorph/pkg/network"
)

func TestValidateFormat(t *testing.T) {
	tests := []struct {
		format  string
		wantErr bool
	}{
		{"gif", false},
		{"svg", false},
		{"png", false},
		{"pdf", false},
		{"html", false},
		{"json", false},
		{"csv", false},
		{"invalid", true},
		{"GIF", true}, // case-sensitive
		{"", true},
	}

	for _, tt := range tests {
		err := ValidateFormat(tt.format)
		if (err != nil) != tt.wantErr {
			t.Errorf("ValidateFormat(%q) error = %v, wantErr %v", tt.format, err, tt.wantErr)
		}
	}
}

func TestValidateFormats(t *testing.T) {
	if err := ValidateFormats([]string{"gif", "svg"}); err != nil {
		t.Errorf("Valid formats should pass: %v", err)
	}
	if err := ValidateFormats([]string{"svg", "invalid"}); err == nil {
		t.Error("Invalid format should fail")
	}
	if err := ValidateFormats(nil); err != nil {
		t.Errorf("Empty formats should pass: %v", err)
	}
}

func TestArtifactNames(t *testing.T) {
	if got := ArtifactNames(FormatCSV); len(got) != 2 || got[0] != "nodes.csv" || got[1] != "edges.csv" {
		t.Errorf("ArtifactNames(csv) = %v", got)
	}
	if got := ArtifactNames(FormatGIF); len(got) != 1 || got[0] != "gif" {
		t.Errorf("ArtifactNames(gif) = %v", got)
	}
}

func TestOptionsDefaults(t *testing.T) {
	opts := Options{}
	if err := opts.ValidateAndSetDefaults(); err != nil {
		t.Fatalf("empty options should validate: %v", err)
	}

	if len(opts.Layouts) != len(layout.DisplayOrder) {
		t.Errorf("Layouts = %v, want every layout", opts.Layouts)
	}
	if opts.Seed != DefaultSeed {
		t.Errorf("Seed = %d, want %d", opts.Seed, DefaultSeed)
	}
	if opts.Hold == nil || opts.Transition == nil ||
		time.Duration(*opts.Hold) != frames.DefaultHold || time.Duration(*opts.Transition) != frames.DefaultTransition {
		t.Errorf("Hold/Transition = %v/%v", opts.Hold, opts.Transition)
	}
	if opts.FPS != frames.DefaultFPS || opts.Width != DefaultWidth || opts.Height != DefaultHeight {
		t.Errorf("FPS/Width/Height = %d/%d/%d", opts.FPS, opts.Width, opts.Height)
	}
	if len(opts.Formats) != 2 || opts.Formats[0] != FormatGIF {
		t.Errorf("Formats = %v, want %v", opts.Formats, DefaultFormats)
	}

	// Idempotent
	before := opts
	opts.SetDefaults()
	if opts.Seed != before.Seed || len(opts.Layouts) != len(before.Layouts) || opts.Easing != before.Easing {
		t.Error("SetDefaults changed already-set fields")
	}
}

func TestOptionsValidate(t *testing.T) {
	tests := []struct {
		name string
		opts Options
	}{
		{"unknown layout", Options{Layouts: []string{"circle", "spiral"}}},
		{"duplicate layout", Options{Layouts: []string{"kk", "KK"}}},
		{"unknown order entry", Options{Order: []string{"spiral"}}},
		{"bad easing", Options{Easing: "bounce"}},
		{"bad fps", Options{FPS: 500}},
		{"bad format", Options{Formats: []string{"bmp"}}},
		{"negative size", Options{Width: -1}},
		{"negative node radius", Options{NodeRadius: -2}},
		{"padding too large", Options{PanelPadding: 0.5}},
		{"overlapping modules", Options{Modules: network.Partition{{Name: "a", From: 1, To: 5}, {Name: "b", From: 5, To: 9}}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := tt.opts
			if err := opts.ValidateAndSetDefaults(); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}

func TestFrameOptions(t *testing.T) {
	opts := Options{Order: []string{"star", "circle"}, NoWrap: true, Easing: "linear"}
	opts.SetDefaults()
	fo, err := opts.FrameOptions()
	if err != nil {
		t.Fatalf("FrameOptions: %v", err)
	}
	if fo.Wrap {
		t.Error("NoWrap should disable wrapping")
	}
	if fo.Easing != frames.EaseLinear {
		t.Errorf("Easing = %s", fo.Easing)
	}
	if len(fo.Order) != 2 || fo.Order[0] != layout.Star {
		t.Errorf("Order = %v", fo.Order)
	}
}

func TestDurationText(t *testing.T) {
	var d Duration
	if err := json.Unmarshal([]byte(`"1.5s"`), &d); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if time.Duration(d) != 1500*time.Millisecond {
		t.Errorf("d = %v", time.Duration(d))
	}
	out, _ := json.Marshal(d)
	if string(out) != `"1.5s"` {
		t.Errorf("marshal = %s", out)
	}
	if err := json.Unmarshal([]byte(`"soon"`), &d); err == nil {
		t.Error("invalid duration should fail")
	}
}

func TestOptionsZeroTransitionIsACut(t *testing.T) {
	opts := Options{Layouts: []string{"circle", "star"}, Transition: NewDuration(0), NoWrap: true}
	if err := opts.ValidateAndSetDefaults(); err != nil {
		t.Fatalf("ValidateAndSetDefaults: %v", err)
	}
	if time.Duration(*opts.Transition) != 0 {
		t.Errorf("Transition = %v, an explicit zero must survive defaulting", opts.Transition)
	}
	fo, err := opts.FrameOptions()
	if err != nil {
		t.Fatalf("FrameOptions: %v", err)
	}
	if fo.Transition != 0 || fo.Hold != frames.DefaultHold {
		t.Errorf("frame options hold/transition = %v/%v", fo.Hold, fo.Transition)
	}
	if got, want := fo.FrameCount(2), 2*frames.DefaultFPS; got != want {
		t.Errorf("FrameCount(2) = %d, want %d hold frames only", got, want)
	}
}

func TestArtifactKeyOptsDiffer(t *testing.T) {
	a := Options{}
	a.SetDefaults()
	b := a
	b.FPS = 20

	keyer := cache.NewDefaultKeyer()
	if keyer.ArtifactKey("h", a.ArtifactKeyOpts("gif")) == keyer.ArtifactKey("h", b.ArtifactKeyOpts("gif")) {
		t.Error("gif key should depend on fps")
	}
	if keyer.ArtifactKey("h", a.ArtifactKeyOpts("json")) != keyer.ArtifactKey("h", b.ArtifactKeyOpts("json")) {
		t.Error("json key should not depend on animation settings")
	}

	c := a
	c.NodeRadius = 6
	if keyer.ArtifactKey("h", a.ArtifactKeyOpts("svg")) == keyer.ArtifactKey("h", c.ArtifactKeyOpts("svg")) {
		t.Error("svg key should depend on node radius")
	}
}

// =============================================================================
// Runner
// =============================================================================

// fakeRegistry places nodes on a line whose spacing differs per layout.
func fakeRegistry(calls *atomic.Int32) *layout.Registry {
	reg := layout.NewRegistry()
	for k, name := range layout.DisplayOrder {
		reg.Register(layout.Func{LayoutName: name, Fn: func(ctx context.Context, net *network.Network) (layout.Table, error) {
			calls.Add(1)
			t := layout.NewTable(name)
			for i, id := range net.NodeIDs() {
				t.Coords[id] = layout.Point{X: float64(i * (k + 1)), Y: float64(i % 2)}
			}
			return t, nil
		}})
	}
	return reg
}

func scenarioInput() *graphio.Input {
	return &graphio.Input{Edges: []network.EdgeRecord{{From: "1", To: "2"}, {From: "2", To: "3"}}}
}

func TestRunnerExecute(t *testing.T) {
	var calls atomic.Int32
	r := NewRunner(nil, nil, nil)
	r.Registry = fakeRegistry(&calls)

	var events atomic.Int32
	r.Notify = func(layout.Event) { events.Add(1) }

	res, err := r.Execute(context.Background(), scenarioInput(), Options{
		Layouts: []string{"star", "circle"},
		Formats: []string{FormatGIF, FormatSVG, FormatJSON, FormatCSV},
		Modules: network.Partition{{Name: "core", From: 1, To: 2}},
		FPS:     2,
	})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}

	if res.RunID == "" {
		t.Error("missing run id")
	}
	if len(res.Tables.Nodes) != 6 || len(res.Tables.Edges) != 4 {
		t.Errorf("got %d node rows and %d edge rows, want 6 and 4", len(res.Tables.Nodes), len(res.Tables.Edges))
	}
	if res.Tables.Layouts[0] != layout.Circle {
		t.Errorf("levels = %v, want display order", res.Tables.Layouts)
	}
	if calls.Load() != 2 || events.Load() != 4 {
		t.Errorf("calls = %d, events = %d, want 2 and 4", calls.Load(), events.Load())
	}

	for _, name := range []string{"gif", "svg", "json", "nodes.csv", "edges.csv"} {
		if len(res.Artifacts[name]) == 0 {
			t.Errorf("artifact %s missing", name)
		}
	}
	g, err := gif.DecodeAll(bytes.NewReader(res.Artifacts["gif"]))
	if err != nil {
		t.Fatalf("decode gif: %v", err)
	}
	if len(g.Image) != res.Stats.FrameCount || res.Stats.FrameCount != len(res.Animation.Frames) {
		t.Errorf("gif has %d frames, stats say %d", len(g.Image), res.Stats.FrameCount)
	}
	if !strings.Contains(string(res.Artifacts["nodes.csv"]), "unassigned") {
		t.Error("node 3 should be labelled unassigned")
	}

	if res.Stats.NodeCount != 3 || res.Stats.EdgeCount != 2 || res.Stats.LayoutCount != 2 {
		t.Errorf("stats = %+v", res.Stats)
	}
}

func TestRunnerExecuteNodeStyle(t *testing.T) {
	var calls atomic.Int32
	r := NewRunner(nil, nil, nil)
	r.Registry = fakeRegistry(&calls)

	res, err := r.Execute(context.Background(), scenarioInput(), Options{
		Layouts:      []string{"circle"},
		Formats:      []string{FormatSVG},
		NodeRadius:   6,
		PanelPadding: 0.2,
	})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	svg := string(res.Artifacts["svg"])
	if got := strings.Count(svg, `r="6.0"`); got != 3 {
		t.Errorf("found %d circles of radius 6, want 3", got)
	}
}

func TestRunnerExecuteErrors(t *testing.T) {
	var calls atomic.Int32
	r := NewRunner(nil, nil, nil)
	r.Registry = fakeRegistry(&calls)
	ctx := context.Background()

	_, err := r.Execute(ctx, &graphio.Input{
		Edges: []network.EdgeRecord{{From: "1", To: "9"}},
		Nodes: []network.NodeRecord{{ID: "1"}},
	}, Options{Layouts: []string{"circle"}})
	var verr *gmerrors.ValidationError
	if !errors.As(err, &verr) {
		t.Errorf("unknown node: err = %v, want ValidationError", err)
	}
	if err == nil || !strings.HasPrefix(err.Error(), "build: ") {
		t.Errorf("stage should be named: %v", err)
	}

	_, err = r.Execute(ctx, scenarioInput(), Options{Layouts: []string{"spiral"}})
	if !gmerrors.Is(err, gmerrors.ErrCodeUnsupportedLayout) {
		t.Errorf("unknown layout: err = %v", err)
	}

	broken := layout.NewRegistry(layout.Func{LayoutName: layout.KK, Fn: func(ctx context.Context, net *network.Network) (layout.Table, error) {
		t := layout.NewTable(layout.KK)
		t.Coords["1"] = layout.Point{}
		return t, nil
	}})
	r.Registry = broken
	_, err = r.Execute(ctx, scenarioInput(), Options{Layouts: []string{"kk"}, Formats: []string{FormatJSON}})
	if !gmerrors.Is(err, gmerrors.ErrCodeMissingCoordinate) {
		t.Errorf("incomplete layout: err = %v", err)
	}
}

func TestRunnerCache(t *testing.T) {
	c, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileCache: %v", err)
	}
	var calls atomic.Int32
	r := NewRunner(c, nil, nil)
	r.Registry = fakeRegistry(&calls)
	opts := Options{Layouts: []string{"circle", "kk"}, Formats: []string{FormatSVG, FormatJSON}}

	first, err := r.Execute(context.Background(), scenarioInput(), opts)
	if err != nil {
		t.Fatalf("first Execute: %v", err)
	}
	second, err := r.Execute(context.Background(), scenarioInput(), opts)
	if err != nil {
		t.Fatalf("second Execute: %v", err)
	}

	if calls.Load() != 2 {
		t.Errorf("layouts computed %d times, want 2", calls.Load())
	}
	if second.CacheInfo.LayoutHits != 2 || !second.CacheInfo.RenderHit {
		t.Errorf("cache info = %+v", second.CacheInfo)
	}
	if !bytes.Equal(first.Artifacts["svg"], second.Artifacts["svg"]) {
		t.Error("cached svg differs")
	}
	if first.RunID == second.RunID {
		t.Error("every run needs its own id")
	}

	opts.Refresh = true
	third, err := r.Execute(context.Background(), scenarioInput(), opts)
	if err != nil {
		t.Fatalf("refresh Execute: %v", err)
	}
	if calls.Load() != 4 || third.CacheInfo.RenderHit {
		t.Errorf("refresh should bypass the cache: calls = %d, info = %+v", calls.Load(), third.CacheInfo)
	}
}

func TestResultJSON(t *testing.T) {
	var calls atomic.Int32
	r := NewRunner(nil, nil, nil)
	r.Registry = fakeRegistry(&calls)
	res, err := r.Execute(context.Background(), scenarioInput(), Options{
		Layouts: []string{"tree"},
		Formats: []string{FormatCSV},
	})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}

	data, err := json.Marshal(res)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	var got struct {
		RunID     string   `json:"run_id"`
		Layouts   []string `json:"layouts"`
		Artifacts []string `json:"artifacts"`
		Tables    struct {
			Edges []struct {
				EdgeID string `json:"edge_id"`
			} `json:"edges"`
		} `json:"tables"`
	}
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if got.RunID != res.RunID || len(got.Layouts) != 1 || got.Layouts[0] != "tree" {
		t.Errorf("summary = %+v", got)
	}
	if len(got.Artifacts) != 2 || got.Artifacts[0] != "edges.csv" {
		t.Errorf("artifacts = %v", got.Artifacts)
	}
	if len(got.Tables.Edges) != 2 || got.Tables.Edges[0].EdgeID != "1-2" {
		t.Errorf("edges = %+v", got.Tables.Edges)
	}
}
