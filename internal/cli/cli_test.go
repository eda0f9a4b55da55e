package cli

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"
	"time"

	"github.com/spf13/cobra"

	"github.com/matzehuels/graphmorph/pkg/config"
	"github.com/matzehuels/graphmorph/pkg/layout"
	"github.com/matzehuels/graphmorph/pkg/network"
	"github.com/matzehuels/graphmorph/pkg/pipeline"
)

// testCLI returns a CLI whose layouts place nodes on a line, one row per
// layout, so commands run without Graphviz.
func testCLI(t *testing.T) *CLI {
	t.Helper()
	t.Setenv("XDG_CACHE_HOME", t.TempDir())

	reg := layout.NewRegistry()
	for k, name := range layout.DisplayOrder {
		reg.Register(layout.Func{LayoutName: name, Fn: func(_ context.Context, net *network.Network) (layout.Table, error) {
			tbl := layout.NewTable(name)
			for i, id := range net.NodeIDs() {
				tbl.Coords[id] = layout.Point{X: float64(i), Y: float64(k)}
			}
			return tbl, nil
		}})
	}
	c := New(io.Discard, LogInfo)
	c.registry = reg
	return c
}

func execute(t *testing.T, c *CLI, args ...string) (string, error) {
	t.Helper()
	root := c.RootCommand()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(io.Discard)
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestSplitList(t *testing.T) {
	got := splitList(" circle, ,kk,,tree ")
	want := []string{"circle", "kk", "tree"}
	if !slices.Equal(got, want) {
		t.Errorf("splitList = %v, want %v", got, want)
	}
	if splitList("") != nil {
		t.Error("splitList(\"\") should be nil")
	}
}

func TestCacheDir(t *testing.T) {
	t.Setenv("XDG_CACHE_HOME", "/tmp/xdg")
	dir, err := cacheDir()
	if err != nil {
		t.Fatal(err)
	}
	if dir != filepath.Join("/tmp/xdg", appName) {
		t.Errorf("cacheDir() = %q", dir)
	}

	t.Setenv("XDG_CACHE_HOME", "")
	dir, err = cacheDir()
	if err != nil {
		t.Fatal(err)
	}
	home, _ := os.UserHomeDir()
	if dir != filepath.Join(home, ".cache", appName) {
		t.Errorf("cacheDir() = %q, want under %s/.cache", dir, home)
	}
}

func TestRunWritesArtifacts(t *testing.T) {
	c := testCLI(t)
	dir := t.TempDir()
	edges := filepath.Join(dir, "edges.csv")
	writeFile(t, edges, "From,To\n1,2\n2,3\n")
	base := filepath.Join(dir, "out", "scenario")

	_, err := execute(t, c, "run", edges,
		"--layouts", "star,circle",
		"--format", "svg,csv",
		"--module", "core=1-2",
		"--output", base)
	if err != nil {
		t.Fatalf("run: %v", err)
	}

	for _, name := range []string{"svg", "nodes.csv", "edges.csv"} {
		if _, err := os.Stat(base + "." + name); err != nil {
			t.Errorf("missing artifact %s: %v", name, err)
		}
	}

	nodes, err := os.ReadFile(base + ".nodes.csv")
	if err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimSpace(string(nodes)), "\n")
	if len(lines) != 7 {
		t.Errorf("nodes.csv has %d lines, want header + 6 rows", len(lines))
	}
	if !strings.Contains(string(nodes), "unassigned") || !strings.Contains(string(nodes), "core") {
		t.Errorf("nodes.csv missing module labels:\n%s", nodes)
	}
}

func TestRunConfigWithFlagOverride(t *testing.T) {
	c := testCLI(t)
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "edges.csv"), "from,to\n1,2\n2,3\n3,1\n")
	cfg := filepath.Join(dir, "graphmorph.toml")
	writeFile(t, cfg, `
edges = "edges.csv"
output = "result"
layouts = ["kk", "tree"]
formats = ["json"]
`)

	if _, err := execute(t, c, "run", "--config", cfg, "--layouts", "circle", "--no-cache"); err != nil {
		t.Fatalf("run: %v", err)
	}
	data, err := os.ReadFile(filepath.Join(dir, "result.json"))
	if err != nil {
		t.Fatalf("config output path not used: %v", err)
	}
	if !strings.Contains(string(data), `"circle"`) || strings.Contains(string(data), `"kk"`) {
		t.Errorf("--layouts should override the config layouts:\n%s", data)
	}
}

func TestRunErrors(t *testing.T) {
	c := testCLI(t)
	dir := t.TempDir()
	edges := filepath.Join(dir, "edges.csv")
	writeFile(t, edges, "from,to\n1,2\n")

	tests := []struct {
		name string
		args []string
	}{
		{"no input", []string{"run"}},
		{"unknown layout", []string{"run", edges, "--layouts", "spiral"}},
		{"bad module", []string{"run", edges, "--module", "core"}},
		{"bad format", []string{"run", edges, "--format", "bmp"}},
		{"missing file", []string{"run", filepath.Join(dir, "nope.csv")}},
		{"missing config", []string{"run", "--config", filepath.Join(dir, "nope.toml")}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := execute(t, c, append(tt.args, "--no-cache")...); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestWriteArtifacts(t *testing.T) {
	base := filepath.Join(t.TempDir(), "nested", "x")
	paths, err := writeArtifacts(base, map[string][]byte{"svg": []byte("<svg/>"), "edges.csv": []byte("a")})
	if err != nil {
		t.Fatal(err)
	}
	want := []string{base + ".edges.csv", base + ".svg"}
	if !slices.Equal(paths, want) {
		t.Errorf("paths = %v, want %v", paths, want)
	}
}

func TestSampleCommand(t *testing.T) {
	c := testCLI(t)

	out, err := execute(t, c, "sample")
	if err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimSpace(out), "\n")
	if lines[0] != "from,to" || len(lines) != len(network.SampleEdges())+1 {
		t.Errorf("sample CSV has %d lines, header %q", len(lines), lines[0])
	}

	dir := t.TempDir()
	if _, err := execute(t, c, "sample", "--dir", dir); err != nil {
		t.Fatal(err)
	}
	cfg, err := config.Load(filepath.Join(dir, "graphmorph.toml"))
	if err != nil {
		t.Fatalf("sample config does not load: %v", err)
	}
	if len(cfg.Modules) != len(network.SamplePartition) || cfg.Edges != filepath.Join(dir, "edges.csv") {
		t.Errorf("sample config = %+v", cfg)
	}

	if _, err := execute(t, c, "run", "--config", cfg.Path, "--format", "csv", "--no-cache"); err != nil {
		t.Fatalf("run on sample: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "sample.nodes.csv")); err != nil {
		t.Errorf("sample run output missing: %v", err)
	}
}

func TestLayoutsCommand(t *testing.T) {
	out, err := execute(t, New(io.Discard, LogInfo), "layouts")
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{"circle", "sugiyama", "graphviz neato", "built-in tidy tree", "built-in isomap"} {
		if !strings.Contains(out, want) {
			t.Errorf("layouts output missing %q:\n%s", want, out)
		}
	}
}

func TestCachePathAndClear(t *testing.T) {
	c := testCLI(t)
	out, err := execute(t, c, "cache", "path")
	if err != nil {
		t.Fatal(err)
	}
	dir := strings.TrimSpace(out)
	if filepath.Base(dir) != appName {
		t.Errorf("cache path = %q", dir)
	}

	if _, err := execute(t, c, "cache", "clear"); err != nil {
		t.Errorf("clear on missing dir: %v", err)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatal(err)
	}
	writeFile(t, filepath.Join(dir, "entry.json"), "{}")
	if _, err := execute(t, c, "cache", "clear"); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(filepath.Join(dir, "entry.json")); !os.IsNotExist(err) {
		t.Error("cache clear left entries behind")
	}
}

func TestCompletionCommand(t *testing.T) {
	out, err := execute(t, New(io.Discard, LogInfo), "completion", "bash")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, appName) {
		t.Error("bash completion does not mention the command")
	}
	if _, err := execute(t, New(io.Discard, LogInfo), "completion", "tcsh"); err == nil {
		t.Error("unsupported shell should fail")
	}
}

func waitFor(t *testing.T, path string) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		if _, err := os.Stat(path); err == nil {
			return
		}
		time.Sleep(20 * time.Millisecond)
	}
	t.Fatalf("%s was not written", path)
}

func TestRunWatchRerunsOnChange(t *testing.T) {
	c := testCLI(t)
	dir := t.TempDir()
	edges := filepath.Join(dir, "edges.csv")
	writeFile(t, edges, "from,to\n1,2\n")
	out := filepath.Join(dir, "edges.nodes.csv")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	root := c.RootCommand()
	root.SetArgs([]string{"run", edges, "--watch", "--format", "csv", "--layouts", "circle", "--no-cache"})
	done := make(chan error, 1)
	go func() { done <- root.ExecuteContext(ctx) }()

	waitFor(t, out)
	if err := os.Remove(out); err != nil {
		t.Fatal(err)
	}
	time.Sleep(100 * time.Millisecond)
	writeFile(t, edges, "from,to\n1,2\n2,3\n")
	waitFor(t, out)

	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), ",3,") {
		t.Errorf("re-run did not pick up the new node:\n%s", data)
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("watch returned %v after cancel", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("watch did not stop after cancel")
	}
}

func TestApplyFlagsExplicitZeroTransition(t *testing.T) {
	var f runFlags
	cmd := &cobra.Command{}
	cmd.Flags().DurationVar(&f.transition, "transition", 0, "")
	cmd.Flags().DurationVar(&f.hold, "hold", 0, "")
	if err := cmd.Flags().Parse([]string{"--transition", "0"}); err != nil {
		t.Fatal(err)
	}

	var opts pipeline.Options
	if err := applyFlags(cmd, &f, &opts); err != nil {
		t.Fatal(err)
	}
	if opts.Transition == nil || *opts.Transition != 0 {
		t.Errorf("Transition = %v, want an explicit 0s", opts.Transition)
	}
	if opts.Hold != nil {
		t.Errorf("Hold = %v, an unset flag should stay unset", opts.Hold)
	}
}
