package config

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	gmerrors "github.com/matzehuels/graphmorph/pkg/errors"
)

const tomlConfig = `
edges = "edges.csv"
output = "out/net"
layouts = ["circle", "kk"]
formats = ["gif"]
hold = "500ms"
transition = "1.5s"
fps = 12
no_wrap = true

[[modules]]
name = "ingest"
from = 1
to = 10

[[modules]]
name = "serve"
from = 11
to = 20
`

const yamlConfig = `
edges: edges.csv
nodes: /abs/nodes.csv
layouts: [circle, kk]
formats: [gif]
hold: 500ms
transition: 1.5s
fps: 12
no_wrap: true
modules:
  - {name: ingest, from: 1, to: 10}
  - {name: serve, from: 11, to: 20}
`

func TestDecode(t *testing.T) {
	tests := []struct {
		name   string
		src    string
		format Format
	}{
		{"toml", tomlConfig, FormatTOML},
		{"yaml", yamlConfig, FormatYAML},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, err := Decode(strings.NewReader(tt.src), tt.format)
			if err != nil {
				t.Fatalf("Decode: %v", err)
			}
			if f.Edges != "edges.csv" {
				t.Errorf("Edges = %q", f.Edges)
			}
			if len(f.Layouts) != 2 || f.Layouts[1] != "kk" {
				t.Errorf("Layouts = %v", f.Layouts)
			}
			if f.Hold == nil || f.Transition == nil ||
				time.Duration(*f.Hold) != 500*time.Millisecond || time.Duration(*f.Transition) != 1500*time.Millisecond {
				t.Fatalf("Hold/Transition = %v/%v", f.Hold, f.Transition)
			}
			if f.FPS != 12 || !f.NoWrap {
				t.Errorf("FPS = %d, NoWrap = %v", f.FPS, f.NoWrap)
			}
			if len(f.Modules) != 2 || f.Modules[1].Name != "serve" || f.Modules[1].From != 11 {
				t.Errorf("Modules = %+v", f.Modules)
			}
			if err := f.Options.ValidateAndSetDefaults(); err != nil {
				t.Errorf("decoded options should validate: %v", err)
			}
		})
	}
}

func TestDecodeRejectsUnknownKeys(t *testing.T) {
	if _, err := Decode(strings.NewReader("layuots = [\"kk\"]\n"), FormatTOML); err == nil {
		t.Error("misspelled TOML key should fail")
	}
	if _, err := Decode(strings.NewReader("layuots: [kk]\n"), FormatYAML); err == nil {
		t.Error("misspelled YAML key should fail")
	}
	if _, err := Decode(strings.NewReader("hold = \"soon\"\n"), FormatTOML); err == nil {
		t.Error("invalid duration should fail")
	}
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "graphmorph.yml")
	if err := os.WriteFile(path, []byte(yamlConfig), 0o644); err != nil {
		t.Fatal(err)
	}

	f, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if f.Edges != filepath.Join(dir, "edges.csv") {
		t.Errorf("relative path not resolved: %q", f.Edges)
	}
	if f.Nodes != "/abs/nodes.csv" {
		t.Errorf("absolute path changed: %q", f.Nodes)
	}
	if got := f.Inputs(); len(got) != 3 || got[0] != path {
		t.Errorf("Inputs = %v", got)
	}

	if _, err := Load(filepath.Join(dir, "missing.toml")); !gmerrors.Is(err, gmerrors.ErrCodeFileNotFound) {
		t.Errorf("missing file: err = %v", err)
	}
	if _, err := Load(filepath.Join(dir, "config.json")); !gmerrors.Is(err, gmerrors.ErrCodeInvalidFormat) {
		t.Errorf("json config: err = %v", err)
	}
}

func TestWatcher(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "edges.csv")
	if err := os.WriteFile(path, []byte("from,to\n1,2\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	w, err := NewWatcher(path)
	if err != nil {
		t.Fatalf("NewWatcher: %v", err)
	}
	w.Debounce = 20 * time.Millisecond

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	changed := make(chan string, 4)
	done := make(chan error, 1)
	go func() { done <- w.Watch(ctx, func(p string) { changed <- p }) }()

	// Writes to other files in the directory are ignored; give the watcher a
	// moment to register before touching files.
	time.Sleep(100 * time.Millisecond)
	if err := os.WriteFile(filepath.Join(dir, "other.csv"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte("from,to\n1,3\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	select {
	case got := <-changed:
		if filepath.Base(got) != "edges.csv" {
			t.Errorf("changed = %s, want edges.csv", got)
		}
	case <-ctx.Done():
		t.Fatal("no change reported")
	}

	cancel()
	if err := <-done; err != nil {
		t.Errorf("Watch returned %v", err)
	}
}

func TestNewWatcherRequiresFiles(t *testing.T) {
	if _, err := NewWatcher(); err == nil {
		t.Error("expected error for empty file list")
	}
}
