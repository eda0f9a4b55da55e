package layout

import (
	"bytes"
	"context"
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/graphmorph/pkg/network"
)

// pointsPerInch converts Graphviz plain output (inches) to points.
const pointsPerInch = 72

// Engine is an [Algorithm] backed by a Graphviz layout program.
type Engine struct {
	LayoutName Name
	Program    graphviz.Layout

	// Attrs are graph attributes added to the generated DOT source.
	Attrs map[string]string

	// RootAtHub sets the "root" attribute to the highest-degree node.
	RootAtHub bool
}

// Name returns the layout name.
func (e *Engine) Name() Name { return e.LayoutName }

// Compute runs the Graphviz program and reads node centres from its plain output.
func (e *Engine) Compute(ctx context.Context, net *network.Network) (Table, error) {
	attrs := maps.Clone(e.Attrs)
	if attrs == nil {
		attrs = make(map[string]string)
	}
	if e.RootAtHub {
		attrs["root"] = net.Hub()
	}

	out, err := RenderPlain(ctx, e.Program, ToDOT(net, attrs))
	if err != nil {
		return Table{}, fmt.Errorf("%s: %w", e.LayoutName, err)
	}
	plain, err := ParsePlain(out)
	if err != nil {
		return Table{}, fmt.Errorf("%s: %w", e.LayoutName, err)
	}

	t := NewTable(e.LayoutName)
	for _, n := range plain.Nodes {
		t.Coords[n.Name] = Point{X: n.X * pointsPerInch, Y: n.Y * pointsPerInch}
	}
	return t, nil
}

// ToDOT converts a network to undirected Graphviz DOT source. Nodes are drawn
// as points so that node size does not influence spacing.
func ToDOT(net *network.Network, attrs map[string]string) string {
	var buf bytes.Buffer
	buf.WriteString("graph G {\n")
	if len(attrs) > 0 {
		parts := make([]string, 0, len(attrs))
		for _, k := range slices.Sorted(maps.Keys(attrs)) {
			parts = append(parts, fmt.Sprintf("%s=%q", k, attrs[k]))
		}
		fmt.Fprintf(&buf, "  graph [%s];\n", strings.Join(parts, ", "))
	}
	buf.WriteString("  node [shape=point, width=0.08];\n")
	buf.WriteString("  edge [len=1.0];\n")
	buf.WriteString("\n")

	for _, id := range net.NodeIDs() {
		fmt.Fprintf(&buf, "  %q;\n", id)
	}

	buf.WriteString("\n")
	for _, e := range net.Edges() {
		fmt.Fprintf(&buf, "  %q -- %q;\n", e.From, e.To)
	}

	buf.WriteString("}\n")
	return buf.String()
}

// RenderPlain lays out DOT source with the given program and returns the
// "plain" output. Every call owns its own Graphviz instance.
func RenderPlain(ctx context.Context, program graphviz.Layout, dot string) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()
	gv.SetLayout(program)

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.Format("plain"), &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return buf.Bytes(), nil
}
