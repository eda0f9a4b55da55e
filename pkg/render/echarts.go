package render

import (
	"bytes"
	"fmt"
	"slices"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/matzehuels/graphmorph/pkg/frames"
)

// HTMLOptions configures [RenderHTML].
type HTMLOptions struct {
	Title   string
	Palette *Palette
}

// RenderHTML builds an interactive page with one fixed-position graph chart
// per panel. Charts can be zoomed and panned independently.
func RenderHTML(panels []frames.Panel, o HTMLOptions) ([]byte, error) {
	modules := panelModules(panels)
	if o.Palette == nil {
		p := NewPalette(modules)
		o.Palette = &p
	}
	if o.Title == "" {
		o.Title = "graphmorph"
	}

	page := components.NewPage()
	page.SetLayout(components.PageFlexLayout)
	for _, p := range panels {
		page.AddCharts(panelChart(p, modules, o))
	}

	var buf bytes.Buffer
	if err := page.Render(&buf); err != nil {
		return nil, fmt.Errorf("html: %w", err)
	}
	return buf.Bytes(), nil
}

func panelChart(p frames.Panel, modules []string, o HTMLOptions) *charts.Graph {
	categories := make([]*opts.GraphCategory, len(modules))
	for i, m := range modules {
		categories[i] = &opts.GraphCategory{Name: m}
	}

	nodes := make([]opts.GraphNode, len(p.Nodes))
	for i, n := range p.Nodes {
		nodes[i] = opts.GraphNode{
			Name:       n.Name,
			X:          float32(n.X),
			Y:          float32(-n.Y), // screen y grows downwards
			Category:   slices.Index(modules, n.Module),
			SymbolSize: 10,
			ItemStyle:  &opts.ItemStyle{Color: o.Palette.Hex(n.Module)},
		}
	}

	names := make(map[string]bool, len(p.Nodes))
	for _, n := range p.Nodes {
		names[n.Name] = true
	}
	links := make([]opts.GraphLink, 0, len(p.Edges))
	for _, e := range p.Edges {
		from, to, ok := endpoints(names, e.EdgeID)
		if !ok {
			continue
		}
		links = append(links, opts.GraphLink{Source: from, Target: to})
	}

	graph := charts.NewGraph()
	graph.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{
			PageTitle: o.Title,
			Width:     "420px",
			Height:    "420px",
		}),
		charts.WithTitleOpts(opts.Title{Title: string(p.Layout)}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(false)}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
	)
	graph.AddSeries(
		string(p.Layout),
		nodes,
		links,
		charts.WithGraphChartOpts(opts.GraphChart{
			Layout:     "none",
			Roam:       opts.Bool(true),
			Categories: categories,
		}),
		charts.WithLabelOpts(opts.Label{Show: opts.Bool(false)}),
	)
	return graph
}

// endpoints recovers the node names of an edge row. Node names may contain
// dashes, so the split point is the first one where both halves are nodes.
func endpoints(names map[string]bool, edgeID string) (string, string, bool) {
	for i := 0; i < len(edgeID); i++ {
		if edgeID[i] != '-' {
			continue
		}
		from, to := edgeID[:i], edgeID[i+1:]
		if names[from] && names[to] {
			return from, to, true
		}
	}
	return "", "", false
}
