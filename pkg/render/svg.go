package render

import (
	"bytes"
	"fmt"
	"html"
	"math"

	"github.com/matzehuels/graphmorph/pkg/frames"
)

// Defaults for the comparison grid.
const (
	DefaultPanelSize  = 320.0
	DefaultNodeRadius = 4.0
	DefaultPadding    = 0.05

	panelTitleHeight = 28.0
	panelGap         = 12.0
)

// SVGOption configures [RenderSVG].
type SVGOption func(*svgRenderer)

type svgRenderer struct {
	panelSize  float64
	columns    int
	nodeRadius float64
	padding    float64
	labels     bool
	palette    *Palette
}

func WithPanelSize(px float64) SVGOption   { return func(r *svgRenderer) { r.panelSize = px } }
func WithColumns(n int) SVGOption          { return func(r *svgRenderer) { r.columns = n } }
func WithNodeRadius(px float64) SVGOption  { return func(r *svgRenderer) { r.nodeRadius = px } }
func WithLabels() SVGOption                { return func(r *svgRenderer) { r.labels = true } }
func WithPalette(p Palette) SVGOption      { return func(r *svgRenderer) { r.palette = &p } }
func WithPanelPadding(f float64) SVGOption { return func(r *svgRenderer) { r.padding = f } }

// RenderSVG draws one panel per layout in a grid. Panels are scaled
// independently; node fill encodes the module.
func RenderSVG(panels []frames.Panel, opts ...SVGOption) []byte {
	r := &svgRenderer{
		panelSize:  DefaultPanelSize,
		nodeRadius: DefaultNodeRadius,
		padding:    DefaultPadding,
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.palette == nil {
		p := NewPalette(panelModules(panels))
		r.palette = &p
	}

	cols := r.columns
	if cols <= 0 {
		cols = int(math.Ceil(math.Sqrt(float64(len(panels)))))
	}
	cols = max(1, min(cols, len(panels)))
	rows := (len(panels) + cols - 1) / cols

	cellW := r.panelSize
	cellH := r.panelSize + panelTitleHeight
	width := float64(cols)*cellW + float64(cols+1)*panelGap
	height := float64(rows)*cellH + float64(rows+1)*panelGap

	var buf bytes.Buffer
	fmt.Fprintf(&buf, `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.1f %.1f" width="%.0f" height="%.0f">`+"\n",
		width, height, width, height)
	fmt.Fprintf(&buf, `  <rect width="100%%" height="100%%" fill="white"/>`+"\n")

	for i, p := range panels {
		x := panelGap + float64(i%cols)*(cellW+panelGap)
		y := panelGap + float64(i/cols)*(cellH+panelGap)
		r.panel(&buf, p, x, y)
	}

	buf.WriteString("</svg>\n")
	return buf.Bytes()
}

func (r *svgRenderer) panel(buf *bytes.Buffer, p frames.Panel, x, y float64) {
	fmt.Fprintf(buf, `  <g class="panel" id="panel-%s">`+"\n", html.EscapeString(string(p.Layout)))
	fmt.Fprintf(buf, `    <rect x="%.1f" y="%.1f" width="%.1f" height="%.1f" fill="#f7f7f7" stroke="#dddddd"/>`+"\n",
		x, y, r.panelSize, r.panelSize+panelTitleHeight)
	fmt.Fprintf(buf, `    <text x="%.1f" y="%.1f" font-family="sans-serif" font-size="14" text-anchor="middle">%s</text>`+"\n",
		x+r.panelSize/2, y+panelTitleHeight-9, html.EscapeString(string(p.Layout)))

	inset := r.nodeRadius * 2
	vp := fit(p.Extent.Pad(r.padding), x+inset, y+panelTitleHeight+inset, r.panelSize-2*inset, r.panelSize-2*inset)

	for _, e := range p.Edges {
		x1, y1 := vp.apply(e.X, e.Y)
		x2, y2 := vp.apply(e.XEnd, e.YEnd)
		fmt.Fprintf(buf, `    <line x1="%.2f" y1="%.2f" x2="%.2f" y2="%.2f" stroke="#888888" stroke-width="1" data-edge="%s"/>`+"\n",
			x1, y1, x2, y2, html.EscapeString(e.EdgeID))
	}
	for _, n := range p.Nodes {
		cx, cy := vp.apply(n.X, n.Y)
		fmt.Fprintf(buf, `    <circle cx="%.2f" cy="%.2f" r="%.1f" fill="%s" stroke="#333333" stroke-width="0.5" data-node="%s" data-module="%s"/>`+"\n",
			cx, cy, r.nodeRadius, r.palette.Hex(n.Module), html.EscapeString(n.Name), html.EscapeString(n.Module))
		if r.labels {
			fmt.Fprintf(buf, `    <text x="%.2f" y="%.2f" font-family="sans-serif" font-size="8" text-anchor="middle">%s</text>`+"\n",
				cx, cy-r.nodeRadius-2, html.EscapeString(n.Name))
		}
	}
	buf.WriteString("  </g>\n")
}

func panelModules(panels []frames.Panel) []string {
	seen := make(map[string]bool)
	var out []string
	for _, p := range panels {
		for _, n := range p.Nodes {
			if !seen[n.Module] {
				seen[n.Module] = true
				out = append(out, n.Module)
			}
		}
	}
	return out
}
