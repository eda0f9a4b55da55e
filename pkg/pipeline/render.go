package pipeline

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/matzehuels/graphmorph/pkg/frames"
	graphio "github.com/matzehuels/graphmorph/pkg/io"
	"github.com/matzehuels/graphmorph/pkg/observability"
	"github.com/matzehuels/graphmorph/pkg/render"
	"github.com/matzehuels/graphmorph/pkg/table"
)

// Sequence builds the animation and reports it to the pipeline hooks.
func Sequence(ctx context.Context, u *table.Unified, opts Options) (*frames.Animation, error) {
	fo, err := opts.FrameOptions()
	if err != nil {
		return nil, err
	}
	start := time.Now()
	anim, err := frames.Sequence(u, fo)
	count := 0
	if anim != nil {
		count = len(anim.Frames)
	}
	observability.Pipeline().OnSequenceComplete(ctx, count, time.Since(start), err)
	return anim, err
}

// Render generates artifacts for every requested format. The animation is
// only built when a gif is requested and is returned alongside.
func Render(ctx context.Context, u *table.Unified, opts Options) (map[string][]byte, *frames.Animation, error) {
	artifacts := make(map[string][]byte)
	palette := render.NewPalette(u.Modules())

	var (
		panels []frames.Panel
		svg    []byte
		anim   *frames.Animation
	)
	comparison := func() []byte {
		if svg == nil {
			panels = frames.Compare(u)
			svgOpts := []render.SVGOption{
				render.WithPanelSize(opts.PanelSize),
				render.WithColumns(opts.Columns),
				render.WithPalette(palette),
			}
			if opts.NodeRadius > 0 {
				svgOpts = append(svgOpts, render.WithNodeRadius(opts.NodeRadius))
			}
			if opts.PanelPadding > 0 {
				svgOpts = append(svgOpts, render.WithPanelPadding(opts.PanelPadding))
			}
			if opts.Labels {
				svgOpts = append(svgOpts, render.WithLabels())
			}
			svg = render.RenderSVG(panels, svgOpts...)
		}
		return svg
	}

	for _, format := range opts.Formats {
		if err := ctx.Err(); err != nil {
			return nil, nil, err
		}

		var data []byte
		var err error

		switch format {
		case FormatGIF:
			anim, err = Sequence(ctx, u, opts)
			if err != nil {
				return nil, nil, fmt.Errorf("sequence: %w", err)
			}
			data, err = render.RenderGIF(ctx, anim, render.GIFOptions{
				Width:   opts.Width,
				Height:  opts.Height,
				Palette: &palette,
			})
		case FormatSVG:
			data = comparison()
		case FormatPNG:
			data, err = render.ToPNG(ctx, comparison(), DefaultPNGScale)
		case FormatPDF:
			data, err = render.ToPDF(ctx, comparison())
		case FormatHTML:
			comparison()
			data, err = render.RenderHTML(panels, render.HTMLOptions{Title: opts.Title, Palette: &palette})
		case FormatJSON:
			var buf bytes.Buffer
			err = graphio.WriteJSON(u, &buf)
			data = buf.Bytes()
		case FormatCSV:
			var nodes, edges bytes.Buffer
			if err = graphio.WriteNodesCSV(u, &nodes); err == nil {
				err = graphio.WriteEdgesCSV(u, &edges)
			}
			if err != nil {
				return nil, nil, fmt.Errorf("render %s: %w", format, err)
			}
			artifacts["nodes.csv"] = nodes.Bytes()
			artifacts["edges.csv"] = edges.Bytes()
			continue
		default:
			return nil, nil, fmt.Errorf("unsupported format: %s", format)
		}

		if err != nil {
			return nil, nil, fmt.Errorf("render %s: %w", format, err)
		}
		artifacts[format] = data
	}

	return artifacts, anim, nil
}
