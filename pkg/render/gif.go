package render

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/color"
	"image/color/palette"
	"image/draw"
	"image/gif"

	"github.com/fogleman/gg"

	"github.com/matzehuels/graphmorph/pkg/frames"
	"github.com/matzehuels/graphmorph/pkg/network"
)

// Default GIF size. The aspect ratio is fixed for every frame.
const (
	DefaultGIFWidth  = 800
	DefaultGIFHeight = 600
)

const gifTitleHeight = 36.0

// GIFOptions configures [RenderGIF].
type GIFOptions struct {
	Width      int
	Height     int
	NodeRadius float64
	Palette    *Palette
}

func (o *GIFOptions) setDefaults(anim *frames.Animation) {
	if o.Width <= 0 {
		o.Width = DefaultGIFWidth
	}
	if o.Height <= 0 {
		o.Height = DefaultGIFHeight
	}
	if o.NodeRadius <= 0 {
		o.NodeRadius = DefaultNodeRadius + 1
	}
	if o.Palette == nil {
		p := NewPalette(anim.Modules)
		o.Palette = &p
	}
}

// RenderGIF rasterises every frame and encodes a looping GIF. Each frame is
// titled with the layout closest to it on the timeline.
func RenderGIF(ctx context.Context, anim *frames.Animation, opts GIFOptions) ([]byte, error) {
	if anim == nil || len(anim.Frames) == 0 {
		return nil, fmt.Errorf("gif: animation has no frames")
	}
	opts.setDefaults(anim)

	pal := gifPalette(opts.Palette, anim.Modules)
	delay := max(1, 100/anim.FPS)
	out := &gif.GIF{LoopCount: 0}

	dc := gg.NewContext(opts.Width, opts.Height)
	for _, f := range anim.Frames {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		drawFrame(dc, f, opts)

		img := dc.Image()
		paletted := image.NewPaletted(img.Bounds(), pal)
		draw.Draw(paletted, img.Bounds(), img, image.Point{}, draw.Src)
		out.Image = append(out.Image, paletted)
		out.Delay = append(out.Delay, delay)
	}

	var buf bytes.Buffer
	if err := gif.EncodeAll(&buf, out); err != nil {
		return nil, fmt.Errorf("gif: %w", err)
	}
	return buf.Bytes(), nil
}

func drawFrame(dc *gg.Context, f frames.Frame, opts GIFOptions) {
	w, h := float64(opts.Width), float64(opts.Height)
	dc.SetColor(color.White)
	dc.Clear()

	dc.SetColor(color.Black)
	dc.DrawStringAnchored(string(f.Title), w/2, gifTitleHeight/2, 0.5, 0.5)

	inset := opts.NodeRadius * 2
	vp := fit(f.Viewport, inset, gifTitleHeight+inset, w-2*inset, h-gifTitleHeight-2*inset)

	dc.SetRGB(0.55, 0.55, 0.55)
	dc.SetLineWidth(1)
	for _, e := range f.Edges {
		x1, y1 := vp.apply(e.X, e.Y)
		x2, y2 := vp.apply(e.XEnd, e.YEnd)
		dc.DrawLine(x1, y1, x2, y2)
	}
	dc.Stroke()

	for _, n := range f.Nodes {
		x, y := vp.apply(n.X, n.Y)
		dc.DrawCircle(x, y, opts.NodeRadius)
		dc.SetColor(opts.Palette.Color(n.Module))
		dc.FillPreserve()
		dc.SetRGB(0.2, 0.2, 0.2)
		dc.SetLineWidth(0.75)
		dc.Stroke()
	}
}

// gifPalette puts the exact drawing colours first so that node fills are not
// dithered, then fills up with web-safe colours for anti-aliased pixels.
func gifPalette(p *Palette, modules []string) color.Palette {
	pal := color.Palette{
		color.White,
		color.Black,
		color.RGBA{R: 0x8c, G: 0x8c, B: 0x8c, A: 0xff},
		color.RGBA{R: 0x33, G: 0x33, B: 0x33, A: 0xff},
		p.Color(network.Unassigned),
	}
	for _, m := range modules {
		if len(pal) == 128 {
			break
		}
		pal = append(pal, p.Color(m))
	}
	for _, c := range palette.WebSafe {
		if len(pal) == 256 {
			break
		}
		pal = append(pal, c)
	}
	return pal
}
