package render

import (
	"math"

	"github.com/matzehuels/graphmorph/pkg/table"
)

// viewport maps layout coordinates into a pixel box, keeping the aspect
// ratio and flipping y so that layouts appear the same way up as in Graphviz.
type viewport struct {
	scale float64
	ext   table.Extent
	offX  float64
	offY  float64
	boxH  float64
}

// fit centres ext inside the box (x, y, w, h).
func fit(ext table.Extent, x, y, w, h float64) viewport {
	if ext.IsEmpty() {
		ext = table.Extent{MinX: -1, MinY: -1, MaxX: 1, MaxY: 1}
	}
	ew, eh := ext.Width(), ext.Height()
	if ew == 0 {
		ew = 1
	}
	if eh == 0 {
		eh = 1
	}
	scale := math.Min(w/ew, h/eh)
	return viewport{
		scale: scale,
		ext:   ext,
		offX:  x + (w-ext.Width()*scale)/2,
		offY:  y + (h-ext.Height()*scale)/2,
		boxH:  ext.Height() * scale,
	}
}

// apply converts a layout point to pixel coordinates.
func (v viewport) apply(px, py float64) (float64, float64) {
	x := v.offX + (px-v.ext.MinX)*v.scale
	y := v.offY + v.boxH - (py-v.ext.MinY)*v.scale
	return x, y
}
