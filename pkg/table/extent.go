package table

import "math"

// Extent is an axis-aligned bounding box in layout coordinates.
type Extent struct {
	MinX float64 `json:"min_x"`
	MinY float64 `json:"min_y"`
	MaxX float64 `json:"max_x"`
	MaxY float64 `json:"max_y"`
}

// EmptyExtent returns an extent that contains nothing; adding a point to it
// yields that point.
func EmptyExtent() Extent {
	return Extent{MinX: math.Inf(1), MinY: math.Inf(1), MaxX: math.Inf(-1), MaxY: math.Inf(-1)}
}

// IsEmpty reports whether no point has been added.
func (e Extent) IsEmpty() bool { return e.MinX > e.MaxX || e.MinY > e.MaxY }

// Add grows the extent to include (x, y).
func (e Extent) Add(x, y float64) Extent {
	return Extent{
		MinX: math.Min(e.MinX, x),
		MinY: math.Min(e.MinY, y),
		MaxX: math.Max(e.MaxX, x),
		MaxY: math.Max(e.MaxY, y),
	}
}

// Width returns MaxX - MinX, or 0 when empty.
func (e Extent) Width() float64 {
	if e.IsEmpty() {
		return 0
	}
	return e.MaxX - e.MinX
}

// Height returns MaxY - MinY, or 0 when empty.
func (e Extent) Height() float64 {
	if e.IsEmpty() {
		return 0
	}
	return e.MaxY - e.MinY
}

// Pad grows each side by frac of the larger dimension. A degenerate extent
// (all points equal) is grown by one unit on each side so it can be scaled.
func (e Extent) Pad(frac float64) Extent {
	if e.IsEmpty() {
		return e
	}
	d := math.Max(e.Width(), e.Height()) * frac
	if d == 0 {
		d = 1
	}
	return Extent{MinX: e.MinX - d, MinY: e.MinY - d, MaxX: e.MaxX + d, MaxY: e.MaxY + d}
}

// Equal reports whether both extents have the same bounds within eps.
func (e Extent) Equal(o Extent, eps float64) bool {
	return math.Abs(e.MinX-o.MinX) <= eps && math.Abs(e.MinY-o.MinY) <= eps &&
		math.Abs(e.MaxX-o.MaxX) <= eps && math.Abs(e.MaxY-o.MaxY) <= eps
}
