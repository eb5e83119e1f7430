package domain

// Rect is an axis-aligned bounding box in page coordinates (PDF points,
// origin top-left, Y grows downward). Geometry is inherited from detection
// and is read-only after the structure build.
type Rect struct {
	X0 float64 `json:"x0"`
	Y0 float64 `json:"y0"`
	X1 float64 `json:"x1"`
	Y1 float64 `json:"y1"`
}

func (r Rect) Width() float64  { return r.X1 - r.X0 }
func (r Rect) Height() float64 { return r.Y1 - r.Y0 }

func (r Rect) Area() float64 {
	if r.X1 <= r.X0 || r.Y1 <= r.Y0 {
		return 0
	}
	return r.Width() * r.Height()
}

// CenterY returns the vertical midpoint, used by line clustering.
func (r Rect) CenterY() float64 { return (r.Y0 + r.Y1) / 2 }

// CenterX returns the horizontal midpoint.
func (r Rect) CenterX() float64 { return (r.X0 + r.X1) / 2 }

// Intersects reports whether the two rectangles overlap.
func (r Rect) Intersects(o Rect) bool {
	return r.X0 < o.X1 && o.X0 < r.X1 && r.Y0 < o.Y1 && o.Y0 < r.Y1
}

// IntersectionArea returns the area of the overlap between r and o.
func (r Rect) IntersectionArea(o Rect) float64 {
	x0 := max(r.X0, o.X0)
	y0 := max(r.Y0, o.Y0)
	x1 := min(r.X1, o.X1)
	y1 := min(r.Y1, o.Y1)
	if x1 <= x0 || y1 <= y0 {
		return 0
	}
	return (x1 - x0) * (y1 - y0)
}

// OverlapRatio returns the overlap area as a fraction of r's own area.
func (r Rect) OverlapRatio(o Rect) float64 {
	a := r.Area()
	if a == 0 {
		return 0
	}
	return r.IntersectionArea(o) / a
}

// Merge returns the smallest rectangle containing both r and o.
func (r Rect) Merge(o Rect) Rect {
	if o.Area() == 0 {
		return r
	}
	if r.Area() == 0 {
		return o
	}
	return Rect{
		X0: min(r.X0, o.X0),
		Y0: min(r.Y0, o.Y0),
		X1: max(r.X1, o.X1),
		Y1: max(r.Y1, o.Y1),
	}
}

// VerticalOverlap returns the overlapping extent of the two rectangles on
// the Y axis, in points.
func (r Rect) VerticalOverlap(o Rect) float64 {
	v := min(r.Y1, o.Y1) - max(r.Y0, o.Y0)
	if v < 0 {
		return 0
	}
	return v
}
