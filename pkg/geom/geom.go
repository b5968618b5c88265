// Package geom provides the axis-aligned rectangle arithmetic used by the
// collage layout.
//
// All coordinates are viewport pixels with the origin at the top-left corner
// of the drawable surface. Values are float64 so that centered positions such
// as (1000-250)/2 are represented exactly.
package geom

// Size is a width/height pair.
type Size struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Rect is an axis-aligned bounding box. A Rect is a value; it is never
// mutated after a placement produces it.
type Rect struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// NewRect creates a rectangle at (x, y) with the given size.
func NewRect(x, y float64, s Size) Rect {
	return Rect{X: x, Y: y, Width: s.Width, Height: s.Height}
}

// Right returns the x-coordinate of the right edge.
func (r Rect) Right() float64 { return r.X + r.Width }

// Bottom returns the y-coordinate of the bottom edge.
func (r Rect) Bottom() float64 { return r.Y + r.Height }

// Size returns the rectangle's dimensions.
func (r Rect) Size() Size { return Size{Width: r.Width, Height: r.Height} }

// Within reports whether r lies entirely inside a viewport of size vp.
func (r Rect) Within(vp Size) bool {
	return r.X >= 0 && r.Y >= 0 && r.Right() <= vp.Width && r.Bottom() <= vp.Height
}

// OverlapArea returns the area of the intersection of a and b, or 0 when
// they do not intersect. Touching edges do not count as overlap.
func OverlapArea(a, b Rect) float64 {
	return span(a.X, a.Right(), b.X, b.Right()) * span(a.Y, a.Bottom(), b.Y, b.Bottom())
}

// TotalOverlap sums OverlapArea of r against every rectangle in set.
func TotalOverlap(r Rect, set []Rect) float64 {
	var total float64
	for _, other := range set {
		total += OverlapArea(r, other)
	}
	return total
}

func span(a1, a2, b1, b2 float64) float64 {
	return max(0, min(a2, b2)-max(a1, b1))
}
