package doc

import "fmt"

// Point is a coordinate in page space.
//
// All geometry in this package uses a top-left origin with y growing
// downward, matching how fill-in regions are reasoned about ("below the
// term", "under the keyword"). Backends working in native PDF user space
// (bottom-left origin) convert at the boundary.
type Point struct {
	X float64
	Y float64
}

// Rect is a rectangle in page space. X0,Y0 is the top-left corner and
// X1,Y1 the bottom-right corner.
type Rect struct {
	X0 float64
	Y0 float64
	X1 float64
	Y1 float64
}

// NewRect builds a rectangle from two corner coordinates.
func NewRect(x0, y0, x1, y1 float64) Rect {
	return Rect{X0: x0, Y0: y0, X1: x1, Y1: y1}
}

// Width returns the horizontal extent of the rectangle.
func (r Rect) Width() float64 {
	return r.X1 - r.X0
}

// Height returns the vertical extent of the rectangle.
func (r Rect) Height() float64 {
	return r.Y1 - r.Y0
}

// IsEmpty reports whether the rectangle has no area.
func (r Rect) IsEmpty() bool {
	return r.X1 <= r.X0 || r.Y1 <= r.Y0
}

// Inflated returns a copy of the rectangle grown by dx on the left and
// right edges and dy on the top and bottom edges. Negative values shrink.
func (r Rect) Inflated(dx, dy float64) Rect {
	return Rect{
		X0: r.X0 - dx,
		Y0: r.Y0 - dy,
		X1: r.X1 + dx,
		Y1: r.Y1 + dy,
	}
}

// Intersects reports whether the two rectangles share any area.
// Rectangles that merely touch at an edge do not intersect.
func (r Rect) Intersects(other Rect) bool {
	if r.IsEmpty() || other.IsEmpty() {
		return false
	}
	return r.X0 < other.X1 && other.X0 < r.X1 &&
		r.Y0 < other.Y1 && other.Y0 < r.Y1
}

// Contains reports whether the point lies inside the rectangle.
func (r Rect) Contains(p Point) bool {
	return p.X >= r.X0 && p.X <= r.X1 && p.Y >= r.Y0 && p.Y <= r.Y1
}

// String returns a compact representation for logging.
func (r Rect) String() string {
	return fmt.Sprintf("[%.1f,%.1f,%.1f,%.1f]", r.X0, r.Y0, r.X1, r.Y1)
}
