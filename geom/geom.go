package geom

// Point represents a point in 2D space
type Point struct {
	X, Y float64
}

// Rect represents an axis-aligned rectangle covering the half-open
// region [X, X+Width) x [Y, Y+Height)
type Rect struct {
	X, Y          float64
	Width, Height float64
}

// Contains checks if the point is within the rectangle. The right and
// bottom edges are excluded (half-open interval on both axes).
func (r Rect) Contains(p Point) bool {
	return r.X <= p.X && p.X < r.X+r.Width &&
		r.Y <= p.Y && p.Y < r.Y+r.Height
}

// Intersects checks if two rectangles overlap on both axes. Rectangles
// that only touch along an edge do not intersect.
func (r Rect) Intersects(other Rect) bool {
	return !(other.X >= r.X+r.Width ||
		other.X+other.Width <= r.X ||
		other.Y >= r.Y+r.Height ||
		other.Y+other.Height <= r.Y)
}
