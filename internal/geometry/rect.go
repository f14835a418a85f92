// Package geometry provides the integer rectangle, point, and size
// primitives used throughout the layout engine. It has no dependency on
// any other stripwm package and performs no I/O.
package geometry

// Point is an integer screen coordinate.
type Point struct {
	X, Y int
}

// Add returns p+o.
func (p Point) Add(o Point) Point {
	return Point{p.X + o.X, p.Y + o.Y}
}

// Sub returns p-o.
func (p Point) Sub(o Point) Point {
	return Point{p.X - o.X, p.Y - o.Y}
}

// Size is an integer width/height pair.
type Size struct {
	W, H int
}

// Rect is an axis-aligned integer rectangle given by its min (top-left)
// and max (bottom-right) corners, max exclusive of neither per-axis
// convention used elsewhere in the model (Width/Height derive from the
// difference, so Max is effectively one-past-the-edge).
type Rect struct {
	Min, Max Point
}

// NewRect builds a Rect from an origin and a size.
func NewRect(origin Point, size Size) Rect {
	return Rect{Min: origin, Max: Point{origin.X + size.W, origin.Y + size.H}}
}

// FromCenterSize builds a Rect centered at c with the given size.
func FromCenterSize(c Point, size Size) Rect {
	half := Point{size.W / 2, size.H / 2}
	min := c.Sub(half)
	return NewRect(min, size)
}

// Width returns Max.X - Min.X.
func (r Rect) Width() int { return r.Max.X - r.Min.X }

// Height returns Max.Y - Min.Y.
func (r Rect) Height() int { return r.Max.Y - r.Min.Y }

// Size returns the rectangle's dimensions.
func (r Rect) Size() Size { return Size{r.Width(), r.Height()} }

// Center returns the rectangle's midpoint, truncated toward Min.
func (r Rect) Center() Point {
	return Point{r.Min.X + r.Width()/2, r.Min.Y + r.Height()/2}
}

// WithOrigin returns a Rect of the same size moved so Min == origin.
func (r Rect) WithOrigin(origin Point) Rect {
	return NewRect(origin, r.Size())
}

// WithSize returns a Rect with the same Min but a new size.
func (r Rect) WithSize(size Size) Rect {
	return NewRect(r.Min, size)
}

// Intersect returns the overlapping region of r and o. The result has
// Width()<=0 or Height()<=0 when the rectangles do not overlap.
func (r Rect) Intersect(o Rect) Rect {
	min := Point{maxInt(r.Min.X, o.Min.X), maxInt(r.Min.Y, o.Min.Y)}
	max := Point{minInt(r.Max.X, o.Max.X), minInt(r.Max.Y, o.Max.Y)}
	return Rect{Min: min, Max: max}
}

// VisibleWidth returns how many horizontal pixels of r fall inside o,
// clamped to zero. It is the quantity the sliver off-screen test reads.
func (r Rect) VisibleWidth(o Rect) int {
	v := minInt(r.Max.X, o.Max.X) - maxInt(r.Min.X, o.Min.X)
	return maxInt(v, 0)
}

// Inset shrinks r by top/right/bottom/left, mirroring CSS padding order.
func (r Rect) Inset(top, right, bottom, left int) Rect {
	return Rect{
		Min: Point{r.Min.X + left, r.Min.Y + top},
		Max: Point{r.Max.X - right, r.Max.Y - bottom},
	}
}

// Clamp returns v limited to [lo, hi]; when hi < lo, lo is used for both.
func Clamp(v, lo, hi int) int {
	if hi < lo {
		hi = lo
	}
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// MoveTowards steps p toward target by at most maxDelta along each axis,
// used by the animation tick to interpolate a frame toward its target.
func (p Point) MoveTowards(target Point, maxDelta float64) Point {
	return Point{
		X: stepTowards(p.X, target.X, maxDelta),
		Y: stepTowards(p.Y, target.Y, maxDelta),
	}
}

// MoveTowards steps s toward target by at most maxDelta on each axis.
func (s Size) MoveTowards(target Size, maxDelta float64) Size {
	return Size{
		W: stepTowards(s.W, target.W, maxDelta),
		H: stepTowards(s.H, target.H, maxDelta),
	}
}

func stepTowards(cur, target int, maxDelta float64) int {
	delta := float64(target - cur)
	if delta == 0 {
		return cur
	}
	if delta > 0 {
		if delta <= maxDelta {
			return target
		}
		return cur + int(maxDelta+0.5)
	}
	if -delta <= maxDelta {
		return target
	}
	return cur - int(maxDelta+0.5)
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
