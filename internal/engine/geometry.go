package engine

import (
	"math"

	"github.com/boardkit/boardkit/internal/board"
)

// Rect is an axis-aligned bounding box in canvas space.
type Rect struct {
	X      float64
	Y      float64
	Width  float64
	Height float64
}

// Contains checks if a point is inside the rect.
func (r Rect) Contains(x, y float64) bool {
	return x >= r.X && x <= r.X+r.Width && y >= r.Y && y <= r.Y+r.Height
}

// Intersects checks if two rects overlap.
func (r Rect) Intersects(other Rect) bool {
	return r.X <= other.X+other.Width && r.X+r.Width >= other.X &&
		r.Y <= other.Y+other.Height && r.Y+r.Height >= other.Y
}

// IsEmpty checks if the rect has zero or negative area.
func (r Rect) IsEmpty() bool {
	return r.Width <= 0 || r.Height <= 0
}

// Union returns the smallest rect containing both rects.
func (r Rect) Union(other Rect) Rect {
	if r.IsEmpty() {
		return other
	}
	if other.IsEmpty() {
		return r
	}

	minX := min(r.X, other.X)
	minY := min(r.Y, other.Y)
	maxX := max(r.X+r.Width, other.X+other.Width)
	maxY := max(r.Y+r.Height, other.Y+other.Height)

	return Rect{X: minX, Y: minY, Width: maxX - minX, Height: maxY - minY}
}

// Center returns the center point of the rect.
func (r Rect) Center() (float64, float64) {
	return r.X + r.Width/2, r.Y + r.Height/2
}

// Normalize flips negative spans so Width and Height are non-negative.
func (r Rect) Normalize() Rect {
	if r.Width < 0 {
		r.X += r.Width
		r.Width = -r.Width
	}
	if r.Height < 0 {
		r.Y += r.Height
		r.Height = -r.Height
	}
	return r
}

// RectFromPoints returns the normalized rect spanning two corner points.
func RectFromPoints(x0, y0, x1, y1 float64) Rect {
	return Rect{X: x0, Y: y0, Width: x1 - x0, Height: y1 - y0}.Normalize()
}

// Matrix2D represents a 2D affine transformation matrix.
// Layout: [a, b, c, d, e, f] representing:
// | a  c  e |
// | b  d  f |
// | 0  0  1 |
type Matrix2D [6]float64

// Identity returns the identity matrix.
func Identity() Matrix2D {
	return Matrix2D{1, 0, 0, 1, 0, 0}
}

// RotateAbout returns a rotation matrix (degrees) around a fixed point.
func RotateAbout(degrees, cx, cy float64) Matrix2D {
	rad := degrees * math.Pi / 180.0
	cos := math.Cos(rad)
	sin := math.Sin(rad)
	return Matrix2D{
		cos, sin, -sin, cos,
		cx - cos*cx + sin*cy,
		cy - sin*cx - cos*cy,
	}
}

// TransformPoint applies the matrix to a point.
func (m Matrix2D) TransformPoint(x, y float64) (float64, float64) {
	return m[0]*x + m[2]*y + m[4], m[1]*x + m[3]*y + m[5]
}

// TransformRect transforms a rectangle and returns its axis-aligned bounding box.
func (m Matrix2D) TransformRect(r Rect) Rect {
	x0, y0 := m.TransformPoint(r.X, r.Y)
	x1, y1 := m.TransformPoint(r.X+r.Width, r.Y)
	x2, y2 := m.TransformPoint(r.X+r.Width, r.Y+r.Height)
	x3, y3 := m.TransformPoint(r.X, r.Y+r.Height)

	minX := min(x0, min(x1, min(x2, x3)))
	minY := min(y0, min(y1, min(y2, y3)))
	maxX := max(x0, max(x1, max(x2, x3)))
	maxY := max(y0, max(y1, max(y2, y3)))

	return Rect{X: minX, Y: minY, Width: maxX - minX, Height: maxY - minY}
}

// ToSlice returns the matrix as a float64 slice for JSON serialization.
func (m Matrix2D) ToSlice() []float64 {
	return []float64{m[0], m[1], m[2], m[3], m[4], m[5]}
}

// ObjectBounds returns the world-space axis-aligned bounding box of an
// object, accounting for rotation and freehand point extents.
func ObjectBounds(o *board.CanvasObject) Rect {
	var local Rect
	switch o.Type {
	case board.ObjectTypeFreehand:
		if len(o.Points) == 0 {
			return Rect{}
		}
		minX, minY := o.Points[0].X, o.Points[0].Y
		maxX, maxY := minX, minY
		for _, p := range o.Points[1:] {
			minX = min(minX, p.X)
			minY = min(minY, p.Y)
			maxX = max(maxX, p.X)
			maxY = max(maxY, p.Y)
		}
		local = Rect{X: minX, Y: minY, Width: maxX - minX, Height: maxY - minY}
	default:
		local = Rect{
			X:      o.Transform.X,
			Y:      o.Transform.Y,
			Width:  o.Transform.Width,
			Height: o.Transform.Height,
		}.Normalize()
	}

	if o.Transform.Rotation == 0 {
		return local
	}
	cx, cy := local.Center()
	return RotateAbout(o.Transform.Rotation, cx, cy).TransformRect(local)
}
