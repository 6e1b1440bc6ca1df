// Package geom holds the small amount of 3D math the design-memory engine
// needs: points/vectors, axis-aligned bounding boxes, and the read-only
// geometry-query capability the host application provides.
//
// Nothing here constructs CAD geometry. Every value is a point-in-time fact
// reported by the host.
package geom

import (
	"fmt"
	"math"
)

// Vec3 is a point or vector in model space.
type Vec3 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// V is shorthand for constructing a Vec3.
func V(x, y, z float64) Vec3 { return Vec3{X: x, Y: y, Z: z} }

// Add returns a + b.
func (a Vec3) Add(b Vec3) Vec3 { return Vec3{a.X + b.X, a.Y + b.Y, a.Z + b.Z} }

// Sub returns a − b.
func (a Vec3) Sub(b Vec3) Vec3 { return Vec3{a.X - b.X, a.Y - b.Y, a.Z - b.Z} }

// Scale multiplies every component by f.
func (a Vec3) Scale(f float64) Vec3 { return Vec3{a.X * f, a.Y * f, a.Z * f} }

// Dot returns the dot product.
func (a Vec3) Dot(b Vec3) float64 { return a.X*b.X + a.Y*b.Y + a.Z*b.Z }

// Cross returns the cross product a × b.
func (a Vec3) Cross(b Vec3) Vec3 {
	return Vec3{
		a.Y*b.Z - a.Z*b.Y,
		a.Z*b.X - a.X*b.Z,
		a.X*b.Y - a.Y*b.X,
	}
}

// Length returns the Euclidean norm.
func (a Vec3) Length() float64 { return math.Sqrt(a.Dot(a)) }

// Distance returns |a − b|.
func (a Vec3) Distance(b Vec3) float64 { return a.Sub(b).Length() }

// Unit returns a normalized copy, or the zero vector when a has no length.
func (a Vec3) Unit() Vec3 {
	l := a.Length()
	if l == 0 {
		return Vec3{}
	}
	return a.Scale(1 / l)
}

// IsFinite reports whether no component is NaN or ±Inf.
func (a Vec3) IsFinite() bool {
	for _, f := range [3]float64{a.X, a.Y, a.Z} {
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return false
		}
	}
	return true
}

// String renders the vector with one decimal, for human-readable intents.
func (a Vec3) String() string {
	return fmt.Sprintf("(%s, %s, %s)", Round1(a.X), Round1(a.Y), Round1(a.Z))
}

// Round1 formats f with one decimal place. Display only.
func Round1(f float64) string {
	s := fmt.Sprintf("%.1f", f)
	if s == "-0.0" {
		return "0.0"
	}
	return s
}

// ─── Bounding boxes ─────────────────────────────────────────────────────────

// BoundingBox is an axis-aligned box given by its two extreme corners.
type BoundingBox struct {
	Min Vec3 `json:"min"`
	Max Vec3 `json:"max"`
}

// Box builds a BoundingBox, swapping coordinates so Min ≤ Max on every axis.
func Box(a, b Vec3) BoundingBox {
	return BoundingBox{
		Min: Vec3{math.Min(a.X, b.X), math.Min(a.Y, b.Y), math.Min(a.Z, b.Z)},
		Max: Vec3{math.Max(a.X, b.X), math.Max(a.Y, b.Y), math.Max(a.Z, b.Z)},
	}
}

// Center returns the midpoint of the box.
func (b BoundingBox) Center() Vec3 { return b.Min.Add(b.Max).Scale(0.5) }

// Extent returns the per-axis size (max − min).
func (b BoundingBox) Extent() Vec3 { return b.Max.Sub(b.Min) }

// IsValid reports whether the box is finite and not inverted.
func (b BoundingBox) IsValid() bool {
	if !b.Min.IsFinite() || !b.Max.IsFinite() {
		return false
	}
	return b.Min.X <= b.Max.X && b.Min.Y <= b.Max.Y && b.Min.Z <= b.Max.Z
}

// Corners returns the eight box corners: the four bottom corners
// counter-clockwise (seen from +Z) starting at Min, then the four top
// corners in the same order.
func (b BoundingBox) Corners() []Vec3 {
	lo, hi := b.Min, b.Max
	return []Vec3{
		{lo.X, lo.Y, lo.Z},
		{hi.X, lo.Y, lo.Z},
		{hi.X, hi.Y, lo.Z},
		{lo.X, hi.Y, lo.Z},
		{lo.X, lo.Y, hi.Z},
		{hi.X, lo.Y, hi.Z},
		{hi.X, hi.Y, hi.Z},
		{lo.X, hi.Y, hi.Z},
	}
}

// Union returns the smallest box enclosing both b and o.
func (b BoundingBox) Union(o BoundingBox) BoundingBox {
	return BoundingBox{
		Min: Vec3{math.Min(b.Min.X, o.Min.X), math.Min(b.Min.Y, o.Min.Y), math.Min(b.Min.Z, o.Min.Z)},
		Max: Vec3{math.Max(b.Max.X, o.Max.X), math.Max(b.Max.Y, o.Max.Y), math.Max(b.Max.Z, o.Max.Z)},
	}
}

// BottomCorners returns the first four entries of Corners.
func (b BoundingBox) BottomCorners() []Vec3 { return b.Corners()[:4] }

// Dimensions names the box extent the way designers read it:
// width along X, depth along Y, height along Z.
type Dimensions struct {
	Width  float64 `json:"width"`
	Depth  float64 `json:"depth"`
	Height float64 `json:"height"`
}

// Dimensions returns the named extents of the box.
func (b BoundingBox) Dimensions() Dimensions {
	e := b.Extent()
	return Dimensions{Width: e.X, Depth: e.Y, Height: e.Z}
}
