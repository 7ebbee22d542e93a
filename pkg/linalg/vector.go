// Package linalg provides the small amount of 3D linear algebra needed to
// place a globe and orbit geometry on screen: fixed-size vectors and 4x4
// column-major matrices.
//
// Every operation returns a new value; nothing is mutated in place.
package linalg

import "math"

// Vec2 is a 2-component vector.
type Vec2 [2]float64

// Vec3 is a 3-component vector.
type Vec3 [3]float64

// Vec4 is a 4-component vector, typically a homogeneous position.
type Vec4 [4]float64

// Unit axes used throughout the renderers.
var (
	XAxis = Vec3{1, 0, 0}
	YAxis = Vec3{0, 1, 0}
	ZAxis = Vec3{0, 0, 1}
)

// The n-ary core. Each helper works on equal-length slices; the typed methods
// below hand it views of their backing arrays.

func dotN(a, b []float64) float64 {
	var sum float64
	for i := range a {
		sum += a[i] * b[i]
	}
	return sum
}

func lenN(a []float64) float64 {
	return math.Sqrt(dotN(a, a))
}

func addN(dst, a, b []float64) {
	for i := range dst {
		dst[i] = a[i] + b[i]
	}
}

func subN(dst, a, b []float64) {
	for i := range dst {
		dst[i] = a[i] - b[i]
	}
}

func scaleN(dst, a []float64, s float64) {
	for i := range dst {
		dst[i] = a[i] * s
	}
}

// Dot returns the dot product of v and w.
func (v Vec2) Dot(w Vec2) float64 { return dotN(v[:], w[:]) }

// Len returns the Euclidean length of v.
func (v Vec2) Len() float64 { return lenN(v[:]) }

// Add returns v + w.
func (v Vec2) Add(w Vec2) (r Vec2) { addN(r[:], v[:], w[:]); return r }

// Sub returns v - w.
func (v Vec2) Sub(w Vec2) (r Vec2) { subN(r[:], v[:], w[:]); return r }

// Scale returns v * s.
func (v Vec2) Scale(s float64) (r Vec2) { scaleN(r[:], v[:], s); return r }

// Dot returns the dot product of v and w.
func (v Vec3) Dot(w Vec3) float64 { return dotN(v[:], w[:]) }

// Len returns the Euclidean length of v.
func (v Vec3) Len() float64 { return lenN(v[:]) }

// Add returns v + w.
func (v Vec3) Add(w Vec3) (r Vec3) { addN(r[:], v[:], w[:]); return r }

// Sub returns v - w.
func (v Vec3) Sub(w Vec3) (r Vec3) { subN(r[:], v[:], w[:]); return r }

// Scale returns v * s.
func (v Vec3) Scale(s float64) (r Vec3) { scaleN(r[:], v[:], s); return r }

// Cross returns the right-handed cross product v × w.
func (v Vec3) Cross(w Vec3) Vec3 {
	return Vec3{
		v[1]*w[2] - v[2]*w[1],
		v[2]*w[0] - v[0]*w[2],
		v[0]*w[1] - v[1]*w[0],
	}
}

// Normalize returns v scaled to unit length. A zero vector produces NaN
// components; callers that can hit that case must check Len first.
func (v Vec3) Normalize() Vec3 {
	return v.Scale(1 / v.Len())
}

// Vec4 extends v with a w component.
func (v Vec3) Vec4(w float64) Vec4 { return Vec4{v[0], v[1], v[2], w} }

// Dot returns the dot product of v and w.
func (v Vec4) Dot(w Vec4) float64 { return dotN(v[:], w[:]) }

// Len returns the Euclidean length of v.
func (v Vec4) Len() float64 { return lenN(v[:]) }

// Add returns v + w.
func (v Vec4) Add(w Vec4) (r Vec4) { addN(r[:], v[:], w[:]); return r }

// Sub returns v - w.
func (v Vec4) Sub(w Vec4) (r Vec4) { subN(r[:], v[:], w[:]); return r }

// Scale returns v * s.
func (v Vec4) Scale(s float64) (r Vec4) { scaleN(r[:], v[:], s); return r }

// Vec3 drops the w component without dividing.
func (v Vec4) Vec3() Vec3 { return Vec3{v[0], v[1], v[2]} }

// DegToRad converts degrees to radians.
func DegToRad(deg float64) float64 { return deg * math.Pi / 180 }

// RadToDeg converts radians to degrees.
func RadToDeg(rad float64) float64 { return rad * 180 / math.Pi }

// ApproxEqual reports whether a and b differ by at most eps.
func ApproxEqual(a, b, eps float64) bool {
	return math.Abs(a-b) <= eps
}
