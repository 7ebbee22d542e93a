package linalg

import "math"

// Mat4 is a 4x4 matrix stored column-major: the element at column c, row r
// lives at index r + c*4. This is the layout graphics backends expect for
// matrix uniforms.
type Mat4 [16]float64

// Identity returns the 4x4 identity matrix.
func Identity() Mat4 {
	return Mat4{
		1, 0, 0, 0,
		0, 1, 0, 0,
		0, 0, 1, 0,
		0, 0, 0, 1,
	}
}

// Zero returns the all-zero matrix.
func Zero() Mat4 { return Mat4{} }

// At returns the element at column col, row row.
func (m Mat4) At(col, row int) float64 { return m[row+col*4] }

// Row returns row r of m.
func (m Mat4) Row(r int) Vec4 {
	return Vec4{m[r], m[r+4], m[r+8], m[r+12]}
}

// Col returns column c of m.
func (m Mat4) Col(c int) Vec4 {
	return Vec4{m[c*4], m[c*4+1], m[c*4+2], m[c*4+3]}
}

// Float32 returns m narrowed to float32 in the same column-major order, the
// form uploaded as a matrix uniform.
func (m Mat4) Float32() [16]float32 {
	var out [16]float32
	for i, v := range m {
		out[i] = float32(v)
	}
	return out
}

// Rotation returns the rotation of angleDeg degrees about axis, following the
// right-hand rule (Rodrigues' formula). The axis is expected to be unit
// length.
func Rotation(axis Vec3, angleDeg float64) Mat4 {
	rad := DegToRad(angleDeg)
	c := math.Cos(rad)
	s := math.Sin(rad)
	t := 1 - c
	x, y, z := axis[0], axis[1], axis[2]

	// Row-major view of c*I + s*[k]x + t*k*k^T.
	r := [3][3]float64{
		{t*x*x + c, t*x*y - s*z, t*x*z + s*y},
		{t*x*y + s*z, t*y*y + c, t*y*z - s*x},
		{t*x*z - s*y, t*y*z + s*x, t*z*z + c},
	}

	m := Identity()
	for col := 0; col < 3; col++ {
		for row := 0; row < 3; row++ {
			m[row+col*4] = r[row][col]
		}
	}
	return m
}

// Translation returns the matrix that moves points by v.
func Translation(v Vec3) Mat4 {
	m := Identity()
	m[12] = v[0]
	m[13] = v[1]
	m[14] = v[2]
	return m
}

// Frustum returns the perspective projection for the given clip volume.
func Frustum(left, right, down, up, near, far float64) Mat4 {
	var m Mat4
	m[0] = 2 * near / (right - left)
	m[5] = 2 * near / (up - down)
	m[8] = (right + left) / (right - left)
	m[9] = (up + down) / (up - down)
	m[10] = -(far + near) / (far - near)
	m[11] = -1
	m[14] = -2 * far * near / (far - near)
	return m
}

// Perspective returns a symmetric perspective projection with a vertical
// field of view of fovY degrees.
func Perspective(fovY, aspect, near, far float64) Mat4 {
	y := near * math.Tan(DegToRad(fovY)/2)
	x := y * aspect
	return Frustum(-x, x, -y, y, near, far)
}

// Mul returns a×b. Applying the product to a vector applies b first.
func Mul(a, b Mat4) Mat4 {
	var m Mat4
	for col := 0; col < 4; col++ {
		bc := b.Col(col)
		for row := 0; row < 4; row++ {
			m[row+col*4] = a.Row(row).Dot(bc)
		}
	}
	return m
}

// Mul returns m×n.
func (m Mat4) Mul(n Mat4) Mat4 { return Mul(m, n) }

// MulAll folds Mul over ms from left to right, starting at the identity.
func MulAll(ms ...Mat4) Mat4 {
	r := Identity()
	for _, m := range ms {
		r = Mul(r, m)
	}
	return r
}

// Transform multiplies m by the homogeneous vector v without the perspective
// divide.
func Transform(v Vec4, m Mat4) Vec4 {
	return Vec4{
		m.Row(0).Dot(v),
		m.Row(1).Dot(v),
		m.Row(2).Dot(v),
		m.Row(3).Dot(v),
	}
}

// Apply transforms the point v by m and divides by the resulting w. A zero w
// yields infinite or NaN components.
func Apply(v Vec3, m Mat4) Vec3 {
	h := Transform(v.Vec4(1), m)
	return Vec3{h[0] / h[3], h[1] / h[3], h[2] / h[3]}
}

// Rotate rotates v by angleDeg degrees about axis.
func Rotate(v, axis Vec3, angleDeg float64) Vec3 {
	return Apply(v, Rotation(axis, angleDeg))
}
