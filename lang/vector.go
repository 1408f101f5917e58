package lang

import "math"

// Vec3 is a 3-component vector.
type Vec3 struct {
	X, Y, Z float64
}

// Add returns v+u.
func (v Vec3) Add(u Vec3) Vec3 { return Vec3{v.X + u.X, v.Y + u.Y, v.Z + u.Z} }

// Sub returns v-u.
func (v Vec3) Sub(u Vec3) Vec3 { return Vec3{v.X - u.X, v.Y - u.Y, v.Z - u.Z} }

// Scale returns v*s.
func (v Vec3) Scale(s float64) Vec3 { return Vec3{v.X * s, v.Y * s, v.Z * s} }

// Cross returns the cross product v×u.
func (v Vec3) Cross(u Vec3) Vec3 {
	return Vec3{
		v.Y*u.Z - u.Y*v.Z,
		v.Z*u.X - u.Z*v.X,
		v.X*u.Y - u.X*v.Y,
	}
}

// Len returns the Euclidean length of v.
func (v Vec3) Len() float64 { return math.Sqrt(v.X*v.X + v.Y*v.Y + v.Z*v.Z) }

// Normalize returns v scaled to unit length.
// The zero vector yields NaN components.
func (v Vec3) Normalize() Vec3 { return v.Scale(1 / v.Len()) }

// FlipZ returns v with its Z component negated.
func (v Vec3) FlipZ() Vec3 { return Vec3{v.X, v.Y, -v.Z} }

// Slice returns the components of v in order.
func (v Vec3) Slice() []float64 { return []float64{v.X, v.Y, v.Z} }

// Quat is a rotation quaternion in source order (q0, q1, q2, q3).
type Quat [4]float64

// Mangle reorders and negates the components of q into the engine's
// right-to-left handed convention.
func (q Quat) Mangle() Quat { return Quat{-q[2], -q[3], q[0], -q[1]} }

// Matrix returns the 3x3 rotation matrix of q, without normalisation.
func (q Quat) Matrix() [3][3]float64 {
	q0, q1, q2, q3 := q[0], q[1], q[2], q[3]

	return [3][3]float64{
		{
			2*(q0*q0+q1*q1) - 1,
			2 * (q1*q2 - q0*q3),
			2 * (q1*q3 + q0*q2),
		},
		{
			2 * (q1*q2 + q0*q3),
			2*(q0*q0+q2*q2) - 1,
			2 * (q2*q3 - q0*q1),
		},
		{
			2 * (q1*q3 - q0*q2),
			2 * (q2*q3 + q0*q1),
			2*(q0*q0+q3*q3) - 1,
		},
	}
}

// Transform returns the 12 floats of an XFRM chunk for an entity with
// rotation q at position p: the mangled rotation matrix in row-major order
// followed by p with Z negated.
func Transform(q Quat, p Vec3) [12]float64 {
	m := q.Mangle().Matrix()
	p = p.FlipZ()

	return [12]float64{
		m[0][0], m[0][1], m[0][2],
		m[1][0], m[1][1], m[1][2],
		m[2][0], m[2][1], m[2][2],
		p.X, p.Y, p.Z,
	}
}
