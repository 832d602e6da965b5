package reco

import "math"

// Vec3 is a cartesian 3-vector. Positions are in meters.
type Vec3 struct {
	X, Y, Z float64
}

// Add returns v + w.
func (v Vec3) Add(w Vec3) Vec3 { return Vec3{v.X + w.X, v.Y + w.Y, v.Z + w.Z} }

// Sub returns v - w.
func (v Vec3) Sub(w Vec3) Vec3 { return Vec3{v.X - w.X, v.Y - w.Y, v.Z - w.Z} }

// Scale returns v scaled by s.
func (v Vec3) Scale(s float64) Vec3 { return Vec3{v.X * s, v.Y * s, v.Z * s} }

// Dot returns the scalar product of v and w.
func (v Vec3) Dot(w Vec3) float64 { return v.X*w.X + v.Y*w.Y + v.Z*w.Z }

// Cross returns the vector product of v and w.
func (v Vec3) Cross(w Vec3) Vec3 {
	return Vec3{
		v.Y*w.Z - v.Z*w.Y,
		v.Z*w.X - v.X*w.Z,
		v.X*w.Y - v.Y*w.X,
	}
}

// Norm returns the euclidean length of v.
func (v Vec3) Norm() float64 { return math.Sqrt(v.Dot(v)) }

// Unit returns v normalised to unit length. The zero vector is returned
// unchanged.
func (v Vec3) Unit() Vec3 {
	n := v.Norm()
	if n == 0 {
		return v
	}
	return v.Scale(1 / n)
}

// OpeningAngleDeg returns the angle between v and w in degrees.
// Either vector being zero yields 0.
func OpeningAngleDeg(v, w Vec3) float64 {
	nv := v.Norm()
	nw := w.Norm()
	if nv == 0 || nw == 0 {
		return 0
	}
	c := v.Dot(w) / (nv * nw)
	if c > 1 {
		c = 1
	}
	if c < -1 {
		c = -1
	}
	return math.Acos(c) * 180 / math.Pi
}

// PolarAngleDeg returns the polar angle of v measured from the +z axis in
// degrees, with theta=0 for a straight-up vector. The zero vector yields 0.
func PolarAngleDeg(v Vec3) float64 {
	n := v.Norm()
	if n == 0 {
		return 0
	}
	c := v.Z / n
	if c > 1 {
		c = 1
	}
	if c < -1 {
		c = -1
	}
	return math.Acos(c) * 180 / math.Pi
}

// PointLineDistance returns the perpendicular distance from point p to the
// infinite line through r0 with direction dir (dir need not be unit length).
func PointLineDistance(p, r0, dir Vec3) float64 {
	n := dir.Norm()
	if n == 0 {
		return p.Sub(r0).Norm()
	}
	return p.Sub(r0).Cross(dir).Norm() / n
}

// LineLineDistance returns the distance of closest approach between the
// infinite lines (r1,d1) and (r2,d2). Parallel lines fall back to the
// point-to-line distance.
func LineLineDistance(r1, d1, r2, d2 Vec3) float64 {
	n := d1.Cross(d2)
	nn := n.Norm()
	if nn == 0 {
		return PointLineDistance(r2, r1, d1)
	}
	return math.Abs(r2.Sub(r1).Dot(n)) / nn
}
