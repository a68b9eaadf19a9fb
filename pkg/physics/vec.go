package physics

import "math"

// Vec is a 2-D vector in layout space.
type Vec struct {
	X float64
	Y float64
}

// Add returns v + o.
func (v Vec) Add(o Vec) Vec { return Vec{v.X + o.X, v.Y + o.Y} }

// Sub returns v - o.
func (v Vec) Sub(o Vec) Vec { return Vec{v.X - o.X, v.Y - o.Y} }

// Scale returns v scaled by s.
func (v Vec) Scale(s float64) Vec { return Vec{v.X * s, v.Y * s} }

// Len returns the vector's magnitude.
func (v Vec) Len() float64 { return math.Hypot(v.X, v.Y) }

// LenSq returns the squared magnitude, avoiding the square root.
func (v Vec) LenSq() float64 { return v.X*v.X + v.Y*v.Y }

// Dot returns the dot product of v and o.
func (v Vec) Dot(o Vec) float64 { return v.X*o.X + v.Y*o.Y }

// Norm returns the unit vector in v's direction, or the zero vector when v
// has no direction.
func (v Vec) Norm() Vec {
	l := v.Len()
	if l == 0 {
		return Vec{}
	}
	return Vec{v.X / l, v.Y / l}
}

// Clamp returns v with its magnitude limited to max.
func (v Vec) Clamp(max float64) Vec {
	l := v.Len()
	if l <= max || l == 0 {
		return v
	}
	return v.Scale(max / l)
}

// angleVec returns the unit vector at the given angle in radians.
func angleVec(theta float64) Vec {
	return Vec{math.Cos(theta), math.Sin(theta)}
}
