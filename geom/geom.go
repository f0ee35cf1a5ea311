// Package geom holds the small amount of 3D rotation math the viewer needs,
// built on gonum's r3 vectors and quaternions.
package geom

import (
	"math"

	"gonum.org/v1/gonum/num/quat"
	"gonum.org/v1/gonum/spatial/r3"
)

// Up is the reference axis cylinders are modelled along.
var Up = r3.Vec{Y: 1}

var (
	axisX = r3.Vec{X: 1}
	axisY = r3.Vec{Y: 1}
	axisZ = r3.Vec{Z: 1}
)

const epsilon = 1e-9

// Identity is the no-op rotation.
func Identity() r3.Rotation {
	return r3.Rotation{Real: 1}
}

// Compose returns the rotation that applies b first, then a.
func Compose(a, b r3.Rotation) r3.Rotation {
	return r3.Rotation(quat.Mul(quat.Number(a), quat.Number(b)))
}

// Euler returns the rotation for angles about X then Y, matching an XYZ
// Euler order with no Z component: v' = Rx(x) * Ry(y) * v.
func Euler(x, y float64) r3.Rotation {
	return Compose(r3.NewRotation(x, axisX), r3.NewRotation(y, axisY))
}

// RotateY rotates about the Y axis.
func RotateY(angle float64) r3.Rotation {
	return r3.NewRotation(angle, axisY)
}

// Between returns the minimal rotation taking unit vector from onto unit
// vector to. Antiparallel inputs rotate half a turn about an axis
// perpendicular to from.
func Between(from, to r3.Vec) r3.Rotation {
	from = r3.Unit(from)
	to = r3.Unit(to)
	d := r3.Dot(from, to)
	if d > 1-epsilon {
		return Identity()
	}
	if d < -1+epsilon {
		axis := r3.Cross(axisX, from)
		if r3.Norm(axis) < epsilon {
			axis = r3.Cross(axisZ, from)
		}
		return r3.NewRotation(math.Pi, r3.Unit(axis))
	}
	axis := r3.Unit(r3.Cross(from, to))
	return r3.NewRotation(math.Acos(clamp(d, -1, 1)), axis)
}

// AxisAngle decomposes a unit rotation into an axis and an angle in
// radians. The identity returns the Y axis and zero.
func AxisAngle(r r3.Rotation) (r3.Vec, float64) {
	q := quat.Number(r)
	if q.Real < 0 {
		q = quat.Scale(-1, q)
	}
	s := math.Sqrt(q.Imag*q.Imag + q.Jmag*q.Jmag + q.Kmag*q.Kmag)
	if s < epsilon {
		return axisY, 0
	}
	angle := 2 * math.Atan2(s, q.Real)
	return r3.Vec{X: q.Imag / s, Y: q.Jmag / s, Z: q.Kmag / s}, angle
}

// Lerp moves from a toward b by fraction t.
func Lerp(a, b, t float64) float64 {
	return a + (b-a)*t
}

func clamp(x, lo, hi float64) float64 {
	if x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}
