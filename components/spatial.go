package components

import "gonum.org/v1/gonum/spatial/r3"

// Transform places an entity in model space.
type Transform struct {
	Position    r3.Vec
	Orientation r3.Rotation // unit quaternion; identity for spheres
}
