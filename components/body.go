package components

import "github.com/pthm-cable/molview/molecule"

// Sphere is a renderable ball.
type Sphere struct {
	Radius  float64
	Color   molecule.Color
	Opacity float64 // 1 = solid
}

// Cylinder is a renderable stick modelled along the up axis and centred
// on its Transform position.
type Cylinder struct {
	Radius float64
	Length float64
	Color  molecule.Color
}
