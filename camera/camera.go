// Package camera provides the perspective camera the viewer looks through.
package camera

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// Camera is a fixed perspective camera on the +Z axis looking at the origin
// with +Y up.
type Camera struct {
	// FOV is the vertical field of view in radians
	FOV float64

	// Distance from the origin along +Z
	Distance float64

	// Clip planes
	Near, Far float64

	// Viewport dimensions in pixels (last valid size)
	ViewportW, ViewportH int

	// Projection parameters derived on Resize
	aspect  float64
	tanHalf float64
}

// New creates a camera for the given viewport. An invalid viewport leaves
// the camera without a projection until Resize is called with a valid size.
func New(fovDegrees, distance, near, far float64, viewportW, viewportH int) *Camera {
	c := &Camera{
		FOV:      fovDegrees * math.Pi / 180,
		Distance: distance,
		Near:     near,
		Far:      far,
	}
	c.tanHalf = math.Tan(c.FOV / 2)
	c.Resize(viewportW, viewportH)
	return c
}

// Resize updates the viewport and recomputes the projection. Zero or
// negative sizes are ignored and the previous projection is kept.
// Returns true if the projection changed.
func (c *Camera) Resize(viewportW, viewportH int) bool {
	if viewportW <= 0 || viewportH <= 0 {
		return false
	}
	if viewportW == c.ViewportW && viewportH == c.ViewportH {
		return false
	}
	c.ViewportW = viewportW
	c.ViewportH = viewportH
	c.aspect = float64(viewportW) / float64(viewportH)
	return true
}

// Valid reports whether a usable viewport has been observed.
func (c *Camera) Valid() bool {
	return c.ViewportW > 0 && c.ViewportH > 0
}

// Aspect returns width / height of the viewport.
func (c *Camera) Aspect() float64 {
	return c.aspect
}

// Position returns the eye position in world space.
func (c *Camera) Position() r3.Vec {
	return r3.Vec{Z: c.Distance}
}

// Project maps a world-space point to screen pixels.
// depth is the distance in front of the eye; ok is false when the point
// lies outside the near/far range or no viewport is set.
func (c *Camera) Project(p r3.Vec) (sx, sy, depth float64, ok bool) {
	if !c.Valid() {
		return 0, 0, 0, false
	}
	d := r3.Sub(p, c.Position())
	depth = -d.Z
	if depth < c.Near || depth > c.Far {
		return 0, 0, depth, false
	}
	ndcX := d.X / (depth * c.tanHalf * c.aspect)
	ndcY := d.Y / (depth * c.tanHalf)
	sx = (ndcX + 1) / 2 * float64(c.ViewportW)
	sy = (1 - ndcY) / 2 * float64(c.ViewportH)
	return sx, sy, depth, true
}

// Ray returns the eye position and the unit direction through pixel (px, py).
func (c *Camera) Ray(px, py float64) (origin, dir r3.Vec) {
	nx, ny := c.NormalizedPointer(px, py)
	dir = r3.Unit(r3.Vec{
		X: nx * c.tanHalf * c.aspect,
		Y: ny * c.tanHalf,
		Z: -1,
	})
	return c.Position(), dir
}

// NormalizedPointer converts pixel coordinates into [-1, 1] on each axis
// with +Y up. Points outside the viewport are clamped.
func (c *Camera) NormalizedPointer(px, py float64) (nx, ny float64) {
	if !c.Valid() {
		return 0, 0
	}
	nx = px/float64(c.ViewportW)*2 - 1
	ny = -(py/float64(c.ViewportH))*2 + 1
	return clamp(nx, -1, 1), clamp(ny, -1, 1)
}

// PixelRadius approximates the on-screen radius of a sphere at the given depth.
func (c *Camera) PixelRadius(radius, depth float64) float64 {
	if depth <= 0 || !c.Valid() {
		return 0
	}
	return radius / (depth * c.tanHalf) * float64(c.ViewportH) / 2
}

// clamp restricts a value to a range.
func clamp(x, min, max float64) float64 {
	if x < min {
		return min
	}
	if x > max {
		return max
	}
	return x
}
