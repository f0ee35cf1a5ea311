package scene

import (
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/pthm-cable/molview/geom"
	"github.com/pthm-cable/molview/molecule"
)

// SphereDraw is a sphere in world space.
type SphereDraw struct {
	Center  r3.Vec
	Radius  float64
	Color   molecule.Color
	Opacity float64
}

// CylinderDraw is a bond cylinder in world space.
type CylinderDraw struct {
	Center      r3.Vec
	Axis        r3.Vec      // Unit long axis
	Orientation r3.Rotation // Maps the up axis onto Axis
	Radius      float64
	Length      float64
	Color       molecule.Color
}

// Start returns the centre of the cylinder's base cap.
func (c CylinderDraw) Start() r3.Vec {
	return r3.Sub(c.Center, r3.Scale(c.Length/2, c.Axis))
}

// End returns the centre of the cylinder's top cap.
func (c CylinderDraw) End() r3.Vec {
	return r3.Add(c.Center, r3.Scale(c.Length/2, c.Axis))
}

// Caption is the outbound text describing the selected molecule.
type Caption struct {
	Name        string
	Description string
}

// Frame is one composed draw list, ready for a backend.
// Spheres are the solid atoms; Glows are drawn after them with alpha.
type Frame struct {
	Index      uint64
	Time       float64
	Width      int
	Height     int
	Background molecule.Color

	Spheres   []SphereDraw
	Glows     []SphereDraw
	Cylinders []CylinderDraw

	Particles       []r3.Vec
	ParticleSize    float64
	ParticleColor   molecule.Color
	ParticleOpacity float64

	Lights    []Light
	Shininess float64
	Specular  float64

	Caption Caption
	Legend  []molecule.LegendEntry
}

// Reset clears the frame's draw lists keeping their capacity.
func (f *Frame) Reset() {
	f.Spheres = f.Spheres[:0]
	f.Glows = f.Glows[:0]
	f.Cylinders = f.Cylinders[:0]
	f.Particles = f.Particles[:0]
	f.Lights = f.Lights[:0]
	f.Legend = f.Legend[:0]
}

// Compose writes the world-space draw list of g, rotated by rot, plus the
// environment into dst. A nil dst allocates a new frame. A nil graph
// yields a frame with only the environment.
func Compose(g *Graph, env *Environment, rot r3.Rotation, dst *Frame) *Frame {
	if dst == nil {
		dst = &Frame{}
	}
	dst.Reset()

	if env != nil {
		dst.Background = env.Background
		dst.Particles = env.ParticlePositions(dst.Particles)
		dst.ParticleSize = env.Particles.Size
		dst.ParticleColor = env.Particles.Color
		dst.ParticleOpacity = env.Particles.Opacity
		dst.Lights = append(dst.Lights, env.Lights...)
		dst.Shininess = env.Shininess
		dst.Specular = env.Specular
	}

	if g == nil || g.disposed {
		dst.Caption = Caption{}
		return dst
	}

	for i := range g.atoms {
		tr, sp := g.Atom(i)
		dst.Spheres = append(dst.Spheres, SphereDraw{
			Center:  rot.Rotate(tr.Position),
			Radius:  sp.Radius,
			Color:   sp.Color,
			Opacity: sp.Opacity,
		})
	}
	for i := range g.halos {
		tr, sp := g.Glow(i)
		dst.Glows = append(dst.Glows, SphereDraw{
			Center:  rot.Rotate(tr.Position),
			Radius:  sp.Radius,
			Color:   sp.Color,
			Opacity: sp.Opacity,
		})
	}
	for i := range g.bonds {
		tr, cyl := g.Bond(i)
		orientation := geom.Compose(rot, tr.Orientation)
		dst.Cylinders = append(dst.Cylinders, CylinderDraw{
			Center:      rot.Rotate(tr.Position),
			Axis:        orientation.Rotate(geom.Up),
			Orientation: orientation,
			Radius:      cyl.Radius,
			Length:      cyl.Length,
			Color:       cyl.Color,
		})
	}

	dst.Caption = Caption{Name: g.Molecule.Name, Description: g.Molecule.Description}
	dst.Legend = append(dst.Legend, molecule.Legend(g.Molecule)...)
	return dst
}
