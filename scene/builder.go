// Package scene turns catalog molecules into renderable geometry.
//
// Each viewer owns one Builder. The Builder keeps the current molecule's
// spheres and cylinders as entities in an ark ECS world; building a new
// molecule removes every entity of the previous one before creating the
// next, so nothing leaks across selection changes.
package scene

import (
	"fmt"
	"math"

	"github.com/mlange-42/ark/ecs"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/pthm-cable/molview/components"
	"github.com/pthm-cable/molview/config"
	"github.com/pthm-cable/molview/geom"
	"github.com/pthm-cable/molview/molecule"
)

// Style holds the geometry parameters shared by every molecule.
type Style struct {
	GlowScale   float64        // Glow radius relative to the atom radius
	GlowOpacity float64        // Glow alpha
	BondRadius  float64        // Cylinder radius per unit of bond order, before scale
	BondColor   molecule.Color // Cylinder colour
}

// StyleFromConfig extracts the scene style from the loaded configuration.
func StyleFromConfig(cfg *config.Config) Style {
	return Style{
		GlowScale:   cfg.Scene.GlowScale,
		GlowOpacity: cfg.Scene.GlowOpacity,
		BondRadius:  cfg.Scene.BondRadius,
		BondColor:   cfg.Scene.BondColor,
	}
}

// DefaultStyle returns the style of the embedded default configuration.
func DefaultStyle() Style {
	return StyleFromConfig(config.Defaults())
}

// Builder owns the ECS world holding the current molecule's geometry.
type Builder struct {
	world *ecs.World
	style Style

	atomMap *ecs.Map3[components.Transform, components.Sphere, components.Atom]
	haloMap *ecs.Map3[components.Transform, components.Sphere, components.Halo]
	bondMap *ecs.Map3[components.Transform, components.Cylinder, components.Bond]

	atomFilter *ecs.Filter3[components.Transform, components.Sphere, components.Atom]
	haloFilter *ecs.Filter2[components.Sphere, components.Halo]
	bondFilter *ecs.Filter2[components.Cylinder, components.Bond]

	current *Graph
}

// NewBuilder creates a builder with an empty world.
func NewBuilder(style Style) *Builder {
	world := ecs.NewWorld()
	return &Builder{
		world: world,
		style: style,

		atomMap: ecs.NewMap3[components.Transform, components.Sphere, components.Atom](world),
		haloMap: ecs.NewMap3[components.Transform, components.Sphere, components.Halo](world),
		bondMap: ecs.NewMap3[components.Transform, components.Cylinder, components.Bond](world),

		atomFilter: ecs.NewFilter3[components.Transform, components.Sphere, components.Atom](world),
		haloFilter: ecs.NewFilter2[components.Sphere, components.Halo](world),
		bondFilter: ecs.NewFilter2[components.Cylinder, components.Bond](world),
	}
}

// Style returns the builder's geometry style.
func (b *Builder) Style() Style {
	return b.style
}

// Current returns the most recently built graph, or nil.
func (b *Builder) Current() *Graph {
	return b.current
}

// Build disposes the previous graph and creates geometry for m.
//
// A bond referencing an atom outside m.Atoms is a catalog authoring error
// and panics; catalogs are validated on load so this only fires for
// molecules constructed in code.
func (b *Builder) Build(m *molecule.Molecule) *Graph {
	b.Dispose()

	scale := m.Scale
	g := &Graph{
		builder:  b,
		Molecule: m,
		atoms:    make([]ecs.Entity, 0, len(m.Atoms)),
		halos:    make([]ecs.Entity, 0, len(m.Atoms)),
		bonds:    make([]ecs.Entity, 0, len(m.Bonds)),
	}
	b.current = g

	for i, a := range m.Atoms {
		center := r3.Scale(scale, a.Position)
		radius := a.Radius * scale

		tr := components.Transform{Position: center, Orientation: geom.Identity()}
		solid := components.Sphere{Radius: radius, Color: a.Color, Opacity: 1}
		tag := components.Atom{Index: i, Base: center}
		g.atoms = append(g.atoms, b.atomMap.NewEntity(&tr, &solid, &tag))

		htr := components.Transform{Position: center, Orientation: geom.Identity()}
		glow := components.Sphere{Radius: radius * b.style.GlowScale, Color: a.Color, Opacity: b.style.GlowOpacity}
		halo := components.Halo{Index: i}
		g.halos = append(g.halos, b.haloMap.NewEntity(&htr, &glow, &halo))
	}

	n := len(m.Atoms)
	for i, bond := range m.Bonds {
		if bond.From < 0 || bond.From >= n || bond.To < 0 || bond.To >= n {
			b.Dispose()
			panic(fmt.Sprintf("scene: molecule %q bond %d (%d-%d) references atom outside [0, %d)",
				m.Name, i, bond.From, bond.To, n))
		}
		start := r3.Scale(scale, m.Atoms[bond.From].Position)
		end := r3.Scale(scale, m.Atoms[bond.To].Position)
		delta := r3.Sub(end, start)
		length := r3.Norm(delta)

		orientation := geom.Identity()
		if length > 0 {
			orientation = geom.Between(geom.Up, delta)
		}

		tr := components.Transform{
			Position:    r3.Scale(0.5, r3.Add(start, end)),
			Orientation: orientation,
		}
		cyl := components.Cylinder{
			Radius: b.style.BondRadius * float64(bond.Order) * scale,
			Length: length,
			Color:  b.style.BondColor,
		}
		tag := components.Bond{From: bond.From, To: bond.To, Order: bond.Order}
		g.bonds = append(g.bonds, b.bondMap.NewEntity(&tr, &cyl, &tag))
	}

	return g
}

// Dispose removes every entity of the current graph. Safe to call twice.
func (b *Builder) Dispose() {
	if b.current == nil {
		return
	}
	g := b.current
	for _, list := range [][]ecs.Entity{g.atoms, g.halos, g.bonds} {
		for _, e := range list {
			if b.world.Alive(e) {
				b.world.RemoveEntity(e)
			}
		}
	}
	g.atoms, g.halos, g.bonds = nil, nil, nil
	g.disposed = true
	b.current = nil
}

// Live counts the entities currently in the world by kind.
func (b *Builder) Live() Counts {
	var c Counts
	aq := b.atomFilter.Query()
	for aq.Next() {
		c.Spheres++
	}
	hq := b.haloFilter.Query()
	for hq.Next() {
		c.Glows++
	}
	bq := b.bondFilter.Query()
	for bq.Next() {
		c.Cylinders++
	}
	return c
}

// Bob offsets every solid atom vertically from its stored base position:
// y = base.y + amplitude*sin(now*frequency + index). Glow halos stay put.
func (b *Builder) Bob(now, amplitude, frequency float64) {
	query := b.atomFilter.Query()
	for query.Next() {
		tr, _, atom := query.Get()
		tr.Position = atom.Base
		tr.Position.Y += amplitude * math.Sin(now*frequency+float64(atom.Index))
	}
}
