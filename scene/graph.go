package scene

import (
	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/molview/components"
	"github.com/pthm-cable/molview/molecule"
)

// Counts tallies the renderable primitives of a graph.
type Counts struct {
	Spheres   int // Solid atom spheres
	Glows     int // Translucent halos
	Cylinders int // Bonds
}

// Primitives is the total number of renderable meshes.
func (c Counts) Primitives() int {
	return c.Spheres + c.Glows + c.Cylinders
}

// Graph is the geometry of one built molecule. It is valid until the
// owning Builder builds another molecule or is disposed.
type Graph struct {
	Molecule *molecule.Molecule

	builder  *Builder
	atoms    []ecs.Entity
	halos    []ecs.Entity
	bonds    []ecs.Entity
	disposed bool
}

// Counts returns the primitive counts of the graph.
func (g *Graph) Counts() Counts {
	return Counts{Spheres: len(g.atoms), Glows: len(g.halos), Cylinders: len(g.bonds)}
}

// Primitives returns the total number of renderable meshes.
func (g *Graph) Primitives() int {
	return g.Counts().Primitives()
}

// Disposed reports whether the graph's entities have been removed.
func (g *Graph) Disposed() bool {
	return g.disposed
}

// Atom returns the transform and sphere of the i-th solid atom.
func (g *Graph) Atom(i int) (*components.Transform, *components.Sphere) {
	tr, sp, _ := g.builder.atomMap.Get(g.atoms[i])
	return tr, sp
}

// Glow returns the transform and sphere of the i-th halo.
func (g *Graph) Glow(i int) (*components.Transform, *components.Sphere) {
	tr, sp, _ := g.builder.haloMap.Get(g.halos[i])
	return tr, sp
}

// Bond returns the transform and cylinder of the i-th bond.
func (g *Graph) Bond(i int) (*components.Transform, *components.Cylinder) {
	tr, cyl, _ := g.builder.bondMap.Get(g.bonds[i])
	return tr, cyl
}
