// Package components defines ECS components for the molecule scene.
package components

import "gonum.org/v1/gonum/spatial/r3"

// Atom tags the solid sphere of a catalog atom.
// Base is the unanimated model-space centre; per-frame bobbing is
// always computed from it so the position never drifts.
type Atom struct {
	Index int // Catalog index, also the bob phase offset
	Base  r3.Vec
}

// Halo tags the translucent glow sphere drawn around an atom.
type Halo struct {
	Index int // Catalog index of the atom it surrounds
}

// Bond tags a cylinder joining two atoms.
type Bond struct {
	From  int
	To    int
	Order int
}
