// Package molecule defines the ball-and-stick molecule catalog shown by the viewer.
package molecule

import (
	"errors"
	"fmt"

	"gonum.org/v1/gonum/spatial/r3"
)

// Atom is a typed element at a model-space position.
type Atom struct {
	Element  string
	Position r3.Vec
	Color    Color
	Radius   float64
}

// Bond joins two atoms of the owning molecule by index.
// Order sets the rendered thickness.
type Bond struct {
	From  int
	To    int
	Order int
}

// Molecule is one catalog entry. Positions and radii are multiplied by
// Scale at render time.
type Molecule struct {
	Name        string
	Description string
	Scale       float64
	Atoms       []Atom
	Bonds       []Bond
}

// Validate reports authoring errors in the molecule definition.
func (m *Molecule) Validate() error {
	if m.Name == "" {
		return errors.New("molecule has no name")
	}
	if m.Scale <= 0 {
		return fmt.Errorf("molecule %q: scale must be positive, got %g", m.Name, m.Scale)
	}
	if len(m.Atoms) == 0 {
		return fmt.Errorf("molecule %q: no atoms", m.Name)
	}
	for i, a := range m.Atoms {
		if a.Element == "" {
			return fmt.Errorf("molecule %q: atom %d has no element", m.Name, i)
		}
		if a.Radius <= 0 {
			return fmt.Errorf("molecule %q: atom %d (%s) radius must be positive, got %g", m.Name, i, a.Element, a.Radius)
		}
	}
	n := len(m.Atoms)
	for i, b := range m.Bonds {
		if b.From < 0 || b.From >= n || b.To < 0 || b.To >= n {
			return fmt.Errorf("molecule %q: bond %d (%d-%d) references atom outside [0, %d)", m.Name, i, b.From, b.To, n)
		}
		if b.From == b.To {
			return fmt.Errorf("molecule %q: bond %d joins atom %d to itself", m.Name, i, b.From)
		}
		if b.Order < 1 {
			return fmt.Errorf("molecule %q: bond %d order must be >= 1, got %d", m.Name, i, b.Order)
		}
	}
	return nil
}

// Centroid returns the mean atom position in model space.
func (m *Molecule) Centroid() r3.Vec {
	var c r3.Vec
	if len(m.Atoms) == 0 {
		return c
	}
	for _, a := range m.Atoms {
		c = r3.Add(c, a.Position)
	}
	return r3.Scale(1/float64(len(m.Atoms)), c)
}

// Recenter returns a copy of m with atom positions shifted so the centroid
// sits at the origin.
func (m *Molecule) Recenter() *Molecule {
	c := m.Centroid()
	out := *m
	out.Atoms = make([]Atom, len(m.Atoms))
	for i, a := range m.Atoms {
		a.Position = r3.Sub(a.Position, c)
		out.Atoms[i] = a
	}
	out.Bonds = append([]Bond(nil), m.Bonds...)
	return &out
}
