package molecule

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"gonum.org/v1/gonum/spatial/r3"
)

// ParseSDF reads the first record of an MDL V2000 molfile/SDF stream.
// Element colours and radii come from the default element styles, the
// molecule is recentred on its centroid, and 1-based bond indices are
// converted to 0-based. A bond that references a missing atom is an error.
func ParseSDF(r io.Reader, name string) (*Molecule, error) {
	var lines []string
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		line := sc.Text()
		if strings.HasPrefix(line, "$$$$") {
			break
		}
		lines = append(lines, line)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("reading sdf: %w", err)
	}
	if len(lines) < 4 {
		return nil, fmt.Errorf("sdf: too short, got %d lines", len(lines))
	}

	nAtoms, nBonds, err := parseCounts(lines[3])
	if err != nil {
		return nil, err
	}
	if len(lines) < 4+nAtoms+nBonds {
		return nil, fmt.Errorf("sdf: counts line declares %d atoms and %d bonds but only %d lines follow", nAtoms, nBonds, len(lines)-4)
	}

	title := strings.TrimSpace(lines[0])
	if name == "" {
		name = title
	}
	m := &Molecule{
		Name:        name,
		Description: title,
		Scale:       1,
		Atoms:       make([]Atom, 0, nAtoms),
		Bonds:       make([]Bond, 0, nBonds),
	}

	for i := 0; i < nAtoms; i++ {
		line := lines[4+i]
		fields := strings.Fields(line)
		if len(fields) < 4 {
			return nil, fmt.Errorf("sdf: atom line %d: want x y z element, got %q", i+1, line)
		}
		var p [3]float64
		for k := 0; k < 3; k++ {
			v, err := strconv.ParseFloat(fields[k], 64)
			if err != nil {
				return nil, fmt.Errorf("sdf: atom line %d: %w", i+1, err)
			}
			p[k] = v
		}
		style := StyleFor(fields[3])
		m.Atoms = append(m.Atoms, Atom{
			Element:  normalizeSymbol(fields[3]),
			Position: r3.Vec{X: p[0], Y: p[1], Z: p[2]},
			Color:    style.Color,
			Radius:   style.Radius,
		})
	}

	for i := 0; i < nBonds; i++ {
		line := lines[4+nAtoms+i]
		fields := strings.Fields(line)
		if len(fields) < 3 {
			return nil, fmt.Errorf("sdf: bond line %d: want a b order, got %q", i+1, line)
		}
		var v [3]int
		for k := 0; k < 3; k++ {
			n, err := strconv.Atoi(fields[k])
			if err != nil {
				return nil, fmt.Errorf("sdf: bond line %d: %w", i+1, err)
			}
			v[k] = n
		}
		order := v[2]
		// 4 is aromatic in V2000; draw it as a single bond.
		if order < 1 || order > 3 {
			order = 1
		}
		m.Bonds = append(m.Bonds, Bond{From: v[0] - 1, To: v[1] - 1, Order: order})
	}

	m = m.Recenter()
	if err := m.Validate(); err != nil {
		return nil, err
	}
	return m, nil
}

// parseCounts reads the atom and bond counts. V2000 uses fixed 3-column
// fields that may run together for large counts, so the fixed columns are
// tried before falling back to whitespace splitting. Negative counts are
// rejected.
func parseCounts(line string) (atoms, bonds int, err error) {
	atoms, bonds, err = readCounts(line)
	if err != nil {
		return 0, 0, err
	}
	if atoms < 0 || bonds < 0 {
		return 0, 0, fmt.Errorf("sdf: negative counts %d atoms, %d bonds", atoms, bonds)
	}
	return atoms, bonds, nil
}

func readCounts(line string) (atoms, bonds int, err error) {
	if len(line) >= 6 {
		a, errA := strconv.Atoi(strings.TrimSpace(line[0:3]))
		b, errB := strconv.Atoi(strings.TrimSpace(line[3:6]))
		if errA == nil && errB == nil {
			return a, b, nil
		}
	}
	fields := strings.Fields(line)
	if len(fields) < 2 {
		return 0, 0, fmt.Errorf("sdf: invalid counts line %q", line)
	}
	if atoms, err = strconv.Atoi(fields[0]); err != nil {
		return 0, 0, fmt.Errorf("sdf: counts line: %w", err)
	}
	if bonds, err = strconv.Atoi(fields[1]); err != nil {
		return 0, 0, fmt.Errorf("sdf: counts line: %w", err)
	}
	return atoms, bonds, nil
}
