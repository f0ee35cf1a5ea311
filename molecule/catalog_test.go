package molecule

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuiltinCatalog(t *testing.T) {
	c := Builtin()
	require.Equal(t, 4, c.Len())
	assert.Equal(t, []string{"DNA Fragment", "Water", "Benzene", "Ethanol"}, c.Names())

	dna, ok := c.Lookup("DNA Fragment")
	require.True(t, ok)
	assert.Len(t, dna.Atoms, 15)
	assert.Len(t, dna.Bonds, 14)
	assert.Equal(t, 1.0, dna.Scale)
	assert.Equal(t, MustColor("#FFA500"), dna.Atoms[7].Color)
}

func TestBuiltinBondIndicesInBounds(t *testing.T) {
	for _, m := range Builtin().All() {
		for i, b := range m.Bonds {
			if b.From < 0 || b.From >= len(m.Atoms) || b.To < 0 || b.To >= len(m.Atoms) {
				t.Errorf("%s: bond %d (%d-%d) out of bounds for %d atoms", m.Name, i, b.From, b.To, len(m.Atoms))
			}
		}
	}
}

func TestParseRejectsBadBondIndex(t *testing.T) {
	data := []byte(`
molecules:
  - name: Broken
    atoms:
      - {element: C, position: [0, 0, 0]}
      - {element: O, position: [1, 0, 0]}
    bonds:
      - {from: 0, to: 2}
`)
	_, err := Parse(data)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "outside [0, 2)")
}

func TestParseValidation(t *testing.T) {
	cases := map[string]string{
		"self bond": `
molecules:
  - name: Loop
    atoms: [{element: C, position: [0, 0, 0]}]
    bonds: [{from: 0, to: 0}]
`,
		"duplicate": `
molecules:
  - name: Same
    atoms: [{element: C, position: [0, 0, 0]}]
  - name: Same
    atoms: [{element: C, position: [0, 0, 0]}]
`,
		"negative scale": `
molecules:
  - name: Shrunk
    scale: -1
    atoms: [{element: C, position: [0, 0, 0]}]
`,
		"no atoms": `
molecules:
  - name: Empty
`,
		"empty": `molecules: []`,
		"bad color": `
molecules:
  - name: Tinted
    atoms: [{element: C, position: [0, 0, 0], color: "blue"}]
`,
	}
	for name, data := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Parse([]byte(data))
			assert.Error(t, err)
		})
	}
}

func TestParseDefaults(t *testing.T) {
	c, err := Parse([]byte(`
molecules:
  - name: CO
    atoms:
      - {element: c, position: [0, 0, 0]}
      - {element: O, position: [1.1, 0, 0], radius: 0.4}
    bonds:
      - {from: 0, to: 1}
`))
	require.NoError(t, err)
	m := c.At(0)
	assert.Equal(t, 1.0, m.Scale)
	assert.Equal(t, StyleFor("C").Color, m.Atoms[0].Color)
	assert.Equal(t, StyleFor("C").Radius, m.Atoms[0].Radius)
	assert.Equal(t, 0.4, m.Atoms[1].Radius)
	assert.Equal(t, 1, m.Bonds[0].Order)
}

func TestMergeReplacesAndAppends(t *testing.T) {
	overlay, err := Parse([]byte(`
molecules:
  - name: Water
    description: heavy water
    atoms:
      - {element: O, position: [0, 0, 0]}
  - name: Helium
    atoms:
      - {element: He, position: [0, 0, 0]}
`))
	require.NoError(t, err)

	merged, err := Merge(Builtin(), overlay)
	require.NoError(t, err)
	assert.Equal(t, []string{"DNA Fragment", "Water", "Benzene", "Ethanol", "Helium"}, merged.Names())

	water, _ := merged.Lookup("Water")
	assert.Equal(t, "heavy water", water.Description)

	// The builtin catalog itself is untouched.
	orig, _ := Builtin().Lookup("Water")
	assert.Len(t, orig.Atoms, 3)
}

func TestWriteYAMLRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Builtin().WriteYAML(&buf))

	again, err := Parse(buf.Bytes())
	require.NoError(t, err)
	require.Equal(t, Builtin().Names(), again.Names())
	for i, m := range Builtin().All() {
		assert.Equal(t, m, again.At(i), m.Name)
	}
}

func TestLoadFileYAMLAndSDF(t *testing.T) {
	dir := t.TempDir()

	yamlPath := filepath.Join(dir, "extra.yaml")
	require.NoError(t, os.WriteFile(yamlPath, []byte(`
molecules:
  - name: Hydrogen
    atoms:
      - {element: H, position: [-0.37, 0, 0]}
      - {element: H, position: [0.37, 0, 0]}
    bonds: [{from: 0, to: 1}]
`), 0644))
	c, err := Load(yamlPath)
	require.NoError(t, err)
	assert.Equal(t, 5, c.Len())

	sdfPath := filepath.Join(dir, "methanol.sdf")
	require.NoError(t, os.WriteFile(sdfPath, []byte(methanolSDF), 0644))
	c, err = LoadFile(sdfPath)
	require.NoError(t, err)
	m, ok := c.Lookup("methanol")
	require.True(t, ok)
	assert.Len(t, m.Atoms, 6)

	_, err = LoadFile(filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err)
}

func TestLegend(t *testing.T) {
	dna, _ := Builtin().Lookup("DNA Fragment")
	legend := Legend(dna)
	var names []string
	for _, e := range legend {
		names = append(names, e.Name)
	}
	assert.Equal(t, "Carbon,Nitrogen,Oxygen,Phosphorus", strings.Join(names, ","))
	assert.Equal(t, MustColor("#4A90E2"), legend[0].Color)
}

func TestRecenter(t *testing.T) {
	dna, _ := Builtin().Lookup("DNA Fragment")
	c := dna.Recenter().Centroid()
	assert.InDelta(t, 0, c.X, 1e-9)
	assert.InDelta(t, 0, c.Y, 1e-9)
	assert.InDelta(t, 0, c.Z, 1e-9)
}
