package molecule

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gonum.org/v1/gonum/spatial/r3"
	"gopkg.in/yaml.v3"
)

//go:embed catalog.yaml
var builtinYAML []byte

// Catalog is an ordered, read-only list of molecules.
type Catalog struct {
	molecules []*Molecule
	byName    map[string]int
}

// NewCatalog validates the molecules and builds a catalog from them.
func NewCatalog(molecules []*Molecule) (*Catalog, error) {
	c := &Catalog{
		molecules: molecules,
		byName:    make(map[string]int, len(molecules)),
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	for i, m := range molecules {
		c.byName[m.Name] = i
	}
	return c, nil
}

// Validate checks every molecule and name uniqueness.
func (c *Catalog) Validate() error {
	if len(c.molecules) == 0 {
		return errors.New("catalog is empty")
	}
	seen := make(map[string]bool, len(c.molecules))
	for _, m := range c.molecules {
		if err := m.Validate(); err != nil {
			return err
		}
		if seen[m.Name] {
			return fmt.Errorf("duplicate molecule name %q", m.Name)
		}
		seen[m.Name] = true
	}
	return nil
}

// Len returns the number of molecules.
func (c *Catalog) Len() int { return len(c.molecules) }

// At returns the i-th molecule.
func (c *Catalog) At(i int) *Molecule { return c.molecules[i] }

// All returns the molecules in catalog order. The slice must not be modified.
func (c *Catalog) All() []*Molecule { return c.molecules }

// Index returns the position of the named molecule.
func (c *Catalog) Index(name string) (int, bool) {
	i, ok := c.byName[name]
	return i, ok
}

// Lookup returns the named molecule.
func (c *Catalog) Lookup(name string) (*Molecule, bool) {
	i, ok := c.byName[name]
	if !ok {
		return nil, false
	}
	return c.molecules[i], true
}

// Names returns molecule names in catalog order.
func (c *Catalog) Names() []string {
	names := make([]string, len(c.molecules))
	for i, m := range c.molecules {
		names[i] = m.Name
	}
	return names
}

var builtin *Catalog

func init() {
	c, err := Parse(builtinYAML)
	if err != nil {
		panic(fmt.Sprintf("molecule: embedded catalog: %v", err))
	}
	builtin = c
}

// Builtin returns the embedded catalog.
func Builtin() *Catalog { return builtin }

// Merge returns a catalog with overlay entries replacing same-named base
// entries in place; new names are appended in overlay order.
func Merge(base, overlay *Catalog) (*Catalog, error) {
	out := make([]*Molecule, len(base.molecules))
	copy(out, base.molecules)
	for _, m := range overlay.molecules {
		if i, ok := base.byName[m.Name]; ok {
			out[i] = m
			continue
		}
		out = append(out, m)
	}
	return NewCatalog(out)
}

// LoadFile reads a catalog from disk. YAML files may hold any number of
// molecules; .sdf and .mol files hold a single molecule named after the file.
func LoadFile(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading catalog: %w", err)
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".sdf", ".mol":
		name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
		m, err := ParseSDF(bytes.NewReader(data), name)
		if err != nil {
			return nil, fmt.Errorf("parsing %s: %w", path, err)
		}
		return NewCatalog([]*Molecule{m})
	default:
		c, err := Parse(data)
		if err != nil {
			return nil, fmt.Errorf("parsing %s: %w", path, err)
		}
		return c, nil
	}
}

// Load returns the builtin catalog, merged with the catalog at path when
// path is non-empty.
func Load(path string) (*Catalog, error) {
	if path == "" {
		return Builtin(), nil
	}
	user, err := LoadFile(path)
	if err != nil {
		return nil, err
	}
	return Merge(Builtin(), user)
}

// catalogFile is the YAML layout of a catalog.
type catalogFile struct {
	Molecules []moleculeFile `yaml:"molecules"`
}

type moleculeFile struct {
	Name        string     `yaml:"name"`
	Description string     `yaml:"description,omitempty"`
	Scale       float64    `yaml:"scale,omitempty"`
	Atoms       []atomFile `yaml:"atoms"`
	Bonds       []bondFile `yaml:"bonds,omitempty"`
}

type atomFile struct {
	Element  string     `yaml:"element"`
	Position [3]float64 `yaml:"position,flow"`
	Color    *Color     `yaml:"color,omitempty"`
	Radius   float64    `yaml:"radius,omitempty"`
}

type bondFile struct {
	From  int `yaml:"from"`
	To    int `yaml:"to"`
	Order int `yaml:"order,omitempty"`
}

// Parse decodes and validates a YAML catalog. Missing colours and radii
// fall back to element defaults, a missing scale to 1, a missing bond order to 1.
func Parse(data []byte) (*Catalog, error) {
	var f catalogFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("decoding catalog: %w", err)
	}
	molecules := make([]*Molecule, 0, len(f.Molecules))
	for _, mf := range f.Molecules {
		molecules = append(molecules, mf.toMolecule())
	}
	return NewCatalog(molecules)
}

func (mf moleculeFile) toMolecule() *Molecule {
	m := &Molecule{
		Name:        mf.Name,
		Description: mf.Description,
		Scale:       mf.Scale,
		Atoms:       make([]Atom, len(mf.Atoms)),
		Bonds:       make([]Bond, len(mf.Bonds)),
	}
	if m.Scale == 0 {
		m.Scale = 1
	}
	for i, af := range mf.Atoms {
		style := StyleFor(af.Element)
		a := Atom{
			Element:  af.Element,
			Position: r3.Vec{X: af.Position[0], Y: af.Position[1], Z: af.Position[2]},
			Color:    style.Color,
			Radius:   af.Radius,
		}
		if af.Color != nil {
			a.Color = *af.Color
		}
		if a.Radius == 0 {
			a.Radius = style.Radius
		}
		m.Atoms[i] = a
	}
	for i, bf := range mf.Bonds {
		b := Bond{From: bf.From, To: bf.To, Order: bf.Order}
		if b.Order == 0 {
			b.Order = 1
		}
		m.Bonds[i] = b
	}
	return m
}

func fileFromMolecule(m *Molecule) moleculeFile {
	mf := moleculeFile{
		Name:        m.Name,
		Description: m.Description,
		Scale:       m.Scale,
		Atoms:       make([]atomFile, len(m.Atoms)),
		Bonds:       make([]bondFile, len(m.Bonds)),
	}
	for i, a := range m.Atoms {
		c := a.Color
		mf.Atoms[i] = atomFile{
			Element:  a.Element,
			Position: [3]float64{a.Position.X, a.Position.Y, a.Position.Z},
			Color:    &c,
			Radius:   a.Radius,
		}
	}
	for i, b := range m.Bonds {
		mf.Bonds[i] = bondFile{From: b.From, To: b.To, Order: b.Order}
	}
	return mf
}

// WriteYAML encodes the catalog in the format accepted by Parse.
func (c *Catalog) WriteYAML(w io.Writer) error {
	f := catalogFile{Molecules: make([]moleculeFile, len(c.molecules))}
	for i, m := range c.molecules {
		f.Molecules[i] = fileFromMolecule(m)
	}
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(&f); err != nil {
		return fmt.Errorf("encoding catalog: %w", err)
	}
	return enc.Close()
}
