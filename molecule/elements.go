package molecule

import "strings"

// ElementStyle is the default display style for an element symbol.
type ElementStyle struct {
	Symbol string
	Name   string
	Color  Color
	Radius float64
}

// elementStyles follows the viewer palette: carbon blue, nitrogen red,
// oxygen green, phosphorus orange. Radii are display radii, not covalent.
var elementStyles = map[string]ElementStyle{
	"H":  {Symbol: "H", Name: "Hydrogen", Color: MustColor("#F5F5F5"), Radius: 0.35},
	"C":  {Symbol: "C", Name: "Carbon", Color: MustColor("#4A90E2"), Radius: 0.70},
	"N":  {Symbol: "N", Name: "Nitrogen", Color: MustColor("#E94B3C"), Radius: 0.65},
	"O":  {Symbol: "O", Name: "Oxygen", Color: MustColor("#50C878"), Radius: 0.60},
	"F":  {Symbol: "F", Name: "Fluorine", Color: MustColor("#90E050"), Radius: 0.50},
	"P":  {Symbol: "P", Name: "Phosphorus", Color: MustColor("#FFA500"), Radius: 0.75},
	"S":  {Symbol: "S", Name: "Sulfur", Color: MustColor("#FFD123"), Radius: 0.75},
	"Cl": {Symbol: "Cl", Name: "Chlorine", Color: MustColor("#1FF01F"), Radius: 0.75},
}

var unknownStyle = ElementStyle{Name: "Unknown", Color: MustColor("#C864C8"), Radius: 0.70}

// StyleFor returns the default style for an element symbol. Symbols are
// matched case-insensitively; unknown symbols get a magenta placeholder.
func StyleFor(symbol string) ElementStyle {
	if s, ok := elementStyles[normalizeSymbol(symbol)]; ok {
		return s
	}
	s := unknownStyle
	s.Symbol = symbol
	return s
}

func normalizeSymbol(symbol string) string {
	symbol = strings.TrimSpace(symbol)
	if symbol == "" {
		return ""
	}
	return strings.ToUpper(symbol[:1]) + strings.ToLower(symbol[1:])
}

// LegendEntry is one row of the element legend.
type LegendEntry struct {
	Symbol string
	Name   string
	Color  Color
}

// Legend lists the distinct elements of m in first-appearance order, using
// the colour of the first atom of each element.
func Legend(m *Molecule) []LegendEntry {
	seen := make(map[string]bool)
	var out []LegendEntry
	for _, a := range m.Atoms {
		if seen[a.Element] {
			continue
		}
		seen[a.Element] = true
		out = append(out, LegendEntry{
			Symbol: a.Element,
			Name:   StyleFor(a.Element).Name,
			Color:  a.Color,
		})
	}
	return out
}
