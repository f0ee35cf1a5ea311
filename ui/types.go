// Package ui draws the viewer's screen-space overlays: caption, legend,
// status line and the raygui control panel. Drawing is separated from the
// viewer: panels return Actions for the app to apply.
package ui

import rl "github.com/gen2brain/raylib-go/raylib"

// PanelAnchor specifies where a panel is anchored on screen.
type PanelAnchor int

const (
	AnchorTopLeft PanelAnchor = iota
	AnchorTopRight
	AnchorBottomLeft
	AnchorBottomRight
)

// Place returns the top-left corner of a w x h panel anchored inside a
// screen of sw x sh with the given margin.
func (a PanelAnchor) Place(w, h, sw, sh, margin int32) (x, y int32) {
	switch a {
	case AnchorTopRight:
		return sw - w - margin, margin
	case AnchorBottomLeft:
		return margin, sh - h - margin
	case AnchorBottomRight:
		return sw - w - margin, sh - h - margin
	default:
		return margin, margin
	}
}

// Theme holds UI styling constants.
type Theme struct {
	PanelBg        rl.Color
	PanelBorder    rl.Color
	TitleColor     rl.Color
	SectionHeader  rl.Color
	LabelColor     rl.Color
	ValueColor     rl.Color
	HintColor      rl.Color
	BarBg          rl.Color
	BarFill        rl.Color
	Favorite       rl.Color
	Padding        int32
	LineHeight     int32
	LabelWidth     int32
	BarHeight      int32
	FontSize       int32
	HeaderFontSize int32
	TitleFontSize  int32
}

// DefaultTheme returns the default UI theme, tuned for the dark navy
// scene background.
func DefaultTheme() Theme {
	return Theme{
		PanelBg:        rl.Color{R: 14, G: 19, B: 32, A: 220},
		PanelBorder:    rl.Color{R: 50, G: 64, B: 90, A: 255},
		TitleColor:     rl.Color{R: 232, G: 236, B: 244, A: 255},
		SectionHeader:  rl.Color{R: 74, G: 144, B: 226, A: 255},
		LabelColor:     rl.Color{R: 160, G: 168, B: 184, A: 255},
		ValueColor:     rl.Color{R: 220, G: 224, B: 232, A: 255},
		HintColor:      rl.Color{R: 110, G: 118, B: 134, A: 255},
		BarBg:          rl.Color{R: 30, G: 36, B: 52, A: 255},
		BarFill:        rl.Color{R: 74, G: 144, B: 226, A: 255},
		Favorite:       rl.Color{R: 255, G: 209, B: 35, A: 255},
		Padding:        10,
		LineHeight:     18,
		LabelWidth:     70,
		BarHeight:      10,
		FontSize:       14,
		HeaderFontSize: 14,
		TitleFontSize:  24,
	}
}
