package ui

import (
	"fmt"

	gui "github.com/gen2brain/raylib-go/raygui"
	rl "github.com/gen2brain/raylib-go/raylib"
)

// ControlsData is the viewer state the controls panel reflects.
type ControlsData struct {
	Molecules  []string
	Favorites  []bool // Parallel to Molecules
	Selected   int
	AutoRotate bool
	Speed      float64
	MinSpeed   float64
	MaxSpeed   float64
}

// Actions are the user requests collected from one frame of the panel.
type Actions struct {
	Select         int // Catalog index, -1 for none
	ToggleAuto     bool
	SpeedUp        bool
	SlowDown       bool
	SetSpeed       bool
	Speed          float64
	Reset          bool
	ToggleFavorite bool
}

// None reports whether no action was requested.
func (a Actions) None() bool {
	return a.Select < 0 && !a.ToggleAuto && !a.SpeedUp && !a.SlowDown &&
		!a.SetSpeed && !a.Reset && !a.ToggleFavorite
}

// ControlsPanel renders the molecule selector and rotation controls.
type ControlsPanel struct {
	renderer *Renderer
	x, y     int32
	width    int32
}

// NewControlsPanel creates a new controls panel.
func NewControlsPanel(x, y, width int32) *ControlsPanel {
	return &ControlsPanel{
		renderer: NewRenderer(),
		x:        x,
		y:        y,
		width:    width,
	}
}

// Contains reports whether a screen point lies over the panel for the
// given data, so pointer motion there is not read as rotation input.
func (c *ControlsPanel) Contains(px, py float32, d ControlsData) bool {
	h := c.height(d)
	return px >= float32(c.x) && px <= float32(c.x+c.width) &&
		py >= float32(c.y) && py <= float32(c.y+h)
}

func (c *ControlsPanel) height(d ControlsData) int32 {
	t := c.renderer.Theme
	rows := int32(len(d.Molecules))
	return t.Padding*2 + t.LineHeight + rows*26 + 4 + t.LineHeight + 30 + t.LineHeight + 24 + 24
}

// Draw renders the panel and returns the requested actions.
func (c *ControlsPanel) Draw(d ControlsData) Actions {
	r := c.renderer
	t := r.Theme
	a := Actions{Select: -1}

	r.DrawPanel(c.x, c.y, c.width, c.height(d))
	x := float32(c.x + t.Padding)
	w := float32(c.width - t.Padding*2)
	y := r.DrawSectionHeader(c.x+t.Padding, c.y+t.Padding, "Molecules")

	for i, name := range d.Molecules {
		label := fmt.Sprintf("%d  %s", i+1, name)
		if i < len(d.Favorites) && d.Favorites[i] {
			label += "  *"
		}
		active := i == d.Selected
		if gui.Toggle(rl.Rectangle{X: x, Y: float32(y), Width: w, Height: 22}, label, active) && !active {
			a.Select = i
		}
		y += 26
	}

	y = r.DrawSectionHeader(c.x+t.Padding, y+4, "Rotation")
	bw := (w - 3*6) / 4
	play := "Pause"
	if !d.AutoRotate {
		play = "Play"
	}
	for i, label := range [4]string{"-", play, "+", "Reset"} {
		bounds := rl.Rectangle{X: x + float32(i)*(bw+6), Y: float32(y), Width: bw, Height: 24}
		if !gui.Button(bounds, label) {
			continue
		}
		switch i {
		case 0:
			a.SlowDown = true
		case 1:
			a.ToggleAuto = true
		case 2:
			a.SpeedUp = true
		case 3:
			a.Reset = true
		}
	}
	y += 30

	y = r.DrawSectionHeader(c.x+t.Padding, y, fmt.Sprintf("Speed %.3f", d.Speed))
	speed := gui.SliderBar(rl.Rectangle{X: x + 30, Y: float32(y), Width: w - 70, Height: 16}, "slow", "fast",
		float32(d.Speed), float32(d.MinSpeed), float32(d.MaxSpeed))
	if speed != float32(d.Speed) {
		a.SetSpeed = true
		a.Speed = float64(speed)
	}
	y += 24

	if gui.Button(rl.Rectangle{X: x, Y: float32(y), Width: w, Height: 24}, "Toggle favorite") {
		a.ToggleFavorite = true
	}
	return a
}
