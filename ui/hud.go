package ui

import (
	"fmt"

	"github.com/dustin/go-humanize"
	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/molview/scene"
)

// HUDData holds everything the heads-up display shows besides the frame.
type HUDData struct {
	AutoRotate   bool
	Speed        float64
	MinSpeed     float64
	MaxSpeed     float64
	FPS          int32
	Frame        uint64
	ScreenWidth  int32
	ScreenHeight int32
}

// HUD renders the caption, legend and status line.
type HUD struct {
	renderer *Renderer
}

// NewHUD creates a new HUD renderer.
func NewHUD() *HUD {
	return &HUD{renderer: NewRenderer()}
}

// DrawCaption renders the molecule name and description in the top-left.
func (h *HUD) DrawCaption(c scene.Caption, favorite bool) {
	t := h.renderer.Theme
	x, y := t.Padding*2, t.Padding*2
	if favorite {
		rl.DrawText("*", x, y, t.TitleFontSize, t.Favorite)
		x += rl.MeasureText("* ", t.TitleFontSize)
	}
	rl.DrawText(c.Name, x, y, t.TitleFontSize, t.TitleColor)
	rl.DrawText(c.Description, t.Padding*2, y+t.TitleFontSize+6, t.FontSize, t.LabelColor)
}

// DrawLegend renders the element legend in the bottom-left.
func (h *HUD) DrawLegend(f *scene.Frame, screenH int32) {
	r := h.renderer
	t := r.Theme
	if len(f.Legend) == 0 {
		return
	}
	width := int32(150)
	height := int32(len(f.Legend))*t.LineHeight + t.LineHeight + t.Padding*2
	x, y := AnchorBottomLeft.Place(width, height, 0, screenH, t.Padding*2)
	r.DrawPanel(x, y, width, height)

	y = r.DrawSectionHeader(x+t.Padding, y+t.Padding, "Elements")
	for _, e := range f.Legend {
		y = r.DrawLegendEntry(x+t.Padding, y, e)
	}
}

// DrawStatus renders rotation mode, speed and frame rate in the top-right.
func (h *HUD) DrawStatus(d HUDData) {
	t := h.renderer.Theme
	mode := "Manual"
	if d.AutoRotate {
		mode = "Auto"
	}
	text := fmt.Sprintf("%s | %.3f rad/frame | %d FPS", mode, d.Speed, d.FPS)
	w := rl.MeasureText(text, t.FontSize)
	rl.DrawText(text, d.ScreenWidth-w-t.Padding*2, t.Padding*2, t.FontSize, t.LabelColor)
}

// DrawStats renders the primitive counts and frame counter below the status line.
func (h *HUD) DrawStats(f *scene.Frame, d HUDData) {
	r := h.renderer
	t := r.Theme
	width := int32(200)
	height := t.LineHeight*6 + t.Padding*2
	x, y := AnchorTopRight.Place(width, height, d.ScreenWidth, d.ScreenHeight, t.Padding*2)
	y += t.LineHeight + t.Padding
	r.DrawPanel(x, y, width, height)

	y = r.DrawSectionHeader(x+t.Padding, y+t.Padding, "Scene")
	y = r.DrawLabelValue(x+t.Padding, y, "Atoms", humanize.Comma(int64(len(f.Spheres))))
	y = r.DrawLabelValue(x+t.Padding, y, "Bonds", humanize.Comma(int64(len(f.Cylinders))))
	y = r.DrawLabelValue(x+t.Padding, y, "Particles", humanize.Comma(int64(len(f.Particles))))
	y = r.DrawLabelValue(x+t.Padding, y, "Frame", humanize.Comma(int64(d.Frame)))
	r.DrawBar(x+t.Padding, y, "Speed", float32(d.Speed), float32(d.MinSpeed), float32(d.MaxSpeed), width-t.Padding*2)
}

// DrawHelp renders the key bindings centred on screen.
func (h *HUD) DrawHelp(overlays *OverlayRegistry, screenW, screenH int32) {
	r := h.renderer
	t := r.Theme
	lines := [][2]string{
		{"Space", "Toggle auto rotation"},
		{"+ / -", "Faster / slower"},
		{"R", "Reset orientation"},
		{"1-9", "Select molecule"},
		{"F", "Toggle favorite"},
		{"F11", "Fullscreen"},
	}
	for _, o := range overlays.All() {
		lines = append(lines, [2]string{o.KeyLabel, "Show " + o.Name})
	}

	width := int32(300)
	height := int32(len(lines)+1)*t.LineHeight + t.Padding*2
	x, y := (screenW-width)/2, (screenH-height)/2
	r.DrawPanel(x, y, width, height)
	y = r.DrawSectionHeader(x+t.Padding, y+t.Padding, "Keys")
	for _, l := range lines {
		y = r.DrawLabelValue(x+t.Padding, y, l[0], l[1])
	}
}

// DrawHint renders a one-line key hint at the bottom of the screen.
func (h *HUD) DrawHint(screenW, screenH int32) {
	t := h.renderer.Theme
	text := "H: help  Space: auto  +/-: speed  R: reset"
	w := rl.MeasureText(text, t.FontSize-2)
	rl.DrawText(text, screenW-w-t.Padding*2, screenH-t.FontSize-t.Padding, t.FontSize-2, t.HintColor)
}
