package renderer

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"

	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"

	"github.com/pthm-cable/molview/molecule"
	"github.com/pthm-cable/molview/scene"
)

const (
	titleSize  = 18
	bodySize   = 12
	textMargin = 10
	swatchSize = 10
)

var (
	titleColor = color.RGBA{R: 0xE8, G: 0xEC, B: 0xF4, A: 0xFF}
	bodyColor  = color.RGBA{R: 0xA0, G: 0xA8, B: 0xB8, A: 0xFF}
)

// textDrawer writes the caption and element legend over rendered frames.
type textDrawer struct {
	title font.Face
	body  font.Face
}

func newTextDrawer() (*textDrawer, error) {
	title, err := loadFace(gobold.TTF, titleSize)
	if err != nil {
		return nil, err
	}
	body, err := loadFace(goregular.TTF, bodySize)
	if err != nil {
		return nil, err
	}
	return &textDrawer{title: title, body: body}, nil
}

func loadFace(ttf []byte, size float64) (font.Face, error) {
	fnt, err := opentype.Parse(ttf)
	if err != nil {
		return nil, fmt.Errorf("parsing font: %w", err)
	}
	face, err := opentype.NewFace(fnt, &opentype.FaceOptions{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingFull,
	})
	if err != nil {
		return nil, fmt.Errorf("creating font face: %w", err)
	}
	return face, nil
}

// drawOverlay puts the caption in the top-left corner and the legend in
// the bottom-left corner.
func (t *textDrawer) drawOverlay(dst draw.Image, c scene.Caption, legend []molecule.LegendEntry) {
	b := dst.Bounds()
	y := b.Min.Y + textMargin

	if c.Name != "" {
		y += t.title.Metrics().Ascent.Ceil()
		drawString(dst, t.title, titleColor, b.Min.X+textMargin, y, c.Name)
		y += t.title.Metrics().Descent.Ceil()
	}
	if c.Description != "" {
		y += t.body.Metrics().Height.Ceil()
		drawString(dst, t.body, bodyColor, b.Min.X+textMargin, y, c.Description)
	}

	line := t.body.Metrics().Height.Ceil()
	y = b.Max.Y - textMargin - line*(len(legend)-1)
	for _, e := range legend {
		x := b.Min.X + textMargin
		swatch := image.Rect(x, y-swatchSize, x+swatchSize, y)
		draw.Draw(dst, swatch, image.NewUniform(color.RGBA{R: e.Color.R, G: e.Color.G, B: e.Color.B, A: 0xFF}), image.Point{}, draw.Src)
		drawString(dst, t.body, bodyColor, x+swatchSize+6, y, fmt.Sprintf("%s  %s", e.Symbol, e.Name))
		y += line
	}
}

// drawString draws text with its baseline at (x, y).
func drawString(dst draw.Image, face font.Face, c color.Color, x, y int, s string) {
	d := font.Drawer{
		Dst:  dst,
		Src:  image.NewUniform(c),
		Face: face,
		Dot:  fixed.Point26_6{X: fixed.I(x), Y: fixed.I(y)},
	}
	d.DrawString(s)
}
