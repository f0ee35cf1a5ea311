package renderer

import (
	"errors"
	"fmt"
	"image"
	"image/color/palette"
	"image/draw"
	"image/gif"
	"image/png"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/dustin/go-humanize"

	"github.com/pthm-cable/molview/scene"
)

// GIFRecorder is a viewer backend that raytraces every submitted frame
// and writes the sequence as an animated GIF on Close.
type GIFRecorder struct {
	rt     *Raytracer
	path   string
	poster string
	delay  int

	anim   gif.GIF
	closed bool
}

// NewGIFRecorder records frames rendered by rt. path may be empty when the
// caller encodes with Encode instead. delay is in hundredths of a second.
func NewGIFRecorder(rt *Raytracer, path string, delay int) *GIFRecorder {
	return &GIFRecorder{rt: rt, path: path, delay: delay}
}

// SetPoster also writes the last frame as a PNG to path on Close.
func (g *GIFRecorder) SetPoster(path string) {
	g.poster = path
}

// Resize implements viewer.Backend.
func (g *GIFRecorder) Resize(width, height int) {
	g.rt.Resize(width, height)
}

// Submit implements viewer.Backend.
func (g *GIFRecorder) Submit(f *scene.Frame) error {
	if g.closed {
		return errors.New("gif recorder closed")
	}
	img := g.rt.Render(f)
	if img == nil {
		return errors.New("no viewport")
	}
	g.anim.Image = append(g.anim.Image, toPaletted(img))
	g.anim.Delay = append(g.anim.Delay, g.delay)
	return nil
}

// Frames returns the number of recorded frames.
func (g *GIFRecorder) Frames() int {
	return len(g.anim.Image)
}

// Encode writes the recorded animation to w.
func (g *GIFRecorder) Encode(w io.Writer) error {
	if len(g.anim.Image) == 0 {
		return errors.New("no frames recorded")
	}
	return gif.EncodeAll(w, &g.anim)
}

// Close implements viewer.Backend. The GIF (and poster, if set) are
// written on the first call; later calls do nothing.
func (g *GIFRecorder) Close() error {
	if g.closed {
		return nil
	}
	g.closed = true

	if g.path != "" {
		n, err := writeFile(g.path, g.Encode)
		if err != nil {
			return fmt.Errorf("writing gif: %w", err)
		}
		slog.Info("recording written", "path", g.path, "frames", len(g.anim.Image), "size", humanize.Bytes(uint64(n)))
	}
	if g.poster != "" && g.rt.Image() != nil {
		img := g.rt.Image()
		if _, err := writeFile(g.poster, func(w io.Writer) error { return png.Encode(w, img) }); err != nil {
			return fmt.Errorf("writing poster: %w", err)
		}
		slog.Info("poster written", "path", g.poster)
	}
	return nil
}

// toPaletted maps img onto the Plan 9 palette by nearest colour.
func toPaletted(img *image.RGBA) *image.Paletted {
	b := img.Bounds()
	p := image.NewPaletted(b, palette.Plan9)
	draw.Draw(p, b, img, b.Min, draw.Src)
	return p
}

// countingWriter counts bytes written through it.
type countingWriter struct {
	w io.Writer
	n int64
}

func (c *countingWriter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	c.n += int64(n)
	return n, err
}

// writeFile creates path (and its directory) and fills it with encode.
func writeFile(path string, encode func(io.Writer) error) (int64, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return 0, err
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return 0, err
	}
	cw := &countingWriter{w: f}
	if err := encode(cw); err != nil {
		f.Close()
		return cw.n, err
	}
	return cw.n, f.Close()
}
