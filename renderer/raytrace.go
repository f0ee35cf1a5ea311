// Package renderer turns composed scene frames into pixels on the CPU for
// offline recording. The windowed backend lives in renderer/gpu.
package renderer

import (
	"errors"
	"image"
	"image/color"
	"math"
	"runtime"

	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/pthm-cable/molview/camera"
	"github.com/pthm-cable/molview/config"
	"github.com/pthm-cable/molview/molecule"
	"github.com/pthm-cable/molview/scene"
)

const epsilon = 1e-4

// rgb is a linear colour accumulator.
type rgb struct{ R, G, B float64 }

func fromColor(c molecule.Color) rgb {
	r, g, b := c.Float()
	return rgb{r, g, b}
}

func (c rgb) add(o rgb) rgb            { return rgb{c.R + o.R, c.G + o.G, c.B + o.B} }
func (c rgb) mul(o rgb) rgb            { return rgb{c.R * o.R, c.G * o.G, c.B * o.B} }
func (c rgb) scale(s float64) rgb      { return rgb{c.R * s, c.G * s, c.B * s} }
func (c rgb) mix(o rgb, a float64) rgb { return c.scale(1 - a).add(o.scale(a)) }

func (c rgb) rgba() color.RGBA {
	return color.RGBA{R: channel(c.R), G: channel(c.G), B: channel(c.B), A: 255}
}

func channel(v float64) uint8 {
	if v <= 0 {
		return 0
	}
	if v >= 1 {
		return 255
	}
	return uint8(v*255 + 0.5)
}

// Raytracer renders frames on the CPU with Phong shading and shadows
// from directional lights. Rows are traced in parallel.
type Raytracer struct {
	cam     *camera.Camera
	workers int
	text    *textDrawer

	img   *image.RGBA
	depth []float64
}

// NewRaytracer creates a raytracer with the configured camera. A workers
// value of 0 uses one worker per CPU.
func NewRaytracer(cfg *config.Config, width, height int) (*Raytracer, error) {
	text, err := newTextDrawer()
	if err != nil {
		return nil, err
	}
	workers := cfg.Record.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	r := &Raytracer{
		cam:     camera.New(cfg.Camera.FOV, cfg.Camera.Distance, cfg.Camera.Near, cfg.Camera.Far, 0, 0),
		workers: workers,
		text:    text,
	}
	r.Resize(width, height)
	return r, nil
}

// Resize reallocates the target image. Invalid sizes are ignored.
func (r *Raytracer) Resize(width, height int) {
	if width <= 0 || height <= 0 {
		return
	}
	r.cam.Resize(width, height)
	if r.img != nil && r.img.Rect.Dx() == width && r.img.Rect.Dy() == height {
		return
	}
	r.img = image.NewRGBA(image.Rect(0, 0, width, height))
	r.depth = make([]float64, width*height)
}

// Image returns the last rendered image. It is overwritten by Render.
func (r *Raytracer) Image() *image.RGBA {
	return r.img
}

// Render traces f into the target image and returns it.
func (r *Raytracer) Render(f *scene.Frame) *image.RGBA {
	if f.Width > 0 && f.Height > 0 {
		r.Resize(f.Width, f.Height)
	}
	if r.img == nil {
		return nil
	}

	l := newLighting(f)
	w, h := r.img.Rect.Dx(), r.img.Rect.Dy()

	var g errgroup.Group
	g.SetLimit(r.workers)
	for y := 0; y < h; y++ {
		g.Go(func() error {
			for x := 0; x < w; x++ {
				origin, dir := r.cam.Ray(float64(x)+0.5, float64(y)+0.5)
				c, t := trace(f, &l, origin, dir)
				r.img.SetRGBA(x, y, c.rgba())
				r.depth[y*w+x] = t * -dir.Z
			}
			return nil
		})
	}
	_ = g.Wait()

	r.splatParticles(f)
	r.text.drawOverlay(r.img, f.Caption, f.Legend)
	return r.img
}

// Submit implements viewer.Backend by rendering into the target image.
func (r *Raytracer) Submit(f *scene.Frame) error {
	if r.Render(f) == nil {
		return errors.New("raytracer: no viewport")
	}
	return nil
}

// Close implements viewer.Backend. The raytracer holds no external resources.
func (r *Raytracer) Close() error {
	return nil
}

// splatParticles draws each particle as a depth-tested square.
func (r *Raytracer) splatParticles(f *scene.Frame) {
	if f.ParticleOpacity <= 0 {
		return
	}
	w, h := r.img.Rect.Dx(), r.img.Rect.Dy()
	pc := fromColor(f.ParticleColor)
	for _, p := range f.Particles {
		sx, sy, depth, ok := r.cam.Project(p)
		if !ok {
			continue
		}
		rad := math.Max(r.cam.PixelRadius(f.ParticleSize, depth), 0.5)
		x0, x1 := int(sx-rad), int(math.Ceil(sx+rad))
		y0, y1 := int(sy-rad), int(math.Ceil(sy+rad))
		for y := max(y0, 0); y < min(y1, h); y++ {
			for x := max(x0, 0); x < min(x1, w); x++ {
				if depth >= r.depth[y*w+x] {
					continue
				}
				under := r.img.RGBAAt(x, y)
				base := rgb{float64(under.R) / 255, float64(under.G) / 255, float64(under.B) / 255}
				r.img.SetRGBA(x, y, base.mix(pc, f.ParticleOpacity).rgba())
			}
		}
	}
}

// lighting is the per-frame light rig split by kind.
type lighting struct {
	ambient   rgb
	lights    []scene.Light
	shininess float64
	specular  float64
}

func newLighting(f *scene.Frame) lighting {
	l := lighting{shininess: f.Shininess, specular: f.Specular}
	for _, light := range f.Lights {
		if light.Kind == scene.LightAmbient {
			l.ambient = l.ambient.add(fromColor(light.Color).scale(light.Intensity))
			continue
		}
		l.lights = append(l.lights, light)
	}
	return l
}

// surfaceHit is the nearest opaque intersection along a ray.
type surfaceHit struct {
	t      float64
	normal r3.Vec
	color  molecule.Color
}

// trace returns the colour seen along a ray and the ray distance to the
// nearest opaque surface (+Inf when the ray escapes).
func trace(f *scene.Frame, l *lighting, origin, dir r3.Vec) (rgb, float64) {
	hit, ok := nearestSurface(f, origin, dir, math.Inf(1))
	var c rgb
	t := math.Inf(1)
	if ok {
		t = hit.t
		c = shade(f, l, r3.Add(origin, r3.Scale(hit.t, dir)), hit.normal, dir, fromColor(hit.color))
	} else {
		c = fromColor(f.Background)
	}

	for _, g := range f.Glows {
		gt, ok := intersectSphere(origin, dir, g.Center, g.Radius)
		if ok && gt < t {
			c = c.mix(fromColor(g.Color), g.Opacity)
		}
	}
	return c, t
}

// nearestSurface finds the closest sphere or cylinder hit before limit.
func nearestSurface(f *scene.Frame, origin, dir r3.Vec, limit float64) (surfaceHit, bool) {
	best := surfaceHit{t: limit}
	found := false
	for _, s := range f.Spheres {
		t, ok := intersectSphere(origin, dir, s.Center, s.Radius)
		if ok && t < best.t {
			p := r3.Add(origin, r3.Scale(t, dir))
			best = surfaceHit{t: t, normal: r3.Unit(r3.Sub(p, s.Center)), color: s.Color}
			found = true
		}
	}
	for _, c := range f.Cylinders {
		t, n, ok := intersectCylinder(origin, dir, c.Start(), c.End(), c.Radius)
		if ok && t < best.t {
			best = surfaceHit{t: t, normal: n, color: c.Color}
			found = true
		}
	}
	return best, found
}

// shade applies ambient, diffuse and specular terms at point p.
func shade(f *scene.Frame, l *lighting, p, n, dir r3.Vec, base rgb) rgb {
	diffuse := l.ambient
	var spec rgb
	view := r3.Scale(-1, dir)
	lifted := r3.Add(p, r3.Scale(epsilon*10, n))

	for _, light := range l.lights {
		var toLight r3.Vec
		atten := 1.0
		switch light.Kind {
		case scene.LightDirectional:
			if r3.Norm(light.Position) == 0 {
				continue
			}
			toLight = r3.Unit(light.Position)
			if _, blocked := nearestSurface(f, lifted, toLight, math.Inf(1)); blocked {
				continue
			}
		case scene.LightPoint:
			d := r3.Sub(light.Position, p)
			dist := r3.Norm(d)
			if dist == 0 {
				continue
			}
			toLight = r3.Scale(1/dist, d)
			if light.Distance > 0 {
				falloff := math.Max(0, 1-dist/light.Distance)
				atten = falloff * falloff
			}
		default:
			continue
		}

		lc := fromColor(light.Color).scale(light.Intensity * atten)
		ndotl := r3.Dot(n, toLight)
		if ndotl <= 0 {
			continue
		}
		diffuse = diffuse.add(lc.scale(ndotl))
		if l.specular > 0 {
			rv := math.Max(0, r3.Dot(reflect(r3.Scale(-1, toLight), n), view))
			spec = spec.add(lc.scale(l.specular * math.Pow(rv, l.shininess)))
		}
	}
	return base.mul(diffuse).add(spec)
}

// reflect mirrors incident direction i about normal n.
func reflect(i, n r3.Vec) r3.Vec {
	return r3.Sub(i, r3.Scale(2*r3.Dot(i, n), n))
}

// intersectSphere returns the nearest positive ray distance to a sphere.
// dir must be a unit vector.
func intersectSphere(origin, dir, center r3.Vec, radius float64) (float64, bool) {
	oc := r3.Sub(origin, center)
	b := r3.Dot(oc, dir)
	c := r3.Dot(oc, oc) - radius*radius
	disc := b*b - c
	if disc < 0 {
		return 0, false
	}
	sq := math.Sqrt(disc)
	if t := -b - sq; t > epsilon {
		return t, true
	}
	if t := -b + sq; t > epsilon {
		return t, true
	}
	return 0, false
}

// intersectCylinder intersects a capped cylinder from p1 to p2. It returns
// the nearest positive distance and the surface normal there.
func intersectCylinder(origin, dir, p1, p2 r3.Vec, radius float64) (float64, r3.Vec, bool) {
	axis := r3.Sub(p2, p1)
	length := r3.Norm(axis)
	if length == 0 {
		return 0, r3.Vec{}, false
	}
	axis = r3.Scale(1/length, axis)
	dp := r3.Sub(origin, p1)

	dDotA := r3.Dot(dir, axis)
	dPerp := r3.Sub(dir, r3.Scale(dDotA, axis))
	dpPerp := r3.Sub(dp, r3.Scale(r3.Dot(dp, axis), axis))
	a := r3.Dot(dPerp, dPerp)
	b := 2 * r3.Dot(dPerp, dpPerp)
	c := r3.Dot(dpPerp, dpPerp) - radius*radius

	best := math.Inf(1)
	var normal r3.Vec

	if a > epsilon {
		if disc := b*b - 4*a*c; disc >= 0 {
			sq := math.Sqrt(disc)
			for _, t := range [2]float64{(-b - sq) / (2 * a), (-b + sq) / (2 * a)} {
				if t <= epsilon || t >= best {
					continue
				}
				p := r3.Add(origin, r3.Scale(t, dir))
				proj := r3.Dot(r3.Sub(p, p1), axis)
				if proj < 0 || proj > length {
					continue
				}
				best = t
				normal = r3.Unit(r3.Sub(p, r3.Add(p1, r3.Scale(proj, axis))))
			}
		}
	}

	if math.Abs(dDotA) > epsilon {
		for _, end := range [2]struct {
			center r3.Vec
			normal r3.Vec
		}{{p1, r3.Scale(-1, axis)}, {p2, axis}} {
			t := r3.Dot(r3.Sub(end.center, origin), axis) / dDotA
			if t <= epsilon || t >= best {
				continue
			}
			p := r3.Add(origin, r3.Scale(t, dir))
			if r3.Norm(r3.Sub(p, end.center)) <= radius {
				best = t
				normal = end.normal
			}
		}
	}

	if math.IsInf(best, 1) {
		return 0, r3.Vec{}, false
	}
	return best, normal, true
}
