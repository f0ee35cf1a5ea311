package renderer

import (
	"image/color"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/pthm-cable/molview/config"
	"github.com/pthm-cable/molview/geom"
	"github.com/pthm-cable/molview/molecule"
	"github.com/pthm-cable/molview/scene"
)

var (
	red   = molecule.MustColor("#FF0000")
	green = molecule.MustColor("#00FF00")
	white = molecule.MustColor("#FFFFFF")
	black = molecule.MustColor("#000000")
)

func TestIntersectSphere(t *testing.T) {
	origin := r3.Vec{Z: 10}
	dir := r3.Vec{Z: -1}

	tHit, ok := intersectSphere(origin, dir, r3.Vec{}, 1)
	require.True(t, ok)
	assert.InDelta(t, 9, tHit, 1e-12)

	_, ok = intersectSphere(origin, dir, r3.Vec{X: 3}, 1)
	assert.False(t, ok)

	// From inside, the exit point is returned.
	tHit, ok = intersectSphere(r3.Vec{}, dir, r3.Vec{}, 1)
	require.True(t, ok)
	assert.InDelta(t, 1, tHit, 1e-12)
}

func TestIntersectCylinder(t *testing.T) {
	p1 := r3.Vec{Y: -1}
	p2 := r3.Vec{Y: 1}

	// Side.
	tHit, n, ok := intersectCylinder(r3.Vec{Z: 10}, r3.Vec{Z: -1}, p1, p2, 0.5)
	require.True(t, ok)
	assert.InDelta(t, 9.5, tHit, 1e-9)
	assert.InDelta(t, 1, n.Z, 1e-9)

	// Top cap.
	tHit, n, ok = intersectCylinder(r3.Vec{Y: 10}, r3.Vec{Y: -1}, p1, p2, 0.5)
	require.True(t, ok)
	assert.InDelta(t, 9, tHit, 1e-9)
	assert.InDelta(t, 1, n.Y, 1e-9)

	// Past the end.
	_, _, ok = intersectCylinder(r3.Vec{Y: 2, Z: 10}, r3.Vec{Z: -1}, p1, p2, 0.5)
	assert.False(t, ok)

	// Degenerate.
	_, _, ok = intersectCylinder(r3.Vec{Z: 10}, r3.Vec{Z: -1}, p1, p1, 0.5)
	assert.False(t, ok)
}

// flatFrame is lit by a single white ambient light so surfaces show their
// base colour exactly.
func flatFrame(w, h int) *scene.Frame {
	return &scene.Frame{
		Width:      w,
		Height:     h,
		Background: black,
		Lights:     []scene.Light{{Kind: scene.LightAmbient, Color: white, Intensity: 1}},
		Shininess:  32,
	}
}

func newTestRaytracer(t *testing.T) *Raytracer {
	t.Helper()
	rt, err := NewRaytracer(config.Defaults(), 64, 48)
	require.NoError(t, err)
	return rt
}

func TestRenderSphereAndBackground(t *testing.T) {
	rt := newTestRaytracer(t)
	f := flatFrame(64, 48)
	f.Background = molecule.MustColor("#0A0E1A")
	f.Spheres = []scene.SphereDraw{{Radius: 1, Color: red, Opacity: 1}}

	img := rt.Render(f)
	require.NotNil(t, img)
	assert.Equal(t, 64, img.Bounds().Dx())
	assert.Equal(t, color.RGBA{R: 255, A: 255}, img.RGBAAt(32, 24))
	assert.Equal(t, color.RGBA{R: 0x0A, G: 0x0E, B: 0x1A, A: 255}, img.RGBAAt(63, 0))
}

func TestRenderCylinder(t *testing.T) {
	rt := newTestRaytracer(t)
	f := flatFrame(64, 48)
	f.Cylinders = []scene.CylinderDraw{{
		Axis:        r3.Vec{X: 1},
		Orientation: geom.Between(geom.Up, r3.Vec{X: 1}),
		Radius:      0.3,
		Length:      6,
		Color:       green,
	}}

	img := rt.Render(f)
	assert.Equal(t, color.RGBA{G: 255, A: 255}, img.RGBAAt(32, 24))
	assert.Equal(t, color.RGBA{A: 255}, img.RGBAAt(32, 2), "bond should be thin vertically")
}

func TestRenderGlowBlendsOverBackground(t *testing.T) {
	rt := newTestRaytracer(t)
	f := flatFrame(64, 48)
	f.Glows = []scene.SphereDraw{{Radius: 2, Color: green, Opacity: 0.5}}

	img := rt.Render(f)
	assert.Equal(t, color.RGBA{G: 128, A: 255}, img.RGBAAt(32, 24))
}

func TestRenderParticlesAreDepthTested(t *testing.T) {
	rt := newTestRaytracer(t)
	f := flatFrame(64, 48)
	f.Particles = []r3.Vec{{}}
	f.ParticleSize = 0.5
	f.ParticleColor = white
	f.ParticleOpacity = 1

	img := rt.Render(f)
	assert.Equal(t, color.RGBA{R: 255, G: 255, B: 255, A: 255}, img.RGBAAt(32, 24))

	// The same particle inside a sphere is hidden.
	f.Spheres = []scene.SphereDraw{{Radius: 1, Color: red, Opacity: 1}}
	img = rt.Render(f)
	assert.Equal(t, color.RGBA{R: 255, A: 255}, img.RGBAAt(32, 24))
}

func TestShadeDirectionalLight(t *testing.T) {
	f := flatFrame(1, 1)
	f.Lights = []scene.Light{{Kind: scene.LightDirectional, Color: white, Intensity: 1, Position: r3.Vec{Z: 5}}}
	l := newLighting(f)

	facing := shade(f, &l, r3.Vec{Z: 1}, r3.Vec{Z: 1}, r3.Vec{Z: -1}, rgb{1, 1, 1})
	assert.InDelta(t, 1, facing.R, 1e-9)

	side := shade(f, &l, r3.Vec{X: 1}, r3.Vec{X: 1}, r3.Vec{Z: -1}, rgb{1, 1, 1})
	assert.InDelta(t, 0, side.R, 1e-9)

	// An occluder between the point and the light casts a shadow.
	f.Spheres = []scene.SphereDraw{{Center: r3.Vec{Z: 3}, Radius: 0.5}}
	shadowed := shade(f, &l, r3.Vec{Z: 1}, r3.Vec{Z: 1}, r3.Vec{Z: -1}, rgb{1, 1, 1})
	assert.InDelta(t, 0, shadowed.R, 1e-9)
}

func TestShadePointLightFalloff(t *testing.T) {
	f := flatFrame(1, 1)
	f.Lights = []scene.Light{{Kind: scene.LightPoint, Color: white, Intensity: 1, Position: r3.Vec{Z: 11}, Distance: 20}}
	l := newLighting(f)

	c := shade(f, &l, r3.Vec{Z: 1}, r3.Vec{Z: 1}, r3.Vec{Z: -1}, rgb{1, 1, 1})
	// 10 units away with a 20 unit range: (1 - 0.5)^2.
	assert.InDelta(t, 0.25, c.R, 1e-9)

	f.Lights[0].Position = r3.Vec{Z: 30}
	l = newLighting(f)
	c = shade(f, &l, r3.Vec{Z: 1}, r3.Vec{Z: 1}, r3.Vec{Z: -1}, rgb{1, 1, 1})
	assert.InDelta(t, 0, c.R, 1e-9)
}

func TestRenderComposedMolecule(t *testing.T) {
	cfg := config.Defaults()
	b := scene.NewBuilder(scene.StyleFromConfig(cfg))
	defer b.Dispose()
	m, ok := molecule.Builtin().Lookup("Water")
	require.True(t, ok)
	g := b.Build(m)

	f := scene.Compose(g, scene.NewEnvironment(cfg), geom.Euler(0.3, 0.6), nil)
	f.Width, f.Height = 80, 60

	rt, err := NewRaytracer(cfg, 0, 0)
	require.NoError(t, err)
	img := rt.Render(f)
	require.NotNil(t, img)

	// Something other than background near the centre.
	bg := cfg.Scene.Background
	var lit int
	for y := 20; y < 40; y++ {
		for x := 30; x < 50; x++ {
			c := img.RGBAAt(x, y)
			if math.Abs(float64(c.R)-float64(bg.R))+math.Abs(float64(c.G)-float64(bg.G)) > 30 {
				lit++
			}
		}
	}
	assert.Greater(t, lit, 20)
}

func TestRenderWithoutViewport(t *testing.T) {
	rt, err := NewRaytracer(config.Defaults(), 0, 0)
	require.NoError(t, err)
	assert.Nil(t, rt.Render(&scene.Frame{}))
}

func TestSubmitWithoutViewport(t *testing.T) {
	rt, err := NewRaytracer(config.Defaults(), 0, 0)
	require.NoError(t, err)
	assert.Error(t, rt.Submit(&scene.Frame{}))
	assert.NoError(t, rt.Submit(flatFrame(8, 6)))
	assert.Equal(t, 8, rt.Image().Rect.Dx())
	assert.NoError(t, rt.Close())
}
