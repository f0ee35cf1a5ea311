package scene

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/pthm-cable/molview/config"
	"github.com/pthm-cable/molview/geom"
)

func TestComposeDNA(t *testing.T) {
	cfg := config.Defaults()
	b := NewBuilder(StyleFromConfig(cfg))
	env := NewEnvironment(cfg)
	g := b.Build(mustLookup(t, "DNA Fragment"))

	f := Compose(g, env, geom.Identity(), nil)
	assert.Len(t, f.Spheres, 15)
	assert.Len(t, f.Glows, 15)
	assert.Len(t, f.Cylinders, 14)
	assert.Len(t, f.Particles, cfg.Particles.Count)
	assert.Len(t, f.Lights, 4)
	assert.Equal(t, "DNA Fragment", f.Caption.Name)
	assert.Equal(t, cfg.Scene.Background, f.Background)
	assert.Len(t, f.Legend, 4)
}

func TestComposeAppliesRotation(t *testing.T) {
	cfg := config.Defaults()
	b := NewBuilder(StyleFromConfig(cfg))
	g := b.Build(mustLookup(t, "Water"))

	rot := geom.Euler(0.3, 1.2)
	plain := Compose(g, nil, geom.Identity(), nil)
	turned := Compose(g, nil, rot, nil)

	for i := range plain.Spheres {
		want := rot.Rotate(plain.Spheres[i].Center)
		assert.InDelta(t, 0, r3.Norm(r3.Sub(want, turned.Spheres[i].Center)), 1e-9)
	}
	for i, c := range turned.Cylinders {
		// Endpoints still coincide with the rotated atom centres.
		bond := g.Molecule.Bonds[i]
		from := turned.Spheres[bond.From].Center
		to := turned.Spheres[bond.To].Center
		assert.InDelta(t, 0, r3.Norm(r3.Sub(c.Start(), from)), 1e-9)
		assert.InDelta(t, 0, r3.Norm(r3.Sub(c.End(), to)), 1e-9)
	}
}

func TestComposeReusesFrame(t *testing.T) {
	cfg := config.Defaults()
	b := NewBuilder(StyleFromConfig(cfg))
	env := NewEnvironment(cfg)

	f := Compose(b.Build(mustLookup(t, "DNA Fragment")), env, geom.Identity(), nil)
	f = Compose(b.Build(mustLookup(t, "Water")), env, geom.Identity(), f)
	assert.Len(t, f.Spheres, 3)
	assert.Len(t, f.Cylinders, 2)
	assert.Len(t, f.Particles, cfg.Particles.Count)
}

func TestComposeDisposedGraph(t *testing.T) {
	b := NewBuilder(DefaultStyle())
	g := b.Build(mustLookup(t, "Water"))
	b.Dispose()

	f := Compose(g, nil, geom.Identity(), nil)
	assert.Empty(t, f.Spheres)
	assert.Empty(t, f.Caption.Name)
}

func TestEnvironment(t *testing.T) {
	cfg := config.Defaults()
	env := NewEnvironment(cfg)
	require.Len(t, env.Particles.Points, 100)

	half := cfg.Particles.Extent / 2
	for _, p := range env.Particles.Points {
		if math.Abs(p.X) > half || math.Abs(p.Y) > half || math.Abs(p.Z) > half {
			t.Fatalf("particle %v outside cube of half-extent %f", p, half)
		}
	}

	again := NewEnvironment(cfg)
	assert.Equal(t, env.Particles.Points, again.Particles.Points, "seeded field should be reproducible")

	assert.Equal(t, LightAmbient, env.Lights[0].Kind)
	assert.Equal(t, LightPoint, env.Lights[3].Kind)
	assert.Equal(t, 100.0, env.Lights[3].Distance)
}

func TestEnvironmentAdvance(t *testing.T) {
	cfg := config.Defaults()
	env := NewEnvironment(cfg)

	before := env.ParticlePositions(nil)
	for i := 0; i < 10; i++ {
		env.Advance()
	}
	assert.InDelta(t, 10*cfg.Particles.Spin, env.Particles.Angle, 1e-15)

	after := env.ParticlePositions(nil)
	for i := range before {
		// Rotation about Y preserves height and distance from the axis.
		assert.InDelta(t, before[i].Y, after[i].Y, 1e-12)
		rb := math.Hypot(before[i].X, before[i].Z)
		ra := math.Hypot(after[i].X, after[i].Z)
		assert.InDelta(t, rb, ra, 1e-12)
	}
}
