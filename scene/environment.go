package scene

import (
	"math/rand"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/pthm-cable/molview/config"
	"github.com/pthm-cable/molview/geom"
	"github.com/pthm-cable/molview/molecule"
)

// LightKind selects how a light contributes to shading.
type LightKind uint8

const (
	LightAmbient     LightKind = iota // Uniform, no direction
	LightDirectional                  // Parallel rays from Position toward the origin
	LightPoint                        // Radiates from Position, fading to zero at Distance
)

// Light is one light of the rig.
type Light struct {
	Kind      LightKind
	Color     molecule.Color
	Intensity float64
	Position  r3.Vec
	Distance  float64
}

// Particles is the ambient point field drawn behind every molecule.
type Particles struct {
	Points  []r3.Vec // Model space, unrotated
	Size    float64
	Color   molecule.Color
	Opacity float64
	Spin    float64 // Radians per frame about Y
	Angle   float64 // Accumulated rotation about Y
}

// Environment is the part of the scene that survives molecule switches:
// the particle field and the lighting rig.
type Environment struct {
	Background molecule.Color
	Particles  Particles
	Lights     []Light
	Shininess  float64
	Specular   float64
}

// NewEnvironment creates the particle field and lights from config.
// Particles are scattered uniformly in a cube of edge Extent centred on
// the origin; the seed keeps the field identical between runs.
func NewEnvironment(cfg *config.Config) *Environment {
	pc := cfg.Particles
	rng := rand.New(rand.NewSource(pc.Seed))
	half := pc.Extent / 2

	points := make([]r3.Vec, pc.Count)
	for i := range points {
		points[i] = r3.Vec{
			X: (rng.Float64()*2 - 1) * half,
			Y: (rng.Float64()*2 - 1) * half,
			Z: (rng.Float64()*2 - 1) * half,
		}
	}

	env := &Environment{
		Background: cfg.Scene.Background,
		Particles: Particles{
			Points:  points,
			Size:    pc.Size,
			Color:   pc.Color,
			Opacity: pc.Opacity,
			Spin:    pc.Spin,
		},
		Shininess: cfg.Lights.Shininess,
		Specular:  cfg.Lights.Specular,
	}

	lc := cfg.Lights
	env.Lights = append(env.Lights, lightFromConfig(LightAmbient, lc.Ambient))
	for _, l := range lc.Directional {
		env.Lights = append(env.Lights, lightFromConfig(LightDirectional, l))
	}
	for _, l := range lc.Point {
		env.Lights = append(env.Lights, lightFromConfig(LightPoint, l))
	}
	return env
}

func lightFromConfig(kind LightKind, l config.LightConfig) Light {
	return Light{
		Kind:      kind,
		Color:     l.Color,
		Intensity: l.Intensity,
		Position:  r3.Vec{X: l.Position[0], Y: l.Position[1], Z: l.Position[2]},
		Distance:  l.Distance,
	}
}

// Advance rotates the particle field by one frame of spin. It is
// independent of the molecule rotation.
func (e *Environment) Advance() {
	e.Particles.Angle += e.Particles.Spin
}

// ParticlePositions appends the world-space particle positions to dst.
func (e *Environment) ParticlePositions(dst []r3.Vec) []r3.Vec {
	rot := geom.RotateY(e.Particles.Angle)
	for _, p := range e.Particles.Points {
		dst = append(dst, rot.Rotate(p))
	}
	return dst
}
