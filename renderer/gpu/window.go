// Package gpu draws frames into a raylib window.
package gpu

import (
	_ "embed"
	"errors"
	"image/color"
	"math"

	rl "github.com/gen2brain/raylib-go/raylib"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/pthm-cable/molview/config"
	"github.com/pthm-cable/molview/geom"
	"github.com/pthm-cable/molview/molecule"
	"github.com/pthm-cable/molview/scene"
	"github.com/pthm-cable/molview/viewer"
)

const maxShaderLights = 4

var (
	_ viewer.Backend = (*Window)(nil)
	_ viewer.Idler   = (*Window)(nil)
)

var (
	//go:embed shaders/molecule.vs
	moleculeVS string
	//go:embed shaders/molecule.fs
	moleculeFS string
)

// Window draws frames into the raylib window with one lit sphere model,
// one unlit glow model and one cylinder model shared by every primitive.
// It must be created and used on the thread that called rl.InitWindow.
type Window struct {
	camera   rl.Camera3D
	backdrop *Backdrop

	shader   rl.Shader
	sphere   rl.Model
	glow     rl.Model
	cylinder rl.Model

	ambientLoc   int32
	viewPosLoc   int32
	shininessLoc int32
	specularLoc  int32
	countLoc     int32
	kindLoc      int32
	posLoc       int32
	colorLoc     int32
	rangeLoc     int32

	// Overlay, if set, is called in screen space after the 3D pass.
	Overlay func(f *scene.Frame)

	target    rl.RenderTexture2D
	offscreen bool

	width, height int
	loaded        bool
}

// NewWindow loads the shared meshes and the lighting shader.
func NewWindow(cfg *config.Config) *Window {
	sc := cfg.Scene
	w := &Window{
		camera: rl.Camera3D{
			Position:   rl.NewVector3(0, 0, float32(cfg.Camera.Distance)),
			Target:     rl.NewVector3(0, 0, 0),
			Up:         rl.NewVector3(0, 1, 0),
			Fovy:       float32(cfg.Camera.FOV),
			Projection: rl.CameraPerspective,
		},
		backdrop: NewBackdrop(sc.Vignette),
	}
	w.backdrop.Init()

	w.shader = rl.LoadShaderFromMemory(moleculeVS, moleculeFS)
	w.ambientLoc = rl.GetShaderLocation(w.shader, "ambient")
	w.viewPosLoc = rl.GetShaderLocation(w.shader, "viewPos")
	w.shininessLoc = rl.GetShaderLocation(w.shader, "shininess")
	w.specularLoc = rl.GetShaderLocation(w.shader, "specular")
	w.countLoc = rl.GetShaderLocation(w.shader, "lightCount")
	w.kindLoc = rl.GetShaderLocation(w.shader, "lightKind")
	w.posLoc = rl.GetShaderLocation(w.shader, "lightPos")
	w.colorLoc = rl.GetShaderLocation(w.shader, "lightColor")
	w.rangeLoc = rl.GetShaderLocation(w.shader, "lightRange")

	w.sphere = rl.LoadModelFromMesh(rl.GenMeshSphere(1, sc.SphereRings, sc.SphereSlices))
	w.sphere.Materials.Shader = w.shader
	w.glow = rl.LoadModelFromMesh(rl.GenMeshSphere(1, sc.SphereRings, sc.SphereSlices))
	// Unit height along +Y from the origin; drawn from each bond's start cap.
	w.cylinder = rl.LoadModelFromMesh(rl.GenMeshCylinder(1, 1, sc.CylinderSlices))
	w.cylinder.Materials.Shader = w.shader

	w.loaded = true
	return w
}

// Resize implements viewer.Backend. raylib tracks the framebuffer itself;
// the size is kept for the backdrop and the overlay.
func (w *Window) Resize(width, height int) {
	w.width = width
	w.height = height
	w.backdrop.Resize(float32(width), float32(height))
}

// Size returns the last viewport size passed to Resize.
func (w *Window) Size() (int, int) {
	return w.width, w.height
}

// Submit implements viewer.Backend.
func (w *Window) Submit(f *scene.Frame) error {
	if !w.loaded {
		return errors.New("window backend closed")
	}
	w.setLights(f)

	if w.offscreen {
		rl.BeginTextureMode(w.target)
	} else {
		rl.BeginDrawing()
	}
	w.backdrop.Draw(f.Background)

	rl.BeginMode3D(w.camera)
	for _, s := range f.Spheres {
		r := float32(s.Radius)
		rl.DrawModelEx(w.sphere, vec(s.Center), rl.NewVector3(0, 1, 0), 0, rl.NewVector3(r, r, r), rlColor(s.Color, s.Opacity))
	}
	for _, c := range f.Cylinders {
		axis, angle := geom.AxisAngle(c.Orientation)
		r := float32(c.Radius)
		rl.DrawModelEx(w.cylinder, vec(c.Start()), vec(axis), float32(angle*180/math.Pi),
			rl.NewVector3(r, float32(c.Length), r), rlColor(c.Color, 1))
	}

	pc := rlColor(f.ParticleColor, f.ParticleOpacity)
	ps := float32(f.ParticleSize) * 2
	for _, p := range f.Particles {
		rl.DrawCube(vec(p), ps, ps, ps, pc)
	}

	rl.BeginBlendMode(rl.BlendAlpha)
	rl.DisableDepthMask()
	for _, g := range f.Glows {
		r := float32(g.Radius)
		rl.DrawModelEx(w.glow, vec(g.Center), rl.NewVector3(0, 1, 0), 0, rl.NewVector3(r, r, r), rlColor(g.Color, g.Opacity))
	}
	rl.EnableDepthMask()
	rl.EndBlendMode()
	rl.EndMode3D()

	if w.Overlay != nil {
		w.Overlay(f)
	}
	if w.offscreen {
		rl.EndTextureMode()
	} else {
		rl.EndDrawing()
	}
	return nil
}

// Idle implements viewer.Idler. An empty frame keeps raylib polling input
// and pacing the loop while the window is minimized, so the resize that
// restores it is seen.
func (w *Window) Idle() {
	if !w.loaded || w.offscreen {
		return
	}
	rl.BeginDrawing()
	rl.EndDrawing()
}

// Offscreen redirects later frames into a render texture of the given
// size instead of the window's framebuffer.
func (w *Window) Offscreen(width, height int) {
	if w.offscreen {
		rl.UnloadRenderTexture(w.target)
	}
	w.target = rl.LoadRenderTexture(int32(width), int32(height))
	w.offscreen = true
	w.Resize(width, height)
}

// Capture reads back the offscreen target with rows top-down. The caller
// unloads the image.
func (w *Window) Capture() (*rl.Image, error) {
	if !w.offscreen {
		return nil, errors.New("capture needs an offscreen target")
	}
	img := rl.LoadImageFromTexture(w.target.Texture)
	rl.ImageFlipVertical(img)
	return img, nil
}

// setLights uploads the frame's light rig to the shader.
func (w *Window) setLights(f *scene.Frame) {
	var ambient [3]float32
	var kinds, ranges [maxShaderLights]float32
	var positions, colors [maxShaderLights * 3]float32
	n := 0
	for _, l := range f.Lights {
		r, g, b := l.Color.Float()
		k := float32(l.Intensity)
		if l.Kind == scene.LightAmbient {
			ambient[0] += float32(r) * k
			ambient[1] += float32(g) * k
			ambient[2] += float32(b) * k
			continue
		}
		if n == maxShaderLights {
			continue
		}
		kinds[n] = float32(l.Kind)
		ranges[n] = float32(l.Distance)
		positions[n*3], positions[n*3+1], positions[n*3+2] = float32(l.Position.X), float32(l.Position.Y), float32(l.Position.Z)
		colors[n*3], colors[n*3+1], colors[n*3+2] = float32(r)*k, float32(g)*k, float32(b)*k
		n++
	}

	rl.SetShaderValue(w.shader, w.ambientLoc, ambient[:], rl.ShaderUniformVec3)
	rl.SetShaderValue(w.shader, w.viewPosLoc, []float32{w.camera.Position.X, w.camera.Position.Y, w.camera.Position.Z}, rl.ShaderUniformVec3)
	rl.SetShaderValue(w.shader, w.shininessLoc, []float32{float32(f.Shininess)}, rl.ShaderUniformFloat)
	rl.SetShaderValue(w.shader, w.specularLoc, []float32{float32(f.Specular)}, rl.ShaderUniformFloat)
	rl.SetShaderValue(w.shader, w.countLoc, []float32{float32(n)}, rl.ShaderUniformFloat)
	rl.SetShaderValueV(w.shader, w.kindLoc, kinds[:], rl.ShaderUniformFloat, maxShaderLights)
	rl.SetShaderValueV(w.shader, w.rangeLoc, ranges[:], rl.ShaderUniformFloat, maxShaderLights)
	rl.SetShaderValueV(w.shader, w.posLoc, positions[:], rl.ShaderUniformVec3, maxShaderLights)
	rl.SetShaderValueV(w.shader, w.colorLoc, colors[:], rl.ShaderUniformVec3, maxShaderLights)
}

// Close implements viewer.Backend. Models and the shader are unloaded
// once; the window itself belongs to the caller.
func (w *Window) Close() error {
	if !w.loaded {
		return nil
	}
	w.loaded = false
	rl.UnloadModel(w.sphere)
	rl.UnloadModel(w.glow)
	rl.UnloadModel(w.cylinder)
	rl.UnloadShader(w.shader)
	w.backdrop.Unload()
	if w.offscreen {
		rl.UnloadRenderTexture(w.target)
		w.offscreen = false
	}
	return nil
}

func vec(v r3.Vec) rl.Vector3 {
	return rl.NewVector3(float32(v.X), float32(v.Y), float32(v.Z))
}

func rlColor(c molecule.Color, opacity float64) color.RGBA {
	a := math.Round(math.Max(0, math.Min(1, opacity)) * 255)
	return rl.NewColor(c.R, c.G, c.B, uint8(a))
}
