package gpu

import (
	_ "embed"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/molview/molecule"
)

var (
	//go:embed shaders/backdrop.vs
	backdropVS string
	//go:embed shaders/backdrop.fs
	backdropFS string
)

// Backdrop fills the window with the scene background through a
// fullscreen vignette shader.
type Backdrop struct {
	shader        rl.Shader
	resolutionLoc int32
	baseColorLoc  int32
	vignetteLoc   int32

	screenW, screenH float32
	vignette         float32
	initialized      bool
}

// NewBackdrop creates a backdrop; Init loads the shader.
func NewBackdrop(vignette float64) *Backdrop {
	return &Backdrop{vignette: float32(vignette)}
}

// Init loads the shader (must be called after the raylib window is created).
func (b *Backdrop) Init() {
	if b.initialized {
		return
	}

	b.shader = rl.LoadShaderFromMemory(backdropVS, backdropFS)
	b.resolutionLoc = rl.GetShaderLocation(b.shader, "resolution")
	b.baseColorLoc = rl.GetShaderLocation(b.shader, "baseColor")
	b.vignetteLoc = rl.GetShaderLocation(b.shader, "vignette")
	rl.SetShaderValue(b.shader, b.vignetteLoc, []float32{b.vignette}, rl.ShaderUniformFloat)

	b.initialized = true
	b.Resize(b.screenW, b.screenH)
}

// Resize updates the resolution uniform.
func (b *Backdrop) Resize(w, h float32) {
	b.screenW, b.screenH = w, h
	if !b.initialized {
		return
	}
	rl.SetShaderValue(b.shader, b.resolutionLoc, []float32{w, h}, rl.ShaderUniformVec2)
}

// Draw clears to base and shades a fullscreen quad.
func (b *Backdrop) Draw(base molecule.Color) {
	if !b.initialized {
		b.Init()
	}
	rl.ClearBackground(rlColor(base, 1))
	if b.vignette <= 0 {
		return
	}

	r, g, bl := base.Float()
	rl.SetShaderValue(b.shader, b.baseColorLoc, []float32{float32(r), float32(g), float32(bl)}, rl.ShaderUniformVec3)

	rl.BeginShaderMode(b.shader)
	rl.DrawRectangle(0, 0, int32(b.screenW), int32(b.screenH), rl.White)
	rl.EndShaderMode()
}

// Unload frees the shader.
func (b *Backdrop) Unload() {
	if b.initialized {
		rl.UnloadShader(b.shader)
		b.initialized = false
	}
}
