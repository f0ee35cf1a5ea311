package viewer

import (
	"fmt"

	"github.com/pthm-cable/molview/camera"
	"github.com/pthm-cable/molview/molecule"
	"github.com/pthm-cable/molview/scene"
	"github.com/pthm-cable/molview/telemetry"
)

// ToggleAutoRotate flips between auto and manual rotation and returns the
// new mode.
func (v *Viewer) ToggleAutoRotate() bool {
	v.SetAutoRotate(!v.state.AutoRotate)
	return v.state.AutoRotate
}

// SetAutoRotate selects auto (true) or manual (false) rotation.
func (v *Viewer) SetAutoRotate(on bool) {
	if v.state.AutoRotate == on {
		return
	}
	v.state.AutoRotate = on
	var value float64
	if on {
		value = 1
	}
	v.emit(telemetry.EventToggle, value, "")
}

// SpeedUp raises the rotation speed by one step, clamped to the maximum.
func (v *Viewer) SpeedUp() float64 {
	return v.SetSpeed(v.state.Speed + v.vc.SpeedStep)
}

// SlowDown lowers the rotation speed by one step, clamped to the minimum.
// The minimum is positive: pausing is only possible through the toggle.
func (v *Viewer) SlowDown() float64 {
	return v.SetSpeed(v.state.Speed - v.vc.SpeedStep)
}

// SetSpeed sets the rotation speed clamped to [min, max] and returns it.
func (v *Viewer) SetSpeed(speed float64) float64 {
	speed = v.clampSpeed(speed)
	if speed != v.state.Speed {
		v.state.Speed = speed
		v.emit(telemetry.EventSpeed, speed, "")
	}
	return v.state.Speed
}

func (v *Viewer) clampSpeed(speed float64) float64 {
	if speed < v.vc.MinSpeed {
		return v.vc.MinSpeed
	}
	if speed > v.vc.MaxSpeed {
		return v.vc.MaxSpeed
	}
	return speed
}

// ResetOrientation zeroes the accumulated rotation in either mode.
func (v *Viewer) ResetOrientation() {
	v.state.Rotation = Rotation{}
	v.emit(telemetry.EventReset, 0, "")
}

// Select switches to the named molecule. The scene is rebuilt before
// Select returns, so the next frame never shows partial geometry. Speed
// and mode are kept; rotation restarts from identity.
func (v *Viewer) Select(name string) error {
	m, ok := v.catalog.Lookup(name)
	if !ok {
		return fmt.Errorf("unknown molecule %q", name)
	}
	v.selectMolecule(m)
	return nil
}

// SelectIndex switches to the i-th catalog entry.
func (v *Viewer) SelectIndex(i int) error {
	if i < 0 || i >= v.catalog.Len() {
		return fmt.Errorf("molecule index %d outside [0, %d)", i, v.catalog.Len())
	}
	v.selectMolecule(v.catalog.At(i))
	return nil
}

func (v *Viewer) selectMolecule(m *molecule.Molecule) {
	v.rebuild(m)
	v.state.Rotation = Rotation{}
	v.emit(telemetry.EventSelect, 0, m.Description)
}

// PointerMove updates the manual-mode target from a pointer position in
// viewport pixels. Ignored while the viewport is invalid.
func (v *Viewer) PointerMove(px, py float64) {
	if !v.sizeValid {
		return
	}
	nx, ny := v.cam.NormalizedPointer(px, py)
	v.SetPointer(nx, ny)
}

// SetPointer updates the manual-mode target from normalized pointer
// coordinates in [-1, 1] (+Y up). Vertical pointer motion tilts about X and
// horizontal motion turns about Y.
func (v *Viewer) SetPointer(nx, ny float64) {
	nx = clampUnit(nx)
	ny = clampUnit(ny)
	v.state.Target = Rotation{
		X: ny * v.vc.PointerGain,
		Y: nx * v.vc.PointerGain,
	}
}

func clampUnit(x float64) float64 {
	if x < -1 {
		return -1
	}
	if x > 1 {
		return 1
	}
	return x
}

// Caption returns the selected molecule's display name and description.
func (v *Viewer) Caption() scene.Caption {
	return scene.Caption{Name: v.state.Selected.Name, Description: v.state.Selected.Description}
}

// AutoRotating reports whether auto rotation is on.
func (v *Viewer) AutoRotating() bool {
	return v.state.AutoRotate
}

// Speed returns the current rotation speed.
func (v *Viewer) Speed() float64 {
	return v.state.Speed
}

// Legend returns the elements present in the selected molecule.
func (v *Viewer) Legend() []molecule.LegendEntry {
	return molecule.Legend(v.state.Selected)
}

// State returns a copy of the interaction state.
func (v *Viewer) State() State {
	return v.state
}

// Selected returns the selected molecule.
func (v *Viewer) Selected() *molecule.Molecule {
	return v.state.Selected
}

// Catalog returns the catalog selections are made from.
func (v *Viewer) Catalog() *molecule.Catalog {
	return v.catalog
}

// Graph returns the current scene graph.
func (v *Viewer) Graph() *scene.Graph {
	return v.graph
}

// Camera returns the viewer's camera.
func (v *Viewer) Camera() *camera.Camera {
	return v.cam
}

// FrameIndex returns the number of frames stepped so far.
func (v *Viewer) FrameIndex() uint64 {
	return v.index
}

// ViewportValid reports whether frames are currently being submitted.
func (v *Viewer) ViewportValid() bool {
	return v.sizeValid
}
