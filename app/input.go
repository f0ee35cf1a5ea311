package app

import (
	"log/slog"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/molview/ui"
)

// handleInput processes keyboard and pointer input.
func (a *App) handleInput() {
	a.handleResize()

	if rl.IsKeyPressed(rl.KeyF11) {
		rl.ToggleFullscreen()
	}

	if rl.IsKeyPressed(rl.KeySpace) {
		a.session.ToggleAutoRotate()
	}
	if rl.IsKeyPressed(rl.KeyEqual) || rl.IsKeyPressed(rl.KeyKpAdd) {
		a.session.SpeedUp()
	}
	if rl.IsKeyPressed(rl.KeyMinus) || rl.IsKeyPressed(rl.KeyKpSubtract) {
		a.session.SlowDown()
	}
	if rl.IsKeyPressed(rl.KeyR) {
		a.session.ResetOrientation()
	}
	if rl.IsKeyPressed(rl.KeyF) {
		a.session.ToggleFavorite()
	}

	// 1-9 pick a catalog entry directly
	for i := int32(0); i < 9; i++ {
		if !rl.IsKeyPressed(rl.KeyOne + i) {
			continue
		}
		if int(i) >= a.viewer.Catalog().Len() {
			break
		}
		if err := a.session.Select(int(i)); err != nil {
			slog.Warn("select", "index", i, "error", err)
		}
		break
	}

	a.handleOverlayKeys()
	a.handlePointer()
}

// handleOverlayKeys toggles overlays bound to the keys pressed this frame.
func (a *App) handleOverlayKeys() {
	for key := rl.GetKeyPressed(); key != 0; key = rl.GetKeyPressed() {
		if id, on, ok := a.overlays.HandleKeyPress(key); ok {
			slog.Debug("overlay toggled", "overlay", id, "enabled", on)
		}
	}
}

// handlePointer feeds pointer motion to the viewer unless the pointer is
// over the controls panel.
func (a *App) handlePointer() {
	delta := rl.GetMouseDelta()
	if delta.X == 0 && delta.Y == 0 {
		return
	}
	pos := rl.GetMousePosition()
	if a.overlays.IsEnabled(ui.OverlayControls) && a.controls.Contains(pos.X, pos.Y, a.controlsData()) {
		return
	}
	a.viewer.PointerMove(float64(pos.X), float64(pos.Y))
}

// handleResize propagates window size changes to the viewer.
func (a *App) handleResize() {
	if !rl.IsWindowResized() {
		return
	}
	w := int32(rl.GetScreenWidth())
	h := int32(rl.GetScreenHeight())
	if w == a.screenWidth && h == a.screenHeight {
		return
	}
	a.screenWidth = w
	a.screenHeight = h
	a.viewer.Resize(int(w), int(h))
}
