package app

import (
	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/molview/scene"
	"github.com/pthm-cable/molview/ui"
)

// drawOverlays renders the 2D layer on top of each submitted frame.
func (a *App) drawOverlays(f *scene.Frame) {
	v := a.viewer
	hud := a.hudData()

	if a.overlays.IsEnabled(ui.OverlayCaption) {
		a.hud.DrawCaption(v.Caption(), a.session.IsFavorite(v.Selected().Name))
	}
	if a.overlays.IsEnabled(ui.OverlayLegend) {
		a.hud.DrawLegend(f, hud.ScreenHeight)
	}
	a.hud.DrawStatus(hud)
	if a.overlays.IsEnabled(ui.OverlayStats) {
		a.hud.DrawStats(f, hud)
	}
	if a.overlays.IsEnabled(ui.OverlayControls) {
		a.actions = a.controls.Draw(a.controlsData())
	}
	if a.overlays.IsEnabled(ui.OverlayHelp) {
		a.hud.DrawHelp(a.overlays, hud.ScreenWidth, hud.ScreenHeight)
	} else {
		a.hud.DrawHint(hud.ScreenWidth, hud.ScreenHeight)
	}
}

func (a *App) hudData() ui.HUDData {
	v := a.viewer
	vc := a.cfg.Viewer
	return ui.HUDData{
		AutoRotate:   v.AutoRotating(),
		Speed:        v.Speed(),
		MinSpeed:     vc.MinSpeed,
		MaxSpeed:     vc.MaxSpeed,
		FPS:          rl.GetFPS(),
		Frame:        v.FrameIndex(),
		ScreenWidth:  a.screenWidth,
		ScreenHeight: a.screenHeight,
	}
}

func (a *App) controlsData() ui.ControlsData {
	v := a.viewer
	vc := a.cfg.Viewer
	selected, _ := v.Catalog().Index(v.Selected().Name)
	return ui.ControlsData{
		Molecules:  v.Catalog().Names(),
		Favorites:  a.session.FavoriteFlags(),
		Selected:   selected,
		AutoRotate: v.AutoRotating(),
		Speed:      v.Speed(),
		MinSpeed:   vc.MinSpeed,
		MaxSpeed:   vc.MaxSpeed,
	}
}
