// Package app runs the interactive molecule viewer in a raylib window.
package app

import (
	"context"
	"fmt"
	"log/slog"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/molview/config"
	"github.com/pthm-cable/molview/molecule"
	"github.com/pthm-cable/molview/renderer/gpu"
	"github.com/pthm-cable/molview/session"
	"github.com/pthm-cable/molview/storage"
	"github.com/pthm-cable/molview/telemetry"
	"github.com/pthm-cable/molview/ui"
	"github.com/pthm-cable/molview/viewer"
)

// Options configures an App.
type Options struct {
	Config  *config.Config
	Catalog *molecule.Catalog
	Prefs   *storage.Prefs // nil = nothing remembered

	// Catalogs, if set, delivers reloaded catalogs (see watch.CatalogWatcher).
	Catalogs <-chan *molecule.Catalog

	OutputDir string // CSV telemetry; empty disables
}

// App holds the window-side state around a viewer.
type App struct {
	cfg      *config.Config
	session  *session.Session
	viewer   *viewer.Viewer
	window   *gpu.Window
	catalogs <-chan *molecule.Catalog
	out      *telemetry.OutputManager

	hud      *ui.HUD
	controls *ui.ControlsPanel
	overlays *ui.OverlayRegistry

	// Panel requests from the last drawn frame, applied on the next Update.
	actions ui.Actions

	screenWidth, screenHeight int32
}

// New creates the app. It must be called after rl.InitWindow.
func New(ctx context.Context, opts Options) (*App, error) {
	cfg := *opts.Config
	snap, err := session.Restore(ctx, opts.Prefs, &cfg.Viewer)
	if err != nil {
		slog.Warn("ignoring stored preferences", "error", err)
	} else if snap.Molecule != "" {
		slog.Info("restored preferences", "molecule", snap.Molecule, "favorites", len(snap.Favorites))
	}

	out, err := telemetry.NewOutputManager(opts.OutputDir)
	if err != nil {
		return nil, err
	}
	if err := out.WriteConfig(&cfg); err != nil {
		slog.Warn("writing config snapshot", "error", err)
	}

	a := &App{
		cfg:          &cfg,
		window:       gpu.NewWindow(&cfg),
		catalogs:     opts.Catalogs,
		out:          out,
		hud:          ui.NewHUD(),
		overlays:     ui.NewOverlayRegistry(),
		actions:      ui.Actions{Select: -1},
		screenWidth:  int32(rl.GetScreenWidth()),
		screenHeight: int32(rl.GetScreenHeight()),
	}
	t := ui.DefaultTheme()
	a.controls = ui.NewControlsPanel(t.Padding*2, 80, 240)
	a.window.Overlay = a.drawOverlays

	v, err := viewer.New(&cfg, opts.Catalog, a.window)
	if err != nil {
		a.window.Close()
		out.Close()
		return nil, err
	}
	v.SetTelemetry(telemetry.NewPerfCollector(cfg.Telemetry.PerfWindow), out)
	v.Resize(int(a.screenWidth), int(a.screenHeight))
	a.viewer = v

	a.session, err = session.New(ctx, v, opts.Prefs)
	if err != nil {
		v.Close()
		out.Close()
		return nil, err
	}

	slog.Info("viewer started",
		"molecule", v.Selected().Name,
		"catalog", opts.Catalog.Len(),
		"session", out.Session(),
	)
	return a, nil
}

// Update applies input and catalog reloads for the next frame.
func (a *App) Update() {
	a.handleInput()
	a.applyActions()
	a.drainCatalogs()
}

// Draw steps the viewer and renders one frame.
func (a *App) Draw() error {
	if err := a.viewer.Frame(rl.GetTime()); err != nil {
		return fmt.Errorf("frame: %w", err)
	}
	return nil
}

// Unload closes the viewer and telemetry output.
func (a *App) Unload() {
	if err := a.viewer.Close(); err != nil {
		slog.Warn("closing viewer", "error", err)
	}
	if err := a.out.Close(); err != nil {
		slog.Warn("closing telemetry", "error", err)
	}
}

// Frame returns the number of frames stepped so far.
func (a *App) Frame() uint64 {
	return a.viewer.FrameIndex()
}

// drainCatalogs hands the newest reloaded catalog to the viewer.
func (a *App) drainCatalogs() {
	if a.catalogs == nil {
		return
	}
	select {
	case c, ok := <-a.catalogs:
		if !ok {
			a.catalogs = nil
			return
		}
		a.viewer.SetCatalog(c)
	default:
	}
}

// applyActions runs the panel requests collected while drawing.
func (a *App) applyActions() {
	act := a.actions
	a.actions = ui.Actions{Select: -1}
	if act.None() {
		return
	}
	if act.Select >= 0 {
		if err := a.session.Select(act.Select); err != nil {
			slog.Warn("select", "index", act.Select, "error", err)
		}
	}
	if act.ToggleAuto {
		a.session.ToggleAutoRotate()
	}
	if act.SpeedUp {
		a.session.SpeedUp()
	}
	if act.SlowDown {
		a.session.SlowDown()
	}
	if act.SetSpeed {
		a.session.SetSpeed(act.Speed)
	}
	if act.Reset {
		a.session.ResetOrientation()
	}
	if act.ToggleFavorite {
		a.session.ToggleFavorite()
	}
}
