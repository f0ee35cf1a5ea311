package main

import (
	"context"
	"os"
	"os/signal"

	rl "github.com/gen2brain/raylib-go/raylib"
	"github.com/spf13/cobra"

	"github.com/pthm-cable/molview/app"
	"github.com/pthm-cable/molview/config"
	"github.com/pthm-cable/molview/molecule"
	"github.com/pthm-cable/molview/watch"
)

var viewMaxFrames int

var viewCmd = &cobra.Command{
	Use:   "view",
	Short: "Open the interactive viewer window (default)",
	RunE:  runView,
}

func runView(cmd *cobra.Command, args []string) error {
	cfg := config.Cfg()
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	catalog, err := loadCatalog(cfg)
	if err != nil {
		return err
	}
	prefs, err := openPrefs(cfg)
	if err != nil {
		return err
	}
	defer prefs.Store().Close()

	catalogs, stopWatch, err := startWatcher(ctx, cfg)
	if err != nil {
		return err
	}
	defer stopWatch()

	rl.SetConfigFlags(rl.FlagWindowResizable | rl.FlagMsaa4xHint)
	rl.InitWindow(int32(cfg.Screen.Width), int32(cfg.Screen.Height), cfg.Screen.Title)
	defer rl.CloseWindow()
	rl.SetTargetFPS(int32(cfg.Screen.TargetFPS))

	a, err := app.New(ctx, app.Options{
		Config:    cfg,
		Catalog:   catalog,
		Prefs:     prefs,
		Catalogs:  catalogs,
		OutputDir: outputDir,
	})
	if err != nil {
		return err
	}
	defer a.Unload()

	for !rl.WindowShouldClose() && ctx.Err() == nil {
		a.Update()
		if err := a.Draw(); err != nil {
			return err
		}
		if viewMaxFrames > 0 && a.Frame() >= uint64(viewMaxFrames) {
			break
		}
	}
	return nil
}

// startWatcher starts a catalog watcher when the config asks for one. The
// returned channel is nil otherwise.
func startWatcher(ctx context.Context, cfg *config.Config) (<-chan *molecule.Catalog, func(), error) {
	if !cfg.Catalog.Watch || cfg.Catalog.Path == "" {
		return nil, func() {}, nil
	}
	w, err := watch.New(cfg.Catalog.Path, seconds(cfg.Catalog.Debounce), nil)
	if err != nil {
		return nil, nil, err
	}
	w.Start(ctx)
	return w.Catalogs(), func() { w.Stop() }, nil
}
