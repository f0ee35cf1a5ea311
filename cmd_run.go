package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/pthm-cable/molview/molecule"
	"github.com/pthm-cable/molview/renderer"
	"github.com/pthm-cable/molview/telemetry"
	"github.com/pthm-cable/molview/viewer"
	"github.com/pthm-cable/molview/watch"
)

var runOpts struct {
	frames   int
	duration time.Duration
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Drive the viewer headless from a frame ticker",
	Long: `Run the render loop on a fixed-interval ticker with the CPU raytracer
as backend and no file output. Combine with --output-dir to collect frame
timing, and with catalog.watch to exercise hot reload.`,
	RunE: runHeadless,
}

func init() {
	runCmd.Flags().IntVar(&runOpts.frames, "frames", 0, "Stop after N frames (0 = unlimited)")
	runCmd.Flags().DurationVar(&runOpts.duration, "duration", 0, "Stop after this long (0 = unlimited)")
}

func runHeadless(cmd *cobra.Command, args []string) error {
	cfg := recordConfig()
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()
	if runOpts.duration > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, runOpts.duration)
		defer cancel()
	}

	catalog, err := loadCatalog(&cfg)
	if err != nil {
		return err
	}
	rt, err := renderer.NewRaytracer(&cfg, cfg.Record.Width, cfg.Record.Height)
	if err != nil {
		return err
	}
	out, err := telemetry.NewOutputManager(outputDir)
	if err != nil {
		return err
	}
	defer out.Close()

	v, err := viewer.New(&cfg, catalog, rt)
	if err != nil {
		return err
	}
	v.SetTelemetry(telemetry.NewPerfCollector(cfg.Telemetry.PerfWindow), out)

	runner := viewer.NewRunner(v, seconds(cfg.Derived.FrameInterval))
	runner.MaxFrames = runOpts.frames

	g, gctx := errgroup.WithContext(ctx)
	loopCtx, cancelLoop := context.WithCancel(gctx)
	defer cancelLoop()

	g.Go(func() error {
		defer cancelLoop()
		return runner.Run(loopCtx)
	})

	var watcher *watch.CatalogWatcher
	if cfg.Catalog.Watch && cfg.Catalog.Path != "" {
		watcher, err = watch.New(cfg.Catalog.Path, seconds(cfg.Catalog.Debounce), nil)
		if err != nil {
			cancelLoop()
			g.Wait()
			return err
		}
		g.Go(func() error { return watcher.Run(loopCtx) })
		g.Go(func() error {
			forwardCatalogs(loopCtx, watcher.Catalogs(), runner)
			return nil
		})
	}

	slog.Info("headless run started",
		"molecule", v.Selected().Name,
		"max_frames", runOpts.frames,
		"duration", runOpts.duration,
		"session", out.Session(),
	)
	err = g.Wait()

	attrs := []any{"frames", v.FrameIndex()}
	if watcher != nil {
		st := watcher.Stats()
		attrs = append(attrs, "reloads", st.Reloads, "errors", st.Errors)
	}
	slog.Info("headless run finished", attrs...)
	return err
}

// forwardCatalogs posts reloaded catalogs to the runner until ctx ends.
func forwardCatalogs(ctx context.Context, catalogs <-chan *molecule.Catalog, runner *viewer.Runner) {
	for {
		select {
		case <-ctx.Done():
			return
		case c := <-catalogs:
			if !runner.Post(func(v *viewer.Viewer) { v.SetCatalog(c) }) {
				return
			}
		}
	}
}
