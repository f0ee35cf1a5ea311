package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/pthm-cable/molview/config"
	"github.com/pthm-cable/molview/renderer"
	"github.com/pthm-cable/molview/telemetry"
	"github.com/pthm-cable/molview/viewer"
)

var recordOpts struct {
	molecule string
	out      string
	poster   string
	frames   int
	width    int
	height   int
	workers  int
}

var recordCmd = &cobra.Command{
	Use:   "record",
	Short: "Render an auto-rotating molecule to an animated GIF without a window",
	Long: `Render frames with the CPU raytracer and write them as an animated GIF.

Width, height, frame count and worker count default to the record section
of the config. The rotation runs at the configured speed, one step per frame.`,
	Example: `  molview record --molecule Benzene --out benzene.gif --poster benzene.png`,
	RunE:    runRecord,
}

func init() {
	f := recordCmd.Flags()
	f.StringVarP(&recordOpts.molecule, "molecule", "m", "", "Molecule to record (empty = configured default)")
	f.StringVarP(&recordOpts.out, "out", "o", "molecule.gif", "Output GIF path")
	f.StringVar(&recordOpts.poster, "poster", "", "Also write the last frame as a PNG")
	f.IntVar(&recordOpts.frames, "frames", 0, "Frames to record (0 = config)")
	f.IntVar(&recordOpts.width, "width", 0, "Frame width (0 = config)")
	f.IntVar(&recordOpts.height, "height", 0, "Frame height (0 = config)")
	f.IntVar(&recordOpts.workers, "workers", -1, "Render workers (-1 = config, 0 = one per CPU)")
}

// recordConfig returns the headless config with the record flags applied.
// The run command shares it.
func recordConfig() config.Config {
	base := *config.Cfg()
	if recordOpts.frames > 0 {
		base.Record.Frames = recordOpts.frames
	}
	if recordOpts.width > 0 {
		base.Record.Width = recordOpts.width
	}
	if recordOpts.height > 0 {
		base.Record.Height = recordOpts.height
	}
	if recordOpts.workers >= 0 {
		base.Record.Workers = recordOpts.workers
	}
	cfg := *base.Headless()
	if recordOpts.molecule != "" {
		cfg.Viewer.DefaultMolecule = recordOpts.molecule
	}
	return cfg
}

func runRecord(cmd *cobra.Command, args []string) error {
	cfg := recordConfig()
	// A recording always spins; manual mode has no pointer to follow.
	cfg.Viewer.AutoRotate = true
	catalog, err := loadCatalog(&cfg)
	if err != nil {
		return err
	}
	if _, ok := catalog.Lookup(cfg.Viewer.DefaultMolecule); !ok {
		return fmt.Errorf("unknown molecule %q", cfg.Viewer.DefaultMolecule)
	}

	rt, err := renderer.NewRaytracer(&cfg, cfg.Record.Width, cfg.Record.Height)
	if err != nil {
		return err
	}
	rec := renderer.NewGIFRecorder(rt, recordOpts.out, cfg.Record.Delay)
	if recordOpts.poster != "" {
		rec.SetPoster(recordOpts.poster)
	}

	out, err := telemetry.NewOutputManager(outputDir)
	if err != nil {
		return err
	}
	defer out.Close()
	if err := out.WriteConfig(&cfg); err != nil {
		slog.Warn("writing config snapshot", "error", err)
	}

	v, err := viewer.New(&cfg, catalog, rec)
	if err != nil {
		return err
	}
	v.SetTelemetry(telemetry.NewPerfCollector(cfg.Telemetry.PerfWindow), out)

	slog.Info("recording",
		"molecule", v.Selected().Name,
		"frames", cfg.Record.Frames,
		"size", fmt.Sprintf("%dx%d", cfg.Record.Width, cfg.Record.Height),
	)
	dt := cfg.Derived.FrameInterval
	for i := 0; i < cfg.Record.Frames; i++ {
		if err := v.Frame(float64(i) * dt); err != nil {
			v.Close()
			return err
		}
	}
	// Closing the viewer closes the recorder, which writes the files.
	return v.Close()
}
