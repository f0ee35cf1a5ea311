package main

import (
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/pthm-cable/molview/config"
	"github.com/pthm-cable/molview/molecule"
	"github.com/pthm-cable/molview/storage"
)

var (
	configPath string
	outputDir  string
	verbose    bool
)

// rootCmd opens the viewer window when run without a subcommand.
var rootCmd = &cobra.Command{
	Use:           "molview",
	Short:         "Interactive 3D ball-and-stick molecule viewer",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		level := slog.LevelInfo
		if verbose {
			level = slog.LevelDebug
		}
		// JSON to stdout for structured logging
		slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level})))

		// Initialize config before anything else
		return config.Init(configPath)
	},
	RunE: runView,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to config.yaml (empty = use defaults)")
	rootCmd.PersistentFlags().StringVar(&outputDir, "output-dir", "", "Directory for CSV telemetry and config snapshot")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")

	rootCmd.Flags().IntVar(&viewMaxFrames, "max-frames", 0, "Close the window after N frames (0 = unlimited)")
	viewCmd.Flags().IntVar(&viewMaxFrames, "max-frames", 0, "Close the window after N frames (0 = unlimited)")

	rootCmd.AddCommand(viewCmd)
	rootCmd.AddCommand(recordCmd)
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(catalogCmd)
	rootCmd.AddCommand(prefsCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		slog.Error("command failed", "error", err)
		os.Exit(1)
	}
}

// loadCatalog returns the builtin catalog merged with the configured user file.
func loadCatalog(cfg *config.Config) (*molecule.Catalog, error) {
	c, err := molecule.Load(cfg.Catalog.Path)
	if err != nil {
		return nil, err
	}
	slog.Debug("catalog loaded", "path", cfg.Catalog.Path, "molecules", c.Len())
	return c, nil
}

// openPrefs opens the configured preference store.
func openPrefs(cfg *config.Config) (*storage.Prefs, error) {
	store, err := storage.Open(cfg.Storage.Path)
	if err != nil {
		return nil, err
	}
	return storage.NewPrefs(store), nil
}

func seconds(s float64) time.Duration {
	return time.Duration(s * float64(time.Second))
}
