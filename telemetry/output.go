package telemetry

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/dustin/go-humanize"
	"github.com/gocarina/gocsv"
	"github.com/google/uuid"

	"github.com/pthm-cable/molview/config"
)

// OutputManager writes a viewer session's CSV logs into a directory.
// A nil *OutputManager is valid and discards everything.
type OutputManager struct {
	dir       string
	session   string
	framesCSV *os.File
	eventsCSV *os.File

	// Track if headers have been written
	framesHeaderWritten bool
	eventsHeaderWritten bool

	frameRows int
	eventRows int
}

// NewOutputManager creates a new output manager and initializes the output directory.
// Returns nil if dir is empty (output disabled).
func NewOutputManager(dir string) (*OutputManager, error) {
	if dir == "" {
		return nil, nil
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("creating output directory: %w", err)
	}

	om := &OutputManager{dir: dir, session: uuid.NewString()}

	f, err := os.Create(filepath.Join(dir, "frames.csv"))
	if err != nil {
		return nil, fmt.Errorf("creating frames.csv: %w", err)
	}
	om.framesCSV = f

	f, err = os.Create(filepath.Join(dir, "events.csv"))
	if err != nil {
		om.framesCSV.Close()
		return nil, fmt.Errorf("creating events.csv: %w", err)
	}
	om.eventsCSV = f

	return om, nil
}

// Session returns the random id tagging every row of this run.
func (om *OutputManager) Session() string {
	if om == nil {
		return ""
	}
	return om.session
}

// WriteConfig saves the current configuration as YAML.
func (om *OutputManager) WriteConfig(cfg *config.Config) error {
	if om == nil {
		return nil
	}
	return cfg.WriteYAML(filepath.Join(om.dir, "config.yaml"))
}

// WriteFrame appends a window of frame timing to frames.csv.
func (om *OutputManager) WriteFrame(stats PerfStats, frame uint64, molecule string) error {
	if om == nil {
		return nil
	}
	row := stats.ToCSV(frame, molecule)
	row.Session = om.session
	if err := writeRows(om.framesCSV, []PerfStatsCSV{row}, &om.framesHeaderWritten); err != nil {
		return fmt.Errorf("writing frames: %w", err)
	}
	om.frameRows++
	return nil
}

// WriteEvent appends a control event to events.csv.
func (om *OutputManager) WriteEvent(e Event) error {
	if om == nil {
		return nil
	}
	row := e.ToCSV()
	row.Session = om.session
	if err := writeRows(om.eventsCSV, []EventCSV{row}, &om.eventsHeaderWritten); err != nil {
		return fmt.Errorf("writing events: %w", err)
	}
	om.eventRows++
	return nil
}

// writeRows writes the header once, then rows only.
func writeRows(f *os.File, rows any, headerWritten *bool) error {
	if !*headerWritten {
		if err := gocsv.Marshal(rows, f); err != nil {
			return err
		}
		*headerWritten = true
		return nil
	}
	return gocsv.MarshalWithoutHeaders(rows, f)
}

// Dir returns the output directory path.
func (om *OutputManager) Dir() string {
	if om == nil {
		return ""
	}
	return om.dir
}

// Close closes all output files and logs what was written.
func (om *OutputManager) Close() error {
	if om == nil {
		return nil
	}

	var firstErr error
	var written int64
	for _, f := range []*os.File{om.framesCSV, om.eventsCSV} {
		if f == nil {
			continue
		}
		if info, err := f.Stat(); err == nil {
			written += info.Size()
		}
		if err := f.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}

	slog.Info("telemetry written",
		"dir", om.dir,
		"session", om.session,
		"frame_rows", om.frameRows,
		"event_rows", om.eventRows,
		"size", humanize.Bytes(uint64(written)),
	)
	return firstErr
}
