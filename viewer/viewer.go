// Package viewer drives an interactive molecule view: it owns the viewer
// state, rebuilds the scene on selection changes, and steps rotation,
// bobbing and particle drift once per frame before handing the composed
// frame to a Backend.
//
// A Viewer is single-owner: every method must be called from the goroutine
// that calls Frame. Use a Runner to drive a viewer from a ticker and to
// post events from other goroutines.
package viewer

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/pthm-cable/molview/camera"
	"github.com/pthm-cable/molview/config"
	"github.com/pthm-cable/molview/geom"
	"github.com/pthm-cable/molview/molecule"
	"github.com/pthm-cable/molview/scene"
	"github.com/pthm-cable/molview/telemetry"
)

// ErrClosed is returned by Frame after Close.
var ErrClosed = errors.New("viewer: closed")

// Backend draws composed frames.
type Backend interface {
	// Resize is called with every valid viewport size before the next Submit.
	Resize(width, height int)
	// Submit draws one frame. The frame is reused after Submit returns.
	Submit(f *scene.Frame) error
	// Close releases every graphics resource the backend holds.
	Close() error
}

// Idler is implemented by backends that need a per-frame call while the
// viewport is invalid and nothing is submitted. The window backend uses it
// to keep polling events, since raylib only polls at the end of a drawn frame.
type Idler interface {
	Idle()
}

// Rotation is a pair of Euler angles in radians, applied X then Y.
type Rotation struct {
	X, Y float64
}

// State is the per-viewer interaction state.
type State struct {
	AutoRotate bool
	Speed      float64 // Radians per frame on the primary (Y) axis
	Selected   *molecule.Molecule
	Target     Rotation // Pointer-derived target, chased in manual mode
	Rotation   Rotation // Accumulated molecule rotation
}

// Viewer is one molecule view.
type Viewer struct {
	cfg     *config.Config
	vc      config.ViewerConfig
	catalog *molecule.Catalog
	state   State

	builder *scene.Builder
	graph   *scene.Graph
	env     *scene.Environment
	cam     *camera.Camera
	backend Backend

	perf    *telemetry.PerfCollector
	out     *telemetry.OutputManager
	lastLog float64

	frame     scene.Frame
	index     uint64
	sizeValid bool

	pendingCatalog *molecule.Catalog
	closed         bool
}

// New creates a viewer showing cfg.Viewer.DefaultMolecule (or the first
// catalog entry if it is absent) with the configured speed and mode.
func New(cfg *config.Config, catalog *molecule.Catalog, backend Backend) (*Viewer, error) {
	if catalog == nil || catalog.Len() == 0 {
		return nil, errors.New("viewer: empty catalog")
	}
	if backend == nil {
		return nil, errors.New("viewer: nil backend")
	}

	v := &Viewer{
		cfg:     cfg,
		vc:      cfg.Viewer,
		catalog: catalog,
		builder: scene.NewBuilder(scene.StyleFromConfig(cfg)),
		env:     scene.NewEnvironment(cfg),
		cam:     camera.New(cfg.Camera.FOV, cfg.Camera.Distance, cfg.Camera.Near, cfg.Camera.Far, 0, 0),
		backend: backend,
	}
	v.state.AutoRotate = cfg.Viewer.AutoRotate
	v.state.Speed = v.clampSpeed(cfg.Viewer.RotationSpeed)

	m, ok := catalog.Lookup(cfg.Viewer.DefaultMolecule)
	if !ok {
		if cfg.Viewer.DefaultMolecule != "" {
			slog.Warn("default molecule not in catalog", "molecule", cfg.Viewer.DefaultMolecule)
		}
		m = catalog.At(0)
	}
	v.rebuild(m)

	v.Resize(cfg.Screen.Width, cfg.Screen.Height)
	return v, nil
}

// SetTelemetry attaches frame timing and CSV output. Either may be nil.
func (v *Viewer) SetTelemetry(perf *telemetry.PerfCollector, out *telemetry.OutputManager) {
	v.perf = perf
	v.out = out
}

// Frame runs one render loop step at wall-clock time now (seconds):
//
//  1. apply pending catalog reloads
//  2. advance rotation (auto) or chase the pointer target (manual)
//  3. bob atoms from their base positions
//  4. advance the particle field
//  5. compose and submit; while the viewport is invalid the backend is
//     only idled
func (v *Viewer) Frame(now float64) error {
	if v.closed {
		return ErrClosed
	}
	v.perf.StartFrame()

	v.perf.StartPhase(telemetry.PhasePending)
	v.applyPending()

	v.perf.StartPhase(telemetry.PhaseRotation)
	v.stepRotation()

	v.perf.StartPhase(telemetry.PhaseBob)
	v.builder.Bob(now, v.vc.BobAmplitude, v.vc.BobFrequency)

	v.perf.StartPhase(telemetry.PhaseParticles)
	v.env.Advance()

	var err error
	if v.sizeValid {
		v.perf.StartPhase(telemetry.PhaseCompose)
		f := scene.Compose(v.graph, v.env, geom.Euler(v.state.Rotation.X, v.state.Rotation.Y), &v.frame)
		f.Index = v.index
		f.Time = now
		f.Width = v.cam.ViewportW
		f.Height = v.cam.ViewportH

		v.perf.StartPhase(telemetry.PhaseSubmit)
		err = v.backend.Submit(f)
	} else if idler, ok := v.backend.(Idler); ok {
		idler.Idle()
	}
	v.perf.EndFrame()
	v.recordPerf(now)
	v.index++

	if err != nil {
		return fmt.Errorf("submitting frame %d: %w", v.index-1, err)
	}
	return nil
}

// stepRotation applies one frame of auto rotation or damped pursuit.
func (v *Viewer) stepRotation() {
	r := &v.state.Rotation
	if v.state.AutoRotate {
		r.Y += v.state.Speed
		r.X += v.state.Speed * v.vc.SecondaryRatio
		return
	}
	r.X = geom.Lerp(r.X, v.state.Target.X, v.vc.Damping)
	r.Y = geom.Lerp(r.Y, v.state.Target.Y, v.vc.Damping)
}

// recordPerf flushes a full timing window to CSV and the log.
func (v *Viewer) recordPerf(now float64) {
	if !v.perf.WindowFull() {
		return
	}
	stats := v.perf.Stats()
	if err := v.out.WriteFrame(stats, v.index, v.state.Selected.Name); err != nil {
		slog.Warn("frame telemetry", "error", err)
	}
	if interval := v.cfg.Telemetry.LogInterval; interval > 0 && now-v.lastLog >= interval {
		slog.Info("perf", "stats", stats)
		v.lastLog = now
	}
	v.perf.Reset()
}

// rebuild replaces the scene graph with m's geometry.
func (v *Viewer) rebuild(m *molecule.Molecule) {
	v.graph = v.builder.Build(m)
	v.state.Selected = m
}

// applyPending swaps in a reloaded catalog. The selection survives when the
// new catalog still has a molecule of the same name.
func (v *Viewer) applyPending() {
	c := v.pendingCatalog
	if c == nil {
		return
	}
	v.pendingCatalog = nil
	v.catalog = c

	name := v.state.Selected.Name
	m, ok := c.Lookup(name)
	if !ok {
		m = c.At(0)
		v.state.Rotation = Rotation{}
	}
	v.rebuild(m)
	v.emit(telemetry.EventReload, float64(c.Len()), name)
	slog.Info("catalog reloaded", "molecules", c.Len(), "selected", m.Name)
}

// SetCatalog queues a replacement catalog, applied at the start of the next
// frame. Empty catalogs are ignored.
func (v *Viewer) SetCatalog(c *molecule.Catalog) {
	if c == nil || c.Len() == 0 {
		return
	}
	v.pendingCatalog = c
}

// Resize updates the viewport. Zero or negative sizes mark the viewport
// invalid: frames keep stepping but are not submitted until a valid size
// arrives.
func (v *Viewer) Resize(width, height int) {
	if width <= 0 || height <= 0 {
		if v.sizeValid {
			slog.Debug("viewport invalid, pausing submission", "width", width, "height", height)
		}
		v.sizeValid = false
		return
	}
	changed := v.cam.Resize(width, height)
	if changed || !v.sizeValid {
		v.backend.Resize(width, height)
		v.emit(telemetry.EventResize, float64(width), fmt.Sprintf("%dx%d", width, height))
	}
	v.sizeValid = true
}

// Close stops the viewer: the scene graph is disposed and the backend
// closed. Later frames return ErrClosed. Calling Close again is a no-op.
func (v *Viewer) Close() error {
	if v.closed {
		return nil
	}
	v.closed = true
	v.builder.Dispose()
	v.graph = nil
	v.pendingCatalog = nil
	if err := v.backend.Close(); err != nil {
		return fmt.Errorf("closing backend: %w", err)
	}
	return nil
}

// emit records a control event.
func (v *Viewer) emit(t telemetry.EventType, value float64, detail string) {
	e := telemetry.Event{Type: t, Frame: v.index, Value: value, Detail: detail}
	if v.state.Selected != nil {
		e.Molecule = v.state.Selected.Name
	}
	e.LogEvent()
	if err := v.out.WriteEvent(e); err != nil {
		slog.Warn("event telemetry", "error", err)
	}
}
