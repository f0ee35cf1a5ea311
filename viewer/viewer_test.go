package viewer

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pthm-cable/molview/config"
	"github.com/pthm-cable/molview/molecule"
	"github.com/pthm-cable/molview/scene"
)

// fakeBackend records what the viewer hands it.
type fakeBackend struct {
	submits    int
	resizes    [][2]int
	closed     int
	last       scene.Frame
	failSubmit error
}

func (b *fakeBackend) Resize(w, h int) { b.resizes = append(b.resizes, [2]int{w, h}) }

func (b *fakeBackend) Submit(f *scene.Frame) error {
	if b.failSubmit != nil {
		return b.failSubmit
	}
	b.submits++
	b.last = *f
	return nil
}

func (b *fakeBackend) Close() error {
	b.closed++
	return nil
}

func newTestViewer(t *testing.T) (*Viewer, *fakeBackend) {
	t.Helper()
	backend := &fakeBackend{}
	v, err := New(config.Defaults(), molecule.Builtin(), backend)
	require.NoError(t, err)
	return v, backend
}

func TestNewDefaults(t *testing.T) {
	v, backend := newTestViewer(t)

	assert.Equal(t, "DNA Fragment", v.Caption().Name)
	assert.True(t, v.AutoRotating())
	assert.Equal(t, 0.005, v.Speed())
	assert.Equal(t, 44, v.Graph().Primitives())
	assert.Equal(t, [][2]int{{1280, 720}}, backend.resizes)
	assert.Len(t, v.Legend(), 4)
}

func TestNewFallsBackToFirstMolecule(t *testing.T) {
	cfg := config.Defaults()
	cfg.Viewer.DefaultMolecule = "Caffeine"
	v, err := New(cfg, molecule.Builtin(), &fakeBackend{})
	require.NoError(t, err)
	assert.Equal(t, molecule.Builtin().At(0).Name, v.Selected().Name)
}

func TestNewRejectsMissingParts(t *testing.T) {
	_, err := New(config.Defaults(), nil, &fakeBackend{})
	assert.Error(t, err)
	_, err = New(config.Defaults(), molecule.Builtin(), nil)
	assert.Error(t, err)
}

func TestAutoRotationAccumulatesLinearly(t *testing.T) {
	v, _ := newTestViewer(t)
	s := v.Speed()

	const n = 500
	for i := 0; i < n; i++ {
		require.NoError(t, v.Frame(float64(i)/60))
	}

	rot := v.State().Rotation
	assert.InDelta(t, n*s, rot.Y, 1e-9)
	assert.InDelta(t, n*s*0.5, rot.X, 1e-9)
}

func TestManualModeConverges(t *testing.T) {
	v, _ := newTestViewer(t)
	v.SetAutoRotate(false)
	v.SetPointer(0.8, -0.5)
	target := v.State().Target
	assert.InDelta(t, -0.5*0.3, target.X, 1e-12)
	assert.InDelta(t, 0.8*0.3, target.Y, 1e-12)

	dist := func() float64 {
		r := v.State().Rotation
		return math.Hypot(target.X-r.X, target.Y-r.Y)
	}

	prev := dist()
	frames := 0
	for prev > 1e-6 {
		require.NoError(t, v.Frame(float64(frames)/60))
		d := dist()
		require.Less(t, d, prev, "frame %d did not move closer", frames)
		prev = d
		frames++
		require.Less(t, frames, 1000, "did not converge")
	}
	// 0.95^n shrinks the initial ~0.28 rad gap below 1e-6 in about 245 frames.
	assert.InDelta(t, 245, frames, 10)
}

func TestManualModeSettlesWithoutPointerMotion(t *testing.T) {
	v, _ := newTestViewer(t)
	v.SetAutoRotate(false)
	v.SetPointer(1, 1)

	for i := 0; i < 2000; i++ {
		require.NoError(t, v.Frame(0))
	}
	rot := v.State().Rotation
	assert.InDelta(t, 0.3, rot.X, 1e-9)
	assert.InDelta(t, 0.3, rot.Y, 1e-9)
}

func TestPointerTargetIgnoredInAutoMode(t *testing.T) {
	v, _ := newTestViewer(t)
	v.SetPointer(1, 1)
	require.NoError(t, v.Frame(0))
	assert.InDelta(t, v.Speed(), v.State().Rotation.Y, 1e-12)
}

func TestPointerMoveUsesViewport(t *testing.T) {
	v, _ := newTestViewer(t)
	v.PointerMove(1280, 0) // top-right corner
	target := v.State().Target
	assert.InDelta(t, 0.3, target.X, 1e-12)
	assert.InDelta(t, 0.3, target.Y, 1e-12)

	v.SetPointer(5, -5)
	target = v.State().Target
	assert.InDelta(t, -0.3, target.X, 1e-12)
	assert.InDelta(t, 0.3, target.Y, 1e-12)
}

func TestSpeedClamping(t *testing.T) {
	v, _ := newTestViewer(t)
	cfg := config.Defaults()

	for i := 0; i < 100; i++ {
		s := v.SpeedUp()
		require.LessOrEqual(t, s, cfg.Viewer.MaxSpeed)
	}
	assert.Equal(t, cfg.Viewer.MaxSpeed, v.Speed())

	for i := 0; i < 100; i++ {
		s := v.SlowDown()
		require.GreaterOrEqual(t, s, cfg.Viewer.MinSpeed)
		require.Greater(t, s, 0.0)
	}
	assert.Equal(t, cfg.Viewer.MinSpeed, v.Speed())

	assert.Equal(t, cfg.Viewer.MaxSpeed, v.SetSpeed(1))
	assert.Equal(t, cfg.Viewer.MinSpeed, v.SetSpeed(-1))
}

func TestResetOrientation(t *testing.T) {
	v, _ := newTestViewer(t)
	for i := 0; i < 37; i++ {
		require.NoError(t, v.Frame(0))
	}
	v.ResetOrientation()
	assert.Equal(t, Rotation{}, v.State().Rotation)

	v.SetAutoRotate(false)
	v.SetPointer(0.5, 0.5)
	for i := 0; i < 10; i++ {
		require.NoError(t, v.Frame(0))
	}
	v.ResetOrientation()
	assert.Equal(t, Rotation{}, v.State().Rotation)
}

func TestSelectPreservesStateAndRebuilds(t *testing.T) {
	v, _ := newTestViewer(t)
	v.SpeedUp()
	v.SetAutoRotate(false)
	v.SetPointer(0.2, 0.2)
	for i := 0; i < 20; i++ {
		require.NoError(t, v.Frame(0))
	}
	dnaCounts := v.Graph().Counts()

	require.NoError(t, v.Select("Water"))
	assert.Equal(t, "Water", v.Caption().Name)
	assert.Equal(t, 0.007, v.Speed())
	assert.False(t, v.AutoRotating())
	assert.Equal(t, Rotation{}, v.State().Rotation)
	assert.Equal(t, scene.Counts{Spheres: 3, Glows: 3, Cylinders: 2}, v.Graph().Counts())

	require.NoError(t, v.SelectIndex(0))
	assert.Equal(t, dnaCounts, v.Graph().Counts())

	assert.Error(t, v.Select("Unobtainium"))
	assert.Error(t, v.SelectIndex(99))
	assert.Equal(t, "DNA Fragment", v.Caption().Name)
}

func TestSelectionVisibleOnNextFrame(t *testing.T) {
	v, backend := newTestViewer(t)
	require.NoError(t, v.Frame(0))
	require.Len(t, backend.last.Spheres, 15)

	require.NoError(t, v.Select("Benzene"))
	require.NoError(t, v.Select("Ethanol"))
	require.NoError(t, v.Frame(1.0/60))
	assert.Len(t, backend.last.Spheres, 9)
	assert.Len(t, backend.last.Cylinders, 8)
	assert.Equal(t, "Ethanol", backend.last.Caption.Name)
}

func TestResizeSkipsInvalidSizes(t *testing.T) {
	v, backend := newTestViewer(t)
	require.NoError(t, v.Frame(0))
	require.Equal(t, 1, backend.submits)

	v.Resize(0, 0)
	assert.False(t, v.ViewportValid())
	require.NoError(t, v.Frame(0))
	require.NoError(t, v.Frame(0))
	assert.Equal(t, 1, backend.submits, "frames submitted with zero-size viewport")
	assert.Equal(t, 1280, v.Camera().ViewportW, "projection changed by invalid size")

	// Rotation kept advancing while hidden.
	assert.InDelta(t, 3*v.Speed(), v.State().Rotation.Y, 1e-12)

	v.Resize(800, 600)
	assert.True(t, v.ViewportValid())
	require.NoError(t, v.Frame(0))
	assert.Equal(t, 2, backend.submits)
	assert.Equal(t, 800, backend.last.Width)
	assert.Equal(t, [2]int{800, 600}, backend.resizes[len(backend.resizes)-1])
}

func TestResizeBackToSameSizeResumes(t *testing.T) {
	v, backend := newTestViewer(t)
	v.Resize(0, 720)
	v.Resize(1280, 720)
	require.NoError(t, v.Frame(0))
	assert.Equal(t, 1, backend.submits)
	assert.Len(t, backend.resizes, 2, "backend should be told about the resumed size")
}

// idleBackend also counts idle calls.
type idleBackend struct {
	fakeBackend
	idles int
}

func (b *idleBackend) Idle() { b.idles++ }

func TestInvalidViewportIdlesBackend(t *testing.T) {
	backend := &idleBackend{}
	v, err := New(config.Defaults(), molecule.Builtin(), backend)
	require.NoError(t, err)

	require.NoError(t, v.Frame(0))
	assert.Equal(t, 0, backend.idles, "valid viewport must submit, not idle")

	v.Resize(0, 0)
	for i := 0; i < 3; i++ {
		require.NoError(t, v.Frame(0))
	}
	assert.Equal(t, 3, backend.idles)
	assert.Equal(t, 1, backend.submits)

	v.Resize(1024, 768)
	require.NoError(t, v.Frame(0))
	assert.Equal(t, 3, backend.idles)
	assert.Equal(t, 2, backend.submits)
}

func TestCloseReleasesResources(t *testing.T) {
	v, backend := newTestViewer(t)
	g := v.Graph()
	require.NoError(t, v.Close())

	assert.True(t, g.Disposed())
	assert.Equal(t, 1, backend.closed)
	assert.ErrorIs(t, v.Frame(0), ErrClosed)

	require.NoError(t, v.Close())
	assert.Equal(t, 1, backend.closed, "backend closed twice")
}

func TestSubmitErrorIsWrapped(t *testing.T) {
	boom := errors.New("device lost")
	v, backend := newTestViewer(t)
	backend.failSubmit = boom
	err := v.Frame(0)
	assert.ErrorIs(t, err, boom)
}

func TestCatalogReloadAppliedOnNextFrame(t *testing.T) {
	v, _ := newTestViewer(t)
	require.NoError(t, v.Select("Water"))

	overlay, err := molecule.Parse([]byte(`
molecules:
  - name: Water
    description: reloaded
    atoms:
      - {element: O, position: [0, 0, 0]}
      - {element: H, position: [0.96, 0, 0]}
`))
	require.NoError(t, err)

	v.SetCatalog(overlay)
	assert.Equal(t, 3, len(v.Selected().Atoms), "reload must wait for the next frame")

	require.NoError(t, v.Frame(0))
	assert.Equal(t, "reloaded", v.Caption().Description)
	assert.Equal(t, scene.Counts{Spheres: 2, Glows: 2}, v.Graph().Counts())
	assert.Equal(t, 1, v.Catalog().Len())
}

func TestCatalogReloadFallsBackWhenSelectionRemoved(t *testing.T) {
	v, _ := newTestViewer(t)
	other, err := molecule.Parse([]byte(`
molecules:
  - name: Helium
    atoms: [{element: He, position: [0, 0, 0]}]
`))
	require.NoError(t, err)

	v.SetCatalog(other)
	require.NoError(t, v.Frame(0))
	assert.Equal(t, "Helium", v.Caption().Name)
}

func TestFrameIndexAdvances(t *testing.T) {
	v, backend := newTestViewer(t)
	for i := 0; i < 3; i++ {
		require.NoError(t, v.Frame(float64(i)))
	}
	assert.Equal(t, uint64(3), v.FrameIndex())
	assert.Equal(t, uint64(2), backend.last.Index)
	assert.Equal(t, 2.0, backend.last.Time)
}
