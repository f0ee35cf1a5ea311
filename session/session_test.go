package session

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pthm-cable/molview/config"
	"github.com/pthm-cable/molview/molecule"
	"github.com/pthm-cable/molview/scene"
	"github.com/pthm-cable/molview/storage"
	"github.com/pthm-cable/molview/viewer"
)

type nopBackend struct{}

func (nopBackend) Resize(int, int)           {}
func (nopBackend) Submit(*scene.Frame) error { return nil }
func (nopBackend) Close() error              { return nil }

func newSession(t *testing.T, prefs *storage.Prefs) *Session {
	t.Helper()
	cfg := config.Defaults()
	_, err := Restore(context.Background(), prefs, &cfg.Viewer)
	require.NoError(t, err)
	v, err := viewer.New(cfg, molecule.Builtin(), nopBackend{})
	require.NoError(t, err)
	t.Cleanup(func() { v.Close() })
	s, err := New(context.Background(), v, prefs)
	require.NoError(t, err)
	return s
}

func TestSessionPersistsAcrossRestarts(t *testing.T) {
	prefs := storage.NewPrefs(storage.NewMemoryStore())

	s := newSession(t, prefs)
	require.NoError(t, s.SelectName("Benzene"))
	s.SpeedUp()
	assert.False(t, s.ToggleAutoRotate())
	assert.True(t, s.ToggleFavorite())

	restarted := newSession(t, prefs)
	v := restarted.Viewer()
	assert.Equal(t, "Benzene", v.Selected().Name)
	assert.InDelta(t, 0.007, v.Speed(), 1e-12)
	assert.False(t, v.AutoRotating())
	assert.True(t, restarted.IsFavorite("Benzene"))
}

func TestSessionSelectByIndex(t *testing.T) {
	prefs := storage.NewPrefs(storage.NewMemoryStore())
	s := newSession(t, prefs)

	require.NoError(t, s.Select(1))
	name := molecule.Builtin().At(1).Name
	assert.Equal(t, name, s.Viewer().Selected().Name)

	snap, err := prefs.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, name, snap.Molecule)

	assert.Error(t, s.Select(-1))
	assert.Error(t, s.SelectName("Unobtainium"))
}

func TestSessionFavoriteFlags(t *testing.T) {
	s := newSession(t, nil)
	require.NoError(t, s.Select(2))
	assert.True(t, s.ToggleFavorite())

	flags := s.FavoriteFlags()
	require.Len(t, flags, molecule.Builtin().Len())
	for i, f := range flags {
		assert.Equal(t, i == 2, f, "flag %d", i)
	}

	assert.False(t, s.ToggleFavorite())
	assert.False(t, s.IsFavorite(molecule.Builtin().At(2).Name))
}

func TestSessionSpeedIsClampedBeforeSaving(t *testing.T) {
	prefs := storage.NewPrefs(storage.NewMemoryStore())
	s := newSession(t, prefs)

	got := s.SetSpeed(10)
	assert.Equal(t, config.Defaults().Viewer.MaxSpeed, got)

	snap, err := prefs.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, got, snap.Speed)
}

// failingStore rejects every write.
type failingStore struct{ *storage.MemoryStore }

func (failingStore) Set(context.Context, string, string) error { return errors.New("disk full") }

func TestSessionIgnoresStoreFailures(t *testing.T) {
	s := newSession(t, storage.NewPrefs(failingStore{storage.NewMemoryStore()}))

	require.NoError(t, s.SelectName("Water"))
	assert.Equal(t, "Water", s.Viewer().Selected().Name)
	assert.True(t, s.ToggleFavorite(), "in-memory favourite still toggles")
	assert.True(t, s.IsFavorite("Water"))
}

func TestRestoreNilPrefs(t *testing.T) {
	vc := config.Defaults().Viewer
	snap, err := Restore(context.Background(), nil, &vc)
	require.NoError(t, err)
	assert.Empty(t, snap.Molecule)
	assert.Equal(t, config.Defaults().Viewer, vc)
}
