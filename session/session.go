// Package session applies user commands to a viewer and remembers the
// resulting preferences. Keyboard and panel input both go through a
// Session.
package session

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/pthm-cable/molview/config"
	"github.com/pthm-cable/molview/storage"
	"github.com/pthm-cable/molview/viewer"
)

// Restore overlays remembered preferences onto vc. It must run before the
// viewer is created so the first frame already shows the restored state.
// A nil prefs leaves vc untouched.
func Restore(ctx context.Context, prefs *storage.Prefs, vc *config.ViewerConfig) (storage.Snapshot, error) {
	if prefs == nil {
		return storage.Snapshot{}, nil
	}
	snap, err := prefs.Load(ctx)
	if err != nil {
		return snap, fmt.Errorf("loading preferences: %w", err)
	}
	if snap.Molecule != "" {
		vc.DefaultMolecule = snap.Molecule
	}
	if snap.Speed > 0 {
		vc.RotationSpeed = snap.Speed
	}
	if snap.AutoRotate != nil {
		vc.AutoRotate = *snap.AutoRotate
	}
	return snap, nil
}

// Session wraps a viewer with preference persistence.
type Session struct {
	v         *viewer.Viewer
	prefs     *storage.Prefs
	favorites map[string]bool
}

// New creates a session. prefs may be nil, in which case nothing is saved
// and favourites live only for the session.
func New(ctx context.Context, v *viewer.Viewer, prefs *storage.Prefs) (*Session, error) {
	s := &Session{v: v, prefs: prefs, favorites: make(map[string]bool)}
	if prefs == nil {
		return s, nil
	}
	favs, err := prefs.Favorites(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading favorites: %w", err)
	}
	for _, name := range favs {
		s.favorites[name] = true
	}
	return s, nil
}

// Viewer returns the wrapped viewer.
func (s *Session) Viewer() *viewer.Viewer {
	return s.v
}

// Select switches to the i-th catalog molecule.
func (s *Session) Select(i int) error {
	if err := s.v.SelectIndex(i); err != nil {
		return err
	}
	s.save("molecule", func(ctx context.Context, p *storage.Prefs) error {
		return p.SaveMolecule(ctx, s.v.Selected().Name)
	})
	return nil
}

// SelectName switches to the named molecule.
func (s *Session) SelectName(name string) error {
	if err := s.v.Select(name); err != nil {
		return err
	}
	s.save("molecule", func(ctx context.Context, p *storage.Prefs) error {
		return p.SaveMolecule(ctx, name)
	})
	return nil
}

// ToggleAutoRotate flips the rotation mode.
func (s *Session) ToggleAutoRotate() bool {
	on := s.v.ToggleAutoRotate()
	s.save("auto_rotate", func(ctx context.Context, p *storage.Prefs) error {
		return p.SaveAutoRotate(ctx, on)
	})
	return on
}

// SpeedUp raises the rotation speed by one step.
func (s *Session) SpeedUp() float64 {
	return s.saveSpeed(s.v.SpeedUp())
}

// SlowDown lowers the rotation speed by one step.
func (s *Session) SlowDown() float64 {
	return s.saveSpeed(s.v.SlowDown())
}

// SetSpeed sets the rotation speed (clamped by the viewer).
func (s *Session) SetSpeed(speed float64) float64 {
	return s.saveSpeed(s.v.SetSpeed(speed))
}

func (s *Session) saveSpeed(speed float64) float64 {
	s.save("speed", func(ctx context.Context, p *storage.Prefs) error {
		return p.SaveSpeed(ctx, speed)
	})
	return speed
}

// ResetOrientation zeroes the molecule rotation. Not persisted.
func (s *Session) ResetOrientation() {
	s.v.ResetOrientation()
}

// ToggleFavorite flips the favourite mark of the selected molecule and
// reports whether it is now a favourite.
func (s *Session) ToggleFavorite() bool {
	name := s.v.Selected().Name
	on := !s.favorites[name]
	if s.prefs != nil {
		stored, err := s.prefs.ToggleFavorite(context.Background(), name)
		if err != nil {
			slog.Warn("saving preference failed", "key", "favorites", "error", err)
		} else {
			on = stored
		}
	}
	if on {
		s.favorites[name] = true
	} else {
		delete(s.favorites, name)
	}
	return on
}

// IsFavorite reports whether name is marked favourite.
func (s *Session) IsFavorite(name string) bool {
	return s.favorites[name]
}

// FavoriteFlags returns a favourite flag per catalog entry, in catalog order.
func (s *Session) FavoriteFlags() []bool {
	names := s.v.Catalog().Names()
	flags := make([]bool, len(names))
	for i, name := range names {
		flags[i] = s.favorites[name]
	}
	return flags
}

// save persists one preference. Failures are logged and otherwise ignored.
func (s *Session) save(key string, fn func(context.Context, *storage.Prefs) error) {
	if s.prefs == nil {
		return
	}
	if err := fn(context.Background(), s.prefs); err != nil {
		slog.Warn("saving preference failed", "key", key, "error", err)
	}
}
