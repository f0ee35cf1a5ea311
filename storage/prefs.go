package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"slices"
	"strconv"
)

// Preference keys.
const (
	KeyMolecule   = "viewer.molecule"
	KeySpeed      = "viewer.speed"
	KeyAutoRotate = "viewer.auto_rotate"
	KeyFavorites  = "viewer.favorites"
)

// Snapshot is the set of remembered viewer preferences. Zero values mean
// "not stored": an empty Molecule, a zero Speed or a nil AutoRotate.
type Snapshot struct {
	Molecule   string
	Speed      float64
	AutoRotate *bool
	Favorites  []string
}

// Prefs reads and writes viewer preferences through a Store.
type Prefs struct {
	store Store
}

// NewPrefs wraps a store.
func NewPrefs(store Store) *Prefs {
	return &Prefs{store: store}
}

// Store returns the underlying store.
func (p *Prefs) Store() Store {
	return p.store
}

// Load reads every preference. Malformed values are treated as unset.
func (p *Prefs) Load(ctx context.Context) (Snapshot, error) {
	var snap Snapshot

	if v, ok, err := p.store.Get(ctx, KeyMolecule); err != nil {
		return snap, err
	} else if ok {
		snap.Molecule = v
	}

	if v, ok, err := p.store.Get(ctx, KeySpeed); err != nil {
		return snap, err
	} else if ok {
		if f, err := strconv.ParseFloat(v, 64); err == nil && f > 0 {
			snap.Speed = f
		}
	}

	if v, ok, err := p.store.Get(ctx, KeyAutoRotate); err != nil {
		return snap, err
	} else if ok {
		if b, err := strconv.ParseBool(v); err == nil {
			snap.AutoRotate = &b
		}
	}

	favs, err := p.Favorites(ctx)
	if err != nil {
		return snap, err
	}
	snap.Favorites = favs
	return snap, nil
}

// SaveMolecule remembers the selected molecule.
func (p *Prefs) SaveMolecule(ctx context.Context, name string) error {
	return p.store.Set(ctx, KeyMolecule, name)
}

// SaveSpeed remembers the rotation speed.
func (p *Prefs) SaveSpeed(ctx context.Context, speed float64) error {
	return p.store.Set(ctx, KeySpeed, strconv.FormatFloat(speed, 'g', -1, 64))
}

// SaveAutoRotate remembers the auto-rotate flag.
func (p *Prefs) SaveAutoRotate(ctx context.Context, on bool) error {
	return p.store.Set(ctx, KeyAutoRotate, strconv.FormatBool(on))
}

// Favorites returns the favourite molecule names in the order they were added.
func (p *Prefs) Favorites(ctx context.Context) ([]string, error) {
	v, ok, err := p.store.Get(ctx, KeyFavorites)
	if err != nil || !ok {
		return nil, err
	}
	var favs []string
	if err := json.Unmarshal([]byte(v), &favs); err != nil {
		return nil, nil
	}
	return favs, nil
}

// IsFavorite reports whether name is a favourite.
func (p *Prefs) IsFavorite(ctx context.Context, name string) (bool, error) {
	favs, err := p.Favorites(ctx)
	if err != nil {
		return false, err
	}
	return slices.Contains(favs, name), nil
}

// ToggleFavorite adds or removes name and reports whether it is now a favourite.
func (p *Prefs) ToggleFavorite(ctx context.Context, name string) (bool, error) {
	favs, err := p.Favorites(ctx)
	if err != nil {
		return false, err
	}
	now := true
	if i := slices.Index(favs, name); i >= 0 {
		favs = slices.Delete(favs, i, i+1)
		now = false
	} else {
		favs = append(favs, name)
	}
	data, err := json.Marshal(favs)
	if err != nil {
		return false, fmt.Errorf("encoding favorites: %w", err)
	}
	if err := p.store.Set(ctx, KeyFavorites, string(data)); err != nil {
		return false, err
	}
	return now, nil
}

// Reset removes every viewer preference.
func (p *Prefs) Reset(ctx context.Context) error {
	for _, k := range []string{KeyMolecule, KeySpeed, KeyAutoRotate, KeyFavorites} {
		if err := p.store.Delete(ctx, k); err != nil {
			return err
		}
	}
	return nil
}
