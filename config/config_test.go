package config

import (
	"math"
	"os"
	"path/filepath"
	"testing"
)

func TestDefaults(t *testing.T) {
	cfg := Defaults()

	if cfg.Viewer.RotationSpeed != 0.005 {
		t.Errorf("expected default speed 0.005, got %f", cfg.Viewer.RotationSpeed)
	}
	if cfg.Viewer.MinSpeed != 0.001 || cfg.Viewer.MaxSpeed != 0.02 {
		t.Errorf("unexpected speed bounds [%f, %f]", cfg.Viewer.MinSpeed, cfg.Viewer.MaxSpeed)
	}
	if cfg.Scene.GlowScale != 1.3 {
		t.Errorf("expected glow scale 1.3, got %f", cfg.Scene.GlowScale)
	}
	if cfg.Scene.Background.Hex() != "#0A0E1A" {
		t.Errorf("unexpected background %s", cfg.Scene.Background.Hex())
	}
	if len(cfg.Lights.Directional) != 2 || len(cfg.Lights.Point) != 1 {
		t.Errorf("expected 2 directional and 1 point light, got %d/%d",
			len(cfg.Lights.Directional), len(cfg.Lights.Point))
	}
	if math.Abs(cfg.Derived.FrameInterval-1.0/60) > 1e-12 {
		t.Errorf("unexpected frame interval %f", cfg.Derived.FrameInterval)
	}
	if math.Abs(cfg.Derived.FOVRadians-75*math.Pi/180) > 1e-12 {
		t.Errorf("unexpected fov radians %f", cfg.Derived.FOVRadians)
	}
}

func TestLoadOverlay(t *testing.T) {
	path := filepath.Join(t.TempDir(), "viewer.yaml")
	data := []byte("viewer:\n  rotation_speed: 0.01\n  auto_rotate: false\nscreen:\n  target_fps: 30\n")
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Viewer.RotationSpeed != 0.01 || cfg.Viewer.AutoRotate {
		t.Errorf("overlay not applied: %+v", cfg.Viewer)
	}
	// Untouched fields keep their defaults
	if cfg.Viewer.Damping != 0.05 {
		t.Errorf("expected default damping, got %f", cfg.Viewer.Damping)
	}
	if math.Abs(cfg.Derived.FrameInterval-1.0/30) > 1e-12 {
		t.Errorf("derived frame interval not recomputed: %f", cfg.Derived.FrameInterval)
	}
}

func TestHeadlessKeepsViewerSettings(t *testing.T) {
	path := filepath.Join(t.TempDir(), "viewer.yaml")
	data := []byte("viewer:\n  auto_rotate: false\nrecord:\n  width: 320\n  height: 200\n")
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	h := cfg.Headless()
	if h.Viewer.AutoRotate {
		t.Error("headless copy switched auto rotation back on")
	}
	if h.Screen.Width != 320 || h.Screen.Height != 200 {
		t.Errorf("expected 320x200 screen, got %dx%d", h.Screen.Width, h.Screen.Height)
	}
	if cfg.Screen.Width != 1280 {
		t.Errorf("original screen changed to %d", cfg.Screen.Width)
	}

	h.Viewer.AutoRotate = true
	h.Lights.Point[0].Intensity = 0
	if cfg.Viewer.AutoRotate || cfg.Lights.Point[0].Intensity == 0 {
		t.Error("headless copy shares state with the original")
	}
}

func TestLoadClampsStartingSpeed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fast.yaml")
	if err := os.WriteFile(path, []byte("viewer:\n  rotation_speed: 5\n"), 0644); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Viewer.RotationSpeed != cfg.Viewer.MaxSpeed {
		t.Errorf("expected speed clamped to %f, got %f", cfg.Viewer.MaxSpeed, cfg.Viewer.RotationSpeed)
	}
}

func TestLoadRejectsInvalid(t *testing.T) {
	cases := map[string]string{
		"zero floor":   "viewer:\n  min_speed: 0\n",
		"inverted":     "viewer:\n  min_speed: 0.5\n  max_speed: 0.1\n",
		"damping":      "viewer:\n  damping: 1.5\n",
		"fov":          "camera:\n  fov: 180\n",
		"near far":     "camera:\n  near: 10\n  far: 5\n",
		"bad colour":   "scene:\n  background: navy\n",
		"not yaml map": "viewer: [1, 2\n",
	}
	dir := t.TempDir()
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(dir, name+".yaml")
			if err := os.WriteFile(path, []byte(body), 0644); err != nil {
				t.Fatal(err)
			}
			if _, err := Load(path); err == nil {
				t.Errorf("expected error for %q", body)
			}
		})
	}
}

func TestWriteYAMLRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "snapshot.yaml")
	cfg := Defaults()
	cfg.Viewer.DefaultMolecule = "Water"
	if err := cfg.WriteYAML(path); err != nil {
		t.Fatal(err)
	}
	again, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if again.Viewer.DefaultMolecule != "Water" {
		t.Errorf("expected Water, got %q", again.Viewer.DefaultMolecule)
	}
	if again.Lights.Point[0].Color != cfg.Lights.Point[0].Color {
		t.Errorf("point light colour lost: %v", again.Lights.Point[0].Color)
	}
}

func TestCfgPanicsBeforeInit(t *testing.T) {
	saved := global
	global = nil
	defer func() {
		global = saved
		if recover() == nil {
			t.Error("expected panic")
		}
	}()
	Cfg()
}
