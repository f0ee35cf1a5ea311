package camera

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/spatial/r3"
)

func TestNew(t *testing.T) {
	cam := New(75, 8, 0.1, 1000, 1280, 720)

	if math.Abs(cam.FOV-75*math.Pi/180) > 1e-12 {
		t.Errorf("expected fov in radians, got %f", cam.FOV)
	}
	if cam.Position() != (r3.Vec{Z: 8}) {
		t.Errorf("expected eye at (0,0,8), got %v", cam.Position())
	}
	if math.Abs(cam.Aspect()-1280.0/720.0) > 1e-12 {
		t.Errorf("unexpected aspect %f", cam.Aspect())
	}
}

func TestProjectOriginToCentre(t *testing.T) {
	cam := New(75, 8, 0.1, 1000, 1280, 720)

	sx, sy, depth, ok := cam.Project(r3.Vec{})
	if !ok {
		t.Fatal("origin should be visible")
	}
	if math.Abs(sx-640) > 0.01 || math.Abs(sy-360) > 0.01 {
		t.Errorf("expected screen center (640, 360), got (%f, %f)", sx, sy)
	}
	if math.Abs(depth-8) > 1e-12 {
		t.Errorf("expected depth 8, got %f", depth)
	}
}

func TestProjectAxes(t *testing.T) {
	cam := New(75, 8, 0.1, 1000, 800, 800)

	sx, sy, _, _ := cam.Project(r3.Vec{X: 1, Y: 1})
	if sx <= 400 {
		t.Errorf("+X should land right of centre, got %f", sx)
	}
	if sy >= 400 {
		t.Errorf("+Y should land above centre, got %f", sy)
	}
}

func TestProjectBehindCamera(t *testing.T) {
	cam := New(75, 8, 0.1, 1000, 800, 600)

	if _, _, _, ok := cam.Project(r3.Vec{Z: 9}); ok {
		t.Error("point behind the eye should not project")
	}
	if _, _, _, ok := cam.Project(r3.Vec{Z: -2000}); ok {
		t.Error("point beyond far plane should not project")
	}
}

func TestRayProjectRoundtrip(t *testing.T) {
	cam := New(75, 8, 0.1, 1000, 1280, 720)

	testCases := []struct{ px, py float64 }{
		{640, 360}, // center
		{100, 100}, // top-left
		{1200, 600},
	}

	for _, tc := range testCases {
		origin, dir := cam.Ray(tc.px, tc.py)
		p := r3.Add(origin, r3.Scale(5, dir))
		sx, sy, _, ok := cam.Project(p)
		if !ok || math.Abs(sx-tc.px) > 1e-6 || math.Abs(sy-tc.py) > 1e-6 {
			t.Errorf("roundtrip failed: (%f,%f) -> %v -> (%f,%f)", tc.px, tc.py, p, sx, sy)
		}
	}
}

func TestNormalizedPointer(t *testing.T) {
	cam := New(75, 8, 0.1, 1000, 1000, 500)

	testCases := []struct {
		px, py, nx, ny float64
	}{
		{500, 250, 0, 0},
		{0, 0, -1, 1},
		{1000, 500, 1, -1},
		{-50, 900, -1, -1}, // clamped
	}
	for _, tc := range testCases {
		nx, ny := cam.NormalizedPointer(tc.px, tc.py)
		if math.Abs(nx-tc.nx) > 1e-12 || math.Abs(ny-tc.ny) > 1e-12 {
			t.Errorf("NormalizedPointer(%f, %f) = (%f, %f), want (%f, %f)",
				tc.px, tc.py, nx, ny, tc.nx, tc.ny)
		}
	}
}

func TestResizeIgnoresInvalid(t *testing.T) {
	cam := New(75, 8, 0.1, 1000, 1280, 720)

	if cam.Resize(0, 720) {
		t.Error("zero width should be ignored")
	}
	if cam.Resize(1280, -1) {
		t.Error("negative height should be ignored")
	}
	if cam.ViewportW != 1280 || cam.ViewportH != 720 {
		t.Errorf("viewport changed by invalid resize: %dx%d", cam.ViewportW, cam.ViewportH)
	}
	if cam.Resize(1280, 720) {
		t.Error("same size should report no change")
	}
	if !cam.Resize(640, 640) {
		t.Error("valid resize should report change")
	}
	if cam.Aspect() != 1 {
		t.Errorf("expected aspect 1, got %f", cam.Aspect())
	}
}

func TestInvalidUntilResized(t *testing.T) {
	cam := New(75, 8, 0.1, 1000, 0, 0)

	if cam.Valid() {
		t.Fatal("camera with zero viewport should be invalid")
	}
	if _, _, _, ok := cam.Project(r3.Vec{}); ok {
		t.Error("invalid camera should not project")
	}
	cam.Resize(320, 240)
	if !cam.Valid() {
		t.Error("camera should recover after a valid resize")
	}
}

func TestPixelRadiusShrinksWithDepth(t *testing.T) {
	cam := New(75, 8, 0.1, 1000, 800, 600)

	near := cam.PixelRadius(1, 4)
	far := cam.PixelRadius(1, 16)
	if near <= far {
		t.Errorf("expected nearer sphere to be larger: %f vs %f", near, far)
	}
}
