// Package config provides configuration loading and access for the viewer.
package config

import (
	_ "embed"
	"fmt"
	"math"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/pthm-cable/molview/molecule"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// Config holds all viewer configuration parameters.
type Config struct {
	Screen    ScreenConfig    `yaml:"screen"`
	Viewer    ViewerConfig    `yaml:"viewer"`
	Camera    CameraConfig    `yaml:"camera"`
	Scene     SceneConfig     `yaml:"scene"`
	Particles ParticlesConfig `yaml:"particles"`
	Lights    LightsConfig    `yaml:"lights"`
	Record    RecordConfig    `yaml:"record"`
	Telemetry TelemetryConfig `yaml:"telemetry"`
	Storage   StorageConfig   `yaml:"storage"`
	Catalog   CatalogConfig   `yaml:"catalog"`

	// Derived values computed after loading
	Derived DerivedConfig `yaml:"-"`
}

// ScreenConfig holds window settings.
type ScreenConfig struct {
	Width     int    `yaml:"width"`
	Height    int    `yaml:"height"`
	TargetFPS int    `yaml:"target_fps"`
	Title     string `yaml:"title"`
}

// ViewerConfig holds rotation and interaction parameters.
type ViewerConfig struct {
	DefaultMolecule string  `yaml:"default_molecule"`
	AutoRotate      bool    `yaml:"auto_rotate"`
	RotationSpeed   float64 `yaml:"rotation_speed"` // Radians per frame on the primary (Y) axis
	SpeedStep       float64 `yaml:"speed_step"`     // Change per speed-up/slow-down press
	MinSpeed        float64 `yaml:"min_speed"`      // Floor; never zero
	MaxSpeed        float64 `yaml:"max_speed"`
	SecondaryRatio  float64 `yaml:"secondary_ratio"` // X axis rate relative to Y
	Damping         float64 `yaml:"damping"`         // Fraction of remaining distance closed per manual frame
	PointerGain     float64 `yaml:"pointer_gain"`    // Radians at the viewport edge
	BobAmplitude    float64 `yaml:"bob_amplitude"`   // World units
	BobFrequency    float64 `yaml:"bob_frequency"`   // Radians per second
}

// CameraConfig holds the perspective projection.
type CameraConfig struct {
	FOV      float64 `yaml:"fov"` // Vertical, degrees
	Distance float64 `yaml:"distance"`
	Near     float64 `yaml:"near"`
	Far      float64 `yaml:"far"`
}

// SceneConfig holds molecule geometry styling.
type SceneConfig struct {
	Background     molecule.Color `yaml:"background"`
	GlowScale      float64        `yaml:"glow_scale"`
	GlowOpacity    float64        `yaml:"glow_opacity"`
	BondRadius     float64        `yaml:"bond_radius"` // Per unit of bond order, before molecule scale
	BondColor      molecule.Color `yaml:"bond_color"`
	SphereRings    int            `yaml:"sphere_rings"`
	SphereSlices   int            `yaml:"sphere_slices"`
	CylinderSlices int            `yaml:"cylinder_slices"`
	Vignette       float64        `yaml:"vignette"` // Window backdrop darkening toward the corners, 0 = flat
}

// ParticlesConfig holds the ambient background particle field.
type ParticlesConfig struct {
	Count   int            `yaml:"count"`
	Extent  float64        `yaml:"extent"` // Edge length of the cube particles fill
	Size    float64        `yaml:"size"`
	Color   molecule.Color `yaml:"color"`
	Opacity float64        `yaml:"opacity"`
	Spin    float64        `yaml:"spin"` // Radians per frame about Y
	Seed    int64          `yaml:"seed"`
}

// LightConfig is a single light of the rig.
type LightConfig struct {
	Color     molecule.Color `yaml:"color"`
	Intensity float64        `yaml:"intensity"`
	Position  [3]float64     `yaml:"position,flow"`
	Distance  float64        `yaml:"distance,omitempty"` // Point lights only; 0 = no falloff
}

// LightsConfig holds the lighting rig.
type LightsConfig struct {
	Ambient     LightConfig   `yaml:"ambient"`
	Directional []LightConfig `yaml:"directional"`
	Point       []LightConfig `yaml:"point"`
	Shininess   float64       `yaml:"shininess"`
	Specular    float64       `yaml:"specular"`
}

// RecordConfig holds headless GIF recording parameters.
type RecordConfig struct {
	Width   int `yaml:"width"`
	Height  int `yaml:"height"`
	Frames  int `yaml:"frames"`
	Delay   int `yaml:"delay"`   // Hundredths of a second between GIF frames
	Workers int `yaml:"workers"` // 0 = one per CPU
}

// TelemetryConfig holds performance telemetry parameters.
type TelemetryConfig struct {
	PerfWindow  int     `yaml:"perf_window"`  // Frames averaged per stats window
	LogInterval float64 `yaml:"log_interval"` // Seconds between perf log lines; 0 disables
}

// StorageConfig holds the preference store location.
type StorageConfig struct {
	Path string `yaml:"path"` // SQLite file; empty = in-memory
}

// CatalogConfig holds the user catalog location.
type CatalogConfig struct {
	Path     string  `yaml:"path"`     // YAML or SDF file merged over the builtin catalog
	Watch    bool    `yaml:"watch"`    // Reload when the file changes
	Debounce float64 `yaml:"debounce"` // Seconds
}

// DerivedConfig holds computed values derived from the loaded config.
type DerivedConfig struct {
	FrameInterval float64 // Seconds per frame at TargetFPS
	FOVRadians    float64
}

// global holds the loaded configuration.
var global *Config

// Init loads configuration from the given path, or uses embedded defaults if path is empty.
// Must be called before Cfg().
func Init(path string) error {
	cfg, err := Load(path)
	if err != nil {
		return err
	}
	global = cfg
	return nil
}

// MustInit is like Init but panics on error.
func MustInit(path string) {
	if err := Init(path); err != nil {
		panic(fmt.Sprintf("config: failed to initialize: %v", err))
	}
}

// Cfg returns the global configuration. Panics if Init was not called.
func Cfg() *Config {
	if global == nil {
		panic("config: Cfg() called before Init()")
	}
	return global
}

// Defaults returns the embedded default configuration.
func Defaults() *Config {
	cfg, err := Load("")
	if err != nil {
		panic(fmt.Sprintf("config: embedded defaults: %v", err))
	}
	return cfg
}

// Load loads configuration from a YAML file, merging with embedded defaults.
// If path is empty, only embedded defaults are used.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	if err := yaml.Unmarshal(defaultsYAML, cfg); err != nil {
		return nil, fmt.Errorf("parsing embedded defaults: %w", err)
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		// Unmarshal into same struct - only overwrites fields present in file
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	cfg.computeDerived()

	return cfg, nil
}

// validate rejects settings the viewer cannot run with.
func (c *Config) validate() error {
	v := c.Viewer
	if v.MinSpeed <= 0 {
		return fmt.Errorf("viewer.min_speed must be positive, got %g", v.MinSpeed)
	}
	if v.MaxSpeed < v.MinSpeed {
		return fmt.Errorf("viewer.max_speed %g is below min_speed %g", v.MaxSpeed, v.MinSpeed)
	}
	if v.SpeedStep <= 0 {
		return fmt.Errorf("viewer.speed_step must be positive, got %g", v.SpeedStep)
	}
	if v.Damping <= 0 || v.Damping > 1 {
		return fmt.Errorf("viewer.damping must be in (0, 1], got %g", v.Damping)
	}
	if c.Camera.FOV <= 0 || c.Camera.FOV >= 180 {
		return fmt.Errorf("camera.fov must be in (0, 180), got %g", c.Camera.FOV)
	}
	if c.Camera.Near <= 0 || c.Camera.Far <= c.Camera.Near {
		return fmt.Errorf("camera near/far invalid: %g/%g", c.Camera.Near, c.Camera.Far)
	}
	if c.Particles.Count < 0 {
		return fmt.Errorf("particles.count must not be negative, got %d", c.Particles.Count)
	}
	return nil
}

// computeDerived calculates values derived from loaded config.
func (c *Config) computeDerived() {
	if c.Screen.TargetFPS > 0 {
		c.Derived.FrameInterval = 1.0 / float64(c.Screen.TargetFPS)
	} else {
		c.Derived.FrameInterval = 1.0 / 60.0
	}
	c.Derived.FOVRadians = c.Camera.FOV * math.Pi / 180

	// Clamp the starting speed into its bounds
	if c.Viewer.RotationSpeed < c.Viewer.MinSpeed {
		c.Viewer.RotationSpeed = c.Viewer.MinSpeed
	}
	if c.Viewer.RotationSpeed > c.Viewer.MaxSpeed {
		c.Viewer.RotationSpeed = c.Viewer.MaxSpeed
	}
	if c.Record.Delay <= 0 {
		c.Record.Delay = 5
	}
}

// Headless returns a copy for offscreen rendering with the screen sized to
// the record frame. Viewer settings, auto_rotate included, are kept as loaded.
func (c *Config) Headless() *Config {
	h := *c
	h.Lights.Directional = append([]LightConfig(nil), c.Lights.Directional...)
	h.Lights.Point = append([]LightConfig(nil), c.Lights.Point...)
	h.Screen.Width, h.Screen.Height = c.Record.Width, c.Record.Height
	return &h
}

// WriteYAML writes the configuration to a YAML file.
func (c *Config) WriteYAML(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}
