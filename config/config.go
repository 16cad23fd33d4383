// Package config provides configuration loading and access for the sketch.
package config

import (
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// Stroke relation strategies for layers after the first.
const (
	StrokesRandom     = "random"
	StrokesSame       = "same"
	StrokesMirror     = "mirror"
	StrokesMirrorX    = "mirrorX"
	StrokesMirrorY    = "mirrorY"
	StrokesMirrorRand = "mirrorRand"
)

// Validator policies.
const (
	ValidatorBasic  = "basic"
	ValidatorStrict = "strict"
)

// Config holds all sketch configuration parameters.
type Config struct {
	Screen       ScreenConfig    `yaml:"screen"`
	Sketch       SketchConfig    `yaml:"sketch"`
	Compositions map[string]bool `yaml:"compositions"`
	Palettes     map[string]bool `yaml:"palettes"`
	Dev          DevConfig       `yaml:"dev"`
	Output       OutputConfig    `yaml:"output"`
	Telemetry    TelemetryConfig `yaml:"telemetry"`

	// Derived values computed after loading
	Derived DerivedConfig `yaml:"-"`
}

// ScreenConfig holds display settings.
type ScreenConfig struct {
	Width     int     `yaml:"width"`
	Height    int     `yaml:"height"`
	TargetFPS int     `yaml:"target_fps"`
	DPR       float64 `yaml:"dpr"` // 0 = ask the window
}

// SketchConfig holds the generative parameters of a run.
type SketchConfig struct {
	MinLayers     int     `yaml:"min_layers"`
	MaxLayers     int     `yaml:"max_layers"`
	MinStrokes    int     `yaml:"min_strokes"`
	MaxStrokes    int     `yaml:"max_strokes"`
	StrokesRel    string  `yaml:"strokes_rel"`
	MinSpeed      float64 `yaml:"min_speed"`
	MaxSpeed      float64 `yaml:"max_speed"`
	SpeedMult     float64 `yaml:"speed_mult"` // 0 = drawn per run from [0.1, 10]
	MinDT         float64 `yaml:"min_dt"`     // used by noise compositions
	MaxDT         float64 `yaml:"max_dt"`
	MaxIterations int     `yaml:"max_iterations"`
	MaxCells      int     `yaml:"max_cells"`
	MaxChanges    int     `yaml:"max_changes"` // 0 = drawn per run from [5, 9]

	ChangeIntervalMs int `yaml:"change_interval_ms"`
	CellMinMs        int `yaml:"cell_min_ms"`
	CellMaxMs        int `yaml:"cell_max_ms"`
	RestartDelayMs   int `yaml:"restart_delay_ms"`

	Restart      bool   `yaml:"restart"`       // restart after the change budget, else idle
	SnapOverlay  bool   `yaml:"snap_overlay"`  // accumulate snapshots on scheduled changes
	SnapBlending int    `yaml:"snap_blending"` // blend mode index, see fluid.BlendMode
	Pointer      bool   `yaml:"pointer"`       // bind a pointer stroke to every layer
	Validator    string `yaml:"validator"`
	Composition  string `yaml:"composition"` // pins a composition by name, "" = drawn from the enabled set
}

// DevConfig holds developer tooling settings.
type DevConfig struct {
	GUI       bool `yaml:"gui"`
	ShowDebug bool `yaml:"show_debug"`
}

// OutputConfig holds export settings.
type OutputConfig struct {
	Dir string `yaml:"dir"`
}

// TelemetryConfig holds perf collection parameters.
type TelemetryConfig struct {
	PerfWindow      int `yaml:"perf_window"`
	PerfLogInterval int `yaml:"perf_log_interval"` // frames between perf logs, 0 = off
}

// DerivedConfig holds computed values derived from the loaded config.
type DerivedConfig struct {
	ScreenW32 float32
	ScreenH32 float32
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

// validate rejects values the sketch cannot run with.
func (c *Config) validate() error {
	s := &c.Sketch
	if s.MinLayers < 1 || s.MaxLayers < s.MinLayers {
		return fmt.Errorf("invalid layer range [%d, %d]", s.MinLayers, s.MaxLayers)
	}
	if s.MinStrokes < 1 || s.MaxStrokes < s.MinStrokes {
		return fmt.Errorf("invalid stroke range [%d, %d]", s.MinStrokes, s.MaxStrokes)
	}
	if s.MinSpeed <= 0 || s.MaxSpeed < s.MinSpeed || s.MaxSpeed >= 1 {
		return fmt.Errorf("invalid speed range [%g, %g]", s.MinSpeed, s.MaxSpeed)
	}
	switch s.StrokesRel {
	case StrokesRandom, StrokesSame, StrokesMirror, StrokesMirrorX, StrokesMirrorY, StrokesMirrorRand:
	default:
		return fmt.Errorf("unknown strokes_rel %q", s.StrokesRel)
	}
	switch s.Validator {
	case ValidatorBasic, ValidatorStrict:
	default:
		return fmt.Errorf("unknown validator %q", s.Validator)
	}
	if _, ok := c.Compositions[s.Composition]; s.Composition != "" && !ok {
		return fmt.Errorf("unknown composition %q", s.Composition)
	}
	if !anyEnabled(c.Compositions) {
		return fmt.Errorf("no composition enabled")
	}
	if !anyEnabled(c.Palettes) {
		return fmt.Errorf("no palette enabled")
	}
	return nil
}

func anyEnabled(m map[string]bool) bool {
	for _, on := range m {
		if on {
			return true
		}
	}
	return false
}

// computeDerived calculates values derived from loaded config.
func (c *Config) computeDerived() {
	c.Derived.ScreenW32 = float32(c.Screen.Width)
	c.Derived.ScreenH32 = float32(c.Screen.Height)

	if c.Sketch.MaxIterations <= 0 {
		c.Sketch.MaxIterations = 10
	}
	if c.Telemetry.PerfWindow <= 0 {
		c.Telemetry.PerfWindow = 60
	}
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
