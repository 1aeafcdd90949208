// Package config handles engine configuration loading and management.
package config

import (
	"errors"
	"fmt"
)

// Traversal strategies.
const (
	StrategySingle            = "single"
	StrategyLocalMerge        = "local_merge"
	StrategySharedAccumulator = "shared_accumulator"
)

// Instance overflow policies.
const (
	OverflowReject = "reject"
	OverflowSplit  = "split"
)

// Graphics backends.
const (
	BackendHeadless = "headless"
	BackendGL       = "gl"
)

// Config holds all engine settings.
type Config struct {
	Scene    SceneConfig    `yaml:"scene"`
	Assets   AssetsConfig   `yaml:"assets"`
	Graphics GraphicsConfig `yaml:"graphics"`
	Bench    BenchConfig    `yaml:"bench"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// SceneConfig holds traversal and batching settings.
type SceneConfig struct {
	Workers      int    `yaml:"workers"`
	Strategy     string `yaml:"strategy"`
	MaxInstances int    `yaml:"max_instances"`
	Overflow     string `yaml:"overflow"`
}

// AssetsConfig holds base directories for models, textures and shaders.
type AssetsConfig struct {
	ModelDir    string   `yaml:"model_dir"`
	TextureDir  string   `yaml:"texture_dir"`
	ShaderDir   string   `yaml:"shader_dir"`
	ImportFlags []string `yaml:"import_flags"`
}

// GraphicsConfig holds display and projection settings.
type GraphicsConfig struct {
	Backend string  `yaml:"backend"`
	Width   int     `yaml:"width"`
	Height  int     `yaml:"height"`
	VFov    float32 `yaml:"vfov"` // degrees
	Near    float32 `yaml:"near"`
	Far     float32 `yaml:"far"`
	// Hidden keeps the gl backend's window offscreen; only its context is used.
	Hidden bool `yaml:"hidden"`
	VSync  bool `yaml:"vsync"`
}

// BenchConfig holds settings for the bench command's demo scene.
type BenchConfig struct {
	Frames         int    `yaml:"frames"`
	Grid           int    `yaml:"grid"`
	Asset          string `yaml:"asset"`
	VertexShader   string `yaml:"vertex_shader"`
	FragmentShader string `yaml:"fragment_shader"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Scene: SceneConfig{
			Workers:      4,
			Strategy:     StrategyLocalMerge,
			MaxInstances: 100,
			Overflow:     OverflowReject,
		},
		Assets: AssetsConfig{
			ModelDir:    "assets/models",
			TextureDir:  "assets/textures",
			ShaderDir:   "assets/shaders",
			ImportFlags: []string{"triangulate", "calc_tangent_space", "gen_normals"},
		},
		Graphics: GraphicsConfig{
			Backend: BackendHeadless,
			Width:   1280,
			Height:  720,
			VFov:    60,
			Near:    0.1,
			Far:     1000,
		},
		Bench: BenchConfig{
			Frames:         120,
			Grid:           16,
			Asset:          "chest.yaml",
			VertexShader:   "vertex_shader.vert",
			FragmentShader: "fragment_shader.frag",
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// Validate reports every setting the engine cannot run with, joined into
// one error.
func (c *Config) Validate() error {
	var errs []error
	if c.Scene.Workers <= 0 {
		errs = append(errs, fmt.Errorf("scene.workers must be positive, got %d", c.Scene.Workers))
	}
	switch c.Scene.Strategy {
	case StrategySingle, StrategyLocalMerge, StrategySharedAccumulator:
	default:
		errs = append(errs, fmt.Errorf("unknown scene.strategy %q", c.Scene.Strategy))
	}
	if c.Scene.MaxInstances <= 0 {
		errs = append(errs, fmt.Errorf("scene.max_instances must be positive, got %d", c.Scene.MaxInstances))
	}
	switch c.Scene.Overflow {
	case OverflowReject, OverflowSplit:
	default:
		errs = append(errs, fmt.Errorf("unknown scene.overflow %q", c.Scene.Overflow))
	}
	switch c.Graphics.Backend {
	case BackendHeadless, BackendGL:
	default:
		errs = append(errs, fmt.Errorf("unknown graphics.backend %q", c.Graphics.Backend))
	}
	if c.Graphics.Width <= 0 || c.Graphics.Height <= 0 {
		errs = append(errs, fmt.Errorf("graphics size must be positive, got %dx%d", c.Graphics.Width, c.Graphics.Height))
	}
	return errors.Join(errs...)
}
