// Package config loads mudra's TOML configuration and environment overrides.
package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/caarlos0/env/v11"
	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Gesture configures the per-slot label stabilizer.
type Gesture struct {
	WindowSize int     `toml:"window_size"`
	MinCount   int     `toml:"min_count"`
	MinScore   float64 `toml:"min_score"`
	Hysteresis float64 `toml:"hysteresis"`
	DebounceMs int     `toml:"debounce_ms"`
}

// Pinch configures the pointer plugin.
type Pinch struct {
	StartThreshold float64 `toml:"start_threshold"`
	EndThreshold   float64 `toml:"end_threshold"`
	Padding        float64 `toml:"padding"`
	SurfaceWidth   float64 `toml:"surface_width"`
	SurfaceHeight  float64 `toml:"surface_height"`
	Mirror         bool    `toml:"mirror" env:"MUDRA_MIRROR"`
	TargetX        float64 `toml:"target_x"`
	TargetY        float64 `toml:"target_y"`
	TargetWidth    float64 `toml:"target_width"`
	TargetHeight   float64 `toml:"target_height"`
}

// Click configures click and context-menu gestures.
type Click struct {
	ClickDurationMs int    `toml:"click_duration_ms"`
	DoubleClickMs   int    `toml:"double_click_ms"`
	PrimaryGesture  string `toml:"primary_gesture"`
	ContextGesture  string `toml:"context_gesture"`
}

// Scroll configures the scroll plugin.
type Scroll struct {
	Sensitivity float64 `toml:"sensitivity"`
	Deadband    float64 `toml:"deadband"`
	Gesture     string  `toml:"gesture"`
}

// Quality configures adaptive quality and the starting settings.
type Quality struct {
	Adaptive        bool `toml:"adaptive"`
	CooldownMs      int  `toml:"cooldown_ms"`
	HistorySeconds  int  `toml:"history_seconds"`
	MinSamples      int  `toml:"min_samples"`
	Width           int  `toml:"width"`
	Height          int  `toml:"height"`
	MaxHands        int  `toml:"max_hands"`
	ModelComplexity int  `toml:"model_complexity"`
	MaxFrameRate    int  `toml:"max_frame_rate"`
	Smoothing       bool `toml:"smoothing"`
	// Restore applies the last persisted settings at startup.
	Restore bool `toml:"restore"`
}

// Performance configures the frame performance monitor.
type Performance struct {
	TargetFPS      float64 `toml:"target_fps"`
	MainBudgetMs   float64 `toml:"main_budget_ms"`
	WorkerBudgetMs float64 `toml:"worker_budget_ms"`
	Window         int     `toml:"window"`
}

// Tracking configures persistent hand slots.
type Tracking struct {
	Enabled           bool    `toml:"enabled"`
	MaxJump           float64 `toml:"max_jump"`
	HandednessPenalty float64 `toml:"handedness_penalty"`
	Patience          int     `toml:"patience"`
}

// Detector configures the camera and the hand landmark service.
type Detector struct {
	CameraID              int     `toml:"camera_id" env:"MUDRA_CAMERA_ID"`
	MinConfidence         float64 `toml:"min_confidence"`
	MinTrackingConfidence float64 `toml:"min_tracking_confidence"`
	// StillThreshold is the percentage of changed pixels below which a frame
	// reuses the previous detection. Zero runs detection on every frame.
	StillThreshold        float64 `toml:"still_threshold"`
}

// Input configures where synthesized pointer actions go.
type Input struct {
	// Backend is desktop (the OS pointer) or none.
	Backend string `toml:"backend" env:"MUDRA_INPUT_BACKEND"`
	// Slot is the hand slot driving the pointer, or -1 for any.
	Slot int `toml:"slot"`
}

// Plugins configures the plugin registry.
type Plugins struct {
	CompensateOnDisable bool     `toml:"compensate_on_disable"`
	Disabled            []string `toml:"disabled"`
}

// Server configures the HTTP API.
type Server struct {
	Enabled    bool   `toml:"enabled"`
	ListenAddr string `toml:"listen_addr" env:"MUDRA_LISTEN_ADDR"`
}

// Logging configures log output.
type Logging struct {
	Level  string `toml:"level" env:"MUDRA_LOG_LEVEL"`
	Format string `toml:"format" env:"MUDRA_LOG_FORMAT"`
}

// Storage configures the database and external action plugins.
type Storage struct {
	DBPath          string `toml:"db_path" env:"MUDRA_DB_PATH"`
	PluginDir       string `toml:"plugin_dir" env:"MUDRA_PLUGIN_DIR"`
	ActionTimeoutMs int    `toml:"action_timeout_ms"`
	ActionQueueSize int    `toml:"action_queue_size"`
}

// Config is the top-level configuration.
type Config struct {
	Gesture     Gesture     `toml:"gesture"`
	Pinch       Pinch       `toml:"pinch"`
	Click       Click       `toml:"click"`
	Scroll      Scroll      `toml:"scroll"`
	Quality     Quality     `toml:"quality"`
	Performance Performance `toml:"performance"`
	Tracking    Tracking    `toml:"tracking"`
	Detector    Detector    `toml:"detector"`
	Input       Input       `toml:"input"`
	Plugins     Plugins     `toml:"plugins"`
	Server      Server      `toml:"server"`
	Logging     Logging     `toml:"logging"`
	Storage     Storage     `toml:"storage"`
}

// DefaultConfigPath returns the absolute path to the default configuration
// file location.
func DefaultConfigPath() (string, error) {
	return expandPath(defaultConfigPath)
}

// Load reads path (or the default location when empty), applies environment
// overrides and validates the result. It returns the config, the resolved
// path and whether a file existed there.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		decoder.DisallowUnknownFields()
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := env.Parse(&cfg); err != nil {
		return nil, "", false, fmt.Errorf("parse env: %w", err)
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

// Sample returns a commented configuration file holding the defaults.
func Sample() string {
	return sampleConfig
}

// Marshal renders cfg as TOML.
func Marshal(cfg *Config) ([]byte, error) {
	data, err := toml.Marshal(cfg)
	if err != nil {
		return nil, fmt.Errorf("marshal config: %w", err)
	}
	return data, nil
}

func (c *Config) normalize() error {
	var err error
	if c.Storage.DBPath, err = expandPath(c.Storage.DBPath); err != nil {
		return fmt.Errorf("storage.db_path: %w", err)
	}
	if c.Storage.PluginDir, err = expandPath(c.Storage.PluginDir); err != nil {
		return fmt.Errorf("storage.plugin_dir: %w", err)
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	c.Input.Backend = strings.ToLower(strings.TrimSpace(c.Input.Backend))
	return nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path == "" {
		path = defaultConfigPath
	}
	expanded, err := expandPath(path)
	if err != nil {
		return "", false, err
	}
	info, err := os.Stat(expanded)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return expanded, false, nil
		}
		return "", false, fmt.Errorf("stat config: %w", err)
	}
	if info.IsDir() {
		return "", false, fmt.Errorf("config path %q is a directory", expanded)
	}
	return expanded, true, nil
}

func expandPath(path string) (string, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return "", nil
	}
	if path == "~" || strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		path = filepath.Join(home, strings.TrimPrefix(path, "~"))
	}
	return filepath.Abs(path)
}
