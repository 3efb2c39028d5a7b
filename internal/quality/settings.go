// Package quality adapts capture and inference settings to measured frame
// throughput.
package quality

import (
	"errors"
	"fmt"
	"time"
)

// ErrInvalidConfig is returned for out-of-range quality settings or
// controller thresholds.
var ErrInvalidConfig = errors.New("invalid quality config")

// Settings are the knobs the controller trades for throughput.
type Settings struct {
	Width           int  `json:"width"`
	Height          int  `json:"height"`
	MaxHands        int  `json:"maxHands"`
	ModelComplexity int  `json:"modelComplexity"` // 0 lite, 1 full, 2 heavy
	MaxFrameRate    int  `json:"maxFrameRate"`
	Smoothing       bool `json:"smoothing"`
}

// DefaultSettings returns 960x720, two hands, full model, 30fps with
// smoothing.
func DefaultSettings() Settings {
	return Settings{
		Width:           960,
		Height:          720,
		MaxHands:        2,
		ModelComplexity: 1,
		MaxFrameRate:    30,
		Smoothing:       true,
	}
}

func (s Settings) Validate() error {
	switch {
	case s.Width <= 0 || s.Height <= 0:
		return fmt.Errorf("%w: resolution %dx%d", ErrInvalidConfig, s.Width, s.Height)
	case s.MaxHands <= 0:
		return fmt.Errorf("%w: max hands must be positive", ErrInvalidConfig)
	case s.ModelComplexity < 0 || s.ModelComplexity > 2:
		return fmt.Errorf("%w: model complexity %d not in 0..2", ErrInvalidConfig, s.ModelComplexity)
	case s.MaxFrameRate <= 0:
		return fmt.Errorf("%w: max frame rate must be positive", ErrInvalidConfig)
	}
	return nil
}

func (s Settings) String() string {
	return fmt.Sprintf("%dx%d hands=%d complexity=%d fps=%d", s.Width, s.Height, s.MaxHands, s.ModelComplexity, s.MaxFrameRate)
}

// Sample is one throughput measurement.
type Sample struct {
	FPS         float64   `json:"fps"`
	FrameTimeMs float64   `json:"frameTimeMs"`
	Timestamp   time.Time `json:"timestamp"`
}

// Config holds the controller's window and decision thresholds.
type Config struct {
	Cooldown   time.Duration
	History    time.Duration
	MinSamples int

	DegradeBelowFPS     float64
	DegradeAboveFrameMs float64
	UpgradeAboveFPS     float64
	UpgradeBelowFrameMs float64
}

// DefaultConfig returns a 5s cooldown over 30s of history, averaging the
// trailing 10 samples.
func DefaultConfig() Config {
	return Config{
		Cooldown:            5 * time.Second,
		History:             30 * time.Second,
		MinSamples:          10,
		DegradeBelowFPS:     25,
		DegradeAboveFrameMs: 30,
		UpgradeAboveFPS:     35,
		UpgradeBelowFrameMs: 20,
	}
}

func (c Config) Validate() error {
	switch {
	case c.Cooldown < 0:
		return fmt.Errorf("%w: cooldown must not be negative", ErrInvalidConfig)
	case c.History <= 0:
		return fmt.Errorf("%w: history must be positive", ErrInvalidConfig)
	case c.MinSamples <= 0:
		return fmt.Errorf("%w: min samples must be positive", ErrInvalidConfig)
	case c.UpgradeAboveFPS <= c.DegradeBelowFPS:
		return fmt.Errorf("%w: upgrade fps %v must exceed degrade fps %v", ErrInvalidConfig, c.UpgradeAboveFPS, c.DegradeBelowFPS)
	case c.UpgradeBelowFrameMs >= c.DegradeAboveFrameMs:
		return fmt.Errorf("%w: upgrade frame time %v must be below degrade frame time %v", ErrInvalidConfig, c.UpgradeBelowFrameMs, c.DegradeAboveFrameMs)
	}
	return nil
}
