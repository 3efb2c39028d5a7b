package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/ayusman/mudra/internal/gesture"
	"github.com/ayusman/mudra/internal/logging"
)

// ErrInvalid is wrapped by every validation failure.
var ErrInvalid = errors.New("invalid config")

// Validate ensures the configuration is usable. It reports the first
// invalid section.
func (c *Config) Validate() error {
	checks := []struct {
		section string
		check   func() error
	}{
		{"gesture", func() error { return c.Gesture.StabilizerConfig().Validate() }},
		{"pinch", func() error { return c.Pinch.PinchConfig().Validate() }},
		{"click", c.validateClick},
		{"scroll", c.validateScroll},
		{"quality", c.validateQuality},
		{"performance", func() error { return c.Performance.MonitorConfig().Validate() }},
		{"tracking", c.validateTracking},
		{"detector", c.validateDetector},
		{"input", c.validateInput},
		{"server", c.validateServer},
		{"logging", c.validateLogging},
		{"storage", c.validateStorage},
	}
	for _, ch := range checks {
		if err := ch.check(); err != nil {
			return fmt.Errorf("%w: %s: %w", ErrInvalid, ch.section, err)
		}
	}
	return nil
}

func (c *Config) validateClick() error {
	if err := c.Click.ClickConfig().Validate(); err != nil {
		return err
	}
	if gesture.NormalizeLabel(c.Click.PrimaryGesture) == gesture.None {
		return fmt.Errorf("unknown primary_gesture %q", c.Click.PrimaryGesture)
	}
	if c.Click.ContextGesture != "" && gesture.NormalizeLabel(c.Click.ContextGesture) == gesture.None {
		return fmt.Errorf("unknown context_gesture %q", c.Click.ContextGesture)
	}
	return nil
}

func (c *Config) validateScroll() error {
	if err := c.Scroll.ScrollConfig().Validate(); err != nil {
		return err
	}
	if c.Scroll.Label() == gesture.None {
		return fmt.Errorf("unknown gesture %q", c.Scroll.Gesture)
	}
	return nil
}

func (c *Config) validateQuality() error {
	if err := c.Quality.Settings().Validate(); err != nil {
		return err
	}
	return c.Quality.ControllerConfig().Validate()
}

func (c *Config) validateTracking() error {
	return c.Tracking.AssignerConfig(c.Quality.MaxHands).Validate()
}

func (c *Config) validateDetector() error {
	if c.Detector.CameraID < 0 {
		return errors.New("camera_id must not be negative")
	}
	if c.Detector.StillThreshold < 0 || c.Detector.StillThreshold > 100 {
		return fmt.Errorf("still_threshold must be in [0,100], got %v", c.Detector.StillThreshold)
	}
	for name, v := range map[string]float64{
		"min_confidence":          c.Detector.MinConfidence,
		"min_tracking_confidence": c.Detector.MinTrackingConfidence,
	} {
		if v < 0 || v > 1 {
			return fmt.Errorf("%s must be in [0,1], got %v", name, v)
		}
	}
	return nil
}

func (c *Config) validateInput() error {
	switch c.Input.Backend {
	case "desktop", "none":
	default:
		return fmt.Errorf("unsupported backend %q", c.Input.Backend)
	}
	if c.Input.Slot < -1 {
		return fmt.Errorf("slot must be -1 or a slot index, got %d", c.Input.Slot)
	}
	return nil
}

func (c *Config) validateServer() error {
	if c.Server.Enabled && strings.TrimSpace(c.Server.ListenAddr) == "" {
		return errors.New("listen_addr is required when the server is enabled")
	}
	return nil
}

func (c *Config) validateLogging() error {
	if _, err := logging.ParseLevel(c.Logging.Level); err != nil {
		return err
	}
	switch c.Logging.Format {
	case "", "auto", "console", "text", "json":
		return nil
	default:
		return fmt.Errorf("unsupported format %q", c.Logging.Format)
	}
}

func (c *Config) validateStorage() error {
	if strings.TrimSpace(c.Storage.DBPath) == "" {
		return errors.New("db_path is required")
	}
	if c.Storage.ActionTimeoutMs <= 0 {
		return errors.New("action_timeout_ms must be positive")
	}
	if c.Storage.ActionQueueSize <= 0 {
		return errors.New("action_queue_size must be positive")
	}
	return nil
}
