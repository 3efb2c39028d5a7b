package config

import (
	"time"

	"github.com/ayusman/mudra/internal/click"
	"github.com/ayusman/mudra/internal/detector"
	"github.com/ayusman/mudra/internal/gesture"
	"github.com/ayusman/mudra/internal/pinch"
	"github.com/ayusman/mudra/internal/quality"
	"github.com/ayusman/mudra/internal/scroll"
	"github.com/ayusman/mudra/internal/tracking"
)

func millis(ms int) time.Duration {
	return time.Duration(ms) * time.Millisecond
}

// StabilizerConfig converts the section to a gesture.Config.
func (g Gesture) StabilizerConfig() gesture.Config {
	return gesture.Config{
		WindowSize: g.WindowSize,
		MinCount:   g.MinCount,
		MinScore:   g.MinScore,
		Hysteresis: g.Hysteresis,
		Debounce:   millis(g.DebounceMs),
	}
}

// PinchConfig converts the section to a pinch.Config.
func (p Pinch) PinchConfig() pinch.Config {
	return pinch.Config{
		StartThreshold: p.StartThreshold,
		EndThreshold:   p.EndThreshold,
		Padding:        p.Padding,
		Surface:        p.Surface(),
		Target:         pinch.Rect{X: p.TargetX, Y: p.TargetY, W: p.TargetWidth, H: p.TargetHeight},
		Mirror:         p.Mirror,
	}
}

// Surface returns the projection surface.
func (p Pinch) Surface() pinch.Rect {
	return pinch.Rect{W: p.SurfaceWidth, H: p.SurfaceHeight}
}

// ClickConfig converts the section to a click.Config.
func (c Click) ClickConfig() click.Config {
	return click.Config{
		ClickDuration: millis(c.ClickDurationMs),
		DoubleClick:   millis(c.DoubleClickMs),
	}
}

// PluginOptions resolves the configured gesture names.
func (c Click) PluginOptions() click.PluginOptions {
	return click.PluginOptions{
		Primary: gesture.NormalizeLabel(c.PrimaryGesture),
		Context: gesture.NormalizeLabel(c.ContextGesture),
	}
}

// ScrollConfig converts the section to a scroll.Config.
func (s Scroll) ScrollConfig() scroll.Config {
	return scroll.Config{Sensitivity: s.Sensitivity, Deadband: s.Deadband}
}

// Label resolves the scroll gesture name.
func (s Scroll) Label() gesture.Label {
	return gesture.NormalizeLabel(s.Gesture)
}

// Settings returns the starting quality settings.
func (q Quality) Settings() quality.Settings {
	return quality.Settings{
		Width:           q.Width,
		Height:          q.Height,
		MaxHands:        q.MaxHands,
		ModelComplexity: q.ModelComplexity,
		MaxFrameRate:    q.MaxFrameRate,
		Smoothing:       q.Smoothing,
	}
}

// ControllerConfig converts the section to a quality.Config, keeping the
// package's decision thresholds.
func (q Quality) ControllerConfig() quality.Config {
	cfg := quality.DefaultConfig()
	cfg.Cooldown = millis(q.CooldownMs)
	cfg.History = time.Duration(q.HistorySeconds) * time.Second
	cfg.MinSamples = q.MinSamples
	return cfg
}

// MonitorConfig converts the section to a quality.MonitorConfig.
func (p Performance) MonitorConfig() quality.MonitorConfig {
	return quality.MonitorConfig{
		TargetFPS:      p.TargetFPS,
		MainBudgetMs:   p.MainBudgetMs,
		WorkerBudgetMs: p.WorkerBudgetMs,
		Window:         p.Window,
	}
}

// AssignerConfig converts the section to a tracking.Config with one slot
// per hand the detector may report.
func (t Tracking) AssignerConfig(slots int) tracking.Config {
	return tracking.Config{
		Slots:             slots,
		MaxJump:           t.MaxJump,
		HandednessPenalty: t.HandednessPenalty,
		Patience:          t.Patience,
	}
}

// DetectorConfig combines the detector section with quality settings.
func (c *Config) DetectorConfig(s quality.Settings) detector.Config {
	return detector.Config{
		MaxHands:        s.MaxHands,
		ModelComplexity: s.ModelComplexity,
		MinConfidence:   c.Detector.MinConfidence,
		MinTrackingConf: c.Detector.MinTrackingConfidence,
	}
}

// ActionTimeout returns the external action timeout.
func (s Storage) ActionTimeout() time.Duration {
	return millis(s.ActionTimeoutMs)
}
