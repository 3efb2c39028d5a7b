package quality

import (
	"log/slog"
	"slices"
	"sync"
	"time"

	"gonum.org/v1/gonum/stat"

	"github.com/ayusman/mudra/internal/clock"
)

// Controller is a damped feedback loop over throughput samples. It adjusts
// the Settings it was given by at most one ladder step per evaluation and
// evaluates at most once per cooldown.
type Controller struct {
	cfg    Config
	clock  clock.Clock
	logger *slog.Logger

	mu        sync.Mutex
	settings  *Settings
	samples   []Sample
	lastEval  time.Time
	evaluated bool
	listeners []func(Settings)
}

// NewController creates a Controller owning settings. A nil clock uses the
// real clock and a nil logger uses slog.Default.
func NewController(settings *Settings, cfg Config, clk clock.Clock, logger *slog.Logger) (*Controller, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if err := settings.Validate(); err != nil {
		return nil, err
	}
	if clk == nil {
		clk = clock.Real{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Controller{cfg: cfg, clock: clk, logger: logger, settings: settings}, nil
}

// OnChange registers fn to receive a copy of the settings after every
// adjustment. fn runs on the goroutine calling Record or Reset.
func (c *Controller) OnChange(fn func(Settings)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.listeners = append(c.listeners, fn)
}

// Record adds a sample and evaluates when eligible. It reports whether the
// settings changed.
func (c *Controller) Record(fps, frameTimeMs float64) bool {
	c.mu.Lock()
	now := c.clock.Now()
	c.samples = append(c.samples, Sample{FPS: fps, FrameTimeMs: frameTimeMs, Timestamp: now})
	c.prune(now)

	if len(c.samples) < c.cfg.MinSamples || (c.evaluated && now.Sub(c.lastEval) < c.cfg.Cooldown) {
		c.mu.Unlock()
		return false
	}
	c.lastEval = now
	c.evaluated = true

	avgFPS, avgFrame := c.trailingAverages()
	var desc string
	switch {
	case avgFPS < c.cfg.DegradeBelowFPS || avgFrame > c.cfg.DegradeAboveFrameMs:
		desc = climb(degradeLadder, c.settings)
	case avgFPS > c.cfg.UpgradeAboveFPS && avgFrame < c.cfg.UpgradeBelowFrameMs:
		desc = climb(upgradeLadder, c.settings)
	}
	if desc == "" {
		c.mu.Unlock()
		return false
	}

	current := *c.settings
	listeners := slices.Clone(c.listeners)
	c.mu.Unlock()

	c.logger.Info("quality adjusted", "step", desc, "avg_fps", avgFPS, "avg_frame_ms", avgFrame, "settings", current.String())
	for _, fn := range listeners {
		fn(current)
	}
	return true
}

// Current returns a copy of the settings.
func (c *Controller) Current() Settings {
	c.mu.Lock()
	defer c.mu.Unlock()
	return *c.settings
}

// Samples returns a copy of the retained samples.
func (c *Controller) Samples() []Sample {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]Sample(nil), c.samples...)
}

// Reset restores DefaultSettings, clears history and the cooldown, and
// notifies listeners if the settings changed.
func (c *Controller) Reset() {
	c.mu.Lock()
	changed := *c.settings != DefaultSettings()
	*c.settings = DefaultSettings()
	c.samples = nil
	c.evaluated = false
	c.lastEval = time.Time{}
	current := *c.settings
	listeners := slices.Clone(c.listeners)
	c.mu.Unlock()

	if changed {
		for _, fn := range listeners {
			fn(current)
		}
	}
}

// prune drops samples older than History. Caller holds mu.
func (c *Controller) prune(now time.Time) {
	cutoff := now.Add(-c.cfg.History)
	i := 0
	for i < len(c.samples) && !c.samples[i].Timestamp.After(cutoff) {
		i++
	}
	if i > 0 {
		c.samples = append(c.samples[:0], c.samples[i:]...)
	}
}

// trailingAverages averages the last MinSamples samples. Caller holds mu.
func (c *Controller) trailingAverages() (fps, frameMs float64) {
	recent := c.samples[len(c.samples)-c.cfg.MinSamples:]
	fpsVals := make([]float64, len(recent))
	frameVals := make([]float64, len(recent))
	for i, s := range recent {
		fpsVals[i] = s.FPS
		frameVals[i] = s.FrameTimeMs
	}
	return stat.Mean(fpsVals, nil), stat.Mean(frameVals, nil)
}
