// Package app wires the capture, detection, gesture and plugin layers into
// the mudra frame pipeline.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/ayusman/mudra/internal/capture"
	"github.com/ayusman/mudra/internal/click"
	"github.com/ayusman/mudra/internal/clock"
	"github.com/ayusman/mudra/internal/config"
	"github.com/ayusman/mudra/internal/detector"
	"github.com/ayusman/mudra/internal/event"
	"github.com/ayusman/mudra/internal/gesture"
	"github.com/ayusman/mudra/internal/input"
	"github.com/ayusman/mudra/internal/pinch"
	"github.com/ayusman/mudra/internal/plugin"
	"github.com/ayusman/mudra/internal/quality"
	"github.com/ayusman/mudra/internal/scroll"
	"github.com/ayusman/mudra/internal/store"
	"github.com/ayusman/mudra/internal/tracking"
)

// SettingsKey is the store key holding the last applied quality settings.
const SettingsKey = "quality.settings"

// Deps are the collaborators an App runs against. Only Detector is needed
// to process frames; without a Camera the App can only be fed through
// ProcessFrame.
type Deps struct {
	Camera   capture.Camera
	Detector detector.Detector
	// Store enables gesture-bound actions and persisted quality settings.
	Store *store.Store
	// Target receives synthesized pointer actions. Nil publishes events only.
	Target input.Target
	Clock  clock.Clock
	Logger *slog.Logger
}

type edge struct {
	start bool
	label gesture.Label
	slot  int
}

// App is the running gesture pipeline.
type App struct {
	cfg    *config.Config
	clock  clock.Clock
	logger *slog.Logger

	camera   capture.Camera
	detector detector.Detector
	store    *store.Store
	change   *capture.ChangeDetector

	bus       *event.Bus
	registry  *plugin.Registry
	pointer   *pinch.Plugin
	scroller  *scroll.Plugin
	clicks    *click.Plugin
	actions   *plugin.ActionPlugin
	externals *plugin.Manager
	synth     *input.Synthesizer
	assigner  *tracking.Assigner

	settings *quality.Settings
	quality  *quality.Controller
	monitor  *quality.Monitor

	// tick serializes frames and slot teardown.
	tick        sync.Mutex
	stabilizers []*gesture.Stabilizer
	pending     []edge
	active      int

	mu        sync.RWMutex
	lastBatch []detector.Observation
	hands     []plugin.HandData
	enabled   bool
	frames    uint64
	cancel    context.CancelFunc
	done      chan struct{}
	rate      chan int
	closed    bool
}

// New builds an App from cfg. The configuration is validated first.
func New(cfg *config.Config, deps Deps) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if deps.Detector == nil {
		return nil, errors.New("app: detector is required")
	}
	clk := deps.Clock
	if clk == nil {
		clk = clock.Real{}
	}
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}

	a := &App{
		cfg:      cfg,
		clock:    clk,
		logger:   logger,
		camera:   deps.Camera,
		detector: deps.Detector,
		store:    deps.Store,
		bus:      event.NewBus(),
		enabled:  true,
		rate:     make(chan int, 1),
	}
	if cfg.Detector.StillThreshold > 0 {
		a.change = capture.NewChangeDetector(cfg.Detector.StillThreshold)
	}

	if err := a.buildQuality(); err != nil {
		return nil, err
	}
	if err := a.buildPlugins(deps.Target); err != nil {
		a.registry.Close()
		return nil, err
	}

	// The upgrade ladder may raise the hand cap to two, so every slot the
	// cap can reach gets its stabilizer up front.
	capacity := max(a.settings.MaxHands, cfg.Quality.MaxHands, 2)
	for slot := range capacity {
		st, err := gesture.New(cfg.Gesture.StabilizerConfig(), clk)
		if err != nil {
			a.registry.Close()
			return nil, fmt.Errorf("gesture: %w", err)
		}
		st.OnStart = func(l gesture.Label) { a.pending = append(a.pending, edge{start: true, label: l, slot: slot}) }
		st.OnEnd = func(l gesture.Label) { a.pending = append(a.pending, edge{label: l, slot: slot}) }
		a.stabilizers = append(a.stabilizers, st)
	}
	a.active = min(a.settings.MaxHands, capacity)

	if cfg.Tracking.Enabled {
		assigner, err := tracking.NewAssigner(cfg.Tracking.AssignerConfig(capacity))
		if err != nil {
			a.registry.Close()
			return nil, fmt.Errorf("tracking: %w", err)
		}
		a.assigner = assigner
	}
	return a, nil
}

func (a *App) buildQuality() error {
	settings := a.cfg.Quality.Settings()
	if a.cfg.Quality.Restore && a.store != nil {
		var saved quality.Settings
		err := a.store.Settings().GetJSON(SettingsKey, &saved)
		switch {
		case errors.Is(err, store.ErrNotFound):
		case err != nil:
			a.logger.Warn("could not load saved quality settings", "error", err)
		case saved.Validate() != nil:
			a.logger.Warn("ignoring invalid saved quality settings", "settings", saved.String())
		default:
			settings = saved
			a.logger.Info("restored quality settings", "settings", saved.String())
		}
	}
	a.settings = &settings

	ctrl, err := quality.NewController(a.settings, a.cfg.Quality.ControllerConfig(), a.clock, a.logger.With("component", "quality"))
	if err != nil {
		return fmt.Errorf("quality: %w", err)
	}
	mon, err := quality.NewMonitor(a.cfg.Performance.MonitorConfig(), a.clock)
	if err != nil {
		return fmt.Errorf("performance: %w", err)
	}
	a.quality, a.monitor = ctrl, mon
	ctrl.OnChange(a.applySettings)
	return nil
}

// buildPlugins registers the interpreters in dispatch order. The pointer
// runs first so later plugins read this frame's cursor.
func (a *App) buildPlugins(target input.Target) error {
	a.registry = plugin.NewRegistry(plugin.Options{
		CompensateOnDisable: a.cfg.Plugins.CompensateOnDisable,
		Logger:              a.logger.With("component", "plugins"),
	})

	pointer, err := pinch.NewPlugin(a.cfg.Pinch.PinchConfig(), a.bus, a.clock)
	if err != nil {
		return fmt.Errorf("pinch: %w", err)
	}
	scroller, err := scroll.NewPlugin(a.cfg.Scroll.ScrollConfig(), a.cfg.Scroll.Label(), a.cfg.Pinch.Surface(), a.bus)
	if err != nil {
		return fmt.Errorf("scroll: %w", err)
	}
	opts := a.cfg.Click.PluginOptions()
	opts.Cursors = pointer
	clicks, err := click.NewPlugin(a.cfg.Click.ClickConfig(), opts, a.bus, a.clock)
	if err != nil {
		return fmt.Errorf("click: %w", err)
	}
	a.pointer, a.scroller, a.clicks = pointer, scroller, clicks

	plugins := []plugin.Plugin{pointer, scroller, clicks}
	if a.store != nil {
		a.externals = plugin.NewManager(a.cfg.Storage.PluginDir, a.logger.With("component", "externals"))
		if err := a.externals.Discover(); err != nil {
			a.logger.Warn("plugin discovery failed", "dir", a.cfg.Storage.PluginDir, "error", err)
		}
		a.actions = plugin.NewActionPlugin(a.store.Actions(), a.externals, plugin.NewExecutor(a.cfg.Storage.ActionTimeout()), plugin.ActionOptions{
			QueueSize: a.cfg.Storage.ActionQueueSize,
			Logger:    a.logger.With("component", "actions"),
		})
		plugins = append(plugins, a.actions)
	}

	for _, p := range plugins {
		if err := a.registry.Register(p); err != nil {
			return err
		}
	}
	for _, name := range a.cfg.Plugins.Disabled {
		if err := a.registry.Disable(name); err != nil {
			a.logger.Warn("cannot disable plugin", "name", name, "error", err)
		}
	}

	if target != nil {
		a.synth = input.NewSynthesizer(target, input.Options{
			Slot:   a.cfg.Input.Slot,
			Logger: a.logger.With("component", "input"),
		})
		a.synth.Attach(a.bus)
	}
	return nil
}

// SetEnabled pauses or resumes frame processing. Pausing drops every slot's
// in-flight state without emitting end events.
func (a *App) SetEnabled(enabled bool) {
	a.mu.Lock()
	was := a.enabled
	a.enabled = enabled
	a.mu.Unlock()

	if was && !enabled {
		a.resetSlots()
		a.logger.Info("gesture detection paused")
	} else if !was && enabled {
		a.logger.Info("gesture detection resumed")
	}
}

// IsEnabled reports whether frames are being processed.
func (a *App) IsEnabled() bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.enabled
}

// Hands returns the HandData delivered on the latest frame.
func (a *App) Hands() []plugin.HandData {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return append([]plugin.HandData(nil), a.hands...)
}

// Frames returns how many frames have been processed.
func (a *App) Frames() uint64 {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.frames
}

// Config returns the configuration the App was built with.
func (a *App) Config() *config.Config { return a.cfg }

// Bus returns the event bus plugins publish on.
func (a *App) Bus() *event.Bus { return a.bus }

// Registry returns the plugin registry.
func (a *App) Registry() *plugin.Registry { return a.registry }

// Pointer returns the pointer plugin.
func (a *App) Pointer() *pinch.Plugin { return a.pointer }

// Scroller returns the scroll plugin.
func (a *App) Scroller() *scroll.Plugin { return a.scroller }

// Quality returns the adaptive quality controller.
func (a *App) Quality() *quality.Controller { return a.quality }

// Monitor returns the frame performance monitor.
func (a *App) Monitor() *quality.Monitor { return a.monitor }

// Store returns the store, or nil when running without one.
func (a *App) Store() *store.Store { return a.store }

// Externals returns the external plugin manager, or nil without a store.
func (a *App) Externals() *plugin.Manager { return a.externals }

// Camera returns the capture device, or nil.
func (a *App) Camera() capture.Camera { return a.camera }

// Detector returns the hand detector.
func (a *App) Detector() detector.Detector { return a.detector }
