package plugin

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"sync"

	"github.com/ayusman/mudra/internal/gesture"
)

// ErrDuplicatePlugin is returned when a plugin name is registered twice.
var ErrDuplicatePlugin = errors.New("plugin already registered")

// Options configures a Registry.
type Options struct {
	// CompensateOnDisable delivers OnGestureEnd for every gesture a plugin
	// was told started and not yet ended when it is disabled or unregistered,
	// then calls OnDisable on plugins that implement Disabler.
	CompensateOnDisable bool
	Logger              *slog.Logger
}

// DefaultOptions returns the default registry options.
func DefaultOptions() Options {
	return Options{CompensateOnDisable: true}
}

// Info describes a registered plugin.
type Info struct {
	Name         string   `json:"name"`
	Enabled      bool     `json:"enabled"`
	Capabilities []string `json:"capabilities"`
}

type entry struct {
	plugin  Plugin
	enabled bool

	hand  HandUpdater
	start GestureStarter
	end     GestureEnder
	reset   Resetter
	disable Disabler

	// active maps slot to the gesture delivered as started and not ended.
	active map[int]gesture.Label
}

func (e *entry) capabilities() []string {
	var caps []string
	if e.hand != nil {
		caps = append(caps, "handUpdate")
	}
	if e.start != nil {
		caps = append(caps, "gestureStart")
	}
	if e.end != nil {
		caps = append(caps, "gestureEnd")
	}
	if e.reset != nil {
		caps = append(caps, "reset")
	}
	if e.disable != nil {
		caps = append(caps, "disable")
	}
	return caps
}

// Registry dispatches hand batches and gesture edges to plugins in
// registration order. Calls are synchronous and share no isolation: a plugin
// observes any state mutated by plugins called before it in the same frame.
//
// Dispatch iterates a snapshot of the enabled plugins, so a plugin disabled
// by an earlier plugin still receives the current call.
type Registry struct {
	opts   Options
	logger *slog.Logger

	mu       sync.Mutex
	entries  []*entry
	lastHand map[int]HandData
}

// NewRegistry creates an empty Registry.
func NewRegistry(opts Options) *Registry {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Registry{
		opts:     opts,
		logger:   logger,
		lastHand: make(map[int]HandData),
	}
}

// Register appends p to the dispatch order, enabled. Its capabilities are
// detected once here.
func (r *Registry) Register(p Plugin) error {
	if p == nil || p.Name() == "" {
		return fmt.Errorf("register plugin: name is required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	for _, e := range r.entries {
		if e.plugin.Name() == p.Name() {
			return fmt.Errorf("%w: %s", ErrDuplicatePlugin, p.Name())
		}
	}

	e := &entry{plugin: p, enabled: true, active: make(map[int]gesture.Label)}
	e.hand, _ = p.(HandUpdater)
	e.start, _ = p.(GestureStarter)
	e.end, _ = p.(GestureEnder)
	e.reset, _ = p.(Resetter)
	e.disable, _ = p.(Disabler)
	r.entries = append(r.entries, e)

	r.logger.Debug("plugin registered", "plugin", p.Name(), "capabilities", e.capabilities())
	return nil
}

// Unregister removes the named plugin, compensating open gestures first.
func (r *Registry) Unregister(name string) error {
	r.mu.Lock()
	idx := r.indexOf(name)
	if idx < 0 {
		r.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrPluginNotFound, name)
	}
	e := r.entries[idx]
	r.entries = append(r.entries[:idx:idx], r.entries[idx+1:]...)
	pending := r.takeCompensation(e)
	r.mu.Unlock()

	r.compensate(e, pending)
	return nil
}

// Enable resumes dispatch to the named plugin.
func (r *Registry) Enable(name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	idx := r.indexOf(name)
	if idx < 0 {
		return fmt.Errorf("%w: %s", ErrPluginNotFound, name)
	}
	r.entries[idx].enabled = true
	return nil
}

// Disable stops dispatch to the named plugin. With CompensateOnDisable the
// plugin first receives OnGestureEnd for each gesture still open for it.
func (r *Registry) Disable(name string) error {
	r.mu.Lock()
	idx := r.indexOf(name)
	if idx < 0 {
		r.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrPluginNotFound, name)
	}
	e := r.entries[idx]
	if !e.enabled {
		r.mu.Unlock()
		return nil
	}
	e.enabled = false
	pending := r.takeCompensation(e)
	r.mu.Unlock()

	r.compensate(e, pending)
	return nil
}

// Plugins lists registered plugins in dispatch order.
func (r *Registry) Plugins() []Info {
	r.mu.Lock()
	defer r.mu.Unlock()

	infos := make([]Info, len(r.entries))
	for i, e := range r.entries {
		infos[i] = Info{Name: e.plugin.Name(), Enabled: e.enabled, Capabilities: e.capabilities()}
	}
	return infos
}

// Get returns the named plugin.
func (r *Registry) Get(name string) (Plugin, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	idx := r.indexOf(name)
	if idx < 0 {
		return nil, fmt.Errorf("%w: %s", ErrPluginNotFound, name)
	}
	return r.entries[idx].plugin, nil
}

// UpdateHands delivers each slot of batch to every enabled HandUpdater.
// Slots are visited in order; within a slot plugins run in registration
// order.
func (r *Registry) UpdateHands(batch []HandData) {
	r.mu.Lock()
	for i, h := range batch {
		r.lastHand[i] = h
	}
	for slot := range r.lastHand {
		if slot >= len(batch) {
			delete(r.lastHand, slot)
		}
	}
	targets := r.enabled(func(e *entry) bool { return e.hand != nil })
	r.mu.Unlock()

	for slot, h := range batch {
		for _, e := range targets {
			e.hand.OnHandUpdate(h, slot)
		}
	}
}

// NotifyGestureStart broadcasts a start edge for slot.
func (r *Registry) NotifyGestureStart(label gesture.Label, data HandData, slot int) {
	r.mu.Lock()
	targets := r.enabled(func(e *entry) bool { return e.start != nil })
	for _, e := range targets {
		e.active[slot] = label
	}
	r.mu.Unlock()

	for _, e := range targets {
		e.start.OnGestureStart(label, data, slot)
	}
}

// NotifyGestureEnd broadcasts an end edge for slot.
func (r *Registry) NotifyGestureEnd(label gesture.Label, data HandData, slot int) {
	r.mu.Lock()
	for _, e := range r.entries {
		if e.active[slot] == label {
			delete(e.active, slot)
		}
	}
	targets := r.enabled(func(e *entry) bool { return e.end != nil })
	r.mu.Unlock()

	for _, e := range targets {
		e.end.OnGestureEnd(label, data, slot)
	}
}

// ResetSlot drops every plugin's state for slot without emitting end
// notifications.
func (r *Registry) ResetSlot(slot int) {
	r.mu.Lock()
	for _, e := range r.entries {
		delete(e.active, slot)
	}
	delete(r.lastHand, slot)
	targets := r.enabled(func(e *entry) bool { return e.reset != nil })
	r.mu.Unlock()

	for _, e := range targets {
		e.reset.ResetSlot(slot)
	}
}

// Close forgets all open gestures and closes every plugin implementing
// io.Closer. No end notifications are sent.
func (r *Registry) Close() error {
	r.mu.Lock()
	entries := make([]*entry, len(r.entries))
	copy(entries, r.entries)
	for _, e := range entries {
		e.active = make(map[int]gesture.Label)
	}
	r.lastHand = make(map[int]HandData)
	r.mu.Unlock()

	var errs []error
	for _, e := range entries {
		if c, ok := e.plugin.(io.Closer); ok {
			if err := c.Close(); err != nil {
				errs = append(errs, fmt.Errorf("close plugin %s: %w", e.plugin.Name(), err))
			}
		}
	}
	return errors.Join(errs...)
}

func (r *Registry) indexOf(name string) int {
	for i, e := range r.entries {
		if e.plugin.Name() == name {
			return i
		}
	}
	return -1
}

func (r *Registry) enabled(match func(*entry) bool) []*entry {
	out := make([]*entry, 0, len(r.entries))
	for _, e := range r.entries {
		if e.enabled && match(e) {
			out = append(out, e)
		}
	}
	return out
}

type openGesture struct {
	slot  int
	label gesture.Label
	data  HandData
}

// takeCompensation clears e's open gestures and returns those to end.
// Caller holds mu.
func (r *Registry) takeCompensation(e *entry) []openGesture {
	if len(e.active) == 0 {
		return nil
	}
	var pending []openGesture
	if r.opts.CompensateOnDisable && e.end != nil {
		for slot, label := range e.active {
			data := r.lastHand[slot]
			data.Gesture = label
			pending = append(pending, openGesture{slot: slot, label: label, data: data})
		}
		sort.Slice(pending, func(i, j int) bool { return pending[i].slot < pending[j].slot })
	}
	e.active = make(map[int]gesture.Label)
	return pending
}

func (r *Registry) compensate(e *entry, pending []openGesture) {
	for _, g := range pending {
		r.logger.Debug("compensating open gesture", "plugin", e.plugin.Name(), "slot", g.slot, "label", g.label)
		e.end.OnGestureEnd(g.label, g.data, g.slot)
	}
	if r.opts.CompensateOnDisable && e.disable != nil {
		e.disable.OnDisable()
	}
}
