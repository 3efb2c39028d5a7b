package pinch

import (
	"slices"
	"sync"

	"github.com/ayusman/mudra/internal/clock"
	"github.com/ayusman/mudra/internal/event"
	"github.com/ayusman/mudra/internal/plugin"
)

// Plugin is the pointer interpreter: one StateMachine per hand slot sharing
// a single draggable target. It publishes PointerMove on every frame a hand
// is present plus PinchStart, PinchEnd and Drag on transitions.
type Plugin struct {
	cfg   Config
	clock clock.Clock
	bus   *event.Bus

	mu      sync.Mutex
	slots   map[int]*StateMachine
	target  Rect
	pending []event.Event
}

// NewPlugin creates the pointer plugin. A nil clock uses the real clock.
func NewPlugin(cfg Config, bus *event.Bus, clk clock.Clock) (*Plugin, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if clk == nil {
		clk = clock.Real{}
	}
	return &Plugin{
		cfg:    cfg,
		clock:  clk,
		bus:    bus,
		slots:  make(map[int]*StateMachine),
		target: cfg.Target,
	}, nil
}

// Name implements plugin.Plugin.
func (p *Plugin) Name() string { return "pointer" }

// OnHandUpdate implements plugin.HandUpdater.
func (p *Plugin) OnHandUpdate(data plugin.HandData, slot int) {
	p.mu.Lock()
	sm := p.machine(slot)
	sm.SetTarget(p.target)
	sm.SetMirror(p.cfg.Mirror)
	sm.Update(data.Landmarks)
	p.target = sm.Target()

	if data.Landmarks != nil {
		c := sm.Cursor()
		p.pending = append(p.pending, event.PointerMove{
			HandIndex: slot, X: c.X, Y: c.Y, Pinching: sm.State() != Idle,
		})
	}
	out := p.pending
	p.pending = nil
	p.mu.Unlock()

	for _, e := range out {
		p.bus.Publish(e)
	}
}

// ResetSlot implements plugin.Resetter.
func (p *Plugin) ResetSlot(slot int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if sm, ok := p.slots[slot]; ok {
		sm.Reset()
	}
}

// OnDisable implements plugin.Disabler. Every slot still pinching publishes
// PinchEnd at its cursor and drops to Idle, so a held button is released.
func (p *Plugin) OnDisable() {
	p.mu.Lock()
	slots := make([]int, 0, len(p.slots))
	for slot := range p.slots {
		slots = append(slots, slot)
	}
	slices.Sort(slots)
	for _, slot := range slots {
		sm := p.slots[slot]
		if sm.State() == Idle {
			continue
		}
		sm.OnPinchEnd(sm.Cursor())
		sm.Reset()
	}
	out := p.pending
	p.pending = nil
	p.mu.Unlock()

	for _, e := range out {
		p.bus.Publish(e)
	}
}

// State returns the pinch state for slot.
func (p *Plugin) State(slot int) State {
	p.mu.Lock()
	defer p.mu.Unlock()
	if sm, ok := p.slots[slot]; ok {
		return sm.State()
	}
	return Idle
}

// Cursor returns the last projected cursor for slot.
func (p *Plugin) Cursor(slot int) (Point, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if sm, ok := p.slots[slot]; ok {
		return sm.Cursor(), true
	}
	return Point{}, false
}

// Target returns the draggable target's current bounds.
func (p *Plugin) Target() Rect {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.target
}

// SetTarget replaces the draggable target bounds.
func (p *Plugin) SetTarget(r Rect) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.target = r
}

// SetMirror toggles cursor mirroring for every slot.
func (p *Plugin) SetMirror(mirror bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.cfg.Mirror = mirror
}

// Mirror reports whether cursor projection is mirrored.
func (p *Plugin) Mirror() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.cfg.Mirror
}

// machine returns slot's state machine, creating it on first use.
// Caller holds mu.
func (p *Plugin) machine(slot int) *StateMachine {
	if sm, ok := p.slots[slot]; ok {
		return sm
	}

	sm := &StateMachine{cfg: p.cfg, clock: p.clock, target: p.target}
	sm.OnPinchStart = func(pos Point) {
		p.pending = append(p.pending, event.PinchStart{HandIndex: slot, X: pos.X, Y: pos.Y})
	}
	sm.OnPinchEnd = func(pos Point) {
		started, start := sm.StartedAt()
		p.pending = append(p.pending, event.PinchEnd{
			HandIndex:  slot,
			X:          pos.X,
			Y:          pos.Y,
			DurationMs: p.clock.Now().Sub(started).Milliseconds(),
			StartX:     start.X,
			StartY:     start.Y,
		})
	}
	sm.OnDrag = func(pos Point) {
		t := sm.Target()
		p.pending = append(p.pending, event.Drag{HandIndex: slot, X: pos.X, Y: pos.Y, TargetX: t.X, TargetY: t.Y})
	}
	p.slots[slot] = sm
	return sm
}
