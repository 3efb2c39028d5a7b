// Package pinch detects pinch and drag interactions from the distance between
// the index and thumb fingertips.
package pinch

import (
	"errors"
	"fmt"
	"time"

	"github.com/ayusman/mudra/internal/clock"
	"github.com/ayusman/mudra/internal/detector"
)

// ErrInvalidConfig is returned for thresholds that cannot form a hysteresis
// band.
var ErrInvalidConfig = errors.New("invalid pinch config")

// State is the pinch interaction state.
type State int

const (
	Idle State = iota
	Pinching
	Dragging
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Pinching:
		return "pinching"
	case Dragging:
		return "dragging"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Config holds pinch thresholds and surface geometry. Thresholds are
// normalized hand-space distances; Padding, Surface and Target are pixels.
type Config struct {
	StartThreshold float64
	EndThreshold   float64
	Padding        float64
	Surface        Rect
	// Target is the draggable element. An empty Target disables dragging.
	Target Rect
	Mirror bool
}

// DefaultConfig returns the default thresholds on a 1280x720 surface with
// no drag target.
func DefaultConfig() Config {
	return Config{
		StartThreshold: 0.045,
		EndThreshold:   0.065,
		Padding:        24,
		Surface:        Rect{W: 1280, H: 720},
	}
}

// Validate checks the thresholds and surface.
func (c Config) Validate() error {
	switch {
	case c.StartThreshold <= 0 || c.EndThreshold <= 0:
		return fmt.Errorf("%w: thresholds must be positive", ErrInvalidConfig)
	case c.StartThreshold >= c.EndThreshold:
		return fmt.Errorf("%w: start threshold %v must be below end threshold %v", ErrInvalidConfig, c.StartThreshold, c.EndThreshold)
	case c.Padding < 0:
		return fmt.Errorf("%w: padding must not be negative", ErrInvalidConfig)
	case c.Surface.Empty():
		return fmt.Errorf("%w: surface must have positive size", ErrInvalidConfig)
	}
	return nil
}

// Option configures a StateMachine.
type Option func(*StateMachine)

// WithClock sets the clock used to timestamp pinch starts.
func WithClock(clk clock.Clock) Option {
	return func(m *StateMachine) { m.clock = clk }
}

// StateMachine tracks one hand slot's pinch state. It is driven from the
// frame tick and is not safe for concurrent use.
type StateMachine struct {
	cfg   Config
	clock clock.Clock

	// OnPinchStart, OnPinchEnd and OnDrag receive the projected cursor.
	OnPinchStart func(Point)
	OnPinchEnd   func(Point)
	OnDrag       func(Point)

	state      State
	cursor     Point
	target     Rect
	grabOffset Point
	startedAt  time.Time
	startPos   Point
}

// New creates a StateMachine in the Idle state.
func New(cfg Config, opts ...Option) (*StateMachine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	m := &StateMachine{cfg: cfg, clock: clock.Real{}, target: cfg.Target}
	for _, opt := range opts {
		opt(m)
	}
	return m, nil
}

// Update advances the state machine by one frame. nil landmarks mean the
// hand was lost: the state drops to Idle without OnPinchEnd.
func (m *StateMachine) Update(lm *detector.Landmarks) {
	if lm == nil {
		m.state = Idle
		return
	}

	m.cursor = Project(lm[detector.IndexTip], m.cfg.Surface, m.cfg.Mirror)
	dist := lm.PinchDistance()

	switch {
	case m.state == Idle && dist < m.cfg.StartThreshold:
		m.state = Pinching
		m.startedAt = m.clock.Now()
		m.startPos = m.cursor
		if m.OnPinchStart != nil {
			m.OnPinchStart(m.cursor)
		}
		if !m.target.Empty() && m.target.Near(m.cursor, m.cfg.Padding) {
			m.state = Dragging
			m.grabOffset = m.cursor.Sub(m.target.Origin())
		}
	case m.state != Idle && dist > m.cfg.EndThreshold:
		m.state = Idle
		if m.OnPinchEnd != nil {
			m.OnPinchEnd(m.cursor)
		}
	}

	if m.state == Dragging {
		m.target = m.cfg.Surface.ClampInside(m.target, m.cursor.Sub(m.grabOffset))
		if m.OnDrag != nil {
			m.OnDrag(m.cursor)
		}
	}
}

// State returns the current state.
func (m *StateMachine) State() State { return m.state }

// Cursor returns the last projected cursor position.
func (m *StateMachine) Cursor() Point { return m.cursor }

// Target returns the draggable target's current bounds.
func (m *StateMachine) Target() Rect { return m.target }

// SetTarget replaces the draggable target bounds.
func (m *StateMachine) SetTarget(r Rect) { m.target = r }

// GrabOffset returns the cursor offset from the target origin recorded at
// the start of the current drag.
func (m *StateMachine) GrabOffset() Point { return m.grabOffset }

// StartedAt returns when the current or last pinch began and where.
func (m *StateMachine) StartedAt() (time.Time, Point) { return m.startedAt, m.startPos }

// SetMirror toggles horizontal mirroring of the projected cursor. Pinch
// distance is unaffected.
func (m *StateMachine) SetMirror(mirror bool) { m.cfg.Mirror = mirror }

// Mirror reports whether projection is mirrored.
func (m *StateMachine) Mirror() bool { return m.cfg.Mirror }

// Reset forces Idle without callbacks.
func (m *StateMachine) Reset() {
	m.state = Idle
	m.grabOffset = Point{}
}
