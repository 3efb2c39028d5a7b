// Package click turns primary-gesture edges into click and double-click
// signals using deferred timers.
package click

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/ayusman/mudra/internal/clock"
)

// ErrInvalidConfig is returned for non-positive thresholds.
var ErrInvalidConfig = errors.New("invalid click config")

// Kind is the signal produced by a Disambiguator.
type Kind int

const (
	Single Kind = iota
	Double
)

func (k Kind) String() string {
	if k == Double {
		return "doubleclick"
	}
	return "click"
}

// Config holds click timing thresholds.
type Config struct {
	// ClickDuration is how long a start waits unopposed before it counts
	// as a single click.
	ClickDuration time.Duration
	// DoubleClick is the maximum gap between a gesture end and the next
	// start for a double click.
	DoubleClick time.Duration
}

// DefaultConfig returns 300ms / 500ms.
func DefaultConfig() Config {
	return Config{
		ClickDuration: 300 * time.Millisecond,
		DoubleClick:   500 * time.Millisecond,
	}
}

func (c Config) Validate() error {
	if c.ClickDuration <= 0 {
		return fmt.Errorf("%w: click duration must be positive", ErrInvalidConfig)
	}
	if c.DoubleClick <= 0 {
		return fmt.Errorf("%w: double click threshold must be positive", ErrInvalidConfig)
	}
	return nil
}

type slotState struct {
	lastEnd time.Time
	ended   bool
	timer   clock.Timer
	gen     uint64
}

// Disambiguator tracks each slot's last gesture end and at most one pending
// single-click timer. It is safe for concurrent use; emit is never called
// with the internal lock held.
type Disambiguator struct {
	cfg   Config
	clock clock.Clock
	emit  func(kind Kind, slot int)

	mu     sync.Mutex
	slots  map[int]*slotState
	seq    uint64
	closed bool
}

// New creates a Disambiguator. A nil clock uses the real clock.
func New(cfg Config, clk clock.Clock, emit func(kind Kind, slot int)) (*Disambiguator, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if clk == nil {
		clk = clock.Real{}
	}
	if emit == nil {
		emit = func(Kind, int) {}
	}
	return &Disambiguator{cfg: cfg, clock: clk, emit: emit, slots: make(map[int]*slotState)}, nil
}

// GestureStart handles a primary-gesture start edge for slot.
func (d *Disambiguator) GestureStart(slot int) {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return
	}
	s := d.slot(slot)
	now := d.clock.Now()
	s.cancel()

	if s.ended && now.Sub(s.lastEnd) < d.cfg.DoubleClick {
		s.ended = false
		d.mu.Unlock()
		d.emit(Double, slot)
		return
	}

	d.seq++
	gen := d.seq
	s.gen = gen
	s.timer = d.clock.AfterFunc(d.cfg.ClickDuration, func() { d.fire(slot, gen) })
	d.mu.Unlock()
}

// GestureEnd records the end time of slot's primary gesture.
func (d *Disambiguator) GestureEnd(slot int) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return
	}
	s := d.slot(slot)
	s.lastEnd = d.clock.Now()
	s.ended = true
}

// Pending reports whether slot has an armed single-click timer.
func (d *Disambiguator) Pending(slot int) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	s, ok := d.slots[slot]
	return ok && s.timer != nil
}

// ResetSlot cancels slot's timer and forgets its last end.
func (d *Disambiguator) ResetSlot(slot int) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if s, ok := d.slots[slot]; ok {
		s.cancel()
		delete(d.slots, slot)
	}
}

// Close cancels every pending timer. Later calls are ignored.
func (d *Disambiguator) Close() {
	d.mu.Lock()
	defer d.mu.Unlock()
	for _, s := range d.slots {
		s.cancel()
	}
	d.slots = make(map[int]*slotState)
	d.closed = true
}

func (d *Disambiguator) fire(slot int, gen uint64) {
	d.mu.Lock()
	s, ok := d.slots[slot]
	if !ok || d.closed || s.timer == nil || s.gen != gen {
		d.mu.Unlock()
		return
	}
	s.timer = nil
	d.mu.Unlock()
	d.emit(Single, slot)
}

// slot returns slot's state, creating it. Caller holds mu.
func (d *Disambiguator) slot(slot int) *slotState {
	s, ok := d.slots[slot]
	if !ok {
		s = &slotState{}
		d.slots[slot] = s
	}
	return s
}

// cancel stops the pending timer. A fire already in flight sees a nil
// timer and does nothing.
func (s *slotState) cancel() {
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
}
