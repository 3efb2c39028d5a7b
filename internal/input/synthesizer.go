package input

import (
	"log/slog"
	"sync"

	"github.com/ayusman/mudra/internal/event"
)

// AnySlot makes a Synthesizer follow every hand slot.
const AnySlot = -1

// Options configures a Synthesizer.
type Options struct {
	// Slot is the hand slot that drives the pointer, or AnySlot.
	Slot int
	// HitTester overrides the target's own hit testing.
	HitTester HitTester
	Logger    *slog.Logger
}

// Synthesizer tracks a virtual pointer and applies it to a Target.
type Synthesizer struct {
	target Target
	hit    HitTester
	slot   int
	logger *slog.Logger

	mu   sync.Mutex
	x, y float64
	over string
	down map[Button]bool
}

// NewSynthesizer creates a Synthesizer for target.
func NewSynthesizer(target Target, opts Options) *Synthesizer {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	hit := opts.HitTester
	if hit == nil {
		hit, _ = target.(HitTester)
	}
	return &Synthesizer{
		target: target,
		hit:    hit,
		slot:   opts.Slot,
		logger: logger,
		down:   make(map[Button]bool),
	}
}

// Attach subscribes the synthesizer to bus.
func (s *Synthesizer) Attach(bus *event.Bus) (unsubscribe func()) {
	return bus.Subscribe(s.Handle)
}

// Handle applies one event. Events from other slots are ignored.
func (s *Synthesizer) Handle(e event.Event) {
	switch ev := e.(type) {
	case event.PointerMove:
		if s.follows(ev.HandIndex) {
			s.Move(ev.X, ev.Y)
		}
	case event.PinchStart:
		if s.follows(ev.HandIndex) {
			s.Move(ev.X, ev.Y)
			s.Down(Left)
		}
	case event.PinchEnd:
		if s.follows(ev.HandIndex) {
			s.Move(ev.X, ev.Y)
			s.Up(Left)
		}
	case event.Drag:
		if s.follows(ev.HandIndex) {
			s.Move(ev.X, ev.Y)
		}
	case event.Click:
		if s.follows(ev.HandIndex) {
			s.Click(Left)
		}
	case event.DoubleClick:
		if s.follows(ev.HandIndex) {
			s.DoubleClick()
		}
	case event.ContextMenu:
		if s.follows(ev.HandIndex) {
			s.Move(ev.X, ev.Y)
			s.Context()
		}
	case event.Scrolling:
		if s.follows(ev.HandIndex) {
			s.Wheel(ev.DeltaY)
		}
	}
}

// Move moves the pointer, emitting Out and Over first when the hovered
// element changes.
func (s *Synthesizer) Move(x, y float64) {
	s.mu.Lock()
	s.x, s.y = x, y
	var out []Action
	if s.hit != nil {
		el := s.hit.ElementAt(x, y)
		if el != s.over {
			if s.over != "" {
				out = append(out, Action{Type: ActionOut, X: x, Y: y, Element: s.over})
			}
			out = append(out, Action{Type: ActionOver, X: x, Y: y, Element: el})
			s.over = el
		}
	}
	out = append(out, s.action(ActionMove, Left))
	s.mu.Unlock()

	s.dispatch(out...)
}

// Down presses b at the pointer.
func (s *Synthesizer) Down(b Button) {
	s.mu.Lock()
	s.down[b] = true
	a := s.action(ActionDown, b)
	s.mu.Unlock()
	s.dispatch(a)
}

// Up releases b. Releasing the left button also emits Click. Releasing a
// button that is not down does nothing.
func (s *Synthesizer) Up(b Button) {
	s.mu.Lock()
	if !s.down[b] {
		s.mu.Unlock()
		return
	}
	delete(s.down, b)
	out := []Action{s.action(ActionUp, b)}
	if b == Left {
		out = append(out, s.action(ActionClick, b))
	}
	s.mu.Unlock()
	s.dispatch(out...)
}

// Click presses and releases b. When b is already held, as during a pinch
// drag, only the Click action is emitted so the hold survives.
func (s *Synthesizer) Click(b Button) {
	s.mu.Lock()
	if s.down[b] {
		a := s.action(ActionClick, b)
		s.mu.Unlock()
		s.dispatch(a)
		return
	}
	s.mu.Unlock()

	s.Down(b)
	s.Up(b)
}

// DoubleClick emits a left double click at the pointer.
func (s *Synthesizer) DoubleClick() {
	s.mu.Lock()
	a := s.action(ActionDoubleClick, Left)
	s.mu.Unlock()
	s.dispatch(a)
}

// Context requests a context menu at the pointer.
func (s *Synthesizer) Context() {
	s.mu.Lock()
	a := s.action(ActionContextMenu, Right)
	s.mu.Unlock()
	s.dispatch(a)
}

// Wheel scrolls by deltaY surface pixels.
func (s *Synthesizer) Wheel(deltaY float64) {
	s.mu.Lock()
	a := s.action(ActionWheel, Left)
	a.DeltaY = deltaY
	s.mu.Unlock()
	s.dispatch(a)
}

// Position returns the pointer position.
func (s *Synthesizer) Position() (x, y float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.x, s.y
}

// Hovered returns the element under the pointer, or "" without hit testing.
func (s *Synthesizer) Hovered() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.over
}

// ReleaseAll releases every held button.
func (s *Synthesizer) ReleaseAll() {
	s.mu.Lock()
	held := make([]Button, 0, len(s.down))
	for b := range s.down {
		held = append(held, b)
	}
	s.mu.Unlock()
	for _, b := range held {
		s.Up(b)
	}
}

func (s *Synthesizer) follows(slot int) bool {
	return s.slot == AnySlot || s.slot == slot
}

// action builds an action at the pointer. Caller holds mu.
func (s *Synthesizer) action(t ActionType, b Button) Action {
	return Action{Type: t, X: s.x, Y: s.y, Button: b, Element: s.over}
}

func (s *Synthesizer) dispatch(actions ...Action) {
	for _, a := range actions {
		if err := s.target.Dispatch(a); err != nil {
			s.logger.Warn("input dispatch failed", "action", a.Type, "error", err)
		}
	}
}
