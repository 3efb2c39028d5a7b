package input

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"

	"github.com/ayusman/mudra/internal/event"
)

func TestSynthesizer_PinchDragSequence(t *testing.T) {
	rec := &Recorder{}
	s := NewSynthesizer(rec, Options{Slot: 0})

	bus := event.NewBus()
	s.Attach(bus)

	bus.Publish(event.PinchStart{X: 10, Y: 20})
	bus.Publish(event.Drag{X: 30, Y: 40})
	bus.Publish(event.PinchEnd{X: 50, Y: 60})

	want := []Action{
		{Type: ActionMove, X: 10, Y: 20},
		{Type: ActionDown, X: 10, Y: 20},
		{Type: ActionMove, X: 30, Y: 40},
		{Type: ActionMove, X: 50, Y: 60},
		{Type: ActionUp, X: 50, Y: 60},
		{Type: ActionClick, X: 50, Y: 60},
	}
	if diff := cmp.Diff(want, rec.Actions()); diff != "" {
		t.Errorf("actions mismatch (-want +got):\n%s", diff)
	}
}

func TestSynthesizer_ButtonsWheelAndContext(t *testing.T) {
	rec := &Recorder{}
	s := NewSynthesizer(rec, Options{Slot: AnySlot})

	s.Handle(event.PointerMove{HandIndex: 3, X: 5, Y: 5})
	s.Handle(event.Click{HandIndex: 3})
	s.Handle(event.DoubleClick{HandIndex: 1})
	s.Handle(event.ContextMenu{HandIndex: 0, X: 7, Y: 8})
	s.Handle(event.Scrolling{DeltaY: -48, Y: 100})
	s.Handle(event.ScrollStart{Y: 1})
	s.Handle(event.GestureStart{Gesture: "Victory"})

	want := []ActionType{
		ActionMove,
		ActionDown, ActionUp, ActionClick,
		ActionDoubleClick,
		ActionMove, ActionContextMenu,
		ActionWheel,
	}
	if diff := cmp.Diff(want, rec.Types()); diff != "" {
		t.Errorf("action types mismatch (-want +got):\n%s", diff)
	}

	acts := rec.Actions()
	assert.Equal(t, Right, acts[6].Button)
	assert.Equal(t, -48.0, acts[7].DeltaY)
	x, y := s.Position()
	assert.Equal(t, 7.0, x)
	assert.Equal(t, 8.0, y)
}

func TestSynthesizer_IgnoresOtherSlots(t *testing.T) {
	rec := &Recorder{}
	s := NewSynthesizer(rec, Options{Slot: 0})

	s.Handle(event.PointerMove{HandIndex: 1, X: 5, Y: 5})
	s.Handle(event.Click{HandIndex: 1})
	s.Handle(event.Scrolling{HandIndex: 1, DeltaY: 6})

	assert.Empty(t, rec.Actions())
}

func TestSynthesizer_HoverTracking(t *testing.T) {
	rec := &Recorder{Layout: Layout{{Name: "card", X: 100, Y: 100, W: 50, H: 50}}}
	s := NewSynthesizer(rec, Options{})

	s.Move(10, 10)
	s.Move(20, 20)
	s.Move(120, 120)
	s.Move(10, 10)

	want := []Action{
		{Type: ActionOver, X: 10, Y: 10, Element: "body"},
		{Type: ActionMove, X: 10, Y: 10, Element: "body"},
		{Type: ActionMove, X: 20, Y: 20, Element: "body"},
		{Type: ActionOut, X: 120, Y: 120, Element: "body"},
		{Type: ActionOver, X: 120, Y: 120, Element: "card"},
		{Type: ActionMove, X: 120, Y: 120, Element: "card"},
		{Type: ActionOut, X: 10, Y: 10, Element: "card"},
		{Type: ActionOver, X: 10, Y: 10, Element: "body"},
		{Type: ActionMove, X: 10, Y: 10, Element: "body"},
	}
	if diff := cmp.Diff(want, rec.Actions()); diff != "" {
		t.Errorf("actions mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, "body", s.Hovered())
}

func TestSynthesizer_UpWithoutDownAndReleaseAll(t *testing.T) {
	rec := &Recorder{}
	s := NewSynthesizer(rec, Options{})

	s.Up(Left)
	assert.Empty(t, rec.Actions())

	s.Down(Left)
	s.Down(Right)
	rec.Reset()
	s.ReleaseAll()

	assert.ElementsMatch(t, []ActionType{ActionUp, ActionUp, ActionClick}, rec.Types())
	s.ReleaseAll()
	assert.Len(t, rec.Types(), 3)
}

func TestSynthesizer_ClickDuringPinchKeepsHold(t *testing.T) {
	rec := &Recorder{}
	s := NewSynthesizer(rec, Options{Slot: 0})

	s.Handle(event.PinchStart{X: 10, Y: 20})
	s.Handle(event.Click{})
	s.Handle(event.PinchEnd{X: 30, Y: 20})

	want := []ActionType{
		ActionMove, ActionDown,
		ActionClick,
		ActionMove, ActionUp, ActionClick,
	}
	if diff := cmp.Diff(want, rec.Types()); diff != "" {
		t.Errorf("action types mismatch (-want +got):\n%s", diff)
	}
}

type failingTarget struct{ calls int }

func (f *failingTarget) Dispatch(Action) error {
	f.calls++
	return errors.New("no display")
}

func TestSynthesizer_DispatchErrorsDoNotStop(t *testing.T) {
	target := &failingTarget{}
	s := NewSynthesizer(target, Options{})

	s.Click(Left)
	assert.Equal(t, 3, target.calls)
}

func TestLayout_ElementAt(t *testing.T) {
	l := Layout{
		{Name: "a", X: 0, Y: 0, W: 10, H: 10},
		{Name: "b", X: 5, Y: 5, W: 10, H: 10},
	}
	assert.Equal(t, "a", l.ElementAt(6, 6))
	assert.Equal(t, "b", l.ElementAt(12, 12))
	assert.Equal(t, "body", l.ElementAt(10, 0))
	assert.Equal(t, "left", Left.String())
	assert.Equal(t, "Button(7)", Button(7).String())
}
