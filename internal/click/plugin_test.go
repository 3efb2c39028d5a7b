package click

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"

	"github.com/ayusman/mudra/internal/clock"
	"github.com/ayusman/mudra/internal/event"
	"github.com/ayusman/mudra/internal/gesture"
	"github.com/ayusman/mudra/internal/pinch"
	"github.com/ayusman/mudra/internal/plugin"
)

type fixedCursor pinch.Point

func (f fixedCursor) Cursor(int) (pinch.Point, bool) { return pinch.Point(f), true }

func TestPlugin_Events(t *testing.T) {
	bus := event.NewBus()
	var got []event.Event
	bus.Subscribe(func(e event.Event) { got = append(got, e) })

	clk := clock.NewMock(time.Unix(0, 0))
	opts := DefaultPluginOptions()
	opts.Cursors = fixedCursor{X: 320, Y: 240}
	p, err := NewPlugin(DefaultConfig(), opts, bus, clk)
	require.NoError(t, err)
	defer p.Close()

	p.OnGestureStart(gesture.ThumbUp, plugin.HandData{}, 0)
	clk.Advance(100 * time.Millisecond)
	p.OnGestureEnd(gesture.ThumbUp, plugin.HandData{}, 0)
	clk.Advance(100 * time.Millisecond)
	p.OnGestureStart(gesture.ThumbUp, plugin.HandData{}, 0)
	p.OnGestureEnd(gesture.ThumbUp, plugin.HandData{}, 0)

	// Unbound gestures are ignored.
	p.OnGestureStart(gesture.Victory, plugin.HandData{}, 1)
	p.OnGestureStart(gesture.OK, plugin.HandData{}, 1)

	clk.Advance(time.Second)
	p.OnGestureStart(gesture.ThumbUp, plugin.HandData{}, 1)
	clk.Advance(time.Second)

	want := []event.Event{
		event.DoubleClick{HandIndex: 0},
		event.ContextMenu{HandIndex: 1, X: 320, Y: 240},
		event.Click{HandIndex: 1},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("events mismatch (-want +got):\n%s", diff)
	}
}

func TestPlugin_CloseCancelsPendingClick(t *testing.T) {
	bus := event.NewBus()
	var got []event.Event
	bus.Subscribe(func(e event.Event) { got = append(got, e) })

	clk := clock.NewMock(time.Unix(0, 0))
	p, err := NewPlugin(DefaultConfig(), PluginOptions{}, bus, clk)
	require.NoError(t, err)

	p.OnGestureStart(gesture.ThumbUp, plugin.HandData{}, 0)
	// Context is None here, so OK does nothing.
	p.OnGestureStart(gesture.OK, plugin.HandData{}, 0)
	require.NoError(t, p.Close())
	clk.Advance(time.Second)

	if len(got) != 0 {
		t.Errorf("expected no events after Close, got %v", got)
	}
}
