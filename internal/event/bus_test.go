package event

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBus_DeliversInSubscriptionOrder(t *testing.T) {
	bus := NewBus()
	var order []string

	bus.Subscribe(func(Event) { order = append(order, "first") })
	bus.Subscribe(func(Event) { order = append(order, "second") })
	bus.Subscribe(func(Event) { order = append(order, "third") })

	bus.Publish(Click{HandIndex: 0})

	assert.Equal(t, []string{"first", "second", "third"}, order)
}

func TestBus_Unsubscribe(t *testing.T) {
	bus := NewBus()
	var count int

	unsubscribe := bus.Subscribe(func(Event) { count++ })
	bus.Publish(ScrollEnd{})
	unsubscribe()
	unsubscribe()
	bus.Publish(ScrollEnd{})

	assert.Equal(t, 1, count)
	assert.Equal(t, 0, bus.Len())
}

func TestBus_UnsubscribeDuringPublish(t *testing.T) {
	bus := NewBus()
	var got []string

	var unsubscribe func()
	unsubscribe = bus.Subscribe(func(Event) {
		got = append(got, "a")
		unsubscribe()
	})
	bus.Subscribe(func(Event) { got = append(got, "b") })

	bus.Publish(Click{})
	bus.Publish(Click{})

	assert.Equal(t, []string{"a", "b", "b"}, got)
}

func TestOn_FiltersByType(t *testing.T) {
	bus := NewBus()
	var scrolls []Scrolling
	var clicks int

	On(bus, func(e Scrolling) { scrolls = append(scrolls, e) })
	On(bus, func(Click) { clicks++ })

	bus.Publish(ScrollStart{Y: 100})
	bus.Publish(Scrolling{DeltaY: 48, Y: 108})
	bus.Publish(Click{HandIndex: 1})
	bus.Publish(ScrollEnd{})

	want := []Scrolling{{DeltaY: 48, Y: 108}}
	if diff := cmp.Diff(want, scrolls); diff != "" {
		t.Errorf("scroll events mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, 1, clicks)
}

func TestEnvelope_JSON(t *testing.T) {
	ts := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	data, err := json.Marshal(Wrap(PinchEnd{X: 10, Y: 20, DurationMs: 150, StartX: 5, StartY: 6}, ts))
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(data, &decoded))

	assert.Equal(t, "pinchend", decoded["type"])
	assert.Equal(t, "2026-01-02T03:04:05Z", decoded["timestamp"])
	payload, ok := decoded["data"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, float64(150), payload["durationMs"])
	assert.Equal(t, float64(5), payload["startX"])
}
