package click

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ayusman/mudra/internal/clock"
)

type emitted struct {
	kind Kind
	slot int
	at   time.Duration
}

func newTestDisambiguator(t *testing.T) (*Disambiguator, *clock.Mock, *[]emitted) {
	t.Helper()
	start := time.Unix(0, 0)
	clk := clock.NewMock(start)
	var got []emitted
	d, err := New(DefaultConfig(), clk, func(k Kind, slot int) {
		got = append(got, emitted{kind: k, slot: slot, at: clk.Now().Sub(start)})
	})
	require.NoError(t, err)
	return d, clk, &got
}

func TestDisambiguator_DoubleClick(t *testing.T) {
	d, clk, got := newTestDisambiguator(t)

	d.GestureStart(0)
	clk.Advance(50 * time.Millisecond)
	d.GestureEnd(0)
	clk.Advance(150 * time.Millisecond)
	d.GestureStart(0)

	clk.Advance(2 * time.Second)

	require.Len(t, *got, 1)
	assert.Equal(t, Double, (*got)[0].kind)
	assert.Equal(t, 200*time.Millisecond, (*got)[0].at)
	assert.Equal(t, 0, clk.Pending())
}

func TestDisambiguator_SlowRestartIsTwoClicks(t *testing.T) {
	d, clk, got := newTestDisambiguator(t)

	d.GestureStart(0)
	clk.Advance(50 * time.Millisecond)
	d.GestureEnd(0)
	clk.Advance(650 * time.Millisecond)

	require.Len(t, *got, 1, "first start should click after the click duration")
	assert.Equal(t, emitted{kind: Single, slot: 0, at: 300 * time.Millisecond}, (*got)[0])

	d.GestureStart(0)
	clk.Advance(299 * time.Millisecond)
	assert.Len(t, *got, 1)
	assert.True(t, d.Pending(0))

	clk.Advance(time.Millisecond)
	require.Len(t, *got, 2)
	assert.Equal(t, emitted{kind: Single, slot: 0, at: time.Second}, (*got)[1])
	assert.False(t, d.Pending(0))
}

func TestDisambiguator_ThresholdBoundary(t *testing.T) {
	d, clk, got := newTestDisambiguator(t)

	d.GestureEnd(0)
	clk.Advance(500 * time.Millisecond)
	d.GestureStart(0)
	clk.Advance(time.Second)

	require.Len(t, *got, 1)
	assert.Equal(t, Single, (*got)[0].kind, "a gap equal to the threshold is not a double click")
}

func TestDisambiguator_SlotsIndependent(t *testing.T) {
	d, clk, got := newTestDisambiguator(t)

	d.GestureEnd(1)
	clk.Advance(100 * time.Millisecond)
	d.GestureStart(0)
	d.GestureStart(1)
	clk.Advance(time.Second)

	assert.ElementsMatch(t, []emitted{
		{kind: Double, slot: 1, at: 100 * time.Millisecond},
		{kind: Single, slot: 0, at: 400 * time.Millisecond},
	}, *got)
}

func TestDisambiguator_RearmKeepsOneTimer(t *testing.T) {
	d, clk, got := newTestDisambiguator(t)

	d.GestureStart(0)
	clk.Advance(100 * time.Millisecond)
	d.GestureStart(0)
	assert.Equal(t, 1, clk.Pending())

	clk.Advance(time.Second)
	require.Len(t, *got, 1)
	assert.Equal(t, 400*time.Millisecond, (*got)[0].at)
}

func TestDisambiguator_ResetAndClose(t *testing.T) {
	d, clk, got := newTestDisambiguator(t)

	d.GestureStart(0)
	d.ResetSlot(0)
	assert.False(t, d.Pending(0))

	d.GestureEnd(1)
	d.ResetSlot(1)
	clk.Advance(100 * time.Millisecond)
	d.GestureStart(1)
	assert.True(t, d.Pending(1), "reset forgets the last end")

	d.Close()
	clk.Advance(time.Second)
	assert.Empty(t, *got)

	d.GestureStart(2)
	assert.Equal(t, 0, clk.Pending())
	d.ResetSlot(9)
}

func TestNew_InvalidConfig(t *testing.T) {
	for _, cfg := range []Config{
		{ClickDuration: 0, DoubleClick: time.Second},
		{ClickDuration: time.Second, DoubleClick: -1},
	} {
		t.Run(fmt.Sprintf("%v/%v", cfg.ClickDuration, cfg.DoubleClick), func(t *testing.T) {
			_, err := New(cfg, nil, nil)
			assert.True(t, errors.Is(err, ErrInvalidConfig))
		})
	}
}

func TestKind_String(t *testing.T) {
	assert.Equal(t, "click", Single.String())
	assert.Equal(t, "doubleclick", Double.String())
}
