package click

import (
	"github.com/ayusman/mudra/internal/clock"
	"github.com/ayusman/mudra/internal/event"
	"github.com/ayusman/mudra/internal/gesture"
	"github.com/ayusman/mudra/internal/pinch"
	"github.com/ayusman/mudra/internal/plugin"
)

// CursorSource reports where a slot's cursor currently is.
// *pinch.Plugin satisfies it.
type CursorSource interface {
	Cursor(slot int) (pinch.Point, bool)
}

// PluginOptions selects the gestures the click plugin reacts to.
type PluginOptions struct {
	// Primary produces click and double click. Defaults to Thumb_Up.
	Primary gesture.Label
	// Context produces a context-menu request at the cursor. None disables it.
	Context gesture.Label
	// Cursors locates context-menu requests. Without it they are placed at
	// the origin.
	Cursors CursorSource
}

// DefaultPluginOptions binds Thumb_Up to clicks and OK to the context menu.
func DefaultPluginOptions() PluginOptions {
	return PluginOptions{Primary: gesture.ThumbUp, Context: gesture.OK}
}

// Plugin publishes Click, DoubleClick and ContextMenu events.
type Plugin struct {
	opts PluginOptions
	bus  *event.Bus
	d    *Disambiguator
}

// NewPlugin creates the click plugin. A nil clock uses the real clock.
func NewPlugin(cfg Config, opts PluginOptions, bus *event.Bus, clk clock.Clock) (*Plugin, error) {
	if opts.Primary == gesture.None {
		opts.Primary = gesture.ThumbUp
	}
	p := &Plugin{opts: opts, bus: bus}
	d, err := New(cfg, clk, p.emit)
	if err != nil {
		return nil, err
	}
	p.d = d
	return p, nil
}

// Name implements plugin.Plugin.
func (p *Plugin) Name() string { return "click" }

// OnGestureStart implements plugin.GestureStarter.
func (p *Plugin) OnGestureStart(label gesture.Label, data plugin.HandData, slot int) {
	switch {
	case label == p.opts.Primary:
		p.d.GestureStart(slot)
	case label == p.opts.Context && label != gesture.None:
		var pos pinch.Point
		if p.opts.Cursors != nil {
			pos, _ = p.opts.Cursors.Cursor(slot)
		}
		p.bus.Publish(event.ContextMenu{HandIndex: slot, X: pos.X, Y: pos.Y})
	}
}

// OnGestureEnd implements plugin.GestureEnder.
func (p *Plugin) OnGestureEnd(label gesture.Label, data plugin.HandData, slot int) {
	if label == p.opts.Primary {
		p.d.GestureEnd(slot)
	}
}

// ResetSlot implements plugin.Resetter.
func (p *Plugin) ResetSlot(slot int) { p.d.ResetSlot(slot) }

// Close cancels pending click timers.
func (p *Plugin) Close() error {
	p.d.Close()
	return nil
}

func (p *Plugin) emit(kind Kind, slot int) {
	if kind == Double {
		p.bus.Publish(event.DoubleClick{HandIndex: slot})
		return
	}
	p.bus.Publish(event.Click{HandIndex: slot})
}
