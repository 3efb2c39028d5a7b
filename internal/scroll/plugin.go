package scroll

import (
	"sync"

	"github.com/ayusman/mudra/internal/detector"
	"github.com/ayusman/mudra/internal/event"
	"github.com/ayusman/mudra/internal/gesture"
	"github.com/ayusman/mudra/internal/pinch"
	"github.com/ayusman/mudra/internal/plugin"
)

// Plugin scrolls while its gesture (Victory by default) is held, publishing
// ScrollStart, Scrolling and ScrollEnd per slot. Fingertip Y is projected
// onto Surface.
type Plugin struct {
	cfg     Config
	gesture gesture.Label
	surface pinch.Rect
	bus     *event.Bus

	mu    sync.Mutex
	slots map[int]*Controller
}

// NewPlugin creates the scroll plugin. A None label binds Victory.
func NewPlugin(cfg Config, label gesture.Label, surface pinch.Rect, bus *event.Bus) (*Plugin, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if label == gesture.None {
		label = gesture.Victory
	}
	return &Plugin{cfg: cfg, gesture: label, surface: surface, bus: bus, slots: make(map[int]*Controller)}, nil
}

// Name implements plugin.Plugin.
func (p *Plugin) Name() string { return "scroll" }

// OnGestureStart implements plugin.GestureStarter.
func (p *Plugin) OnGestureStart(label gesture.Label, data plugin.HandData, slot int) {
	if label != p.gesture || data.Landmarks == nil {
		return
	}
	y := p.tipY(data.Landmarks)

	p.mu.Lock()
	c, ok := p.slots[slot]
	if !ok {
		c = &Controller{cfg: p.cfg}
		p.slots[slot] = c
	}
	c.Start(y)
	p.mu.Unlock()

	p.bus.Publish(event.ScrollStart{HandIndex: slot, Y: y})
}

// OnHandUpdate implements plugin.HandUpdater.
func (p *Plugin) OnHandUpdate(data plugin.HandData, slot int) {
	if data.Landmarks == nil {
		return
	}
	y := p.tipY(data.Landmarks)

	p.mu.Lock()
	c, ok := p.slots[slot]
	if !ok {
		p.mu.Unlock()
		return
	}
	delta, moved := c.Update(y)
	p.mu.Unlock()

	if moved {
		p.bus.Publish(event.Scrolling{HandIndex: slot, DeltaY: delta, Y: y})
	}
}

// OnGestureEnd implements plugin.GestureEnder.
func (p *Plugin) OnGestureEnd(label gesture.Label, data plugin.HandData, slot int) {
	if label != p.gesture {
		return
	}
	p.mu.Lock()
	c, ok := p.slots[slot]
	wasActive := ok && c.Active()
	if ok {
		c.Stop()
	}
	p.mu.Unlock()

	if wasActive {
		p.bus.Publish(event.ScrollEnd{HandIndex: slot})
	}
}

// ResetSlot implements plugin.Resetter.
func (p *Plugin) ResetSlot(slot int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if c, ok := p.slots[slot]; ok {
		c.Stop()
	}
}

// Active reports whether slot is scrolling.
func (p *Plugin) Active(slot int) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	c, ok := p.slots[slot]
	return ok && c.Active()
}

func (p *Plugin) tipY(lm *detector.Landmarks) float64 {
	return pinch.Project(lm[detector.IndexTip], p.surface, false).Y
}
