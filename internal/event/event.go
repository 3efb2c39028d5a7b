// Package event defines the typed input events produced by gesture plugins
// and a synchronous bus that delivers them.
package event

import "time"

// Kind names an event type on the wire.
type Kind string

const (
	KindPointerMove  Kind = "pointermove"
	KindPinchStart   Kind = "pinchstart"
	KindPinchEnd     Kind = "pinchend"
	KindDrag         Kind = "drag"
	KindClick        Kind = "click"
	KindDoubleClick  Kind = "doubleclick"
	KindContextMenu  Kind = "contextmenu"
	KindScrollStart  Kind = "scrollstart"
	KindScrolling    Kind = "scrolling"
	KindScrollEnd    Kind = "scrollend"
	KindGestureStart Kind = "gesturestart"
	KindGestureEnd   Kind = "gestureend"
)

// Event is implemented by every event type in this package.
type Event interface {
	Kind() Kind
}

// PointerMove reports the projected cursor of a hand on every frame.
type PointerMove struct {
	HandIndex int     `json:"handIndex"`
	X         float64 `json:"x"`
	Y         float64 `json:"y"`
	Pinching  bool    `json:"pinching"`
}

// PinchStart is emitted when index and thumb tips close.
type PinchStart struct {
	HandIndex int     `json:"handIndex"`
	X         float64 `json:"x"`
	Y         float64 `json:"y"`
}

// PinchEnd is emitted when a pinch is released intentionally.
type PinchEnd struct {
	HandIndex  int     `json:"handIndex"`
	X          float64 `json:"x"`
	Y          float64 `json:"y"`
	DurationMs int64   `json:"durationMs"`
	StartX     float64 `json:"startX"`
	StartY     float64 `json:"startY"`
}

// Drag reports the cursor and the dragged target's new top-left corner.
type Drag struct {
	HandIndex int     `json:"handIndex"`
	X         float64 `json:"x"`
	Y         float64 `json:"y"`
	TargetX   float64 `json:"targetX"`
	TargetY   float64 `json:"targetY"`
}

type Click struct {
	HandIndex int `json:"handIndex"`
}

type DoubleClick struct {
	HandIndex int `json:"handIndex"`
}

// ContextMenu requests a secondary-button click at the hand's cursor.
type ContextMenu struct {
	HandIndex int     `json:"handIndex"`
	X         float64 `json:"x"`
	Y         float64 `json:"y"`
}

type ScrollStart struct {
	HandIndex int     `json:"handIndex"`
	Y         float64 `json:"y"`
}

// Scrolling carries an amplified vertical delta in surface pixels.
type Scrolling struct {
	HandIndex int     `json:"handIndex"`
	DeltaY    float64 `json:"deltaY"`
	Y         float64 `json:"y"`
}

type ScrollEnd struct {
	HandIndex int `json:"handIndex"`
}

// GestureStart mirrors a stabilizer start edge.
type GestureStart struct {
	HandIndex int    `json:"handIndex"`
	Gesture   string `json:"gesture"`
}

// GestureEnd mirrors a stabilizer end edge.
type GestureEnd struct {
	HandIndex int    `json:"handIndex"`
	Gesture   string `json:"gesture"`
}

func (PointerMove) Kind() Kind  { return KindPointerMove }
func (PinchStart) Kind() Kind   { return KindPinchStart }
func (PinchEnd) Kind() Kind     { return KindPinchEnd }
func (Drag) Kind() Kind         { return KindDrag }
func (Click) Kind() Kind        { return KindClick }
func (DoubleClick) Kind() Kind  { return KindDoubleClick }
func (ContextMenu) Kind() Kind  { return KindContextMenu }
func (ScrollStart) Kind() Kind  { return KindScrollStart }
func (Scrolling) Kind() Kind    { return KindScrolling }
func (ScrollEnd) Kind() Kind    { return KindScrollEnd }
func (GestureStart) Kind() Kind { return KindGestureStart }
func (GestureEnd) Kind() Kind   { return KindGestureEnd }

// Envelope is the JSON form of an event on the WebSocket stream.
type Envelope struct {
	Type      Kind      `json:"type"`
	Data      Event     `json:"data"`
	Timestamp time.Time `json:"timestamp"`
}

// Wrap builds an Envelope for e stamped at t.
func Wrap(e Event, t time.Time) Envelope {
	return Envelope{Type: e.Kind(), Data: e, Timestamp: t}
}
