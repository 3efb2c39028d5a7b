// Package plugin composes independent gesture interpreters over the same
// per-frame hand batch and runs external action executables bound to
// gestures.
package plugin

import (
	"github.com/ayusman/mudra/internal/detector"
	"github.com/ayusman/mudra/internal/gesture"
)

// HandData is the snapshot of one hand slot delivered to plugins each frame.
type HandData struct {
	Landmarks  *detector.Landmarks // nil when the hand is absent
	Gesture    gesture.Label       // stabilized label, None when inactive
	RawLabel   string              // classifier label before stabilization
	Score      float64
	Handedness string
}

// Plugin is an interpreter registered with a Registry. It receives calls
// only for the optional capabilities below that it implements.
type Plugin interface {
	Name() string
}

// HandUpdater receives every slot's HandData on every frame.
type HandUpdater interface {
	OnHandUpdate(data HandData, slot int)
}

// GestureStarter is notified when a slot's stabilized gesture begins.
type GestureStarter interface {
	OnGestureStart(label gesture.Label, data HandData, slot int)
}

// GestureEnder is notified when a slot's stabilized gesture ends.
type GestureEnder interface {
	OnGestureEnd(label gesture.Label, data HandData, slot int)
}

// Resetter drops a slot's in-flight state without emitting events. It is
// called when the slot's hand disappears from tracking or the pipeline stops.
type Resetter interface {
	ResetSlot(slot int)
}

// Disabler releases whatever a plugin holds outside the gesture edges, such
// as a pressed button, when the plugin is disabled or unregistered. It runs
// after open gestures are compensated.
type Disabler interface {
	OnDisable()
}
