// Package desktop drives the operating system pointer with robotgo.
package desktop

import (
	"fmt"
	"math"

	"github.com/go-vgo/robotgo"

	"github.com/ayusman/mudra/internal/input"
)

// DefaultWheelStep is how many surface pixels of scroll delta make one
// wheel notch.
const DefaultWheelStep = 40

// Target maps surface pixels onto the primary screen.
type Target struct {
	scaleX, scaleY float64
	wheelStep      float64
}

// New creates a Target that scales a surfaceW x surfaceH surface to the
// screen size reported by the OS.
func New(surfaceW, surfaceH float64) (*Target, error) {
	if surfaceW <= 0 || surfaceH <= 0 {
		return nil, fmt.Errorf("invalid surface size %vx%v", surfaceW, surfaceH)
	}
	w, h := robotgo.GetScreenSize()
	if w <= 0 || h <= 0 {
		return nil, fmt.Errorf("no screen available")
	}
	return &Target{
		scaleX:    float64(w) / surfaceW,
		scaleY:    float64(h) / surfaceH,
		wheelStep: DefaultWheelStep,
	}, nil
}

// Dispatch implements input.Target. Over, Out and Click are ignored: the
// OS derives them from movement and button transitions.
func (t *Target) Dispatch(a input.Action) error {
	switch a.Type {
	case input.ActionMove:
		robotgo.Move(int(math.Round(a.X*t.scaleX)), int(math.Round(a.Y*t.scaleY)))
	case input.ActionDown:
		return robotgo.Toggle(a.Button.String())
	case input.ActionUp:
		return robotgo.Toggle(a.Button.String(), "up")
	case input.ActionDoubleClick:
		robotgo.Click("left", true)
	case input.ActionContextMenu:
		robotgo.Click("right")
	case input.ActionWheel:
		notches := int(math.Max(1, math.Round(math.Abs(a.DeltaY)/t.wheelStep)))
		dir := "down"
		if a.DeltaY < 0 {
			dir = "up"
		}
		robotgo.ScrollDir(notches, dir)
	}
	return nil
}
