// Package input synthesizes pointer, button and wheel actions on a target
// surface from the events published by gesture plugins.
package input

import "fmt"

// Button is a pointer button.
type Button int

const (
	Left Button = iota
	Right
)

func (b Button) String() string {
	switch b {
	case Left:
		return "left"
	case Right:
		return "right"
	default:
		return fmt.Sprintf("Button(%d)", int(b))
	}
}

// ActionType names a synthesized action.
type ActionType string

const (
	ActionMove        ActionType = "move"
	ActionOver        ActionType = "over"
	ActionOut         ActionType = "out"
	ActionDown        ActionType = "down"
	ActionUp          ActionType = "up"
	ActionClick       ActionType = "click"
	ActionDoubleClick ActionType = "dblclick"
	ActionContextMenu ActionType = "contextmenu"
	ActionWheel       ActionType = "wheel"
)

// Action is one synthesized input. Click follows a left Up as a derived
// notification; targets that get clicks from Down/Up themselves ignore it.
type Action struct {
	Type    ActionType `json:"type"`
	X       float64    `json:"x"`
	Y       float64    `json:"y"`
	Button  Button     `json:"button"`
	DeltaY  float64    `json:"deltaY,omitempty"`
	Element string     `json:"element,omitempty"`
}

// Target receives synthesized actions.
type Target interface {
	Dispatch(a Action) error
}

// HitTester resolves the element under a surface position. Targets that
// implement it get Over and Out actions when the hovered element changes.
type HitTester interface {
	ElementAt(x, y float64) string
}

// Region is a named rectangle on the surface.
type Region struct {
	Name       string
	X, Y, W, H float64
}

// Layout is a HitTester over regions; the first region containing the point
// wins and everything else is "body".
type Layout []Region

func (l Layout) ElementAt(x, y float64) string {
	for _, r := range l {
		if x >= r.X && x < r.X+r.W && y >= r.Y && y < r.Y+r.H {
			return r.Name
		}
	}
	return "body"
}
