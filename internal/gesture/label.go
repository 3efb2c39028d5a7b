// Package gesture turns per-frame classifier output into stable gesture
// labels with start and end edges.
package gesture

import "strings"

// Label is a normalized gesture name. The zero value means no gesture.
type Label string

const (
	// None is the absence of a gesture.
	None Label = ""
	// ThumbUp is the primary click gesture.
	ThumbUp Label = "Thumb_Up"
	// Victory is the scroll gesture.
	Victory Label = "Victory"
	// OK opens the context menu.
	OK Label = "OK"
)

// String returns the label name, or "none" for None.
func (l Label) String() string {
	if l == None {
		return "none"
	}
	return string(l)
}

// NormalizeLabel maps a classifier category name to a known Label.
// Whitespace and case are ignored; unknown names map to None.
func NormalizeLabel(raw string) Label {
	s := strings.ToLower(strings.Join(strings.Fields(raw), ""))
	switch {
	case strings.Contains(s, "thumb") && strings.Contains(s, "up"):
		return ThumbUp
	case strings.Contains(s, "victory") || strings.Contains(s, "peace"):
		return Victory
	case s == "ok" || strings.Contains(s, "oksign"):
		return OK
	default:
		return None
	}
}
