// Package detector defines the hand observation model produced by the external
// vision engine and the clients that talk to it.
package detector

import "math"

// Hand landmark indices following MediaPipe convention.
// See: https://developers.google.com/mediapipe/solutions/vision/hand_landmarker
const (
	Wrist        = 0
	ThumbCMC     = 1
	ThumbMCP     = 2
	ThumbIP      = 3
	ThumbTip     = 4
	IndexMCP     = 5
	IndexPIP     = 6
	IndexDIP     = 7
	IndexTip     = 8
	MiddleMCP    = 9
	MiddlePIP    = 10
	MiddleDIP    = 11
	MiddleTip    = 12
	RingMCP      = 13
	RingPIP      = 14
	RingDIP      = 15
	RingTip      = 16
	PinkyMCP     = 17
	PinkyPIP     = 18
	PinkyDIP     = 19
	PinkyTip     = 20
	NumLandmarks = 21
)

// Point3D is a normalized landmark position. X and Y are in [0,1] image space.
type Point3D struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// Landmarks holds the 21 points of one hand for one frame.
type Landmarks [NumLandmarks]Point3D

// Distance2D returns the planar Euclidean distance between two points,
// ignoring depth.
func Distance2D(a, b Point3D) float64 {
	return math.Hypot(a.X-b.X, a.Y-b.Y)
}

// PinchDistance returns the normalized distance between the index fingertip
// and the thumb tip in unmirrored hand space.
func (l *Landmarks) PinchDistance() float64 {
	if l == nil {
		return math.Inf(1)
	}
	return Distance2D(l[IndexTip], l[ThumbTip])
}

// Translate returns a copy of the landmarks shifted by (dx, dy).
func (l Landmarks) Translate(dx, dy float64) Landmarks {
	for i := range l {
		l[i].X += dx
		l[i].Y += dy
	}
	return l
}
