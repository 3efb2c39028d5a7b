package detector

import (
	"sync"

	"gocv.io/x/gocv"
)

// MockDetector is a test implementation of the Detector interface.
// It allows tests to control the detection results.
type MockDetector struct {
	mu           sync.Mutex
	observations []Observation
	err          error
	calls        int
	lastConfig   *Config
}

// NewMockDetector creates a new MockDetector instance.
func NewMockDetector() *MockDetector {
	return &MockDetector{}
}

// SetObservations sets the observations that will be returned by Detect.
func (m *MockDetector) SetObservations(obs []Observation) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.observations = obs
}

// SetError sets the error that will be returned by Detect.
func (m *MockDetector) SetError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}

// Detect returns the pre-configured observations or error.
func (m *MockDetector) Detect(frame *gocv.Mat) ([]Observation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	return m.observations, nil
}

// Reconfigure records the requested settings.
func (m *MockDetector) Reconfigure(cfg Config) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lastConfig = &cfg
	return nil
}

// LastConfig returns the settings passed to the latest Reconfigure call.
func (m *MockDetector) LastConfig() (Config, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.lastConfig == nil {
		return Config{}, false
	}
	return *m.lastConfig, true
}

// Calls returns how many times Detect has been called.
func (m *MockDetector) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// Close is a no-op for the mock detector.
func (m *MockDetector) Close() error {
	return nil
}

// ThumbsUpLandmarks returns landmarks for a thumbs up pose.
// The thumb is extended upward while other fingers are curled.
func ThumbsUpLandmarks() Landmarks {
	var lm Landmarks

	lm[Wrist] = Point3D{X: 0.5, Y: 0.8, Z: 0.0}

	// Thumb extended upward (Y decreases going up)
	lm[ThumbCMC] = Point3D{X: 0.55, Y: 0.75, Z: 0.0}
	lm[ThumbMCP] = Point3D{X: 0.58, Y: 0.65, Z: 0.0}
	lm[ThumbIP] = Point3D{X: 0.58, Y: 0.50, Z: 0.0}
	lm[ThumbTip] = Point3D{X: 0.58, Y: 0.35, Z: 0.0}

	// Curled fingers: tips fold back toward the palm
	lm[IndexMCP] = Point3D{X: 0.55, Y: 0.70, Z: -0.02}
	lm[IndexPIP] = Point3D{X: 0.55, Y: 0.68, Z: -0.05}
	lm[IndexDIP] = Point3D{X: 0.52, Y: 0.70, Z: -0.04}
	lm[IndexTip] = Point3D{X: 0.50, Y: 0.72, Z: -0.02}

	lm[MiddleMCP] = Point3D{X: 0.50, Y: 0.68, Z: -0.02}
	lm[MiddlePIP] = Point3D{X: 0.50, Y: 0.66, Z: -0.05}
	lm[MiddleDIP] = Point3D{X: 0.47, Y: 0.68, Z: -0.04}
	lm[MiddleTip] = Point3D{X: 0.45, Y: 0.70, Z: -0.02}

	lm[RingMCP] = Point3D{X: 0.45, Y: 0.70, Z: -0.02}
	lm[RingPIP] = Point3D{X: 0.45, Y: 0.68, Z: -0.05}
	lm[RingDIP] = Point3D{X: 0.42, Y: 0.70, Z: -0.04}
	lm[RingTip] = Point3D{X: 0.40, Y: 0.72, Z: -0.02}

	lm[PinkyMCP] = Point3D{X: 0.40, Y: 0.72, Z: -0.02}
	lm[PinkyPIP] = Point3D{X: 0.40, Y: 0.70, Z: -0.05}
	lm[PinkyDIP] = Point3D{X: 0.37, Y: 0.72, Z: -0.04}
	lm[PinkyTip] = Point3D{X: 0.35, Y: 0.74, Z: -0.02}

	return lm
}

// OpenPalmLandmarks returns landmarks for an open palm with all fingers
// extended. The index tip and thumb tip are far apart.
func OpenPalmLandmarks() Landmarks {
	var lm Landmarks

	lm[Wrist] = Point3D{X: 0.5, Y: 0.8, Z: 0.0}

	// Thumb extended to the side
	lm[ThumbCMC] = Point3D{X: 0.55, Y: 0.75, Z: 0.02}
	lm[ThumbMCP] = Point3D{X: 0.62, Y: 0.70, Z: 0.03}
	lm[ThumbIP] = Point3D{X: 0.68, Y: 0.65, Z: 0.03}
	lm[ThumbTip] = Point3D{X: 0.73, Y: 0.60, Z: 0.03}

	lm[IndexMCP] = Point3D{X: 0.55, Y: 0.68, Z: 0.0}
	lm[IndexPIP] = Point3D{X: 0.57, Y: 0.55, Z: 0.0}
	lm[IndexDIP] = Point3D{X: 0.58, Y: 0.45, Z: 0.0}
	lm[IndexTip] = Point3D{X: 0.58, Y: 0.35, Z: 0.0}

	lm[MiddleMCP] = Point3D{X: 0.50, Y: 0.66, Z: 0.0}
	lm[MiddlePIP] = Point3D{X: 0.50, Y: 0.52, Z: 0.0}
	lm[MiddleDIP] = Point3D{X: 0.50, Y: 0.40, Z: 0.0}
	lm[MiddleTip] = Point3D{X: 0.50, Y: 0.28, Z: 0.0}

	lm[RingMCP] = Point3D{X: 0.45, Y: 0.68, Z: 0.0}
	lm[RingPIP] = Point3D{X: 0.43, Y: 0.55, Z: 0.0}
	lm[RingDIP] = Point3D{X: 0.42, Y: 0.45, Z: 0.0}
	lm[RingTip] = Point3D{X: 0.42, Y: 0.35, Z: 0.0}

	lm[PinkyMCP] = Point3D{X: 0.40, Y: 0.70, Z: 0.0}
	lm[PinkyPIP] = Point3D{X: 0.37, Y: 0.60, Z: 0.0}
	lm[PinkyDIP] = Point3D{X: 0.35, Y: 0.50, Z: 0.0}
	lm[PinkyTip] = Point3D{X: 0.34, Y: 0.42, Z: 0.0}

	return lm
}

// HandAt returns an open palm moved so the index fingertip sits at (x, y),
// with the thumb tip placed gap to its right. A small gap models a pinch.
func HandAt(x, y, gap float64) Landmarks {
	lm := OpenPalmLandmarks()
	tip := lm[IndexTip]
	lm = lm.Translate(x-tip.X, y-tip.Y)
	lm[ThumbTip] = Point3D{X: x + gap, Y: y, Z: lm[ThumbTip].Z}
	return lm
}

// Observe builds a present observation with the given classification.
// An empty label yields no classification.
func Observe(lm Landmarks, label string, score float64) Observation {
	obs := Observation{Landmarks: &lm, Handedness: "Right"}
	if label != "" {
		obs.Classification = &Classification{Label: label, Score: score}
	}
	return obs
}
