package detector

import "gocv.io/x/gocv"

// Detector defines the interface for the external vision engine.
type Detector interface {
	// Detect analyzes a video frame and returns one observation per detected
	// hand. Returns an empty slice if no hands are detected.
	Detect(frame *gocv.Mat) ([]Observation, error)

	// Close releases any resources held by the detector.
	Close() error
}

// Reconfigurer is implemented by detectors that accept new inference settings
// at runtime. The new settings take effect on the next detection.
type Reconfigurer interface {
	Reconfigure(cfg Config) error
}

// Config holds configuration options for hand detection.
type Config struct {
	// MaxHands is the maximum number of hands to detect (default: 2).
	MaxHands int

	// ModelComplexity selects the landmark model: 0 lite, 1 full, 2 heavy.
	ModelComplexity int

	// MinConfidence is the minimum detection confidence threshold (0.0-1.0).
	MinConfidence float64

	// MinTrackingConf is the minimum tracking confidence threshold (0.0-1.0).
	MinTrackingConf float64
}

// DefaultConfig returns a Config with sensible default values.
func DefaultConfig() Config {
	return Config{
		MaxHands:        2,
		ModelComplexity: 1,
		MinConfidence:   0.5,
		MinTrackingConf: 0.5,
	}
}
