// Package scroll converts a sustained gesture plus vertical fingertip motion
// into relative scroll deltas.
package scroll

import (
	"errors"
	"fmt"
	"math"
)

// ErrInvalidConfig is returned for a non-positive sensitivity or a negative
// deadband.
var ErrInvalidConfig = errors.New("invalid scroll config")

// Config holds the scroll gain and deadband, both in surface pixels.
type Config struct {
	Sensitivity float64
	Deadband    float64
}

// DefaultConfig returns sensitivity 6 and a 3px deadband.
func DefaultConfig() Config {
	return Config{Sensitivity: 6, Deadband: 3}
}

func (c Config) Validate() error {
	if c.Sensitivity <= 0 {
		return fmt.Errorf("%w: sensitivity must be positive", ErrInvalidConfig)
	}
	if c.Deadband < 0 {
		return fmt.Errorf("%w: deadband must not be negative", ErrInvalidConfig)
	}
	return nil
}

// Controller is a re-anchoring scroll tracker for one slot. Deltas are
// proportional to motion since the last emitted delta, not to the distance
// from where scrolling began.
type Controller struct {
	cfg    Config
	active bool
	anchor float64
}

// NewController creates an inactive Controller.
func NewController(cfg Config) (*Controller, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Controller{cfg: cfg}, nil
}

// Start activates scrolling anchored at y.
func (c *Controller) Start(y float64) {
	c.active = true
	c.anchor = y
}

// Update returns the amplified delta when y has moved past the deadband
// from the anchor, and re-anchors at y. It returns false while inactive or
// inside the deadband.
func (c *Controller) Update(y float64) (float64, bool) {
	if !c.active {
		return 0, false
	}
	dy := y - c.anchor
	if math.Abs(dy) <= c.cfg.Deadband {
		return 0, false
	}
	c.anchor = y
	return dy * c.cfg.Sensitivity, true
}

// Stop deactivates scrolling and clears the anchor.
func (c *Controller) Stop() {
	c.active = false
	c.anchor = 0
}

// Active reports whether scrolling is in progress.
func (c *Controller) Active() bool { return c.active }

// Anchor returns the current anchor.
func (c *Controller) Anchor() float64 { return c.anchor }
