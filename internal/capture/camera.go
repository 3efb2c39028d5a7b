// Package capture reads frames from a camera device using GoCV (OpenCV).
package capture

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"gocv.io/x/gocv"
)

// Default capture settings, matching the default quality settings.
const (
	DefaultFPS    = 30
	DefaultWidth  = 960
	DefaultHeight = 720
)

var (
	// ErrCameraNotOpen is returned when reading from a camera that is not open.
	ErrCameraNotOpen = errors.New("camera is not open")
	// ErrEmptyFrame is returned when the device delivers no image data.
	ErrEmptyFrame = errors.New("captured frame is empty")
)

// Camera is a frame source whose resolution and frame rate can change while
// it is open.
type Camera interface {
	Open() error
	Close() error
	// ReadFrame returns the next frame. The caller closes the returned Mat.
	ReadFrame() (*gocv.Mat, error)
	SetFPS(fps int)
	FPS() int
	SetResolution(width, height int)
	Resolution() (width, height int)
	IsOpen() bool
}

// Options configures a device camera.
type Options struct {
	DeviceID int
	Width    int
	Height   int
	FPS      int
	Logger   *slog.Logger
}

// DefaultOptions returns options for device 0 at the default settings.
func DefaultOptions() Options {
	return Options{Width: DefaultWidth, Height: DefaultHeight, FPS: DefaultFPS}
}

type deviceCamera struct {
	mu      sync.Mutex
	opts    Options
	capture *gocv.VideoCapture
	logger  *slog.Logger
}

// NewCamera creates a Camera for a local video device. Zero sizes and rates
// fall back to the defaults.
func NewCamera(opts Options) Camera {
	if opts.Width <= 0 || opts.Height <= 0 {
		opts.Width, opts.Height = DefaultWidth, DefaultHeight
	}
	if opts.FPS <= 0 {
		opts.FPS = DefaultFPS
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &deviceCamera{opts: opts, logger: logger.With("component", "camera", "device", opts.DeviceID)}
}

func (c *deviceCamera) Open() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.capture != nil {
		return nil
	}

	vc, err := gocv.OpenVideoCapture(c.opts.DeviceID)
	if err != nil {
		return fmt.Errorf("open camera %d: %w", c.opts.DeviceID, err)
	}
	c.capture = vc
	c.apply()
	c.logger.Info("camera opened", "width", c.opts.Width, "height", c.opts.Height, "fps", c.opts.FPS)
	return nil
}

// apply pushes the current options to the open device. Callers hold mu.
func (c *deviceCamera) apply() {
	if c.capture == nil {
		return
	}
	c.capture.Set(gocv.VideoCaptureFrameWidth, float64(c.opts.Width))
	c.capture.Set(gocv.VideoCaptureFrameHeight, float64(c.opts.Height))
	c.capture.Set(gocv.VideoCaptureFPS, float64(c.opts.FPS))
}

func (c *deviceCamera) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.capture == nil {
		return nil
	}
	err := c.capture.Close()
	c.capture = nil
	if err != nil {
		return fmt.Errorf("close camera %d: %w", c.opts.DeviceID, err)
	}
	return nil
}

func (c *deviceCamera) ReadFrame() (*gocv.Mat, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.capture == nil {
		return nil, ErrCameraNotOpen
	}

	mat := gocv.NewMat()
	if ok := c.capture.Read(&mat); !ok {
		mat.Close()
		return nil, fmt.Errorf("read frame from camera %d", c.opts.DeviceID)
	}
	if mat.Empty() {
		mat.Close()
		return nil, ErrEmptyFrame
	}
	return &mat, nil
}

// SetFPS ignores values less than or equal to 0.
func (c *deviceCamera) SetFPS(fps int) {
	if fps <= 0 {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	c.opts.FPS = fps
	if c.capture != nil {
		c.capture.Set(gocv.VideoCaptureFPS, float64(fps))
	}
}

func (c *deviceCamera) FPS() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.opts.FPS
}

// SetResolution ignores non-positive sizes. The device keeps running; some
// drivers only honour the request on a later frame.
func (c *deviceCamera) SetResolution(width, height int) {
	if width <= 0 || height <= 0 {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	c.opts.Width, c.opts.Height = width, height
	c.apply()
	c.logger.Debug("camera resolution changed", "width", width, "height", height)
}

func (c *deviceCamera) Resolution() (int, int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.opts.Width, c.opts.Height
}

func (c *deviceCamera) IsOpen() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.capture != nil
}
